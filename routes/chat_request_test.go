package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/Nandhana895/Agri-backend-sub000/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// buildTestApp creates a minimal Iris app with the chat request routes and JWT verifier
func buildTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	api := app.Party("/api/chat-requests", accessTokenVerifierMiddleware)
	{
		api.Post("/", CreateChatRequest)
		api.Post("/{id:uint}/approve", utils.ExpertOnlyMiddleware, ApproveChatRequest)
	}
	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

// signTestToken returns a signed JWT with the given role
func signTestToken(id uint, role string) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, _ := signer.Sign(utils.AccessToken{ID: id, Role: role})
	return string(token)
}

func TestChatRequestRequiresToken(t *testing.T) {
	app := buildTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/chat-requests", strings.NewReader(`{"expertID":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}
}

func TestOnlyFarmersCreateChatRequests(t *testing.T) {
	app := buildTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/chat-requests", strings.NewReader(`{"expertID":2,"note":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken(5, "expert"))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for expert creating a request, got %d", resp.Code)
	}
}

func TestOnlyExpertsApprove(t *testing.T) {
	app := buildTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/chat-requests/1/approve", strings.NewReader(`{"note":"ok"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken(5, "farmer"))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for farmer approving, got %d", resp.Code)
	}
}
