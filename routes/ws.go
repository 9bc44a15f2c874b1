package routes

import (
	"os"

	"github.com/Nandhana895/Agri-backend-sub000/models"
	"github.com/Nandhana895/Agri-backend-sub000/services"
	"github.com/Nandhana895/Agri-backend-sub000/utils"

	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	"nhooyr.io/websocket"
)

// WebSocketUpgrade accepts a live connection. Browsers cannot set an
// Authorization header on the native WebSocket constructor, so the access
// token rides in the token query parameter. A missing or invalid token does
// not reject the connection; it proceeds unauthenticated, joins no rooms and
// cannot send. Blocked or inactive principals are refused outright.
func WebSocketUpgrade(ctx iris.Context) {
	user := resolveHandshakeUser(ctx.URLParam("token"))
	if user != nil {
		if user.IsBlocked || (user.IsActive != nil && !*user.IsActive) {
			utils.CreateForbidden(ctx)
			return
		}
	}

	opts := &websocket.AcceptOptions{}
	if os.Getenv("WS_INSECURE_SKIP_VERIFY") == "true" {
		// dev only: browser clients on another origin
		opts.InsecureSkipVerify = true
	}

	conn, err := websocket.Accept(ctx.ResponseWriter(), ctx.Request(), opts)
	if err != nil {
		return // Accept already wrote the error response
	}

	gateway.Serve(ctx.Request().Context(), conn, user)
}

// resolveHandshakeUser parses the handshake token and loads its principal.
// Any failure along the way yields nil, i.e. an anonymous connection.
func resolveHandshakeUser(tokenStr string) *models.User {
	if tokenStr == "" {
		return nil
	}

	token, err := jwtv4.Parse(tokenStr, func(t *jwtv4.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv4.SigningMethodHMAC); !ok {
			return nil, jwtv4.ErrSignatureInvalid
		}
		return []byte(os.Getenv("ACCESS_TOKEN_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(jwtv4.MapClaims)
	if !ok {
		return nil
	}
	id, ok := claims["ID"].(float64)
	if !ok || id <= 0 {
		return nil
	}

	user, err := services.FindUserByID(uint(id))
	if err != nil {
		return nil
	}
	return user
}
