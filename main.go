package main

import (
	"os"

	"github.com/Nandhana895/Agri-backend-sub000/routes"
	"github.com/Nandhana895/Agri-backend-sub000/storage"
	"github.com/Nandhana895/Agri-backend-sub000/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()
	storage.InitializeDB()
	storage.InitializeRedis()
	storage.InitializeBlob()

	app := iris.New()
	app.Validator = validator.New()

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	// Live transport; the handshake does its own token handling because the
	// token arrives as a query parameter, not a header.
	app.Get("/ws", routes.WebSocketUpgrade)

	chatRequestsAPI := app.Party("/api/chat-requests", accessTokenVerifierMiddleware)
	{
		chatRequestsAPI.Post("/", routes.CreateChatRequest)
		chatRequestsAPI.Post("/{id:uint}/approve", utils.ExpertOnlyMiddleware, routes.ApproveChatRequest)
		chatRequestsAPI.Post("/{id:uint}/reject", utils.ExpertOnlyMiddleware, routes.RejectChatRequest)
		chatRequestsAPI.Get("/pending", utils.ExpertOnlyMiddleware, routes.ListPendingChatRequests)
		chatRequestsAPI.Get("/mine", utils.FarmerOnlyMiddleware, routes.ListMyChatRequests)
		chatRequestsAPI.Get("/approved-peers", routes.ListApprovedPeers)
	}

	conversationsAPI := app.Party("/api/conversations", accessTokenVerifierMiddleware)
	{
		conversationsAPI.Get("/", routes.ListConversations)
		conversationsAPI.Post("/", routes.ResolveConversation)
		conversationsAPI.Get("/{id:uint}/messages", routes.ListConversationMessages)
		conversationsAPI.Post("/{id:uint}/messages", routes.SendConversationMessage)
		conversationsAPI.Post("/{id:uint}/read", routes.MarkConversationRead)
		conversationsAPI.Post("/{id:uint}/messages/{messageID:uint}/pin", routes.PinMessage)
		conversationsAPI.Get("/{id:uint}/search", routes.SearchConversationMessages)
		conversationsAPI.Get("/{id:uint}/export", routes.ExportConversation)
		conversationsAPI.Post("/{id:uint}/typing", routes.Typing)
		conversationsAPI.Get("/{id:uint}/typing", routes.PeerTyping)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	app.Listen(":" + port)
}
