package http

import (
	"github.com/gin-gonic/gin"

	appsvc "classwork-chatbot/internal/app"
	"classwork-chatbot/internal/bootstrap"
	"classwork-chatbot/internal/cache"
	"classwork-chatbot/internal/repository"
	"classwork-chatbot/internal/transport/http/handler"
	"classwork-chatbot/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Logger), middleware.Recovery(app.Logger))
	router.MaxMultipartMemory = cfg.Upload.MaxBytes

	userRepo := repository.NewUserRepository(app.DB)
	fileRepo := repository.NewUploadedFileRepository(app.DB)
	contexts := cache.NewContextCache(app.Redis, cfg.ContextTTL())
	blocklist := cache.NewTokenBlocklist(app.Redis)

	var publisher appsvc.EventPublisher
	if app.Publisher != nil {
		publisher = app.Publisher
	}

	authService := appsvc.NewAuthService(userRepo, blocklist, cfg.Auth.JWTSecret, cfg.JWTExpiration())
	fileService := appsvc.NewFileService(fileRepo, app.Store, contexts, publisher, app.Logger.Named("files"), cfg.Upload.MaxBytes)
	chatService := appsvc.NewChatService(fileRepo, contexts, app.Completer, app.Logger.Named("chat"), cfg.Chat.MaxHistory, cfg.Chat.MaxContextChars)

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(authService)
	fileHandler := handler.NewFileHandler(fileService, cfg.Upload.MaxBytes)
	chatHandler := handler.NewChatHandler(chatService)

	router.GET("/healthz", healthHandler.Check)

	requireAuth := middleware.AuthJWT(cfg.Auth.JWTSecret, blocklist)
	api := router.Group("/api/auth")
	api.POST("/register/", authHandler.Register)
	api.POST("/login/", authHandler.Login)
	api.POST("/chat/", chatHandler.Ask)

	protected := api.Group("")
	protected.Use(requireAuth)
	protected.POST("/logout/", authHandler.Logout)
	protected.GET("/me/", authHandler.Me)
	protected.POST("/upload/", fileHandler.Upload)
	protected.GET("/files/", fileHandler.ListMine)
	protected.GET("/documents/", fileHandler.Catalog)
	protected.DELETE("/files/:id/delete/", fileHandler.Delete)

	return router
}
