package routes

import (
	"net/http"
	"time"

	"forms-service/internal/api/handlers"
	"forms-service/internal/api/middleware"
	"forms-service/internal/config"
	"forms-service/internal/models"
	"forms-service/internal/services"
	"forms-service/internal/websocket"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies is everything the HTTP layer needs. RedisService may be nil.
type Dependencies struct {
	Config *config.Config

	Auth      *services.AuthService
	Templates *services.TemplateService
	Forms     *services.FormService
	Comments  *services.CommentService
	Users     *services.UserService
	Search    *services.SearchService
	Uploads   *services.UploadService
	Redis     *services.RedisService

	Hub           *websocket.Hub
	Dispatcher    *websocket.Dispatcher
	Authenticator *websocket.Authenticator
	Upgrader      *gorilla.Upgrader
}

type Router struct {
	engine          *gin.Engine
	wsHandler       *handlers.WSHandler
	authHandler     *handlers.AuthHandler
	templateHandler *handlers.TemplateHandler
	formHandler     *handlers.FormHandler
	commentHandler  *handlers.CommentHandler
	userHandler     *handlers.UserHandler
	searchHandler   *handlers.SearchHandler
	uploadHandler   *handlers.UploadHandler
	rateLimitMW     *middleware.RateLimitMiddleware
	authMW          *middleware.AuthMiddleware
}

func NewRouter(deps Dependencies) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	// Add middlewares
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(deps.Config.CORS))
	engine.Use(middleware.LogApi())
	engine.Use(middleware.Sanitize())

	cookie := handlers.CookieSettings{
		Secret: deps.Config.JWT.Secret,
		MaxAge: deps.Config.JWT.CookieExpiration,
		Secure: deps.Config.JWT.SecureCookie,
	}

	return &Router{
		engine:          engine,
		wsHandler:       handlers.NewWSHandler(deps.Hub, deps.Dispatcher, deps.Authenticator, deps.Upgrader),
		authHandler:     handlers.NewAuthHandler(deps.Auth, cookie),
		templateHandler: handlers.NewTemplateHandler(deps.Templates),
		formHandler:     handlers.NewFormHandler(deps.Forms),
		commentHandler:  handlers.NewCommentHandler(deps.Comments),
		userHandler:     handlers.NewUserHandler(deps.Users),
		searchHandler:   handlers.NewSearchHandler(deps.Search),
		uploadHandler:   handlers.NewUploadHandler(deps.Uploads),
		rateLimitMW:     middleware.NewRateLimitMiddleware(deps.Redis),
		authMW:          middleware.NewAuthMiddleware(deps.Auth, deps.Config.JWT.Secret),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.engine.Group("/api/v1")

	// The handshake authenticates on its own so it can accept the token query parameter.
	api.GET("/ws",
		r.rateLimitMW.RateLimitIP(30, time.Minute),
		r.wsHandler.HandleWebSocket,
	)

	protect := r.authMW.Protect()
	adminOnly := r.authMW.RestrictTo(models.RoleAdmin)

	// Auth routes
	authRoutes := api.Group("/auth")
	authRoutes.Use(r.rateLimitMW.RateLimitIP(50, time.Minute))
	{
		authRoutes.POST("/signup", r.authHandler.Signup)
		authRoutes.POST("/signin", r.authHandler.Signin)
		authRoutes.POST("/google", r.authHandler.GoogleLogin)
		authRoutes.POST("/github", r.authHandler.GitHubLogin)
		authRoutes.GET("/signout", r.authHandler.Signout)
		authRoutes.GET("/authenticated", protect, r.authHandler.Authenticated)
	}

	// Template routes
	templates := api.Group("/templates")
	templates.Use(r.rateLimitMW.RateLimit(100, time.Minute))
	{
		templates.GET("/latest", r.templateHandler.Latest)
		templates.GET("/popular/likes", r.templateHandler.PopularByLikes)
		templates.GET("/tags", r.templateHandler.TagCounts)
		templates.GET("/templates", protect, adminOnly, r.templateHandler.All)
		templates.POST("/templates", protect, adminOnly, r.templateHandler.DeleteMany)
		templates.GET("/:id", r.authMW.OptionalAuth(), r.templateHandler.Get)
		templates.PATCH("/:id", protect, r.templateHandler.Update)
		templates.DELETE("/:id", protect, r.templateHandler.Delete)
		templates.GET("", protect, r.templateHandler.Mine)
		templates.POST("", protect, r.templateHandler.Create)
	}

	// Form routes
	forms := api.Group("/forms")
	forms.Use(protect, r.rateLimitMW.RateLimit(100, time.Minute))
	{
		forms.GET("/formTemplate/:id", r.formHandler.TemplateForForm)
		forms.GET("/template/:templateId", r.formHandler.ByTemplate)
		forms.GET("/:id", r.formHandler.Get)
		forms.POST("/:id", r.formHandler.Submit)
	}

	// Comment routes
	comments := api.Group("/comments")
	comments.Use(r.rateLimitMW.RateLimit(200, time.Minute))
	{
		comments.GET("/:templateId", r.commentHandler.ByTemplate)
	}

	// User routes
	users := api.Group("/users")
	users.Use(protect, r.rateLimitMW.RateLimit(100, time.Minute))
	{
		users.POST("", r.userHandler.ByIDs)
		users.GET("", adminOnly, r.userHandler.List)
		users.GET("/online", r.userHandler.Online)
		users.POST("/block", adminOnly, r.userHandler.Block)
		users.POST("/unblock", adminOnly, r.userHandler.Unblock)
		users.POST("/admin", adminOnly, r.userHandler.MakeAdmin)
		users.POST("/user", adminOnly, r.userHandler.MakeUser)
		users.POST("/delete", adminOnly, r.userHandler.Delete)
	}

	// Search routes
	search := api.Group("/search")
	search.Use(r.rateLimitMW.RateLimit(100, time.Minute))
	{
		search.GET("", r.searchHandler.Global)
		search.GET("/tags", r.searchHandler.Tags)
		search.GET("/user", r.searchHandler.Users)
		search.GET("/template", protect, r.searchHandler.Templates)
		search.GET("/stats", protect, adminOnly, r.searchHandler.Stats)
	}

	// Upload routes
	api.POST("/upload", r.rateLimitMW.RateLimitIP(20, time.Minute), r.uploadHandler.UploadImage)
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
