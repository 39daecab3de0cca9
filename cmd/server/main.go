package main

// @title           Forms Service API
// @version         1.0
// @description     Form templates, submissions and real-time comments and likes
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "forms-service/docs"
	"forms-service/internal/adapters/kafka"
	"forms-service/internal/api/routes"
	"forms-service/internal/auth"
	"forms-service/internal/config"
	"forms-service/internal/database"
	"forms-service/internal/services"
	"forms-service/internal/websocket"
	"forms-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.SetDefault(logger.New(cfg.Log.Level, cfg.Log.Format))
	slog.Info("Starting forms server", "store", cfg.Store.Driver, "bus", cfg.Realtime.Bus)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := database.OpenStore(ctx, cfg.Store, true)
	if err != nil {
		slog.Error("Failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}

	// Redis is optional unless it carries the realtime bus
	var redisService *services.RedisService
	if cfg.Redis.URI != "" {
		redisClient, err := database.NewRedisConnection(cfg.Redis)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		redisService = services.NewRedisService(redisClient)

		state, err := redisService.GetMigrationState(ctx)
		switch {
		case err != nil:
			slog.Error("Failed to read migration state", "error", err)
		case state["version"] != database.SchemaVersion:
			slog.Warn("Store schema not migrated, run cmd/migrate", "want", database.SchemaVersion, "recorded", state["version"])
		default:
			slog.Info("Store schema up to date", "version", state["version"], "status", state["status"])
		}
	}

	var activity services.ActivityPublisher = services.NoopActivityPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.InitKafkaProducer(cfg.Kafka.Brokers)
		if err != nil {
			slog.Error("Failed to create Kafka producer, activity stream disabled", "error", err)
		} else {
			activity = services.NewKafkaActivityPublisher(producer, cfg.Kafka.Topic)
			slog.Info("Publishing activity events", "topic", cfg.Kafka.Topic)
		}
	}

	var storage services.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		minioClient, err := database.NewMinIOClient(ctx, cfg.Storage)
		if err != nil {
			slog.Error("Failed to connect to MinIO, uploads disabled", "error", err)
		} else {
			storage = services.NewMinIOStorage(minioClient, cfg.Storage.Bucket, cfg.Storage.PublicURL)
		}
	}

	var google, github auth.OAuthProvider
	if cfg.OAuth.GoogleClientID != "" {
		google = auth.NewGoogleProvider(cfg.OAuth.GoogleClientID)
	}
	if cfg.OAuth.GitHubClientID != "" {
		github = auth.NewGitHubProvider(cfg.OAuth.GitHubClientID, cfg.OAuth.GitHubClientSecret, cfg.OAuth.GitHubRedirectURL)
	}

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpirationTime)
	authService := services.NewAuthService(store.Users, tokens, google, github)
	commentService := services.NewCommentService(store, activity)
	likeService := services.NewLikeService(store, activity)

	// Initialize WebSocket hub
	var presence websocket.Presence
	var online services.OnlineDirectory
	if redisService != nil {
		presence = redisService
		online = redisService
	}
	hub := websocket.NewHub(presence)
	go hub.Run()

	var broadcaster websocket.Broadcaster = websocket.NewLocalBroadcaster(hub)
	if cfg.Realtime.Bus == config.BusRedis {
		redisBroadcaster := websocket.NewRedisBroadcaster(redisService, hub)
		ready := make(chan struct{})
		go func() {
			if err := redisBroadcaster.Listen(ctx, ready); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Template event listener stopped", "error", err)
			}
		}()
		select {
		case <-ready:
		case <-time.After(10 * time.Second):
			slog.Error("Timed out subscribing to template events")
			os.Exit(1)
		}
		broadcaster = redisBroadcaster
	}
	dispatcher := websocket.NewDispatcher(commentService, likeService, broadcaster, cfg.Realtime.ActionTimeout)

	// Initialize router with all dependencies
	router := routes.NewRouter(routes.Dependencies{
		Config:        cfg,
		Auth:          authService,
		Templates:     services.NewTemplateService(store, redisService),
		Forms:         services.NewFormService(store),
		Comments:      commentService,
		Users:         services.NewUserService(store.Users, online),
		Search:        services.NewSearchService(store),
		Uploads:       services.NewUploadService(storage),
		Redis:         redisService,
		Hub:           hub,
		Dispatcher:    dispatcher,
		Authenticator: websocket.NewAuthenticator(authService, cfg.JWT.Secret),
		Upgrader:      websocket.NewUpgrader(cfg.CORS),
	})
	router.SetupRoutes()

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// Close sockets and wait for their pumps, then let accepted actions finish before the bus goes away
	hub.Stop()
	dispatcher.Close()
	stop()

	if err := activity.Close(); err != nil {
		slog.Error("Failed to close activity publisher", "error", err)
	}

	slog.Info("Server stopped")
}
