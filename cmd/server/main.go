// Package main runs the community event calendar HTTP server with the
// realtime feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mango-army/events-backend/config"
	"github.com/mango-army/events-backend/internal/audit"
	"github.com/mango-army/events-backend/internal/auth"
	"github.com/mango-army/events-backend/internal/discord"
	"github.com/mango-army/events-backend/internal/events"
	"github.com/mango-army/events-backend/internal/middleware"
	"github.com/mango-army/events-backend/internal/realtime"
	"github.com/mango-army/events-backend/internal/staff"
	"github.com/mango-army/events-backend/internal/users"
	"github.com/mango-army/events-backend/pkg/database"
	"github.com/mango-army/events-backend/pkg/redis"
	"github.com/mango-army/events-backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis backs the Discord lookup cache and the calendar feed fan-out.
	// The server still works without it, single-instance and uncached.
	var rdb *redis.Client
	if r, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger); err != nil {
		logger.Warn("redis unavailable, caching and fan-out disabled", zap.Error(err))
	} else {
		rdb = r
		defer rdb.Close()
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	var hub *realtime.Hub
	if rdb != nil {
		pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
		hub = realtime.NewHub(logger, pubsub, pubsub)
	} else {
		hub = realtime.NewHub(logger, nil, nil)
	}
	if err := hub.Start(); err != nil {
		logger.Warn("calendar feed subscription", zap.Error(err))
	}
	defer hub.Stop()

	// Discord lookups
	cacheTTL := time.Duration(cfg.Discord.CacheTTLMinutes) * time.Minute
	var discordClient *discord.Client
	if rdb != nil {
		discordClient = discord.NewClient(cfg.Discord.BotToken, rdb.Client, cacheTTL, logger)
	} else {
		discordClient = discord.NewClient(cfg.Discord.BotToken, nil, cacheTTL, logger)
	}
	discordHandler := discord.NewHandler(discordClient, logger)

	// Audit log
	logRepo := audit.NewRepository(pool)
	recorder := audit.NewRecorder(logRepo, logger)
	logHandler := audit.NewHandler(logRepo, recorder)

	// Auth + staff users
	userRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(userRepo, jwtService, logger)
	userHandler := users.NewHandler(userRepo, cfg.Admin.BootstrapIDs, logger)

	// Staff access requests
	staffRepo := staff.NewRepository(pool)
	staffHandler := staff.NewHandler(staffRepo, userRepo, discordClient, cfg.Admin.BootstrapIDs, logger)

	// Calendar events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, recorder, hub, logger)

	jwtValidate := func(token string) (discordID, username string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.DiscordID, claims.Username, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.APIKey(cfg.Server.APIKey, logger))

	// Health (public)
	router.GET("/api/ping", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	// Public calendar
	router.GET("/api/events", eventHandler.List)

	// Auth (API key only; no session yet)
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/request-staff", staffHandler.Submit)
		authGroup.GET("/check-admin/:id", userHandler.CheckAdmin)
	}

	// Staff API (JWT required)
	api := router.Group("/api")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/requests", staffHandler.ListPending)
		api.POST("/auth/approve/:id", staffHandler.Approve)
		api.POST("/auth/reject/:id", staffHandler.Reject)
		api.GET("/auth/users", userHandler.List)
		api.PUT("/auth/users/:id/roles", userHandler.UpdateRoles)
		api.DELETE("/auth/users/:id", userHandler.Delete)

		api.POST("/events", eventHandler.Create)
		api.PUT("/events/:id", eventHandler.Update)
		api.DELETE("/events/:id", eventHandler.Delete)

		api.GET("/logs", logHandler.List)
		api.POST("/logs/session", logHandler.CreateSession)

		api.GET("/discord-user/:id", discordHandler.GetUser)
	}

	// WebSocket calendar feed (token optional; the calendar is public)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
