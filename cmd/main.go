package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/RachedNaguez/PcBuilder/internal/config"
	"github.com/RachedNaguez/PcBuilder/internal/gateway"
	"github.com/RachedNaguez/PcBuilder/internal/handler"
	"github.com/RachedNaguez/PcBuilder/internal/service"
	"github.com/RachedNaguez/PcBuilder/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	gatewayClient, err := gateway.New(cfg.Assistant)
	if err != nil {
		logger.Fatalf("Failed to create assistant gateway: %v", err)
	}

	sessionService := service.NewSessionService(cfg, gatewayClient)
	sessionHandler := handler.NewSessionHandler(sessionService)

	router := setupRouter(cfg, sessionHandler)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Infof("Server listening on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")
	if err := server.Close(); err != nil {
		logger.Errorf("Server close failed: %v", err)
	}
	if err := sessionService.Close(); err != nil {
		logger.Errorf("Service close failed: %v", err)
	}
	logger.Info("Server stopped")
}

func setupRouter(cfg *config.Config, sessionHandler *handler.SessionHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	api := router.Group("/api")
	{
		chat := api.Group("/chat")
		{
			chat.POST("/message", sessionHandler.SendMessage)
			chat.POST("/build", sessionHandler.BuildPC)
		}

		session := api.Group("/session")
		{
			session.POST("", sessionHandler.CreateSession)
			session.POST("/list", sessionHandler.GetSessionList)
			session.GET("/del/:session_id", sessionHandler.DeleteSession)
			session.POST("/clear", sessionHandler.ClearAllSessions)
			session.GET("/:session_id", sessionHandler.GetSession)
			session.POST("/:session_id/mode", sessionHandler.SwitchMode)
			session.POST("/:session_id/view", sessionHandler.ToggleView)
			session.POST("/:session_id/back", sessionHandler.Back)
			session.POST("/:session_id/reset", sessionHandler.Reset)
			session.POST("/:session_id/confirm", sessionHandler.ConfirmBuild)
		}

		api.GET("/messages/:session_id", sessionHandler.GetMessages)
	}

	return router
}
