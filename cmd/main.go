package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-user-registry/config"
	"github.com/oksasatya/go-user-registry/internal/application"
	"github.com/oksasatya/go-user-registry/internal/container"
	"github.com/oksasatya/go-user-registry/internal/interface/middleware"
	"github.com/oksasatya/go-user-registry/internal/router"
	"github.com/oksasatya/go-user-registry/pkg/helpers"
	"github.com/oksasatya/go-user-registry/pkg/validation"
	"github.com/oksasatya/go-user-registry/pkg/views"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	store, closeStore, err := container.OpenStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	c := &container.Container{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Hasher: application.NewBcryptHasher(cfg.BcryptCost),
	}

	defer c.ConnectOptional()()

	tpl, err := views.Load()
	if err != nil {
		log.Fatalf("failed to parse templates: %v", err)
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}
	r.SetHTMLTemplate(tpl)

	reg := router.NewRegistry(r)
	router.InitModules(reg, c)
	reg.RegisterAll()

	ln, err := listenFirst(cfg.Ports(), logger)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithField("addr", ln.Addr().String()).Info("server starting")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("serve: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
		return
	}
	logger.Info("server exited properly")
}
