package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/youth-camp-api/api/swagger"
	"github.com/noah-isme/youth-camp-api/internal/app"
	"github.com/noah-isme/youth-camp-api/internal/handler"
	"github.com/noah-isme/youth-camp-api/internal/middleware"
	"github.com/noah-isme/youth-camp-api/internal/models"
	"github.com/noah-isme/youth-camp-api/internal/service"
	"github.com/noah-isme/youth-camp-api/pkg/config"
	"github.com/noah-isme/youth-camp-api/pkg/jobs"
	"github.com/noah-isme/youth-camp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/youth-camp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/youth-camp-api/pkg/middleware/requestid"
	"github.com/noah-isme/youth-camp-api/pkg/storage"
)

// @title Youth Camp API
// @version 1.0.0
// @description Registration, T-shirt orders and admin back-office for the youth leadership camp
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := app.New(cfg, logr)
	if err != nil {
		logr.Fatal("failed to build services", zap.Error(err))
	}
	defer c.Close() //nolint:errcheck

	store, err := storage.NewLocalStorage(cfg.Print.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare print storage", zap.Error(err))
	}
	printSvc := service.NewPrintService(
		c.Registrations,
		store,
		storage.NewSigner(cfg.Print.SignedURLSecret, cfg.Print.SignedURLTTL),
		nil,
		c.Metrics,
		logr,
		service.PrintServiceConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Print.SignedURLTTL, CleanupInterval: cfg.Print.CleanupInterval},
	)
	printQueue := jobs.NewQueue("print-batches", printSvc.Handle, jobs.Config{
		Workers:    cfg.Print.WorkerConcurrency,
		MaxRetries: cfg.Print.WorkerRetries,
		RetryDelay: 2 * time.Second,
		OnGiveUp:   printSvc.GiveUp,
		Logger:     logr,
	})
	printSvc.AttachQueue(printQueue)
	printQueue.Start(ctx)
	defer printQueue.Stop()
	printSvc.StartCleanup(ctx)

	deps := map[string]handler.Pinger{"postgres": c.DB}
	if c.Redis != nil {
		deps["redis"] = app.RedisPinger{Client: c.Redis}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(c.Metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(c.Metrics, deps)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), c, printSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func registerRoutes(api *gin.RouterGroup, c *app.Container, printSvc *service.PrintService) {
	registrations := handler.NewRegistrationHandler(c.Registrations, c.Exports)
	editions := handler.NewEditionHandler(c.Editions)
	orders := handler.NewTShirtOrderHandler(c.Orders, c.Reconciler, c.Exports, c.Config.Reconcile.MaxUploadBytes)
	prints := handler.NewPrintBatchHandler(printSvc)
	auth := handler.NewAuthHandler(c.Auth)

	api.POST("/registrations", registrations.Submit)
	api.POST("/registrations/validate", registrations.ValidateStep)
	api.GET("/registrations/:id", registrations.Get)
	api.GET("/editions/active", editions.GetActive)
	api.POST("/tshirt-orders/lookup", orders.Lookup)
	api.POST("/tshirt-orders", orders.Create)
	api.POST("/auth/login", auth.Login)
	api.GET("/print-batches/download/:token", prints.Download)

	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(c.Users, c.Logger, action, resource)
	}

	api.GET("/auth/me", middleware.JWT(c.Auth), auth.Me)

	admin := api.Group("/admin", middleware.JWT(c.Auth), middleware.RequireRoles(models.RoleAdmin))
	scoped := admin.Group("", middleware.EditionScope(c.Editions))
	{
		scoped.GET("/registrations", registrations.List)
		scoped.GET("/registrations/stats", registrations.Stats)
		scoped.GET("/registrations/export", registrations.Export)
		scoped.GET("/tshirt-orders", orders.List)
		scoped.GET("/tshirt-orders/export", orders.Export)
		scoped.POST("/tshirt-orders/reconcile", audit(models.AuditActionOrderReconcile, "tshirt_order"), orders.Reconcile)
		scoped.POST("/print-batches", audit(models.AuditActionPrintBatchCreate, "print_batch"), prints.Create)
	}

	admin.PATCH("/registrations/:id/status", audit(models.AuditActionRegistrationStatusUpdate, "registration"), registrations.UpdateStatus)

	admin.GET("/editions", editions.List)
	admin.POST("/editions", audit(models.AuditActionEditionCreate, "edition"), editions.Create)
	admin.PUT("/editions/:id", audit(models.AuditActionEditionUpdate, "edition"), editions.Update)
	admin.POST("/editions/:id/activate", audit(models.AuditActionEditionActivate, "edition"), editions.Activate)
	admin.POST("/editions/:id/deactivate", audit(models.AuditActionEditionDeactivate, "edition"), editions.Deactivate)
	admin.DELETE("/editions/:id", audit(models.AuditActionEditionDelete, "edition"), editions.Delete)

	admin.POST("/tshirt-orders/:id/verify", audit(models.AuditActionOrderVerify, "tshirt_order"), orders.Verify)
	admin.POST("/tshirt-orders/:id/cancel", audit(models.AuditActionOrderCancel, "tshirt_order"), orders.Cancel)
	admin.GET("/print-batches/:id", prints.Status)
}
