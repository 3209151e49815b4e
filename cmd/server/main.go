// Package main runs the Autostock HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/autostock/backend/config"
	"github.com/autostock/backend/internal/audit"
	"github.com/autostock/backend/internal/auth"
	"github.com/autostock/backend/internal/businesses"
	"github.com/autostock/backend/internal/credentials"
	"github.com/autostock/backend/internal/middleware"
	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/internal/notifications"
	"github.com/autostock/backend/internal/plans"
	"github.com/autostock/backend/internal/products"
	"github.com/autostock/backend/internal/sales"
	"github.com/autostock/backend/internal/users"
	"github.com/autostock/backend/pkg/database"
	"github.com/autostock/backend/pkg/redis"
	"github.com/autostock/backend/pkg/response"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	sink := audit.NewRecorder(rdb.Client, logger)

	// Auth and credentials
	authRepo := auth.NewRepository(pool)
	credRepo := credentials.NewRepository(pool)
	credStore := credentials.NewStore(credRepo, 0)
	provisioner := credentials.NewProvisioner(authRepo, credStore)
	authHandler := auth.NewHandler(authRepo, jwtService, credStore, logger)
	credHandler := credentials.NewHandler(credStore, sink, logger)

	if err := bootstrapSuperAdmin(ctx, cfg.Bootstrap, authRepo, credStore, logger); err != nil {
		logger.Fatal("bootstrap superadmin", zap.Error(err))
	}

	// Tenants and plans
	businessRepo := businesses.NewRepository(pool)
	planRepo := plans.NewRepository(pool)
	planHandler := plans.NewHandler(planRepo, sink)
	businessHandler := businesses.NewHandler(businessRepo, planRepo, provisioner, authRepo, sink, logger)
	userHandler := users.NewHandler(authRepo, provisioner, sink, logger)

	// Catalog and sales
	productRepo := products.NewRepository(pool)
	productHandler := products.NewHandler(productRepo, sink)

	// Notifications
	notifRepo := notifications.NewRepository(pool)
	notifService := notifications.NewService(notifRepo, businessRepo,
		cfg.Notifications.MaxPresentations, cfg.Notifications.JitterMin, cfg.Notifications.JitterMax)
	notifHandler := notifications.NewHandler(notifService, sink)

	saleRepo := sales.NewRepository(pool)
	saleHandler := sales.NewHandler(saleRepo, notifService, sink, logger)

	jwtValidate := func(token string) (uuid.UUID, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, err
		}
		return claims.UserID, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	router.POST("/auth/login", authHandler.Login)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.Auth(jwtValidate, authRepo))
	{
		api.GET("/api/me", authHandler.Me)

		// Superadmin: tenants, plans, admin resets, global metrics
		superadmin := api.Group("/superadmin", middleware.RequireRole(models.RoleSuperAdmin))
		{
			superadmin.GET("/negocios", businessHandler.List)
			superadmin.POST("/negocios", businessHandler.Create)
			superadmin.GET("/negocios/:id", businessHandler.Get)
			superadmin.POST("/negocios/:id/estado", businessHandler.SetState)
			superadmin.GET("/planes", planHandler.List)
			superadmin.POST("/planes", planHandler.Create)
			superadmin.POST("/planes/:id", planHandler.Update)
			superadmin.POST("/reset-password/:user_id", credHandler.ResetAdmin)
			superadmin.GET("/metricas", businessHandler.Metrics)
		}

		// Business admin: catalog, sellers, sales, notifications, seller resets
		negocio := api.Group("/negocio", middleware.RequireRole(models.RoleAdmin))
		{
			negocio.GET("/productos", productHandler.List)
			negocio.POST("/productos", productHandler.Create)
			negocio.POST("/productos/:id", productHandler.Update)
			negocio.POST("/productos/:id/eliminar", productHandler.Delete)
			negocio.GET("/usuarios", userHandler.List)
			negocio.POST("/usuarios", userHandler.Create)
			negocio.POST("/usuarios/:id/estado", userHandler.SetState)
			negocio.GET("/ventas", saleHandler.ListBusiness)
			negocio.POST("/reset-password/:user_id", credHandler.ResetSeller)
			negocio.GET("/api/notificaciones", notifHandler.Poll)
			negocio.GET("/notificaciones", notifHandler.List)
			negocio.POST("/notificaciones/:id/marcar-leida", notifHandler.Acknowledge)
			// serves /notificaciones/marcar-todas-leidas; gin rejects a
			// literal sibling of :id
			negocio.POST("/notificaciones/:id", notifHandler.AcknowledgeAll)
		}

		// Seller: point of sale
		vendedor := api.Group("/vendedor", middleware.RequireRole(models.RoleSeller))
		{
			vendedor.GET("/productos", productHandler.List)
			vendedor.GET("/api/productos/:codigo", productHandler.GetByCode)
			vendedor.POST("/ventas", saleHandler.Register)
			vendedor.GET("/ventas", saleHandler.ListMine)
		}
	}

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

// bootstrapSuperAdmin seeds the first superadmin on an empty users table. The
// password comes from env, is hashed immediately, and is never logged.
func bootstrapSuperAdmin(ctx context.Context, cfg config.BootstrapConfig, repo *auth.Repository, store *credentials.Store, logger *zap.Logger) error {
	count, err := repo.CountAll(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if cfg.SuperAdminPassword == "" {
		logger.Warn("users table empty and SUPERADMIN_PASSWORD unset, skipping bootstrap")
		return nil
	}
	hash, err := store.Hash(cfg.SuperAdminPassword)
	if err != nil {
		return err
	}
	u, err := repo.Create(ctx, cfg.SuperAdminUsername, hash, models.RoleSuperAdmin, nil)
	if err != nil {
		return err
	}
	logger.Info("superadmin bootstrapped", zap.String("user_id", u.ID.String()))
	return nil
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
