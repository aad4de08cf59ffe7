package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/aw-admin-api/api/swagger"
	"github.com/noah-isme/aw-admin-api/internal/handler"
	internalmiddleware "github.com/noah-isme/aw-admin-api/internal/middleware"
	"github.com/noah-isme/aw-admin-api/internal/repository"
	"github.com/noah-isme/aw-admin-api/internal/service"
	"github.com/noah-isme/aw-admin-api/pkg/config"
	"github.com/noah-isme/aw-admin-api/pkg/database"
	"github.com/noah-isme/aw-admin-api/pkg/events"
	"github.com/noah-isme/aw-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/aw-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/aw-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/aw-admin-api/pkg/ratelimit"
)

// @title AW Admin API
// @version 1.0.0
// @description Staff directory and blog administration backend
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.New(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	secret, err := service.ResolveSecret(cfg, logr)
	if err != nil {
		logr.Fatal("failed to resolve token secret", zap.Error(err))
	}

	redisClient, err := ratelimit.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, login rate limiting disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metricsSvc := service.NewMetricsService()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Exchange, cfg.Events.PublishTimeout, logr)
		if err != nil {
			logr.Warn("event broker unavailable, events will be dropped", zap.Error(err))
		} else {
			publisher = events.NewAsyncPublisher(context.Background(), amqpPublisher, events.AsyncConfig{
				Workers:     cfg.Events.Workers,
				Buffer:      cfg.Events.Buffer,
				MaxAttempts: cfg.Events.MaxAttempts,
				OnDrop: func(event events.Event, err error) {
					metricsSvc.RecordEventDropped(event.Name)
				},
			}, logr)
		}
	}
	defer publisher.Close() //nolint:errcheck

	validate := validator.New()
	txManager := database.NewTxManager(db)

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	authorRepo := repository.NewAuthorRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	refs := service.NewReferenceValidator(repository.NewReferenceRepository(db))

	hasher := service.NewPasswordHasher(cfg.JWT.BcryptCost)
	tokens := service.NewTokenService(secret, cfg.JWT.Expiration)
	guard := service.NewAccessGuard(tokens, userRepo, metricsSvc, logr)
	notifier := service.NewNotifier(publisher, metricsSvc, logr)

	authSvc := service.NewAuthService(userRepo, tokens, hasher, validate, logr)
	userSvc := service.NewUserService(userRepo, refs, txManager, hasher, notifier, metricsSvc, validate, logr, cfg.Users.CreateRetries)
	exportSvc := service.NewExportService(userRepo, logr)
	roleSvc := service.NewRoleService(roleRepo, userRepo, refs, txManager, validate, logr)
	departmentSvc := service.NewDepartmentService(departmentRepo, userRepo, refs, txManager, validate, logr)
	authorSvc := service.NewAuthorService(authorRepo, blogRepo, refs, txManager, validate, logr)
	categorySvc := service.NewCategoryService(categoryRepo, blogRepo, refs, txManager, validate, logr)
	blogSvc := service.NewBlogService(blogRepo, refs, txManager, notifier, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc, exportSvc)
	roleHandler := handler.NewRoleHandler(roleSvc)
	departmentHandler := handler.NewDepartmentHandler(departmentSvc)
	authorHandler := handler.NewAuthorHandler(authorSvc)
	categoryHandler := handler.NewCategoryHandler(categorySvc)
	blogHandler := handler.NewBlogHandler(blogSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	loginLimiter := ratelimit.NewTokenBucket(cfg.RateLimit, redisClient, logr)

	probeRoutes := []string{"/health", "/ready", "/metrics"}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, probeRoutes...))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, probeRoutes...))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authenticated := internalmiddleware.Authenticate(guard)
	adminOnly := internalmiddleware.RequireRoles(guard, cfg.Access.AdminRoles...)
	editors := internalmiddleware.RequireRoles(guard, cfg.Access.EditorRoles...)
	audit := func(resource string) gin.HandlerFunc { return internalmiddleware.Audit(logr, resource) }

	auth := api.Group("/auth")
	auth.POST("/login", loginLimiter.Middleware(), authHandler.Login)
	auth.GET("/me", authenticated, authHandler.Me)
	auth.POST("/change-password", authenticated, audit("password"), authHandler.ChangePassword)

	api.GET("/internal/metrics", authenticated, adminOnly, metricsHandler.Summary)

	users := api.Group("/users", authenticated, audit("users"))
	users.GET("", userHandler.List)
	users.GET("/export", adminOnly, userHandler.Export)
	users.GET("/:id", userHandler.Get)
	users.POST("", adminOnly, userHandler.Create)
	users.PUT("/:id", adminOnly, userHandler.Update)

	roles := api.Group("/roles", authenticated, audit("roles"))
	roles.GET("", roleHandler.List)
	roles.GET("/:id", roleHandler.Get)
	roles.POST("", adminOnly, roleHandler.Create)
	roles.PUT("/:id", adminOnly, roleHandler.Update)
	roles.DELETE("/:id", adminOnly, roleHandler.Delete)

	departments := api.Group("/departments", authenticated, audit("departments"))
	departments.GET("", departmentHandler.List)
	departments.GET("/:id", departmentHandler.Get)
	departments.POST("", adminOnly, departmentHandler.Create)
	departments.PUT("/:id", adminOnly, departmentHandler.Update)
	departments.DELETE("/:id", adminOnly, departmentHandler.Delete)

	authors := api.Group("/authors")
	authors.GET("", authorHandler.List)
	authors.GET("/:id", authorHandler.Get)
	authors.POST("", authenticated, editors, audit("authors"), authorHandler.Create)
	authors.PUT("/:id", authenticated, editors, audit("authors"), authorHandler.Update)
	authors.DELETE("/:id", authenticated, editors, audit("authors"), authorHandler.Delete)

	categories := api.Group("/categories")
	categories.GET("", categoryHandler.List)
	categories.GET("/:id", categoryHandler.Get)
	categories.POST("", authenticated, editors, audit("categories"), categoryHandler.Create)
	categories.PUT("/:id", authenticated, editors, audit("categories"), categoryHandler.Update)
	categories.DELETE("/:id", authenticated, editors, audit("categories"), categoryHandler.Delete)

	blogs := api.Group("/blogs")
	blogs.GET("", blogHandler.List)
	blogs.GET("/:slug", blogHandler.Get)
	blogs.POST("", authenticated, editors, audit("blogs"), blogHandler.Create)
	blogs.PUT("/:slug", authenticated, editors, audit("blogs"), blogHandler.Update)
	blogs.DELETE("/:slug", authenticated, editors, audit("blogs"), blogHandler.Delete)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("db_driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
