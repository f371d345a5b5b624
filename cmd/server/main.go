// @title DocTrack API
// @version 1.0
// @description Backend API for the customer document tracking dashboard
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @contact.email support@example.com
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doctrack-be/config"
	"doctrack-be/internal/database"
	"doctrack-be/internal/handlers"
	"doctrack-be/internal/middleware"
	"doctrack-be/internal/notify"
	"doctrack-be/internal/repository"
	"doctrack-be/internal/services"
	"doctrack-be/internal/view"

	"github.com/gin-gonic/gin"

	_ "doctrack-be/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to Postgres
	db, err := database.NewPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("Failed to connect to Postgres:", err)
	}
	defer db.Close()

	// Change notifications: in-process broadcaster plus the Redis bridge so
	// writes on other instances also refresh local views.
	broadcaster := notify.NewBroadcaster()
	listener, err := notify.NewRedisListener(cfg.RedisAddr, cfg.RedisPassword, broadcaster)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer listener.Close()

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db.DB)
	documentRepo := repository.NewDocumentRepository(db.DB)
	statsRepo := repository.NewStatsRepository(db.DB)
	settingsRepo := repository.NewSettingsRepository(db.DB)
	userRepo := repository.NewUserRepository(db.DB)

	// Initialize services
	storage, err := services.NewStorageService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatal("Failed to init storage:", err)
	}
	automation := services.NewAutomationService(cfg.AutomationSecret)

	// Per-user views over the customer table and document listings
	registry := view.NewRegistry(
		func() *view.CustomerView {
			return view.NewCustomerView(customerRepo.GetActive, broadcaster, view.DefaultRefreshInterval)
		},
		func() *view.DocumentBrowser {
			return view.NewDocumentBrowser(documentRepo.GetPage)
		},
	)
	defer registry.Close()

	settingsState := view.NewSettingsState(settingsRepo.Get)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, userRepo)
	dashboardHandler := handlers.NewDashboardHandler(registry)
	customerHandler := handlers.NewCustomerHandler(customerRepo, listener)
	documentHandler := handlers.NewDocumentHandler(registry, documentRepo, storage)
	statsHandler := handlers.NewStatsHandler(statsRepo, settingsState)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo, listener)
	userHandler := handlers.NewUserHandler(userRepo)
	automationHandler := handlers.NewAutomationHandler(automation, settingsRepo, listener)

	// Background snapshot worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	services.StartSnapshotWorker(workerCtx, cfg.SnapshotInterval, customerRepo, statsRepo, settingsRepo, listener)

	// Initialize Gin
	r := gin.Default()

	// Apply CORS middleware
	r.Use(middleware.CORS(cfg))

	// Public routes
	public := r.Group("/api")
	{
		// Health check
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"message": "DocTrack API is running",
			})
		})

		// Auth routes
		auth := public.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/reset-request", authHandler.ResetRequest)
			auth.POST("/reset-confirm", authHandler.ResetConfirm)
		}
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		// Auth protected routes
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.GetMe)
		protected.PUT("/auth/password", authHandler.UpdatePassword)

		// Dashboard view
		protected.GET("/dashboard/customers", dashboardHandler.GetCustomers)
		protected.POST("/dashboard/search", dashboardHandler.Search)
		protected.POST("/dashboard/sort", dashboardHandler.Sort)
		protected.POST("/dashboard/page", dashboardHandler.Page)
		protected.POST("/dashboard/refresh", dashboardHandler.Refresh)
		protected.DELETE("/dashboard/error", dashboardHandler.DismissError)

		// Customer lookups and the document browser
		protected.GET("/customers/suggestions", customerHandler.Suggest)
		protected.GET("/customers/:id", customerHandler.GetCustomer)
		protected.GET("/customers/:id/documents", documentHandler.Open)
		protected.POST("/customers/:id/documents/filter", documentHandler.Filter)
		protected.GET("/documents/:docId/download", documentHandler.Download)

		// Stats and trend metrics
		protected.GET("/stats/latest", statsHandler.GetLatest)
		protected.GET("/stats/history", statsHandler.GetHistory)
		protected.GET("/stats/trend", statsHandler.GetTrend)

		// Settings (read) and own role
		protected.GET("/settings", settingsHandler.GetSettings)
		protected.GET("/users/me/role", userHandler.GetMyRole)

		// Automation trigger
		protected.POST("/automation/trigger", automationHandler.Trigger)
	}

	// Admin-only routes
	admin := protected.Group("")
	admin.Use(middleware.AdminOnly(func(c *gin.Context, userID, role string) bool {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		return userRepo.HasRole(ctx, userID, role)
	}))
	{
		admin.GET("/customers", customerHandler.ListCustomers)
		admin.POST("/customers", customerHandler.CreateCustomer)
		admin.PUT("/customers/:id", customerHandler.UpdateCustomer)
		admin.DELETE("/customers/:id", customerHandler.DeleteCustomer)

		admin.PUT("/settings", settingsHandler.UpdateSettings)

		admin.GET("/users", userHandler.ListUsers)
		admin.PUT("/users/:id/role", userHandler.AssignRole)
	}

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopWorker()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown:", err)
	}
}
