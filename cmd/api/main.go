package main

import (
	"fmt"
	"os"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Employee Request & Approval API
// @version         1.0
// @description     Backend for submitting and approving employee administrative requests.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load("configs/.env")

	var logger *zap.Logger
	var err error
	if os.Getenv("GIN_MODE") == "release" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		envOr("DB_USER", "postgres"),
		envOr("DB_PASSWORD", "postgres"),
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_NAME", "postgres"),
		envOr("DB_SSLMODE", "disable"),
	)

	db, err := database.NewConnection(dsn)
	if err != nil {
		logger.Fatal("Database connection failed", zap.Error(err))
	}
	logger.Info("Connected to PostgreSQL")

	// WebSocket hub for decision-event notifications
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	// Repository -> Service -> Handler
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	requestService := service.NewRequestService(service.RequestServiceDeps{
		InCity:   repository.NewRequestRepository[model.InCityTravel](db),
		OutCity:  repository.NewRequestRepository[model.OutOfCityTravel](db),
		Personal: repository.NewRequestRepository[model.PersonalRequest](db),
		Leave:    repository.NewRequestRepository[model.LeaveRequest](db),
		Audits:   auditRepo,
		Tx:       txManager,
		Hub:      wsHub,
		Logger:   logger,
	})
	userService := service.NewUserService(userRepo, logger)
	auditService := service.NewAuditService(auditRepo)

	requestHandler := handler.NewRequestHandler(requestService)
	userHandler := handler.NewUserHandler(userService)
	auditHandler := handler.NewAuditHandler(auditService)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	public := router.Group("")
	api := router.Group("", middleware.Authenticate(userRepo))

	userHandler.RegisterRoutes(public, api)
	requestHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := envOr("PORT", "8080")
	logger.Info("Server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
