package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"emergency-response-backend/internal/config"
	"emergency-response-backend/internal/database"
	"emergency-response-backend/internal/handler"
	"emergency-response-backend/internal/middleware"
	"emergency-response-backend/internal/realtime"
	"emergency-response-backend/internal/repository"
	"emergency-response-backend/internal/service"
	"emergency-response-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	// 1. Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("GIN_MODE") != "release" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// 2. Load configuration
	cfg := config.LoadConfig()
	logger.Info().Msg("configuration loaded")

	// 3. Initialize JWT utilities with config
	utils.InitJWT(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// 4. Initialize database connection
	db := database.Connect(cfg, logger)

	// 5. Initialize repositories
	hospitalRepo := repository.NewHospitalRepo(db)
	emergencyRepo := repository.NewEmergencyRepo(db)
	ambulanceRepo := repository.NewAmbulanceRepo(db)
	policeRepo := repository.NewPoliceRequestRepo(db)
	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	// 6. Realtime hub
	hub := realtime.NewHub(logger)

	// 7. Initialize services
	authService := service.NewAuthService(userRepo, hospitalRepo, auditRepo)
	hospitalService := service.NewHospitalService(hospitalRepo, auditRepo)
	rankingService := service.NewRankingService(hospitalRepo, ambulanceRepo, cfg.Dispatch)
	emergencyService := service.NewEmergencyService(emergencyRepo, rankingService, hub, cfg.Dispatch.NotifyNearest, logger)
	dispatchService := service.NewDispatchService(emergencyRepo, ambulanceRepo, hospitalRepo, auditRepo, hub, logger)
	ambulanceService := service.NewAmbulanceService(ambulanceRepo, emergencyRepo, hub, logger)
	policeService := service.NewPoliceService(policeRepo, emergencyRepo, hub, logger)
	workerService := service.NewWorkerService(emergencyRepo, ambulanceRepo, emergencyService, cfg.Dispatch, logger)

	// 8. Start background worker in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go workerService.Start(ctx)

	// 9. Setup Gin
	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg))

	// 10. Register handlers
	authHandler := handler.NewAuthHandler(authService)
	emergencyHandler := handler.NewEmergencyHandler(emergencyService, rankingService, ambulanceService)
	hospitalHandler := handler.NewHospitalHandler(hospitalService, emergencyService, dispatchService, ambulanceService, policeService)
	driverHandler := handler.NewDriverHandler(dispatchService, ambulanceService)
	policeHandler := handler.NewPoliceHandler(policeService)
	wsHandler := handler.NewWSHandler(hub, logger)

	// 11. Define routes
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "emergency-response-backend",
		})
	})

	// Public patient intake
	sos := r.Group("/sos")
	{
		sos.POST("/report", emergencyHandler.Report)
		sos.GET("/:code", emergencyHandler.Get)
		sos.GET("/:code/track", emergencyHandler.Track)
	}
	r.POST("/hospitals/rank", emergencyHandler.RankHospitals)
	r.GET("/ws", wsHandler.Serve)

	// Auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/register", middleware.AuthMiddleware(), middleware.RequireRole("admin"), authHandler.Register)
	}

	// Hospital dashboard
	hospital := r.Group("/hospital")
	hospital.Use(middleware.AuthMiddleware(), middleware.RequireRole("hospital"))
	{
		hospital.GET("/emergencies/pending", hospitalHandler.PendingFeed)
		hospital.GET("/emergencies", hospitalHandler.ClaimedEmergencies)
		hospital.POST("/emergencies/:id/claim", hospitalHandler.Claim)
		hospital.POST("/emergencies/:id/dispatch", hospitalHandler.Dispatch)
		hospital.POST("/emergencies/:id/status", hospitalHandler.UpdateStatus)
		hospital.POST("/emergencies/:id/clearance", hospitalHandler.RequestClearance)
		hospital.GET("/ambulances", hospitalHandler.Fleet)
		hospital.POST("/ambulances", hospitalHandler.RegisterAmbulance)
		hospital.PATCH("/beds", hospitalHandler.UpdateBeds)
	}

	// Driver app
	driver := r.Group("/driver")
	driver.Use(middleware.AuthMiddleware(), middleware.RequireRole("driver"))
	{
		driver.GET("/missions", driverHandler.Missions)
		driver.POST("/missions/:id/pickup", driverHandler.Pickup)
		driver.POST("/missions/:id/complete", driverHandler.Complete)
		driver.POST("/location", driverHandler.ReportLocation)
	}

	// Police dashboard
	police := r.Group("/police")
	police.Use(middleware.AuthMiddleware(), middleware.RequireRole("police"))
	{
		police.GET("/requests", policeHandler.OpenRequests)
		police.POST("/requests/:id/acknowledge", policeHandler.Acknowledge)
		police.PATCH("/requests/:id/notes", policeHandler.UpdateNotes)
		police.POST("/requests/:id/clear", policeHandler.Clear)
	}

	// Admin
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	{
		admin.GET("/hospitals", hospitalHandler.ListHospitals)
		admin.POST("/hospitals", hospitalHandler.RegisterHospital)
		admin.DELETE("/hospitals/:id", hospitalHandler.DeactivateHospital)
	}

	// 12. Start server and wait for shutdown signal
	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	cancel()
	logger.Info().Msg("server exited")
}
