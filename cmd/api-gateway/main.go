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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/drivedesk/drivedesk-api/api/swagger"
	"github.com/drivedesk/drivedesk-api/internal/handler"
	"github.com/drivedesk/drivedesk-api/internal/middleware"
	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/repository"
	"github.com/drivedesk/drivedesk-api/internal/service"
	"github.com/drivedesk/drivedesk-api/pkg/cache"
	"github.com/drivedesk/drivedesk-api/pkg/config"
	"github.com/drivedesk/drivedesk-api/pkg/database"
	"github.com/drivedesk/drivedesk-api/pkg/logger"
	corsmiddleware "github.com/drivedesk/drivedesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/drivedesk/drivedesk-api/pkg/middleware/requestid"
)

// @title DriveDesk API
// @version 0.1.0
// @description Driving school management: cars, bookings, slot availability and amendments
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := database.Migrate(ctx, db); err != nil {
			cancel()
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
		cancel()
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, availability caching disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	userRepo := repository.NewUserRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	carRepo := repository.NewCarRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	licenseRepo := repository.NewLicenseRepository(db)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "drivedesk-api",
	})

	availabilitySvc := service.NewAvailabilityService(sessionRepo, holidayRepo, schoolRepo, carRepo, cacheRepo, service.AvailabilityCacheConfig{
		Enabled: cfg.Availability.CacheEnabled,
		TTL:     cfg.Availability.CacheTTL,
	}, logr)

	schoolSvc := service.NewSchoolService(schoolRepo, availabilitySvc, nil, logr)
	carSvc := service.NewCarService(carRepo, driverRepo, availabilitySvc, nil, logr)
	driverSvc := service.NewDriverService(driverRepo, nil, logr)
	courseSvc := service.NewCourseService(courseRepo, nil, logr)
	customerSvc := service.NewCustomerService(customerRepo, nil, logr)
	bookingSvc := service.NewBookingService(bookingRepo, sessionRepo, courseRepo, customerRepo, carRepo, schoolRepo, holidayRepo, availabilitySvc, nil, logr)
	amendmentSvc := service.NewAmendmentService(bookingRepo, sessionRepo, holidayRepo, schoolRepo, availabilitySvc, nil, logr)
	sessionSvc := service.NewSessionService(sessionRepo, nil, logr)
	holidaySvc := service.NewHolidayService(holidayRepo, carRepo, schoolRepo, availabilitySvc, nil, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, bookingRepo, service.StripeConfig{
		Enabled:    cfg.Payments.Enabled,
		SecretKey:  cfg.Payments.StripeSecretKey,
		Currency:   cfg.Payments.Currency,
		SuccessURL: cfg.Payments.CheckoutSuccessURL,
		CancelURL:  cfg.Payments.CheckoutCancelURL,
	}, nil, logr)
	licenseSvc := service.NewLicenseService(licenseRepo, customerRepo, nil, logr)
	userSvc := service.NewUserService(userRepo, nil, logr)
	reportSvc := service.NewReportService(sessionRepo, carRepo, paymentRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	schoolHandler := handler.NewSchoolHandler(schoolSvc)
	carHandler := handler.NewCarHandler(carSvc)
	driverHandler := handler.NewDriverHandler(driverSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	customerHandler := handler.NewCustomerHandler(customerSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, amendmentSvc, metricsSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	holidayHandler := handler.NewHolidayHandler(holidaySvc, metricsSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	licenseHandler := handler.NewLicenseHandler(licenseSvc)
	userHandler := handler.NewUserHandler(userSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", middleware.Audit(userRepo, models.AuditActionLogin, "auth"), authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), middleware.Audit(userRepo, models.AuditActionLogout, "auth"), authHandler.Logout)
	auth.POST("/change-password", middleware.JWT(authSvc), middleware.Audit(userRepo, models.AuditActionPasswordChange, "auth"), authHandler.ChangePassword)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleManager)
	admin := middleware.RequireRoles(models.RoleAdmin)

	protected.GET("/availability", availabilityHandler.Slots)
	protected.GET("/availability/grid", availabilityHandler.Grid)

	protected.GET("/school", schoolHandler.Get)
	protected.GET("/school/slots", schoolHandler.Slots)
	protected.PUT("/school", admin, middleware.Audit(userRepo, models.AuditActionUpdate, "school"), schoolHandler.Update)

	protected.GET("/cars", carHandler.List)
	protected.GET("/cars/:id", carHandler.Get)
	protected.POST("/cars", staff, carHandler.Create)
	protected.PUT("/cars/:id", staff, carHandler.Update)
	protected.DELETE("/cars/:id", admin, middleware.Audit(userRepo, models.AuditActionDelete, "car"), carHandler.Delete)

	protected.GET("/drivers", driverHandler.List)
	protected.GET("/drivers/:id", driverHandler.Get)
	protected.POST("/drivers", staff, driverHandler.Create)
	protected.PUT("/drivers/:id", staff, driverHandler.Update)
	protected.DELETE("/drivers/:id", admin, middleware.Audit(userRepo, models.AuditActionDelete, "driver"), driverHandler.Delete)

	protected.GET("/courses", courseHandler.List)
	protected.GET("/courses/:id", courseHandler.Get)
	protected.POST("/courses", staff, courseHandler.Create)
	protected.PUT("/courses/:id", staff, courseHandler.Update)
	protected.DELETE("/courses/:id", admin, middleware.Audit(userRepo, models.AuditActionDelete, "course"), courseHandler.Delete)

	protected.GET("/customers", customerHandler.List)
	protected.GET("/customers/:id", customerHandler.Get)
	protected.POST("/customers", staff, customerHandler.Create)
	protected.PUT("/customers/:id", staff, customerHandler.Update)

	protected.GET("/bookings", bookingHandler.List)
	protected.GET("/bookings/:id", bookingHandler.Get)
	protected.POST("/bookings", staff, middleware.Audit(userRepo, models.AuditActionCreate, "booking"), bookingHandler.Create)
	protected.POST("/bookings/:id/amendments", staff, middleware.Audit(userRepo, models.AuditActionAmend, "booking"), bookingHandler.Amend)
	protected.POST("/bookings/:id/complete", staff, bookingHandler.Complete)

	protected.GET("/sessions", sessionHandler.DaySheet)
	protected.PATCH("/sessions/:id/attendance", sessionHandler.MarkAttendance)

	protected.GET("/holidays", holidayHandler.List)
	protected.POST("/holidays", staff, middleware.Audit(userRepo, models.AuditActionCreate, "holiday"), holidayHandler.Declare)

	protected.GET("/payments", staff, paymentHandler.List)
	protected.POST("/payments", staff, paymentHandler.Record)
	protected.POST("/payments/checkout", staff, paymentHandler.Checkout)
	protected.POST("/payments/checkout/:sessionId/settle", staff, paymentHandler.Settle)

	if cfg.Licenses.Enabled {
		protected.GET("/licenses", licenseHandler.List)
		protected.GET("/licenses/:id", licenseHandler.Get)
		protected.POST("/licenses", staff, licenseHandler.Create)
		protected.PATCH("/licenses/:id/stage", staff, licenseHandler.AdvanceStage)
	}

	if cfg.Reports.Enabled {
		protected.GET("/reports/day-sheet", reportHandler.DaySheet)
		protected.GET("/reports/payments", staff, reportHandler.PaymentsCSV)
	}

	protected.GET("/users", admin, userHandler.List)
	protected.GET("/users/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)
	protected.POST("/users", admin, middleware.Audit(userRepo, models.AuditActionCreate, "user"), userHandler.Create)
	protected.PUT("/users/:id", admin, middleware.Audit(userRepo, models.AuditActionUpdate, "user"), userHandler.Update)

	protected.GET("/metrics/summary", admin, metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
}
