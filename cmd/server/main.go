package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/celebook/service-booking/internal/application"
	"github.com/celebook/service-booking/internal/config"
	bookingDomain "github.com/celebook/service-booking/internal/domain/booking"
	bookingEvents "github.com/celebook/service-booking/internal/events"
	"github.com/celebook/service-booking/internal/gateway"
	"github.com/celebook/service-booking/internal/handler"
	"github.com/celebook/service-booking/internal/pkg/auth"
	"github.com/celebook/service-booking/internal/pkg/database"
	"github.com/celebook/service-booking/internal/pkg/domain"
	"github.com/celebook/service-booking/internal/pkg/health"
	"github.com/celebook/service-booking/internal/pkg/kafka"
	"github.com/celebook/service-booking/internal/pkg/logger"
	"github.com/celebook/service-booking/internal/pkg/middleware"
	"github.com/celebook/service-booking/internal/pkg/scheduler"
	"github.com/celebook/service-booking/internal/repository"
)

const serviceName = "service-booking"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.CelebrityModel{},
			&repository.ServicePackageModel{},
			&repository.UserModel{},
			&repository.ReviewModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), cfg.MigrationsDir, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.AccessTTL,
		cfg.JWTConfig.RefreshTTL,
	)

	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	bookingRepo := repository.NewGormBookingRepository(db)
	profileRepo := repository.NewGormCelebrityRepository(db)
	packageRepo := repository.NewGormServicePackageRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)

	pricing := bookingDomain.NewFlatFeePricing(cfg.PaymentConfig.ServiceFeeBps, domain.CurrencyNGN)
	loc := cfg.Location()

	// Without a secret key, bookings are created without verifying the payment.
	var verifier application.PaymentVerifier
	if cfg.PaymentConfig.PaystackSecretKey != "" {
		verifier = gateway.NewPaystackVerifier(
			cfg.PaymentConfig.PaystackBaseURL,
			cfg.PaymentConfig.PaystackSecretKey,
			cfg.PaymentConfig.GatewayTimeout,
			log,
		)
	} else {
		log.Warn("paystack secret key not set, payment verification disabled")
	}
	refunds := gateway.NewPayoutReversalClient(
		cfg.PaymentConfig.PayoutFunctionURL,
		cfg.PaymentConfig.PayoutAPIKey,
		cfg.PaymentConfig.GatewayTimeout,
		log,
	)

	bookingService := application.NewBookingService(application.BookingServiceDeps{
		Bookings:  bookingRepo,
		Profiles:  profileRepo,
		Packages:  packageRepo,
		Users:     userRepo,
		Reviews:   reviewRepo,
		Pricing:   pricing,
		Verifier:  verifier,
		Refunds:   refunds,
		Publisher: kafkaProducer,
		Location:  loc,
	}, log)
	sweepService := application.NewSweepService(bookingRepo, kafkaProducer, loc, log)
	catalogService := application.NewCatalogService(profileRepo, packageRepo, reviewRepo, pricing, log)
	userService := application.NewUserService(userRepo, log)
	receiptService := application.NewReceiptService(bookingService, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// The sweep lock lives in Redis when replicas share it.
	var locker scheduler.Locker
	if cfg.RedisConfig.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer func() { _ = redisClient.Close() }()
		locker = scheduler.NewRedisLocker(redisClient)
	} else {
		locker = scheduler.NewLocalLocker()
	}

	sched := scheduler.New(loc, locker, log, cfg.SweepConfig.Timeout)
	if cfg.SweepConfig.Enabled {
		err := sched.Register("booking-sweep", cfg.SweepConfig.Schedule, func(ctx context.Context) error {
			_, err := sweepService.Run(ctx)
			return err
		})
		if err != nil {
			log.Fatal("failed to schedule booking sweep", zap.Error(err))
		}
	}
	sched.Start()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins...))
	router.Use(middleware.SecurityHeadersMiddleware())

	health.NewHandler(db, serviceName).RegisterRoutes(router)

	api := &router.RouterGroup
	handler.NewBookingHandler(bookingService, receiptService).RegisterRoutes(api, jwtManager, userService)
	handler.NewCelebrityHandler(catalogService, bookingService).RegisterRoutes(api, jwtManager, userService)
	handler.NewAdminHandler(bookingService, sweepService, userService).RegisterRoutes(api, jwtManager, userService)
	handler.NewUserHandler(userService).RegisterRoutes(api, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// A sweep in progress is cancelled and awaited.
	sched.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
