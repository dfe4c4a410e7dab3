package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubhub/campusbooking/config"
	"github.com/clubhub/campusbooking/internal/bootstrap"
	"github.com/clubhub/campusbooking/internal/cache"
	"github.com/clubhub/campusbooking/internal/kafka"
	"github.com/clubhub/campusbooking/internal/repository"
	"github.com/clubhub/campusbooking/internal/service/analytics"
	"github.com/clubhub/campusbooking/internal/service/booking"
	"github.com/clubhub/campusbooking/internal/service/resources"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.CatalogCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	resourceRepo := repository.NewResourceRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	maintenanceRepo := repository.NewMaintenanceRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)

	resourceService := resources.NewResourceService(resourceRepo, bookingRepo, maintenanceRepo, membershipRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		resourceRepo,
		membershipRepo,
		resourceService,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Booking.CreateLockTTL)*time.Second,
		time.Duration(cfg.Booking.CheckInGraceMins)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithReminderHorizon(time.Duration(cfg.Worker.ReminderHorizonHours)*time.Hour),
	)
	analyticsService := analytics.NewAnalyticsService(analyticsRepo, cfg.Analytics)

	if err := bootstrap.Run(ctx, cfg, resourceService, bookingService, analyticsService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
