package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubhub/campusbooking/config"
	"github.com/clubhub/campusbooking/internal/cache"
	"github.com/clubhub/campusbooking/internal/kafka"
	"github.com/clubhub/campusbooking/internal/notify"
	"github.com/clubhub/campusbooking/internal/repository"
	"github.com/clubhub/campusbooking/internal/service/booking"
	"github.com/clubhub/campusbooking/internal/service/resources"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.CatalogCacheTTL)*time.Second)

	resourceRepo := repository.NewResourceRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	maintenanceRepo := repository.NewMaintenanceRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)

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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	notifier := notify.NewNotifier()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return notifier.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	reminderTicker := time.NewTicker(time.Duration(cfg.Worker.ReminderSweepMinutes) * time.Minute)
	defer reminderTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-reminderTicker.C:
			reminded, err := bookingService.RemindUpcoming(ctx)
			if err != nil {
				log.Printf("reminder sweep error: %v", err)
				continue
			}
			if reminded > 0 {
				log.Printf("sent %d booking reminders", reminded)
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
