package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-booking/internal/auth"
	"ms-booking/internal/booking"
	booking_api "ms-booking/internal/booking/api"
	bookingdb "ms-booking/internal/booking/db"
	bookingredis "ms-booking/internal/booking/redis"
	"ms-booking/internal/config"
	"ms-booking/internal/database/migrations"
	"ms-booking/internal/inventory"
	inventorydb "ms-booking/internal/inventory/db"
	"ms-booking/internal/kafka"
	"ms-booking/internal/logger"
	"ms-booking/internal/schedule"
	"ms-booking/internal/sweeper"
	"ms-booking/internal/tickets"
	"ms-booking/internal/tickets/qr"
	"ms-booking/internal/trips"
	trips_api "ms-booking/internal/trips/api"
	tripsdb "ms-booking/internal/trips/db"
	"ms-booking/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- PostgreSQL ---
	sqldb, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres: %v", err))
	}
	defer sqldb.Close()

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	log.Info("DATABASE", "Connected to Postgres")

	if cfg.Migrations.Auto {
		runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
			MigrationsDir: cfg.Migrations.Dir,
			AutoMigrate:   true,
		})
		if err := runner.MigrateUp(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		log.Info("DATABASE", "Migrations applied")
	}

	// --- Redis ---
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	defer redisClient.Close()
	log.Info("REDIS", "Connected to Redis")

	// --- Kafka ---
	var producer *kafka.Producer
	var paymentConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		topics := []string{
			cfg.Kafka.Topics.BookingCreated,
			cfg.Kafka.Topics.BookingConfirmed,
			cfg.Kafka.Topics.BookingCancelled,
			cfg.Kafka.Topics.BookingExpired,
			cfg.Kafka.Topics.TripCreated,
			cfg.Kafka.Topics.PaymentSuccess,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic setup failed: %v", err))
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
		defer producer.Close()
		paymentConsumer = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.PaymentSuccess, cfg.Kafka.GroupID)
		defer paymentConsumer.Close()
		log.Info("KAFKA", fmt.Sprintf("Kafka connected: %v", cfg.Kafka.Brokers))
	} else {
		log.Warn("KAFKA", "Kafka disabled, events will not be published")
	}

	// --- Wiring ---
	inventoryService := inventory.NewService(&inventorydb.DB{Bun: bunDB}, log)
	detector := schedule.NewDetector(&schedule.DB{Bun: bunDB}, log)
	tripDB := &tripsdb.DB{Bun: bunDB}
	bookingDB := &bookingdb.DB{Bun: bunDB}
	guard := bookingredis.NewGuard(redisClient, cfg.Booking.HoldTTL)
	issuer := tickets.NewIssuer(bookingDB, qr.NewQRGenerator(os.Getenv("QR_SECRET_KEY")), log)

	// Leave the publisher interfaces nil when Kafka is disabled; a typed
	// nil *Producer would defeat the services' nil checks.
	var tripPublisher trips.KafkaPublisher
	var bookingPublisher booking.KafkaPublisher
	var expiryPublisher sweeper.EventPublisher
	if producer != nil {
		tripPublisher = producer
		bookingPublisher = producer
		expiryPublisher = producer
	}

	tripService := trips.NewService(tripDB, detector, inventoryService, bookingDB, tripPublisher, log)
	bookingService := booking.NewService(bookingDB, tripDB, guard, inventoryService, issuer, bookingPublisher, cfg.Booking.HoldTTL, log)

	// --- Background workers ---
	sweep := sweeper.NewSweeper(bookingDB, inventoryService, expiryPublisher, cfg.Booking.SweepInterval, log)
	go sweep.Run(ctx)

	if paymentConsumer != nil {
		go paymentConsumer.Start(ctx, func(event kafka.PaymentSuccessEvent) {
			if _, _, err := bookingService.ConfirmPayment(event.BookingID); err != nil {
				log.Error("KAFKA", fmt.Sprintf("payment event for booking %s: %v", event.BookingID, err))
			}
		})
	}

	// --- Router ---
	tripHandler := trips_api.NewHandler(tripService, log)
	bookingHandler := booking_api.NewHandler(bookingService, log)

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(utils.SuccessResponse("booking service is up", nil))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/trips", func(r chi.Router) {
			r.Post("/", tripHandler.CreateTrip)
			r.Get("/{tripId}", tripHandler.GetTrip)
			r.Put("/{tripId}/schedule", tripHandler.RescheduleTrip)
			r.Put("/{tripId}/status", tripHandler.UpdateTripStatus)
			r.Delete("/{tripId}", tripHandler.DeleteTrip)
			r.Get("/{tripId}/seats", tripHandler.GetSeatMap)
			r.Get("/{tripId}/availability", tripHandler.GetAvailability)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(auth.OptionalMiddleware())
			r.Post("/", bookingHandler.CreateBooking)
			r.Get("/{bookingId}", bookingHandler.GetBooking)
			r.Post("/{bookingId}/payment", bookingHandler.ConfirmPayment)
			r.Delete("/{bookingId}", bookingHandler.CancelBooking)
			r.Get("/{bookingId}/passes", bookingHandler.GetBoardingPasses)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(auth.Middleware())
			r.Get("/{userId}/bookings", bookingHandler.GetUserBookings)
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Booking service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("SERVER", "Shutdown signal received, cleaning up...")

	cancel() // stops the sweeper and the payment consumer

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("SERVER", fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	log.Info("SERVER", "Server exited gracefully")
}
