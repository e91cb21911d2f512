package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/config"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/bootstrap"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/cache"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/history"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/inventory"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/kafka"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/payment"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/pricing"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/repository"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/service/booking"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/service/flights"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	fareCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.FareCacheTTL())
	defer fareCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	archiveRepo := repository.NewArchiveRepository(pool)

	recorder := history.NewRecorder(historyRepo, fareCache, logger)
	inv := inventory.New(flightRepo, recorder, logger)
	gateway := payment.NewSimulator(cfg.Booking.PaymentFailureRate, time.Now().UnixNano())

	refund := pricing.DefaultRefundPolicy
	if len(cfg.Booking.RefundSteps) > 0 {
		refund = pricing.StepRefundPolicy(cfg.Booking.RefundSteps)
	}

	flightService := flights.NewFlightService(flightRepo, historyRepo, inv, recorder, fareCache, logger)
	bookingService := booking.NewBookingService(
		inv,
		bookingRepo,
		paymentRepo,
		archiveRepo,
		gateway,
		producer,
		refund,
		cfg.Kafka.BookingTopic,
		cfg.Booking.PaymentTimeout(),
		logger,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	// The reaper runs in this process on purpose: it shares inv with the
	// API handlers, so expiry and cancellation contend on the same
	// per-flight locks as reservations.
	go runExpirySweep(ctx, cfg.Worker.SweepInterval(), bookingService, logger)

	logger.Info("starting http server", zap.String("address", cfg.HTTP.Address))
	if err := bootstrap.Run(ctx, cfg, logger, flightService, bookingService); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runExpirySweep(ctx context.Context, interval time.Duration, svc *booking.BookingService, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			expired, err := svc.ExpirePendingPayments(ctx)
			if err != nil {
				logger.Error("expire sweep failed", zap.Error(err))
				continue
			}
			if len(expired) > 0 {
				logger.Info("expired pending bookings", zap.Int("count", len(expired)))
			}
		case <-ctx.Done():
			return
		}
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
