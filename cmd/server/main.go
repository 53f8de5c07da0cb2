package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/app"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/config"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/fare"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/fleet"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/handler"
	internalRedis "github.com/Omar1Ach/EcoRide-Backend-sub001/internal/redis"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository/postgres"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/service"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database driver can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	if err := postgres.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info("connected to Redis")

	server, sweeper := wireServer(db, redisClient, nrApp, cfg, log)

	// Background expiry sweeps run for the server's lifetime.
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweeper.Run(sweepCtx)

	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")
	stopSweeper()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// reservation expiry sweeper.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, log *logrus.Logger) (*http.Server, *service.ExpirySweeper) {
	// Redis stores.
	holdStore := internalRedis.NewHoldStore(redisClient)
	vehicleStore := internalRedis.NewVehicleStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Repositories.
	userRepo := postgres.NewUserRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	walletRepo := postgres.NewWalletRepository(db)
	receiptRepo := postgres.NewReceiptRepository(db)

	// Collaborator boundaries.
	fleetData := fleet.NewSimulatedFleet(vehicleStore)
	distance := fleet.NewSimulatedDistanceSource()
	identity := service.NewRepoIdentity(userRepo)
	gateway := service.NewMockGateway()

	// Services.
	notifications := service.NewNotificationService(log)
	calc := fare.NewCalculator(cfg.Fare.BaseFee, cfg.Fare.PerMinuteRate)
	settlement := service.NewSettlementService(walletRepo, gateway, cfg.Settlement, log)
	receiptBuilder := service.NewReceiptBuilder()
	userService := service.NewUserService(userRepo)
	walletService := service.NewWalletService(walletRepo, identity)
	reservationService := service.NewReservationService(reservationRepo, holdStore, cacheStore, fleetData, identity, notifications, cfg.Reservation)
	tripService := service.NewTripService(tripRepo, reservationRepo, settlement, receiptBuilder, fleetData, distance, cacheStore, notifications, calc, cfg.Fleet.LowBatteryThreshold)
	receiptService := service.NewReceiptService(receiptRepo)
	sweeper := service.NewExpirySweeper(reservationRepo, cfg.Reservation.SweepInterval, log)

	// Handlers.
	userHandler := handler.NewUserHandler(userService)
	walletHandler := handler.NewWalletHandler(walletService)
	reservationHandler := handler.NewReservationHandler(reservationService, tripService)
	tripHandler := handler.NewTripHandler(tripService)
	receiptHandler := handler.NewReceiptHandler(receiptService)
	vehicleHandler := handler.NewVehicleHandler(fleetData, vehicleStore)

	router := app.NewRouter(app.RouterDeps{
		UserHandler:        userHandler,
		WalletHandler:      walletHandler,
		ReservationHandler: reservationHandler,
		TripHandler:        tripHandler,
		ReceiptHandler:     receiptHandler,
		VehicleHandler:     vehicleHandler,
		RedisClient:        redisClient,
		NewRelicApp:        nrApp,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, sweeper
}
