// main.go
package main

import (
	"context"
	"log"

	"seat-reservation/cmd"
	"seat-reservation/internal/bus"
	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/scheduler"
	"seat-reservation/internal/usecase"
	"seat-reservation/internal/wire"
	"seat-reservation/pkg/database"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	repos := repository.NewRepository(db, logger)

	ctx := context.Background()
	if err := seedSeats(ctx, repos, logger); err != nil {
		logger.Fatal("Failed to seed seats", zap.Error(err))
	}

	// Temporal scheduler for booking lifecycle timers
	sched := scheduler.New(logger)
	defer sched.Shutdown()

	// MQTT link to the seat hardware
	mqttClient, err := bus.Connect(config.MQTT, logger)
	if err != nil {
		logger.Fatal("Failed to connect to MQTT broker", zap.Error(err))
	}
	defer mqttClient.Disconnect()

	service := usecase.NewService(repos, sched, mqttClient, config, logger)

	// Re-arm timers for bookings that survived the restart before any
	// hardware events can arrive.
	if err := service.Lifecycle.Recover(ctx); err != nil {
		logger.Fatal("Recovery failed", zap.Error(err))
	}

	// Inbound hardware events: queued, drained by one goroutine
	dispatcher := bus.NewDispatcher(
		bus.PresenceHandler(service.Seat, logger),
		bus.CheckinHandler(service.Checkin, logger),
		logger,
	)
	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()
	go dispatcher.Run(dispatchCtx)

	if err := mqttClient.Subscribe(dispatcher.Enqueue); err != nil {
		logger.Fatal("Failed to subscribe to hardware topics", zap.Error(err))
	}

	// Periodic status broadcast and ended-booking sweep
	service.Lifecycle.StartMaintenance(dispatchCtx)

	app := wire.Wiring(service, config, logger)

	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))
	cmd.APIServer(app.Router, config.App.Port)
}

// seedSeats fills an empty seats table with the library's fixed layout.
func seedSeats(ctx context.Context, repos *repository.Repository, logger *zap.Logger) error {
	count, err := repos.Seat.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seats := make([]*entity.Seat, len(entity.DefaultSeatIDs))
	for i, id := range entity.DefaultSeatIDs {
		seats[i] = &entity.Seat{
			SeatID:         id,
			Status:         entity.SeatStatusFree,
			PhysicalStatus: entity.PhysicalStatusFree,
		}
	}
	if err := repos.Seat.CreateBatch(ctx, seats); err != nil {
		return err
	}

	logger.Info("Seeded seat layout", zap.Int("seats", len(seats)))
	return nil
}
