package main

import (
	"context"
	"os"
	"time"

	"roomallot/internal/rooms/events"
	"roomallot/internal/rooms/ledger"
	"roomallot/internal/rooms/service"
	"roomallot/internal/rooms/shell"
	"roomallot/internal/rooms/validator"
	"roomallot/pkg/config"
)

const ServiceName = "rooms"

func main() {
	cfg := config.LoadCLI(ServiceName, os.Stderr)

	bookingService := service.NewBookingService(
		ledger.New(cfg.RoomCount),
		validator.NewBookingValidator(cfg.Log),
		events.NopPublisher{},
		cfg,
	)

	console := shell.New(bookingService, os.Stdin, os.Stdout, time.Local, cfg.Log)
	if err := console.Run(context.Background()); err != nil {
		cfg.Log.Error("Console stopped", "error", err)
	}
}
