package main

import (
	"roomallot/internal/rooms/events"
	"roomallot/internal/rooms/handler"
	"roomallot/internal/rooms/ledger"
	"roomallot/internal/rooms/service"
	"roomallot/internal/rooms/validator"
	"roomallot/pkg/app"
	"roomallot/pkg/config"
	"roomallot/pkg/kafka"
	kafka_middleware "roomallot/pkg/kafka/middleware"
	"roomallot/pkg/metrics"
)

const ServiceName = "rooms-api"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Rooms API service")
	m := metrics.New()
	publisher := initPublisher(cfg)
	bookingService := initServices(cfg, publisher, m)

	serverApp := app.NewApplication(cfg, m)
	serverApp.SetApp(
		handler.NewHealthHandler(cfg.RoomCount, cfg.Log),
		handler.NewBookingHandler(bookingService, cfg.Log),
		publisher,
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher events.Publisher, m *metrics.Metrics) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingLedger := ledger.New(cfg.RoomCount)
	bookingService := service.NewBookingService(
		bookingLedger,
		bookingValidator,
		publisher,
		cfg,
		service.WithMetrics(m),
	)

	cfg.Log.Info("Booking service initialized", "rooms", cfg.RoomCount)
	return bookingService
}

func initPublisher(cfg *config.Config) events.Publisher {
	if cfg.Kafka == nil {
		cfg.Log.Info("Kafka not configured, booking events disabled")
		return events.NopPublisher{}
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.BookingEventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Booking events enabled", "topic", producer.Topic())
	return events.NewKafkaPublisher(producer, ServiceName)
}
