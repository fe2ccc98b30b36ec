package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"roomallot/internal/rooms/events"
	"roomallot/internal/rooms/service"
	apperrors "roomallot/pkg/errors"
	httputil "roomallot/pkg/http"
	"roomallot/pkg/logger"
	"roomallot/pkg/middleware"
	"roomallot/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityResponse struct {
	RoomNumber int    `json:"room_number"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Available  bool   `json:"available"`
}

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Book(h.eventContext(r), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings := h.service.List(r.Context())

	if err := httputil.WriteList(w, bookings, len(bookings)); err != nil {
		h.log.Error("failed to write list response", "handler", "GetAll", "operation", "WriteList", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	index, err := httputil.ExtractInt(ps.ByName("index"), "index")
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Update(h.eventContext(r), index, &req)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := httputil.ExtractInt(ps.ByName("room"), "room")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	start, end, err := httputil.ExtractTimeRange(r)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	available, err := h.service.IsAvailable(r.Context(), room, start, end)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, AvailabilityResponse{
		RoomNumber: room,
		StartTime:  r.URL.Query().Get("start_time"),
		EndTime:    r.URL.Query().Get("end_time"),
		Available:  available,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Schedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := httputil.ExtractInt(ps.ByName("room"), "room")
	if err != nil {
		h.writeError(w, "Schedule", err)
		return
	}

	slots, err := h.service.RoomSchedule(r.Context(), room)
	if err != nil {
		h.writeError(w, "Schedule", err)
		return
	}

	if err := httputil.WriteList(w, slots, len(slots)); err != nil {
		h.log.Error("failed to write list response", "handler", "Schedule", "operation", "WriteList", "error", err)
	}
}

func (h *BookingHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.Stats(r.Context())); err != nil {
		h.log.Error("failed to write success response", "handler", "Stats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetAll)
	router.PUT("/api/v1/bookings/index/:index", h.Update)
	router.GET("/api/v1/rooms/:room/availability", h.Availability)
	router.GET("/api/v1/rooms/:room/schedule", h.Schedule)
	router.GET("/api/v1/stats", h.Stats)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

// eventContext carries the request ID into published booking events.
func (h *BookingHandler) eventContext(r *http.Request) context.Context {
	ctx := r.Context()
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		ctx = events.WithCorrelationID(ctx, id)
	}
	return ctx
}
