package handler

import (
	"net/http"

	apperrors "roomallot/pkg/errors"
	httputil "roomallot/pkg/http"
	"roomallot/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type HealthResponse struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms,omitempty"`
}

type HealthHandler struct {
	roomCount int
	log       *logger.Logger
}

func NewHealthHandler(roomCount int, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		roomCount: roomCount,
		log:       log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

// Ready reports the ledger's configured room count. A ledger without rooms
// cannot take bookings and answers 503.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.roomCount <= 0 {
		h.log.Warn("Readiness check failed", "room_count", h.roomCount)
		if err := httputil.WriteError(w, apperrors.Unavailable("Booking ledger")); err != nil {
			h.log.Error("failed to write error response", "handler", "Ready", "operation", "WriteError", "error", err)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ready",
		Rooms:  h.roomCount,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
