package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Pk1316/slot-swapper-backend/errors"
	"github.com/Pk1316/slot-swapper-backend/notify"
	"github.com/Pk1316/slot-swapper-backend/services"
)

// Server wires the JSON API in front of the core services. Transport
// concerns stop here: handlers translate HTTP in and out, all rules live in
// the services.
type Server struct {
	log         *slog.Logger
	authService services.IAuthService
	slotService services.ISlotService
	coordinator services.ISwapCoordinator
	fanout      *notify.Fanout
}

func NewServer(
	log *slog.Logger,
	authService services.IAuthService,
	slotService services.ISlotService,
	coordinator services.ISwapCoordinator,
	fanout *notify.Fanout,
) *Server {
	return &Server{
		log:         log,
		authService: authService,
		slotService: slotService,
		coordinator: coordinator,
		fanout:      fanout,
	}
}

// Handler builds the route table. Every route below /api except auth goes
// through the JWT middleware; the rate limiter wraps everything.
func (s *Server) Handler(limiter *LimiterStore, stats StatsStore) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("POST /api/events", s.authenticated(s.handleCreateSlot))
	mux.Handle("GET /api/events", s.authenticated(s.handleMySlots))
	mux.Handle("PATCH /api/events/{id}", s.authenticated(s.handleUpdateSlot))
	mux.Handle("DELETE /api/events/{id}", s.authenticated(s.handleDeleteSlot))
	mux.Handle("GET /api/events/stream", s.authenticated(s.handleEventStream))

	mux.Handle("GET /api/swap/swappable-slots", s.authenticated(s.handleSwappableSlots))
	mux.Handle("POST /api/swap/swap-request", s.authenticated(s.handleProposeSwap))
	mux.Handle("POST /api/swap/swap-response/{requestId}", s.authenticated(s.handleRespondToSwap))
	mux.Handle("GET /api/swap/my-requests", s.authenticated(s.handleMyRequests))

	return RateLimit(limiter, stats, s.log)(mux)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("response encoding failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
		s.writeJSON(w, status, map[string]string{"message": "internal server error"})
		return
	}
	s.writeJSON(w, status, map[string]string{"message": err.Error()})
}
