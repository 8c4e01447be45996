package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/stocktracker/internal/api/handlers"
	"github.com/wonny/stocktracker/pkg/logger"
)

// Handlers groups the endpoint handlers mounted by NewRouter
type Handlers struct {
	Positions *handlers.PositionHandler
	Premarket *handlers.PremarketHandler
	Health    *handlers.HealthHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: every route is registered here
func NewRouter(prefix string, h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health.Check).Methods(http.MethodGet)

	api := r.PathPrefix(strings.TrimRight(prefix, "/")).Subrouter()

	// Premarket routes first so "premarket" is never captured as {symbol}
	api.HandleFunc("/positions/premarket", h.Premarket.Compute).Methods(http.MethodGet)
	api.HandleFunc("/positions/premarket/summary", h.Premarket.Summary).Methods(http.MethodGet)
	api.HandleFunc("/positions/premarket/latest", h.Premarket.Latest).Methods(http.MethodGet)
	api.HandleFunc("/positions/premarket/stream", h.Premarket.Stream).Methods(http.MethodGet)

	for _, path := range []string{"/positions", "/positions/"} {
		api.HandleFunc(path, h.Positions.List).Methods(http.MethodGet)
		api.HandleFunc(path, h.Positions.Create).Methods(http.MethodPost)
	}
	api.HandleFunc("/positions/{symbol}", h.Positions.Get).Methods(http.MethodGet)
	api.HandleFunc("/positions/{symbol}", h.Positions.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/positions/{symbol}/stats", h.Positions.Stats).Methods(http.MethodGet)

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return corsMiddleware(r)
}
