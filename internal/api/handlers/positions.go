package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/logger"
)

// PositionService is the part of service.StockService the position endpoints use
type PositionService interface {
	ListPositions(ctx context.Context, skip, limit int) ([]contracts.Position, error)
	GetPosition(ctx context.Context, symbol string) (*contracts.Position, error)
	CreatePosition(ctx context.Context, pos contracts.Position, validateSymbol bool) (*contracts.Position, error)
	DeletePosition(ctx context.Context, symbol string) error
	PositionStats(ctx context.Context, symbol string) (*contracts.PositionStats, error)
}

// PositionHandler handles position CRUD and stats endpoints
type PositionHandler struct {
	service PositionService
	logger  *logger.Logger
}

// NewPositionHandler creates a new position handler
func NewPositionHandler(svc PositionService, log *logger.Logger) *PositionHandler {
	return &PositionHandler{
		service: svc,
		logger:  log,
	}
}

// List returns a page of positions
// GET /positions?skip=0&limit=100
func (h *PositionHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	positions, err := h.service.ListPositions(r.Context(), skip, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list positions")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve positions")
		return
	}

	respondJSON(w, http.StatusOK, positions)
}

// Create stores a new position
// POST /positions?validate=true
func (h *PositionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var pos contracts.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	validate := r.URL.Query().Get("validate") == "true"

	created, err := h.service.CreatePosition(r.Context(), pos, validate)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithSymbol(pos.Symbol).WithError(err).Error("Failed to create position")
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// Get returns one position
// GET /positions/{symbol}
func (h *PositionHandler) Get(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	pos, err := h.service.GetPosition(r.Context(), symbol)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			respondError(w, status, "Position not found")
			return
		}
		h.logger.WithSymbol(symbol).WithError(err).Error("Failed to get position")
		respondError(w, status, "Failed to retrieve position")
		return
	}

	respondJSON(w, http.StatusOK, pos)
}

// Delete removes one position
// DELETE /positions/{symbol}
func (h *PositionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	if err := h.service.DeletePosition(r.Context(), symbol); err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			respondError(w, status, "Position not found")
			return
		}
		h.logger.WithSymbol(symbol).WithError(err).Error("Failed to delete position")
		respondError(w, status, "Failed to delete position")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats values one position against current market data
// GET /positions/{symbol}/stats
func (h *PositionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	stats, err := h.service.PositionStats(r.Context(), symbol)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			respondError(w, status, "Position not found")
			return
		}
		h.logger.WithSymbol(symbol).WithError(err).Error("Failed to analyze position")
		respondError(w, http.StatusInternalServerError, "Error analyzing position: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
