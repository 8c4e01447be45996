package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/stocktracker/internal/batch"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/scheduler"
	"github.com/wonny/stocktracker/pkg/logger"
)

// Ping/Pong settings
const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// PremarketService computes the premarket view on demand
type PremarketService interface {
	Premarket(ctx context.Context) ([]contracts.PremarketRow, error)
}

// PremarketHandler serves on-demand, latest and streamed premarket views
type PremarketHandler struct {
	service   PremarketService
	snapshots *scheduler.SnapshotStore
	logger    *logger.Logger
}

// NewPremarketHandler creates a new premarket handler
func NewPremarketHandler(svc PremarketService, snapshots *scheduler.SnapshotStore, log *logger.Logger) *PremarketHandler {
	return &PremarketHandler{
		service:   svc,
		snapshots: snapshots,
		logger:    log,
	}
}

// Compute runs the batch now; per-symbol failures are rows, never a 5xx
// GET /positions/premarket
func (h *PremarketHandler) Compute(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Premarket(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load positions for premarket")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve positions")
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// Latest returns the last scheduled snapshot
// GET /positions/premarket/latest
func (h *PremarketHandler) Latest(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshots.Latest(r.Context())
	if !ok {
		respondError(w, http.StatusNotFound, "No premarket snapshot yet")
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// Stream pushes every new snapshot over a websocket, starting with the latest
// GET /positions/premarket/stream
func (h *PremarketHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := h.snapshots.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go h.readLoop(conn, closed)

	if snap, ok := h.snapshots.Latest(r.Context()); ok {
		if err := writeSnapshot(conn, *snap); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if err := writeSnapshot(conn, snap); err != nil {
				h.logger.WithError(err).Debug("WebSocket write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are processed
func (h *PremarketHandler) readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snap scheduler.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(snap)
}

// Summary returns outcome counts for the on-demand batch
// GET /positions/premarket/summary
func (h *PremarketHandler) Summary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Premarket(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load positions for premarket")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve positions")
		return
	}

	respondJSON(w, http.StatusOK, batch.Summarize(rows))
}
