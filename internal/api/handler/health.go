package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/daap14/teamboard/internal/api/middleware"
	"github.com/daap14/teamboard/internal/api/response"
)

const pingTimeout = 2 * time.Second

// DBPinger checks database connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ClientCounter reports connected realtime clients.
type ClientCounter interface {
	ClientCount() int
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	db      DBPinger
	clients ClientCounter
	version string
}

// NewHealthHandler creates a new HealthHandler. clients may be nil.
func NewHealthHandler(db DBPinger, clients ClientCounter, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		clients: clients,
		version: version,
	}
}

type databaseStatus struct {
	Connected bool `json:"connected"`
}

type healthData struct {
	Status          string         `json:"status"`
	Version         string         `json:"version"`
	Database        databaseStatus `json:"database"`
	RealtimeClients int            `json:"realtimeClients"`
}

// ServeHTTP handles the health check request. A failed ping reports
// "degraded" with 503.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	connected := h.db.Ping(ctx) == nil

	data := healthData{
		Status:   "healthy",
		Version:  h.version,
		Database: databaseStatus{Connected: connected},
	}
	if h.clients != nil {
		data.RealtimeClients = h.clients.ClientCount()
	}

	status := http.StatusOK
	if !connected {
		data.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	response.Success(w, status, data, requestID)
}
