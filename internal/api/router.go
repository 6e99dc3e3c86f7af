package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/benmeehan/fleet-monitor/internal/dispatcher"
	"github.com/benmeehan/fleet-monitor/internal/display"
	"github.com/benmeehan/fleet-monitor/internal/metrics_collectors"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Commander issues operator commands.
type Commander interface {
	UpdateContainer(ctx context.Context, deviceID, containerName string) dispatcher.Result
	StartContainer(ctx context.Context, deviceID, containerName string) dispatcher.Result
	StopContainer(ctx context.Context, deviceID, containerName string) dispatcher.Result
	RemoveDevice(ctx context.Context, deviceID string) dispatcher.Result
}

// CommandResponse is returned by the command routes.
type CommandResponse struct {
	Command   string `json:"command"`
	Delivered bool   `json:"delivered"`
	Status    int    `json:"upstream_status,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// MetricsCollector reports the monitor's own health metrics.
type MetricsCollector interface {
	CollectAll(ctx context.Context) map[string]metrics_collectors.Metric
}

// HealthResponse is returned by the health route.
type HealthResponse struct {
	Status  string                               `json:"status"`
	Metrics map[string]metrics_collectors.Metric `json:"metrics,omitempty"`
}

type handler struct {
	store     *display.Store
	commander Commander
	metrics   MetricsCollector
	logger    zerolog.Logger
}

// NewRouter builds the view and command API. metrics may be nil.
func NewRouter(store *display.Store, commander Commander, metrics MetricsCollector, logger zerolog.Logger) http.Handler {
	h := &handler{store: store, commander: commander, metrics: metrics, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/view", h.view).Methods(http.MethodGet)
	v1.HandleFunc("/slots", h.slots).Methods(http.MethodGet)
	v1.HandleFunc("/devices/{device}/containers/{container}/{action:start|stop|update}", h.containerCommand).Methods(http.MethodPost)
	v1.HandleFunc("/devices/{device}", h.removeDevice).Methods(http.MethodDelete)

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.metrics != nil {
		resp.Metrics = h.metrics.CollectAll(r.Context())
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) view(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Devices())
}

func (h *handler) slots(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Slots())
}

func (h *handler) containerCommand(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID, container := vars["device"], vars["container"]

	var result dispatcher.Result
	switch vars["action"] {
	case "start":
		result = h.commander.StartContainer(r.Context(), deviceID, container)
	case "stop":
		result = h.commander.StopContainer(r.Context(), deviceID, container)
	case "update":
		result = h.commander.UpdateContainer(r.Context(), deviceID, container)
	}
	h.writeResult(w, result)
}

func (h *handler) removeDevice(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, h.commander.RemoveDevice(r.Context(), mux.Vars(r)["device"]))
}

func (h *handler) writeResult(w http.ResponseWriter, result dispatcher.Result) {
	resp := CommandResponse{Command: result.Payload.Command, Delivered: result.OK()}
	if !result.OK() {
		resp.Error = result.Err.Error()
		h.writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	resp.Status = result.Response.StatusCode
	resp.RequestID = result.Response.RequestID
	h.writeJSON(w, http.StatusAccepted, resp)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("Failed to write response")
	}
}
