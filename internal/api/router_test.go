package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benmeehan/fleet-monitor/internal/api"
	"github.com/benmeehan/fleet-monitor/internal/dispatcher"
	"github.com/benmeehan/fleet-monitor/internal/display"
	"github.com/benmeehan/fleet-monitor/internal/metrics_collectors"
	"github.com/benmeehan/fleet-monitor/internal/models"
	"github.com/benmeehan/fleet-monitor/pkg/fleetapi"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upstreamLog records the requests received by the fake control-plane server.
type upstreamLog struct {
	mu     sync.Mutex
	bodies []string
}

func (l *upstreamLog) add(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bodies = append(l.bodies, entry)
}

func (l *upstreamLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.bodies...)
}

func newTestRouter(t *testing.T, upstreamStatus int) (http.Handler, *upstreamLog) {
	t.Helper()
	bodies := &upstreamLog{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies.add(r.URL.Path + " " + string(body))
		w.WriteHeader(upstreamStatus)
	}))
	t.Cleanup(upstream.Close)

	snapshot, err := models.DecodeSnapshot([]byte(`{"dev1":{"telemetry":{"cpu_load":10,
		"containers":{"c1":{"status":"running","update_available":true}}}}}`))
	require.NoError(t, err)
	store := display.NewStore(zerolog.Nop())
	store.Bootstrap(snapshot)

	client := fleetapi.NewClient(upstream.URL, time.Second)
	d := dispatcher.NewDispatcher(client, "/container-command", "/device-command", zerolog.Nop())
	metrics := metrics_collectors.NewMetricsRegistry()
	metrics.Register(&metrics_collectors.DisplayMetricCollector{Display: store})
	return api.NewRouter(store, d, metrics, zerolog.Nop()), bodies
}

func serve(handler http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

// TestRouter_View tests the displayed state routes.
func TestRouter_View(t *testing.T) {
	// Setup
	router, _ := newTestRouter(t, http.StatusOK)

	// Execute
	health := serve(router, http.MethodGet, "/healthz")
	view := serve(router, http.MethodGet, "/api/v1/view")
	slots := serve(router, http.MethodGet, "/api/v1/slots")

	// Assert
	assert.Equal(t, http.StatusOK, health.Code)
	assert.JSONEq(t, `{"status":"ok","metrics":{"display":{"value":{"devices":1,"slots":6},"unit":"count"}}}`, health.Body.String())

	require.Equal(t, http.StatusOK, view.Code)
	var devices []display.DeviceView
	require.NoError(t, json.Unmarshal(view.Body.Bytes(), &devices))
	require.Len(t, devices, 1)
	assert.Equal(t, "10 %", devices[0].CPU.Text)
	require.Len(t, devices[0].Containers, 1)
	assert.Equal(t, display.ClassWarning, devices[0].Containers[0].Update.Class)

	require.Equal(t, http.StatusOK, slots.Code)
	assert.True(t, strings.Contains(slots.Body.String(), `"key":"container-status-indicator-c1"`))
}

// TestRouter_ContainerCommands tests that each action is dispatched once to the container channel.
func TestRouter_ContainerCommands(t *testing.T) {
	for action, command := range map[string]string{
		"start":  "start_container",
		"stop":   "stop_container",
		"update": "update_container",
	} {
		t.Run(action, func(t *testing.T) {
			// Setup
			router, bodies := newTestRouter(t, http.StatusOK)

			// Execute
			rec := serve(router, http.MethodPost, "/api/v1/devices/dev1/containers/web/"+action)

			// Assert
			require.Equal(t, http.StatusAccepted, rec.Code)
			var resp api.CommandResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, resp.Delivered)
			assert.Equal(t, command, resp.Command)
			assert.Equal(t, http.StatusOK, resp.Status)
			assert.NotEmpty(t, resp.RequestID)

			require.Len(t, bodies.all(), 1)
			assert.Contains(t, bodies.all()[0], "/container-command ")
			assert.Contains(t, bodies.all()[0], `"container_name":"web"`)
		})
	}
}

// TestRouter_RemoveDevice tests the device channel and upstream failures.
func TestRouter_RemoveDevice(t *testing.T) {
	// Setup
	router, bodies := newTestRouter(t, http.StatusInternalServerError)

	// Execute
	rec := serve(router, http.MethodDelete, "/api/v1/devices/dev1")

	// Assert
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var resp api.CommandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Delivered)
	assert.Equal(t, "remove_device", resp.Command)
	assert.Contains(t, resp.Error, "unexpected status 500")
	require.Len(t, bodies.all(), 1)
	assert.Equal(t, `/device-command {"command":"remove_device","id":"dev1"}`, bodies.all()[0])
}

// TestRouter_UnknownAction tests that unsupported actions are not routed.
func TestRouter_UnknownAction(t *testing.T) {
	router, bodies := newTestRouter(t, http.StatusOK)

	rec := serve(router, http.MethodPost, "/api/v1/devices/dev1/containers/web/reboot")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, bodies.all())
}
