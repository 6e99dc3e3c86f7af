package fleetapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benmeehan/fleet-monitor/internal/models"
	"github.com/benmeehan/fleet-monitor/pkg/fleetapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFetchFleet tests fetching and decoding the full fleet snapshot.
func TestFetchFleet(t *testing.T) {
	// Setup
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/fleet", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"dev1": {
				"last_updated": "2024/05/01 10:00:00",
				"telemetry": {
					"cpu_load": 12.5,
					"memory_usage": 40,
					"containers": [
						{"id": "c1", "name": "web", "status": "running", "update_available": true}
					]
				}
			}
		}`))
	}))
	defer server.Close()
	client := fleetapi.NewClient(server.URL+"/", time.Second)

	// Execute
	snapshot, err := client.FetchFleet(context.Background(), "/fleet")

	// Assert
	require.NoError(t, err)
	require.Contains(t, snapshot, "dev1")
	device := snapshot["dev1"]
	assert.Equal(t, "12.5 %", device.Telemetry.CPULoad.String())
	require.Contains(t, device.Telemetry.Containers, "c1")
	assert.Equal(t, models.UpdateAvailable, device.Telemetry.Containers["c1"].UpdateAvailable)
}

// TestFetchFleet_StatusError tests that a non-2xx answer yields a StatusError.
func TestFetchFleet_StatusError(t *testing.T) {
	// Setup
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()
	client := fleetapi.NewClient(server.URL, time.Second)

	// Execute
	_, err := client.FetchFleet(context.Background(), "/fleet")

	// Assert
	var statusErr *fleetapi.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "boom\n", statusErr.Body)
	assert.Contains(t, err.Error(), "unexpected status 502: boom")
}

// TestPostJSON tests the request headers and body of a JSON post.
func TestPostJSON(t *testing.T) {
	// Setup
	contentType := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType <- r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()
	client := fleetapi.NewClient(server.URL, time.Second)

	// Execute
	resp, err := client.PostJSON(context.Background(), "/device-command", models.CommandPayload{Command: "remove_device", ID: "dev1"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "application/json", <-contentType)
	assert.NotEmpty(t, resp.RequestID)
}

// TestPostJSON_Cancelled tests that a cancelled context aborts the request.
func TestPostJSON_Cancelled(t *testing.T) {
	// Setup
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	client := fleetapi.NewClient(server.URL, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Execute
	_, err := client.PostJSON(ctx, "/container-command", map[string]string{"command": "stop_container"})

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
}
