package services_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/benmeehan/fleet-monitor/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAPIService tests serving and shutting down the HTTP API.
func TestAPIService(t *testing.T) {
	// Setup
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	service := services.NewAPIService("127.0.0.1:0", handler, zerolog.Nop())

	// Execute
	require.NoError(t, service.Start())
	resp, err := http.Get("http://" + service.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	// Assert
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
	assert.Error(t, service.Start())
	require.NoError(t, service.Stop())
	assert.Nil(t, service.Addr())
	assert.Error(t, service.Stop())
}

// TestAPIService_BindError tests that an unusable address fails Start.
func TestAPIService_BindError(t *testing.T) {
	service := services.NewAPIService("256.0.0.1:99999", http.NotFoundHandler(), zerolog.Nop())

	assert.Error(t, service.Start())
	assert.Error(t, service.Stop())
}
