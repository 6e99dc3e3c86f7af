package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// APIService serves the HTTP view and command API.
type APIService struct {
	listenAddress string
	handler       http.Handler
	logger        zerolog.Logger

	server   *http.Server
	listener net.Listener
	wg       sync.WaitGroup
}

// NewAPIService creates an APIService serving handler on listenAddress.
func NewAPIService(listenAddress string, handler http.Handler, logger zerolog.Logger) *APIService {
	return &APIService{
		listenAddress: listenAddress,
		handler:       handler,
		logger:        logger,
	}
}

// Start binds the listen address and serves in the background.
func (a *APIService) Start() error {
	if a.server != nil {
		a.logger.Warn().Msg("APIService is already running")
		return errors.New("api service is already running")
	}

	listener, err := net.Listen("tcp", a.listenAddress)
	if err != nil {
		a.logger.Error().Err(err).Str("address", a.listenAddress).Msg("Failed to bind API listener")
		return err
	}
	a.listener = listener
	a.server = &http.Server{Handler: a.handler, ReadHeaderTimeout: 10 * time.Second}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Msg("API server failed")
		}
	}()

	a.logger.Info().Str("address", listener.Addr().String()).Msg("APIService started successfully")
	return nil
}

// Addr returns the bound address, or nil when the service is not running.
func (a *APIService) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Stop shuts the server down, waiting up to five seconds for requests in flight.
func (a *APIService) Stop() error {
	if a.server == nil {
		a.logger.Warn().Msg("APIService is not running")
		return errors.New("api service is not running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.server.Shutdown(ctx)
	a.wg.Wait()

	a.server = nil
	a.listener = nil
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to shut down API server")
		return err
	}

	a.logger.Info().Msg("APIService stopped successfully")
	return nil
}
