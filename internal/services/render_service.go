package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/benmeehan/fleet-monitor/internal/display"
	"github.com/rs/zerolog"
)

// RenderService periodically writes a terminal view of the display.
type RenderService struct {
	Interval time.Duration
	Store    *display.Store
	Out      io.Writer
	Logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRenderService initializes a new RenderService.
func NewRenderService(interval time.Duration, store *display.Store, out io.Writer, logger zerolog.Logger) *RenderService {
	return &RenderService{
		Interval: interval,
		Store:    store,
		Out:      out,
		Logger:   logger,
	}
}

// Start launches the render loop in a separate goroutine.
func (r *RenderService) Start() error {
	if r.ctx != nil {
		r.Logger.Warn().Msg("RenderService is already running")
		return errors.New("render service is already running")
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.runRenderLoop()
	}()

	r.Logger.Info().Dur("interval", r.Interval).Msg("RenderService started successfully")
	return nil
}

// Stop gracefully stops the render service.
func (r *RenderService) Stop() error {
	if r.ctx == nil {
		r.Logger.Warn().Msg("RenderService is not running")
		return errors.New("render service is not running")
	}

	r.cancel()
	r.wg.Wait()

	r.ctx = nil
	r.cancel = nil

	r.Logger.Info().Msg("RenderService stopped successfully")
	return nil
}

func (r *RenderService) runRenderLoop() {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := display.Render(r.Out, r.Store); err != nil {
				r.Logger.Error().Err(err).Msg("Failed to render fleet view")
			}
		case <-r.ctx.Done():
			return
		}
	}
}
