package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/fleet-monitor/internal/models"
	"github.com/benmeehan/fleet-monitor/pkg/eventsource"
	"github.com/rs/zerolog"
)

// SnapshotReconciler applies a fleet snapshot to the display.
type SnapshotReconciler interface {
	Reconcile(snapshot models.FleetSnapshot)
}

// SlotRegistry creates the display slots of entities it has not seen yet.
type SlotRegistry interface {
	Bootstrap(snapshot models.FleetSnapshot)
}

// FleetFetcher retrieves the full fleet snapshot.
type FleetFetcher interface {
	FetchFleet(ctx context.Context, path string) (models.FleetSnapshot, error)
}

// StreamService bootstraps the display and keeps it in sync with the event stream.
type StreamService struct {
	source     eventsource.Source
	reconciler SnapshotReconciler
	slots      SlotRegistry
	fetcher    FleetFetcher
	fleetPath  string
	eventName  string
	timeout    time.Duration
	logger     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStreamService creates a StreamService. A nil fetcher skips the initial fleet fetch.
func NewStreamService(source eventsource.Source, reconciler SnapshotReconciler, slots SlotRegistry,
	fetcher FleetFetcher, fleetPath, eventName string, timeout time.Duration, logger zerolog.Logger) *StreamService {
	return &StreamService{
		source:     source,
		reconciler: reconciler,
		slots:      slots,
		fetcher:    fetcher,
		fleetPath:  fleetPath,
		eventName:  eventName,
		timeout:    timeout,
		logger:     logger,
	}
}

// Start seeds the display with the current fleet and starts consuming events.
func (s *StreamService) Start() error {
	if s.ctx != nil {
		s.logger.Warn().Msg("StreamService is already running")
		return errors.New("stream service is already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.bootstrap()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()

	s.logger.Info().Str("event", s.eventName).Msg("StreamService started successfully")
	return nil
}

// Stop cancels the subscription and waits for the event in flight to be reconciled.
func (s *StreamService) Stop() error {
	if s.ctx == nil {
		s.logger.Warn().Msg("StreamService is not running")
		return errors.New("stream service is not running")
	}

	s.cancel()
	s.wg.Wait()

	s.ctx = nil
	s.cancel = nil

	s.logger.Info().Msg("StreamService stopped successfully")
	return nil
}

// bootstrap fetches the full fleet. A failed fetch is not fatal: entities are
// registered as they first appear on the stream.
func (s *StreamService) bootstrap() {
	if s.fetcher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	snapshot, err := s.fetcher.FetchFleet(ctx, s.fleetPath)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.fleetPath).Msg("Failed to fetch fleet, waiting for the event stream")
		return
	}
	s.apply(snapshot)
	s.logger.Info().Int("devices", len(snapshot)).Msg("Fleet bootstrapped")
}

func (s *StreamService) run() {
	err := s.source.Run(s.ctx, s.HandleEvent)
	switch {
	case err != nil && s.ctx.Err() == nil:
		s.logger.Error().Err(err).Msg("Event stream failed")
	case s.ctx.Err() == nil:
		s.logger.Info().Msg("Event stream ended")
	}
}

// HandleEvent reconciles one event of the stream. Events with another name and
// payloads that are not a fleet snapshot are skipped.
func (s *StreamService) HandleEvent(event eventsource.Event) {
	if event.Name != "" && event.Name != s.eventName {
		s.logger.Debug().Str("event", event.Name).Msg("Ignoring event")
		return
	}

	snapshot, err := models.DecodeSnapshot(event.Payload)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Dropping malformed event")
		return
	}
	s.apply(snapshot)
}

func (s *StreamService) apply(snapshot models.FleetSnapshot) {
	s.slots.Bootstrap(snapshot)
	s.reconciler.Reconcile(snapshot)
}
