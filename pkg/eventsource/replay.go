package eventsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benmeehan/fleet-monitor/pkg/file"
	"github.com/rs/zerolog"
)

// ReplaySource replays recorded frames from a JSON file. The file holds either a
// single frame or an array of frames.
type ReplaySource struct {
	path       string
	interval   time.Duration
	fileClient file.FileOperations
	logger     zerolog.Logger
}

// NewReplaySource creates a source replaying path, waiting interval between frames.
func NewReplaySource(path string, interval time.Duration, fileClient file.FileOperations, logger zerolog.Logger) *ReplaySource {
	return &ReplaySource{
		path:       path,
		interval:   interval,
		fileClient: fileClient,
		logger:     logger,
	}
}

// Run delivers every recorded frame and returns once all were handled or ctx is cancelled.
func (s *ReplaySource) Run(ctx context.Context, handle Handler) error {
	exists, err := s.fileClient.IsFileExists(s.path)
	if err != nil {
		return fmt.Errorf("failed to stat replay file: %w", err)
	}
	if !exists {
		return fmt.Errorf("replay file %s does not exist", s.path)
	}

	data, err := s.fileClient.ReadFileRaw(s.path)
	if err != nil {
		return fmt.Errorf("failed to read replay file: %w", err)
	}

	frames := []json.RawMessage{data}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &frames); err != nil {
			return fmt.Errorf("failed to parse replay file: %w", err)
		}
	}

	s.logger.Info().Str("file", s.path).Int("frames", len(frames)).Msg("Replaying recorded events")
	for i, frame := range frames {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(s.interval):
			}
		}
		handle(ParseFrame(frame))
	}
	return nil
}
