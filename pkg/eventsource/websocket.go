package eventsource

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WebsocketSource reads events from a websocket and redials when the connection drops.
type WebsocketSource struct {
	endpoint       string
	header         http.Header
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
	logger         zerolog.Logger
}

// NewWebsocketSource creates a source reading from endpoint.
func NewWebsocketSource(endpoint string, header http.Header, reconnectDelay time.Duration, logger zerolog.Logger) *WebsocketSource {
	return &WebsocketSource{
		endpoint:       endpoint,
		header:         header,
		reconnectDelay: reconnectDelay,
		dialer:         websocket.DefaultDialer,
		logger:         logger,
	}
}

// Run dials the endpoint and delivers frames to handle until ctx is cancelled.
func (s *WebsocketSource) Run(ctx context.Context, handle Handler) error {
	for {
		conn, resp, err := s.dialer.DialContext(ctx, s.endpoint, s.header)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			s.logger.Warn().Err(err).Str("url", s.endpoint).Int("status", status).Dur("retry_in", s.reconnectDelay).Msg("Websocket dial failed")
		} else {
			s.logger.Info().Str("url", s.endpoint).Msg("Websocket connected")
			err = s.readLoop(ctx, conn, handle)
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Warn().Err(err).Dur("retry_in", s.reconnectDelay).Msg("Websocket disconnected")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *WebsocketSource) readLoop(ctx context.Context, conn *websocket.Conn, handle Handler) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errors.New("closed by server")
			}
			return err
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		handle(ParseFrame(data))
	}
}
