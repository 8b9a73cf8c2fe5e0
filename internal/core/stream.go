package core

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/soundseeker/seekerctl/internal/config"
	"github.com/soundseeker/seekerctl/internal/events"
	"github.com/soundseeker/seekerctl/internal/metrics"
	"github.com/soundseeker/seekerctl/internal/utils"
)

// wsEnvelope is the frame format of the WebSocket transport.
type wsEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// StreamEvents returns a channel that receives push events via SSE or WebSocket,
// reconnecting with backoff until ctx is done or Shutdown is called.
func (s *RemoteDownloadService) StreamEvents(ctx context.Context) (<-chan any, error) {
	var connect func(context.Context, *connectTracker) error
	switch s.Transport {
	case "", config.TransportSSE:
		connect = s.connectSSE
	case config.TransportWebSocket:
		connect = s.connectWebSocket
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTransport, s.Transport)
	}

	ctx, cancel := s.bind(ctx)
	ch := make(chan any, eventChannelBuffer)
	go func() {
		defer cancel()
		s.streamWithReconnect(ctx, ch, connect)
	}()
	return ch, nil
}

func (s *RemoteDownloadService) transportName() string {
	if s.Transport == "" {
		return config.TransportSSE
	}
	return s.Transport
}

func (s *RemoteDownloadService) streamWithReconnect(ctx context.Context, ch chan any, connect func(context.Context, *connectTracker) error) {
	defer close(ch)
	initial := s.ReconnectDelay
	if initial <= 0 {
		initial = defaultReconnectGap
	}
	backoff := initial

	for {
		if ctx.Err() != nil {
			return
		}

		tracker := &connectTracker{ch: ch}
		err := connect(ctx, tracker)
		if ctx.Err() != nil {
			return
		}
		if tracker.connected {
			backoff = initial
			emit(ctx, ch, events.StreamDisconnectedMsg{Transport: s.transportName(), Err: err})
		}
		utils.Debug("Push stream (%s) ended: %v", s.transportName(), err)

		wait := backoff
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.RetryAfter.IsZero() {
			if until := time.Until(apiErr.RetryAfter); until > wait {
				wait = until
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

// connectTracker hands the event channel to one connection attempt and
// records whether the attempt got as far as being connected.
type connectTracker struct {
	ch        chan any
	connected bool
}

func (c *connectTracker) markConnected(ctx context.Context, transport string) {
	c.connected = true
	metrics.StreamConnectsTotal.WithLabelValues(transport).Inc()
	emit(ctx, c.ch, events.StreamConnectedMsg{Transport: transport})
}

// emit delivers msg unless ctx ends first. Status updates must not be
// dropped, so the reader blocks instead of discarding on a full channel.
func emit(ctx context.Context, ch chan<- any, msg any) bool {
	select {
	case ch <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

func dispatch(ctx context.Context, ch chan<- any, name string, data []byte) bool {
	msg, err := events.Decode(name, data)
	if err != nil {
		utils.Debug("Skipping push event: %v", err)
		return true
	}
	metrics.PushEventsTotal.WithLabelValues(name).Inc()
	return emit(ctx, ch, msg)
}

func (s *RemoteDownloadService) connectSSE(ctx context.Context, tracker *connectTracker) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+s.EventsPath, nil)
	if err != nil {
		return err
	}

	req.Header = s.headers()
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")

	resp, err := s.SSEClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp)
	}

	ch := tracker.ch
	tracker.markConnected(ctx, config.TransportSSE)

	reader := bufio.NewReader(resp.Body)
	for {
		eventType := ""
		var dataLines []string

		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if errors.Is(err, io.EOF) {
					return ErrStreamClosed
				}
				return err
			}
			line = strings.TrimRight(line, "\r\n")

			// Blank line dispatches event
			if line == "" {
				break
			}
			// Comment/heartbeat
			if strings.HasPrefix(line, ":") {
				continue
			}
			if strings.HasPrefix(line, "event:") {
				eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
				continue
			}
			if strings.HasPrefix(line, "data:") {
				dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
				continue
			}
		}

		// update_recent_downloads carries no data, so only the name is required
		if eventType == "" {
			continue
		}
		if !dispatch(ctx, ch, eventType, []byte(strings.Join(dataLines, "\n"))) {
			return ctx.Err()
		}
	}
}

// webSocketURL maps the http(s) base URL onto ws(s).
func webSocketURL(baseURL, path string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://") + path
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://") + path
	default:
		return baseURL + path
	}
}

func (s *RemoteDownloadService) connectWebSocket(ctx context.Context, tracker *connectTracker) error {
	conn, resp, err := websocket.Dial(ctx, webSocketURL(s.BaseURL, s.WebSocketPath), &websocket.DialOptions{
		HTTPHeader: s.headers(),
	})
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 {
			return newAPIError(resp)
		}
		return err
	}
	defer func() { _ = conn.CloseNow() }()
	conn.SetReadLimit(1 << 20)

	ch := tracker.ch
	tracker.markConnected(ctx, config.TransportWebSocket)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return ErrStreamClosed
			}
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		var env wsEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			utils.Debug("Skipping malformed WebSocket frame: %v", err)
			continue
		}
		if env.Type == "" {
			continue
		}
		if !dispatch(ctx, ch, env.Type, env.Data) {
			return ctx.Err()
		}
	}
}
