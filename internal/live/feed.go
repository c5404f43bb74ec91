// Package live streams server-pushed notifications over a WebSocket.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nhle/project-dashboard/internal/api"
	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/model"
)

const (
	pongWait       = 60 * time.Second
	maxMessageSize = 64 << 10

	defaultInitialDelay = time.Second
	defaultMaxDelay     = 30 * time.Second
	defaultStableAfter  = 10 * time.Second
)

// Handler receives each pushed notification.
type Handler func(ctx context.Context, n model.Notification)

// frame is one server message: {"type": "notification", "data": {...}}.
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Feed keeps a WebSocket open to the notification stream and reconnects
// with exponential backoff when it drops.
type Feed struct {
	URL     string
	Tokens  api.TokenSource
	Handler Handler
	Logger  zerolog.Logger

	// InitialDelay and MaxDelay bound the reconnect backoff.
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// StableAfter is how long a connection without frames must stay up
	// before the backoff resets.
	StableAfter time.Duration

	Dialer *websocket.Dialer
}

// Run connects and dispatches notifications until ctx is done or the
// server rejects the session credential.
func (f *Feed) Run(ctx context.Context) error {
	b := backoff{initial: f.InitialDelay, max: f.MaxDelay}
	if b.initial <= 0 {
		b.initial = defaultInitialDelay
	}
	if b.max <= 0 {
		b.max = defaultMaxDelay
	}
	log := f.Logger.With().Str("component", "live").Logger()

	for {
		healthy, err := f.session(ctx, log)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if apperr.IsAuth(err) {
			log.Warn().Err(err).Msg("live feed rejected credentials")
			return err
		}
		if healthy {
			b.reset()
		}
		delay := b.next()
		log.Debug().Err(err).Dur("retry_in", delay).Msg("live feed disconnected")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// session runs one connection. healthy reports whether it delivered a
// frame or stayed up for StableAfter; only then does the backoff reset.
func (f *Feed) session(ctx context.Context, log zerolog.Logger) (healthy bool, err error) {
	header := http.Header{}
	if f.Tokens != nil {
		if token, err := f.Tokens.Token(); err == nil && token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	dialer := f.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, f.URL, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return false, apperr.Server(resp.StatusCode, "live feed rejected the session")
		}
		return false, fmt.Errorf("dialing %s: %w", f.URL, err)
	}
	defer conn.Close()
	log.Info().Str("url", f.URL).Msg("live feed connected")

	stableAfter := f.StableAfter
	if stableAfter <= 0 {
		stableAfter = defaultStableAfter
	}
	connectedAt := time.Now()
	frames := 0

	// Unblock ReadMessage when ctx ends.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			healthy = frames > 0 || time.Since(connectedAt) >= stableAfter
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return healthy, nil
			}
			return healthy, fmt.Errorf("reading live feed: %w", err)
		}
		frames++
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		f.dispatch(ctx, log, payload)
	}
}

func (f *Feed) dispatch(ctx context.Context, log zerolog.Logger, payload []byte) {
	var fr frame
	if err := json.Unmarshal(payload, &fr); err != nil {
		log.Debug().Err(err).Msg("skipping malformed live frame")
		return
	}
	if fr.Type != "notification" {
		log.Debug().Str("type", fr.Type).Msg("skipping live frame")
		return
	}
	var n model.Notification
	if err := json.Unmarshal(fr.Data, &n); err != nil {
		log.Debug().Err(err).Msg("skipping malformed notification")
		return
	}
	if f.Handler != nil {
		f.Handler(ctx, n)
	}
}

// backoff doubles the reconnect delay up to max.
type backoff struct {
	initial time.Duration
	max     time.Duration
	attempt int
}

func (b *backoff) next() time.Duration {
	d := b.initial
	for i := 0; i < b.attempt && d < b.max; i++ {
		d *= 2
	}
	if d > b.max {
		d = b.max
	}
	b.attempt++
	return d
}

func (b *backoff) reset() { b.attempt = 0 }

// ErrNoURL is returned by Start when no stream URL is configured.
var ErrNoURL = errors.New("live feed url is not configured")

// Start runs the feed in the background. The returned channel yields
// Run's final error once the feed stops.
func (f *Feed) Start(ctx context.Context) (<-chan error, error) {
	if f.URL == "" {
		return nil, ErrNoURL
	}
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()
	return done, nil
}
