// Package natspub forwards study events to NATS subjects.
package natspub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/palabras/palabras-api/internal/config"
	"github.com/palabras/palabras-api/internal/events"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "palabras"

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
}

// Publisher is an events.EventHandler that publishes each event, encoded
// as JSON, to <prefix>.<event type>.
type Publisher struct {
	conn   conn
	prefix string
	logger *slog.Logger
}

var _ events.EventHandler = (*Publisher)(nil)

// Connect dials the configured NATS server.
func Connect(cfg config.EventsConfig, logger *slog.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "natspub"))

	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("palabras-api"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("disconnected from NATS", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("reconnected to NATS", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.Info("connected to NATS", slog.String("url", nc.ConnectedUrl()))
	return nc, nil
}

// NewPublisher creates a Publisher on c. An empty prefix falls back to
// DefaultSubjectPrefix.
func NewPublisher(c conn, prefix string, logger *slog.Logger) *Publisher {
	if c == nil {
		panic("nats connection cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{
		conn:   c,
		prefix: prefix,
		logger: logger.With(slog.String("component", "natspub")),
	}
}

// Subject returns the subject an event type is published to.
func (p *Publisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

// HandleEvent implements events.EventHandler.
func (p *Publisher) HandleEvent(ctx context.Context, event *events.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := p.Subject(event.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error("failed to publish event",
			slog.String("subject", subject),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	p.logger.Debug("event published",
		slog.String("subject", subject),
		slog.String("event_id", event.ID.String()))
	return nil
}
