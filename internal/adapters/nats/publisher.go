package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/pilingqa/internal/core/domain"
)

// Stream and subjects carrying design events.
const (
	StreamDesignEvents = "DESIGN_EVENTS"
	SubjectDesignAll   = "design.loaded.>"
)

// DesignLoadedSubject is the subject an event for format is published on.
func DesignLoadedSubject(format domain.Format) string {
	return "design.loaded." + string(format)
}

// MsgID deduplicates republished events within the stream window.
func MsgID(ev *domain.DesignLoadedEvent) string {
	return fmt.Sprintf("%s-%d", ev.SessionID, ev.LoadedAt.UnixNano())
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and makes sure the design stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:       StreamDesignEvents,
		Subjects:   []string{SubjectDesignAll},
		Retention:  nats.LimitsPolicy,
		MaxAge:     7 * 24 * time.Hour,
		Storage:    nats.FileStorage,
		Duplicates: 2 * time.Minute,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishDesignLoaded publishes ev on design.loaded.<format>.
func (p *Publisher) PublishDesignLoaded(ctx context.Context, ev *domain.DesignLoadedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(DesignLoadedSubject(ev.Format), data,
		nats.Context(ctx),
		nats.MsgId(MsgID(ev)),
	)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("pilingqa"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
