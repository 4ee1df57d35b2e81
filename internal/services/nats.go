package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/iwtcode/oeeMonitor"
	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

// StateEvent is the message published on every machine list change.
type StateEvent struct {
	PublishedAt time.Time             `json:"publishedAt"`
	Machines    []models.MachineState `json:"machines"`
}

type NatsPublisher struct {
	conn    *nats.Conn
	subject string
	now     func() time.Time
}

// NewNatsPublisher returns nil when NATS is not configured.
func NewNatsPublisher(cfg *oeeMonitor.Config) (*NatsPublisher, error) {
	if cfg.NatsURL == "" {
		return nil, nil
	}
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name("oee-monitor"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NatsPublisher{conn: conn, subject: cfg.NatsSubject, now: time.Now}, nil
}

func (p *NatsPublisher) Publish(ctx context.Context, machines []models.MachineState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(StateEvent{PublishedAt: p.now().UTC(), Machines: machines})
	if err != nil {
		return fmt.Errorf("marshal state event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", p.subject, err)
	}
	return nil
}

func (p *NatsPublisher) Close() {
	p.conn.Drain()
}
