package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor"
	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

// kafkaSource reads the tail of the telemetry topic and keeps the latest
// record per message key (one key per machine).
type kafkaSource struct {
	broker    string
	topic     string
	scanDepth int64
	log       *zap.Logger
}

func NewKafkaSource(cfg *oeeMonitor.Config, log *zap.Logger) *kafkaSource {
	depth := cfg.KafkaScanDepth
	if depth <= 0 {
		depth = 1000
	}
	return &kafkaSource{
		broker:    cfg.KafkaBroker,
		topic:     cfg.KafkaTopic,
		scanDepth: depth,
		log:       log.Named("kafka"),
	}
}

func (s *kafkaSource) Fetch(ctx context.Context) ([]json.RawMessage, error) {
	if s.broker == "" || s.topic == "" {
		return nil, fmt.Errorf("broker or topic is empty")
	}

	// 1. Connect to partition 0 leader
	conn, err := kafka.DialLeader(ctx, "tcp", s.broker, s.topic, 0)
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("failed to dial leader: %w", err))
	}
	defer conn.Close()

	// 2. Determine scan range
	first, last, err := conn.ReadOffsets()
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("failed to read offsets: %w", err))
	}
	if last <= first {
		return []json.RawMessage{}, nil
	}
	start := max(last-s.scanDepth, first)
	if _, err := conn.Seek(start, kafka.SeekAbsolute); err != nil {
		return nil, classify(ctx, fmt.Errorf("failed to seek: %w", err))
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(5 * time.Second)
	}
	conn.SetReadDeadline(deadline)

	// 3. Read batches until the end of the range
	acc := newLatestByKey()
	offset := start
	for offset < last {
		if err := ctx.Err(); err != nil {
			return nil, classify(ctx, err)
		}
		batch := conn.ReadBatch(10e3, 1e6) // min 10KB, max 1MB
		read := 0
		for {
			m, err := batch.ReadMessage()
			if err != nil {
				break // Batch finished or error
			}
			read++
			offset = m.Offset + 1
			key := string(m.Key)
			if key == "" {
				key = "offset:" + strconv.FormatInt(m.Offset, 10)
			}
			acc.put(key, m.Value)
			if offset >= last {
				break
			}
		}
		if err := batch.Close(); err != nil && read == 0 {
			return nil, classify(ctx, fmt.Errorf("failed to read batch: %w", err))
		}
		if read == 0 {
			break
		}
	}

	records := acc.records()
	s.log.Debug("fetched telemetry tail",
		zap.Int64("from", start),
		zap.Int64("to", last),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (s *kafkaSource) Close() error { return nil }

// classify marks timeout-class errors as transient.
func classify(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) || errors.Is(err, kafka.RequestTimedOut) {
		return fmt.Errorf("%w: %w", models.ErrTransientFetch, err)
	}
	return err
}

// latestByKey keeps one value per key, ordered by when the key was first seen.
type latestByKey struct {
	order []string
	vals  map[string]json.RawMessage
}

func newLatestByKey() *latestByKey {
	return &latestByKey{vals: make(map[string]json.RawMessage)}
}

func (l *latestByKey) put(key string, value []byte) {
	if !json.Valid(value) {
		return
	}
	if _, ok := l.vals[key]; !ok {
		l.order = append(l.order, key)
	}
	// We create a copy because the reader reuses its buffers
	l.vals[key] = append(json.RawMessage(nil), value...)
}

func (l *latestByKey) records() []json.RawMessage {
	out := make([]json.RawMessage, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, l.vals[k])
	}
	return out
}
