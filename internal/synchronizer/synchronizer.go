// Package synchronizer keeps the canonical machine list fresh by polling the
// telemetry gateway, and publishes it to listeners only when it changes.
package synchronizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/normalizer"
)

type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
)

type Source interface {
	Fetch(ctx context.Context) ([]json.RawMessage, error)
}

// Listener receives each changed machine list. The slice must not be modified.
type Listener func(ctx context.Context, machines []models.MachineState)

type Snapshot struct {
	Machines     []models.MachineState `json:"machines"`
	LastSyncedAt time.Time             `json:"lastSyncedAt"`
	Fingerprint  string                `json:"fingerprint"`
	State        State                 `json:"state"`
	Error        string                `json:"error,omitempty"`
}

type Options struct {
	Interval time.Duration
	// Timeout bounds a single fetch; zero leaves it to the transport.
	Timeout time.Duration
	Now     func() time.Time
}

type listener struct {
	id int
	fn Listener
}

type Synchronizer struct {
	source Source
	norm   *normalizer.Normalizer
	log    *zap.Logger
	opts   Options

	// publishMu serializes listener fan-out. Never acquire it while holding mu.
	publishMu sync.Mutex

	mu          sync.Mutex
	generation  uint64
	cancel      context.CancelFunc
	token       string
	state       State
	machines    []models.MachineState
	fingerprint string
	version     uint64
	lastSynced  time.Time
	hasData     bool
	publicErr   error
	lastErrMsg  string
	listeners   []listener
	nextID      int
}

func New(source Source, norm *normalizer.Normalizer, log *zap.Logger, opts Options) *Synchronizer {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Synchronizer{
		source: source,
		norm:   norm,
		log:    log.Named("synchronizer"),
		opts:   opts,
		state:  StateIdle,
	}
}

// Run polls immediately and then on every interval until ctx is done.
func (s *Synchronizer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	go s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			if s.cancel != nil {
				s.cancel()
				s.cancel = nil
			}
			s.mu.Unlock()
			return
		case <-ticker.C:
			go s.tick(ctx)
		}
	}
}

func (s *Synchronizer) tick(ctx context.Context) {
	_ = s.Refresh(ctx)
}

// Refresh runs one fetch cycle, superseding any fetch still in flight.
// A superseded cycle returns nil: its result is discarded, not an error.
// The returned error is the one surfaced to the public snapshot, if any.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	fetchCtx, gen, token := s.begin(ctx)

	records, err := s.source.Fetch(fetchCtx)
	if err != nil {
		return s.fail(gen, token, err)
	}

	machines := s.norm.Batch(records)
	fp, err := Fingerprint(machines)
	if err != nil {
		return s.fail(gen, token, err)
	}
	return s.succeed(ctx, gen, token, machines, fp)
}

func (s *Synchronizer) begin(parent context.Context) (context.Context, uint64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.log.Debug("cancelling in-flight fetch", zap.String("token", s.token))
		s.cancel()
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, s.opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	s.generation++
	s.cancel = cancel
	s.token = uuid.NewString()
	s.state = StateFetching
	return ctx, s.generation, s.token
}

// finish releases the token of the current generation. Caller holds mu.
func (s *Synchronizer) finish() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = StateIdle
}

func (s *Synchronizer) succeed(ctx context.Context, gen uint64, token string, machines []models.MachineState, fp string) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.log.Debug("discarding superseded fetch result", zap.String("token", token))
		return nil
	}
	s.finish()
	s.lastSynced = s.opts.Now()
	s.hasData = true
	s.publicErr = nil
	if s.lastErrMsg != "" {
		s.log.Info("telemetry fetch recovered")
		s.lastErrMsg = ""
	}
	if fp == s.fingerprint {
		s.mu.Unlock()
		s.log.Debug("machine list unchanged", zap.Int("machines", len(machines)))
		return nil
	}
	s.machines = machines
	s.fingerprint = fp
	s.version++
	version := s.version
	s.mu.Unlock()

	s.publish(context.WithoutCancel(ctx), version, machines)
	return nil
}

func (s *Synchronizer) publish(ctx context.Context, version uint64, machines []models.MachineState) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	if version != s.version {
		// A newer list was stored meanwhile and will publish itself.
		s.mu.Unlock()
		return
	}
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	s.log.Info("publishing machine list", zap.Int("machines", len(machines)), zap.Int("listeners", len(listeners)))
	for _, l := range listeners {
		l.fn(ctx, machines)
	}
}

func (s *Synchronizer) fail(gen uint64, token string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.log.Debug("discarding superseded fetch failure", zap.String("token", token), zap.Error(err))
		return nil
	}
	s.finish()

	if errors.Is(err, context.Canceled) {
		return err
	}

	transient := IsTransient(err)
	msg := err.Error()
	changed := msg != s.lastErrMsg
	s.lastErrMsg = msg

	// A swallowed transient failure leaves publicErr as it was: a timeout
	// says nothing about whether an earlier fatal failure is resolved.
	// Only a successful fetch clears it.
	if transient && s.hasData {
		if changed {
			s.log.Warn("transient fetch failure, keeping last snapshot",
				zap.String("token", token),
				zap.Time("last_synced_at", s.lastSynced),
				zap.Error(err),
			)
		}
		return nil
	}

	kind := models.ErrFatalFetch
	if transient {
		kind = models.ErrTransientFetch
	}
	s.publicErr = fmt.Errorf("%w: %w", kind, err)
	if changed {
		s.log.Error("fetch failed", zap.String("token", token), zap.Bool("has_data", s.hasData), zap.Error(err))
	}
	return s.publicErr
}

// Subscribe registers fn for future publications and returns a function
// that removes it.
func (s *Synchronizer) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(l listener) bool { return l.id == id })
	}
}

func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Machines:     slices.Clone(s.machines),
		LastSyncedAt: s.lastSynced,
		Fingerprint:  s.fingerprint,
		State:        s.state,
	}
	if snap.Machines == nil {
		snap.Machines = []models.MachineState{}
	}
	if s.publicErr != nil {
		snap.Error = s.publicErr.Error()
	}
	return snap
}
