package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"machboard/pkg/bus"
	"machboard/pkg/kv"
)

const (
	machineEventsSubject = "machboard.machines.>"
	auditKey             = "audit"
	auditLimit           = 500
)

// AuditEntry records one machine lifecycle event observed on the bus.
type AuditEntry struct {
	Subject string          `json:"subject"`
	Payload json.RawMessage `json:"payload"`
	At      time.Time       `json:"at"`
}

// Recorder subscribes to machine lifecycle events and appends a bounded
// audit trail into the key-value store.
type Recorder struct {
	kv     *kv.Store
	bus    *bus.Bus
	logger zerolog.Logger

	mu  sync.Mutex
	sub io.Closer
}

// NewRecorder constructs a Recorder for the provided dependencies.
func NewRecorder(kvStore *kv.Store, b *bus.Bus, logger zerolog.Logger) (*Recorder, error) {
	if kvStore == nil {
		return nil, errors.New("kv store is required")
	}
	if b == nil {
		return nil, errors.New("bus is required")
	}
	return &Recorder{kv: kvStore, bus: b, logger: logger}, nil
}

// Start subscribes to machine events and records them until ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) error {
	if r == nil {
		return errors.New("nil recorder")
	}

	sub, err := r.bus.Subscribe(ctx, machineEventsSubject, r.record)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.sub = sub
	r.mu.Unlock()
	return nil
}

// Close stops the underlying subscription if it was created.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sub == nil {
		return nil
	}
	err := r.sub.Close()
	r.sub = nil
	return err
}

// Trail returns the recorded audit entries, oldest first.
func (r *Recorder) Trail() ([]AuditEntry, error) {
	entries, _, err := kv.Load[[]AuditEntry](r.kv, auditKey)
	return entries, err
}

func (r *Recorder) record(_ context.Context, subject string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, _, err := kv.Load[[]AuditEntry](r.kv, auditKey)
	if err != nil {
		r.logger.Warn().Err(err).Msg("audit trail unreadable, starting fresh")
		entries = nil
	}

	entries = append(entries, AuditEntry{
		Subject: subject,
		Payload: json.RawMessage(data),
		At:      time.Now().UTC(),
	})
	if len(entries) > auditLimit {
		entries = entries[len(entries)-auditLimit:]
	}

	if err := kv.Save(r.kv, auditKey, entries); err != nil {
		r.logger.Warn().Err(err).Msg("persisting audit trail failed")
		return err
	}
	return nil
}
