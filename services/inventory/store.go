package inventory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"machboard/pkg/kv"
)

// collectionKey is the fixed key the machine collection is persisted under.
const collectionKey = "machines"

type undoEntry struct {
	machine Machine
	index   int
}

// Store owns the canonical ordered machine collection, mirrors it to the
// key-value store after every mutation, and keeps a one-slot undo buffer
// for the most recent delete.
//
// All operations are safe for concurrent use; the mutex serialises the
// mutation and the undo-buffer write as one step.
type Store struct {
	mu       sync.Mutex
	kv       *kv.Store
	logger   zerolog.Logger
	machines []Machine
	undo     *undoEntry
	degraded bool
}

// StoreOptions configures NewStore.
type StoreOptions struct {
	// Seed is persisted and used when the key-value store holds no
	// collection yet. A nil Seed starts the collection empty.
	Seed   []Machine
	Logger zerolog.Logger
}

// NewStore initialises a Store from the key-value store: an existing
// collection wins, else the seed is persisted and used, else the collection
// starts empty. An unreadable or corrupt stored collection falls back to the
// seed with a warning instead of failing startup.
func NewStore(kvStore *kv.Store, opts StoreOptions) *Store {
	s := &Store{
		kv:     kvStore,
		logger: opts.Logger,
	}

	var seedPtr *[]Machine
	if opts.Seed != nil {
		seedPtr = &opts.Seed
	}

	loaded, err := kv.LoadOrSeed(kvStore, collectionKey, seedPtr)
	if err != nil {
		s.logger.Warn().Err(err).Msg("stored collection unreadable, continuing in-memory from seed")
		s.degraded = true
		loaded = opts.Seed
	}
	s.machines = loaded
	if s.machines == nil {
		s.machines = []Machine{}
	}
	return s
}

// Degraded reports whether persistence has failed for this session and the
// store is operating in-memory only.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Add appends a fully-formed machine record to the end of the collection.
// Duplicate ids are not checked; id uniqueness is the caller's contract.
func (s *Store) Add(m Machine) error {
	if err := ValidateName(m.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.machines = append(s.machines, m)
	s.persistLocked()
	mutationsTotal.WithLabelValues("add").Inc()
	return nil
}

// Update replaces the record whose id matches m.ID, preserving its position.
// A missing id is a silent no-op.
func (s *Store) Update(m Machine) error {
	if err := ValidateName(m.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.machines {
		if s.machines[i].ID == m.ID {
			s.machines[i] = m
			s.persistLocked()
			mutationsTotal.WithLabelValues("update").Inc()
			return nil
		}
	}
	return nil
}

// Delete removes the record with the given id and remembers it, with its
// original index, in the undo buffer. Each delete overwrites the buffer.
// A missing id is a silent no-op that leaves the buffer untouched.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.machines {
		if s.machines[i].ID == id {
			s.undo = &undoEntry{machine: s.machines[i], index: i}
			s.machines = append(s.machines[:i], s.machines[i+1:]...)
			s.persistLocked()
			mutationsTotal.WithLabelValues("delete").Inc()
			return
		}
	}
}

// Undo reinserts the most recently deleted record at its remembered index
// and clears the buffer. The index is clamped to the current collection
// length in case later deletes shrank it. Returns false when the buffer
// is empty.
func (s *Store) Undo() (Machine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.undo == nil {
		return Machine{}, false
	}

	entry := *s.undo
	s.undo = nil

	idx := entry.index
	if idx > len(s.machines) {
		idx = len(s.machines)
	}

	s.machines = append(s.machines, Machine{})
	copy(s.machines[idx+1:], s.machines[idx:])
	s.machines[idx] = entry.machine

	s.persistLocked()
	mutationsTotal.WithLabelValues("undo").Inc()
	return entry.machine, true
}

// Get returns the record with the given id.
func (s *Store) Get(id uuid.UUID) (Machine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.machines {
		if m.ID == id {
			return m, true
		}
	}
	return Machine{}, false
}

// List returns a copy of the collection in insertion order.
func (s *Store) List() []Machine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Machine, len(s.machines))
	copy(out, s.machines)
	return out
}

// persistLocked writes the current collection snapshot through the adapter.
// A failed write degrades the store to in-memory-only for the rest of the
// session; the in-memory mutation has already been applied and stands.
func (s *Store) persistLocked() {
	machinesGauge.Set(float64(len(s.machines)))
	if s.degraded {
		return
	}
	if err := kv.Save(s.kv, collectionKey, s.machines); err != nil {
		s.logger.Warn().Err(err).Msg("persisting collection failed, continuing in-memory only")
		s.degraded = true
	}
}
