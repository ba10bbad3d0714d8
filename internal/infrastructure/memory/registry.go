// Package memory provides the in-memory entity registry: an insertion-ordered
// collection of records that assigns monotonically increasing identities and
// is the sole writer of the records it owns.
package memory

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/whiteelite/registry/internal/domain/entities"
	domainrepos "github.com/whiteelite/registry/internal/domain/repositories"
	shared "github.com/whiteelite/registry/pkg/shared/domain/entities"
)

// Record is the constraint for registry element types: a pointer to T must
// carry an identity and expose named fields.
type Record[T any] interface {
	*T
	shared.Identifiable
	shared.Fielder
}

type options struct {
	strict bool
	logger *slog.Logger
	sink   domainrepos.ChangeSink
	now    func() time.Time
}

type Option func(*options)

// WithStrictLookups makes Delete, UpdateField and Update return an error
// wrapping shared.ErrNotFound for an absent id instead of silently doing
// nothing.
func WithStrictLookups() Option {
	return func(o *options) { o.strict = true }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithChangeSink(sink domainrepos.ChangeSink) Option {
	return func(o *options) { o.sink = sink }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Registry is safe for concurrent use. One mutex guards the collection, the
// position index, the id counter and the change sequence together.
type Registry[T any, P Record[T]] struct {
	mu      sync.RWMutex
	items   []T
	index   map[shared.ID]int
	lastID  shared.ID
	lastSeq uint64

	// delivered is the sequence number of the last event handed to the sink.
	emitMu    sync.Mutex
	emitCond  *sync.Cond
	delivered uint64

	opts options
}

func New[T any, P Record[T]](opts ...Option) *Registry[T, P] {
	o := options{
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry[T, P]{
		index: make(map[shared.ID]int),
		opts:  o,
	}
	r.emitCond = sync.NewCond(&r.emitMu)
	return r
}

// Create assigns the next identity to entity, appends it and returns the id.
// Any identity already set on entity is overwritten.
func (r *Registry[T, P]) Create(entity T) (shared.ID, error) {
	if v, ok := any(P(&entity)).(shared.Validator); ok {
		if err := v.Validate(); err != nil {
			return 0, fmt.Errorf("create: %w", err)
		}
	}

	r.mu.Lock()
	r.lastID++
	id := r.lastID
	P(&entity).AssignIdentity(id)
	r.items = append(r.items, entity)
	r.index[id] = len(r.items) - 1
	seq := r.nextSeq()
	r.mu.Unlock()

	r.opts.logger.Debug("entity created", "id", id)
	r.emit(seq, domainrepos.ChangeCreated, id, entity)
	return id, nil
}

// Delete removes the entity with the given id. Deleting an absent id is a
// no-op unless strict lookups are enabled.
func (r *Registry[T, P]) Delete(id shared.ID) error {
	r.mu.Lock()
	pos, ok := r.index[id]
	if !ok {
		r.mu.Unlock()
		return r.missing("delete", id)
	}
	removed := r.items[pos]
	r.items = slices.Delete(r.items, pos, pos+1)
	delete(r.index, id)
	for i := pos; i < len(r.items); i++ {
		r.index[P(&r.items[i]).Identity()] = i
	}
	seq := r.nextSeq()
	r.mu.Unlock()

	r.opts.logger.Debug("entity deleted", "id", id)
	r.emit(seq, domainrepos.ChangeDeleted, id, removed)
	return nil
}

func (r *Registry[T, P]) FindByID(id shared.ID) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return r.items[pos], true
}

// UpdateField sets one named attribute of the entity in place. An absent id
// is a no-op unless strict lookups are enabled; an unknown field or a value
// of the wrong type is rejected and leaves the entity unchanged.
func (r *Registry[T, P]) UpdateField(id shared.ID, field string, value any) error {
	return r.update("update field", id, func(p P) error {
		return p.SetField(field, value)
	})
}

// Update applies mutate to a copy of the entity and commits the copy only
// when mutate succeeds. The identity cannot be changed by mutate.
func (r *Registry[T, P]) Update(id shared.ID, mutate func(*T) error) error {
	return r.update("update", id, func(p P) error {
		return mutate((*T)(p))
	})
}

func (r *Registry[T, P]) update(op string, id shared.ID, apply func(P) error) error {
	r.mu.Lock()
	pos, ok := r.index[id]
	if !ok {
		r.mu.Unlock()
		return r.missing(op, id)
	}

	next := r.items[pos]
	if err := apply(P(&next)); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("%s %d: %w", op, id, err)
	}
	P(&next).AssignIdentity(id)
	r.items[pos] = next
	seq := r.nextSeq()
	r.mu.Unlock()

	r.opts.logger.Debug("entity updated", "id", id, "op", op)
	r.emit(seq, domainrepos.ChangeUpdated, id, next)
	return nil
}

// FilterBy returns the entities matching p in insertion order. A nil
// predicate matches everything. p runs under the read lock and must not call
// write operations on the same registry.
func (r *Registry[T, P]) FilterBy(p domainrepos.Predicate[T]) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0, len(r.items))
	for _, item := range r.items {
		if p == nil || p(item) {
			out = append(out, item)
		}
	}
	return out
}

func (r *Registry[T, P]) List() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.items)
}

func (r *Registry[T, P]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

func (r *Registry[T, P]) missing(op string, id shared.ID) error {
	r.opts.logger.Debug("entity not found", "id", id, "op", op)
	if r.opts.strict {
		return fmt.Errorf("%s %d: %w", op, id, shared.ErrNotFound)
	}
	return nil
}

// nextSeq numbers a mutation. Callers hold the write lock.
func (r *Registry[T, P]) nextSeq() uint64 {
	if r.opts.sink == nil {
		return 0
	}
	r.lastSeq++
	return r.lastSeq
}

// emit hands the event to the sink once every lower-numbered event has been
// handed over, so the sink sees changes in the order they were made. The
// sink must not call write operations of the same registry.
func (r *Registry[T, P]) emit(seq uint64, kind domainrepos.ChangeKind, id shared.ID, entity T) {
	if r.opts.sink == nil {
		return
	}

	r.emitMu.Lock()
	for r.delivered+1 != seq {
		r.emitCond.Wait()
	}
	// A panicking sink must not stall later events.
	defer func() {
		r.delivered = seq
		r.emitCond.Broadcast()
		r.emitMu.Unlock()
	}()

	r.opts.sink.Emit(domainrepos.ChangeEvent{
		Seq:        seq,
		Kind:       kind,
		EntityID:   id,
		Entity:     entity,
		OccurredAt: r.opts.now(),
	})
}

// Compile-time assertions to ensure interface conformance
var (
	_ domainrepos.Registry[entities.Task]    = (*Registry[entities.Task, *entities.Task])(nil)
	_ domainrepos.Registry[entities.Account] = (*Registry[entities.Account, *entities.Account])(nil)
)
