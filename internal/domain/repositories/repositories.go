package repositories

import (
	"time"

	shared "github.com/whiteelite/registry/pkg/shared/domain/entities"
)

// Predicate selects records for read operations.
type Predicate[T any] func(T) bool

// Registry owns a collection of records of one type. It assigns identities,
// preserves insertion order and is the only writer of the records it holds:
// reads hand out copies.
type Registry[T any] interface {
	Create(entity T) (shared.ID, error)
	Delete(id shared.ID) error
	FindByID(id shared.ID) (T, bool)
	UpdateField(id shared.ID, field string, value any) error
	Update(id shared.ID, mutate func(*T) error) error
	FilterBy(p Predicate[T]) []T
	List() []T
	Len() int
}

type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent describes one successful mutation. Entity holds a copy of the
// record after the change (before it, for deletions). Seq numbers the
// mutations of one registry from 1 in the order they were made.
type ChangeEvent struct {
	Seq        uint64
	Kind       ChangeKind
	EntityID   shared.ID
	Entity     any
	OccurredAt time.Time
}

// ChangeSink receives change events in Seq order. Emit is called outside
// the registry's lock, one event at a time, and must not block for long or
// write to the registry that emitted the event.
type ChangeSink interface {
	Emit(event ChangeEvent)
}

// ChangeSinkFunc adapts a function to ChangeSink.
type ChangeSinkFunc func(ChangeEvent)

func (f ChangeSinkFunc) Emit(event ChangeEvent) { f(event) }

// MessageQueueConsumer delivers consumed messages and consumer failures.
// Both channels are closed once the consumer stops.
type MessageQueueConsumer[M any] interface {
	ToConsumeBuffered() <-chan M
	Errors() <-chan error
	Close()
}
