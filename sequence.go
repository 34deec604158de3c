package fixedseq

import (
	"context"

	"github.com/dustin/go-humanize"
	uuid "github.com/satori/go.uuid"
	"go.llib.dev/fixedseq/internal/guard"
	"go.llib.dev/fixedseq/memkit"
	"go.llib.dev/frameless/pkg/iterkit"
	"go.llib.dev/frameless/pkg/logging"
	"go.llib.dev/frameless/port/option"
)

// Sequence is a capacity bounded list that grows and shrinks at its back.
//
// Its storage is acquired once, in New, and released once, in Close.
// Elements are constructed into the storage by PushBack and destroyed by PopBack or Close.
// Element types implementing memkit.Finalizer get their Finalize method called on destruction.
//
// Mutations are serialised.
// Reads (Get, Len) are individually safe, but a series of reads, such as an iteration,
// is not isolated from concurrent mutations. See Iterator.
type Sequence[T any] struct {
	id       string
	capacity int
	region   *memkit.Region[T]
	config   Config

	guard  guard.Guard
	count  int
	closed bool
}

// New acquires storage for capacity elements and returns an empty Sequence.
// When the storage can't be acquired, it fails with ErrOutOfMemory and no Sequence is made.
func New[T any](capacity int, opts ...Option) (*Sequence[T], error) {
	c := option.ToConfig(opts)
	ctx := context.Background()
	region, err := memkit.Acquire[T](capacity, memkit.Limit(c.MemoryLimit))
	if err != nil {
		c.logger().Error(ctx, "failed to acquire sequence storage",
			logging.Field("capacity", capacity),
			logging.ErrField(err))
		return nil, err
	}
	s := &Sequence[T]{
		id:       uuid.NewV4().String(),
		capacity: capacity,
		region:   region,
		config:   c,
	}
	c.logger().Info(ctx, "sequence created", s.fields(),
		logging.Field("storage_size", humanize.IBytes(region.SizeInBytes())))
	return s, nil
}

// ID identifies the Sequence in log entries.
func (s *Sequence[T]) ID() string { return s.id }

// Cap returns the fixed capacity of the Sequence.
func (s *Sequence[T]) Cap() int { return s.capacity }

// Len returns the number of live elements.
func (s *Sequence[T]) Len() int {
	s.guard.RLock()
	defer s.guard.RUnlock()
	return s.count
}

// PushBack constructs value at the end of the Sequence.
// The element is fully constructed before it becomes visible through Len.
func (s *Sequence[T]) PushBack(value T) error {
	s.guard.Lock()
	defer s.guard.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.count == s.capacity {
		err := ErrCapacityExceeded.F("sequence is full with %d elements", s.capacity)
		s.logger().Warn(context.Background(), "push rejected", s.fields(), logging.ErrField(err))
		return err
	}
	memkit.ConstructAt(s.region, s.count, value)
	s.count++
	s.guard.Broadcast()
	s.logger().Debug(context.Background(), "element pushed", s.fields())
	return nil
}

// PopBack destroys the last element of the Sequence.
func (s *Sequence[T]) PopBack() error {
	s.guard.Lock()
	defer s.guard.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.count == 0 {
		err := ErrUnderflow.F("sequence is empty")
		s.logger().Warn(context.Background(), "pop rejected", s.fields(), logging.ErrField(err))
		return err
	}
	memkit.DestroyAt(s.region, s.count-1)
	s.count--
	s.guard.Broadcast()
	s.logger().Debug(context.Background(), "element popped", s.fields())
	return nil
}

// Get returns the element at index.
// Only indexes in [0, Len()) are readable, anything else yields ErrIndexOutOfRange.
func (s *Sequence[T]) Get(index int) (T, error) {
	s.guard.RLock()
	defer s.guard.RUnlock()
	return s.get(index)
}

// getSince is Get, but it fails when the Sequence changed since the given generation.
func (s *Sequence[T]) getSince(index int, generation uint64) (T, error) {
	s.guard.RLock()
	defer s.guard.RUnlock()
	if current := s.guard.Generation(); current != generation {
		var zero T
		return zero, ErrConcurrentModification.F("sequence changed %d time(s) during the iteration", current-generation)
	}
	return s.get(index)
}

func (s *Sequence[T]) get(index int) (T, error) {
	if index < 0 || s.count <= index {
		var zero T
		return zero, ErrIndexOutOfRange.F("index %d is not within [0, %d)", index, s.count)
	}
	return *s.region.At(index), nil
}

// Close destroys every live element, from the first to the last, then releases the storage.
// Subsequent calls do nothing.
func (s *Sequence[T]) Close() error {
	s.guard.Lock()
	defer s.guard.Unlock()
	if s.closed {
		return nil
	}
	destroyed := s.count
	for i := 0; i < s.count; i++ {
		memkit.DestroyAt(s.region, i)
	}
	s.count = 0
	s.region.Release()
	s.closed = true
	s.guard.Broadcast()
	s.logger().Debug(context.Background(), "sequence closed", s.fields(),
		logging.Field("destroyed", destroyed))
	return nil
}

// WaitUntilNonEmpty blocks until the Sequence has at least one element.
// It returns early with the context's error when the context is done,
// or with ErrClosed when the Sequence gets closed.
func (s *Sequence[T]) WaitUntilNonEmpty(ctx context.Context) error {
	var closed bool
	err := s.guard.Wait(ctx, func() bool {
		closed = s.closed
		return closed || 0 < s.count
	})
	if err != nil {
		return err
	}
	if closed {
		return ErrClosed
	}
	return nil
}

// Iterator returns a new Iterator bound to the Sequence.
func (s *Sequence[T]) Iterator() *Iterator[T] {
	return &Iterator[T]{seq: s}
}

// Iter traverses the Sequence with an Iterator.
// When an element can't be read, or a strict traversal is broken,
// the error is yielded and the traversal stops.
func (s *Sequence[T]) Iter() iterkit.ErrSeq[T] {
	return func(yield func(T, error) bool) {
		it := s.Iterator()
		for it.First(); !it.IsDone(); it.Next() {
			v, err := it.Current()
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// Collect returns the elements of the Sequence in order.
// When the traversal is broken by a concurrent mutation, the cause is returned.
func (s *Sequence[T]) Collect() ([]T, error) {
	return iterkit.CollectPullIter[T](s.Iterator().Pull())
}

func (s *Sequence[T]) generation() uint64 {
	return s.guard.Generation()
}

func (s *Sequence[T]) logger() *logging.Logger {
	return s.config.logger()
}

// fields must be used while the guard is held.
func (s *Sequence[T]) fields() logging.Detail {
	return logging.Fields{
		"sequence_id": s.id,
		"len":         s.count,
		"capacity":    s.capacity,
	}
}
