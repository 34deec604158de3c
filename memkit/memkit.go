// Package memkit separates acquiring room for elements from the lifetime of the elements themselves.
//
// A Region owns storage for a fixed number of slots.
// Slots start out free, and they become live only through ConstructAt,
// and free again only through DestroyAt.
// Neither operation touches the lifetime of the Region itself,
// which ends with a single Release.
package memkit

import (
	"fmt"
	"reflect"

	"github.com/dustin/go-humanize"
	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/port/option"
)

const (
	ErrOutOfMemory     errorkit.Error = "ErrOutOfMemory"
	ErrInvalidCapacity errorkit.Error = "ErrInvalidCapacity"
)

// DefaultLimit is the maximum number of bytes a single Region may claim
// when no Limit option is supplied.
const DefaultLimit = 1 << 30

// Finalizer is implemented by element types that need teardown logic
// when their slot is destroyed. Both value and pointer receivers are recognised.
// Nil pointer elements are not finalized.
type Finalizer interface {
	Finalize()
}

type AcquireConfig struct {
	// Limit is the maximum number of bytes a Region may claim.
	// Zero or negative values fall back to DefaultLimit.
	Limit int
}

func (c *AcquireConfig) Init() { c.Limit = DefaultLimit }

func (c AcquireConfig) Configure(t *AcquireConfig) { *t = c }

func (c AcquireConfig) getLimit() int {
	if c.Limit <= 0 {
		return DefaultLimit
	}
	return c.Limit
}

type AcquireOption option.Option[AcquireConfig]

func Limit(n int) AcquireOption {
	return option.Func[AcquireConfig](func(c *AcquireConfig) {
		c.Limit = n
	})
}

// Region is a fixed set of element slots.
// The zero value is not usable, use Acquire.
type Region[T any] struct {
	slots    []slot[T]
	released bool
}

type slot[T any] struct {
	value T
	live  bool
}

// Acquire claims storage for capacity slots, all of them free.
// When the storage would exceed the configured Limit, it fails with ErrOutOfMemory,
// and no Region is returned.
func Acquire[T any](capacity int, opts ...AcquireOption) (*Region[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity.F("capacity must be positive, got %d", capacity)
	}
	var (
		c     = option.ToConfig(opts)
		size  = SlotSize[T]()
		limit = uint64(c.getLimit())
	)
	if size != 0 && uint64(capacity) > limit/size {
		return nil, ErrOutOfMemory.F("%d slots of %s exceed the limit of %s",
			capacity, humanize.IBytes(size), humanize.IBytes(limit))
	}
	return &Region[T]{slots: make([]slot[T], capacity)}, nil
}

// SlotSize reports how many bytes a single slot of T occupies.
func SlotSize[T any]() uint64 {
	return uint64(reflect.TypeFor[slot[T]]().Size())
}

// Cap returns the number of slots in the Region.
func (r *Region[T]) Cap() int {
	r.mustBeAcquired()
	return len(r.slots)
}

// SizeInBytes is the amount of storage claimed by the Region.
func (r *Region[T]) SizeInBytes() uint64 {
	r.mustBeAcquired()
	return uint64(len(r.slots)) * SlotSize[T]()
}

// IsLive tells if the slot at the given index holds a constructed element.
func (r *Region[T]) IsLive(index int) bool {
	r.mustBeInRange(index)
	return r.slots[index].live
}

// At returns the element of a live slot.
// Reading a free slot is a programming error.
func (r *Region[T]) At(index int) *T {
	r.mustBeInRange(index)
	s := &r.slots[index]
	if !s.live {
		panic(fmt.Sprintf("memkit: read of free slot %d", index))
	}
	return &s.value
}

// Release gives the storage back.
// It doesn't destroy live slots, that is the responsibility of the owner.
// Releasing a Region twice is a programming error.
func (r *Region[T]) Release() {
	if r == nil {
		panic("memkit: release of nil Region")
	}
	if r.released {
		panic("memkit: Region released twice")
	}
	r.released = true
	r.slots = nil
}

// ConstructAt makes the slot at index live with the given value.
// No other slot is affected.
// Constructing over a live slot is a programming error.
func ConstructAt[T any](r *Region[T], index int, value T) {
	r.mustBeInRange(index)
	s := &r.slots[index]
	if s.live {
		panic(fmt.Sprintf("memkit: construct over live slot %d", index))
	}
	s.value = value
	s.live = true
}

// DestroyAt runs the teardown logic of the element at index, and makes its slot free.
// The storage of the Region stays intact.
// Destroying a free slot is a programming error.
func DestroyAt[T any](r *Region[T], index int) {
	r.mustBeInRange(index)
	s := &r.slots[index]
	if !s.live {
		panic(fmt.Sprintf("memkit: destroy of free slot %d", index))
	}
	finalize(&s.value)
	var zero T
	s.value = zero
	s.live = false
}

func finalize[T any](v *T) {
	if f, ok := any(*v).(Finalizer); ok {
		if isNilPointer(f) {
			return
		}
		f.Finalize()
		return
	}
	if f, ok := any(v).(Finalizer); ok {
		f.Finalize()
	}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func (r *Region[T]) mustBeAcquired() {
	if r == nil {
		panic("memkit: nil Region")
	}
	if r.released {
		panic("memkit: use of released Region")
	}
}

func (r *Region[T]) mustBeInRange(index int) {
	r.mustBeAcquired()
	if index < 0 || len(r.slots) <= index {
		panic(fmt.Sprintf("memkit: slot index %d is out of range [0, %d)", index, len(r.slots)))
	}
}
