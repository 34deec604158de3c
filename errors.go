package fixedseq

import (
	"go.llib.dev/fixedseq/memkit"
	"go.llib.dev/frameless/pkg/errorkit"
)

const (
	// ErrOutOfMemory is returned by New when the storage would exceed the memory limit.
	ErrOutOfMemory = memkit.ErrOutOfMemory
	// ErrInvalidCapacity is returned by New for a capacity of zero or less.
	ErrInvalidCapacity = memkit.ErrInvalidCapacity

	// ErrCapacityExceeded is returned by PushBack on a full Sequence.
	ErrCapacityExceeded errorkit.Error = "ErrCapacityExceeded"
	// ErrUnderflow is returned by PopBack on an empty Sequence.
	ErrUnderflow errorkit.Error = "ErrUnderflow"
	// ErrIndexOutOfRange is returned when reading outside of [0, Len()).
	ErrIndexOutOfRange errorkit.Error = "ErrIndexOutOfRange"
	// ErrClosed is returned by mutations and waits after Close.
	ErrClosed errorkit.Error = "ErrClosed"
	// ErrConcurrentModification is returned by strict iterators
	// when the Sequence changed during the traversal.
	ErrConcurrentModification errorkit.Error = "ErrConcurrentModification"
)
