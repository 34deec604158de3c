package fixedseq

import (
	"go.llib.dev/frameless/pkg/iterkit"
)

// Iterator define a separate object that encapsulates traversing a Sequence.
// It doesn't know how the Sequence stores its elements,
// it only relies on the index based read and the length of the Sequence.
//
//	it := seq.Iterator()
//	for it.First(); !it.IsDone(); it.Next() {
//		v, err := it.Current()
//		...
//	}
//
// An Iterator starts out before the first element,
// and only First moves it into the Sequence.
// Once it is past the last element, it stays exhausted until the next First.
//
// Iteration is not isolated from concurrent mutation.
// The Iterator holds no lock between calls,
// so when the Sequence is pushed or popped during a traversal,
// elements can be missed or visited twice,
// and Current can fail with ErrIndexOutOfRange.
// With WithStrictIteration, Current fails with ErrConcurrentModification instead,
// as soon as the Sequence changed since the last First.
// A shrinking Sequence can make IsDone end a strict traversal early,
// so check Err once the loop is over.
//
// An Iterator is meant for a single traversal at a time, it is not safe to share it between goroutines.
// It must not outlive the Sequence.
type Iterator[T any] struct {
	seq        *Sequence[T]
	cursor     int
	started    bool
	generation uint64
}

// First rewinds the Iterator to the first element.
func (it *Iterator[T]) First() {
	it.cursor = 0
	it.started = true
	it.generation = it.seq.generation()
}

// Next moves the Iterator to the following element.
// It does nothing before First.
// Calling it on an exhausted Iterator is allowed, but Current will keep failing.
func (it *Iterator[T]) Next() {
	if !it.started {
		return
	}
	it.cursor++
}

// IsDone reports whether there is no current element.
// It is true before First, and after Next moved past the last element.
// It only looks at the length of the Sequence,
// so in strict mode a traversal broken by a pop ends here, and Err tells why.
func (it *Iterator[T]) IsDone() bool {
	if !it.started {
		return true
	}
	return it.seq.Len() <= it.cursor
}

// Current returns the element under the cursor.
// When IsDone would be true, it fails with ErrIndexOutOfRange.
func (it *Iterator[T]) Current() (T, error) {
	if !it.started {
		var zero T
		return zero, ErrIndexOutOfRange.F("iterator is not started yet")
	}
	if it.seq.config.StrictIteration {
		return it.seq.getSince(it.cursor, it.generation)
	}
	return it.seq.Get(it.cursor)
}

// Err returns ErrConcurrentModification when strict iteration is enabled
// and the Sequence changed since the last First.
// Without strict iteration it is always nil.
func (it *Iterator[T]) Err() error {
	if !it.started || !it.seq.config.StrictIteration {
		return nil
	}
	if current := it.seq.generation(); current != it.generation {
		return ErrConcurrentModification.F("sequence changed %d time(s) during the iteration", current-it.generation)
	}
	return nil
}

// Index returns the position of the cursor, or -1 before First.
func (it *Iterator[T]) Index() int {
	if !it.started {
		return -1
	}
	return it.cursor
}

// Pull adapts the Iterator to iterkit.PullIter.
// The traversal starts from the first element, regardless of the current cursor.
func (it *Iterator[T]) Pull() iterkit.PullIter[T] {
	return &pullIter[T]{it: it}
}

type pullIter[T any] struct {
	it     *Iterator[T]
	begun  bool
	closed bool
	value  T
	err    error
}

func (i *pullIter[T]) Next() bool {
	if i.closed || i.err != nil {
		return false
	}
	if i.begun {
		i.it.Next()
	} else {
		i.it.First()
		i.begun = true
	}
	if i.it.IsDone() {
		i.err = i.it.Err()
		return false
	}
	v, err := i.it.Current()
	if err != nil {
		i.err = err
		return false
	}
	i.value = v
	return true
}

func (i *pullIter[T]) Value() T { return i.value }

func (i *pullIter[T]) Err() error { return i.err }

func (i *pullIter[T]) Close() error {
	i.closed = true
	return nil
}
