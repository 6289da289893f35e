package freelist

import (
	"fmt"
	"iter"
	"math"
)

// noFree terminates the free slot chain.
const noFree = math.MaxUint32

// Handle owns a slot. Exactly one Handle exists per inserted value; it is
// given up by passing it to Free.
type Handle struct {
	index uint32
	epoch uint32
}

// Weak returns a non-owning reference to the same slot.
func (h Handle) Weak() WeakHandle {
	return WeakHandle(h)
}

func (h Handle) String() string {
	return fmt.Sprintf("Handle(%d@%d)", h.index, h.epoch)
}

// WeakHandle refers to a slot without owning it. It becomes stale once the
// slot is freed, even if the slot is reused for another value.
//
// The zero WeakHandle never refers to a live slot.
type WeakHandle struct {
	index uint32
	epoch uint32
}

// IsZero reports whether h is the zero WeakHandle.
func (h WeakHandle) IsZero() bool {
	return h == WeakHandle{}
}

func (h WeakHandle) String() string {
	return fmt.Sprintf("WeakHandle(%d@%d)", h.index, h.epoch)
}

// slot stores one value. epoch is bumped every time the slot is freed, so
// handles from earlier occupants no longer match. Epoch 0 is never live.
type slot[T any] struct {
	value    T
	epoch    uint32
	nextFree uint32
	occupied bool
}

// List is a slot table that reuses freed slots without moving live values.
// The zero List is empty and ready to use.
//
// List is not safe for concurrent use.
type List[T any] struct {
	slots    []slot[T]
	freeHead uint32
	active   int
	inited   bool
}

// New creates an empty List.
func New[T any]() *List[T] {
	return &List[T]{freeHead: noFree, inited: true}
}

func (l *List[T]) init() {
	if !l.inited {
		l.freeHead = noFree
		l.inited = true
	}
}

// Insert stores v and returns the owning handle.
func (l *List[T]) Insert(v T) Handle {
	l.init()
	l.active++

	if l.freeHead != noFree {
		index := l.freeHead
		s := &l.slots[index]
		l.freeHead = s.nextFree
		s.value = v
		s.occupied = true
		s.nextFree = noFree
		return Handle{index: index, epoch: s.epoch}
	}

	index := uint32(len(l.slots))
	l.slots = append(l.slots, slot[T]{value: v, epoch: 1, nextFree: noFree, occupied: true})
	return Handle{index: index, epoch: 1}
}

// Get returns the value owned by h. An owning handle is always live, so a
// mismatch means h was used after Free and panics.
func (l *List[T]) Get(h Handle) *T {
	v, ok := l.GetOpt(h.Weak())
	if !ok {
		panic(fmt.Sprintf("freelist: %v used after free", h))
	}
	return v
}

// GetOpt returns the value referred to by h, or false if it was freed.
func (l *List[T]) GetOpt(h WeakHandle) (*T, bool) {
	if int(h.index) >= len(l.slots) {
		return nil, false
	}
	s := &l.slots[h.index]
	if !s.occupied || s.epoch != h.epoch {
		return nil, false
	}
	return &s.value, true
}

// Free removes the value owned by h and returns it. Every handle to the slot
// becomes stale.
func (l *List[T]) Free(h Handle) T {
	v := *l.Get(h)

	s := &l.slots[h.index]
	var zero T
	s.value = zero
	s.occupied = false
	s.epoch++
	if s.epoch == 0 {
		s.epoch = 1
	}
	s.nextFree = l.freeHead
	l.freeHead = h.index
	l.active--

	return v
}

// Clear frees every slot. Outstanding handles become stale.
func (l *List[T]) Clear() {
	l.init()
	l.freeHead = noFree
	l.active = 0
	for i := len(l.slots) - 1; i >= 0; i-- {
		s := &l.slots[i]
		if s.occupied {
			var zero T
			s.value = zero
			s.occupied = false
			s.epoch++
			if s.epoch == 0 {
				s.epoch = 1
			}
		}
		s.nextFree = l.freeHead
		l.freeHead = uint32(i)
	}
}

// Len returns the number of live values.
func (l *List[T]) Len() int {
	return l.active
}

// All iterates over live values in slot order.
func (l *List[T]) All() iter.Seq2[WeakHandle, *T] {
	return func(yield func(WeakHandle, *T) bool) {
		for i := range l.slots {
			s := &l.slots[i]
			if !s.occupied {
				continue
			}
			if !yield(WeakHandle{index: uint32(i), epoch: s.epoch}, &s.value) {
				return
			}
		}
	}
}
