package resource

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("resource backend closed")

// LocalBackend is an in-memory resource backend with borrow tracking.
type LocalBackend struct {
	entries  []entry
	freeList []Handle
	mu       sync.Mutex
	returned *sync.Cond
	closed   bool
}

type entry struct {
	value       any
	typeID      uint32
	borrowCount uint32
	valid       bool
	retiring    bool
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	b := &LocalBackend{
		entries:  make([]entry, 0, 16),
		freeList: make([]Handle, 0, 4),
	}
	b.returned = sync.NewCond(&b.mu)
	return b
}

// Create stores a value and returns a handle.
func (b *LocalBackend) Create(typeID uint32, value any) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	e := entry{
		typeID: typeID,
		value:  value,
		valid:  true,
	}

	if len(b.freeList) > 0 {
		handle := b.freeList[len(b.freeList)-1]
		b.freeList = b.freeList[:len(b.freeList)-1]
		b.entries[handle-1] = e
		return handle, nil
	}

	b.entries = append(b.entries, e)
	return Handle(len(b.entries)), nil
}

// lookup returns the live entry for handle. Caller holds b.mu.
func (b *LocalBackend) lookup(handle Handle) *entry {
	if handle == 0 {
		return nil
	}
	idx := int(handle - 1)
	if idx >= len(b.entries) {
		return nil
	}
	e := &b.entries[idx]
	if !e.valid {
		return nil
	}
	return e
}

// TypeID returns the type ID for a handle.
func (b *LocalBackend) TypeID(handle Handle) (uint32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(handle)
	if e == nil {
		return 0, false
	}
	return e.typeID, true
}

// Borrow pins a live entry and returns its value.
func (b *LocalBackend) Borrow(handle Handle) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(handle)
	if e == nil || e.retiring {
		return nil, false
	}
	e.borrowCount++
	return e.value, true
}

// ReturnBorrow decrements the borrow count for a handle and wakes a
// pending Drop once the count reaches zero.
func (b *LocalBackend) ReturnBorrow(handle Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(handle)
	if e == nil || e.borrowCount == 0 {
		return false
	}

	e.borrowCount--
	if e.borrowCount == 0 && e.retiring {
		b.returned.Broadcast()
	}
	return true
}

// Drop retires handle so no new borrow can succeed, blocks until every
// outstanding borrow has been returned, then frees the slot.
//
// Drop must not be called by a goroutine that itself holds a borrow on the
// same handle.
func (b *LocalBackend) Drop(handle Handle) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(handle)
	if e == nil || e.retiring {
		return nil, false
	}

	e.retiring = true
	for e.borrowCount > 0 {
		b.returned.Wait()
		// entries may have been reallocated by Create while waiting
		e = &b.entries[handle-1]
	}

	value := e.value
	*e = entry{}
	if !b.closed {
		b.freeList = append(b.freeList, handle)
	}
	return value, true
}

// Close stops accepting new entries, retires every live entry, waits for
// their borrows to be returned and then releases them.
func (b *LocalBackend) Close() error {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true

	// Entries already retiring belong to a pending Drop.
	var owned []int
	for i := range b.entries {
		e := &b.entries[i]
		if e.valid && !e.retiring {
			e.retiring = true
			owned = append(owned, i)
		}
	}
	for b.borrowed(owned) {
		b.returned.Wait()
	}

	var dropped []Dropper
	for _, i := range owned {
		if d, ok := b.entries[i].value.(Dropper); ok {
			dropped = append(dropped, d)
		}
		b.entries[i] = entry{}
	}
	b.freeList = nil
	b.mu.Unlock()

	for _, d := range dropped {
		d.Drop()
	}
	return nil
}

func (b *LocalBackend) borrowed(idx []int) bool {
	for _, i := range idx {
		if b.entries[i].borrowCount > 0 {
			return true
		}
	}
	return false
}

// Len returns the number of active resources.
func (b *LocalBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for _, e := range b.entries {
		if e.valid {
			count++
		}
	}
	return count
}
