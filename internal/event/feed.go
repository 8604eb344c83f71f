// Package event provides a small typed publish/subscribe feed used to
// broadcast state changes (role, edit mode, ledger activity) to whoever
// registered interest, without the publisher knowing its subscribers.
package event

import "sync"

// Feed fans out values of type T to registered handlers.  Handlers run
// synchronously on the publisher's goroutine in registration order.
type Feed[T any] struct {
	mu       sync.RWMutex
	next     uint64
	handlers map[uint64]func(T)
	order    []uint64
}

// Subscribe registers fn and returns the function that removes it.
// Calling the returned function more than once is harmless.
func (f *Feed[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers == nil {
		f.handlers = make(map[uint64]func(T))
	}
	f.next++
	id := f.next
	f.handlers[id] = fn
	f.order = append(f.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { f.remove(id) })
	}
}

func (f *Feed[T]) remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// Publish delivers v to every current subscriber.
func (f *Feed[T]) Publish(v T) {
	f.mu.RLock()
	fns := make([]func(T), 0, len(f.order))
	for _, id := range f.order {
		fns = append(fns, f.handlers[id])
	}
	f.mu.RUnlock()
	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of active subscribers.
func (f *Feed[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.order)
}
