package service

import (
	"sort"
	"sync"
)

// Dispatcher runs change notifications. While held, notifications are queued
// and flushed in order by the matching Release, so a group of mutations can be
// published only after all of them are visible.
// A nil Dispatcher runs notifications immediately.
type Dispatcher struct {
	mu    sync.Mutex
	held  int
	queue []func()
}

// NewDispatcher creates an idle Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Dispatch runs fn now, or queues it while the dispatcher is held.
func (d *Dispatcher) Dispatch(fn func()) {
	if d == nil {
		fn()
		return
	}
	d.mu.Lock()
	if d.held > 0 {
		d.queue = append(d.queue, fn)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	fn()
}

// Hold starts queueing notifications.
func (d *Dispatcher) Hold() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.held++
	d.mu.Unlock()
}

// Release undoes one Hold and flushes the queue once nothing holds it.
func (d *Dispatcher) Release() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.held > 0 {
		d.held--
	}
	var pending []func()
	if d.held == 0 {
		pending = d.queue
		d.queue = nil
	}
	d.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// listeners is a set of callbacks keyed by registration order.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

// add registers fn and returns a func that removes it.
func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

// notify calls every registered listener with v in registration order.
// It must be called without holding the owner's lock.
func (l *listeners[T]) notify(v T) {
	l.mu.Lock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
