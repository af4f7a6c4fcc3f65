// SPDX-License-Identifier: MPL-2.0

// Package notify delivers mod change events to in-process observers.
//
// Bus implements modedit.Notifier. Observers subscribe to every event or to
// the events of one mod directory. Delivery is synchronous by default so an
// observer has evicted its state before a PrepareChange event returns;
// WithAsync trades that guarantee for a buffered background delivery.
package notify

import (
	"maps"
	"slices"
	"sync"

	"github.com/modweave/modweave/pkg/mod"
)

type (
	// Observer is called for each delivered change.
	Observer func(change mod.OptionChange)

	// Option configures a Bus.
	Option func(*Bus)

	// Subscription is an active observer registration.
	Subscription struct {
		id  uint64
		bus *Bus
	}

	// Bus fans change events out to observers.
	Bus struct {
		mu sync.RWMutex
		// sendMu orders buffered sends before Close; it is separate from mu
		// so a sender blocked on a full buffer never stalls delivery.
		sendMu sync.RWMutex

		global map[uint64]Observer
		perMod map[string]map[uint64]Observer
		nextID uint64

		async  bool
		buffer chan mod.OptionChange
		done   chan struct{}
		wg     sync.WaitGroup
		closed bool
	}
)

// WithAsync delivers events from a background goroutine through a buffer of
// the given size. Sizes below one keep synchronous delivery.
func WithAsync(bufferSize int) Option {
	return func(b *Bus) {
		if bufferSize > 0 {
			b.async = true
			b.buffer = make(chan mod.OptionChange, bufferSize)
		}
	}
}

// New returns a bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		global: make(map[uint64]Observer),
		perMod: make(map[string]map[uint64]Observer),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.async {
		b.wg.Add(1)
		go b.processAsync()
	}
	return b
}

// Unsubscribe removes the registration. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.bus != nil {
		s.bus.unsubscribe(s.id)
	}
}

// Subscribe registers observer for every event.
func (b *Bus) Subscribe(observer Observer) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.global[id] = observer
	return &Subscription{id: id, bus: b}
}

// SubscribeMod registers observer for events of the mod stored in directory.
func (b *Bus) SubscribeMod(directory string, observer Observer) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.perMod[directory] == nil {
		b.perMod[directory] = make(map[uint64]Observer)
	}
	b.perMod[directory][id] = observer
	return &Subscription{id: id, bus: b}
}

// Notify delivers change. Events sent after Close are dropped.
func (b *Bus) Notify(change mod.OptionChange) {
	b.sendMu.RLock()
	if b.closed {
		b.sendMu.RUnlock()
		return
	}
	if b.async {
		b.buffer <- change
		b.sendMu.RUnlock()
		return
	}
	b.sendMu.RUnlock()
	b.deliver(change)
}

// Close stops delivery and drains buffered events. It is safe to call Close
// more than once.
func (b *Bus) Close() {
	b.sendMu.Lock()
	if b.closed {
		b.sendMu.Unlock()
		return
	}
	b.closed = true
	b.sendMu.Unlock()

	close(b.done)
	b.wg.Wait()
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.global, id)
	for dir, observers := range b.perMod {
		delete(observers, id)
		if len(observers) == 0 {
			delete(b.perMod, dir)
		}
	}
}

// deliver calls matching observers in subscription order, outside the lock
// so observers may subscribe or unsubscribe.
func (b *Bus) deliver(change mod.OptionChange) {
	b.mu.RLock()
	matched := maps.Clone(b.global)
	if change.Mod != nil {
		maps.Copy(matched, b.perMod[change.Mod.Directory])
	}
	b.mu.RUnlock()

	for _, id := range slices.Sorted(maps.Keys(matched)) {
		matched[id](change)
	}
}

func (b *Bus) processAsync() {
	defer b.wg.Done()

	for {
		select {
		case change := <-b.buffer:
			b.deliver(change)
		case <-b.done:
			for {
				select {
				case change := <-b.buffer:
					b.deliver(change)
				default:
					return
				}
			}
		}
	}
}
