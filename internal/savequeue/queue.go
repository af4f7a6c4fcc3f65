// SPDX-License-Identifier: MPL-2.0

// Package savequeue persists editor changes immediately or after a quiet
// period. Queued saves of the same mod part are coalesced: each new request
// restarts the delay, so a burst of edits produces one write.
//
// Queue implements modedit.Saver. Queued writes run on timer goroutines; a
// mod must not be edited while one of its queued writes can fire, so
// interactive callers Flush before handing a mod to another goroutine and
// every caller Closes the queue before exit.
package savequeue

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/modweave/modweave/pkg/mod"
	"github.com/modweave/modweave/pkg/modedit"
)

// DefaultDelay is the quiet period used when none is configured.
const DefaultDelay = 500 * time.Millisecond

// ErrClosed is returned by Save after Close.
var ErrClosed = errors.New("save queue closed")

type (
	// Writer performs the actual write of one mod part.
	Writer interface {
		Save(m *mod.Mod, target mod.Target) error
	}

	// Queue schedules writes through a Writer.
	Queue struct {
		writer Writer
		delay  time.Duration
		logger *log.Logger

		mu      sync.Mutex
		writeMu sync.Mutex
		pending map[key]*entry
		closed  bool
	}

	key struct {
		directory string
		target    mod.Target
	}

	entry struct {
		m     *mod.Mod
		timer *time.Timer
	}
)

// New returns a queue writing through w. A non-positive delay falls back to
// DefaultDelay; a nil logger discards output.
func New(w Writer, delay time.Duration, logger *log.Logger) *Queue {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Queue{writer: w, delay: delay, logger: logger, pending: make(map[key]*entry)}
}

// Save writes target of m now, later, or not at all depending on saveType.
// Errors of queued writes are logged, not returned.
func (q *Queue) Save(m *mod.Mod, target mod.Target, saveType modedit.SaveType) error {
	switch saveType {
	case modedit.SaveNone:
		return nil
	case modedit.SaveQueued:
		return q.schedule(m, target)
	default:
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrClosed
		}
		q.cancel(key{directory: m.Directory, target: target})
		if target.Kind == mod.TargetAllGroups {
			q.cancelGroups(m.Directory)
		}
		q.mu.Unlock()
		return q.write(m, target)
	}
}

// Pending returns the number of scheduled writes.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush performs every scheduled write now and returns their joined errors.
func (q *Queue) Flush() error {
	q.mu.Lock()
	entries := q.pending
	q.pending = make(map[key]*entry)
	for _, e := range entries {
		e.timer.Stop()
	}
	q.mu.Unlock()

	keys := slices.SortedFunc(maps.Keys(entries), compareKeys)
	var errs []error
	for _, k := range keys {
		if err := q.write(entries[k].m, k.target); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes pending writes and rejects further saves. It is safe to call
// Close more than once.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()
	return q.Flush()
}

func (q *Queue) schedule(m *mod.Mod, target mod.Target) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if target.Kind == mod.TargetGroup {
		if all, ok := q.pending[key{directory: m.Directory, target: mod.AllGroupsTarget()}]; ok {
			all.timer.Reset(q.delay)
			return nil
		}
	}
	if target.Kind == mod.TargetAllGroups {
		q.cancelGroups(m.Directory)
	}

	k := key{directory: m.Directory, target: target}
	if e, ok := q.pending[k]; ok {
		e.m = m
		e.timer.Reset(q.delay)
		return nil
	}
	e := &entry{m: m}
	e.timer = time.AfterFunc(q.delay, func() { q.fire(k, e) })
	q.pending[k] = e
	q.logger.Debug("save queued", "mod", m.Name(), "target", target, "delay", q.delay)
	return nil
}

// fire performs a queued write unless it was cancelled or replaced meanwhile.
func (q *Queue) fire(k key, e *entry) {
	q.mu.Lock()
	if q.pending[k] != e {
		q.mu.Unlock()
		return
	}
	delete(q.pending, k)
	q.mu.Unlock()

	if err := q.write(e.m, k.target); err != nil {
		q.logger.Error("queued save failed", "mod", e.m.Name(), "target", k.target, "err", err)
	}
}

func (q *Queue) write(m *mod.Mod, target mod.Target) error {
	q.writeMu.Lock()
	defer q.writeMu.Unlock()

	if err := q.writer.Save(m, target); err != nil {
		return fmt.Errorf("save %s of %q: %w", target, m.Name(), err)
	}
	q.logger.Debug("saved", "mod", m.Name(), "target", target)
	return nil
}

// cancel drops a scheduled write. Callers hold q.mu.
func (q *Queue) cancel(k key) {
	if e, ok := q.pending[k]; ok {
		e.timer.Stop()
		delete(q.pending, k)
	}
}

// cancelGroups drops scheduled single-group writes of a mod. Callers hold q.mu.
func (q *Queue) cancelGroups(directory string) {
	for k := range q.pending {
		if k.directory == directory && k.target.Kind == mod.TargetGroup {
			q.cancel(k)
		}
	}
}

func compareKeys(a, b key) int {
	return cmp.Or(
		cmp.Compare(a.directory, b.directory),
		cmp.Compare(a.target.Kind, b.target.Kind),
		cmp.Compare(a.target.Group, b.target.Group),
	)
}
