// Package reconcile keeps local entity lists consistent with the backend.
//
// Every list follows the same rules. It is fetched as a whole, and writes
// are applied locally only after the backend acknowledged them, using the
// entity the backend returned. Failed writes leave the list untouched. Each
// entity has at most one outstanding request, and a repeated toggle joins
// the one already in flight.
package reconcile

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/logging"
	"golang.org/x/sync/singleflight"
)

// State is the lifecycle of a list.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

var (
	ErrNotReady = errors.New("list is not ready")
	ErrInFlight = errors.New("a request for this entry is already in flight")
	ErrClosed   = errors.New("list is closed")
)

// Snapshot is a copy of a list's state at one moment.
type Snapshot[T any] struct {
	State State
	Items []T
	Err   error
	// Version grows with every change of the list.
	Version uint64
}

// List is the generic reconciler. The typed lists of this package embed it
// and expose the operations that make sense for their entity.
type List[T any] struct {
	kind  string
	idOf  func(T) string
	clone func(T) T
	log   *logrus.Entry

	mu          sync.Mutex
	state       State
	items       []T
	err         error
	closed      bool
	inflight    map[string]string
	subscribers map[int]func(Snapshot[T])
	nextSub     int
	version     uint64

	// pubMu orders deliveries; delivered is the newest version handed out.
	pubMu     sync.Mutex
	delivered uint64

	group singleflight.Group
}

func newList[T any](kind string, idOf func(T) string, clone func(T) T) *List[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &List[T]{
		kind:        kind,
		idOf:        idOf,
		clone:       clone,
		log:         logging.For("reconcile").WithField("list", kind),
		inflight:    map[string]string{},
		subscribers: map[int]func(Snapshot[T]){},
	}
}

func (l *List[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Err is the error of the last failed load.
func (l *List[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Items returns a copy of the entries in list order.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.copyItems()
}

func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *List[T]) Get(id string) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(id); i >= 0 {
		return l.clone(l.items[i]), true
	}
	var zero T
	return zero, false
}

func (l *List[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Subscribe calls fn with a snapshot after every change until the returned
// function is called. Snapshots arrive in version order and one older than
// a snapshot already delivered is skipped. fn must not change the list.
func (l *List[T]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subscribers[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subscribers, id)
		l.mu.Unlock()
	}
}

// InFlight reports whether a request of kind is outstanding for id. An empty
// kind matches any request.
func (l *List[T]) InFlight(id, kind string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	current, ok := l.inflight[id]
	return ok && (kind == "" || current == kind)
}

// Close detaches the list from its consumer. Later operations fail with
// ErrClosed and responses still on their way are dropped.
func (l *List[T]) Close() {
	l.mu.Lock()
	l.closed = true
	l.subscribers = map[int]func(Snapshot[T]){}
	l.mu.Unlock()
}

func (l *List[T]) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// load fetches the whole list. Concurrent loads share one request.
func (l *List[T]) load(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.mu.Unlock()

	_, err, _ := l.group.Do("load", func() (any, error) {
		l.mu.Lock()
		l.state = Loading
		l.err = nil
		snap := l.changed()
		l.mu.Unlock()
		l.publish(snap)

		items, err := fetch(ctx)

		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			return nil, ErrClosed
		}
		if err != nil {
			l.state, l.items, l.err = Failed, nil, err
			l.log.WithError(err).Debug("Load failed")
		} else {
			l.state, l.items = Ready, l.dedupe(items)
		}
		snap = l.changed()
		l.mu.Unlock()
		l.publish(snap)
		return nil, err
	})
	return err
}

type request struct {
	kind      string
	id        string
	mustExist bool
}

// mutate sends one write and, once the backend acknowledged it, replaces the
// entries with apply(entries, result). With an id the write is exclusive for
// that entry. When the list was closed while the write was on its way the
// result is returned together with ErrClosed; see acknowledged.
func (l *List[T]) mutate(ctx context.Context, r request, send func(context.Context) (any, error), apply func([]T, any) []T) (any, error) {
	l.mu.Lock()
	if err := l.admit(r); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	if r.id != "" {
		l.inflight[r.id] = r.kind
	}
	l.mu.Unlock()

	result, err := send(ctx)

	l.mu.Lock()
	if r.id != "" {
		delete(l.inflight, r.id)
	}
	if err != nil {
		l.mu.Unlock()
		return nil, err
	}
	if l.closed {
		l.mu.Unlock()
		return result, ErrClosed
	}
	if l.state == Ready {
		l.items = l.dedupe(apply(l.items, result))
	}
	snap := l.changed()
	l.mu.Unlock()
	l.publish(snap)
	return result, nil
}

// toggle is mutate for flip-style writes: a second toggle of the same kind
// for id joins the outstanding one.
func (l *List[T]) toggle(ctx context.Context, r request, send func(context.Context) (any, error), apply func([]T, any) []T) (any, error) {
	result, err, _ := l.group.Do(r.kind+":"+r.id, func() (any, error) {
		return l.mutate(ctx, r, send, apply)
	})
	return result, err
}

// acknowledged reports whether the backend accepted a write made through
// mutate, including one that finished after the list was closed.
func acknowledged(result any, err error) bool {
	return err == nil || (result != nil && errors.Is(err, ErrClosed))
}

// patch applies a local change to one entry without a request.
func (l *List[T]) patch(id string, fn func(T) T) bool {
	l.mu.Lock()
	i := l.index(id)
	if l.closed || i < 0 {
		l.mu.Unlock()
		return false
	}
	l.items[i] = fn(l.items[i])
	snap := l.changed()
	l.mu.Unlock()
	l.publish(snap)
	return true
}

func (l *List[T]) admit(r request) error {
	if l.closed {
		return ErrClosed
	}
	if l.state != Ready {
		return ErrNotReady
	}
	if r.id == "" {
		return nil
	}
	if r.mustExist && l.index(r.id) < 0 {
		l.log.WithFields(logrus.Fields{"id": r.id, "op": r.kind}).Warn("Operation on an entry the list does not hold")
		return &api.NotFoundError{Kind: l.kind, ID: r.id}
	}
	if _, busy := l.inflight[r.id]; busy {
		return ErrInFlight
	}
	return nil
}

func (l *List[T]) index(id string) int {
	for i, item := range l.items {
		if l.idOf(item) == id {
			return i
		}
	}
	return -1
}

// dedupe keeps the first entry for every id.
func (l *List[T]) dedupe(items []T) []T {
	seen := make(map[string]struct{}, len(items))
	kept := make([]T, 0, len(items))
	for _, item := range items {
		id := l.idOf(item)
		if _, dup := seen[id]; dup {
			l.log.WithField("id", id).Debug("Dropping duplicate entry")
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, item)
	}
	return kept
}

func (l *List[T]) copyItems() []T {
	items := make([]T, len(l.items))
	for i, item := range l.items {
		items[i] = l.clone(item)
	}
	return items
}

func (l *List[T]) snapshot() Snapshot[T] {
	return Snapshot[T]{State: l.state, Items: l.copyItems(), Err: l.err, Version: l.version}
}

// changed bumps the version and returns the snapshot to publish. Callers hold
// l.mu.
func (l *List[T]) changed() Snapshot[T] {
	l.version++
	return l.snapshot()
}

func (l *List[T]) publish(snap Snapshot[T]) {
	l.pubMu.Lock()
	defer l.pubMu.Unlock()
	if snap.Version <= l.delivered {
		return
	}
	l.delivered = snap.Version

	l.mu.Lock()
	subscribers := make([]func(Snapshot[T]), 0, len(l.subscribers))
	for _, fn := range l.subscribers {
		subscribers = append(subscribers, fn)
	}
	l.mu.Unlock()
	for _, fn := range subscribers {
		fn(snap)
	}
}

// upsert replaces the entry with the same id in place or appends item.
func upsert[T any](items []T, item T, idOf func(T) string) []T {
	id := idOf(item)
	for i := range items {
		if idOf(items[i]) == id {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func replace[T any](items []T, id string, fn func(T) T, idOf func(T) string) []T {
	for i := range items {
		if idOf(items[i]) == id {
			items[i] = fn(items[i])
		}
	}
	return items
}

func without[T any](items []T, id string, idOf func(T) string) []T {
	kept := items[:0]
	for _, item := range items {
		if idOf(item) != id {
			kept = append(kept, item)
		}
	}
	return kept
}
