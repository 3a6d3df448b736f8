package event

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Bus errors.
var (
	// ErrInvalidPattern indicates a malformed subscription pattern.
	ErrInvalidPattern = errors.New("invalid topic pattern")

	// ErrNilHandler indicates a nil subscription handler.
	ErrNilHandler = errors.New("nil handler")
)

// HandlerFunc receives published events. Handlers run synchronously on the
// publisher's goroutine, so they should return quickly. Publishers deliver
// after releasing their own locks, so a handler may query the object that
// published.
type HandlerFunc func(Event)

// SubscriptionID identifies a subscription for Unsubscribe.
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	pattern Topic
	fn      HandlerFunc
}

// Stats is a snapshot of bus activity counters.
type Stats struct {
	Published     uint64
	Delivered     uint64
	Panics        uint64
	Subscriptions int
}

// Bus is a synchronous publish/subscribe hub over dot-notation topics.
// Delivery happens on the publisher's goroutine, in subscription order, and
// a panicking handler never takes the publisher down: the panic is counted
// and delivery continues with the next handler.
type Bus struct {
	mu     sync.RWMutex
	nextID SubscriptionID
	subs   map[SubscriptionID]*subscription

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[SubscriptionID]*subscription)}
}

// Subscribe registers a handler for every event whose topic matches the
// pattern. Patterns may use "*" for one segment and "**" for any tail.
func (b *Bus) Subscribe(pattern Topic, fn HandlerFunc) (SubscriptionID, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	for _, seg := range pattern.Segments() {
		if seg == "" {
			return 0, fmt.Errorf("subscribe %q: %w", pattern, ErrInvalidPattern)
		}
	}
	if pattern == "" {
		return 0, fmt.Errorf("subscribe %q: %w", pattern, ErrInvalidPattern)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[id] = &subscription{id: id, pattern: pattern, fn: fn}
	return id, nil
}

// Unsubscribe removes a subscription and reports whether the id was active.
func (b *Bus) Unsubscribe(id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[id]; !ok {
		return false
	}
	delete(b.subs, id)
	return true
}

// Publish delivers the event to every matching handler. The matching set is
// snapshotted up front, so handlers may subscribe or unsubscribe reentrantly
// without affecting the current delivery.
func (b *Bus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	b.published.Add(1)

	b.mu.RLock()
	matched := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if e.Topic.Matches(sub.pattern) {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })
	for _, sub := range matched {
		b.dispatch(sub, e)
	}
}

// dispatch runs one handler behind a recover barrier.
func (b *Bus) dispatch(sub *subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
		}
	}()
	sub.fn(e)
	b.delivered.Add(1)
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()
	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		Panics:        b.panics.Load(),
		Subscriptions: n,
	}
}
