// Package event publishes engine notifications to in-process subscribers
// and external webhooks.
package event

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pauljbernard/headelf/internal/model"
)

// Type names an event kind.
type Type string

const (
	ExtensionRegistered     Type = "extension_registered"
	ActiveIndustriesUpdated Type = "active_industries_updated"
	ContextDetected         Type = "context_detected"
	DecisionRouted          Type = "decision_routed"
)

// Event is the payload delivered to subscribers and webhooks. Only the
// fields relevant to Type are set.
type Event struct {
	Type       Type                     `json:"type"`
	Timestamp  time.Time                `json:"timestamp"`
	Industry   model.IndustryVertical   `json:"industry,omitempty"`
	Industries []model.IndustryVertical `json:"industries,omitempty"`
	Detection  []model.DetectionResult  `json:"detection,omitempty"`
	Input      *model.DetectionInput    `json:"input,omitempty"`
	Role       model.ExecutiveRole      `json:"role,omitempty"`
	Decision   *model.ExecutiveDecision `json:"decision,omitempty"`
	Routing    []model.RoutingResult    `json:"routing,omitempty"`
}

func NewExtensionRegistered(ind model.IndustryVertical) Event {
	return Event{Type: ExtensionRegistered, Timestamp: time.Now().UTC(), Industry: ind}
}

// Constructors copy their arguments so subscribers never share memory with
// the values returned to the caller.

func NewActiveIndustriesUpdated(inds []model.IndustryVertical) Event {
	return Event{
		Type:       ActiveIndustriesUpdated,
		Timestamp:  time.Now().UTC(),
		Industries: append([]model.IndustryVertical(nil), inds...),
	}
}

func NewContextDetected(results []model.DetectionResult, input model.DetectionInput) Event {
	detection := make([]model.DetectionResult, len(results))
	for i, r := range results {
		detection[i] = r.Clone()
	}
	in := input.Clone()
	return Event{Type: ContextDetected, Timestamp: time.Now().UTC(), Detection: detection, Input: &in}
}

func NewDecisionRouted(role model.ExecutiveRole, d model.ExecutiveDecision, results []model.RoutingResult) Event {
	routing := make([]model.RoutingResult, len(results))
	for i, r := range results {
		routing[i] = r.Clone()
	}
	decision := d.Clone()
	return Event{Type: DecisionRouted, Timestamp: time.Now().UTC(), Role: role, Decision: &decision, Routing: routing}
}

// Bus delivers events synchronously to subscribers in subscription order.
// A panicking subscriber is logged and skipped.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscriber
	nextID int
	logger *zap.Logger
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewBus returns an empty bus. A nil logger discards output.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Channel returns a buffered stream of events. Events are dropped when the
// buffer is full. The returned function unsubscribes and closes the channel.
func (b *Bus) Channel(buffer int) (<-chan Event, func()) {
	var (
		mu     sync.Mutex
		closed bool
	)
	ch := make(chan Event, buffer)
	unsub := b.Subscribe(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
			b.logger.Debug("event dropped", zap.String("type", string(e.Type)))
		}
	})
	return ch, func() {
		unsub()
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			close(ch)
		}
	}
}

// Publish delivers e to every current subscriber. Safe on a nil Bus.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := append([]subscriber(nil), b.subs...)
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(s, e)
	}
}

func (b *Bus) deliver(s subscriber, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event subscriber panicked",
				zap.String("type", string(e.Type)),
				zap.Any("panic", r))
		}
	}()
	s.fn(e)
}
