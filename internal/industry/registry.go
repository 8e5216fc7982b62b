package industry

import (
	"sync"

	"github.com/pauljbernard/headelf/internal/model"
)

// Registry tracks registered handlers and the active industry set.
// All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[model.IndustryVertical]Handler
	order    []model.IndustryVertical
	active   map[model.IndustryVertical]bool
}

// NewRegistry returns an empty registry with nothing active.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[model.IndustryVertical]Handler),
		active:   make(map[model.IndustryVertical]bool),
	}
}

// RegisterHandler adds or replaces the handler for an industry. Replacing
// keeps the original registration position.
func (r *Registry) RegisterHandler(industry model.IndustryVertical, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[industry]; !ok {
		r.order = append(r.order, industry)
	}
	r.handlers[industry] = h
}

// SetActive replaces the active set and returns it in canonical order.
func (r *Registry) SetActive(industries []model.IndustryVertical) []model.IndustryVertical {
	next := make(map[model.IndustryVertical]bool, len(industries))
	for _, ind := range industries {
		next[ind] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = next
	return activeList(r.active)
}

// Activate adds industries to the active set. It returns the resulting set
// and whether anything changed.
func (r *Registry) Activate(industries ...model.IndustryVertical) ([]model.IndustryVertical, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := false
	for _, ind := range industries {
		if !r.active[ind] {
			r.active[ind] = true
			changed = true
		}
	}
	return activeList(r.active), changed
}

// Deactivate removes industries from the active set. It returns the
// resulting set and whether anything changed.
func (r *Registry) Deactivate(industries ...model.IndustryVertical) ([]model.IndustryVertical, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := false
	for _, ind := range industries {
		if r.active[ind] {
			delete(r.active, ind)
			changed = true
		}
	}
	return activeList(r.active), changed
}

// Snapshot returns an immutable copy of handlers and activation.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := &Snapshot{
		handlers: make(map[model.IndustryVertical]Handler, len(r.handlers)),
		order:    append([]model.IndustryVertical(nil), r.order...),
		active:   make(map[model.IndustryVertical]bool, len(r.active)),
	}
	for k, v := range r.handlers {
		s.handlers[k] = v
	}
	for k := range r.active {
		s.active[k] = true
	}
	return s
}

// Snapshot is a consistent view of the registry for one call.
type Snapshot struct {
	handlers map[model.IndustryVertical]Handler
	order    []model.IndustryVertical
	active   map[model.IndustryVertical]bool
}

// Registered returns industries with handlers, in registration order.
func (s *Snapshot) Registered() []model.IndustryVertical {
	return append([]model.IndustryVertical(nil), s.order...)
}

// Active returns active industries in canonical order.
func (s *Snapshot) Active() []model.IndustryVertical {
	return activeList(s.active)
}

// IsActive reports whether the industry is in the active set.
func (s *Snapshot) IsActive(industry model.IndustryVertical) bool {
	return s.active[industry]
}

// Handler returns the handler for an industry.
func (s *Snapshot) Handler(industry model.IndustryVertical) (Handler, bool) {
	h, ok := s.handlers[industry]
	return h, ok
}

// Routable reports whether the industry has a handler and is active.
func (s *Snapshot) Routable(industry model.IndustryVertical) bool {
	_, ok := s.handlers[industry]
	return ok && s.active[industry]
}

// Empty reports whether no handler is registered.
func (s *Snapshot) Empty() bool {
	return len(s.handlers) == 0
}

func activeList(active map[model.IndustryVertical]bool) []model.IndustryVertical {
	out := make([]model.IndustryVertical, 0, len(active))
	for _, ind := range model.AllIndustries {
		if active[ind] {
			out = append(out, ind)
		}
	}
	return out
}
