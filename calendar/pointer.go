package calendar

import "sync"

// Point is a terminal cell position, zero-based from the top-left corner.
type Point struct {
	X int
	Y int
}

// Rect is a half-open screen region.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// PointerBus fans pointer presses out to the current listeners. The zero
// value is ready to use.
type PointerBus struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(Point)
}

// Subscription is a registered listener. Close releases it and may be called
// any number of times.
type Subscription struct {
	once sync.Once
	bus  *PointerBus
	id   int
}

// Subscribe registers fn for every subsequent Publish.
func (b *PointerBus) Subscribe(fn func(Point)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.listeners == nil {
		b.listeners = make(map[int]func(Point))
	}
	b.nextID++
	b.listeners[b.nextID] = fn
	return &Subscription{bus: b, id: b.nextID}
}

// Publish delivers p to every listener registered at the time of the call.
func (b *PointerBus) Publish(p Point) {
	b.mu.Lock()
	fns := make([]func(Point), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

// Len returns the number of registered listeners.
func (b *PointerBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Close unregisters the listener.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.listeners, s.id)
		s.bus.mu.Unlock()
	})
}

// Closed reports whether the listener is no longer registered.
func (s *Subscription) Closed() bool {
	if s == nil {
		return true
	}
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	_, ok := s.bus.listeners[s.id]
	return !ok
}
