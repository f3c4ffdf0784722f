package event

import "sync"

// Subject is a typed observable. Observers are called synchronously, in
// subscription order, on the publishing goroutine.
type Subject[T any] struct {
	mu        sync.RWMutex
	nextID    int
	observers map[int]func(T)
	order     []int
}

func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{observers: make(map[int]func(T))}
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (s *Subject[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.observers, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Subject[T]) Publish(v T) {
	s.mu.RLock()
	fns := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.observers[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (s *Subject[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
