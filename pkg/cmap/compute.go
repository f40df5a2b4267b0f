package cmap

// Compute reads, modifies and stores the value for key in one step.
//
// fn receives the current value and whether it exists, and returns the new
// value and keep. keep false removes the key. fn runs under the shard's
// write lock and may mutate the value in place.
func (m *Map[V]) Compute(key string, fn func(value V, exists bool) (V, bool)) {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.items[key]
	value, keep := fn(old, exists)
	switch {
	case keep:
		s.items[key] = value
	case exists:
		delete(s.items, key)
	}
}

// View calls fn with the value for key under the shard's read lock. fn must
// not modify the value.
func (m *Map[V]) View(key string, fn func(value V, exists bool)) {
	s := m.getShard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.items[key]
	fn(value, exists)
}
