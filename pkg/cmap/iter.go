package cmap

import "iter"

// Range calls fn for each key and value until fn returns false. Shards are
// locked one at a time, so the view is not a consistent snapshot, and fn
// must not call back into the Map.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for _, s := range m.shards {
		if !s.rangeLocked(fn) {
			return
		}
	}
}

func (s *shard[V]) rangeLocked(fn func(string, V) bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range s.items {
		if !fn(k, v) {
			return false
		}
	}
	return true
}

// All returns an iterator over the map with the same guarantees as Range.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return m.Range
}

// Keys returns every key in unspecified order.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0, m.Count())
	for k := range m.All() {
		keys = append(keys, k)
	}
	return keys
}
