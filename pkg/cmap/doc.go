// Package cmap provides a sharded concurrent map keyed by string.
//
// Keys are spread over a power-of-two number of shards with murmur3. Each
// shard has its own RWMutex, so operations on keys in different shards
// never contend.
//
// Usage:
//
//	m := cmap.NewWithShards[*entry](32)
//	m.Set("key", e)
//	m.Compute("key", func(old *entry, ok bool) (*entry, bool) {
//		// runs under the shard's write lock
//		return old, true
//	})
//
// Compute and View run their callback while holding the shard lock. The
// callback must not call back into the same Map.
package cmap
