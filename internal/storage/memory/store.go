package memory

import (
	"context"
	"errors"
	"slices"

	"github.com/yndnr/respkv/pkg/cmap"
	"github.com/yndnr/respkv/pkg/resp"
)

// DefaultShards is the default number of keyspace shards.
const DefaultShards = 32

// ErrWrongType is returned when an operation targets a key holding another
// kind of value. Its text is the reply clients expect.
var ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

// ValueType is the kind of value a key holds.
type ValueType uint8

const (
	TypeNone ValueType = iota
	TypeString
	TypeHash
	TypeSet
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeHash:
		return "hash"
	case TypeSet:
		return "set"
	default:
		return "none"
	}
}

type entry struct {
	typ  ValueType
	str  resp.Frame
	hash map[string]resp.Frame
	set  *FrameSet
}

// Store is the shared keyspace.
type Store struct {
	keys *cmap.Map[*entry]
}

// Option configures the Store.
type Option func(*storeOptions)

type storeOptions struct {
	shards int
}

// WithShards sets the shard count. It must be a power of two.
func WithShards(n int) Option {
	return func(o *storeOptions) {
		o.shards = n
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	o := storeOptions{shards: DefaultShards}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store{
		keys: cmap.NewWithShards[*entry](o.shards),
	}
}

// Get returns the string value of key.
func (s *Store) Get(_ context.Context, key string) (resp.Frame, bool, error) {
	var (
		val   resp.Frame
		found bool
		err   error
	)
	s.keys.View(key, func(e *entry, exists bool) {
		switch {
		case !exists:
		case e.typ != TypeString:
			err = ErrWrongType
		default:
			val, found = e.str, true
		}
	})
	return val, found, err
}

// Set stores value under key, replacing whatever the key held.
func (s *Store) Set(_ context.Context, key string, value resp.Frame) {
	s.keys.Set(key, &entry{typ: TypeString, str: value})
}

// Del removes keys and returns how many existed.
func (s *Store) Del(_ context.Context, keys ...string) int {
	n := 0
	for _, key := range keys {
		if s.keys.Delete(key) {
			n++
		}
	}
	return n
}

// Exists returns how many of keys exist. A key named twice counts twice.
func (s *Store) Exists(_ context.Context, keys ...string) int {
	n := 0
	for _, key := range keys {
		if s.keys.Has(key) {
			n++
		}
	}
	return n
}

// Type returns the kind of value key holds.
func (s *Store) Type(_ context.Context, key string) ValueType {
	t := TypeNone
	s.keys.View(key, func(e *entry, exists bool) {
		if exists {
			t = e.typ
		}
	})
	return t
}

// Keys returns every key accepted by match, sorted. A nil match accepts all
// keys.
func (s *Store) Keys(_ context.Context, match func(string) bool) []string {
	keys := s.keys.Keys()
	if match != nil {
		keys = slices.DeleteFunc(keys, func(k string) bool { return !match(k) })
	}
	slices.Sort(keys)
	return keys
}

// DBSize returns the number of keys.
func (s *Store) DBSize(_ context.Context) int {
	return s.keys.Count()
}

// FlushAll removes every key.
func (s *Store) FlushAll(_ context.Context) {
	s.keys.Clear()
}

// Stats counts keys by type.
type Stats struct {
	Strings int
	Hashes  int
	Sets    int
}

// ByType returns the counts keyed by type name.
func (st Stats) ByType() map[string]int {
	return map[string]int{
		TypeString.String(): st.Strings,
		TypeHash.String():   st.Hashes,
		TypeSet.String():    st.Sets,
	}
}

// Stats returns key counts by type. The counts are gathered shard by shard
// and are not a consistent snapshot.
func (s *Store) Stats() Stats {
	var st Stats
	for _, e := range s.keys.All() {
		switch e.typ {
		case TypeString:
			st.Strings++
		case TypeHash:
			st.Hashes++
		case TypeSet:
			st.Sets++
		}
	}
	return st
}
