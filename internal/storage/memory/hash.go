package memory

import (
	"context"

	"github.com/yndnr/respkv/pkg/resp"
)

// FieldValue is one field of a hash.
type FieldValue struct {
	Field string
	Value resp.Frame
}

// HSet sets fields of the hash at key, creating it if needed. It returns
// the number of fields that were newly added.
func (s *Store) HSet(_ context.Context, key string, pairs ...FieldValue) (int, error) {
	var (
		added int
		err   error
	)
	s.keys.Compute(key, func(e *entry, exists bool) (*entry, bool) {
		if !exists {
			e = &entry{typ: TypeHash, hash: make(map[string]resp.Frame, len(pairs))}
		} else if e.typ != TypeHash {
			err = ErrWrongType
			return e, true
		}
		for _, p := range pairs {
			if _, ok := e.hash[p.Field]; !ok {
				added++
			}
			e.hash[p.Field] = p.Value
		}
		return e, len(e.hash) > 0
	})
	return added, err
}

// HGet returns one field of the hash at key.
func (s *Store) HGet(_ context.Context, key, field string) (resp.Frame, bool, error) {
	var (
		val   resp.Frame
		found bool
		err   error
	)
	s.keys.View(key, func(e *entry, exists bool) {
		switch {
		case !exists:
		case e.typ != TypeHash:
			err = ErrWrongType
		default:
			val, found = e.hash[field]
		}
	})
	return val, found, err
}

// HGetAll returns a copy of the hash at key. A missing key yields an empty
// map.
func (s *Store) HGetAll(_ context.Context, key string) (resp.Map, error) {
	out := resp.Map{}
	var err error
	s.keys.View(key, func(e *entry, exists bool) {
		switch {
		case !exists:
		case e.typ != TypeHash:
			err = ErrWrongType
		default:
			for f, v := range e.hash {
				out[f] = v
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// HMGet returns the values of fields in order, with resp.Null for fields
// that do not exist.
func (s *Store) HMGet(_ context.Context, key string, fields ...string) (resp.Array, error) {
	out := make(resp.Array, len(fields))
	var err error
	s.keys.View(key, func(e *entry, exists bool) {
		if exists && e.typ != TypeHash {
			err = ErrWrongType
			return
		}
		for i, f := range fields {
			out[i] = resp.Null{}
			if !exists {
				continue
			}
			if v, ok := e.hash[f]; ok {
				out[i] = v
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// HDel removes fields from the hash at key and returns how many existed.
// The key is removed once its last field is.
func (s *Store) HDel(_ context.Context, key string, fields ...string) (int, error) {
	var (
		removed int
		err     error
	)
	s.keys.Compute(key, func(e *entry, exists bool) (*entry, bool) {
		if !exists {
			return nil, false
		}
		if e.typ != TypeHash {
			err = ErrWrongType
			return e, true
		}
		for _, f := range fields {
			if _, ok := e.hash[f]; ok {
				delete(e.hash, f)
				removed++
			}
		}
		return e, len(e.hash) > 0
	})
	return removed, err
}

// HLen returns the number of fields in the hash at key.
func (s *Store) HLen(_ context.Context, key string) (int, error) {
	var (
		n   int
		err error
	)
	s.keys.View(key, func(e *entry, exists bool) {
		switch {
		case !exists:
		case e.typ != TypeHash:
			err = ErrWrongType
		default:
			n = len(e.hash)
		}
	})
	return n, err
}
