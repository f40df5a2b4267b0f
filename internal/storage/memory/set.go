package memory

import (
	"context"

	"github.com/yndnr/respkv/pkg/resp"
)

// SAdd adds members to the set at key, creating it if needed. It returns
// the number of members that were not already present.
func (s *Store) SAdd(_ context.Context, key string, members ...resp.Frame) (int, error) {
	var (
		added int
		err   error
	)
	s.keys.Compute(key, func(e *entry, exists bool) (*entry, bool) {
		if !exists {
			e = &entry{typ: TypeSet, set: NewFrameSet()}
		} else if e.typ != TypeSet {
			err = ErrWrongType
			return e, true
		}
		for _, m := range members {
			if e.set.Add(m) {
				added++
			}
		}
		return e, e.set.Len() > 0
	})
	return added, err
}

// SIsMember reports whether member is in the set at key.
func (s *Store) SIsMember(_ context.Context, key string, member resp.Frame) (bool, error) {
	var (
		found bool
		err   error
	)
	s.keys.View(key, func(e *entry, exists bool) {
		switch {
		case !exists:
		case e.typ != TypeSet:
			err = ErrWrongType
		default:
			found = e.set.Contains(member)
		}
	})
	return found, err
}

// SMembers returns the members of the set at key, sorted by resp.Compare.
func (s *Store) SMembers(_ context.Context, key string) ([]resp.Frame, error) {
	var (
		members []resp.Frame
		err     error
	)
	s.keys.View(key, func(e *entry, exists bool) {
		switch {
		case !exists:
		case e.typ != TypeSet:
			err = ErrWrongType
		default:
			members = e.set.Members()
		}
	})
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []resp.Frame{}
	}
	return members, nil
}

// SRem removes members from the set at key and returns how many were
// present. The key is removed once the set is empty.
func (s *Store) SRem(_ context.Context, key string, members ...resp.Frame) (int, error) {
	var (
		removed int
		err     error
	)
	s.keys.Compute(key, func(e *entry, exists bool) (*entry, bool) {
		if !exists {
			return nil, false
		}
		if e.typ != TypeSet {
			err = ErrWrongType
			return e, true
		}
		for _, m := range members {
			if e.set.Remove(m) {
				removed++
			}
		}
		return e, e.set.Len() > 0
	})
	return removed, err
}

// SCard returns the number of members in the set at key.
func (s *Store) SCard(_ context.Context, key string) (int, error) {
	var (
		n   int
		err error
	)
	s.keys.View(key, func(e *entry, exists bool) {
		switch {
		case !exists:
		case e.typ != TypeSet:
			err = ErrWrongType
		default:
			n = e.set.Len()
		}
	})
	return n, err
}
