package memory

import (
	"slices"

	"github.com/yndnr/respkv/pkg/resp"
)

// FrameSet is a set of frames with resp.Equal semantics. Members are
// bucketed by resp.Hash.
//
// FrameSet is not safe for concurrent use; Store guards it with the owning
// key's shard lock.
type FrameSet struct {
	buckets map[uint64][]resp.Frame
	size    int
}

// NewFrameSet creates an empty set.
func NewFrameSet() *FrameSet {
	return &FrameSet{
		buckets: make(map[uint64][]resp.Frame),
	}
}

// Add inserts f. It reports whether f was not already a member.
func (s *FrameSet) Add(f resp.Frame) bool {
	h := resp.Hash(f)
	for _, m := range s.buckets[h] {
		if resp.Equal(m, f) {
			return false
		}
	}
	s.buckets[h] = append(s.buckets[h], f)
	s.size++
	return true
}

// Remove deletes f. It reports whether f was a member.
func (s *FrameSet) Remove(f resp.Frame) bool {
	h := resp.Hash(f)
	bucket := s.buckets[h]
	for i, m := range bucket {
		if !resp.Equal(m, f) {
			continue
		}
		if len(bucket) == 1 {
			delete(s.buckets, h)
		} else {
			s.buckets[h] = slices.Delete(bucket, i, i+1)
		}
		s.size--
		return true
	}
	return false
}

// Contains reports whether f is a member.
func (s *FrameSet) Contains(f resp.Frame) bool {
	for _, m := range s.buckets[resp.Hash(f)] {
		if resp.Equal(m, f) {
			return true
		}
	}
	return false
}

// Len returns the number of members.
func (s *FrameSet) Len() int {
	return s.size
}

// Members returns the members sorted by resp.Compare.
func (s *FrameSet) Members() []resp.Frame {
	members := make([]resp.Frame, 0, s.size)
	for _, bucket := range s.buckets {
		members = append(members, bucket...)
	}
	slices.SortFunc(members, resp.Compare)
	return members
}
