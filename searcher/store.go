package searcher

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/exp/slices"
)

// Store holds per-history action statistics in a trie keyed by steps. It only
// grows; nothing is ever removed.
type Store[A, O comparable] struct {
	actions []A
	index   map[A]int
	root    *node[A, O]
	size    atomic.Int64
}

func NewStore[A, O comparable](actions []A) (*Store[A, O], error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: empty action space", ErrPrecondition)
	}
	index := make(map[A]int, len(actions))
	for i, a := range actions {
		if _, ok := index[a]; ok {
			return nil, fmt.Errorf("%w: duplicate action %v", ErrPrecondition, a)
		}
		index[a] = i
	}
	return &Store[A, O]{
		actions: slices.Clone(actions),
		index:   index,
		root:    &node[A, O]{},
	}, nil
}

// Actions returns the ordered action space the store was built with.
func (s *Store[A, O]) Actions() []A {
	return slices.Clone(s.actions)
}

// Size is the number of expanded histories.
func (s *Store[A, O]) Size() int {
	return int(s.size.Load())
}

// Get returns a copy of the stats at h, ordered like Actions, or false if h
// has not been expanded.
func (s *Store[A, O]) Get(h History[A, O]) ([]ActionStats, bool) {
	n := s.find(h)
	if n == nil {
		return nil, false
	}
	return n.snapshot()
}

// Lookup returns the stats of action a at h.
func (s *Store[A, O]) Lookup(h History[A, O], a A) (ActionStats, bool) {
	i, ok := s.index[a]
	if !ok {
		return ActionStats{}, false
	}
	stats, ok := s.Get(h)
	if !ok {
		return ActionStats{}, false
	}
	return stats[i], true
}

// Create expands h with zeroed stats for every action. It reports whether
// this call did the expansion.
func (s *Store[A, O]) Create(h History[A, O]) bool {
	return s.expand(s.locate(h))
}

// Update records return q for action a at h.
func (s *Store[A, O]) Update(h History[A, O], a A, q float64) error {
	i, ok := s.index[a]
	if !ok {
		return fmt.Errorf("%w: unknown action %v", ErrPrecondition, a)
	}
	n := s.find(h)
	if n == nil || !n.expanded() {
		return fmt.Errorf("%w: %v", ErrUnexpandedHistory, h)
	}
	n.backup(i, q)
	return nil
}

func (s *Store[A, O]) expand(n *node[A, O]) bool {
	if !n.expand(len(s.actions)) {
		return false
	}
	s.size.Add(1)
	return true
}

// find walks h without adding nodes and returns nil when the path is missing.
func (s *Store[A, O]) find(h History[A, O]) *node[A, O] {
	n := s.root
	for _, step := range h.steps {
		n = n.selects(step)
		if n == nil {
			return nil
		}
	}
	return n
}

// locate walks h, adding unexpanded nodes along the way.
func (s *Store[A, O]) locate(h History[A, O]) *node[A, O] {
	n := s.root
	for _, step := range h.steps {
		n = n.child(step)
	}
	return n
}

// Walk calls fn for every expanded history until fn returns false. Children
// are visited in no particular order.
func (s *Store[A, O]) Walk(fn func(h History[A, O], stats []ActionStats) bool) {
	s.walk(s.root, History[A, O]{}, fn)
}

func (s *Store[A, O]) walk(n *node[A, O], h History[A, O], fn func(History[A, O], []ActionStats) bool) bool {
	if stats, ok := n.snapshot(); ok && !fn(h, stats) {
		return false
	}

	n.RLock()
	children := make(map[Step[A, O]]*node[A, O], len(n.children))
	for step, c := range n.children {
		children[step] = c
	}
	n.RUnlock()

	for step, c := range children {
		if !s.walk(c, h.Extend(step.Action, step.Observation), fn) {
			return false
		}
	}
	return true
}
