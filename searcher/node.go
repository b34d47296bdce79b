package searcher

import "sync"

// ActionStats holds the visit count and running mean return of one action at a history.
type ActionStats struct {
	Visits int
	Value  float64
}

// node is one vertex of the history trie. A node reached only as a path
// prefix has nil stats and counts as not expanded.
type node[A, O comparable] struct {
	sync.RWMutex
	stats    []ActionStats
	children map[Step[A, O]]*node[A, O]
}

// expand initializes stats for all n actions. It reports false when another
// visitor already expanded the node.
func (n *node[A, O]) expand(actions int) bool {
	n.Lock()
	defer n.Unlock()

	if n.stats != nil {
		return false
	}
	n.stats = make([]ActionStats, actions)
	return true
}

func (n *node[A, O]) expanded() bool {
	n.RLock()
	defer n.RUnlock()

	return n.stats != nil
}

func (n *node[A, O]) snapshot() ([]ActionStats, bool) {
	n.RLock()
	defer n.RUnlock()

	if n.stats == nil {
		return nil, false
	}
	stats := make([]ActionStats, len(n.stats))
	copy(stats, n.stats)
	return stats, true
}

// selects returns the child reached by step, or nil.
func (n *node[A, O]) selects(step Step[A, O]) *node[A, O] {
	n.RLock()
	defer n.RUnlock()

	return n.children[step]
}

// child returns the child reached by step, adding an unexpanded one if needed.
func (n *node[A, O]) child(step Step[A, O]) *node[A, O] {
	if c := n.selects(step); c != nil {
		return c
	}

	n.Lock()
	defer n.Unlock()

	if c, ok := n.children[step]; ok {
		return c
	}
	if n.children == nil {
		n.children = make(map[Step[A, O]]*node[A, O])
	}
	c := &node[A, O]{}
	n.children[step] = c
	return c
}

// pickAction runs the UCB selector over the node's current stats.
func (n *node[A, O]) pickAction(c float64) int {
	n.RLock()
	defer n.RUnlock()

	if n.stats == nil {
		panic("cannot pick an action at an unexpanded node")
	}
	return explore(n.stats, c)
}

// backup records return q for action i with an incremental mean update.
func (n *node[A, O]) backup(i int, q float64) {
	n.Lock()
	defer n.Unlock()

	if n.stats == nil {
		panic("cannot back up an unexpanded node")
	}
	s := &n.stats[i]
	s.Visits++
	s.Value += (q - s.Value) / float64(s.Visits)
}
