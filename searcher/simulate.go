package searcher

import "golang.org/x/exp/rand"

// worker carries the per-goroutine generator handed to the model's samplers.
type worker struct {
	rng *rand.Rand
}

// Simulate runs one trajectory from state at h with the given remaining depth
// and returns its estimated return, updating the tree along the way.
func (p *POMCP[S, A, O]) Simulate(state S, h History[A, O], depth int) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.simulate(&worker{rng: p.rng}, state, p.store.locate(h), depth, 0)
}

// simulate expands at most one node per call. Stats are backed up only for
// nodes that were already expanded when the trajectory reached them.
func (p *POMCP[S, A, O]) simulate(w *worker, state S, n *node[A, O], depth int, level int) (float64, error) {
	if depth <= 0 || p.model.IsTerminal(state) {
		return p.evaluate(state, level)
	}

	if p.store.expand(n) {
		p.metrics.AddExpansion()
		return p.evaluate(state, level)
	}

	i := n.pickAction(p.exploration)
	action := p.actions[i]

	next, err := p.model.Transition(w.rng, state, action)
	if err != nil {
		return 0, modelError("transition", err)
	}
	reward, err := p.model.Reward(state, action)
	if err != nil {
		return 0, modelError("reward", err)
	}
	observation, err := p.model.Observe(w.rng, next, action)
	if err != nil {
		return 0, modelError("observe", err)
	}

	child := n.child(Step[A, O]{Action: action, Observation: observation})
	future, err := p.simulate(w, next, child, depth-1, level+1)
	if err != nil {
		return 0, err
	}

	q := reward + p.gamma*future
	n.backup(i, q)
	return q, nil
}

func (p *POMCP[S, A, O]) evaluate(state S, level int) (float64, error) {
	p.metrics.ObserveDepth(level)
	v, err := p.value(state)
	if err != nil {
		return 0, modelError("value", err)
	}
	return v, nil
}
