package belief

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalid reports a belief whose weights cannot be sampled from.
var ErrInvalid = errors.New("invalid belief")

// Weighted is a finite weighted set of states. Weights need not sum to one.
type Weighted[S any] struct {
	states     []S
	weights    []float64
	cumulative []float64
}

func New[S any](states []S, weights []float64) (*Weighted[S], error) {
	if len(states) != len(weights) {
		return nil, fmt.Errorf("%w: %d states but %d weights", ErrInvalid, len(states), len(weights))
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, fmt.Errorf("%w: weight %d is %v", ErrInvalid, i, w)
		}
	}
	b := &Weighted[S]{
		states:     slices.Clone(states),
		weights:    slices.Clone(weights),
		cumulative: floats.CumSum(make([]float64, len(weights)), weights),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Uniform puts equal weight on every state.
func Uniform[S any](states ...S) (*Weighted[S], error) {
	weights := make([]float64, len(states))
	for i := range weights {
		weights[i] = 1
	}
	return New(states, weights)
}

// Point is certain of a single state.
func Point[S any](s S) *Weighted[S] {
	return &Weighted[S]{
		states:     []S{s},
		weights:    []float64{1},
		cumulative: []float64{1},
	}
}

// Validate reports whether the belief has a positive total weight.
func (b *Weighted[S]) Validate() error {
	if b == nil || len(b.states) == 0 {
		return fmt.Errorf("%w: no states", ErrInvalid)
	}
	if total := b.Total(); !(total > 0) {
		return fmt.Errorf("%w: total weight %v", ErrInvalid, total)
	}
	return nil
}

func (b *Weighted[S]) Total() float64 {
	if len(b.cumulative) == 0 {
		return 0
	}
	return b.cumulative[len(b.cumulative)-1]
}

func (b *Weighted[S]) Len() int {
	return len(b.states)
}

func (b *Weighted[S]) States() []S {
	return slices.Clone(b.states)
}

func (b *Weighted[S]) Weights() []float64 {
	return slices.Clone(b.weights)
}

// Probabilities returns the weights scaled to sum to one.
func (b *Weighted[S]) Probabilities() []float64 {
	p := slices.Clone(b.weights)
	floats.Scale(1/b.Total(), p)
	return p
}

// Sample draws a state with probability proportional to its weight.
// States with zero weight are never drawn.
func (b *Weighted[S]) Sample(r *rand.Rand) S {
	u := r.Float64() * b.Total()
	i := sort.Search(len(b.cumulative), func(i int) bool {
		return b.cumulative[i] > u
	})
	if i == len(b.cumulative) {
		// Rounding pushed u onto the total; take the last state with weight.
		i = len(b.weights) - 1
		for i > 0 && b.weights[i] == 0 {
			i--
		}
	}
	return b.states[i]
}
