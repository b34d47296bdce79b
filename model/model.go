package model

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Model is a POMDP as seen by the planner. The planner never inspects states,
// it only hands them back to these methods. Stochastic methods draw from r.
type Model[S any, A, O comparable] interface {
	// Actions returns the finite action space; its order breaks ties.
	Actions() []A
	Transition(r *rand.Rand, s S, a A) (S, error)
	Reward(s S, a A) (float64, error)
	Observe(r *rand.Rand, next S, a A) (O, error)
	// Discount returns gamma in (0, 1].
	Discount() float64
	IsTerminal(s S) bool
}

// ValueFunc estimates the value of a state at a search leaf.
type ValueFunc[S any] func(s S) (float64, error)

// Zero values every state at 0.
func Zero[S any]() ValueFunc[S] {
	return func(S) (float64, error) {
		return 0, nil
	}
}

// Table looks states up in a fixed table and fails on a missing state.
func Table[S comparable](values map[S]float64) ValueFunc[S] {
	return func(s S) (float64, error) {
		v, ok := values[s]
		if !ok {
			return 0, fmt.Errorf("no value for state %v", s)
		}
		return v, nil
	}
}

// Funcs builds a Model out of plain functions that cannot fail. T, R and Z
// must be set; a nil Terminal means no state is terminal.
type Funcs[S any, A, O comparable] struct {
	ActionSpace []A
	T           func(r *rand.Rand, s S, a A) S
	R           func(s S, a A) float64
	Z           func(r *rand.Rand, next S, a A) O
	Gamma       float64
	Terminal    func(s S) bool
}

func (f Funcs[S, A, O]) Actions() []A {
	return f.ActionSpace
}

func (f Funcs[S, A, O]) Transition(r *rand.Rand, s S, a A) (S, error) {
	return f.T(r, s, a), nil
}

func (f Funcs[S, A, O]) Reward(s S, a A) (float64, error) {
	return f.R(s, a), nil
}

func (f Funcs[S, A, O]) Observe(r *rand.Rand, next S, a A) (O, error) {
	return f.Z(r, next, a), nil
}

func (f Funcs[S, A, O]) Discount() float64 {
	return f.Gamma
}

func (f Funcs[S, A, O]) IsTerminal(s S) bool {
	if f.Terminal == nil {
		return false
	}
	return f.Terminal(s)
}
