package searcher

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Step is one (action, observation) token of a history.
type Step[A, O comparable] struct {
	Action      A
	Observation O
}

// History is an immutable sequence of steps. The zero value is the root history.
type History[A, O comparable] struct {
	steps []Step[A, O]
}

func NewHistory[A, O comparable](steps ...Step[A, O]) History[A, O] {
	return History[A, O]{steps: slices.Clone(steps)}
}

// Extend returns a new history with (a, o) appended; h is left untouched.
func (h History[A, O]) Extend(a A, o O) History[A, O] {
	steps := make([]Step[A, O], len(h.steps), len(h.steps)+1)
	copy(steps, h.steps)
	return History[A, O]{steps: append(steps, Step[A, O]{Action: a, Observation: o})}
}

func (h History[A, O]) Len() int {
	return len(h.steps)
}

func (h History[A, O]) IsRoot() bool {
	return len(h.steps) == 0
}

func (h History[A, O]) Steps() []Step[A, O] {
	return slices.Clone(h.steps)
}

func (h History[A, O]) Last() (Step[A, O], bool) {
	if len(h.steps) == 0 {
		return Step[A, O]{}, false
	}
	return h.steps[len(h.steps)-1], true
}

func (h History[A, O]) Parent() (History[A, O], bool) {
	if len(h.steps) == 0 {
		return h, false
	}
	return History[A, O]{steps: h.steps[:len(h.steps)-1:len(h.steps)-1]}, true
}

func (h History[A, O]) Equal(other History[A, O]) bool {
	return slices.Equal(h.steps, other.steps)
}

func (h History[A, O]) HasPrefix(prefix History[A, O]) bool {
	if len(prefix.steps) > len(h.steps) {
		return false
	}
	return slices.Equal(h.steps[:len(prefix.steps)], prefix.steps)
}

func (h History[A, O]) String() string {
	if len(h.steps) == 0 {
		return "<root>"
	}
	var b strings.Builder
	for i, step := range h.steps {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v/%v", step.Action, step.Observation)
	}
	return b.String()
}
