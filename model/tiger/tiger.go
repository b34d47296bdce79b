// Package tiger is the classic Tiger POMDP: a tiger hides behind one of two
// doors and the agent may listen (noisily) or open a door.
package tiger

import (
	"fmt"

	"pomcp/belief"

	"golang.org/x/exp/rand"
)

type State int

const (
	TigerLeft State = iota
	TigerRight
)

func (s State) String() string {
	switch s {
	case TigerLeft:
		return "tiger-left"
	case TigerRight:
		return "tiger-right"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Action int

const (
	Listen Action = iota
	OpenLeft
	OpenRight
)

func (a Action) String() string {
	switch a {
	case Listen:
		return "listen"
	case OpenLeft:
		return "open-left"
	case OpenRight:
		return "open-right"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

type Observation int

const (
	HearLeft Observation = iota
	HearRight
)

func (o Observation) String() string {
	switch o {
	case HearLeft:
		return "hear-left"
	case HearRight:
		return "hear-right"
	}
	return fmt.Sprintf("Observation(%d)", int(o))
}

var States = []State{TigerLeft, TigerRight}

type Tiger struct {
	Accuracy   float64 // Probability that listening hears the right side
	ListenCost float64
	Penalty    float64 // Reward for opening the tiger's door
	Prize      float64 // Reward for opening the other door
	Gamma      float64
}

// New returns the textbook parameters.
func New() *Tiger {
	return &Tiger{
		Accuracy:   0.85,
		ListenCost: -1,
		Penalty:    -100,
		Prize:      10,
		Gamma:      0.95,
	}
}

func (t *Tiger) Actions() []Action {
	return []Action{Listen, OpenLeft, OpenRight}
}

// Transition keeps the tiger in place while listening; opening a door resets
// the problem with the tiger placed uniformly at random.
func (t *Tiger) Transition(r *rand.Rand, s State, a Action) (State, error) {
	if err := validate(s, a); err != nil {
		return s, err
	}
	if a == Listen {
		return s, nil
	}
	return States[r.Intn(len(States))], nil
}

func (t *Tiger) Reward(s State, a Action) (float64, error) {
	if err := validate(s, a); err != nil {
		return 0, err
	}
	switch {
	case a == Listen:
		return t.ListenCost, nil
	case (a == OpenLeft) == (s == TigerLeft):
		return t.Penalty, nil
	default:
		return t.Prize, nil
	}
}

func (t *Tiger) Observe(r *rand.Rand, next State, a Action) (Observation, error) {
	if err := validate(next, a); err != nil {
		return HearLeft, err
	}
	if r.Float64() < t.ObservationProb(next, a, HearLeft) {
		return HearLeft, nil
	}
	return HearRight, nil
}

func (t *Tiger) Discount() float64 {
	return t.Gamma
}

func (t *Tiger) IsTerminal(State) bool {
	return false
}

// TransitionProb is P(next | s, a).
func (t *Tiger) TransitionProb(s State, a Action, next State) float64 {
	if a != Listen {
		return 1 / float64(len(States))
	}
	if s == next {
		return 1
	}
	return 0
}

// ObservationProb is P(o | next, a).
func (t *Tiger) ObservationProb(next State, a Action, o Observation) float64 {
	if a != Listen {
		return 0.5
	}
	if (next == TigerLeft) == (o == HearLeft) {
		return t.Accuracy
	}
	return 1 - t.Accuracy
}

// Update is the exact Bayes filter over the two tiger positions.
func (t *Tiger) Update(b *belief.Weighted[State], a Action, o Observation) (*belief.Weighted[State], error) {
	states := b.States()
	prior := b.Probabilities()

	posterior := make([]float64, len(States))
	for i, next := range States {
		predicted := 0.0
		for j, s := range states {
			predicted += prior[j] * t.TransitionProb(s, a, next)
		}
		posterior[i] = predicted * t.ObservationProb(next, a, o)
	}
	next, err := belief.New(States, posterior)
	if err != nil {
		return nil, fmt.Errorf("observation %v impossible after %v: %w", o, a, err)
	}
	return next, nil
}

// Uniform is the initial belief.
func Uniform() *belief.Weighted[State] {
	b, _ := belief.Uniform(States...)
	return b
}

func validate(s State, a Action) error {
	if s != TigerLeft && s != TigerRight {
		return fmt.Errorf("unknown state %v", s)
	}
	if a < Listen || a > OpenRight {
		return fmt.Errorf("unknown action %v", a)
	}
	return nil
}
