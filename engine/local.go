package engine

import (
	"context"
	"fmt"
	"time"

	"pomcp/belief"
	"pomcp/experiments/metrics"
	"pomcp/model"
	"pomcp/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Updater folds an executed action and its observation into the belief.
type Updater[S any, A, O comparable] func(b *belief.Weighted[S], a A, o O) (*belief.Weighted[S], error)

// Local runs the planner against a hidden true state simulated with the same
// model the planner searches with.
type Local[S any, A, O comparable] struct {
	model    model.Model[S, A, O]
	planner  *searcher.POMCP[S, A, O]
	update   Updater[S, A, O]
	state    S
	belief   *belief.Weighted[S]
	history  searcher.History[A, O]
	maxSteps int
	rng      *rand.Rand
}

var _ Engine = (*Local[int, int, int])(nil)

func NewLocal[S any, A, O comparable](
	m model.Model[S, A, O],
	planner *searcher.POMCP[S, A, O],
	update Updater[S, A, O],
	initial *belief.Weighted[S],
	maxSteps int,
	seed uint64,
) (*Local[S, A, O], error) {
	if m == nil || planner == nil || update == nil {
		return nil, fmt.Errorf("%w: model, planner and updater are required", searcher.ErrPrecondition)
	}
	if err := initial.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", searcher.ErrPrecondition, err)
	}
	if maxSteps <= 0 || maxSteps > MaxSteps {
		maxSteps = MaxSteps
	}

	rng := rand.New(rand.NewSource(seed))
	return &Local[S, A, O]{
		model:    m,
		planner:  planner,
		update:   update,
		state:    initial.Sample(rng),
		belief:   initial,
		maxSteps: maxSteps,
		rng:      rng,
	}, nil
}

func (e *Local[S, A, O]) State() S {
	return e.state
}

func (e *Local[S, A, O]) Belief() *belief.Weighted[S] {
	return e.belief
}

func (e *Local[S, A, O]) History() searcher.History[A, O] {
	return e.history
}

// Run executes the episode loop: search, act on the true state, observe,
// extend the history and update the belief.
func (e *Local[S, A, O]) Run(ctx context.Context) (metrics.EpisodeMetric, []metrics.StepMetric, error) {
	episode := metrics.EpisodeMetric{StartTime: time.Now()}
	var steps []metrics.StepMetric

	log.Info().Msgf("planner %s is starting from %v", e.planner.ID(), e.state)

	discount := 1.0
	gamma := e.model.Discount()
	for step := 1; step <= e.maxSteps && !e.model.IsTerminal(e.state); step++ {
		decision, err := e.planner.Search(ctx, e.belief, e.history)
		if err != nil {
			return episode, steps, fmt.Errorf("step %d: %w", step, err)
		}
		action := decision.Action

		reward, err := e.model.Reward(e.state, action)
		if err != nil {
			return episode, steps, fmt.Errorf("step %d: reward: %w", step, err)
		}
		next, err := e.model.Transition(e.rng, e.state, action)
		if err != nil {
			return episode, steps, fmt.Errorf("step %d: transition: %w", step, err)
		}
		observation, err := e.model.Observe(e.rng, next, action)
		if err != nil {
			return episode, steps, fmt.Errorf("step %d: observe: %w", step, err)
		}
		b, err := e.update(e.belief, action, observation)
		if err != nil {
			return episode, steps, fmt.Errorf("step %d: belief update: %w", step, err)
		}

		log.Debug().Msgf("step %d: %v in %v -> %v, observed %v, reward %.2f", step, action, e.state, next, observation, reward)

		steps = append(steps, metrics.StepMetric{
			Step:         step,
			Action:       fmt.Sprint(action),
			Reward:       reward,
			SearchMetric: decision.Metric,
		})
		episode.Return += reward
		episode.DiscountedReturn += discount * reward
		discount *= gamma

		e.state = next
		e.belief = b
		e.history = e.history.Extend(action, observation)
	}

	episode.EndTime = time.Now()
	episode.Duration = episode.EndTime.Sub(episode.StartTime)
	episode.Steps = len(steps)

	log.Info().Msgf("episode over after %d steps with return %.2f", episode.Steps, episode.Return)
	return episode, steps, nil
}
