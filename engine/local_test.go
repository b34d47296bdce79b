package engine

import (
	"context"
	"errors"
	"testing"

	"pomcp/belief"
	"pomcp/model"
	"pomcp/model/tiger"
	"pomcp/searcher"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// countdown moves from n to n-1 on "step" and ends at 0.
func countdown() model.Funcs[int, string, int] {
	return model.Funcs[int, string, int]{
		ActionSpace: []string{"wait", "step"},
		T: func(r *rand.Rand, s int, a string) int {
			if a == "step" {
				return s - 1
			}
			return s
		},
		R: func(s int, a string) float64 {
			if a == "step" {
				return 1
			}
			return 0
		},
		Z: func(r *rand.Rand, next int, a string) int {
			return next
		},
		Gamma:    0.5,
		Terminal: func(s int) bool { return s <= 0 },
	}
}

func observed(b *belief.Weighted[int], a string, o int) (*belief.Weighted[int], error) {
	return belief.Point(o), nil
}

func TestLocalRun(t *testing.T) {
	t.Run("stops at a terminal state", func(t *testing.T) {
		m := countdown()
		p, err := searcher.NewPOMCP[int, string, int](m, model.Zero[int](),
			searcher.WithSimulations(50), searcher.WithDepth(3), searcher.WithExploration(1), searcher.WithSeed(1))
		require.NoError(t, err)
		e, err := NewLocal[int, string, int](m, p, observed, belief.Point(3), 10, 1)
		require.NoError(t, err)

		episode, steps, err := e.Run(context.Background())

		require.NoError(t, err)
		require.Equal(t, 3, episode.Steps, "Should step down to the terminal state")
		require.Len(t, steps, 3)
		require.Equal(t, 3.0, episode.Return)
		require.InDelta(t, 1+0.5+0.25, episode.DiscountedReturn, 1e-12)
		require.Equal(t, 0, e.State())
		require.Equal(t, 3, e.History().Len(), "Each step should extend the history")
		for i, s := range steps {
			require.Equal(t, i+1, s.Step)
			require.Equal(t, "step", s.Action)
			require.Equal(t, 50, s.Episodes, "Each step should run the full budget")
		}
		require.True(t, steps[1].TreeReused, "Later steps should reuse the tree grown earlier")
	})

	t.Run("stops at the step limit", func(t *testing.T) {
		p, err := searcher.NewPOMCP[tiger.State, tiger.Action, tiger.Observation](tiger.New(), model.Zero[tiger.State](),
			searcher.WithSimulations(100), searcher.WithDepth(2), searcher.WithSeed(2))
		require.NoError(t, err)
		tg := tiger.New()
		e, err := NewLocal[tiger.State, tiger.Action, tiger.Observation](tg, p, tg.Update, tiger.Uniform(), 4, 2)
		require.NoError(t, err)

		episode, steps, err := e.Run(context.Background())

		require.NoError(t, err)
		require.Equal(t, 4, episode.Steps)
		require.Len(t, steps, 4)
		require.NoError(t, e.Belief().Validate())
	})

	t.Run("surfaces belief update failures", func(t *testing.T) {
		m := countdown()
		p, err := searcher.NewPOMCP[int, string, int](m, model.Zero[int](), searcher.WithSimulations(10), searcher.WithSeed(1))
		require.NoError(t, err)
		boom := errors.New("boom")
		failing := func(*belief.Weighted[int], string, int) (*belief.Weighted[int], error) {
			return nil, boom
		}
		e, err := NewLocal[int, string, int](m, p, failing, belief.Point(3), 10, 1)
		require.NoError(t, err)

		_, _, err = e.Run(context.Background())

		require.ErrorIs(t, err, boom)
	})

	t.Run("rejects an invalid initial belief", func(t *testing.T) {
		m := countdown()
		p, err := searcher.NewPOMCP[int, string, int](m, model.Zero[int]())
		require.NoError(t, err)

		_, err = NewLocal[int, string, int](m, p, observed, &belief.Weighted[int]{}, 10, 1)

		require.ErrorIs(t, err, searcher.ErrPrecondition)
	})
}
