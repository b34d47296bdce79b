package searcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBonus(t *testing.T) {
	t.Run("untried action", func(t *testing.T) {
		for _, total := range []int{0, 1, 10, 1000} {
			require.True(t, math.IsInf(bonus(0, total), 1), "Untried action should get an infinite bonus")
		}
	})

	t.Run("computing the bonus", func(t *testing.T) {
		require.InDelta(t, math.Sqrt(math.Log(100)/10), bonus(10, 100), 1e-12,
			"Should compute sqrt(ln(N)/n)")
		require.Equal(t, 0.0, bonus(1, 1), "Single trial should have no bonus")
	})

	t.Run("bonus decreases with action visits", func(t *testing.T) {
		for n := 1; n < 50; n++ {
			require.GreaterOrEqual(t, bonus(n, 100), bonus(n+1, 100))
		}
	})

	t.Run("bonus increases with total visits", func(t *testing.T) {
		for total := 5; total < 200; total++ {
			require.LessOrEqual(t, bonus(5, total), bonus(5, total+1))
		}
	})
}

func TestExplore(t *testing.T) {
	t.Run("fresh node picks the first action", func(t *testing.T) {
		stats := []ActionStats{{}, {}, {}}

		require.Equal(t, 0, explore(stats, 1), "Ties should go to the first action")
	})

	t.Run("untried action beats any tried action", func(t *testing.T) {
		stats := []ActionStats{{Visits: 5, Value: 1e9}, {}, {}}

		require.Equal(t, 1, explore(stats, 0), "Untried action should win even without exploration")
		require.Equal(t, 1, explore(stats, 2))
	})

	t.Run("exploiting without exploration", func(t *testing.T) {
		stats := []ActionStats{{Visits: 10, Value: 0.2}, {Visits: 1, Value: 0.5}}

		require.Equal(t, 1, explore(stats, 0), "c=0 should pick the highest value")
	})

	t.Run("exploring under-sampled actions", func(t *testing.T) {
		stats := []ActionStats{{Visits: 100, Value: 0.6}, {Visits: 1, Value: 0.5}}

		require.Equal(t, 0, explore(stats, 0.01), "Small c should exploit")
		require.Equal(t, 1, explore(stats, 10), "Large c should explore")
	})

	t.Run("ties go to the earliest action", func(t *testing.T) {
		stats := []ActionStats{{Visits: 2, Value: 1}, {Visits: 3, Value: 1}, {Visits: 2, Value: 1}}

		require.Equal(t, 0, explore(stats, 1))
	})
}

func TestGreedy(t *testing.T) {
	t.Run("ignores visit counts", func(t *testing.T) {
		stats := []ActionStats{{Visits: 100, Value: 1}, {Visits: 0, Value: 2}}

		require.Equal(t, 1, greedy(stats))
	})

	t.Run("ties go to the earliest action", func(t *testing.T) {
		stats := []ActionStats{{Visits: 1, Value: -1}, {Visits: 1, Value: 3}, {Visits: 9, Value: 3}}

		require.Equal(t, 1, greedy(stats))
	})
}
