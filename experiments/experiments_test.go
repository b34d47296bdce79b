package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pomcp/experiments/metrics"
	"pomcp/model/tiger"
	"pomcp/searcher"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func smallConfigs() []metrics.AgentConfig {
	return []metrics.AgentConfig{
		{ID: 1, Goroutines: 1, Simulations: 20, Depth: 3, Exploration: 10},
		{ID: 2, Goroutines: 2, Simulations: 20, Depth: 3, Exploration: 10},
	}
}

func TestRun(t *testing.T) {
	t.Run("plays every config", func(t *testing.T) {
		result, err := Run(context.Background(), Settings{
			Name:     "tiger",
			Configs:  smallConfigs(),
			Episodes: 3,
			MaxSteps: 4,
			Seed:     7,
		})

		require.NoError(t, err)
		require.Empty(t, result.Dir, "Should not write without an output directory")
		require.Len(t, result.Episodes, 6)
		require.Len(t, result.Steps, 6*4, "Tiger never terminates so every episode runs to the step limit")
		require.Len(t, result.Summaries, 2)
		for _, s := range result.Summaries {
			require.Equal(t, 3, s.Episodes)
			require.Equal(t, 4.0, s.Steps)
		}
		for i, e := range result.Episodes {
			require.Equal(t, i+1, e.ID)
		}
		for _, s := range result.Steps {
			require.Equal(t, 20, s.Simulations)
		}
	})

	t.Run("writes records", func(t *testing.T) {
		result, err := Run(context.Background(), Settings{
			Name:      "tiger",
			OutputDir: t.TempDir(),
			Configs:   smallConfigs()[:1],
			Episodes:  1,
			MaxSteps:  2,
		})

		require.NoError(t, err)
		for _, file := range []string{"agent_configs.csv", "episode_records.csv", "step_records.csv", "returns.html"} {
			_, err := os.Stat(filepath.Join(result.Dir, file))
			require.NoError(t, err, file)
		}
	})

	t.Run("exports prometheus metrics per agent", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		_, err := Run(context.Background(), Settings{
			Name:       "tiger",
			Configs:    smallConfigs(),
			Episodes:   1,
			MaxSteps:   2,
			Registerer: reg,
		})

		require.NoError(t, err)
		count, err := testutil.GatherAndCount(reg, "pomcp_searches_total")
		require.NoError(t, err)
		require.Equal(t, 2, count, "Should keep one series per agent")
	})

	t.Run("requires configs", func(t *testing.T) {
		_, err := Run(context.Background(), Settings{Name: "empty"})

		require.ErrorIs(t, err, searcher.ErrPrecondition)
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Run(ctx, Settings{Name: "tiger", Configs: smallConfigs(), Episodes: 1, MaxSteps: 2})

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestThroughputs(t *testing.T) {
	result := Result{
		Summaries: []Summary{{Agent: metrics.AgentConfig{ID: 1}}, {Agent: metrics.AgentConfig{ID: 2}}},
		Episodes: []metrics.EpisodeRecord{
			{ID: 1, Agent: 1},
			{ID: 2, Agent: 2},
		},
		Steps: []metrics.StepRecord{
			{Episode: 1, StepMetric: metrics.StepMetric{SearchMetric: metrics.SearchMetric{Episodes: 100, Duration: time.Second}}},
			{Episode: 1, StepMetric: metrics.StepMetric{SearchMetric: metrics.SearchMetric{Episodes: 100, Duration: time.Second}}},
			{Episode: 2, StepMetric: metrics.StepMetric{SearchMetric: metrics.SearchMetric{Episodes: 100, Duration: 250 * time.Millisecond}}},
		},
	}

	throughputs := Throughputs(result)

	require.Equal(t, []Throughput{
		{Agent: 1, Searches: 2, SimulationsPerSecond: 100},
		{Agent: 2, Searches: 1, SimulationsPerSecond: 400},
	}, throughputs)
}

func TestConfigs(t *testing.T) {
	t.Run("goroutine sweep", func(t *testing.T) {
		configs := ParallelConfigs(50, 3, 2)

		require.Len(t, configs, 4)
		for _, c := range configs {
			require.Equal(t, 50, c.Simulations)
			require.Equal(t, 3, c.Depth, "Should keep the requested depth")
			require.Equal(t, 2.0, c.Exploration, "Should keep the requested exploration")
		}
	})

	t.Run("simulation sweep", func(t *testing.T) {
		configs := SimulationConfigs(4, 0, 0)

		require.Len(t, configs, 3)
		for _, c := range configs {
			require.Equal(t, 4, c.Goroutines)
			require.Equal(t, 0, c.Depth, "Zero depth is a valid setting")
			require.Equal(t, 0.0, c.Exploration, "Zero exploration is a valid setting")
		}
	})
}

func TestCreatePOMCP(t *testing.T) {
	t.Run("zero depth and exploration are kept", func(t *testing.T) {
		config := metrics.AgentConfig{ID: 1, Goroutines: 1, Simulations: 10, Depth: 0, Exploration: 0}

		p, err := createPOMCP(tiger.New(), config, metrics.NewDummyCollector(), 1)

		require.NoError(t, err)
		require.Equal(t, 0, p.Depth())
		require.Equal(t, 0.0, p.Exploration())
	})

	t.Run("configured values reach the planner", func(t *testing.T) {
		config := metrics.AgentConfig{ID: 1, Goroutines: 2, Simulations: 10, Depth: 3, Exploration: 2.5}

		p, err := createPOMCP(tiger.New(), config, metrics.NewDummyCollector(), 1)

		require.NoError(t, err)
		require.Equal(t, 3, p.Depth())
		require.Equal(t, 2.5, p.Exploration())
	})
}

func TestRunSeed(t *testing.T) {
	settings := Settings{Name: "tiger", Configs: smallConfigs()[:1], Episodes: 2, MaxSteps: 2}

	t.Run("fixed seed is reproducible", func(t *testing.T) {
		settings := settings
		settings.Seed = 11

		first, err := Run(context.Background(), settings)
		require.NoError(t, err)
		second, err := Run(context.Background(), settings)
		require.NoError(t, err)

		require.Equal(t, uint64(11), first.Seed)
		for i := range first.Steps {
			require.Equal(t, first.Steps[i].Action, second.Steps[i].Action, "step %d", i)
			require.Equal(t, first.Steps[i].Reward, second.Steps[i].Reward, "step %d", i)
		}
	})

	t.Run("zero seed draws a random one", func(t *testing.T) {
		first, err := Run(context.Background(), settings)
		require.NoError(t, err)
		second, err := Run(context.Background(), settings)
		require.NoError(t, err)

		require.NotZero(t, first.Seed)
		require.NotEqual(t, first.Seed, second.Seed, "Each run should draw its own seed")
	})
}
