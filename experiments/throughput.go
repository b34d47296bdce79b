package experiments

import (
	"pomcp/experiments/metrics"
)

// ParallelConfigs keeps the simulation budget, depth and exploration constant
// fixed and sweeps the number of goroutines sharing the tree.
func ParallelConfigs(simulations, depth int, exploration float64) []metrics.AgentConfig {
	goroutines := []int{1, 2, 4, 8}
	configs := make([]metrics.AgentConfig, 0, len(goroutines))
	for i, g := range goroutines {
		configs = append(configs, metrics.AgentConfig{
			ID:          i + 1,
			Goroutines:  g,
			Simulations: simulations,
			Depth:       depth,
			Exploration: exploration,
		})
	}
	return configs
}

type Throughput struct {
	Agent                int
	Searches             int
	SimulationsPerSecond float64
}

// Throughputs aggregates the step records of a result per agent config.
func Throughputs(result Result) []Throughput {
	agents := make(map[int]int, len(result.Episodes)) // Episode ID to agent ID
	for _, e := range result.Episodes {
		agents[e.ID] = e.Agent
	}

	type total struct {
		searches    int
		simulations int
		seconds     float64
	}
	totals := map[int]*total{}
	for _, s := range result.Steps {
		agent := agents[s.Episode]
		if totals[agent] == nil {
			totals[agent] = &total{}
		}
		totals[agent].searches++
		totals[agent].simulations += s.Episodes
		totals[agent].seconds += s.Duration.Seconds()
	}

	throughputs := make([]Throughput, 0, len(result.Summaries))
	for _, summary := range result.Summaries {
		t := Throughput{Agent: summary.Agent.ID}
		if tot, ok := totals[summary.Agent.ID]; ok {
			t.Searches = tot.searches
			if tot.seconds > 0 {
				t.SimulationsPerSecond = float64(tot.simulations) / tot.seconds
			}
		}
		throughputs = append(throughputs, t)
	}
	return throughputs
}
