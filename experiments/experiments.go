package experiments

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"pomcp/engine"
	"pomcp/experiments/metrics"
	"pomcp/meta"
	"pomcp/model"
	"pomcp/model/tiger"
	"pomcp/searcher"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
	"lukechampine.com/frand"
)

// Settings describes one experiment: every agent config plays Episodes
// episodes of Tiger.
type Settings struct {
	Name       string
	OutputDir  string // Empty skips writing records
	Configs    []metrics.AgentConfig
	Episodes   int
	MaxSteps   int
	Seed       uint64                // 0 draws a random base seed
	Registerer prometheus.Registerer // Optional
}

type Summary struct {
	Agent    metrics.AgentConfig
	Episodes int
	Mean     float64 // Of the discounted return
	StdDev   float64
	Steps    float64 // Mean episode length
}

type Result struct {
	Dir       string
	Seed      uint64 // Base seed, episode i plays with Seed+i
	Summaries []Summary
	Episodes  []metrics.EpisodeRecord
	Steps     []metrics.StepRecord
}

// SimulationConfigs sweeps the simulation budget at a fixed depth and
// exploration constant.
func SimulationConfigs(goroutines, depth int, exploration float64) []metrics.AgentConfig {
	budgets := []int{10, 100, 1000}
	configs := make([]metrics.AgentConfig, 0, len(budgets))
	for i, m := range budgets {
		configs = append(configs, metrics.AgentConfig{
			ID:          i + 1,
			Goroutines:  goroutines,
			Simulations: m,
			Depth:       depth,
			Exploration: exploration,
		})
	}
	return configs
}

func Run(ctx context.Context, settings Settings) (Result, error) {
	if len(settings.Configs) == 0 {
		return Result{}, fmt.Errorf("%w: no agent configs", searcher.ErrPrecondition)
	}
	if settings.Episodes <= 0 {
		settings.Episodes = meta.EPISODES
	}
	if settings.MaxSteps <= 0 {
		settings.MaxSteps = meta.MAX_STEPS
	}

	if settings.Seed == 0 {
		settings.Seed = frand.Uint64n(math.MaxUint64)
	}

	// Run a number of episodes for each config
	count := 0
	result := Result{Seed: settings.Seed}

	log.Info().Msgf("starting %s experiment with seed %d...", settings.Name, settings.Seed)

	for ci, config := range settings.Configs {
		log.Info().Msgf("starting config %d of %d: %+v...", ci+1, len(settings.Configs), config)

		collector := newCollector(settings.Registerer, config)
		returns := make([]float64, 0, settings.Episodes)
		lengths := make([]float64, 0, settings.Episodes)
		for i := 0; i < settings.Episodes; i++ {
			count++
			seed := settings.Seed + uint64(count)

			episodeMetric, stepMetrics, err := runEpisode(ctx, config, collector, settings.MaxSteps, seed)
			if err != nil {
				return result, fmt.Errorf("config %d episode %d: %w", config.ID, i+1, err)
			}
			result.Episodes = append(result.Episodes, metrics.EpisodeRecord{
				ID:            count,
				Agent:         config.ID,
				EpisodeMetric: episodeMetric,
			})
			for _, sm := range stepMetrics {
				result.Steps = append(result.Steps, metrics.StepRecord{
					Episode:    count,
					StepMetric: sm,
				})
			}
			returns = append(returns, episodeMetric.DiscountedReturn)
			lengths = append(lengths, float64(episodeMetric.Steps))

			log.Debug().Msgf("completed config %d of %d episode %d with return %.2f", ci+1, len(settings.Configs), i+1, episodeMetric.DiscountedReturn)
		}

		mean, std := stat.MeanStdDev(returns, nil)
		result.Summaries = append(result.Summaries, Summary{
			Agent:    config,
			Episodes: len(returns),
			Mean:     mean,
			StdDev:   std,
			Steps:    stat.Mean(lengths, nil),
		})
		log.Info().Msgf("completed config %d of %d with mean return %.2f", ci+1, len(settings.Configs), mean)
	}

	log.Info().Msgf("completed %s experiment", settings.Name)

	if settings.OutputDir == "" {
		return result, nil
	}
	dir, err := store(settings, result)
	if err != nil {
		return result, err
	}
	result.Dir = dir
	return result, nil
}

// runEpisode plays a single Tiger episode with a fresh planner.
func runEpisode(ctx context.Context, config metrics.AgentConfig, collector metrics.Collector, maxSteps int, seed uint64) (metrics.EpisodeMetric, []metrics.StepMetric, error) {
	t := tiger.New()
	planner, err := createPOMCP(t, config, collector, seed)
	if err != nil {
		return metrics.EpisodeMetric{}, nil, err
	}
	e, err := engine.NewLocal[tiger.State, tiger.Action, tiger.Observation](t, planner, t.Update, tiger.Uniform(), maxSteps, seed)
	if err != nil {
		return metrics.EpisodeMetric{}, nil, err
	}
	return e.Run(ctx)
}

func createPOMCP(t *tiger.Tiger, config metrics.AgentConfig, collector metrics.Collector, seed uint64) (*searcher.POMCP[tiger.State, tiger.Action, tiger.Observation], error) {
	options := []searcher.Option{searcher.WithSeed(seed)}

	if config.Goroutines > 0 {
		options = append(options, searcher.WithGoroutines(config.Goroutines))
	}
	if config.Simulations > 0 {
		options = append(options, searcher.WithSimulations(config.Simulations))
	}
	options = append(options,
		searcher.WithDepth(config.Depth),
		searcher.WithExploration(config.Exploration),
		searcher.WithMetrics(collector),
	)
	return searcher.NewPOMCP[tiger.State, tiger.Action, tiger.Observation](t, model.Zero[tiger.State](), options...)
}

func newCollector(reg prometheus.Registerer, config metrics.AgentConfig) metrics.Collector {
	if reg == nil {
		return metrics.NewCollector()
	}
	labelled := prometheus.WrapRegistererWith(prometheus.Labels{"agent": strconv.Itoa(config.ID)}, reg)
	return metrics.NewPrometheusCollector(labelled, metrics.NewCollector())
}

// store writes experiment metadata and results and returns their directory.
func store(settings Settings, result Result) (string, error) {
	writer, err := metrics.NewWriter(settings.OutputDir, settings.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(settings.Configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteEpisodeRecords(result.Episodes); err != nil {
		return "", fmt.Errorf("failed to write episode records: %w", err)
	}
	log.Info().Msg("stored episode records")

	if err := writer.WriteStepRecords(result.Steps); err != nil {
		return "", fmt.Errorf("failed to write step records: %w", err)
	}
	log.Info().Msg("stored step records")

	if err := writer.WriteReturnsChart(settings.Configs, result.Episodes); err != nil {
		return "", err
	}
	log.Info().Msgf("stored results in %s", writer.Dir())
	return writer.Dir(), nil
}
