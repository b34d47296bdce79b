package engine

import (
	"context"

	"pomcp/experiments/metrics"
)

const MaxSteps = 10000

type Engine interface {
	// Run plays an episode until a terminal state or the step limit is reached
	Run(ctx context.Context) (metrics.EpisodeMetric, []metrics.StepMetric, error)
}
