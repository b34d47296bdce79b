package searcher

import (
	"context"
	"fmt"
	"math"
	"sync"

	"pomcp/experiments/metrics"
	"pomcp/meta"
	"pomcp/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"
)

// Belief is the distribution root states are drawn from.
type Belief[S any] interface {
	Validate() error
	Sample(r *rand.Rand) S
}

type Option func(o *options)

type options struct {
	simulations int
	depth       int
	exploration float64
	goroutines  int
	seed        uint64
	seeded      bool
	metrics     metrics.Collector
	logger      *zerolog.Logger
}

func WithSimulations(simulations int) Option {
	return func(o *options) {
		o.simulations = simulations
	}
}

func WithDepth(depth int) Option {
	return func(o *options) {
		o.depth = depth
	}
}

func WithExploration(c float64) Option {
	return func(o *options) {
		o.exploration = c
	}
}

func WithGoroutines(goroutines int) Option {
	return func(o *options) {
		o.goroutines = goroutines
	}
}

func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(o *options) {
		if collector != nil {
			o.metrics = collector
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// POMCP plans over a tree of action-observation histories. The tree is kept
// across Search calls, so later decisions in an episode reuse earlier work.
type POMCP[S any, A, O comparable] struct {
	mu          sync.Mutex
	id          string
	model       model.Model[S, A, O]
	value       model.ValueFunc[S]
	actions     []A
	gamma       float64
	store       *Store[A, O]
	simulations int
	depth       int
	exploration float64
	goroutines  int
	rng         *rand.Rand
	metrics     metrics.Collector
	logger      zerolog.Logger
}

// Decision is the outcome of one Search.
type Decision[A comparable] struct {
	Action  A
	Actions []A
	Stats   []ActionStats // Ordered like Actions
	Metric  metrics.SearchMetric
}

func NewPOMCP[S any, A, O comparable](m model.Model[S, A, O], value model.ValueFunc[S], opts ...Option) (*POMCP[S, A, O], error) {
	o := options{ // Default values
		simulations: meta.SIMULATIONS,
		depth:       meta.DEPTH,
		exploration: meta.EXPLORATION,
		goroutines:  meta.GO_ROUTINES,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if m == nil || value == nil {
		return nil, fmt.Errorf("%w: model and value function are required", ErrPrecondition)
	}
	if o.simulations <= 0 {
		return nil, fmt.Errorf("%w: simulations must be positive, got %d", ErrPrecondition, o.simulations)
	}
	if o.depth < 0 {
		return nil, fmt.Errorf("%w: depth must be non-negative, got %d", ErrPrecondition, o.depth)
	}
	if math.IsNaN(o.exploration) || o.exploration < 0 {
		return nil, fmt.Errorf("%w: exploration must be non-negative, got %v", ErrPrecondition, o.exploration)
	}
	if o.goroutines <= 0 {
		return nil, fmt.Errorf("%w: goroutines must be positive, got %d", ErrPrecondition, o.goroutines)
	}
	gamma := m.Discount()
	if !(gamma > 0 && gamma <= 1) {
		return nil, fmt.Errorf("%w: discount must be in (0, 1], got %v", ErrPrecondition, gamma)
	}
	store, err := NewStore[A, O](m.Actions())
	if err != nil {
		return nil, err
	}

	if !o.seeded {
		o.seed = frand.Uint64n(math.MaxUint64)
	}
	id := uuid.NewString()
	logger := log.Logger
	if o.logger != nil {
		logger = *o.logger
	}

	return &POMCP[S, A, O]{
		id:          id,
		model:       m,
		value:       value,
		actions:     store.Actions(),
		gamma:       gamma,
		store:       store,
		simulations: o.simulations,
		depth:       o.depth,
		exploration: o.exploration,
		goroutines:  o.goroutines,
		rng:         rand.New(rand.NewSource(o.seed)),
		metrics:     o.metrics,
		logger:      logger.With().Str("planner", id).Logger(),
	}, nil
}

func (p *POMCP[S, A, O]) ID() string {
	return p.id
}

func (p *POMCP[S, A, O]) Depth() int {
	return p.depth
}

func (p *POMCP[S, A, O]) Exploration() float64 {
	return p.exploration
}

// Store exposes the history statistics accumulated so far.
func (p *POMCP[S, A, O]) Store() *Store[A, O] {
	return p.store
}

// Solve runs the simulation budget from h and returns the greedy action there.
func (p *POMCP[S, A, O]) Solve(ctx context.Context, b Belief[S], h History[A, O]) (A, error) {
	decision, err := p.Search(ctx, b, h)
	return decision.Action, err
}

func (p *POMCP[S, A, O]) Search(ctx context.Context, b Belief[S], h History[A, O]) (Decision[A], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var decision Decision[A]
	if b == nil {
		return decision, fmt.Errorf("%w: nil belief", ErrPrecondition)
	}
	if err := b.Validate(); err != nil {
		return decision, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}

	root := p.store.locate(h)
	p.metrics.Start(p.goroutines, p.simulations, p.depth)
	p.metrics.SetTreeReused(root.expanded())

	// Run simulations to collect statistics
	var err error
	if p.goroutines == 1 {
		err = p.run(ctx, b, root)
	} else {
		err = p.iterate(ctx, b, root)
	}
	metric := p.metrics.Complete()
	if err != nil {
		return decision, err
	}

	stats, ok := root.snapshot()
	if !ok {
		return decision, fmt.Errorf("%w: %v (requires simulations >= 1 and a non-terminal root simulation with depth > 0)",
			ErrUnexpandedHistory, h)
	}

	decision = Decision[A]{
		Action:  p.actions[greedy(stats)],
		Actions: p.store.Actions(),
		Stats:   stats,
		Metric:  metric,
	}
	p.logger.Debug().
		Stringer("history", h).
		Interface("action", decision.Action).
		Int("simulations", metric.Episodes).
		Int("expansions", metric.Expansions).
		Int("max_depth", metric.MaxDepth).
		Int("tree_size", p.store.Size()).
		Dur("duration", metric.Duration).
		Msg("search completed")
	return decision, nil
}

// run executes the budget sequentially on the planner's own generator.
func (p *POMCP[S, A, O]) run(ctx context.Context, b Belief[S], root *node[A, O]) error {
	w := &worker{rng: p.rng}
	for i := 0; i < p.simulations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.episode(w, b, root); err != nil {
			return err
		}
	}
	return nil
}

// iterate spreads the budget over goroutines pulling from a task channel.
// The first model error cancels the remaining workers.
func (p *POMCP[S, A, O]) iterate(ctx context.Context, b Belief[S], root *node[A, O]) error {
	task := make(chan any, p.simulations)
	for i := 0; i < p.simulations; i++ {
		task <- nil
	}
	close(task)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.goroutines; i++ {
		w := &worker{rng: rand.New(rand.NewSource(p.rng.Uint64()))}
		g.Go(func() error {
			for range task {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := p.episode(w, b, root); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (p *POMCP[S, A, O]) episode(w *worker, b Belief[S], root *node[A, O]) error {
	state := b.Sample(w.rng)
	if _, err := p.simulate(w, state, root, p.depth, 0); err != nil {
		return err
	}
	p.metrics.AddEpisode()
	return nil
}

// Policy returns the visit distribution over actions at h.
func (p *POMCP[S, A, O]) Policy(h History[A, O]) (map[A]float64, error) {
	stats, ok := p.store.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnexpandedHistory, h)
	}
	total := 0
	for _, s := range stats {
		total += s.Visits
	}
	policy := make(map[A]float64, len(stats))
	for i, s := range stats {
		if total > 0 {
			policy[p.actions[i]] = float64(s.Visits) / float64(total)
		} else {
			policy[p.actions[i]] = 0
		}
	}
	return policy, nil
}
