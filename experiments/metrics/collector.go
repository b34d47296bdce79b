package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines  int
	Simulations int // Budget
	Depth       int
	Duration    time.Duration
	Episodes    int // Simulations actually run
	Expansions  int
	MaxDepth    int
	TreeReused  bool
}

type StepMetric struct {
	Step   int
	Action string
	Reward float64
	SearchMetric
}

type EpisodeMetric struct {
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
	Steps            int
	Return           float64
	DiscountedReturn float64
}

type Collector interface {
	Start(goroutines, simulations, depth int)
	SetTreeReused(value bool)
	AddEpisode()
	AddExpansion()
	ObserveDepth(depth int)
	Complete() SearchMetric
}

type collector struct {
	goroutines  int
	simulations int
	depth       int
	startTime   time.Time
	episodes    atomic.Int32
	expansions  atomic.Int32
	maxDepth    atomic.Int32
	treeReused  atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(goroutines, simulations, depth int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.simulations = simulations
	m.depth = depth
	m.episodes.Store(0)
	m.expansions.Store(0)
	m.maxDepth.Store(0)
	m.treeReused.Store(false)
}

func (m *collector) SetTreeReused(value bool) {
	m.treeReused.Store(value)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddExpansion() {
	m.expansions.Add(1)
}

func (m *collector) ObserveDepth(depth int) {
	d := int32(depth)
	for {
		current := m.maxDepth.Load()
		if d <= current || m.maxDepth.CompareAndSwap(current, d) {
			return
		}
	}
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:  m.goroutines,
		Simulations: m.simulations,
		Depth:       m.depth,
		Duration:    time.Since(m.startTime),
		Episodes:    int(m.episodes.Load()),
		Expansions:  int(m.expansions.Load()),
		MaxDepth:    int(m.maxDepth.Load()),
		TreeReused:  m.treeReused.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines, simulations, depth int) {}
func (m *dummyCollector) SetTreeReused(value bool)                {}
func (m *dummyCollector) AddEpisode()                             {}
func (m *dummyCollector) AddExpansion()                           {}
func (m *dummyCollector) ObserveDepth(depth int)                  {}
func (m *dummyCollector) Complete() SearchMetric                  { return SearchMetric{} }
