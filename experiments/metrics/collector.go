package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	SearchID      string
	Duration      time.Duration
	Iterations    int
	FMCalls       int
	FullPlayouts  int
	EmptyRollouts int
	TreeSize      int
	MaxDepth      int
	RaveEntries   int
	StopReason    string
}

type MoveMetric struct {
	Step   int
	Seat   int
	Action string
	SearchMetric
}

type GameMetric struct {
	ID           string
	Seats        int
	StartingSeat int
	Winners      []int
	Scores       []int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	TotalMoves   int
	Truncated    bool // Stopped by the turn limit before the game ended
}

// Collector gathers the statistics of a single search. A search calls Start
// once, the Add* methods while iterating and Complete when the budget is spent.
type Collector interface {
	Start(searchID string)
	AddIteration()
	AddFMCall()
	AddFullPlayout()
	AddEmptyRollout()
	AddNode(depth int)
	Complete(raveEntries int, stopReason string) SearchMetric
}

type collector struct {
	searchID      string
	startTime     time.Time
	iterations    atomic.Int32
	fmCalls       atomic.Int32
	fullPlayouts  atomic.Int32
	emptyRollouts atomic.Int32
	nodes         atomic.Int32
	maxDepth      atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(searchID string) {
	m.searchID = searchID
	m.startTime = time.Now()
	m.iterations.Store(0)
	m.fmCalls.Store(0)
	m.fullPlayouts.Store(0)
	m.emptyRollouts.Store(0)
	m.nodes.Store(0)
	m.maxDepth.Store(0)
}

func (m *collector) AddIteration() {
	m.iterations.Add(1)
}

func (m *collector) AddFMCall() {
	m.fmCalls.Add(1)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddEmptyRollout() {
	m.emptyRollouts.Add(1)
}

func (m *collector) AddNode(depth int) {
	m.nodes.Add(1)
	for {
		current := m.maxDepth.Load()
		if int32(depth) <= current || m.maxDepth.CompareAndSwap(current, int32(depth)) {
			return
		}
	}
}

func (m *collector) Complete(raveEntries int, stopReason string) SearchMetric {
	return SearchMetric{
		SearchID:      m.searchID,
		Duration:      time.Since(m.startTime),
		Iterations:    int(m.iterations.Load()),
		FMCalls:       int(m.fmCalls.Load()),
		FullPlayouts:  int(m.fullPlayouts.Load()),
		EmptyRollouts: int(m.emptyRollouts.Load()),
		TreeSize:      int(m.nodes.Load()),
		MaxDepth:      int(m.maxDepth.Load()),
		RaveEntries:   raveEntries,
		StopReason:    stopReason,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(searchID string) {}
func (m *dummyCollector) AddIteration()         {}
func (m *dummyCollector) AddFMCall()            {}
func (m *dummyCollector) AddFullPlayout()       {}
func (m *dummyCollector) AddEmptyRollout()      {}
func (m *dummyCollector) AddNode(depth int)     {}
func (m *dummyCollector) Complete(raveEntries int, stopReason string) SearchMetric {
	return SearchMetric{StopReason: stopReason}
}
