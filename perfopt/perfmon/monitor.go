package perfmon

import (
	"strconv"
	"sync"
	"time"

	"github.com/godruoyi/go-snowflake"
	"github.com/sgostarter/i/l"
)

const maxDurationsPerOperation = 100

type Metrics struct {
	CacheHitRate       float64
	AvgCalculationTime time.Duration
	MemoryUsage        int64
	ActiveConnections  int
	QueueLength        int
}

type Report struct {
	Metrics         Metrics
	Averages        map[string]time.Duration
	Recommendations []string
}

// Monitor records wall-clock durations per operation id, keeping the most
// recent 100 samples for a rolling average, and turns threshold crossings
// into advisory recommendations. It never acts on them.
type Monitor struct {
	logger l.Wrapper

	lock      sync.Mutex
	started   map[string]time.Time
	durations map[string][]time.Duration
	metrics   Metrics
}

func NewMonitor(logger l.Wrapper) *Monitor {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	return &Monitor{
		logger:    logger.WithFields(l.StringField(l.ClsKey, "performanceMonitorImpl")),
		started:   make(map[string]time.Time),
		durations: make(map[string][]time.Duration),
	}
}

// StartOperation hands out a unique operation id for callers that have none
// of their own.
func StartOperation() string {
	return strconv.FormatUint(snowflake.ID(), 36)
}

func (m *Monitor) StartTimer(id string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.started[id] = time.Now()
}

func (m *Monitor) EndTimer(id string) (d time.Duration, ok bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	begin, exists := m.started[id]
	if !exists {
		return
	}

	delete(m.started, id)

	d = time.Since(begin)
	ok = true

	ds := append(m.durations[id], d)
	if len(ds) > maxDurationsPerOperation {
		ds = ds[len(ds)-maxDurationsPerOperation:]
	}

	m.durations[id] = ds

	return
}

// RollingAverage averages the retained durations of one operation id.
func (m *Monitor) RollingAverage(id string) time.Duration {
	m.lock.Lock()
	defer m.lock.Unlock()

	return averageOf(m.durations[id])
}

func (m *Monitor) UpdateMetrics(metrics Metrics) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.metrics = metrics
}

func (m *Monitor) GetMetrics() Metrics {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.metrics
}

func (m *Monitor) GetReport() Report {
	m.lock.Lock()
	defer m.lock.Unlock()

	report := Report{
		Metrics:  m.metrics,
		Averages: make(map[string]time.Duration, len(m.durations)),
	}

	var all []time.Duration

	for id, ds := range m.durations {
		report.Averages[id] = averageOf(ds)
		all = append(all, ds...)
	}

	avgCalc := m.metrics.AvgCalculationTime
	if avgCalc == 0 {
		avgCalc = averageOf(all)
	}

	if m.metrics.CacheHitRate < 0.7 {
		report.Recommendations = append(report.Recommendations,
			"cache hit rate below 70%: increase cache size or TTL")
	}

	if avgCalc > time.Second {
		report.Recommendations = append(report.Recommendations,
			"average calculation time above 1s: optimize or parallelize calculations")
	}

	if m.metrics.MemoryUsage > 500*1024*1024 {
		report.Recommendations = append(report.Recommendations,
			"memory usage above 500MB: enable compression or curve virtualization")
	}

	if m.metrics.QueueLength > 10 {
		report.Recommendations = append(report.Recommendations,
			"load queue above 10: increase concurrency limits")
	}

	return report
}

func averageOf(ds []time.Duration) time.Duration {
	if len(ds) == 0 {
		return 0
	}

	var sum time.Duration

	for _, d := range ds {
		sum += d
	}

	return sum / time.Duration(len(ds))
}
