package perfopt

import (
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libwelllog/perfopt/chunkload"
	"github.com/sgostarter/libwelllog/perfopt/memopt"
	"github.com/sgostarter/libwelllog/perfopt/perfmon"
	"github.com/sgostarter/libwelllog/perfopt/rescache"
	"github.com/sgostarter/libwelllog/welllog"
	"github.com/spf13/cast"
)

type Report struct {
	Monitor perfmon.Report
	Cache   rescache.Stats
	Loader  chunkload.Status
	Memory  memopt.Usage
}

// Optimizer is the single entry point callers compose around the
// calculators: result caching, bounded chunk loading, memory shaping and
// timing. Construct one per owner; there is no shared package-level
// instance.
type Optimizer struct {
	logger l.Wrapper

	cache   *rescache.Cache[string, *welllog.CalculationResult]
	loader  *chunkload.Coordinator[*welllog.WellLogData]
	memory  *memopt.Optimizer
	monitor *perfmon.Monitor
}

func NewOptimizer(cfg welllog.OptimizerConfig, logger l.Wrapper) *Optimizer {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	return &Optimizer{
		logger: logger.WithFields(l.StringField(l.ClsKey, "optimizerImpl")),
		cache: rescache.NewCache[string, *welllog.CalculationResult](rescache.Config{
			MaxSize:  cfg.MaxCacheSize,
			TTL:      cfg.CacheTTL,
			Compress: cfg.CompressCache,
		}, logger),
		loader: chunkload.NewCoordinator[*welllog.WellLogData](chunkload.Config{
			MaxConcurrentLoads: cfg.MaxConcurrentLoads,
			ReloadLoaded:       cfg.ReloadLoadedChunks,
		}, logger),
		memory: memopt.NewOptimizer(memopt.Config{
			CompressThresholdBytes: cfg.CompressThresholdBytes,
			VirtualizeThreshold:    cfg.VirtualizeThreshold,
			ChunkSize:              cfg.ChunkSize,
			MaxMemoryUsage:         cfg.MaxMemoryUsage,
			GCThreshold:            cfg.GCThreshold,
			SampleInterval:         cfg.SampleInterval,
		}, logger),
		monitor: perfmon.NewMonitor(logger),
	}
}

func (o *Optimizer) CacheCalculationResult(key string, result *welllog.CalculationResult) {
	o.cache.Set(key, result)
}

func (o *Optimizer) GetCachedCalculationResult(key string) (*welllog.CalculationResult, bool) {
	return o.cache.Get(key)
}

// LoadWellDataChunk delegates to the chunk coordinator under a composite
// well+index key. The loader function comes from the ingestion collaborator.
func (o *Optimizer) LoadWellDataChunk(wellName string, chunkIndex int,
	loader func() (*welllog.WellLogData, error)) (*welllog.WellLogData, error) {
	return o.loader.LoadChunk(wellName+":"+cast.ToString(chunkIndex), loader)
}

func (o *Optimizer) IsChunkLoaded(wellName string, chunkIndex int) bool {
	return o.loader.IsLoaded(wellName + ":" + cast.ToString(chunkIndex))
}

// OptimizeWellData virtualizes oversized curves and registers the shaped
// record under its well name for later retrieval.
func (o *Optimizer) OptimizeWellData(wd *welllog.WellLogData) *welllog.WellLogData {
	optimized := o.memory.OptimizeWellData(wd)

	if optimized != nil {
		if err := o.memory.RegisterData(optimized.WellName, optimized); err != nil {
			o.logger.WithFields(l.ErrorField(err), l.StringField("well", optimized.WellName)).
				Error("register well data failed")
		}
	}

	return optimized
}

func (o *Optimizer) GetWellData(wellName string) (*welllog.WellLogData, error) {
	return o.memory.GetData(wellName)
}

func (o *Optimizer) StartCalculation(id string) {
	o.monitor.StartTimer(id)
}

func (o *Optimizer) EndCalculation(id string) {
	o.monitor.EndTimer(id)
}

// GetPerformanceReport aggregates the four subsystems and refreshes the
// monitor's metrics record from their live stats.
func (o *Optimizer) GetPerformanceReport() Report {
	cacheStats := o.cache.GetStats()
	loaderStatus := o.loader.GetStatus()
	usage := o.memory.GetUsage()

	metrics := o.monitor.GetMetrics()
	metrics.CacheHitRate = o.cache.HitRate()
	metrics.MemoryUsage = usage.Total()
	metrics.ActiveConnections = loaderStatus.Active
	metrics.QueueLength = loaderStatus.Queued

	o.monitor.UpdateMetrics(metrics)

	return Report{
		Monitor: o.monitor.GetReport(),
		Cache:   cacheStats,
		Loader:  loaderStatus,
		Memory:  usage,
	}
}

// Cleanup clears cache and loader state. The memory sampler keeps running;
// stop it with Stop when the optimizer's lifetime ends.
func (o *Optimizer) Cleanup() {
	o.cache.Clear()
	o.loader.Reset()
}

// Stop ends the memory sampler routine and waits for it.
func (o *Optimizer) Stop() {
	o.memory.TriggerStop()
	o.memory.Wait()
}
