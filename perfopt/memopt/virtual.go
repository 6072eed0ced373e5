package memopt

import (
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libwelllog/welllog"
	"github.com/spf13/cast"
)

// chunkedAccessor serves indexed reads over a long curve by materializing
// fixed-size chunks on first touch. Idle chunks age out of the chunk cache,
// so peak memory stays bounded by the working set instead of the full curve.
type chunkedAccessor struct {
	source    []float64
	chunkSize int
	chunks    *cache.Cache
}

func newChunkedAccessor(source []float64, chunkSize int) *chunkedAccessor {
	return &chunkedAccessor{
		source:    source,
		chunkSize: chunkSize,
		chunks:    cache.New(time.Minute, time.Minute*2),
	}
}

func (a *chunkedAccessor) Len() int {
	return len(a.source)
}

func (a *chunkedAccessor) At(idx int) float64 {
	chunkIdx := idx / a.chunkSize
	key := cast.ToString(chunkIdx)

	if d, ok := a.chunks.Get(key); ok {
		// nolint:forcetypeassert
		return d.([]float64)[idx%a.chunkSize]
	}

	begin := chunkIdx * a.chunkSize

	end := begin + a.chunkSize
	if end > len(a.source) {
		end = len(a.source)
	}

	chunk := make([]float64, end-begin)
	copy(chunk, a.source[begin:end])

	a.chunks.SetDefault(key, chunk)

	return chunk[idx%a.chunkSize]
}

// Optimizer shapes well data for memory: long curves get chunk-virtualized
// accessors and the whole record can be parked in the backing store for
// later retrieval by id.
type Optimizer struct {
	*Store[*welllog.WellLogData]

	logger l.Wrapper
	cfg    Config
}

func NewOptimizer(cfg Config, logger l.Wrapper) *Optimizer {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	cfg.fillDefaults()

	return &Optimizer{
		Store:  NewStore[*welllog.WellLogData](cfg, logger),
		logger: logger.WithFields(l.StringField(l.ClsKey, "memoryOptimizerImpl")),
		cfg:    cfg,
	}
}

// OptimizeWellData returns a transformed copy of wd; the input is never
// modified. Curves above the virtualize threshold are replaced with chunked
// accessors and report Virtualized().
func (o *Optimizer) OptimizeWellData(wd *welllog.WellLogData) *welllog.WellLogData {
	if wd == nil {
		return nil
	}

	out := &welllog.WellLogData{
		WellName:    wd.WellName,
		Curves:      make([]*welllog.LogCurve, 0, len(wd.Curves)),
		DepthRange:  wd.DepthRange,
		DataQuality: wd.DataQuality,
	}

	for _, c := range wd.Curves {
		if c.Virtualized() || c.SampleCount() <= o.cfg.VirtualizeThreshold {
			out.Curves = append(out.Curves, c)

			continue
		}

		vc := &welllog.LogCurve{
			Name:      c.Name,
			Unit:      c.Unit,
			NullValue: c.NullValue,
			Quality:   c.Quality,
		}

		vc.SetAccessor(newChunkedAccessor(c.Data, o.cfg.ChunkSize))

		out.Curves = append(out.Curves, vc)

		o.logger.WithFields(l.StringField("curve", c.Name),
			l.IntField("samples", c.SampleCount())).Debug("curve virtualized")
	}

	return out
}
