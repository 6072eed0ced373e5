package welllog

import (
	"math"
	"sort"
)

type SummaryStatistics struct {
	Mean       float64
	Median     float64
	StdDev     float64
	Min        float64
	Max        float64
	P10        float64
	P50        float64
	P90        float64
	TotalCount int
	ValidCount int
}

// Summarize computes the statistical summary over the usable samples of ds.
// Null-sentinel and non-finite samples count toward TotalCount only.
func Summarize(ds []float64) (stats SummaryStatistics) {
	stats.TotalCount = len(ds)

	valid := make([]float64, 0, len(ds))

	for _, v := range ds {
		if IsUsable(v) {
			valid = append(valid, v)
		}
	}

	stats.ValidCount = len(valid)

	if len(valid) == 0 {
		return
	}

	sort.Float64s(valid)

	stats.Min = valid[0]
	stats.Max = valid[len(valid)-1]

	var sum float64

	for _, v := range valid {
		sum += v
	}

	stats.Mean = sum / float64(len(valid))
	stats.Median = medianSorted(valid)
	stats.P10 = percentileSorted(valid, 10)
	stats.P50 = percentileSorted(valid, 50)
	stats.P90 = percentileSorted(valid, 90)

	if len(valid) > 1 {
		var sq float64

		for _, v := range valid {
			d := v - stats.Mean
			sq += d * d
		}

		stats.StdDev = math.Sqrt(sq / float64(len(valid)-1))
	}

	return
}

// QualityFromStats derives the quality record shipped with every
// calculation result.
func QualityFromStats(stats SummaryStatistics) (q QualityMetrics) {
	q.TotalCount = stats.TotalCount
	q.ValidCount = stats.ValidCount

	if q.TotalCount > 0 {
		q.Completeness = float64(q.ValidCount) / float64(q.TotalCount)
	}

	return
}

func medianSorted(sorted []float64) float64 {
	n := len(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}

	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentileSorted uses linear interpolation between closest ranks.
func percentileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))

	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)

	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
