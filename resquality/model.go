package resquality

import "github.com/sgostarter/libwelllog/welllog"

type Cutoffs struct {
	VshMax        float64
	PorosityMin   float64
	SaturationMax float64
}

func DefaultCutoffs() Cutoffs {
	return Cutoffs{
		VshMax:        0.5,
		PorosityMin:   0.08,
		SaturationMax: 0.6,
	}
}

type ReservoirInterval struct {
	Name            string
	TopDepth        float64
	BottomDepth     float64
	Thickness       float64
	AveragePorosity float64
	NetToGross      float64
}

type CompletionInterval struct {
	Name                 string
	TopDepth             float64
	BottomDepth          float64
	PerforatedLength     float64
	NetPayLength         float64
	CompletionEfficiency float64
}

type NetToGrossResult struct {
	Ratio                float64
	TotalThickness       float64
	CleanSandThickness   float64
	WeightedMeanPorosity float64
	Intervals            []ReservoirInterval
	IntervalStatistics   welllog.SummaryStatistics
	Quality              welllog.QualityMetrics
}

type CompletionEfficiencyResult struct {
	Intervals         []CompletionInterval
	TotalPerforated   float64
	TotalNetPay       float64
	OverallEfficiency float64
}
