package resquality

import (
	"fmt"

	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/cuserror"
	"github.com/sgostarter/libwelllog/welllog"
)

var (
	ErrTooFewDepthPoints = cuserror.NewWithErrorMsg("at least 2 depth points required")
	ErrNoIntervals       = cuserror.NewWithErrorMsg("no completion intervals supplied")
	ErrNegativeLength    = cuserror.NewWithErrorMsg("interval lengths must not be negative")
)

type Calculator interface {
	NetToGross(depths, shaleVolume, porosity []float64, cutoffs Cutoffs) (*NetToGrossResult, error)
	CompletionEfficiency(intervals []CompletionInterval) (*CompletionEfficiencyResult, error)
	WeightedMeanPorosity(depths, porosity, weights []float64) (float64, error)

	ValidateInputs(depths, shaleVolume, porosity []float64, cutoffs Cutoffs) welllog.ValidationResult
}

func NewCalculator(logger l.Wrapper) Calculator {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	return &calculatorImpl{
		logger: logger.WithFields(l.StringField(l.ClsKey, "reservoirQualityImpl")),
	}
}

type calculatorImpl struct {
	logger l.Wrapper
}

// NetToGross scans consecutive depth pairs and classifies each segment by
// its pairwise-average shale volume and porosity against the cutoffs.
// Contiguous reservoir segments merge into one interval; segments with
// non-finite values or zero thickness are excluded from both totals.
func (impl *calculatorImpl) NetToGross(depths, shaleVolume, porosity []float64, cutoffs Cutoffs) (*NetToGrossResult, error) {
	if err := welllog.CheckSameLength(depths, shaleVolume, porosity); err != nil {
		return nil, err
	}

	if len(depths) < 2 {
		return nil, ErrTooFewDepthPoints
	}

	if cutoffs.VshMax <= 0 && cutoffs.PorosityMin <= 0 {
		cutoffs = DefaultCutoffs()
	}

	result := &NetToGrossResult{}

	var (
		current      *ReservoirInterval
		weightedPhi  float64
		validSamples int
	)

	closeCurrent := func() {
		if current == nil {
			return
		}

		current.Thickness = current.BottomDepth - current.TopDepth

		if current.Thickness > 0 {
			current.AveragePorosity = current.AveragePorosity / current.Thickness
		}

		result.Intervals = append(result.Intervals, *current)
		current = nil
	}

	for idx := 0; idx < len(depths)-1; idx++ {
		top, bottom := depths[idx], depths[idx+1]
		thickness := bottom - top

		vshPair := [2]float64{shaleVolume[idx], shaleVolume[idx+1]}
		phiPair := [2]float64{porosity[idx], porosity[idx+1]}

		if !segmentUsable(top, bottom, vshPair, phiPair) || thickness == 0 {
			closeCurrent()

			continue
		}

		validSamples++

		avgVsh := (vshPair[0] + vshPair[1]) / 2
		avgPhi := (phiPair[0] + phiPair[1]) / 2

		result.TotalThickness += thickness

		if avgVsh > cutoffs.VshMax || avgPhi < cutoffs.PorosityMin {
			closeCurrent()

			continue
		}

		result.CleanSandThickness += thickness
		weightedPhi += avgPhi * thickness

		if current == nil {
			current = &ReservoirInterval{
				Name:       fmt.Sprintf("RES_%d", len(result.Intervals)+1),
				TopDepth:   top,
				NetToGross: 1.0,
			}
		}

		current.BottomDepth = bottom
		current.AveragePorosity += avgPhi * thickness // normalized on close
	}

	closeCurrent()

	if result.TotalThickness > 0 {
		result.Ratio = result.CleanSandThickness / result.TotalThickness
	}

	if result.CleanSandThickness > 0 {
		result.WeightedMeanPorosity = weightedPhi / result.CleanSandThickness
	}

	intervalPhi := make([]float64, 0, len(result.Intervals))
	for _, interval := range result.Intervals {
		intervalPhi = append(intervalPhi, interval.AveragePorosity)
	}

	result.IntervalStatistics = welllog.Summarize(intervalPhi)

	result.Quality = welllog.QualityMetrics{
		TotalCount: len(depths) - 1,
		ValidCount: validSamples,
	}

	if result.Quality.TotalCount > 0 {
		result.Quality.Completeness = float64(validSamples) / float64(result.Quality.TotalCount)
	}

	if result.Quality.Completeness >= 0.8 {
		result.Quality.Confidence = "high"
	} else {
		result.Quality.Confidence = "medium"
	}

	return result, nil
}

// CompletionEfficiency relates perforated length to net pay per interval and
// across all of them. Perforations longer than the net pay are legal but
// suspicious, so they only warn.
func (impl *calculatorImpl) CompletionEfficiency(intervals []CompletionInterval) (*CompletionEfficiencyResult, error) {
	if len(intervals) == 0 {
		return nil, ErrNoIntervals
	}

	result := &CompletionEfficiencyResult{
		Intervals: make([]CompletionInterval, 0, len(intervals)),
	}

	for _, interval := range intervals {
		if interval.PerforatedLength < 0 || interval.NetPayLength < 0 {
			return nil, ErrNegativeLength
		}

		if interval.NetPayLength > 0 {
			interval.CompletionEfficiency = interval.PerforatedLength / interval.NetPayLength
		} else {
			interval.CompletionEfficiency = 0
		}

		if interval.PerforatedLength > interval.NetPayLength {
			impl.logger.WithFields(l.StringField("interval", interval.Name)).
				Warn("perforated length exceeds net pay length")
		}

		result.TotalPerforated += interval.PerforatedLength
		result.TotalNetPay += interval.NetPayLength
		result.Intervals = append(result.Intervals, interval)
	}

	if result.TotalNetPay > 0 {
		result.OverallEfficiency = result.TotalPerforated / result.TotalNetPay
	}

	return result, nil
}

// WeightedMeanPorosity averages porosity with explicit weights, or with
// thickness weights derived as half the distance to each neighboring depth.
// Non-positive and non-finite porosity samples are excluded.
func (impl *calculatorImpl) WeightedMeanPorosity(depths, porosity, weights []float64) (float64, error) {
	if err := welllog.CheckSameLength(depths, porosity); err != nil {
		return 0, err
	}

	if weights == nil {
		weights = thicknessWeights(depths)
	} else if err := welllog.CheckSameLength(porosity, weights); err != nil {
		return 0, err
	}

	var sum, wSum float64

	for idx, phi := range porosity {
		if !welllog.IsUsable(phi) || phi <= 0 {
			continue
		}

		sum += phi * weights[idx]
		wSum += weights[idx]
	}

	if wSum == 0 {
		return 0, nil
	}

	return sum / wSum, nil
}

func (impl *calculatorImpl) ValidateInputs(depths, shaleVolume, porosity []float64, cutoffs Cutoffs) welllog.ValidationResult {
	vr := welllog.NewValidationResult()

	if welllog.CheckSameLength(depths, shaleVolume, porosity) != nil {
		vr.AddError("arrays must have the same length")
	}

	if len(depths) < 2 {
		vr.AddError("at least 2 depth points required")
	}

	if cutoffs.VshMax < 0 || cutoffs.VshMax > 1 {
		vr.AddError("vshMax cutoff must be in [0, 1]")
	}

	if cutoffs.PorosityMin < 0 || cutoffs.PorosityMin > 0.5 {
		vr.AddError("porosityMin cutoff must be in [0, 0.5]")
	}

	if cutoffs.SaturationMax < 0 || cutoffs.SaturationMax > 1 {
		vr.AddError("saturationMax cutoff must be in [0, 1]")
	}

	if !vr.IsValid {
		return vr
	}

	for idx := 1; idx < len(depths); idx++ {
		if depths[idx] < depths[idx-1] {
			vr.AddWarning("depths are not monotonically increasing")

			break
		}
	}

	valid := 0

	for idx := range depths {
		if welllog.IsUsable(shaleVolume[idx]) && welllog.IsUsable(porosity[idx]) {
			valid++
		}

		if welllog.IsUsable(shaleVolume[idx]) && (shaleVolume[idx] < 0 || shaleVolume[idx] > 1) {
			vr.AddWarning(fmt.Sprintf("shale volume outside [0, 1] at index %d", idx))
		}

		if welllog.IsUsable(porosity[idx]) && (porosity[idx] < 0 || porosity[idx] > 0.5) {
			vr.AddWarning(fmt.Sprintf("porosity outside typical [0, 0.5] at index %d", idx))
		}
	}

	if len(depths) > 0 && float64(valid)/float64(len(depths)) < 0.5 {
		vr.AddWarning("less than 50% of samples usable")
	}

	for _, w := range vr.Warnings {
		impl.logger.WithFields(l.StringField("warning", w)).Warn("input quality")
	}

	return vr
}

func segmentUsable(top, bottom float64, vsh, phi [2]float64) bool {
	for _, v := range []float64{top, bottom, vsh[0], vsh[1], phi[0], phi[1]} {
		if !welllog.IsUsable(v) {
			return false
		}
	}

	return true
}

func thicknessWeights(depths []float64) []float64 {
	ws := make([]float64, len(depths))

	if len(depths) < 2 {
		for idx := range ws {
			ws[idx] = 1
		}

		return ws
	}

	for idx := range depths {
		switch idx {
		case 0:
			ws[idx] = (depths[1] - depths[0]) / 2
		case len(depths) - 1:
			ws[idx] = (depths[idx] - depths[idx-1]) / 2
		default:
			ws[idx] = (depths[idx+1] - depths[idx-1]) / 2
		}
	}

	return ws
}
