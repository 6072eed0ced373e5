package permeability

import (
	"fmt"
	"math"

	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/cuserror"
	"github.com/sgostarter/libwelllog/welllog"
)

type KozenyCarmanParams struct {
	GrainSize float64 // microns
}

type TimurParams struct {
	Swi float64 // scalar fallback when no saturation curve is supplied
}

type CoatesDumanoirParams struct {
	C float64
	X float64
	Y float64
}

type Calculator interface {
	KozenyCarman(phi []float64, params KozenyCarmanParams) []float64
	Timur(phi, swi []float64, params TimurParams) ([]float64, error)
	CoatesDumanoir(phi, swi []float64, params CoatesDumanoirParams) ([]float64, error)

	Calculate(req *welllog.CalculationRequest) (*welllog.CalculationResult, error)
	ValidateParameters(params map[string]float64) welllog.ValidationResult
}

func NewCalculator(cfg welllog.PermeabilityConfig, logger l.Wrapper) Calculator {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	logger = logger.WithFields(l.StringField(l.ClsKey, "permeabilityCalculatorImpl"))

	if cfg.GrainSize <= 0 {
		cfg.GrainSize = 100
	}

	if cfg.C <= 0 {
		cfg.C = 10000
	}

	if cfg.X <= 0 {
		cfg.X = 4.0
	}

	if cfg.Y <= 0 {
		cfg.Y = 2.0
	}

	return &calculatorImpl{
		logger: logger,
		cfg:    cfg,
	}
}

type calculatorImpl struct {
	logger l.Wrapper
	cfg    welllog.PermeabilityConfig
}

// KozenyCarman applies k = (phi^3 / (1-phi)^2) * (grainSize^2 / 180).
// Porosity exactly at 0 or 1 hits a singularity or a trivial result and is
// flagged rather than computed.
func (impl *calculatorImpl) KozenyCarman(phi []float64, params KozenyCarmanParams) []float64 {
	if params.GrainSize <= 0 {
		params.GrainSize = impl.cfg.GrainSize
	}

	g2 := params.GrainSize * params.GrainSize

	ds := make([]float64, len(phi))

	for idx, p := range phi {
		if !validPorosity(p) {
			ds[idx] = welllog.NullValue

			continue
		}

		ds[idx] = (p * p * p / ((1 - p) * (1 - p))) * (g2 / 180)
	}

	return ds
}

// Timur applies k = 0.136 * phi^4.4 / Swi^2. The saturation may come from a
// parallel curve or a single scalar; each sample flags independently.
func (impl *calculatorImpl) Timur(phi, swi []float64, params TimurParams) ([]float64, error) {
	swiAt, err := saturationSource(phi, swi, params.Swi)
	if err != nil {
		return nil, err
	}

	ds := make([]float64, len(phi))

	for idx, p := range phi {
		s := swiAt(idx)

		if !validPorosity(p) || !validSaturation(s) {
			ds[idx] = welllog.NullValue

			continue
		}

		ds[idx] = 0.136 * math.Pow(p, 4.4) / (s * s)
	}

	return ds, nil
}

// CoatesDumanoir applies k = C * phi^X / Swi^Y.
func (impl *calculatorImpl) CoatesDumanoir(phi, swi []float64, params CoatesDumanoirParams) ([]float64, error) {
	if params.C <= 0 {
		params.C = impl.cfg.C
	}

	if params.X <= 0 {
		params.X = impl.cfg.X
	}

	if params.Y <= 0 {
		params.Y = impl.cfg.Y
	}

	if err := welllog.CheckSameLength(phi, swi); err != nil {
		return nil, err
	}

	ds := make([]float64, len(phi))

	for idx, p := range phi {
		s := swi[idx]

		if !validPorosity(p) || !validSaturation(s) {
			ds[idx] = welllog.NullValue

			continue
		}

		ds[idx] = params.C * math.Pow(p, params.X) / math.Pow(s, params.Y)
	}

	return ds, nil
}

func (impl *calculatorImpl) Calculate(req *welllog.CalculationRequest) (result *welllog.CalculationResult, err error) {
	phi, err := req.Samples(welllog.RolePorosity)
	if err != nil {
		return
	}

	var (
		values      []float64
		methodology string
	)

	switch req.Method {
	case welllog.MethodKozenyCarman:
		params := KozenyCarmanParams{
			GrainSize: req.Parameter("grainSize", impl.cfg.GrainSize),
		}

		values = impl.KozenyCarman(phi, params)
		methodology = fmt.Sprintf("kozeny-carman: k = (phi^3 / (1-phi)^2) * (%.1f^2 / 180)", params.GrainSize)
	case welllog.MethodTimur:
		swi := requestSaturation(req)

		params := TimurParams{
			Swi: req.Parameter("swi", 0),
		}

		values, err = impl.Timur(phi, swi, params)
		if err != nil {
			return nil, err
		}

		methodology = "timur: k = 0.136 * phi^4.4 / Swi^2"
	case welllog.MethodCoatesDumanoir:
		swi := requestSaturation(req)
		if swi == nil {
			return nil, cuserror.NewWithErrorMsg(fmt.Sprintf("curve required: %s", welllog.RoleWaterSaturation))
		}

		params := CoatesDumanoirParams{
			C: req.Parameter("c", impl.cfg.C),
			X: req.Parameter("x", impl.cfg.X),
			Y: req.Parameter("y", impl.cfg.Y),
		}

		values, err = impl.CoatesDumanoir(phi, swi, params)
		if err != nil {
			return nil, err
		}

		methodology = fmt.Sprintf("coates-dumanoir: k = %.0f * phi^%.1f / Swi^%.1f", params.C, params.X, params.Y)
	default:
		return nil, cuserror.NewWithErrorMsg(fmt.Sprintf("unsupported method: %s", req.Method))
	}

	depths, values, err := welllog.ResolveDepths(req, values)
	if err != nil {
		return
	}

	// Permeability is log-normally distributed: a wide min/max spread in
	// the summary is expected, not a data problem.
	result = &welllog.CalculationResult{
		Values:      values,
		Depths:      depths,
		Uncertainty: permeabilityUncertainty(values),
		Statistics:  welllog.Summarize(values),
		Methodology: methodology,
	}

	result.Quality = welllog.QualityFromStats(result.Statistics)

	return
}

func (impl *calculatorImpl) ValidateParameters(params map[string]float64) welllog.ValidationResult {
	vr := welllog.NewValidationResult()

	if v, ok := params["grainSize"]; ok {
		if v <= 0 || v > 10000 {
			vr.AddError("grainSize must be in (0, 10000] microns")
		} else if v < 10 {
			vr.AddWarning("grainSize below typical sand range")
		}
	}

	if v, ok := params["swi"]; ok {
		if v <= 0 || v > 1 {
			vr.AddError("swi must be in (0, 1]")
		} else if v > 0.8 {
			vr.AddWarning("swi above typical irreducible saturation")
		}
	}

	if v, ok := params["x"]; ok && v > 6 {
		vr.AddWarning("porosity exponent above common coates-dumanoir range")
	}

	if v, ok := params["y"]; ok && v > 4 {
		vr.AddWarning("saturation exponent above common coates-dumanoir range")
	}

	for _, w := range vr.Warnings {
		impl.logger.WithFields(l.StringField("warning", w)).Warn("atypical parameter")
	}

	return vr
}

// validPorosity excludes the 0 and 1 boundaries: both hit degenerate terms
// in the correlations.
func validPorosity(p float64) bool {
	return welllog.IsUsable(p) && p > 0 && p < 1
}

// validSaturation treats Swi = 0 as flagged rather than letting a division
// blow up.
func validSaturation(s float64) bool {
	return welllog.IsUsable(s) && s > 0 && s <= 1
}

func saturationSource(phi, swi []float64, scalar float64) (func(idx int) float64, error) {
	if swi == nil {
		return func(int) float64 {
			return scalar
		}, nil
	}

	if err := welllog.CheckSameLength(phi, swi); err != nil {
		return nil, err
	}

	return func(idx int) float64 {
		return swi[idx]
	}, nil
}

func requestSaturation(req *welllog.CalculationRequest) []float64 {
	c, ok := req.InputCurves[welllog.RoleWaterSaturation]
	if !ok || c == nil {
		return nil
	}

	return c.Samples()
}

func permeabilityUncertainty(values []float64) []float64 {
	ds := make([]float64, len(values))

	for idx, v := range values {
		if !welllog.IsUsable(v) {
			ds[idx] = welllog.NullValue

			continue
		}

		// Empirical correlations carry order-of-magnitude spread; half a
		// decade per sample is the conventional band.
		ds[idx] = v * 0.5
	}

	return ds
}
