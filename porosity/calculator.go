package porosity

import (
	"fmt"

	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/cuserror"
	"github.com/sgostarter/libwelllog/welllog"
)

type DensityParams struct {
	MatrixDensity float64
	FluidDensity  float64
}

type Calculator interface {
	Density(rhob []float64, params DensityParams) []float64
	Neutron(nphi []float64) []float64
	Effective(densityPhi, neutronPhi []float64) ([]float64, error)

	Calculate(req *welllog.CalculationRequest) (*welllog.CalculationResult, error)
	ValidateParameters(params map[string]float64) welllog.ValidationResult
}

func NewCalculator(cfg welllog.PorosityConfig, logger l.Wrapper) Calculator {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	logger = logger.WithFields(l.StringField(l.ClsKey, "porosityCalculatorImpl"))

	if cfg.MatrixDensity <= 0 {
		cfg.MatrixDensity = 2.65
	}

	if cfg.FluidDensity <= 0 {
		cfg.FluidDensity = 1.0
	}

	return &calculatorImpl{
		logger: logger,
		cfg:    cfg,
	}
}

type calculatorImpl struct {
	logger l.Wrapper
	cfg    welllog.PorosityConfig
}

// Density applies phi = (rhoMatrix - rhob) / (rhoMatrix - rhoFluid) per
// sample. Bulk density at or above the matrix density means zero or negative
// porosity and is flagged, never clamped.
func (impl *calculatorImpl) Density(rhob []float64, params DensityParams) []float64 {
	if params.MatrixDensity <= 0 {
		params.MatrixDensity = impl.cfg.MatrixDensity
	}

	if params.FluidDensity <= 0 {
		params.FluidDensity = impl.cfg.FluidDensity
	}

	ds := make([]float64, len(rhob))

	for idx, v := range rhob {
		if !welllog.IsUsable(v) {
			ds[idx] = welllog.NullValue

			continue
		}

		phi := (params.MatrixDensity - v) / (params.MatrixDensity - params.FluidDensity)

		if phi <= 0 || phi > 1 {
			ds[idx] = welllog.NullValue

			continue
		}

		ds[idx] = phi
	}

	return ds
}

// Neutron converts a percent neutron reading to fractional porosity. The
// boundary readings 0 and 100 are valid.
func (impl *calculatorImpl) Neutron(nphi []float64) []float64 {
	ds := make([]float64, len(nphi))

	for idx, v := range nphi {
		if !welllog.IsUsable(v) || v < 0 || v > 100 {
			ds[idx] = welllog.NullValue

			continue
		}

		ds[idx] = v / 100
	}

	return ds
}

func (impl *calculatorImpl) Effective(densityPhi, neutronPhi []float64) ([]float64, error) {
	if err := welllog.CheckSameLength(densityPhi, neutronPhi); err != nil {
		return nil, err
	}

	ds := make([]float64, len(densityPhi))

	for idx := range densityPhi {
		if !welllog.IsUsable(densityPhi[idx]) || !welllog.IsUsable(neutronPhi[idx]) {
			ds[idx] = welllog.NullValue

			continue
		}

		ds[idx] = welllog.FlagOutside((densityPhi[idx]+neutronPhi[idx])/2, 0, 1)
	}

	return ds, nil
}

func (impl *calculatorImpl) Calculate(req *welllog.CalculationRequest) (result *welllog.CalculationResult, err error) {
	var (
		values      []float64
		methodology string
		base        float64
	)

	switch req.Method {
	case welllog.MethodDensity:
		rhob, e := req.Samples(welllog.RoleBulkDensity)
		if e != nil {
			return nil, e
		}

		params := DensityParams{
			MatrixDensity: req.Parameter("matrixDensity", impl.cfg.MatrixDensity),
			FluidDensity:  req.Parameter("fluidDensity", impl.cfg.FluidDensity),
		}

		values = impl.Density(rhob, params)
		methodology = fmt.Sprintf("density porosity: phi = (%.2f - RHOB) / (%.2f - %.2f)",
			params.MatrixDensity, params.MatrixDensity, params.FluidDensity)
		base = 0.02
	case welllog.MethodNeutron:
		nphi, e := req.Samples(welllog.RoleNeutron)
		if e != nil {
			return nil, e
		}

		values = impl.Neutron(nphi)
		methodology = "neutron porosity: phi = NPHI / 100"
		base = 0.03
	case welllog.MethodEffective:
		rhob, e := req.Samples(welllog.RoleBulkDensity)
		if e != nil {
			return nil, e
		}

		nphi, e := req.Samples(welllog.RoleNeutron)
		if e != nil {
			return nil, e
		}

		params := DensityParams{
			MatrixDensity: req.Parameter("matrixDensity", impl.cfg.MatrixDensity),
			FluidDensity:  req.Parameter("fluidDensity", impl.cfg.FluidDensity),
		}

		values, e = impl.Effective(impl.Density(rhob, params), impl.Neutron(nphi))
		if e != nil {
			return nil, e
		}

		methodology = "effective porosity: phi = (phiD + phiN) / 2"
		base = 0.025
	default:
		return nil, cuserror.NewWithErrorMsg(fmt.Sprintf("unsupported method: %s", req.Method))
	}

	depths, values, err := welllog.ResolveDepths(req, values)
	if err != nil {
		return
	}

	result = &welllog.CalculationResult{
		Values:      values,
		Depths:      depths,
		Uncertainty: porosityUncertainty(values, base),
		Statistics:  welllog.Summarize(values),
		Methodology: methodology,
	}

	result.Quality = welllog.QualityFromStats(result.Statistics)

	return
}

func (impl *calculatorImpl) ValidateParameters(params map[string]float64) welllog.ValidationResult {
	vr := welllog.NewValidationResult()

	if v, ok := params["matrixDensity"]; ok {
		if v <= 0 || v > 5 {
			vr.AddError("matrixDensity must be in (0, 5] g/cc")
		} else if v < 2.0 {
			vr.AddWarning("matrixDensity below typical mineral range")
		}
	}

	if v, ok := params["fluidDensity"]; ok {
		if v <= 0 || v > 2 {
			vr.AddError("fluidDensity must be in (0, 2] g/cc")
		} else if v > 1.2 {
			vr.AddWarning("fluidDensity above typical formation fluids")
		}
	}

	for _, w := range vr.Warnings {
		impl.logger.WithFields(l.StringField("warning", w)).Warn("atypical parameter")
	}

	return vr
}

func porosityUncertainty(values []float64, base float64) []float64 {
	ds := make([]float64, len(values))

	for idx, v := range values {
		if !welllog.IsUsable(v) {
			ds[idx] = welllog.NullValue

			continue
		}

		ds[idx] = base + v*0.02
	}

	return ds
}
