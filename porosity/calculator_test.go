package porosity

import (
	"testing"

	"github.com/sgostarter/libwelllog/welllog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator() Calculator {
	return NewCalculator(welllog.DefaultEngineConfig().Porosity, nil)
}

func TestDensityPorosity(t *testing.T) {
	c := newTestCalculator()

	ds := c.Density([]float64{2.65 - 0.33, 2.65 - 0.165}, DensityParams{})

	assert.InDelta(t, 0.2, ds[0], 1e-9)
	assert.InDelta(t, 0.1, ds[1], 1e-9)
}

func TestDensityPorosityMonotonic(t *testing.T) {
	c := newTestCalculator()

	rhob := []float64{1.8, 2.0, 2.2, 2.4, 2.6}
	ds := c.Density(rhob, DensityParams{})

	for idx := 1; idx < len(ds); idx++ {
		assert.Less(t, ds[idx], ds[idx-1])
	}
}

func TestDensityPorosityFlagged(t *testing.T) {
	c := newTestCalculator()

	ds := c.Density([]float64{2.65, 2.9, welllog.NullValue, 0.5}, DensityParams{})

	// at or above matrix density means zero/negative porosity
	assert.Equal(t, welllog.NullValue, ds[0])
	assert.Equal(t, welllog.NullValue, ds[1])
	assert.Equal(t, welllog.NullValue, ds[2])
	// below fluid density means porosity above 1
	assert.Equal(t, welllog.NullValue, ds[3])
}

func TestNeutronPorosityBoundaries(t *testing.T) {
	c := newTestCalculator()

	ds := c.Neutron([]float64{0, 100, -5, 150, 25, welllog.NullValue})

	assert.InDelta(t, 0.0, ds[0], 1e-9)
	assert.InDelta(t, 1.0, ds[1], 1e-9)
	assert.Equal(t, welllog.NullValue, ds[2])
	assert.Equal(t, welllog.NullValue, ds[3])
	assert.InDelta(t, 0.25, ds[4], 1e-9)
	assert.Equal(t, welllog.NullValue, ds[5])
}

func TestEffectivePorosity(t *testing.T) {
	c := newTestCalculator()

	ds, err := c.Effective([]float64{0.20, 0.15}, []float64{0.18, 0.17})
	require.Nil(t, err)

	assert.InDelta(t, 0.19, ds[0], 1e-9)
	assert.InDelta(t, 0.16, ds[1], 1e-9)
}

func TestEffectivePorosityNullPropagation(t *testing.T) {
	c := newTestCalculator()

	ds, err := c.Effective([]float64{welllog.NullValue, 0.2}, []float64{0.2, welllog.NullValue})
	require.Nil(t, err)

	assert.Equal(t, welllog.NullValue, ds[0])
	assert.Equal(t, welllog.NullValue, ds[1])
}

func TestEffectivePorosityLengthMismatch(t *testing.T) {
	c := newTestCalculator()

	_, err := c.Effective([]float64{0.2}, []float64{0.2, 0.3})
	assert.ErrorIs(t, err, welllog.ErrLengthMismatch)
}

func TestCalculateDensity(t *testing.T) {
	c := newTestCalculator()

	result, err := c.Calculate(&welllog.CalculationRequest{
		WellName: "W-1",
		Method:   welllog.MethodDensity,
		InputCurves: map[welllog.CurveRole]*welllog.LogCurve{
			welllog.RoleBulkDensity: welllog.NewLogCurve("RHOB", "g/cc", []float64{2.32, 2.485, welllog.NullValue}),
		},
	})
	require.Nil(t, err)

	assert.Len(t, result.Values, 3)
	assert.InDelta(t, 0.2, result.Values[0], 1e-9)
	assert.Equal(t, welllog.NullValue, result.Values[2])
	assert.Len(t, result.Depths, 3)
	assert.Len(t, result.Uncertainty, 3)
	assert.EqualValues(t, 3, result.Statistics.TotalCount)
	assert.EqualValues(t, 2, result.Statistics.ValidCount)
	assert.NotEmpty(t, result.Methodology)
}

func TestCalculateDepthFilter(t *testing.T) {
	c := newTestCalculator()

	result, err := c.Calculate(&welllog.CalculationRequest{
		Method:     welllog.MethodNeutron,
		DepthRange: &welllog.DepthRange{Min: 1010, Max: 1020},
		InputCurves: map[welllog.CurveRole]*welllog.LogCurve{
			welllog.RoleDepth:   welllog.NewLogCurve("DEPT", "m", []float64{1000, 1010, 1020, 1030}),
			welllog.RoleNeutron: welllog.NewLogCurve("NPHI", "%", []float64{10, 20, 30, 40}),
		},
	})
	require.Nil(t, err)

	assert.Equal(t, []float64{1010, 1020}, result.Depths)
	assert.InDelta(t, 0.2, result.Values[0], 1e-9)
	assert.InDelta(t, 0.3, result.Values[1], 1e-9)
}

func TestCalculateMissingCurve(t *testing.T) {
	c := newTestCalculator()

	_, err := c.Calculate(&welllog.CalculationRequest{
		Method:      welllog.MethodDensity,
		InputCurves: map[welllog.CurveRole]*welllog.LogCurve{},
	})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "curve required: RHOB")
}

func TestCalculateUnsupportedMethod(t *testing.T) {
	c := newTestCalculator()

	_, err := c.Calculate(&welllog.CalculationRequest{
		Method: "sonic",
		InputCurves: map[welllog.CurveRole]*welllog.LogCurve{
			welllog.RoleBulkDensity: welllog.NewLogCurve("RHOB", "g/cc", []float64{2.3}),
		},
	})
	assert.NotNil(t, err)
}

func TestCalculateIdempotent(t *testing.T) {
	c := newTestCalculator()

	req := &welllog.CalculationRequest{
		Method: welllog.MethodEffective,
		InputCurves: map[welllog.CurveRole]*welllog.LogCurve{
			welllog.RoleBulkDensity: welllog.NewLogCurve("RHOB", "g/cc", []float64{2.32, 2.4, 2.5}),
			welllog.RoleNeutron:     welllog.NewLogCurve("NPHI", "%", []float64{18, 15, 12}),
		},
	}

	r1, err := c.Calculate(req)
	require.Nil(t, err)

	r2, err := c.Calculate(req)
	require.Nil(t, err)

	assert.Equal(t, r1.Values, r2.Values)
	assert.Equal(t, r1.Statistics, r2.Statistics)
	assert.Equal(t, r1.Methodology, r2.Methodology)
}

func TestValidateParameters(t *testing.T) {
	c := newTestCalculator()

	vr := c.ValidateParameters(map[string]float64{"matrixDensity": 2.65, "fluidDensity": 1.0})
	assert.True(t, vr.IsValid)
	assert.Empty(t, vr.Warnings)

	vr = c.ValidateParameters(map[string]float64{"matrixDensity": 6})
	assert.False(t, vr.IsValid)

	vr = c.ValidateParameters(map[string]float64{"fluidDensity": -1})
	assert.False(t, vr.IsValid)

	vr = c.ValidateParameters(map[string]float64{"matrixDensity": 1.8})
	assert.True(t, vr.IsValid)
	assert.NotEmpty(t, vr.Warnings)
}
