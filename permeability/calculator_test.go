package permeability

import (
	"testing"

	"github.com/sgostarter/libwelllog/welllog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator() Calculator {
	return NewCalculator(welllog.DefaultEngineConfig().Permeability, nil)
}

func TestKozenyCarman(t *testing.T) {
	c := newTestCalculator()

	ds := c.KozenyCarman([]float64{0.2}, KozenyCarmanParams{GrainSize: 100})

	// (0.008 / 0.64) * (10000 / 180)
	assert.InDelta(t, 0.694444, ds[0], 1e-4)
}

func TestKozenyCarmanGrainSizeScaling(t *testing.T) {
	c := newTestCalculator()

	k1 := c.KozenyCarman([]float64{0.25}, KozenyCarmanParams{GrainSize: 100})
	k4 := c.KozenyCarman([]float64{0.25}, KozenyCarmanParams{GrainSize: 400})

	assert.InDelta(t, 16, k4[0]/k1[0], 1e-6)
}

func TestKozenyCarmanBoundaries(t *testing.T) {
	c := newTestCalculator()

	ds := c.KozenyCarman([]float64{0, 1, welllog.NullValue, -0.1}, KozenyCarmanParams{})

	for idx := range ds {
		assert.Equal(t, welllog.NullValue, ds[idx])
	}
}

func TestTimurWithCurve(t *testing.T) {
	c := newTestCalculator()

	ds, err := c.Timur([]float64{0.2, 0.2, 0.2}, []float64{0.3, 0, welllog.NullValue}, TimurParams{})
	require.Nil(t, err)

	// 0.136 * 0.2^4.4 / 0.09
	assert.InDelta(t, 0.00127, ds[0], 1e-5)
	// Swi = 0 would divide by zero: flagged, not raised
	assert.Equal(t, welllog.NullValue, ds[1])
	assert.Equal(t, welllog.NullValue, ds[2])
}

func TestTimurScalarSwi(t *testing.T) {
	c := newTestCalculator()

	withCurve, err := c.Timur([]float64{0.2}, []float64{0.3}, TimurParams{})
	require.Nil(t, err)

	withScalar, err := c.Timur([]float64{0.2}, nil, TimurParams{Swi: 0.3})
	require.Nil(t, err)

	assert.Equal(t, withCurve[0], withScalar[0])
}

func TestTimurLengthMismatch(t *testing.T) {
	c := newTestCalculator()

	_, err := c.Timur([]float64{0.2, 0.3}, []float64{0.3}, TimurParams{})
	assert.ErrorIs(t, err, welllog.ErrLengthMismatch)
}

func TestCoatesDumanoir(t *testing.T) {
	c := newTestCalculator()

	ds, err := c.CoatesDumanoir([]float64{0.2}, []float64{0.3}, CoatesDumanoirParams{})
	require.Nil(t, err)

	// 10000 * 0.2^4 / 0.3^2
	assert.InDelta(t, 177.7778, ds[0], 1e-3)
}

func TestCalculateKozenyCarman(t *testing.T) {
	c := newTestCalculator()

	result, err := c.Calculate(&welllog.CalculationRequest{
		Method:     welllog.MethodKozenyCarman,
		Parameters: map[string]float64{"grainSize": 100},
		InputCurves: map[welllog.CurveRole]*welllog.LogCurve{
			welllog.RolePorosity: welllog.NewLogCurve("PHI", "v/v", []float64{0.1, 0.2, 0.3, welllog.NullValue}),
		},
	})
	require.Nil(t, err)

	assert.EqualValues(t, 4, result.Statistics.TotalCount)
	assert.EqualValues(t, 3, result.Statistics.ValidCount)
	// log-normal spread: max/min is large and that is fine
	assert.Greater(t, result.Statistics.Max/result.Statistics.Min, 10.0)
	assert.NotEmpty(t, result.Methodology)
}

func TestCalculateTimurMissingPorosity(t *testing.T) {
	c := newTestCalculator()

	_, err := c.Calculate(&welllog.CalculationRequest{
		Method:      welllog.MethodTimur,
		InputCurves: map[welllog.CurveRole]*welllog.LogCurve{},
	})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "curve required: PHI")
}

func TestCalculateCoatesDumanoirMissingSwi(t *testing.T) {
	c := newTestCalculator()

	_, err := c.Calculate(&welllog.CalculationRequest{
		Method: welllog.MethodCoatesDumanoir,
		InputCurves: map[welllog.CurveRole]*welllog.LogCurve{
			welllog.RolePorosity: welllog.NewLogCurve("PHI", "v/v", []float64{0.2}),
		},
	})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "curve required: SWI")
}

func TestCalculateUnsupportedMethod(t *testing.T) {
	c := newTestCalculator()

	_, err := c.Calculate(&welllog.CalculationRequest{
		Method: "wyllie",
		InputCurves: map[welllog.CurveRole]*welllog.LogCurve{
			welllog.RolePorosity: welllog.NewLogCurve("PHI", "v/v", []float64{0.2}),
		},
	})
	assert.NotNil(t, err)
}

func TestValidateParameters(t *testing.T) {
	c := newTestCalculator()

	vr := c.ValidateParameters(map[string]float64{"grainSize": 100, "swi": 0.3})
	assert.True(t, vr.IsValid)

	vr = c.ValidateParameters(map[string]float64{"grainSize": 20000})
	assert.False(t, vr.IsValid)

	vr = c.ValidateParameters(map[string]float64{"swi": 0})
	assert.False(t, vr.IsValid)

	vr = c.ValidateParameters(map[string]float64{"grainSize": 5, "swi": 0.9, "x": 7})
	assert.True(t, vr.IsValid)
	assert.Len(t, vr.Warnings, 3)
}
