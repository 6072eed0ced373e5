package welllog

import (
	"encoding/json"
	"fmt"

	"github.com/sgostarter/libeasygo/cuserror"
)

// NullValue is the industry standard missing-sample marker. Every curve and
// every derived array uses it; consumers must never treat it as a real
// measurement.
const NullValue = -999.25

type CurveRole string

const (
	RoleDepth           CurveRole = "DEPT"
	RoleBulkDensity     CurveRole = "RHOB"
	RoleNeutron         CurveRole = "NPHI"
	RolePorosity        CurveRole = "PHI"
	RoleWaterSaturation CurveRole = "SWI"
	RoleShaleVolume     CurveRole = "VSH"
)

type Method string

const (
	MethodDensity        Method = "density"
	MethodNeutron        Method = "neutron"
	MethodEffective      Method = "effective"
	MethodKozenyCarman   Method = "kozeny-carman"
	MethodTimur          Method = "timur"
	MethodCoatesDumanoir Method = "coates-dumanoir"
)

type QualityMetrics struct {
	TotalCount   int     `yaml:"totalCount" json:"totalCount"`
	ValidCount   int     `yaml:"validCount" json:"validCount"`
	Completeness float64 `yaml:"completeness" json:"completeness"`
	Confidence   string  `yaml:"confidence,omitempty" json:"confidence,omitempty"`
}

// CurveAccessor is an indexed read facade over curve samples. Large curves
// may be backed by a lazily materializing implementation instead of a plain
// slice.
type CurveAccessor interface {
	At(idx int) float64
	Len() int
}

type LogCurve struct {
	Name      string         `yaml:"name" json:"name"`
	Unit      string         `yaml:"unit" json:"unit"`
	Data      []float64      `yaml:"data" json:"data"`
	NullValue float64        `yaml:"nullValue" json:"nullValue"`
	Quality   QualityMetrics `yaml:"quality" json:"quality"`

	accessor CurveAccessor
}

func NewLogCurve(name, unit string, data []float64) *LogCurve {
	c := &LogCurve{
		Name:      name,
		Unit:      unit,
		Data:      data,
		NullValue: NullValue,
	}

	c.Quality = curveQuality(data, c.NullValue)

	return c
}

func curveQuality(data []float64, nullValue float64) (q QualityMetrics) {
	q.TotalCount = len(data)

	for _, v := range data {
		if usable(v, nullValue) {
			q.ValidCount++
		}
	}

	if q.TotalCount > 0 {
		q.Completeness = float64(q.ValidCount) / float64(q.TotalCount)
	}

	return
}

// SetAccessor replaces direct slice access with an indexed facade. The
// original Data slice is dropped so only the accessor keeps samples alive.
func (c *LogCurve) SetAccessor(accessor CurveAccessor) {
	c.accessor = accessor
	c.Data = nil
}

func (c *LogCurve) Virtualized() bool {
	return c.accessor != nil
}

func (c *LogCurve) SampleCount() int {
	if c.accessor != nil {
		return c.accessor.Len()
	}

	return len(c.Data)
}

func (c *LogCurve) SampleAt(idx int) float64 {
	if c.accessor != nil {
		return c.accessor.At(idx)
	}

	return c.Data[idx]
}

// Samples materializes the full sample slice. For virtualized curves this
// walks the accessor chunk by chunk.
func (c *LogCurve) Samples() []float64 {
	if c.accessor == nil {
		return c.Data
	}

	ds := make([]float64, c.accessor.Len())
	for idx := range ds {
		ds[idx] = c.accessor.At(idx)
	}

	return ds
}

// MarshalJSON materializes virtualized curves so a serialize/deserialize
// round trip always reproduces the full sample data.
func (c *LogCurve) MarshalJSON() ([]byte, error) {
	type plain LogCurve

	cp := *c
	cp.Data = c.Samples()
	cp.accessor = nil

	return json.Marshal((*plain)(&cp))
}

type DepthRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (r DepthRange) Contains(depth float64) bool {
	return depth >= r.Min && depth <= r.Max
}

type WellLogData struct {
	WellName    string         `yaml:"wellName" json:"wellName"`
	Curves      []*LogCurve    `yaml:"curves" json:"curves"`
	DepthRange  DepthRange     `yaml:"depthRange" json:"depthRange"`
	DataQuality QualityMetrics `yaml:"dataQuality" json:"dataQuality"`
}

func (wd *WellLogData) Curve(name string) (*LogCurve, bool) {
	for _, c := range wd.Curves {
		if c.Name == name {
			return c, true
		}
	}

	return nil, false
}

type CalculationRequest struct {
	WellName    string
	Method      Method
	Parameters  map[string]float64
	DepthRange  *DepthRange
	InputCurves map[CurveRole]*LogCurve
}

// Samples returns the sample slice of a required input curve; a missing
// role is a hard failure naming the curve.
func (req *CalculationRequest) Samples(role CurveRole) ([]float64, error) {
	c, ok := req.InputCurves[role]
	if !ok || c == nil {
		return nil, cuserror.NewWithErrorMsg(fmt.Sprintf("curve required: %s", role))
	}

	return c.Samples(), nil
}

func (req *CalculationRequest) Parameter(name string, def float64) float64 {
	if v, ok := req.Parameters[name]; ok {
		return v
	}

	return def
}

// CalculationResult is immutable once returned; callers may cache it under
// any key they derive from the request.
type CalculationResult struct {
	Values      []float64
	Depths      []float64
	Uncertainty []float64
	Statistics  SummaryStatistics
	Methodology string
	Quality     QualityMetrics
}

type ValidationResult struct {
	IsValid     bool
	Errors      []string
	Warnings    []string
	Corrections []string
}

func (vr *ValidationResult) AddError(msg string) {
	vr.IsValid = false
	vr.Errors = append(vr.Errors, msg)
}

func (vr *ValidationResult) AddWarning(msg string) {
	vr.Warnings = append(vr.Warnings, msg)
}

func (vr *ValidationResult) AddCorrection(msg string) {
	vr.Corrections = append(vr.Corrections, msg)
}

func NewValidationResult() ValidationResult {
	return ValidationResult{
		IsValid: true,
	}
}
