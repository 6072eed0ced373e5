package welllog

import (
	"fmt"

	"github.com/sgostarter/libeasygo/cuserror"
)

// FilterByDepth keeps the samples whose depth falls inside r (inclusive on
// both ends) and applies the same selection to every parallel array. A nil
// range keeps everything.
func FilterByDepth(depths []float64, r *DepthRange, arrays ...[]float64) ([]float64, [][]float64, error) {
	ds := make([][]float64, len(arrays))

	if err := CheckSameLength(append([][]float64{depths}, arrays...)...); err != nil {
		return nil, nil, err
	}

	if r == nil {
		copy(ds, arrays)

		return depths, ds, nil
	}

	outDepths := make([]float64, 0, len(depths))

	for idx := range ds {
		ds[idx] = make([]float64, 0, len(depths))
	}

	for idx, depth := range depths {
		if !r.Contains(depth) {
			continue
		}

		outDepths = append(outDepths, depth)

		for n, arr := range arrays {
			ds[n] = append(ds[n], arr[idx])
		}
	}

	return outDepths, ds, nil
}

// ResolveDepths pairs computed values with their depths, honoring the
// request's inclusive depth range. Without a depth curve the sample index
// stands in for depth; a depth range without a depth curve is a hard error.
func ResolveDepths(req *CalculationRequest, values []float64) (depths, outValues []float64, err error) {
	depthCurve, ok := req.InputCurves[RoleDepth]

	if !ok || depthCurve == nil {
		if req.DepthRange != nil {
			err = cuserror.NewWithErrorMsg(fmt.Sprintf("curve required: %s", RoleDepth))

			return
		}

		return SequentialDepths(len(values)), values, nil
	}

	depths, filtered, err := FilterByDepth(depthCurve.Samples(), req.DepthRange, values)
	if err != nil {
		return
	}

	outValues = filtered[0]

	return
}

// SequentialDepths substitutes sample indices when a request carries no
// depth curve.
func SequentialDepths(n int) []float64 {
	ds := make([]float64, n)

	for idx := range ds {
		ds[idx] = float64(idx)
	}

	return ds
}
