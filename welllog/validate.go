package welllog

import (
	"math"

	"github.com/sgostarter/libeasygo/cuserror"
)

// ErrLengthMismatch is the hard failure for parallel arrays of different
// sizes. Calculations never silently truncate.
var ErrLengthMismatch = cuserror.NewWithErrorMsg("arrays must have the same length")

func usable(v, nullValue float64) bool {
	return v != nullValue && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsNull reports whether a sample is the null sentinel.
func IsNull(v float64) bool {
	return v == NullValue
}

// IsUsable reports whether a sample is a real measurement: finite and not
// the null sentinel.
func IsUsable(v float64) bool {
	return usable(v, NullValue)
}

// FlagOutside gates a computed sample against the valid output range of a
// correlation: values outside [min, max] become the null sentinel. Stricter
// exclusive bounds are handled by the callers that need them.
func FlagOutside(v, min, max float64) float64 {
	if !IsUsable(v) || v < min || v > max {
		return NullValue
	}

	return v
}

// CheckSameLength returns ErrLengthMismatch unless every slice has the same
// length.
func CheckSameLength(ds ...[]float64) error {
	if len(ds) == 0 {
		return nil
	}

	n := len(ds[0])

	for _, d := range ds[1:] {
		if len(d) != n {
			return ErrLengthMismatch
		}
	}

	return nil
}
