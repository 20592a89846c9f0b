package measure

import (
	"math"

	"github.com/fitseek/fitseek/internal/types"
)

// Matches decides whether an extracted measurement satisfies the request's
// targets within their independent tolerances.
//
// A field that is nil on either side (no target requested, or nothing
// extracted) is excluded from the decision. A field present on both sides
// must be within tolerance, boundary inclusive. At least one comparable field
// must pass: a listing with nothing to compare against is never a match.
func Matches(m types.Measurement, req *types.SearchRequest) bool {
	comparable := false

	if req.TargetP2P != nil && m.P2P != nil {
		if math.Abs(*m.P2P-*req.TargetP2P) > req.P2PTolerance {
			return false
		}
		comparable = true
	}

	if req.TargetLength != nil && m.Length != nil {
		if math.Abs(*m.Length-*req.TargetLength) > req.LengthTolerance {
			return false
		}
		comparable = true
	}

	return comparable
}
