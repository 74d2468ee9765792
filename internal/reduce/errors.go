package reduce

import "github.com/pkg/errors"

// MaxRank is the highest tensor rank the engine dispatches.
const MaxRank = 6

// Errors returned by the engine. Callers match them with errors.Is.
var (
	ErrUnsupportedRank  = errors.New("unsupported tensor rank")
	ErrInvalidAxis      = errors.New("invalid reduction axis")
	ErrShapeMismatch    = errors.New("tensor shape mismatch")
	ErrDTypeMismatch    = errors.New("tensor dtype mismatch")
	ErrUnsupportedDType = errors.New("unsupported dtype")
	ErrUnsupportedPlace = errors.New("tensor not addressable by compute context")
)
