package data

import "github.com/ardnew/stamp/pkg"

// ErrDecode is returned when a data file cannot be decoded.
var ErrDecode = pkg.MakeErrorf("failed to decode data")

// ErrUnsupportedFormat is returned for a format name with no decoder.
var ErrUnsupportedFormat = pkg.MakeErrorf("unsupported data format")

// ErrInvalidDelay is returned when a $delay value is not a duration.
var ErrInvalidDelay = pkg.MakeErrorf("invalid delay")

// ErrInvalidAssignment is returned when an override is not of the form
// key=expression.
var ErrInvalidAssignment = pkg.MakeErrorf("invalid assignment")

// ErrExprCompile is returned when an override expression does not compile.
var ErrExprCompile = pkg.MakeErrorf("failed to compile expression")

// ErrExprEvaluate is returned when an override expression fails at run time.
var ErrExprEvaluate = pkg.MakeErrorf("failed to evaluate expression")

// ErrRejected is the cause of a future built from a $reject marker.
var ErrRejected = pkg.MakeErrorf("rejected by data source")

// ErrInvalidMarker is returned when a deferred marker mapping holds a value
// of the wrong type.
var ErrInvalidMarker = pkg.MakeErrorf("invalid deferred marker")
