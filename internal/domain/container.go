package domain

import "errors"

// Dimension names defined by the Argo file format.
const (
	DimProf    = "N_PROF"
	DimParam   = "N_PARAM"
	DimLevels  = "N_LEVELS"
	DimCalib   = "N_CALIB"
	DimHistory = "N_HISTORY"
)

var (
	// ErrVariableNotFound is returned by a Container when the named variable is absent.
	ErrVariableNotFound = errors.New("variable not found")

	// ErrMissingMeasurement marks a declared parameter whose measurement array is absent.
	ErrMissingMeasurement = errors.New("missing measurement array")

	// ErrMalformedFile marks a file whose structure cannot be converted
	// (missing dimensions, no profiles, short arrays).
	ErrMalformedFile = errors.New("malformed profile file")

	// ErrDuplicateRecord is returned by sinks when a record with the same _id exists.
	ErrDuplicateRecord = errors.New("duplicate record id")
)

// Container is read access to one opened profile file.
//
// Array variables are returned flattened in row-major order, so the first
// profile's values are always the leading elements.
type Container interface {
	// Dimension returns the length of a named dimension.
	Dimension(name string) (int, bool)
	// Chars returns the raw bytes of a character variable.
	Chars(name string) ([]byte, error)
	// Floats returns a numeric variable converted to float64.
	Floats(name string) ([]float64, error)
	// Ints returns an integer variable converted to int64.
	Ints(name string) ([]int64, error)
	// Attribute returns a text attribute attached to a variable.
	Attribute(variable, key string) (string, bool)
	Close() error
}
