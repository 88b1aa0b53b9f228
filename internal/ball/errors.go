package ball

import "errors"

var (
	// ErrInvalidConfig is returned when a configuration value cannot work.
	ErrInvalidConfig = errors.New("invalid ball perceptor configuration")

	// ErrNilTable is returned when no pattern table is supplied.
	ErrNilTable = errors.New("pattern table is nil")

	// ErrTableMismatch is returned when the pattern table was built for other sample points.
	ErrTableMismatch = errors.New("pattern table does not match the configured sample points")
)
