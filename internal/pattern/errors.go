package pattern

import "errors"

var (
	// ErrNoPoints is returned when the sample configuration selects no sample points.
	ErrNoPoints = errors.New("no sample points selected")

	// ErrTooManyPoints is returned when more sample points are selected than a Pattern has bits.
	ErrTooManyPoints = errors.New("more sample points than pattern bits")

	// ErrInvalidSweep is returned when the rotation range or step cannot produce a sweep.
	ErrInvalidSweep = errors.New("invalid rotation sweep")

	// ErrKeyMismatch is returned when a cached table was built with different parameters.
	ErrKeyMismatch = errors.New("cached pattern table was built with different parameters")

	// ErrEmptyCache is returned when a cache file holds no patterns.
	ErrEmptyCache = errors.New("cached pattern table is empty")

	// ErrUnsupportedVersion is returned for cache files written by an incompatible format version.
	ErrUnsupportedVersion = errors.New("unsupported pattern cache version")
)
