package adapters

import (
	"errors"

	"mmutils/pkg/sampledata"
)

// Sentinel errors for package adapters.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// File and directory errors
	ErrFileNotFound     = errors.New("not a valid filename")
	ErrInvalidDirectory = errors.New("not a valid directory")
	ErrAlreadyExists    = errors.New("output file already exists")

	// Collection errors
	ErrNotSingleton = errors.New("not a singleton list")

	// Array errors
	ErrMalformedArray = errors.New("malformed numeric array")

	// ErrResourceUnavailable is shared with the sample data provider so a
	// single errors.Is check covers both a missing provider and a failed lookup.
	ErrResourceUnavailable = sampledata.ErrResourceUnavailable
)
