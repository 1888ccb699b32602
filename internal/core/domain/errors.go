package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDesignData is returned when an operation needs a loaded table.
	ErrNoDesignData = errors.New("no design data loaded")

	// ErrUnknownViewMode is returned for view modes other than ViewPlan and ViewOrbit.
	ErrUnknownViewMode = errors.New("unknown view mode")

	// ErrUnknownPage is returned for pages other than PageHome and PageOverview.
	ErrUnknownPage = errors.New("page must be home or overview")
)

// UnsupportedFormatError reports a file whose extension maps to no extractor.
type UnsupportedFormatError struct {
	FileName string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported design format %q: please upload .xml, .dxf, or .lok", e.FileName)
}

// MalformedError reports a design file that failed to parse structurally.
type MalformedError struct {
	Format Format
	Err    error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s document: %v", e.Format, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// IsUnsupportedFormat reports whether err is or wraps an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}

// IsMalformed reports whether err is or wraps a MalformedError.
func IsMalformed(err error) bool {
	var target *MalformedError
	return errors.As(err, &target)
}
