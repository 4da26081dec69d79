package deviceicon

import (
	"errors"
	"fmt"
)

// Errors.
var (
	// ErrMalformedSpecifier is returned if an icon-path specifier is neither
	// an .ico path nor a "container,index" pair.
	ErrMalformedSpecifier = errors.New("malformed icon specifier")

	// ErrExtractionFailed is returned if the icon could not be loaded or
	// extracted from its file.
	ErrExtractionFailed = errors.New("icon extraction failed")

	// ErrInvalidDirectionality signals a device with a data flow that is
	// neither capture nor render. It is never returned, only panicked with.
	ErrInvalidDirectionality = errors.New("invalid device directionality")
)

// ResolutionError describes why an icon could not be resolved.
type ResolutionError struct {
	// Kind is either ErrMalformedSpecifier or ErrExtractionFailed.
	Kind      error
	Specifier string
	Err       error
}

func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %q", e.Kind, e.Specifier)
	}
	return fmt.Sprintf("%s: %q: %s", e.Kind, e.Specifier, e.Err)
}

// Is makes errors.Is match the error kind.
func (e *ResolutionError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

func malformed(specifier string, err error) *ResolutionError {
	return &ResolutionError{
		Kind:      ErrMalformedSpecifier,
		Specifier: specifier,
		Err:       err,
	}
}

func extractionFailed(specifier string, err error) *ResolutionError {
	return &ResolutionError{
		Kind:      ErrExtractionFailed,
		Specifier: specifier,
		Err:       err,
	}
}
