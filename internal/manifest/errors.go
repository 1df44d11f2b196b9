package manifest

import (
	"errors"
	"fmt"
)

// ErrInvalid marks every manifest loading failure.
var ErrInvalid = errors.New("invalid manifest")

// Error reports why a manifest could not be turned into a launch request.
type Error struct {
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("manifest %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("manifest %s: %s", e.Path, e.Reason)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalid}
	}
	return []error{ErrInvalid, e.Err}
}
