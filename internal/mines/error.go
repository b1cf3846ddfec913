package mines

import "errors"

var ErrInvalidParams = errors.New("invalid game params")

// AssertionError reports a broken engine invariant.
type AssertionError struct {
	message string
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return e.message
}
