package service

import (
	"errors"
	"fmt"
)

// ErrEmptyCriteria is returned when every search field is blank
var ErrEmptyCriteria = errors.New("at least one of condition, keyword or location is required")

// StatusError reports a non-200 response from an upstream registry
type StatusError struct {
	Service    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Service, e.StatusCode)
}

// AsStatusError unwraps err into a *StatusError when possible
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
