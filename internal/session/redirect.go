package session

import (
	"fmt"
	"net/http"
)

// RedirectError is a terminal control-flow value: the request is answered
// with a redirect and the handler chain stops. It is resolved by the central
// HTTP error handler, so handlers return it like any other error.
type RedirectError struct {
	Code     int
	Location string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect %d to %s", e.Code, e.Location)
}

func Redirect(location string) *RedirectError {
	return &RedirectError{Code: http.StatusFound, Location: location}
}
