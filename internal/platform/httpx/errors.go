// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the transport layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
)

// ErrorMapping binds a domain error to a problem status.
type ErrorMapping struct {
	Target error
	Status int
	Title  string
}

var defaultMappings = []ErrorMapping{
	{Target: ErrNotFound, Status: http.StatusNotFound, Title: "Not Found"},
	{Target: ErrValidation, Status: http.StatusBadRequest, Title: "Validation Failed"},
}

// RespondError maps err to an RFC7807 response. Mappings are checked in
// order with errors.Is before the package defaults; unmatched errors are 500.
func RespondError(w http.ResponseWriter, err error, mappings ...ErrorMapping) {
	ordered := make([]ErrorMapping, 0, len(mappings)+len(defaultMappings))
	ordered = append(ordered, mappings...)
	ordered = append(ordered, defaultMappings...)
	for _, m := range ordered {
		if errors.Is(err, m.Target) {
			Problem(w, m.Status, m.Title, err.Error())
			return
		}
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
