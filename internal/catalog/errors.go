package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when the API answers 404 for a product id.
var ErrNotFound = errors.New("product not found")

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: catalog API responded %d %s", e.Op, e.Status, http.StatusText(e.Status))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Code classifies the error for handler summaries.
func (e *StatusError) Code() string {
	if e.Status >= 500 {
		return "catalog_5xx"
	}
	return "catalog_4xx"
}

// IsNotFound reports whether err means the product does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
