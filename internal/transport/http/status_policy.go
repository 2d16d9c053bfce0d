package http

import (
	"fmt"
	"net/http"

	"github.com/light-bringer/storefront-filters/internal/app/filter/contracts"
)

// StatusPolicy decides the HTTP status written alongside a failure envelope.
type StatusPolicy string

const (
	// StatusAlwaysOK answers 200 for every outcome; clients read ok from the body.
	StatusAlwaysOK StatusPolicy = "always_ok"
	// StatusMapped answers 400 for input errors, 502 for catalog errors,
	// 429 when throttled, 500 otherwise.
	StatusMapped StatusPolicy = "mapped"
)

// ParseStatusPolicy validates a configured policy name.
func ParseStatusPolicy(s string) (StatusPolicy, error) {
	switch StatusPolicy(s) {
	case "", StatusAlwaysOK:
		return StatusAlwaysOK, nil
	case StatusMapped:
		return StatusMapped, nil
	default:
		return "", fmt.Errorf("unknown error status policy %q", s)
	}
}

// StatusFor returns the HTTP status for an error class.
func (p StatusPolicy) StatusFor(class contracts.ErrorClass) int {
	if p != StatusMapped {
		return http.StatusOK
	}
	switch class {
	case contracts.ClassInput:
		return http.StatusBadRequest
	case contracts.ClassCatalog:
		return http.StatusBadGateway
	case contracts.ClassThrottled:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
