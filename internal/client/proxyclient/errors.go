package proxyclient

import "fmt"

// TransportError means the proxy answered with something that is not a
// usable JSON body: wrong content type, unreadable or unparsable payload.
type TransportError struct {
	URL    string
	Status int
	Reason string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("proxy transport error (%s, status %d): %s: %v", e.URL, e.Status, e.Reason, e.Err)
	}
	return fmt.Sprintf("proxy transport error (%s, status %d): %s", e.URL, e.Status, e.Reason)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseError means the proxy answered with a JSON envelope reporting failure.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("filter request failed (status %d): %s", e.Status, e.Message)
}
