package salesapi

import "fmt"

// APIError is a non-2xx rejection from the sales service. It carries the
// upstream status and message so handlers can surface them.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sales api: status %d", e.Status)
	}
	return fmt.Sprintf("sales api: status %d: %s", e.Status, e.Message)
}

// transportError marks a connectivity-level failure: the request never got
// a response. The engine maps these to its offline state rather than a
// user-visible error.
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return "sales api unreachable: " + e.err.Error()
}

func (e *transportError) Unwrap() error { return e.err }

// Unreachable satisfies the engine's connectivity classification.
func (e *transportError) Unreachable() bool { return true }
