package client

import "fmt"

// Error codes carried by failure envelopes.
const (
	CodeValidation     = "validation_error"
	CodeAuthentication = "authentication_error"
	CodeUpstream       = "upstream_error"
	CodePersistence    = "persistence_error"
	CodeSearch         = "search_error"
	CodeInternal       = "internal_error"
)

// APIError is a failure envelope returned by the server.
type APIError struct {
	Status        int
	Code          string
	Message       string
	ExecutionTime string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("semdocs: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("semdocs: %s (HTTP %d): %s", e.Code, e.Status, e.Message)
}
