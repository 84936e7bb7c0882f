package gbfs

import "fmt"

// APIError represents a failed or malformed GBFS feed fetch.
type APIError struct {
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("GBFS error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("GBFS error: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new GBFS API error
func NewAPIError(message string, err error) *APIError {
	return &APIError{
		Message: message,
		Err:     err,
	}
}
