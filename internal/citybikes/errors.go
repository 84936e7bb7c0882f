package citybikes

import "fmt"

// APIError represents a failed or malformed CityBik.es fetch.
type APIError struct {
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("CityBik.es error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("CityBik.es error: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new CityBik.es API error
func NewAPIError(message string, err error) *APIError {
	return &APIError{
		Message: message,
		Err:     err,
	}
}

// CityMatchError means the city query did not resolve to exactly one
// network. Candidates holds the ambiguous subset when Ambiguous is set,
// otherwise every known city.
type CityMatchError struct {
	Query      string
	Candidates []string
	Ambiguous  bool
}

func (e *CityMatchError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("multiple networks match %q", e.Query)
	}
	return fmt.Sprintf("no network matches %q", e.Query)
}
