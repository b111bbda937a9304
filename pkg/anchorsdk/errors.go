package anchorsdk

import "fmt"

// APIError is a non-2xx response decoded into its error envelope.
type APIError struct {
	Status      int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anchor api: %s (%d): %s", e.Code, e.Status, e.Description)
}
