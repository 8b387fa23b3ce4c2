package response

// Status is the payload of configuration endpoints such as set-interval.
type Status struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// OK returns a success status with a human-readable message
func OK(message string) Status {
	return Status{Success: true, Message: message}
}

// Fail returns a failure status with a human-readable message
func Fail(message string) Status {
	return Status{Success: false, Message: message}
}

// APIError is the error payload of the reporting endpoints.
type APIError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Err wraps an error message and its cause into an APIError
func Err(message string, cause error) APIError {
	e := APIError{Error: message}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}
