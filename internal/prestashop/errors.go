package prestashop

import "fmt"

// TransportError is returned when the upstream API is unreachable or answers
// with a non-success status. The sync cycle that triggered the fetch is
// aborted; the next scheduled tick is the retry mechanism.
type TransportError struct {
	Dataset    string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("prestashop: fetching %s: upstream returned status %d", e.Dataset, e.StatusCode)
	}
	return fmt.Sprintf("prestashop: fetching %s: %v", e.Dataset, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError is returned when an upstream payload cannot be decoded into the
// expected shape. It aborts the cycle the same way a TransportError does.
type ParseError struct {
	Dataset string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("prestashop: parsing %s payload: %v", e.Dataset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
