package listing

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidationError reports every violated request parameter at once, keyed
// by parameter name. It is the only error the listing path attributes to
// the caller.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return "invalid query parameters: " + e.Fields.Error()
}

// Details flattens the field errors into (parameter, reason) pairs for the
// response body.
func (e *ValidationError) Details() map[string]string {
	details := make(map[string]string, len(e.Fields))
	for field, err := range e.Fields {
		details[field] = err.Error()
	}
	return details
}

// StoreError marks a relational-store failure. Handlers render it as an
// opaque server error; the wrapped cause is for logs only.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
