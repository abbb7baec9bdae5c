package commerce

import (
	"fmt"
	"strings"
)

// TransportError is a network failure or non-2xx HTTP status from the
// commerce backend. It is never retried here; the cart store logs it and
// leaves its state unchanged.
type TransportError struct {
	Status     int
	StatusText string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("commerce transport: %v", e.Err)
	}
	return fmt.Sprintf("commerce transport: %s", e.StatusText)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UserError is one business-rule validation failure returned alongside an
// otherwise successful response, e.g. a sold-out variant.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UserErrorList is the error returned when a cart mutation reports user
// errors. The mutation was rejected upstream and no snapshot accompanies it.
type UserErrorList struct {
	Op     string
	Errors []UserError
}

func (e *UserErrorList) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ue := range e.Errors {
		msgs = append(msgs, ue.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, strings.Join(msgs, "; "))
}
