package choices

import "fmt"

// Validation error codes.
const (
	CodeRequired      = "required"
	CodeInvalidChoice = "invalid_choice"
)

// ValidationError reports why a submitted value was rejected.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

// Clean validates a submitted value. A blank value is accepted only when the
// field is optional; anything else must match a choice value exactly.
func (f *Field) Clean(value string) (string, error) {
	if value == "" {
		if f.opts.Required {
			return "", &ValidationError{Code: CodeRequired, Message: "This field is required."}
		}
		return "", nil
	}
	if !f.Valid(value) {
		return "", &ValidationError{
			Code:    CodeInvalidChoice,
			Message: fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", value),
		}
	}
	return value, nil
}
