package schema

import "fmt"

// ValidationError is a single parameter failure.
type ValidationError struct {
	Command string // command name, when known
	Param   string // parameter name or position
	Reason  string
	Raw     string // the raw value that failed, empty for missing params
}

func (e *ValidationError) Error() string {
	prefix := fmt.Sprintf("param %q", e.Param)
	if e.Command != "" {
		prefix = fmt.Sprintf("command %q: %s", e.Command, prefix)
	}
	if e.Raw == "" {
		return fmt.Sprintf("%s: %s", prefix, e.Reason)
	}
	return fmt.Sprintf("%s: %s (raw %q)", prefix, e.Reason, e.Raw)
}

// AggregateError collects every parameter failure from one Bind.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors unpacks an AggregateError, or returns nil for any other
// error.
func ValidationErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}
