package audit

import "fmt"

// The error taxonomy separates the read path from the write path. Decode-side
// failures (UnknownActionError, UnknownFlagError, DecodeError) describe rows
// already persisted, so callers render a fallback instead of failing the view.
// ValidationError occurs only while constructing a new event and must block
// the administrative action before anything is written.

// UnknownActionError indicates an action tag with no registered variant.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown admin action %q", e.Action)
}

// UnknownFlagError indicates a flip-flag payload whose flag key is not in the
// registry.
type UnknownFlagError struct {
	Flag string
}

func (e *UnknownFlagError) Error() string {
	return fmt.Sprintf("unknown user flag %q", e.Flag)
}

// DecodeError indicates a payload that does not match its variant's grammar.
// It carries the offending action and raw data for diagnostics; the reason
// names the specific grammar rule that failed.
type DecodeError struct {
	Action string
	Data   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s payload %q: %s", e.Action, e.Data, e.Reason)
}

// ValidationError indicates semantic parameters that violate a variant's
// constraints on the write path.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func decodeErr(action Action, data, format string, args ...any) error {
	return &DecodeError{Action: string(action), Data: data, Reason: fmt.Sprintf(format, args...)}
}

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
