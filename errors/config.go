package errors

import (
	"fmt"
	"strings"
)

// ConfigError is a single defect found while resolving a type declaration.
type ConfigError struct {
	Pos string
	Msg string
}

func (e ConfigError) Error() string {
	if e.Pos == "" {
		return e.Msg
	}
	return e.Pos + ": " + e.Msg
}

// ConfigErrors collects every defect of a resolution pass so they can be
// reported together instead of one per run.
type ConfigErrors []ConfigError

// Add records a defect.
func (e *ConfigErrors) Add(pos, msg string, args ...any) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	*e = append(*e, ConfigError{Pos: pos, Msg: msg})
}

// Merge appends the defects of err when it is a ConfigErrors, or err itself
// otherwise.
func (e *ConfigErrors) Merge(err error) {
	if err == nil {
		return
	}
	if ce, ok := err.(ConfigErrors); ok {
		*e = append(*e, ce...)
		return
	}
	*e = append(*e, ConfigError{Msg: err.Error()})
}

// Err returns nil when nothing was recorded.
func (e ConfigErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e ConfigErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d configuration errors:", len(e))
	for _, ce := range e {
		b.WriteString("\n  ")
		b.WriteString(ce.Error())
	}
	return b.String()
}

// Unwrap exposes each defect to errors.Is and errors.As.
func (e ConfigErrors) Unwrap() []error {
	out := make([]error, len(e))
	for i, ce := range e {
		out[i] = ce
	}
	return out
}
