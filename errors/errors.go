package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve Phase = "resolve" // declaration to codec plan
	PhaseCompile Phase = "compile" // plan to compiled type
	PhaseMeasure Phase = "measure" // size computation
	PhaseEncode  Phase = "encode"  // value to bytes
	PhaseDecode  Phase = "decode"  // bytes to value
	PhaseConvert Phase = "convert" // domain value to structured message and back
	PhaseIO      Phase = "io"      // file and stream adapters
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Origin *Origin
	Phase  Phase
	GoType string
	Detail string
	Path   []string
	Code   Code
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(e.Code.String())

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" {
		b.WriteString(": Go type ")
		b.WriteString(e.GoType)
	}

	if e.Detail != "" {
		if e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	} else if e.Origin != nil {
		b.WriteString(" (origin: ")
		b.WriteString(e.Origin.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	if e.Origin != nil {
		return e.Origin
	}
	return nil
}

// Prefix returns a copy of e with elems prepended to its path. The
// receiver and its path are left untouched.
func (e *Error) Prefix(elems ...string) *Error {
	c := *e
	c.Path = make([]string, 0, len(elems)+len(e.Path))
	c.Path = append(c.Path, elems...)
	c.Path = append(c.Path, e.Path...)
	return &c
}

// At prefixes the path of a structured error with elem. Other errors are
// returned unchanged.
func At(err error, elem string) error {
	if e, ok := err.(*Error); ok {
		return e.Prefix(elem)
	}
	return err
}

// Is reports whether target matches this error. A target without a phase
// matches on code alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Code == t.Code
}

// Message returns the text carried across the wire: the path and detail,
// without phase or cause.
func (e *Error) Message() string {
	if len(e.Path) == 0 {
		return e.Detail
	}
	if e.Detail == "" {
		return strings.Join(e.Path, ".")
	}
	return strings.Join(e.Path, ".") + ": " + e.Detail
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, code Code) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Code:  code,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Origin sets an already downgraded cause
func (b *Builder) Origin(o *Origin) *Builder {
	b.err.Origin = o
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// OutOfLimit reports a destination buffer that cannot hold the encoding.
func OutOfLimit(phase Phase, path []string, need, have int) *Error {
	return &Error{
		Phase:  phase,
		Code:   CodeOutOfLimit,
		Path:   path,
		Detail: fmt.Sprintf("need %d bytes, have %d", need, have),
		Value:  need,
	}
}

// InvalidFormat reports structurally malformed input.
func InvalidFormat(phase Phase, path []string, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  phase,
		Code:   CodeInvalidFormat,
		Path:   path,
		Detail: detail,
	}
}

// Truncated reports input that ended before a value was complete.
func Truncated(phase Phase, path []string, want, have int) *Error {
	return &Error{
		Phase:  phase,
		Code:   CodeInvalidFormat,
		Path:   path,
		Detail: fmt.Sprintf("expected %d bytes, got %d", want, have),
		Value:  have,
	}
}

// InvalidOrdinal reports an enum or variant ordinal with no mapping.
func InvalidOrdinal(phase Phase, path []string, ordinal uint64, count int) *Error {
	return &Error{
		Phase:  phase,
		Code:   CodeInvalidFormat,
		Path:   path,
		Detail: fmt.Sprintf("ordinal %d out of range (%d variants)", ordinal, count),
		Value:  ordinal,
	}
}

// NotSupport creates an unsupported operation error
func NotSupport(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Code:   CodeNotSupport,
		Detail: what,
	}
}

// InvalidParam reports a caller supplied argument that cannot be used.
func InvalidParam(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Code:   CodeInvalidParam,
		Path:   path,
		Detail: detail,
	}
}

// NotFound reports a missing registration or lookup target.
func NotFound(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Code:   CodeNotFound,
		Detail: what,
	}
}

// Overflow reports a numeric value that does not fit its target type.
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Code:   CodeInvalidFormat,
		Path:   path,
		GoType: targetType,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, code Code, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Code:   code,
		Detail: detail,
		Cause:  cause,
	}
}

// CodeOf returns the code carried by err. Nil maps to CodeOk, errors that
// are not *Error map through FromError.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOk
	}
	return FromError(err).Code
}

// InvariantViolation is the panic value raised when a codec contradicts
// itself, for example an encoder writing a different number of bytes than
// its measure reported. It indicates a programming error, not bad input.
type InvariantViolation struct {
	Op     string
	Detail string
	Want   int
	Got    int
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("codec invariant violated in %s: %s (want %d, got %d)", v.Op, v.Detail, v.Want, v.Got)
}

// SizeMismatch builds the violation for a measure/encode disagreement.
func SizeMismatch(op string, want, got int) *InvariantViolation {
	return &InvariantViolation{
		Op:     op,
		Detail: "encoded size differs from measured size",
		Want:   want,
		Got:    got,
	}
}
