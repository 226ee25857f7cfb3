package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/wippyai/rawcodec/internal/wire"
)

// Code is a stable error classification. The low 16 bits hold the wire
// ordinal; codes that carry a sub-classification keep it in the high 16
// bits. Ordinals are assigned explicitly and never change.
type Code uint32

const (
	CodeOk                Code = 0
	CodeFailed            Code = 1
	CodeInvalidParam      Code = 2
	CodeTimeout           Code = 3
	CodeNotFound          Code = 4
	CodeAlreadyExists     Code = 5
	CodeNotSupport        Code = 6
	CodeErrorState        Code = 7
	CodeInvalidFormat     Code = 8
	CodeExpired           Code = 9
	CodeOutOfLimit        Code = 10
	CodeInternalError     Code = 11
	CodePermissionDenied  Code = 12
	CodeConnectionRefused Code = 13
	CodeConnectionReset   Code = 14
	CodeConnectionAborted Code = 15
	CodeNotConnected      Code = 16
	CodeAddrInUse         Code = 17
	CodeAddrNotAvailable  Code = 18
	CodeInterrupted       Code = 19
	CodeInvalidInput      Code = 20
	CodeInvalidData       Code = 21
	CodeWriteZero         Code = 22
	CodeUnexpectedEOF     Code = 23
	CodeBrokenPipe        Code = 24
	CodeWouldBlock        Code = 25
	CodeCryptoError       Code = 26
	CodeIOError           Code = 27
	CodeMetaError         Code = 70
	CodeDecError          Code = 71
)

var codeNames = map[Code]string{
	CodeOk:                "ok",
	CodeFailed:            "failed",
	CodeInvalidParam:      "invalid_param",
	CodeTimeout:           "timeout",
	CodeNotFound:          "not_found",
	CodeAlreadyExists:     "already_exists",
	CodeNotSupport:        "not_support",
	CodeErrorState:        "error_state",
	CodeInvalidFormat:     "invalid_format",
	CodeExpired:           "expired",
	CodeOutOfLimit:        "out_of_limit",
	CodeInternalError:     "internal_error",
	CodePermissionDenied:  "permission_denied",
	CodeConnectionRefused: "connection_refused",
	CodeConnectionReset:   "connection_reset",
	CodeConnectionAborted: "connection_aborted",
	CodeNotConnected:      "not_connected",
	CodeAddrInUse:         "addr_in_use",
	CodeAddrNotAvailable:  "addr_not_available",
	CodeInterrupted:       "interrupted",
	CodeInvalidInput:      "invalid_input",
	CodeInvalidData:       "invalid_data",
	CodeWriteZero:         "write_zero",
	CodeUnexpectedEOF:     "unexpected_eof",
	CodeBrokenPipe:        "broken_pipe",
	CodeWouldBlock:        "would_block",
	CodeCryptoError:       "crypto_error",
	CodeIOError:           "io_error",
	CodeMetaError:         "meta_error",
	CodeDecError:          "dec_error",
}

// MetaError returns the meta classification code with its sub-code.
func MetaError(sub uint16) Code {
	return CodeMetaError | Code(sub)<<16
}

// DecError returns the decoder classification code with its sub-code.
func DecError(sub uint16) Code {
	return CodeDecError | Code(sub)<<16
}

// Ordinal returns the wire ordinal.
func (c Code) Ordinal() uint16 {
	return uint16(c)
}

// Sub returns the nested classification of MetaError and DecError codes.
func (c Code) Sub() uint16 {
	return uint16(c >> 16)
}

// HasSub reports whether the ordinal carries a nested payload on the wire.
func (c Code) HasSub() bool {
	o := Code(c.Ordinal())
	return o == CodeMetaError || o == CodeDecError
}

// Known reports whether the ordinal has a mapping.
func (c Code) Known() bool {
	_, ok := codeNames[Code(c.Ordinal())]
	return ok
}

func (c Code) String() string {
	name, ok := codeNames[Code(c.Ordinal())]
	if !ok {
		return fmt.Sprintf("code(%d)", c.Ordinal())
	}
	if c.HasSub() {
		return fmt.Sprintf("%s(%d)", name, c.Sub())
	}
	return name
}

// Size returns the encoded size of the code.
func (c Code) Size() int {
	n := wire.UvarintSize(uint64(c.Ordinal()))
	if c.HasSub() {
		n += 2
	}
	return n
}

// Encode writes the ordinal as a uvarint, followed by the big-endian
// sub-code for codes that carry one.
func (c Code) Encode(buf []byte) ([]byte, error) {
	out, err := wire.PutUvarint(buf, uint64(c.Ordinal()))
	if err != nil {
		return buf, OutOfLimit(PhaseEncode, []string{"code"}, c.Size(), len(buf))
	}
	if c.HasSub() {
		out, err = wire.PutU16(out, c.Sub())
		if err != nil {
			return buf, OutOfLimit(PhaseEncode, []string{"code"}, c.Size(), len(buf))
		}
	}
	return out, nil
}

// DecodeCode reads a code. Unknown ordinals fail with CodeNotSupport and
// name the call site, they are never coerced to a default.
func DecodeCode(buf []byte) (Code, []byte, error) {
	v, rest, err := wire.Uvarint(buf)
	if err != nil {
		return 0, buf, FromWire(PhaseDecode, []string{"code"}, err)
	}
	if v > 0xffff || !Code(v).Known() {
		file, line := callSite()
		return 0, buf, &Error{
			Phase:  PhaseDecode,
			Code:   CodeNotSupport,
			Path:   []string{"code"},
			Detail: fmt.Sprintf("unknown error code ordinal %d (decoded at %s:%d)", v, file, line),
			Value:  v,
		}
	}
	c := Code(v)
	if c.HasSub() {
		sub, tail, err := wire.U16(rest)
		if err != nil {
			return 0, buf, Truncated(PhaseDecode, []string{"code", "sub"}, 2, len(rest))
		}
		c |= Code(sub) << 16
		rest = tail
	}
	return c, rest, nil
}

const pkgPrefix = "github.com/wippyai/rawcodec/errors."

// callSite returns the first frame outside this package, so a code read
// through Decode or DecodeOrigin still names the caller's file.
func callSite() (string, int) {
	var pcs [16]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	file, line := "unknown", 0
	for {
		f, more := frames.Next()
		file, line = f.File, f.Line
		if !strings.HasPrefix(f.Function, pkgPrefix) || !more {
			break
		}
	}
	return file, line
}

// FromWire attaches a code to an error from the primitive layer. Short
// reads report the byte counts. The sentinel is kept as the cause.
func FromWire(phase Phase, path []string, err error) *Error {
	e := &Error{Phase: phase, Code: CodeInvalidFormat, Path: path, Cause: err}
	var se *wire.SizeError
	switch {
	case stderrors.As(err, &se):
		e.Detail = fmt.Sprintf("expected %d bytes, got %d", se.Want, se.Have)
		e.Value = se.Have
		e.Cause = se.Err
	case stderrors.Is(err, wire.ErrShortBuffer):
		e.Code = CodeOutOfLimit
	}
	return e
}
