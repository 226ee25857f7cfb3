package errors

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"syscall"
	"testing"

	"github.com/wippyai/rawcodec/internal/wire"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseDecode,
				Code:   CodeInvalidFormat,
				Path:   []string{"user", "address", "zip"},
				GoType: "uint16",
				Detail: "expected 2 bytes, got 1",
			},
			contains: []string{"[decode]", "invalid_format", "user.address.zip", "uint16", "expected 2 bytes"},
		},
		{
			name:     "minimal error",
			err:      &Error{Phase: PhaseEncode, Code: CodeOutOfLimit},
			contains: []string{"[encode]", "out_of_limit"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseIO,
				Code:   CodeIOError,
				Detail: "write failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[io]", "io_error", "write failed", "caused by", "underlying error"},
		},
		{
			name:     "sub-coded",
			err:      &Error{Code: MetaError(12)},
			contains: []string{"meta_error(12)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{Phase: PhaseDecode, Code: CodeInvalidFormat, Path: []string{"foo"}}

	if !errors.Is(err, &Error{Phase: PhaseDecode, Code: CodeInvalidFormat}) {
		t.Error("Is should match same phase and code")
	}
	if !errors.Is(err, &Error{Code: CodeInvalidFormat}) {
		t.Error("Is should match code when target has no phase")
	}
	if errors.Is(err, &Error{Phase: PhaseEncode, Code: CodeInvalidFormat}) {
		t.Error("Is should not match different phase")
	}
	if errors.Is(err, &Error{Code: CodeOutOfLimit}) {
		t.Error("Is should not match different code")
	}
}

func TestError_Prefix(t *testing.T) {
	inner := &Error{Phase: PhaseDecode, Code: CodeInvalidFormat, Path: []string{"x"}}
	shared := inner.Path

	outer := At(At(inner, "b"), "a").(*Error)
	if got := strings.Join(outer.Path, "."); got != "a.b.x" {
		t.Errorf("Path = %q, want a.b.x", got)
	}
	if len(inner.Path) != 1 || inner.Path[0] != "x" || &shared[0] != &inner.Path[0] {
		t.Errorf("inner path changed to %v", inner.Path)
	}
	if outer.Code != inner.Code || outer.Phase != inner.Phase {
		t.Errorf("Prefix dropped fields: %v", outer)
	}

	plain := io.EOF
	if At(plain, "a") != plain {
		t.Error("At should return unstructured errors unchanged")
	}
}

func TestFromWire_ShortRead(t *testing.T) {
	_, _, werr := wire.U64([]byte{1, 2})
	err := FromWire(PhaseDecode, []string{"b"}, werr)

	if err.Detail != "expected 8 bytes, got 2" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Cause != wire.ErrShortInput {
		t.Errorf("Cause = %v, want the bare sentinel", err.Cause)
	}
	if n := strings.Count(err.Error(), "unexpected end of input"); n != 1 {
		t.Errorf("sentinel text appears %d times in %q", n, err.Error())
	}

	_, _, werr = wire.Uvarint([]byte{0x80})
	if got := FromWire(PhaseDecode, nil, werr).Detail; got != "expected 2 bytes, got 1" {
		t.Errorf("varint Detail = %q", got)
	}

	_, werr = wire.PutU32(make([]byte, 1), 7)
	if got := FromWire(PhaseEncode, nil, werr); got.Code != CodeOutOfLimit || got.Detail != "" {
		t.Errorf("short buffer = %v, want out_of_limit without detail", got)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDecode, CodeInvalidFormat).
		Path("user", "name").
		GoType("string").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "string", "int").
		Build()

	if err.Phase != PhaseDecode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseDecode)
	}
	if err.Code != CodeInvalidFormat {
		t.Errorf("Code = %v, want %v", err.Code, CodeInvalidFormat)
	}
	if len(err.Path) != 2 || err.Path[0] != "user" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [user name]", err.Path)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected string, got int" {
		t.Errorf("Detail = %v, want 'expected string, got int'", err.Detail)
	}
	if err.Message() != "user.name: expected string, got int" {
		t.Errorf("Message = %q", err.Message())
	}
}

func TestCode_FixedOrdinals(t *testing.T) {
	tests := []struct {
		wire []byte
		want Code
	}{
		{[]byte{0}, CodeOk},
		{[]byte{4}, CodeNotFound},
		{[]byte{8}, CodeInvalidFormat},
		{[]byte{10}, CodeOutOfLimit},
		{[]byte{70, 0x01, 0x02}, MetaError(0x0102)},
		{[]byte{71, 0x00, 0x07}, DecError(7)},
	}
	for _, tt := range tests {
		got, rest, err := DecodeCode(tt.wire)
		if err != nil {
			t.Fatalf("DecodeCode(%v): %v", tt.wire, err)
		}
		if got != tt.want {
			t.Errorf("DecodeCode(%v) = %v, want %v", tt.wire, got, tt.want)
		}
		if len(rest) != 0 {
			t.Errorf("DecodeCode(%v) left %d bytes", tt.wire, len(rest))
		}

		buf := make([]byte, tt.want.Size())
		if _, err := tt.want.Encode(buf); err != nil {
			t.Fatalf("Encode(%v): %v", tt.want, err)
		}
		if string(buf) != string(tt.wire) {
			t.Errorf("Encode(%v) = %v, want %v", tt.want, buf, tt.wire)
		}
	}
}

func TestDecodeCode_UnknownOrdinal(t *testing.T) {
	buf := make([]byte, 4)
	rest, err := Code(9999).Encode(buf)
	if err != nil {
		t.Fatal(err)
	}
	buf = buf[:len(buf)-len(rest)]

	_, _, err = DecodeCode(buf)
	if err == nil {
		t.Fatal("expected error for ordinal 9999")
	}
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeNotSupport {
		t.Fatalf("err = %v, want not_support", err)
	}
	if !strings.Contains(e.Detail, "9999") || !strings.Contains(e.Detail, ".go:") {
		t.Errorf("Detail = %q, want ordinal and call site", e.Detail)
	}
}

func TestDecodeCode_TruncatedSub(t *testing.T) {
	_, _, err := DecodeCode([]byte{70, 1})
	if CodeOf(err) != CodeInvalidFormat {
		t.Errorf("err = %v, want invalid_format", err)
	}
}

type libError struct{ code int }

func (e libError) Error() string { return fmt.Sprintf("lib failure %d", e.code) }
func (e libError) Code() int     { return e.code }

func TestOriginOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Origin
	}{
		{"numeric", libError{code: -17}, Origin{Kind: OriginCode, Num: -17}},
		{"errno", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), Origin{Kind: OriginCode, Num: int64(syscall.ECONNREFUSED)}},
		{"text", errors.New("bad things"), Origin{Kind: OriginText, Text: "bad things"}},
		{"opaque", errors.New(""), Origin{Kind: OriginOpaque}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OriginOf(tt.err)
			if *got != tt.want {
				t.Errorf("OriginOf = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestError_WireRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		origin *Origin
	}{
		{"no origin", &Error{Code: CodeNotFound, Detail: "missing key"}, nil},
		{"numeric origin", &Error{Code: CodeCryptoError, Detail: "sign", Cause: libError{code: 42}}, &Origin{Kind: OriginCode, Num: 42}},
		{"text origin", &Error{Code: DecError(3), Path: []string{"a"}, Detail: "x", Cause: errors.New("boom")}, &Origin{Kind: OriginText, Text: "boom"}},
		{"opaque origin", &Error{Code: CodeFailed, Origin: &Origin{Kind: OriginOpaque}}, &Origin{Kind: OriginOpaque}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.err.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}
			if len(data) != tt.err.Size() {
				t.Errorf("len = %d, Size = %d", len(data), tt.err.Size())
			}

			var got Error
			if err := got.UnmarshalBinary(data); err != nil {
				t.Fatalf("UnmarshalBinary: %v", err)
			}
			if got.Code != tt.err.Code {
				t.Errorf("Code = %v, want %v", got.Code, tt.err.Code)
			}
			if got.Detail != tt.err.Message() {
				t.Errorf("Detail = %q, want %q", got.Detail, tt.err.Message())
			}
			switch {
			case tt.origin == nil && got.Origin != nil:
				t.Errorf("Origin = %+v, want nil", got.Origin)
			case tt.origin != nil && (got.Origin == nil || *got.Origin != *tt.origin):
				t.Errorf("Origin = %+v, want %+v", got.Origin, tt.origin)
			}
		})
	}
}

func TestError_EncodeShortBuffer(t *testing.T) {
	e := &Error{Code: CodeFailed, Detail: "some message"}
	_, err := e.Encode(make([]byte, 3))
	if CodeOf(err) != CodeOutOfLimit {
		t.Errorf("err = %v, want out_of_limit", err)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"not exist", &fs.PathError{Op: "open", Path: "/x", Err: syscall.ENOENT}, CodeNotFound},
		{"permission", fs.ErrPermission, CodePermissionDenied},
		{"exists", fs.ErrExist, CodeAlreadyExists},
		{"refused", syscall.ECONNREFUSED, CodeConnectionRefused},
		{"reset", syscall.ECONNRESET, CodeConnectionReset},
		{"pipe", syscall.EPIPE, CodeBrokenPipe},
		{"eof", io.ErrUnexpectedEOF, CodeUnexpectedEOF},
		{"short write", io.ErrShortWrite, CodeWriteZero},
		{"other", errors.New("x"), CodeFailed},
		{"structured", &Error{Code: CodeExpired}, CodeExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromError(tt.err).Code; got != tt.want {
				t.Errorf("FromError(%v).Code = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
	if FromError(nil) != nil {
		t.Error("FromError(nil) should be nil")
	}
}

func TestConfigErrors(t *testing.T) {
	var errs ConfigErrors
	if errs.Err() != nil {
		t.Fatal("empty ConfigErrors should be nil")
	}
	errs.Add("a.go:3", "duplicate attribute `%s`", "rename")
	errs.Add("a.go:9", "unknown attribute `frob`")

	err := errs.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, s := range []string{"2 configuration errors", "a.go:3: duplicate attribute `rename`", "unknown attribute"} {
		if !strings.Contains(msg, s) {
			t.Errorf("message %q missing %q", msg, s)
		}
	}
	var ce ConfigError
	if !errors.As(err, &ce) || ce.Pos != "a.go:3" {
		t.Errorf("errors.As ConfigError = %+v", ce)
	}
}

func TestSizeMismatch(t *testing.T) {
	v := SizeMismatch("Encode", 10, 8)
	if !strings.Contains(v.Error(), "want 10, got 8") {
		t.Errorf("Error() = %q", v.Error())
	}
}
