package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"syscall"

	"github.com/wippyai/rawcodec/internal/wire"
)

// OriginKind is the wire tag of a downgraded cause.
type OriginKind uint8

const (
	OriginCode   OriginKind = 1 // numeric code of the failing library
	OriginText   OriginKind = 2 // formatted text
	OriginOpaque OriginKind = 3 // nothing representable
)

// Origin is the lossy form an arbitrary cause takes before crossing the
// wire. The original cause identity is not recoverable from it.
type Origin struct {
	Text string
	Num  int64
	Kind OriginKind
}

func (o *Origin) Error() string {
	switch o.Kind {
	case OriginCode:
		return fmt.Sprintf("origin code %d", o.Num)
	case OriginText:
		return o.Text
	default:
		return "opaque origin"
	}
}

type coder interface{ Code() int }

// OriginOf downgrades err. Causes exposing a numeric code keep the number,
// everything else keeps its text.
func OriginOf(err error) *Origin {
	if err == nil {
		return nil
	}
	var o *Origin
	if stderrors.As(err, &o) {
		return o
	}
	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		return &Origin{Kind: OriginCode, Num: int64(errno)}
	}
	var c coder
	if stderrors.As(err, &c) {
		return &Origin{Kind: OriginCode, Num: int64(c.Code())}
	}
	text := err.Error()
	if text == "" {
		return &Origin{Kind: OriginOpaque}
	}
	return &Origin{Kind: OriginText, Text: text}
}

// Size returns the encoded size of the origin, excluding the presence tag.
func (o *Origin) Size() int {
	switch o.Kind {
	case OriginCode:
		return 1 + wire.UvarintSize(wire.ZigZag(o.Num))
	case OriginText:
		return 1 + wire.BytesSize(len(o.Text))
	default:
		return 1
	}
}

// Encode writes the origin tag followed by its payload.
func (o *Origin) Encode(buf []byte) ([]byte, error) {
	if len(buf) < o.Size() {
		return buf, OutOfLimit(PhaseEncode, []string{"origin"}, o.Size(), len(buf))
	}
	kind := o.Kind
	if kind != OriginCode && kind != OriginText {
		kind = OriginOpaque
	}
	out, _ := wire.PutU8(buf, uint8(kind))
	switch kind {
	case OriginCode:
		out, _ = wire.PutUvarint(out, wire.ZigZag(o.Num))
	case OriginText:
		out, _ = wire.PutString(out, o.Text)
	}
	return out, nil
}

// DecodeOrigin reads an origin written by Encode.
func DecodeOrigin(buf []byte) (*Origin, []byte, error) {
	tag, rest, err := wire.U8(buf)
	if err != nil {
		return nil, buf, FromWire(PhaseDecode, []string{"origin"}, err)
	}
	switch OriginKind(tag) {
	case OriginCode:
		v, tail, err := wire.Uvarint(rest)
		if err != nil {
			return nil, buf, FromWire(PhaseDecode, []string{"origin", "code"}, err)
		}
		return &Origin{Kind: OriginCode, Num: wire.UnZigZag(v)}, tail, nil
	case OriginText:
		text, tail, err := wire.Bytes(rest)
		if err != nil {
			return nil, buf, FromWire(PhaseDecode, []string{"origin", "text"}, err)
		}
		return &Origin{Kind: OriginText, Text: string(text)}, tail, nil
	case OriginOpaque:
		return &Origin{Kind: OriginOpaque}, rest, nil
	}
	return nil, buf, InvalidOrdinal(PhaseDecode, []string{"origin"}, uint64(tag), 3)
}

var errnoCodes = map[syscall.Errno]Code{
	syscall.ENOENT:        CodeNotFound,
	syscall.EACCES:        CodePermissionDenied,
	syscall.EPERM:         CodePermissionDenied,
	syscall.EEXIST:        CodeAlreadyExists,
	syscall.ECONNREFUSED:  CodeConnectionRefused,
	syscall.ECONNRESET:    CodeConnectionReset,
	syscall.ECONNABORTED:  CodeConnectionAborted,
	syscall.ENOTCONN:      CodeNotConnected,
	syscall.EADDRINUSE:    CodeAddrInUse,
	syscall.EADDRNOTAVAIL: CodeAddrNotAvailable,
	syscall.EPIPE:         CodeBrokenPipe,
	syscall.EAGAIN:        CodeWouldBlock,
	syscall.EINTR:         CodeInterrupted,
	syscall.EINVAL:        CodeInvalidInput,
	syscall.ETIMEDOUT:     CodeTimeout,
}

// FromError classifies err. An *Error anywhere in the chain is returned as
// is; I/O failures map one to one onto their codes; anything else becomes
// CodeIOError when it came from the os or net packages and CodeFailed
// otherwise.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return &Error{
		Phase:  PhaseIO,
		Code:   ioCode(err),
		Detail: "io_error: " + err.Error(),
		Cause:  err,
	}
}

func ioCode(err error) Code {
	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		if c, ok := errnoCodes[errno]; ok {
			return c
		}
		return CodeIOError
	}
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return CodeNotFound
	case stderrors.Is(err, fs.ErrPermission):
		return CodePermissionDenied
	case stderrors.Is(err, fs.ErrExist):
		return CodeAlreadyExists
	case stderrors.Is(err, fs.ErrInvalid):
		return CodeInvalidInput
	case stderrors.Is(err, io.ErrUnexpectedEOF), stderrors.Is(err, io.EOF):
		return CodeUnexpectedEOF
	case stderrors.Is(err, io.ErrShortWrite):
		return CodeWriteZero
	case stderrors.Is(err, io.ErrClosedPipe):
		return CodeBrokenPipe
	case stderrors.Is(err, os.ErrDeadlineExceeded), stderrors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	}
	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return CodeTimeout
	}
	var pe *fs.PathError
	var oe *net.OpError
	if stderrors.As(err, &pe) || stderrors.As(err, &oe) {
		return CodeIOError
	}
	return CodeFailed
}
