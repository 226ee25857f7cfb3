package rawcodec

import (
	"unsafe"

	"github.com/wippyai/rawcodec/errors"
	"github.com/wippyai/rawcodec/internal/wire"
)

// View is a borrowed byte string: a window into a buffer the decoder did
// not copy. It is invalid once the source buffer is modified or reused.
// The zero value is an empty view.
type View struct {
	src []byte
	off int
	n   int
}

// NewView returns a view covering all of b.
func NewView(b []byte) View {
	return View{src: b, n: len(b)}
}

// Bytes returns the viewed bytes. The slice aliases the source buffer and
// has its capacity clipped.
func (v View) Bytes() []byte {
	if v.n == 0 {
		return nil
	}
	return v.src[v.off : v.off+v.n : v.off+v.n]
}

// String returns the viewed bytes as a string without copying. The result
// shares the source buffer's lifetime.
func (v View) String() string {
	if v.n == 0 {
		return ""
	}
	return unsafe.String(&v.src[v.off], v.n)
}

// Len returns the number of viewed bytes.
func (v View) Len() int {
	return v.n
}

// Offset returns the position of the view inside its source buffer.
func (v View) Offset() int {
	return v.off
}

// Clone returns an owned copy of the viewed bytes.
func (v View) Clone() []byte {
	if v.n == 0 {
		return nil
	}
	out := make([]byte, v.n)
	copy(out, v.Bytes())
	return out
}

// RawMeasure implements Encoder.
func (v View) RawMeasure(Purpose) (int, error) {
	return wire.BytesSize(v.n), nil
}

// RawEncode implements Encoder.
func (v View) RawEncode(buf []byte, _ Purpose) ([]byte, error) {
	out, err := wire.PutBytes(buf, v.Bytes())
	if err != nil {
		return buf, errors.OutOfLimit(errors.PhaseEncode, nil, wire.BytesSize(v.n), len(buf))
	}
	return out, nil
}

// RawDecode points v at the length-prefixed bytes at the front of buf.
func (v *View) RawDecode(buf []byte) ([]byte, error) {
	b, rest, err := wire.Bytes(buf)
	if err != nil {
		return buf, errors.FromWire(errors.PhaseDecode, nil, err)
	}
	// the payload starts where the length prefix ends
	*v = View{src: buf, off: len(buf) - len(rest) - len(b), n: len(b)}
	return rest, nil
}
