package errors

import (
	"github.com/wippyai/rawcodec/internal/wire"
)

// Size returns the encoded size of e: code, length-prefixed message and a
// presence-tagged origin.
func (e *Error) Size() int {
	n := e.Code.Size() + wire.BytesSize(len(e.Message())) + 1
	if o := e.origin(); o != nil {
		n += o.Size()
	}
	return n
}

func (e *Error) origin() *Origin {
	if e.Origin != nil {
		return e.Origin
	}
	return OriginOf(e.Cause)
}

// Encode writes e at the front of buf and returns the unused suffix.
func (e *Error) Encode(buf []byte) ([]byte, error) {
	if need := e.Size(); len(buf) < need {
		return buf, OutOfLimit(PhaseEncode, []string{"error"}, need, len(buf))
	}
	out, err := e.Code.Encode(buf)
	if err != nil {
		return buf, err
	}
	out, _ = wire.PutString(out, e.Message())
	o := e.origin()
	out, _ = wire.PutPresence(out, o != nil)
	if o != nil {
		if out, err = o.Encode(out); err != nil {
			return buf, err
		}
	}
	return out, nil
}

// MarshalBinary encodes e into an exactly sized buffer.
func (e *Error) MarshalBinary() ([]byte, error) {
	size := e.Size()
	buf := make([]byte, size)
	rest, err := e.Encode(buf)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		panic(SizeMismatch("errors.Error.MarshalBinary", size, size-len(rest)))
	}
	return buf, nil
}

// UnmarshalBinary replaces e with the error encoded in data. Trailing bytes
// are rejected.
func (e *Error) UnmarshalBinary(data []byte) error {
	d, rest, err := Decode(data)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return InvalidFormat(PhaseDecode, []string{"error"}, "%d trailing bytes", len(rest))
	}
	*e = *d
	return nil
}

// Decode reads an error written by Encode. The result carries no phase and
// no cause; a transmitted origin is restored as Origin.
func Decode(buf []byte) (*Error, []byte, error) {
	code, rest, err := DecodeCode(buf)
	if err != nil {
		return nil, buf, err
	}
	msg, rest, err := wire.Bytes(rest)
	if err != nil {
		return nil, buf, FromWire(PhaseDecode, []string{"error", "message"}, err)
	}
	present, rest, err := wire.Presence(rest)
	if err != nil {
		return nil, buf, FromWire(PhaseDecode, []string{"error", "origin"}, err)
	}
	e := &Error{Code: code, Detail: string(msg)}
	if present {
		if e.Origin, rest, err = DecodeOrigin(rest); err != nil {
			return nil, buf, err
		}
	}
	return e, rest, nil
}
