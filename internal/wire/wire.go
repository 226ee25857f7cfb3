// Package wire implements the primitive native layout shared by every codec:
// unsigned varints, fixed-width big-endian integers, length-prefixed byte
// strings and presence tags.
//
// Every Put function writes at the front of buf and returns the unused
// suffix. Every read function consumes a prefix of buf and returns the value
// together with the remaining suffix. Callers advance by reassigning the
// returned slice, never by index arithmetic.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Sentinel errors. Callers attach codes and paths.
var (
	ErrShortBuffer    = errors.New("wire: destination buffer too small")
	ErrShortInput     = errors.New("wire: unexpected end of input")
	ErrVarintOverflow = errors.New("wire: varint overflows 64 bits")
	ErrBadPresence    = errors.New("wire: invalid presence tag")
	ErrLengthOverflow = errors.New("wire: length exceeds input")
)

// SizeError is a short read. It wraps ErrShortInput or ErrLengthOverflow
// and records how many bytes the value needed and how many were left.
type SizeError struct {
	Err  error
	Want int
	Have int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%v: need %d bytes, have %d", e.Err, e.Want, e.Have)
}

func (e *SizeError) Unwrap() error {
	return e.Err
}

func short(want, have int) error {
	return &SizeError{Err: ErrShortInput, Want: want, Have: have}
}

// Presence tags written ahead of optional values.
const (
	Absent  byte = 0
	Present byte = 1
)

// UvarintSize returns the number of bytes PutUvarint writes for v.
func UvarintSize(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// PutUvarint writes v as an unsigned LEB128 varint.
func PutUvarint(buf []byte, v uint64) ([]byte, error) {
	n := UvarintSize(v)
	if len(buf) < n {
		return buf, ErrShortBuffer
	}
	binary.PutUvarint(buf, v)
	return buf[n:], nil
}

// Uvarint reads an unsigned varint.
func Uvarint(buf []byte) (uint64, []byte, error) {
	v, n := binary.Uvarint(buf)
	switch {
	case n == 0:
		// a varint needs at least one more byte than is left
		return 0, buf, short(len(buf)+1, len(buf))
	case n < 0:
		return 0, buf, ErrVarintOverflow
	}
	return v, buf[n:], nil
}

// ZigZag maps signed integers onto unsigned ones so small magnitudes stay short.
func ZigZag(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

// UnZigZag reverses ZigZag.
func UnZigZag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

func PutU8(buf []byte, v uint8) ([]byte, error) {
	if len(buf) < 1 {
		return buf, ErrShortBuffer
	}
	buf[0] = v
	return buf[1:], nil
}

func PutU16(buf []byte, v uint16) ([]byte, error) {
	if len(buf) < 2 {
		return buf, ErrShortBuffer
	}
	binary.BigEndian.PutUint16(buf, v)
	return buf[2:], nil
}

func PutU32(buf []byte, v uint32) ([]byte, error) {
	if len(buf) < 4 {
		return buf, ErrShortBuffer
	}
	binary.BigEndian.PutUint32(buf, v)
	return buf[4:], nil
}

func PutU64(buf []byte, v uint64) ([]byte, error) {
	if len(buf) < 8 {
		return buf, ErrShortBuffer
	}
	binary.BigEndian.PutUint64(buf, v)
	return buf[8:], nil
}

func U8(buf []byte) (uint8, []byte, error) {
	if len(buf) < 1 {
		return 0, buf, short(1, len(buf))
	}
	return buf[0], buf[1:], nil
}

func U16(buf []byte) (uint16, []byte, error) {
	if len(buf) < 2 {
		return 0, buf, short(2, len(buf))
	}
	return binary.BigEndian.Uint16(buf), buf[2:], nil
}

func U32(buf []byte) (uint32, []byte, error) {
	if len(buf) < 4 {
		return 0, buf, short(4, len(buf))
	}
	return binary.BigEndian.Uint32(buf), buf[4:], nil
}

func U64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, buf, short(8, len(buf))
	}
	return binary.BigEndian.Uint64(buf), buf[8:], nil
}

// PutBool writes a single byte, 1 for true.
func PutBool(buf []byte, v bool) ([]byte, error) {
	if v {
		return PutU8(buf, 1)
	}
	return PutU8(buf, 0)
}

// Bool reads a single byte. Anything other than 0 or 1 is rejected.
func Bool(buf []byte) (bool, []byte, error) {
	b, rest, err := U8(buf)
	if err != nil {
		return false, buf, err
	}
	switch b {
	case 0:
		return false, rest, nil
	case 1:
		return true, rest, nil
	}
	return false, buf, ErrBadPresence
}

func PutF32(buf []byte, v float32) ([]byte, error) {
	return PutU32(buf, math.Float32bits(v))
}

func PutF64(buf []byte, v float64) ([]byte, error) {
	return PutU64(buf, math.Float64bits(v))
}

func F32(buf []byte) (float32, []byte, error) {
	v, rest, err := U32(buf)
	return math.Float32frombits(v), rest, err
}

func F64(buf []byte) (float64, []byte, error) {
	v, rest, err := U64(buf)
	return math.Float64frombits(v), rest, err
}

// BytesSize returns the encoded size of a length-prefixed byte string of n bytes.
func BytesSize(n int) int {
	return UvarintSize(uint64(n)) + n
}

// PutBytes writes a uvarint length followed by b.
func PutBytes(buf, b []byte) ([]byte, error) {
	if len(buf) < BytesSize(len(b)) {
		return buf, ErrShortBuffer
	}
	buf, _ = PutUvarint(buf, uint64(len(b)))
	n := copy(buf, b)
	return buf[n:], nil
}

// PutString writes a uvarint length followed by the bytes of s.
func PutString(buf []byte, s string) ([]byte, error) {
	if len(buf) < BytesSize(len(s)) {
		return buf, ErrShortBuffer
	}
	buf, _ = PutUvarint(buf, uint64(len(s)))
	n := copy(buf, s)
	return buf[n:], nil
}

// Bytes reads a length-prefixed byte string. The result aliases buf and has
// its capacity clipped so appends never clobber the rest of the input.
func Bytes(buf []byte) ([]byte, []byte, error) {
	n, rest, err := Uvarint(buf)
	if err != nil {
		return nil, buf, err
	}
	if n > uint64(len(rest)) {
		return nil, buf, &SizeError{Err: ErrLengthOverflow, Want: int(min(n, math.MaxInt32)), Have: len(rest)}
	}
	return rest[:n:n], rest[n:], nil
}

// Raw copies b into buf without a length prefix.
func Raw(buf, b []byte) ([]byte, error) {
	if len(buf) < len(b) {
		return buf, ErrShortBuffer
	}
	n := copy(buf, b)
	return buf[n:], nil
}

// PutPresence writes the presence tag for an optional value.
func PutPresence(buf []byte, present bool) ([]byte, error) {
	if present {
		return PutU8(buf, Present)
	}
	return PutU8(buf, Absent)
}

// Presence reads a presence tag.
func Presence(buf []byte) (bool, []byte, error) {
	b, rest, err := U8(buf)
	if err != nil {
		return false, buf, err
	}
	switch b {
	case Absent:
		return false, rest, nil
	case Present:
		return true, rest, nil
	}
	return false, buf, ErrBadPresence
}

// SafeAdd adds two sizes, reporting false on overflow.
func SafeAdd(a, b int) (int, bool) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// SafeMul multiplies two sizes, reporting false on overflow.
func SafeMul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}
