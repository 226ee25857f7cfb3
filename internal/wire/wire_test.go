package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestUvarint_SizeMatchesWrite(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, math.MaxUint32, math.MaxUint64}
	for _, v := range values {
		buf := make([]byte, 16)
		rest, err := PutUvarint(buf, v)
		if err != nil {
			t.Fatalf("PutUvarint(%d): %v", v, err)
		}
		written := len(buf) - len(rest)
		if written != UvarintSize(v) {
			t.Errorf("UvarintSize(%d) = %d, wrote %d", v, UvarintSize(v), written)
		}
		got, tail, err := Uvarint(buf[:written])
		if err != nil {
			t.Fatalf("Uvarint(%d): %v", v, err)
		}
		if got != v || len(tail) != 0 {
			t.Errorf("Uvarint = %d (tail %d), want %d", got, len(tail), v)
		}
	}
}

func TestPutUvarint_ShortBuffer(t *testing.T) {
	_, err := PutUvarint(make([]byte, 1), 300)
	if !errors.Is(err, ErrShortBuffer) {
		t.Errorf("err = %v, want ErrShortBuffer", err)
	}
}

func TestUvarint_Truncated(t *testing.T) {
	_, _, err := Uvarint([]byte{0x80})
	if !errors.Is(err, ErrShortInput) {
		t.Errorf("err = %v, want ErrShortInput", err)
	}
}

func TestFixedWidth_BigEndian(t *testing.T) {
	buf := make([]byte, 14)
	rest, _ := PutU16(buf, 0x0102)
	rest, _ = PutU32(rest, 0x03040506)
	rest, _ = PutU64(rest, 0x0708090a0b0c0d0e)
	if len(rest) != 0 {
		t.Fatalf("rest = %d, want 0", len(rest))
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}
	if !bytes.Equal(buf, want) {
		t.Errorf("buf = %v, want %v", buf, want)
	}

	a, rest, _ := U16(buf)
	b, rest, _ := U32(rest)
	c, rest, _ := U64(rest)
	if a != 0x0102 || b != 0x03040506 || c != 0x0708090a0b0c0d0e || len(rest) != 0 {
		t.Errorf("read back %x %x %x", a, b, c)
	}
}

func TestBytes_AliasesInput(t *testing.T) {
	buf := make([]byte, 8)
	if _, err := PutBytes(buf, []byte("abc")); err != nil {
		t.Fatal(err)
	}
	b, rest, err := Bytes(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "abc" || len(rest) != 4 {
		t.Fatalf("b = %q rest = %d", b, len(rest))
	}
	if &b[0] != &buf[1] {
		t.Error("decoded bytes do not alias the input")
	}
	if cap(b) != 3 {
		t.Errorf("cap = %d, want 3", cap(b))
	}
}

func TestBytes_LengthBeyondInput(t *testing.T) {
	_, _, err := Bytes([]byte{5, 'a', 'b'})
	if !errors.Is(err, ErrLengthOverflow) {
		t.Errorf("err = %v, want ErrLengthOverflow", err)
	}
	var se *SizeError
	if !errors.As(err, &se) || se.Want != 5 || se.Have != 2 {
		t.Errorf("err = %#v, want 5 bytes needed, 2 left", err)
	}
}

func TestFixedWidth_ShortInputSizes(t *testing.T) {
	tests := []struct {
		name string
		read func([]byte) error
		in   []byte
		want int
	}{
		{"u8", func(b []byte) error { _, _, err := U8(b); return err }, nil, 1},
		{"u16", func(b []byte) error { _, _, err := U16(b); return err }, []byte{1}, 2},
		{"u32", func(b []byte) error { _, _, err := U32(b); return err }, []byte{1, 2, 3}, 4},
		{"u64", func(b []byte) error { _, _, err := U64(b); return err }, []byte{1, 2}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var se *SizeError
			err := tt.read(tt.in)
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *SizeError", err)
			}
			if se.Want != tt.want || se.Have != len(tt.in) || !errors.Is(err, ErrShortInput) {
				t.Errorf("err = %#v, want %d needed, %d left", se, tt.want, len(tt.in))
			}
		})
	}
}

func TestPresence_RejectsUnknownTag(t *testing.T) {
	if _, _, err := Presence([]byte{2}); !errors.Is(err, ErrBadPresence) {
		t.Errorf("err = %v, want ErrBadPresence", err)
	}
}

func TestZigZag(t *testing.T) {
	for _, v := range []int64{0, -1, 1, -64, 63, math.MinInt64, math.MaxInt64} {
		if got := UnZigZag(ZigZag(v)); got != v {
			t.Errorf("UnZigZag(ZigZag(%d)) = %d", v, got)
		}
	}
	if ZigZag(-1) != 1 || ZigZag(1) != 2 {
		t.Errorf("unexpected zigzag mapping")
	}
}

func TestSafeArithmetic(t *testing.T) {
	if _, ok := SafeAdd(math.MaxInt, 1); ok {
		t.Error("SafeAdd should overflow")
	}
	if v, ok := SafeMul(3, 4); !ok || v != 12 {
		t.Errorf("SafeMul(3,4) = %d, %v", v, ok)
	}
	if _, ok := SafeMul(math.MaxInt/2, 3); ok {
		t.Error("SafeMul should overflow")
	}
}
