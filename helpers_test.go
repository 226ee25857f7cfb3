package rawcodec

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/zeebo/blake3"

	"github.com/wippyai/rawcodec/errors"
	"github.com/wippyai/rawcodec/internal/wire"
)

// point encodes two big-endian u32 values; the hash form drops Label.
type point struct {
	X, Y  uint32
	Label string
}

func (p *point) RawMeasure(purpose Purpose) (int, error) {
	if purpose == PurposeHash {
		return 8, nil
	}
	return 8 + wire.BytesSize(len(p.Label)), nil
}

func (p *point) RawEncode(buf []byte, purpose Purpose) ([]byte, error) {
	size, _ := p.RawMeasure(purpose)
	if len(buf) < size {
		return buf, errors.OutOfLimit(errors.PhaseEncode, nil, size, len(buf))
	}
	buf, _ = wire.PutU32(buf, p.X)
	buf, _ = wire.PutU32(buf, p.Y)
	if purpose == PurposeHash {
		return buf, nil
	}
	return wire.PutString(buf, p.Label)
}

func (p *point) RawDecode(buf []byte) ([]byte, error) {
	var err error
	if p.X, buf, err = wire.U32(buf); err != nil {
		return buf, err
	}
	if p.Y, buf, err = wire.U32(buf); err != nil {
		return buf, err
	}
	label, rest, err := wire.Bytes(buf)
	if err != nil {
		return buf, err
	}
	p.Label = string(label)
	return rest, nil
}

// versioned records the option it was decoded with.
type versioned struct {
	point
	opt DecodeOption
}

func (v *versioned) RawDecodeWithOption(buf []byte, opt DecodeOption) ([]byte, error) {
	v.opt = opt
	return v.point.RawDecode(buf)
}

// liar measures one byte more than it writes.
type liar struct{}

func (liar) RawMeasure(Purpose) (int, error) { return 3, nil }
func (liar) RawEncode(buf []byte, _ Purpose) ([]byte, error) {
	return wire.PutU16(buf, 7)
}

func TestEncodeToBuffer_ExactSize(t *testing.T) {
	p := &point{X: 1, Y: 2, Label: "origin"}
	data, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) != 15 {
		t.Fatalf("len = %d, want 15", len(data))
	}

	var got point
	if err := Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != *p {
		t.Errorf("got %+v, want %+v", got, *p)
	}
}

func TestEncodeToBuffer_PanicsOnSizeMismatch(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		v, ok := r.(*errors.InvariantViolation)
		if !ok {
			t.Fatalf("panic value %T, want *errors.InvariantViolation", r)
		}
		if v.Want != 3 || v.Got != 2 {
			t.Errorf("violation = %+v", v)
		}
	}()
	_, _ = EncodeToBuffer(liar{}, PurposeSerialize)
}

func TestRawEncode_OutOfLimit(t *testing.T) {
	p := &point{X: 1, Y: 2}
	_, err := p.RawEncode(make([]byte, 4), PurposeSerialize)
	if errors.CodeOf(err) != errors.CodeOutOfLimit {
		t.Errorf("err = %v, want out_of_limit", err)
	}
}

func TestHashEncode_DropsExcluded(t *testing.T) {
	a := &point{X: 5, Y: 6, Label: "a"}
	b := &point{X: 5, Y: 6, Label: "b"}

	ha, err := HashEncode(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, _ := HashEncode(b)
	if !bytes.Equal(ha, hb) {
		t.Errorf("hash encodings differ: %x vs %x", ha, hb)
	}

	ok, err := MergeOK(a, b)
	if err != nil || !ok {
		t.Errorf("MergeOK = %v, %v", ok, err)
	}

	d, err := Digest(a)
	if err != nil {
		t.Fatal(err)
	}
	if d != blake3.Sum256(ha) {
		t.Error("Digest does not hash the hash encoding")
	}
}

func TestTailEncode(t *testing.T) {
	buf := make([]byte, 64)
	out, err := TailEncode(&point{X: 1, Y: 1, Label: "xy"}, buf, PurposeSerialize)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 11 {
		t.Errorf("len = %d, want 11", len(out))
	}
	if &out[0] != &buf[0] {
		t.Error("TailEncode should return a prefix of buf")
	}
}

func TestDecodeWithOption(t *testing.T) {
	data, _ := Marshal(&point{X: 9, Y: 8, Label: "v"})

	var v versioned
	rest, err := DecodeWithOption(&v, data, DecodeOption{Version: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 || v.opt.Version != 2 || v.X != 9 {
		t.Errorf("got %+v rest=%d", v, len(rest))
	}

	var p point
	if _, err := DecodeWithOption(&p, data, DecodeOption{Version: 2}); err != nil || p.Y != 8 {
		t.Errorf("fallback decode = %+v, %v", p, err)
	}
}

func TestUnmarshal_TrailingBytes(t *testing.T) {
	data, _ := Marshal(&point{Label: "x"})
	data = append(data, 0xff)

	var p point
	if err := Unmarshal(data, &p); errors.CodeOf(err) != errors.CodeInvalidFormat {
		t.Errorf("err = %v, want invalid_format", err)
	}
	if err := DecodeSlice(data, &p); err != nil {
		t.Errorf("DecodeSlice: %v", err)
	}
}

func TestHex_RoundTrip(t *testing.T) {
	s, err := ToHex(&point{X: 0x0a, Y: 0xff})
	if err != nil {
		t.Fatal(err)
	}
	if s != "0000000a000000ff00" {
		t.Errorf("ToHex = %q", s)
	}
	var p point
	if err := FromHex(s, &p); err != nil || p.Y != 0xff {
		t.Errorf("FromHex = %+v, %v", p, err)
	}
	if err := FromHex("zz", &p); errors.CodeOf(err) != errors.CodeInvalidFormat {
		t.Errorf("FromHex(bad) err = %v", err)
	}
}

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "point.bin")
	if err := WriteFile(path, &point{X: 3, Y: 4, Label: "file"}); err != nil {
		t.Fatal(err)
	}
	var p point
	if err := ReadFile(path, &p); err != nil {
		t.Fatal(err)
	}
	if p.Label != "file" || p.X != 3 {
		t.Errorf("ReadFile = %+v", p)
	}

	err := ReadFile(filepath.Join(t.TempDir(), "missing"), &p)
	if errors.CodeOf(err) != errors.CodeNotFound {
		t.Errorf("missing file err = %v, want not_found", err)
	}
}

func TestWriteToReadFrom(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteTo(&buf, &point{X: 1, Label: "io"})
	if err != nil || n != 11 {
		t.Fatalf("WriteTo = %d, %v", n, err)
	}
	var p point
	if _, err := ReadFrom(&buf, &p); err != nil || p.Label != "io" {
		t.Errorf("ReadFrom = %+v, %v", p, err)
	}
}

func TestDecodeOption_Wire(t *testing.T) {
	opt := DecodeOption{Version: 3, Format: FormatJSON}
	data, err := Marshal(opt)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{3, 2}) {
		t.Errorf("wire = %v", data)
	}
	var got DecodeOption
	if err := Unmarshal(data, &got); err != nil || got != opt {
		t.Errorf("got %+v, %v", got, err)
	}
	for _, b := range []byte{3, 0xff} {
		got = DecodeOption{}
		err := Unmarshal([]byte{1, b}, &got)
		if errors.CodeOf(err) != errors.CodeNotSupport {
			t.Errorf("format byte %d: err = %v, want not_support", b, err)
		}
		if got != (DecodeOption{}) {
			t.Errorf("format byte %d: option changed to %+v", b, got)
		}
	}
}

func TestView_Borrowed(t *testing.T) {
	src := []byte{0xaa, 3, 'a', 'b', 'c', 0xbb}

	var v View
	rest, err := v.RawDecode(src[1:])
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "abc" || v.Len() != 3 || len(rest) != 1 {
		t.Fatalf("view = %q len=%d rest=%d", v.String(), v.Len(), len(rest))
	}
	if &v.Bytes()[0] != &src[2] {
		t.Error("view does not alias its source")
	}
	owned := v.Clone()
	src[2] = 'z'
	if v.String() != "zbc" || string(owned) != "abc" {
		t.Errorf("view = %q owned = %q", v.String(), owned)
	}

	data, err := Marshal(v)
	if err != nil || !bytes.Equal(data, []byte{3, 'z', 'b', 'c'}) {
		t.Errorf("Marshal(view) = %v, %v", data, err)
	}
}
