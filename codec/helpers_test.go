package codec

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/errors"
)

type scalars struct {
	B   bool
	U8  uint8
	S8  int8
	U16 uint16
	S16 int16
	U32 uint32
	S32 int32
	U64 uint64
	S64 int64
	I   int
	F32 float32
	F64 float64
}

type document struct {
	Title  string
	Body   []byte
	Tags   []string
	Counts map[string]uint32
	Digest [4]byte
	Parent *document
	Score  *float64
}

type node struct {
	Value uint32
	Next  *node
}

type account struct {
	ID      uint64
	Name    string
	Updated int64 `raw:",skip_hash"`
}

type profileV1 struct{}

type profileV2 struct {
	Nick  *string
	Level *uint32
}

type orderV1 struct {
	ID uint32
}

type orderV2 struct {
	ID    uint32
	Note  *string
	Items uint16 `raw:",default"`
}

type settings struct {
	_       struct{} `raw:",default=Defaults"`
	Port    uint16
	Host    string
	Verbose bool
}

func (*settings) Defaults() settings {
	return settings{Port: 8080, Host: "localhost"}
}

type limits struct {
	Max   uint32 `raw:",default=DefaultMax"`
	Burst uint32 `raw:",default=burst"`
}

func (*limits) DefaultMax() uint32 { return 100 }

type cached struct {
	Key   string
	Value string `raw:",skip"`
	Hits  uint32 `raw:",skip_deserializing"`
	Seen  bool
}

type sparse struct {
	_ struct{} `raw:",optimize_option"`
	A *uint8
	B uint8
	C *uint16
}

type maybeByte struct {
	A *uint8
}

type counted struct {
	N   uint32
	Tag *uint8
}

type wide struct {
	A uint32
	B uint64
}

type borrowed struct {
	Name  string `raw:",borrow"`
	Data  []byte `raw:",borrow"`
	Copy  string
	Owned []byte
	Raw   rawcodec.View
}

// stamp writes itself as one byte and reads the version it was decoded
// with from the decode option.
type stamp struct {
	Value   uint8
	Version uint8
}

func (s stamp) RawMeasure(rawcodec.Purpose) (int, error) { return 1, nil }

func (s stamp) RawEncode(buf []byte, _ rawcodec.Purpose) ([]byte, error) {
	if len(buf) < 1 {
		return buf, errors.OutOfLimit(errors.PhaseEncode, nil, 1, len(buf))
	}
	buf[0] = s.Value
	return buf[1:], nil
}

func (s *stamp) RawDecode(buf []byte) ([]byte, error) {
	return s.RawDecodeWithOption(buf, rawcodec.DecodeOption{})
}

func (s *stamp) RawDecodeWithOption(buf []byte, opt rawcodec.DecodeOption) ([]byte, error) {
	if len(buf) < 1 {
		return buf, errors.Truncated(errors.PhaseDecode, nil, 1, 0)
	}
	s.Value, s.Version = buf[0], opt.Version
	return buf[1:], nil
}

type envelope struct {
	Kind  string
	Stamp stamp
	Tail  []stamp
}

func ptr[T any](v T) *T {
	return &v
}

func requireCode(t *testing.T, err error, want errors.Code) *errors.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("error %T is not *errors.Error: %v", err, err)
	}
	if e.Code != want {
		t.Fatalf("code = %s, want %s (%v)", e.Code, want, err)
	}
	return e
}
