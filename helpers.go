package rawcodec

import (
	"bytes"
	"encoding/hex"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/wippyai/rawcodec/errors"
)

// EncodeToBuffer measures v, allocates exactly that many bytes and encodes
// into them. An encoder that leaves part of the buffer unused contradicts its
// own measure and triggers a panic.
func EncodeToBuffer(v Encoder, purpose Purpose) ([]byte, error) {
	size, err := v.RawMeasure(purpose)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	rest, err := v.RawEncode(buf, purpose)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		panic(errors.SizeMismatch("EncodeToBuffer", size, size-len(rest)))
	}
	return buf, nil
}

// Marshal is EncodeToBuffer for PurposeSerialize.
func Marshal(v Encoder) ([]byte, error) {
	return EncodeToBuffer(v, PurposeSerialize)
}

// HashEncode is EncodeToBuffer for PurposeHash.
func HashEncode(v Encoder) ([]byte, error) {
	return EncodeToBuffer(v, PurposeHash)
}

// TailEncode encodes v into buf and returns exactly the written prefix.
func TailEncode(v Encoder, buf []byte, purpose Purpose) ([]byte, error) {
	rest, err := v.RawEncode(buf, purpose)
	if err != nil {
		return nil, err
	}
	return buf[:len(buf)-len(rest)], nil
}

// DecodeWithOption decodes with opt when v understands options and falls
// back to plain RawDecode otherwise.
func DecodeWithOption(v Decoder, buf []byte, opt DecodeOption) ([]byte, error) {
	if od, ok := v.(OptionDecoder); ok {
		return od.RawDecodeWithOption(buf, opt)
	}
	return v.RawDecode(buf)
}

// Unmarshal decodes data into v and rejects trailing bytes.
func Unmarshal(data []byte, v Decoder) error {
	rest, err := v.RawDecode(data)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return errors.InvalidFormat(errors.PhaseDecode, nil, "%d trailing bytes after value", len(rest))
	}
	return nil
}

// DecodeSlice decodes the leading value of data into v and ignores whatever
// follows it. The decoded value may alias data.
func DecodeSlice(data []byte, v Decoder) error {
	_, err := v.RawDecode(data)
	return err
}

// Digest returns the BLAKE3 hash of the hash-purpose encoding of v.
func Digest(v Encoder) ([32]byte, error) {
	data, err := HashEncode(v)
	if err != nil {
		return [32]byte{}, err
	}
	return blake3.Sum256(data), nil
}

// MergeOK reports whether two values are interchangeable, meaning their
// hash-purpose encodings are identical.
func MergeOK(a, b Encoder) (bool, error) {
	ea, err := HashEncode(a)
	if err != nil {
		return false, err
	}
	eb, err := HashEncode(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ea, eb), nil
}

// ToHex returns the serialized form of v as lowercase hex.
func ToHex(v Encoder) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(data), nil
}

// FromHex decodes a hex string produced by ToHex into v.
func FromHex(s string, v Decoder) error {
	data, err := hex.DecodeString(s)
	if err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.CodeInvalidFormat, err, "invalid hex")
	}
	return DecodeSlice(data, v)
}

// WriteTo writes the serialized form of v to w.
func WriteTo(w io.Writer, v Encoder) (int64, error) {
	data, err := Marshal(v)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	if err != nil {
		return int64(n), errors.FromError(err)
	}
	return int64(n), nil
}

// ReadFrom reads r to the end and decodes its content into v. The decoded
// value owns the buffer that was read.
func ReadFrom(r io.Reader, v Decoder) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return int64(len(data)), errors.FromError(err)
	}
	return int64(len(data)), DecodeSlice(data, v)
}

// WriteFile writes the serialized form of v to path, creating or truncating it.
func WriteFile(path string, v Encoder) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.FromError(err)
	}
	return nil
}

// ReadFile decodes the content of path into v.
func ReadFile(path string, v Decoder) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.FromError(err)
	}
	return DecodeSlice(data, v)
}
