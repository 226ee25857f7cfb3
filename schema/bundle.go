package schema

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/rawcodec/errors"
)

var (
	bundleEnc cbor.EncMode
	bundleDec cbor.DecMode
)

func init() {
	var err error
	bundleEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("schema: cbor encoder: " + err.Error())
	}
	bundleDec, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("schema: cbor decoder: " + err.Error())
	}
}

// BundleVersion is written into every bundle and checked on load.
const BundleVersion = 1

// Bundle is a set of resolved plans persisted by a build step and loaded at
// startup, so programs never resolve declarations themselves.
type Bundle struct {
	Version int     `cbor:"v"`
	Plans   []*Plan `cbor:"plans"`
}

// MarshalBundle encodes plans with deterministic CBOR: identical plans give
// identical bytes.
func MarshalBundle(plans []*Plan) ([]byte, error) {
	data, err := bundleEnc.Marshal(Bundle{Version: BundleVersion, Plans: plans})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.CodeFailed, err, "marshal plan bundle")
	}
	return data, nil
}

// UnmarshalBundle decodes a bundle written by MarshalBundle.
func UnmarshalBundle(data []byte) ([]*Plan, error) {
	var b Bundle
	if err := bundleDec.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.CodeInvalidFormat, err, "unmarshal plan bundle")
	}
	if b.Version != BundleVersion {
		return nil, errors.New(errors.PhaseDecode, errors.CodeNotSupport).
			Value(b.Version).
			Detail("plan bundle version %d, want %d", b.Version, BundleVersion).
			Build()
	}
	return b.Plans, nil
}
