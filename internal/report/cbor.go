package report

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var cborEnc = mustEncMode()

func mustEncMode() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor enc mode: %v", err))
	}
	return em
}

// MarshalCBOR encodes r with deterministic map ordering and RFC 3339 timestamps.
func (r Report) MarshalCBOR() ([]byte, error) {
	type plain Report
	return cborEnc.Marshal(plain(r))
}

// UnmarshalCBOR decodes a report written by MarshalCBOR.
func (r *Report) UnmarshalCBOR(data []byte) error {
	type plain Report
	return cbor.Unmarshal(data, (*plain)(r))
}
