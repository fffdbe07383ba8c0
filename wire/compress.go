package wire

import (
	"github.com/klauspost/compress/s2"
)

// CompressEnvelope wraps an encoded sketch with S2 block compression. Large
// sparsely-populated sketches (common right after allocation, before much
// load has accumulated) compress well since their cell arrays are mostly
// zero.
func CompressEnvelope(encoded []byte) []byte {
	return s2.Encode(nil, encoded)
}

// DecompressEnvelope reverses CompressEnvelope.
func DecompressEnvelope(envelope []byte) ([]byte, error) {
	return s2.Decode(nil, envelope)
}
