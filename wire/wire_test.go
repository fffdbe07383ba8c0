package wire

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-ibf/ibf"
	"github.com/spacemeshos/go-ibf/ibfkv"
)

func records(n int, offset uint64) []ibf.Record {
	out := make([]ibf.Record, n)
	for i := 0; i < n; i++ {
		id := offset + uint64(i)
		out[i] = ibf.Record{ID: id, Value: []byte(fmt.Sprintf("v-%d", id))}
	}
	return out
}

func TestEncodeDecodeIBFRoundTrip(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	f := ibf.New(cfg, 64, false)
	for _, r := range records(20, 1) {
		f.Add(r)
	}
	buf, err := EncodeIBF(f, nil)
	require.NoError(t, err)

	decoded, err := DecodeIBF(buf, cfg)
	require.NoError(t, err)
	assert.Equal(t, f.Cells(), decoded.Cells())
	assert.Equal(t, f.M(), decoded.M())
	assert.Equal(t, f.Capacity(), decoded.Capacity())
	assert.Equal(t, f.ItemCount(), decoded.ItemCount())
	assert.Equal(t, f.IsReverse(), decoded.IsReverse())
}

func TestEncodeIBFRejectsNestedSubSketch(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	primary := ibf.New(cfg, 32, false)
	sub := ibf.New(cfg, 32, true)

	buf, err := EncodeIBF(primary, sub)
	require.NoError(t, err)
	_, err = DecodeIBF(buf, cfg)
	assert.Error(t, err, "a standalone decode must reject a present sub-sketch")
}

func TestEncodeDecodePairedRoundTrip(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	p := ibfkv.New(cfg, 64)
	for _, r := range records(15, 1) {
		p.Add(r)
	}
	buf, err := EncodePaired(p)
	require.NoError(t, err)

	decoded, err := DecodePaired(buf, cfg)
	require.NoError(t, err)
	assert.Equal(t, p.Primary.Cells(), decoded.Primary.Cells())
	assert.Equal(t, p.Reverse.Cells(), decoded.Reverse.Cells())
}

func TestDecodePairedMissingReverseErrors(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	standalone := ibf.New(cfg, 32, false)
	buf, err := EncodeIBF(standalone, nil)
	require.NoError(t, err)
	_, err = DecodePaired(buf, cfg)
	assert.Error(t, err)
}

func TestCompressDecompressEnvelopeRoundTrip(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	f := ibf.New(cfg, 512, false)
	for _, r := range records(5, 1) {
		f.Add(r)
	}
	buf, err := EncodeIBF(f, nil)
	require.NoError(t, err)

	compressed := CompressEnvelope(buf)
	decompressed, err := DecompressEnvelope(compressed)
	require.NoError(t, err)
	assert.Equal(t, buf, decompressed)
}
