package wire

import (
	"bytes"
	"testing"

	"github.com/spacemeshos/go-scale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-ibf/estimator"
	"github.com/spacemeshos/go-ibf/ibf"
)

func TestEncodeDecodeHybridRoundTrip(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	h := estimator.New(cfg, 500, 2, 32, 500, 9)
	for _, r := range records(200, 1) {
		h.Add(r)
	}

	buf, err := EncodeHybrid(h)
	require.NoError(t, err)

	decoded, err := DecodeHybrid(buf, cfg)
	require.NoError(t, err)
	assert.Equal(t, h.ItemCount(), decoded.ItemCount())
	assert.Equal(t, h.Minwise().PackedBits(), decoded.Minwise().PackedBits())
	for i := 0; i < 32; i++ {
		assert.Equal(t, h.Strata().Level(i).Cells(), decoded.Strata().Level(i).Cells())
	}
}

func TestDecodeHybridRejectsWrongStrataCount(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	var buf bytes.Buffer
	enc := scale.NewEncoder(&buf)
	_, err := scale.EncodeUint64(enc, 0)
	require.NoError(t, err)
	_, err = scale.EncodeUint32(enc, 31)
	require.NoError(t, err)
	_, err = DecodeHybrid(buf.Bytes(), cfg)
	assert.Error(t, err)
}
