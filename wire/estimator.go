package wire

import (
	"bytes"
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-ibf/estimator"
	"github.com/spacemeshos/go-ibf/ibf"
	"github.com/spacemeshos/go-ibf/minwise"
	"github.com/spacemeshos/go-ibf/strata"
)

// EncodeHybrid serializes a hybrid estimator: itemCount, strataCount (the
// fixed 32), 32 mini-IBF layouts, then the minwise sketch.
func EncodeHybrid(h *estimator.HybridEstimator) ([]byte, error) {
	var buf bytes.Buffer
	enc := scale.NewEncoder(&buf)
	if _, err := scale.EncodeUint64(enc, uint64(h.ItemCount())); err != nil {
		return nil, err
	}
	if _, err := scale.EncodeUint32(enc, uint32(strata.Levels)); err != nil {
		return nil, err
	}
	for i := 0; i < strata.Levels; i++ {
		level := h.Strata().Level(i)
		if _, err := scale.EncodeByte(enc, 1); err != nil {
			return nil, err
		}
		if err := encodeIBF(enc, level, nil); err != nil {
			return nil, err
		}
	}
	mw := h.Minwise()
	if err := encodeMinwise(enc, mw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeMinwise(enc *scale.Encoder, mw *minwise.Estimator) error {
	if _, err := scale.EncodeByte(enc, uint8(mw.BitSize())); err != nil {
		return err
	}
	if _, err := scale.EncodeUint64(enc, uint64(mw.Capacity())); err != nil {
		return err
	}
	if _, err := scale.EncodeUint32(enc, uint32(mw.HashCount())); err != nil {
		return err
	}
	if _, err := scale.EncodeUint64(enc, uint64(mw.ItemCount())); err != nil {
		return err
	}
	packed := mw.PackedBits()
	if _, err := scale.EncodeUint32(enc, uint32(len(packed))); err != nil {
		return err
	}
	for _, b := range packed {
		if _, err := scale.EncodeByte(enc, b); err != nil {
			return err
		}
	}
	return nil
}

// DecodeHybrid deserializes a hybrid estimator built with cfg as the IBF
// configuration for each stratum's mini-IBF.
func DecodeHybrid(buf []byte, cfg ibf.Config) (*estimator.HybridEstimator, error) {
	dec := scale.NewDecoder(bytes.NewReader(buf))
	itemCount, _, err := scale.DecodeUint64(dec)
	if err != nil {
		return nil, err
	}
	strataCount, _, err := scale.DecodeUint32(dec)
	if err != nil {
		return nil, err
	}
	if strataCount != strata.Levels {
		return nil, fmt.Errorf("wire: unexpected strata count %d", strataCount)
	}
	var levels [strata.Levels]*ibf.IBF
	var capacity int
	for i := 0; i < strata.Levels; i++ {
		present, _, err := scale.DecodeByte(dec)
		if err != nil {
			return nil, err
		}
		if present == 0 {
			continue
		}
		level, sub, err := decodeIBF(dec, cfg)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			return nil, fmt.Errorf("wire: strata mini-IBF must not carry a sub-sketch")
		}
		levels[i] = level
		capacity = level.Capacity()
	}
	s := strata.FromLevels(cfg, levels)

	mw, err := decodeMinwise(dec)
	if err != nil {
		return nil, err
	}
	return estimator.FromWire(cfg, capacity, int64(itemCount), s, mw), nil
}

func decodeMinwise(dec *scale.Decoder) (*minwise.Estimator, error) {
	bitSize, _, err := scale.DecodeByte(dec)
	if err != nil {
		return nil, err
	}
	capacity, _, err := scale.DecodeUint64(dec)
	if err != nil {
		return nil, err
	}
	hashCount, _, err := scale.DecodeUint32(dec)
	if err != nil {
		return nil, err
	}
	itemCount, _, err := scale.DecodeUint64(dec)
	if err != nil {
		return nil, err
	}
	packedLen, _, err := scale.DecodeUint32(dec)
	if err != nil {
		return nil, err
	}
	packed := make([]byte, packedLen)
	for i := range packed {
		b, _, err := scale.DecodeByte(dec)
		if err != nil {
			return nil, err
		}
		packed[i] = b
	}
	return minwise.FromWire(int(bitSize), int(hashCount), int(capacity), int64(itemCount), packed), nil
}
