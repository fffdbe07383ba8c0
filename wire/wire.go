// Package wire implements the binary serialization format for sketches:
// a fixed field order with no redundant length prefixes on the per-cell
// arrays, encoded with go-scale the same way the rest of the ecosystem's
// wire types are.
package wire

import (
	"bytes"
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-ibf/ibf"
	"github.com/spacemeshos/go-ibf/ibfcount"
	"github.com/spacemeshos/go-ibf/ibfkv"
)

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// EncodeIBF serializes f, optionally followed by a sub-sketch (used by
// EncodePaired to carry the reverse filter alongside the primary one). Pass
// sub as nil for a standalone filter.
func EncodeIBF(f *ibf.IBF, sub *ibf.IBF) ([]byte, error) {
	var buf bytes.Buffer
	enc := scale.NewEncoder(&buf)
	if err := encodeIBF(enc, f, sub); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeIBF(enc *scale.Encoder, f *ibf.IBF, sub *ibf.IBF) error {
	if _, err := scale.EncodeUint32(enc, uint32(f.K())); err != nil {
		return err
	}
	if _, err := scale.EncodeByte(enc, boolToUint8(f.IsReverse())); err != nil {
		return err
	}
	if _, err := scale.EncodeUint64(enc, uint64(f.M())); err != nil {
		return err
	}
	if _, err := scale.EncodeUint64(enc, uint64(f.Capacity())); err != nil {
		return err
	}
	if _, err := scale.EncodeUint64(enc, uint64(f.ItemCount())); err != nil {
		return err
	}
	if _, err := scale.EncodeByte(enc, uint8(f.CountKind())); err != nil {
		return err
	}
	cells := f.Cells()
	for _, c := range cells {
		if _, err := scale.EncodeUint64(enc, uint64(c.Count)); err != nil {
			return err
		}
	}
	for _, c := range cells {
		if _, err := scale.EncodeUint64(enc, c.IDSum); err != nil {
			return err
		}
	}
	for _, c := range cells {
		if _, err := scale.EncodeUint32(enc, c.HashSum); err != nil {
			return err
		}
	}
	if sub == nil {
		_, err := scale.EncodeByte(enc, 0)
		return err
	}
	if _, err := scale.EncodeByte(enc, 1); err != nil {
		return err
	}
	return encodeIBF(enc, sub, nil)
}

// DecodeIBF deserializes a standalone filter (no sub-sketch) using cfg for
// the pluggable hasher and folding strategy, which the wire format itself
// does not carry.
func DecodeIBF(buf []byte, cfg ibf.Config) (*ibf.IBF, error) {
	dec := scale.NewDecoder(bytes.NewReader(buf))
	f, sub, err := decodeIBF(dec, cfg)
	if err != nil {
		return nil, err
	}
	if sub != nil {
		return nil, fmt.Errorf("wire: unexpected sub-sketch in standalone IBF")
	}
	return f, nil
}

func decodeIBF(dec *scale.Decoder, cfg ibf.Config) (*ibf.IBF, *ibf.IBF, error) {
	k, _, err := scale.DecodeUint32(dec)
	if err != nil {
		return nil, nil, err
	}
	isReverseByte, _, err := scale.DecodeByte(dec)
	if err != nil {
		return nil, nil, err
	}
	m, _, err := scale.DecodeUint64(dec)
	if err != nil {
		return nil, nil, err
	}
	capacity, _, err := scale.DecodeUint64(dec)
	if err != nil {
		return nil, nil, err
	}
	itemCount, _, err := scale.DecodeUint64(dec)
	if err != nil {
		return nil, nil, err
	}
	countTag, _, err := scale.DecodeByte(dec)
	if err != nil {
		return nil, nil, err
	}

	cfg.K = int(k)
	cfg.CountKind = ibfcount.Kind(countTag)

	cells := make([]ibf.Cell, m)
	for i := range cells {
		c, _, err := scale.DecodeUint64(dec)
		if err != nil {
			return nil, nil, err
		}
		cells[i].Count = int64(c)
	}
	for i := range cells {
		v, _, err := scale.DecodeUint64(dec)
		if err != nil {
			return nil, nil, err
		}
		cells[i].IDSum = v
	}
	for i := range cells {
		v, _, err := scale.DecodeUint32(dec)
		if err != nil {
			return nil, nil, err
		}
		cells[i].HashSum = v
	}

	f := ibf.FromWire(cfg, int(capacity), isReverseByte != 0, cells, int64(itemCount), false)

	present, _, err := scale.DecodeByte(dec)
	if err != nil {
		return nil, nil, err
	}
	if present == 0 {
		return f, nil, nil
	}
	sub, nested, err := decodeIBF(dec, cfg)
	if err != nil {
		return nil, nil, err
	}
	if nested != nil {
		return nil, nil, fmt.Errorf("wire: sub-sketch must not itself carry a sub-sketch")
	}
	return f, sub, nil
}

// EncodePaired serializes a paired key/reverse filter: the primary filter
// with its reverse filter carried as the optional sub-sketch.
func EncodePaired(p *ibfkv.Paired) ([]byte, error) {
	return EncodeIBF(p.Primary, p.Reverse)
}

// DecodePaired deserializes a paired key/reverse filter.
func DecodePaired(buf []byte, cfg ibf.Config) (*ibfkv.Paired, error) {
	dec := scale.NewDecoder(bytes.NewReader(buf))
	primary, reverse, err := decodeIBF(dec, cfg)
	if err != nil {
		return nil, err
	}
	if reverse == nil {
		return nil, fmt.Errorf("wire: paired filter missing reverse sub-sketch")
	}
	return &ibfkv.Paired{Primary: primary, Reverse: reverse}, nil
}
