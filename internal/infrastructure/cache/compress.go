package cache

import (
	"github.com/klauspost/compress/zstd"
)

// codec wraps a shared zstd encoder/decoder pair. Both are safe for
// concurrent EncodeAll/DecodeAll calls.
type codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCodec() *codec {
	// Options are static and valid, so construction cannot fail.
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	dec, _ := zstd.NewReader(nil)
	return &codec{enc: enc, dec: dec}
}

func (c *codec) encode(src []byte) []byte {
	return c.enc.EncodeAll(src, make([]byte, 0, len(src)/2))
}

func (c *codec) decode(src []byte) ([]byte, error) {
	return c.dec.DecodeAll(src, nil)
}
