package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// Compression selects how the envelope payload is compressed.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 1
	CompressionLZ4  Compression = 2
)

// String returns "none", "zstd" or "lz4".
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression accepts "none", "zstd" or "lz4".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	}
	return 0, perrors.NewValidationError("compression", "unknown compression", s)
}

// compressor is one payload compression scheme. rawLen is the exact
// decompressed size recorded in the envelope header.
type compressor interface {
	compress(data []byte) ([]byte, error)
	decompress(data []byte, rawLen int) ([]byte, error)
}

func compressorFor(c Compression) (compressor, bool) {
	switch c {
	case CompressionNone:
		return noopCompressor{}, true
	case CompressionZstd:
		return zstdCompressor{}, true
	case CompressionLZ4:
		return lz4Compressor{}, true
	}
	return nil, false
}

type noopCompressor struct{}

func (noopCompressor) compress(data []byte) ([]byte, error) { return data, nil }

func (noopCompressor) decompress(data []byte, _ int) ([]byte, error) { return data, nil }

// zstd encoders and decoders are designed for reuse after warmup.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false), // the envelope carries its own checksum
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}
		return encoder
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(maxPayloadSize),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

type zstdCompressor struct{}

func (zstdCompressor) compress(data []byte) ([]byte, error) {
	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)
	return encoder.EncodeAll(data, nil), nil
}

func (zstdCompressor) decompress(data []byte, rawLen int) ([]byte, error) {
	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	out, err := decoder.DecodeAll(data, make([]byte, 0, rawLen))
	if err != nil {
		return nil, perrors.Wrap(err, "zstd decompression failed")
	}
	return out, nil
}

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

type lz4Compressor struct{}

// compress returns nil when the block does not shrink; the codec then
// stores the payload uncompressed.
func (lz4Compressor) compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, perrors.Wrap(err, "lz4 compression failed")
	}
	if n == 0 || n >= len(data) {
		return nil, nil
	}
	return dst[:n], nil
}

func (lz4Compressor) decompress(data []byte, rawLen int) ([]byte, error) {
	if rawLen == 0 {
		return nil, nil
	}
	buf := make([]byte, rawLen)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, perrors.Wrap(err, "lz4 decompression failed")
	}
	return buf[:n], nil
}
