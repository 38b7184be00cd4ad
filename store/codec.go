package store

import (
	"bytes"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/YuminosukeSato/linearsvm/liblinear"
	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

const (
	envelopeVersion = 1
	headerSize      = 22
	maxPayloadSize  = 1 << 30
)

var magic = [4]byte{'L', 'S', 'V', 'M'}

// ErrCorrupt marks an envelope that failed structural or checksum checks.
var ErrCorrupt = perrors.New("store: corrupt model payload")

// Codec converts models to and from the envelope format.
// The zero value writes uncompressed envelopes.
type Codec struct {
	Compression Compression
}

// Encode serializes m into an envelope.
func (c Codec) Encode(m *liblinear.Model) ([]byte, error) {
	var raw bytes.Buffer
	if err := liblinear.WriteModel(&raw, m); err != nil {
		return nil, err
	}
	return c.Seal(raw.Bytes())
}

// Seal wraps an already-written text model. When the compressor reports
// that the payload does not shrink, the envelope is written uncompressed.
func (c Codec) Seal(raw []byte) ([]byte, error) {
	comp, ok := compressorFor(c.Compression)
	if !ok {
		return nil, perrors.NewValidationError("compression", "unknown compression", c.Compression.String())
	}
	mode := c.Compression
	payload, err := comp.compress(raw)
	if err != nil {
		return nil, err
	}
	if payload == nil && len(raw) > 0 {
		mode, payload = CompressionNone, raw
	}

	out := make([]byte, headerSize+len(payload))
	copy(out[0:4], magic[:])
	out[4] = envelopeVersion
	out[5] = byte(mode)
	binary.BigEndian.PutUint64(out[6:14], uint64(len(raw)))
	binary.BigEndian.PutUint64(out[14:22], xxhash.Sum64(raw))
	copy(out[headerSize:], payload)
	return out, nil
}

// Open validates an envelope and returns the uncompressed text model.
func (Codec) Open(data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, perrors.Wrapf(ErrCorrupt, "envelope is %d bytes, shorter than its header", len(data))
	}
	if !bytes.Equal(data[0:4], magic[:]) {
		return nil, perrors.Wrap(ErrCorrupt, "bad magic")
	}
	if data[4] != envelopeVersion {
		return nil, perrors.Wrapf(ErrCorrupt, "unsupported envelope version %d", data[4])
	}
	comp, ok := compressorFor(Compression(data[5]))
	if !ok {
		return nil, perrors.Wrapf(ErrCorrupt, "unknown compression %d", data[5])
	}
	rawLen := binary.BigEndian.Uint64(data[6:14])
	if rawLen > maxPayloadSize {
		return nil, perrors.Wrapf(ErrCorrupt, "payload length %d exceeds limit", rawLen)
	}
	sum := binary.BigEndian.Uint64(data[14:22])

	raw, err := comp.decompress(data[headerSize:], int(rawLen))
	if err != nil {
		return nil, perrors.Wrap(perrors.Mark(err, ErrCorrupt), "decompress")
	}
	if uint64(len(raw)) != rawLen {
		return nil, perrors.Wrapf(ErrCorrupt, "payload length %d, header says %d", len(raw), rawLen)
	}
	if xxhash.Sum64(raw) != sum {
		return nil, perrors.Wrap(ErrCorrupt, "checksum mismatch")
	}
	return raw, nil
}

// Decode opens an envelope and parses the model inside it.
func (c Codec) Decode(data []byte) (*liblinear.Model, error) {
	raw, err := c.Open(data)
	if err != nil {
		return nil, err
	}
	m, err := liblinear.ReadModel(bytes.NewReader(raw))
	if err != nil {
		return nil, perrors.Wrap(perrors.Mark(err, ErrCorrupt), "parse model")
	}
	return m, nil
}
