package message

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/golang/snappy"
)

// Envelope layout: [format:1][crc32:4][body]. The checksum covers body as
// stored, so it is verified before decompression.
const (
	formatJSON   byte = 0
	formatSnappy byte = 1

	headerSize = 5

	// CompressThreshold is the body size from which Encode tries snappy
	CompressThreshold = 256
)

// Sentinel errors
var (
	ErrShortEnvelope    = errors.New("envelope too short")
	ErrUnknownFormat    = errors.New("unknown envelope format")
	ErrChecksumMismatch = errors.New("envelope checksum mismatch")
)

// Encode serialises m. Bodies of at least CompressThreshold bytes are
// snappy-compressed when that makes them smaller.
func Encode(m *Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	format := formatJSON
	if len(body) >= CompressThreshold {
		if compressed := snappy.Encode(nil, body); len(compressed) < len(body) {
			body, format = compressed, formatSnappy
		}
	}

	out := make([]byte, headerSize, headerSize+len(body))
	out[0] = format
	binary.BigEndian.PutUint32(out[1:headerSize], crc32.ChecksumIEEE(body))
	return append(out, body...), nil
}

// Decode parses an envelope produced by Encode
func Decode(data []byte) (*Message, error) {
	if len(data) < headerSize {
		return nil, ErrShortEnvelope
	}
	body := data[headerSize:]
	if crc32.ChecksumIEEE(body) != binary.BigEndian.Uint32(data[1:headerSize]) {
		return nil, ErrChecksumMismatch
	}

	switch data[0] {
	case formatJSON:
	case formatSnappy:
		decoded, err := snappy.Decode(nil, body)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress message: %w", err)
		}
		body = decoded
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, data[0])
	}

	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	return &m, nil
}

// Compressed reports whether an encoded envelope uses snappy
func Compressed(data []byte) bool {
	return len(data) > 0 && data[0] == formatSnappy
}
