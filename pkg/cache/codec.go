package cache

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// ErrCorrupt is returned when a cached block cannot be decoded.
var ErrCorrupt = errors.New("corrupt cache block")

// compress encodes data as an lz4 block prefixed with the uvarint length of
// the original. Incompressible input is stored raw behind a zero length.
func compress(data []byte) []byte {
	header := binary.AppendUvarint(nil, uint64(len(data)))

	if len(data) == 0 {
		return header
	}

	out := make([]byte, len(header), len(header)+lz4.CompressBlockBound(len(data)))
	copy(out, header)

	written, err := lz4.CompressBlock(data, out[len(header):cap(out)], nil)
	if err != nil || written == 0 || written >= len(data) {
		return append(binary.AppendUvarint(nil, 0), data...)
	}

	return out[:len(header)+written]
}

func decompress(block []byte) ([]byte, error) {
	size, n := binary.Uvarint(block)
	if n <= 0 {
		return nil, fmt.Errorf("%w: bad header", ErrCorrupt)
	}

	payload := block[n:]

	if size == 0 {
		return append([]byte(nil), payload...), nil
	}

	out := make([]byte, size)

	written, err := lz4.UncompressBlock(payload, out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if uint64(written) != size {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrCorrupt, written, size)
	}

	return out, nil
}
