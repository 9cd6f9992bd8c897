// Payload codecs.
//
// A payload is compressed, then Ascii85-encoded into printable text with
// no newlines, so a record stays on one line. The JSON encoder escapes the
// quotes and backslashes Ascii85 can produce. The codec is fixed per
// archive by the header's _c field.
package store

import (
	"bytes"
	"encoding/ascii85"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression codecs, selectable with Config.Compression.
const (
	CompressZstd = 1
	CompressLZ4  = 2
)

// Shared zstd encoder and decoder; both are safe for concurrent use.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

func validCompression(c int) bool {
	return c == CompressZstd || c == CompressLZ4
}

func compress(data []byte, codec int) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	var compressed []byte
	switch codec {
	case CompressLZ4:
		var err error
		if compressed, err = lz4Block(data); err != nil {
			return "", err
		}
	default:
		compressed = zstdEncoder.EncodeAll(data, nil)
	}

	var encoded bytes.Buffer
	enc := ascii85.NewEncoder(&encoded)
	_, _ = enc.Write(compressed)
	_ = enc.Close()
	return encoded.String(), nil
}

func decompress(encoded string, codec int) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}

	compressed, err := io.ReadAll(ascii85.NewDecoder(bytes.NewReader([]byte(encoded))))
	if err != nil {
		return nil, fmt.Errorf("%w: ascii85: %w", ErrDecompress, err)
	}

	switch codec {
	case CompressLZ4:
		return lz4Unblock(compressed)
	default:
		out, err := zstdDecoder.DecodeAll(compressed, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrDecompress, err)
		}
		return out, nil
	}
}

// lz4Block compresses data as a raw LZ4 block prefixed by its decoded
// length. Incompressible input is stored with a zero compressed marker.
func lz4Block(data []byte) ([]byte, error) {
	out := make([]byte, 8+lz4.CompressBlockBound(len(data)))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(data)))

	n, err := lz4.CompressBlock(data, out[8:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	if n == 0 {
		binary.LittleEndian.PutUint32(out[4:8], 0)
		return append(out[:8], data...), nil
	}
	binary.LittleEndian.PutUint32(out[4:8], uint32(n))
	return out[:8+n], nil
}

func lz4Unblock(block []byte) ([]byte, error) {
	if len(block) < 8 {
		return nil, fmt.Errorf("%w: lz4: short block", ErrDecompress)
	}
	size := binary.LittleEndian.Uint32(block[0:4])
	if binary.LittleEndian.Uint32(block[4:8]) == 0 {
		return block[8:], nil
	}

	out := make([]byte, size)
	n, err := lz4.UncompressBlock(block[8:], out)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %w", ErrDecompress, err)
	}
	return out[:n], nil
}
