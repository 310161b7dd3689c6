package blockcodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type defines the compression algorithm used for a block.
type Type uint8

const (
	// None stores the payload uncompressed.
	None Type = 0
	// LZ4 is fast block compression, good for snapshots taken on hot paths.
	LZ4 Type = 1
	// ZSTD trades speed for a better ratio.
	ZSTD Type = 2
)

const (
	// HeaderSize is the fixed size of a block header.
	HeaderSize = 9
	// MaxRawLen bounds the decoded size a header may claim.
	MaxRawLen = 1 << 30
)

var (
	// ErrUnknownType is returned for a compression type this package does not know.
	ErrUnknownType = errors.New("blockcodec: unknown compression type")
	// ErrCorrupt is returned when a block's header disagrees with its payload.
	ErrCorrupt = errors.New("blockcodec: corrupt block")
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// Compress wraps data in a block, compressing it with t when that pays off.
func Compress(data []byte, t Type) ([]byte, error) {
	return Append(nil, data, t)
}

// Append is like Compress but appends the block to dst.
func Append(dst, data []byte, t Type) ([]byte, error) {
	if uint64(len(data)) > 1<<32-1 {
		return nil, fmt.Errorf("blockcodec: payload of %d bytes exceeds block limit", len(data))
	}

	var (
		compressed []byte
		err        error
	)
	switch t {
	case None:
	case LZ4:
		compressed, err = compressLZ4(data)
	case ZSTD:
		compressed, err = compressZSTD(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
	if err != nil {
		return nil, err
	}

	// Not worth it below a 10% saving.
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		t = None
		compressed = data
	}

	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(compressed)))
	hdr[8] = byte(t)

	dst = append(dst, hdr[:]...)
	return append(dst, compressed...), nil
}

func compressLZ4(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

func compressZSTD(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

// Header is the fixed prefix of a block.
type Header struct {
	RawLen    uint32
	StoredLen uint32
	Type      Type
}

// ParseHeader validates and returns the header at the start of block without
// touching the payload. Append never stores more bytes than the raw payload,
// so a header with StoredLen > RawLen is corrupt.
func ParseHeader(block []byte) (Header, error) {
	if len(block) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes is smaller than the header", ErrCorrupt, len(block))
	}
	h := Header{
		RawLen:    binary.LittleEndian.Uint32(block[0:]),
		StoredLen: binary.LittleEndian.Uint32(block[4:]),
		Type:      Type(block[8]),
	}
	switch {
	case h.RawLen > MaxRawLen:
		return Header{}, fmt.Errorf("%w: raw length %d exceeds limit", ErrCorrupt, h.RawLen)
	case h.StoredLen > h.RawLen:
		return Header{}, fmt.Errorf("%w: stored length %d exceeds raw length %d", ErrCorrupt, h.StoredLen, h.RawLen)
	case h.Type == None && h.StoredLen != h.RawLen:
		return Header{}, fmt.Errorf("%w: raw block length %d != %d", ErrCorrupt, h.StoredLen, h.RawLen)
	case h.Type > ZSTD:
		return Header{}, fmt.Errorf("%w: %d", ErrUnknownType, uint8(h.Type))
	}
	return h, nil
}

// Decompress decodes a single block and returns its raw payload together with
// the number of bytes of block consumed.
func Decompress(block []byte) (raw []byte, n int, err error) {
	h, err := ParseHeader(block)
	if err != nil {
		return nil, 0, err
	}
	return decompress(block, h)
}

// DecompressExpect is Decompress for callers that know the raw size. A block
// whose header claims any other size is rejected before anything is allocated.
func DecompressExpect(block []byte, rawLen int) (raw []byte, n int, err error) {
	h, err := ParseHeader(block)
	if err != nil {
		return nil, 0, err
	}
	if int64(h.RawLen) != int64(rawLen) {
		return nil, 0, fmt.Errorf("%w: raw length %d, expected %d", ErrCorrupt, h.RawLen, rawLen)
	}
	return decompress(block, h)
}

func decompress(block []byte, h Header) ([]byte, int, error) {
	if uint64(len(block)-HeaderSize) < uint64(h.StoredLen) {
		return nil, 0, fmt.Errorf("%w: payload truncated (%d of %d bytes)", ErrCorrupt, len(block)-HeaderSize, h.StoredLen)
	}
	payload := block[HeaderSize : HeaderSize+int(h.StoredLen)]
	n := HeaderSize + int(h.StoredLen)

	switch h.Type {
	case LZ4:
		out := make([]byte, h.RawLen)
		m, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: lz4: %w", ErrCorrupt, err)
		}
		if uint32(m) != h.RawLen {
			return nil, 0, fmt.Errorf("%w: lz4 decoded %d bytes, header says %d", ErrCorrupt, m, h.RawLen)
		}
		return out, n, nil

	case ZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, 0, err
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(payload, make([]byte, 0, h.RawLen))
		if err != nil {
			return nil, 0, fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
		}
		if uint32(len(out)) != h.RawLen {
			return nil, 0, fmt.Errorf("%w: zstd decoded %d bytes, header says %d", ErrCorrupt, len(out), h.RawLen)
		}
		return out, n, nil

	default:
		out := make([]byte, h.RawLen)
		copy(out, payload)
		return out, n, nil
	}
}
