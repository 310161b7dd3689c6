package packedring

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/refinedsets/internal/blockcodec"
	"github.com/hupe1980/refinedsets/internal/conv"
	"github.com/hupe1980/refinedsets/internal/uint24"
)

const (
	snapshotMagic   = "PR24"
	snapshotVersion = 1

	// magic + version + head + length + capacity
	snapshotHeaderSize = 4 + 1 + 4 + 4 + 4
)

// AppendSnapshot appends a snapshot of the ring to dst.
//
// The storage block is written in physical order together with head, length
// and capacity, so a decoded ring has the identical byte layout.
func (r *Ring) AppendSnapshot(dst []byte, optFns ...SnapshotOption) ([]byte, error) {
	var o snapshotOptions
	for _, fn := range optFns {
		fn(&o)
	}

	out, err := r.appendSnapshot(dst, o.compression)
	if err != nil {
		r.recordSnapshot("encode", 0, err)
		return nil, err
	}
	r.recordSnapshot("encode", len(out)-len(dst), nil)
	return out, nil
}

func (r *Ring) appendSnapshot(dst []byte, c Compression) ([]byte, error) {
	head, err := conv.IntToUint32(r.head)
	if err != nil {
		return nil, err
	}
	length, err := conv.IntToUint32(r.length)
	if err != nil {
		return nil, err
	}
	capacity, err := conv.IntToUint32(r.Cap())
	if err != nil {
		return nil, err
	}

	var hdr [snapshotHeaderSize]byte
	copy(hdr[0:4], snapshotMagic)
	hdr[4] = snapshotVersion
	binary.LittleEndian.PutUint32(hdr[5:], head)
	binary.LittleEndian.PutUint32(hdr[9:], length)
	binary.LittleEndian.PutUint32(hdr[13:], capacity)

	dst = append(dst, hdr[:]...)
	return blockcodec.Append(dst, r.data, c)
}

// MarshalBinary implements encoding.BinaryMarshaler with an uncompressed snapshot.
func (r *Ring) MarshalBinary() ([]byte, error) {
	return r.AppendSnapshot(nil)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// It accepts any snapshot produced by AppendSnapshot, compressed or not, and
// replaces the ring's contents. On error the ring is left unchanged.
func (r *Ring) UnmarshalBinary(data []byte) error {
	st, n, err := decode(data)
	if err == nil && n != len(data) {
		err = fmt.Errorf("%w: %d trailing bytes", ErrCorruptSnapshot, len(data)-n)
	}
	if err == nil {
		r.install(st)
	}
	r.recordSnapshot("decode", n, err)
	return err
}

// WriteTo writes an uncompressed snapshot to w.
func (r *Ring) WriteTo(w io.Writer) (int64, error) {
	b, err := r.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// ReadFrom reads one snapshot from rd and replaces the ring's contents.
// It reads exactly the bytes of the snapshot, so several snapshots may be
// concatenated on one stream. The block header is checked against the ring
// header before the block is read.
func (r *Ring) ReadFrom(rd io.Reader) (int64, error) {
	total, err := r.readFrom(rd)
	r.recordSnapshot("decode", int(total), err)
	return total, err
}

func (r *Ring) readFrom(rd io.Reader) (int64, error) {
	buf := make([]byte, snapshotHeaderSize+blockcodec.HeaderSize)
	n, err := io.ReadFull(rd, buf)
	if err != nil {
		return int64(n), fmt.Errorf("%w: reading header: %w", ErrCorruptSnapshot, err)
	}

	hdr, err := parseHeader(buf)
	if err != nil {
		return int64(n), err
	}
	bh, err := parseBlockHeader(buf[snapshotHeaderSize:], hdr)
	if err != nil {
		return int64(n), err
	}

	buf = append(buf, make([]byte, bh.StoredLen)...)
	m, err := io.ReadFull(rd, buf[n:])
	total := int64(n + m)
	if err != nil {
		return total, fmt.Errorf("%w: reading block: %w", ErrCorruptSnapshot, err)
	}

	st, _, err := decode(buf)
	if err != nil {
		return total, err
	}
	r.install(st)
	return total, nil
}

type snapshotHeader struct {
	head     int
	length   int
	capacity int
	rawLen   int // capacity * uint24.Width
}

type snapshotState struct {
	data   []byte
	head   int
	length int
}

func (r *Ring) install(st snapshotState) {
	r.data = st.data
	r.head = st.head
	r.length = st.length
}

// parseHeader validates the fixed ring header at the start of data.
func parseHeader(data []byte) (snapshotHeader, error) {
	if len(data) < snapshotHeaderSize {
		return snapshotHeader{}, fmt.Errorf("%w: %d bytes is smaller than the header", ErrCorruptSnapshot, len(data))
	}
	if string(data[0:4]) != snapshotMagic {
		return snapshotHeader{}, fmt.Errorf("%w: bad magic %q", ErrCorruptSnapshot, data[0:4])
	}
	if v := data[4]; v != snapshotVersion {
		return snapshotHeader{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	head, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(data[5:]))
	if err != nil {
		return snapshotHeader{}, fmt.Errorf("%w: head: %w", ErrCorruptSnapshot, err)
	}
	length, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(data[9:]))
	if err != nil {
		return snapshotHeader{}, fmt.Errorf("%w: length: %w", ErrCorruptSnapshot, err)
	}
	capacity, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(data[13:]))
	if err != nil {
		return snapshotHeader{}, fmt.Errorf("%w: capacity: %w", ErrCorruptSnapshot, err)
	}

	switch {
	case length > capacity:
		return snapshotHeader{}, fmt.Errorf("%w: length %d exceeds capacity %d", ErrCorruptSnapshot, length, capacity)
	case capacity == 0 && head != 0, capacity > 0 && head >= capacity:
		return snapshotHeader{}, fmt.Errorf("%w: head %d outside capacity %d", ErrCorruptSnapshot, head, capacity)
	}

	rawLen, err := conv.MulInt(capacity, uint24.Width)
	if err != nil {
		return snapshotHeader{}, fmt.Errorf("%w: capacity: %w", ErrCorruptSnapshot, err)
	}
	return snapshotHeader{head: head, length: length, capacity: capacity, rawLen: rawLen}, nil
}

// parseBlockHeader checks that the storage block claims exactly the size the
// ring header implies.
func parseBlockHeader(block []byte, hdr snapshotHeader) (blockcodec.Header, error) {
	bh, err := blockcodec.ParseHeader(block)
	if err != nil {
		return blockcodec.Header{}, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	if int64(bh.RawLen) != int64(hdr.rawLen) {
		return blockcodec.Header{}, fmt.Errorf("%w: storage is %d bytes, capacity %d needs %d",
			ErrCorruptSnapshot, bh.RawLen, hdr.capacity, hdr.rawLen)
	}
	return bh, nil
}

// decode validates the snapshot at the start of data and returns it with the
// number of bytes consumed.
func decode(data []byte) (snapshotState, int, error) {
	hdr, err := parseHeader(data)
	if err != nil {
		return snapshotState{}, 0, err
	}
	if _, err := parseBlockHeader(data[snapshotHeaderSize:], hdr); err != nil {
		return snapshotState{}, 0, err
	}

	raw, n, err := blockcodec.DecompressExpect(data[snapshotHeaderSize:], hdr.rawLen)
	if err != nil {
		return snapshotState{}, 0, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	return snapshotState{data: raw, head: hdr.head, length: hdr.length}, snapshotHeaderSize + n, nil
}

func (r *Ring) recordSnapshot(op string, n int, err error) {
	if r.log != nil {
		r.log.LogSnapshot(op, n, err)
	}
	if r.collector != nil {
		r.collector.RecordSnapshot(n, err)
	}
}
