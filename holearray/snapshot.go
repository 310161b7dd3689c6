package holearray

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/refinedsets/codec"
	"github.com/hupe1980/refinedsets/internal/conv"
)

const snapshotVersion = 1

var (
	// ErrCorruptSnapshot is returned when a snapshot fails validation.
	ErrCorruptSnapshot = errors.New("holearray: corrupt snapshot")
	// ErrCodecMismatch is returned when a snapshot was written with another codec.
	ErrCodecMismatch = errors.New("holearray: codec mismatch")
)

// Encode serializes a, holes included, so that Decode restores identical
// indices. Occupied values are encoded as one list with c (nil selects
// codec.Default); hole positions are stored as a portable roaring bitmap.
//
// Layout (little-endian):
//
//	version u8 | nameLen u8 | name | slots u32 | holesLen u32 | holes | valuesLen u32 | values
func Encode[T any](a *Array[T], c codec.Codec) ([]byte, error) {
	b, err := encode(a, c)
	if a.collector != nil {
		a.collector.RecordSnapshot(len(b), err)
	}
	if a.log != nil {
		a.log.LogSnapshot("encode", len(b), err)
	}
	return b, err
}

func encode[T any](a *Array[T], c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	name := c.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("holearray: codec name %q too long", name)
	}

	slots, err := conv.IntToUint32(a.Len())
	if err != nil {
		return nil, err
	}
	holes, err := a.Holes().ToBytes()
	if err != nil {
		return nil, fmt.Errorf("holearray: encode holes: %w", err)
	}
	holesLen, err := conv.IntToUint32(len(holes))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 2+len(name)+12+len(holes))
	out = append(out, snapshotVersion, byte(len(name)))
	out = append(out, name...)
	out = binary.LittleEndian.AppendUint32(out, slots)
	out = binary.LittleEndian.AppendUint32(out, holesLen)
	out = append(out, holes...)

	// valuesLen is patched once the values are appended.
	at := len(out)
	out = append(out, 0, 0, 0, 0)
	out, err = codec.Append(c, out, a.Values())
	if err != nil {
		return nil, fmt.Errorf("holearray: encode values with %s: %w", name, err)
	}
	valuesLen, err := conv.IntToUint32(len(out) - at - 4)
	if err != nil {
		return nil, err
	}
	binary.LittleEndian.PutUint32(out[at:], valuesLen)
	return out, nil
}

// reader walks a snapshot, turning every short read into ErrCorruptSnapshot.
type reader struct {
	b []byte
}

func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || n > len(r.b) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrCorruptSnapshot, n, len(r.b))
	}
	out := r.b[:n]
	r.b = r.b[n:]
	return out, nil
}

func (r *reader) uint32() (int, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	v, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(b))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	return v, nil
}

// Decode restores an Array written by Encode. c must be the codec used to
// encode; a nil c selects the built-in codec named in the snapshot.
// optFns configure the returned Array.
func Decode[T any](data []byte, c codec.Codec, optFns ...Option) (*Array[T], error) {
	a := New[T](optFns...)
	err := a.decode(data, c)
	if a.collector != nil {
		a.collector.RecordSnapshot(len(data), err)
	}
	if a.log != nil {
		a.log.LogSnapshot("decode", len(data), err)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Array[T]) decode(data []byte, c codec.Codec) error {
	r := &reader{b: data}

	hdr, err := r.next(2)
	if err != nil {
		return err
	}
	if hdr[0] != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, hdr[0])
	}
	name, err := r.next(int(hdr[1]))
	if err != nil {
		return err
	}
	if c == nil {
		var ok bool
		if c, ok = codec.ByName(string(name)); !ok {
			return fmt.Errorf("%w: unknown codec %q", ErrCodecMismatch, name)
		}
	}
	if string(name) != c.Name() {
		return fmt.Errorf("%w: snapshot uses %q, decoder uses %q", ErrCodecMismatch, name, c.Name())
	}

	slots, err := r.uint32()
	if err != nil {
		return err
	}
	n, err := r.uint32()
	if err != nil {
		return err
	}
	holesRaw, err := r.next(n)
	if err != nil {
		return err
	}
	n, err = r.uint32()
	if err != nil {
		return err
	}
	valuesRaw, err := r.next(n)
	if err != nil {
		return err
	}
	if len(r.b) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorruptSnapshot, len(r.b))
	}

	holes := roaring.New()
	if err := holes.UnmarshalBinary(holesRaw); err != nil {
		return fmt.Errorf("%w: holes: %w", ErrCorruptSnapshot, err)
	}
	if !holes.IsEmpty() && int64(holes.Maximum()) >= int64(slots) {
		return fmt.Errorf("%w: hole %d outside %d slots", ErrCorruptSnapshot, holes.Maximum(), slots)
	}

	var values []T
	if err := c.Unmarshal(valuesRaw, &values); err != nil {
		return fmt.Errorf("%w: values: %w", ErrCorruptSnapshot, err)
	}
	holeCount := int(holes.GetCardinality())
	if len(values) != slots-holeCount {
		return fmt.Errorf("%w: %d values for %d slots with %d holes", ErrCorruptSnapshot, len(values), slots, holeCount)
	}

	out := make([]slot[T], slots)
	next := 0
	for i := range out {
		if holes.Contains(uint32(i)) {
			continue
		}
		out[i] = slot[T]{value: values[next], occupied: true}
		next++
	}

	a.slots = out
	a.holes = holeCount
	return nil
}
