package packedring

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/hupe1980/refinedsets/metrics"
	"github.com/hupe1980/refinedsets/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wrappedRing returns a ring whose live region wraps past the end of storage.
func wrappedRing() *Ring {
	r := New(4)
	for v := uint32(1); v <= 4; v++ {
		r.Push(v)
	}
	r.Shift()
	r.Shift()
	r.Push(0xABCDEF)
	return r
}

func TestSnapshotRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(7)
	big := FromSlice(rng.Uint24s(4096))
	for range 1000 {
		big.Shift()
	}

	rings := map[string]*Ring{
		"empty":   New(0),
		"unused":  New(8),
		"wrapped": wrappedRing(),
		"big":     big,
	}

	for name, r := range rings {
		for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
			t.Run(name+"/"+c.String(), func(t *testing.T) {
				b, err := r.AppendSnapshot(nil, WithCompression(c))
				require.NoError(t, err)

				var got Ring
				require.NoError(t, got.UnmarshalBinary(b))

				assert.Equal(t, r.Head(), got.Head())
				assert.Equal(t, r.Len(), got.Len())
				assert.Equal(t, r.Cap(), got.Cap())
				assert.True(t, bytes.Equal(r.Bytes(), got.Bytes()), "physical layout must survive")
				assert.Equal(t, r.ToSlice(), got.ToSlice())
			})
		}
	}
}

func TestSnapshotHeaderLayout(t *testing.T) {
	r := wrappedRing()
	b, err := r.MarshalBinary()
	require.NoError(t, err)

	assert.Equal(t, "PR24", string(b[0:4]))
	assert.Equal(t, byte(1), b[4])
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(b[5:]), "head")
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(b[9:]), "length")
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(b[13:]), "capacity")
	// Uncompressed block: raw storage follows its 9-byte header verbatim.
	assert.Equal(t, r.Bytes(), b[snapshotHeaderSize+9:])
}

func TestDecodedRingKeepsWorking(t *testing.T) {
	b, err := wrappedRing().MarshalBinary()
	require.NoError(t, err)

	var r Ring
	require.NoError(t, r.UnmarshalBinary(b))

	r.Push(5)
	r.Push(6) // grows
	assert.Equal(t, []uint32{3, 4, 0xABCDEF, 5, 6}, r.ToSlice())
	v, ok := r.Pop()
	assert.True(t, ok)
	assert.Equal(t, uint32(3), v)
}

func TestWriteToReadFrom(t *testing.T) {
	first := wrappedRing()
	second := FromSlice([]uint32{7, 8, 9})

	var buf bytes.Buffer
	n1, err := first.WriteTo(&buf)
	require.NoError(t, err)
	n2, err := second.WriteTo(&buf)
	require.NoError(t, err)

	var a, b Ring
	m1, err := a.ReadFrom(&buf)
	require.NoError(t, err)
	m2, err := b.ReadFrom(&buf)
	require.NoError(t, err)

	assert.Equal(t, n1, m1)
	assert.Equal(t, n2, m2)
	assert.Equal(t, first.ToSlice(), a.ToSlice())
	assert.Equal(t, second.ToSlice(), b.ToSlice())
	assert.Zero(t, buf.Len(), "stream fully consumed")
}

func TestReadFromTruncated(t *testing.T) {
	b, err := wrappedRing().MarshalBinary()
	require.NoError(t, err)

	for _, cut := range []int{0, 5, snapshotHeaderSize + 3, len(b) - 1} {
		var r Ring
		_, err := r.ReadFrom(bytes.NewReader(b[:cut]))
		assert.ErrorIs(t, err, ErrCorruptSnapshot, "cut at %d", cut)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	good, err := wrappedRing().MarshalBinary()
	require.NoError(t, err)

	mutate := func(fn func(b []byte) []byte) []byte {
		return fn(bytes.Clone(good))
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", good[:3], ErrCorruptSnapshot},
		{"bad magic", mutate(func(b []byte) []byte { b[0] = 'X'; return b }), ErrCorruptSnapshot},
		{"future version", mutate(func(b []byte) []byte { b[4] = 2; return b }), ErrUnsupportedVersion},
		{"length exceeds capacity", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[9:], 5)
			return b
		}), ErrCorruptSnapshot},
		{"head outside capacity", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[5:], 4)
			return b
		}), ErrCorruptSnapshot},
		{"capacity disagrees with block", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[13:], 5)
			return b
		}), ErrCorruptSnapshot},
		{"truncated block", good[:len(good)-2], ErrCorruptSnapshot},
		{"block claims oversized storage", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[snapshotHeaderSize:], 1<<30)
			return b
		}), ErrCorruptSnapshot},
		{"inflated lz4 block", inflatedSnapshot(), ErrCorruptSnapshot},
		{"trailing bytes", append(bytes.Clone(good), 0), ErrCorruptSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromSlice([]uint32{42})
			err := r.UnmarshalBinary(tt.data)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, []uint32{42}, r.ToSlice(), "failed decode must leave the ring unchanged")
		})
	}
}

// inflatedSnapshot is a 27-byte snapshot of a one-slot ring whose LZ4 block
// claims a 1 GiB payload.
func inflatedSnapshot() []byte {
	b := []byte(snapshotMagic)
	b = append(b, snapshotVersion)
	b = binary.LittleEndian.AppendUint32(b, 0) // head
	b = binary.LittleEndian.AppendUint32(b, 0) // length
	b = binary.LittleEndian.AppendUint32(b, 1) // capacity
	b = binary.LittleEndian.AppendUint32(b, 1<<30)
	b = binary.LittleEndian.AppendUint32(b, 1)
	return append(b, byte(CompressionLZ4), 0)
}

func TestInflatedBlockRejectedBeforeAllocation(t *testing.T) {
	data := inflatedSnapshot()
	require.Len(t, data, 27)

	var r Ring
	var err error
	n := testutil.AllocatedBytes(func() { err = r.UnmarshalBinary(data) })
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
	assert.Less(t, n, uint64(1<<20))

	n = testutil.AllocatedBytes(func() { _, err = r.ReadFrom(bytes.NewReader(data)) })
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
	assert.Less(t, n, uint64(1<<20))
}

func TestSnapshotCompressionShrinks(t *testing.T) {
	r := New(0)
	for i := 0; i < 10000; i++ {
		r.Push(uint32(i % 16))
	}

	plain, err := r.MarshalBinary()
	require.NoError(t, err)
	packed, err := r.AppendSnapshot(nil, WithCompression(CompressionZSTD))
	require.NoError(t, err)

	assert.Less(t, len(packed), len(plain)/4)
}

func TestAppendSnapshotPrefix(t *testing.T) {
	r := FromSlice([]uint32{1})
	out, err := r.AppendSnapshot([]byte("xx"))
	require.NoError(t, err)
	assert.Equal(t, "xx", string(out[:2]))

	var got Ring
	require.NoError(t, got.UnmarshalBinary(out[2:]))
	assert.Equal(t, []uint32{1}, got.ToSlice())
}

func TestSnapshotMetrics(t *testing.T) {
	var m metrics.Basic
	r := FromSlice([]uint32{1, 2}, WithMetrics(&m))

	b, err := r.MarshalBinary()
	require.NoError(t, err)
	require.Error(t, r.UnmarshalBinary(b[:4]))

	st := m.Stats()
	assert.Equal(t, int64(2), st.SnapshotCount)
	assert.Equal(t, int64(1), st.SnapshotErrors)
	assert.Equal(t, int64(len(b)), st.SnapshotBytes)
}

func TestReadFromFailureIsRecorded(t *testing.T) {
	var m metrics.Basic
	r := New(0, WithMetrics(&m))

	b, err := FromSlice([]uint32{1, 2}).MarshalBinary()
	require.NoError(t, err)

	_, err = r.ReadFrom(bytes.NewReader(b[:5]))
	require.ErrorIs(t, err, ErrCorruptSnapshot)
	_, err = r.ReadFrom(bytes.NewReader(b[:len(b)-1]))
	require.ErrorIs(t, err, ErrCorruptSnapshot)
	_, err = r.ReadFrom(bytes.NewReader(b))
	require.NoError(t, err)

	st := m.Stats()
	assert.Equal(t, int64(3), st.SnapshotCount)
	assert.Equal(t, int64(2), st.SnapshotErrors)
	assert.Equal(t, int64(len(b)), st.SnapshotBytes)
}
