package binary

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnopt/netopt/internal/blob"
)

func TestAlignSize(t *testing.T) {
	assert.Equal(t, 0, alignSize(0, 4))
	assert.Equal(t, 4, alignSize(1, 4))
	assert.Equal(t, 4, alignSize(4, 4))
	assert.Equal(t, 8, alignSize(5, 4))
}

func TestTaggedFp32RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false)
	src := blob.FromSlice([]float32{1, 2, 3, 4, 5})
	require.NoError(t, w.WriteTagged(src))

	// tag(4) + 5*4 = 24 bytes, already 4-byte aligned, no padding.
	assert.Equal(t, 24, buf.Len())

	r := NewReader(&buf)
	out, err := r.ReadTagged(5)
	require.NoError(t, err)
	assert.Equal(t, src.Data(), out.Data())
}

func TestTaggedFp16RoundTripWithPadding(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	src := blob.FromSlice([]float32{1, -2, 0.5})
	require.NoError(t, w.WriteTagged(src))

	// tag(4) + 3*2 = 10 bytes, aligned up to 12.
	assert.Equal(t, 12, buf.Len())

	tag := binary.LittleEndian.Uint32(buf.Bytes()[:4])
	assert.Equal(t, fp16Tag, tag)

	r := NewReader(bytes.NewReader(buf.Bytes()))
	out, err := r.ReadTagged(3)
	require.NoError(t, err)
	for i, v := range src.Data() {
		assert.InDelta(t, v, out.At(i), 0.01)
	}
}

func TestReadTaggedRejectsUnknownTag(t *testing.T) {
	var buf bytes.Buffer
	var tagBuf [4]byte
	binary.LittleEndian.PutUint32(tagBuf[:], 0xDEADBEEF)
	buf.Write(tagBuf[:])

	r := NewReader(&buf)
	_, err := r.ReadTagged(1)
	assert.Error(t, err)
}

func TestPlainEmptyIsNoop(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false)
	require.NoError(t, w.WritePlain(blob.FromSlice(nil)))
	assert.Equal(t, 0, buf.Len())

	r := NewReader(&buf)
	out, err := r.ReadPlain(0)
	require.NoError(t, err)
	assert.True(t, out.Empty())
}

func TestPlainFp32RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	src := blob.FromSlice([]float32{9, 8, 7})
	require.NoError(t, w.WritePlain(src))
	assert.Equal(t, 12, buf.Len(), "plain weights are always fp32 regardless of the fp16 writer flag")

	r := NewReader(&buf)
	out, err := r.ReadPlain(3)
	require.NoError(t, err)
	assert.Equal(t, src.Data(), out.Data())
}
