package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsTrailingDims(t *testing.T) {
	tn := New(4)
	assert.Equal(t, 4, tn.W())
	assert.Equal(t, 1, tn.H())
	assert.Equal(t, 1, tn.C())
	assert.Equal(t, 4, tn.Total())

	tn3 := New(2, 3, 5)
	assert.Equal(t, 30, tn3.Total())
}

func TestEmpty(t *testing.T) {
	var nilTensor *Tensor
	assert.True(t, nilTensor.Empty())
	assert.True(t, New(0).Empty())
	assert.False(t, New(1).Empty())
}

func TestReshapePreservesBackingData(t *testing.T) {
	tn := New(2, 3)
	tn.Fill(7)
	r := tn.Reshape(6)
	assert.Equal(t, 6, r.Total())
	r.Set(0, 9)
	assert.Equal(t, float32(9), tn.At(0), "Reshape must share the underlying buffer")
}

func TestReshapeMismatchPanics(t *testing.T) {
	tn := New(2, 3)
	assert.Panics(t, func() { tn.Reshape(5) })
}

func TestSliceWindowsByOutputChannel(t *testing.T) {
	tn := FromSlice([]float32{1, 2, 3, 4, 5, 6})
	q1 := tn.Slice(1, 3)
	require.Len(t, q1, 3)
	assert.Equal(t, []float32{4, 5, 6}, q1)

	q1[0] = 100
	assert.Equal(t, float32(100), tn.At(3), "Slice must return a window into the same backing array")
}

func TestFp16RoundTrip(t *testing.T) {
	src := []float32{0, 1, -1, 0.5, 3.25, -100.75}
	half := CastF32ToF16(src)
	back := CastF16ToF32(half)
	require.Len(t, back, len(src))
	for i, v := range src {
		assert.InDelta(t, v, back[i], 0.01)
	}
}
