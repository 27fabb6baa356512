package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyDictReturnsDefaults(t *testing.T) {
	d := New()
	assert.Equal(t, 7, d.Int(0, 7))
	assert.Equal(t, float32(0.5), d.Float(1, 0.5))
	assert.Nil(t, d.FloatArray(2))
	assert.Nil(t, d.IntArray(3))
	assert.False(t, d.Has(0))
}

func TestSetIntSetFloatOverrideDefaults(t *testing.T) {
	d := New()
	d.SetInt(0, 3)
	d.SetFloat(1, 2.5)
	assert.Equal(t, 3, d.Int(0, 7))
	assert.Equal(t, float32(2.5), d.Float(1, 0))
	assert.True(t, d.Has(0))
	assert.True(t, d.Has(1))
}

func TestSetScalarIsTypeAgnostic(t *testing.T) {
	d := New()
	d.SetScalar(4, 3.0)
	assert.Equal(t, 3, d.Int(4, 0))
	assert.Equal(t, float32(3), d.Float(4, 0))
}

func TestArrayAccessors(t *testing.T) {
	d := New()
	d.SetArray(10, []float64{1, 2, 3})
	assert.Equal(t, []float32{1, 2, 3}, d.FloatArray(10))
	assert.Equal(t, []int{1, 2, 3}, d.IntArray(10))
	assert.True(t, d.Has(10))
}
