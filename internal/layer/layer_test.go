package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnopt/netopt/internal/param"
)

// recordingSink captures every Put call by key (not by order), good enough to assert on
// sparse emission without going through the full text codec.
type recordingSink struct {
	ints       map[int]int
	floats     map[int]float32
	floatArray map[int][]float32
	intArray   map[int][]int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		ints:       map[int]int{},
		floats:     map[int]float32{},
		floatArray: map[int][]float32{},
		intArray:   map[int][]int{},
	}
}

func (s *recordingSink) PutInt(key, v int)               { s.ints[key] = v }
func (s *recordingSink) PutFloat(key int, v float32)      { s.floats[key] = v }
func (s *recordingSink) PutFloatArray(key int, v []float32) { s.floatArray[key] = v }
func (s *recordingSink) PutIntArray(key int, v []int)     { s.intArray[key] = v }

func TestConstructorsCoverEveryKind(t *testing.T) {
	for k, name := range kindNames {
		l, err := New(k)
		require.NoError(t, err, "kind %s", name)
		assert.Equal(t, k, l.Base().Kind)
	}
}

func TestNewByNameRoundTripsKindString(t *testing.T) {
	l, err := NewByName("Convolution")
	require.NoError(t, err)
	assert.Equal(t, KindConvolution, l.Base().Kind)

	_, err = NewByName("NotARealKind")
	assert.Error(t, err)
}

func TestConvolutionDefaultsAreSparse(t *testing.T) {
	c, err := New(KindConvolution)
	require.NoError(t, err)
	def := c.(*Convolution)

	sink := newRecordingSink()
	c.WriteParams(sink, def)
	assert.Empty(t, sink.ints, "a layer identical to its own default should emit nothing")
}

func TestConvolutionPairedKeyOnlyEmittedWhenAsymmetric(t *testing.T) {
	c := &Convolution{}
	d := param.New()
	d.SetInt(1, 3) // kernel_w = 3, kernel_h defaults to kernel_w
	c.LoadParam(d)
	require.Equal(t, 3, c.KernelW)
	require.Equal(t, 3, c.KernelH)

	def, err := New(KindConvolution)
	require.NoError(t, err)

	sink := newRecordingSink()
	c.WriteParams(sink, def)
	assert.Contains(t, sink.ints, 1)
	assert.NotContains(t, sink.ints, 11, "symmetric kernel_h must not be emitted")

	// Now make it asymmetric.
	d2 := param.New()
	d2.SetInt(1, 3)
	d2.SetInt(11, 5)
	c2 := &Convolution{}
	c2.LoadParam(d2)
	sink2 := newRecordingSink()
	c2.WriteParams(sink2, def)
	assert.Equal(t, 5, sink2.ints[11])
}

func TestDeconvolutionOutputPadPairing(t *testing.T) {
	d := param.New()
	d.SetInt(8, 2)
	dc := &Deconvolution{}
	dc.LoadParam(d)
	assert.Equal(t, 2, dc.OutputPadW)
	assert.Equal(t, 2, dc.OutputPadH, "output_pad_h defaults to output_pad_w")

	def, err := New(KindDeconvolution)
	require.NoError(t, err)
	sink := newRecordingSink()
	dc.WriteParams(sink, def)
	assert.NotContains(t, sink.ints, 18)

	d2 := param.New()
	d2.SetInt(8, 2)
	d2.SetInt(18, 9)
	dc2 := &Deconvolution{}
	dc2.LoadParam(d2)
	sink2 := newRecordingSink()
	dc2.WriteParams(sink2, def)
	assert.Equal(t, 9, sink2.ints[18])
}

func TestSoftmaxFixbug0CompanionKey(t *testing.T) {
	def, err := New(KindSoftmax)
	require.NoError(t, err)

	s := &Softmax{Axis: 0}
	sink := newRecordingSink()
	s.WriteParams(sink, def)
	assert.NotContains(t, sink.ints, 1)

	s2 := &Softmax{Axis: 2}
	sink2 := newRecordingSink()
	s2.WriteParams(sink2, def)
	assert.Equal(t, 2, sink2.ints[0])
	assert.Equal(t, 1, sink2.ints[1], "fixbug0 companion key must follow a non-zero axis")
}

func TestImplTypeKeyOnlyEmittedByPlainConvolution(t *testing.T) {
	c := &Convolution{ImplType: 2}
	def, err := New(KindConvolution)
	require.NoError(t, err)
	sink := newRecordingSink()
	c.WriteParams(sink, def)
	assert.Equal(t, 2, sink.ints[15], "Convolution must still emit impl_type")

	cdw := &ConvolutionDepthWise{Convolution: Convolution{ImplType: 2}}
	cdwDef, err := New(KindConvolutionDepthWise)
	require.NoError(t, err)
	cdwSink := newRecordingSink()
	cdw.WriteParams(cdwSink, cdwDef)
	assert.NotContains(t, cdwSink.ints, 15, "ConvolutionDepthWise's save table has no impl_type key")
}

func TestConvolutionDepthWiseGroupDefault(t *testing.T) {
	cdw, err := New(KindConvolutionDepthWise)
	require.NoError(t, err)
	assert.Equal(t, 1, cdw.(*ConvolutionDepthWise).Group)
}

func TestActivatableAndBNTargetPromotion(t *testing.T) {
	var _ Activatable = &Convolution{}
	var _ Activatable = &ConvolutionDepthWise{}
	var _ Activatable = &Deconvolution{}
	var _ Activatable = &DeconvolutionDepthWise{}
	var _ Activatable = &InnerProduct{}

	var _ BNTarget = &Convolution{}
	var _ BNTarget = &ConvolutionDepthWise{}
	var _ BNTarget = &Deconvolution{}
	var _ BNTarget = &DeconvolutionDepthWise{}
	var _ BNTarget = &InnerProduct{}
}
