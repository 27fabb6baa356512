package rewrite

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnopt/netopt/internal/blob"
	"github.com/nnopt/netopt/internal/graph"
	"github.com/nnopt/netopt/internal/layer"
)

func addLayer(t *testing.T, g *graph.Graph, l layer.Layer, name string, bottoms, tops []string) {
	t.Helper()
	h := l.Base()
	h.Name = name
	for _, b := range bottoms {
		h.Bottoms = append(h.Bottoms, g.BlobIndex(b))
	}
	for _, tp := range tops {
		h.Tops = append(h.Tops, g.BlobIndex(tp))
	}
	i := g.AddLayer(l)
	for _, tp := range h.Tops {
		g.Blobs[tp].Producer = i
	}
}

func newKind(t *testing.T, k layer.Kind) layer.Layer {
	t.Helper()
	l, err := layer.New(k)
	require.NoError(t, err)
	return l
}

// Scenario A: Conv(no bias) -> BatchNorm -> ReLU(slope=0) collapses into one
// Convolution with bias_term=1, per-channel-scaled weights, and
// activation_type 1.
func TestScenarioA_ConvBatchNormReLU(t *testing.T) {
	g := graph.New()
	addLayer(t, g, newKind(t, layer.KindInput), "input", nil, []string{"data"})

	conv := newKind(t, layer.KindConvolution).(*layer.Convolution)
	conv.NumOutput = 4
	conv.WeightDataSize = 36
	conv.WeightData = blob.New(36)
	for i := range conv.WeightData.Data() {
		conv.WeightData.Data()[i] = 1
	}
	addLayer(t, g, conv, "conv1", []string{"data"}, []string{"b"})

	bn := newKind(t, layer.KindBatchNorm).(*layer.BatchNorm)
	bn.Channels = 4
	bn.Eps = 1e-5
	bn.SlopeData = blob.FromSlice([]float32{1, 2, 3, 4})
	bn.MeanData = blob.FromSlice([]float32{0, 0, 0, 0})
	bn.VarData = blob.FromSlice([]float32{1, 1, 1, 1})
	bn.BiasData = blob.FromSlice([]float32{0.1, 0.2, 0.3, 0.4})
	addLayer(t, g, bn, "bn1", []string{"b"}, []string{"c"})

	relu := newKind(t, layer.KindReLU).(*layer.ReLU)
	relu.Slope = 0
	addLayer(t, g, relu, "relu1", []string{"c"}, []string{"d"})

	require.NoError(t, Pipeline(g))

	require.Equal(t, layer.KindConvolution, g.Layers[1].Base().Kind)
	require.Equal(t, layer.KindFused, g.Layers[2].Base().Kind)
	require.Equal(t, layer.KindFused, g.Layers[3].Base().Kind)

	c := g.Layers[1].(*layer.Convolution)
	assert.Equal(t, 1, c.BiasTerm)
	assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3, 0.4}, c.BiasData.Data(), 1e-5)
	assert.Equal(t, 1, c.ActivationType)

	perChannel := 36 / 4
	for q := 0; q < 4; q++ {
		scale := float32(q+1) / float32(math.Sqrt(1+1e-5))
		for _, v := range c.WeightData.Slice(q, perChannel) {
			assert.InDelta(t, scale, v, 1e-4)
		}
	}

	assert.Equal(t, g.BlobIndex("d"), c.Tops[0], "conv1's top must be redirected all the way to the final surviving blob")
}

// A Convolution that already has bias_term=1 before the BatchNorm fusion
// must keep that bias unscaled: bias_new = bias_old + a, never
// bias_old*scale + a. Catches a regression where the old bias got
// multiplied by the fused scale as well.
func TestScenarioA_ConvBatchNormPreservesExistingBias(t *testing.T) {
	g := graph.New()
	addLayer(t, g, newKind(t, layer.KindInput), "input", nil, []string{"data"})

	conv := newKind(t, layer.KindConvolution).(*layer.Convolution)
	conv.NumOutput = 2
	conv.WeightDataSize = 2
	conv.WeightData = blob.FromSlice([]float32{1, 1})
	conv.BiasTerm = 1
	conv.BiasData = blob.FromSlice([]float32{10, 20})
	addLayer(t, g, conv, "conv1", []string{"data"}, []string{"b"})

	bn := newKind(t, layer.KindBatchNorm).(*layer.BatchNorm)
	bn.Channels = 2
	bn.Eps = 0
	bn.SlopeData = blob.FromSlice([]float32{2, 2})
	bn.MeanData = blob.FromSlice([]float32{0, 0})
	bn.VarData = blob.FromSlice([]float32{1, 1})
	bn.BiasData = blob.FromSlice([]float32{1, 1})
	addLayer(t, g, bn, "bn1", []string{"b"}, []string{"c"})

	require.NoError(t, Pipeline(g))

	c := g.Layers[1].(*layer.Convolution)
	// scale = 2, a = 1 - 0*2 = 1; bias_new = bias_old + a, not bias_old*scale + a.
	assert.InDeltaSlice(t, []float32{11, 21}, c.BiasData.Data(), 1e-5)
}

// Scenario B: BatchNorm -> Scale(bias_term=1) folds into the BatchNorm.
func TestScenarioB_BatchNormScale(t *testing.T) {
	g := graph.New()

	bn := newKind(t, layer.KindBatchNorm).(*layer.BatchNorm)
	bn.Channels = 3
	bn.SlopeData = blob.FromSlice([]float32{1, 1, 1})
	bn.MeanData = blob.FromSlice([]float32{0, 0, 0})
	bn.VarData = blob.FromSlice([]float32{1, 1, 1})
	bn.BiasData = blob.FromSlice([]float32{0, 0, 0})
	addLayer(t, g, bn, "bn1", []string{"in"}, []string{"b"})

	sc := newKind(t, layer.KindScale).(*layer.Scale)
	sc.ScaleDataSize = 3
	sc.BiasTerm = 1
	sc.ScaleData = blob.FromSlice([]float32{2, 2, 2})
	sc.BiasData = blob.FromSlice([]float32{1, 1, 1})
	addLayer(t, g, sc, "scale1", []string{"b"}, []string{"c"})

	require.NoError(t, Pipeline(g))

	assert.Equal(t, layer.KindFused, g.Layers[1].Base().Kind)
	assert.Equal(t, []float32{2, 2, 2}, bn.SlopeData.Data())
	assert.Equal(t, []float32{1, 1, 1}, bn.BiasData.Data())
}

// Scenario C: InnerProduct -> Dropout(scale=0.5) scales weight and bias.
func TestScenarioC_InnerProductDropout(t *testing.T) {
	g := graph.New()

	ip := newKind(t, layer.KindInnerProduct).(*layer.InnerProduct)
	ip.NumOutput = 10
	ip.BiasTerm = 1
	ip.WeightData = blob.FromSlice([]float32{1, 2, 3, 4})
	ip.BiasData = blob.FromSlice([]float32{10, 20})
	addLayer(t, g, ip, "ip1", []string{"in"}, []string{"b"})

	dr := newKind(t, layer.KindDropout).(*layer.Dropout)
	dr.Scale = 0.5
	addLayer(t, g, dr, "dropout1", []string{"b"}, []string{"c"})

	require.NoError(t, Pipeline(g))

	assert.Equal(t, layer.KindFused, g.Layers[1].Base().Kind)
	assert.Equal(t, []float32{0.5, 1, 1.5, 2}, ip.WeightData.Data())
	assert.Equal(t, []float32{5, 10}, ip.BiasData.Data())
}

// Scenario D: global Pooling -> Convolution(1x1) -> Flatten substitutes the
// Convolution with an equivalent InnerProduct and drops the Flatten.
func TestScenarioD_GlobalPoolingConvFlatten(t *testing.T) {
	g := graph.New()

	pool := newKind(t, layer.KindPooling).(*layer.Pooling)
	pool.GlobalPooling = 1
	addLayer(t, g, pool, "pool1", []string{"in"}, []string{"b"})

	conv := newKind(t, layer.KindConvolution).(*layer.Convolution)
	conv.NumOutput = 5
	conv.KernelW, conv.KernelH = 1, 1
	conv.WeightDataSize = 5
	conv.WeightData = blob.New(5)
	addLayer(t, g, conv, "conv1", []string{"b"}, []string{"c"})

	flat := newKind(t, layer.KindFlatten)
	addLayer(t, g, flat, "flatten1", []string{"c"}, []string{"d"})

	require.NoError(t, Pipeline(g))

	assert.Equal(t, layer.KindInnerProduct, g.Layers[1].Base().Kind)
	assert.Equal(t, layer.KindFused, g.Layers[2].Base().Kind)

	ip := g.Layers[1].(*layer.InnerProduct)
	assert.Equal(t, 5, ip.NumOutput)
	assert.Equal(t, g.BlobIndex("d"), ip.Tops[0])
}

// Scenario E: Dropout(scale=1) -> Softmax eliminates the Dropout, wiring its
// producer directly to Softmax.
func TestScenarioE_DropoutScaleOneElimination(t *testing.T) {
	g := graph.New()
	addLayer(t, g, newKind(t, layer.KindInput), "input", nil, []string{"a"})

	dr := newKind(t, layer.KindDropout).(*layer.Dropout)
	dr.Scale = 1
	addLayer(t, g, dr, "dropout1", []string{"a"}, []string{"b"})

	sm := newKind(t, layer.KindSoftmax)
	addLayer(t, g, sm, "softmax1", []string{"b"}, []string{"c"})

	require.NoError(t, Pipeline(g))

	assert.Equal(t, layer.KindFused, g.Layers[1].Base().Kind)
	assert.Equal(t, g.BlobIndex("b"), g.Layers[0].Base().Tops[0])
}

// LeakyReLU (slope != 0) fuses as activation_type 2 with the slope carried
// as its sole param, distinct from plain ReLU's paramless type 1.
func TestActivationFusionLeakyReLU(t *testing.T) {
	g := graph.New()

	conv := newKind(t, layer.KindConvolution).(*layer.Convolution)
	conv.WeightData = blob.New(0)
	addLayer(t, g, conv, "conv1", []string{"in"}, []string{"b"})

	relu := newKind(t, layer.KindReLU).(*layer.ReLU)
	relu.Slope = 0.1
	addLayer(t, g, relu, "relu1", []string{"b"}, []string{"c"})

	require.NoError(t, Pipeline(g))

	assert.Equal(t, 2, conv.ActivationType)
	assert.Equal(t, []float32{0.1}, conv.ActivationParams)
	assert.Equal(t, layer.KindFused, g.Layers[1].Base().Kind)
}

func TestActivationFusionClipAndSigmoid(t *testing.T) {
	g := graph.New()

	conv := newKind(t, layer.KindConvolution).(*layer.Convolution)
	conv.WeightData = blob.New(0)
	addLayer(t, g, conv, "conv1", []string{"in"}, []string{"b"})

	clip := newKind(t, layer.KindClip).(*layer.Clip)
	clip.Min, clip.Max = 0, 6
	addLayer(t, g, clip, "clip1", []string{"b"}, []string{"c"})

	conv2 := newKind(t, layer.KindConvolution).(*layer.Convolution)
	conv2.WeightData = blob.New(0)
	addLayer(t, g, conv2, "conv2", []string{"in2"}, []string{"e"})

	sig := newKind(t, layer.KindSigmoid)
	addLayer(t, g, sig, "sigmoid1", []string{"e"}, []string{"f"})

	require.NoError(t, Pipeline(g))

	assert.Equal(t, 3, conv.ActivationType)
	assert.Equal(t, []float32{0, 6}, conv.ActivationParams)
	assert.Equal(t, layer.KindFused, g.Layers[1].Base().Kind)

	assert.Equal(t, 4, conv2.ActivationType)
	assert.Nil(t, conv2.ActivationParams)
	assert.Equal(t, layer.KindFused, g.Layers[3].Base().Kind)
}

func TestFixedPointSubstitutionChainsInnerProductConv(t *testing.T) {
	g := graph.New()

	ip := newKind(t, layer.KindInnerProduct).(*layer.InnerProduct)
	ip.WeightData = blob.New(0)
	addLayer(t, g, ip, "ip1", []string{"in"}, []string{"b"})

	conv1 := newKind(t, layer.KindConvolution).(*layer.Convolution)
	conv1.KernelW, conv1.KernelH = 1, 1
	conv1.WeightData = blob.New(0)
	addLayer(t, g, conv1, "conv1", []string{"b"}, []string{"c"})

	conv2 := newKind(t, layer.KindConvolution).(*layer.Convolution)
	conv2.KernelW, conv2.KernelH = 1, 1
	conv2.WeightData = blob.New(0)
	addLayer(t, g, conv2, "conv2", []string{"c"}, []string{"d"})

	require.NoError(t, Pipeline(g))

	assert.Equal(t, layer.KindInnerProduct, g.Layers[1].Base().Kind)
	assert.Equal(t, layer.KindInnerProduct, g.Layers[2].Base().Kind)
}

// The original optimizer substitutes Conv-after-global-Pooling purely on
// producer pattern, with no kernel-size check; a 3x3 kernel must substitute
// just as readily as a 1x1 one.
func TestScenarioD_SubstitutesNonUnitKernel(t *testing.T) {
	g := graph.New()

	pool := newKind(t, layer.KindPooling).(*layer.Pooling)
	pool.GlobalPooling = 1
	addLayer(t, g, pool, "pool1", []string{"in"}, []string{"b"})

	conv := newKind(t, layer.KindConvolution).(*layer.Convolution)
	conv.NumOutput = 5
	conv.KernelW, conv.KernelH = 3, 3
	conv.WeightDataSize = 45
	conv.WeightData = blob.New(45)
	addLayer(t, g, conv, "conv1", []string{"b"}, []string{"c"})

	require.NoError(t, Pipeline(g))

	assert.Equal(t, layer.KindInnerProduct, g.Layers[1].Base().Kind)
}
