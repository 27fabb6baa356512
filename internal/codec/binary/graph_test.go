package binary

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnopt/netopt/internal/blob"
	"github.com/nnopt/netopt/internal/graph"
	"github.com/nnopt/netopt/internal/layer"
)

func TestLoadSaveWeightsRoundTrip(t *testing.T) {
	g := graph.New()

	conv, err := layer.New(layer.KindConvolution)
	require.NoError(t, err)
	c := conv.(*layer.Convolution)
	c.NumOutput = 2
	c.KernelW, c.KernelH = 1, 1
	c.WeightDataSize = 2
	c.BiasTerm = 1
	c.Name = "conv1"
	c.Bottoms = []int{g.BlobIndex("in")}
	c.Tops = []int{g.BlobIndex("out")}
	idx := g.AddLayer(conv)
	g.Blobs[c.Tops[0]].Producer = idx

	c.WeightData = blob.FromSlice([]float32{1, 2})
	c.BiasData = blob.FromSlice([]float32{3, 4})

	var buf bytes.Buffer
	require.NoError(t, SaveWeights(&buf, g, false))

	g2 := graph.New()
	conv2, err := layer.New(layer.KindConvolution)
	require.NoError(t, err)
	c2 := conv2.(*layer.Convolution)
	c2.NumOutput = 2
	c2.WeightDataSize = 2
	c2.BiasTerm = 1
	g2.AddLayer(conv2)

	require.NoError(t, LoadWeights(&buf, g2))
	assert.Equal(t, c.WeightData.Data(), c2.WeightData.Data())
	assert.Equal(t, c.BiasData.Data(), c2.BiasData.Data())
}

func TestSaveWeightsSkipsFusedLayers(t *testing.T) {
	g := graph.New()
	dr, err := layer.New(layer.KindDropout)
	require.NoError(t, err)
	dr.Base().Kind = layer.KindFused
	g.AddLayer(dr)

	var buf bytes.Buffer
	require.NoError(t, SaveWeights(&buf, g, false))
	assert.Equal(t, 0, buf.Len())
}
