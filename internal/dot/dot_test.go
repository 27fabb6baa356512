package dot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnopt/netopt/internal/graph"
	"github.com/nnopt/netopt/internal/layer"
)

func TestWriteSkipsFusedLayersAndLabelsEdges(t *testing.T) {
	g := graph.New()

	conv, err := layer.New(layer.KindConvolution)
	require.NoError(t, err)
	conv.Base().Name = "conv1"
	conv.Base().Bottoms = []int{g.BlobIndex("in")}
	conv.Base().Tops = []int{g.BlobIndex("out")}
	i := g.AddLayer(conv)
	g.Blobs[conv.Base().Tops[0]].Producer = i

	sm, err := layer.New(layer.KindSoftmax)
	require.NoError(t, err)
	sm.Base().Name = "softmax1"
	sm.Base().Bottoms = []int{g.BlobIndex("out")}
	sm.Base().Tops = []int{g.BlobIndex("prob")}
	j := g.AddLayer(sm)
	g.Blobs[sm.Base().Tops[0]].Producer = j

	fused, err := layer.New(layer.KindReLU)
	require.NoError(t, err)
	fused.Base().Kind = layer.KindFused
	fused.Base().Name = "dead_relu"
	g.AddLayer(fused)

	var b strings.Builder
	require.NoError(t, Write(&b, g))
	out := b.String()

	assert.Contains(t, out, "Convolution")
	assert.Contains(t, out, "conv1")
	assert.NotContains(t, out, "dead_relu")
	assert.Contains(t, out, `label="out"`)
}
