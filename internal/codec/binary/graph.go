package binary

import (
	"io"

	"github.com/pkg/errors"

	"github.com/nnopt/netopt/internal/graph"
	"github.com/nnopt/netopt/internal/layer"
)

// LoadWeights reads every layer's weight tensors from r, in layer order.
// Called after the topology file has been parsed and before any rewrite
// pass runs, so every layer is still its original, non-Fused kind.
func LoadWeights(r io.Reader, g *graph.Graph) error {
	rd := NewReader(r)
	for i, l := range g.Layers {
		if err := l.ReadWeights(rd); err != nil {
			return errors.Wrapf(err, "binary: layer %d (%s)", i, l.Base().Name)
		}
	}
	return nil
}

// SaveWeights writes every surviving (non-Fused) layer's weight tensors to
// w, in layer order, mirroring the layer set internal/codec/text.Save emits.
func SaveWeights(w io.Writer, g *graph.Graph, fp16 bool) error {
	wr := NewWriter(w, fp16)
	for i, l := range g.Layers {
		if l.Base().Kind == layer.KindFused {
			continue
		}
		if err := l.WriteWeights(wr); err != nil {
			return errors.Wrapf(err, "binary: layer %d (%s)", i, l.Base().Name)
		}
	}
	return nil
}
