package rewrite

import (
	"github.com/nnopt/netopt/internal/graph"
	"github.com/nnopt/netopt/internal/layer"
)

// Activation type codes assigned by the fusion (spec.md §8 scenario 9).
// ReLU with slope 0 takes no params; a nonzero slope is a LeakyReLU and
// carries the slope as its sole param.
const (
	actReLU      = 1
	actLeakyReLU = 2
	actClip      = 3
	actSigmoid   = 4
)

// fuseActivation folds a trailing ReLU/Clip/Sigmoid into any
// Conv*/Deconv*/InnerProduct producer's activation_type/activation_params.
func fuseActivation(g *graph.Graph) {
	for i := 0; i < len(g.Layers); i++ {
		target, ok := g.Layers[i].(layer.Activatable)
		if !ok || target.Base().Kind == layer.KindFused {
			continue
		}

		if j, ok := g.ForwardMatch(i, layer.KindReLU); ok {
			r := g.Layers[j].(*layer.ReLU)
			if r.Slope == 0 {
				target.SetActivation(actReLU, nil)
			} else {
				target.SetActivation(actLeakyReLU, []float32{r.Slope})
			}
			audit("fuse_activation_relu", target.Base().Name, r.Name)
			g.Fuse(i, j)
			continue
		}
		if j, ok := g.ForwardMatch(i, layer.KindClip); ok {
			c := g.Layers[j].(*layer.Clip)
			target.SetActivation(actClip, []float32{c.Min, c.Max})
			audit("fuse_activation_clip", target.Base().Name, c.Name)
			g.Fuse(i, j)
			continue
		}
		if j, ok := g.ForwardMatch(i, layer.KindSigmoid); ok {
			s := g.Layers[j].(*layer.Sigmoid)
			target.SetActivation(actSigmoid, nil)
			audit("fuse_activation_sigmoid", target.Base().Name, s.Name)
			g.Fuse(i, j)
			continue
		}
	}
}
