package rewrite

import (
	"github.com/nnopt/netopt/internal/graph"
	"github.com/nnopt/netopt/internal/layer"
)

// convToInnerProduct relabels a Convolution as an InnerProduct, carrying its
// weight and bias buffers over untouched: this reproduces the original
// optimizer's substitution, which rewrites the schema wrapper alone and does
// not require or check that the convolution's kernel is 1x1.
func convToInnerProduct(c *layer.Convolution) *layer.InnerProduct {
	return &layer.InnerProduct{
		Header: layer.Header{
			Kind:      layer.KindInnerProduct,
			KindIndex: int(layer.KindInnerProduct),
			Name:      c.Name,
			Bottoms:   c.Bottoms,
			Tops:      c.Tops,
		},
		NumOutput:        c.NumOutput,
		BiasTerm:         c.BiasTerm,
		WeightDataSize:   c.WeightDataSize,
		Int8ScaleTerm:    c.Int8ScaleTerm,
		ActivationType:   c.ActivationType,
		ActivationParams: c.ActivationParams,
		WeightData:       c.WeightData,
		BiasData:         c.BiasData,
	}
}

// replaceConvolutionWithInnerProductAfterGlobalPooling substitutes any
// Convolution immediately following a global Pooling (spec.md §8 scenario D),
// regardless of the convolution's own kernel size, matching the original
// optimizer's producer-pattern-only trigger.
func replaceConvolutionWithInnerProductAfterGlobalPooling(g *graph.Graph) {
	for i := 0; i < len(g.Layers); i++ {
		p, ok := g.Layers[i].(*layer.Pooling)
		if !ok || p.Kind == layer.KindFused || p.GlobalPooling == 0 {
			continue
		}
		j, ok := g.ForwardMatch(i, layer.KindConvolution)
		if !ok {
			continue
		}
		c := g.Layers[j].(*layer.Convolution)
		audit("replace_convolution_with_innerproduct_after_global_pooling", p.Name, c.Name)
		g.Replace(j, convToInnerProduct(c))
	}
}

// replaceConvolutionWithInnerProductAfterInnerProduct substitutes any
// Convolution immediately following an InnerProduct, iterated to a fixed
// point so a chain of such convolutions collapses in one pipeline run.
func replaceConvolutionWithInnerProductAfterInnerProduct(g *graph.Graph) {
	for {
		changed := false
		for i := 0; i < len(g.Layers); i++ {
			ip, ok := g.Layers[i].(*layer.InnerProduct)
			if !ok || ip.Kind == layer.KindFused {
				continue
			}
			j, ok := g.ForwardMatch(i, layer.KindConvolution)
			if !ok {
				continue
			}
			c := g.Layers[j].(*layer.Convolution)
			audit("replace_convolution_with_innerproduct_after_innerproduct", ip.Name, c.Name)
			g.Replace(j, convToInnerProduct(c))
			changed = true
		}
		if !changed {
			return
		}
	}
}
