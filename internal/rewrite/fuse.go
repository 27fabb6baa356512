package rewrite

import (
	"math"

	"github.com/nnopt/netopt/internal/blob"
	"github.com/nnopt/netopt/internal/graph"
	"github.com/nnopt/netopt/internal/layer"
)

// fuseBatchNormScale folds a following Scale into a BatchNorm (spec.md §8
// scenario B): slope *= scale; bias = bias*scale (+ scale's bias if present).
func fuseBatchNormScale(g *graph.Graph) {
	for i := 0; i < len(g.Layers); i++ {
		bn, ok := g.Layers[i].(*layer.BatchNorm)
		if !ok || bn.Kind == layer.KindFused {
			continue
		}
		j, ok := g.ForwardMatch(i, layer.KindScale)
		if !ok {
			continue
		}
		sc := g.Layers[j].(*layer.Scale)

		slope := bn.SlopeData.Data()
		bias := bn.BiasData.Data()
		scale := sc.ScaleData.Data()
		for q := range slope {
			slope[q] *= scale[q]
			if sc.BiasTerm != 0 {
				bias[q] = bias[q]*scale[q] + sc.BiasData.Data()[q]
			} else {
				bias[q] *= scale[q]
			}
		}

		audit("fuse_batchnorm_scale", bn.Name, sc.Name)
		g.Fuse(i, j)
	}
}

// fuseConvBatchNorm folds a following BatchNorm into any Conv*/Deconv*/
// InnerProduct producer (spec.md §8 scenarios 5-6, scenario A): per output
// channel q, scale = slope[q]/sqrt(var[q]+eps); weight[q,:] *= scale;
// a[q] = bn.bias[q] - mean[q]*scale; bias[q] = bias_old[q] + a[q].
func fuseConvBatchNorm(g *graph.Graph) {
	for i := 0; i < len(g.Layers); i++ {
		target, ok := g.Layers[i].(layer.BNTarget)
		if !ok || target.Base().Kind == layer.KindFused {
			continue
		}
		j, ok := g.ForwardMatch(i, layer.KindBatchNorm)
		if !ok {
			continue
		}
		bn := g.Layers[j].(*layer.BatchNorm)

		weight := target.Weight()
		outCh := target.OutChannels()
		perChannel := weight.Total() / outCh

		slope := bn.SlopeData.Data()
		mean := bn.MeanData.Data()
		variance := bn.VarData.Data()
		bnBias := bn.BiasData.Data()

		newBias := blob.New(outCh)
		newBiasData := newBias.Data()

		var oldBias []float32
		if target.HasBias() {
			oldBias = target.Bias().Data()
		}

		for q := 0; q < outCh; q++ {
			scale := slope[q] / float32(math.Sqrt(float64(variance[q]+bn.Eps)))
			wq := weight.Slice(q, perChannel)
			for v := range wq {
				wq[v] *= scale
			}
			var ob float32
			if oldBias != nil {
				ob = oldBias[q]
			}
			a := bnBias[q] - mean[q]*scale
			newBiasData[q] = ob + a
		}

		target.SetBias(1, newBias)

		audit("fuse_batchnorm", target.Base().Name, bn.Name)
		g.Fuse(i, j)
	}
}

// fuseInnerProductDropout folds a following Dropout into InnerProduct
// (spec.md §8 scenario C): weight *= scale, bias *= scale iff present.
func fuseInnerProductDropout(g *graph.Graph) {
	for i := 0; i < len(g.Layers); i++ {
		ip, ok := g.Layers[i].(*layer.InnerProduct)
		if !ok || ip.Kind == layer.KindFused {
			continue
		}
		j, ok := g.ForwardMatch(i, layer.KindDropout)
		if !ok {
			continue
		}
		dr := g.Layers[j].(*layer.Dropout)
		if dr.Scale == 1 {
			continue
		}

		w := ip.WeightData.Data()
		for k := range w {
			w[k] *= dr.Scale
		}
		if ip.BiasTerm != 0 {
			b := ip.BiasData.Data()
			for k := range b {
				b[k] *= dr.Scale
			}
		}

		audit("fuse_innerproduct_dropout", ip.Name, dr.Name)
		g.Fuse(i, j)
	}
}
