// Package rewrite implements the fixed-order optimization pipeline (spec.md
// §4.5, §6, §9): arithmetic fusions, eliminations, and kind substitutions
// applied over a internal/graph.Graph. Grounded on the control-flow shape of
// original_source/tools/ncnnoptimize.cpp's main(): a flat sequence of
// pass calls, each scanning the layer list once (or, for the Conv/IP
// substitution, to a fixed point) and silently no-op'ing when its pattern
// does not match, per spec.md §7's "rewrite passes do not fail" rule.
package rewrite

import (
	"k8s.io/klog/v2"

	"github.com/nnopt/netopt/internal/graph"
)

// Pipeline runs every pass in the fixed order spec.md mandates. The two
// Flatten-elimination passes bracket the Conv->InnerProduct substitutions
// by construction — this function's body is the enforcement of that
// ordering, not a generic pass list that could be reordered by accident.
func Pipeline(g *graph.Graph) error {
	fuseBatchNormScale(g)

	fuseConvBatchNorm(g)

	fuseInnerProductDropout(g)

	fuseActivation(g)

	eliminateDropout(g)

	eliminateFlattenAfterGlobalPooling(g)

	replaceConvolutionWithInnerProductAfterGlobalPooling(g)
	replaceConvolutionWithInnerProductAfterInnerProduct(g)

	eliminateFlattenAfterInnerProduct(g)

	return g.CheckInvariants()
}

// audit emits the per-fusion diagnostic line spec.md §7 requires: producer
// name and absorbed name, to the error stream via klog.
func audit(action, producer, absorbed string) {
	klog.Infof("%s: %s absorbed %s", action, producer, absorbed)
}
