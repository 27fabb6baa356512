package layer

import "github.com/nnopt/netopt/internal/param"

// Fused is the sentinel layer kind a fusion rewrite turns its absorbed
// layer into (spec §3, §9). It carries no params or weights of its own;
// WriteParams is never called for it because the text codec skips
// KindFused layers entirely during serialization.
type Fused struct {
	Header
	noWeights
}

func (f *Fused) LoadParam(d *param.Dict)                 {}
func (f *Fused) WriteParams(sink ParamSink, def Layer)    {}
