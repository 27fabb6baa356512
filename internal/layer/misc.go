package layer

import (
	"github.com/nnopt/netopt/internal/blob"
	"github.com/nnopt/netopt/internal/param"
)

// Bias: 0=bias_data_size. Weights: bias_data, untagged.
type Bias struct {
	Header
	BiasDataSize int
	BiasData     *blob.Tensor
}

func (b *Bias) LoadParam(d *param.Dict) { b.BiasDataSize = d.Int(0, 0) }
func (b *Bias) WriteParams(sink ParamSink, def Layer) {
	putInt(sink, 0, b.BiasDataSize, def.(*Bias).BiasDataSize)
}
func (b *Bias) ReadWeights(r WeightReader) error {
	t, err := r.ReadPlain(b.BiasDataSize)
	if err != nil {
		return err
	}
	b.BiasData = t
	return nil
}
func (b *Bias) WriteWeights(w WeightWriter) error { return w.WritePlain(b.BiasData) }

// Dropout: 0=scale. scale==1 makes the layer a no-op eligible for elimination.
type Dropout struct {
	Header
	noWeights
	Scale float32
}

func (x *Dropout) LoadParam(d *param.Dict) { x.Scale = d.Float(0, 1) }
func (x *Dropout) WriteParams(sink ParamSink, def Layer) {
	putFloat(sink, 0, x.Scale, def.(*Dropout).Scale)
}

// Eltwise: 0=op_type 1=coeffs (array).
type Eltwise struct {
	Header
	noWeights
	OpType int
	Coeffs []float32
}

func (e *Eltwise) LoadParam(d *param.Dict) {
	e.OpType = d.Int(0, 0)
	e.Coeffs = d.FloatArray(1)
}
func (e *Eltwise) WriteParams(sink ParamSink, def Layer) {
	de := def.(*Eltwise)
	putInt(sink, 0, e.OpType, de.OpType)
	putFloatArray(sink, 1, e.Coeffs)
}

// Input: 0=w 1=h 2=c. A graph-input placeholder, never has a predecessor.
type Input struct {
	Header
	noWeights
	W, H, C int
}

func (i *Input) LoadParam(d *param.Dict) {
	i.W = d.Int(0, 0)
	i.H = d.Int(1, 0)
	i.C = d.Int(2, 0)
}
func (i *Input) WriteParams(sink ParamSink, def Layer) {
	di := def.(*Input)
	putInt(sink, 0, i.W, di.W)
	putInt(sink, 1, i.H, di.H)
	putInt(sink, 2, i.C, di.C)
}

// Scale: 0=scale_data_size 1=bias_term. Weights: scale_data, then bias_data
// iff bias_term, both untagged.
type Scale struct {
	Header
	ScaleDataSize int
	BiasTerm      int

	ScaleData *blob.Tensor
	BiasData  *blob.Tensor
}

func (s *Scale) LoadParam(d *param.Dict) {
	s.ScaleDataSize = d.Int(0, 0)
	s.BiasTerm = d.Int(1, 0)
}
func (s *Scale) WriteParams(sink ParamSink, def Layer) {
	ds := def.(*Scale)
	putInt(sink, 0, s.ScaleDataSize, ds.ScaleDataSize)
	putInt(sink, 1, s.BiasTerm, ds.BiasTerm)
}
func (s *Scale) ReadWeights(r WeightReader) error {
	t, err := r.ReadPlain(s.ScaleDataSize)
	if err != nil {
		return err
	}
	s.ScaleData = t
	if s.BiasTerm != 0 {
		b, err := r.ReadPlain(s.ScaleDataSize)
		if err != nil {
			return err
		}
		s.BiasData = b
	}
	return nil
}
func (s *Scale) WriteWeights(w WeightWriter) error {
	if err := w.WritePlain(s.ScaleData); err != nil {
		return err
	}
	if s.BiasTerm != 0 {
		return w.WritePlain(s.BiasData)
	}
	return nil
}

// Quantize: 0=scale.
type Quantize struct {
	Header
	noWeights
	Scale float32
}

func (q *Quantize) LoadParam(d *param.Dict) { q.Scale = d.Float(0, 1) }
func (q *Quantize) WriteParams(sink ParamSink, def Layer) {
	putFloat(sink, 0, q.Scale, def.(*Quantize).Scale)
}

// Requantize: 0=scale_in 1=scale_out 2=bias_term 3=bias_data_size
// 4=fusion_relu.
type Requantize struct {
	Header
	ScaleIn, ScaleOut float32
	BiasTerm          int
	BiasDataSize      int
	FusionReLU        int

	BiasData *blob.Tensor
}

func (r *Requantize) LoadParam(d *param.Dict) {
	r.ScaleIn = d.Float(0, 1)
	r.ScaleOut = d.Float(1, 1)
	r.BiasTerm = d.Int(2, 0)
	r.BiasDataSize = d.Int(3, 0)
	r.FusionReLU = d.Int(4, 0)
}
func (r *Requantize) WriteParams(sink ParamSink, def Layer) {
	dr := def.(*Requantize)
	putFloat(sink, 0, r.ScaleIn, dr.ScaleIn)
	putFloat(sink, 1, r.ScaleOut, dr.ScaleOut)
	putInt(sink, 2, r.BiasTerm, dr.BiasTerm)
	putInt(sink, 3, r.BiasDataSize, dr.BiasDataSize)
	putInt(sink, 4, r.FusionReLU, dr.FusionReLU)
}
func (r *Requantize) ReadWeights(rd WeightReader) error {
	if r.BiasTerm == 0 {
		return nil
	}
	t, err := rd.ReadPlain(r.BiasDataSize)
	if err != nil {
		return err
	}
	r.BiasData = t
	return nil
}
func (r *Requantize) WriteWeights(w WeightWriter) error {
	if r.BiasTerm == 0 {
		return nil
	}
	return w.WritePlain(r.BiasData)
}

// Reduction: 0=operation 1=dim 2=coeff.
type Reduction struct {
	Header
	noWeights
	Operation int
	Dim       int
	Coeff     float32
}

func (r *Reduction) LoadParam(d *param.Dict) {
	r.Operation = d.Int(0, 0)
	r.Dim = d.Int(1, 0)
	r.Coeff = d.Float(2, 1)
}
func (r *Reduction) WriteParams(sink ParamSink, def Layer) {
	dr := def.(*Reduction)
	putInt(sink, 0, r.Operation, dr.Operation)
	putInt(sink, 1, r.Dim, dr.Dim)
	putFloat(sink, 2, r.Coeff, dr.Coeff)
}

// Softmax: 0=axis, plus the fixbug0 companion key (1=1) emitted whenever
// axis != 0, preserved verbatim for interop (spec.md §9, SPEC_FULL item 2).
type Softmax struct {
	Header
	noWeights
	Axis int
}

func (s *Softmax) LoadParam(d *param.Dict) { s.Axis = d.Int(0, 0) }
func (s *Softmax) WriteParams(sink ParamSink, def Layer) {
	ds := def.(*Softmax)
	putInt(sink, 0, s.Axis, ds.Axis)
	if s.Axis != 0 {
		sink.PutInt(1, 1)
	}
}
