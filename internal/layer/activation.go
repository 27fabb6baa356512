package layer

import (
	"github.com/nnopt/netopt/internal/blob"
	"github.com/nnopt/netopt/internal/param"
)

// ReLU: 0=slope. slope==0 is plain ReLU; slope!=0 is LeakyReLU. The
// activation-fusion pass folds plain ReLU into a preceding conv/linear layer
// as activation_type 1 with no params, and LeakyReLU as activation_type 2
// with activation_params [slope].
type ReLU struct {
	Header
	noWeights
	Slope float32
}

func (r *ReLU) LoadParam(d *param.Dict) { r.Slope = d.Float(0, 0) }
func (r *ReLU) WriteParams(sink ParamSink, def Layer) {
	putFloat(sink, 0, r.Slope, def.(*ReLU).Slope)
}

// Clip: 0=min 1=max, fused as activation_type 3 with params [min, max].
type Clip struct {
	Header
	noWeights
	Min float32
	Max float32
}

func (c *Clip) LoadParam(d *param.Dict) {
	c.Min = d.Float(0, -3.4028235e38)
	c.Max = d.Float(1, 3.4028235e38)
}
func (c *Clip) WriteParams(sink ParamSink, def Layer) {
	dc := def.(*Clip)
	putFloat(sink, 0, c.Min, dc.Min)
	putFloat(sink, 1, c.Max, dc.Max)
}

// Sigmoid carries no parameters. Fused as activation_type 4, no params.
type Sigmoid struct {
	Header
	noWeights
}

func (s *Sigmoid) LoadParam(d *param.Dict)              {}
func (s *Sigmoid) WriteParams(sink ParamSink, def Layer) {}

// PReLU: 0=num_slope. Weights: slope_data, untagged.
type PReLU struct {
	Header
	NumSlope  int
	SlopeData *blob.Tensor
}

func (p *PReLU) LoadParam(d *param.Dict) { p.NumSlope = d.Int(0, 0) }
func (p *PReLU) WriteParams(sink ParamSink, def Layer) {
	putInt(sink, 0, p.NumSlope, def.(*PReLU).NumSlope)
}
func (p *PReLU) ReadWeights(r WeightReader) error {
	t, err := r.ReadPlain(p.NumSlope)
	if err != nil {
		return err
	}
	p.SlopeData = t
	return nil
}
func (p *PReLU) WriteWeights(w WeightWriter) error { return w.WritePlain(p.SlopeData) }

// ELU: 0=alpha.
type ELU struct {
	Header
	noWeights
	Alpha float32
}

func (e *ELU) LoadParam(d *param.Dict) { e.Alpha = d.Float(0, 0.1) }
func (e *ELU) WriteParams(sink ParamSink, def Layer) {
	putFloat(sink, 0, e.Alpha, def.(*ELU).Alpha)
}

// Threshold: 0=threshold.
type Threshold struct {
	Header
	noWeights
	ThresholdVal float32
}

func (t *Threshold) LoadParam(d *param.Dict) { t.ThresholdVal = d.Float(0, 0) }
func (t *Threshold) WriteParams(sink ParamSink, def Layer) {
	putFloat(sink, 0, t.ThresholdVal, def.(*Threshold).ThresholdVal)
}

// Power: 0=power 1=scale 2=shift.
type Power struct {
	Header
	noWeights
	PowerVal float32
	Scale    float32
	Shift    float32
}

func (p *Power) LoadParam(d *param.Dict) {
	p.PowerVal = d.Float(0, 1)
	p.Scale = d.Float(1, 1)
	p.Shift = d.Float(2, 0)
}
func (p *Power) WriteParams(sink ParamSink, def Layer) {
	dp := def.(*Power)
	putFloat(sink, 0, p.PowerVal, dp.PowerVal)
	putFloat(sink, 1, p.Scale, dp.Scale)
	putFloat(sink, 2, p.Shift, dp.Shift)
}

// Exp: 0=base 1=scale 2=shift. base<0 selects natural exponent.
type Exp struct {
	Header
	noWeights
	BaseVal float32
	Scale   float32
	Shift   float32
}

func (e *Exp) LoadParam(d *param.Dict) {
	e.BaseVal = d.Float(0, -1)
	e.Scale = d.Float(1, 1)
	e.Shift = d.Float(2, 0)
}
func (e *Exp) WriteParams(sink ParamSink, def Layer) {
	de := def.(*Exp)
	putFloat(sink, 0, e.BaseVal, de.BaseVal)
	putFloat(sink, 1, e.Scale, de.Scale)
	putFloat(sink, 2, e.Shift, de.Shift)
}

// Log: same schema shape as Exp, inverse operation.
type Log struct {
	Header
	noWeights
	BaseVal float32
	Scale   float32
	Shift   float32
}

func (l *Log) LoadParam(d *param.Dict) {
	l.BaseVal = d.Float(0, -1)
	l.Scale = d.Float(1, 1)
	l.Shift = d.Float(2, 0)
}
func (l *Log) WriteParams(sink ParamSink, def Layer) {
	dl := def.(*Log)
	putFloat(sink, 0, l.BaseVal, dl.BaseVal)
	putFloat(sink, 1, l.Scale, dl.Scale)
	putFloat(sink, 2, l.Shift, dl.Shift)
}

// BinaryOp: 0=op_type 1=with_scalar 2=b.
type BinaryOp struct {
	Header
	noWeights
	OpType     int
	WithScalar int
	B          float32
}

func (b *BinaryOp) LoadParam(d *param.Dict) {
	b.OpType = d.Int(0, 0)
	b.WithScalar = d.Int(1, 0)
	b.B = d.Float(2, 0)
}
func (b *BinaryOp) WriteParams(sink ParamSink, def Layer) {
	db := def.(*BinaryOp)
	putInt(sink, 0, b.OpType, db.OpType)
	putInt(sink, 1, b.WithScalar, db.WithScalar)
	putFloat(sink, 2, b.B, db.B)
}

// UnaryOp: 0=op_type.
type UnaryOp struct {
	Header
	noWeights
	OpType int
}

func (u *UnaryOp) LoadParam(d *param.Dict) { u.OpType = d.Int(0, 0) }
func (u *UnaryOp) WriteParams(sink ParamSink, def Layer) {
	putInt(sink, 0, u.OpType, def.(*UnaryOp).OpType)
}
