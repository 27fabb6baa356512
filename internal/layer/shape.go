package layer

import "github.com/nnopt/netopt/internal/param"

// Flatten carries no parameters.
type Flatten struct {
	Header
	noWeights
}

func (f *Flatten) LoadParam(d *param.Dict)              {}
func (f *Flatten) WriteParams(sink ParamSink, def Layer) {}

// Reshape: 0=w 1=h 2=c 3=permute. -1 means "unspecified, infer".
type Reshape struct {
	Header
	noWeights
	W, H, C int
	Permute int
}

func (r *Reshape) LoadParam(d *param.Dict) {
	r.W = d.Int(0, -1)
	r.H = d.Int(1, -1)
	r.C = d.Int(2, -1)
	r.Permute = d.Int(3, 0)
}
func (r *Reshape) WriteParams(sink ParamSink, def Layer) {
	dr := def.(*Reshape)
	putInt(sink, 0, r.W, dr.W)
	putInt(sink, 1, r.H, dr.H)
	putInt(sink, 2, r.C, dr.C)
	putInt(sink, 3, r.Permute, dr.Permute)
}

// Permute: 0=order_type.
type Permute struct {
	Header
	noWeights
	OrderType int
}

func (p *Permute) LoadParam(d *param.Dict) { p.OrderType = d.Int(0, 0) }
func (p *Permute) WriteParams(sink ParamSink, def Layer) {
	putInt(sink, 0, p.OrderType, def.(*Permute).OrderType)
}

// Crop: 0=woffset 1=hoffset 2=coffset 3=outw 4=outh 5=outc.
type Crop struct {
	Header
	noWeights
	WOffset, HOffset, COffset int
	OutW, OutH, OutC          int
}

func (c *Crop) LoadParam(d *param.Dict) {
	c.WOffset = d.Int(0, 0)
	c.HOffset = d.Int(1, 0)
	c.COffset = d.Int(2, 0)
	c.OutW = d.Int(3, 0)
	c.OutH = d.Int(4, 0)
	c.OutC = d.Int(5, 0)
}
func (c *Crop) WriteParams(sink ParamSink, def Layer) {
	dc := def.(*Crop)
	putInt(sink, 0, c.WOffset, dc.WOffset)
	putInt(sink, 1, c.HOffset, dc.HOffset)
	putInt(sink, 2, c.COffset, dc.COffset)
	putInt(sink, 3, c.OutW, dc.OutW)
	putInt(sink, 4, c.OutH, dc.OutH)
	putInt(sink, 5, c.OutC, dc.OutC)
}

// Padding: 0=top 1=bottom 2=left 3=right 4=type 5=value.
type Padding struct {
	Header
	noWeights
	Top, Bottom, Left, Right int
	PadType                  int
	Value                    float32
}

func (p *Padding) LoadParam(d *param.Dict) {
	p.Top = d.Int(0, 0)
	p.Bottom = d.Int(1, 0)
	p.Left = d.Int(2, 0)
	p.Right = d.Int(3, 0)
	p.PadType = d.Int(4, 0)
	p.Value = d.Float(5, 0)
}
func (p *Padding) WriteParams(sink ParamSink, def Layer) {
	dp := def.(*Padding)
	putInt(sink, 0, p.Top, dp.Top)
	putInt(sink, 1, p.Bottom, dp.Bottom)
	putInt(sink, 2, p.Left, dp.Left)
	putInt(sink, 3, p.Right, dp.Right)
	putInt(sink, 4, p.PadType, dp.PadType)
	putFloat(sink, 5, p.Value, dp.Value)
}

// Concat: 0=axis.
type Concat struct {
	Header
	noWeights
	Axis int
}

func (c *Concat) LoadParam(d *param.Dict) { c.Axis = d.Int(0, 0) }
func (c *Concat) WriteParams(sink ParamSink, def Layer) {
	putInt(sink, 0, c.Axis, def.(*Concat).Axis)
}

// Slice: 0=slices (array) 1=axis.
type Slice struct {
	Header
	noWeights
	Slices []int
	Axis   int
}

func (s *Slice) LoadParam(d *param.Dict) {
	s.Slices = d.IntArray(0)
	s.Axis = d.Int(1, 0)
}
func (s *Slice) WriteParams(sink ParamSink, def Layer) {
	ds := def.(*Slice)
	putIntArray(sink, 0, s.Slices)
	putInt(sink, 1, s.Axis, ds.Axis)
}

// ShuffleChannel: 0=group. The original's save table has no reverse key.
type ShuffleChannel struct {
	Header
	noWeights
	Group int
}

func (s *ShuffleChannel) LoadParam(d *param.Dict) {
	s.Group = d.Int(0, 1)
}
func (s *ShuffleChannel) WriteParams(sink ParamSink, def Layer) {
	ds := def.(*ShuffleChannel)
	putInt(sink, 0, s.Group, ds.Group)
}

// Reorg: 0=stride.
type Reorg struct {
	Header
	noWeights
	Stride int
}

func (r *Reorg) LoadParam(d *param.Dict) { r.Stride = d.Int(0, 1) }
func (r *Reorg) WriteParams(sink ParamSink, def Layer) {
	putInt(sink, 0, r.Stride, def.(*Reorg).Stride)
}

// Interp: 0=resize_type 1=height_scale 2=width_scale 3=output_height
// 4=output_width.
type Interp struct {
	Header
	noWeights
	ResizeType               int
	HeightScale, WidthScale  float32
	OutputHeight, OutputWidth int
}

func (i *Interp) LoadParam(d *param.Dict) {
	i.ResizeType = d.Int(0, 1)
	i.HeightScale = d.Float(1, 1)
	i.WidthScale = d.Float(2, 1)
	i.OutputHeight = d.Int(3, 0)
	i.OutputWidth = d.Int(4, 0)
}
func (i *Interp) WriteParams(sink ParamSink, def Layer) {
	di := def.(*Interp)
	putInt(sink, 0, i.ResizeType, di.ResizeType)
	putFloat(sink, 1, i.HeightScale, di.HeightScale)
	putFloat(sink, 2, i.WidthScale, di.WidthScale)
	putInt(sink, 3, i.OutputHeight, di.OutputHeight)
	putInt(sink, 4, i.OutputWidth, di.OutputWidth)
}
