package layer

import "github.com/nnopt/netopt/internal/param"

// Pooling: 0=pooling_type 1=kernel_w 11=kernel_h 2=stride_w 12=stride_h
// 3=pad_left 13=pad_top 14=pad_right 15=pad_bottom 4=global_pooling
// 5=pad_mode, the 4-way asymmetric padding form carried over from the
// original rather than spec.md's brief single pad_w/pad_h mention.
type Pooling struct {
	Header
	noWeights
	PoolingType              int
	KernelW, KernelH         int
	StrideW, StrideH         int
	PadLeft, PadTop          int
	PadRight, PadBottom      int
	GlobalPooling            int
	PadMode                  int
}

func (p *Pooling) LoadParam(d *param.Dict) {
	p.PoolingType = d.Int(0, 0)
	p.KernelW = d.Int(1, 0)
	p.KernelH = d.Int(11, p.KernelW)
	p.StrideW = d.Int(2, 1)
	p.StrideH = d.Int(12, p.StrideW)
	p.PadLeft = d.Int(3, 0)
	p.PadTop = d.Int(13, p.PadLeft)
	p.PadRight = d.Int(14, p.PadLeft)
	p.PadBottom = d.Int(15, p.PadTop)
	p.GlobalPooling = d.Int(4, 0)
	p.PadMode = d.Int(5, 0)
}

func (p *Pooling) WriteParams(sink ParamSink, def Layer) {
	dp := def.(*Pooling)
	putInt(sink, 0, p.PoolingType, dp.PoolingType)
	putInt(sink, 1, p.KernelW, dp.KernelW)
	putPairedInt(sink, 11, p.KernelH, p.KernelW)
	putInt(sink, 2, p.StrideW, dp.StrideW)
	putPairedInt(sink, 12, p.StrideH, p.StrideW)
	putInt(sink, 3, p.PadLeft, dp.PadLeft)
	putPairedInt(sink, 13, p.PadTop, p.PadLeft)
	putPairedInt(sink, 14, p.PadRight, p.PadLeft)
	putPairedInt(sink, 15, p.PadBottom, p.PadTop)
	putInt(sink, 4, p.GlobalPooling, dp.GlobalPooling)
	putInt(sink, 5, p.PadMode, dp.PadMode)
}

// ROIPooling: 0=pooled_width 1=pooled_height 2=spatial_scale.
type ROIPooling struct {
	Header
	noWeights
	PooledWidth, PooledHeight int
	SpatialScale              float32
}

func (r *ROIPooling) LoadParam(d *param.Dict) {
	r.PooledWidth = d.Int(0, 0)
	r.PooledHeight = d.Int(1, 0)
	r.SpatialScale = d.Float(2, 0.0625)
}
func (r *ROIPooling) WriteParams(sink ParamSink, def Layer) {
	dr := def.(*ROIPooling)
	putInt(sink, 0, r.PooledWidth, dr.PooledWidth)
	putInt(sink, 1, r.PooledHeight, dr.PooledHeight)
	putFloat(sink, 2, r.SpatialScale, dr.SpatialScale)
}

// ROIAlign: same schema shape as ROIPooling.
type ROIAlign struct {
	Header
	noWeights
	PooledWidth, PooledHeight int
	SpatialScale              float32
}

func (r *ROIAlign) LoadParam(d *param.Dict) {
	r.PooledWidth = d.Int(0, 0)
	r.PooledHeight = d.Int(1, 0)
	r.SpatialScale = d.Float(2, 0.0625)
}
func (r *ROIAlign) WriteParams(sink ParamSink, def Layer) {
	dr := def.(*ROIAlign)
	putInt(sink, 0, r.PooledWidth, dr.PooledWidth)
	putInt(sink, 1, r.PooledHeight, dr.PooledHeight)
	putFloat(sink, 2, r.SpatialScale, dr.SpatialScale)
}

// PSROIPooling: 0=pooled_width 1=pooled_height 2=spatial_scale 3=output_dim.
type PSROIPooling struct {
	Header
	noWeights
	PooledWidth, PooledHeight int
	SpatialScale              float32
	OutputDim                 int
}

func (p *PSROIPooling) LoadParam(d *param.Dict) {
	p.PooledWidth = d.Int(0, 7)
	p.PooledHeight = d.Int(1, 7)
	p.SpatialScale = d.Float(2, 0.0625)
	p.OutputDim = d.Int(3, 0)
}
func (p *PSROIPooling) WriteParams(sink ParamSink, def Layer) {
	dp := def.(*PSROIPooling)
	putInt(sink, 0, p.PooledWidth, dp.PooledWidth)
	putInt(sink, 1, p.PooledHeight, dp.PooledHeight)
	putFloat(sink, 2, p.SpatialScale, dp.SpatialScale)
	putInt(sink, 3, p.OutputDim, dp.OutputDim)
}
