package layer

import (
	"github.com/nnopt/netopt/internal/blob"
	"github.com/nnopt/netopt/internal/param"
)

// Convolution is key 0-15 per spec.md §6's selected key table, plus the
// activation fields every Conv*/Deconv*/InnerProduct kind carries so the
// activation-fusion pass (spec §4.5) can fold a trailing ReLU/Clip/Sigmoid
// into it uniformly.
type Convolution struct {
	Header

	NumOutput        int
	KernelW, KernelH int
	DilationW        int
	DilationH        int
	StrideW, StrideH int
	PadW, PadH       int
	BiasTerm         int
	WeightDataSize   int
	Int8ScaleTerm    int
	ActivationType   int
	ActivationParams []float32
	ImplType         int

	WeightData *blob.Tensor
	BiasData   *blob.Tensor
}

// loadCommonParams reads every Convolution key the original's save table
// also gives to ConvolutionDepthWise (all but key 15, impl_type, which only
// plain Convolution carries).
func (c *Convolution) loadCommonParams(d *param.Dict) {
	c.NumOutput = d.Int(0, 0)
	c.KernelW = d.Int(1, 0)
	c.KernelH = d.Int(11, c.KernelW)
	c.DilationW = d.Int(2, 1)
	c.DilationH = d.Int(12, c.DilationW)
	c.StrideW = d.Int(3, 1)
	c.StrideH = d.Int(13, c.StrideW)
	c.PadW = d.Int(4, 0)
	c.PadH = d.Int(14, c.PadW)
	c.BiasTerm = d.Int(5, 0)
	c.WeightDataSize = d.Int(6, 0)
	c.Int8ScaleTerm = d.Int(8, 0)
	c.ActivationType = d.Int(9, 0)
	c.ActivationParams = d.FloatArray(10)
}

func (c *Convolution) LoadParam(d *param.Dict) {
	c.loadCommonParams(d)
	c.ImplType = d.Int(15, 0)
}

// writeCommonParams is the counterpart to loadCommonParams, shared with
// ConvolutionDepthWise.WriteParams; key 15 is written only by Convolution's
// own WriteParams below.
func (c *Convolution) writeCommonParams(sink ParamSink, dc *Convolution) {
	putInt(sink, 0, c.NumOutput, dc.NumOutput)
	putInt(sink, 1, c.KernelW, dc.KernelW)
	putPairedInt(sink, 11, c.KernelH, c.KernelW)
	putInt(sink, 2, c.DilationW, dc.DilationW)
	putPairedInt(sink, 12, c.DilationH, c.DilationW)
	putInt(sink, 3, c.StrideW, dc.StrideW)
	putPairedInt(sink, 13, c.StrideH, c.StrideW)
	putInt(sink, 4, c.PadW, dc.PadW)
	putPairedInt(sink, 14, c.PadH, c.PadW)
	putInt(sink, 5, c.BiasTerm, dc.BiasTerm)
	putInt(sink, 6, c.WeightDataSize, dc.WeightDataSize)
	putInt(sink, 8, c.Int8ScaleTerm, dc.Int8ScaleTerm)
	putInt(sink, 9, c.ActivationType, dc.ActivationType)
	putFloatArray(sink, 10, c.ActivationParams)
}

func (c *Convolution) WriteParams(sink ParamSink, def Layer) {
	dc := def.(*Convolution)
	c.writeCommonParams(sink, dc)
	putInt(sink, 15, c.ImplType, dc.ImplType)
}

func (c *Convolution) ReadWeights(r WeightReader) error {
	t, err := r.ReadTagged(c.WeightDataSize)
	if err != nil {
		return err
	}
	c.WeightData = t
	if c.BiasTerm != 0 {
		b, err := r.ReadPlain(c.NumOutput)
		if err != nil {
			return err
		}
		c.BiasData = b
	}
	return nil
}

func (c *Convolution) WriteWeights(w WeightWriter) error {
	if err := w.WriteTagged(c.WeightData); err != nil {
		return err
	}
	if c.BiasTerm != 0 {
		return w.WritePlain(c.BiasData)
	}
	return nil
}

// SetActivation implements Activatable.
func (c *Convolution) SetActivation(actType int, params []float32) {
	c.ActivationType = actType
	c.ActivationParams = params
}

// Weight, OutChannels, HasBias, Bias, and SetBias implement the
// channel-scaled-fusion target contract internal/rewrite uses for Conv*/
// Deconv*/InnerProduct + BatchNorm folding.
func (c *Convolution) Weight() *blob.Tensor   { return c.WeightData }
func (c *Convolution) OutChannels() int       { return c.NumOutput }
func (c *Convolution) HasBias() bool          { return c.BiasTerm != 0 }
func (c *Convolution) Bias() *blob.Tensor     { return c.BiasData }
func (c *Convolution) SetBias(term int, b *blob.Tensor) {
	c.BiasTerm = term
	c.BiasData = b
}

// ConvolutionDepthWise adds the depthwise group count (key 7) to Convolution.
type ConvolutionDepthWise struct {
	Convolution
	Group int
}

func (c *ConvolutionDepthWise) LoadParam(d *param.Dict) {
	c.Convolution.loadCommonParams(d)
	c.Group = d.Int(7, 1)
}

func (c *ConvolutionDepthWise) WriteParams(sink ParamSink, def Layer) {
	dc := def.(*ConvolutionDepthWise)
	c.Convolution.writeCommonParams(sink, &dc.Convolution)
	putInt(sink, 7, c.Group, dc.Group)
}

// Deconvolution reuses Convolution's base keys; key 8 means output_pad_w
// here instead of int8_scale_term, and key 18 adds output_pad_h (paired at
// +10 from key 8), per spec.md §6.
type Deconvolution struct {
	Header

	NumOutput           int
	KernelW, KernelH     int
	DilationW, DilationH int
	StrideW, StrideH     int
	PadW, PadH           int
	BiasTerm             int
	WeightDataSize       int
	OutputPadW           int
	OutputPadH           int
	ActivationType       int
	ActivationParams     []float32

	WeightData *blob.Tensor
	BiasData   *blob.Tensor
}

func (c *Deconvolution) LoadParam(d *param.Dict) {
	c.NumOutput = d.Int(0, 0)
	c.KernelW = d.Int(1, 0)
	c.KernelH = d.Int(11, c.KernelW)
	c.DilationW = d.Int(2, 1)
	c.DilationH = d.Int(12, c.DilationW)
	c.StrideW = d.Int(3, 1)
	c.StrideH = d.Int(13, c.StrideW)
	c.PadW = d.Int(4, 0)
	c.PadH = d.Int(14, c.PadW)
	c.BiasTerm = d.Int(5, 0)
	c.WeightDataSize = d.Int(6, 0)
	c.OutputPadW = d.Int(8, 0)
	c.OutputPadH = d.Int(18, c.OutputPadW)
	c.ActivationType = d.Int(9, 0)
	c.ActivationParams = d.FloatArray(10)
}

func (c *Deconvolution) WriteParams(sink ParamSink, def Layer) {
	dc := def.(*Deconvolution)
	putInt(sink, 0, c.NumOutput, dc.NumOutput)
	putInt(sink, 1, c.KernelW, dc.KernelW)
	putPairedInt(sink, 11, c.KernelH, c.KernelW)
	putInt(sink, 2, c.DilationW, dc.DilationW)
	putPairedInt(sink, 12, c.DilationH, c.DilationW)
	putInt(sink, 3, c.StrideW, dc.StrideW)
	putPairedInt(sink, 13, c.StrideH, c.StrideW)
	putInt(sink, 4, c.PadW, dc.PadW)
	putPairedInt(sink, 14, c.PadH, c.PadW)
	putInt(sink, 5, c.BiasTerm, dc.BiasTerm)
	putInt(sink, 6, c.WeightDataSize, dc.WeightDataSize)
	putInt(sink, 8, c.OutputPadW, dc.OutputPadW)
	putPairedInt(sink, 18, c.OutputPadH, c.OutputPadW)
	putInt(sink, 9, c.ActivationType, dc.ActivationType)
	putFloatArray(sink, 10, c.ActivationParams)
}

func (c *Deconvolution) ReadWeights(r WeightReader) error {
	t, err := r.ReadTagged(c.WeightDataSize)
	if err != nil {
		return err
	}
	c.WeightData = t
	if c.BiasTerm != 0 {
		b, err := r.ReadPlain(c.NumOutput)
		if err != nil {
			return err
		}
		c.BiasData = b
	}
	return nil
}

func (c *Deconvolution) WriteWeights(w WeightWriter) error {
	if err := w.WriteTagged(c.WeightData); err != nil {
		return err
	}
	if c.BiasTerm != 0 {
		return w.WritePlain(c.BiasData)
	}
	return nil
}

// SetActivation implements Activatable.
func (c *Deconvolution) SetActivation(actType int, params []float32) {
	c.ActivationType = actType
	c.ActivationParams = params
}

func (c *Deconvolution) Weight() *blob.Tensor { return c.WeightData }
func (c *Deconvolution) OutChannels() int     { return c.NumOutput }
func (c *Deconvolution) HasBias() bool        { return c.BiasTerm != 0 }
func (c *Deconvolution) Bias() *blob.Tensor   { return c.BiasData }
func (c *Deconvolution) SetBias(term int, b *blob.Tensor) {
	c.BiasTerm = term
	c.BiasData = b
}

// DeconvolutionDepthWise adds the depthwise group count (key 7).
type DeconvolutionDepthWise struct {
	Deconvolution
	Group int
}

func (c *DeconvolutionDepthWise) LoadParam(d *param.Dict) {
	c.Deconvolution.LoadParam(d)
	c.Group = d.Int(7, 1)
}

func (c *DeconvolutionDepthWise) WriteParams(sink ParamSink, def Layer) {
	dc := def.(*DeconvolutionDepthWise)
	c.Deconvolution.WriteParams(sink, &dc.Deconvolution)
	putInt(sink, 7, c.Group, dc.Group)
}
