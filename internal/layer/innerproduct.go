package layer

import (
	"github.com/nnopt/netopt/internal/blob"
	"github.com/nnopt/netopt/internal/param"
)

// InnerProduct keys per spec.md §6: 0=num_output 1=bias_term
// 2=weight_data_size 8=int8_scale_term 9=activation_type 10=activation_params.
type InnerProduct struct {
	Header

	NumOutput        int
	BiasTerm         int
	WeightDataSize   int
	Int8ScaleTerm    int
	ActivationType   int
	ActivationParams []float32

	WeightData *blob.Tensor
	BiasData   *blob.Tensor
}

func (p *InnerProduct) LoadParam(d *param.Dict) {
	p.NumOutput = d.Int(0, 0)
	p.BiasTerm = d.Int(1, 0)
	p.WeightDataSize = d.Int(2, 0)
	p.Int8ScaleTerm = d.Int(8, 0)
	p.ActivationType = d.Int(9, 0)
	p.ActivationParams = d.FloatArray(10)
}

func (p *InnerProduct) WriteParams(sink ParamSink, def Layer) {
	dp := def.(*InnerProduct)
	putInt(sink, 0, p.NumOutput, dp.NumOutput)
	putInt(sink, 1, p.BiasTerm, dp.BiasTerm)
	putInt(sink, 2, p.WeightDataSize, dp.WeightDataSize)
	putInt(sink, 8, p.Int8ScaleTerm, dp.Int8ScaleTerm)
	putInt(sink, 9, p.ActivationType, dp.ActivationType)
	putFloatArray(sink, 10, p.ActivationParams)
}

func (p *InnerProduct) ReadWeights(r WeightReader) error {
	t, err := r.ReadTagged(p.WeightDataSize)
	if err != nil {
		return err
	}
	p.WeightData = t
	if p.BiasTerm != 0 {
		b, err := r.ReadPlain(p.NumOutput)
		if err != nil {
			return err
		}
		p.BiasData = b
	}
	return nil
}

func (p *InnerProduct) WriteWeights(w WeightWriter) error {
	if err := w.WriteTagged(p.WeightData); err != nil {
		return err
	}
	if p.BiasTerm != 0 {
		return w.WritePlain(p.BiasData)
	}
	return nil
}

// SetActivation implements Activatable.
func (p *InnerProduct) SetActivation(actType int, params []float32) {
	p.ActivationType = actType
	p.ActivationParams = params
}

func (p *InnerProduct) Weight() *blob.Tensor { return p.WeightData }
func (p *InnerProduct) OutChannels() int     { return p.NumOutput }
func (p *InnerProduct) HasBias() bool        { return p.BiasTerm != 0 }
func (p *InnerProduct) Bias() *blob.Tensor   { return p.BiasData }
func (p *InnerProduct) SetBias(term int, b *blob.Tensor) {
	p.BiasTerm = term
	p.BiasData = b
}
