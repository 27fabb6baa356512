package layer

import (
	"github.com/nnopt/netopt/internal/blob"
	"github.com/nnopt/netopt/internal/param"
)

// BatchNorm keys per spec.md §6: 0=channels 1=eps; weights in order
// slope, mean, var, bias, all untagged.
type BatchNorm struct {
	Header
	Channels int
	Eps      float32

	SlopeData *blob.Tensor
	MeanData  *blob.Tensor
	VarData   *blob.Tensor
	BiasData  *blob.Tensor
}

func (b *BatchNorm) LoadParam(d *param.Dict) {
	b.Channels = d.Int(0, 0)
	b.Eps = d.Float(1, 0)
}

func (b *BatchNorm) WriteParams(sink ParamSink, def Layer) {
	db := def.(*BatchNorm)
	putInt(sink, 0, b.Channels, db.Channels)
	putFloat(sink, 1, b.Eps, db.Eps)
}

func (b *BatchNorm) ReadWeights(r WeightReader) error {
	var err error
	if b.SlopeData, err = r.ReadPlain(b.Channels); err != nil {
		return err
	}
	if b.MeanData, err = r.ReadPlain(b.Channels); err != nil {
		return err
	}
	if b.VarData, err = r.ReadPlain(b.Channels); err != nil {
		return err
	}
	if b.BiasData, err = r.ReadPlain(b.Channels); err != nil {
		return err
	}
	return nil
}

func (b *BatchNorm) WriteWeights(w WeightWriter) error {
	if err := w.WritePlain(b.SlopeData); err != nil {
		return err
	}
	if err := w.WritePlain(b.MeanData); err != nil {
		return err
	}
	if err := w.WritePlain(b.VarData); err != nil {
		return err
	}
	return w.WritePlain(b.BiasData)
}

// InstanceNorm: 0=channels 1=eps 2=affine. Weights: gamma, beta, untagged.
type InstanceNorm struct {
	Header
	Channels int
	Eps      float32
	Affine   int

	GammaData *blob.Tensor
	BetaData  *blob.Tensor
}

func (n *InstanceNorm) LoadParam(d *param.Dict) {
	n.Channels = d.Int(0, 0)
	n.Eps = d.Float(1, 1e-5)
	n.Affine = d.Int(2, 1)
}

func (n *InstanceNorm) WriteParams(sink ParamSink, def Layer) {
	dn := def.(*InstanceNorm)
	putInt(sink, 0, n.Channels, dn.Channels)
	putFloat(sink, 1, n.Eps, dn.Eps)
	putInt(sink, 2, n.Affine, dn.Affine)
}

func (n *InstanceNorm) ReadWeights(r WeightReader) error {
	if n.Affine == 0 {
		return nil
	}
	var err error
	if n.GammaData, err = r.ReadPlain(n.Channels); err != nil {
		return err
	}
	n.BetaData, err = r.ReadPlain(n.Channels)
	return err
}

func (n *InstanceNorm) WriteWeights(w WeightWriter) error {
	if n.Affine == 0 {
		return nil
	}
	if err := w.WritePlain(n.GammaData); err != nil {
		return err
	}
	return w.WritePlain(n.BetaData)
}

// Normalize: 0=across_spatial 1=channel_shared 2=eps 3=scale_data_size
// 4=across_channel 9=eps_mode. Weights: scale_data, untagged.
type Normalize struct {
	Header
	AcrossSpatial int
	ChannelShared int
	Eps           float32
	ScaleDataSize int
	AcrossChannel int

	ScaleData *blob.Tensor
}

func (n *Normalize) LoadParam(d *param.Dict) {
	n.AcrossSpatial = d.Int(0, 1)
	n.ChannelShared = d.Int(1, 0)
	n.Eps = d.Float(2, 0.0001)
	n.ScaleDataSize = d.Int(3, 0)
	n.AcrossChannel = d.Int(4, 0)
}

func (n *Normalize) WriteParams(sink ParamSink, def Layer) {
	dn := def.(*Normalize)
	putInt(sink, 0, n.AcrossSpatial, dn.AcrossSpatial)
	putInt(sink, 1, n.ChannelShared, dn.ChannelShared)
	putFloat(sink, 2, n.Eps, dn.Eps)
	putInt(sink, 3, n.ScaleDataSize, dn.ScaleDataSize)
	putInt(sink, 4, n.AcrossChannel, dn.AcrossChannel)
}

func (n *Normalize) ReadWeights(r WeightReader) error {
	t, err := r.ReadPlain(n.ScaleDataSize)
	if err != nil {
		return err
	}
	n.ScaleData = t
	return nil
}

func (n *Normalize) WriteWeights(w WeightWriter) error {
	return w.WritePlain(n.ScaleData)
}

// MVN: 0=normalize_variance 1=across_channels 2=eps.
type MVN struct {
	Header
	noWeights
	NormalizeVariance int
	AcrossChannels    int
	Eps               float32
}

func (m *MVN) LoadParam(d *param.Dict) {
	m.NormalizeVariance = d.Int(0, 0)
	m.AcrossChannels = d.Int(1, 0)
	m.Eps = d.Float(2, 0.0001)
}

func (m *MVN) WriteParams(sink ParamSink, def Layer) {
	dm := def.(*MVN)
	putInt(sink, 0, m.NormalizeVariance, dm.NormalizeVariance)
	putInt(sink, 1, m.AcrossChannels, dm.AcrossChannels)
	putFloat(sink, 2, m.Eps, dm.Eps)
}

// LRN: 0=region_type 1=local_size 2=alpha 3=beta 4=bias.
type LRN struct {
	Header
	noWeights
	RegionType int
	LocalSize  int
	Alpha      float32
	Beta       float32
	Bias       float32
}

func (l *LRN) LoadParam(d *param.Dict) {
	l.RegionType = d.Int(0, 0)
	l.LocalSize = d.Int(1, 5)
	l.Alpha = d.Float(2, 1)
	l.Beta = d.Float(3, 0.75)
	l.Bias = d.Float(4, 1)
}

func (l *LRN) WriteParams(sink ParamSink, def Layer) {
	dl := def.(*LRN)
	putInt(sink, 0, l.RegionType, dl.RegionType)
	putInt(sink, 1, l.LocalSize, dl.LocalSize)
	putFloat(sink, 2, l.Alpha, dl.Alpha)
	putFloat(sink, 3, l.Beta, dl.Beta)
	putFloat(sink, 4, l.Bias, dl.Bias)
}
