package layer

import "github.com/nnopt/netopt/internal/param"

// DetectionOutput: 0=num_class 1=nms_threshold 2=nms_top_k 3=keep_top_k
// 4=confidence_threshold 5,6,7,8=variances[0..3] (four scalars, not an
// array — matches ncnnoptimize.cpp's save table exactly).
type DetectionOutput struct {
	Header
	noWeights
	NumClass           int
	NMSThreshold       float32
	NMSTopK            int
	KeepTopK           int
	ConfidenceThreshold float32
	Variances          []float32
}

func (d *DetectionOutput) LoadParam(p *param.Dict) {
	d.NumClass = p.Int(0, 0)
	d.NMSThreshold = p.Float(1, 0.05)
	d.NMSTopK = p.Int(2, 300)
	d.KeepTopK = p.Int(3, 100)
	d.ConfidenceThreshold = p.Float(4, 0.05)
	d.Variances = []float32{
		p.Float(5, 0.1),
		p.Float(6, 0.1),
		p.Float(7, 0.2),
		p.Float(8, 0.2),
	}
}
func (d *DetectionOutput) WriteParams(sink ParamSink, def Layer) {
	dd := def.(*DetectionOutput)
	putInt(sink, 0, d.NumClass, dd.NumClass)
	putFloat(sink, 1, d.NMSThreshold, dd.NMSThreshold)
	putInt(sink, 2, d.NMSTopK, dd.NMSTopK)
	putInt(sink, 3, d.KeepTopK, dd.KeepTopK)
	putFloat(sink, 4, d.ConfidenceThreshold, dd.ConfidenceThreshold)
	v, dv := variancesOrDefault(d.Variances), variancesOrDefault(dd.Variances)
	putFloat(sink, 5, v[0], dv[0])
	putFloat(sink, 6, v[1], dv[1])
	putFloat(sink, 7, v[2], dv[2])
	putFloat(sink, 8, v[3], dv[3])
}

// PriorBox: 0=min_sizes 1=max_sizes 2=aspect_ratios 3,4,5,6=variances[0..3]
// 7=flip 8=clip 9=image_width 10=image_height 11=step_width 12=step_height
// 13=offset. step defaults use ncnn's -233 sentinel meaning "derive from
// image size at runtime".
type PriorBox struct {
	Header
	noWeights
	MinSizes, MaxSizes, AspectRatios []float32
	Flip, Clip                       int
	ImageWidth, ImageHeight          int
	StepWidth, StepHeight            float32
	Offset                           float32
	Variances                        []float32
}

func (p *PriorBox) LoadParam(d *param.Dict) {
	p.MinSizes = d.FloatArray(0)
	p.MaxSizes = d.FloatArray(1)
	p.AspectRatios = d.FloatArray(2)
	p.Variances = []float32{
		d.Float(3, 0.1),
		d.Float(4, 0.1),
		d.Float(5, 0.2),
		d.Float(6, 0.2),
	}
	p.Flip = d.Int(7, 1)
	p.Clip = d.Int(8, 0)
	p.ImageWidth = d.Int(9, 0)
	p.ImageHeight = d.Int(10, 0)
	p.StepWidth = d.Float(11, -233)
	p.StepHeight = d.Float(12, -233)
	p.Offset = d.Float(13, 0.5)
}
func (p *PriorBox) WriteParams(sink ParamSink, def Layer) {
	dp := def.(*PriorBox)
	putFloatArray(sink, 0, p.MinSizes)
	putFloatArray(sink, 1, p.MaxSizes)
	putFloatArray(sink, 2, p.AspectRatios)
	v, dv := variancesOrDefault(p.Variances), variancesOrDefault(dp.Variances)
	putFloat(sink, 3, v[0], dv[0])
	putFloat(sink, 4, v[1], dv[1])
	putFloat(sink, 5, v[2], dv[2])
	putFloat(sink, 6, v[3], dv[3])
	putInt(sink, 7, p.Flip, dp.Flip)
	putInt(sink, 8, p.Clip, dp.Clip)
	putInt(sink, 9, p.ImageWidth, dp.ImageWidth)
	putInt(sink, 10, p.ImageHeight, dp.ImageHeight)
	putFloat(sink, 11, p.StepWidth, dp.StepWidth)
	putFloat(sink, 12, p.StepHeight, dp.StepHeight)
	putFloat(sink, 13, p.Offset, dp.Offset)
}

// variancesOrDefault returns v, or ncnn's standard SSD variance defaults if
// v hasn't been set to four values (e.g. a zero-value Header used as def).
func variancesOrDefault(v []float32) []float32 {
	if len(v) != 4 {
		return []float32{0.1, 0.1, 0.2, 0.2}
	}
	return v
}

// Proposal: 0=feat_stride 1=base_size 2=pre_nms_topN 3=after_nms_topN
// 4=nms_thresh 5=min_size.
type Proposal struct {
	Header
	noWeights
	FeatStride                int
	BaseSize                  int
	PreNMSTopN, AfterNMSTopN  int
	NMSThresh                 float32
	MinSize                   int
}

func (p *Proposal) LoadParam(d *param.Dict) {
	p.FeatStride = d.Int(0, 16)
	p.BaseSize = d.Int(1, 16)
	p.PreNMSTopN = d.Int(2, 6000)
	p.AfterNMSTopN = d.Int(3, 300)
	p.NMSThresh = d.Float(4, 0.7)
	p.MinSize = d.Int(5, 16)
}
func (p *Proposal) WriteParams(sink ParamSink, def Layer) {
	dp := def.(*Proposal)
	putInt(sink, 0, p.FeatStride, dp.FeatStride)
	putInt(sink, 1, p.BaseSize, dp.BaseSize)
	putInt(sink, 2, p.PreNMSTopN, dp.PreNMSTopN)
	putInt(sink, 3, p.AfterNMSTopN, dp.AfterNMSTopN)
	putFloat(sink, 4, p.NMSThresh, dp.NMSThresh)
	putInt(sink, 5, p.MinSize, dp.MinSize)
}

// YoloDetectionOutput: 0=num_class 1=num_box 2=confidence_threshold
// 3=nms_threshold 4=biases (array).
type YoloDetectionOutput struct {
	Header
	noWeights
	NumClass            int
	NumBox              int
	ConfidenceThreshold float32
	NMSThreshold        float32
	Biases              []float32
}

func (y *YoloDetectionOutput) LoadParam(d *param.Dict) {
	y.NumClass = d.Int(0, 20)
	y.NumBox = d.Int(1, 5)
	y.ConfidenceThreshold = d.Float(2, 0.01)
	y.NMSThreshold = d.Float(3, 0.45)
	y.Biases = d.FloatArray(4)
}
func (y *YoloDetectionOutput) WriteParams(sink ParamSink, def Layer) {
	dy := def.(*YoloDetectionOutput)
	putInt(sink, 0, y.NumClass, dy.NumClass)
	putInt(sink, 1, y.NumBox, dy.NumBox)
	putFloat(sink, 2, y.ConfidenceThreshold, dy.ConfidenceThreshold)
	putFloat(sink, 3, y.NMSThreshold, dy.NMSThreshold)
	putFloatArray(sink, 4, y.Biases)
}

// Yolov3DetectionOutput: 0=num_class 1=num_box 2=confidence_threshold
// 3=nms_threshold 4=biases 5=mask 6=anchors_scale.
type Yolov3DetectionOutput struct {
	Header
	noWeights
	NumClass            int
	NumBox              int
	ConfidenceThreshold float32
	NMSThreshold        float32
	Biases              []float32
	Mask                []float32
	AnchorsScale        []float32
}

func (y *Yolov3DetectionOutput) LoadParam(d *param.Dict) {
	y.NumClass = d.Int(0, 20)
	y.NumBox = d.Int(1, 3)
	y.ConfidenceThreshold = d.Float(2, 0.01)
	y.NMSThreshold = d.Float(3, 0.45)
	y.Biases = d.FloatArray(4)
	y.Mask = d.FloatArray(5)
	y.AnchorsScale = d.FloatArray(6)
}
func (y *Yolov3DetectionOutput) WriteParams(sink ParamSink, def Layer) {
	dy := def.(*Yolov3DetectionOutput)
	putInt(sink, 0, y.NumClass, dy.NumClass)
	putInt(sink, 1, y.NumBox, dy.NumBox)
	putFloat(sink, 2, y.ConfidenceThreshold, dy.ConfidenceThreshold)
	putFloat(sink, 3, y.NMSThreshold, dy.NMSThreshold)
	putFloatArray(sink, 4, y.Biases)
	putFloatArray(sink, 5, y.Mask)
	putFloatArray(sink, 6, y.AnchorsScale)
}
