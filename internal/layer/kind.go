package layer

// Kind is the tagged-variant discriminant of the layer IR (spec.md §3/§4.4).
// It is carried as data in Header rather than implied by the Go static type,
// because the fusion rewiring rule (spec §4.5, §9) rewrites a layer's Kind to
// KindFused in place while its concrete struct stays exactly what it was
// loaded as (matching the original optimizer's "rename the type string"
// trick rather than replacing the object).
type Kind int

// The layer kinds known to the optimizer. Ordering is the declaration order
// of spec.md's enumeration with KindSigmoid inserted: spec.md's fusion rules
// (§4.5) require matching a "ReLU/Clip/Sigmoid" successor, but the kind list
// itself omits Sigmoid — an oversight in the distillation carried over from
// ncnn's real layer set, where Sigmoid is an ordinary parameterless layer.
// It is added here so the fusion pattern can match it at all.
const (
	KindBatchNorm Kind = iota
	KindBias
	KindBinaryOp
	KindClip
	KindConcat
	KindConvolution
	KindConvolutionDepthWise
	KindCrop
	KindDeconvolution
	KindDeconvolutionDepthWise
	KindDetectionOutput
	KindDropout
	KindEltwise
	KindELU
	KindExp
	KindFlatten
	KindInnerProduct
	KindInput
	KindInstanceNorm
	KindInterp
	KindLog
	KindLRN
	KindMVN
	KindNormalize
	KindPadding
	KindPermute
	KindPooling
	KindPower
	KindPReLU
	KindPriorBox
	KindProposal
	KindPSROIPooling
	KindQuantize
	KindReduction
	KindReLU
	KindReorg
	KindRequantize
	KindReshape
	KindROIAlign
	KindROIPooling
	KindScale
	KindShuffleChannel
	KindSigmoid
	KindSlice
	KindSoftmax
	KindThreshold
	KindUnaryOp
	KindYoloDetectionOutput
	KindYolov3DetectionOutput

	// KindFused marks a layer absorbed into its predecessor; it must be
	// skipped by every later pass and by serialization (spec §3, §9).
	KindFused
)

var kindNames = map[Kind]string{
	KindBatchNorm:              "BatchNorm",
	KindBias:                   "Bias",
	KindBinaryOp:               "BinaryOp",
	KindClip:                   "Clip",
	KindConcat:                 "Concat",
	KindConvolution:            "Convolution",
	KindConvolutionDepthWise:   "ConvolutionDepthWise",
	KindCrop:                   "Crop",
	KindDeconvolution:          "Deconvolution",
	KindDeconvolutionDepthWise: "DeconvolutionDepthWise",
	KindDetectionOutput:        "DetectionOutput",
	KindDropout:                "Dropout",
	KindEltwise:                "Eltwise",
	KindELU:                    "ELU",
	KindExp:                    "Exp",
	KindFlatten:                "Flatten",
	KindInnerProduct:           "InnerProduct",
	KindInput:                  "Input",
	KindInstanceNorm:           "InstanceNorm",
	KindInterp:                 "Interp",
	KindLog:                    "Log",
	KindLRN:                    "LRN",
	KindMVN:                    "MVN",
	KindNormalize:              "Normalize",
	KindPadding:                "Padding",
	KindPermute:                "Permute",
	KindPooling:                "Pooling",
	KindPower:                  "Power",
	KindPReLU:                  "PReLU",
	KindPriorBox:               "PriorBox",
	KindProposal:               "Proposal",
	KindPSROIPooling:           "PSROIPooling",
	KindQuantize:               "Quantize",
	KindReduction:              "Reduction",
	KindReLU:                   "ReLU",
	KindReorg:                  "Reorg",
	KindRequantize:             "Requantize",
	KindReshape:                "Reshape",
	KindROIAlign:               "ROIAlign",
	KindROIPooling:             "ROIPooling",
	KindScale:                  "Scale",
	KindShuffleChannel:         "ShuffleChannel",
	KindSigmoid:                "Sigmoid",
	KindSlice:                  "Slice",
	KindSoftmax:                "Softmax",
	KindThreshold:              "Threshold",
	KindUnaryOp:                "UnaryOp",
	KindYoloDetectionOutput:    "YoloDetectionOutput",
	KindYolov3DetectionOutput:  "Yolov3DetectionOutput",
	KindFused:                  "ncnnfused",
}

var namesToKind = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, v := range kindNames {
		m[v] = k
	}
	return m
}()

// String returns the wire-format type name for k, e.g. "Convolution".
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// KindFromName looks up a Kind by its wire-format type name, used by the
// text codec when parsing a layer line's leading token.
func KindFromName(name string) (Kind, bool) {
	k, ok := namesToKind[name]
	return k, ok
}
