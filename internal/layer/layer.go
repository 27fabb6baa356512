package layer

import (
	"fmt"

	"github.com/nnopt/netopt/internal/blob"
	"github.com/nnopt/netopt/internal/param"
)

// Header is the part of the IR common to every layer kind (spec.md §3):
// kind, a stable kind index, name, and the bottom/top blob index lists.
// Kind is mutable data, not the Go static type, so the fusion rewrite can
// flip it to KindFused without swapping the underlying struct.
type Header struct {
	Kind      Kind
	KindIndex int
	Name      string
	Bottoms   []int
	Tops      []int
}

// Base returns the layer's header, satisfying Layer.
func (h *Header) Base() *Header { return h }

// ParamSink receives the sparse key/value pairs a layer's WriteParams emits.
// Implemented by internal/codec/text's writer; declared here so internal/layer
// does not need to import the codec package.
type ParamSink interface {
	PutInt(key, v int)
	PutFloat(key int, v float32)
	PutFloatArray(key int, v []float32)
	PutIntArray(key int, v []int)
}

// WeightReader supplies the weight tensors a layer's ReadWeights consumes.
// Implemented by internal/codec/binary's Reader.
type WeightReader interface {
	// ReadTagged reads the layer's first ("tagged") weight slot: a 4-byte
	// format tag followed by n elements, padded to 4 bytes.
	ReadTagged(n int) (*blob.Tensor, error)
	// ReadPlain reads a subsequent untagged raw-fp32 weight slot of n elements.
	ReadPlain(n int) (*blob.Tensor, error)
}

// WeightWriter accepts the weight tensors a layer's WriteWeights produces.
// Implemented by internal/codec/binary's Writer.
type WeightWriter interface {
	WriteTagged(t *blob.Tensor) error
	WritePlain(t *blob.Tensor) error
}

// Activatable is implemented by every kind the activation-fusion pass can
// target (Convolution, ConvolutionDepthWise, Deconvolution,
// DeconvolutionDepthWise, InnerProduct), letting the rewrite package fold a
// trailing ReLU/Clip/Sigmoid into activation_type/activation_params without
// a type switch over all five concrete structs.
type Activatable interface {
	Layer
	SetActivation(actType int, params []float32)
}

// BNTarget is implemented by every kind the BatchNorm-folding pass can
// target: Convolution, ConvolutionDepthWise, Deconvolution,
// DeconvolutionDepthWise, InnerProduct. It exposes exactly the per-output-
// channel weight/bias surface the fold needs, so internal/rewrite can apply
// one fusion routine instead of one per concrete struct.
type BNTarget interface {
	Layer
	Weight() *blob.Tensor
	OutChannels() int
	HasBias() bool
	Bias() *blob.Tensor
	SetBias(term int, b *blob.Tensor)
}

// Layer is the common interface every layer kind implements.
type Layer interface {
	Base() *Header
	LoadParam(d *param.Dict)
	WriteParams(sink ParamSink, def Layer)
	ReadWeights(r WeightReader) error
	WriteWeights(w WeightWriter) error
}

// New constructs a fresh instance of kind k with its defaults loaded, i.e.
// LoadParam(param.New()) — the same "fresh instance + empty dict" construction
// spec.md §4.3/§4.4 uses to define what a kind's defaults even are.
func New(k Kind) (Layer, error) {
	l, ok := constructors[k]
	if !ok {
		return nil, fmt.Errorf("layer: unknown kind %v", k)
	}
	inst := l()
	inst.Base().Kind = k
	inst.Base().KindIndex = int(k)
	inst.LoadParam(param.New())
	return inst, nil
}

// NewByName constructs a fresh instance by the wire-format type name.
func NewByName(name string) (Layer, error) {
	k, ok := KindFromName(name)
	if !ok {
		return nil, fmt.Errorf("layer: unknown kind name %q", name)
	}
	return New(k)
}

var constructors = map[Kind]func() Layer{
	KindBatchNorm:              func() Layer { return &BatchNorm{} },
	KindBias:                   func() Layer { return &Bias{} },
	KindBinaryOp:               func() Layer { return &BinaryOp{} },
	KindClip:                   func() Layer { return &Clip{} },
	KindConcat:                 func() Layer { return &Concat{} },
	KindConvolution:            func() Layer { return &Convolution{} },
	KindConvolutionDepthWise:   func() Layer { return &ConvolutionDepthWise{} },
	KindCrop:                   func() Layer { return &Crop{} },
	KindDeconvolution:          func() Layer { return &Deconvolution{} },
	KindDeconvolutionDepthWise: func() Layer { return &DeconvolutionDepthWise{} },
	KindDetectionOutput:        func() Layer { return &DetectionOutput{} },
	KindDropout:                func() Layer { return &Dropout{} },
	KindEltwise:                func() Layer { return &Eltwise{} },
	KindELU:                    func() Layer { return &ELU{} },
	KindExp:                    func() Layer { return &Exp{} },
	KindFlatten:                func() Layer { return &Flatten{} },
	KindInnerProduct:           func() Layer { return &InnerProduct{} },
	KindInput:                  func() Layer { return &Input{} },
	KindInstanceNorm:           func() Layer { return &InstanceNorm{} },
	KindInterp:                 func() Layer { return &Interp{} },
	KindLog:                    func() Layer { return &Log{} },
	KindLRN:                    func() Layer { return &LRN{} },
	KindMVN:                    func() Layer { return &MVN{} },
	KindNormalize:              func() Layer { return &Normalize{} },
	KindPadding:                func() Layer { return &Padding{} },
	KindPermute:                func() Layer { return &Permute{} },
	KindPooling:                func() Layer { return &Pooling{} },
	KindPower:                  func() Layer { return &Power{} },
	KindPReLU:                  func() Layer { return &PReLU{} },
	KindPriorBox:               func() Layer { return &PriorBox{} },
	KindProposal:               func() Layer { return &Proposal{} },
	KindPSROIPooling:           func() Layer { return &PSROIPooling{} },
	KindQuantize:               func() Layer { return &Quantize{} },
	KindReduction:              func() Layer { return &Reduction{} },
	KindReLU:                   func() Layer { return &ReLU{} },
	KindReorg:                  func() Layer { return &Reorg{} },
	KindRequantize:             func() Layer { return &Requantize{} },
	KindReshape:                func() Layer { return &Reshape{} },
	KindROIAlign:               func() Layer { return &ROIAlign{} },
	KindROIPooling:             func() Layer { return &ROIPooling{} },
	KindScale:                  func() Layer { return &Scale{} },
	KindShuffleChannel:         func() Layer { return &ShuffleChannel{} },
	KindSigmoid:                func() Layer { return &Sigmoid{} },
	KindSlice:                  func() Layer { return &Slice{} },
	KindSoftmax:                func() Layer { return &Softmax{} },
	KindThreshold:              func() Layer { return &Threshold{} },
	KindUnaryOp:                func() Layer { return &UnaryOp{} },
	KindYoloDetectionOutput:    func() Layer { return &YoloDetectionOutput{} },
	KindYolov3DetectionOutput:  func() Layer { return &Yolov3DetectionOutput{} },
	KindFused:                  func() Layer { return &Fused{} },
}

// noWeights is embedded by every kind that carries no weight tensors, so it
// only needs to satisfy the Layer interface's weight methods trivially.
type noWeights struct{}

func (noWeights) ReadWeights(WeightReader) error   { return nil }
func (noWeights) WriteWeights(WeightWriter) error { return nil }
