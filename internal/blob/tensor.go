// Package blob implements the tensor buffer that backs every layer's weight
// and bias fields: an N-dimensional float32 buffer with a 1D/2D/3D logical
// view, grounded on the shape/strides style of the teacher's tensor package
// but narrowed to the (w, h, c) shapes the graph IR actually needs.
package blob

import (
	"fmt"

	"github.com/x448/float16"
)

// ElemSize names the on-disk element widths of the weights format.
// Runtime values always live in float32. internal/codec/binary does not use
// this type: it picks fp32 or fp16 from the record tag and its writer flag.
type ElemSize int

// Supported on-disk element widths.
const (
	ElemInt8  ElemSize = 1
	ElemHalf  ElemSize = 2
	ElemFloat ElemSize = 4
)

// Tensor is the data buffer described by spec §4.1: a 1D, 2D, or 3D view over
// a flat float32 buffer with shape (w, h, c).
type Tensor struct {
	data    []float32
	w, h, c int
}

// New creates a tensor with the given logical shape. Missing trailing
// dimensions default to 1, matching create(w[,h,c]).
func New(w int, hc ...int) *Tensor {
	h, c := 1, 1
	if len(hc) > 0 {
		h = hc[0]
	}
	if len(hc) > 1 {
		c = hc[1]
	}
	return &Tensor{data: make([]float32, w*h*c), w: w, h: h, c: c}
}

// FromSlice wraps an existing flat float32 slice as a 1D tensor.
func FromSlice(v []float32) *Tensor {
	return &Tensor{data: v, w: len(v), h: 1, c: 1}
}

// Empty reports whether the tensor holds no elements (the "absent weight" case).
func (t *Tensor) Empty() bool {
	return t == nil || len(t.data) == 0
}

// W, H, C return the tensor's logical dimensions.
func (t *Tensor) W() int { return t.w }
func (t *Tensor) H() int { return t.h }
func (t *Tensor) C() int { return t.c }

// Total returns w*h*c, the element count.
func (t *Tensor) Total() int {
	if t == nil {
		return 0
	}
	return t.w * t.h * t.c
}

// Data returns the flat backing slice in row-major (c, h, w) concatenation
// order, i.e. the same order the binary codec flattens before writing.
func (t *Tensor) Data() []float32 {
	if t == nil {
		return nil
	}
	return t.data
}

// Fill sets every element to v.
func (t *Tensor) Fill(v float32) {
	for i := range t.data {
		t.data[i] = v
	}
}

// Reshape returns a 1D view of n elements over the same backing data.
// n must equal Total(); this mirrors reshape(n) in spec §4.1, which flattens
// h and c into w before a weights-file write.
func (t *Tensor) Reshape(n int) *Tensor {
	if t.Total() != n {
		panic(fmt.Sprintf("blob: reshape size mismatch: have %d want %d", t.Total(), n))
	}
	return &Tensor{data: t.data, w: n, h: 1, c: 1}
}

// At returns the i'th element of the flattened buffer.
func (t *Tensor) At(i int) float32 { return t.data[i] }

// Set assigns the i'th element of the flattened buffer.
func (t *Tensor) Set(i int, v float32) { t.data[i] = v }

// Slice returns the weight_per_outch-sized window for output channel q, used
// by every Conv*/Deconv*/InnerProduct + BatchNorm fusion to scale one
// channel's weights in place (spec §4.5).
func (t *Tensor) Slice(q, perChannel int) []float32 {
	return t.data[q*perChannel : (q+1)*perChannel]
}

// CastF32ToF16 implements the fp32->fp16 half of spec §4.1: IEEE-754 binary16
// round-to-nearest-even, with subnormals, infinities, and NaN handled by the
// library rather than a hand-rolled bit-twiddler reimplementing the same
// rules a pure-Go dependency already gets right.
func CastF32ToF16(src []float32) []uint16 {
	out := make([]uint16, len(src))
	for i, v := range src {
		out[i] = uint16(float16.Fromfloat32(v))
	}
	return out
}

// CastF16ToF32 decodes a half-precision buffer back to float32, used by the
// binary codec reader when it encounters the 0x01306B47 fp16 tag.
func CastF16ToF32(src []uint16) []float32 {
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = float16.Float16(v).Float32()
	}
	return out
}
