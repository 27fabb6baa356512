// Package param implements the sparse-keyed parameter dictionary that
// carries a layer's load_param() fields between the text codec and the
// layer IR, grounded on the teacher's option-struct-with-defaults style
// (internal/tensor/shape.go's Validate/Clone pattern of small, narrowly
// scoped accessor methods) but shaped around ncnn's sparse key/value model
// instead.
package param

// Dict is a sparse map from integer parameter key to either a scalar or an
// array value. Keys absent from the dict fall back to the caller-supplied
// default in every accessor, which is what lets LoadParam(empty Dict) double as
// "construct this layer's defaults" (spec.md §4.3/§4.4).
type Dict struct {
	scalars map[int]float64
	arrays  map[int][]float64
}

// New returns an empty dictionary, i.e. "all defaults".
func New() *Dict {
	return &Dict{scalars: map[int]float64{}, arrays: map[int][]float64{}}
}

// SetInt records an integer-valued scalar key.
func (d *Dict) SetInt(key, v int) {
	d.scalars[key] = float64(v)
}

// SetFloat records a float-valued scalar key.
func (d *Dict) SetFloat(key int, v float32) {
	d.scalars[key] = float64(v)
}

// SetArray records an array-valued key (the "-(23300+K)=count,v0,v1,..." form).
func (d *Dict) SetArray(key int, v []float64) {
	d.arrays[key] = v
}

// SetScalar records a scalar key from its raw float64 text-format value,
// used by the text codec's parser, which doesn't know ahead of time whether
// a token represents an int- or float-typed field.
func (d *Dict) SetScalar(key int, v float64) {
	d.scalars[key] = v
}

// Int returns the integer value at key, or def if the key is absent.
func (d *Dict) Int(key, def int) int {
	if v, ok := d.scalars[key]; ok {
		return int(v)
	}
	return def
}

// Float returns the float32 value at key, or def if the key is absent.
func (d *Dict) Float(key int, def float32) float32 {
	if v, ok := d.scalars[key]; ok {
		return float32(v)
	}
	return def
}

// FloatArray returns the array value at key as float32, or nil if absent.
func (d *Dict) FloatArray(key int) []float32 {
	v, ok := d.arrays[key]
	if !ok {
		return nil
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// IntArray returns the array value at key as int, or nil if absent.
func (d *Dict) IntArray(key int) []int {
	v, ok := d.arrays[key]
	if !ok {
		return nil
	}
	out := make([]int, len(v))
	for i, x := range v {
		out[i] = int(x)
	}
	return out
}

// Has reports whether key is present, scalar or array.
func (d *Dict) Has(key int) bool {
	if _, ok := d.scalars[key]; ok {
		return true
	}
	_, ok := d.arrays[key]
	return ok
}

// Scalars exposes the raw scalar key set. The text writer does not use it;
// it diffs each layer against a freshly constructed default instance.
func (d *Dict) Scalars() map[int]float64 { return d.scalars }

// Arrays exposes the raw array key set.
func (d *Dict) Arrays() map[int][]float64 { return d.arrays }
