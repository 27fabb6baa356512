// Package convbench models the hardware-gated fastest-fp32-convolution
// search's contract (spec.md §1, §4.6, §5): a capability query plus an
// impl_type assignment on the winning Convolution. The original
// (original_source/tools/ncnnoptimize.cpp's find_fastest_fp32_conv /
// support_fp32_conv_type) times several conv implementations on the actual
// target CPU under aarch64+Linux build tags; running that timing loop is
// out of scope here per spec.md §1's "optional... specified only through
// its contract" framing, so only the capability-query side is implemented
// and exercised.
package convbench

// ImplType enumerates the convolution implementation variants the original
// search chooses between. Values match the impl_type field ncnnoptimize.cpp
// assigns on Convolution after a successful benchmark.
type ImplType int

const (
	ImplTypeDefault ImplType = 0
	ImplTypeWinograd ImplType = 1
	ImplTypeSGEMM    ImplType = 2
	ImplTypeDirect   ImplType = 3
)

// supportTable is support_fp32_conv_type's kernel x stride compatibility
// matrix: which impl types are legal for a given (kernel, stride) pair.
// Winograd only supports 3x3 stride-1; SGEMM and direct apply broadly.
var supportTable = map[[2]int][]ImplType{
	{3, 1}: {ImplTypeWinograd, ImplTypeSGEMM, ImplTypeDirect},
	{1, 1}: {ImplTypeSGEMM, ImplTypeDirect},
}

// SupportedImpls reports which implementations support_fp32_conv_type would
// consider for a convolution with the given kernel size and stride
// (square kernels/strides only, matching the original's scope).
func SupportedImpls(kernel, stride int) []ImplType {
	if impls, ok := supportTable[[2]int{kernel, stride}]; ok {
		return impls
	}
	return []ImplType{ImplTypeSGEMM, ImplTypeDirect}
}

// Bench is the interface find_fastest_fp32_conv's timing loop implements on
// real hardware. A future aarch64/Linux build can supply a concrete Bench
// that actually times each candidate; the pipeline driver only ever needs
// this interface, never the timing internals.
type Bench interface {
	// Fastest returns the ImplType that runs fastest for a convolution of
	// the given shape on the current hardware.
	Fastest(kernel, stride, channels, outChannels int) (ImplType, error)
}

// NoBench is a Bench that never claims hardware timing data is available;
// callers fall back to ImplTypeDefault (impl_type left at its schema zero
// value) when no Bench is wired in, which is the only configuration this
// project ships since the timing loop itself is out of scope.
type NoBench struct{}

func (NoBench) Fastest(kernel, stride, channels, outChannels int) (ImplType, error) {
	return ImplTypeDefault, nil
}
