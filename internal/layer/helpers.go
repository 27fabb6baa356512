package layer

// putInt emits key only if v differs from the kind's schema default def,
// implementing the sparse-emission rule of spec.md §4.3.
func putInt(sink ParamSink, key, v, def int) {
	if v != def {
		sink.PutInt(key, v)
	}
}

// putFloat is putInt for float32-valued keys.
func putFloat(sink ParamSink, key int, v, def float32) {
	if v != def {
		sink.PutFloat(key, v)
	}
}

// putPairedInt emits a "secondary" paired key (e.g. kernel_h at +10 from
// kernel_w) only if it differs from the primary value, per §4.3's paired-key
// compaction rule — independent of the secondary field's own schema default.
func putPairedInt(sink ParamSink, secondaryKey, secondary, primary int) {
	if secondary != primary {
		sink.PutInt(secondaryKey, secondary)
	}
}

func putPairedFloat(sink ParamSink, secondaryKey int, secondary, primary float32) {
	if secondary != primary {
		sink.PutFloat(secondaryKey, secondary)
	}
}

func putFloatArray(sink ParamSink, key int, v []float32) {
	if len(v) > 0 {
		sink.PutFloatArray(key, v)
	}
}

func putIntArray(sink ParamSink, key int, v []int) {
	if len(v) > 0 {
		sink.PutIntArray(key, v)
	}
}
