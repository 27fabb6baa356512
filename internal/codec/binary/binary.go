// Package binary implements the weights-file half of the on-disk format
// (spec.md §4.2, §6): a sequence of records, each optionally tag-prefixed,
// payload, then zero-padding to a 4-byte boundary. Grounded on the
// teacher's internal/serialization/writer.go pattern of "compute layout,
// write header fields in order, pad, write payload" but the ncnn weights
// format carries no JSON header at all — every record's length is implied
// by the layer schema that's already been parsed from the topology file.
package binary

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/nnopt/netopt/internal/blob"
)

// fp16Tag is the magic value that marks a tagged weight record's payload as
// half-precision (spec.md §4.2/§6).
const fp16Tag uint32 = 0x01306B47

// alignSize rounds sz up to the next multiple of n, mirroring the original
// optimizer's alignSize(sz, n) = (sz + n - 1) & -n helper.
func alignSize(sz, n int) int {
	return (sz + n - 1) &^ (n - 1)
}

// Reader reads weight tensors from a binary weights file in layer order.
type Reader struct {
	r io.Reader
}

// NewReader wraps r as a weights-file reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadTagged reads a layer's first ("tagged") weight: a 4-byte format tag
// (0 for fp32, fp16Tag for fp16; any other value is an error), then n
// elements, then padding so tag+payload is 4-byte aligned.
func (rd *Reader) ReadTagged(n int) (*blob.Tensor, error) {
	var tagBuf [4]byte
	if _, err := io.ReadFull(rd.r, tagBuf[:]); err != nil {
		return nil, errors.Wrap(err, "binary: read weight tag")
	}
	tag := binary.LittleEndian.Uint32(tagBuf[:])

	switch tag {
	case fp16Tag:
		raw := make([]uint16, n)
		if err := binary.Read(rd.r, binary.LittleEndian, raw); err != nil {
			return nil, errors.Wrap(err, "binary: read fp16 payload")
		}
		total := alignSize(4+2*n, 4)
		if pad := total - (4 + 2*n); pad > 0 {
			if _, err := io.CopyN(io.Discard, rd.r, int64(pad)); err != nil {
				return nil, errors.Wrap(err, "binary: skip padding")
			}
		}
		return blob.FromSlice(blob.CastF16ToF32(raw)), nil
	case 0:
		data := make([]float32, n)
		if err := binary.Read(rd.r, binary.LittleEndian, data); err != nil {
			return nil, errors.Wrap(err, "binary: read fp32 payload")
		}
		total := alignSize(4+4*n, 4)
		if pad := total - (4 + 4*n); pad > 0 {
			if _, err := io.CopyN(io.Discard, rd.r, int64(pad)); err != nil {
				return nil, errors.Wrap(err, "binary: skip padding")
			}
		}
		return blob.FromSlice(data), nil
	default:
		return nil, fmt.Errorf("binary: unrecognized weight tag 0x%08x", tag)
	}
}

// ReadPlain reads a subsequent untagged, always-fp32 weight of n elements.
func (rd *Reader) ReadPlain(n int) (*blob.Tensor, error) {
	if n == 0 {
		return blob.FromSlice(nil), nil
	}
	data := make([]float32, n)
	if err := binary.Read(rd.r, binary.LittleEndian, data); err != nil {
		return nil, errors.Wrap(err, "binary: read untagged payload")
	}
	total := alignSize(4*n, 4)
	if pad := total - 4*n; pad > 0 {
		if _, err := io.CopyN(io.Discard, rd.r, int64(pad)); err != nil {
			return nil, errors.Wrap(err, "binary: skip padding")
		}
	}
	return blob.FromSlice(data), nil
}

// Writer writes weight tensors to a binary weights file in layer order.
type Writer struct {
	w    io.Writer
	fp16 bool
}

// NewWriter wraps w as a weights-file writer. fp16 selects half-precision
// storage for every tagged (first-per-layer) weight, per driver flag 65536
// (spec.md §6).
func NewWriter(w io.Writer, fp16 bool) *Writer {
	return &Writer{w: w, fp16: fp16}
}

// WriteTagged writes a layer's first weight, tag-prefixed.
func (wr *Writer) WriteTagged(t *blob.Tensor) error {
	n := t.Total()
	var tagBuf [4]byte
	if wr.fp16 {
		binary.LittleEndian.PutUint32(tagBuf[:], fp16Tag)
		if _, err := wr.w.Write(tagBuf[:]); err != nil {
			return errors.Wrap(err, "binary: write fp16 tag")
		}
		half := blob.CastF32ToF16(t.Data())
		if err := binary.Write(wr.w, binary.LittleEndian, half); err != nil {
			return errors.Wrap(err, "binary: write fp16 payload")
		}
		return wr.pad(4 + 2*n)
	}
	binary.LittleEndian.PutUint32(tagBuf[:], 0)
	if _, err := wr.w.Write(tagBuf[:]); err != nil {
		return errors.Wrap(err, "binary: write fp32 tag")
	}
	if err := binary.Write(wr.w, binary.LittleEndian, t.Data()); err != nil {
		return errors.Wrap(err, "binary: write fp32 payload")
	}
	return wr.pad(4 + 4*n)
}

// WritePlain writes a subsequent untagged, always-fp32 weight.
func (wr *Writer) WritePlain(t *blob.Tensor) error {
	if t.Empty() {
		return nil
	}
	n := t.Total()
	if err := binary.Write(wr.w, binary.LittleEndian, t.Data()); err != nil {
		return errors.Wrap(err, "binary: write untagged payload")
	}
	return wr.pad(4 * n)
}

func (wr *Writer) pad(written int) error {
	total := alignSize(written, 4)
	if n := total - written; n > 0 {
		if _, err := wr.w.Write(make([]byte, n)); err != nil {
			return errors.Wrap(err, "binary: write padding")
		}
	}
	return nil
}
