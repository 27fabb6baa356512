package text

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nnopt/netopt/internal/graph"
	"github.com/nnopt/netopt/internal/layer"
)

// lineSink accumulates the "key=value" tokens for one layer line, in the
// order WriteParams emits them, and implements layer.ParamSink.
type lineSink struct {
	tokens []string
}

func (s *lineSink) PutInt(key, v int) {
	s.tokens = append(s.tokens, fmt.Sprintf("%d=%d", key, v))
}

func (s *lineSink) PutFloat(key int, v float32) {
	s.tokens = append(s.tokens, fmt.Sprintf("%d=%s", key, formatFloat(v)))
}

func (s *lineSink) PutFloatArray(key int, v []float32) {
	parts := make([]string, len(v)+1)
	parts[0] = strconv.Itoa(len(v))
	for i, f := range v {
		parts[i+1] = formatFloat(f)
	}
	s.tokens = append(s.tokens, fmt.Sprintf("%d=%s", -(key + arrayKeyOffset), strings.Join(parts, ",")))
}

func (s *lineSink) PutIntArray(key int, v []int) {
	parts := make([]string, len(v)+1)
	parts[0] = strconv.Itoa(len(v))
	for i, x := range v {
		parts[i+1] = strconv.Itoa(x)
	}
	s.tokens = append(s.tokens, fmt.Sprintf("%d=%s", -(key + arrayKeyOffset), strings.Join(parts, ",")))
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// Save writes g as a topology file. Layers of kind layer.KindFused are
// omitted and their now-unreferenced intermediate blobs vanish from the
// blob count along with them, per spec.md §6's "Fused-layer skip" rule.
func Save(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, magic)

	type rendered struct {
		kindName string
		name     string
		bottoms  []string
		tops     []string
		params   []string
	}

	seenBlobs := map[int]bool{}
	var out []rendered

	for _, l := range g.Layers {
		h := l.Base()
		if h.Kind == layer.KindFused {
			continue
		}

		bottoms := make([]string, len(h.Bottoms))
		for i, b := range h.Bottoms {
			seenBlobs[b] = true
			bottoms[i] = g.Blobs[b].Name
		}
		tops := make([]string, len(h.Tops))
		for i, t := range h.Tops {
			seenBlobs[t] = true
			tops[i] = g.Blobs[t].Name
		}

		def, err := layer.New(h.Kind)
		if err != nil {
			return err
		}
		sink := &lineSink{}
		l.WriteParams(sink, def)

		out = append(out, rendered{h.Kind.String(), h.Name, bottoms, tops, sink.tokens})
	}

	fmt.Fprintf(bw, "%d %d\n", len(out), len(seenBlobs))
	for _, rl := range out {
		fmt.Fprintf(bw, "%-24s%-24s%d %d", rl.kindName, rl.name, len(rl.bottoms), len(rl.tops))
		for _, b := range rl.bottoms {
			fmt.Fprintf(bw, " %s", b)
		}
		for _, t := range rl.tops {
			fmt.Fprintf(bw, " %s", t)
		}
		for _, p := range rl.params {
			fmt.Fprintf(bw, " %s", p)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
