// Package dot renders a Graph as a GraphViz DOT file for debugging, a
// supplemental feature with no bearing on the text/binary round trip.
// Grounded on _examples/Atul-Ranjan12-google-dag-optimization/src/
// visualize.go's approach: build a DOT source string, then shell out to the
// `dot` binary to rasterize it if the caller wants an image, not just text.
package dot

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/nnopt/netopt/internal/graph"
	"github.com/nnopt/netopt/internal/layer"
)

// Write renders g's non-Fused layers and their blob edges as DOT source.
func Write(w io.Writer, g *graph.Graph) error {
	var b strings.Builder
	b.WriteString("digraph netopt {\n")
	b.WriteString("  rankdir=LR;\n")
	for i, l := range g.Layers {
		h := l.Base()
		if h.Kind == layer.KindFused {
			continue
		}
		b.WriteString(fmt.Sprintf("  l%d [shape=box label=%q];\n", i, fmt.Sprintf("%s\\n%s", h.Kind, h.Name)))
		for _, bi := range h.Bottoms {
			if p := g.Blobs[bi].Producer; p >= 0 {
				b.WriteString(fmt.Sprintf("  l%d -> l%d [label=%q];\n", p, i, g.Blobs[bi].Name))
			}
		}
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderPNG shells out to the `dot` binary to rasterize src (DOT source)
// into a PNG at outPath. Returns an error if `dot` is not on PATH.
func RenderPNG(src, outPath string) error {
	if _, err := exec.LookPath("dot"); err != nil {
		return fmt.Errorf("dot: graphviz not found on PATH: %w", err)
	}
	cmd := exec.Command("dot", "-Tpng", "-o", outPath)
	cmd.Stdin = strings.NewReader(src)
	return cmd.Run()
}
