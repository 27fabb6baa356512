// Package text implements the topology-file half of the on-disk format
// (spec.md §4.3, §6): the line-oriented "7767517" magic, layer_count/
// blob_count header, and per-layer lines with positional bottom/top names
// and sparse key=value parameters. Grounded on the teacher's plain
// line-scanning style (no external parser generator anywhere in the
// retrieved pack fits this grammar better than a hand-rolled scanner, the
// same choice the teacher makes for its own ONNX protobuf field switch).
package text

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nnopt/netopt/internal/graph"
	"github.com/nnopt/netopt/internal/layer"
	"github.com/nnopt/netopt/internal/param"
)

const magic = "7767517"

// arrayKeyOffset is the array-parameter key shift: an array stored under
// logical key K is written as key -(K+arrayKeyOffset) (spec.md §4.3/§6).
const arrayKeyOffset = 23300

// Load parses a topology file into a Graph. Layer weight tensors are left
// zero-valued; populate them separately via internal/codec/binary.
func Load(r io.Reader) (*graph.Graph, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, errors.New("text: empty topology file")
	}
	if strings.TrimSpace(sc.Text()) != magic {
		return nil, fmt.Errorf("text: bad magic %q", sc.Text())
	}

	if !sc.Scan() {
		return nil, errors.New("text: missing layer_count/blob_count line")
	}
	counts := strings.Fields(sc.Text())
	if len(counts) != 2 {
		return nil, fmt.Errorf("text: malformed count line %q", sc.Text())
	}
	layerCount, err := strconv.Atoi(counts[0])
	if err != nil {
		return nil, errors.Wrap(err, "text: parse layer_count")
	}
	_, err = strconv.Atoi(counts[1])
	if err != nil {
		return nil, errors.Wrap(err, "text: parse blob_count")
	}

	g := graph.New()
	for i := 0; i < layerCount; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("text: truncated at layer %d", i)
		}
		l, err := parseLayerLine(g, sc.Text())
		if err != nil {
			return nil, errors.Wrapf(err, "text: layer %d", i)
		}
		g.AddLayer(l)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "text: scan")
	}
	return g, nil
}

func parseLayerLine(g *graph.Graph, line string) (layer.Layer, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, fmt.Errorf("text: malformed layer line %q", line)
	}
	kindName, name := fields[0], fields[1]
	nb, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, errors.Wrap(err, "text: parse bottom_count")
	}
	nt, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, errors.Wrap(err, "text: parse top_count")
	}

	pos := 4
	if len(fields) < pos+nb+nt {
		return nil, fmt.Errorf("text: layer line %q too short for %d bottoms, %d tops", line, nb, nt)
	}

	bottoms := make([]int, nb)
	for i := 0; i < nb; i++ {
		bottoms[i] = g.BlobIndex(fields[pos+i])
	}
	pos += nb

	tops := make([]int, nt)
	for i := 0; i < nt; i++ {
		tops[i] = g.BlobIndex(fields[pos+i])
	}
	pos += nt

	l, err := layer.NewByName(kindName)
	if err != nil {
		return nil, err
	}

	dict := param.New()
	for _, tok := range fields[pos:] {
		if err := parseParamToken(dict, tok); err != nil {
			return nil, err
		}
	}
	l.LoadParam(dict)

	h := l.Base()
	h.Name = name
	h.Bottoms = bottoms
	h.Tops = tops
	for _, t := range tops {
		g.Blobs[t].Producer = len(g.Layers)
	}
	return l, nil
}

func parseParamToken(d *param.Dict, tok string) error {
	eq := strings.IndexByte(tok, '=')
	if eq < 0 {
		return fmt.Errorf("text: malformed param token %q", tok)
	}
	key, err := strconv.Atoi(tok[:eq])
	if err != nil {
		return errors.Wrapf(err, "text: parse param key %q", tok)
	}
	val := tok[eq+1:]

	if key < 0 {
		logicalKey := -key - arrayKeyOffset
		parts := strings.Split(val, ",")
		if len(parts) < 1 {
			return fmt.Errorf("text: malformed array param %q", tok)
		}
		count, err := strconv.Atoi(parts[0])
		if err != nil {
			return errors.Wrapf(err, "text: parse array count %q", tok)
		}
		if count != len(parts)-1 {
			return fmt.Errorf("text: array param %q count mismatch", tok)
		}
		vals := make([]float64, count)
		for i, p := range parts[1:] {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return errors.Wrapf(err, "text: parse array value %q", tok)
			}
			vals[i] = f
		}
		d.SetArray(logicalKey, vals)
		return nil
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return errors.Wrapf(err, "text: parse scalar value %q", tok)
	}
	d.SetScalar(key, f)
	return nil
}
