package layout

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
)

// Layered arranges vertices in ranks along edge direction using the
// Graphviz dot engine, then scales the result into the bounds. Undirected
// edges are ranked in insertion direction.
type Layered struct {
	RankDir string  // "TB" (default), "LR", "BT" or "RL"
	NodeSep float64 // Inches; zero means the dot default
	RankSep float64 // Inches; zero means the dot default
}

func (Layered) Name() string { return "layered" }

func (l Layered) Run(ctx context.Context, job *Job) error {
	vs := job.Vertices()
	if len(vs) == 0 {
		return job.Yield(ctx)
	}

	names := make(map[*graph.Vertex]string, len(vs))
	for i, v := range vs {
		names[v] = "v" + strconv.Itoa(i)
	}
	out, err := l.dot(ctx, l.source(job.Graph(), vs, names))
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	laid, err := graphviz.ParseBytes(out)
	if err != nil {
		return fmt.Errorf("parse dot output: %w", err)
	}
	defer laid.Close()

	bb, err := parseFloats(laid.GetStr("bb"), 4)
	if err != nil {
		return fmt.Errorf("bounding box: %w", err)
	}
	src := geom.R(bb[0], bb[1], bb[2]-bb[0], bb[3]-bb[1])
	dst := job.Bounds()

	for _, v := range vs {
		n, err := laid.NodeByName(names[v])
		if err != nil || n == nil {
			return fmt.Errorf("vertex %s missing from dot output", v.ID)
		}
		p, err := parseFloats(n.GetStr("pos"), 2)
		if err != nil {
			return fmt.Errorf("position of %s: %w", v.ID, err)
		}
		job.Move(v, fit(geom.Pt(p[0], p[1]), src, dst))
	}
	return job.Yield(ctx)
}

func (l Layered) source(g *graph.Graph, vs []*graph.Vertex, names map[*graph.Vertex]string) []byte {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	rankdir := l.RankDir
	if rankdir == "" {
		rankdir = "TB"
	}
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	if l.NodeSep > 0 {
		fmt.Fprintf(&buf, "  nodesep=%g;\n", l.NodeSep)
	}
	if l.RankSep > 0 {
		fmt.Fprintf(&buf, "  ranksep=%g;\n", l.RankSep)
	}
	buf.WriteString("  node [shape=circle, width=0.3, fixedsize=true, label=\"\"];\n")
	for _, v := range vs {
		fmt.Fprintf(&buf, "  %s;\n", names[v])
	}
	for _, e := range g.Edges() {
		from, ok1 := names[e.From()]
		to, ok2 := names[e.To()]
		if !ok1 || !ok2 || e.IsSelfLoop() {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", from, to)
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

func (Layered) dot(ctx context.Context, src []byte) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(src)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.SetLayout(graphviz.DOT).Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// fit maps a dot coordinate (points, Y up) from src into dst (Y down). A
// degenerate source axis maps to the center of dst.
func fit(p geom.Point, src, dst geom.Rect) geom.Point {
	out := dst.Center()
	if src.W > 0 {
		out.X = dst.X + (p.X-src.X)/src.W*dst.W
	}
	if src.H > 0 {
		out.Y = dst.Y + (src.Bottom()-p.Y)/src.H*dst.H
	}
	return out
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(strings.TrimSuffix(strings.TrimSpace(s), "!"), ",")
	if len(parts) < n {
		return nil, fmt.Errorf("expected %d numbers in %q", n, s)
	}
	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
