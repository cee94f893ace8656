package mesh

import (
	"fmt"
	"github.com/notargets/arfgeom/csg"
	"github.com/notargets/arfgeom/element"
	"github.com/notargets/arfgeom/element/library/gonudg"
	"github.com/notargets/arfgeom/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
	"math"
)

type childFace struct{ child, face int }

// childFaces[f] holds the two children of a split triangle that carry the
// halves of parent face f, in face order.
var childFaces = [3][2]childFace{
	{{0, 0}, {1, 0}},
	{{1, 1}, {2, 1}},
	{{2, 2}, {0, 2}},
}

// Refine splits every triangle into four at its edge midpoints. Curved nodes
// are discarded; call SetGeometry and Curve again afterwards.
func (m *Mesh) Refine() {
	conn := m.connectivity()
	base := len(m.Vertices)
	for _, e := range conn.Edges {
		m.Vertices = append(m.Vertices, r2.Scale(.5, r2.Add(m.Vertices[e[0]], m.Vertices[e[1]])))
	}
	mid := func(k, f int) int { return base + conn.EdgeOf[k][f] }

	elems := make([]Element, 0, 4*len(m.Elements))
	for k, el := range m.Elements {
		v0, v1, v2 := el.V[0], el.V[1], el.V[2]
		m01, m12, m20 := mid(k, 0), mid(k, 1), mid(k, 2)
		elems = append(elems,
			Element{V: [3]int{v0, m01, m20}, Domain: el.Domain},
			Element{V: [3]int{m01, v1, m12}, Domain: el.Domain},
			Element{V: [3]int{m20, m12, v2}, Domain: el.Domain},
			Element{V: [3]int{m01, m12, m20}, Domain: el.Domain},
		)
	}
	bnd := make([]BoundaryEdge, 0, 2*len(m.Boundaries))
	for _, b := range m.Boundaries {
		mv := mid(b.Element, b.Face)
		first, second := childFaces[b.Face][0], childFaces[b.Face][1]
		bnd = append(bnd,
			BoundaryEdge{V: [2]int{b.V[0], mv}, Element: 4*b.Element + first.child, Face: first.face, BC: b.BC, Curve: b.Curve},
			BoundaryEdge{V: [2]int{mv, b.V[1]}, Element: 4*b.Element + second.child, Face: second.face, BC: b.BC, Curve: b.Curve},
		)
	}
	m.Elements = elems
	m.Boundaries = bnd
	m.Nodes = nil
	m.CurveOrder = 1
	m.conn = nil
}

// SetGeometry attaches a spline geometry. Boundary edges already bound to a
// curve have their vertices projected onto it, which restores midpoints
// created by Refine to the exact boundary. Unbound edges are matched to the
// curve through both of their vertices, and take the boundary name of the
// nearest curve when they carry none.
func (m *Mesh) SetGeometry(sg *csg.SplineGeometry) {
	m.geometry = sg
	if sg == nil {
		for i := range m.Boundaries {
			m.Boundaries[i].Curve = -1
		}
		m.Nodes, m.CurveOrder = nil, 1
		return
	}
	tol := 1.e-6 * m.minEdgeLength()
	for i := range m.Boundaries {
		b := &m.Boundaries[i]
		if b.Curve >= len(sg.Curves) {
			b.Curve = -1
		}
		if b.Curve < 0 {
			b.Curve = m.matchCurve(sg, b.V, tol)
		}
		if b.Curve >= 0 {
			for _, v := range b.V {
				m.Vertices[v] = sg.Project(b.Curve, m.Vertices[v])
			}
			if b.BC == "" {
				b.BC = sg.Curves[b.Curve].BC
			}
			continue
		}
		if b.BC == "" {
			b.BC = nearestCurve(sg, r2.Scale(.5, r2.Add(m.Vertices[b.V[0]], m.Vertices[b.V[1]]))).BC
		}
	}
}

func (m *Mesh) matchCurve(sg *csg.SplineGeometry, v [2]int, tol float64) int {
	a, b := m.Vertices[v[0]], m.Vertices[v[1]]
	mid := r2.Scale(.5, r2.Add(a, b))
	onB := make(map[int]bool)
	for _, id := range sg.CurvesAt(b, tol) {
		onB[id] = true
	}
	for _, id := range sg.CurvesAt(a, tol) {
		// reject chords that cut far across an arc
		if onB[id] && sg.Curves[id].Distance(mid) < .25*r2.Norm(r2.Sub(b, a)) {
			return id
		}
	}
	return -1
}

func nearestCurve(sg *csg.SplineGeometry, p r2.Vec) (best csg.Curve) {
	d := math.Inf(1)
	for _, c := range sg.Curves {
		if dc := c.Distance(p); dc < d {
			d, best = dc, c
		}
	}
	return
}

func (m *Mesh) minEdgeLength() float64 {
	h := math.Inf(1)
	for _, e := range m.connectivity().Edges {
		h = math.Min(h, r2.Norm(r2.Sub(m.Vertices[e[1]], m.Vertices[e[0]])))
	}
	return h
}

// Curve computes order N Lagrange nodes for every element. Nodes on edges
// bound to a curve are placed on it at equal parameter steps and the
// displacement is blended into the element interior; other edges stay
// straight. Order 1 removes the curvature.
func (m *Mesh) Curve(order int) error {
	if order < 1 {
		return fmt.Errorf("curve order must be at least 1, have %d", order)
	}
	m.CurveOrder = order
	if order == 1 {
		m.Nodes = nil
		return nil
	}
	ref, err := element.NewTriLagrange(order)
	if err != nil {
		return err
	}
	edgeCurve := make(map[utils.EdgeKey]int)
	if m.geometry != nil {
		for _, b := range m.Boundaries {
			if b.Curve >= 0 {
				edgeCurve[utils.NewEdgeKey(b.V[0], b.V[1])] = b.Curve
			}
		}
	}
	Np := ref.GetProperties().Np
	m.Nodes = make([][]r2.Vec, len(m.Elements))
	for k, el := range m.Elements {
		X := [3]r2.Vec{m.Vertices[el.V[0]], m.Vertices[el.V[1]], m.Vertices[el.V[2]]}
		curves := [3]int{-1, -1, -1}
		for f := 0; f < 3; f++ {
			key := utils.NewEdgeKey(el.V[utils.TriEdges[f][0]], el.V[utils.TriEdges[f][1]])
			if c, ok := edgeCurve[key]; ok {
				curves[f] = c
			}
		}
		nodes := make([]r2.Vec, Np)
		for n := 0; n < Np; n++ {
			l := ref.Barycentric(n)
			x := r2.Add(r2.Scale(l[0], X[0]), r2.Add(r2.Scale(l[1], X[1]), r2.Scale(l[2], X[2])))
			for f, c := range curves {
				if c < 0 {
					continue
				}
				a, b := utils.TriEdges[f][0], utils.TriEdges[f][1]
				s := l[a] + l[b]
				if s < 1.e-14 {
					continue
				}
				t := l[b] / s
				straight := r2.Add(X[a], r2.Scale(t, r2.Sub(X[b], X[a])))
				target := m.geometry.Interpolate(c, X[a], X[b], t)
				x = r2.Add(x, r2.Scale(s*s, r2.Sub(target, straight)))
			}
			nodes[n] = x
		}
		m.Nodes[k] = nodes
	}
	return nil
}

func (m *Mesh) transform() (ref *element.TriLagrange, gt element.GeometricTransform, err error) {
	order := m.CurveOrder
	if order < 1 || m.Nodes == nil {
		order = 1
	}
	if ref, err = element.NewTriLagrange(order); err != nil {
		return
	}
	Np, K := ref.GetProperties().Np, len(m.Elements)
	X := mat.NewDense(Np, K, nil)
	Y := mat.NewDense(Np, K, nil)
	for k := 0; k < K; k++ {
		nodes := m.ElementNodes(k)
		if order == 1 {
			el := m.Elements[k]
			nodes = []r2.Vec{m.Vertices[el.V[0]], m.Vertices[el.V[1]], m.Vertices[el.V[2]]}
		}
		for i, p := range nodes {
			X.Set(i, k, p.X)
			Y.Set(i, k, p.Y)
		}
	}
	gt, err = element.NewGeometricTransform(ref, X, Y)
	return
}

// Areas returns the area of every element, integrated over the curved
// element map. An inverted element is reported as an error alongside the
// areas.
func (m *Mesh) Areas() ([]float64, error) {
	ref, gt, err := m.transform()
	if gt.J == nil {
		return nil, err
	}
	return gt.Areas(ref), err
}

// Area returns the total mesh area.
func (m *Mesh) Area() (float64, error) {
	a, err := m.Areas()
	if a == nil {
		return 0, err
	}
	return floats.Sum(a), err
}

// DomainAreas returns the area covered by each material.
func (m *Mesh) DomainAreas() (map[string]float64, error) {
	a, err := m.Areas()
	if a == nil {
		return nil, err
	}
	areas := make(map[string]float64)
	for k, ak := range a {
		areas[m.MaterialOf(k)] += ak
	}
	return areas, err
}

// BoundaryLength integrates the length of boundary bc along the curved
// element edges with Gauss quadrature.
func (m *Mesh) BoundaryLength(bc string) float64 {
	order := m.CurveOrder
	if order < 1 || m.Nodes == nil {
		order = 1
	}
	ref, err := element.NewTriLagrange(order)
	if err != nil {
		return 0
	}
	g := ref.GetReferenceGeometry()
	ts := make([]float64, order+1)
	for i := range ts {
		ts[i] = float64(i) / float64(order)
	}
	xq, wq := gonudg.JacobiGQ(0, 0, order+1)

	var length float64
	for _, b := range m.BoundaryEdges(bc) {
		f := b.Face
		idx := append([]int{g.VertexPoints[utils.TriEdges[f][0]]}, g.EdgePoints[f]...)
		idx = append(idx, g.VertexPoints[utils.TriEdges[f][1]])
		var pts []r2.Vec
		if order == 1 {
			pts = []r2.Vec{m.Vertices[b.V[0]], m.Vertices[b.V[1]]}
		} else {
			nodes := m.Nodes[b.Element]
			for _, i := range idx {
				pts = append(pts, nodes[i])
			}
		}
		for q := range xq {
			t := (xq[q] + 1) / 2
			var d r2.Vec
			for i, li := range lagrangeDeriv(ts, t) {
				d = r2.Add(d, r2.Scale(li, pts[i]))
			}
			length += wq[q] / 2 * r2.Norm(d)
		}
	}
	return length
}

// lagrangeDeriv returns the derivative at t of each Lagrange polynomial on
// the nodes ts.
func lagrangeDeriv(ts []float64, t float64) []float64 {
	n := len(ts)
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			term := 1 / (ts[i] - ts[j])
			for k := 0; k < n; k++ {
				if k != i && k != j {
					term *= (t - ts[k]) / (ts[i] - ts[k])
				}
			}
			d[i] += term
		}
	}
	return d
}
