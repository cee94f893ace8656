package mesh

import (
	"fmt"
	"github.com/notargets/arfgeom/csg"
	"github.com/notargets/arfgeom/utils"
	"gonum.org/v1/gonum/spatial/r2"
	"math"
	"math/rand"
	"sort"
)

// pointSet collects mesh points, merging any two closer than tol.
type pointSet struct {
	pts  []r2.Vec
	tol  float64
	grid map[[2]int64][]int
}

func newPointSet(tol float64) *pointSet {
	return &pointSet{tol: tol, grid: make(map[[2]int64][]int)}
}

func (ps *pointSet) cell(p r2.Vec) [2]int64 {
	return [2]int64{int64(math.Floor(p.X / ps.tol)), int64(math.Floor(p.Y / ps.tol))}
}

// add returns the index of p, merged with an existing point within tol.
func (ps *pointSet) add(p r2.Vec) int {
	c := ps.cell(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, i := range ps.grid[[2]int64{c[0] + dx, c[1] + dy}] {
				if r2.Norm(r2.Sub(ps.pts[i], p)) < ps.tol {
					return i
				}
			}
		}
	}
	ps.grid[c] = append(ps.grid[c], len(ps.pts))
	ps.pts = append(ps.pts, p)
	return len(ps.pts) - 1
}

const (
	// spacing along a curve grows by this fraction of the distance to the
	// nearest junction
	junctionGrading = .5
	// and is never below maxh / junctionRefinement
	junctionRefinement = 16
	// chords near a junction keep their sagitta below this fraction of the
	// gap between the two curves
	junctionSagitta = .0625
)

// junction is a point where two curves cross at the given angle, in
// [0, pi/2].
type junction struct {
	p     r2.Vec
	angle float64
}

// Generate triangulates a geometry. Every curve is sampled at its maxh,
// graded down towards the points where two curves cross, and the pieces
// that separate two domains become constrained edges. Each domain is filled
// with a hexagonal lattice at its own maxh kept half a spacing away from
// every curve. The point cloud is Delaunay triangulated with the interface
// edges recovered, so no element straddles an interface, and each region
// enclosed by interfaces takes the domain found at most of its area.
func Generate(g *csg.Geometry) (m *Mesh, err error) {
	if g.NumDomains() == 0 {
		return nil, fmt.Errorf("%w: geometry has no domains", ErrNoPoints)
	}
	sg := g.GenerateSplineGeometry()

	var hdef, hmin float64
	for i := 0; i < g.NumDomains(); i++ {
		hdef = math.Max(hdef, g.Domain(i).RegionMaxh())
	}
	if hdef <= 0 {
		sz := g.Bounds().Size()
		hdef = math.Hypot(sz.X, sz.Y) / 10
	}
	curveH := func(c csg.Curve) float64 {
		if c.Maxh > 0 {
			return c.Maxh
		}
		return hdef
	}
	hmin = hdef
	for _, c := range sg.Curves {
		hmin = math.Min(hmin, curveH(c))
	}

	ps := newPointSet(1.e-3 * hmin)

	junctions := make([][]junction, len(sg.Curves))
	for i, ci := range sg.Curves {
		for j := i + 1; j < len(sg.Curves); j++ {
			cj := sg.Curves[j]
			for _, p := range intersect(ci, cj) {
				if isJunction(g, ci, cj, p, 1.e-3*hmin) {
					ps.add(p)
					jn := junction{p: p, angle: math.Acos(math.Min(1, math.Abs(r2.Dot(ci.Normal(p), cj.Normal(p)))))}
					junctions[i] = append(junctions[i], jn)
					junctions[j] = append(junctions[j], jn)
				}
			}
		}
	}

	var segs [][2]int
	segCurve := make(map[utils.EdgeKey]int)
	for id, c := range sg.Curves {
		ch := chain(c, curveH(c), junctions[id])
		for i, mid := range ch.mids {
			a, b := ch.pts[i], ch.pts[(i+1)%len(ch.pts)]
			if !isInterface(g, mid, c.Normal(mid), 1.e-4*r2.Norm(r2.Sub(b, a))) {
				continue
			}
			ia, ib := ps.add(a), ps.add(b)
			key := utils.NewEdgeKey(ia, ib)
			if _, ok := segCurve[key]; ok || ia == ib {
				continue
			}
			segCurve[key] = id
			segs = append(segs, [2]int{ia, ib})
		}
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: no interface points", ErrNoPoints)
	}

	for d := 0; d < g.NumDomains(); d++ {
		h := g.Domain(d).RegionMaxh()
		if h <= 0 {
			h = hdef
		}
		for _, p := range lattice(g.Domain(d).Bounds(), h) {
			if g.DomainAt(p) != d {
				continue
			}
			if nearCurve(sg, p, .5*h) {
				continue
			}
			ps.add(p)
		}
	}

	// Break the cocircularity of points sampled on one circle and of the
	// lattice with a small deterministic perturbation.
	rng := rand.New(rand.NewSource(1))
	jittered := make([]r2.Vec, len(ps.pts))
	amp := 1.e-7 * hmin
	for i, p := range ps.pts {
		jittered[i] = r2.Add(p, r2.Vec{X: amp * (2*rng.Float64() - 1), Y: amp * (2*rng.Float64() - 1)})
	}
	tris, err := triangulateConstrained(jittered, segs)
	if err != nil {
		return nil, err
	}

	m = &Mesh{
		Vertices:   ps.pts,
		Materials:  g.Materials(),
		CurveOrder: 1,
	}
	for _, t := range tris {
		a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		if orient(a, b, c) <= 0 {
			continue
		}
		centroid := r2.Scale(1./3, r2.Add(a, r2.Add(b, c)))
		m.Elements = append(m.Elements, Element{V: t, Domain: g.DomainAt(centroid)})
	}
	m.labelRegions(segCurve)
	kept := m.Elements[:0]
	for _, el := range m.Elements {
		if el.Domain >= 0 {
			kept = append(kept, el)
		}
	}
	m.Elements = kept
	if len(m.Elements) == 0 {
		return nil, fmt.Errorf("%w: no elements inside the geometry", ErrDegenerate)
	}
	newIndex := m.compactVertices()
	curves := make(map[utils.EdgeKey]int, len(segCurve))
	for key, id := range segCurve {
		if a, b := newIndex[key[0]], newIndex[key[1]]; a >= 0 && b >= 0 {
			curves[utils.NewEdgeKey(a, b)] = id
		}
	}
	if err = m.extractBoundaries(curves); err != nil {
		return nil, err
	}
	m.SetGeometry(sg)
	return m, nil
}

// curveChain is a curve cut into pieces: piece i runs from pts[i] to
// pts[i+1], wrapping round on closed curves, and passes through mids[i].
type curveChain struct {
	pts  []r2.Vec
	mids []r2.Vec
}

// chain cuts c into pieces at most h long. Arcs are cut at every junction on
// them, and the pieces shrink towards the junctions.
func chain(c csg.Curve, h float64, junctions []junction) (ch curveChain) {
	if c.Kind == csg.Segment {
		ch.pts = append(c.Sample(h), c.B)
		for i := 0; i+1 < len(ch.pts); i++ {
			ch.mids = append(ch.mids, c.Interpolate(ch.pts[i], ch.pts[i+1], .5))
		}
		return
	}
	at := func(th float64) r2.Vec {
		sin, cos := math.Sincos(th)
		return r2.Add(c.Center, r2.Vec{X: c.Radius * cos, Y: c.Radius * sin})
	}
	if len(junctions) == 0 {
		n := len(c.Sample(h))
		for i := 0; i < n; i++ {
			ch.pts = append(ch.pts, at(2*math.Pi*float64(i)/float64(n)))
			ch.mids = append(ch.mids, at(2*math.Pi*(float64(i)+.5)/float64(n)))
		}
		return
	}

	type cut struct {
		th float64
		junction
	}
	var cuts []cut
	for _, jn := range junctions {
		th := math.Atan2(jn.p.Y-c.Center.Y, jn.p.X-c.Center.X)
		if th < 0 {
			th += 2 * math.Pi
		}
		cuts = append(cuts, cut{th, jn})
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i].th < cuts[j].th })
	uniq := cuts[:1]
	for _, ct := range cuts[1:] {
		if ct.th-uniq[len(uniq)-1].th > 1.e-12 {
			uniq = append(uniq, ct)
		}
	}
	for i, ct := range uniq {
		next := uniq[(i+1)%len(uniq)]
		end := next.th
		if i+1 == len(uniq) {
			end += 2 * math.Pi
		}
		ths := gradedCuts(ct.th, end, c.Radius, h, ct.angle, next.angle)
		ch.pts = append(ch.pts, ct.p)
		for k := 1; k < len(ths)-1; k++ {
			ch.pts = append(ch.pts, at(ths[k]))
		}
		for k := 0; k+1 < len(ths); k++ {
			ch.mids = append(ch.mids, at(.5*(ths[k]+ths[k+1])))
		}
	}
	return
}

// gradedCuts divides the arc between angles ta < tb into pieces of length h
// away from both ends. Towards an end where curves cross at angle alpha the
// pieces shrink with the distance s to it, and their sagitta stays below a
// fraction of the gap alpha*s between the curves. Every piece spans less
// than an eighth of a turn. The result includes ta and tb.
func gradedCuts(ta, tb, radius, h, alphaA, alphaB float64) []float64 {
	const steps = 1024
	length := (tb - ta) * radius
	near := func(s, alpha float64) float64 {
		return math.Min(junctionGrading*s, math.Sqrt(8*junctionSagitta*radius*alpha*s))
	}
	size := func(s float64) float64 {
		l := math.Min(near(s, alphaA), near(length-s, alphaB))
		return math.Min(h, math.Max(h/junctionRefinement, l))
	}
	cum := make([]float64, steps+1)
	ds := length / steps
	for i := 1; i <= steps; i++ {
		cum[i] = cum[i-1] + ds/size((float64(i)-.5)*ds)
	}
	n := int(math.Ceil(cum[steps] - 1.e-9))
	n = max(n, int(math.Ceil((tb-ta)/(math.Pi/4))), 1)

	ths := []float64{ta}
	j := 0
	for k := 1; k < n; k++ {
		target := cum[steps] * float64(k) / float64(n)
		for cum[j+1] < target {
			j++
		}
		frac := (target - cum[j]) / (cum[j+1] - cum[j])
		ths = append(ths, ta+(float64(j)+frac)*ds/radius)
	}
	return append(ths, tb)
}

// isInterface reports whether the domains on either side of the curve
// through p, with normal n, differ.
func isInterface(g *csg.Geometry, p, n r2.Vec, delta float64) bool {
	return g.DomainAt(r2.Add(p, r2.Scale(delta, n))) != g.DomainAt(r2.Sub(p, r2.Scale(delta, n)))
}

// labelRegions gives every region of elements enclosed by the constrained
// edges the domain holding most of its area. A region where a second domain
// holds more than a tenth of the area keeps the per element labels.
func (m *Mesh) labelRegions(constrained map[utils.EdgeKey]int) {
	parent := make([]int, len(m.Elements))
	for k := range parent {
		parent[k] = k
	}
	var find func(k int) int
	find = func(k int) int {
		if parent[k] != k {
			parent[k] = find(parent[k])
		}
		return parent[k]
	}
	owner := make(map[utils.EdgeKey]int, 3*len(m.Elements)/2)
	for k, el := range m.Elements {
		for _, e := range utils.TriEdges {
			key := utils.NewEdgeKey(el.V[e[0]], el.V[e[1]])
			if _, ok := constrained[key]; ok {
				continue
			}
			if o, ok := owner[key]; ok {
				parent[find(o)] = find(k)
				continue
			}
			owner[key] = k
		}
	}

	area := make([]map[int]float64, len(m.Elements))
	for k, el := range m.Elements {
		a, b, c := m.Vertices[el.V[0]], m.Vertices[el.V[1]], m.Vertices[el.V[2]]
		r := find(k)
		if area[r] == nil {
			area[r] = make(map[int]float64)
		}
		area[r][el.Domain] += .5 * orient(a, b, c)
	}
	label := make(map[int]int, len(area))
	for r, votes := range area {
		if votes == nil {
			continue
		}
		best, total := -2, 0.
		for d, a := range votes {
			total += a
			if best == -2 || a > votes[best] || (a == votes[best] && d < best) {
				best = d
			}
		}
		if total-votes[best] <= .1*total {
			label[r] = best
		}
	}
	for k := range m.Elements {
		if d, ok := label[find(k)]; ok {
			m.Elements[k].Domain = d
		}
	}
}

func lattice(b csg.Box, h float64) (pts []r2.Vec) {
	dy := h * math.Sqrt(3) / 2
	for j := 0; ; j++ {
		y := b.Min.Y + (float64(j)+.5)*dy
		if y > b.Max.Y {
			break
		}
		off := .25 * h
		if j%2 == 1 {
			off += .5 * h
		}
		for x := b.Min.X + off; x <= b.Max.X; x += h {
			pts = append(pts, r2.Vec{X: x, Y: y})
		}
	}
	return
}

func nearCurve(sg *csg.SplineGeometry, p r2.Vec, d float64) bool {
	for _, c := range sg.Curves {
		if c.Distance(p) < d {
			return true
		}
	}
	return false
}

// isJunction reports whether an interface runs along either curve from
// their crossing p. The curves are probed a distance step away on both
// sides of p, which finds interfaces meeting at a shallow angle.
func isJunction(g *csg.Geometry, a, b csg.Curve, p r2.Vec, step float64) bool {
	for _, c := range []csg.Curve{a, b} {
		for _, s := range []float64{-step, step} {
			q := along(c, p, s)
			if isInterface(g, q, c.Normal(q), 1.e-3*step) {
				return true
			}
		}
	}
	return false
}

// along moves p, a point of c, a distance s along it.
func along(c csg.Curve, p r2.Vec, s float64) r2.Vec {
	if c.Kind == csg.Segment {
		ab := r2.Sub(c.B, c.A)
		return r2.Add(p, r2.Scale(s/r2.Norm(ab), ab))
	}
	th := math.Atan2(p.Y-c.Center.Y, p.X-c.Center.X) + s/c.Radius
	sin, cos := math.Sincos(th)
	return r2.Add(c.Center, r2.Vec{X: c.Radius * cos, Y: c.Radius * sin})
}

// intersect returns the crossing points of two arcs.
func intersect(a, b csg.Curve) []r2.Vec {
	if a.Kind != csg.Arc || b.Kind != csg.Arc {
		return nil
	}
	d := r2.Sub(b.Center, a.Center)
	dist := r2.Norm(d)
	if dist == 0 || dist > a.Radius+b.Radius || dist < math.Abs(a.Radius-b.Radius) {
		return nil
	}
	x := (dist*dist + a.Radius*a.Radius - b.Radius*b.Radius) / (2 * dist)
	h := math.Sqrt(math.Max(0, a.Radius*a.Radius-x*x))
	u := r2.Scale(1/dist, d)
	base := r2.Add(a.Center, r2.Scale(x, u))
	perp := r2.Vec{X: -u.Y, Y: u.X}
	if h == 0 {
		return []r2.Vec{base}
	}
	return []r2.Vec{r2.Add(base, r2.Scale(h, perp)), r2.Sub(base, r2.Scale(h, perp))}
}

// compactVertices drops vertices no element uses and returns the new index
// of every old vertex, -1 for dropped ones.
func (m *Mesh) compactVertices() []int {
	newIndex := make([]int, len(m.Vertices))
	for i := range newIndex {
		newIndex[i] = -1
	}
	var verts []r2.Vec
	for k := range m.Elements {
		for i, v := range m.Elements[k].V {
			if newIndex[v] < 0 {
				newIndex[v] = len(verts)
				verts = append(verts, m.Vertices[v])
			}
			m.Elements[k].V[i] = newIndex[v]
		}
	}
	m.Vertices = verts
	m.conn = nil
	return newIndex
}

// extractBoundaries records every face on the hull or between two domains,
// once, oriented with the first element that owns it. Faces found in curves
// are bound to that curve.
func (m *Mesh) extractBoundaries(curves map[utils.EdgeKey]int) (err error) {
	m.conn = nil
	EToV := make([][3]int, len(m.Elements))
	for k, el := range m.Elements {
		EToV[k] = el.V
	}
	if m.conn, err = utils.BuildConnectivity2D(EToV); err != nil {
		return fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	m.Boundaries = m.Boundaries[:0]
	for k, el := range m.Elements {
		for f := 0; f < 3; f++ {
			nbr := m.conn.EToE[k][f]
			if !m.conn.IsBoundary(k, f) && (m.Elements[nbr].Domain == el.Domain || nbr < k) {
				continue
			}
			v := [2]int{el.V[utils.TriEdges[f][0]], el.V[utils.TriEdges[f][1]]}
			curve, ok := curves[utils.NewEdgeKey(v[0], v[1])]
			if !ok {
				curve = -1
			}
			m.Boundaries = append(m.Boundaries, BoundaryEdge{
				V:       v,
				Element: k,
				Face:    f,
				Curve:   curve,
			})
		}
	}
	return nil
}
