package mesh

import (
	"fmt"
	"github.com/notargets/arfgeom/utils"
	"gonum.org/v1/gonum/spatial/r2"
	"math"
)

type triangle struct {
	v    [3]int // counter clockwise
	nb   [3]int // nb[i] lies across edge v[i] -> v[i+1], -1 for none
	dead bool
}

// delaunay is an incremental Bowyer-Watson triangulation. Points are located
// by walking from the last inserted triangle; the cavity of a new point is
// grown breadth first from the triangle containing it, so it stays
// connected.
type delaunay struct {
	pts  []r2.Vec
	tris []triangle
	last int
	n    int   // number of user points, the three super vertices follow
	vt   []int // one live triangle per vertex, set by compact
}

func orient(a, b, c r2.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// inCircle is positive when d lies inside the circumcircle of the counter
// clockwise triangle abc.
func inCircle(a, b, c, d r2.Vec) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y
	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy
	return adx*(bdy*cd-bd*cdy) - ady*(bdx*cd-bd*cdx) + ad*(bdx*cdy-bdy*cdx)
}

func triangulate(pts []r2.Vec) ([][3]int, error) {
	return triangulateConstrained(pts, nil)
}

// triangulateConstrained returns a Delaunay triangulation of pts that
// contains every segment in segs as an edge. Segments must not cross each
// other or pass through a point.
func triangulateConstrained(pts []r2.Vec, segs [][2]int) (tris [][3]int, err error) {
	if len(pts) < 3 {
		return nil, fmt.Errorf("%w: %d points", ErrNoPoints, len(pts))
	}
	d := &delaunay{n: len(pts)}
	d.pts = append(d.pts, pts...)

	lo, hi := pts[0], pts[0]
	for _, p := range pts {
		lo = r2.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y)}
		hi = r2.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y)}
	}
	c := r2.Scale(.5, r2.Add(lo, hi))
	ext := math.Max(hi.X-lo.X, hi.Y-lo.Y)
	if ext == 0 {
		return nil, fmt.Errorf("%w: all points coincide", ErrDegenerate)
	}
	ext *= 50
	d.pts = append(d.pts,
		r2.Vec{X: c.X - 2*ext, Y: c.Y - ext},
		r2.Vec{X: c.X + 2*ext, Y: c.Y - ext},
		r2.Vec{X: c.X, Y: c.Y + 2*ext},
	)
	d.tris = []triangle{{v: [3]int{d.n, d.n + 1, d.n + 2}, nb: [3]int{-1, -1, -1}}}

	for i := 0; i < d.n; i++ {
		if err = d.insert(i); err != nil {
			return nil, err
		}
	}
	if len(segs) > 0 {
		d.compact()
		fixed := make(map[utils.EdgeKey]bool, len(segs))
		for _, s := range segs {
			fixed[utils.NewEdgeKey(s[0], s[1])] = true
		}
		for _, s := range segs {
			if err = d.insertSegment(s[0], s[1], fixed); err != nil {
				return nil, err
			}
		}
	}
	for _, t := range d.tris {
		if t.dead || t.v[0] >= d.n || t.v[1] >= d.n || t.v[2] >= d.n {
			continue
		}
		tris = append(tris, t.v)
	}
	return tris, nil
}

func (d *delaunay) locate(p r2.Vec) int {
	t := d.last
	for steps := 0; steps < 4*len(d.tris); steps++ {
		tr := &d.tris[t]
		moved := false
		for i := 0; i < 3; i++ {
			if orient(d.pts[tr.v[i]], d.pts[tr.v[(i+1)%3]], p) < 0 && tr.nb[i] >= 0 {
				t = tr.nb[i]
				moved = true
				break
			}
		}
		if !moved {
			return t
		}
	}
	// the walk cycled; fall back to a scan
	for i := range d.tris {
		tr := &d.tris[i]
		if tr.dead {
			continue
		}
		a, b, c := d.pts[tr.v[0]], d.pts[tr.v[1]], d.pts[tr.v[2]]
		if orient(a, b, p) >= 0 && orient(b, c, p) >= 0 && orient(c, a, p) >= 0 {
			return i
		}
	}
	return -1
}

type cavityEdge struct {
	a, b  int
	outer int
	owner int
}

func (d *delaunay) insert(pi int) error {
	p := d.pts[pi]
	start := d.locate(p)
	if start < 0 {
		return fmt.Errorf("%w: point %d (%g, %g) is outside the triangulation", ErrDegenerate, pi, p.X, p.Y)
	}

	inCavity := map[int]bool{start: true}
	cavity := []int{start}
	for q := 0; q < len(cavity); q++ {
		for _, n := range d.tris[cavity[q]].nb {
			if n < 0 || inCavity[n] {
				continue
			}
			tr := d.tris[n]
			if inCircle(d.pts[tr.v[0]], d.pts[tr.v[1]], d.pts[tr.v[2]], p) > 0 {
				inCavity[n] = true
				cavity = append(cavity, n)
			}
		}
	}

	// The new point must see every cavity edge from the inside. Round off can
	// admit a triangle that breaks this; drop such triangles and retry.
	var edges []cavityEdge
	for {
		edges = edges[:0]
		bad := -1
		for _, t := range cavity {
			tr := d.tris[t]
			for i := 0; i < 3; i++ {
				n := tr.nb[i]
				if n >= 0 && inCavity[n] {
					continue
				}
				a, b := tr.v[i], tr.v[(i+1)%3]
				if bad < 0 && t != start && orient(d.pts[a], d.pts[b], p) <= 0 {
					bad = t
				}
				edges = append(edges, cavityEdge{a: a, b: b, outer: n, owner: t})
			}
		}
		if bad < 0 {
			break
		}
		delete(inCavity, bad)
		kept := cavity[:0]
		for _, t := range cavity {
			if t != bad {
				kept = append(kept, t)
			}
		}
		cavity = kept
	}

	first := len(d.tris)
	byA := make(map[int]int, len(edges))
	byB := make(map[int]int, len(edges))
	for i, e := range edges {
		nt := first + i
		d.tris = append(d.tris, triangle{v: [3]int{e.a, e.b, pi}, nb: [3]int{e.outer, -1, -1}})
		byA[e.a] = nt
		byB[e.b] = nt
		if e.outer >= 0 {
			o := &d.tris[e.outer]
			for j := 0; j < 3; j++ {
				if o.nb[j] == e.owner && o.v[j] == e.b && o.v[(j+1)%3] == e.a {
					o.nb[j] = nt
				}
			}
		}
	}
	for i, e := range edges {
		nt := &d.tris[first+i]
		var ok1, ok2 bool
		nt.nb[1], ok1 = byA[e.b]
		nt.nb[2], ok2 = byB[e.a]
		if !ok1 || !ok2 {
			return fmt.Errorf("%w: open cavity inserting point %d", ErrDegenerate, pi)
		}
	}
	for _, t := range cavity {
		d.tris[t].dead = true
	}
	d.last = first
	return nil
}

// compact drops dead triangles and indexes one triangle per vertex.
func (d *delaunay) compact() {
	index := make([]int, len(d.tris))
	var live []triangle
	for i, t := range d.tris {
		if t.dead {
			index[i] = -1
			continue
		}
		index[i] = len(live)
		live = append(live, t)
	}
	for i := range live {
		for j, n := range live[i].nb {
			if n >= 0 {
				live[i].nb[j] = index[n]
			}
		}
	}
	d.tris, d.last = live, 0
	d.vt = make([]int, len(d.pts))
	for i, t := range d.tris {
		for _, v := range t.v {
			d.vt[v] = i
		}
	}
}

func (d *delaunay) vertexIndex(t, v int) int {
	for i, w := range d.tris[t].v {
		if w == v {
			return i
		}
	}
	return -1
}

// third returns the vertex of triangle t that is neither u nor w.
func (d *delaunay) third(t, u, w int) int {
	for _, v := range d.tris[t].v {
		if v != u && v != w {
			return v
		}
	}
	return -1
}

// around calls fn with every triangle incident to v and the local index of
// v in it, stopping early when fn returns true. Every user vertex lies
// inside the super triangle, so its fan is closed.
func (d *delaunay) around(v int, fn func(t, i int) bool) bool {
	start := d.vt[v]
	t := start
	for steps := 0; steps <= len(d.tris); steps++ {
		i := d.vertexIndex(t, v)
		if i < 0 {
			return false
		}
		if fn(t, i) {
			return true
		}
		if t = d.tris[t].nb[(i+2)%3]; t < 0 || t == start {
			return false
		}
	}
	return false
}

// findEdge returns the triangle holding the directed edge u -> w and the
// local index of that edge, or -1.
func (d *delaunay) findEdge(u, w int) (t, i int) {
	t, i = -1, -1
	d.around(u, func(tt, iu int) bool {
		if d.tris[tt].v[(iu+1)%3] == w {
			t, i = tt, iu
			return true
		}
		return false
	})
	return
}

// flip replaces edge i of triangle t and its neighbour by the other diagonal
// of their quadrilateral, which it returns.
func (d *delaunay) flip(t, i int) (p2, q2 int) {
	T := d.tris[t]
	n := T.nb[i]
	N := d.tris[n]
	p0, p1 := T.v[i], T.v[(i+1)%3]
	p2 = T.v[(i+2)%3]
	j := d.vertexIndex(n, p1)
	q2 = N.v[(j+2)%3]
	a, b := T.nb[(i+1)%3], T.nb[(i+2)%3]
	c, e := N.nb[(j+1)%3], N.nb[(j+2)%3]
	d.tris[t] = triangle{v: [3]int{p2, p0, q2}, nb: [3]int{b, c, n}}
	d.tris[n] = triangle{v: [3]int{q2, p1, p2}, nb: [3]int{e, a, t}}
	d.relink(c, n, t)
	d.relink(a, t, n)
	d.vt[p0], d.vt[p2], d.vt[q2], d.vt[p1] = t, t, t, n
	return
}

func (d *delaunay) relink(t, from, to int) {
	if t < 0 {
		return
	}
	for k, n := range d.tris[t].nb {
		if n == from {
			d.tris[t].nb[k] = to
		}
	}
}

// convex reports whether the quadrilateral around edge u-w, with apexes p and
// q on either side, is strictly convex so the edge can be flipped.
func (d *delaunay) convex(u, w, p, q int) bool {
	pp, pq := d.pts[p], d.pts[q]
	return orient(pp, pq, d.pts[u])*orient(pp, pq, d.pts[w]) < 0
}

// insertSegment makes a-b an edge of the triangulation by flipping the edges
// it crosses, then restores the Delaunay property around the new edges.
func (d *delaunay) insertSegment(a, b int, fixed map[utils.EdgeKey]bool) error {
	pa, pb := d.pts[a], d.pts[b]
	crosses := func(u, w int) bool {
		if u == a || u == b || w == a || w == b {
			return false
		}
		pu, pw := d.pts[u], d.pts[w]
		return orient(pa, pb, pu)*orient(pa, pb, pw) < 0 && orient(pu, pw, pa)*orient(pu, pw, pb) < 0
	}
	onSegment := func(v int) bool {
		pv := d.pts[v]
		return orient(pa, pb, pv) == 0 && r2.Dot(r2.Sub(pv, pa), r2.Sub(pb, pa)) > 0
	}

	// find the triangle at a that the segment leaves through
	t, u, w := -1, -1, -1
	var exists, collinear bool
	d.around(a, func(tt, i int) bool {
		x, y := d.tris[tt].v[(i+1)%3], d.tris[tt].v[(i+2)%3]
		switch {
		case x == b || y == b:
			exists = true
		case onSegment(x) || onSegment(y):
			collinear = true
		case orient(pa, pb, d.pts[x]) < 0 && orient(pa, pb, d.pts[y]) > 0:
			t, u, w = tt, x, y
		default:
			return false
		}
		return true
	})
	switch {
	case exists:
		return nil
	case collinear || t < 0:
		return fmt.Errorf("%w: a point lies on constrained edge %d-%d", ErrDegenerate, a, b)
	}

	// walk to b collecting the crossed edges, u on the right, w on the left
	var queue [][2]int
	for steps := 0; ; steps++ {
		if steps > len(d.tris) {
			return fmt.Errorf("%w: lost walking constrained edge %d-%d", ErrDegenerate, a, b)
		}
		queue = append(queue, [2]int{u, w})
		k := d.vertexIndex(t, u)
		n := d.tris[t].nb[k]
		if n < 0 {
			return fmt.Errorf("%w: constrained edge %d-%d leaves the hull", ErrDegenerate, a, b)
		}
		x := d.third(n, u, w)
		if x == b {
			break
		}
		switch o := orient(pa, pb, d.pts[x]); {
		case o < 0:
			u = x
		case o > 0:
			w = x
		default:
			return fmt.Errorf("%w: a point lies on constrained edge %d-%d", ErrDegenerate, a, b)
		}
		t = n
	}

	var created [][2]int
	limit := 100 + 4*len(queue)*len(queue)
	for iter := 0; len(queue) > 0; iter++ {
		if iter > limit {
			return fmt.Errorf("%w: cannot recover constrained edge %d-%d", ErrDegenerate, a, b)
		}
		e := queue[0]
		queue = queue[1:]
		if fixed[utils.NewEdgeKey(e[0], e[1])] {
			return fmt.Errorf("%w: constrained edges %d-%d and %d-%d cross", ErrDegenerate, a, b, e[0], e[1])
		}
		t, k := d.findEdge(e[0], e[1])
		if t < 0 {
			return fmt.Errorf("%w: edge %d-%d vanished", ErrDegenerate, e[0], e[1])
		}
		n := d.tris[t].nb[k]
		if !d.convex(e[0], e[1], d.tris[t].v[(k+2)%3], d.third(n, e[0], e[1])) {
			queue = append(queue, e)
			continue
		}
		x, y := d.flip(t, k)
		if crosses(x, y) {
			queue = append(queue, [2]int{x, y})
		} else {
			created = append(created, [2]int{x, y})
		}
	}
	d.legalize(created, fixed)
	return nil
}

// legalize flips edges whose opposite apex lies inside the circumcircle,
// starting from stack and never touching fixed edges.
func (d *delaunay) legalize(stack [][2]int, fixed map[utils.EdgeKey]bool) {
	for iter := 0; len(stack) > 0 && iter < 100*len(d.tris); iter++ {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if fixed[utils.NewEdgeKey(e[0], e[1])] {
			continue
		}
		t, k := d.findEdge(e[0], e[1])
		if t < 0 {
			continue
		}
		n := d.tris[t].nb[k]
		if n < 0 {
			continue
		}
		tr := d.tris[t]
		p2, q2 := tr.v[(k+2)%3], d.third(n, e[0], e[1])
		if inCircle(d.pts[tr.v[0]], d.pts[tr.v[1]], d.pts[tr.v[2]], d.pts[q2]) <= 0 ||
			!d.convex(e[0], e[1], p2, q2) {
			continue
		}
		d.flip(t, k)
		stack = append(stack, [2]int{e[0], q2}, [2]int{q2, e[1]}, [2]int{e[1], p2}, [2]int{p2, e[0]})
	}
}
