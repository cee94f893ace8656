package csg

import (
	"fmt"
	"gonum.org/v1/gonum/spatial/r2"
	"math"
)

type CurveKind uint8

const (
	Arc CurveKind = iota
	Segment
)

func (k CurveKind) String() string {
	switch k {
	case Arc:
		return "Arc"
	case Segment:
		return "Segment"
	}
	return fmt.Sprintf("CurveKind(%d)", uint8(k))
}

// Curve is one exact boundary piece: a full circle or a straight segment.
type Curve struct {
	Kind   CurveKind
	Center r2.Vec
	Radius float64
	A, B   r2.Vec
	BC     string
	Maxh   float64
}

// Length returns the arc length of the curve.
func (c Curve) Length() float64 {
	if c.Kind == Arc {
		return 2 * math.Pi * c.Radius
	}
	return r2.Norm(r2.Sub(c.B, c.A))
}

// Project returns the point of the curve nearest to p.
func (c Curve) Project(p r2.Vec) r2.Vec {
	if c.Kind == Arc {
		d := r2.Sub(p, c.Center)
		n := r2.Norm(d)
		if n == 0 {
			return r2.Add(c.Center, r2.Vec{X: c.Radius})
		}
		return r2.Add(c.Center, r2.Scale(c.Radius/n, d))
	}
	ab := r2.Sub(c.B, c.A)
	t := r2.Dot(r2.Sub(p, c.A), ab) / r2.Dot(ab, ab)
	t = math.Max(0, math.Min(1, t))
	return r2.Add(c.A, r2.Scale(t, ab))
}

// Distance returns the distance from p to the curve.
func (c Curve) Distance(p r2.Vec) float64 {
	return r2.Norm(r2.Sub(p, c.Project(p)))
}

// Normal returns the unit normal at a point on the curve. Arcs point away
// from the centre; segments point to the right of A->B, which is outward
// for a counter clockwise polygon.
func (c Curve) Normal(p r2.Vec) r2.Vec {
	if c.Kind == Arc {
		d := r2.Sub(p, c.Center)
		return r2.Scale(1/r2.Norm(d), d)
	}
	ab := r2.Sub(c.B, c.A)
	l := r2.Norm(ab)
	return r2.Vec{X: ab.Y / l, Y: -ab.X / l}
}

// Interpolate returns the point a fraction t of the way from a to b along
// the curve. Both a and b are assumed to lie on it. Arcs follow the shorter
// way round, so Interpolate(a, b, t) equals Interpolate(b, a, 1-t).
func (c Curve) Interpolate(a, b r2.Vec, t float64) r2.Vec {
	if c.Kind == Segment {
		return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
	}
	ta := math.Atan2(a.Y-c.Center.Y, a.X-c.Center.X)
	tb := math.Atan2(b.Y-c.Center.Y, b.X-c.Center.X)
	dt := math.Remainder(tb-ta, 2*math.Pi)
	th := ta + t*dt
	sin, cos := math.Sincos(th)
	return r2.Add(c.Center, r2.Vec{X: c.Radius * cos, Y: c.Radius * sin})
}

// Sample returns points along the curve spaced at most h apart. Arcs start
// at angle zero; segments include A but not B.
func (c Curve) Sample(h float64) []r2.Vec {
	if c.Kind == Arc {
		n := int(math.Ceil(c.Length() / h))
		if n < 8 {
			n = 8
		}
		pts := make([]r2.Vec, n)
		for i := range pts {
			sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(n))
			pts[i] = r2.Add(c.Center, r2.Vec{X: c.Radius * cos, Y: c.Radius * sin})
		}
		return pts
	}
	n := int(math.Ceil(c.Length() / h))
	if n < 1 {
		n = 1
	}
	pts := make([]r2.Vec, n)
	for i := range pts {
		pts[i] = c.Interpolate(c.A, c.B, float64(i)/float64(n))
	}
	return pts
}

func (c Curve) key() string {
	q := func(x float64) int64 { return int64(math.Round(x * 1e9)) }
	if c.Kind == Arc {
		return fmt.Sprintf("arc:%d:%d:%d", q(c.Center.X), q(c.Center.Y), q(c.Radius))
	}
	a, b := c.A, c.B
	if q(b.X) < q(a.X) || (q(b.X) == q(a.X) && q(b.Y) < q(a.Y)) {
		a, b = b, a
	}
	return fmt.Sprintf("seg:%d:%d:%d:%d", q(a.X), q(a.Y), q(b.X), q(b.Y))
}

// SplineGeometry is the boundary description of a Geometry: every distinct
// curve once, with its boundary condition name and mesh size, plus the
// material of each domain.
type SplineGeometry struct {
	Curves    []Curve
	Materials []string
}

// Project moves p onto curve id.
func (sg *SplineGeometry) Project(id int, p r2.Vec) r2.Vec {
	return sg.Curves[id].Project(p)
}

// Interpolate walks curve id from a to b.
func (sg *SplineGeometry) Interpolate(id int, a, b r2.Vec, t float64) r2.Vec {
	return sg.Curves[id].Interpolate(a, b, t)
}

// CurvesAt returns the ids of every curve passing within tol of p.
func (sg *SplineGeometry) CurvesAt(p r2.Vec, tol float64) (ids []int) {
	for i, c := range sg.Curves {
		if c.Distance(p) <= tol {
			ids = append(ids, i)
		}
	}
	return
}

// BoundaryNames returns the distinct boundary condition names in curve order.
func (sg *SplineGeometry) BoundaryNames() (names []string) {
	seen := make(map[string]bool)
	for _, c := range sg.Curves {
		if !seen[c.BC] {
			seen[c.BC] = true
			names = append(names, c.BC)
		}
	}
	return
}

// Copy returns an independent copy.
func (sg *SplineGeometry) Copy() *SplineGeometry {
	return &SplineGeometry{
		Curves:    append([]Curve(nil), sg.Curves...),
		Materials: append([]string(nil), sg.Materials...),
	}
}
