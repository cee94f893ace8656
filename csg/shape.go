package csg

import (
	"gonum.org/v1/gonum/spatial/r2"
	"math"
)

// Box is an axis aligned bounding rectangle.
type Box struct {
	Min, Max r2.Vec
}

// Union returns the smallest box holding both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		Min: r2.Vec{X: math.Min(b.Min.X, o.Min.X), Y: math.Min(b.Min.Y, o.Min.Y)},
		Max: r2.Vec{X: math.Max(b.Max.X, o.Max.X), Y: math.Max(b.Max.Y, o.Max.Y)},
	}
}

// Size returns the box extent along x and y.
func (b Box) Size() r2.Vec {
	return r2.Sub(b.Max, b.Min)
}

// Shape is a closed primitive region with an exactly known boundary.
type Shape interface {
	Contains(p r2.Vec) bool
	Bounds() Box
	// Rotated returns a copy rotated by angle radians about q.
	Rotated(angle float64, q r2.Vec) Shape
	// Curves returns the boundary pieces, untagged.
	Curves() []Curve
}

// Circle is a disk of the given radius.
type Circle struct {
	Center r2.Vec
	Radius float64
}

func (c Circle) Contains(p r2.Vec) bool {
	return r2.Norm(r2.Sub(p, c.Center)) < c.Radius
}

func (c Circle) Bounds() Box {
	d := r2.Vec{X: c.Radius, Y: c.Radius}
	return Box{Min: r2.Sub(c.Center, d), Max: r2.Add(c.Center, d)}
}

func (c Circle) Rotated(angle float64, q r2.Vec) Shape {
	return Circle{Center: rotate(c.Center, angle, q), Radius: c.Radius}
}

func (c Circle) Curves() []Curve {
	return []Curve{{Kind: Arc, Center: c.Center, Radius: c.Radius}}
}

// Polygon is a simple polygon with counter clockwise vertices.
type Polygon struct {
	Points []r2.Vec
}

// Contains uses the crossing number rule.
func (pg Polygon) Contains(p r2.Vec) bool {
	in := false
	n := len(pg.Points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pg.Points[i], pg.Points[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}

func (pg Polygon) Bounds() Box {
	b := Box{Min: pg.Points[0], Max: pg.Points[0]}
	for _, p := range pg.Points[1:] {
		b = b.Union(Box{Min: p, Max: p})
	}
	return b
}

func (pg Polygon) Rotated(angle float64, q r2.Vec) Shape {
	pts := make([]r2.Vec, len(pg.Points))
	for i, p := range pg.Points {
		pts[i] = rotate(p, angle, q)
	}
	return Polygon{Points: pts}
}

func (pg Polygon) Curves() []Curve {
	n := len(pg.Points)
	cs := make([]Curve, n)
	for i := range pg.Points {
		cs[i] = Curve{Kind: Segment, A: pg.Points[i], B: pg.Points[(i+1)%n]}
	}
	return cs
}

func rotate(p r2.Vec, angle float64, q r2.Vec) r2.Vec {
	sin, cos := math.Sincos(angle)
	d := r2.Sub(p, q)
	return r2.Add(q, r2.Vec{X: d.X*cos - d.Y*sin, Y: d.X*sin + d.Y*cos})
}
