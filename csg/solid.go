package csg

import (
	"gonum.org/v1/gonum/spatial/r2"
	"math"
)

type op uint8

const (
	leaf op = iota
	union
	difference
)

// Solid is a boolean combination of primitive shapes. Leaves carry the
// boundary condition name and target mesh size of their boundary; the root
// of a solid added to a Geometry carries the material of the region.
//
// Union and Difference copy their operands, so later changes to an operand
// do not leak into solids already built from it.
type Solid struct {
	op       op
	shape    Shape
	children []*Solid
	mat      string
	bc       string
	maxh     float64
}

// NewCircle returns a disk solid.
func NewCircle(center r2.Vec, radius float64, mat, bc string) *Solid {
	return &Solid{op: leaf, shape: Circle{Center: center, Radius: radius}, mat: mat, bc: bc}
}

// NewPolygon returns a polygonal solid; points are listed counter clockwise.
func NewPolygon(points []r2.Vec, mat, bc string) *Solid {
	pts := append([]r2.Vec(nil), points...)
	return &Solid{op: leaf, shape: Polygon{Points: pts}, mat: mat, bc: bc}
}

// NewUnion returns an empty solid that other solids can be added to.
func NewUnion() *Solid {
	return &Solid{op: union}
}

// Union returns s ∪ o.
func (s *Solid) Union(o *Solid) *Solid {
	u := &Solid{op: union, mat: s.mat}
	if s.op == union && s.maxh == 0 {
		for _, c := range s.children {
			u.children = append(u.children, c.Copy())
		}
	} else if !s.Empty() {
		u.children = append(u.children, s.Copy())
	}
	if !o.Empty() {
		u.children = append(u.children, o.Copy())
	}
	return u
}

// Difference returns s minus o.
func (s *Solid) Difference(o *Solid) *Solid {
	return &Solid{op: difference, mat: s.mat, children: []*Solid{s.Copy(), o.Copy()}}
}

// Copy returns a deep copy of the solid tree.
func (s *Solid) Copy() *Solid {
	c := *s
	c.children = make([]*Solid, len(s.children))
	for i, ch := range s.children {
		c.children[i] = ch.Copy()
	}
	return &c
}

// Rotate turns the solid by deg degrees about q, in place.
func (s *Solid) Rotate(deg float64, q r2.Vec) *Solid {
	angle := deg * math.Pi / 180
	if s.op == leaf {
		s.shape = s.shape.Rotated(angle, q)
	}
	for _, c := range s.children {
		c.Rotate(deg, q)
	}
	return s
}

// Mat sets the region material.
func (s *Solid) Mat(name string) *Solid {
	s.mat = name
	return s
}

// BC sets the boundary condition name on every boundary of the solid.
func (s *Solid) BC(name string) *Solid {
	s.bc = name
	for _, c := range s.children {
		c.BC(name)
	}
	return s
}

// Maxh sets the target mesh size for the region and all of its boundaries.
func (s *Solid) Maxh(h float64) *Solid {
	s.maxh = h
	for _, c := range s.children {
		c.Maxh(h)
	}
	return s
}

func (s *Solid) Material() string { return s.mat }

// Empty reports whether the solid covers no area.
func (s *Solid) Empty() bool {
	switch s.op {
	case leaf:
		return false
	case union:
		for _, c := range s.children {
			if !c.Empty() {
				return false
			}
		}
		return true
	default:
		return s.children[0].Empty()
	}
}

// Contains reports whether p lies in the open interior of the solid.
func (s *Solid) Contains(p r2.Vec) bool {
	switch s.op {
	case leaf:
		return s.shape.Contains(p)
	case union:
		for _, c := range s.children {
			if c.Contains(p) {
				return true
			}
		}
		return false
	default:
		if !s.children[0].Contains(p) {
			return false
		}
		for _, c := range s.children[1:] {
			if c.Contains(p) {
				return false
			}
		}
		return true
	}
}

// Bounds returns a bounding box; an empty solid returns the zero box.
func (s *Solid) Bounds() (b Box) {
	switch s.op {
	case leaf:
		return s.shape.Bounds()
	case union:
		first := true
		for _, c := range s.children {
			if c.Empty() {
				continue
			}
			if first {
				b, first = c.Bounds(), false
				continue
			}
			b = b.Union(c.Bounds())
		}
		return b
	default:
		return s.children[0].Bounds()
	}
}

// Leaves returns the primitive solids in the tree, in depth first order.
func (s *Solid) Leaves() (leaves []*Solid) {
	if s.op == leaf {
		return []*Solid{s}
	}
	for _, c := range s.children {
		leaves = append(leaves, c.Leaves()...)
	}
	return
}

// Shape returns the primitive of a leaf solid, nil otherwise.
func (s *Solid) Shape() Shape {
	if s.op != leaf {
		return nil
	}
	return s.shape
}

// RegionMaxh is the interior mesh size of the solid: its own maxh when set,
// otherwise the coarsest size found on its boundaries.
func (s *Solid) RegionMaxh() float64 {
	if s.maxh > 0 {
		return s.maxh
	}
	var h float64
	for _, l := range s.Leaves() {
		h = math.Max(h, l.maxh)
	}
	return h
}
