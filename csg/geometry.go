package csg

import (
	"errors"
	"fmt"
	"gonum.org/v1/gonum/spatial/r2"
	"strings"
)

// ErrEmptySolid is returned when a solid with no area is added to a Geometry.
var ErrEmptySolid = errors.New("csg: solid is empty")

// Geometry is an ordered list of disjoint solids, one domain each.
type Geometry struct {
	domains []*Solid
}

func NewGeometry() *Geometry {
	return &Geometry{}
}

// Add appends a copy of s as a new domain.
func (g *Geometry) Add(s *Solid) error {
	if s.Empty() {
		return fmt.Errorf("%w: material %q", ErrEmptySolid, s.mat)
	}
	g.domains = append(g.domains, s.Copy())
	return nil
}

func (g *Geometry) NumDomains() int { return len(g.domains) }

func (g *Geometry) Domain(i int) *Solid { return g.domains[i] }

// Materials returns the material of each domain, in the order added.
func (g *Geometry) Materials() []string {
	mats := make([]string, len(g.domains))
	for i, d := range g.domains {
		mats[i] = d.mat
	}
	return mats
}

// DomainAt returns the first domain containing p, or -1.
func (g *Geometry) DomainAt(p r2.Vec) int {
	for i, d := range g.domains {
		if d.Contains(p) {
			return i
		}
	}
	return -1
}

// Bounds returns the box holding every domain.
func (g *Geometry) Bounds() (b Box) {
	for i, d := range g.domains {
		if i == 0 {
			b = d.Bounds()
			continue
		}
		b = b.Union(d.Bounds())
	}
	return
}

// GenerateSplineGeometry collects the boundary curves of every domain. A
// curve shared by several domains appears once, keeping the first boundary
// name seen and the finest mesh size.
func (g *Geometry) GenerateSplineGeometry() *SplineGeometry {
	sg := &SplineGeometry{Materials: g.Materials()}
	index := make(map[string]int)
	for _, d := range g.domains {
		for _, l := range d.Leaves() {
			for _, c := range l.shape.Curves() {
				c.BC, c.Maxh = l.bc, l.maxh
				k := c.key()
				if i, ok := index[k]; ok {
					if c.Maxh > 0 && (sg.Curves[i].Maxh <= 0 || c.Maxh < sg.Curves[i].Maxh) {
						sg.Curves[i].Maxh = c.Maxh
					}
					continue
				}
				index[k] = len(sg.Curves)
				sg.Curves = append(sg.Curves, c)
			}
		}
	}
	return sg
}

func (g *Geometry) String() string {
	var sb strings.Builder
	b := g.Bounds()
	sb.WriteString(fmt.Sprintf("Geometry: %d domains, bounds [%.4f, %.4f] x [%.4f, %.4f]\n",
		len(g.domains), b.Min.X, b.Max.X, b.Min.Y, b.Max.Y))
	for i, d := range g.domains {
		sb.WriteString(fmt.Sprintf("  Domain %d: %-14s leaves = %-3d maxh = %g\n",
			i, d.mat, len(d.Leaves()), d.RegionMaxh()))
	}
	return sb.String()
}
