package arf

import (
	"errors"
	"fmt"
	"github.com/notargets/arfgeom/csg"
	"github.com/notargets/arfgeom/fiber"
	"gonum.org/v1/gonum/spatial/r2"
	"math"
	"strings"
)

var (
	ErrInvalidCoreShape = errors.New("arf: polygonal core needs more than two capillaries")
	ErrMissingMesh      = errors.New("arf: mesh has not been built")
)

// Material and boundary names shared by the geometry and the field.
const (
	MatCore     = "core"
	MatFillAir  = "fill_air"
	MatGlass    = "glass"
	MatInnerAir = "inner_air"

	BCCore        = "core_fill_air_interface"
	BCGlassAir    = "glass_air_interface"
	BCCladding    = "cladding_outer_materials_interface"
	BCOuterCircle = "OuterCircle"
)

// Geometry is the solid model of a fiber cross section.
type Geometry struct {
	CSG    *csg.Geometry
	Spline *csg.SplineGeometry

	// R is the radius of the inner edge of the outermost layer, Rout the
	// radius of the truncation boundary.
	R, Rout float64

	// CorePoints holds the polygon vertices of a polygonal core.
	CorePoints []r2.Vec
}

// CorePolygon returns the vertices of a regular n-gon with apothem r,
// counter clockwise, with one edge centred under each capillary gap.
func CorePolygon(n int, r float64) []r2.Vec {
	R := r / math.Cos(math.Pi/float64(n))
	pts := make([]r2.Vec, n)
	for i := range pts {
		sin, cos := math.Sincos(float64(2*i-1) * math.Pi / float64(n))
		pts[i] = r2.Vec{X: -R * sin, Y: R * cos}
	}
	return pts
}

// InterfaceName returns the boundary name between outer layer i and the
// layer after it; the last layer ends on OuterCircle.
func InterfaceName(layers []fiber.OuterMaterial, i int) string {
	if i == len(layers)-1 {
		return BCOuterCircle
	}
	return layers[i].Material + "_" + layers[i+1].Material + "_interface"
}

// BuildGeometry assembles the cross section of a resolved design. Domains
// are added in the order core, fill_air, glass, inner_air and then the outer
// layers from the cladding outward.
func BuildGeometry(d fiber.Design, polyCore bool) (g *Geometry, err error) {
	if polyCore && d.NTubes <= 2 {
		return nil, fmt.Errorf("%w: have %d", ErrInvalidCoreShape, d.NTubes)
	}
	origin := r2.Vec{}
	g = &Geometry{CSG: csg.NewGeometry()}

	var core *csg.Solid
	if polyCore {
		g.CorePoints = CorePolygon(d.NTubes, d.RCore)
		core = csg.NewPolygon(g.CorePoints, MatCore, BCCore)
	} else {
		core = csg.NewCircle(origin, d.RCore, MatCore, BCCore)
	}

	fillDisk := csg.NewCircle(origin, d.RCladding, MatFillAir, BCGlassAir)
	claddingDisk := csg.NewCircle(origin, d.RCladding+d.TCladding, MatGlass, BCCladding)

	innerTubes, outerTubes := csg.NewUnion(), csg.NewUnion()
	tubeCenter := r2.Vec{Y: d.RTubeCenter}
	for i := 0; i < d.NTubes; i++ {
		angle := 360 / float64(d.NTubes) * float64(i)
		inner := csg.NewCircle(tubeCenter, d.RTube, MatInnerAir, BCGlassAir).Rotate(angle, origin)
		outer := csg.NewCircle(tubeCenter, d.RTube+d.TTube, MatGlass, BCGlassAir).Rotate(angle, origin)
		innerTubes = innerTubes.Union(inner)
		outerTubes = outerTubes.Union(outer)
	}

	cladding := claddingDisk.Difference(fillDisk)
	tubes := outerTubes.Difference(innerTubes)
	tubes.Maxh(d.Maxh.Tube)
	cladding.Maxh(d.Maxh.Cladding)
	innerTubes.Maxh(d.Maxh.InnerAir)

	glass := cladding.Union(tubes).Mat(MatGlass)
	if d.Maxh.Glass > 0 {
		glass.Maxh(d.Maxh.Glass)
	}

	fillAir := fillDisk.Difference(outerTubes).Difference(core).Maxh(d.Maxh.FillAir).Mat(MatFillAir)
	core.Maxh(d.Maxh.Core).Mat(MatCore)

	for _, s := range []*csg.Solid{core, fillAir, glass} {
		if err = g.CSG.Add(s); err != nil {
			return nil, err
		}
	}
	if d.NTubes > 0 {
		if err = g.CSG.Add(innerTubes.Mat(MatInnerAir)); err != nil {
			return nil, err
		}
	}

	g.Rout = d.RCladding + d.TCladding
	inner := claddingDisk
	for i, layer := range d.OuterMaterials {
		g.Rout += layer.T
		outer := csg.NewCircle(origin, g.Rout, layer.Material, InterfaceName(d.OuterMaterials, i))
		region := outer.Difference(inner).Mat(layer.Material).Maxh(layer.Maxh)
		if err = g.CSG.Add(region); err != nil {
			return nil, err
		}
		inner = outer
	}
	g.R = g.Rout - d.OuterMaterials[len(d.OuterMaterials)-1].T
	g.Spline = g.CSG.GenerateSplineGeometry()
	return g, nil
}

func (g *Geometry) String() string {
	var sb strings.Builder
	sb.WriteString(g.CSG.String())
	sb.WriteString(fmt.Sprintf("  R = %.6g, Rout = %.6g\n", g.R, g.Rout))
	sb.WriteString(fmt.Sprintf("  Boundaries: %s\n", strings.Join(g.Spline.BoundaryNames(), ", ")))
	return sb.String()
}
