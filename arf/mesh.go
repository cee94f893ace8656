package arf

import (
	"fmt"
	"github.com/notargets/arfgeom/fiber"
	"github.com/notargets/arfgeom/mesh"
	"go.uber.org/zap"
)

// GenerateMesh triangulates the geometry, applies refine rounds of uniform
// refinement, projects the new boundary vertices back onto the exact curves
// and finally curves the elements to the given order.
func GenerateMesh(g *Geometry, refine, curve int) (*mesh.Mesh, error) {
	return generateMesh(g, refine, curve, zap.NewNop())
}

func generateMesh(g *Geometry, refine, curve int, log *zap.Logger) (m *mesh.Mesh, err error) {
	if refine < 0 {
		return nil, fmt.Errorf("refinement count %d must not be negative", refine)
	}
	if curve < 1 {
		return nil, fmt.Errorf("curve order %d must be at least 1", curve)
	}
	if m, err = mesh.Generate(g.CSG); err != nil {
		return nil, err
	}
	log.Debug("mesh generated",
		zap.Int("vertices", m.NumVertices()),
		zap.Int("elements", m.NumElements()),
		zap.Int("boundary_edges", len(m.Boundaries)))

	for i := 0; i < refine; i++ {
		m.Refine()
		log.Debug("mesh refined", zap.Int("round", i+1), zap.Int("elements", m.NumElements()))
	}
	m.SetGeometry(g.Spline)
	m = m.Copy()
	if err = m.Curve(curve); err != nil {
		return nil, err
	}
	log.Debug("mesh curved", zap.Int("order", curve))
	return m, nil
}

// Build runs BuildGeometry and GenerateMesh on a resolved design.
func Build(d fiber.Design, polyCore bool, refine, curve int) (*Geometry, *mesh.Mesh, error) {
	g, err := BuildGeometry(d, polyCore)
	if err != nil {
		return nil, nil, err
	}
	m, err := GenerateMesh(g, refine, curve)
	if err != nil {
		return nil, nil, err
	}
	return g, m, nil
}
