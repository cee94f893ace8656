// Package arf builds the cross section, mesh and refractive index field of
// an anti-resonant hollow core fiber.
package arf

import (
	"fmt"
	"github.com/notargets/arfgeom/fiber"
	"github.com/notargets/arfgeom/internal/logging"
	"github.com/notargets/arfgeom/mesh"
	"go.uber.org/zap"
	"strings"
)

// Fiber is a fully constructed fiber: resolved design, geometry, curved mesh
// and material field. It is not modified after New returns.
type Fiber struct {
	design   fiber.Design
	geometry *Geometry
	mesh     *mesh.Mesh
	field    *RefractiveIndexField
	refine   int
	curve    int
	polyCore bool
}

type settings struct {
	refine   int
	curve    int
	polyCore bool
	polymer  bool
	opts     fiber.Options
	log      *zap.Logger
}

// Option configures New.
type Option func(*settings)

// WithRefine applies n rounds of uniform refinement before curving.
func WithRefine(n int) Option { return func(s *settings) { s.refine = n } }

// WithCurve sets the polynomial order of the curved elements, default 3.
func WithCurve(order int) Option { return func(s *settings) { s.curve = order } }

// WithE overrides the embedding parameter of the design.
func WithE(e float64) Option { return func(s *settings) { s.opts.E = &e } }

// WithPolyCore replaces the circular core with a regular polygon having one
// edge per capillary gap.
func WithPolyCore(poly bool) Option { return func(s *settings) { s.polyCore = poly } }

// WithShiftCapillaries derives the capillary positions in shifted mode.
func WithShiftCapillaries(shift bool) Option {
	return func(s *settings) { s.opts.ShiftCapillaries = shift }
}

// WithOuterMaterials replaces the default [buffer, Outer] stack.
func WithOuterMaterials(layers []fiber.OuterMaterial) Option {
	return func(s *settings) {
		s.opts.OuterMaterials = append([]fiber.OuterMaterial(nil), layers...)
	}
}

// WithPolymerCoating uses the design's polymer coating stack as the outer
// materials. It takes precedence over WithOuterMaterials.
func WithPolymerCoating(polymer bool) Option { return func(s *settings) { s.polymer = polymer } }

// WithLogger sets the logger for construction progress.
func WithLogger(log *zap.Logger) Option { return func(s *settings) { s.log = log } }

// New resolves the named design and builds its geometry, mesh and field. Any
// failure aborts construction and no Fiber is returned.
func New(name string, options ...Option) (f *Fiber, err error) {
	s := settings{curve: 3}
	for _, opt := range options {
		opt(&s)
	}
	log := s.log
	if log == nil {
		log = logging.Logger
	}
	log = log.With(zap.String("design", name))

	d, err := fiber.Resolve(name, s.opts)
	if err != nil {
		return nil, err
	}
	if s.polymer {
		s.opts.OuterMaterials = d.PolymerCoating()
		if d, err = fiber.Resolve(name, s.opts); err != nil {
			return nil, err
		}
	}
	log.Debug("design resolved",
		zap.Float64("e", d.E),
		zap.Bool("shifted", d.ShiftCapillaries),
		zap.Int("outer_layers", len(d.OuterMaterials)))

	f = &Fiber{design: d, refine: s.refine, curve: s.curve, polyCore: s.polyCore}
	if f.geometry, err = BuildGeometry(d, s.polyCore); err != nil {
		return nil, err
	}
	log.Debug("geometry built",
		zap.Int("domains", f.geometry.CSG.NumDomains()),
		zap.Int("curves", len(f.geometry.Spline.Curves)),
		zap.Float64("rout", f.geometry.Rout))

	if f.mesh, err = generateMesh(f.geometry, s.refine, s.curve, log); err != nil {
		return nil, fmt.Errorf("meshing %s: %w", name, err)
	}
	if f.field, err = SetMaterialProperties(d, f.mesh); err != nil {
		return nil, err
	}
	log.Debug("material properties set", zap.Int("materials", len(f.field.Index)))
	return f, nil
}

func (f *Fiber) Design() fiber.Design { return f.design }
func (f *Fiber) Geometry() *Geometry { return f.geometry }
func (f *Fiber) Mesh() *mesh.Mesh { return f.mesh }
func (f *Fiber) Field() *RefractiveIndexField { return f.field }
func (f *Fiber) PolyCore() bool { return f.polyCore }

// R is the inner radius of the outermost layer.
func (f *Fiber) R() float64 { return f.geometry.R }

// Rout is the radius of the truncation boundary OuterCircle.
func (f *Fiber) Rout() float64 { return f.geometry.Rout }

// Refinements is the number of uniform refinement rounds applied.
func (f *Fiber) Refinements() int { return f.refine }

// CurveOrder is the polynomial order of the mesh elements.
func (f *Fiber) CurveOrder() int { return f.curve }

// SaveMesh writes the mesh in the given format.
func (f *Fiber) SaveMesh(name string, format MeshFormat) error {
	return SaveMesh(f.mesh, name, format)
}

// Summary reports the design, geometry, mesh and field.
func (f *Fiber) Summary() string {
	var sb strings.Builder
	sb.WriteString(f.design.String())
	sb.WriteString("Geometry\n")
	sb.WriteString(f.geometry.String())
	sb.WriteString(fmt.Sprintf("Mesh (%d refinements, curve order %d)\n", f.refine, f.curve))
	sb.WriteString(f.mesh.String())
	sb.WriteString("Field\n")
	sb.WriteString(f.field.String())
	return sb.String()
}

func (f *Fiber) String() string { return f.Summary() }
