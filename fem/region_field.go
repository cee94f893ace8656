package fem

import (
	"fmt"
	"github.com/notargets/arfgeom/mesh"
	"gonum.org/v1/gonum/floats"
	"sort"
)

// RegionField is a piecewise constant coefficient, one value per material.
type RegionField struct {
	mesh   *mesh.Mesh
	values map[string]float64
	elem   []float64
}

// NewRegionField attaches per-material values to a mesh. Every material of
// the mesh must have a value; extra entries are ignored.
func NewRegionField(m *mesh.Mesh, values map[string]float64) (*RegionField, error) {
	if m == nil {
		return nil, ErrNoMesh
	}
	f := &RegionField{mesh: m, values: make(map[string]float64, len(values))}
	for _, mat := range m.GetMaterials() {
		v, ok := values[mat]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingMaterial, mat)
		}
		f.values[mat] = v
	}
	f.elem = make([]float64, m.NumElements())
	for k := range f.elem {
		f.elem[k] = f.values[m.MaterialOf(k)]
	}
	return f, nil
}

func (f *RegionField) Mesh() *mesh.Mesh { return f.mesh }

// Value returns the value on material mat and whether the mesh has it.
func (f *RegionField) Value(mat string) (v float64, ok bool) {
	v, ok = f.values[mat]
	return
}

// Values returns a copy of the per-material values.
func (f *RegionField) Values() map[string]float64 {
	out := make(map[string]float64, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// ElementValues returns the value on every element, in element order.
func (f *RegionField) ElementValues() []float64 {
	return append([]float64(nil), f.elem...)
}

// Range returns the smallest and largest element value.
func (f *RegionField) Range() (lo, hi float64) {
	if len(f.elem) == 0 {
		return 0, 0
	}
	return floats.Min(f.elem), floats.Max(f.elem)
}

// Map returns a new field holding fn of every value.
func (f *RegionField) Map(fn func(float64) float64) *RegionField {
	out := &RegionField{mesh: f.mesh, values: make(map[string]float64, len(f.values))}
	for k, v := range f.values {
		out.values[k] = fn(v)
	}
	out.elem = make([]float64, len(f.elem))
	for k, v := range f.elem {
		out.elem[k] = fn(v)
	}
	return out
}

// Integrate returns the integral of the field over the mesh.
func (f *RegionField) Integrate() (float64, error) {
	areas, err := f.mesh.Areas()
	if err != nil {
		return 0, err
	}
	return floats.Dot(areas, f.elem), nil
}

func (f *RegionField) String() string {
	mats := make([]string, 0, len(f.values))
	for k := range f.values {
		mats = append(mats, k)
	}
	sort.Strings(mats)
	s := ""
	for _, k := range mats {
		s += fmt.Sprintf("  %-14s %.12g\n", k, f.values[k])
	}
	return s
}
