package arf

import (
	"fmt"
	"github.com/notargets/arfgeom/fem"
	"github.com/notargets/arfgeom/fiber"
	"github.com/notargets/arfgeom/mesh"
	"math"
	"sort"
	"strings"
)

// RefractiveIndexField holds the optical properties of a meshed fiber.
type RefractiveIndexField struct {
	K     float64 // free space wavenumber 2π/λ, 1/m
	N0    float64 // reference index
	Scale float64 // metres per internal length unit

	// Index maps every material name to its refractive index.
	Index map[string]float64

	// N is the refractive index and V = (Scale·K)²·(N0² - N²) the scaled
	// potential, both constant on each material.
	N, V *fem.RegionField
}

// IndexMap returns the refractive index of every material of a design. The
// outer layers are applied last, in order, and override earlier entries of
// the same name.
func IndexMap(d fiber.Design) map[string]float64 {
	index := map[string]float64{
		MatCore:     d.NAir,
		MatFillAir:  d.NAir,
		MatGlass:    d.NGlass,
		MatInnerAir: d.NAir,
	}
	for _, layer := range d.OuterMaterials {
		index[layer.Material] = layer.N
	}
	return index
}

// SetMaterialProperties builds the refractive index and potential fields of
// a design over a mesh.
func SetMaterialProperties(d fiber.Design, m *mesh.Mesh) (f *RefractiveIndexField, err error) {
	if m == nil {
		return nil, ErrMissingMesh
	}
	f = &RefractiveIndexField{
		K:     d.Wavenumber(),
		N0:    d.N0,
		Scale: d.Scale,
		Index: IndexMap(d),
	}
	if f.N, err = fem.NewRegionField(m, f.Index); err != nil {
		return nil, fmt.Errorf("refractive index: %w", err)
	}
	sk2 := math.Pow(f.Scale*f.K, 2)
	f.V = f.N.Map(func(n float64) float64 { return sk2 * (f.N0*f.N0 - n*n) })
	return f, nil
}

func (f *RefractiveIndexField) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  k = %.8g 1/m, n0 = %.10g, scale = %g m\n", f.K, f.N0, f.Scale))
	mats := make([]string, 0, len(f.Index))
	for mat := range f.Index {
		mats = append(mats, mat)
	}
	sort.Strings(mats)
	for _, mat := range mats {
		v, ok := f.V.Value(mat)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-14s n = %-20.16g V = %.8g\n", mat, f.Index[mat], v))
	}
	return sb.String()
}
