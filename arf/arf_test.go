package arf

import (
	"errors"
	"github.com/notargets/arfgeom/fem"
	"github.com/notargets/arfgeom/fiber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
	"math"
	"path/filepath"
	"sync"
	"testing"
)

const (
	nAir   = 1.00027717
	nGlass = 1.4388164768221814
)

var (
	polettiOnce  sync.Once
	polettiFiber *Fiber
	polettiErr   error
)

// poletti builds the default poletti fiber once for the package tests.
func poletti(t *testing.T) *Fiber {
	t.Helper()
	polettiOnce.Do(func() {
		polettiFiber, polettiErr = New("poletti", WithLogger(zap.NewNop()))
	})
	require.NoError(t, polettiErr)
	return polettiFiber
}

func resolve(t *testing.T, name string) fiber.Design {
	t.Helper()
	d, err := fiber.Resolve(name, fiber.Options{})
	require.NoError(t, err)
	return d
}

func TestCorePolygon(t *testing.T) {
	d := resolve(t, "poletti")
	d.NTubes = 2
	_, err := BuildGeometry(d, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCoreShape))

	d = resolve(t, "poletti")
	g, err := BuildGeometry(d, true)
	require.NoError(t, err)
	require.Len(t, g.CorePoints, 6)
	for i, a := range g.CorePoints {
		b := g.CorePoints[(i+1)%len(g.CorePoints)]
		mid := math.Hypot((a.X+b.X)/2, (a.Y+b.Y)/2)
		assert.InDeltaf(t, d.RCore, mid, 1.e-12, "apothem of edge %d", i)
		// counter clockwise
		assert.Greater(t, a.X*b.Y-a.Y*b.X, 0.)
	}
}

func TestBoundaryNames(t *testing.T) {
	d := resolve(t, "poletti")
	assert.Equal(t, "buffer_Outer_interface", InterfaceName(d.OuterMaterials, 0))
	assert.Equal(t, BCOuterCircle, InterfaceName(d.OuterMaterials, 1))

	g, err := BuildGeometry(d, false)
	require.NoError(t, err)
	names := g.Spline.BoundaryNames()
	for _, bc := range []string{BCCore, BCGlassAir, BCCladding, "buffer_Outer_interface", BCOuterCircle} {
		assert.Contains(t, names, bc)
	}
	assert.NotContains(t, names, "Outer")
	assert.Equal(t, []string{MatCore, MatFillAir, MatGlass, MatInnerAir, "buffer", "Outer"},
		g.CSG.Materials())
	assert.InDelta(t, d.RCladding+d.TCladding+d.TotalOuterThickness(), g.Rout, 1.e-12)
	assert.InDelta(t, g.Rout-d.OuterMaterials[1].T, g.R, 1.e-12)
}

func TestPolymerGeometry(t *testing.T) {
	d := resolve(t, "basic")
	d, err := fiber.Resolve("basic", fiber.Options{OuterMaterials: d.PolymerCoating()})
	require.NoError(t, err)
	g, err := BuildGeometry(d, false)
	require.NoError(t, err)
	names := g.Spline.BoundaryNames()
	assert.Contains(t, names, "soft_polymer_hard_polymer_interface")
	assert.Contains(t, names, "hard_polymer_buffer_interface")
	assert.Contains(t, names, "buffer_Outer_interface")
	assert.Contains(t, names, BCOuterCircle)
}

func TestIndexMap(t *testing.T) {
	index := IndexMap(resolve(t, "poletti"))
	for _, mat := range []string{MatCore, MatFillAir, MatInnerAir, "buffer", "Outer"} {
		assert.Equalf(t, nAir, index[mat], "material %s", mat)
	}
	assert.Equal(t, nGlass, index[MatGlass])

	_, err := SetMaterialProperties(resolve(t, "poletti"), nil)
	assert.True(t, errors.Is(err, ErrMissingMesh))
}

func TestGenerateMeshArguments(t *testing.T) {
	g, err := BuildGeometry(resolve(t, "poletti"), false)
	require.NoError(t, err)
	_, err = GenerateMesh(g, -1, 3)
	assert.Error(t, err)
	_, err = GenerateMesh(g, 0, 0)
	assert.Error(t, err)
}

func TestNewUnknownDesign(t *testing.T) {
	f, err := New("hexagonal", WithLogger(zap.NewNop()))
	assert.Nil(t, f)
	assert.True(t, errors.Is(err, fiber.ErrUnknownDesign))

	f, err = New("poletti", WithE(1), WithLogger(zap.NewNop()))
	assert.Nil(t, f)
	assert.True(t, errors.Is(err, fiber.ErrGeometryInfeasible))
}

func TestFiber(t *testing.T) {
	f := poletti(t)
	m := f.Mesh()
	assert.Equal(t, 3, m.CurveOrder)
	assert.Equal(t, 0, f.Refinements())
	assert.Greater(t, m.NumElements(), 0)
	assert.Equal(t, []string{MatCore, MatFillAir, MatGlass, MatInnerAir, "buffer", "Outer"}, m.GetMaterials())
	for _, bc := range []string{BCCore, BCGlassAir, BCCladding, "buffer_Outer_interface", BCOuterCircle} {
		assert.NotEmptyf(t, m.BoundaryEdges(bc), "boundary %s", bc)
	}

	t.Run("potential", func(t *testing.T) {
		field := f.Field()
		assert.Equal(t, nAir, field.N0)
		assert.InDelta(t, 2*math.Pi/1.8e-6, field.K, 1.e-6)
		V := field.V.ElementValues()
		N := field.N.ElementValues()
		require.Len(t, V, m.NumElements())
		for k := range V {
			switch m.MaterialOf(k) {
			case MatCore, MatFillAir, MatInnerAir:
				assert.Equal(t, 0., V[k])
				assert.Equal(t, nAir, N[k])
			case MatGlass:
				assert.Less(t, V[k], 0.)
				assert.Equal(t, nGlass, N[k])
			}
		}
	})

	t.Run("area", func(t *testing.T) {
		area, err := m.Areas()
		require.NoError(t, err)
		var total float64
		for _, a := range area {
			assert.Greater(t, a, 0.)
			total += a
		}
		assert.InEpsilon(t, math.Pi*f.Rout()*f.Rout(), total, 1.e-4)
	})

	t.Run("summary", func(t *testing.T) {
		s := f.Summary()
		assert.Contains(t, s, "Design poletti")
		assert.Contains(t, s, BCOuterCircle)
		assert.Contains(t, s, "curve order 3")
	})
}

func TestMeshConformity(t *testing.T) {
	for _, tc := range []struct {
		name   string
		design string
		opts   []Option
	}{
		{"poletti", "poletti", nil},
		{"basic", "basic", []Option{WithCurve(1)}},
		{"fine cladding", "fine_cladding", []Option{WithCurve(1)}},
		{"poly core", "poletti", []Option{WithPolyCore(true), WithCurve(1)}},
		{"refined", "poletti", []Option{WithRefine(1), WithCurve(1)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := poletti(t)
			if tc.opts != nil {
				var err error
				f, err = New(tc.design, append(tc.opts, WithLogger(zap.NewNop()))...)
				require.NoError(t, err)
			}
			m, g := f.Mesh(), f.Geometry().CSG
			var straddling int
			for k, el := range m.Elements {
				a, b, c := m.Vertices[el.V[0]], m.Vertices[el.V[1]], m.Vertices[el.V[2]]
				for _, l := range [][3]float64{{.6, .2, .2}, {.2, .6, .2}, {.2, .2, .6}} {
					p := r2.Add(r2.Scale(l[0], a), r2.Add(r2.Scale(l[1], b), r2.Scale(l[2], c)))
					if g.DomainAt(p) != el.Domain {
						straddling++
						t.Logf("element %d (%s) reaches %v", k, m.MaterialOf(k), p)
						break
					}
				}
			}
			assert.Zero(t, straddling, "elements crossing a material interface")
			for _, b := range m.Boundaries {
				assert.GreaterOrEqualf(t, b.Curve, 0, "boundary edge %v (%s) has no curve", b.V, b.BC)
			}
		})
	}
}

func TestSaveLoadMesh(t *testing.T) {
	f := poletti(t)
	name := filepath.Join(t.TempDir(), "poletti")

	require.NoError(t, f.SaveMesh(name, FormatBinary))
	m, err := LoadMesh(name, FormatBinary)
	require.NoError(t, err)
	assert.Equal(t, f.Mesh().NumElements(), m.NumElements())
	assert.Equal(t, f.Mesh().CurveOrder, m.CurveOrder)
	for k := range m.Elements {
		require.Equal(t, f.Mesh().MaterialOf(k), m.MaterialOf(k))
	}

	require.NoError(t, f.SaveMesh(name, FormatNeutral))
	m, err = LoadMesh(name, FormatNeutral)
	require.NoError(t, err)
	assert.Equal(t, f.Mesh().NumElements(), m.NumElements())
	assert.Equal(t, 1, m.CurveOrder)
	assert.ElementsMatch(t, f.Mesh().BoundaryNames(), m.BoundaryNames())

	assert.True(t, errors.Is(SaveMesh(nil, name, FormatBinary), ErrMissingMesh))
}

func TestModeOrders(t *testing.T) {
	for p, want := range []int{0, 2, 3, 4} {
		assert.Equalf(t, want, EModeOrder(p), "p = %d", p)
		assert.Equal(t, p+1, PhiModeOrder(p))
	}
}

func TestModesFromArray(t *testing.T) {
	f := poletti(t)
	m := f.Mesh()
	space, err := fem.NewHCurl(m, EModeOrder(1), []string{BCOuterCircle}, true, true)
	require.NoError(t, err)

	t.Run("mismatch", func(t *testing.T) {
		a := mat.NewCDense(space.NDof()+1, 2, nil)
		modes, err := EModesFromArray(a, 1, m)
		assert.Nil(t, modes)
		require.Error(t, err)
		assert.True(t, errors.Is(err, fem.ErrArrayLengthMismatch))
		assert.Contains(t, err.Error(), "polynomial degree")

		// the same array against the wrong degree also fails
		a = mat.NewCDense(space.NDof(), 2, nil)
		modes, err = EModesFromArray(a, 2, m)
		assert.Nil(t, modes)
		assert.True(t, errors.Is(err, fem.ErrArrayLengthMismatch))
	})

	t.Run("round trip", func(t *testing.T) {
		dir := t.TempDir()
		meshName := filepath.Join(dir, "poletti")
		modeName := filepath.Join(dir, "E")
		require.NoError(t, f.SaveMesh(meshName, FormatBinary))

		a := mat.NewCDense(space.NDof(), 2, nil)
		for i := 0; i < space.NDof(); i++ {
			a.Set(i, 0, complex(float64(i), 0))
			a.Set(i, 1, complex(0, -float64(i)))
		}
		modes, err := EModesFromArray(a, 1, m)
		require.NoError(t, err)
		require.NoError(t, SaveModes(modes, modeName))

		m2, loaded, err := LoadEModes(meshName, modeName, 1, FormatBinary)
		require.NoError(t, err)
		assert.Equal(t, m.NumElements(), m2.NumElements())
		require.Equal(t, 2, loaded.NumModes())
		assert.True(t, mat.CEqual(a, loaded.ToArray()))

		_, _, err = LoadPhiModes(meshName, modeName, 1, FormatBinary)
		assert.True(t, errors.Is(err, fem.ErrArrayLengthMismatch))
	})

	t.Run("phi", func(t *testing.T) {
		h1, err := fem.NewH1(m, PhiModeOrder(2), []string{BCOuterCircle}, true)
		require.NoError(t, err)
		modes, err := PhiModesFromArray(mat.NewCDense(h1.NDof(), 1, nil), 2, m)
		require.NoError(t, err)
		assert.Equal(t, h1.NDof(), modes.Space().NDof())
		assert.Less(t, modes.Space().NFree(), modes.Space().NDof())
	})
}
