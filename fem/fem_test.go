package fem

import (
	"bytes"
	"github.com/notargets/arfgeom/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
	"math"
	"testing"
)

// unitSquare is two triangles split along the 1-2 diagonal, one material
// each, with every hull edge on OuterCircle.
//
//	2---3
//	| \ |
//	0---1
func unitSquare() *mesh.Mesh {
	return &mesh.Mesh{
		Vertices:  []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}},
		Elements:  []mesh.Element{{V: [3]int{0, 1, 2}, Domain: 0}, {V: [3]int{1, 3, 2}, Domain: 1}},
		Materials: []string{"core", "glass"},
		Boundaries: []mesh.BoundaryEdge{
			{V: [2]int{0, 1}, Element: 0, Face: 0, BC: "OuterCircle", Curve: -1},
			{V: [2]int{2, 0}, Element: 0, Face: 2, BC: "OuterCircle", Curve: -1},
			{V: [2]int{1, 3}, Element: 1, Face: 0, BC: "OuterCircle", Curve: -1},
			{V: [2]int{3, 2}, Element: 1, Face: 1, BC: "OuterCircle", Curve: -1},
			{V: [2]int{1, 2}, Element: 0, Face: 1, BC: "core_glass_interface", Curve: -1},
		},
		CurveOrder: 1,
	}
}

func TestNDof(t *testing.T) {
	m := unitSquare()
	dirichlet := []string{"OuterCircle"}
	for _, tc := range []struct {
		order, ndof, nfree int
	}{
		{1, 4, 0},
		{2, 9, 1},
		{3, 16, 4},
	} {
		s, err := NewH1(m, tc.order, dirichlet, true)
		require.NoError(t, err)
		assert.Equal(t, tc.ndof, s.NDof(), "H1 order %d", tc.order)
		assert.Equal(t, tc.nfree, s.NFree(), "H1 order %d", tc.order)
	}
	for _, tc := range []struct {
		order, ndof, nfree int
	}{
		{0, 5, 1},
		{1, 14, 6},
		{2, 27, 15},
	} {
		s, err := NewHCurl(m, tc.order, dirichlet, true, true)
		require.NoError(t, err)
		assert.Equal(t, tc.ndof, s.NDof(), "HCurl order %d", tc.order)
		assert.Equal(t, tc.nfree, s.NFree(), "HCurl order %d", tc.order)
		// first kind order p has (p+1)(p+3) unknowns per isolated triangle
		assert.Equal(t, 3*(tc.order+1)+tc.order*(tc.order+1), (tc.order+1)*(tc.order+3))
	}
	s, err := NewHCurl(m, 1, nil, false, false)
	require.NoError(t, err)
	assert.Equal(t, 10, s.NDof())
	assert.Equal(t, s.NDof(), s.NFree())
	assert.Contains(t, s.String(), "HCurl order 1, real")

	_, err = NewH1(m, 0, nil, false)
	assert.ErrorIs(t, err, ErrBadOrder)
	_, err = NewHCurl(m, -1, nil, false, true)
	assert.ErrorIs(t, err, ErrBadOrder)
	_, err = NewH1(nil, 1, nil, false)
	assert.ErrorIs(t, err, ErrNoMesh)
}

func TestNFreeSharedBoundaries(t *testing.T) {
	m := unitSquare()
	// the interface shares vertices 1 and 2 with OuterCircle
	both := []string{"OuterCircle", "core_glass_interface"}
	for _, tc := range []struct {
		order, nfree int
	}{
		{1, 0},
		{2, 0},
		{3, 2},
	} {
		s, err := NewH1(m, tc.order, both, true)
		require.NoError(t, err)
		assert.Equal(t, tc.nfree, s.NFree(), "H1 order %d", tc.order)
	}
	s, err := NewHCurl(m, 1, both, true, true)
	require.NoError(t, err)
	assert.Equal(t, 4, s.NFree())

	// a repeated name counts once
	s, err = NewH1(m, 2, []string{"OuterCircle", "OuterCircle"}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, s.NFree())
}

func TestRegionField(t *testing.T) {
	m := unitSquare()
	f, err := NewRegionField(m, map[string]float64{"core": 1, "glass": 1.44, "unused": 7})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1.44}, f.ElementValues())
	lo, hi := f.Range()
	assert.Equal(t, 1., lo)
	assert.Equal(t, 1.44, hi)
	_, ok := f.Value("unused")
	assert.False(t, ok)
	assert.Len(t, f.Values(), 2)

	sq := f.Map(func(n float64) float64 { return n * n })
	assert.InDeltaSlicef(t, []float64{1, 1.44 * 1.44}, sq.ElementValues(), 1.e-15, "squared")
	v, _ := sq.Value("glass")
	assert.InDelta(t, 1.44*1.44, v, 1.e-15)
	// the source is untouched
	assert.Equal(t, []float64{1, 1.44}, f.ElementValues())

	total, err := f.Integrate()
	require.NoError(t, err)
	assert.InDelta(t, .5*1+.5*1.44, total, 1.e-12)

	_, err = NewRegionField(m, map[string]float64{"core": 1})
	assert.ErrorIs(t, err, ErrMissingMaterial)
}

func TestModeSet(t *testing.T) {
	m := unitSquare()
	s, err := NewH1(m, 2, []string{"OuterCircle"}, true)
	require.NoError(t, err)

	a := mat.NewCDense(s.NDof(), 3, nil)
	for i := 0; i < s.NDof(); i++ {
		for j := 0; j < 3; j++ {
			a.Set(i, j, complex(float64(i), float64(j)))
		}
	}
	ms, err := ModesFromArray(s, a)
	require.NoError(t, err)
	assert.Equal(t, 3, ms.NumModes())
	assert.Equal(t, complex(4, 2), ms.Mode(2)[4])
	assert.True(t, mat.CEqual(a, ms.ToArray()))

	// ToArray is a copy
	out := ms.ToArray()
	out.Set(0, 0, 99)
	assert.Equal(t, complex(0, 0), ms.Mode(0)[0])

	require.NoError(t, ms.SetMode(1, make([]complex128, s.NDof())))
	assert.Equal(t, complex(0, 0), ms.Mode(1)[5])
	assert.ErrorIs(t, ms.SetMode(1, make([]complex128, 2)), ErrArrayLengthMismatch)
}

func TestModeSetMismatch(t *testing.T) {
	m := unitSquare()
	s, err := NewHCurl(m, 1, []string{"OuterCircle"}, true, true)
	require.NoError(t, err)

	ms, err := ModesFromArray(s, mat.NewCDense(s.NDof()+1, 2, nil))
	assert.ErrorIs(t, err, ErrArrayLengthMismatch)
	assert.Nil(t, ms)
	assert.Contains(t, err.Error(), "polynomial degree")

	ms, err = NewModeSet(s, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, ms.FromArray(mat.NewCDense(s.NDof(), 3, nil)), ErrArrayLengthMismatch)

	_, err = NewModeSet(s, 0)
	assert.Error(t, err)
}

func TestArrayRoundTrip(t *testing.T) {
	a := mat.NewCDense(5, 2, nil)
	for i := 0; i < 5; i++ {
		a.Set(i, 0, complex(math.Sqrt(float64(i)), -float64(i)))
		a.Set(i, 1, complex(1/float64(i+1), math.Pi))
	}
	var buf bytes.Buffer
	require.NoError(t, WriteArray(&buf, a))
	b, err := ReadArray(&buf)
	require.NoError(t, err)
	assert.True(t, mat.CEqual(a, b))

	_, err = ReadArray(bytes.NewReader([]byte("short")))
	assert.Error(t, err)
}
