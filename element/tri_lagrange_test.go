package element

import (
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"math"
	"testing"
)

func TestTriLagrangeNodes(t *testing.T) {
	for N := 1; N <= 5; N++ {
		t.Run(fmt.Sprintf("N=%d", N), func(t *testing.T) {
			tl, err := NewTriLagrange(N)
			require.NoError(t, err)
			p := tl.GetProperties()
			g := tl.GetReferenceGeometry()
			assert.Equal(t, (N+1)*(N+2)/2, p.Np)
			assert.Len(t, g.R, p.Np)

			// every node is classified exactly once
			count := make(map[int]int)
			for _, v := range g.VertexPoints {
				count[v]++
			}
			for _, e := range g.EdgePoints {
				assert.Len(t, e, p.NEp)
				for _, v := range e {
					count[v]++
				}
			}
			for _, v := range g.InteriorPoints {
				count[v]++
			}
			assert.Len(t, g.InteriorPoints, p.NIp)
			assert.Len(t, count, p.Np)
			for n, c := range count {
				assert.Equalf(t, 1, c, "node %d", n)
			}

			verts := [][2]float64{{-1, -1}, {1, -1}, {-1, 1}}
			for i, v := range g.VertexPoints {
				assert.Equal(t, verts[i][0], g.R[v])
				assert.Equal(t, verts[i][1], g.S[v])
			}
			// edge nodes march from the first vertex to the second
			for e, pts := range g.EdgePoints {
				a, b := EdgeVertices[e][0], EdgeVertices[e][1]
				for k, n := range pts {
					l := tl.Barycentric(n)
					assert.InDelta(t, float64(k+1)/float64(N), l[b], 1.e-14)
					assert.InDelta(t, 1-float64(k+1)/float64(N), l[a], 1.e-14)
				}
			}
		})
	}
}

func TestTriLagrangeOperators(t *testing.T) {
	N := 4
	tl, err := NewTriLagrange(N)
	require.NoError(t, err)
	g := tl.GetReferenceGeometry()
	ops := tl.GetReferenceOperators()

	assert.InDelta(t, 2, floats.Sum(tl.Weights()), 1.e-12)

	// d/dr and d/ds of r^2 s + s^3 are exact at order 4
	Np := len(g.R)
	u := mat.NewVecDense(Np, nil)
	ur := make([]float64, Np)
	us := make([]float64, Np)
	for i := 0; i < Np; i++ {
		r, s := g.R[i], g.S[i]
		u.SetVec(i, r*r*s+s*s*s)
		ur[i] = 2 * r * s
		us[i] = r*r + 3*s*s
	}
	var dr, ds mat.VecDense
	dr.MulVec(ops.Dr, u)
	ds.MulVec(ops.Ds, u)
	assert.InDeltaSlicef(t, ur, dr.RawVector().Data, 1.e-10, "")
	assert.InDeltaSlicef(t, us, ds.RawVector().Data, 1.e-10, "")

	// integral of r over the reference triangle is -2/3
	var sum float64
	for i, w := range tl.Weights() {
		sum += w * g.R[i]
	}
	assert.InDelta(t, -2./3, sum, 1.e-12)
}

func TestGeometricTransform(t *testing.T) {
	tl, err := NewTriLagrange(3)
	require.NoError(t, err)
	g := tl.GetReferenceGeometry()
	Np := len(g.R)

	// element 0: affine image of (0,0),(2,0),(0,1); element 1: a quarter
	// disk sector with its arc node positions on the unit circle
	X := mat.NewDense(Np, 2, nil)
	Y := mat.NewDense(Np, 2, nil)
	for i := 0; i < Np; i++ {
		l := tl.Barycentric(i)
		X.Set(i, 0, 2*l[1])
		Y.Set(i, 0, l[2])
		// vertices (0,0), (1,0), (0,1); blend the arc on edge 1
		x, y := l[1], l[2]
		if s := l[1] + l[2]; s > 0 {
			th := math.Pi / 2 * l[2] / s
			dx, dy := math.Cos(th)-l[1]/s, math.Sin(th)-l[2]/s
			x += s * s * dx
			y += s * s * dy
		}
		X.Set(i, 1, x)
		Y.Set(i, 1, y)
	}
	gt, err := NewGeometricTransform(tl, X, Y)
	require.NoError(t, err)
	assert.True(t, gt.IsAffine[0])
	assert.False(t, gt.IsAffine[1])
	areas := gt.Areas(tl)
	assert.InDelta(t, 1, areas[0], 1.e-12)
	assert.InDelta(t, math.Pi/4, areas[1], 2.e-3)
	assert.Greater(t, areas[1], .5)
}
