package element

import (
	"fmt"
	"gonum.org/v1/gonum/mat"
	"math"
)

// GeometricTransform maps the reference triangle to physical space for every
// element of a mesh. All data is stored column-major by element.
type GeometricTransform struct {
	// Components of the inverse Jacobian matrix (∂ξ/∂x terms)
	// Dimension: [Np × K] where column k holds element k
	Rx, Ry mat.Matrix // ∂r/∂x, ∂r/∂y
	Sx, Sy mat.Matrix // ∂s/∂x, ∂s/∂y

	// Jacobian determinant |∂(x,y)/∂(r,s)|, [Np × K]
	// Used for integration: ∫_Ω f dA = ∫_Ω̂ f |J| dr ds
	J mat.Matrix

	// IsAffine[k] is true when element k has constant metric terms
	IsAffine []bool
}

// MeshProperties summarizes the size of a mesh
type MeshProperties struct {
	NumElements int
	NumVertices int
	NumEdges    int
}

// NewGeometricTransform computes metric terms from nodal coordinates X, Y,
// each [Np × K]. A non-positive Jacobian is reported as an error naming the
// first inverted element.
func NewGeometricTransform(el *TriLagrange, X, Y *mat.Dense) (gt GeometricTransform, err error) {
	Np, K := X.Dims()
	ops := el.GetReferenceOperators()
	var xr, xs, yr, ys mat.Dense
	xr.Mul(ops.Dr, X)
	xs.Mul(ops.Ds, X)
	yr.Mul(ops.Dr, Y)
	ys.Mul(ops.Ds, Y)

	J := mat.NewDense(Np, K, nil)
	Rx := mat.NewDense(Np, K, nil)
	Ry := mat.NewDense(Np, K, nil)
	Sx := mat.NewDense(Np, K, nil)
	Sy := mat.NewDense(Np, K, nil)
	gt.IsAffine = make([]bool, K)
	for k := 0; k < K; k++ {
		jmin, jmax := math.Inf(1), math.Inf(-1)
		for i := 0; i < Np; i++ {
			j := xr.At(i, k)*ys.At(i, k) - xs.At(i, k)*yr.At(i, k)
			if j <= 0 && err == nil {
				err = fmt.Errorf("element %d has non-positive jacobian %g at node %d", k, j, i)
			}
			J.Set(i, k, j)
			Rx.Set(i, k, ys.At(i, k)/j)
			Ry.Set(i, k, -xs.At(i, k)/j)
			Sx.Set(i, k, -yr.At(i, k)/j)
			Sy.Set(i, k, xr.At(i, k)/j)
			jmin, jmax = math.Min(jmin, j), math.Max(jmax, j)
		}
		gt.IsAffine[k] = jmax-jmin <= 1.e-12*math.Abs(jmax)
	}
	gt.J, gt.Rx, gt.Ry, gt.Sx, gt.Sy = J, Rx, Ry, Sx, Sy
	return
}

// Integrate returns the integral of the nodal field F [Np × K] over each
// element.
func (gt GeometricTransform) Integrate(el *TriLagrange, F mat.Matrix) []float64 {
	Np, K := gt.J.Dims()
	w := el.Weights()
	out := make([]float64, K)
	for k := 0; k < K; k++ {
		for i := 0; i < Np; i++ {
			out[k] += w[i] * gt.J.At(i, k) * F.At(i, k)
		}
	}
	return out
}

// Areas returns the area of each element.
func (gt GeometricTransform) Areas(el *TriLagrange) []float64 {
	Np, K := gt.J.Dims()
	ones := mat.NewDense(Np, K, nil)
	for i := 0; i < Np; i++ {
		for k := 0; k < K; k++ {
			ones.Set(i, k, 1)
		}
	}
	return gt.Integrate(el, ones)
}
