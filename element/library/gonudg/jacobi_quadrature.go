package gonudg

import (
	"gonum.org/v1/gonum/mat"
	"math"
)

// JacobiGL computes the N+1 Gauss-Lobatto points for Jacobi polynomials,
// the zeros of (1-x^2)*P'_N^{alpha,beta}(x)
func JacobiGL(alpha, beta float64, N int) []float64 {
	switch N {
	case 0:
		return []float64{0.0}
	case 1:
		return []float64{-1.0, 1.0}
	}
	xint, _ := JacobiGQ(alpha+1, beta+1, N-2)
	x := make([]float64, N+1)
	x[0], x[N] = -1.0, 1.0
	copy(x[1:N], xint)
	return x
}

// JacobiGQ computes the N+1 point Gauss quadrature for the Jacobi weight
// (1-x)^alpha (1+x)^beta from the eigen decomposition of the Jacobi matrix
func JacobiGQ(alpha, beta float64, N int) (X, W []float64) {
	if N == 0 {
		return []float64{-(alpha - beta) / (alpha + beta + 2.)}, []float64{2.}
	}

	h1 := make([]float64, N+1)
	d0 := make([]float64, N+1)
	for i := range h1 {
		h1[i] = 2*float64(i) + alpha + beta
		d0[i] = (beta*beta - alpha*alpha) / (h1[i] * (h1[i] + 2.))
	}
	if alpha+beta < 1.e-15 {
		d0[0] = 0.
	}
	d1 := make([]float64, N)
	for i := range d1 {
		ip1 := float64(i + 1)
		d1[i] = 2.0 / (h1[i] + 2.0) * math.Sqrt(
			ip1*(ip1+alpha+beta)*(ip1+alpha)*(ip1+beta)/(h1[i]+1)/(h1[i]+3))
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(NewSymTriDiagonal(d0, d1), true); !ok {
		panic("eigenvalue decomposition failed")
	}
	X = eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	W = make([]float64, N+1)
	g0 := Gamma0(alpha, beta)
	for i := range W {
		v := vecs.At(0, i)
		W[i] = v * v * g0
	}
	return
}

// Gamma0 is the squared norm of P_0^{alpha,beta}
func Gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	return math.Gamma(alpha+1.) * math.Gamma(beta+1.) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

// Gamma1 is the squared norm of P_1^{alpha,beta}
func Gamma1(alpha, beta float64) float64 {
	return (alpha + 1.) * (beta + 1.) * Gamma0(alpha, beta) / (alpha + beta + 3.0)
}

// NewSymTriDiagonal returns the symmetric matrix with diagonal d0 and
// off diagonal d1
func NewSymTriDiagonal(d0, d1 []float64) *mat.SymDense {
	n := len(d0)
	T := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		T.SetSym(i, i, d0[i])
		if i < n-1 {
			T.SetSym(i, i+1, d1[i])
		}
	}
	return T
}
