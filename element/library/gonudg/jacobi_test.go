package gonudg

import (
	"fmt"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"math"
	"testing"
)

func TestJacobiGQ(t *testing.T) {
	x, w := JacobiGQ(0, 0, 4)
	assert.InDelta(t, 2, floats.Sum(w), 1.e-13)
	// five points integrate x^8 exactly
	var sum float64
	for i := range x {
		sum += w[i] * math.Pow(x[i], 8)
	}
	assert.InDelta(t, 2./9, sum, 1.e-13)

	gl := JacobiGL(0, 0, 3)
	assert.Equal(t, -1., gl[0])
	assert.Equal(t, 1., gl[3])
	assert.InDelta(t, -1/math.Sqrt(5), gl[1], 1.e-13)
}

func TestJacobiPOrthonormal(t *testing.T) {
	x, w := JacobiGQ(0, 0, 8)
	for _, ab := range [][2]float64{{0, 0}, {1, 0}, {3, 0}} {
		alpha, beta := ab[0], ab[1]
		for m := 0; m <= 5; m++ {
			for n := 0; n <= 5; n++ {
				pm := JacobiP(x, alpha, beta, m)
				pn := JacobiP(x, alpha, beta, n)
				var sum float64
				for i := range x {
					sum += w[i] * math.Pow(1-x[i], alpha) * math.Pow(1+x[i], beta) * pm[i] * pn[i]
				}
				want := 0.
				if m == n {
					want = 1
				}
				assert.InDeltaf(t, want, sum, 1.e-12, "alpha=%g m=%d n=%d", alpha, m, n)
			}
		}
	}
}

func TestGradJacobiP(t *testing.T) {
	x := []float64{-.9, -.3, .2, .7}
	h := 1.e-6
	for n := 1; n <= 5; n++ {
		dp := GradJacobiP(x, 1, 0, n)
		for i, xi := range x {
			fd := (JacobiPSingle(xi+h, 1, 0, n) - JacobiPSingle(xi-h, 1, 0, n)) / (2 * h)
			assert.InDelta(t, fd, dp[i], 1.e-6)
		}
	}
}

func TestVandermonde2DInterpolation(t *testing.T) {
	for N := 1; N <= 5; N++ {
		t.Run(fmt.Sprintf("N=%d", N), func(t *testing.T) {
			var R, S []float64
			for j := 0; j <= N; j++ {
				for i := 0; i <= N-j; i++ {
					R = append(R, -1+2*float64(i)/float64(N))
					S = append(S, -1+2*float64(j)/float64(N))
				}
			}
			V := Vandermonde2D(N, R, S)
			Dr, Ds, err := Dmatrices2D(N, R, S, V)
			assert.NoError(t, err)
			// every monomial r^a s^b with a+b <= N differentiates exactly
			for a := 0; a <= N; a++ {
				for b := 0; a+b <= N; b++ {
					u := make([]float64, len(R))
					ur := make([]float64, len(R))
					us := make([]float64, len(R))
					for i := range R {
						u[i] = math.Pow(R[i], float64(a)) * math.Pow(S[i], float64(b))
						if a > 0 {
							ur[i] = float64(a) * math.Pow(R[i], float64(a-1)) * math.Pow(S[i], float64(b))
						}
						if b > 0 {
							us[i] = float64(b) * math.Pow(R[i], float64(a)) * math.Pow(S[i], float64(b-1))
						}
					}
					var dr, ds mat.VecDense
					dr.MulVec(Dr, mat.NewVecDense(len(u), u))
					ds.MulVec(Ds, mat.NewVecDense(len(u), u))
					assert.InDeltaSlicef(t, ur, dr.RawVector().Data, 1.e-9, "d/dr r^%d s^%d", a, b)
					assert.InDeltaSlicef(t, us, ds.RawVector().Data, 1.e-9, "d/ds r^%d s^%d", a, b)
				}
			}
		})
	}
}
