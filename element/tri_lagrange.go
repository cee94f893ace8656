package element

import (
	"fmt"
	"github.com/notargets/arfgeom/element/library/gonudg"
	"github.com/notargets/arfgeom/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"strings"
)

// EdgeVertices lists the local vertex pair of each triangle edge, in the
// order used by EdgePoints.
var EdgeVertices = [3][2]int{{0, 1}, {1, 2}, {2, 0}}

// TriLagrange is the order N Lagrange triangle with equispaced nodes. Row j
// of the node lattice has s = -1 + 2j/N and holds N+1-j nodes with r
// increasing.
type TriLagrange struct {
	props   ElementProperties
	geom    ReferenceGeometry
	nm      NodalModalMatrices
	ops     ReferenceOperators
	weights []float64
}

var _ ReferenceElement = (*TriLagrange)(nil)

func NewTriLagrange(N int) (tl *TriLagrange, err error) {
	if N < 1 {
		return nil, fmt.Errorf("triangle order must be at least 1, have %d", N)
	}
	Np := (N + 1) * (N + 2) / 2
	tl = &TriLagrange{
		props: ElementProperties{
			Name:       fmt.Sprintf("Lagrange Triangle Order %d", N),
			ShortName:  fmt.Sprintf("Tri%d", N),
			Type:       utils.Tri,
			Order:      N,
			Np:         Np,
			NEp:        N - 1,
			NVp:        3,
			NIp:        (N - 1) * (N - 2) / 2,
			NEdges:     3,
			Dimensions: D2,
		},
	}
	tl.buildNodes()

	R, S := tl.geom.R, tl.geom.S
	V := gonudg.Vandermonde2D(N, R, S)
	var Vinv mat.Dense
	if err = Vinv.Inverse(V); err != nil {
		return nil, fmt.Errorf("order %d vandermonde: %w", N, err)
	}
	// M = (V V^T)^-1 = Vinv^T Vinv
	M := new(mat.Dense)
	M.Mul(Vinv.T(), &Vinv)
	Minv := new(mat.Dense)
	Minv.Mul(V, V.T())
	Dr, Ds, err := gonudg.Dmatrices2D(N, R, S, V)
	if err != nil {
		return nil, err
	}
	tl.nm = NodalModalMatrices{V: V, Vinv: &Vinv, M: M, Minv: Minv}
	tl.ops = ReferenceOperators{Dr: Dr, Ds: Ds}

	ones := mat.NewVecDense(Np, nil)
	for i := 0; i < Np; i++ {
		ones.SetVec(i, 1)
	}
	var w mat.VecDense
	w.MulVec(M, ones)
	tl.weights = w.RawVector().Data
	return
}

func (tl *TriLagrange) index(i, j int) int {
	N := tl.props.Order
	// rows below j hold (N+1) + N + ... + (N+2-j) nodes
	return j*(N+1) - j*(j-1)/2 + i
}

func (tl *TriLagrange) buildNodes() {
	N := tl.props.Order
	g := &tl.geom
	g.R = make([]float64, 0, tl.props.Np)
	g.S = make([]float64, 0, tl.props.Np)
	for j := 0; j <= N; j++ {
		for i := 0; i <= N-j; i++ {
			g.R = append(g.R, -1+2*float64(i)/float64(N))
			g.S = append(g.S, -1+2*float64(j)/float64(N))
		}
	}
	g.VertexPoints = []int{tl.index(0, 0), tl.index(N, 0), tl.index(0, N)}
	g.EdgePoints = make([][]int, 3)
	for k := 1; k < N; k++ {
		g.EdgePoints[0] = append(g.EdgePoints[0], tl.index(k, 0))
		g.EdgePoints[1] = append(g.EdgePoints[1], tl.index(N-k, k))
		g.EdgePoints[2] = append(g.EdgePoints[2], tl.index(0, N-k))
	}
	for j := 1; j < N; j++ {
		for i := 1; i+j < N; i++ {
			g.InteriorPoints = append(g.InteriorPoints, tl.index(i, j))
		}
	}
}

func (tl *TriLagrange) GetProperties() ElementProperties { return tl.props }

func (tl *TriLagrange) GetReferenceGeometry() ReferenceGeometry { return tl.geom }

func (tl *TriLagrange) GetNodalModal() NodalModalMatrices { return tl.nm }

func (tl *TriLagrange) GetReferenceOperators() ReferenceOperators { return tl.ops }

// Weights returns the nodal quadrature weights, the row sums of the mass
// matrix. They integrate the nodal interpolant exactly over the reference
// triangle, whose area is 2.
func (tl *TriLagrange) Weights() []float64 { return tl.weights }

// Barycentric returns the barycentric coordinates of node n with respect to
// the three vertices.
func (tl *TriLagrange) Barycentric(n int) (l [3]float64) {
	r, s := tl.geom.R[n], tl.geom.S[n]
	return [3]float64{-(r + s) / 2, (1 + r) / 2, (1 + s) / 2}
}

func (tl *TriLagrange) String() string {
	var sb strings.Builder
	p := tl.props
	sb.WriteString(fmt.Sprintf("%s (%s): Np = %d, NEp = %d, NIp = %d\n",
		p.Name, p.ShortName, p.Np, p.NEp, p.NIp))
	sb.WriteString(fmt.Sprintf("  Weight sum: %.12f\n", floats.Sum(tl.weights)))
	return sb.String()
}
