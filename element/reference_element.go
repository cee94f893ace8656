package element

import (
	"fmt"
	"github.com/notargets/arfgeom/utils"
	"gonum.org/v1/gonum/mat"
)

// Dimensionality is the topological dimension of an element.
type Dimensionality uint8

const (
	D0 Dimensionality = iota // points
	D1                       // edges
	D2                       // triangles
)

func (d Dimensionality) String() string { return fmt.Sprintf("%dD", uint8(d)) }

// ElementProperties describes one element type and order.
type ElementProperties struct {
	Name       string             // e.g. "Lagrange Triangle Order 3"
	ShortName  string             // e.g. "Tri3"
	Type       utils.GeometryType
	Order      int
	Np         int // nodes per element
	NEp        int // nodes strictly inside each edge
	NVp        int // vertex nodes
	NIp        int // nodes strictly inside the element
	NEdges     int
	Dimensions Dimensionality
}

// ReferenceGeometry is the node layout on the reference triangle with
// vertices (-1,-1), (1,-1), (-1,1).
type ReferenceGeometry struct {
	R, S []float64

	VertexPoints   []int
	EdgePoints     [][]int // per edge, ordered from the edge's first vertex
	InteriorPoints []int
}

// NodalModalMatrices map between the nodal basis and the orthonormal modal
// basis. All are Np x Np.
type NodalModalMatrices struct {
	V, Vinv mat.Matrix
	M, Minv mat.Matrix // nodal mass matrix and its inverse
}

// ReferenceOperators hold the nodal derivatives along r and s.
type ReferenceOperators struct {
	Dr, Ds mat.Matrix
}

// ReferenceElement is implemented by TriLagrange.
type ReferenceElement interface {
	GetProperties() ElementProperties
	GetReferenceGeometry() ReferenceGeometry
	GetNodalModal() NodalModalMatrices
	GetReferenceOperators() ReferenceOperators
}
