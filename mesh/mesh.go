package mesh

import (
	"errors"
	"fmt"
	"github.com/notargets/arfgeom/csg"
	"github.com/notargets/arfgeom/element"
	"github.com/notargets/arfgeom/utils"
	"gonum.org/v1/gonum/spatial/r2"
	"sort"
	"strings"
)

var (
	ErrNoPoints   = errors.New("mesh: geometry produced no points")
	ErrDegenerate = errors.New("mesh: degenerate triangulation")
	ErrFormat     = errors.New("mesh: malformed mesh file")
)

// Element is a linear triangle with counter clockwise vertices.
type Element struct {
	V      [3]int
	Domain int
}

// BoundaryEdge is an element face on the outer boundary or between two
// domains. V follows the orientation of face Face of element Element.
// Curve indexes the attached spline geometry, -1 when the edge is straight.
type BoundaryEdge struct {
	V       [2]int
	Element int
	Face    int
	BC      string
	Curve   int
}

// Mesh is a triangulation with one material per domain. When CurveOrder > 1
// Nodes holds the curved Lagrange nodes of every element, in the node order
// of element.TriLagrange.
type Mesh struct {
	Vertices   []r2.Vec
	Elements   []Element
	Materials  []string
	Boundaries []BoundaryEdge
	CurveOrder int
	Nodes      [][]r2.Vec

	geometry *csg.SplineGeometry
	conn     *utils.Connectivity2D
}

func (m *Mesh) NumElements() int { return len(m.Elements) }

func (m *Mesh) NumVertices() int { return len(m.Vertices) }

// NumEdges returns the number of distinct triangle edges.
func (m *Mesh) NumEdges() int {
	return len(m.connectivity().Edges)
}

func (m *Mesh) GetMeshProperties() element.MeshProperties {
	return element.MeshProperties{
		NumElements: m.NumElements(),
		NumVertices: m.NumVertices(),
		NumEdges:    m.NumEdges(),
	}
}

// GetMaterials returns the material name of each domain.
func (m *Mesh) GetMaterials() []string {
	return append([]string(nil), m.Materials...)
}

// MaterialOf returns the material of element k.
func (m *Mesh) MaterialOf(k int) string {
	return m.Materials[m.Elements[k].Domain]
}

// Geometry returns the attached spline geometry, nil for a mesh read from a
// file that carries none.
func (m *Mesh) Geometry() *csg.SplineGeometry { return m.geometry }

func (m *Mesh) connectivity() *utils.Connectivity2D {
	if m.conn == nil {
		EToV := make([][3]int, len(m.Elements))
		for k, el := range m.Elements {
			EToV[k] = el.V
		}
		c, err := utils.BuildConnectivity2D(EToV)
		if err != nil {
			panic(err)
		}
		m.conn = c
	}
	return m.conn
}

// BoundaryNames returns the distinct boundary condition names, sorted.
func (m *Mesh) BoundaryNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, b := range m.Boundaries {
		if !seen[b.BC] {
			seen[b.BC] = true
			names = append(names, b.BC)
		}
	}
	sort.Strings(names)
	return names
}

// BoundaryEdges returns the edges carrying boundary condition bc.
func (m *Mesh) BoundaryEdges(bc string) (edges []BoundaryEdge) {
	for _, b := range m.Boundaries {
		if b.BC == bc {
			edges = append(edges, b)
		}
	}
	return
}

// BoundaryVertices returns the distinct vertices on boundary bc.
func (m *Mesh) BoundaryVertices(bc string) []int {
	seen := make(map[int]bool)
	var vs []int
	for _, b := range m.BoundaryEdges(bc) {
		for _, v := range b.V {
			if !seen[v] {
				seen[v] = true
				vs = append(vs, v)
			}
		}
	}
	sort.Ints(vs)
	return vs
}

// ElementCounts returns the number of elements per material.
func (m *Mesh) ElementCounts() map[string]int {
	counts := make(map[string]int)
	for k := range m.Elements {
		counts[m.MaterialOf(k)]++
	}
	return counts
}

// ElementNodes returns the Lagrange nodes of element k: the curved nodes
// when the mesh is curved, otherwise the three vertices.
func (m *Mesh) ElementNodes(k int) []r2.Vec {
	if m.CurveOrder > 1 && m.Nodes != nil {
		return m.Nodes[k]
	}
	el := m.Elements[k]
	return []r2.Vec{m.Vertices[el.V[0]], m.Vertices[el.V[1]], m.Vertices[el.V[2]]}
}

// Copy returns a deep copy sharing only the immutable spline geometry.
func (m *Mesh) Copy() *Mesh {
	c := &Mesh{
		Vertices:   append([]r2.Vec(nil), m.Vertices...),
		Elements:   append([]Element(nil), m.Elements...),
		Materials:  append([]string(nil), m.Materials...),
		Boundaries: append([]BoundaryEdge(nil), m.Boundaries...),
		CurveOrder: m.CurveOrder,
		geometry:   m.geometry,
	}
	if m.Nodes != nil {
		c.Nodes = make([][]r2.Vec, len(m.Nodes))
		for k, n := range m.Nodes {
			c.Nodes[k] = append([]r2.Vec(nil), n...)
		}
	}
	return c
}

// String returns a summary of the mesh
func (m *Mesh) String() string {
	var sb strings.Builder
	sb.WriteString("=== Mesh Summary ===\n")
	p := m.GetMeshProperties()
	sb.WriteString(fmt.Sprintf("  Number of elements: %d\n", p.NumElements))
	sb.WriteString(fmt.Sprintf("  Number of vertices: %d\n", p.NumVertices))
	sb.WriteString(fmt.Sprintf("  Number of edges: %d\n", p.NumEdges))
	sb.WriteString(fmt.Sprintf("  Curve order: %d\n", m.CurveOrder))
	counts := m.ElementCounts()
	sb.WriteString("\n--- Domains ---\n")
	for i, mat := range m.Materials {
		sb.WriteString(fmt.Sprintf("  %d %-14s elements: %d\n", i, mat, counts[mat]))
	}
	sb.WriteString("\n--- Boundaries ---\n")
	for _, bc := range m.BoundaryNames() {
		sb.WriteString(fmt.Sprintf("  %-36s edges: %d\n", bc, len(m.BoundaryEdges(bc))))
	}
	return sb.String()
}
