package fem

import (
	"errors"
	"fmt"
	"github.com/notargets/arfgeom/mesh"
	"github.com/notargets/arfgeom/utils"
	"strings"
)

var (
	// ErrArrayLengthMismatch is returned when an array does not have one row
	// per degree of freedom of the space it is loaded into.
	ErrArrayLengthMismatch = errors.New("fem: array length does not match the space")
	ErrBadOrder            = errors.New("fem: invalid polynomial order")
	ErrMissingMaterial     = errors.New("fem: material has no value")
	ErrNoMesh              = errors.New("fem: space needs a mesh")
)

type SpaceKind uint8

const (
	H1 SpaceKind = iota
	HCurl
)

func (k SpaceKind) String() string {
	switch k {
	case H1:
		return "H1"
	case HCurl:
		return "HCurl"
	}
	return fmt.Sprintf("SpaceKind(%d)", uint8(k))
}

// Space is a finite element space over a mesh, described by its degree of
// freedom layout: which mesh entities carry how many unknowns.
type Space struct {
	kind      SpaceKind
	mesh      *mesh.Mesh
	order     int
	dirichlet []string
	complex   bool
	type1     bool

	ndof, nfree int
}

// NewH1 returns the continuous Lagrange space of the given order. Vertices
// carry one unknown, edges order-1 and triangles (order-1)(order-2)/2.
func NewH1(m *mesh.Mesh, order int, dirichlet []string, complex bool) (*Space, error) {
	if m == nil {
		return nil, ErrNoMesh
	}
	if order < 1 {
		return nil, fmt.Errorf("%w: H1 order %d", ErrBadOrder, order)
	}
	s := &Space{kind: H1, mesh: m, order: order, dirichlet: dirichlet, complex: complex}
	s.count()
	return s, nil
}

// NewHCurl returns the tangentially continuous Nedelec space of the given
// order. With type1 the first kind space is used: order+1 unknowns per edge
// and order(order+1) per triangle. Otherwise the space holds the complete
// vector polynomials of the given order, with (order+1)(order-1) unknowns
// per triangle; order 0 is the Whitney space in both cases.
func NewHCurl(m *mesh.Mesh, order int, dirichlet []string, complex, type1 bool) (*Space, error) {
	if m == nil {
		return nil, ErrNoMesh
	}
	if order < 0 {
		return nil, fmt.Errorf("%w: HCurl order %d", ErrBadOrder, order)
	}
	s := &Space{kind: HCurl, mesh: m, order: order, dirichlet: dirichlet, complex: complex, type1: type1}
	s.count()
	return s, nil
}

func (s *Space) perEntity() (vertex, edge, cell int) {
	p := s.order
	switch s.kind {
	case H1:
		return 1, p - 1, (p - 1) * (p - 2) / 2
	default:
		if s.type1 {
			return 0, p + 1, p * (p + 1)
		}
		if p == 0 {
			return 0, 1, 0
		}
		return 0, p + 1, (p + 1) * (p - 1)
	}
}

func (s *Space) count() {
	pv, pe, pc := s.perEntity()
	nv, ne, nt := s.mesh.NumVertices(), s.mesh.NumEdges(), s.mesh.NumElements()
	s.ndof = pv*nv + pe*ne + pc*nt

	// boundaries may share vertices, and a name may be listed twice
	bverts := make(map[int]bool)
	bedges := make(map[utils.EdgeKey]bool)
	for _, bc := range s.dirichlet {
		for _, v := range s.mesh.BoundaryVertices(bc) {
			bverts[v] = true
		}
		for _, b := range s.mesh.BoundaryEdges(bc) {
			bedges[utils.NewEdgeKey(b.V[0], b.V[1])] = true
		}
	}
	s.nfree = s.ndof - pv*len(bverts) - pe*len(bedges)
}

func (s *Space) Kind() SpaceKind { return s.kind }

func (s *Space) Mesh() *mesh.Mesh { return s.mesh }

func (s *Space) Order() int { return s.order }

func (s *Space) IsComplex() bool { return s.complex }

// Dirichlet returns the boundary names on which the space vanishes.
func (s *Space) Dirichlet() []string { return append([]string(nil), s.dirichlet...) }

// NDof returns the number of degrees of freedom, boundary ones included.
func (s *Space) NDof() int { return s.ndof }

// NFree returns the number of degrees of freedom off the Dirichlet
// boundaries.
func (s *Space) NFree() int { return s.nfree }

func (s *Space) String() string {
	var sb strings.Builder
	name := s.kind.String()
	if s.kind == HCurl && s.type1 {
		name += " (first kind)"
	}
	field := "real"
	if s.complex {
		field = "complex"
	}
	sb.WriteString(fmt.Sprintf("%s order %d, %s, ndof = %d, free = %d", name, s.order, field, s.ndof, s.nfree))
	if len(s.dirichlet) > 0 {
		sb.WriteString(fmt.Sprintf(", dirichlet = %s", strings.Join(s.dirichlet, "|")))
	}
	return sb.String()
}
