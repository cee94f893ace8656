package mesh

import (
	"bufio"
	"fmt"
	"gonum.org/v1/gonum/spatial/r2"
	"io"
	"os"
	"strconv"
	"strings"
)

// Gambit neutral file constants
const (
	neutralVersion = "2.4.6"
	neuTriangle    = 3 // NTYPE of a 3 node triangle
	neuFaceBC      = 1 // ITYPE of an element/face boundary set
	neuBCCode      = 6 // IBCODE written for every boundary set
	neuLineWidth   = 10
)

// WriteNeutral writes the linear mesh in Gambit neutral format with one
// element group per domain, named by its material, and one boundary set per
// boundary name. Curved nodes and the spline geometry are not represented.
func (m *Mesh) WriteNeutral(w io.Writer, title string) error {
	bw := bufio.NewWriter(w)
	names := m.BoundaryNames()
	fmt.Fprintf(bw, "        CONTROL INFO %s\n", neutralVersion)
	fmt.Fprintf(bw, "** GAMBIT NEUTRAL FILE\n%s\n", title)
	fmt.Fprintf(bw, "PROGRAM:                arfgeom     VERSION:  %s\n\n", neutralVersion)
	fmt.Fprintf(bw, "     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL\n")
	fmt.Fprintf(bw, "%10d%10d%10d%10d%10d%10d\n", len(m.Vertices), len(m.Elements), len(m.Materials), len(names), 2, 2)
	fmt.Fprintf(bw, "ENDOFSECTION\n")

	fmt.Fprintf(bw, "   NODAL COORDINATES %s\n", neutralVersion)
	for i, v := range m.Vertices {
		fmt.Fprintf(bw, "%10d %20.12e %20.12e\n", i+1, v.X, v.Y)
	}
	fmt.Fprintf(bw, "ENDOFSECTION\n")

	fmt.Fprintf(bw, "      ELEMENTS/CELLS %s\n", neutralVersion)
	for k, el := range m.Elements {
		fmt.Fprintf(bw, "%8d %2d %2d %8d%8d%8d\n", k+1, neuTriangle, 3, el.V[0]+1, el.V[1]+1, el.V[2]+1)
	}
	fmt.Fprintf(bw, "ENDOFSECTION\n")

	for d, mat := range m.Materials {
		var members []int
		for k, el := range m.Elements {
			if el.Domain == d {
				members = append(members, k+1)
			}
		}
		fmt.Fprintf(bw, "       ELEMENT GROUP %s\n", neutralVersion)
		fmt.Fprintf(bw, "GROUP: %10d ELEMENTS: %10d MATERIAL: %10d NFLAGS: %10d\n", d+1, len(members), 2, 1)
		fmt.Fprintf(bw, "%32s\n%8d\n", mat, 0)
		for i, k := range members {
			fmt.Fprintf(bw, "%8d", k)
			if (i+1)%neuLineWidth == 0 || i == len(members)-1 {
				fmt.Fprintf(bw, "\n")
			}
		}
		fmt.Fprintf(bw, "ENDOFSECTION\n")
	}

	for _, bc := range names {
		edges := m.BoundaryEdges(bc)
		fmt.Fprintf(bw, " BOUNDARY CONDITIONS %s\n", neutralVersion)
		fmt.Fprintf(bw, "%32s%8d%8d%8d%8d\n", bc, neuFaceBC, len(edges), 0, neuBCCode)
		for _, b := range edges {
			fmt.Fprintf(bw, "%10d %5d %5d\n", b.Element+1, neuTriangle, b.Face+1)
		}
		fmt.Fprintf(bw, "ENDOFSECTION\n")
	}
	return bw.Flush()
}

// ReadNeutral reads a 2D triangle mesh in Gambit neutral format. Element
// groups become domains named by the group name; boundary sets become
// boundary edges with no curve attached.
func ReadNeutral(r io.Reader) (m *Mesh, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	next := func() (string, bool) {
		for sc.Scan() {
			line++
			if s := strings.TrimSpace(sc.Text()); s != "" {
				return s, true
			}
		}
		return "", false
	}
	fail := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: line %d: %s", ErrFormat, line, fmt.Sprintf(format, args...))
	}
	ints := func(s string, n int) ([]int, error) {
		fields := strings.Fields(s)
		if len(fields) < n {
			return nil, fail("want %d integers, have %q", n, s)
		}
		out := make([]int, n)
		for i := range out {
			if out[i], err = strconv.Atoi(fields[i]); err != nil {
				return nil, fail("%v", err)
			}
		}
		return out, nil
	}

	m = &Mesh{CurveOrder: 1}
	var numNP, numEl, ndfcd int
	domainSet := make([]bool, 0)
	for {
		header, ok := next()
		if !ok {
			break
		}
		switch {
		case strings.HasPrefix(header, "CONTROL INFO"):
			for {
				s, ok := next()
				if !ok {
					return nil, fail("unterminated control section")
				}
				if s == "ENDOFSECTION" {
					break
				}
				if strings.HasPrefix(s, "NUMNP") {
					s, _ = next()
					v, err := ints(s, 6)
					if err != nil {
						return nil, err
					}
					numNP, numEl, ndfcd = v[0], v[1], v[4]
				}
			}
			if ndfcd != 2 {
				return nil, fail("mesh has %d coordinate directions, want 2", ndfcd)
			}
			m.Vertices = make([]r2.Vec, numNP)
			m.Elements = make([]Element, numEl)
			domainSet = make([]bool, numEl)
		case strings.HasPrefix(header, "NODAL COORDINATES"):
			for i := 0; i < numNP; i++ {
				s, _ := next()
				f := strings.Fields(s)
				if len(f) < 3 {
					return nil, fail("short node record %q", s)
				}
				id, err := strconv.Atoi(f[0])
				if err != nil || id < 1 || id > numNP {
					return nil, fail("bad node id %q", f[0])
				}
				x, errX := strconv.ParseFloat(f[1], 64)
				y, errY := strconv.ParseFloat(f[2], 64)
				if errX != nil || errY != nil {
					return nil, fail("bad coordinates %q", s)
				}
				m.Vertices[id-1] = r2.Vec{X: x, Y: y}
			}
		case strings.HasPrefix(header, "ELEMENTS/CELLS"):
			for i := 0; i < numEl; i++ {
				s, _ := next()
				v, err := ints(s, 6)
				if err != nil {
					return nil, err
				}
				if v[1] != neuTriangle || v[2] != 3 {
					return nil, fail("element %d has type %d with %d nodes, only triangles are supported", v[0], v[1], v[2])
				}
				if v[0] < 1 || v[0] > numEl {
					return nil, fail("bad element id %d", v[0])
				}
				var el Element
				for j := 0; j < 3; j++ {
					if v[3+j] < 1 || v[3+j] > numNP {
						return nil, fail("element %d references node %d", v[0], v[3+j])
					}
					el.V[j] = v[3+j] - 1
				}
				m.Elements[v[0]-1] = el
			}
		case strings.HasPrefix(header, "ELEMENT GROUP"):
			s, _ := next()
			f := strings.Fields(s)
			if len(f) < 8 || f[2] != "ELEMENTS:" {
				return nil, fail("bad group header %q", s)
			}
			count, err := strconv.Atoi(f[3])
			if err != nil {
				return nil, fail("%v", err)
			}
			name, _ := next()
			if _, ok := next(); !ok { // solver flags
				return nil, fail("truncated group %s", name)
			}
			d := len(m.Materials)
			m.Materials = append(m.Materials, name)
			for read := 0; read < count; {
				s, ok := next()
				if !ok {
					return nil, fail("truncated group %s", name)
				}
				for _, tok := range strings.Fields(s) {
					k, err := strconv.Atoi(tok)
					if err != nil || k < 1 || k > numEl {
						return nil, fail("bad element %q in group %s", tok, name)
					}
					m.Elements[k-1].Domain = d
					domainSet[k-1] = true
					read++
				}
			}
		case strings.HasPrefix(header, "BOUNDARY CONDITIONS"):
			s, _ := next()
			f := strings.Fields(s)
			if len(f) < 3 {
				return nil, fail("bad boundary header %q", s)
			}
			bc := f[0]
			count, err := strconv.Atoi(f[2])
			if err != nil {
				return nil, fail("%v", err)
			}
			for i := 0; i < count; i++ {
				s, _ := next()
				v, err := ints(s, 3)
				if err != nil {
					return nil, err
				}
				k, face := v[0]-1, v[2]-1
				if k < 0 || k >= numEl || face < 0 || face > 2 {
					return nil, fail("bad boundary entry %q", s)
				}
				el := m.Elements[k]
				m.Boundaries = append(m.Boundaries, BoundaryEdge{
					V:       [2]int{el.V[face], el.V[(face+1)%3]},
					Element: k,
					Face:    face,
					BC:      bc,
					Curve:   -1,
				})
			}
		default:
			return nil, fail("unknown section %q", header)
		}
		if !strings.HasPrefix(header, "CONTROL INFO") {
			if s, ok := next(); !ok || s != "ENDOFSECTION" {
				return nil, fail("missing ENDOFSECTION after %q", header)
			}
		}
	}
	if err = sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(m.Elements) == 0 {
		return nil, fmt.Errorf("%w: no elements", ErrFormat)
	}
	for k, ok := range domainSet {
		if !ok {
			return nil, fmt.Errorf("%w: element %d belongs to no group", ErrFormat, k+1)
		}
	}
	return m, nil
}

// WriteNeutralFile writes the mesh to path with WriteNeutral.
func (m *Mesh) WriteNeutralFile(path, title string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return m.WriteNeutral(file, title)
}

// ReadNeutralFile reads a mesh written by WriteNeutralFile.
func ReadNeutralFile(path string) (*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := ReadNeutral(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}
