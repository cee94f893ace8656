package mesh

import (
	"bufio"
	"fmt"
	"github.com/notargets/arfgeom/csg"
	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/spatial/r2"
	"io"
	"os"
)

const binaryVersion = 1

type curveRecord struct {
	Kind   uint8     `msgpack:"kind"`
	Center []float64 `msgpack:"center"`
	Radius float64   `msgpack:"radius"`
	A      []float64 `msgpack:"a"`
	B      []float64 `msgpack:"b"`
	BC     string    `msgpack:"bc"`
	Maxh   float64   `msgpack:"maxh"`
}

type boundaryRecord struct {
	V       [2]int `msgpack:"v"`
	Element int    `msgpack:"element"`
	Face    int    `msgpack:"face"`
	BC      string `msgpack:"bc"`
	Curve   int    `msgpack:"curve"`
}

// meshFile is the on-disk layout. Coordinates are stored as flat x, y
// pairs.
type meshFile struct {
	Version    int              `msgpack:"version"`
	Vertices   []float64        `msgpack:"vertices"`
	Elements   []int            `msgpack:"elements"`
	Domains    []int            `msgpack:"domains"`
	Materials  []string         `msgpack:"materials"`
	Boundaries []boundaryRecord `msgpack:"boundaries"`
	CurveOrder int              `msgpack:"curve_order"`
	Nodes      []float64        `msgpack:"nodes"`
	Curves     []curveRecord    `msgpack:"curves"`
	HasCurves  bool             `msgpack:"has_curves"`
}

func flatten(pts []r2.Vec) []float64 {
	out := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		out = append(out, p.X, p.Y)
	}
	return out
}

func unflatten(xy []float64) []r2.Vec {
	out := make([]r2.Vec, len(xy)/2)
	for i := range out {
		out[i] = r2.Vec{X: xy[2*i], Y: xy[2*i+1]}
	}
	return out
}

// Save writes the mesh, its curved nodes and the attached spline geometry.
func (m *Mesh) Save(w io.Writer) error {
	f := meshFile{
		Version:    binaryVersion,
		Vertices:   flatten(m.Vertices),
		Materials:  m.Materials,
		CurveOrder: m.CurveOrder,
	}
	f.Elements = make([]int, 0, 3*len(m.Elements))
	f.Domains = make([]int, len(m.Elements))
	for k, el := range m.Elements {
		f.Elements = append(f.Elements, el.V[0], el.V[1], el.V[2])
		f.Domains[k] = el.Domain
	}
	for _, b := range m.Boundaries {
		f.Boundaries = append(f.Boundaries, boundaryRecord(b))
	}
	for _, nodes := range m.Nodes {
		f.Nodes = append(f.Nodes, flatten(nodes)...)
	}
	if m.geometry != nil {
		f.HasCurves = true
		for _, c := range m.geometry.Curves {
			f.Curves = append(f.Curves, curveRecord{
				Kind:   uint8(c.Kind),
				Center: []float64{c.Center.X, c.Center.Y},
				Radius: c.Radius,
				A:      []float64{c.A.X, c.A.Y},
				B:      []float64{c.B.X, c.B.Y},
				BC:     c.BC,
				Maxh:   c.Maxh,
			})
		}
	}
	return msgpack.NewEncoder(w).Encode(&f)
}

// Load reads a mesh written by Save.
func Load(r io.Reader) (m *Mesh, err error) {
	var f meshFile
	if err = msgpack.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if f.Version != binaryVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrFormat, f.Version, binaryVersion)
	}
	if len(f.Vertices)%2 != 0 || len(f.Elements)%3 != 0 || len(f.Elements)/3 != len(f.Domains) {
		return nil, fmt.Errorf("%w: inconsistent array lengths", ErrFormat)
	}
	m = &Mesh{
		Vertices:   unflatten(f.Vertices),
		Materials:  f.Materials,
		CurveOrder: f.CurveOrder,
	}
	nv := len(m.Vertices)
	m.Elements = make([]Element, len(f.Domains))
	for k := range m.Elements {
		el := Element{V: [3]int{f.Elements[3*k], f.Elements[3*k+1], f.Elements[3*k+2]}, Domain: f.Domains[k]}
		for _, v := range el.V {
			if v < 0 || v >= nv {
				return nil, fmt.Errorf("%w: element %d references vertex %d of %d", ErrFormat, k, v, nv)
			}
		}
		if el.Domain < 0 || el.Domain >= len(m.Materials) {
			return nil, fmt.Errorf("%w: element %d has domain %d of %d", ErrFormat, k, el.Domain, len(m.Materials))
		}
		m.Elements[k] = el
	}
	for _, b := range f.Boundaries {
		if b.Element < 0 || b.Element >= len(m.Elements) || b.Face < 0 || b.Face > 2 {
			return nil, fmt.Errorf("%w: boundary edge on element %d face %d", ErrFormat, b.Element, b.Face)
		}
		m.Boundaries = append(m.Boundaries, BoundaryEdge(b))
	}
	if len(f.Nodes) > 0 {
		np := (f.CurveOrder + 1) * (f.CurveOrder + 2) / 2
		if len(f.Nodes) != 2*np*len(m.Elements) {
			return nil, fmt.Errorf("%w: %d node coordinates for order %d", ErrFormat, len(f.Nodes), f.CurveOrder)
		}
		m.Nodes = make([][]r2.Vec, len(m.Elements))
		for k := range m.Nodes {
			m.Nodes[k] = unflatten(f.Nodes[2*np*k : 2*np*(k+1)])
		}
	}
	if f.HasCurves {
		sg := &csg.SplineGeometry{Materials: append([]string(nil), m.Materials...)}
		for _, c := range f.Curves {
			if len(c.Center) != 2 || len(c.A) != 2 || len(c.B) != 2 {
				return nil, fmt.Errorf("%w: malformed curve", ErrFormat)
			}
			sg.Curves = append(sg.Curves, csg.Curve{
				Kind:   csg.CurveKind(c.Kind),
				Center: r2.Vec{X: c.Center[0], Y: c.Center[1]},
				Radius: c.Radius,
				A:      r2.Vec{X: c.A[0], Y: c.A[1]},
				B:      r2.Vec{X: c.B[0], Y: c.B[1]},
				BC:     c.BC,
				Maxh:   c.Maxh,
			})
		}
		for _, b := range m.Boundaries {
			if b.Curve >= len(sg.Curves) {
				return nil, fmt.Errorf("%w: boundary edge references curve %d of %d", ErrFormat, b.Curve, len(sg.Curves))
			}
		}
		m.geometry = sg
	}
	return m, nil
}

// SaveFile writes the mesh to path with Save.
func (m *Mesh) SaveFile(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(file)
	if err = m.Save(w); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return w.Flush()
}

// LoadFile reads a mesh written by SaveFile.
func LoadFile(path string) (*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := Load(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}
