package utils

import (
	"fmt"
)

// EdgeKey is the canonical (sorted) vertex pair of an edge.
type EdgeKey [2]int

func NewEdgeKey(a, b int) EdgeKey {
	if a > b {
		a, b = b, a
	}
	return EdgeKey{a, b}
}

// TriEdges lists the local vertex pair of each triangle face (edge).
var TriEdges = [3][2]int{{0, 1}, {1, 2}, {2, 0}}

// Connectivity2D holds triangle to triangle adjacency. Boundary faces are
// self-connected: EToE[k][f] == k and EToF[k][f] == f.
type Connectivity2D struct {
	K     int
	EToE  [][3]int
	EToF  [][3]int
	Edges []EdgeKey // unique edges in first seen order
	// EdgeOf[k][f] indexes Edges
	EdgeOf [][3]int
}

// BuildConnectivity2D matches the faces of the triangles in EToV. A face
// shared by more than two triangles is reported as an error.
func BuildConnectivity2D(EToV [][3]int) (c *Connectivity2D, err error) {
	K := len(EToV)
	c = &Connectivity2D{
		K:      K,
		EToE:   make([][3]int, K),
		EToF:   make([][3]int, K),
		EdgeOf: make([][3]int, K),
	}
	type faceSignature struct {
		elem, face int
		matched    bool
	}
	faceMap := make(map[EdgeKey]*faceSignature, 3*K/2+1)
	edgeIndex := make(map[EdgeKey]int, 3*K/2+1)
	for e := 0; e < K; e++ {
		for f := 0; f < 3; f++ {
			// Self-connection by default
			c.EToE[e][f] = e
			c.EToF[e][f] = f

			key := NewEdgeKey(EToV[e][TriEdges[f][0]], EToV[e][TriEdges[f][1]])
			if key[0] == key[1] {
				return nil, fmt.Errorf("element %d face %d is degenerate", e, f)
			}
			if existing, found := faceMap[key]; found {
				if existing.matched {
					return nil, fmt.Errorf("edge %v is shared by more than two elements", key)
				}
				existing.matched = true
				c.EToE[e][f] = existing.elem
				c.EToF[e][f] = existing.face
				c.EToE[existing.elem][existing.face] = e
				c.EToF[existing.elem][existing.face] = f
				c.EdgeOf[e][f] = edgeIndex[key]
				continue
			}
			faceMap[key] = &faceSignature{elem: e, face: f}
			edgeIndex[key] = len(c.Edges)
			c.EdgeOf[e][f] = len(c.Edges)
			c.Edges = append(c.Edges, key)
		}
	}
	return c, nil
}

// IsBoundary reports whether face f of element k has no neighbor.
func (c *Connectivity2D) IsBoundary(k, f int) bool {
	return c.EToE[k][f] == k && c.EToF[k][f] == f
}

// NumBoundaryFaces counts the self-connected faces.
func (c *Connectivity2D) NumBoundaryFaces() (n int) {
	for k := 0; k < c.K; k++ {
		for f := 0; f < 3; f++ {
			if c.IsBoundary(k, f) {
				n++
			}
		}
	}
	return
}

// CountEdges returns the number of distinct edges of a triangulation.
func CountEdges(EToV [][3]int) int {
	seen := make(map[EdgeKey]struct{}, 3*len(EToV)/2+1)
	for _, v := range EToV {
		for _, e := range TriEdges {
			seen[NewEdgeKey(v[e[0]], v[e[1]])] = struct{}{}
		}
	}
	return len(seen)
}
