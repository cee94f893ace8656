package utils

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestBuildConnectivity2D(t *testing.T) {
	// two triangles forming the unit square, diagonal 1-2
	//  2---3
	//  | \ |
	//  0---1
	EToV := [][3]int{{0, 1, 2}, {1, 3, 2}}
	c, err := BuildConnectivity2D(EToV)
	require.NoError(t, err)

	assert.Len(t, c.Edges, 5)
	assert.Equal(t, 5, CountEdges(EToV))
	assert.Equal(t, 4, c.NumBoundaryFaces())
	// face 1 of element 0 (1-2) meets face 2 of element 1 (2-1)
	assert.Equal(t, 1, c.EToE[0][1])
	assert.Equal(t, 2, c.EToF[0][1])
	assert.Equal(t, 0, c.EToE[1][2])
	assert.Equal(t, 1, c.EToF[1][2])
	assert.True(t, c.IsBoundary(0, 0))
	assert.False(t, c.IsBoundary(1, 2))
	assert.Equal(t, c.EdgeOf[0][1], c.EdgeOf[1][2])
	assert.Equal(t, NewEdgeKey(2, 1), c.Edges[c.EdgeOf[0][1]])

	// Euler: V - E + F = 1 for a disk
	assert.Equal(t, 1, 4-len(c.Edges)+len(EToV))
}

func TestBuildConnectivity2DErrors(t *testing.T) {
	_, err := BuildConnectivity2D([][3]int{{0, 1, 2}, {1, 0, 3}, {0, 1, 4}})
	assert.Error(t, err)
	_, err = BuildConnectivity2D([][3]int{{0, 0, 2}})
	assert.Error(t, err)
}

func TestGeometryType(t *testing.T) {
	assert.Equal(t, "Tri", Tri.String())
	assert.Equal(t, 3, Tri.NumVertices())
	assert.Equal(t, 2, Line.NumVertices())
}
