package utils

import "fmt"

type GeometryType uint8

const (
	Tri GeometryType = iota
	Line
)

func (g GeometryType) String() string {
	switch g {
	case Tri:
		return "Tri"
	case Line:
		return "Line"
	}
	return fmt.Sprintf("GeometryType(%d)", uint8(g))
}

// NumVertices returns the vertex count of the geometry type.
func (g GeometryType) NumVertices() int {
	switch g {
	case Tri:
		return 3
	case Line:
		return 2
	}
	return 0
}
