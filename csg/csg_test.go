package csg

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"math"
	"testing"
)

func TestSolidContains(t *testing.T) {
	outer := NewCircle(r2.Vec{}, 2, "", "outer")
	inner := NewCircle(r2.Vec{}, 1, "", "inner")
	ring := outer.Difference(inner)

	assert.False(t, ring.Contains(r2.Vec{X: .5}))
	assert.True(t, ring.Contains(r2.Vec{X: 1.5}))
	assert.False(t, ring.Contains(r2.Vec{X: 2.5}))

	// Operands are copied.
	inner.Maxh(.1)
	for _, l := range ring.Leaves() {
		assert.Equal(t, 0., l.maxh)
	}

	both := NewUnion().Union(inner).Union(NewCircle(r2.Vec{X: 5}, 1, "", ""))
	assert.True(t, both.Contains(r2.Vec{X: 5.5}))
	assert.True(t, both.Contains(r2.Vec{}))
	assert.False(t, both.Contains(r2.Vec{X: 3}))
	assert.Len(t, both.Leaves(), 2)
}

func TestEmptyUnion(t *testing.T) {
	u := NewUnion()
	assert.True(t, u.Empty())
	g := NewGeometry()
	err := g.Add(u.Mat("inner_air"))
	assert.True(t, errors.Is(err, ErrEmptySolid))
	assert.Equal(t, 0, g.NumDomains())
}

func TestRotate(t *testing.T) {
	c := NewCircle(r2.Vec{Y: 2}, .5, "", "")
	c.Copy().Rotate(90, r2.Vec{})
	assert.True(t, c.Contains(r2.Vec{Y: 2}))

	r := c.Copy().Rotate(90, r2.Vec{})
	assert.True(t, r.Contains(r2.Vec{X: -2}))
	assert.False(t, r.Contains(r2.Vec{Y: 2}))
}

func TestPolygon(t *testing.T) {
	sq := NewPolygon([]r2.Vec{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}, "core", "b")
	assert.True(t, sq.Contains(r2.Vec{X: .9, Y: .9}))
	assert.False(t, sq.Contains(r2.Vec{X: 1.1}))
	curves := sq.Shape().Curves()
	require.Len(t, curves, 4)
	// outward normal of the bottom edge
	n := curves[0].Normal(r2.Vec{Y: -1})
	assert.InDelta(t, 0, n.X, 1.e-15)
	assert.InDelta(t, -1, n.Y, 1.e-15)
}

func TestMaxhPropagation(t *testing.T) {
	a := NewCircle(r2.Vec{}, 1, "", "").Maxh(.3)
	b := NewCircle(r2.Vec{X: 3}, 1, "", "").Maxh(.1)
	u := a.Union(b)
	assert.Equal(t, .3, u.RegionMaxh())
	u.Maxh(.05)
	assert.Equal(t, .05, u.RegionMaxh())
	for _, l := range u.Leaves() {
		assert.Equal(t, .05, l.maxh)
	}
}

func TestGenerateSplineGeometry(t *testing.T) {
	c1 := NewCircle(r2.Vec{}, 1, "", "inner_bc")
	c2 := NewCircle(r2.Vec{}, 2, "", "outer_bc")
	g := NewGeometry()
	require.NoError(t, g.Add(c1.Copy().Mat("a").Maxh(.5)))
	require.NoError(t, g.Add(c2.Difference(c1).Mat("b").Maxh(.2)))
	assert.Equal(t, []string{"a", "b"}, g.Materials())

	sg := g.GenerateSplineGeometry()
	require.Len(t, sg.Curves, 2)
	assert.Equal(t, "inner_bc", sg.Curves[0].BC)
	assert.Equal(t, .2, sg.Curves[0].Maxh)
	assert.Equal(t, "outer_bc", sg.Curves[1].BC)
	assert.Equal(t, []string{"inner_bc", "outer_bc"}, sg.BoundaryNames())

	assert.Equal(t, 0, g.DomainAt(r2.Vec{X: .5}))
	assert.Equal(t, 1, g.DomainAt(r2.Vec{Y: 1.5}))
	assert.Equal(t, -1, g.DomainAt(r2.Vec{Y: 2.5}))
}

func TestCurveInterpolate(t *testing.T) {
	c := Curve{Kind: Arc, Radius: 2}
	a, b := r2.Vec{X: 2}, r2.Vec{Y: 2}
	m := c.Interpolate(a, b, .5)
	assert.InDelta(t, 2*math.Cos(math.Pi/4), m.X, 1.e-14)
	assert.InDelta(t, 2*math.Sin(math.Pi/4), m.Y, 1.e-14)
	for _, tt := range []float64{.1, .3, .7} {
		p, q := c.Interpolate(a, b, tt), c.Interpolate(b, a, 1-tt)
		assert.InDelta(t, p.X, q.X, 1.e-14)
		assert.InDelta(t, p.Y, q.Y, 1.e-14)
	}
	// across the branch cut of atan2
	a, b = r2.Vec{X: -2, Y: .1}, r2.Vec{X: -2, Y: -.1}
	m = c.Interpolate(a, b, .5)
	assert.Less(t, m.X, -1.9)

	p := c.Project(r2.Vec{X: 3, Y: 4})
	assert.InDelta(t, 1.2, p.X, 1.e-14)
	assert.InDelta(t, 1.6, p.Y, 1.e-14)
	assert.Len(t, c.Sample(.5), int(math.Ceil(4*math.Pi/.5)))
}
