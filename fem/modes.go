package fem

import (
	"fmt"
	"gonum.org/v1/gonum/mat"
	"io"
)

// ModeSet holds m vectors of a space, one per column of an NDof × m
// complex matrix.
type ModeSet struct {
	space *Space
	data  *mat.CDense
}

// NewModeSet returns m zero vectors over space.
func NewModeSet(space *Space, m int) (*ModeSet, error) {
	if m < 1 {
		return nil, fmt.Errorf("fem: mode set needs at least one vector, have %d", m)
	}
	return &ModeSet{space: space, data: mat.NewCDense(space.NDof(), m, nil)}, nil
}

// FromArray copies a into the mode set. The number of rows must equal the
// number of degrees of freedom of the space and the number of columns the
// number of vectors.
func (ms *ModeSet) FromArray(a mat.CMatrix) error {
	r, c := a.Dims()
	nr, nc := ms.data.Dims()
	if r != nr {
		return fmt.Errorf("%w: array has %d rows, space %s has %d degrees of freedom; "+
			"check that the mesh is built the same way as for the array and that the "+
			"polynomial degree used for the array was passed", ErrArrayLengthMismatch, r, ms.space, nr)
	}
	if c != nc {
		return fmt.Errorf("%w: array has %d columns, mode set holds %d vectors", ErrArrayLengthMismatch, c, nc)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			ms.data.Set(i, j, a.At(i, j))
		}
	}
	return nil
}

// ModesFromArray returns a mode set over space holding the columns of a.
// On a row count mismatch no mode set is returned.
func ModesFromArray(space *Space, a mat.CMatrix) (*ModeSet, error) {
	_, c := a.Dims()
	ms, err := NewModeSet(space, c)
	if err != nil {
		return nil, err
	}
	if err = ms.FromArray(a); err != nil {
		return nil, err
	}
	return ms, nil
}

// ToArray returns a copy of the vectors as an NDof × m matrix.
func (ms *ModeSet) ToArray() *mat.CDense {
	r, c := ms.data.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, ms.data.At(i, j))
		}
	}
	return out
}

func (ms *ModeSet) Space() *Space { return ms.space }

func (ms *ModeSet) NumModes() int {
	_, c := ms.data.Dims()
	return c
}

// Mode returns a copy of vector j.
func (ms *ModeSet) Mode(j int) []complex128 {
	r, _ := ms.data.Dims()
	v := make([]complex128, r)
	for i := range v {
		v[i] = ms.data.At(i, j)
	}
	return v
}

// SetMode overwrites vector j.
func (ms *ModeSet) SetMode(j int, v []complex128) error {
	r, _ := ms.data.Dims()
	if len(v) != r {
		return fmt.Errorf("%w: vector has %d entries, space has %d", ErrArrayLengthMismatch, len(v), r)
	}
	for i, x := range v {
		ms.data.Set(i, j, x)
	}
	return nil
}

// WriteArray writes a as two gonum binary matrices, the real part followed
// by the imaginary part.
func WriteArray(w io.Writer, a mat.CMatrix) error {
	r, c := a.Dims()
	re := mat.NewDense(r, c, nil)
	im := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			z := a.At(i, j)
			re.Set(i, j, real(z))
			im.Set(i, j, imag(z))
		}
	}
	if _, err := re.MarshalBinaryTo(w); err != nil {
		return fmt.Errorf("writing real part: %w", err)
	}
	if _, err := im.MarshalBinaryTo(w); err != nil {
		return fmt.Errorf("writing imaginary part: %w", err)
	}
	return nil
}

// ReadArray reads an array written by WriteArray.
func ReadArray(r io.Reader) (*mat.CDense, error) {
	var re, im mat.Dense
	if _, err := re.UnmarshalBinaryFrom(r); err != nil {
		return nil, fmt.Errorf("reading real part: %w", err)
	}
	if _, err := im.UnmarshalBinaryFrom(r); err != nil {
		return nil, fmt.Errorf("reading imaginary part: %w", err)
	}
	nr, nc := re.Dims()
	if ir, ic := im.Dims(); ir != nr || ic != nc {
		return nil, fmt.Errorf("%w: real part is %d×%d, imaginary part %d×%d", ErrArrayLengthMismatch, nr, nc, ir, ic)
	}
	out := mat.NewCDense(nr, nc, nil)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			out.Set(i, j, complex(re.At(i, j), im.At(i, j)))
		}
	}
	return out, nil
}
