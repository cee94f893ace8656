package arf

import (
	"bufio"
	"fmt"
	"github.com/notargets/arfgeom/fem"
	"github.com/notargets/arfgeom/mesh"
	"gonum.org/v1/gonum/mat"
	"os"
)

// MeshFormat selects how a mesh is persisted.
type MeshFormat uint8

const (
	// FormatBinary keeps everything, curved nodes and boundary curves
	// included. The file is written to the given name unchanged.
	FormatBinary MeshFormat = iota
	// FormatNeutral writes a linear Gambit neutral file to name.neu.
	FormatNeutral
)

func (f MeshFormat) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatNeutral:
		return "neutral"
	}
	return fmt.Sprintf("MeshFormat(%d)", uint8(f))
}

// ModesExt is appended to mode file names.
const ModesExt = ".modes"

// EModeOrder is the H(curl) order used for transverse E modes computed
// with polynomial degree p.
func EModeOrder(p int) int {
	return p + 1 - max(1-p, 0)
}

// PhiModeOrder is the H1 order used for scalar modes computed with
// polynomial degree p.
func PhiModeOrder(p int) int { return p + 1 }

// EModesFromArray loads vector modes, one per column of a, into the first
// kind H(curl) space of the mesh vanishing on OuterCircle.
func EModesFromArray(a mat.CMatrix, p int, m *mesh.Mesh) (*fem.ModeSet, error) {
	if m == nil {
		return nil, ErrMissingMesh
	}
	space, err := fem.NewHCurl(m, EModeOrder(p), []string{BCOuterCircle}, true, true)
	if err != nil {
		return nil, err
	}
	return fem.ModesFromArray(space, a)
}

// PhiModesFromArray loads scalar modes, one per column of a, into the H1
// space of the mesh vanishing on OuterCircle.
func PhiModesFromArray(a mat.CMatrix, p int, m *mesh.Mesh) (*fem.ModeSet, error) {
	if m == nil {
		return nil, ErrMissingMesh
	}
	space, err := fem.NewH1(m, PhiModeOrder(p), []string{BCOuterCircle}, true)
	if err != nil {
		return nil, err
	}
	return fem.ModesFromArray(space, a)
}

// SaveModes writes the mode vectors to name.modes.
func SaveModes(modes *fem.ModeSet, name string) (err error) {
	file, err := os.Create(name + ModesExt)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(file)
	if err = fem.WriteArray(w, modes.ToArray()); err != nil {
		return fmt.Errorf("writing %s%s: %w", name, ModesExt, err)
	}
	return w.Flush()
}

// LoadModesArray reads the array written by SaveModes.
func LoadModesArray(name string) (*mat.CDense, error) {
	file, err := os.Open(name + ModesExt)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	a, err := fem.ReadArray(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("reading %s%s: %w", name, ModesExt, err)
	}
	return a, nil
}

// SaveMesh writes m in the given format.
func SaveMesh(m *mesh.Mesh, name string, f MeshFormat) error {
	if m == nil {
		return ErrMissingMesh
	}
	switch f {
	case FormatBinary:
		return m.SaveFile(name)
	case FormatNeutral:
		return m.WriteNeutralFile(name+".neu", name)
	}
	return fmt.Errorf("unknown mesh format %v", f)
}

// LoadMesh reads a mesh saved by SaveMesh. The format must be the one used
// when saving.
func LoadMesh(name string, f MeshFormat) (*mesh.Mesh, error) {
	switch f {
	case FormatBinary:
		return mesh.LoadFile(name)
	case FormatNeutral:
		return mesh.ReadNeutralFile(name + ".neu")
	}
	return nil, fmt.Errorf("unknown mesh format %v", f)
}

// LoadEModes reads a saved mesh and the E modes computed on it with
// polynomial degree p.
func LoadEModes(meshName, modeName string, p int, f MeshFormat) (*mesh.Mesh, *fem.ModeSet, error) {
	return loadModes(meshName, modeName, p, f, EModesFromArray)
}

// LoadPhiModes reads a saved mesh and the phi modes computed on it with
// polynomial degree p.
func LoadPhiModes(meshName, modeName string, p int, f MeshFormat) (*mesh.Mesh, *fem.ModeSet, error) {
	return loadModes(meshName, modeName, p, f, PhiModesFromArray)
}

func loadModes(meshName, modeName string, p int, f MeshFormat,
	fromArray func(mat.CMatrix, int, *mesh.Mesh) (*fem.ModeSet, error)) (*mesh.Mesh, *fem.ModeSet, error) {
	m, err := LoadMesh(meshName, f)
	if err != nil {
		return nil, nil, err
	}
	a, err := LoadModesArray(modeName)
	if err != nil {
		return nil, nil, err
	}
	modes, err := fromArray(a, p, m)
	if err != nil {
		return nil, nil, err
	}
	return m, modes, nil
}
