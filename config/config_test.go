package config

import (
	"errors"
	"github.com/google/go-cmp/cmp"
	"github.com/notargets/arfgeom/fiber"
	"github.com/notargets/arfgeom/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

const polettiFile = `
design            = "poletti"
refine            = 1
curve             = 2
e                 = 0.1
poly_core         = true
shift_capillaries = false

outer_material "buffer" {
  n         = n_air
  thickness = 0.6666666666666666
}
outer_material "Outer" {
  n         = 1.00027717
  thickness = 2
  maxh      = 4
}

logging {
  level  = "debug"
  format = "json"
}
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poletti.hcl")
	require.NoError(t, os.WriteFile(path, []byte(polettiFile), 0644))

	f, err := Load(path)
	require.NoError(t, err)
	e := .1
	want := &File{
		Design:   "poletti",
		Refine:   1,
		Curve:    2,
		E:        &e,
		PolyCore: true,
		OuterMaterials: []*OuterMaterial{
			{Name: "buffer", N: 1.00027717, Thickness: 0.6666666666666666},
			{Name: "Outer", N: 1.00027717, Thickness: 2, Maxh: 4},
		},
		Logging: &logging.Config{Level: "debug", Format: "json", Output: "stderr"},
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	layers := f.Layers()
	if diff := cmp.Diff([]fiber.OuterMaterial{
		{Material: "buffer", N: 1.00027717, T: 0.6666666666666666, Maxh: DefaultLayerMaxh},
		{Material: "Outer", N: 1.00027717, T: 2, Maxh: 4},
	}, layers); diff != "" {
		t.Errorf("Layers() mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, f.Options(), 7)
}

func TestDefaults(t *testing.T) {
	f, err := Parse([]byte(`design = "basic"`), "basic.hcl")
	require.NoError(t, err)
	assert.Equal(t, "basic", f.Design)
	assert.Equal(t, 3, f.Curve)
	assert.Nil(t, f.E)
	assert.Nil(t, f.Layers())
	assert.Nil(t, f.Logging)
	assert.Len(t, f.Options(), 5)

	f, err = Parse(nil, "empty.hcl")
	require.NoError(t, err)
	assert.Equal(t, Default(), f)
}

func TestEvalContext(t *testing.T) {
	indices := func(design string) (air, glass float64) {
		vars := EvalContext(design).Variables
		air, _ = vars["n_air"].AsBigFloat().Float64()
		glass, _ = vars["n_glass"].AsBigFloat().Float64()
		return
	}
	for _, name := range fiber.Names() {
		air, glass := indices(name)
		assert.Equalf(t, fiber.Variants[name].NAir, air, "design %s", name)
		assert.Equalf(t, fiber.Variants[name].NGlass, glass, "design %s", name)
	}
	air, glass := indices("bragg")
	assert.Equal(t, fiber.Variants[Default().Design].NAir, air)
	assert.Equal(t, fiber.Variants[Default().Design].NGlass, glass)

	f, err := Parse([]byte("design = \"basic\"\nouter_material \"jacket\" {\n  n         = n_glass\n  thickness = 1\n}\n"), "basic.hcl")
	require.NoError(t, err)
	require.Len(t, f.OuterMaterials, 1)
	assert.Equal(t, fiber.Variants["basic"].NGlass, f.OuterMaterials[0].N)
}

func TestPartialLogging(t *testing.T) {
	defer func() { require.NoError(t, logging.Initialize(logging.DefaultConfig())) }()

	f, err := Parse([]byte("design = \"poletti\"\nlogging {\n  level = \"debug\"\n}\n"), "debug.hcl")
	require.NoError(t, err)
	require.NotNil(t, f.Logging)
	assert.Equal(t, logging.Config{Level: "debug", Format: "console", Output: "stderr"}, *f.Logging)
	require.NoError(t, logging.Initialize(*f.Logging))

	f, err = Parse([]byte("logging {\n}\n"), "empty_logging.hcl")
	require.NoError(t, err)
	assert.Equal(t, logging.DefaultConfig(), *f.Logging)
}

func TestInvalid(t *testing.T) {
	for _, tc := range []struct {
		name, src, msg string
	}{
		{"syntax", `design = `, "failed to parse"},
		{"unknown attribute", `tubes = 7`, "failed to decode"},
		{"missing thickness", "outer_material \"x\" {\n n = 1\n}", "failed to decode"},
		{"negative refine", `refine = -1`, "must not be negative"},
		{"curve", `curve = 0`, "at least 1"},
		{"duplicate layer", "outer_material \"a\" {\n n = 1\n thickness = 1\n}\nouter_material \"a\" {\n n = 1\n thickness = 1\n}", "declared twice"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src), tc.name+".hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}

	_, err := Parse([]byte(`design = "bragg"`), "bragg.hcl")
	assert.True(t, errors.Is(err, fiber.ErrUnknownDesign))

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}
