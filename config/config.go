// Package config reads fiber build settings from an HCL file.
package config

import (
	"fmt"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/notargets/arfgeom/arf"
	"github.com/notargets/arfgeom/fiber"
	"github.com/notargets/arfgeom/internal/logging"
	"github.com/zclconf/go-cty/cty"
)

// DefaultLayerMaxh is used for an outer_material block without maxh.
const DefaultLayerMaxh = 2.

// File is the decoded content of a fiber file.
type File struct {
	Design           string           `hcl:"design,optional"`
	Refine           int              `hcl:"refine,optional"`
	Curve            int              `hcl:"curve,optional"`
	E                *float64         `hcl:"e,optional"`
	PolyCore         bool             `hcl:"poly_core,optional"`
	ShiftCapillaries bool             `hcl:"shift_capillaries,optional"`
	Polymer          bool             `hcl:"polymer,optional"`
	OuterMaterials   []*OuterMaterial `hcl:"outer_material,block"`
	Logging          *logging.Config  `hcl:"logging,block"`
}

// OuterMaterial is one outer_material block. Layers are listed from the
// cladding outward.
type OuterMaterial struct {
	Name      string  `hcl:"name,label"`
	N         float64 `hcl:"n"`
	Thickness float64 `hcl:"thickness"`
	Maxh      float64 `hcl:"maxh,optional"`
}

// Default returns the settings used for attributes a file leaves out.
func Default() *File {
	return &File{Design: "poletti", Curve: 3}
}

// EvalContext exposes the refractive indices of the named design as n_air
// and n_glass. An unknown name falls back to the default design.
func EvalContext(design string) *hcl.EvalContext {
	p, ok := fiber.Variants[design]
	if !ok {
		p = fiber.Variants[Default().Design]
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"n_air":   cty.NumberFloatVal(p.NAir),
			"n_glass": cty.NumberFloatVal(p.NGlass),
		},
	}
}

// designName reads the design attribute ahead of the full decode, returning
// the default design when it is absent or not a plain string.
func designName(body hcl.Body) string {
	content, _, diags := body.PartialContent(&hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "design"}},
	})
	if diags.HasErrors() {
		return Default().Design
	}
	attr, ok := content.Attributes["design"]
	if !ok {
		return Default().Design
	}
	var name string
	if diags = gohcl.DecodeExpression(attr.Expr, nil, &name); diags.HasErrors() {
		return Default().Design
	}
	return name
}

// Load parses and decodes a fiber file.
func Load(path string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(path, hclFile)
}

// Parse decodes a fiber file held in memory; filename is used in
// diagnostics only.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(filename, hclFile)
}

func decode(filename string, hclFile *hcl.File) (*File, error) {
	f := Default()
	if diags := gohcl.DecodeBody(hclFile.Body, EvalContext(designName(hclFile.Body)), f); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	if f.Logging != nil {
		cfg := f.Logging.WithDefaults()
		f.Logging = &cfg
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return f, nil
}

func (f *File) validate() error {
	if _, ok := fiber.Variants[f.Design]; !ok {
		return fmt.Errorf("%w: Fiber '%s' not implemented", fiber.ErrUnknownDesign, f.Design)
	}
	if f.Refine < 0 {
		return fmt.Errorf("refine = %d must not be negative", f.Refine)
	}
	if f.Curve < 1 {
		return fmt.Errorf("curve = %d must be at least 1", f.Curve)
	}
	seen := make(map[string]bool)
	for _, layer := range f.OuterMaterials {
		if seen[layer.Name] {
			return fmt.Errorf("outer_material %q declared twice", layer.Name)
		}
		seen[layer.Name] = true
	}
	return nil
}

// Layers converts the outer_material blocks, nil when there are none.
func (f *File) Layers() []fiber.OuterMaterial {
	if len(f.OuterMaterials) == 0 {
		return nil
	}
	layers := make([]fiber.OuterMaterial, len(f.OuterMaterials))
	for i, om := range f.OuterMaterials {
		maxh := om.Maxh
		if maxh == 0 {
			maxh = DefaultLayerMaxh
		}
		layers[i] = fiber.OuterMaterial{Material: om.Name, N: om.N, T: om.Thickness, Maxh: maxh}
	}
	return layers
}

// Options returns the constructor options described by the file. The design
// name is passed to arf.New separately.
func (f *File) Options() []arf.Option {
	opts := []arf.Option{
		arf.WithRefine(f.Refine),
		arf.WithCurve(f.Curve),
		arf.WithPolyCore(f.PolyCore),
		arf.WithShiftCapillaries(f.ShiftCapillaries),
		arf.WithPolymerCoating(f.Polymer),
	}
	if f.E != nil {
		opts = append(opts, arf.WithE(*f.E))
	}
	if layers := f.Layers(); layers != nil {
		opts = append(opts, arf.WithOuterMaterials(layers))
	}
	return opts
}
