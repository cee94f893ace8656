package fiber

import (
	"fmt"
	"math"
	"strings"
)

// OuterMaterial is one annular layer outside the cladding. Layers are listed
// from the cladding outward and the order fixes the interface names.
type OuterMaterial struct {
	Material string
	N        float64 // refractive index
	T        float64 // thickness, internal length units
	Maxh     float64
}

// Options override variant defaults during resolution.
type Options struct {
	E                *float64 // embedding, nil keeps the variant default
	ShiftCapillaries bool
	OuterMaterials   []OuterMaterial // nil keeps [buffer, Outer]
}

// Design is a fully resolved and validated parameter set. Lengths are in
// internal units (micrometres divided by Scaling); Scale converts to metres.
type Design struct {
	Name             string
	NTubes           int
	Scale            float64
	E                float64
	DefaultE         float64
	ShiftCapillaries bool

	RTube       float64
	TTube       float64
	TCladding   float64
	RCladding   float64
	RTubeCenter float64
	RCore       float64
	CoreFactor  float64

	NGlass float64
	NAir   float64
	N0     float64

	Wavelength     float64
	OuterMaterials []OuterMaterial
	Maxh           MeshSizes

	polymer []OuterMaterial
}

// Resolve looks up a built-in variant and derives its dependent radii.
func Resolve(name string, opts Options) (Design, error) {
	p, ok := Variants[name]
	if !ok {
		return Design{}, fmt.Errorf("%w: Fiber '%s' not implemented", ErrUnknownDesign, name)
	}
	return ResolveParams(p, opts)
}

// ResolveParams derives a Design from an explicit constant record and checks it.
func ResolveParams(p Params, opts Options) (d Design, err error) {
	if p.Scaling <= 0 {
		return Design{}, fmt.Errorf("%w: scaling %g must be positive", ErrGeometryInfeasible, p.Scaling)
	}
	e := p.E
	if opts.E != nil {
		e = *opts.E
	}
	d = Design{
		Name:             p.Name,
		NTubes:           p.NTubes,
		Scale:            p.Scale,
		E:                e,
		DefaultE:         p.E,
		ShiftCapillaries: opts.ShiftCapillaries,
		RTube:            p.RTube / p.Scaling,
		TTube:            p.TTube / p.Scaling,
		TCladding:        p.TCladding / p.Scaling,
		CoreFactor:       p.CoreFactor,
		NGlass:           p.NGlass,
		NAir:             p.NAir,
		N0:               p.NAir,
		Wavelength:       p.Wavelength,
		Maxh:             p.Maxh,
	}
	if opts.ShiftCapillaries {
		// The cladding keeps the variant's default embedding; only the
		// capillary centres move with e.
		d.RCladding = 1 + 2*d.RTube + (2-p.E)*d.TTube
		d.RTubeCenter = d.RCladding - d.RTube - (1-e)*d.TTube
		d.RCore = p.CoreFactor * (d.RTubeCenter - d.RTube - d.TTube)
	} else {
		d.RCladding = 1 + 2*d.RTube + (2-e)*d.TTube
		d.RTubeCenter = 1 + d.RTube + d.TTube
		d.RCore = p.CoreFactor
	}

	nBuffer := p.NAir
	buffer := OuterMaterial{Material: "buffer", N: nBuffer, T: p.TBuffer / p.Scaling, Maxh: p.BufferMaxh}
	outer := OuterMaterial{Material: "Outer", N: d.N0, T: p.TOuter / p.Scaling, Maxh: p.OuterMaxh}
	if opts.OuterMaterials != nil {
		d.OuterMaterials = append([]OuterMaterial(nil), opts.OuterMaterials...)
	} else {
		d.OuterMaterials = []OuterMaterial{buffer, outer}
	}
	d.polymer = []OuterMaterial{
		{Material: "soft_polymer", N: p.NSoftPolymer, T: p.TSoftPolymer / p.Scaling, Maxh: 2},
		{Material: "hard_polymer", N: p.NHardPolymer, T: p.THardPolymer / p.Scaling, Maxh: 2},
		{Material: "buffer", N: nBuffer, T: buffer.T, Maxh: 2},
		{Material: "Outer", N: d.N0, T: outer.T, Maxh: 2},
	}

	if err = d.Check(); err != nil {
		return Design{}, err
	}
	return d, nil
}

// Check verifies the feasibility of a resolved design.
func (d Design) Check() error {
	if !(d.E > 0 && d.E < 1) {
		return fmt.Errorf("%w: embedding parameter e=%g must lie in (0, 1)", ErrGeometryInfeasible, d.E)
	}
	if d.NTubes < 0 {
		return fmt.Errorf("%w: negative capillary count %d", ErrGeometryInfeasible, d.NTubes)
	}
	for _, q := range []struct {
		name string
		v    float64
	}{
		{"R_tube", d.RTube},
		{"T_tube", d.TTube},
		{"T_cladding", d.TCladding},
		{"R_cladding", d.RCladding},
		{"R_tube_center", d.RTubeCenter},
		{"R_core", d.RCore},
		{"scale", d.Scale},
		{"wavelength", d.Wavelength},
	} {
		if !(q.v > 0) {
			return fmt.Errorf("%w: %s=%g must be positive", ErrGeometryInfeasible, q.name, q.v)
		}
	}
	if len(d.OuterMaterials) == 0 {
		return fmt.Errorf("%w: at least one outer material layer is required", ErrGeometryInfeasible)
	}
	for i, m := range d.OuterMaterials {
		if m.Material == "" {
			return fmt.Errorf("%w: outer material %d has no name", ErrGeometryInfeasible, i)
		}
		if !(m.T > 0) {
			return fmt.Errorf("%w: outer material %q thickness %g must be positive",
				ErrGeometryInfeasible, m.Material, m.T)
		}
	}
	if d.NTubes >= 2 {
		half := d.RTubeCenter * math.Sin(math.Pi/float64(d.NTubes))
		if half <= d.RTube+d.TTube {
			return fmt.Errorf("%w: capillaries overlap, R_tube_center*sin(pi/%d)=%g <= R_tube+T_tube=%g",
				ErrGeometryInfeasible, d.NTubes, half, d.RTube+d.TTube)
		}
	}
	return nil
}

// PolymerCoating returns a four layer stack of soft polymer, hard polymer,
// buffer and Outer for use as an OuterMaterials override.
func (d Design) PolymerCoating() []OuterMaterial {
	return append([]OuterMaterial(nil), d.polymer...)
}

// TotalOuterThickness is the summed thickness of the outer material stack.
func (d Design) TotalOuterThickness() (t float64) {
	for _, m := range d.OuterMaterials {
		t += m.T
	}
	return
}

// Wavenumber returns k = 2*pi/lambda in 1/m.
func (d Design) Wavenumber() float64 {
	return 2 * math.Pi / d.Wavelength
}

func (d Design) String() string {
	var sb strings.Builder
	mode := "standard"
	if d.ShiftCapillaries {
		mode = "shifted"
	}
	sb.WriteString(fmt.Sprintf("Design %s (%s capillaries)\n", d.Name, mode))
	sb.WriteString(fmt.Sprintf("  Tubes: %d, e = %.6g, scale = %g m\n", d.NTubes, d.E, d.Scale))
	sb.WriteString(fmt.Sprintf("  R_tube = %.6g, T_tube = %.6g\n", d.RTube, d.TTube))
	sb.WriteString(fmt.Sprintf("  R_cladding = %.6g, T_cladding = %.6g\n", d.RCladding, d.TCladding))
	sb.WriteString(fmt.Sprintf("  R_tube_center = %.6g, R_core = %.6g\n", d.RTubeCenter, d.RCore))
	sb.WriteString(fmt.Sprintf("  n_glass = %.16g, n_air = %.10g, wavelength = %g m\n",
		d.NGlass, d.NAir, d.Wavelength))
	for _, m := range d.OuterMaterials {
		sb.WriteString(fmt.Sprintf("  Layer %-14s n = %-12.10g T = %-10.6g maxh = %g\n",
			m.Material, m.N, m.T, m.Maxh))
	}
	return sb.String()
}
