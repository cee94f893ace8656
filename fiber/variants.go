package fiber

import "sort"

// MeshSizes holds the target element size (maxh) per region, in internal
// length units. A zero Glass value leaves the cladding and tube sizes in
// effect for the combined glass region.
type MeshSizes struct {
	Core     float64
	FillAir  float64
	Tube     float64
	InnerAir float64
	Cladding float64
	Glass    float64
}

// Params are the independent constants of one named variant. Lengths are in
// micrometres and are divided by Scaling during resolution.
type Params struct {
	Name    string
	NTubes  int
	Scaling float64 // micrometres per internal length unit
	Scale   float64 // metres per internal length unit
	E       float64 // default embedding

	RTube        float64
	TTube        float64
	TCladding    float64
	TBuffer      float64
	TOuter       float64
	TSoftPolymer float64
	THardPolymer float64

	NGlass       float64
	NAir         float64
	NSoftPolymer float64
	NHardPolymer float64

	CoreFactor float64
	Wavelength float64 // metres

	Maxh       MeshSizes
	BufferMaxh float64
	OuterMaxh  float64
}

const (
	nGlass       = 1.4388164768221814
	nAir         = 1.00027717
	nSoftPolymer = 1.44
	nHardPolymer = 1.56
)

func baseParams(name string) Params {
	return Params{
		Name:         name,
		NTubes:       6,
		Scaling:      15,
		Scale:        15e-6,
		E:            .025 / .42,
		TCladding:    10,
		TOuter:       30,
		TSoftPolymer: 30,
		THardPolymer: 30,
		NGlass:       nGlass,
		NAir:         nAir,
		NSoftPolymer: nSoftPolymer,
		NHardPolymer: nHardPolymer,
		CoreFactor:   .75,
		Wavelength:   1.8e-6,
	}
}

// Variants is the table of built-in designs keyed by name.
var Variants = map[string]Params{
	"poletti": func() (p Params) {
		p = baseParams("poletti")
		p.RTube, p.TTube, p.TBuffer = 12.48, .42, 10
		p.Maxh = MeshSizes{Core: .25, FillAir: .25, Tube: .11, InnerAir: .25, Cladding: .33}
		p.BufferMaxh, p.OuterMaxh = 2, 2
		return
	}(),
	"basic": func() (p Params) {
		p = baseParams("basic")
		p.RTube, p.TTube, p.TBuffer = 12.06, .84, 10
		p.Maxh = MeshSizes{Core: .25, FillAir: .35, Tube: .11, InnerAir: .2, Cladding: .25}
		p.BufferMaxh, p.OuterMaxh = 2, 4
		return
	}(),
	"fine_cladding": func() (p Params) {
		p = baseParams("fine_cladding")
		p.RTube, p.TTube, p.TBuffer = 12.48, .42, 30
		p.Maxh = MeshSizes{Core: .25, FillAir: .2, Tube: .11, InnerAir: .2, Cladding: .25, Glass: .05}
		p.BufferMaxh, p.OuterMaxh = .5, 2
		return
	}(),
}

// Names returns the built-in design names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Variants))
	for name := range Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
