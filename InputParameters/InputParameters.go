package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/dgresidual/dg"
	"github.com/notargets/dgresidual/mesh"
	"github.com/notargets/dgresidual/physics"
	"github.com/notargets/dgresidual/types"
)

// BoundaryInput attaches a condition to a boundary id. Value holds one
// expression of x, y, z per state; empty means the model's default.
type BoundaryInput struct {
	Type  string   `json:"Type"`
	Value []string `json:"Value"`
}

// Parameters obtained from the YAML input file
type InputParameters struct {
	Title string `json:"Title"`
	// Mesh
	Dimension      int       `json:"Dimension"`
	Subdivisions   []int     `json:"Subdivisions"`
	Lower          []float64 `json:"Lower"`
	Upper          []float64 `json:"Upper"`
	Periodic       []int     `json:"Periodic"` // directions joined end to end
	GeometryDegree int       `json:"GeometryDegree"`
	Warp           float64   `json:"Warp"`   // amplitude of the sinusoidal interior warp
	Refine         [][]int   `json:"Refine"` // cells refined in each round
	// Physics
	PDE                  string                `json:"PDE"`
	AdvectionSpeed       []float64             `json:"AdvectionSpeed"`
	DiffusionCoefficient float64               `json:"DiffusionCoefficient"`
	Gamma                float64               `json:"Gamma"`
	FreeStream           []float64             `json:"FreeStream"`
	ManufacturedSolution bool                  `json:"ManufacturedSolution"`
	BCs                  map[int]BoundaryInput `json:"BCs"`
	InitialCondition     []string              `json:"InitialCondition"`
	// Discretization
	PolynomialOrder          int    `json:"PolynomialOrder"`
	ConvectiveFlux           string `json:"ConvectiveFlux"`
	DissipativeFlux          string `json:"DissipativeFlux"`
	OverIntegration          int    `json:"OverIntegration"`
	UseCollocatedNodes       bool   `json:"UseCollocatedNodes"`
	UsePeriodicBC            bool   `json:"UsePeriodicBC"`
	AddArtificialDissipation bool   `json:"AddArtificialDissipation"`
	ParallelDegree           int    `json:"ParallelDegree"`
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t= PDE\n", ip.PDE)
	fmt.Printf("[%d]\t\t\t\t= Dimension\n", ip.Dimension)
	fmt.Printf("%v\t\t\t= Subdivisions\n", ip.Subdivisions)
	fmt.Printf("%v -> %v\t= Bounds\n", ip.Lower, ip.Upper)
	fmt.Printf("[%d]\t\t\t\t= Geometry Degree\n", ip.GeometryDegree)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%s]\t\t= Convective Flux\n", ip.ConvectiveFlux)
	fmt.Printf("[%s]\t\t= Dissipative Flux\n", ip.DissipativeFlux)
	keys := make([]int, len(ip.BCs))
	i := 0
	for k := range ip.BCs {
		keys[i] = k
		i++
	}
	sort.Ints(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%d] = %s %v\n", key, ip.BCs[key].Type, ip.BCs[key].Value)
	}
	if len(ip.InitialCondition) != 0 {
		fmt.Printf("InitialCondition = [%s]\n", strings.Join(ip.InitialCondition, ", "))
	}
}

// Mesh builds the hypercube described by the input, applying every
// refinement round in order.
func (ip *InputParameters) Mesh() (m *mesh.Hypercube, err error) {
	var (
		opts     []mesh.Option
		geomDeg  = ip.GeometryDegree
		lo, hi   = ip.Lower, ip.Upper
		nSubdivs = ip.Subdivisions
	)
	if geomDeg == 0 {
		geomDeg = 1
	}
	if len(lo) == 0 {
		lo = make([]float64, ip.Dimension)
	}
	if len(hi) == 0 {
		hi = make([]float64, ip.Dimension)
		for d := range hi {
			hi[d] = 1
		}
	}
	if len(nSubdivs) == 0 {
		nSubdivs = make([]int, ip.Dimension)
		for d := range nSubdivs {
			nSubdivs[d] = 1
		}
	}
	if len(ip.Periodic) != 0 {
		opts = append(opts, mesh.WithPeriodic(ip.Periodic...))
	}
	if ip.Warp != 0 {
		opts = append(opts, mesh.WithWarp(mesh.SinusoidalWarp(ip.Warp, lo, hi)))
	}
	for _, d := range ip.Periodic {
		if d < 0 || d >= ip.Dimension {
			return nil, fmt.Errorf("periodic direction %d in %d-D", d, ip.Dimension)
		}
	}
	if m, err = mesh.NewHypercube(ip.Dimension, nSubdivs, lo, hi, geomDeg, opts...); err != nil {
		return
	}
	for round, cells := range ip.Refine {
		if err = m.Refine(cells...); err != nil {
			return nil, fmt.Errorf("refinement round %d: %w", round, err)
		}
	}
	return
}

// DGParameters converts the physics and discretization sections.
func (ip *InputParameters) DGParameters() (p dg.Parameters, err error) {
	var (
		pde physics.PDEType
	)
	if pde, err = physics.NewPDEType(ip.PDE); err != nil {
		return
	}
	p = dg.Parameters{
		Physics: physics.Parameters{
			PDE:                  pde,
			Dim:                  ip.Dimension,
			AdvectionSpeed:       ip.AdvectionSpeed,
			DiffusionCoefficient: ip.DiffusionCoefficient,
			Gamma:                ip.Gamma,
			FreeStream:           ip.FreeStream,
			ManufacturedSolution: ip.ManufacturedSolution,
			BCs:                  make(map[int]physics.BoundaryCondition, len(ip.BCs)),
		},
		PolynomialOrder:          ip.PolynomialOrder,
		ConvectiveFlux:           ip.ConvectiveFlux,
		DissipativeFlux:          ip.DissipativeFlux,
		OverIntegration:          ip.OverIntegration,
		UseCollocatedNodes:       ip.UseCollocatedNodes,
		UsePeriodicBC:            ip.UsePeriodicBC,
		AddArtificialDissipation: ip.AddArtificialDissipation,
		ParallelDegree:           ip.ParallelDegree,
	}
	nState := pde.NState(ip.Dimension)
	for id, bi := range ip.BCs {
		var (
			bc physics.BoundaryCondition
		)
		if bc.Type, err = types.NewBCFLAG(bi.Type); err != nil {
			return p, fmt.Errorf("boundary %d: %w", id, err)
		}
		if len(bi.Value) != 0 {
			if len(bi.Value) != nState {
				return p, fmt.Errorf("boundary %d: %d values for %d states", id, len(bi.Value), nState)
			}
			if bc.Value, err = CompileField(bi.Value); err != nil {
				return p, fmt.Errorf("boundary %d: %w", id, err)
			}
		}
		p.Physics.BCs[id] = bc
	}
	return
}

// Initializer returns the initial condition as a field of x, or nil when
// the input has none.
func (ip *InputParameters) Initializer() (fn func(x []float64) []float64, err error) {
	if len(ip.InitialCondition) == 0 {
		return
	}
	return CompileField(ip.InitialCondition)
}
