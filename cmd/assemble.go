package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/dgresidual/InputParameters"
	"github.com/notargets/dgresidual/dg"
	"github.com/notargets/dgresidual/observability"
	"github.com/notargets/dgresidual/utils"
)

type AssembleOptions struct {
	ICFile                string
	Flags                 dg.Flags
	DualWeight            float64
	ArtificialDissipation float64
	Mass                  bool
	ParallelDegree        int
	MetricsFile           string
	Perf                  bool
	Profile               string // cpu, mem or empty
	ProfilePath           string
	LogFormat, LogLevel   string
	PrintInput            bool
}

// AssembleCmd represents the assemble command
var AssembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble the residual of an input case and its requested derivatives",
	Long: `
Reads a YAML input file describing the mesh, the PDE and the discretization,
interpolates the initial condition and runs one assembly pass.

dgresidual assemble -I case.yaml --dRdW --metricsFile pass.prom`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		opts := &AssembleOptions{
			LogFormat:      viper.GetString("logFormat"),
			LogLevel:       viper.GetString("logLevel"),
			ParallelDegree: viper.GetInt("parallelDegree"),
		}
		fl := cmd.Flags()
		if opts.ICFile, err = fl.GetString("inputConditionsFile"); err != nil {
			return
		}
		opts.Flags.DRdW, _ = fl.GetBool("dRdW")
		opts.Flags.DRdX, _ = fl.GetBool("dRdX")
		opts.Flags.D2R, _ = fl.GetBool("d2R")
		opts.DualWeight, _ = fl.GetFloat64("dualWeight")
		opts.ArtificialDissipation, _ = fl.GetFloat64("artificialDissipation")
		opts.Mass, _ = fl.GetBool("mass")
		opts.MetricsFile, _ = fl.GetString("metricsFile")
		opts.Perf, _ = fl.GetBool("perf")
		opts.Profile, _ = fl.GetString("profile")
		opts.ProfilePath, _ = fl.GetString("profilePath")
		opts.PrintInput, _ = fl.GetBool("print")
		return RunAssemble(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
	},
}

func init() {
	rootCmd.AddCommand(AssembleCmd)
	fl := AssembleCmd.Flags()
	fl.StringP("inputConditionsFile", "I", "", "YAML file describing mesh, PDE and discretization")
	fl.Bool("dRdW", false, "assemble dR/dW into the system matrix")
	fl.Bool("dRdX", false, "assemble dR/dX")
	fl.Bool("d2R", false, "assemble the second derivatives of the dual weighted residual")
	fl.Float64("dualWeight", 1, "value of every dual weight")
	fl.Float64("artificialDissipation", 0, "artificial dissipation coefficient of every cell")
	fl.Bool("mass", false, "also assemble the mass matrix and its inverse")
	fl.IntP("parallelDegree", "n", 0, "number of partitions, 0 keeps the value of the input file")
	fl.String("metricsFile", "", "write prometheus metrics of the pass to this textfile")
	fl.Bool("perf", false, "count cpu cycles of the pass with hardware counters")
	fl.String("profile", "", "write a pprof profile: cpu or mem")
	fl.String("profilePath", ".", "directory for the pprof profile")
	fl.BoolP("print", "p", false, "print the input parameters")
	if err := viper.BindPFlag("parallelDegree", fl.Lookup("parallelDegree")); err != nil {
		panic(err)
	}
}

// RunAssemble builds the case of opts.ICFile, runs one pass and writes a
// summary table to out. Log records go to errOut.
func RunAssemble(out, errOut io.Writer, opts *AssembleOptions) (err error) {
	var (
		ip     = &InputParameters.InputParameters{}
		data   []byte
		params dg.Parameters
		d      *dg.DG
		reg    = prometheus.NewRegistry()
		am     *observability.AssemblyMetrics
		rep    = &assembleReport{flags: opts.Flags}
	)
	if len(opts.ICFile) == 0 {
		return fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
	}
	if err = opts.Flags.Validate(); err != nil {
		return
	}
	if data, err = os.ReadFile(opts.ICFile); err != nil {
		return
	}
	if err = ip.Parse(data); err != nil {
		return fmt.Errorf("parse %s: %w", opts.ICFile, err)
	}
	if opts.PrintInput {
		ip.Print()
	}
	logger, err := observability.NewLogger(errOut, observability.LogFormat(opts.LogFormat), opts.LogLevel)
	if err != nil {
		return
	}
	if am, err = observability.NewAssemblyMetrics(reg); err != nil {
		return
	}
	m, err := ip.Mesh()
	if err != nil {
		return
	}
	if params, err = ip.DGParameters(); err != nil {
		return
	}
	if opts.ParallelDegree != 0 {
		params.ParallelDegree = opts.ParallelDegree
	}
	if d, err = dg.NewDG(params, m, dg.WithLogger(logger), dg.WithMetrics(am)); err != nil {
		return
	}
	d.AllocateSystem()
	if err = setupCase(d, ip, opts); err != nil {
		return
	}
	if opts.Mass {
		if err = d.EvaluateMassMatrices(true); err != nil {
			return
		}
		rep.mass = true
	}
	pass := func() error { return d.AssembleResidual(opts.Flags) }
	if opts.Profile != "" {
		var stop func()
		if stop, err = startProfile(opts.Profile, opts.ProfilePath); err != nil {
			return
		}
		defer stop()
	}
	if opts.Perf {
		rep.cycles, rep.counted, err = countCycles(pass)
	} else {
		err = pass()
	}
	if opts.MetricsFile != "" {
		if werr := observability.WriteTextfile(opts.MetricsFile, reg); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return
	}
	rep.title = ip.Title
	rep.render(out, d)
	return
}

func setupCase(d *dg.DG, ip *InputParameters.InputParameters, opts *AssembleOptions) (err error) {
	var (
		ic func(x []float64) []float64
	)
	if ic, err = ip.Initializer(); err != nil {
		return
	}
	if ic != nil {
		if err = d.InitializeSolution(ic); err != nil {
			return
		}
	}
	if err = d.SetDualWeights(utils.ConstArray(d.DualWeights.Len(), opts.DualWeight)); err != nil {
		return
	}
	if opts.ArtificialDissipation != 0 {
		err = d.SetArtificialDissipation(
			utils.ConstArray(len(d.ArtificialDissipation), opts.ArtificialDissipation))
	}
	return
}

func startProfile(mode, path string) (stop func(), err error) {
	var (
		p interface{ Stop() }
	)
	switch mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath(path), profile.NoShutdownHook, profile.Quiet)
	case "mem":
		p = profile.Start(profile.MemProfile, profile.ProfilePath(path), profile.NoShutdownHook, profile.Quiet)
	default:
		return nil, fmt.Errorf("unknown profile mode %q, want cpu or mem", mode)
	}
	return p.Stop, nil
}

type assembleReport struct {
	title   string
	flags   dg.Flags
	mass    bool
	cycles  uint64
	counted bool
}

func (rep *assembleReport) render(out io.Writer, d *dg.DG) {
	var (
		st  = d.Stats
		tbl = table.NewWriter()
	)
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(rep.title)
	tbl.AppendHeader(table.Row{"Quantity", "Value"})
	tbl.AppendRow(table.Row{"mode", st.Mode})
	tbl.AppendRow(table.Row{"cells", st.Cells})
	tbl.AppendRow(table.Row{"solution dofs", d.Solution.Len()})
	tbl.AppendRow(table.Row{"geometry dofs", d.GeometryNodes.Len()})
	for _, k := range sortedKeys(st.Faces) {
		tbl.AppendRow(table.Row{"faces " + k, st.Faces[k]})
	}
	tbl.AppendRow(table.Row{"faces skipped", st.Skipped})
	for _, k := range sortedKeys(st.KernelCalls) {
		tbl.AppendRow(table.Row{"calls " + k, st.KernelCalls[k]})
	}
	tbl.AppendSeparator()
	for _, m := range writtenMatrices(d, rep.flags, rep.mass) {
		r, c := m.Dims()
		tbl.AppendRow(table.Row{"nnz " + m.Name(), fmt.Sprintf("%d (%dx%d)", m.NNZ(), r, c)})
	}
	tbl.AppendRow(table.Row{"duration", st.Duration})
	if rep.counted {
		tbl.AppendRow(table.Row{"cpu cycles", rep.cycles})
	}
	tbl.AppendSeparator()
	tbl.AppendRow(table.Row{"residual norm", fmt.Sprintf("%.6e", st.ResidualNorm)})
	tbl.Render()
}

func writtenMatrices(d *dg.DG, f dg.Flags, mass bool) (ms []*utils.DOK) {
	if f.DRdW {
		ms = append(ms, &d.SystemMatrix)
	}
	if f.DRdX {
		ms = append(ms, &d.DRdX)
	}
	if f.D2R {
		ms = append(ms, &d.D2RdWdW, &d.D2RdWdX, &d.D2RdXdW, &d.D2RdXdX)
	}
	if mass {
		ms = append(ms, &d.GlobalMassMatrix, &d.GlobalInverseMass)
	}
	return
}

func sortedKeys(m map[string]int) (keys []string) {
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}
