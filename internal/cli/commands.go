package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xab-mack/solhunt/internal/engine"
	"github.com/xab-mack/solhunt/internal/logging"
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/report"
	"github.com/xab-mack/solhunt/internal/tui"
)

// ErrThreshold is returned by scan when --fail-on matched a finding.
var ErrThreshold = errors.New("findings at or above the fail-on severity")

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrThreshold):
		return 1
	default:
		return 2
	}
}

// globals are the persistent flags shared by every command.
type globals struct {
	debug   bool
	noColor bool
	fs      afero.Fs
	log     *zap.Logger
}

func AddCommands(root *cobra.Command) {
	addCommands(root, &globals{fs: afero.NewOsFs(), log: zap.NewNop()})
}

func addCommands(root *cobra.Command, g *globals) {
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable coloured output")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if g.noColor {
			color.NoColor = true
		}
		l, err := logging.New(g.debug)
		if err != nil {
			return err
		}
		g.log = l
		return nil
	}

	root.AddCommand(newScanCmd(g))
	root.AddCommand(newInitCmd(g))
	root.AddCommand(newModulesCmd())
	root.AddCommand(newVersionCmd())
}

type scanFlags struct {
	format        string
	outputFile    string
	configPath    string
	solcOutput    string
	solcVersion   string
	modules       []string
	minSeverity   string
	baseline      string
	writeBaseline string
	failOn        string
	budget        time.Duration
	useTUI        bool
}

func newScanCmd(g *globals) *cobra.Command {
	var f scanFlags
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Analyze the Solidity sources of a project",
		Long: `Compile the project with solc (or load a pre-generated standard JSON output)
and run every selected detection module over the resulting syntax trees.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runScan(cmd.Context(), cmd, g, path, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.format, "format", "f", "table", "Output format: table|json|markdown|sarif")
	fl.StringVarP(&f.outputFile, "out", "o", "", "Write the report to a file instead of stdout")
	fl.StringVarP(&f.configPath, "config", "c", "", "Config file (default: search for .solhunt.toml upward)")
	fl.StringVar(&f.solcOutput, "solc-output", "", "Use a pre-generated solc --standard-json output instead of running solc")
	fl.StringVar(&f.solcVersion, "solc-version", "", "Compiler version the sources were built with")
	fl.StringSliceVarP(&f.modules, "modules", "m", nil, "Run only these modules (comma separated)")
	fl.StringVar(&f.minSeverity, "min-severity", "", "Hide findings below this severity (informal|gas|low|medium|high)")
	fl.StringVar(&f.baseline, "baseline", "", "Hide findings recorded in this baseline file (relative to the scan root)")
	fl.StringVar(&f.writeBaseline, "write-baseline", "", "Record the fingerprints of all findings not hidden by ignore rules (relative to the scan root)")
	fl.StringVar(&f.failOn, "fail-on", "", "Exit with status 1 if a finding of this severity or higher is reported")
	fl.DurationVar(&f.budget, "budget", 0, "Time budget for the whole scan, e.g. 90s (default from config)")
	fl.BoolVar(&f.useTUI, "tui", false, "Browse findings interactively")
	return cmd
}

func runScan(ctx context.Context, cmd *cobra.Command, g *globals, path string, f scanFlags) error {
	format, err := report.ParseFormat(f.format)
	if err != nil {
		return err
	}
	req := model.ScanRequest{
		Path:              path,
		ConfigPath:        f.configPath,
		SolcOutput:        f.solcOutput,
		SolcVersion:       f.solcVersion,
		Modules:           f.modules,
		BaselinePath:      f.baseline,
		WriteBaselinePath: f.writeBaseline,
		TimeBudget:        f.budget,
	}
	if f.minSeverity != "" {
		s, ok := model.LookupSeverity(f.minSeverity)
		if !ok {
			return model.NewError(model.CodeConfiguration, fmt.Sprintf("unknown severity %q", f.minSeverity))
		}
		req.MinSeverity = &s
	}
	var failOn *model.Severity
	if f.failOn != "" {
		s, ok := model.LookupSeverity(f.failOn)
		if !ok {
			return model.NewError(model.CodeConfiguration, fmt.Sprintf("unknown severity %q", f.failOn))
		}
		failOn = &s
	}

	res, err := engine.New(g.fs, g.log).Scan(ctx, req)
	if err != nil {
		g.log.Error("scan failed", zap.Error(err))
		return err
	}

	if f.useTUI {
		if err := tui.Run(res); err != nil {
			return err
		}
	} else if err := writeReport(cmd, g.fs, format, f.outputFile, res); err != nil {
		return err
	}

	if failOn != nil {
		for _, mf := range res.Findings.Flatten() {
			if model.SeverityGTE(mf.Severity, *failOn) {
				return fmt.Errorf("%w (%s)", ErrThreshold, failOn)
			}
		}
	}
	return nil
}

func writeReport(cmd *cobra.Command, fs afero.Fs, format report.Format, out string, res *model.ScanResult) error {
	if out == "" {
		return report.Write(cmd.OutOrStdout(), format, res)
	}
	if format == report.FormatTable {
		color.NoColor = true
	}
	var b strings.Builder
	if err := report.Write(&b, format, res); err != nil {
		return err
	}
	if err := afero.WriteFile(fs, out, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "report written to %s (%d findings)\n", out, res.Findings.Count())
	return nil
}
