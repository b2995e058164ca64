// Package cli wires the cobra command surface onto the check orchestrator.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/qualgate/internal/domain"
	"github.com/bkyoung/qualgate/internal/usecase/check"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// ErrGateFailed indicates the quality gate verdict was FAIL. The process
// should exit 1.
var ErrGateFailed = errors.New("quality gate failed")

// ErrRunErrored indicates the verdict was ERROR: an infrastructure or tool
// failure distinct from a quality failure. The process should exit 2.
var ErrRunErrored = errors.New("quality run errored")

// Checker defines the dependency required to run the check command.
type Checker interface {
	Check(ctx context.Context, req check.Request) (check.Result, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Checker Checker
	Args    Arguments
	Version string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "qg",
		Short: "Quality-gate orchestrator for external static-analysis tools",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(checkCommand(deps.Checker, outWriter))
	root.AddCommand(versionCommand(versionString))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func checkCommand(checker Checker, defaultOut io.Writer) *cobra.Command {
	var configFile string
	var failOn string
	var format string
	var outputPath string
	var changedOnly bool
	var baseRef string
	var debug bool

	cmd := &cobra.Command{
		Use:   "check [targets...]",
		Short: "Run the configured analysis tools and evaluate the quality gate",
		Long: `Runs every enabled tool from the configuration over the target paths,
aggregates their findings into one report, and evaluates the quality gate.

Exit codes: 0 when the gate passes, 1 when it fails, 2 on configuration or
tool-infrastructure errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := checker.Check(cmd.Context(), check.Request{
				ConfigFile:  configFile,
				Targets:     args,
				FailOn:      failOn,
				Format:      format,
				ChangedOnly: changedOnly,
				BaseRef:     baseRef,
				Debug:       debug,
			})
			if err != nil {
				if errors.Is(err, check.ErrConfig) {
					return err
				}
				return fmt.Errorf("check failed: %w", err)
			}

			// The flag wins; otherwise the configured output.path applies.
			destination := outputPath
			if destination == "" {
				destination = result.OutputPath
			}
			if err := writeReport(result.Rendered, destination, defaultOut); err != nil {
				return err
			}

			switch result.Report.Verdict {
			case domain.VerdictFail:
				return ErrGateFailed
			case domain.VerdictError:
				return ErrRunErrored
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Configuration file path (default: qg.yaml discovery)")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Fail when any issue at or above this severity is found")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Report format: text, json, or sarif")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&changedOnly, "changed-only", false, "Analyse only files changed against the base ref")
	cmd.Flags().StringVar(&baseRef, "base-ref", "", "Base ref for --changed-only (default from config)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}

func versionCommand(versionString string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the qg version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return err
		},
	}
}

func writeReport(rendered []byte, outputPath string, defaultOut io.Writer) error {
	if outputPath == "" {
		_, err := defaultOut.Write(rendered)
		return err
	}
	if err := os.WriteFile(outputPath, rendered, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
