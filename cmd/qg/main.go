package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/bkyoung/qualgate/internal/adapter/cli"
	"github.com/bkyoung/qualgate/internal/adapter/git"
	"github.com/bkyoung/qualgate/internal/adapter/observability"
	jsonout "github.com/bkyoung/qualgate/internal/adapter/output/json"
	sarifout "github.com/bkyoung/qualgate/internal/adapter/output/sarif"
	textout "github.com/bkyoung/qualgate/internal/adapter/output/text"
	"github.com/bkyoung/qualgate/internal/adapter/tool"
	"github.com/bkyoung/qualgate/internal/config"
	"github.com/bkyoung/qualgate/internal/usecase/check"
	"github.com/bkyoung/qualgate/internal/version"
)

const (
	exitPass  = 0
	exitFail  = 1
	exitError = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	// Cancellable context with signal handling so an interrupt reaches every
	// in-flight child process before we return.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	toolRunner := tool.NewRunner()
	gitEngine := git.NewEngine()

	// Colored verdicts only when a human is watching.
	colorOutput := term.IsTerminal(int(os.Stdout.Fd()))

	orchestrator := check.NewOrchestrator(check.OrchestratorDeps{
		LoadConfig: loadConfig,
		Tools:      toolRunner,
		Git:        gitEngine,
		Renderers: map[string]check.Renderer{
			"text":  textout.NewRenderer(colorOutput),
			"json":  jsonout.NewRenderer(),
			"sarif": sarifout.NewRenderer("qualgate", version.Value()),
		},
		MakeLogger: makeLogger,
	})

	root := cli.NewRootCommand(cli.Dependencies{
		Checker: orchestrator,
		Version: version.Value(),
	})

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitPass
	case errors.Is(err, cli.ErrVersionRequested):
		return exitPass
	case errors.Is(err, cli.ErrGateFailed):
		return exitFail
	default:
		// Configuration errors, tool-infrastructure errors, and the ERROR
		// verdict all land here: distinct from a quality failure.
		if !errors.Is(err, cli.ErrRunErrored) {
			log.Println(err)
		}
		return exitError
	}
}

func loadConfig(configFile string) (config.Config, error) {
	return config.Load(config.LoaderOptions{
		ConfigFile:  configFile,
		ConfigPaths: defaultConfigPaths(),
		FileName:    "qg",
		EnvPrefix:   "QG",
	})
}

func makeLogger(debug bool) (check.Logger, error) {
	return observability.NewLogger(debug)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "qg"))
	}
	return paths
}

// Compile-time interface compliance checks
var _ check.ToolRunner = (*tool.Runner)(nil)
var _ check.GitEngine = (*git.Engine)(nil)
var _ check.Renderer = (*textout.Renderer)(nil)
var _ check.Renderer = (*jsonout.Renderer)(nil)
var _ check.Renderer = (*sarifout.Renderer)(nil)
