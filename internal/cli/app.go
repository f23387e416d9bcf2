// Package cli implements the hv command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/hugo-vanthournhout/hv-cli/internal/assistant"
	"github.com/hugo-vanthournhout/hv-cli/internal/config"
	"github.com/hugo-vanthournhout/hv-cli/internal/history"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// HistoryStore records export runs. *history.HistoryManager implements it.
type HistoryStore interface {
	RecordRun(run history.ExportRun) (*history.ExportRun, error)
	GetRecentRuns(root string, limit int) ([]history.ExportRun, error)
	GetRun(runID string) (*history.ExportRun, error)
	ResetHistory() error
}

// Sender delivers an artifact to an assistant. *assistant.Assistant
// implements it.
type Sender interface {
	Send(ctx context.Context, h assistant.Handoff) (*assistant.Outcome, error)
}

// App carries everything the commands need. Zero-valued fields are filled
// with defaults by NewRootCmd.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Version string

	// History may be nil when the history database could not be opened.
	History   HistoryStore
	Assistant Sender
	Confirmer Confirmer

	Fs      afero.Fs
	HomeDir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive reports whether the user can answer prompts.
	Interactive func() bool
	// TermWidth returns the terminal width used to wrap replies.
	TermWidth func() int
}

func (a *App) setDefaults() {
	if a.Config == nil {
		a.Config = config.DefaultConfig()
	}
	if a.Logger == nil {
		a.Logger = zap.NewNop()
	}
	if a.Version == "" {
		a.Version = "dev"
	}
	if a.Fs == nil {
		a.Fs = afero.NewOsFs()
	}
	if a.HomeDir == "" {
		a.HomeDir, _ = os.UserHomeDir()
	}
	if a.Stdin == nil {
		a.Stdin = os.Stdin
	}
	if a.Stdout == nil {
		a.Stdout = os.Stdout
	}
	if a.Stderr == nil {
		a.Stderr = os.Stderr
	}
	if a.Interactive == nil {
		a.Interactive = func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
		}
	}
	if a.TermWidth == nil {
		a.TermWidth = func() int {
			width, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil {
				return 0
			}
			return width
		}
	}
	if a.Confirmer == nil {
		a.Confirmer = NewSurveyConfirmer()
	}
	if a.Assistant == nil {
		a.Assistant = assistant.New(a.Config.AI.Assistant, assistant.Options{
			Stdin:  a.Stdin,
			Stdout: a.Stdout,
			Stderr: a.Stderr,
			Logger: a.Logger,
		})
	}
}

// Execute runs the hv command line with args.
func Execute(ctx context.Context, app *App, args []string) error {
	root := NewRootCmd(app)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
