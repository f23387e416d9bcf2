package cli

import (
	"fmt"
	"path/filepath"

	"github.com/hugo-vanthournhout/hv-cli/internal/assistant"
	"github.com/hugo-vanthournhout/hv-cli/internal/config"
	"github.com/hugo-vanthournhout/hv-cli/internal/exporter"
	"github.com/hugo-vanthournhout/hv-cli/internal/render"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newAICmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Export project context for AI assistants",
	}
	cmd.AddCommand(
		newPrintProjectCmd(app),
		newClaudeCmd(app),
		newProcessAndClaudeCmd(app),
		newDBTCmd(app),
		newHistoryCmd(app),
	)
	return cmd
}

func rootArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func newPrintProjectCmd(app *App) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:     "print_project [root]",
		Aliases: []string{"pp"},
		Short:   "Concatenate a project's text files into one file",
		Long: `Walk a project directory and write every allowed, non-ignored text file
into a single artifact, each file preceded by a "*# <relative path>*" header.

Examples:
  hv ai pp                          # export the current directory
  hv ai pp ~/code/app -o ctx.txt    # export to a custom file
  hv ai pp --ignore "tests/*"       # add ignore patterns for this run
  hv ai pp --stdout | less          # print instead of writing
  hv ai pp --watch                  # re-export on every change`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.command = "print_project"
			opts.root = rootArg(args)
			if opts.watch && opts.stdout {
				return fmt.Errorf("--watch cannot be combined with --stdout")
			}

			result, err := app.runExport(cmd.Context(), opts)
			if err != nil || result == nil || !opts.watch {
				return err
			}
			return app.watchAndExport(cmd.Context(), opts, result)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default from ai.output_file)")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "print the artifact instead of writing a file")
	cmd.Flags().StringArrayVar(&opts.ignores, "ignore", nil, "additional ignore glob, may be repeated")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "export protected paths without asking")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-export whenever the project changes")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "show why each skipped file was skipped")
	return cmd
}

func newClaudeCmd(app *App) *cobra.Command {
	var input, prompt, copyMode string

	cmd := &cobra.Command{
		Use:     "claude",
		Aliases: []string{"c"},
		Short:   "Hand an exported artifact to the AI assistant",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				input = app.Config.AI.OutputFile
			}
			if prompt == "" {
				prompt = app.Config.AI.DefaultPrompt
			}
			return app.sendArtifact(cmd, input, prompt, copyMode)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "artifact to send (default from ai.output_file)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt sent with the artifact (default from ai.default_prompt)")
	cmd.Flags().StringVar(&copyMode, "copy-mode", "", fmt.Sprintf("what to send: %s, %s or %s", config.CopyModePrompt, config.CopyModeFile, config.CopyModeBoth))
	return cmd
}

func newProcessAndClaudeCmd(app *App) *cobra.Command {
	var opts exportOptions
	var prompt string

	cmd := &cobra.Command{
		Use:     "process_and_claude [root]",
		Aliases: []string{"pc"},
		Short:   "Export a project and hand it to the AI assistant",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.command = "process_and_claude"
			opts.root = rootArg(args)

			result, err := app.runExport(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if prompt == "" {
				prompt = app.Config.AI.DefaultPrompt
			}
			return app.sendArtifact(cmd, result.Output, prompt, config.CopyModeBoth)
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt sent with the artifact (default from ai.default_prompt)")
	cmd.Flags().StringArrayVar(&opts.ignores, "ignore", nil, "additional ignore glob, may be repeated")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "export protected paths without asking")
	return cmd
}

func newDBTCmd(app *App) *cobra.Command {
	var opts exportOptions
	var prompt string

	cmd := &cobra.Command{
		Use:   "dbt [root]",
		Short: "Export the models, macros and analyses of a dbt project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.command = "dbt"
			opts.root = rootArg(args)
			opts.rules = exporter.DBTRules()

			result, err := app.runExport(cmd.Context(), opts)
			if err != nil || opts.stdout {
				return err
			}
			if prompt == "" {
				prompt = app.Config.AI.DefaultPrompt
			}
			return app.sendArtifact(cmd, result.Output, prompt, config.CopyModeBoth)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default from ai.output_file)")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "print the artifact instead of writing a file")
	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt sent with the artifact (default from ai.default_prompt)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "export protected paths without asking")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int
	var reset bool

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recent exports, or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.History == nil {
				return fmt.Errorf("export history is unavailable")
			}

			r := render.New(cmd.OutOrStdout(), app.TermWidth)
			if reset {
				if err := app.History.ResetHistory(); err != nil {
					return fmt.Errorf("failed to reset history: %w", err)
				}
				r.RenderInfo("history cleared")
				return nil
			}

			if len(args) == 1 {
				run, err := app.History.GetRun(args[0])
				if err != nil {
					return err
				}
				r.RenderRun(run)
				return nil
			}

			runs, err := app.History.GetRecentRuns("", limit)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
			r.RenderHistory(runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete all recorded runs")
	return cmd
}

// sendArtifact reads the artifact at input and hands it to the assistant.
func (a *App) sendArtifact(cmd *cobra.Command, input, prompt, copyMode string) error {
	content, err := afero.ReadFile(a.Fs, input)
	if err != nil {
		return fmt.Errorf("cannot read artifact %s: %w", input, err)
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		abs = input
	}

	r := render.New(cmd.OutOrStdout(), a.TermWidth)
	outcome, err := a.Assistant.Send(cmd.Context(), assistant.Handoff{
		Source:       filepath.Base(input),
		ArtifactPath: abs,
		Content:      string(content),
		Prompt:       prompt,
		CopyMode:     copyMode,
	})
	if err != nil {
		return err
	}

	switch outcome.Mode {
	case config.AssistantModeClipboard:
		if outcome.Copied {
			r.RenderInfo("payload copied to clipboard")
		} else {
			r.RenderError("clipboard unavailable, copy the payload below")
			fmt.Fprintln(cmd.OutOrStdout(), outcome.Payload)
		}
		if outcome.ChatURL != "" && !outcome.Opened {
			r.RenderInfo("open " + outcome.ChatURL + " and paste the payload")
		}
	case config.AssistantModeOpenAI:
		r.RenderReply(outcome.Model, outcome.Reply)
	}
	return nil
}
