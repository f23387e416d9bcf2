// Package assistant hands an exported artifact to an AI assistant: through
// the clipboard and a browser tab, through a user-configured shell command,
// or directly to an OpenAI-compatible API.
package assistant

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hugo-vanthournhout/hv-cli/internal/bash"
	"github.com/hugo-vanthournhout/hv-cli/internal/config"
	"go.uber.org/zap"
)

// Handoff is one artifact to deliver.
type Handoff struct {
	// Source labels the document in the payload, usually the artifact file name.
	Source string
	// ArtifactPath is the artifact on disk, if it was written.
	ArtifactPath string
	Content      string
	Prompt       string
	// CopyMode overrides the configured copy mode when set.
	CopyMode string
}

// Outcome reports what a delivery did.
type Outcome struct {
	Mode string
	// Copied is false when the clipboard could not be used; Payload then
	// holds the text for manual copying.
	Copied  bool
	Payload string
	// Opened is false when the chat URL could not be opened.
	Opened  bool
	ChatURL string

	Model string
	Reply string
}

type Options struct {
	Clipboard Clipboard
	Opener    Opener
	// Completer is created from the configuration on first use when nil.
	Completer Completer

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger *zap.Logger
}

type Assistant struct {
	cfg       config.AssistantConfig
	clipboard Clipboard
	opener    Opener
	completer Completer
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	logger    *zap.Logger
}

func New(cfg config.AssistantConfig, opts Options) *Assistant {
	a := &Assistant{
		cfg:       cfg,
		clipboard: opts.Clipboard,
		opener:    opts.Opener,
		completer: opts.Completer,
		stdin:     opts.Stdin,
		stdout:    opts.Stdout,
		stderr:    opts.Stderr,
		logger:    opts.Logger,
	}
	if a.clipboard == nil {
		a.clipboard = SystemClipboard()
	}
	if a.opener == nil {
		a.opener = NewBrowserOpener(cfg.Browser)
	}
	if a.stdin == nil {
		a.stdin = os.Stdin
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return a
}

// Send delivers h using the configured mode.
func (a *Assistant) Send(ctx context.Context, h Handoff) (*Outcome, error) {
	copyMode := h.CopyMode
	if copyMode == "" {
		copyMode = a.cfg.CopyMode
	}
	payload := Payload(copyMode, h.Source, h.Content, h.Prompt)

	a.logger.Debug("sending artifact to assistant",
		zap.String("mode", a.cfg.Mode),
		zap.String("copy_mode", copyMode),
		zap.Int("payload_bytes", len(payload)))

	switch a.cfg.Mode {
	case config.AssistantModeCommand:
		return a.sendCommand(ctx, h, payload)
	case config.AssistantModeOpenAI:
		return a.sendOpenAI(ctx, payload)
	default:
		return a.sendClipboard(ctx, payload)
	}
}

func (a *Assistant) sendClipboard(ctx context.Context, payload string) (*Outcome, error) {
	outcome := &Outcome{Mode: config.AssistantModeClipboard, ChatURL: a.cfg.ChatURL}

	if err := a.clipboard.WriteAll(payload); err != nil {
		a.logger.Warn("failed to copy payload to clipboard", zap.Error(err))
		outcome.Payload = payload
	} else {
		outcome.Copied = true
	}

	if a.cfg.ChatURL == "" {
		return outcome, nil
	}
	if err := a.opener.Open(ctx, a.cfg.ChatURL); err != nil {
		a.logger.Warn("failed to open chat url", zap.String("url", a.cfg.ChatURL), zap.Error(err))
		return outcome, nil
	}
	outcome.Opened = true
	return outcome, nil
}

func (a *Assistant) sendCommand(ctx context.Context, h Handoff, payload string) (*Outcome, error) {
	if a.cfg.Command == "" {
		return nil, fmt.Errorf("ai.assistant.command is not configured")
	}

	payloadFile, err := os.CreateTemp("", "hv-payload-*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create payload file: %w", err)
	}
	defer os.Remove(payloadFile.Name())

	if _, err := payloadFile.WriteString(payload); err != nil {
		payloadFile.Close()
		return nil, fmt.Errorf("failed to write payload file: %w", err)
	}
	if err := payloadFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to write payload file: %w", err)
	}

	dir := ""
	if h.ArtifactPath != "" {
		dir = filepath.Dir(h.ArtifactPath)
	}

	exitCode, err := bash.Run(ctx, bash.Command{
		Script: a.cfg.Command,
		Dir:    dir,
		Env: map[string]string{
			"HV_ARTIFACT":     h.ArtifactPath,
			"HV_PROMPT":       h.Prompt,
			"HV_PAYLOAD_FILE": payloadFile.Name(),
		},
		Stdin:  a.stdin,
		Stdout: a.stdout,
		Stderr: a.stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant command failed: %w", err)
	}
	if exitCode != 0 {
		return nil, fmt.Errorf("assistant command exited with status %d", exitCode)
	}
	return &Outcome{Mode: config.AssistantModeCommand}, nil
}

func (a *Assistant) sendOpenAI(ctx context.Context, payload string) (*Outcome, error) {
	if a.completer == nil {
		completer, err := NewOpenAICompleter(a.cfg)
		if err != nil {
			return nil, err
		}
		a.completer = completer
	}

	reply, err := a.completer.Complete(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &Outcome{Mode: config.AssistantModeOpenAI, Model: a.cfg.Model, Reply: reply}, nil
}
