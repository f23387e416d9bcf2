// Package bash runs user-configured shell snippets through an embedded
// POSIX shell interpreter, so hv behaves the same on every platform.
package bash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Command is a shell script with the environment it runs in.
type Command struct {
	Script string
	Dir    string
	// Env is added on top of the process environment.
	Env map[string]string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates an interpreter for cmd. Nil streams are discarded.
func NewRunner(cmd Command) (*interp.Runner, error) {
	environ := os.Environ()
	keys := make([]string, 0, len(cmd.Env))
	for k := range cmd.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		environ = append(environ, k+"="+cmd.Env[k])
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(environ...)),
		interp.StdIO(cmd.Stdin, cmd.Stdout, cmd.Stderr),
	}
	if cmd.Dir != "" {
		opts = append(opts, interp.Dir(cmd.Dir))
	}
	return interp.New(opts...)
}

// RunBashScriptFromReader parses and runs a bash script from an io.Reader
// in the provided runner.
func RunBashScriptFromReader(ctx context.Context, runner *interp.Runner, reader io.Reader, name string) error {
	prog, err := syntax.NewParser().Parse(reader, name)
	if err != nil {
		return err
	}
	return runner.Run(ctx, prog)
}

// Run executes cmd and returns its exit code. A non-zero exit code is not an
// error; parse failures and interpreter failures are.
func Run(ctx context.Context, cmd Command) (int, error) {
	if strings.TrimSpace(cmd.Script) == "" {
		return 0, fmt.Errorf("empty command")
	}

	runner, err := NewRunner(cmd)
	if err != nil {
		return 1, fmt.Errorf("failed to create shell: %w", err)
	}

	err = RunBashScriptFromReader(ctx, runner, strings.NewReader(cmd.Script), "")
	if err == nil {
		return 0, nil
	}

	if status, ok := interp.IsExitStatus(err); ok {
		return int(status), nil
	}
	var parseErr syntax.ParseError
	if errors.As(err, &parseErr) {
		return 1, fmt.Errorf("failed to parse command: %w", err)
	}
	return 1, err
}
