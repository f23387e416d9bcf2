package exporter

import (
	"errors"
	"fmt"
)

var (
	// ErrNotADirectory is wrapped by InvalidRootError when root is a file.
	ErrNotADirectory = errors.New("not a directory")
	// ErrRootNotFound is wrapped by InvalidRootError when root does not exist.
	ErrRootNotFound = errors.New("no such directory")
)

// DangerousPathError is returned when root equals or contains a warning path
// and the request was not confirmed.
type DangerousPathError struct {
	Root        string
	WarningPath string
}

func (e *DangerousPathError) Error() string {
	if e.Root == e.WarningPath {
		return fmt.Sprintf("refusing to export %s: it is a protected path", e.Root)
	}
	return fmt.Sprintf("refusing to export %s: it contains the protected path %s", e.Root, e.WarningPath)
}

// InvalidRootError is returned when root is missing or is not a directory.
type InvalidRootError struct {
	Root string
	Err  error
}

func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("invalid export root %s: %v", e.Root, e.Err)
}

func (e *InvalidRootError) Unwrap() error {
	return e.Err
}

// WriteError is returned when the artifact cannot be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// PatternError is returned when a glob pattern is malformed.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// SkipReason explains why a qualifying file is not in the artifact.
type SkipReason string

const (
	SkipDecode     SkipReason = "not valid UTF-8 text"
	SkipTooLarge   SkipReason = "larger than the size limit"
	SkipUnreadable SkipReason = "unreadable"
	SkipSymlink    SkipReason = "symbolic link"
	SkipOutput     SkipReason = "export output file"
)

// SkipWarning is a recoverable, per-file problem. It never aborts an export.
type SkipWarning struct {
	Path   string
	Reason SkipReason
	Err    error
}

func (w SkipWarning) Error() string {
	if w.Err != nil {
		return fmt.Sprintf("%s: %s: %v", w.Path, w.Reason, w.Err)
	}
	return fmt.Sprintf("%s: %s", w.Path, w.Reason)
}

func (w SkipWarning) Unwrap() error {
	return w.Err
}
