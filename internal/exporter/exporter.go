// Package exporter turns a project directory into a single text artifact
// suitable for pasting into an AI assistant's context window.
//
// An export walks the root in lexical order, prunes ignored directories,
// enumerates qualifying files, reads them as UTF-8 text and concatenates
// them behind path headers. Roots that equal or contain a warning path are
// refused unless the request is confirmed. Symbolic links below the root are
// never followed.
package exporter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// TempPrefix is the name prefix of the temporary file an export writes
// before renaming it over the output path.
const TempPrefix = ".hv-export-"

// Options configures an Exporter.
type Options struct {
	Rules *Rules
	Guard *Guard

	// PriorityFiles are root-relative paths emitted first when they qualify.
	PriorityFiles []string
	// MaxFileSize skips larger files without reading them. Zero means no limit.
	MaxFileSize int64

	Fs     afero.Fs
	Logger *zap.Logger
}

// Exporter builds and writes project artifacts. It holds no per-run state
// and may be reused.
type Exporter struct {
	rules       *Rules
	guard       *Guard
	priority    []string
	maxFileSize int64
	fs          afero.Fs
	logger      *zap.Logger
}

// Request describes one export run.
type Request struct {
	Root         string
	ExtraIgnores []string
	OutputPath   string
	// Confirmed bypasses the warning-path guard.
	Confirmed bool
}

// Result summarises a written export.
type Result struct {
	Root     string
	Output   string
	Files    int
	Bytes    int64
	Included []string
	Skipped  []SkipWarning
}

// New creates an Exporter. Missing options fall back to an empty rule set,
// no warning paths, the OS filesystem and a no-op logger.
func New(opts Options) *Exporter {
	e := &Exporter{
		rules:       opts.Rules,
		guard:       opts.Guard,
		priority:    lo.Map(opts.PriorityFiles, func(p string, _ int) string { return filepath.ToSlash(p) }),
		maxFileSize: opts.MaxFileSize,
		fs:          opts.Fs,
		logger:      opts.Logger,
	}
	if e.rules == nil {
		e.rules = &Rules{names: map[string]struct{}{}}
	}
	if e.guard == nil {
		e.guard = &Guard{}
	}
	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Export builds the artifact for req and writes it to req.OutputPath,
// replacing any previous content. Nothing is written when the build fails.
func (e *Exporter) Export(req Request) (*Result, error) {
	if req.OutputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}

	artifact, err := e.Build(req)
	if err != nil {
		return nil, err
	}

	output := resolveFilePath(req.OutputPath)
	data := artifact.Bytes()
	if err := e.write(output, data); err != nil {
		return nil, &WriteError{Path: output, Err: err}
	}

	e.logger.Info("export written",
		zap.String("root", artifact.Root),
		zap.String("output", output),
		zap.Int("files", len(artifact.Entries)),
		zap.Int("bytes", len(data)),
		zap.Int("skipped", len(artifact.Skipped)))

	return &Result{
		Root:     artifact.Root,
		Output:   output,
		Files:    len(artifact.Entries),
		Bytes:    int64(len(data)),
		Included: artifact.Paths(),
		Skipped:  artifact.Skipped,
	}, nil
}

// Build walks req.Root and returns the artifact without writing it.
// req.OutputPath, when set, is only used to keep the output file out of the
// artifact.
func (e *Exporter) Build(req Request) (*Artifact, error) {
	rules, err := e.rules.WithIgnores(req.ExtraIgnores)
	if err != nil {
		return nil, err
	}

	root := resolvePath(req.Root)
	if !req.Confirmed {
		if err := e.guard.Check(root); err != nil {
			return nil, err
		}
	}
	if w, ok := e.guard.Inside(root); ok {
		e.logger.Warn("exporting below a warning path", zap.String("root", root), zap.String("warning_path", w))
	}

	info, err := e.fs.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &InvalidRootError{Root: root, Err: ErrRootNotFound}
		}
		return nil, &InvalidRootError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &InvalidRootError{Root: root, Err: ErrNotADirectory}
	}

	output := ""
	if req.OutputPath != "" {
		output = resolveFilePath(req.OutputPath)
	}

	files, skipped, err := e.collect(root, rules, output)
	if err != nil {
		return nil, err
	}

	artifact := &Artifact{Root: root, Skipped: skipped}
	for _, f := range e.prioritize(files) {
		content, warning := e.read(&f)
		if warning != nil {
			e.logger.Warn("skipping file", zap.String("path", f.RelPath), zap.String("reason", string(warning.Reason)), zap.Error(warning.Err))
			artifact.Skipped = append(artifact.Skipped, *warning)
			continue
		}
		artifact.Entries = append(artifact.Entries, Entry{Path: f.RelPath, Content: content})
	}

	return artifact, nil
}

// collect enumerates qualifying files before any of them is read. Ignored
// directories are pruned; symlinks are reported and never followed.
func (e *Exporter) collect(root string, rules *Rules, output string) ([]FileEntry, []SkipWarning, error) {
	var files []FileEntry
	var skipped []SkipWarning

	err := afero.Walk(e.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			rel := relSlash(root, p)
			skipped = append(skipped, SkipWarning{Path: rel, Reason: SkipUnreadable, Err: err})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}

		rel := relSlash(root, p)
		switch {
		case info.Mode()&os.ModeSymlink != 0:
			if !rules.PruneDir(rel) && !rules.Ignored(rel) {
				skipped = append(skipped, SkipWarning{Path: rel, Reason: SkipSymlink})
			}
			return nil
		case info.IsDir():
			if rules.PruneDir(rel) {
				e.logger.Debug("pruning directory", zap.String("path", rel))
				return filepath.SkipDir
			}
			return nil
		case !info.Mode().IsRegular():
			return nil
		case !rules.Qualifies(rel):
			return nil
		case p == output:
			skipped = append(skipped, SkipWarning{Path: rel, Reason: SkipOutput})
			return nil
		}

		files = append(files, FileEntry{Path: p, RelPath: rel, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, nil, &InvalidRootError{Root: root, Err: err}
	}
	return files, skipped, nil
}

// prioritize moves configured priority files to the front, keeping walk
// order for everything else.
func (e *Exporter) prioritize(files []FileEntry) []FileEntry {
	if len(e.priority) == 0 {
		return files
	}

	byRel := lo.KeyBy(files, func(f FileEntry) string { return f.RelPath })
	ordered := make([]FileEntry, 0, len(files))
	seen := make(map[string]bool, len(e.priority))
	for _, rel := range e.priority {
		if f, ok := byRel[rel]; ok && !seen[rel] {
			ordered = append(ordered, f)
			seen[rel] = true
		}
	}
	for _, f := range files {
		if !seen[f.RelPath] {
			ordered = append(ordered, f)
		}
	}
	return ordered
}

func (e *Exporter) read(f *FileEntry) (string, *SkipWarning) {
	if e.maxFileSize > 0 && f.Size > e.maxFileSize {
		return "", &SkipWarning{Path: f.RelPath, Reason: SkipTooLarge}
	}

	data, err := afero.ReadFile(e.fs, f.Path)
	if err != nil {
		return "", &SkipWarning{Path: f.RelPath, Reason: SkipUnreadable, Err: err}
	}
	if !IsText(data) {
		f.Binary = true
		return "", &SkipWarning{Path: f.RelPath, Reason: SkipDecode}
	}
	return string(data), nil
}

// write replaces path atomically: the artifact goes to a temporary file in
// the same directory which is then renamed over path.
func (e *Exporter) write(path string, data []byte) error {
	tmp, err := afero.TempFile(e.fs, filepath.Dir(path), TempPrefix+"*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		e.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		e.fs.Remove(tmpName)
		return err
	}
	if err := e.fs.Chmod(tmpName, 0644); err != nil {
		e.fs.Remove(tmpName)
		return err
	}
	if err := e.fs.Rename(tmpName, path); err != nil {
		e.fs.Remove(tmpName)
		return err
	}
	return nil
}

func relSlash(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		rel = p
	}
	return filepath.ToSlash(rel)
}
