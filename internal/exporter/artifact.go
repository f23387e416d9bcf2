package exporter

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/samber/lo"
)

// headerFormat labels every file in the artifact with its relative path.
const headerFormat = "*# %s*"

// FileEntry is a qualifying file found during the walk.
type FileEntry struct {
	Path    string
	RelPath string
	Size    int64
	// Binary is set once the file has been read and failed text decoding.
	Binary bool
}

// Entry is one file inside an artifact.
type Entry struct {
	Path    string
	Content string
}

// Artifact is the concatenated, path-labelled export of a project.
type Artifact struct {
	Root    string
	Entries []Entry
	Skipped []SkipWarning
}

// Header returns the header line written before a file's content.
func Header(relPath string) string {
	return fmt.Sprintf(headerFormat, relPath)
}

// WriteTo writes the artifact. Each entry is its header, a newline, the
// content and a newline; entries are separated by a blank line.
func (a *Artifact) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for i, e := range a.Entries {
		sep := ""
		if i > 0 {
			sep = "\n"
		}
		n, err := fmt.Fprintf(w, "%s%s\n%s\n", sep, Header(e.Path), e.Content)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// Bytes renders the artifact.
func (a *Artifact) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = a.WriteTo(&buf)
	return buf.Bytes()
}

// Size returns the rendered size in bytes.
func (a *Artifact) Size() int64 {
	n, _ := a.WriteTo(io.Discard)
	return n
}

// Paths returns the relative paths of the included files in artifact order.
func (a *Artifact) Paths() []string {
	return lo.Map(a.Entries, func(e Entry, _ int) string { return e.Path })
}

// IsText reports whether data decodes as UTF-8 text. NUL bytes are treated
// as binary even though they are valid UTF-8.
func IsText(data []byte) bool {
	return bytes.IndexByte(data, 0) < 0 && utf8.Valid(data)
}
