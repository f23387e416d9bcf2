package exporter

import (
	"path/filepath"
	"strings"
)

// Guard refuses export roots that would dump a home directory or a system
// partition.
type Guard struct {
	paths []string
}

// NewGuard resolves warning paths once. "~" and "~/..." are expanded against
// homeDir; entries that are empty after expansion are dropped.
func NewGuard(warningPaths []string, homeDir string) *Guard {
	g := &Guard{}
	for _, p := range warningPaths {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
			continue
		case p == "~":
			p = homeDir
		case strings.HasPrefix(p, "~/"):
			p = filepath.Join(homeDir, p[2:])
		}
		if p == "" {
			continue
		}
		g.paths = append(g.paths, resolvePath(p))
	}
	return g
}

// Paths returns the resolved warning paths.
func (g *Guard) Paths() []string {
	return append([]string(nil), g.paths...)
}

// Check returns a *DangerousPathError when root equals a warning path or is
// one of its ancestors. root must already be resolved.
func (g *Guard) Check(root string) error {
	for _, w := range g.paths {
		if isWithin(w, root) {
			return &DangerousPathError{Root: root, WarningPath: w}
		}
	}
	return nil
}

// Inside returns the warning path that strictly contains root, if any.
// Exporting such a root is allowed.
func (g *Guard) Inside(root string) (string, bool) {
	for _, w := range g.paths {
		if root != w && isWithin(root, w) {
			return w, true
		}
	}
	return "", false
}

// isWithin reports whether p is dir or lies beneath it. Comparison is on
// path boundaries so /home/userx is not within /home/user.
func isWithin(p, dir string) bool {
	if p == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(p, dir)
}

// resolvePath makes p absolute and resolves symlinks when p exists.
func resolvePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// resolveFilePath resolves the directory of p, which may not exist yet.
func resolveFilePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return filepath.Join(resolvePath(filepath.Dir(abs)), filepath.Base(abs))
}
