package exporter

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

type ruleKind int

const (
	// globRule matches the full relative path, any leading sub-path or any single segment.
	globRule ruleKind = iota
	// dirRule ("P/*" or "P/") matches everything beneath a directory matching P.
	dirRule
)

type rule struct {
	pattern string
	glob    string
	kind    ruleKind
	// depth is the number of leading segments an anchored dirRule spans.
	// Zero means the rule matches any directory segment.
	depth int
}

func compileRule(pattern string) (rule, error) {
	p := filepath.ToSlash(strings.TrimSpace(pattern))
	p = strings.TrimPrefix(p, "./")

	r := rule{pattern: pattern, glob: p, kind: globRule}
	switch {
	case strings.HasSuffix(p, "/*"):
		r.kind = dirRule
		r.glob = strings.TrimSuffix(p, "/*")
	case strings.HasSuffix(p, "/"):
		r.kind = dirRule
		r.glob = strings.TrimSuffix(p, "/")
	}
	if r.kind == dirRule && strings.Contains(r.glob, "/") {
		r.depth = strings.Count(r.glob, "/") + 1
	}

	if _, err := path.Match(r.glob, ""); err != nil {
		return rule{}, &PatternError{Pattern: pattern, Err: err}
	}
	return r, nil
}

func compileRules(patterns []string) ([]rule, error) {
	rules := make([]rule, 0, len(patterns))
	for _, p := range patterns {
		r, err := compileRule(p)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// match reports whether rel (slash separated, relative to the export root)
// is matched. isDir tells whether rel itself is a directory.
func (r rule) match(rel string, isDir bool) bool {
	if r.kind == globRule {
		if globMatch(r.glob, rel) {
			return true
		}
		for i := 0; i < len(rel); i++ {
			if rel[i] == '/' && globMatch(r.glob, rel[:i]) {
				return true
			}
		}
		// Any segment, so a file below a pruned directory is ignored too.
		for _, seg := range strings.Split(rel, "/") {
			if globMatch(r.glob, seg) {
				return true
			}
		}
		return false
	}

	dirs := strings.Split(rel, "/")
	if !isDir {
		dirs = dirs[:len(dirs)-1]
	}
	if r.depth > 0 {
		return len(dirs) >= r.depth && globMatch(r.glob, strings.Join(dirs[:r.depth], "/"))
	}
	for _, d := range dirs {
		if globMatch(r.glob, d) {
			return true
		}
	}
	return false
}

func globMatch(pattern, name string) bool {
	// Patterns are validated at compile time.
	ok, _ := path.Match(pattern, name)
	return ok
}

// Rules is the compiled, read-only filter applied during an export.
type Rules struct {
	extensions []string
	names      map[string]struct{}
	ignores    []rule
	includes   []rule
}

// NewRules compiles an allow-list and ordered glob lists. Allow-list entries
// starting with a dot are extensions (case-insensitive); other entries are
// exact file names such as "Makefile". When includes is non-empty a file must
// also match one include pattern.
func NewRules(allowList, ignores, includes []string) (*Rules, error) {
	r := &Rules{names: make(map[string]struct{})}
	for _, entry := range allowList {
		entry = strings.TrimSpace(entry)
		switch {
		case entry == "":
		case strings.HasPrefix(entry, "."):
			r.extensions = append(r.extensions, strings.ToLower(entry))
		default:
			r.names[entry] = struct{}{}
		}
	}
	r.extensions = lo.Uniq(r.extensions)

	var err error
	if r.ignores, err = compileRules(lo.Compact(ignores)); err != nil {
		return nil, err
	}
	if r.includes, err = compileRules(lo.Compact(includes)); err != nil {
		return nil, err
	}
	return r, nil
}

// WithIgnores returns a copy of r with extra ignore patterns appended after
// the existing ones. r is not modified.
func (r *Rules) WithIgnores(extra []string) (*Rules, error) {
	added, err := compileRules(lo.Compact(extra))
	if err != nil {
		return nil, err
	}
	clone := *r
	clone.ignores = append(append(make([]rule, 0, len(r.ignores)+len(added)), r.ignores...), added...)
	return &clone, nil
}

// IgnorePatterns returns the ignore patterns in evaluation order.
func (r *Rules) IgnorePatterns() []string {
	return lo.Map(r.ignores, func(item rule, _ int) string { return item.pattern })
}

// Allowed reports whether a file name passes the allow-list.
func (r *Rules) Allowed(name string) bool {
	if _, ok := r.names[name]; ok {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range r.extensions {
		if strings.HasSuffix(lower, ext) && len(lower) > len(ext) {
			return true
		}
	}
	return false
}

// Ignored reports whether a file at rel is matched by an ignore pattern.
func (r *Rules) Ignored(rel string) bool {
	return matchAny(r.ignores, rel, false)
}

// PruneDir reports whether the directory at rel must not be descended into.
func (r *Rules) PruneDir(rel string) bool {
	return matchAny(r.ignores, rel, true)
}

// Included reports whether rel passes the include patterns.
func (r *Rules) Included(rel string) bool {
	return len(r.includes) == 0 || matchAny(r.includes, rel, false)
}

// Qualifies reports whether the file at rel belongs in an artifact.
func (r *Rules) Qualifies(rel string) bool {
	return r.Allowed(path.Base(rel)) && !r.Ignored(rel) && r.Included(rel)
}

func matchAny(rules []rule, rel string, isDir bool) bool {
	for _, item := range rules {
		if item.match(rel, isDir) {
			return true
		}
	}
	return false
}

// DBTRules selects the models, macros and analyses of a dbt project.
func DBTRules() *Rules {
	rules, err := NewRules(
		[]string{".sql", ".yml", ".yaml"},
		[]string{".venv/*", "target/*", "dbt_packages/*", "logs/*"},
		[]string{"models/*", "macros/*", "analyses/*"},
	)
	if err != nil {
		panic(err)
	}
	return rules
}
