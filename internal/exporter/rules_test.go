package exporter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesIgnore(t *testing.T) {
	rules, err := NewRules(nil, []string{".git", "node_modules/*", "*.exe", "dist/bin/*", "build/"}, nil)
	require.NoError(t, err)

	tests := []struct {
		path     string
		expected bool
	}{
		{".git/config", true},
		{"sub/.git/HEAD", true},
		{".gitignore", false},
		{"node_modules/package.json", true},
		{"web/node_modules/react/index.js", true},
		{"node_modules_backup/a.js", false},
		{"src/main.go", false},
		{"main.exe", true},
		{"tools/main.exe", true},
		{"dist/bin/app", true},
		{"dist/lib/app.js", false},
		{"other/dist/bin/app", false},
		{"build/out.js", true},
		{"internal/builder/ignore.go", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, rules.Ignored(tt.path))
		})
	}
}

func TestIgnoredAgreesWithPruneDir(t *testing.T) {
	rules, err := NewRules([]string{".py"}, []string{".git", "docs", "*.egg-info"}, nil)
	require.NoError(t, err)

	tests := []struct {
		dir  string
		file string
	}{
		{"sub/.git", "sub/.git/hooks/pre_commit.py"},
		{"docs", "docs/conf.py"},
		{"sub/docs", "sub/docs/x.py"},
		{"pkg/hv.egg-info", "pkg/hv.egg-info/setup.py"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.True(t, rules.PruneDir(tt.dir))
			assert.True(t, rules.Ignored(tt.file))
			assert.False(t, rules.Qualifies(tt.file))
		})
	}

	assert.True(t, rules.Qualifies("documentation/x.py"))
	assert.True(t, rules.Qualifies("src/docs_gen.py"))
}

func TestPruneDir(t *testing.T) {
	rules, err := NewRules(nil, []string{".git", "node_modules/*", "docs/api/*", "*.egg-info/*"}, nil)
	require.NoError(t, err)

	assert.True(t, rules.PruneDir(".git"))
	assert.True(t, rules.PruneDir("node_modules"))
	assert.True(t, rules.PruneDir("packages/a/node_modules"))
	assert.True(t, rules.PruneDir("docs/api"))
	assert.True(t, rules.PruneDir("hv.egg-info"))
	assert.False(t, rules.PruneDir("docs"))
	assert.False(t, rules.PruneDir("src"))
}

func TestAllowed(t *testing.T) {
	rules, err := NewRules([]string{".py", ".MD", "Makefile", " ", ".env.example"}, nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		expected bool
	}{
		{"a.py", true},
		{"A.PY", true},
		{"README.md", true},
		{"a.pyc", false},
		{"Makefile", true},
		{"makefile", false},
		{"Makefile.bak", false},
		{".env.example", false},
		{"app.env.example", true},
		{"noext", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, rules.Allowed(tt.name))
		})
	}
}

func TestQualifiesWithIncludes(t *testing.T) {
	rules := DBTRules()

	assert.True(t, rules.Qualifies("models/staging/stg_orders.sql"))
	assert.True(t, rules.Qualifies("macros/cents.sql"))
	assert.True(t, rules.Qualifies("analyses/a.yml"))
	assert.False(t, rules.Qualifies("seeds/raw.sql"), "outside include dirs")
	assert.False(t, rules.Qualifies("models/notes.md"), "extension not allowed")
	assert.False(t, rules.Qualifies("dbt_packages/x/models/m.sql"), "ignored")
	assert.True(t, rules.PruneDir("target"))
}

func TestWithIgnoresDoesNotMutate(t *testing.T) {
	base, err := NewRules([]string{".py"}, []string{"*.pyc"}, nil)
	require.NoError(t, err)

	extended, err := base.WithIgnores([]string{"", "Makefile", "tests/*"})
	require.NoError(t, err)

	assert.Equal(t, []string{"*.pyc"}, base.IgnorePatterns())
	assert.Equal(t, []string{"*.pyc", "Makefile", "tests/*"}, extended.IgnorePatterns())
	assert.False(t, base.Ignored("tests/test_a.py"))
	assert.True(t, extended.Ignored("tests/test_a.py"))
}

func TestMalformedPattern(t *testing.T) {
	_, err := NewRules(nil, []string{"[unclosed"}, nil)
	require.Error(t, err)

	var patternErr *PatternError
	require.True(t, errors.As(err, &patternErr))
	assert.Equal(t, "[unclosed", patternErr.Pattern)

	base, err := NewRules(nil, nil, nil)
	require.NoError(t, err)
	_, err = base.WithIgnores([]string{"a/[/*"})
	assert.True(t, errors.As(err, &patternErr))
}
