// Package config provides configuration management for hv.
// It handles loading ~/.hv/variables.yaml (or a TOML equivalent) and
// mapping its values onto the Config struct, falling back to built-in
// defaults for anything the file does not set.
package config

import (
	"github.com/c2h5oh/datasize"
)

// Assistant delivery modes.
const (
	AssistantModeClipboard = "clipboard"
	AssistantModeCommand   = "command"
	AssistantModeOpenAI    = "openai"
)

// Copy modes decide what ends up in the clipboard payload.
const (
	CopyModePrompt = "prompt"
	CopyModeFile   = "file"
	CopyModeBoth   = "both"
)

// Config holds all hv configuration.
type Config struct {
	// LogLevel controls logging verbosity written to ~/.hv/hv.log
	LogLevel string `yaml:"log_level" toml:"log_level"`

	AI AIConfig `yaml:"ai" toml:"ai"`
}

// AIConfig configures the project exporter and the assistant hand-off.
type AIConfig struct {
	// OutputFile is where the artifact is written when no --output is given.
	OutputFile string `yaml:"output_file" toml:"output_file"`

	// DefaultPrompt is appended to the payload handed to the assistant.
	DefaultPrompt string `yaml:"default_prompt" toml:"default_prompt"`

	// TextExtensions lists allowed extensions (".go") and exact file names ("Makefile").
	TextExtensions []string `yaml:"text_extensions" toml:"text_extensions"`

	// IgnorePatterns is the ordered default ignore list.
	IgnorePatterns []string `yaml:"ignore_patterns" toml:"ignore_patterns"`

	// WarningPaths are roots that must not be exported without confirmation.
	// "~" is expanded to the home directory at runtime.
	WarningPaths []string `yaml:"warning_paths" toml:"warning_paths"`

	// PriorityFiles are emitted first when present at the export root.
	PriorityFiles []string `yaml:"priority_files" toml:"priority_files"`

	// MaxFileSize skips larger files without reading them. Zero disables the limit.
	MaxFileSize datasize.ByteSize `yaml:"max_file_size" toml:"max_file_size"`

	Assistant AssistantConfig `yaml:"assistant" toml:"assistant"`
}

// AssistantConfig configures how an artifact is handed to an AI assistant.
type AssistantConfig struct {
	Mode     string `yaml:"mode" toml:"mode"`
	CopyMode string `yaml:"copy_mode" toml:"copy_mode"`

	// ChatURL is opened after the payload is copied (clipboard mode).
	ChatURL string `yaml:"chat_url" toml:"chat_url"`
	// Browser is a macOS application name used to open ChatURL.
	Browser string `yaml:"browser" toml:"browser"`

	// Command is a shell command run in command mode.
	Command string `yaml:"command" toml:"command"`

	// Model, BaseURL and APIKeyEnv configure openai mode.
	Model     string `yaml:"model" toml:"model"`
	BaseURL   string `yaml:"base_url" toml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env" toml:"api_key_env"`
}

const defaultPrompt = `Above is the full content of my project. Read it carefully, then wait for my questions.`

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		AI: AIConfig{
			OutputFile:    "ai_full_project.txt",
			DefaultPrompt: defaultPrompt,
			TextExtensions: []string{
				".py", ".pyi", ".go", ".js", ".jsx", ".ts", ".tsx", ".java", ".kt", ".rs", ".rb",
				".c", ".h", ".cpp", ".hpp", ".cs", ".swift", ".php", ".scala",
				".sh", ".bash", ".zsh", ".sql",
				".html", ".css", ".scss", ".vue", ".svelte",
				".json", ".yaml", ".yml", ".toml", ".ini", ".cfg", ".conf", ".env.example",
				".md", ".rst", ".txt", ".tf", ".proto", ".graphql",
				"Makefile", "Dockerfile", "Justfile",
			},
			IgnorePatterns: []string{
				".git", ".hg", ".svn",
				"*.pyc", "*.pyo", "__pycache__/*",
				".venv/*", "venv/*", ".tox/*", ".mypy_cache/*", ".pytest_cache/*", ".ruff_cache/*", "*.egg-info/*",
				"node_modules/*", "bower_components/*", ".next/*", ".nuxt/*", "*.min.js", "*.map",
				"dist/*", "build/*", "target/*", "vendor/*", "coverage/*",
				".idea/*", ".vscode/*", ".DS_Store",
				"*.lock", "package-lock.json", "go.sum",
				".env",
			},
			WarningPaths:  []string{"~", "/etc", "/usr", "/var", "/opt", "/root"},
			PriorityFiles: []string{"README.md", "pyproject.toml"},
			MaxFileSize:   1 * datasize.MB,
			Assistant: AssistantConfig{
				Mode:      AssistantModeClipboard,
				CopyMode:  CopyModeBoth,
				ChatURL:   "https://claude.ai/chats",
				Model:     "gpt-4o-mini",
				APIKeyEnv: "OPENAI_API_KEY",
			},
		},
	}
}

// MaxFileSizeBytes returns the size limit as an int64, 0 meaning unlimited.
func (c *AIConfig) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSize.Bytes())
}
