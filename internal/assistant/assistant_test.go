package assistant

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hugo-vanthournhout/hv-cli/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAssistantConfig(mode string) config.AssistantConfig {
	cfg := config.DefaultConfig().AI.Assistant
	cfg.Mode = mode
	return cfg
}

func TestSendClipboard(t *testing.T) {
	handoff := Handoff{Source: "ai_full_project.txt", Content: "*# a.py*\nx", Prompt: "Explain"}
	expected := Payload(config.CopyModeBoth, handoff.Source, handoff.Content, handoff.Prompt)

	t.Run("copies and opens the chat", func(t *testing.T) {
		clip := &MockClipboard{}
		clip.On("WriteAll", expected).Return(nil)
		opener := &MockOpener{}
		opener.On("Open", mock.Anything, "https://claude.ai/chats").Return(nil)

		a := New(testAssistantConfig(config.AssistantModeClipboard), Options{Clipboard: clip, Opener: opener, Logger: zap.NewNop()})
		outcome, err := a.Send(context.Background(), handoff)
		require.NoError(t, err)

		assert.True(t, outcome.Copied)
		assert.True(t, outcome.Opened)
		assert.Empty(t, outcome.Payload)
		clip.AssertExpectations(t)
		opener.AssertExpectations(t)
	})

	t.Run("clipboard unavailable returns payload", func(t *testing.T) {
		clip := &MockClipboard{}
		clip.On("WriteAll", mock.Anything).Return(ErrClipboardUnavailable)
		opener := &MockOpener{}
		opener.On("Open", mock.Anything, mock.Anything).Return(errors.New("no browser"))

		a := New(testAssistantConfig(config.AssistantModeClipboard), Options{Clipboard: clip, Opener: opener})
		outcome, err := a.Send(context.Background(), handoff)
		require.NoError(t, err)

		assert.False(t, outcome.Copied)
		assert.False(t, outcome.Opened)
		assert.Equal(t, expected, outcome.Payload)
	})

	t.Run("copy mode override", func(t *testing.T) {
		clip := &MockClipboard{}
		clip.On("WriteAll", "Explain\n\n<userStyle>Normal</userStyle>").Return(nil)
		cfg := testAssistantConfig(config.AssistantModeClipboard)
		cfg.ChatURL = ""

		a := New(cfg, Options{Clipboard: clip, Opener: &MockOpener{}})
		h := handoff
		h.CopyMode = config.CopyModePrompt
		outcome, err := a.Send(context.Background(), h)
		require.NoError(t, err)
		assert.True(t, outcome.Copied)
		assert.False(t, outcome.Opened)
		clip.AssertExpectations(t)
	})
}

func TestSendCommand(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "ai_full_project.txt")
	require.NoError(t, os.WriteFile(artifact, []byte("*# a.py*\nx\n"), 0644))

	cfg := testAssistantConfig(config.AssistantModeCommand)
	cfg.CopyMode = config.CopyModePrompt
	cfg.Command = `echo "$HV_PROMPT"; basename "$HV_ARTIFACT"; cat "$HV_PAYLOAD_FILE"; echo; pwd`

	var stdout bytes.Buffer
	a := New(cfg, Options{Stdout: &stdout, Stderr: &bytes.Buffer{}, Stdin: strings.NewReader("")})
	outcome, err := a.Send(context.Background(), Handoff{Source: "ai_full_project.txt", ArtifactPath: artifact, Prompt: "Explain"})
	require.NoError(t, err)
	assert.Equal(t, config.AssistantModeCommand, outcome.Mode)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Explain", lines[0])
	assert.Equal(t, "ai_full_project.txt", lines[1])
	assert.Equal(t, "Explain", lines[2])
	assert.Equal(t, "<userStyle>Normal</userStyle>", lines[4])

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	pwd, err := filepath.EvalSymlinks(lines[5])
	require.NoError(t, err)
	assert.Equal(t, resolved, pwd)
}

func TestSendCommandFailures(t *testing.T) {
	cfg := testAssistantConfig(config.AssistantModeCommand)
	a := New(cfg, Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	_, err := a.Send(context.Background(), Handoff{Prompt: "x"})
	assert.Error(t, err, "no command configured")

	cfg.Command = "exit 2"
	a = New(cfg, Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	_, err = a.Send(context.Background(), Handoff{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 2")
}

func TestSendOpenAIWithCompleter(t *testing.T) {
	completer := &MockCompleter{}
	completer.On("Complete", mock.Anything, "Explain\n\n<userStyle>Normal</userStyle>").Return("It is a tiny project.", nil)

	cfg := testAssistantConfig(config.AssistantModeOpenAI)
	cfg.CopyMode = config.CopyModePrompt
	a := New(cfg, Options{Completer: completer})

	outcome, err := a.Send(context.Background(), Handoff{Prompt: "Explain"})
	require.NoError(t, err)
	assert.Equal(t, "It is a tiny project.", outcome.Reply)
	assert.Equal(t, "gpt-4o-mini", outcome.Model)
	completer.AssertExpectations(t)
}

func TestOpenAICompleter(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"hello back"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	t.Setenv("HV_TEST_OPENAI_KEY", "sk-test")
	cfg := testAssistantConfig(config.AssistantModeOpenAI)
	cfg.BaseURL = server.URL + "/v1"
	cfg.APIKeyEnv = "HV_TEST_OPENAI_KEY"

	completer, err := NewOpenAICompleter(cfg)
	require.NoError(t, err)

	reply, err := completer.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "/v1/chat/completions", gotPath)
}

func TestOpenAICompleterMissingKey(t *testing.T) {
	t.Setenv("HV_TEST_MISSING_KEY", "")
	cfg := testAssistantConfig(config.AssistantModeOpenAI)
	cfg.APIKeyEnv = "HV_TEST_MISSING_KEY"

	_, err := NewOpenAICompleter(cfg)
	assert.ErrorContains(t, err, "HV_TEST_MISSING_KEY")

	a := New(cfg, Options{})
	_, err = a.Send(context.Background(), Handoff{Prompt: "x"})
	assert.Error(t, err)
}

func TestBrowserOpenerCommand(t *testing.T) {
	tests := []struct {
		goos    string
		browser string
		name    string
		args    []string
	}{
		{"darwin", "", "open", []string{"https://claude.ai/chats"}},
		{"darwin", "Brave Browser", "open", []string{"-a", "Brave Browser", "https://claude.ai/chats"}},
		{"linux", "Brave Browser", "xdg-open", []string{"https://claude.ai/chats"}},
		{"windows", "", "rundll32", []string{"url.dll,FileProtocolHandler", "https://claude.ai/chats"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.browser, func(t *testing.T) {
			var gotName string
			var gotArgs []string
			opener := NewBrowserOpener(tt.browser)
			opener.goos = tt.goos
			opener.run = func(_ context.Context, name string, args ...string) error {
				gotName, gotArgs = name, args
				return nil
			}

			require.NoError(t, opener.Open(context.Background(), "https://claude.ai/chats"))
			assert.Equal(t, tt.name, gotName)
			assert.Equal(t, tt.args, gotArgs)
		})
	}
}
