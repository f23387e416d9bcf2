package assistant

import (
	"context"
	"os/exec"
	"runtime"
)

// Opener opens a URL for the user.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// BrowserOpener opens URLs with the platform's default handler, or with a
// named application on macOS.
type BrowserOpener struct {
	// Browser is a macOS application name such as "Brave Browser".
	Browser string

	goos string
	run  func(ctx context.Context, name string, args ...string) error
}

func NewBrowserOpener(browser string) *BrowserOpener {
	return &BrowserOpener{
		Browser: browser,
		goos:    runtime.GOOS,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Start()
		},
	}
}

// Command returns the program and arguments used to open url.
func (o *BrowserOpener) Command(url string) (string, []string) {
	switch o.goos {
	case "darwin":
		if o.Browser != "" {
			return "open", []string{"-a", o.Browser, url}
		}
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

func (o *BrowserOpener) Open(ctx context.Context, url string) error {
	name, args := o.Command(url)
	return o.run(ctx, name, args...)
}
