package assistant

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when no clipboard utility is installed.
var ErrClipboardUnavailable = errors.New("clipboard is not available")

// Clipboard receives the payload in clipboard mode.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

// SystemClipboard writes to the OS clipboard.
func SystemClipboard() Clipboard {
	return systemClipboard{}
}

func (systemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}
