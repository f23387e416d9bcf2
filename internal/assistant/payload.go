package assistant

import (
	"fmt"
	"strings"

	"github.com/hugo-vanthournhout/hv-cli/internal/config"
)

const userStyleTag = "<userStyle>Normal</userStyle>"

// Payload builds the text handed to the assistant. copyMode "file" sends the
// document only, "both" sends the document followed by the prompt, and any
// other value sends the prompt only.
func Payload(copyMode, source, content, prompt string) string {
	var b strings.Builder
	switch copyMode {
	case config.CopyModeFile:
		b.WriteString(document(source, content))
	case config.CopyModeBoth:
		b.WriteString(document(source, content))
		b.WriteString("\n\n")
		b.WriteString(prompt)
	default:
		b.WriteString(prompt)
	}
	b.WriteString("\n\n")
	b.WriteString(userStyleTag)
	return b.String()
}

func document(source, content string) string {
	return fmt.Sprintf("<document>\n<source>%s</source>\n<document_content>\n%s\n</document_content>\n</document>", source, content)
}
