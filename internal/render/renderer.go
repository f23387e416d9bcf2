package render

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hugo-vanthournhout/hv-cli/internal/exporter"
	"github.com/hugo-vanthournhout/hv-cli/internal/history"
	"github.com/muesli/reflow/wordwrap"
)

// Renderer writes human-readable output for the hv commands.
type Renderer struct {
	writer    io.Writer
	termWidth func() int
	now       func() time.Time
}

// New creates a Renderer. termWidth may be nil, in which case replies are
// wrapped at 80 columns.
func New(writer io.Writer, termWidth func() int) *Renderer {
	return &Renderer{
		writer:    writer,
		termWidth: termWidth,
		now:       time.Now,
	}
}

func (r *Renderer) width() int {
	if r.termWidth == nil {
		return 80
	}
	if w := r.termWidth(); w > 0 {
		return w
	}
	return 80
}

// RenderExportSummary lists the included files, the skipped files with
// their reason and the final artifact size. verbose adds the underlying
// error of each skipped file.
func (r *Renderer) RenderExportSummary(result *exporter.Result, verbose bool) {
	for _, p := range result.Included {
		fmt.Fprintf(r.writer, "%s %s\n", StyledSymbol(SymbolIncluded), p)
	}
	for _, s := range result.Skipped {
		reason := string(s.Reason)
		if verbose && s.Err != nil {
			reason += ": " + s.Err.Error()
		}
		fmt.Fprintf(r.writer, "%s %s %s\n", StyledSymbol(SymbolSkipped), s.Path, DimStyle.Render("("+reason+")"))
	}

	fmt.Fprintf(r.writer, "%s Exported %s (%s) to %s\n",
		StyledSymbol(SymbolSuccess),
		pluralFiles(result.Files),
		humanize.Bytes(uint64(result.Bytes)),
		result.Output)
}

// RenderArtifact writes the artifact itself, used by --stdout.
func (r *Renderer) RenderArtifact(artifact *exporter.Artifact) error {
	_, err := artifact.WriteTo(r.writer)
	return err
}

// RenderInfo prints a dim status line.
func (r *Renderer) RenderInfo(message string) {
	fmt.Fprintf(r.writer, "%s %s\n", StyledSymbol(SymbolInfo), DimStyle.Render(message))
}

// RenderError prints a failure line.
func (r *Renderer) RenderError(message string) {
	fmt.Fprintf(r.writer, "%s %s\n", StyledSymbol(SymbolError), ErrorStyle.Render(message))
}

// RenderReply writes an assistant reply wrapped to the terminal width.
func (r *Renderer) RenderReply(model, reply string) {
	fmt.Fprintln(r.writer, HeaderStyle.Render(fmt.Sprintf("── %s ───", model)))
	fmt.Fprintln(r.writer, wordwrap.String(reply, r.width()))
}

// RenderHistory lists export runs, most recent first.
func (r *Renderer) RenderHistory(runs []history.ExportRun) {
	if len(runs) == 0 {
		r.RenderInfo("no exports recorded")
		return
	}
	for _, run := range runs {
		fmt.Fprintf(r.writer, "%s %s %s %s\n",
			DimStyle.Render(humanize.RelTime(run.CreatedAt, r.now(), "ago", "from now")),
			HeaderStyle.Render(run.Command),
			run.Root,
			DimStyle.Render(fmt.Sprintf("%s, %s, %d skipped", pluralFiles(run.Files), humanize.Bytes(uint64(run.Bytes)), run.Skipped)))
	}
}

// RenderRun prints every recorded field of a single run.
func (r *Renderer) RenderRun(run *history.ExportRun) {
	fmt.Fprintln(r.writer, HeaderStyle.Render(run.Command+" "+run.RunID))
	fmt.Fprintf(r.writer, "  root:    %s\n", run.Root)
	fmt.Fprintf(r.writer, "  output:  %s\n", run.Output)
	fmt.Fprintf(r.writer, "  when:    %s (%s)\n",
		run.CreatedAt.Format(time.RFC3339),
		humanize.RelTime(run.CreatedAt, r.now(), "ago", "from now"))
	fmt.Fprintf(r.writer, "  content: %s, %s, %d skipped\n", pluralFiles(run.Files), humanize.Bytes(uint64(run.Bytes)), run.Skipped)
}

func pluralFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return humanize.Comma(int64(n)) + " files"
}
