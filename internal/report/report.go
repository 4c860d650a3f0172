// Package report renders the summary of an extraction run.
package report

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"tracextract/internal/extractor"
	"tracextract/internal/message"
	"tracextract/pkg/markdown"
)

const title = "Trace extraction summary"

// Markdown renders stats as a Markdown document.
func Markdown(stats *extractor.Stats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Trace directory: `%s`\n\n", stats.TraceDir)
	fmt.Fprintf(&b, "- Lines scanned: %d\n", stats.LinesScanned)
	fmt.Fprintf(&b, "- Messages matched: %d\n", stats.Messages)
	fmt.Fprintf(&b, "- Records written: %d\n", stats.Records)
	fmt.Fprintf(&b, "- Unrecognized tags skipped: %d\n", stats.Skipped)
	fmt.Fprintf(&b, "- Preloaded storage slots: %d\n", len(stats.Preloads))

	b.WriteString("\n## Agents\n\n")
	agents := stats.Agents()
	if len(agents) == 0 {
		b.WriteString("No agent records.\n")
	} else {
		b.WriteString("| Agent | Records |\n|-------|---------|\n")
		for _, a := range agents {
			fmt.Fprintf(&b, "| %s | %d |\n", escapeCell(a), stats.ByAgent[a])
		}
	}

	b.WriteString("\n## Message kinds\n\n")
	b.WriteString("| Kind | Records |\n|------|---------|\n")
	for _, k := range message.Kinds() {
		fmt.Fprintf(&b, "| %s | %d |\n", k, stats.ByKind[k])
	}

	b.WriteString("\n## Storage slots\n\n")
	if len(stats.Preloads) == 0 {
		b.WriteString("No storage slots preloaded.\n")
	} else {
		bound := orb.MultiPoint(stats.Preloads).Bound()
		fmt.Fprintf(&b, "Bounds: (%g, %g) to (%g, %g)\n",
			bound.Min.X(), bound.Min.Y(), bound.Max.X(), bound.Max.Y())
	}
	return b.String()
}

// HTML renders stats as a standalone HTML page.
func HTML(stats *extractor.Stats) string {
	return markdown.RenderDocument(title, Markdown(stats))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
