package markdown

import (
	"strings"
	"testing"
)

func TestRenderToHTML_BasicMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{
			name:     "headers",
			input:    "# Trace summary\n## Agents",
			contains: []string{"<h1", "Trace summary", "<h2", "Agents"},
		},
		{
			name:     "bold",
			input:    "**5** records",
			contains: []string{"<strong>5</strong>"},
		},
		{
			name:     "code inline",
			input:    "Written to `../trace`",
			contains: []string{"<code>../trace</code>"},
		},
		{
			name:     "unordered list",
			input:    "- Lines scanned: 13\n- Records: 5",
			contains: []string{"<ul>", "<li>Lines scanned: 13</li>", "<li>Records: 5</li>", "</ul>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderToHTML(tt.input)

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("RenderToHTML() result doesn't contain expected substring.\nExpected: %q\nResult: %s", expected, result)
				}
			}
		})
	}
}

func TestRenderToHTML_TableSupport(t *testing.T) {
	input := `| Agent | Records |
|-------|---------|
| A1    | 3       |
| B2    | 2       |`

	result := RenderToHTML(input)

	expectedElements := []string{
		"<table>",
		"<thead>", "<tbody>",
		"<tr>", "<th>", "<td>",
		"Agent", "Records",
		"A1", "B2",
	}

	for _, expected := range expectedElements {
		if !strings.Contains(result, expected) {
			t.Errorf("Table markdown missing expected element: %q", expected)
		}
	}
}

func TestRenderToHTML_XSSPrevention(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		shouldBlock string
	}{
		{
			name:        "script tag",
			input:       "| Agent |\n|---|\n| <script>alert('x')</script> |",
			shouldBlock: "<script>",
		},
		{
			name:        "onclick handler",
			input:       "<a href=\"#\" onclick=\"alert('xss')\">A1</a>",
			shouldBlock: "onclick",
		},
		{
			name:        "javascript protocol",
			input:       "[A1](javascript:alert('xss'))",
			shouldBlock: "javascript:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderToHTML(tt.input)

			if strings.Contains(result, tt.shouldBlock) {
				t.Errorf("XSS vector not blocked.\nInput: %s\nBlocked string: %q\nResult: %s",
					tt.input, tt.shouldBlock, result)
			}
		})
	}
}

func TestRenderToHTML_Empty(t *testing.T) {
	if result := strings.TrimSpace(RenderToHTML("   \n\n   ")); result != "" {
		t.Errorf("RenderToHTML() = %q, want empty string", result)
	}
}

func TestRenderDocument(t *testing.T) {
	result := RenderDocument("Trace <run>", "# Summary")

	if !strings.HasPrefix(result, "<!DOCTYPE html>") {
		t.Errorf("RenderDocument() should start with a doctype: %s", result)
	}
	if !strings.Contains(result, "<title>Trace &lt;run&gt;</title>") {
		t.Errorf("RenderDocument() title not escaped: %s", result)
	}
	if !strings.Contains(result, "<h1") || !strings.Contains(result, "Summary") {
		t.Errorf("RenderDocument() missing body: %s", result)
	}
	if !strings.HasSuffix(result, "</html>\n") {
		t.Errorf("RenderDocument() should end with </html>: %s", result)
	}
}
