// Package render converts the structured-minutes markdown dialect into HTML
// suitable for pasting into Outlook.
//
// Outlook's HTML renderer ignores external CSS and <style> blocks, so every
// block carries its styling inline. The input dialect is the fixed output
// contract of the generation prompt: horizontal rules, pipe tables, level 2/3
// headings, dash bullets, a banner callout line, bold metadata lines, and
// plain paragraphs, with **strong** and *italic* inline spans.
//
// Rendering is a pure function of the input: identical markdown yields
// byte-identical HTML.
package render

import (
	"fmt"
	"regexp"
	"strings"
)

const fontStack = "Calibri,Arial,sans-serif"

// CalloutSentinel marks the disclaimer banner line emitted by the generation
// step. Lines starting with it render as a tinted callout block.
const CalloutSentinel = "📋"

var (
	// tableSeparatorRe matches separator rows like |---|---| which are
	// dropped silently and never start or extend a table.
	tableSeparatorRe = regexp.MustCompile(`^\|[\s\-|]+\|$`)

	// strongRe is resolved before italicRe so the double markers are not
	// consumed as two single spans.
	strongRe = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.+?)\*`)
)

// Renderer converts structured-minutes markdown to inline-styled HTML.
type Renderer struct{}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render converts markdown to a complete HTML document: the rendered blocks
// wrapped in a fixed head/body with the default font, size, color, and
// maximum width declared inline.
func (r *Renderer) Render(markdown string) string {
	body := strings.Join(r.Blocks(markdown), "\n")

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:%s;font-size:12px;color:#333;max-width:700px;">
%s
</body>
</html>`, fontStack, body)
}

// scanState tracks the line scanner's mode. The scanner has exactly two
// states; the InTable state accumulates rows until a boundary flushes them.
type scanState int

const (
	stateNormal scanState = iota
	stateInTable
)

// lineScanner is the single-pass scanner over markdown lines. Table rows
// accumulate in rows until flushTable emits them as one block.
type lineScanner struct {
	state  scanState
	rows   [][]string
	blocks []string
}

// flushTable emits any accumulated table rows as a single table block and
// returns the scanner to Normal state. A table with zero rows emits nothing.
func (sc *lineScanner) flushTable() {
	if sc.state != stateInTable {
		return
	}
	if block := renderTable(sc.rows); block != "" {
		sc.blocks = append(sc.blocks, block)
	}
	sc.rows = nil
	sc.state = stateNormal
}

// Blocks converts markdown to an ordered sequence of styled HTML block
// strings. Blank input lines emit empty placeholder entries to preserve
// vertical spacing.
func (r *Renderer) Blocks(markdown string) []string {
	sc := &lineScanner{blocks: []string{}}

	for _, line := range strings.Split(markdown, "\n") {
		stripped := strings.TrimSpace(line)

		// Horizontal rule: flushes a pending table first.
		if stripped == "---" {
			sc.flushTable()
			sc.blocks = append(sc.blocks,
				`<hr style="border:none;border-top:1px solid #ccc;margin:16px 0;">`)
			continue
		}

		// Table candidate: leading pipe. Separator rows are dropped.
		if strings.HasPrefix(stripped, "|") && strings.Contains(stripped[1:], "|") {
			if tableSeparatorRe.MatchString(stripped) {
				continue
			}
			cells := splitTableRow(stripped)
			if sc.state != stateInTable {
				sc.state = stateInTable
				sc.rows = [][]string{cells} // first row is the header
			} else {
				sc.rows = append(sc.rows, cells)
			}
			continue
		}

		// Any non-table line leaves table context.
		sc.flushTable()

		switch {
		case strings.HasPrefix(stripped, "## "):
			sc.blocks = append(sc.blocks, fmt.Sprintf(
				`<h2 style="font-family:%s;font-size:16px;color:#1a1a1a;margin:20px 0 8px 0;border-bottom:1px solid #ddd;padding-bottom:4px;">%s</h2>`,
				fontStack, inlineFormat(stripped[len("## "):])))

		case strings.HasPrefix(stripped, "### "):
			sc.blocks = append(sc.blocks, fmt.Sprintf(
				`<h3 style="font-family:%s;font-size:14px;color:#333;margin:14px 0 6px 0;">%s</h3>`,
				fontStack, inlineFormat(stripped[len("### "):])))

		case strings.HasPrefix(stripped, "- "):
			sc.blocks = append(sc.blocks, fmt.Sprintf(
				`<p style="font-family:%s;font-size:12px;color:#333;margin:2px 0 2px 20px;padding-left:8px;">• %s</p>`,
				fontStack, inlineFormat(stripped[len("- "):])))

		case strings.HasPrefix(stripped, CalloutSentinel):
			sc.blocks = append(sc.blocks, fmt.Sprintf(
				`<p style="font-family:%s;font-size:11px;color:#555;background:#f5f5f5;padding:8px 12px;border-left:3px solid #888;margin:0 0 12px 0;">%s</p>`,
				fontStack, inlineFormat(stripped)))

		case strings.HasPrefix(stripped, "**") && strings.Contains(stripped, ":**"):
			sc.blocks = append(sc.blocks, fmt.Sprintf(
				`<p style="font-family:%s;font-size:12px;color:#333;margin:2px 0;">%s</p>`,
				fontStack, inlineFormat(stripped)))

		case stripped == "":
			sc.blocks = append(sc.blocks, "")

		default:
			sc.blocks = append(sc.blocks, fmt.Sprintf(
				`<p style="font-family:%s;font-size:12px;color:#333;margin:4px 0;">%s</p>`,
				fontStack, inlineFormat(stripped)))
		}
	}

	// End of input flushes any still-pending table.
	sc.flushTable()

	return sc.blocks
}

// splitTableRow extracts the trimmed interior cells of a pipe-delimited row.
func splitTableRow(row string) []string {
	parts := strings.Split(row, "|")
	// Drop the empty leading/trailing parts outside the first and last pipe.
	interior := parts[1 : len(parts)-1]
	cells := make([]string, len(interior))
	for i, c := range interior {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// renderTable renders accumulated rows as one bordered table block. The
// first row is the header; zero rows render as empty output.
func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	const (
		tableStyle      = `style="border-collapse:collapse;font-family:Calibri,Arial,sans-serif;font-size:12px;margin:8px 0;width:100%;"`
		headerCellStyle = `style="border:1px solid #bbb;padding:6px 10px;background:#f0f0f0;font-weight:bold;text-align:left;"`
		cellStyle       = `style="border:1px solid #ddd;padding:6px 10px;text-align:left;"`
	)

	var b strings.Builder
	fmt.Fprintf(&b, "<table %s>\n<thead><tr>\n", tableStyle)
	for _, cell := range rows[0] {
		fmt.Fprintf(&b, "  <th %s>%s</th>\n", headerCellStyle, inlineFormat(cell))
	}
	b.WriteString("</tr></thead>\n<tbody>\n")

	for _, row := range rows[1:] {
		b.WriteString("<tr>\n")
		for _, cell := range row {
			fmt.Fprintf(&b, "  <td %s>%s</td>\n", cellStyle, inlineFormat(cell))
		}
		b.WriteString("</tr>\n")
	}

	b.WriteString("</tbody></table>")
	return b.String()
}

// inlineFormat resolves inline markdown spans: **strong** first, then
// *italic*, both non-greedy.
func inlineFormat(text string) string {
	text = strongRe.ReplaceAllString(text, "<b>$1</b>")
	text = italicRe.ReplaceAllString(text, "<i>$1</i>")
	return text
}
