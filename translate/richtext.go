package translate

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// processRichText lays out flattened runs as paragraphs. Block tags open a
// paragraph, inline tags continue the current one, and list items get a
// synthesized bullet run ahead of their own run.
func processRichText(c Context, el *Element) (Result, error) {
	var res Result
	cmd := Command{Op: OpTextBox}
	cmd.Left, cmd.Top, cmd.Width, cmd.Height = c.Box(el.Rect)

	var paras []Paragraph
	for i, run := range el.TextRuns {
		tag := strings.ToLower(strings.TrimSpace(run.TagName))
		if i == 0 || IsBlockTag(tag) {
			paras = append(paras, Paragraph{})
		}
		cur := &paras[len(paras)-1]

		// HTML reports a computed fill on every element; only color applies
		font := res.resolveFont(c, styleLookup{run.Style, el.Style}, "color")
		switch tag {
		case "b", "strong":
			font.Bold = true
		case "i", "em":
			font.Italic = true
		}

		if tag == "li" {
			cur.Runs = append(cur.Runs, Run{Text: BulletGlyph})
		}
		cur.Runs = append(cur.Runs, Run{Text: norm.NFC.String(run.Text), Font: font, Styled: true})
	}

	cmd.Paragraphs = paras
	res.Commands = []Command{cmd}
	return res, nil
}
