package translate

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// BulletGlyph prefixes every list item.
const BulletGlyph = "• "

// blockTags start a new paragraph in rich text; everything else is inline.
var blockTags = map[string]bool{
	"p": true, "li": true, "div": true, "blockquote": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// IsBlockTag reports whether tag opens a new paragraph.
func IsBlockTag(tag string) bool {
	return blockTags[strings.ToLower(strings.TrimSpace(tag))]
}

// styleLookup resolves a style property through an ordered chain of maps.
type styleLookup []map[string]string

func (s styleLookup) get(name string) string {
	for _, m := range s {
		if m == nil {
			continue
		}
		if v := strings.TrimSpace(m[name]); v != "" {
			return v
		}
	}
	return ""
}

// resolveFont resolves size, weight, slant and color. The color comes from
// the first colorProps entry set anywhere in the chain.
func (r *Result) resolveFont(c Context, styles styleLookup, colorProps ...string) Font {
	sizePx := DefaultFontSizePx
	if v := styles.get("fontSize"); v != "" {
		if px, err := ParseLength("fontSize", v); err == nil && px > 0 {
			sizePx = px
		} else {
			r.warn(err)
		}
	}

	font := Font{
		Size:   c.FontSize(sizePx),
		Bold:   isBold(styles.get("fontWeight")),
		Italic: isItalic(styles.get("fontStyle")),
	}

	var raw string
	for _, prop := range colorProps {
		if raw = styles.get(prop); raw != "" {
			break
		}
	}
	p, err := ParseColor(raw)
	if err != nil {
		r.warn(err)
		p = NoPaint
	}
	font.Color = p
	return font
}

func isBold(weight string) bool {
	switch strings.ToLower(weight) {
	case "bold", "bolder":
		return true
	case "", "normal", "lighter":
		return false
	}
	n, err := strconv.Atoi(weight)
	return err == nil && n >= 600
}

func isItalic(style string) bool {
	s := strings.ToLower(style)
	return s == "italic" || strings.HasPrefix(s, "oblique")
}

// processText writes the literal text as a single run in a cleared text
// box at the element bounding box.
func processText(c Context, el *Element) (Result, error) {
	var res Result
	cmd := Command{Op: OpTextBox}
	cmd.Left, cmd.Top, cmd.Width, cmd.Height = c.Box(el.Rect)
	cmd.Paragraphs = []Paragraph{{
		Runs: []Run{{
			Text:   norm.NFC.String(el.Text),
			Font:   res.resolveFont(c, styleLookup{el.Style}, "fill", "color"),
			Styled: true,
		}},
	}}
	res.Commands = []Command{cmd}
	return res, nil
}
