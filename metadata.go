package pptweaver

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/VantageDataChat/pptweaver/pptx"
)

// Metadata is the document information found in an HTML head.
type Metadata struct {
	Title       string
	Author      string
	Description string
	Keywords    string
}

// ReadMetadata parses HTML and collects the title and the author,
// description and keywords meta tags. The first occurrence of each wins.
func ReadMetadata(r io.Reader) (Metadata, error) {
	var md Metadata
	doc, err := html.Parse(r)
	if err != nil {
		return md, fmt.Errorf("parse html: %w", err)
	}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if md.Title == "" {
					md.Title = collapse(textContent(n))
				}
			case atom.Meta:
				md.setMeta(attr(n, "name"), attr(n, "content"))
			case atom.Svg, atom.Script, atom.Style:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return md, nil
}

func (m *Metadata) setMeta(name, content string) {
	content = collapse(content)
	if content == "" {
		return
	}
	var field *string
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "author":
		field = &m.Author
	case "description":
		field = &m.Description
	case "keywords":
		field = &m.Keywords
	default:
		return
	}
	if *field == "" {
		*field = content
	}
}

// apply copies non-empty fields into props.
func (m Metadata) apply(props *pptx.DocumentProperties) {
	if m.Title != "" {
		props.Title = m.Title
	}
	if m.Author != "" {
		props.Creator = m.Author
	}
	if m.Description != "" {
		props.Description = m.Description
	}
	if m.Keywords != "" {
		props.Keywords = m.Keywords
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
