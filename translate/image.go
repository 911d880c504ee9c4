package translate

import (
	"context"
)

// ImageSource resolves an image reference (inline data URI or absolute
// URL) to bytes and a MIME type. Implementations report *DecodeError and
// *FetchError respectively.
type ImageSource interface {
	Load(ctx context.Context, ref string) (data []byte, mimeType string, err error)
}

// ImageRef returns the image reference of an element, checking href,
// xlink:href and src in that order.
func ImageRef(el *Element) string {
	for _, name := range []string{"href", "xlink:href", "src"} {
		if v := el.Attr(name); v != "" {
			return v
		}
	}
	return ""
}

func processImage(ctx context.Context, c Context, el *Element, src ImageSource) (Result, error) {
	var res Result
	ref := ImageRef(el)
	if ref == "" {
		return res, &ParseError{Property: "href", Value: ""}
	}
	if src == nil {
		return res, ErrNoImageSource
	}
	data, mime, err := src.Load(ctx, ref)
	if err != nil {
		return res, err
	}
	cmd := Command{Op: OpPicture, Image: data, MimeType: mime}
	cmd.Left, cmd.Top, cmd.Width, cmd.Height = c.Box(el.Rect)
	res.Commands = []Command{cmd}
	return res, nil
}
