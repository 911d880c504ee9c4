package media

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MIME types the loader produces.
const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeGIF  = "image/gif"
	MimeBMP  = "image/bmp"
	MimeTIFF = "image/tiff"
	MimeWebP = "image/webp"
	MimeSVG  = "image/svg+xml"
)

// Sniff detects the image type of data from its content. It returns ""
// when the payload is not a recognizable image.
func Sniff(data []byte) string {
	if isSVG(data) {
		return MimeSVG
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return "image/" + format
	}
	if ct := http.DetectContentType(data); strings.HasPrefix(ct, "image/") {
		return ct
	}
	return ""
}

func isSVG(data []byte) bool {
	head := data[:min(len(data), 1024)]
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	head = bytes.TrimSpace(head)
	if bytes.HasPrefix(head, []byte("<svg")) {
		return true
	}
	if bytes.HasPrefix(head, []byte("<?xml")) || bytes.HasPrefix(head, []byte("<!DOCTYPE svg")) {
		return bytes.Contains(head, []byte("<svg"))
	}
	return false
}

// canonicalMime normalizes a declared Content-Type or data URI media type.
func canonicalMime(declared string) string {
	m, _, _ := strings.Cut(declared, ";")
	m = strings.ToLower(strings.TrimSpace(m))
	switch m {
	case "image/jpg", "image/pjpeg":
		return MimeJPEG
	case "image/x-png":
		return MimePNG
	case "image/x-ms-bmp", "image/x-bmp":
		return MimeBMP
	case "image/svg":
		return MimeSVG
	}
	return m
}
