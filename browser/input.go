package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/VantageDataChat/pptweaver/translate"
)

// InputURL converts a CLI input (local path, file:// or http(s):// URL)
// into the URL the browser navigates to.
func InputURL(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("empty input")
	}
	if u, err := url.Parse(input); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return u.String(), nil
		}
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", input, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// ParseCanvas parses a WIDTHxHEIGHT canvas size such as "1280x720".
func ParseCanvas(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid canvas %q: want WIDTHxHEIGHT", s)
	}
	width, err = strconv.Atoi(strings.TrimSpace(ws))
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid canvas width in %q", s)
	}
	height, err = strconv.Atoi(strings.TrimSpace(hs))
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid canvas height in %q", s)
	}
	return width, height, nil
}

// DecodeDocument parses a normalized document from its JSON form, as
// produced by the extraction script or written by the inspect command.
func DecodeDocument(data []byte) (*translate.Document, error) {
	var doc translate.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	for i := range doc.Slides {
		s := &doc.Slides[i]
		if s.Width < 0 || s.Height < 0 {
			return nil, fmt.Errorf("slide %d: negative canvas size %gx%g", i+1, s.Width, s.Height)
		}
	}
	return &doc, nil
}

// fromEvaluate converts the value returned by page.Evaluate, a tree of
// maps and slices, into a Document.
func fromEvaluate(v any) (*translate.Document, error) {
	if v == nil {
		return nil, errors.New("extraction script returned nothing")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode extraction result: %w", err)
	}
	return DecodeDocument(data)
}
