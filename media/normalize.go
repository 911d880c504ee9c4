package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// defaultSVGSize is used when an SVG has no usable viewBox.
const defaultSVGSize = 100

// embeddable lists the formats a presentation can carry as is.
var embeddable = map[string]bool{
	MimePNG: true, MimeJPEG: true, MimeGIF: true, MimeBMP: true, MimeTIFF: true,
}

// ErrUnsupportedImage reports bytes that were read successfully but are
// not an image format the loader can embed or transcode.
var ErrUnsupportedImage = errors.New("unsupported image data")

// Normalize converts image bytes into a format the presentation writer
// can embed. SVG is rasterized, WebP and any other decodable format is
// transcoded to PNG, and embeddable formats pass through unchanged.
// scale multiplies the SVG viewBox size; values <= 0 mean 1.
func Normalize(data []byte, mimeType string, scale float64) ([]byte, string, error) {
	mimeType = canonicalMime(mimeType)
	if sniffed := Sniff(data); sniffed != "" {
		mimeType = sniffed
	}

	switch {
	case embeddable[mimeType]:
		return data, mimeType, nil
	case mimeType == MimeSVG:
		out, err := RasterizeSVG(data, scale)
		if err != nil {
			return nil, "", err
		}
		return out, MimePNG, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w %q: %v", ErrUnsupportedImage, mimeType, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("transcode %s to png: %w", mimeType, err)
	}
	return buf.Bytes(), MimePNG, nil
}

// RasterizeSVG renders an SVG document to PNG at its viewBox size times scale.
func RasterizeSVG(data []byte, scale float64) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	if scale <= 0 {
		scale = 1
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = defaultSVGSize, defaultSVGSize
	}
	pw, ph := max(int(w*scale), 1), max(int(h*scale), 1)

	icon.SetTarget(0, 0, float64(pw), float64(ph))
	rgba := image.NewRGBA(image.Rect(0, 0, pw, ph))
	scanner := rasterx.NewScannerGV(pw, ph, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(pw, ph, scanner)
	icon.Draw(raster, 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, fmt.Errorf("encode svg raster: %w", err)
	}
	return buf.Bytes(), nil
}
