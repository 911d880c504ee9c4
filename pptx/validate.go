package pptx

import (
	"fmt"
	"strings"
)

// Validate checks the presentation for structural issues and returns an error
// describing all problems found, or nil if the presentation is valid.
func (p *Presentation) Validate() error {
	var errs []string

	if p.properties == nil {
		errs = append(errs, "document properties are nil")
	}
	if p.layout == nil {
		errs = append(errs, "document layout is nil")
	} else {
		if p.layout.CX <= 0 {
			errs = append(errs, "layout width (CX) must be positive")
		}
		if p.layout.CY <= 0 {
			errs = append(errs, "layout height (CY) must be positive")
		}
	}
	if len(p.slides) == 0 {
		errs = append(errs, "presentation must have at least one slide")
	}

	for i, slide := range p.slides {
		prefix := fmt.Sprintf("slide %d", i+1)
		for _, e := range validateSlide(slide) {
			errs = append(errs, prefix+": "+e)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func validateSlide(s *Slide) []string {
	var errs []string
	for j, shape := range s.shapes {
		prefix := fmt.Sprintf("shape %d", j+1)
		if shape == nil {
			errs = append(errs, prefix+": shape is nil")
			continue
		}
		if shape.GetWidth() < 0 {
			errs = append(errs, prefix+": width is negative")
		}
		if shape.GetHeight() < 0 {
			errs = append(errs, prefix+": height is negative")
		}

		switch sh := shape.(type) {
		case *DrawingShape:
			if len(sh.data) == 0 {
				errs = append(errs, prefix+": drawing shape has no image data")
			}
			if !isValidImageMime(sh.mimeType) {
				errs = append(errs, prefix+": unsupported image MIME type: "+sh.mimeType)
			}
		case *RichTextShape:
			errs = append(errs, validateParagraphs(sh.paragraphs, prefix)...)
		case *LineShape:
			if sh.lineWidthEMU < 0 {
				errs = append(errs, prefix+": line width is negative")
			}
		case *FreeformShape:
			if sh.path == nil || len(sh.path.Commands) == 0 {
				errs = append(errs, prefix+": freeform has no path")
			} else if sh.path.Commands[0].Type != "moveTo" {
				errs = append(errs, prefix+": freeform path must start with moveTo")
			}
		}
	}
	return errs
}

// validateParagraphs checks paragraph elements for common issues. A nil
// run font is allowed and inherits the frame defaults.
func validateParagraphs(paragraphs []*Paragraph, prefix string) []string {
	var errs []string
	for i, para := range paragraphs {
		if para == nil {
			errs = append(errs, fmt.Sprintf("%s: paragraph %d is nil", prefix, i+1))
			continue
		}
		for k, tr := range para.runs {
			if tr == nil {
				errs = append(errs, fmt.Sprintf("%s: paragraph %d run %d is nil", prefix, i+1, k+1))
				continue
			}
			if tr.font != nil && tr.font.Size <= 0 {
				errs = append(errs, fmt.Sprintf("%s: paragraph %d run %d has non-positive font size", prefix, i+1, k+1))
			}
		}
	}
	return errs
}

// isValidImageMime checks if a MIME type can be embedded as is.
func isValidImageMime(mime string) bool {
	switch mime {
	case "image/png", "image/jpeg", "image/gif", "image/bmp", "image/tiff":
		return true
	}
	return false
}
