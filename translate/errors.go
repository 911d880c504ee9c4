package translate

import (
	"errors"
	"fmt"
)

// ErrNoImageSource is returned when an image element is processed by a
// translator that has no ImageSource configured.
var ErrNoImageSource = errors.New("no image source configured")

// ParseError reports a malformed color, length or numeric literal.
type ParseError struct {
	Property string
	Value    string
	Err      error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("cannot parse %s %q", e.Property, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// DecodeError reports malformed inline image data.
type DecodeError struct {
	Ref string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode inline image %s: %v", truncate(e.Ref, 48), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FetchError reports a failure retrieving a remote image. StatusCode is
// zero when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UnsupportedElementError reports a tag with no matching processor.
type UnsupportedElementError struct {
	TagName string
}

func (e *UnsupportedElementError) Error() string {
	return fmt.Sprintf("unsupported element <%s>", e.TagName)
}

// ElementError attributes a failure to one source element.
type ElementError struct {
	Slide   int // 1-based
	Index   int // 0-based position within the slide
	TagName string
	Err     error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("slide %d element %d <%s>: %v", e.Slide, e.Index, e.TagName, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
