package media

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"

	"github.com/VantageDataChat/pptweaver/translate"
)

var (
	errNotDataURI   = errors.New("not a data URI")
	errMissingComma = errors.New("missing ',' separator")
	errEmptyPayload = errors.New("empty payload")
)

// IsDataURI reports whether ref is an inline data reference.
func IsDataURI(ref string) bool {
	return len(ref) >= 5 && strings.EqualFold(ref[:5], "data:")
}

// DecodeDataURI decodes a data:[<mediatype>][;base64],<data> reference.
// The declared media type is returned as is; callers sniff the payload
// when it is missing. Failures are reported as *translate.DecodeError.
func DecodeDataURI(ref string) ([]byte, string, error) {
	if !IsDataURI(ref) {
		return nil, "", &translate.DecodeError{Ref: ref, Err: errNotDataURI}
	}
	header, payload, ok := strings.Cut(ref[5:], ",")
	if !ok {
		return nil, "", &translate.DecodeError{Ref: ref, Err: errMissingComma}
	}

	params := strings.Split(header, ";")
	mimeType := strings.ToLower(strings.TrimSpace(params[0]))
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	var err error
	if isBase64 {
		data, err = decodeBase64(payload)
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		data = []byte(s)
	}
	if err != nil {
		return nil, "", &translate.DecodeError{Ref: ref, Err: err}
	}
	if len(data) == 0 {
		return nil, "", &translate.DecodeError{Ref: ref, Err: errEmptyPayload}
	}
	return data, mimeType, nil
}

// decodeBase64 accepts padded and unpadded payloads in either alphabet,
// with embedded whitespace or percent-escapes.
func decodeBase64(s string) ([]byte, error) {
	if strings.Contains(s, "%") {
		if u, err := url.PathUnescape(s); err == nil {
			s = u
		}
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)

	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding,
		base64.URLEncoding, base64.RawURLEncoding,
	} {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
