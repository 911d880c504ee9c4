package translate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// RGB is an opaque 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as an upper-case RRGGBB string.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// Paint is a resolved fill or outline paint. A zero Paint is unset and
// means the property must be omitted rather than defaulted.
type Paint struct {
	Color RGB
	Alpha float64 // 0.0-1.0
	Set   bool
}

// NoPaint is the unset paint.
var NoPaint = Paint{}

// Solid returns an opaque paint.
func Solid(c RGB) Paint {
	return Paint{Color: c, Alpha: 1, Set: true}
}

// WithOpacity multiplies the paint alpha by o, clamped to 0-1.
func (p Paint) WithOpacity(o float64) Paint {
	if !p.Set {
		return p
	}
	p.Alpha = clamp01(p.Alpha * clamp01(o))
	return p
}

// ParseColor parses a CSS color. "none" and the empty string return the
// unset paint with a nil error. Unsupported syntax returns a *ParseError.
func ParseColor(s string) (Paint, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "", "none":
		return NoPaint, nil
	case "transparent":
		return Paint{Set: true}, nil
	}

	switch {
	case strings.HasPrefix(v, "#"):
		return parseHexColor(s, v[1:])
	case strings.HasPrefix(v, "rgba(") || strings.HasPrefix(v, "rgb("):
		return parseRGBFunc(s, v)
	}

	if c, ok := colornames.Map[v]; ok {
		return Solid(RGB{R: c.R, G: c.G, B: c.B}), nil
	}
	return NoPaint, &ParseError{Property: "color", Value: s}
}

func parseHexColor(orig, h string) (Paint, error) {
	var digits []uint8
	switch len(h) {
	case 3, 4:
		for i := 0; i < len(h); i++ {
			n, ok := hexNibble(h[i])
			if !ok {
				return NoPaint, &ParseError{Property: "color", Value: orig}
			}
			digits = append(digits, n<<4|n)
		}
	case 6, 8:
		for i := 0; i < len(h); i += 2 {
			hi, ok1 := hexNibble(h[i])
			lo, ok2 := hexNibble(h[i+1])
			if !ok1 || !ok2 {
				return NoPaint, &ParseError{Property: "color", Value: orig}
			}
			digits = append(digits, hi<<4|lo)
		}
	default:
		return NoPaint, &ParseError{Property: "color", Value: orig}
	}
	p := Solid(RGB{R: digits[0], G: digits[1], B: digits[2]})
	if len(digits) == 4 {
		p.Alpha = float64(digits[3]) / 255
	}
	return p, nil
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// parseRGBFunc handles rgb()/rgba() in both the legacy comma form and the
// space form with an optional "/ alpha".
func parseRGBFunc(orig, v string) (Paint, error) {
	open := strings.IndexByte(v, '(')
	if !strings.HasSuffix(v, ")") || open < 0 {
		return NoPaint, &ParseError{Property: "color", Value: orig}
	}
	body := v[open+1 : len(v)-1]

	var parts []string
	if strings.Contains(body, ",") {
		for _, p := range strings.Split(body, ",") {
			parts = append(parts, strings.TrimSpace(p))
		}
	} else {
		body = strings.Replace(body, "/", " / ", 1)
		for _, p := range strings.Fields(body) {
			if p != "/" {
				parts = append(parts, p)
			}
		}
	}
	if len(parts) != 3 && len(parts) != 4 {
		return NoPaint, &ParseError{Property: "color", Value: orig}
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := parseChannel(parts[i])
		if err != nil {
			return NoPaint, &ParseError{Property: "color", Value: orig, Err: err}
		}
		ch[i] = n
	}
	p := Solid(RGB{R: ch[0], G: ch[1], B: ch[2]})
	if len(parts) == 4 {
		a, err := parseAlpha(parts[3])
		if err != nil {
			return NoPaint, &ParseError{Property: "color", Value: orig, Err: err}
		}
		p.Alpha = a
	}
	return p, nil
}

func parseChannel(s string) (uint8, error) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, err
		}
		return uint8(math.Round(clamp01(f/100) * 255)), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(math.Max(0, math.Min(255, f)))), nil
}

func parseAlpha(s string) (float64, error) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, err
		}
		return clamp01(f / 100), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return clamp01(f), nil
}

// ParseOpacity parses an opacity value ("0.5" or "50%"). Empty input
// returns 1.
func ParseOpacity(property, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, nil
	}
	a, err := parseAlpha(s)
	if err != nil {
		return 1, &ParseError{Property: property, Value: s, Err: err}
	}
	return a, nil
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
