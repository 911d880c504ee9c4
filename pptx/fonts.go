package pptx

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

type faceKey struct {
	name   string
	size   float64
	bold   bool
	italic bool
}

// FontCache loads TrueType and OpenType fonts from disk and caches the
// faces built from them. It is safe for concurrent use.
type FontCache struct {
	mu      sync.RWMutex
	dirs    []string
	fonts   map[string]*opentype.Font // lower-case name -> parsed font
	faces   map[faceKey]font.Face
	scanned bool
}

// NewFontCache creates a FontCache that searches the given directories
// plus the OS default font directories.
func NewFontCache(extraDirs ...string) *FontCache {
	return &FontCache{
		dirs:  append(systemFontDirs(), extraDirs...),
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// GetFace returns a face for the given family, or nil when no installed
// font matches. Generic CSS families are mapped to common installed ones.
func (fc *FontCache) GetFace(name string, sizePt float64, bold, italic bool) font.Face {
	fc.ensureScanned()

	key := faceKey{name: strings.ToLower(strings.TrimSpace(name)), size: sizePt, bold: bold, italic: italic}

	fc.mu.RLock()
	face, ok := fc.faces[key]
	fc.mu.RUnlock()
	if ok {
		return face
	}

	f := fc.findFont(key.name, bold, italic)
	if f == nil {
		return nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePt,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil
	}

	fc.mu.Lock()
	fc.faces[key] = face
	fc.mu.Unlock()
	return face
}

var styleSuffixes = struct{ boldItalic, bold, italic []string }{
	boldItalic: []string{" bold italic", "bi", " bolditalic", "z"},
	bold:       []string{" bold", "bd", "b"},
	italic:     []string{" italic", "i", " it"},
}

// genericFamilies maps CSS generic families to installed candidates.
var genericFamilies = map[string][]string{
	"sans-serif": {"arial", "helvetica", "dejavu sans", "liberation sans", "noto sans"},
	"serif":      {"times new roman", "dejavu serif", "liberation serif", "noto serif"},
	"monospace":  {"courier new", "dejavu sans mono", "liberation mono", "noto sans mono"},
}

func (fc *FontCache) findFont(lower string, bold, italic bool) *opentype.Font {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	candidates := []string{lower}
	if generic, ok := genericFamilies[lower]; ok {
		candidates = generic
	}
	for _, name := range candidates {
		var suffixes []string
		if bold && italic {
			suffixes = append(suffixes, styleSuffixes.boldItalic...)
		}
		if bold {
			suffixes = append(suffixes, styleSuffixes.bold...)
		}
		if italic {
			suffixes = append(suffixes, styleSuffixes.italic...)
		}
		for _, s := range suffixes {
			if f, ok := fc.fonts[name+s]; ok {
				return f
			}
		}
		if f, ok := fc.fonts[name]; ok {
			return f
		}
	}
	return nil
}

// LoadFontData registers a TrueType/OpenType font from raw bytes.
func (fc *FontCache) LoadFontData(name string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", name, err)
	}
	fc.mu.Lock()
	fc.fonts[strings.ToLower(name)] = f
	fc.registerByFamilyName(f)
	fc.mu.Unlock()
	return nil
}

func (fc *FontCache) ensureScanned() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.scanned {
		return
	}
	fc.scanned = true
	for _, dir := range fc.dirs {
		fc.scanDir(dir, 0)
	}
}

const (
	maxFontScanDepth = 3
	maxFontFileSize  = 20 << 20
)

func (fc *FontCache) scanDir(dir string, depth int) {
	if depth > maxFontScanDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			fc.scanDir(filepath.Join(dir, entry.Name()), depth+1)
			continue
		}
		lower := strings.ToLower(entry.Name())
		ext := filepath.Ext(lower)
		if ext != ".ttf" && ext != ".otf" && ext != ".ttc" && ext != ".otc" {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() > maxFontFileSize {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		base := strings.TrimSuffix(lower, ext)
		if ext == ".ttc" || ext == ".otc" {
			fc.loadCollection(data, base)
		} else if f, err := opentype.Parse(data); err == nil {
			fc.fonts[base] = f
			fc.registerByFamilyName(f)
		}
	}
}

func (fc *FontCache) loadCollection(data []byte, base string) {
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return
	}
	for i := range coll.NumFonts() {
		f, err := coll.Font(i)
		if err != nil {
			continue
		}
		if i == 0 {
			fc.fonts[base] = f
		}
		fc.registerByFamilyName(f)
	}
}

// registerByFamilyName indexes a font under its family and full names.
// Callers hold fc.mu.
func (fc *FontCache) registerByFamilyName(f *opentype.Font) {
	for _, id := range []sfnt.NameID{sfnt.NameIDFamily, sfnt.NameIDFull} {
		if n, err := f.Name(nil, id); err == nil && n != "" {
			fc.fonts[strings.ToLower(n)] = f
		}
	}
}

func systemFontDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		dirs := []string{filepath.Join(windir, "Fonts")}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		dirs := []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
		return dirs
	default:
		dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".local", "share", "fonts"), filepath.Join(home, ".fonts"))
		}
		return dirs
	}
}
