// Package browser renders HTML/SVG documents in headless Chromium and
// extracts the normalized per-slide element lists the translator consumes.
package browser
