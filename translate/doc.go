// Package translate converts normalized rendered elements into
// presentation shapes.
//
// Each element is routed by tag to a pure processor that turns it into a
// list of Commands. Commands are then replayed on a Sink in element
// order, so the z-order of the output matches the source draw order.
// Coordinates are source pixels on input and EMU on output.
//
// A failing element is reported and skipped; it never aborts its slide.
package translate
