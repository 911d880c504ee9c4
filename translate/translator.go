package translate

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// Report summarizes a translation run.
type Report struct {
	Slides   int
	Elements int
	Shapes   int
	Skipped  int
	Failures []error // *ElementError, element dropped
	Warnings []error // *ElementError, element rendered with defaults
}

// Failed reports whether any element was dropped.
func (r *Report) Failed() bool { return len(r.Failures) > 0 }

// Translator dispatches normalized elements to their processors and
// replays the resulting commands on a sink. It keeps no per-element state.
type Translator struct {
	images ImageSource
	logger *log.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithImageSource sets the loader used for image elements.
func WithImageSource(src ImageSource) Option {
	return func(t *Translator) { t.images = src }
}

// WithLogger sets the logger for per-element diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(t *Translator) { t.logger = l }
}

// New creates a Translator.
func New(opts ...Option) *Translator {
	t := &Translator{}
	for _, o := range opts {
		o(t)
	}
	if t.logger == nil {
		t.logger = log.Default()
	}
	return t
}

// Process converts one element into shape commands. It performs no sink
// calls; the same element and context always give the same commands.
func (t *Translator) Process(ctx context.Context, c Context, el *Element) (Result, error) {
	switch kind := KindOf(el.TagName); kind {
	case KindRect:
		return processRect(c, el)
	case KindOval:
		return processOval(c, el)
	case KindLine:
		return processLine(c, el)
	case KindPolygon:
		return processPolygon(c, el)
	case KindPolyline:
		return processPolyline(c, el)
	case KindPath:
		return processPath(c, el)
	case KindText:
		return processText(c, el)
	case KindRichText:
		return processRichText(c, el)
	case KindImage:
		return processImage(ctx, c, el, t.images)
	default:
		return Result{}, &UnsupportedElementError{TagName: el.TagName}
	}
}

// TranslateSlide processes elements strictly in order and replays each
// element's commands on sink before moving on. Failures are recorded in
// rep and never stop the slide. The only error returned is the context
// error when ctx is cancelled; shapes emitted so far are left in place.
func (t *Translator) TranslateSlide(ctx context.Context, slide int, c Context, elements []Element, sink Sink, rep *Report) error {
	for i := range elements {
		if err := ctx.Err(); err != nil {
			return err
		}
		el := &elements[i]
		rep.Elements++

		res, err := t.Process(ctx, c, el)
		if err == nil {
			err = Emit(sink, res.Commands)
		}
		for _, w := range res.Warnings {
			ew := &ElementError{Slide: slide, Index: i, TagName: el.TagName, Err: w}
			rep.Warnings = append(rep.Warnings, ew)
			t.logger.Debug("element rendered with defaults", "slide", slide, "index", i, "tag", el.TagName, "err", w)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return ctxErr
			}
			ee := &ElementError{Slide: slide, Index: i, TagName: el.TagName, Err: err}
			var unsupported *UnsupportedElementError
			if errors.As(err, &unsupported) {
				rep.Skipped++
				t.logger.Warn("skipping unsupported element", "slide", slide, "index", i, "tag", el.TagName)
			} else {
				t.logger.Error("element failed", "slide", slide, "index", i, "tag", el.TagName, "err", err)
			}
			rep.Failures = append(rep.Failures, ee)
			continue
		}
		rep.Shapes += len(res.Commands)
	}
	return nil
}

// SlideFactory creates the sink for a slide and the context that maps its
// canvas onto the output slide. index is 0-based.
type SlideFactory func(index int, slide *SlideData) (Sink, Context, error)

// Translate converts every slide of doc in order.
func (t *Translator) Translate(ctx context.Context, doc *Document, newSlide SlideFactory) (*Report, error) {
	rep := &Report{}
	for i := range doc.Slides {
		sd := &doc.Slides[i]
		sink, c, err := newSlide(i, sd)
		if err != nil {
			return rep, fmt.Errorf("create slide %d: %w", i+1, err)
		}
		rep.Slides++
		t.logger.Debug("translating slide", "slide", i+1, "elements", len(sd.Elements), "scaleX", c.ScaleX, "scaleY", c.ScaleY)
		if err := t.TranslateSlide(ctx, i+1, c, sd.Elements, sink, rep); err != nil {
			return rep, err
		}
	}
	return rep, nil
}
