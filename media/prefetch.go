package media

import (
	"context"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/VantageDataChat/pptweaver/translate"
)

// DefaultConcurrency bounds parallel fetches during Prefetch.
const DefaultConcurrency = 8

// ImageRefs returns the distinct image references of doc in document order.
func ImageRefs(doc *translate.Document) []string {
	var refs []string
	for _, slide := range doc.Slides {
		for i := range slide.Elements {
			el := &slide.Elements[i]
			if translate.KindOf(el.TagName) != translate.KindImage {
				continue
			}
			if ref := translate.ImageRef(el); ref != "" {
				refs = append(refs, ref)
			}
		}
	}
	return lo.Uniq(refs)
}

// Prefetch loads refs in parallel so later Load calls hit the memo cache.
// Individual failures are memoized and reported later by Load; the only
// error returned is ctx's.
func (l *Loader) Prefetch(ctx context.Context, refs []string, concurrency int) error {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, ref := range lo.Uniq(refs) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, _, err := l.Load(gctx, ref); err != nil {
				l.logger.Warn("image prefetch failed", "ref", shorten(ref), "err", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	l.logger.Debug("images prefetched", "count", len(refs), "elapsed", time.Since(start))
	return ctx.Err()
}
