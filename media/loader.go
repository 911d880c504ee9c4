package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/VantageDataChat/pptweaver/translate"
)

// Defaults for a Loader.
const (
	DefaultTimeout    = 15 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = 500 * time.Millisecond
	DefaultMaxBytes   = 32 << 20
	DefaultSVGScale   = 2.0
)

var errUnsupportedScheme = errors.New("unsupported URL scheme")

// Loader resolves image references to embeddable bytes. It implements
// translate.ImageSource and is safe for concurrent use.
type Loader struct {
	client     *http.Client
	retries    int
	retryDelay time.Duration
	maxBytes   int64
	svgScale   float64
	baseDir    string
	userAgent  string
	logger     *log.Logger

	cache *gocache.Cache
	group singleflight.Group
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for remote fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.client = &http.Client{Timeout: d} }
}

// WithRetries sets the attempt count and the initial backoff delay.
func WithRetries(attempts int, delay time.Duration) Option {
	return func(l *Loader) {
		l.retries = attempts
		l.retryDelay = delay
	}
}

// WithMaxBytes caps the size of a single image.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) { l.maxBytes = n }
}

// WithSVGScale sets the rasterization scale for SVG images.
func WithSVGScale(s float64) Option {
	return func(l *Loader) { l.svgScale = s }
}

// WithBaseDir resolves relative references against dir.
func WithBaseDir(dir string) Option {
	return func(l *Loader) { l.baseDir = dir }
}

// WithUserAgent sets the User-Agent header of remote fetches.
func WithUserAgent(ua string) Option {
	return func(l *Loader) { l.userAgent = ua }
}

// WithLogger sets the logger.
func WithLogger(lg *log.Logger) Option {
	return func(l *Loader) { l.logger = lg }
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		maxBytes:   DefaultMaxBytes,
		svgScale:   DefaultSVGScale,
		userAgent:  "pptweaver",
		cache:      gocache.New(gocache.NoExpiration, 0),
	}
	for _, o := range opts {
		o(l)
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: DefaultTimeout}
	}
	if l.logger == nil {
		l.logger = log.Default()
	}
	return l
}

// result is a memoized outcome; failures are cached too so a broken
// reference is not retried for every element that uses it.
type result struct {
	data      []byte
	mimeType  string
	err       error
	cancelled bool
}

var _ translate.ImageSource = (*Loader)(nil)

// Load returns the embeddable bytes and MIME type for ref. Concurrent
// loads of one reference share a single fetch; a caller whose ctx is
// still live never receives another caller's cancellation.
func (l *Loader) Load(ctx context.Context, ref string) ([]byte, string, error) {
	ref = strings.TrimSpace(ref)
	for {
		if v, ok := l.cache.Get(ref); ok {
			r := v.(*result)
			return r.data, r.mimeType, r.err
		}

		ch := l.group.DoChan(ref, func() (any, error) {
			r := l.load(ctx, ref)
			// a cancelled load says nothing about the reference
			if r.err != nil && ctx.Err() != nil {
				r.cancelled = true
			} else {
				l.cache.Set(ref, r, gocache.NoExpiration)
			}
			return r, nil
		})

		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case res := <-ch:
			r := res.Val.(*result)
			if r.cancelled && ctx.Err() == nil {
				continue
			}
			return r.data, r.mimeType, r.err
		}
	}
}

// Cached reports how many references have a memoized outcome.
func (l *Loader) Cached() int { return l.cache.ItemCount() }

func (l *Loader) load(ctx context.Context, ref string) *result {
	start := time.Now()
	data, declared, err := l.resolve(ctx, ref)
	if err != nil {
		return &result{err: err}
	}
	data, mimeType, err := Normalize(data, declared, l.svgScale)
	if err != nil {
		if IsDataURI(ref) {
			err = &translate.DecodeError{Ref: ref, Err: err}
		} else {
			err = &translate.FetchError{URL: ref, Err: err}
		}
		return &result{err: err}
	}
	l.logger.Debug("image loaded", "ref", shorten(ref), "mime", mimeType, "bytes", len(data), "elapsed", time.Since(start))
	return &result{data: data, mimeType: mimeType}
}

func (l *Loader) resolve(ctx context.Context, ref string) ([]byte, string, error) {
	if IsDataURI(ref) {
		return DecodeDataURI(ref)
	}

	u, err := url.Parse(ref)
	if err != nil {
		return nil, "", &translate.FetchError{URL: ref, Err: err}
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return l.fetch(ctx, u.String())
	case "file":
		return l.readFile(ref, u.Path)
	case "":
		p := u.Path
		if !filepath.IsAbs(p) && l.baseDir != "" {
			p = filepath.Join(l.baseDir, p)
		}
		return l.readFile(ref, p)
	default:
		return nil, "", &translate.FetchError{URL: ref, Err: fmt.Errorf("%w: %s", errUnsupportedScheme, u.Scheme)}
	}
}

func (l *Loader) readFile(ref, path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &translate.FetchError{URL: ref, Err: err}
	}
	defer f.Close()
	data, err := l.readLimited(f)
	if err != nil {
		return nil, "", &translate.FetchError{URL: ref, Err: err}
	}
	return data, "", nil
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", l.maxBytes)
	}
	return data, nil
}

// fetch GETs rawURL, retrying network errors, 429 and 5xx responses.
func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	var data []byte
	var contentType string
	attempt := 0

	err := Retry(ctx, l.retries, l.retryDelay, func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return &translate.FetchError{URL: rawURL, Err: err}
		}
		req.Header.Set("User-Agent", l.userAgent)
		req.Header.Set("Accept", "image/*,*/*;q=0.8")

		resp, err := l.client.Do(req)
		if err != nil {
			fe := &translate.FetchError{URL: rawURL, Err: err}
			if ctx.Err() != nil {
				return fe
			}
			l.logger.Debug("fetch failed, retrying", "url", rawURL, "attempt", attempt, "err", err)
			return &RetryableError{Err: fe}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			// drain so the connection can be reused
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			fe := &translate.FetchError{URL: rawURL, StatusCode: resp.StatusCode}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				l.logger.Debug("fetch failed, retrying", "url", rawURL, "attempt", attempt, "status", resp.StatusCode)
				return &RetryableError{Err: fe}
			}
			return fe
		}

		body, err := l.readLimited(resp.Body)
		if err != nil {
			return &translate.FetchError{URL: rawURL, Err: err}
		}
		data, contentType = body, resp.Header.Get("Content-Type")
		return nil
	})
	if err != nil {
		var fe *translate.FetchError
		if errors.As(err, &fe) {
			return nil, "", fe
		}
		return nil, "", &translate.FetchError{URL: rawURL, Err: err}
	}
	return data, contentType, nil
}

func shorten(ref string) string {
	if len(ref) <= 64 {
		return ref
	}
	return ref[:64] + "..."
}
