package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VantageDataChat/pptweaver/translate"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40 20"><rect width="40" height="20" fill="#ff0000"/></svg>`

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{10, 20, 30, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func quietLoader(opts ...Option) *Loader {
	opts = append([]Option{WithLogger(log.New(io.Discard)), WithRetries(3, time.Millisecond)}, opts...)
	return NewLoader(opts...)
}

func TestDecodeDataURI(t *testing.T) {
	data := pngBytes(t, 2, 2)
	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	got, mime, err := DecodeDataURI(ref)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", mime)

	t.Run("unpadded", func(t *testing.T) {
		got, _, err := DecodeDataURI("data:;base64," + base64.RawStdEncoding.EncodeToString(data))
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("percent encoded", func(t *testing.T) {
		got, mime, err := DecodeDataURI("data:image/svg+xml,%3Csvg%3E%3C/svg%3E")
		require.NoError(t, err)
		assert.Equal(t, "<svg></svg>", string(got))
		assert.Equal(t, "image/svg+xml", mime)
	})

	for name, bad := range map[string]string{
		"malformed base64": "data:image/png;base64,@@@not-base64@@@",
		"missing comma":    "data:image/png;base64",
		"empty payload":    "data:image/png;base64,",
		"not a data uri":   "http://example.com/a.png",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeDataURI(bad)
			var de *translate.DecodeError
			assert.ErrorAs(t, err, &de)
		})
	}
}

func TestSniff(t *testing.T) {
	assert.Equal(t, MimePNG, Sniff(pngBytes(t, 1, 1)))
	assert.Equal(t, MimeSVG, Sniff([]byte(testSVG)))
	assert.Equal(t, MimeSVG, Sniff([]byte("\n<?xml version=\"1.0\"?>\n"+testSVG)))
	assert.Equal(t, MimeGIF, Sniff([]byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")))
	assert.Empty(t, Sniff([]byte("hello world")))
}

func TestNormalize(t *testing.T) {
	t.Run("png passes through", func(t *testing.T) {
		data := pngBytes(t, 3, 3)
		out, mime, err := Normalize(data, "image/png", 1)
		require.NoError(t, err)
		assert.Equal(t, data, out)
		assert.Equal(t, MimePNG, mime)
	})

	t.Run("declared type is corrected by content", func(t *testing.T) {
		data := pngBytes(t, 3, 3)
		_, mime, err := Normalize(data, "image/jpeg", 1)
		require.NoError(t, err)
		assert.Equal(t, MimePNG, mime)
	})

	t.Run("svg is rasterized", func(t *testing.T) {
		out, mime, err := Normalize([]byte(testSVG), "image/svg+xml", 2)
		require.NoError(t, err)
		assert.Equal(t, MimePNG, mime)

		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 80, img.Bounds().Dx())
		assert.Equal(t, 40, img.Bounds().Dy())
		r, _, _, a := img.At(40, 20).RGBA()
		assert.Equal(t, uint32(0xffff), r)
		assert.Equal(t, uint32(0xffff), a)
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, _, err := Normalize([]byte("not an image"), "", 1)
		assert.Error(t, err)
	})
}

func TestLoaderDataURI(t *testing.T) {
	data := pngBytes(t, 2, 2)
	l := quietLoader()

	got, mime, err := l.Load(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, MimePNG, mime)

	_, _, err = l.Load(context.Background(), "data:image/png;base64,!!!")
	var de *translate.DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestLoaderFetch(t *testing.T) {
	data := pngBytes(t, 4, 4)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	l := quietLoader()
	got, mime, err := l.Load(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, MimePNG, mime)

	_, _, err = l.Load(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second load should hit the memo cache")
	assert.Equal(t, 1, l.Cached())
}

func TestLoaderFetchStatus(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := quietLoader()
	_, _, err := l.Load(context.Background(), srv.URL+"/missing.png")
	var fe *translate.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Equal(t, int32(1), hits.Load(), "4xx must not be retried")

	_, _, err = l.Load(context.Background(), srv.URL+"/missing.png")
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, int32(1), hits.Load(), "failures are memoized")
}

func TestLoaderFetchRetries(t *testing.T) {
	data := pngBytes(t, 1, 1)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	got, _, err := quietLoader().Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, int32(3), hits.Load())
}

func TestLoaderFetchGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, _, err := quietLoader(WithRetries(2, time.Millisecond)).Load(context.Background(), srv.URL)
	var fe *translate.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusBadGateway, fe.StatusCode)
}

func TestLoaderFiles(t *testing.T) {
	dir := t.TempDir()
	data := pngBytes(t, 2, 2)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), data, 0o644))
	l := quietLoader(WithBaseDir(dir))

	got, _, err := l.Load(context.Background(), "pic.png")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	got, _, err = l.Load(context.Background(), "file://"+filepath.ToSlash(filepath.Join(dir, "pic.png")))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, _, err = l.Load(context.Background(), "nope.png")
	var fe *translate.FetchError
	assert.ErrorAs(t, err, &fe)

	_, _, err = l.Load(context.Background(), "ftp://example.com/x.png")
	assert.ErrorIs(t, err, errUnsupportedScheme)
}

func TestLoaderMaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes(t, 64, 64))
	}))
	defer srv.Close()

	_, _, err := quietLoader(WithMaxBytes(16)).Load(context.Background(), srv.URL)
	var fe *translate.FetchError
	assert.ErrorAs(t, err, &fe)
}

func TestLoaderFetchNotAnImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>login</body></html>"))
	}))
	defer srv.Close()

	_, _, err := quietLoader().Load(context.Background(), srv.URL)
	var fe *translate.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Zero(t, fe.StatusCode)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

// stallingServer blocks the first request until the client goes away and
// serves data to every later one.
func stallingServer(t *testing.T, data []byte) (*httptest.Server, <-chan struct{}, *atomic.Int32) {
	t.Helper()
	started := make(chan struct{})
	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			close(started)
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv, started, hits
}

func TestLoaderCancelledNotMemoized(t *testing.T) {
	data := pngBytes(t, 1, 1)
	srv, started, hits := stallingServer(t, data)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	l := quietLoader()
	_, _, err := l.Load(ctx, srv.URL)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, l.Cached())

	got, _, err := l.Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, 1, l.Cached())
	assert.Equal(t, int32(2), hits.Load())
}

func TestLoaderSharedFetchSurvivesCancel(t *testing.T) {
	data := pngBytes(t, 1, 1)
	srv, started, _ := stallingServer(t, data)

	l := quietLoader()
	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, _, err := l.Load(ctx, srv.URL)
		first <- err
	}()
	<-started

	second := make(chan error, 1)
	var got []byte
	go func() {
		var err error
		got, _, err = l.Load(context.Background(), srv.URL)
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-first, context.Canceled)
	require.NoError(t, <-second)
	assert.Equal(t, data, got)
}

func TestRetry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls, "plain errors are not retried")

	calls = 0
	err = Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return &RetryableError{Err: assert.AnError}
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: assert.AnError}
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrefetch(t *testing.T) {
	data := pngBytes(t, 1, 1)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/bad" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	doc := &translate.Document{Slides: []translate.SlideData{
		{Elements: []translate.Element{
			{TagName: "image", Attributes: map[string]string{"href": srv.URL + "/a"}},
			{TagName: "rect"},
			{TagName: "img", Attributes: map[string]string{"src": srv.URL + "/b"}},
		}},
		{Elements: []translate.Element{
			{TagName: "image", Attributes: map[string]string{"xlink:href": srv.URL + "/a"}},
			{TagName: "image", Attributes: map[string]string{"href": srv.URL + "/bad"}},
		}},
	}}

	refs := ImageRefs(doc)
	assert.Equal(t, []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/bad"}, refs)

	l := quietLoader()
	require.NoError(t, l.Prefetch(context.Background(), refs, 2))
	assert.Equal(t, 3, l.Cached())
	assert.Equal(t, int32(3), hits.Load())

	_, _, err := l.Load(context.Background(), srv.URL+"/a")
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}
