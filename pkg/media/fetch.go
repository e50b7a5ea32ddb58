package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/cardsheet/pkg/cache"
	apperr "github.com/matzehuels/cardsheet/pkg/errors"
	"github.com/matzehuels/cardsheet/pkg/httputil"
	"github.com/matzehuels/cardsheet/pkg/observability"
)

// maxFetchBytes bounds a downloaded image.
const maxFetchBytes = 20 << 20

// Fetcher downloads images by URL and decodes them.
type Fetcher struct {
	client *http.Client
	cache  cache.Cache
	keyer  cache.Keyer
	local  *LocalStore
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithCache caches downloaded bytes.
func WithCache(c cache.Cache, k cache.Keyer) FetcherOption {
	return func(f *Fetcher) {
		f.cache = c
		if k != nil {
			f.keyer = k
		}
	}
}

// WithLocalStore resolves /media/ URLs from store instead of over HTTP.
func WithLocalStore(store *LocalStore) FetcherOption {
	return func(f *Fetcher) { f.local = store }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// NewFetcher returns a Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: httputil.NewClient(0),
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads and decodes the image at url. URLs may be http(s), paths
// served by a LocalStore, or file paths.
func (f *Fetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	data, err := f.Bytes(ctx, url)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidImage, err, "decode %s", url)
	}
	return img, nil
}

// Bytes returns the raw image bytes at url.
func (f *Fetcher) Bytes(ctx context.Context, url string) ([]byte, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "empty image URL")
	}

	if f.local != nil && strings.Contains(url, LocalPrefix) && !isRemote(url) {
		return f.readLocal(url)
	}
	if !isRemote(url) {
		return readFile(strings.TrimPrefix(url, "file://"))
	}

	key := f.keyer.ImageKey(url)
	if data, ok, _ := f.cache.Get(ctx, key); ok {
		observability.Cache().OnCacheHit(ctx, "image")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "image")

	var data []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = f.download(ctx, url)
		return err
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeNetwork, err, "fetch %s", url)
	}
	if f.cache.Set(ctx, key, data, cache.ImageTTL) == nil {
		observability.Cache().OnCacheSet(ctx, "image", len(data))
	}
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httputil.Do(f.client, req)
	if err != nil {
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", httputil.ErrNetwork, err)}
	}
	defer resp.Body.Close()
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}
	return readLimited(resp.Body)
}

func (f *Fetcher) readLocal(url string) ([]byte, error) {
	file, err := f.local.Open(url)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeNotFound, err, "open %s", url)
	}
	defer file.Close()
	return readLimited(file)
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeNotFound, err, "open %s", path)
	}
	defer file.Close()
	return readLimited(file)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFetchBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxFetchBytes {
		return nil, apperr.New(apperr.ErrCodeInvalidImage, "image larger than %s", humanSize(maxFetchBytes))
	}
	return data, nil
}

func isRemote(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
