// Package assets fetches the raw bytes behind asset URLs.
//
// Nothing is cached: every load of an experience fetches its own resources,
// and the decoded result lives only on the scene node it was loaded for.
package assets

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

	"github.com/h2non/filetype"
)

// Fetch errors.
var (
	ErrNoURL       = errors.New("asset has no url")
	ErrTooLarge    = errors.New("resource exceeds size limit")
	ErrUnsupported = errors.New("unsupported url scheme")
)

// Resource is a fetched payload.
type Resource struct {
	Data        []byte
	ContentType string // from the server or sniffed, may be empty
	Name        string // final path element, used for extension hints
}

// Options configures a Fetcher.
type Options struct {
	BaseDir   string // fallback for relative paths when the experience has none
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

// Fetcher resolves http(s), file and filesystem references.
type Fetcher struct {
	opts   Options
	client *http.Client
}

// NewFetcher creates a fetcher. A nil client uses a default one with opts.Timeout.
func NewFetcher(opts Options, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 64 << 20
	}
	return &Fetcher{opts: opts, client: client}
}

// Fetch loads ref. Relative paths resolve against baseDir, or the configured
// base dir when baseDir is empty.
func (f *Fetcher) Fetch(ctx context.Context, baseDir, ref string) (*Resource, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNoURL
	}

	u, err := url.Parse(ref)
	if err == nil && len(u.Scheme) > 1 {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return f.fetchHTTP(ctx, u)
		case "file":
			return f.fetchFile(u.Path)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, u.Scheme)
		}
	}

	path := ref
	if !filepath.IsAbs(path) {
		if baseDir == "" {
			baseDir = f.opts.BaseDir
		}
		path = filepath.Join(baseDir, filepath.FromSlash(ref))
	}
	return f.fetchFile(path)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, u *url.URL) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", u.Redacted(), resp.Status)
	}
	if resp.ContentLength > f.opts.MaxBytes {
		return nil, fmt.Errorf("fetch %s: %w (%d bytes)", u.Redacted(), ErrTooLarge, resp.ContentLength)
	}

	data, err := f.readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.Redacted(), err)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" || strings.HasPrefix(ct, "application/octet-stream") {
		ct = sniff(data)
	}
	return &Resource{Data: data, ContentType: ct, Name: pathBase(u.Path)}, nil
}

func (f *Fetcher) fetchFile(path string) (*Resource, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()

	data, err := f.readLimited(fh)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &Resource{Data: data, ContentType: sniff(data), Name: filepath.Base(path)}, nil
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.opts.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.opts.MaxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// sniff returns the MIME type detected from magic bytes, or "".
func sniff(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}

func pathBase(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
