package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound wraps a missing file or fs entry, and a 404 response.
var ErrNotFound = errors.New("loader: not found")

// Options configures a Loader.
type Options struct {
	FileSystem     fs.FS
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	// MaxBytes caps HTTP response bodies. Zero means 8 MiB.
	MaxBytes int64
}

// Loader dispatches on Source.Kind.
type Loader struct {
	fs       fs.FS
	http     *http.Client
	timeout  time.Duration
	maxBytes int64
}

// New constructs a Loader. A nil HTTPClient gets a default client.
func New(options Options) *Loader {
	client := options.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	maxBytes := options.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 8 << 20
	}
	return &Loader{
		fs:       options.FileSystem,
		http:     client,
		timeout:  options.RequestTimeout,
		maxBytes: maxBytes,
	}
}

// Load returns the raw bytes of src.
func (l *Loader) Load(ctx context.Context, src Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("loader: source is nil")
	}
	switch src.Kind() {
	case SourceKindFile:
		return l.loadFile(ctx, src.Location())
	case SourceKindFS:
		return l.loadFS(ctx, src.Location())
	case SourceKindURL:
		resp, err := l.Get(ctx, src.Location(), nil)
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	default:
		return nil, fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
}

func (l *Loader) loadFile(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("loader: file path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return data, err
}

func (l *Loader) loadFS(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("loader: fs path is required")
	}
	if l.fs == nil {
		return nil, errors.New("loader: fs is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fs, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// Response is a fully read HTTP response.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Get performs a GET against url and reads the body. Non-2xx statuses are
// errors.
func (l *Loader) Get(ctx context.Context, url string, header http.Header) (Response, error) {
	if url == "" {
		return Response{}, errors.New("loader: url is required")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if l.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, fmt.Errorf("loader: build request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("loader: GET %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return Response{}, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, fmt.Errorf("loader: GET %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes))
	if err != nil {
		return Response{}, fmt.Errorf("loader: read body: %w", err)
	}
	return Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// Client exposes the underlying HTTP client for non-GET requests.
func (l *Loader) Client() *http.Client {
	return l.http
}

// Timeout returns the per-request timeout.
func (l *Loader) Timeout() time.Duration {
	return l.timeout
}
