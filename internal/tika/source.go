package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Source yields the document bytes to send and the file name advertised to
// the server. The caller closes the returned reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, string, error)
}

// FileSource reads a document from the local filesystem.
type FileSource string

func (p FileSource) Open(_ context.Context) (io.ReadCloser, string, error) {
	f, err := os.Open(string(p))
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", string(p), err)
	}
	return f, filepath.Base(string(p)), nil
}

// URLSource downloads a remote document before it is sent to Tika.
type URLSource struct {
	URL    string
	Client *http.Client
}

func (u URLSource) Open(ctx context.Context) (io.ReadCloser, string, error) {
	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request for %s: %w", u.URL, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", u.URL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, "", fmt.Errorf("fetching %s: status %d", u.URL, resp.StatusCode)
	}

	name := ""
	if parsed, err := url.Parse(u.URL); err == nil {
		if base := path.Base(parsed.Path); base != "/" && base != "." {
			name = base
		}
	}
	return resp.Body, name, nil
}

// BytesSource sends an in-memory document.
type BytesSource struct {
	Name string
	Data []byte
}

func (b BytesSource) Open(_ context.Context) (io.ReadCloser, string, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), b.Name, nil
}

// ReaderSource sends a document from an arbitrary stream.
type ReaderSource struct {
	Name   string
	Reader io.Reader
}

func (r ReaderSource) Open(_ context.Context) (io.ReadCloser, string, error) {
	if r.Reader == nil {
		return nil, "", ErrEmptySource
	}
	if rc, ok := r.Reader.(io.ReadCloser); ok {
		return rc, r.Name, nil
	}
	return io.NopCloser(r.Reader), r.Name, nil
}

// SourceFor picks a URLSource for http(s) locations and a FileSource otherwise.
func SourceFor(location string) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return URLSource{URL: location}
	}
	return FileSource(location)
}
