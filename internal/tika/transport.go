package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Request carries everything a Transport needs for one Tika call.
type Request struct {
	Method      string
	Endpoint    string
	ServicePath string
	Body        io.Reader
	FileName    string
	Headers     map[string]string
	// ConfigPath, when set, sends a tika-config XML alongside the document
	// as a multipart form.
	ConfigPath string
	Timeout    time.Duration
	Username   string
	Password   string
}

// Transport performs a single call against a Tika server. Non-2xx statuses
// are returned in the RawResponse, not as errors.
type Transport interface {
	Call(ctx context.Context, req *Request) (*RawResponse, error)
}

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates an HTTPTransport. A nil client uses a fresh
// http.Client without a global timeout; per-call timeouts come from Request.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Call(ctx context.Context, r *Request) (*RawResponse, error) {
	endpoint := strings.TrimRight(r.Endpoint, "/")
	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodPut
	}
	path := r.ServicePath

	body := r.Body
	contentType := ""
	if r.ConfigPath != "" {
		form, ct, err := buildConfigForm(r)
		if err != nil {
			return nil, &TransportError{Op: "buildForm", Endpoint: endpoint, Err: err}
		}
		body, contentType = form, ct
		method = http.MethodPost
		path = formPath(path)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint+path, body)
	if err != nil {
		return nil, &TransportError{Op: "newRequest", Endpoint: endpoint, Err: err}
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
		req.Header.Del("Content-Disposition")
	}
	if r.Username != "" {
		req.SetBasicAuth(r.Username, r.Password)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "call", Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "readBody", Endpoint: endpoint, Err: err}
	}

	if len(respBody) == 0 {
		return &RawResponse{Status: resp.StatusCode}, nil
	}
	return NewRawResponse(resp.StatusCode, string(respBody)), nil
}

// buildConfigForm assembles a multipart body with "file" and "config" parts.
func buildConfigForm(r *Request) (io.Reader, string, error) {
	cfg, err := os.ReadFile(r.ConfigPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading tika config: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := r.FileName
	if name == "" {
		name = "file"
	}
	fw, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if r.Body != nil {
		if _, err := io.Copy(fw, r.Body); err != nil {
			return nil, "", fmt.Errorf("copying document: %w", err)
		}
	}

	cw, err := w.CreateFormFile("config", filepath.Base(r.ConfigPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := cw.Write(cfg); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// formPath maps a resource to its multipart variant: /tika -> /tika/form,
// /rmeta/text -> /rmeta/form/text.
func formPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	head, rest, found := strings.Cut(trimmed, "/")
	if !found {
		return "/" + head + "/form"
	}
	return "/" + head + "/form/" + rest
}
