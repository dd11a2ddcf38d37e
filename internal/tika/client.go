package tika

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tikaparse/internal/config"
)

// DefaultEndpoint is where a locally started Tika server listens.
const DefaultEndpoint = "http://localhost:9998"

// Options are the per-call request settings. Each call works on its own copy.
type Options struct {
	Endpoint   string
	XMLContent bool
	Headers    map[string]string
	ConfigPath string
	Timeout    time.Duration
	Username   string
	Password   string
}

// Option modifies Options.
type Option func(*Options)

// WithEndpoint sets the Tika server base URL.
func WithEndpoint(endpoint string) Option {
	return func(o *Options) {
		o.Endpoint = endpoint
	}
}

// WithXMLContent requests XHTML content instead of plain text in recursive mode.
func WithXMLContent(xml bool) Option {
	return func(o *Options) {
		o.XMLContent = xml
	}
}

// WithHeaders adds request headers.
func WithHeaders(headers map[string]string) Option {
	return func(o *Options) {
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithConfigPath sends a tika-config XML file with the document.
func WithConfigPath(path string) Option {
	return func(o *Options) {
		o.ConfigPath = path
	}
}

// WithTimeout bounds a single call.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithBasicAuth authenticates against a Tika server behind a proxy.
func WithBasicAuth(username, password string) Option {
	return func(o *Options) {
		o.Username = username
		o.Password = password
	}
}

// Client sends documents to a Tika server and normalizes its responses.
type Client struct {
	transport Transport
	defaults  Options
	logger    zerolog.Logger
}

// NewClient creates a Client. defaults apply to every call before the
// call's own options.
func NewClient(transport Transport, logger zerolog.Logger, defaults ...Option) *Client {
	base := Options{Endpoint: DefaultEndpoint, Headers: map[string]string{}}
	for _, opt := range defaults {
		opt(&base)
	}
	return &Client{
		transport: transport,
		defaults:  base,
		logger:    logger.With().Str("component", "tika").Logger(),
	}
}

// NewClientFromConfig creates a Client over HTTPTransport from configuration.
func NewClientFromConfig(cfg *config.TikaConfig, logger zerolog.Logger) *Client {
	opts := []Option{WithXMLContent(cfg.XMLContent)}
	if cfg.Endpoint != "" {
		opts = append(opts, WithEndpoint(cfg.Endpoint))
	}
	if cfg.TimeoutSecs > 0 {
		opts = append(opts, WithTimeout(time.Duration(cfg.TimeoutSecs)*time.Second))
	}
	if cfg.ConfigPath != "" {
		opts = append(opts, WithConfigPath(cfg.ConfigPath))
	}
	if cfg.Username != "" {
		opts = append(opts, WithBasicAuth(cfg.Username, cfg.Password))
	}
	return NewClient(NewHTTPTransport(nil), logger, opts...)
}

func (c *Client) options(opts []Option) Options {
	o := c.defaults
	o.Headers = make(map[string]string, len(c.defaults.Headers))
	for k, v := range c.defaults.Headers {
		o.Headers[k] = v
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ParseSource sends src to the resource serving mode and normalizes the reply.
func (c *Client) ParseSource(ctx context.Context, src Source, mode ServiceMode, opts ...Option) (*ParsedRecord, error) {
	raw, err := c.ParseSourceRaw(ctx, src, mode, opts...)
	if err != nil {
		return nil, err
	}
	return normalize(raw, mode, c.logger)
}

// ParseSourceRaw is ParseSource without normalization.
func (c *Client) ParseSourceRaw(ctx context.Context, src Source, mode ServiceMode, opts ...Option) (*RawResponse, error) {
	o := c.options(opts)

	body, name, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	headers := map[string]string{"Accept": acceptFor(mode)}
	if name != "" {
		headers["Content-Disposition"] = contentDisposition(name)
	}
	headers = mergeHeaders(headers, o.Headers)

	servicePath := ServicePath(mode, o.XMLContent)
	c.logger.Debug().Str("service", servicePath).Str("file", name).Msg("tika.ParseSource: calling server")

	return c.transport.Call(ctx, c.request(o, servicePath, body, name, headers))
}

// ParseBuffer sends buf to the recursive resource and normalizes the reply
// with ModeAll semantics.
func (c *Client) ParseBuffer(ctx context.Context, buf []byte, opts ...Option) (*ParsedRecord, error) {
	raw, err := c.ParseBufferRaw(ctx, buf, opts...)
	if err != nil {
		return nil, err
	}
	return normalize(raw, ModeAll, c.logger)
}

// ParseBufferRaw is ParseBuffer without normalization. Accept is always
// application/json regardless of caller headers.
func (c *Client) ParseBufferRaw(ctx context.Context, buf []byte, opts ...Option) (*RawResponse, error) {
	o := c.options(opts)

	headers := mergeHeaders(nil, o.Headers)
	for k := range headers {
		if strings.EqualFold(k, "Accept") {
			delete(headers, k)
		}
	}
	headers["Accept"] = "application/json"

	servicePath := ServicePath(ModeAll, o.XMLContent)
	c.logger.Debug().Str("service", servicePath).Int("bytes", len(buf)).Msg("tika.ParseBuffer: calling server")

	return c.transport.Call(ctx, c.request(o, servicePath, bytes.NewReader(buf), "", headers))
}

func (c *Client) request(o Options, servicePath string, body io.Reader, name string, headers map[string]string) *Request {
	return &Request{
		Method:      http.MethodPut,
		Endpoint:    o.Endpoint,
		ServicePath: servicePath,
		Body:        body,
		FileName:    name,
		Headers:     headers,
		ConfigPath:  o.ConfigPath,
		Timeout:     o.Timeout,
		Username:    o.Username,
		Password:    o.Password,
	}
}

// mergeHeaders copies base then overlay into a new map; overlay wins,
// matching keys case-insensitively.
func mergeHeaders(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		for existing := range out {
			if strings.EqualFold(existing, k) {
				delete(out, existing)
			}
		}
		out[k] = v
	}
	return out
}

func contentDisposition(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}
