package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"tikaparse/internal/config"
	"tikaparse/internal/domain"
	"tikaparse/internal/port"
	"tikaparse/internal/tika"
)

// ParseUploadInput is the DTO for a synchronous parse of an uploaded file.
type ParseUploadInput struct {
	FileName   string
	Data       []byte
	Mode       tika.ServiceMode
	XMLContent bool
	Raw        bool
}

// ParseUploadOutput holds either the normalized record or, when Raw was
// requested, the untouched transport pair.
type ParseUploadOutput struct {
	Record *tika.ParsedRecord
	Raw    *tika.RawResponse
}

// ParseService parses documents without storing them.
type ParseService interface {
	ParseUpload(ctx context.Context, input ParseUploadInput) (*ParseUploadOutput, error)
}

type parseService struct {
	parser port.DocumentParser
	cfg    *config.S3Config
	logger zerolog.Logger
}

// NewParseService creates a new ParseService implementation.
func NewParseService(parser port.DocumentParser, cfg *config.S3Config, logger zerolog.Logger) ParseService {
	return &parseService{
		parser: parser,
		cfg:    cfg,
		logger: logger.With().Str("component", "parseService").Logger(),
	}
}

func (s *parseService) ParseUpload(ctx context.Context, input ParseUploadInput) (*ParseUploadOutput, error) {
	if len(input.Data) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if int64(len(input.Data)) > s.cfg.MaxFileSizeMB*1024*1024 {
		return nil, domain.ErrFileTooLarge
	}

	s.logger.Debug().
		Str("file", input.FileName).
		Str("mode", string(input.Mode)).
		Bool("xml", input.XMLContent).
		Bool("raw", input.Raw).
		Int("bytes", len(input.Data)).
		Msg("parseService.ParseUpload: parsing")

	req := parseRequest{
		name: input.FileName,
		data: input.Data,
		mode: input.Mode,
		xml:  input.XMLContent,
	}

	if input.Raw {
		raw, err := req.raw(ctx, s.parser)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", input.FileName, err)
		}
		return &ParseUploadOutput{Raw: raw}, nil
	}

	rec, err := req.normalized(ctx, s.parser)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", input.FileName, err)
	}
	return &ParseUploadOutput{Record: rec}, nil
}

// parseRequest routes one document to the right entry point: recursive
// mode goes through ParseBuffer, meta and text through ParseSource.
type parseRequest struct {
	name   string
	data   []byte
	source tika.Source
	mode   tika.ServiceMode
	xml    bool
}

func (r parseRequest) src() tika.Source {
	if r.source != nil {
		return r.source
	}
	return tika.BytesSource{Name: r.name, Data: r.data}
}

func (r parseRequest) opts() []tika.Option {
	return []tika.Option{tika.WithXMLContent(r.xml)}
}

func (r parseRequest) normalized(ctx context.Context, p port.DocumentParser) (*tika.ParsedRecord, error) {
	if r.mode == tika.ModeAll {
		return p.ParseBuffer(ctx, r.data, r.opts()...)
	}
	return p.ParseSource(ctx, r.src(), r.mode, r.opts()...)
}

func (r parseRequest) raw(ctx context.Context, p port.DocumentParser) (*tika.RawResponse, error) {
	if r.mode == tika.ModeAll {
		return p.ParseBufferRaw(ctx, r.data, r.opts()...)
	}
	return p.ParseSourceRaw(ctx, r.src(), r.mode, r.opts()...)
}
