package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tikaparse/internal/config"
	"tikaparse/internal/domain"
	"tikaparse/internal/export"
	"tikaparse/internal/port"
	"tikaparse/internal/tika"
)

// UploadDocumentInput is the DTO for storing a document and queueing its parse.
type UploadDocumentInput struct {
	FileName   string
	Size       int64
	Body       io.Reader
	Mode       tika.ServiceMode
	XMLContent bool
	UploadedBy string
}

// DocumentService defines the document management contract.
type DocumentService interface {
	Upload(ctx context.Context, input UploadDocumentInput) (*domain.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, status domain.ParseStatus, offset, limit int) ([]domain.Document, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reparse(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error)
	Export(ctx context.Context, format domain.ExportFormat, w io.Writer) error
	ParseDocument(ctx context.Context, doc *domain.Document, maxAttempts int)
}

// sourceProvider is implemented by storage backends that can stream an
// object into a Tika call without buffering it first.
type sourceProvider interface {
	Source(bucket, key string) tika.Source
}

type documentService struct {
	docRepo port.DocumentRepository
	storage port.ObjectStorage
	parser  port.DocumentParser
	cfg     *config.S3Config
	logger  zerolog.Logger
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	storage port.ObjectStorage,
	parser port.DocumentParser,
	cfg *config.S3Config,
	logger zerolog.Logger,
) DocumentService {
	return &documentService{
		docRepo: docRepo,
		storage: storage,
		parser:  parser,
		cfg:     cfg,
		logger:  logger.With().Str("component", "documentService").Logger(),
	}
}

func (s *documentService) Upload(ctx context.Context, input UploadDocumentInput) (*domain.Document, error) {
	contentType, err := domain.ContentTypeFor(input.FileName)
	if err != nil {
		return nil, err
	}
	if input.Size <= 0 {
		return nil, domain.ErrEmptyFile
	}
	if input.Size > s.cfg.MaxFileSizeMB*1024*1024 {
		return nil, domain.ErrFileTooLarge
	}
	mode := input.Mode
	if mode == "" {
		mode = tika.ModeAll
	}

	docID := uuid.New()
	s3Key := fmt.Sprintf("documents/%s/%s", docID, path.Base(input.FileName))

	s.logger.Info().
		Str("document_id", docID.String()).
		Str("file", input.FileName).
		Int64("bytes", input.Size).
		Str("uploaded_by", input.UploadedBy).
		Msg("documentService.Upload: uploading")

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        input.Body,
		ContentType: contentType,
		Size:        input.Size,
	}); err != nil {
		s.logger.Error().Err(err).Str("document_id", docID.String()).Msg("documentService.Upload: S3 upload failed")
		return nil, domain.ErrUploadFailed
	}

	doc := &domain.Document{
		ID:          docID,
		FileName:    input.FileName,
		ContentType: contentType,
		FileSize:    input.Size,
		S3Bucket:    s.cfg.Bucket,
		S3Key:       s3Key,
		ServiceMode: string(mode),
		XMLContent:  input.XMLContent,
		Status:      domain.ParseStatusQueued,
		UploadedBy:  input.UploadedBy,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, s.cfg.Bucket, s3Key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("key", s3Key).Msg("documentService.Upload: orphaned object")
		}
		return nil, fmt.Errorf("creating document: %w", err)
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

func (s *documentService) List(ctx context.Context, status domain.ParseStatus, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.List(ctx, status, offset, limit)
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, doc.S3Bucket, doc.S3Key); err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}
	s.logger.Info().Str("document_id", id.String()).Msg("documentService.Delete: deleted")
	return s.docRepo.Delete(ctx, id)
}

func (s *documentService) Reparse(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status == domain.ParseStatusProcessing {
		return nil, domain.ErrDocumentProcessing
	}
	if err := s.docRepo.Requeue(ctx, id); err != nil {
		if errors.Is(err, domain.ErrDocumentProcessing) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("requeueing document: %w", err)
	}

	s.logger.Info().Str("document_id", id.String()).Msg("documentService.Reparse: queued")

	doc.Status = domain.ParseStatusQueued
	doc.TikaStatus = nil
	doc.Metadata = nil
	doc.Content = nil
	doc.ParseError = ""
	doc.ParseAttempts = 0
	doc.ParsedAt = nil
	return doc, nil
}

func (s *documentService) GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, doc.S3Bucket, doc.S3Key, s.cfg.PresignExpiry)
}

func (s *documentService) Export(ctx context.Context, format domain.ExportFormat, w io.Writer) error {
	docs, err := s.docRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	return export.Write(w, format, docs)
}

// ParseDocument downloads a claimed document, parses it with its stored
// mode and saves the outcome. The doc must already be in processing status
// with ParseAttempts incremented. Transport failures requeue the document
// while attempts remain; anything else fails it.
func (s *documentService) ParseDocument(ctx context.Context, doc *domain.Document, maxAttempts int) {
	log := s.logger.With().Str("document_id", doc.ID.String()).Int("attempt", doc.ParseAttempts).Logger()

	mode, err := tika.ParseServiceMode(doc.ServiceMode)
	if err != nil {
		s.failParsing(ctx, doc, err.Error())
		return
	}

	req := parseRequest{name: doc.FileName, mode: mode, xml: doc.XMLContent}
	if sp, ok := s.storage.(sourceProvider); ok && mode != tika.ModeAll {
		req.source = sp.Source(doc.S3Bucket, doc.S3Key)
	} else {
		data, err := s.storage.Download(ctx, doc.S3Bucket, doc.S3Key)
		if err != nil {
			s.failParsing(ctx, doc, fmt.Sprintf("downloading file: %v", err))
			return
		}
		req.data = data
	}

	rec, err := req.normalized(ctx, s.parser)
	if err != nil {
		s.handleParseError(ctx, doc, err, maxAttempts)
		return
	}

	result, err := resultFromRecord(rec)
	if err != nil {
		s.failParsing(ctx, doc, err.Error())
		return
	}
	if err := s.docRepo.UpdateResult(ctx, doc.ID, result); err != nil {
		log.Error().Err(err).Msg("documentService.ParseDocument: failed to save results")
		return
	}

	log.Info().Str("status", string(result.Status)).Msg("documentService.ParseDocument: done")
}

// resultFromRecord maps a normalized record to the stored result. A non-2xx
// Tika status fails the document but keeps whatever the server sent.
func resultFromRecord(rec *tika.ParsedRecord) (*domain.ParseResult, error) {
	result := &domain.ParseResult{
		Status:     domain.ParseStatusParsed,
		TikaStatus: rec.Status,
		Content:    rec.Content,
	}
	if rec.Metadata != nil {
		md, err := json.Marshal(rec.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encoding metadata: %w", err)
		}
		result.Metadata = md
	}
	if rec.Status != nil && (*rec.Status < 200 || *rec.Status >= 300) {
		result.Status = domain.ParseStatusFailed
		result.ParseError = fmt.Sprintf("tika returned status %d", *rec.Status)
	}
	return result, nil
}

// handleParseError requeues the document on a transport failure if under the
// max attempts threshold. Otherwise, marks parsing as permanently failed.
func (s *documentService) handleParseError(ctx context.Context, doc *domain.Document, parseErr error, maxAttempts int) {
	var te *tika.TransportError
	if errors.As(parseErr, &te) && doc.ParseAttempts < maxAttempts {
		msg := fmt.Sprintf("tika unreachable, queued for retry: %v", te.Err)
		if err := s.docRepo.UpdateStatus(ctx, doc.ID, domain.ParseStatusQueued, msg); err != nil {
			s.logger.Error().Err(err).Str("document_id", doc.ID.String()).Msg("documentService.handleParseError: failed to requeue")
			return
		}
		doc.Status = domain.ParseStatusQueued
		doc.ParseError = msg
		s.logger.Warn().Err(parseErr).
			Str("document_id", doc.ID.String()).
			Int("attempt", doc.ParseAttempts).
			Msg("documentService.handleParseError: queued for retry")
		return
	}
	s.failParsing(ctx, doc, fmt.Sprintf("parsing document: %v", parseErr))
}

func (s *documentService) failParsing(ctx context.Context, doc *domain.Document, errMsg string) {
	s.logger.Warn().Str("document_id", doc.ID.String()).Str("error", errMsg).Msg("documentService.failParsing: document failed")
	doc.Status = domain.ParseStatusFailed
	doc.ParseError = errMsg
	if err := s.docRepo.UpdateStatus(ctx, doc.ID, domain.ParseStatusFailed, errMsg); err != nil {
		s.logger.Error().Err(err).Str("document_id", doc.ID.String()).Msg("documentService.failParsing: failed to update status")
	}
}
