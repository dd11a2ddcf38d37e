package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tikaparse/internal/config"
	"tikaparse/internal/domain"
	"tikaparse/internal/port"
	"tikaparse/internal/service"
	"tikaparse/internal/tika"
	"tikaparse/mocks"
)

type docServiceDeps struct {
	repo    *mocks.MockDocumentRepo
	storage *mocks.MockObjectStorage
	parser  *mocks.MockDocumentParser
}

func newDocumentService() (service.DocumentService, docServiceDeps) {
	deps := docServiceDeps{
		repo:    new(mocks.MockDocumentRepo),
		storage: new(mocks.MockObjectStorage),
		parser:  new(mocks.MockDocumentParser),
	}
	cfg := &config.S3Config{Bucket: "docs", MaxFileSizeMB: 1, PresignExpiry: 600}
	return service.NewDocumentService(deps.repo, deps.storage, deps.parser, cfg, zerolog.Nop()), deps
}

func TestDocumentService_Upload(t *testing.T) {
	svc, deps := newDocumentService()

	deps.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "docs" &&
			strings.HasPrefix(in.Key, "documents/") &&
			strings.HasSuffix(in.Key, "/report.pdf") &&
			in.ContentType == "application/pdf" &&
			in.Size == 3
	})).Return(&port.UploadOutput{}, nil)
	deps.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	doc, err := svc.Upload(context.Background(), service.UploadDocumentInput{
		FileName:   "report.pdf",
		Size:       3,
		Body:       strings.NewReader("pdf"),
		Mode:       tika.ModeMeta,
		XMLContent: true,
		UploadedBy: "svc",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ParseStatusQueued, doc.Status)
	assert.Equal(t, "meta", doc.ServiceMode)
	assert.True(t, doc.XMLContent)
	assert.Equal(t, "svc", doc.UploadedBy)
	assert.Equal(t, "docs", doc.S3Bucket)
	assert.Contains(t, doc.S3Key, doc.ID.String())
	deps.storage.AssertExpectations(t)
	deps.repo.AssertExpectations(t)
}

func TestDocumentService_UploadDefaultsToAllMode(t *testing.T) {
	svc, deps := newDocumentService()
	deps.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	deps.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	doc, err := svc.Upload(context.Background(), service.UploadDocumentInput{
		FileName: "a.docx", Size: 1, Body: strings.NewReader("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "all", doc.ServiceMode)
}

func TestDocumentService_UploadValidation(t *testing.T) {
	svc, deps := newDocumentService()

	_, err := svc.Upload(context.Background(), service.UploadDocumentInput{FileName: "a.exe", Size: 1})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	_, err = svc.Upload(context.Background(), service.UploadDocumentInput{FileName: "a.pdf", Size: 0})
	assert.ErrorIs(t, err, domain.ErrEmptyFile)

	_, err = svc.Upload(context.Background(), service.UploadDocumentInput{FileName: "a.pdf", Size: 2 * 1024 * 1024})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	deps.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestDocumentService_UploadStorageFailure(t *testing.T) {
	svc, deps := newDocumentService()
	deps.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("s3 down"))

	_, err := svc.Upload(context.Background(), service.UploadDocumentInput{
		FileName: "a.pdf", Size: 1, Body: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	deps.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDocumentService_UploadCreateFailureRemovesObject(t *testing.T) {
	svc, deps := newDocumentService()
	deps.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	deps.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	deps.storage.On("Delete", mock.Anything, "docs", mock.AnythingOfType("string")).Return(nil)

	_, err := svc.Upload(context.Background(), service.UploadDocumentInput{
		FileName: "a.pdf", Size: 1, Body: strings.NewReader("x"),
	})
	require.Error(t, err)
	deps.storage.AssertCalled(t, "Delete", mock.Anything, "docs", mock.AnythingOfType("string"))
}

func TestDocumentService_Delete(t *testing.T) {
	svc, deps := newDocumentService()
	id := uuid.New()
	deps.repo.On("GetByID", mock.Anything, id).Return(&domain.Document{ID: id, S3Bucket: "docs", S3Key: "k"}, nil)
	deps.storage.On("Delete", mock.Anything, "docs", "k").Return(nil)
	deps.repo.On("Delete", mock.Anything, id).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), id))
	deps.storage.AssertExpectations(t)
	deps.repo.AssertExpectations(t)
}

func TestDocumentService_DeleteNotFound(t *testing.T) {
	svc, deps := newDocumentService()
	id := uuid.New()
	deps.repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), id), domain.ErrNotFound)
}

func TestDocumentService_Reparse(t *testing.T) {
	svc, deps := newDocumentService()
	id := uuid.New()
	content := "old"
	deps.repo.On("GetByID", mock.Anything, id).Return(&domain.Document{
		ID: id, Status: domain.ParseStatusFailed, ParseAttempts: 3, ParseError: "boom", Content: &content,
	}, nil)
	deps.repo.On("Requeue", mock.Anything, id).Return(nil)

	doc, err := svc.Reparse(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.ParseStatusQueued, doc.Status)
	assert.Equal(t, 0, doc.ParseAttempts)
	assert.Empty(t, doc.ParseError)
	assert.Nil(t, doc.Content)
}

func TestDocumentService_ReparseWhileProcessing(t *testing.T) {
	svc, deps := newDocumentService()
	id := uuid.New()
	deps.repo.On("GetByID", mock.Anything, id).Return(&domain.Document{ID: id, Status: domain.ParseStatusProcessing}, nil)

	_, err := svc.Reparse(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrDocumentProcessing)
	deps.repo.AssertNotCalled(t, "Requeue", mock.Anything, mock.Anything)
}

func TestDocumentService_ReparseClaimedConcurrently(t *testing.T) {
	svc, deps := newDocumentService()
	id := uuid.New()
	deps.repo.On("GetByID", mock.Anything, id).Return(&domain.Document{ID: id, Status: domain.ParseStatusQueued}, nil)
	deps.repo.On("Requeue", mock.Anything, id).Return(domain.ErrDocumentProcessing)

	doc, err := svc.Reparse(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrDocumentProcessing)
	assert.Nil(t, doc)
	deps.repo.AssertExpectations(t)
}

func TestDocumentService_GetDownloadURL(t *testing.T) {
	svc, deps := newDocumentService()
	id := uuid.New()
	deps.repo.On("GetByID", mock.Anything, id).Return(&domain.Document{ID: id, S3Bucket: "docs", S3Key: "k"}, nil)
	deps.storage.On("GetPresignedURL", mock.Anything, "docs", "k", int64(600)).Return("https://signed", nil)

	url, err := svc.GetDownloadURL(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://signed", url)
}

func TestDocumentService_Export(t *testing.T) {
	svc, deps := newDocumentService()
	deps.repo.On("ListAll", mock.Anything).Return([]domain.Document{{ID: uuid.New(), FileName: "a.pdf"}}, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), domain.ExportFormatCSV, &buf))
	assert.Contains(t, buf.String(), "a.pdf")

	assert.ErrorIs(t, svc.Export(context.Background(), domain.ExportFormat("pdf"), io.Discard), domain.ErrInvalidExportFormat)
}

func processingDoc(mode string) *domain.Document {
	return &domain.Document{
		ID:            uuid.New(),
		FileName:      "a.pdf",
		S3Bucket:      "docs",
		S3Key:         "documents/x/a.pdf",
		ServiceMode:   mode,
		Status:        domain.ParseStatusProcessing,
		ParseAttempts: 1,
	}
}

func TestParseDocument_SavesNormalizedResult(t *testing.T) {
	svc, deps := newDocumentService()
	doc := processingDoc("all")
	content := "AB"
	rec := &tika.ParsedRecord{
		Status:   intPtr(200),
		Metadata: tika.Metadata{"k": tika.Sequence("a", "b")},
		Content:  &content,
	}

	deps.storage.On("Download", mock.Anything, "docs", doc.S3Key).Return([]byte("pdf"), nil)
	deps.parser.On("ParseBuffer", mock.Anything, []byte("pdf")).Return(rec, nil)

	var saved *domain.ParseResult
	deps.repo.On("UpdateResult", mock.Anything, doc.ID, mock.AnythingOfType("*domain.ParseResult")).
		Run(func(args mock.Arguments) { saved = args.Get(2).(*domain.ParseResult) }).
		Return(nil)

	svc.ParseDocument(context.Background(), doc, 3)

	require.NotNil(t, saved)
	assert.Equal(t, domain.ParseStatusParsed, saved.Status)
	assert.Equal(t, 200, *saved.TikaStatus)
	assert.Equal(t, "AB", *saved.Content)
	assert.JSONEq(t, `{"k":["a","b"]}`, string(saved.Metadata))
	assert.Empty(t, saved.ParseError)
}

func TestParseDocument_TextModeUsesSource(t *testing.T) {
	svc, deps := newDocumentService()
	doc := processingDoc("text")
	content := "hello"

	deps.storage.On("Download", mock.Anything, "docs", doc.S3Key).Return([]byte("pdf"), nil)
	deps.parser.On("ParseSource", mock.Anything, tika.BytesSource{Name: "a.pdf", Data: []byte("pdf")}, tika.ModeText).
		Return(&tika.ParsedRecord{Status: intPtr(200), Content: &content}, nil)
	deps.repo.On("UpdateResult", mock.Anything, doc.ID, mock.MatchedBy(func(r *domain.ParseResult) bool {
		return r.Status == domain.ParseStatusParsed && r.Metadata == nil && *r.Content == "hello"
	})).Return(nil)

	svc.ParseDocument(context.Background(), doc, 3)
	deps.repo.AssertExpectations(t)
}

func TestParseDocument_NonSuccessStatusFails(t *testing.T) {
	svc, deps := newDocumentService()
	doc := processingDoc("all")
	body := "Unprocessable"

	deps.storage.On("Download", mock.Anything, "docs", doc.S3Key).Return([]byte("pdf"), nil)
	deps.parser.On("ParseBuffer", mock.Anything, mock.Anything).
		Return(&tika.ParsedRecord{Status: intPtr(422), Content: &body}, nil)
	deps.repo.On("UpdateResult", mock.Anything, doc.ID, mock.MatchedBy(func(r *domain.ParseResult) bool {
		return r.Status == domain.ParseStatusFailed && *r.TikaStatus == 422 && r.ParseError == "tika returned status 422"
	})).Return(nil)

	svc.ParseDocument(context.Background(), doc, 3)
	deps.repo.AssertExpectations(t)
}

func TestParseDocument_TransportErrorRequeues(t *testing.T) {
	svc, deps := newDocumentService()
	doc := processingDoc("all")
	transportErr := &tika.TransportError{Op: "call", Endpoint: "http://tika", Err: errors.New("connection refused")}

	deps.storage.On("Download", mock.Anything, "docs", doc.S3Key).Return([]byte("pdf"), nil)
	deps.parser.On("ParseBuffer", mock.Anything, mock.Anything).Return(nil, transportErr)
	deps.repo.On("UpdateStatus", mock.Anything, doc.ID, domain.ParseStatusQueued, mock.AnythingOfType("string")).Return(nil)

	svc.ParseDocument(context.Background(), doc, 3)

	assert.Equal(t, domain.ParseStatusQueued, doc.Status)
	assert.Contains(t, doc.ParseError, "connection refused")
	deps.repo.AssertExpectations(t)
}

func TestParseDocument_TransportErrorAtMaxAttemptsFails(t *testing.T) {
	svc, deps := newDocumentService()
	doc := processingDoc("all")
	doc.ParseAttempts = 3

	deps.storage.On("Download", mock.Anything, "docs", doc.S3Key).Return([]byte("pdf"), nil)
	deps.parser.On("ParseBuffer", mock.Anything, mock.Anything).
		Return(nil, &tika.TransportError{Op: "call", Err: errors.New("timeout")})
	deps.repo.On("UpdateStatus", mock.Anything, doc.ID, domain.ParseStatusFailed, mock.AnythingOfType("string")).Return(nil)

	svc.ParseDocument(context.Background(), doc, 3)
	assert.Equal(t, domain.ParseStatusFailed, doc.Status)
}

func TestParseDocument_MalformedResponseFailsImmediately(t *testing.T) {
	svc, deps := newDocumentService()
	doc := processingDoc("meta")

	deps.storage.On("Download", mock.Anything, "docs", doc.S3Key).Return([]byte("pdf"), nil)
	deps.parser.On("ParseSource", mock.Anything, mock.Anything, tika.ModeMeta).
		Return(nil, tika.ErrMalformedResponse)
	deps.repo.On("UpdateStatus", mock.Anything, doc.ID, domain.ParseStatusFailed, mock.AnythingOfType("string")).Return(nil)

	svc.ParseDocument(context.Background(), doc, 5)
	assert.Equal(t, domain.ParseStatusFailed, doc.Status)
	deps.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, doc.ID, domain.ParseStatusQueued, mock.Anything)
}

func TestParseDocument_DownloadFailure(t *testing.T) {
	svc, deps := newDocumentService()
	doc := processingDoc("all")

	deps.storage.On("Download", mock.Anything, "docs", doc.S3Key).Return(nil, errors.New("no such key"))
	deps.repo.On("UpdateStatus", mock.Anything, doc.ID, domain.ParseStatusFailed, mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "no such key")
	})).Return(nil)

	svc.ParseDocument(context.Background(), doc, 3)
	deps.parser.AssertNotCalled(t, "ParseBuffer", mock.Anything, mock.Anything)
	deps.repo.AssertExpectations(t)
}

func TestParseDocument_InvalidStoredMode(t *testing.T) {
	svc, deps := newDocumentService()
	doc := processingDoc("xml")
	deps.repo.On("UpdateStatus", mock.Anything, doc.ID, domain.ParseStatusFailed, mock.AnythingOfType("string")).Return(nil)

	svc.ParseDocument(context.Background(), doc, 3)
	deps.storage.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything)
}

type streamingStorage struct {
	*mocks.MockObjectStorage
	opened string
}

func (s *streamingStorage) Source(bucket, key string) tika.Source {
	s.opened = bucket + "/" + key
	return tika.BytesSource{Name: "streamed.pdf", Data: []byte("stream")}
}

func TestParseDocument_StreamsFromStorageWhenSupported(t *testing.T) {
	storage := &streamingStorage{MockObjectStorage: new(mocks.MockObjectStorage)}
	repo := new(mocks.MockDocumentRepo)
	parser := new(mocks.MockDocumentParser)
	svc := service.NewDocumentService(repo, storage, parser, &config.S3Config{Bucket: "docs"}, zerolog.Nop())

	doc := processingDoc("meta")
	parser.On("ParseSource", mock.Anything, tika.BytesSource{Name: "streamed.pdf", Data: []byte("stream")}, tika.ModeMeta).
		Return(&tika.ParsedRecord{Status: intPtr(200), Metadata: tika.Metadata{"a": tika.Scalar("b")}}, nil)
	repo.On("UpdateResult", mock.Anything, doc.ID, mock.Anything).Return(nil)

	svc.ParseDocument(context.Background(), doc, 3)

	assert.Equal(t, "docs/"+doc.S3Key, storage.opened)
	storage.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything)
	var md map[string]string
	saved := repo.Calls[0].Arguments.Get(2).(*domain.ParseResult)
	require.NoError(t, json.Unmarshal(saved.Metadata, &md))
	assert.Equal(t, "b", md["a"])
}
