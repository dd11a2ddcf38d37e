package port

import (
	"context"

	"github.com/google/uuid"

	"tikaparse/internal/domain"
)

// DocumentRepository defines the contract for document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	// List pages documents newest first. An empty status lists every status.
	List(ctx context.Context, status domain.ParseStatus, offset, limit int) ([]domain.Document, int, error)
	ListAll(ctx context.Context) ([]domain.Document, error)
	// ClaimQueued moves up to limit queued documents to processing,
	// incrementing their parse attempts, and returns them.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error)
	UpdateResult(ctx context.Context, id uuid.UUID, result *domain.ParseResult) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ParseStatus, parseError string) error
	// Requeue clears any previous result and resets the attempt counter.
	// A document in processing status is left alone and yields
	// domain.ErrDocumentProcessing.
	Requeue(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
