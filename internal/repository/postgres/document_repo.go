package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tikaparse/internal/domain"
	"tikaparse/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `INSERT INTO documents (
		id, file_name, content_type, file_size, s3_bucket, s3_key,
		service_mode, xml_content, status, tika_status, metadata, content,
		parse_error, parse_attempts, uploaded_by, parsed_at, created_at, updated_at
	) VALUES (
		:id, :file_name, :content_type, :file_size, :s3_bucket, :s3_key,
		:service_mode, :xml_content, :status, :tika_status, :metadata, :content,
		:parse_error, :parse_attempts, :uploaded_by, :parsed_at, :created_at, :updated_at
	)`

	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) List(ctx context.Context, status domain.ParseStatus, offset, limit int) ([]domain.Document, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM documents WHERE ($1 = '' OR status = $1)", string(status))
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List count: %w", err)
	}

	// content can be large; list responses carry metadata only.
	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs,
		`SELECT id, file_name, content_type, file_size, s3_bucket, s3_key,
			service_mode, xml_content, status, tika_status, metadata, NULL AS content,
			parse_error, parse_attempts, uploaded_by, parsed_at, created_at, updated_at
		 FROM documents WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		string(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) ListAll(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	if err := r.db.SelectContext(ctx, &docs,
		"SELECT * FROM documents ORDER BY created_at ASC"); err != nil {
		return nil, fmt.Errorf("documentRepo.ListAll: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		`UPDATE documents SET
			status = 'processing', parse_attempts = parse_attempts + 1, updated_at = NOW()
		 WHERE id IN (
			SELECT id FROM documents WHERE status = 'queued'
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`, limit)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ClaimQueued: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) UpdateResult(ctx context.Context, id uuid.UUID, result *domain.ParseResult) error {
	now := time.Now().UTC()
	var parsedAt *time.Time
	if result.Status == domain.ParseStatusParsed {
		parsedAt = &now
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			status = $1, tika_status = $2, metadata = $3, content = $4,
			parse_error = $5, parsed_at = $6, updated_at = $7
		 WHERE id = $8`,
		result.Status, result.TikaStatus, nullJSON(result.Metadata), result.Content,
		result.ParseError, parsedAt, now, id)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateResult: %w", err)
	}
	return expectOneRow(res)
}

func (r *documentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ParseStatus, parseError string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET status = $1, parse_error = $2, updated_at = $3 WHERE id = $4`,
		status, parseError, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateStatus: %w", err)
	}
	return expectOneRow(res)
}

func (r *documentRepo) Requeue(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			status = 'queued', tika_status = NULL, metadata = NULL, content = NULL,
			parse_error = '', parse_attempts = 0, parsed_at = NULL, updated_at = $1
		 WHERE id = $2 AND status <> 'processing'`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("documentRepo.Requeue: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		return nil
	}

	// Nothing updated: either the row is gone or a worker holds it.
	var exists bool
	if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1)", id); err != nil {
		return fmt.Errorf("documentRepo.Requeue: %w", err)
	}
	if exists {
		return domain.ErrDocumentProcessing
	}
	return domain.ErrNotFound
}

func (r *documentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nullJSON maps an empty document to SQL NULL so jsonb never receives "".
func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
