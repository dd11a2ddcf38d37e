package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded file and the result of parsing it with Tika.
type Document struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	FileName      string          `db:"file_name" json:"file_name"`
	ContentType   string          `db:"content_type" json:"content_type"`
	FileSize      int64           `db:"file_size" json:"file_size"`
	S3Bucket      string          `db:"s3_bucket" json:"-"`
	S3Key         string          `db:"s3_key" json:"-"`
	ServiceMode   string          `db:"service_mode" json:"service_mode"`
	XMLContent    bool            `db:"xml_content" json:"xml_content"`
	Status        ParseStatus     `db:"status" json:"status"`
	TikaStatus    *int            `db:"tika_status" json:"tika_status"`
	Metadata      json.RawMessage `db:"metadata" json:"metadata"`
	Content       *string         `db:"content" json:"content,omitempty"`
	ParseError    string          `db:"parse_error" json:"parse_error"`
	ParseAttempts int             `db:"parse_attempts" json:"parse_attempts"`
	UploadedBy    string          `db:"uploaded_by" json:"uploaded_by"`
	ParsedAt      *time.Time      `db:"parsed_at" json:"parsed_at"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// ParseResult is what a completed parse writes back to a document.
type ParseResult struct {
	Status     ParseStatus
	TikaStatus *int
	Metadata   json.RawMessage
	Content    *string
	ParseError string
}
