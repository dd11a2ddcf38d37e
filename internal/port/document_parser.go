package port

import (
	"context"

	"tikaparse/internal/tika"
)

// DocumentParser abstracts the Tika client.
type DocumentParser interface {
	ParseSource(ctx context.Context, src tika.Source, mode tika.ServiceMode, opts ...tika.Option) (*tika.ParsedRecord, error)
	ParseSourceRaw(ctx context.Context, src tika.Source, mode tika.ServiceMode, opts ...tika.Option) (*tika.RawResponse, error)
	ParseBuffer(ctx context.Context, buf []byte, opts ...tika.Option) (*tika.ParsedRecord, error)
	ParseBufferRaw(ctx context.Context, buf []byte, opts ...tika.Option) (*tika.RawResponse, error)
}
