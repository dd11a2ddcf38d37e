package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tikaparse/internal/tika"
)

// MockDocumentParser is a mock implementation of port.DocumentParser.
// Options are not passed to Called; assert on them with Run if needed.
type MockDocumentParser struct {
	mock.Mock
}

func (m *MockDocumentParser) ParseSource(ctx context.Context, src tika.Source, mode tika.ServiceMode, opts ...tika.Option) (*tika.ParsedRecord, error) {
	args := m.Called(ctx, src, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tika.ParsedRecord), args.Error(1)
}

func (m *MockDocumentParser) ParseSourceRaw(ctx context.Context, src tika.Source, mode tika.ServiceMode, opts ...tika.Option) (*tika.RawResponse, error) {
	args := m.Called(ctx, src, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tika.RawResponse), args.Error(1)
}

func (m *MockDocumentParser) ParseBuffer(ctx context.Context, buf []byte, opts ...tika.Option) (*tika.ParsedRecord, error) {
	args := m.Called(ctx, buf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tika.ParsedRecord), args.Error(1)
}

func (m *MockDocumentParser) ParseBufferRaw(ctx context.Context, buf []byte, opts ...tika.Option) (*tika.RawResponse, error) {
	args := m.Called(ctx, buf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tika.RawResponse), args.Error(1)
}
