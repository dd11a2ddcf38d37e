package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tikaparse/internal/service"
)

// MockParseService is a mock implementation of service.ParseService.
type MockParseService struct {
	mock.Mock
}

func (m *MockParseService) ParseUpload(ctx context.Context, input service.ParseUploadInput) (*service.ParseUploadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ParseUploadOutput), args.Error(1)
}
