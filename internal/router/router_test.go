package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tikaparse/internal/auth"
	"tikaparse/internal/config"
	"tikaparse/internal/domain"
	"tikaparse/internal/handler"
	"tikaparse/internal/router"
	"tikaparse/mocks"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func setup(t *testing.T) (*gin.Engine, *mocks.MockDocumentService, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenManager(&config.JWTConfig{Secret: "router-secret", Issuer: "tikaparse", TokenExpiry: time.Hour})
	token, _, err := tokens.Issue("router-test", 0)
	require.NoError(t, err)

	docSvc := new(mocks.MockDocumentService)
	r := router.Setup(
		zerolog.Nop(),
		[]string{"http://localhost:3000"},
		tokens,
		handler.NewParseHandler(new(mocks.MockParseService), 1<<20),
		handler.NewDocumentHandler(docSvc),
		handler.NewHealthHandler(okPinger{}),
	)
	return r, docSvc, token
}

func TestRouter_HealthIsPublic(t *testing.T) {
	r, _, _ := setup(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_APIRequiresToken(t *testing.T) {
	r, _, _ := setup(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/documents", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_GetDocument(t *testing.T) {
	r, docSvc, token := setup(t)
	id := uuid.New()
	docSvc.On("Get", mock.Anything, id).Return(&domain.Document{ID: id, Status: domain.ParseStatusParsed}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/documents/"+id.String(), http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
	docSvc.AssertExpectations(t)
}

func TestRouter_ExportIsNotAnID(t *testing.T) {
	r, docSvc, token := setup(t)
	docSvc.On("Export", mock.Anything, domain.ExportFormatCSV, mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/documents/export", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	docSvc.AssertExpectations(t)
}

func TestRouter_SwaggerDoc(t *testing.T) {
	r, _, _ := setup(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	for _, path := range []string{
		"/parse",
		"/documents/export",
		"/documents/{id}/content",
		"/documents/{id}/download",
		"/documents/{id}/reparse",
	} {
		assert.Contains(t, w.Body.String(), `"`+path+`"`)
	}
}
