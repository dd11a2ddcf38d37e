package tika_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tikaparse/internal/tika"
)

func TestServicePath(t *testing.T) {
	tests := []struct {
		mode    tika.ServiceMode
		wantXML bool
		want    string
	}{
		{tika.ModeMeta, false, "/meta"},
		{tika.ModeMeta, true, "/meta"},
		{tika.ModeText, false, "/tika"},
		{tika.ModeAll, false, "/rmeta/text"},
		{tika.ModeAll, true, "/rmeta/xml"},
		{tika.ServiceMode(""), false, "/rmeta/text"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tika.ServicePath(tt.mode, tt.wantXML), "mode=%q xml=%v", tt.mode, tt.wantXML)
	}
}

func TestParseServiceMode(t *testing.T) {
	m, err := tika.ParseServiceMode("")
	require.NoError(t, err)
	assert.Equal(t, tika.ModeAll, m)

	m, err = tika.ParseServiceMode(" META ")
	require.NoError(t, err)
	assert.Equal(t, tika.ModeMeta, m)

	m, err = tika.ParseServiceMode("text")
	require.NoError(t, err)
	assert.Equal(t, tika.ModeText, m)

	_, err = tika.ParseServiceMode("xml")
	assert.True(t, errors.Is(err, tika.ErrInvalidServiceMode))
}
