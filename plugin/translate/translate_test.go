package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedCode  string
		expectedQuery string
	}{
		{
			name:          "english named",
			input:         "ingilizceye çevir merhaba dünya",
			expectedCode:  "en",
			expectedQuery: "merhaba dünya",
		},
		{
			name:          "german named",
			input:         "almanca çevir günaydın",
			expectedCode:  "de",
			expectedQuery: "günaydın",
		},
		{
			name:          "no language defaults",
			input:         "çevir nasılsın",
			expectedCode:  DefaultTarget,
			expectedQuery: "nasılsın",
		},
		{
			name:          "polite form stripped",
			input:         "tercüme eder misin bunu fransızcaya",
			expectedCode:  "fr",
			expectedQuery: "eder bunu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, remainder := ResolveLanguage(tt.input)
			assert.Equal(t, tt.expectedCode, code)
			assert.Equal(t, tt.expectedQuery, remainder)
		})
	}
}

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req translateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "en", req.Target)
		assert.Equal(t, "auto", req.Source)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"translatedText": "hello world"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	require.True(t, client.HasCredential())

	out, err := client.Translate(context.Background(), "merhaba dünya", "en")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
}

func TestTranslateErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key")
	_, err := client.Translate(context.Background(), "merhaba", "en")
	assert.Error(t, err)
}

func TestHasCredential(t *testing.T) {
	assert.False(t, NewClient("http://localhost:5000", "").HasCredential())
	assert.False(t, NewClient("", "key").HasCredential())
	assert.True(t, NewClient("http://localhost:5000", "key").HasCredential())
}
