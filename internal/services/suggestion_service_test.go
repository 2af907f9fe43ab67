package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"whisperbox/internal/apperrors"
	"whisperbox/internal/services"

	"github.com/stretchr/testify/assert"
)

func fakeProvider(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestSuggestionService_Suggest(t *testing.T) {
	completion := "What's a skill you want to learn?||What made you smile today?||Where would you travel first?"
	server := fakeProvider(t, completion)
	defer server.Close()

	svc := services.NewSuggestionService(services.SuggestionConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "gpt-3.5-turbo",
		Timeout: 2 * time.Second,
	})

	got, err := svc.Suggest(context.Background(), "")
	assert.NoError(t, err)
	assert.Equal(t, completion, got)

	candidates := strings.Split(got, services.SuggestionSeparator)
	assert.Len(t, candidates, 3)
}

func TestSuggestionService_ProviderErrors(t *testing.T) {
	// A non-200 response maps to a typed unavailable error.
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer failing.Close()

	svc := services.NewSuggestionService(services.SuggestionConfig{
		BaseURL: failing.URL,
		APIKey:  "test-key",
		Model:   "gpt-3.5-turbo",
		Timeout: 2 * time.Second,
	})
	_, err := svc.Suggest(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeProviderFailed))

	// A slow provider maps to a typed timeout error.
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer slow.Close()

	svc = services.NewSuggestionService(services.SuggestionConfig{
		BaseURL: slow.URL,
		APIKey:  "test-key",
		Model:   "gpt-3.5-turbo",
		Timeout: 50 * time.Millisecond,
	})
	_, err = svc.Suggest(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeProviderTimeout))

	// An unreachable provider is unavailable, not a timeout.
	svc = services.NewSuggestionService(services.SuggestionConfig{
		BaseURL: "http://127.0.0.1:1",
		APIKey:  "test-key",
		Model:   "gpt-3.5-turbo",
		Timeout: 2 * time.Second,
	})
	_, err = svc.Suggest(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeProviderFailed))
}

func TestSuggestionService_DefaultSet(t *testing.T) {
	// The fallback set is well-formed: three candidates, correct separator.
	candidates := strings.Split(services.DefaultSuggestions, services.SuggestionSeparator)
	assert.Len(t, candidates, 3)
	for _, c := range candidates {
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}
