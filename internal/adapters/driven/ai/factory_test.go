package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/custodia-labs/reqscan/internal/core/domain"
)

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantErr   error
		wantModel string
	}{
		{
			name:     "nil settings",
			settings: nil,
			wantErr:  domain.ErrLLMUnavailable,
		},
		{
			name:     "empty provider",
			settings: &domain.LLMSettings{},
			wantErr:  domain.ErrUnsupportedType,
		},
		{
			name:     "unknown provider",
			settings: &domain.LLMSettings{Provider: "anthropic", APIKey: "k"},
			wantErr:  domain.ErrUnsupportedType,
		},
		{
			name:     "gemini without key",
			settings: &domain.LLMSettings{Provider: domain.AIProviderGemini},
			wantErr:  domain.ErrLLMUnavailable,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "qwen2.5:3b",
			},
			wantModel: "qwen2.5:3b",
		},
		{
			name: "openai provider works without key",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
				Model:    "local-model",
			},
			wantModel: "local-model",
		},
		{
			name: "gemini provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderGemini,
				APIKey:   "test-key",
				Model:    "gemini-2.5-flash",
			},
			wantModel: "gemini-2.5-flash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(context.Background(), tt.settings)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				if svc != nil {
					t.Error("expected nil service, got non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer svc.Close()
			if svc.ModelName() != tt.wantModel {
				t.Errorf("model = %q, want %q", svc.ModelName(), tt.wantModel)
			}
		})
	}
}

func tagsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateAndValidateLLMService(t *testing.T) {
	t.Run("reachable server", func(t *testing.T) {
		srv := tagsServer(t, http.StatusOK, `{"models":[{"name":"qwen2.5:3b"}]}`)

		svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  srv.URL,
			Model:    "qwen2.5:3b",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		svc.Close()
	})

	t.Run("server error", func(t *testing.T) {
		srv := tagsServer(t, http.StatusInternalServerError, `{"error":"boom"}`)

		svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  srv.URL,
			Model:    "qwen2.5:3b",
		})
		if svc != nil {
			t.Error("expected nil service")
		}
		if !errors.Is(err, domain.ErrLLMUnavailable) {
			t.Errorf("expected ErrLLMUnavailable, got %v", err)
		}
		if err == nil || !strings.Contains(err.Error(), "Ollama (local) unreachable") {
			t.Errorf("error should name the provider, got %v", err)
		}
	})

	t.Run("invalid settings", func(t *testing.T) {
		_, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{Provider: "nope"})
		if err == nil || !strings.Contains(err.Error(), "reqscan settings set") {
			t.Errorf("expected guidance in error, got %v", err)
		}
	})
}

func TestValidateLLMConfig(t *testing.T) {
	ok := tagsServer(t, http.StatusOK, `{"models":[{"name":"m:latest"}]}`)

	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantErr  bool
	}{
		{"nil settings", nil, false},
		{"unconfigured gemini", &domain.LLMSettings{Provider: domain.AIProviderGemini}, false},
		{"reachable ollama", &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: ok.URL, Model: "m"}, false},
		{"missing model", &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: ok.URL, Model: "other"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLLMConfig(context.Background(), tt.settings)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLLMConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
