package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dylondark/cob-zippy-ai/internal/service"
)

func TestNewEmbeddingsClient(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:11434", "nomic-embed-text", 768, 30*time.Second)
	if client == nil {
		t.Fatal("NewEmbeddingsClient() returned nil")
	}
	if client.BaseURL != "http://localhost:11434" {
		t.Errorf("BaseURL = %v, want http://localhost:11434", client.BaseURL)
	}
	if client.Model != "nomic-embed-text" {
		t.Errorf("Model = %v, want nomic-embed-text", client.Model)
	}
	if client.ExpectedSize != 768 {
		t.Errorf("ExpectedSize = %v, want 768", client.ExpectedSize)
	}
	if client.client == nil {
		t.Error("client should not be nil")
	}
}

func TestEmbeddingsClient_Embed(t *testing.T) {
	tests := []struct {
		name         string
		expectedSize int
		serverResp   func(w http.ResponseWriter, r *http.Request)
		wantLen      int
		wantErr      bool
		wantUpstream bool
	}{
		{
			name:         "successful embed",
			expectedSize: 3,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/api/embeddings" {
					t.Errorf("expected /api/embeddings, got %s", r.URL.Path)
				}

				var req EmbeddingsRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("failed to decode request: %v", err)
				}
				if req.Model != "test-model" {
					t.Errorf("request model = %q, want test-model", req.Model)
				}
				if req.Prompt == "" {
					t.Error("request prompt should not be empty")
				}

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(EmbeddingsResponse{
					Embedding: []float64{0.1, 0.2, 0.3},
				})
			},
			wantLen: 3,
			wantErr: false,
		},
		{
			name:         "error status",
			expectedSize: 3,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("model not found"))
			},
			wantErr:      true,
			wantUpstream: true,
		},
		{
			name:         "missing embedding field",
			expectedSize: 3,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"unexpected": true}`))
			},
			wantErr:      true,
			wantUpstream: true,
		},
		{
			name:         "malformed JSON",
			expectedSize: 3,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json at all"))
			},
			wantErr:      true,
			wantUpstream: true,
		},
		{
			name:         "size mismatch",
			expectedSize: 768,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(EmbeddingsResponse{
					Embedding: []float64{0.1, 0.2},
				})
			},
			wantErr:      true,
			wantUpstream: true,
		},
		{
			name:         "size check disabled",
			expectedSize: 0,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(EmbeddingsResponse{
					Embedding: []float64{0.1, 0.2},
				})
			},
			wantLen: 2,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := NewEmbeddingsClient(server.URL, "test-model", tt.expectedSize, 5*time.Second)
			vec, err := client.Embed(context.Background(), "hello")

			if tt.wantErr {
				if err == nil {
					t.Fatal("Embed() expected error, got nil")
				}
				if tt.wantUpstream && !errors.Is(err, service.ErrUpstream) {
					t.Errorf("Embed() error should match ErrUpstream, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Embed() unexpected error: %v", err)
			}
			if len(vec) != tt.wantLen {
				t.Errorf("Embed() vector length = %d, want %d", len(vec), tt.wantLen)
			}
		})
	}
}

func TestEmbeddingsClient_EmbedTexts(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(EmbeddingsResponse{
			Embedding: []float64{0.1, 0.2, 0.3},
		})
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "test-model", 3, 5*time.Second)

	result, err := client.EmbedTexts(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(result) != 3 {
		t.Errorf("EmbedTexts() returned %d vectors, want 3", len(result))
	}
	if calls != 3 {
		t.Errorf("EmbedTexts() made %d requests, want 3", calls)
	}
}

func TestEmbeddingsClient_EmbedTexts_Empty(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:11434", "test-model", 3, 5*time.Second)
	if _, err := client.EmbedTexts(context.Background(), nil); err == nil {
		t.Error("EmbedTexts() with empty input should fail")
	}
}
