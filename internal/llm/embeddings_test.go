package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func embeddingResponse(vectors ...[]float64) map[string]any {
	data := make([]map[string]any, len(vectors))
	for i, v := range vectors {
		data[i] = map[string]any{"object": "embedding", "index": i, "embedding": v}
	}
	return map[string]any{
		"object": "list",
		"model":  "test-model",
		"data":   data,
		"usage":  map[string]any{"prompt_tokens": 1, "total_tokens": 1},
	}
}

func TestNewEmbeddingsClient(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:8080/v1", "test-key", "test-model", 768, WithBatchSize(16))
	if client == nil {
		t.Fatal("NewEmbeddingsClient() returned nil")
	}
	if client.ExpectedSize != 768 {
		t.Errorf("NewEmbeddingsClient() ExpectedSize = %v, want 768", client.ExpectedSize)
	}
	if client.BatchSize != 16 {
		t.Errorf("NewEmbeddingsClient() BatchSize = %v, want 16", client.BatchSize)
	}
}

func TestEmbeddingsClient_EmbedTexts(t *testing.T) {
	tests := []struct {
		name         string
		texts        []string
		expectedSize int
		serverResp   func(w http.ResponseWriter, r *http.Request)
		wantErr      bool
		wantCount    int
	}{
		{
			name:         "successful embedding",
			texts:        []string{"Hello", "World"},
			expectedSize: 4,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/v1/embeddings" {
					t.Errorf("expected /v1/embeddings, got %s", r.URL.Path)
				}
				writeJSON(w, embeddingResponse(make([]float64, 4), make([]float64, 4)))
			},
			wantCount: 2,
		},
		{
			name:         "empty input",
			texts:        []string{},
			expectedSize: 4,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				t.Error("server should not be called for empty input")
			},
			wantErr: true,
		},
		{
			name:         "size mismatch",
			texts:        []string{"Hello"},
			expectedSize: 4,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, embeddingResponse(make([]float64, 3)))
			},
			wantErr: true,
		},
		{
			name:         "count mismatch",
			texts:        []string{"Hello", "World"},
			expectedSize: 4,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, embeddingResponse(make([]float64, 4)))
			},
			wantErr: true,
		},
		{
			name:         "server error",
			texts:        []string{"Hello"},
			expectedSize: 4,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := NewEmbeddingsClient(server.URL+"/v1", "test-key", "test-model", tt.expectedSize, WithMaxRetries(0))
			vectors, err := client.EmbedTexts(context.Background(), tt.texts)

			if tt.wantErr {
				if err == nil {
					t.Errorf("EmbedTexts() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("EmbedTexts() unexpected error: %v", err)
			}
			if len(vectors) != tt.wantCount {
				t.Errorf("EmbedTexts() returned %d vectors, want %d", len(vectors), tt.wantCount)
			}
			for i, v := range vectors {
				if len(v) != tt.expectedSize {
					t.Errorf("vector %d has size %d, want %d", i, len(v), tt.expectedSize)
				}
			}
		})
	}
}

func TestEmbeddingsClient_EmbedTexts_Batches(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(body.Input) > 2 {
			t.Errorf("batch of %d inputs, want at most 2", len(body.Input))
		}

		// Encode each input's length so order can be checked.
		vectors := make([][]float64, len(body.Input))
		for i, in := range body.Input {
			vectors[i] = []float64{float64(len(in)), 0}
		}
		writeJSON(w, embeddingResponse(vectors...))
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL+"/v1", "test-key", "test-model", 2, WithBatchSize(2), WithMaxRetries(0))
	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}

	vectors, err := client.EmbedTexts(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedTexts() unexpected error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
	for i, v := range vectors {
		if int(v[0]) != len(texts[i]) {
			t.Errorf("vector %d = %v, want first component %d", i, v, len(texts[i]))
		}
	}
}

func TestEmbeddingsClient_OutOfOrderData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"object": "list",
			"model":  "test-model",
			"data": []map[string]any{
				{"object": "embedding", "index": 1, "embedding": []float64{2, 2}},
				{"object": "embedding", "index": 0, "embedding": []float64{1, 1}},
			},
		})
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL+"/v1", "test-key", "test-model", 2, WithMaxRetries(0))
	vectors, err := client.EmbedTexts(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedTexts() unexpected error: %v", err)
	}
	if vectors[0][0] != 1 || vectors[1][0] != 2 {
		t.Errorf("EmbedTexts() = %v, want vectors in input order", vectors)
	}
}

func TestEmbeddingsClient_RateLimiterCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, embeddingResponse([]float64{1, 1}))
	}))
	defer server.Close()

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	client := NewEmbeddingsClient(server.URL+"/v1", "test-key", "test-model", 2, WithRateLimiter(limiter), WithMaxRetries(0))

	if _, err := client.EmbedTexts(context.Background(), []string{"first"}); err != nil {
		t.Fatalf("EmbedTexts() unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.EmbedTexts(ctx, []string{"second"}); err == nil {
		t.Error("EmbedTexts() expected rate limiter error, got nil")
	}
}
