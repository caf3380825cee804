package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func openrouterResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5},
	}
}

func TestOpenRouterService_Translate(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(openrouterResponse(`{"items": [{"value": "Começar"}]}`))
	}))
	defer server.Close()

	s := NewOpenRouterService("test-key", server.URL, "test-model")
	result, err := s.Translate(context.Background(), Config{}, Request{
		Instructions: "Translate to Portuguese.",
		Payload:      "1. [BUTTON] Get Started",
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("auth = %q", gotAuth)
	}

	messages, _ := gotBody["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want system + user", len(messages))
	}
	system := messages[0].(map[string]any)
	if system["role"] != "system" || system["content"] != "Translate to Portuguese." {
		t.Errorf("system message = %v", system)
	}
	user := messages[1].(map[string]any)
	if user["role"] != "user" || user["content"] != "1. [BUTTON] Get Started" {
		t.Errorf("user message = %v", user)
	}

	if result.Raw != `{"items": [{"value": "Começar"}]}` {
		t.Errorf("raw = %q", result.Raw)
	}
	if result.Metadata["prompt_tokens"] != "10" {
		t.Errorf("metadata = %v", result.Metadata)
	}
}

func TestOpenRouterService_Translate_MissingKey(t *testing.T) {
	s := NewOpenRouterService("", "http://unused", "")
	if _, err := s.Translate(context.Background(), Config{}, Request{}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestOpenRouterService_Translate_KeyFromConfig(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(openrouterResponse("ok"))
	}))
	defer server.Close()

	s := NewOpenRouterService("", server.URL, "")
	if _, err := s.Translate(context.Background(), Config{APIKey: "cfg-key"}, Request{}); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if gotAuth != "Bearer cfg-key" {
		t.Errorf("auth = %q", gotAuth)
	}
}

func TestOpenRouterService_Translate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	s := NewOpenRouterService("key", server.URL, "")
	if _, err := s.Translate(context.Background(), Config{}, Request{}); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestOpenRouterService_IsAvailable(t *testing.T) {
	if err := NewOpenRouterService("key", "", "").IsAvailable(context.Background()); err != nil {
		t.Errorf("IsAvailable with key failed: %v", err)
	}
	if err := NewOpenRouterService("", "", "").IsAvailable(context.Background()); err == nil {
		t.Error("expected error without key")
	}
}
