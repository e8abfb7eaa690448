package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ArticlesAggregator/internal/domain"
)

func TestNotifyFallbackPostsMessage(t *testing.T) {
	t.Parallel()

	type request struct {
		path, chatID, text string
	}
	received := make(chan request, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		received <- request{path: r.URL.Path, chatID: r.PostForm.Get("chat_id"), text: r.PostForm.Get("text")}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewNotifier("token", "42", WithBaseURL(server.URL+"/"), WithHTTPClient(server.Client()))
	event := domain.FallbackEvent{
		Path:       domain.PathBlocking,
		Cause:      errors.New("articles-service down"),
		Served:     3,
		Stale:      true,
		OccurredAt: time.Date(2025, time.November, 8, 12, 0, 0, 0, time.UTC),
	}

	if err := n.NotifyFallback(context.Background(), event); err != nil {
		t.Fatalf("NotifyFallback returned error: %v", err)
	}

	got := <-received
	if got.path != "/bottoken/sendMessage" {
		t.Fatalf("unexpected path %q", got.path)
	}
	if got.chatID != "42" {
		t.Fatalf("unexpected chat id %q", got.chatID)
	}
	for _, fragment := range []string{"blocking path", "Served: 3", "2025-11-08T12:00:00Z", "articles-service down"} {
		if !strings.Contains(got.text, fragment) {
			t.Fatalf("message %q missing %q", got.text, fragment)
		}
	}
}

func TestFormatFallbackEmptyCache(t *testing.T) {
	t.Parallel()

	text := FormatFallback(domain.FallbackEvent{Path: domain.PathAsync})
	if !strings.Contains(text, "async path") || !strings.Contains(text, "Served: 0 (cache empty)") {
		t.Fatalf("unexpected text %q", text)
	}
	if strings.Contains(text, "Cause") {
		t.Fatalf("nil cause should be omitted: %q", text)
	}
}

func TestNotifyFallbackErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	err := NewNotifier("token", "42", WithBaseURL(server.URL)).NotifyFallback(context.Background(), domain.FallbackEvent{})
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected telegram error, got %v", err)
	}

	if err := NewNotifier("", "").NotifyFallback(context.Background(), domain.FallbackEvent{}); err == nil {
		t.Fatal("expected misconfigured notifier to fail")
	}
}
