package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ArticlesAggregator/internal/domain"
	"ArticlesAggregator/internal/ports"
)

const defaultBaseURL = "https://api.telegram.org"

// Notifier sends fallback alerts to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// Option customises a Notifier.
type Option func(*Notifier)

// WithBaseURL points the notifier at another Bot API host.
func WithBaseURL(baseURL string) Option {
	return func(n *Notifier) { n.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithHTTPClient replaces the default 5s-timeout client.
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) { n.client = client }
}

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string, opts ...Option) *Notifier {
	n := &Notifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  defaultBaseURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifyFallback posts a short plain-text alert describing the degraded read.
func (n *Notifier) NotifyFallback(ctx context.Context, event domain.FallbackEvent) error {
	return n.send(ctx, FormatFallback(event))
}

// FormatFallback renders the alert text.
func FormatFallback(event domain.FallbackEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Articles served from fallback cache (%s path)\n", event.Path)
	fmt.Fprintf(&b, "Served: %d", event.Served)
	if !event.Stale {
		b.WriteString(" (cache empty)")
	}
	b.WriteString("\n")
	if !event.OccurredAt.IsZero() {
		fmt.Fprintf(&b, "At: %s\n", event.OccurredAt.UTC().Format(time.RFC3339))
	}
	if event.Cause != nil {
		fmt.Fprintf(&b, "Cause: %v", event.Cause)
	}
	return strings.TrimSpace(b.String())
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram error: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return nil
}
