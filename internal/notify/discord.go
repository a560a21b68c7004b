package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var webhookHTTPClient = &http.Client{Timeout: 30 * time.Second}

// WebhookSource resolves the currently configured Discord webhook URL.
type WebhookSource interface {
	GetDiscordWebhook(ctx context.Context) (string, error)
}

// DiscordNotifier posts events to a Discord webhook as a single embed.
type DiscordNotifier struct {
	source WebhookSource
}

func NewDiscordNotifier(source WebhookSource) *DiscordNotifier {
	return &DiscordNotifier{source: source}
}

func (n *DiscordNotifier) Name() string { return "discord" }

type discordEmbed struct {
	Title     string              `json:"title"`
	Color     int                 `json:"color"`
	Fields    []discordEmbedField `json:"fields,omitempty"`
	Timestamp string              `json:"timestamp"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func (n *DiscordNotifier) Send(ctx context.Context, ev Event) error {
	url, err := n.source.GetDiscordWebhook(ctx)
	if err != nil {
		return fmt.Errorf("resolve webhook url: %w", err)
	}
	if !UsableWebhookURL(url) {
		return fmt.Errorf("no webhook configured")
	}
	return PostWebhook(ctx, url, ev)
}

// PostWebhook delivers one event to an explicit webhook URL. The admin
// test-webhook endpoint calls this directly, bypassing the outbox.
func PostWebhook(ctx context.Context, url string, ev Event) error {
	embed := discordEmbed{
		Title:     ev.Title,
		Color:     0x5865f2,
		Timestamp: ev.OccurredAt.UTC().Format(time.RFC3339),
	}
	for _, f := range ev.Fields {
		v := f.Value
		if v == "" {
			v = "-"
		}
		embed.Fields = append(embed.Fields, discordEmbedField{Name: f.Name, Value: v})
	}

	body, err := json.Marshal(map[string]any{"embeds": []discordEmbed{embed}})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := webhookHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("http call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return fmt.Errorf("webhook returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// UsableWebhookURL reports whether the stored URL is real, not empty and not
// a seeded placeholder.
func UsableWebhookURL(url string) bool {
	lower := strings.ToLower(url)
	return url != "" &&
		!strings.Contains(lower, "your-webhook-url-here") &&
		!strings.Contains(lower, "your_webhook_url_here")
}
