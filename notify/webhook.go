// Package notify delivers out-of-band notifications about trigger firings to an operator-configured webhook ("incoming webhook" style, compatible with Slack and Discord webhook endpoints).
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/guildmod/guildmod/engine"
)

type WebhookBody struct {
	Text string `json:"text"`
}

// WebhookNotifier posts a short summary of each firing. Deliveries are retried on transient failure and rate-limited so a misbehaving guild cannot flood the webhook endpoint.
type WebhookNotifier struct {
	URL     string
	client  *retryablehttp.Client
	limiter *rate.Limiter
}

var _ engine.Notifier = (*WebhookNotifier)(nil)

func NewWebhookNotifier(url string) *WebhookNotifier {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	return &WebhookNotifier{
		URL:     url,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

func (n *WebhookNotifier) SendMatch(ctx context.Context, res *engine.MatchResult) error {
	if !n.limiter.Allow() {
		// dropping is preferable to queueing: the match itself is already on its way to the action layer
		return fmt.Errorf("notification rate limit exceeded, dropping")
	}

	msg := fmt.Sprintf("trigger fired: `%s`\nguild `%s` / actor `%s`\n", res.Kind, res.GuildID, res.ActorID)
	if len(res.Matched) > 0 {
		msg += fmt.Sprintf("matched: `%s`\n", strings.Join(res.Matched, ", "))
	}

	body, err := json.Marshal(WebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("failed webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}
