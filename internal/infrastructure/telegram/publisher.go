package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/infrastructure/simulated"
	"RunRaiser/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Publisher posts approved candidates to a Telegram chat via the bot API.
type Publisher struct {
	apiBase       string
	botToken      string
	chatID        string
	previewLength int
	client        *http.Client
	executor      failsafe.Executor[*http.Response]
}

var _ ports.Publisher = (*Publisher)(nil)

// Options holds everything needed to reach the chat.
type Options struct {
	APIBase       string
	BotToken      string
	ChatID        string
	PreviewLength int
	MaxRetries    int
	Client        *http.Client
}

// NewPublisher registers bot token and chat identifier.
func NewPublisher(opts Options) *Publisher {
	if opts.APIBase == "" {
		opts.APIBase = defaultAPIBase
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 5 * time.Second}
	}
	if opts.PreviewLength <= 0 {
		opts.PreviewLength = simulated.DefaultPreviewLength
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	retry := retrypolicy.NewBuilder[*http.Response]().
		WithBackoff(200*time.Millisecond, 2*time.Second).
		WithMaxRetries(opts.MaxRetries).
		HandleIf(func(_ *http.Response, err error) bool {
			return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}).
		ReturnLastFailure().
		Build()

	return &Publisher{
		apiBase:       strings.TrimSuffix(opts.APIBase, "/"),
		botToken:      opts.BotToken,
		chatID:        opts.ChatID,
		previewLength: opts.PreviewLength,
		client:        opts.Client,
		executor:      failsafe.With[*http.Response](retry),
	}
}

// Publish sends the post text as a plain message and returns a confirmation line.
func (p *Publisher) Publish(ctx context.Context, post domain.PostCandidate) (string, error) {
	if p.botToken == "" || p.chatID == "" || p.client == nil {
		return "", fmt.Errorf("telegram publisher misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", p.apiBase, p.botToken)
	form := url.Values{}
	form.Set("chat_id", p.chatID)
	form.Set("text", post.Text)

	resp, err := p.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, fmt.Errorf("new request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := p.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("do request: %w", err)
		}
		if retryable(resp.StatusCode) {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			return nil, fmt.Errorf("telegram error: %s", resp.Status)
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("telegram error: %s", resp.Status)
	}

	return fmt.Sprintf("[TELEGRAM PUBLISH] Platform=%s | Chat=%s | Text='%s...'",
		post.Platform, p.chatID, simulated.Preview(post.Text, p.previewLength)), nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
