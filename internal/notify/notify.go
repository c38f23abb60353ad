// Package notify delivers bot messages to a chat channel.
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

	"market-bot/internal/config"
	apperrors "market-bot/internal/errors"
)

// Notifier sends a message to the configured chat. richText selects Markdown
// rendering; plain text is used for free-form model output, which often
// contains characters Markdown cannot parse.
type Notifier interface {
	SendMessage(ctx context.Context, text string, richText bool) error
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	apiURL   string
	botToken string
	chatID   string
	client   *http.Client
}

// NewTelegramNotifier creates a new TelegramNotifier.
func NewTelegramNotifier(cfg config.TelegramConfig, creds config.TelegramCredentials) *TelegramNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}
	return &TelegramNotifier{
		apiURL:   apiURL,
		botToken: strings.TrimSpace(creds.BotToken),
		chatID:   strings.TrimSpace(creds.ChatID),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the name of the notifier.
func (t *TelegramNotifier) Name() string {
	return "telegram"
}

// ChatID returns the chat messages are delivered to.
func (t *TelegramNotifier) ChatID() string {
	return t.chatID
}

func (t *TelegramNotifier) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.apiURL, t.botToken, method)
}

// SendMessage posts text to the chat. A non-200 response yields a
// *errors.DeliveryError carrying the status and a truncated body.
func (t *TelegramNotifier) SendMessage(ctx context.Context, text string, richText bool) error {
	payload := map[string]interface{}{
		"chat_id":                  t.chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	}
	if richText {
		payload["parse_mode"] = "Markdown"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling telegram payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return &apperrors.DeliveryError{Channel: t.Name(), Err: fmt.Errorf("sending telegram message: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return apperrors.NewDeliveryError(t.Name(), resp.StatusCode, string(respBody))
	}

	return nil
}

// Update is one incoming Telegram update. Only text messages are decoded.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

type updatesResponse struct {
	OK          bool     `json:"ok"`
	Result      []Update `json:"result"`
	Description string   `json:"description"`
}

// Updates long-polls getUpdates for messages after offset. wait is the
// server-side poll timeout; the HTTP timeout is extended to cover it.
func (t *TelegramNotifier) Updates(ctx context.Context, offset int64, wait time.Duration) ([]Update, error) {
	payload := map[string]interface{}{
		"offset":          offset,
		"timeout":         int(wait / time.Second),
		"allowed_updates": []string{"message"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling getUpdates payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL("getUpdates"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating getUpdates request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: t.client.Timeout + wait}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polling telegram updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, apperrors.NewDeliveryError(t.Name(), resp.StatusCode, string(respBody))
	}

	var out updatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding getUpdates response: %w", err)
	}
	if !out.OK {
		return nil, fmt.Errorf("getUpdates failed: %s", out.Description)
	}
	return out.Result, nil
}

// ConsoleNotifier writes messages to w instead of delivering them. Used for
// dry runs.
type ConsoleNotifier struct {
	w io.Writer
}

// NewConsoleNotifier creates a notifier that prints to w.
func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{w: w}
}

// SendMessage prints text followed by a separator.
func (c *ConsoleNotifier) SendMessage(_ context.Context, text string, richText bool) error {
	mode := "plain"
	if richText {
		mode = "markdown"
	}
	_, err := fmt.Fprintf(c.w, "----- message (%s) -----\n%s\n", mode, text)
	return err
}

// NoOpNotifier discards all messages.
type NoOpNotifier struct{}

// SendMessage does nothing.
func (NoOpNotifier) SendMessage(context.Context, string, bool) error {
	return nil
}
