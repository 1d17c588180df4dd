// Package telegram implements the notifier port over the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fulfillment/internal/pkg/errs"
)

const defaultBaseURL = "https://api.telegram.org"

// Notifier sends chat messages through a bot.
type Notifier struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewNotifier creates a notifier for the given bot token.
func NewNotifier(token string) (*Notifier, error) {
	if token == "" {
		return nil, errs.NewValueIsRequiredError("token")
	}

	return &Notifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
	}, nil
}

// WithBaseURL overrides the API endpoint, used by tests.
func (n *Notifier) WithBaseURL(baseURL string) *Notifier {
	n.baseURL = baseURL
	return n
}

type sendMessageBody struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify delivers a text message to the given chat.
func (n *Notifier) Notify(ctx context.Context, chatID int64, text string) error {
	if chatID == 0 {
		return errs.NewValueIsRequiredError("chatId")
	}
	if text == "" {
		return errs.NewValueIsRequiredError("text")
	}

	payload, err := json.Marshal(sendMessageBody{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var response apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return err
	}
	if !response.OK {
		return fmt.Errorf("telegram sendMessage failed: %s", response.Description)
	}

	return nil
}
