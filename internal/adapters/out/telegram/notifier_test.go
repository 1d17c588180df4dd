package telegram_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fulfillment/internal/adapters/out/telegram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify_SendsMessageToChat(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	notifier, err := telegram.NewNotifier("test-token")
	require.NoError(t, err)
	notifier = notifier.WithBaseURL(server.URL)

	err = notifier.Notify(t.Context(), 123456, "Payment received")
	require.NoError(t, err)

	assert.Equal(t, float64(123456), gotBody["chat_id"])
	assert.Equal(t, "Payment received", gotBody["text"])
	assert.Equal(t, "HTML", gotBody["parse_mode"])
}

func TestNotify_APIRefuses_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"description": "Forbidden: bot was blocked by the user",
		})
	}))
	defer server.Close()

	notifier, err := telegram.NewNotifier("test-token")
	require.NoError(t, err)
	notifier = notifier.WithBaseURL(server.URL)

	err = notifier.Notify(t.Context(), 123456, "Payment received")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked by the user")
}

func TestNotify_ValidatesArguments(t *testing.T) {
	notifier, err := telegram.NewNotifier("test-token")
	require.NoError(t, err)

	require.Error(t, notifier.Notify(t.Context(), 0, "text"))
	require.Error(t, notifier.Notify(t.Context(), 123, ""))
}

func TestNewNotifier_RequiresToken(t *testing.T) {
	_, err := telegram.NewNotifier("")
	require.Error(t, err)
}
