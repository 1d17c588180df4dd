package outbox_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/pkg/errs"
)

func TestNewMessage(t *testing.T) {
	t.Run("creates_unsent_message", func(t *testing.T) {
		now := time.Now().UTC()

		message, err := outbox.NewMessage(outbox.KindUserNotification, []byte(`{"chat_id":777}`), now)

		require.NoError(t, err)
		assert.Equal(t, outbox.KindUserNotification, message.Kind())
		assert.False(t, message.IsSent())
		assert.Nil(t, message.SentAt())
		assert.Equal(t, now, message.CreatedAt())
	})

	t.Run("rejects_unknown_kind", func(t *testing.T) {
		_, err := outbox.NewMessage(outbox.Kind("email"), []byte(`{}`), time.Now())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects_empty_payload", func(t *testing.T) {
		_, err := outbox.NewMessage(outbox.KindStatusEvent, nil, time.Now())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestMessage_MarkSent(t *testing.T) {
	message, err := outbox.NewMessage(outbox.KindStatusEvent, []byte(`{}`), time.Now())
	require.NoError(t, err)

	sentAt := time.Now().UTC()
	require.NoError(t, message.MarkSent(sentAt))
	assert.True(t, message.IsSent())
	require.NotNil(t, message.SentAt())
	assert.Equal(t, sentAt, *message.SentAt())

	require.ErrorIs(t, message.MarkSent(time.Now()), errs.ErrStaleState)
}
