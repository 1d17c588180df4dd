package kernel_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKopeks(t *testing.T) {
	t.Run("accepts_zero_and_positive_values", func(t *testing.T) {
		for _, value := range []int64{0, 1, 100, 1_000_000} {
			amount, err := kernel.NewKopeks(value)
			require.NoError(t, err)
			assert.Equal(t, kernel.Kopeks(value), amount)
		}
	})

	t.Run("rejects_negative_values", func(t *testing.T) {
		_, err := kernel.NewKopeks(-1)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestKopeks_PrepayShare(t *testing.T) {
	tests := []struct {
		name   string
		total  kernel.Kopeks
		prepay kernel.Kopeks
	}{
		{name: "round_total_splits_evenly", total: 100_000, prepay: 30_000},
		{name: "share_rounds_up_to_whole_ruble", total: 100_100, prepay: 30_100},
		{name: "tiny_total_is_capped_at_total", total: 50, prepay: 50},
		{name: "zero_total_gives_zero_share", total: 0, prepay: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.prepay, tt.total.PrepayShare())
		})
	}
}

func TestKopeks_Remainder(t *testing.T) {
	total := kernel.Kopeks(100_100)

	assert.Equal(t, kernel.Kopeks(70_000), total.Remainder())
	assert.Equal(t, total, total.PrepayShare().Add(total.Remainder()))
}

func TestKopeks_Rubles(t *testing.T) {
	assert.Equal(t, "1234.50", kernel.Kopeks(123450).Rubles())
	assert.Equal(t, "0.07", kernel.Kopeks(7).Rubles())
}
