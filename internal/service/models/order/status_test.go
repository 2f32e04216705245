package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"pending_to_confirmed", StatusPending, StatusConfirmed, true},
		{"pending_to_cancelled", StatusPending, StatusCancelled, true},
		{"pending_to_completed", StatusPending, StatusCompleted, false},
		{"pending_to_in_progress", StatusPending, StatusInProgress, false},
		{"confirmed_to_in_progress", StatusConfirmed, StatusInProgress, true},
		{"confirmed_to_cancelled", StatusConfirmed, StatusCancelled, true},
		{"confirmed_to_pending", StatusConfirmed, StatusPending, false},
		{"in_progress_to_completed", StatusInProgress, StatusCompleted, true},
		{"in_progress_to_cancelled", StatusInProgress, StatusCancelled, true},
		{"completed_is_terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled_is_terminal", StatusCancelled, StatusPending, false},
		{"no_self_transition", StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.Transition(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got)

				return
			}

			var invalid *ErrInvalidTransition
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.from.String(), invalid.From)
			assert.Equal(t, tt.from, got)
		})
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{"pending_to_paid", PaymentStatusPending, PaymentStatusPaid, true},
		{"pending_to_failed", PaymentStatusPending, PaymentStatusFailed, true},
		{"processing_to_paid", PaymentStatusProcessing, PaymentStatusPaid, true},
		{"failed_can_retry", PaymentStatusFailed, PaymentStatusPaid, true},
		{"failed_to_processing", PaymentStatusFailed, PaymentStatusProcessing, true},
		{"paid_to_refunded", PaymentStatusPaid, PaymentStatusRefunded, true},
		{"paid_to_partially_refunded", PaymentStatusPaid, PaymentStatusPartiallyRefunded, true},
		{"refunded_is_terminal", PaymentStatusRefunded, PaymentStatusPaid, false},
		{"partially_refunded_is_terminal", PaymentStatusPartiallyRefunded, PaymentStatusRefunded, false},
		{"pending_cannot_refund", PaymentStatusPending, PaymentStatusRefunded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.Transition(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.from, got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got)

	_, err = ParseStatus("shipped")
	require.Error(t, err)
}

func TestParsePaymentStatus(t *testing.T) {
	got, err := ParsePaymentStatus("partially_refunded")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPartiallyRefunded, got)

	_, err = ParsePaymentStatus("charged")
	require.Error(t, err)
}
