package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProviderStatus(t *testing.T) {
	tests := []struct {
		provider string
		want     Status
	}{
		{"succeeded", StatusSucceeded},
		{"paid", StatusSucceeded},
		{"completed", StatusSucceeded},
		{"COMPLETED", StatusSucceeded},
		{"CAPTURED", StatusSucceeded},
		{"processing", StatusProcessing},
		{"requires_action", StatusProcessing},
		{"requires_confirmation", StatusProcessing},
		{"in_progress", StatusProcessing},
		{"pending", StatusPending},
		{"created", StatusPending},
		{"APPROVED", StatusPending},
		{"refunded", StatusRefunded},
		{"REFUNDED", StatusRefunded},
		{"canceled", StatusCanceled},
		{"cancelled", StatusCanceled},
		{"VOIDED", StatusCanceled},
		{"card_declined", StatusFailed},
		{"", StatusFailed},
		{"something_new", StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseProviderStatus(tt.provider))
		})
	}
}

func TestProviderError(t *testing.T) {
	assert.Equal(t,
		"payment provider error [card_declined]: insufficient funds",
		(&ProviderError{Code: "card_declined", Message: "insufficient funds"}).Error(),
	)
	assert.Equal(t,
		"payment provider error: timeout",
		(&ProviderError{Message: "timeout"}).Error(),
	)
}
