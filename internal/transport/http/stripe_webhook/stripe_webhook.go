package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v82"

	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
)

// maxBodyBytes caps webhook payload size per Stripe's recommendation.
const maxBodyBytes = 65536

// verifier checks the webhook signature and parses the event.
type verifier interface {
	VerifyWebhook(payload []byte, signature string) (*stripe.Event, error)
}

type service interface {
	MarkProviderCancelled(ctx context.Context, providerSubscriptionID string) error
}

// HandleWebhook verifies and dispatches a Stripe event. One-time charges
// are confirmed synchronously, so payment events are only logged here;
// provider-side subscription cancellations are applied to the local record.
func HandleWebhook(w http.ResponseWriter, r *http.Request, verifier verifier, service service) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	ev, err := verifier.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error verifying webhook signature", "error", err)

		return
	}

	switch ev.Type {
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}
		if err := service.MarkProviderCancelled(r.Context(), sub.ID); err != nil {
			if errors.Is(err, subscription.ErrSubscriptionNotFound) {
				slog.Warn("Webhook for unknown subscription", "provider_subscription_id", sub.ID)
				break
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("Error applying provider cancellation", "provider_subscription_id", sub.ID, "error", err)

			return
		}
	case "payment_intent.succeeded", "payment_intent.payment_failed", "invoice.payment_failed":
		slog.Info("Stripe payment event received", "type", ev.Type, "event_id", ev.ID)
	default:
		slog.Debug("Ignoring stripe event", "type", ev.Type)
	}

	w.WriteHeader(http.StatusOK)
}
