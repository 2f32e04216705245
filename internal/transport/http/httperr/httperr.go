package httperr

import (
	"errors"
	"net/http"

	"github.com/arvenlabs/billing-svc/internal/service/models/order"
	"github.com/arvenlabs/billing-svc/internal/service/models/plan"
	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
)

// Status maps service-layer errors onto http status codes so handlers do
// not repeat the mapping.
func Status(err error) int {
	var orderTransition *order.ErrInvalidTransition
	var subTransition *subscription.ErrInvalidTransition

	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrMilestoneNotFound),
		errors.Is(err, subscription.ErrSubscriptionNotFound),
		errors.Is(err, plan.ErrPlanNotFound):
		return http.StatusNotFound
	case errors.As(err, &orderTransition),
		errors.As(err, &subTransition),
		errors.Is(err, order.ErrOrderNotPaid),
		errors.Is(err, subscription.ErrNotActive),
		errors.Is(err, subscription.ErrBillingInProgress):
		return http.StatusConflict
	case errors.Is(err, order.ErrNoItems),
		errors.Is(err, subscription.ErrInvalidBillingCycle):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Write reports err to the client with the mapped status code.
func Write(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), Status(err))
}
