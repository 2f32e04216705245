package subscription

import (
	"time"

	"github.com/google/uuid"
)

// QuerySubscriptionsModel represents filter parameters for querying
// subscriptions.
type QuerySubscriptionsModel struct {
	Ids         []uuid.UUID `json:"ids,omitempty"`
	CustomerIds []string    `json:"customerIds,omitempty"`
	Statuses    []Status    `json:"statuses,omitempty"`
	// DueBefore selects subscriptions whose next billing date is at or
	// before the given instant. Used by the billing sweep.
	DueBefore     *time.Time `json:"dueBefore,omitempty"`
	AutoRenewOnly bool       `json:"autoRenewOnly,omitempty"`
	Limit         int        `json:"limit,omitempty"`
	Offset        int        `json:"offset,omitempty"`
}

// Stats is the read-side aggregation over a set of subscriptions.
type Stats struct {
	TotalSubscriptions int            `json:"totalSubscriptions"`
	ByStatus           map[Status]int `json:"byStatus"`
	ByPlan             map[string]int `json:"byPlan"`
	// MonthlyRecurringRevenueCents normalizes active subscriptions to a
	// monthly figure; yearly prices contribute one twelfth.
	MonthlyRecurringRevenueCents int64 `json:"monthlyRecurringRevenueCents"`
	InTrial                      int   `json:"inTrial"`
}
