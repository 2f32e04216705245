package order

import (
	"time"

	"github.com/google/uuid"
)

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids         []uuid.UUID `json:"ids,omitempty"`
	CustomerIds []string    `json:"customerIds,omitempty"`
	Statuses    []Status    `json:"statuses,omitempty"`
	CreatedFrom *time.Time  `json:"createdFrom,omitempty"`
	CreatedTo   *time.Time  `json:"createdTo,omitempty"`
	Limit       int         `json:"limit,omitempty"`
	Offset      int         `json:"offset,omitempty"`
}

// Stats is the read-side aggregation over a set of orders.
type Stats struct {
	TotalOrders     int                   `json:"totalOrders"`
	ByStatus        map[Status]int        `json:"byStatus"`
	ByPaymentStatus map[PaymentStatus]int `json:"byPaymentStatus"`
	RevenueCents    int64                 `json:"revenueCents"`
	RefundedCents   int64                 `json:"refundedCents"`
	TopProducts     []ProductRevenue      `json:"topProducts"`
}

// ProductRevenue ranks a product by the revenue attributed to it.
type ProductRevenue struct {
	ProductID    string `json:"productId"`
	ProductTitle string `json:"productTitle"`
	RevenueCents int64  `json:"revenueCents"`
	Quantity     int    `json:"quantity"`
}
