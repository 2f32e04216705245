package createorder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvenlabs/billing-svc/internal/service/models/order"
)

type stubService struct {
	created *order.Order
	err     error
	gotput  *order.CreateOrderModel
}

func (s *stubService) CreateOrder(_ context.Context, model order.CreateOrderModel) (*order.Order, error) {
	s.gotput = &model
	if s.err != nil {
		return nil, s.err
	}

	return s.created, nil
}

const validBody = `{
	"customerId": "cust-1",
	"discountCode": "SAVE20",
	"items": [
		{"productId": "web-basic", "productTitle": "Web Básica", "quantity": 2, "unitPriceCents": 10000, "deliveryEstimate": "5-7 días"}
	]
}`

func TestCreateOrderHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		svc            *stubService
		wantStatusCode int
	}{
		{
			name:           "valid_request_returns_201",
			body:           validBody,
			svc:            &stubService{created: &order.Order{OrderNumber: "ORD-001000"}},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "malformed_json_returns_400",
			body:           `{"customerId":`,
			svc:            &stubService{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_items_returns_400",
			body:           `{"customerId": "cust-1", "items": []}`,
			svc:            &stubService{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_customer_returns_400",
			body:           `{"items": [{"productId": "x", "productTitle": "X", "quantity": 1, "unitPriceCents": 100}]}`,
			svc:            &stubService{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "invalid_currency_returns_400",
			body:           `{"customerId": "cust-1", "currency": "GBP", "items": [{"productId": "x", "productTitle": "X", "quantity": 1, "unitPriceCents": 100}]}`,
			svc:            &stubService{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "service_error_returns_500",
			body:           validBody,
			svc:            &stubService{err: errors.New("boom")},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			CreateOrder(rec, req, tt.svc)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
		})
	}
}

func TestCreateOrderHandlerPassesModel(t *testing.T) {
	svc := &stubService{created: &order.Order{OrderNumber: "ORD-001000"}}

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validBody))
	rec := httptest.NewRecorder()

	CreateOrder(rec, req, svc)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.gotput)
	assert.Equal(t, "cust-1", svc.gotput.CustomerID)
	assert.Equal(t, "SAVE20", svc.gotput.DiscountCode)
	require.Len(t, svc.gotput.Items, 1)
	assert.Equal(t, int64(10000), svc.gotput.Items[0].UnitPriceCents)

	var got order.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "ORD-001000", got.OrderNumber)
}
