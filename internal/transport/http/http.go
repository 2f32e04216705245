package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stripe/stripe-go/v82"

	"github.com/arvenlabs/billing-svc/internal/service/models/order"
	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
	createorder "github.com/arvenlabs/billing-svc/internal/transport/http/create_order"
	createsubscription "github.com/arvenlabs/billing-svc/internal/transport/http/create_subscription"
	listorders "github.com/arvenlabs/billing-svc/internal/transport/http/list_orders"
	listsubscriptions "github.com/arvenlabs/billing-svc/internal/transport/http/list_subscriptions"
	orderpayments "github.com/arvenlabs/billing-svc/internal/transport/http/order_payments"
	orderstats "github.com/arvenlabs/billing-svc/internal/transport/http/order_stats"
	"github.com/arvenlabs/billing-svc/internal/transport/http/plans"
	stripewebhook "github.com/arvenlabs/billing-svc/internal/transport/http/stripe_webhook"
	subscriptionbilling "github.com/arvenlabs/billing-svc/internal/transport/http/subscription_billing"
	subscriptionstats "github.com/arvenlabs/billing-svc/internal/transport/http/subscription_stats"
	updateorder "github.com/arvenlabs/billing-svc/internal/transport/http/update_order"
	updatesubscription "github.com/arvenlabs/billing-svc/internal/transport/http/update_subscription"
	tracemw "github.com/arvenlabs/billing-svc/pkg/http/middleware/trace"
	"github.com/arvenlabs/billing-svc/pkg/logger"
)

type orderService interface {
	CreateOrder(ctx context.Context, model order.CreateOrderModel) (*order.Order, error)
	GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	GetOrderStats(ctx context.Context, dateFrom, dateTo *time.Time) (*order.Stats, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status order.Status, notes string, notifyCustomer bool) (*order.Order, error)
	AssignOrder(ctx context.Context, orderID uuid.UUID, assigneeID string) error
	UpdateOrderMilestone(ctx context.Context, orderID uuid.UUID, milestoneID uuid.UUID, status order.MilestoneStatus, deliverables []string) error
	ProcessOrderPayment(ctx context.Context, orderID uuid.UUID, paymentMethodID string) (*order.Order, error)
	ProcessOrderRefund(ctx context.Context, orderID uuid.UUID, amountCents int64, reason string) (*order.Order, error)
}

type subscriptionService interface {
	CreateSubscription(ctx context.Context, model subscription.CreateSubscriptionModel) (*subscription.Subscription, error)
	GetSubscriptions(ctx context.Context, filter *subscription.QuerySubscriptionsModel) ([]subscription.Subscription, error)
	GetSubscription(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error)
	GetSubscriptionStats(ctx context.Context) (*subscription.Stats, error)
	UpdateSubscription(ctx context.Context, id uuid.UUID, model subscription.UpdateSubscriptionModel) (*subscription.Subscription, error)
	CancelSubscription(ctx context.Context, id uuid.UUID, reason string, atPeriodEnd bool) (*subscription.Subscription, error)
	PauseSubscription(ctx context.Context, id uuid.UUID, resumeBillingDate *time.Time) (*subscription.Subscription, error)
	ResumeSubscription(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error)
	ProcessSubscriptionBilling(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error)
	MarkProviderCancelled(ctx context.Context, providerSubscriptionID string) error
}

// WebhookVerifier checks a provider webhook signature and parses the event.
// Nil when the service runs against the mock gateway.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signature string) (*stripe.Event, error)
}

type HTTPTransport struct {
	server        *http.Server
	router        *chi.Mux
	orders        orderService
	subscriptions subscriptionService
	verifier      WebhookVerifier
}

func NewHTTPTransport(orders orderService, subscriptions subscriptionService, verifier WebhookVerifier) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:        server,
		router:        router,
		orders:        orders,
		subscriptions: subscriptions,
		verifier:      verifier,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.createOrder)
			r.Get("/", h.listOrders)
			r.Get("/stats", h.orderStats)
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", h.getOrder)
				r.Patch("/status", h.updateOrderStatus)
				r.Post("/assign", h.assignOrder)
				r.Patch("/milestones/{milestoneId}", h.updateMilestone)
				r.Post("/payment", h.processPayment)
				r.Post("/refund", h.processRefund)
			})
		})

		r.Get("/plans", plans.ListPlans)

		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", h.createSubscription)
			r.Get("/", h.listSubscriptions)
			r.Get("/stats", h.subscriptionStats)
			r.Route("/{subscriptionId}", func(r chi.Router) {
				r.Get("/", h.getSubscription)
				r.Patch("/", h.updateSubscription)
				r.Post("/cancel", h.cancelSubscription)
				r.Post("/pause", h.pauseSubscription)
				r.Post("/resume", h.resumeSubscription)
				r.Post("/billing", h.processBilling)
			})
		})
	})

	if h.verifier != nil {
		h.router.Post("/webhooks/stripe", h.stripeWebhook)
	}
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.orders)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	listorders.GetOrder(w, r, h.orders)
}

func (h *HTTPTransport) orderStats(w http.ResponseWriter, r *http.Request) {
	orderstats.OrderStats(w, r, h.orders)
}

func (h *HTTPTransport) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	updateorder.UpdateStatus(w, r, h.orders)
}

func (h *HTTPTransport) assignOrder(w http.ResponseWriter, r *http.Request) {
	updateorder.Assign(w, r, h.orders)
}

func (h *HTTPTransport) updateMilestone(w http.ResponseWriter, r *http.Request) {
	updateorder.UpdateMilestone(w, r, h.orders)
}

func (h *HTTPTransport) processPayment(w http.ResponseWriter, r *http.Request) {
	orderpayments.ProcessPayment(w, r, h.orders)
}

func (h *HTTPTransport) processRefund(w http.ResponseWriter, r *http.Request) {
	orderpayments.ProcessRefund(w, r, h.orders)
}

func (h *HTTPTransport) createSubscription(w http.ResponseWriter, r *http.Request) {
	createsubscription.CreateSubscription(w, r, h.subscriptions)
}

func (h *HTTPTransport) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	listsubscriptions.ListSubscriptions(w, r, h.subscriptions)
}

func (h *HTTPTransport) getSubscription(w http.ResponseWriter, r *http.Request) {
	listsubscriptions.GetSubscription(w, r, h.subscriptions)
}

func (h *HTTPTransport) subscriptionStats(w http.ResponseWriter, r *http.Request) {
	subscriptionstats.SubscriptionStats(w, r, h.subscriptions)
}

func (h *HTTPTransport) updateSubscription(w http.ResponseWriter, r *http.Request) {
	updatesubscription.UpdateSubscription(w, r, h.subscriptions)
}

func (h *HTTPTransport) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	updatesubscription.Cancel(w, r, h.subscriptions)
}

func (h *HTTPTransport) pauseSubscription(w http.ResponseWriter, r *http.Request) {
	updatesubscription.Pause(w, r, h.subscriptions)
}

func (h *HTTPTransport) resumeSubscription(w http.ResponseWriter, r *http.Request) {
	updatesubscription.Resume(w, r, h.subscriptions)
}

func (h *HTTPTransport) processBilling(w http.ResponseWriter, r *http.Request) {
	subscriptionbilling.ProcessBilling(w, r, h.subscriptions)
}

func (h *HTTPTransport) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	stripewebhook.HandleWebhook(w, r, h.verifier, h.subscriptions)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(tracemw.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
