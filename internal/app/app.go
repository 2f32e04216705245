package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/iidempotency"
	"github.com/arvenlabs/billing-svc/internal/dal/postgres"
	"github.com/arvenlabs/billing-svc/internal/dal/rabbitmq"
	redisdal "github.com/arvenlabs/billing-svc/internal/dal/redis"
	idempmem "github.com/arvenlabs/billing-svc/internal/dal/repositories/idempotency/memory"
	idempredis "github.com/arvenlabs/billing-svc/internal/dal/repositories/idempotency/redis"
	outboxrepo "github.com/arvenlabs/billing-svc/internal/dal/repositories/outbox/postgres"
	"github.com/arvenlabs/billing-svc/internal/dal/uow"
	"github.com/arvenlabs/billing-svc/internal/jaeger"
	"github.com/arvenlabs/billing-svc/internal/payment"
	stripegateway "github.com/arvenlabs/billing-svc/internal/payment/stripe"
	"github.com/arvenlabs/billing-svc/internal/service/services/ordersvc"
	"github.com/arvenlabs/billing-svc/internal/service/services/subscriptionsvc"
	httptransport "github.com/arvenlabs/billing-svc/internal/transport/http"
	billingworker "github.com/arvenlabs/billing-svc/internal/worker/billing"
	outboxworker "github.com/arvenlabs/billing-svc/internal/worker/outbox"
)

// App represents the application.
type App struct {
	orderSvc        *ordersvc.OrderService
	subscriptionSvc *subscriptionsvc.SubscriptionService
	transport       *httptransport.HTTPTransport
	outboxWorker    *outboxworker.Worker
	billingWorker   *billingworker.Worker
	postgresClient  *postgres.Client
	rabbitClient    *rabbitmq.Client
	redisClient     *redisdal.Client
	traceShutdown   func(ctx context.Context) error
}

// MustNewApp creates a new application. The storage backend and payment
// provider are selected by config: store.mode postgres|memory and
// payments.provider stripe|mock.
func MustNewApp() *App {
	a := &App{}

	a.traceShutdown = jaeger.MustSetup()

	var factory uow.Factory
	var idempotency iidempotency.IIdempotencyStore

	switch viper.GetString("store.mode") {
	case "", "postgres":
		a.postgresClient = postgres.MustNewClient()
		a.rabbitClient = rabbitmq.MustNewClient()
		a.redisClient = redisdal.MustNewClient()

		factory = uow.NewPostgresFactory(a.postgresClient)
		idempotency = idempredis.NewRedisIdempotencyStore(a.redisClient.RDB(), idempotencyTTL())

		a.outboxWorker = outboxworker.NewWorker(
			outboxrepo.NewPostgresOutboxRepository(a.postgresClient.DB()),
			a.rabbitClient,
		)
	case "memory":
		memFactory := uow.NewMemoryFactory()
		factory = memFactory
		idempotency = idempmem.NewMemoryIdempotencyStore()
	default:
		panic("unknown store.mode: " + viper.GetString("store.mode"))
	}

	gateway, verifier := newGateway()

	a.orderSvc = ordersvc.MustNewOrderService(
		ordersvc.WithUOWFactory(factory),
		ordersvc.WithGateway(gateway),
	)
	a.subscriptionSvc = subscriptionsvc.MustNewSubscriptionService(
		subscriptionsvc.WithUOWFactory(factory),
		subscriptionsvc.WithGateway(gateway),
		subscriptionsvc.WithIdempotencyStore(idempotency),
	)

	a.billingWorker = billingworker.NewWorker(a.subscriptionSvc)

	a.transport = httptransport.NewHTTPTransport(a.orderSvc, a.subscriptionSvc, verifier)
	a.transport.RegisterRoutes()

	return a
}

// newGateway builds the configured payment gateway. The stripe gateway also
// serves as webhook verifier; the mock gateway has no webhooks.
func newGateway() (payment.Gateway, httptransport.WebhookVerifier) {
	switch viper.GetString("payments.provider") {
	case "", "stripe":
		gw := stripegateway.New(
			os.Getenv("STRIPE_API_KEY"),
			os.Getenv("STRIPE_WEBHOOK_SECRET"),
			viper.GetStringMapString("payments.stripe.plan_price_ids"),
		)

		return gw, gw
	case "mock":
		return payment.NewMockGateway(), nil
	default:
		panic("unknown payments.provider: " + viper.GetString("payments.provider"))
	}
}

func idempotencyTTL() time.Duration {
	seconds := viper.GetInt("billing.idempotency_ttl_seconds")
	if seconds == 0 {
		seconds = 24 * 60 * 60
	}

	return time.Duration(seconds) * time.Second
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())

	if a.outboxWorker != nil {
		go a.outboxWorker.Start(workerCtx)
	}
	go a.billingWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if a.traceShutdown != nil {
		if err := a.traceShutdown(ctx); err != nil {
			slog.Error("Trace provider shutdown error", "error", err)
		}
	}

	if a.postgresClient != nil {
		if err := a.postgresClient.Close(); err != nil {
			slog.Error("Database connection close error", "error", err)
		} else {
			slog.Info("Database connection closed gracefully")
		}
	}

	if a.rabbitClient != nil {
		if err := a.rabbitClient.Close(); err != nil {
			slog.Error("Rabbitmq connection close error", "error", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			slog.Error("Redis connection close error", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
}
