package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Roberto031094/Backend1-Entrega/config"
	"github.com/Roberto031094/Backend1-Entrega/internal/adapter"
	"github.com/Roberto031094/Backend1-Entrega/internal/adapter/analytics"
	"github.com/Roberto031094/Backend1-Entrega/internal/adapter/eventbus"
	"github.com/Roberto031094/Backend1-Entrega/internal/adapter/httphandler"
	"github.com/Roberto031094/Backend1-Entrega/internal/adapter/mongostore"
	"github.com/Roberto031094/Backend1-Entrega/internal/adapter/ws"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/service"
	"github.com/Roberto031094/Backend1-Entrega/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

const defaultHandleTimeout = 5 * time.Second

type App struct {
	ctx context.Context
	cfg config.Config

	store      mongostore.DocumentStore
	bus        *eventbus.Bus
	registry   *ws.Registry
	mirror     *analytics.Mirror
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initDocumentStore()
	app.bus = eventbus.New()
	app.initAnalytics()
	app.initHTTPServer()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initDocumentStore() {
	const op = "App.initDocumentStore"

	store, err := mongostore.New(
		app.ctx, app.cfg.Storage.MongoURI, app.cfg.Storage.Database,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.store = store
}

// initAnalytics is a no-op when no seed brokers are configured:
// the shop runs fine without Kafka, it just mirrors nothing.
func (app *App) initAnalytics() {
	const op = "App.initAnalytics"

	if !app.cfg.Analytics.Enabled() {
		slog.Info("analytics mirror is disabled")
		return
	}

	a := app.cfg.Analytics

	srClient, err := sr.NewClient(sr.URLs(a.SchemaRegistryURLs...))
	if err != nil {
		app.fallDown(op, err)
	}
	schemaCreater := schema.NewSchemaCreater(srClient)

	serde, err := schema.NewSerdeChangeEventV1(
		app.ctx,
		schema.SubjectOpt(a.ChangeEventsTopic+"-value"),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	var tlsConfig *tls.Config
	if a.TLS.Enabled() {
		tlsConfig = adapter.MakeTLSConfig(a.TLS.CA, a.TLS.Cert, a.TLS.Key)
	}

	mirror, err := analytics.NewMirror(
		app.bus,
		analytics.ProducerClientOpt(
			app.ctx, a.SeedBrokers, a.ChangeEventsTopic, tlsConfig,
		),
		analytics.EncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.mirror = mirror
}

func (app *App) initHTTPServer() {
	products := mongostore.NewProductsRepository(app.store)
	carts := mongostore.NewCartsRepository(app.store)

	catalog := service.NewCatalog(products, app.bus)
	cart := service.NewCart(carts, products, app.bus)

	timeout := app.cfg.HandleTimeout
	if timeout == 0 {
		timeout = defaultHandleTimeout
	}

	api := http.NewServeMux()
	httphandler.RegisterProducts(api, catalog, catalog)
	httphandler.RegisterCarts(api, cart, cart)

	// The timeout middleware wraps only the REST subtree: the
	// websocket endpoint needs a hijackable ResponseWriter.
	mux := http.NewServeMux()
	mux.Handle("/api/v1/",
		httphandler.WithTimeout(timeout, httphandler.AllowJSON(api)))

	app.registry = ws.NewRegistry(app.bus)
	ws.Register(mux, app.registry)

	app.httpServer = httphandler.NewHTTPServer(app.cfg.HTTPServerAddr, mux)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	if app.mirror != nil {
		go app.mirror.Run(app.ctx)
	}

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.registry.CloseAll()
	if app.mirror != nil {
		app.mirror.Close()
	}
	app.store.Close(ctx)

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
