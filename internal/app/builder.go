package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/mydv/vrsync/internal/api"
	"github.com/mydv/vrsync/internal/app/storage"
	"github.com/mydv/vrsync/internal/auth"
	"github.com/mydv/vrsync/internal/authz"
	"github.com/mydv/vrsync/internal/config"
	"github.com/mydv/vrsync/internal/enquiry"
	"github.com/mydv/vrsync/internal/filtering"
	"github.com/mydv/vrsync/internal/httpclient"
	"github.com/mydv/vrsync/internal/service"
	"github.com/mydv/vrsync/internal/stats"
	pkgsync "github.com/mydv/vrsync/internal/sync"
	"github.com/mydv/vrsync/internal/sync/coordinator"
	"github.com/mydv/vrsync/internal/sync/selector"
	"github.com/mydv/vrsync/internal/sync/writer"
	"github.com/mydv/vrsync/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	// a manual sweep answers only when it finishes, so writes may take as
	// long as a whole sweep
	defaultWriteTimeout = 15 * time.Minute
	defaultIdleTimeout  = 60 * time.Second
)

// Tracer names of the instrumented components
const (
	SyncTracerName    = "github.com/mydv/vrsync/sync"
	EnquiryTracerName = "github.com/mydv/vrsync/enquiry"
	StoreTracerName   = "github.com/mydv/vrsync/store"
	StatsTracerName   = "github.com/mydv/vrsync/stats"
)

// VRSyncAppOptions is a function that configures the app builder
type VRSyncAppOptions func(*vrsyncAppConfig) error

// vrsyncAppConfig collects the builder inputs. Every component can be
// injected, which is mostly useful for testing; missing ones are built from
// the configuration.
type vrsyncAppConfig struct {
	config *config.Config

	// Optional component overrides
	storageFactory storage.Factory
	enquiryClient  enquiry.Client
	syncManager    pkgsync.Manager
	clock          clock.Clock

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
	metricsPath    string
	metricsHandler http.Handler

	// Authentication, built from config.Auth unless injected
	authMiddleware  func(http.Handler) http.Handler
	authInfoHandler http.Handler

	// Telemetry components
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

func baseConfig(opts ...VRSyncAppOptions) (*vrsyncAppConfig, error) {
	cfg := &vrsyncAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
		clock:          clock.RealClock{},
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// NewVRSyncApp builds the application from the given options
func NewVRSyncApp(ctx context.Context, opts ...VRSyncAppOptions) (*VRSyncApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	components, cleanup, err := buildComponents(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.authMiddleware == nil {
		cfg.authMiddleware, cfg.authInfoHandler, err = auth.NewAuthMiddleware(cfg.config.Auth, auth.DefaultValidatorFactory)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to build auth middleware: %w", err)
		}
	}

	httpServer, err := buildHTTPServer(ctx, cfg, components.SyncService)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)

	return &VRSyncApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: func() {
			cancel()
			cleanup()
		},
	}, nil
}

// BuildComponents builds the pipeline without an HTTP server, for one-shot
// commands. The returned cleanup releases storage resources.
func BuildComponents(ctx context.Context, opts ...VRSyncAppOptions) (*AppComponents, func(), error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	return buildComponents(ctx, cfg)
}

func buildComponents(ctx context.Context, cfg *vrsyncAppConfig) (*AppComponents, func(), error) {
	if cfg.config == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.storageFactory == nil {
		var factoryOpts []storage.FactoryOption
		if cfg.tracerProvider != nil {
			factoryOpts = append(factoryOpts, storage.WithTracer(cfg.tracerProvider.Tracer(StoreTracerName)))
		}
		var err error
		cfg.storageFactory, err = storage.NewStorageFactory(ctx, cfg.config, factoryOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	components, err := buildSyncComponents(ctx, cfg)
	if err != nil {
		cfg.storageFactory.Cleanup()
		return nil, nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	return components, cfg.storageFactory.Cleanup, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) VRSyncAppOptions {
	return func(cfg *vrsyncAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) VRSyncAppOptions {
	return func(cfg *vrsyncAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) VRSyncAppOptions {
	return func(cfg *vrsyncAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithAuthMiddleware replaces the authentication built from config.Auth.
// infoHandler, if not nil, serves the protected resource metadata.
func WithAuthMiddleware(mw func(http.Handler) http.Handler, infoHandler http.Handler) VRSyncAppOptions {
	return func(cfg *vrsyncAppConfig) error {
		if mw == nil {
			return fmt.Errorf("auth middleware cannot be nil")
		}
		cfg.authMiddleware = mw
		cfg.authInfoHandler = infoHandler
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory
func WithStorageFactory(f storage.Factory) VRSyncAppOptions {
	return func(cfg *vrsyncAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithEnquiryClient allows injecting a custom registry client
func WithEnquiryClient(c enquiry.Client) VRSyncAppOptions {
	return func(cfg *vrsyncAppConfig) error {
		cfg.enquiryClient = c
		return nil
	}
}

// WithSyncManager allows injecting a custom sweep manager
func WithSyncManager(m pkgsync.Manager) VRSyncAppOptions {
	return func(cfg *vrsyncAppConfig) error {
		cfg.syncManager = m
		return nil
	}
}

// WithClock sets the clock used for staleness, pacing and scheduling
func WithClock(c clock.Clock) VRSyncAppOptions {
	return func(cfg *vrsyncAppConfig) error {
		if c == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		cfg.clock = c
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for HTTP and sweep metrics
func WithMeterProvider(mp metric.MeterProvider) VRSyncAppOptions {
	return func(cfg *vrsyncAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider
func WithTracerProvider(tp trace.TracerProvider) VRSyncAppOptions {
	return func(cfg *vrsyncAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler serves a Prometheus scrape handler at path
func WithMetricsHandler(path string, handler http.Handler) VRSyncAppOptions {
	return func(cfg *vrsyncAppConfig) error {
		cfg.metricsPath = path
		cfg.metricsHandler = handler
		return nil
	}
}

func (b *vrsyncAppConfig) tracer(name string) trace.Tracer {
	if b.tracerProvider == nil {
		return nil
	}
	return b.tracerProvider.Tracer(name)
}

// buildEnquiryClient builds the registry client. A missing API key is fatal.
func buildEnquiryClient(b *vrsyncAppConfig) (enquiry.Client, error) {
	reg := b.config.Registry

	apiKey, err := reg.GetAPIKey()
	if err != nil {
		return nil, err
	}

	var httpOpts []httpclient.Option
	if reg.UserAgent != "" {
		httpOpts = append(httpOpts, httpclient.WithUserAgent(reg.UserAgent))
	}

	opts := []enquiry.Option{
		enquiry.WithHTTPClient(httpclient.NewDefaultClient(reg.GetTimeout(), httpOpts...)),
		enquiry.WithTimeout(reg.GetTimeout()),
		enquiry.WithMaxAttempts(reg.GetMaxAttempts()),
		enquiry.WithDelayPolicy(enquiry.DelayPolicy{
			Base:         reg.GetBaseDelay(),
			ThrottleBase: reg.GetThrottleDelay(),
		}),
	}
	if tracer := b.tracer(EnquiryTracerName); tracer != nil {
		opts = append(opts, enquiry.WithTracer(tracer))
	}

	return enquiry.NewClient(reg.Endpoint, apiKey, opts...)
}

// buildSyncComponents builds the selector, writer, manager, coordinator,
// statistics aggregator and service on top of the store
func buildSyncComponents(ctx context.Context, b *vrsyncAppConfig) (*AppComponents, error) {
	slog.Info("Initializing sync components")

	st, err := b.storageFactory.CreateStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	syncCfg := b.config.Sync

	if b.syncManager == nil {
		if b.enquiryClient == nil {
			b.enquiryClient, err = buildEnquiryClient(b)
			if err != nil {
				return nil, fmt.Errorf("failed to create registry client: %w", err)
			}
		}

		managerOpts := []pkgsync.Option{
			pkgsync.WithOptions(pkgsync.Options{
				BatchSize:    syncCfg.GetBatchSize(),
				RequestDelay: syncCfg.GetRequestDelay(),
				BatchDelay:   syncCfg.GetBatchDelay(),
			}),
			pkgsync.WithPacer(&pkgsync.ClockPacer{Clock: b.clock}),
			pkgsync.WithClock(b.clock),
			pkgsync.WithTracer(b.tracer(SyncTracerName)),
		}

		if b.meterProvider != nil {
			sweepMetrics, err := telemetry.NewSweepMetrics(b.meterProvider)
			if err != nil {
				return nil, fmt.Errorf("failed to create sweep metrics: %w", err)
			}
			if sweepMetrics != nil {
				managerOpts = append(managerOpts, pkgsync.WithSweepMetrics(sweepMetrics))
				slog.Info("Sweep metrics enabled")
			}
		}

		selectorOpts := []selector.Option{
			selector.WithClock(b.clock),
			selector.WithThreshold(syncCfg.GetRefreshThreshold()),
		}
		if syncCfg.Tenants != nil {
			tenantFilter, err := filtering.NewTenantFilter(syncCfg.Tenants.Include, syncCfg.Tenants.Exclude)
			if err != nil {
				return nil, fmt.Errorf("failed to create tenant filter: %w", err)
			}
			selectorOpts = append(selectorOpts, selector.WithTenantFilter(tenantFilter))
		}

		b.syncManager = pkgsync.NewManager(
			st,
			selector.New(st, selectorOpts...),
			b.enquiryClient,
			writer.New(st, writer.WithClock(b.clock)),
			managerOpts...,
		)
	}

	statuses, err := b.storageFactory.CreateStateService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create sweep status service: %w", err)
	}

	sweepCoordinator := coordinator.New(b.syncManager,
		coordinator.WithInterval(syncCfg.GetInterval()),
		coordinator.WithClock(b.clock),
		coordinator.WithStateService(statuses),
	)

	aggregator := stats.New(st,
		stats.WithClock(b.clock),
		stats.WithThreshold(syncCfg.GetRefreshThreshold()),
		stats.WithTracer(b.tracer(StatsTracerName)),
	)

	slog.Info("Sync components initialized successfully")

	return &AppComponents{
		SweepCoordinator: sweepCoordinator,
		SweepManager:     b.syncManager,
		SyncService:      service.New(st, sweepCoordinator, b.syncManager, aggregator, statuses),
		Store:            st,
		SweepStatuses:    statuses,
	}, nil
}

func buildAuthorizer(cfg *config.AuthConfig) (authz.Authorizer, error) {
	var policyFile string
	if cfg != nil && cfg.Authorization != nil {
		policyFile = cfg.Authorization.PolicyFile
	}
	authorizer, err := authz.NewAuthorizerFromFile(policyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to build authorizer: %w", err)
	}
	return authorizer, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *vrsyncAppConfig,
	svc service.SyncService,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	middlewares := slices.Clone(b.middlewares)
	if middlewares == nil {
		middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			timeoutExcept(b.requestTimeout, isRegistryBound),
			api.LoggingMiddleware,
		}
	}

	// Metrics and tracing go first to capture every request
	if b.tracerProvider != nil {
		middlewares = append([]func(http.Handler) http.Handler{telemetry.TracingMiddleware(b.tracerProvider)}, middlewares...)
	}
	if b.meterProvider != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		middlewares = append([]func(http.Handler) http.Handler{metricsMiddleware}, middlewares...)
		slog.Info("HTTP metrics middleware enabled")
	}

	// Authentication then authorization, after logging so rejected
	// requests are logged too
	if b.authMiddleware != nil {
		var configured []string
		if b.config.Auth != nil {
			configured = append(configured, b.config.Auth.PublicPaths...)
		}
		if b.metricsHandler != nil {
			configured = append(configured, b.metricsPath)
		}
		middlewares = append(middlewares, auth.WrapWithPublicPaths(b.authMiddleware, auth.PublicPaths(configured...)))

		authorizer, err := buildAuthorizer(b.config.Auth)
		if err != nil {
			return nil, err
		}
		middlewares = append(middlewares, authz.Middleware(authorizer, b.config.Auth.GetScopeMapping()))
	}

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(middlewares...),
		api.WithAuthInfoHandler(b.authInfoHandler),
	}
	if b.metricsHandler != nil {
		serverOpts = append(serverOpts, api.WithMetricsHandler(b.metricsPath, b.metricsHandler))
		slog.Info("Prometheus metrics endpoint enabled", "path", b.metricsPath)
	}

	router := api.NewServer(svc, serverOpts...)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}

// isRegistryBound matches the endpoints that wait on registry lookups: the
// manual sweep, which answers once the sweep is over, and the single-vehicle
// refresh, which may spend up to maxAttempts timeouts plus the retry delays.
// Both are bounded by the enquiry client rather than the request timeout.
func isRegistryBound(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	if r.URL.Path == "/v1/sweeps" {
		return true
	}
	id, ok := strings.CutPrefix(r.URL.Path, "/v1/vehicles/")
	if !ok {
		return false
	}
	id, ok = strings.CutSuffix(id, "/refresh")
	return ok && id != "" && !strings.Contains(id, "/")
}

// timeoutExcept applies the request timeout to every request not matched by skip
func timeoutExcept(timeout time.Duration, skip func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		timed := middleware.Timeout(timeout)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip(r) {
				next.ServeHTTP(w, r)
				return
			}
			timed.ServeHTTP(w, r)
		})
	}
}
