package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading-supervisor/internal/agent"
	"trading-supervisor/internal/app"
	"trading-supervisor/internal/bot"
	"trading-supervisor/internal/cache"
	"trading-supervisor/internal/config"
	"trading-supervisor/internal/handler"
	"trading-supervisor/internal/metrics"
	"trading-supervisor/pkg/logger"
	"trading-supervisor/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"trading-supervisor/docs"
)

const (
	serviceName    = "trading-supervisor"
	serviceVersion = "1.0.0"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	newLoggerFunc  = logger.New
	connectRedis   = cache.Connect
	initTracerFunc = tracing.InitTracer
	newMetricsFunc = func() *metrics.Recorder { return metrics.New(nil) }
	startBotFunc   = func(ctx context.Context, b *bot.Bot, token string) error {
		return b.Start(ctx, token)
	}
	newRouterFunc          = gin.New
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	exitFunc               = os.Exit
)

// @title           Trading Supervisor API
// @version         1.0
// @description     Answers natural-language stock questions with BUY/SELL/HOLD recommendations built from RSI and news sentiment.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		exitFunc(1)
	}
}

func run() error {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	log, err := newLoggerFunc(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return err
	}
	log = log.With().Str("service", serviceName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Enabled:        cfg.TracingEnabled,
		Endpoint:       cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	recorder := newMetricsFunc()
	sup := app.NewSupervisor(cfg, tracer, log, recorder)
	adapter := agent.NewAdapter(tracer, log, sup, cfg.ActionGroupName, cfg.APIPath)

	limiter, closeLimiter := newLimiter(ctx, cfg, log)
	defer closeLimiter()

	if err := startBotFunc(ctx, bot.New(sup, log, time.Duration(cfg.QueryTimeoutSecs)*time.Second), cfg.TelegramBotToken); err != nil {
		log.Error().Err(err).Msg("telegram bot disabled")
	}

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.HTTPPort)

	r := newRouterFunc()
	r.Use(gin.Recovery(), handler.RequestID(), handler.RequestLogger(log), handler.CORS(), handler.Metrics(recorder))
	r.Use(otelgin.Middleware(serviceName))

	api := r.Group("/api", handler.APIKeyAuth(cfg.APIAuthToken), handler.RateLimit(limiter, log))
	handler.New(tracer, log, sup, adapter).RegisterRoutes(r, api)
	r.GET("/metrics", gin.WrapH(recorder.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	signalled := make(chan struct{})
	go func() {
		waitForSignalFunc(quit)
		close(signalled)
	}()

	select {
	case <-signalled:
	case err := <-serveErr:
		// A closed channel means the server stopped on its own; shut down cleanly.
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}
	log.Info().Msg("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := <-serveErr; err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	log.Info().Msg("server exiting")
	return nil
}

// newLimiter shares counters through Redis when REDIS_URL is set and keeps
// them in process otherwise. A non-positive limit disables rate limiting.
func newLimiter(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.Limiter, func()) {
	if cfg.RateLimitPerMin <= 0 {
		return nil, func() {}
	}
	window := time.Minute
	client, err := connectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-memory rate limiting")
	}
	if client == nil {
		return cache.NewMemoryLimiter(cfg.RateLimitPerMin, window), func() {}
	}
	log.Info().Msg("connected to Redis")
	return cache.NewWindowLimiter(client, "ratelimit", cfg.RateLimitPerMin, window), func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing redis client")
		}
	}
}
