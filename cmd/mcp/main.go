package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"trading-supervisor/internal/app"
	"trading-supervisor/internal/config"
	"trading-supervisor/internal/mcpserver"
	"trading-supervisor/pkg/logger"
	"trading-supervisor/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serviceName    = "trading-supervisor-mcp"
	serviceVersion = "1.0.0"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	newLoggerFunc  = logger.New
	initTracerFunc = tracing.InitTracer
	runStdioFunc   = func(ctx context.Context, server *mcp.Server) error {
		return server.Run(ctx, &mcp.StdioTransport{})
	}
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	notifyContext          = signal.NotifyContext
	exitFunc               = os.Exit
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mcp: %v\n", err)
		exitFunc(1)
	}
}

func run() error {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	// stdout carries the stdio protocol, so logs always go to stderr.
	log, err := newLoggerFunc(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stderr"})
	if err != nil {
		return err
	}
	log = log.With().Str("service", serviceName).Logger()

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	sup := app.NewSupervisor(cfg, tracer, log, nil)
	timeout := time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second
	server := mcpserver.New(sup, log, serviceVersion, timeout)

	if cfg.MCPTransport != "http" {
		log.Info().Msg("serving MCP over stdio")
		if err := runStdioFunc(ctx, server); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio transport: %w", err)
		}
		return nil
	}

	if cfg.MCPAuthToken == "" {
		log.Warn().Msg("MCP_AUTH_TOKEN not set, streamable HTTP endpoint is unauthenticated")
	}
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.MCPHTTPBind, strconv.Itoa(cfg.MCPHTTPPort)),
		Handler:           mcpserver.HTTPHandler(server, cfg.MCPAuthToken),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("serving MCP over streamable HTTP")
		if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok && err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("mcp server exiting")
	return nil
}
