// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/SyedDaiam9101/cover-service/internal/bootstrap"
	"github.com/SyedDaiam9101/cover-service/internal/cache"
	"github.com/SyedDaiam9101/cover-service/internal/config"
	"github.com/SyedDaiam9101/cover-service/internal/handler"
	"github.com/SyedDaiam9101/cover-service/internal/logging"
	"github.com/SyedDaiam9101/cover-service/internal/metrics"
	"github.com/SyedDaiam9101/cover-service/internal/middleware"
	pb "github.com/SyedDaiam9101/cover-service/proto/coverpb"
)

const serviceName = "cover-service"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Parse command-line flags
	port := flag.Int("port", 0, "gRPC server port (default: 50051)")
	httpPort := flag.Int("http", 0, "HTTP API port (default: 8080)")
	assetsDir := flag.String("assets", "", "Asset bundle directory (default: assets)")
	modelName := flag.String("model", "", "Model file inside the asset bundle")
	redisAddr := flag.String("redis", "", "Redis address for the prediction cache (optional)")
	configFile := flag.String("config", "", "Path to config file (optional)")
	useMock := flag.Bool("mock", false, "Use mock inference engine (for testing)")
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Override with flags if provided
	if *port > 0 {
		cfg.Port = *port
	}
	if *httpPort > 0 {
		cfg.HTTPPort = *httpPort
	}
	if *assetsDir != "" {
		cfg.AssetsDir = *assetsDir
	}
	if *modelName != "" {
		cfg.Model = *modelName
	}
	if *redisAddr != "" {
		cfg.Redis = *redisAddr
	}
	if *useMock {
		cfg.UseMockInference = true
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync(logger)

	if cfg.LogMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("server shutdown complete")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadWithConfigFile(path)
	}
	return config.Load()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting "+serviceName,
		zap.String("version", version),
		zap.Int("port", cfg.Port),
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("assets_dir", cfg.AssetsDir),
		zap.String("model", cfg.Model),
		zap.String("redis", cfg.Redis),
		zap.Bool("otel", cfg.OTELEnabled))

	// Initialize OpenTelemetry tracer
	var tracerShutdown func(context.Context) error
	if cfg.OTELEnabled {
		var err error
		tracerShutdown, err = initTracer(context.Background(), cfg.OTELEndpoint)
		if err != nil {
			logger.Warn("failed to initialize tracer", zap.Error(err))
		} else {
			logger.Info("OpenTelemetry tracing enabled", zap.String("endpoint", cfg.OTELEndpoint))
		}
	}

	// Load labels and model; failures here are fatal
	classifier, err := bootstrap.Load(cfg, bootstrap.DefaultSources(cfg), logger)
	if err != nil {
		return fmt.Errorf("failed to load classifier: %w", err)
	}
	defer classifier.Close()

	// Initialize Redis cache (optional)
	var predictionCache handler.PredictionCache
	if cfg.Redis != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		c, err := cache.New(ctx, cfg.Redis, cfg.CacheTTL)
		cancel()
		if err != nil {
			logger.Warn("continuing without prediction cache", zap.Error(err))
		} else {
			defer c.Close()
			predictionCache = c
			logger.Info("redis connected", zap.String("addr", cfg.Redis))
		}
	}

	h := handler.New(classifier.Pipeline, predictionCache, logger)

	// Create gRPC health server
	healthServer := health.NewServer()

	// Build interceptor chain
	interceptors := []grpc.UnaryServerInterceptor{
		middleware.UnaryRequestIDInterceptor(),
		middleware.UnaryLoggingInterceptor(logger),
		middleware.UnaryMetricsInterceptor(),
	}
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}

	// Add OpenTelemetry instrumentation if enabled
	if cfg.OTELEnabled {
		opts = append(opts, grpc.StatsHandler(otelgrpc.NewServerHandler()))
	}

	grpcServer := grpc.NewServer(opts...)
	pb.RegisterCoverClassifierServer(grpcServer, h)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	addr := fmt.Sprintf(":%d", cfg.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler.NewRouter(h, version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set health status to serving
	healthServer.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	metrics.SetHealthy()

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", addr))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	logger.Info(serviceName + " is ready to accept requests")

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down gracefully", zap.String("signal", sig.String()))
	case serveErr = <-errCh:
		logger.Error("server error, shutting down", zap.Error(serveErr))
	}

	// Set health to not serving
	healthServer.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	metrics.SetUnhealthy()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if tracerShutdown != nil {
		if err := tracerShutdown(ctx); err != nil {
			logger.Warn("tracer shutdown", zap.Error(err))
		}
	}

	return serveErr
}

// newSpanExporter ships spans to an OTLP collector over gRPC when an endpoint
// is configured and pretty-prints them to stdout otherwise.
func newSpanExporter(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	if endpoint == "" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	return otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
}

func initTracer(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	exporter, err := newSpanExporter(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Create resource with service information
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
