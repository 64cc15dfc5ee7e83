// Command quoteserver runs the streaming quote distribution server: it
// generates synthetic quotes at a fixed tick rate, accepts TCP handshakes
// that open UDP subscriptions, and fans each tick out to every live
// subscriber, evicting clients whose heartbeat goes quiet.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/adred-codev/quote-stream/internal/acceptor"
	"github.com/adred-codev/quote-stream/internal/config"
	"github.com/adred-codev/quote-stream/internal/dispatcher"
	"github.com/adred-codev/quote-stream/internal/eventbus"
	"github.com/adred-codev/quote-stream/internal/generator"
	"github.com/adred-codev/quote-stream/internal/logging"
	"github.com/adred-codev/quote-stream/internal/metrics"
	"github.com/adred-codev/quote-stream/internal/protocol"
	"github.com/adred-codev/quote-stream/internal/ratelimit"
	"github.com/adred-codev/quote-stream/internal/registry"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	tcpAddr := flag.String("tcp-addr", cfg.TCPAddr, "TCP handshake listen address")
	udpAddr := flag.String("udp-addr", cfg.UDPAddr, "UDP quote/heartbeat listen address")
	knownTickers := flag.String("known-tickers", cfg.KnownTickers, "path to known-tickers file (empty uses the built-in list)")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "HTTP listen address for /health and /metrics")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	natsURL := flag.String("nats-url", cfg.NATSURL, "optional NATS URL for best-effort audit events")
	flag.Parse()

	logger, err := logging.NewServerLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	tickers, tickerSet, err := protocol.LoadKnownTickers(*knownTickers)
	if err != nil {
		logger.Fatal("failed to load known tickers", zap.Error(err))
	}
	logger.Info("loaded known tickers", zap.Int("count", len(tickers)))

	udpConn, err := bindUDP(*udpAddr)
	if err != nil {
		logger.Fatal("failed to bind UDP socket", zap.Error(err))
	}
	defer udpConn.Close()

	tcpListener, err := net.Listen("tcp", *tcpAddr)
	if err != nil {
		logger.Fatal("failed to bind TCP listener", zap.Error(err))
	}
	defer tcpListener.Close()

	metricsRegistry := metrics.NewRegistry()
	healthReporter := metrics.NewHealthReporter()

	var bus *eventbus.Bus
	if *natsURL != "" {
		bus, err = eventbus.Connect(*natsURL, logger, metricsRegistry)
		if err != nil {
			logger.Warn("failed to connect event bus, continuing without it", zap.Error(err))
			bus = eventbus.Disabled()
		}
	} else {
		bus = eventbus.Disabled()
	}
	defer bus.Close()

	reg := registry.New(metricsRegistry)
	disp := dispatcher.New(udpConn, logger)
	go disp.Run()
	defer disp.Stop()

	limiter := ratelimit.New(ratelimit.Config{
		GlobalRate:  rate.Limit(cfg.RateLimitGlobal),
		GlobalBurst: int(cfg.RateLimitGlobal) * 2,
		IPRate:      rate.Limit(cfg.RateLimitIP),
		IPBurst:     int(cfg.RateLimitIP) * 2,
		IPIdleTTL:   10 * time.Minute,
	}, logger)
	defer limiter.Stop()

	publicUDPAddr := acceptor.PublicUDPAddr(udpConn, *tcpAddr)
	accept := acceptor.New(acceptor.Config{
		Listener:      tcpListener,
		UDPConn:       udpConn,
		UDPPublicAddr: publicUDPAddr,
		KnownTickers:  tickerSet,
		Registry:      reg,
		Dispatcher:    disp,
		Limiter:       limiter,
		Metrics:       metricsRegistry,
		Bus:           bus,
		Logger:        logger,
	})

	gen := generator.New(tickers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runGenerator(ctx, gen, reg, bus)
	go serveHTTP(ctx, *metricsAddr, metricsRegistry, healthReporter, reg, logger)

	go func() {
		if err := accept.Run(); err != nil {
			logger.Info("handshake acceptor stopped", zap.Error(err))
		}
	}()

	logger.Info("quote server started",
		zap.String("tcp_addr", *tcpAddr),
		zap.String("udp_addr", *udpAddr),
		zap.String("public_udp_addr", publicUDPAddr),
		zap.String("metrics_addr", *metricsAddr),
	)

	<-ctx.Done()
	logger.Info("shutdown signal received, closing listeners")
	tcpListener.Close()
}

func bindUDP(addr string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve UDP address %q: %w", addr, err)
	}
	return net.ListenUDP("udp", udpAddr)
}

func runGenerator(ctx context.Context, gen *generator.Generator, reg *registry.Registry, bus *eventbus.Bus) {
	ticker := time.NewTicker(protocol.GenerationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			batch := gen.GenerateAll()
			reg.Broadcast(batch)
			bus.PublishJSON(eventbus.SubjectGeneratorTick, eventbus.GeneratorTickEvent{QuoteCount: len(batch)})
		}
	}
}

func serveHTTP(ctx context.Context, addr string, metricsRegistry *metrics.Registry, health *metrics.HealthReporter, reg *registry.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsRegistry.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		snap := health.Snapshot(reg.Count())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snap)
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("health/metrics server stopped", zap.Error(err))
	}
}
