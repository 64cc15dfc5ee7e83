// Command quoteclient connects to a quoteserver, subscribes to a set of
// tickers over a UDP socket, and prints each quote it receives until
// interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/adred-codev/quote-stream/internal/client"
	"github.com/adred-codev/quote-stream/internal/config"
	"github.com/adred-codev/quote-stream/internal/logging"
)

func main() {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	serverAddr := flag.String("server-addr", cfg.ServerAddr, "quoteserver TCP handshake address")
	udpPort := flag.Int("udp-port", cfg.UDPPort, "local UDP port to bind (0 picks any free port)")
	tickersFile := flag.String("tickers-file", cfg.TickersFile, "path to a newline-delimited tickers file")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	pretty := flag.Bool("pretty", cfg.PrettyLogs, "use console-friendly log output")
	flag.Parse()

	logger := logging.NewClientLogger(*logLevel, *pretty)

	if *tickersFile == "" {
		logger.Fatal().Msg("tickers-file is required")
	}
	tickers, err := client.LoadTickers(*tickersFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load tickers")
	}
	logger.Info().Strs("tickers", tickers).Msg("loaded tickers")

	localIP, err := resolveLocalIP(*serverAddr)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to determine local address")
	}

	udpConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: localIP, Port: *udpPort})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to bind UDP socket")
	}
	defer udpConn.Close()

	localUDPAddr := udpConn.LocalAddr().(*net.UDPAddr)
	serverUDPAddrText, err := client.Handshake(*serverAddr, localUDPAddr, tickers)
	if err != nil {
		logger.Fatal().Err(err).Msg("handshake failed")
	}
	serverUDPAddr, err := net.ResolveUDPAddr("udp", serverUDPAddrText)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve server UDP address")
	}
	logger.Info().Str("server_udp_addr", serverUDPAddrText).Msg("subscribed")

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	stop := &client.ShutdownFlag{}
	pingDone := make(chan struct{})
	go func() {
		client.RunPingLoop(udpConn, serverUDPAddr, stop, logger)
		close(pingDone)
	}()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutdown signal received")
		stop.Stop()
	}()

	client.RunReceiveLoop(udpConn, stop, logger, client.DefaultQuoteHandler(logger))

	<-pingDone
	logger.Info().Msg("quote client exiting")
}

// resolveLocalIP picks the local address to bind the client's UDP socket
// to by dialing serverAddr and reading back the chosen source address;
// the client can never bind a wildcard address since the server needs a
// concrete destination to send datagrams to.
func resolveLocalIP(serverAddr string) (net.IP, error) {
	conn, err := net.Dial("udp", serverAddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s to determine local address: %w", serverAddr, err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP, nil
}
