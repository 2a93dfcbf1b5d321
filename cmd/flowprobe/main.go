package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soporteti/flowprobe/internal/audit"
	"github.com/soporteti/flowprobe/internal/botapi"
	"github.com/soporteti/flowprobe/internal/config"
	"github.com/soporteti/flowprobe/internal/console"
	"github.com/soporteti/flowprobe/internal/mockbot"
	"github.com/soporteti/flowprobe/internal/observability"
	"github.com/soporteti/flowprobe/internal/scenario"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := console.NewFormatter(os.Stdout, cfg.Color)
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	store, err := audit.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("audit store init failed: %v", err)
	}
	defer store.Close()

	baseURL := cfg.BaseURL
	if cfg.Target == "mock" {
		mockURL, shutdown, err := startMockBot()
		if err != nil {
			log.Fatalf("mock bot init failed: %v", err)
		}
		defer shutdown()
		baseURL = mockURL
		log.Printf("target: embedded mock bot at %s", baseURL)
	} else {
		log.Printf("target: live service at %s", baseURL)
	}

	client := botapi.NewClient(botapi.Options{
		BaseURL:       baseURL,
		Origin:        cfg.Origin,
		Timeout:       cfg.RequestTimeout,
		RetryAttempts: cfg.RetryAttempts,
	})
	runner := scenario.NewRunner(client, store, metrics, out, cfg.ReplyPreviewChars, cfg.TurnDelay)

	out.Header("TEST DE FLUJO DE CONVERSACIÓN - FLOWPROBE")

	var aborted, turnsFailed int
	for _, sc := range scenario.Scripts() {
		summary, err := runner.Run(ctx, sc)
		turnsFailed += summary.TurnsFailed
		if err != nil {
			aborted++
			if ctx.Err() != nil {
				out.Warn("run interrupted")
				break
			}
			continue
		}
		out.OK("%s completada", sc.Name)
	}

	out.MetricsReport(metrics.Report())

	switch {
	case ctx.Err() != nil:
		out.Warn("pruebas interrumpidas por el usuario")
	case aborted == 0 && turnsFailed == 0:
		out.OK("TODAS LAS SIMULACIONES COMPLETADAS")
	default:
		out.Fail("simulaciones con fallas: %d abortadas, %d turnos fallidos", aborted, turnsFailed)
	}

	if cfg.StrictExit && (aborted > 0 || turnsFailed > 0 || ctx.Err() != nil) {
		os.Exit(1)
	}
}

// startMockBot serves the embedded flow bot on an ephemeral local port.
func startMockBot() (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	srv := &http.Server{Handler: mockbot.NewServer().Router()}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("mock bot serve error: %v", err)
		}
	}()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
		}
	}
	return "http://" + ln.Addr().String(), shutdown, nil
}
