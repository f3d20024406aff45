// Command server runs the dialogue orchestrator's WebSocket front door:
// it accepts one connection per session at /ws, speaks the §6.1 wire
// protocol, and exposes /metrics and /schema for operators and client
// authors.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chicogong/realtime-duplex/pkg/config"
	"github.com/chicogong/realtime-duplex/pkg/orchestrator"
	"github.com/chicogong/realtime-duplex/pkg/telemetry"
	"github.com/chicogong/realtime-duplex/pkg/wireschema"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the server's YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.ProviderConfig{
		ServiceName: "realtime-duplex-server",
		LogLevel:    telemetry.ParseLevel(cfg.Server.LogLevel),
	})
	if err != nil {
		slog.Error("telemetry init failed", "error", err)
		os.Exit(1)
	}
	defer shutdownTelemetry(context.Background())

	ctx := context.Background()
	stt, err := buildSTT(ctx, cfg.Providers.STT)
	if err != nil {
		telemetry.Logger().Error("stt provider init failed", "error", err)
		os.Exit(1)
	}
	llm, err := buildLLM(ctx, cfg.Providers.LLM)
	if err != nil {
		telemetry.Logger().Error("llm provider init failed", "error", err)
		os.Exit(1)
	}
	tts, err := buildTTS(cfg.Providers.TTS)
	if err != nil {
		telemetry.Logger().Error("tts provider init failed", "error", err)
		os.Exit(1)
	}

	vad := orchestrator.NewRMSVAD(0.02, 500*time.Millisecond)
	orchCfg := cfg.Pipeline.ToOrchestratorConfig()
	orch := orchestrator.NewWithLogger(stt, llm, tts, vad, orchCfg, telemetry.Logger())

	registry := orchestrator.NewSessionRegistry(orchCfg.IdleSessionTimeout)
	registry.StartIdleSweep(orchCfg.IdleSessionTimeout / 4)
	defer registry.StopSweep()

	mux := http.NewServeMux()
	mux.Handle("/ws", &wsHandler{orch: orch, registry: registry})
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		encoded, err := wireschema.FrameSchema().MarshalJSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write(encoded)
	})
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		writeJSONSnapshot(w, registry.Snapshot())
	})
	mux.HandleFunc("GET /sessions/{id}/latency", latencyHandler(registry))

	if cfg.Server.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		go func() {
			telemetry.Logger().Info("metrics listening", "addr", cfg.Server.MetricsAddr)
			if err := http.ListenAndServe(cfg.Server.MetricsAddr, metricsMux); err != nil {
				telemetry.Logger().Error("metrics server failed", "error", err)
			}
		}()
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: mux,
	}

	go func() {
		telemetry.Logger().Info("server listening", "addr", cfg.Server.ListenAddr,
			"stt", cfg.Providers.STT.Name, "llm", cfg.Providers.LLM.Name, "tts", cfg.Providers.TTS.Name)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger().Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	telemetry.Logger().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		telemetry.Logger().Error("graceful shutdown failed", "error", err)
	}
}
