// Command gwselect loads a ruleset file, compiles it, installs the
// resulting snapshot, and serves Prometheus metrics for the running
// selector while listening for SIGINT/SIGTERM to shut down cleanly.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gwselect/internal/config"
	"github.com/TimurManjosov/gwselect/internal/reqctx"
	"github.com/TimurManjosov/gwselect/internal/ruleset"
	"github.com/TimurManjosov/gwselect/internal/selector"
	"github.com/TimurManjosov/gwselect/internal/snapshot"
	"github.com/TimurManjosov/gwselect/internal/telemetry"
)

func main() {
	bootLog := zerolog.New(os.Stderr)
	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("config")
	}
	if err := cfg.Validate(); err != nil {
		bootLog.Fatal().Err(err).Msg("config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	registry := snapshot.NewRegistry()
	if err := installFromFile(registry, cfg.RulesetPath, cfg.DebugTrace, log); err != nil {
		log.Fatal().Err(err).Str("path", cfg.RulesetPath).Msg("initial ruleset install failed")
	}

	telemetry.Init()
	if id, version, compiledAt, ok := registry.ActiveID(); ok {
		telemetry.SetActiveSnapshotVersion(version)
		log.Info().Int64("ruleset_id", id).Int64("version", version).
			Time("compiled_at", compiledAt).Msg("snapshot installed")
	}

	logSink := telemetry.LogSink(log)
	onDecision := func(e selector.Event) {
		telemetry.OnDecision(e)
		logSink(e)
	}

	if cfg.SamplePath != "" {
		if err := runSampleRequests(registry, cfg.SamplePath, onDecision, log); err != nil {
			log.Error().Err(err).Str("path", cfg.SamplePath).Msg("sample selection run failed")
		}
	} else {
		log.Info().Msg("no sample requests configured, skipping startup selection run")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         cfg.MetricsAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("metrics server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("stopped")
}

// runSampleRequests reads a JSON array of request contexts from path and
// runs each through selector.Select against the currently installed
// snapshot, reporting every Decision through onDecision. This is the
// reference binary's demonstration of the hot path — production
// callers embed internal/selector directly rather than shelling out to
// this binary per request.
func runSampleRequests(registry *snapshot.Registry, path string, onDecision func(selector.Event), log zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	snap := registry.Current()
	for i, item := range raw {
		ctx := reqctx.FromJSON(item)
		decision, err := selector.Select(snap, ctx, selector.Options{OnDecision: onDecision})
		if err != nil {
			log.Error().Err(err).Int("request", i).Msg("selection failed")
			continue
		}
		log.Info().Int("request", i).Str("kind", string(decision.Kind)).
			Str("gateway", decision.Gateway).Str("reason_code", decision.ReasonCode).
			Msg("sample decision")
	}
	return nil
}

func installFromFile(registry *snapshot.Registry, path string, debug bool, log zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := ruleset.Decode(data)
	if err != nil {
		return err
	}
	snap, errs := ruleset.Compile(doc, ruleset.Options{Debug: debug, Log: log})
	if len(errs) > 0 {
		for _, e := range errs {
			log.Error().Str("path", e.Path).Str("code", string(e.Code)).Msg(e.Message)
		}
		return errs[0]
	}
	registry.Install(snap)
	return nil
}
