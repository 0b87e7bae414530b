// edged is the court edge daemon. It simulates NBA fixtures against posted
// totals, scores the edges and delivers policy-cleared alerts.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"

	"github.com/courtedge/courtedge/pkg/alerts"
	"github.com/courtedge/courtedge/pkg/engine"
	"github.com/courtedge/courtedge/pkg/metrics"
	"github.com/courtedge/courtedge/pkg/nba"
	"github.com/courtedge/courtedge/pkg/odds"
	"github.com/courtedge/courtedge/pkg/streaming"
)

var (
	httpAddr     = flag.String("http", ":8080", "HTTP server address")
	configPath   = flag.String("config", "", "Model config YAML overrides")
	strictMode   = flag.Bool("strict", false, "Strict operating mode")
	seed         = flag.Int64("seed", 0, "Fix the sampler RNG seed (0 = time-based)")
	pollInterval = flag.Duration("poll", time.Minute, "Live slate poll interval")
	maxSims      = flag.Int("max-sims", 4, "Max concurrent manual simulations")
)

type envConfig struct {
	OddsAPIKey     string `env:"ODDS_API_KEY"`
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`
	DailyRunCron   string `env:"DAILY_RUN_CRON" envDefault:"12 5 * * *"`
}

func main() {
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("Starting court edge daemon")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	svc, err := newService()
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	go svc.hub.Run()
	go svc.flusher.Run(ctx)
	go svc.pollLoop(ctx)
	go svc.startHTTP()

	sched := cron.New()
	if _, err := sched.AddFunc(svc.env.DailyRunCron, func() { svc.dailySweep(ctx) }); err != nil {
		log.Fatalf("Bad daily cron spec %q: %v", svc.env.DailyRunCron, err)
	}
	sched.Start()

	log.Printf("Daemon running (http=%s, strict=%v, poll=%s)", *httpAddr, *strictMode, *pollInterval)
	log.Printf("WebSocket streaming available at ws://%s/ws", *httpAddr)

	<-sigCh
	log.Println("Shutting down...")

	sched.Stop()
	cancel()
	if svc.telegram != nil {
		svc.telegram.Stop()
	}
	log.Printf("Final state: %d alerts still pending", svc.store.PendingCount())
}

type service struct {
	env      envConfig
	modelCfg *engine.ModelConfig
	engine   *engine.Engine
	store    *alerts.Store
	flusher  *alerts.Flusher
	telegram *alerts.TelegramNotifier
	slate    nba.SlateBuilder
	hub      *streaming.Hub
	metrics  *metrics.EngineMetrics

	// Bounds concurrent manual simulations.
	simSem chan struct{}
}

// logNotifier stands in for Telegram when no token is configured.
type logNotifier struct{}

func (logNotifier) Send(_ context.Context, text string) error {
	log.Printf("ALERT (telegram not configured)\n%s", text)
	return nil
}

func newService() (*service, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	modelCfg := engine.DefaultModelConfig()
	if *strictMode {
		modelCfg = engine.StrictModelConfig()
	}
	if *configPath != "" {
		loaded, err := engine.LoadModelConfig(*configPath)
		if err != nil {
			return nil, err
		}
		modelCfg = loaded
	}

	flushWindows := make([]alerts.FlushWindow, len(modelCfg.FlushWindows))
	for i, w := range modelCfg.FlushWindows {
		flushWindows[i] = alerts.FlushWindow{Label: w.Label, Min: w.Min, Max: w.Max}
	}
	store := alerts.NewStore(flushWindows...)
	svc := &service{
		env:      ec,
		modelCfg: modelCfg,
		store:    store,
		hub:      streaming.NewHub(),
		metrics:  metrics.New(store.PendingCount),
		simSem:   make(chan struct{}, *maxSims),
	}

	scoreboard := nba.NewScoreboardClient()
	injuries := nba.NewInjuryClient()
	svc.slate = nba.SlateBuilder{Scoreboard: scoreboard}

	if ec.OddsAPIKey == "" {
		log.Println("ODDS_API_KEY missing - odds lookups will degrade to empty")
	}
	books := odds.NewBookSource(odds.NewClient(ec.OddsAPIKey), time.Minute)

	svc.engine = engine.New(modelCfg, engine.Deps{
		Teams:    nba.Resolver{},
		Fixtures: scoreboard,
		Odds:     books,
		Injuries: injuries,
		Lineups:  nba.LineupJudge{},
		Store:    store,
		Observer: svc.metrics,
		Seed:     *seed,
	})

	var notifier alerts.Notifier = logNotifier{}
	if ec.TelegramToken != "" && ec.TelegramChatID != 0 {
		tg, err := alerts.NewTelegramNotifier(ec.TelegramToken, ec.TelegramChatID, log.Default())
		if err != nil {
			return nil, err
		}
		svc.telegram = tg
		notifier = tg
	} else {
		log.Println("Telegram not configured - alerts will be logged only")
	}

	checker := nba.LineupChecker{Injuries: injuries}
	svc.flusher = alerts.NewFlusher(store, notifier, checker, modelCfg.PendingEvictAfter, log.Default())

	return svc, nil
}

// pollLoop evaluates the live slate on a fixed cadence. The decision windows
// inside the engine keep this quiet outside pregame.
func (s *service) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(*pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSlate(ctx, engine.EvalOptions{})
		}
	}
}

// dailySweep runs the whole slate unconditionally once a day so every
// fixture gets queued before its windows open.
func (s *service) dailySweep(ctx context.Context) {
	log.Println("Daily sweep starting")
	s.runSlate(ctx, engine.EvalOptions{Unconditional: true})
}

func (s *service) runSlate(ctx context.Context, opts engine.EvalOptions) {
	reqs, err := s.slate.Build(ctx)
	if err != nil {
		log.Printf("Slate build failed: %v", err)
		s.hub.BroadcastError(err, "slate")
		return
	}

	for _, req := range reqs {
		eval, err := s.engine.Evaluate(ctx, req, opts)
		if err != nil {
			log.Printf("Evaluate %s vs %s failed: %v", req.TeamA, req.TeamB, err)
			continue
		}
		if len(eval.Markets) > 0 {
			log.Printf("[EVAL] %s markets=%d alerts=%d", eval.Game, len(eval.Markets), len(eval.Alerts))
			s.hub.BroadcastEvaluation(eval)
		}
		for _, alert := range eval.Alerts {
			s.hub.BroadcastAlert(alert)
		}
	}
}

func (s *service) startHTTP() {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/simulate", s.handleSimulate)

	mux.HandleFunc("/auto/nba/today", func(w http.ResponseWriter, r *http.Request) {
		reqs, err := s.slate.Build(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"date":        time.Now().UTC().Format("2006-01-02"),
			"games_found": len(reqs),
			"games":       reqs,
		})
	})

	mux.HandleFunc("/pending", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"pending": s.store.PendingCount()})
	})

	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/ws", s.hub.ServeWS)

	server := &http.Server{
		Addr:         *httpAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("HTTP server listening on %s", *httpAddr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Printf("HTTP server error: %v", err)
	}
}

// handleSimulate runs one manual fixture evaluation. Simulations are CPU
// bound, so concurrency is capped instead of letting requests pile up.
func (s *service) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		engine.Request
		// Windowed opts in to the pregame decision-window gate; the default
		// manual submission evaluates unconditionally.
		Windowed bool `json:"windowed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	select {
	case s.simSem <- struct{}{}:
		defer func() { <-s.simSem }()
	case <-r.Context().Done():
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
		return
	}

	eval, err := s.engine.Evaluate(r.Context(), body.Request, engine.EvalOptions{Unconditional: !body.Windowed})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrUnknownTeam) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	s.hub.BroadcastEvaluation(eval)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eval)
}
