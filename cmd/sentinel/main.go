package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-token-sentinel/internal/discovery"
	"solana-token-sentinel/internal/monitor"
	"solana-token-sentinel/internal/observability"
	"solana-token-sentinel/internal/registry"
	"solana-token-sentinel/internal/safety"
	"solana-token-sentinel/internal/solana"
	"solana-token-sentinel/internal/storage"
	chstore "solana-token-sentinel/internal/storage/clickhouse"
	"solana-token-sentinel/internal/storage/memory"
	"solana-token-sentinel/internal/storage/migrations"
	pgstore "solana-token-sentinel/internal/storage/postgres"
)

// DEX program aliases mapped to program IDs.
var dexAliases = map[string]string{
	"raydium": discovery.RaydiumAMMV4,
	"pumpfun": discovery.PumpFun,
}

// platformLabels maps program IDs back to display names.
var platformLabels = map[string]string{
	discovery.RaydiumAMMV4: "Raydium",
	discovery.PumpFun:      "PumpFun",
}

func main() {
	// Parse flags
	rpcEndpoint := flag.String("rpc-endpoint", "", "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", "", "Solana WebSocket endpoint")
	programs := flag.String("programs", "", "Comma-separated DEX program IDs to watch")
	dex := flag.String("dex", "raydium,pumpfun", "Comma-separated DEX aliases (raydium, pumpfun)")
	keywords := flag.String("keywords", "", "Comma-separated launch keywords (default: initialize,init,create)")
	maxTopHolderPct := flag.Float64("max-top-holder-pct", safety.DefaultMaxTopHolderPercent, "Fail the holder check above this top-holder share")
	minLiquidity := flag.Float64("min-liquidity", 0, "Minimum pool liquidity in SOL")
	minHolders := flag.Int("min-holders", 0, "Minimum distinct holder count")
	workers := flag.Int("workers", 4, "Assessment worker pool size")
	queueSize := flag.Int("queue-size", 256, "Launch event queue size")
	registryCapacity := flag.Int("registry-capacity", 0, "In-memory registry capacity, 0 for unbounded")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse DSN for detection history (empty to disable)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	statsInterval := flag.Duration("stats-interval", 1*time.Minute, "Registry stats log interval (0 to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[sentinel] ", log.LstdFlags|log.Lshortfile)

	// Start metrics server if enabled
	metrics := observability.NewMetrics("")
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Resolve watched programs
	programList := resolvePrograms(*programs, *dex)
	if len(programList) == 0 {
		logger.Fatal("No DEX programs specified. Use --programs or --dex")
	}
	logger.Printf("Watching DEX programs: %v", programIDs(programList))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err := run(ctx, logger, metrics, runConfig{
		rpcEndpoint:      *rpcEndpoint,
		wsEndpoint:       *wsEndpoint,
		programs:         programList,
		keywords:         splitList(*keywords),
		maxTopHolderPct:  *maxTopHolderPct,
		minLiquidity:     *minLiquidity,
		minHolders:       *minHolders,
		workers:          *workers,
		queueSize:        *queueSize,
		registryCapacity: *registryCapacity,
		postgresDSN:      *postgresDSN,
		clickhouseDSN:    *clickhouseDSN,
		useMemory:        *useMemory,
		statsInterval:    *statsInterval,
	})

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

type runConfig struct {
	rpcEndpoint      string
	wsEndpoint       string
	programs         []monitor.Program
	keywords         []string
	maxTopHolderPct  float64
	minLiquidity     float64
	minHolders       int
	workers          int
	queueSize        int
	registryCapacity int
	postgresDSN      string
	clickhouseDSN    string
	useMemory        bool
	statsInterval    time.Duration
}

// run wires the monitor and blocks until the context is cancelled.
func run(ctx context.Context, logger *log.Logger, metrics *observability.Metrics, cfg runConfig) error {
	if cfg.rpcEndpoint == "" {
		return fmt.Errorf("--rpc-endpoint is required")
	}
	if cfg.wsEndpoint == "" {
		return fmt.Errorf("--ws-endpoint is required")
	}
	if !cfg.useMemory && cfg.postgresDSN == "" {
		return fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	rpc := solana.NewHTTPClient(cfg.rpcEndpoint,
		solana.WithCallObserver(func(method string, elapsed time.Duration) {
			metrics.RPCCallLatency.WithLabelValues(method).Observe(elapsed.Seconds())
		}))

	wsConfig := solana.DefaultWSConfig()
	wsConfig.OnReconnect = metrics.WSReconnects.Inc

	ws, err := solana.NewWSClient(ctx, cfg.wsEndpoint, &wsConfig)
	if err != nil {
		return fmt.Errorf("create websocket client: %w", err)
	}
	defer ws.Close()

	// Token store: Postgres by default, in-memory on request.
	var tokenStore storage.TokenStore = memory.NewTokenStore(cfg.registryCapacity)
	if !cfg.useMemory {
		pool, err := pgstore.NewPool(ctx, cfg.postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run postgres migrations: %w", err)
		}
		tokenStore = pgstore.NewTokenStore(pool)
	}

	// Detection history is optional.
	var history storage.DetectionHistoryStore
	if cfg.clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.clickhouseDSN)
		if err != nil {
			return fmt.Errorf("setup clickhouse: %w", err)
		}
		defer conn.Close()
		history = chstore.NewDetectionHistoryStore(conn)
	}

	reg := registry.New(tokenStore, history, logger)
	engine := safety.NewEngine(rpc, safety.Config{
		MaxTopHolderPercent: cfg.maxTopHolderPct,
		MinLiquidity:        cfg.minLiquidity,
		MinHolderCount:      cfg.minHolders,
	}, logger)

	mon, err := monitor.New(monitor.Options{
		WS:            ws,
		RPC:           rpc,
		Programs:      cfg.programs,
		Classifier:    discovery.NewKeywordClassifier(cfg.keywords),
		Registry:      reg,
		Safety:        engine,
		Workers:       cfg.workers,
		QueueSize:     cfg.queueSize,
		StatsInterval: cfg.statsInterval,
		Metrics:       metrics,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("create monitor: %w", err)
	}

	if err := mon.Start(ctx); err != nil {
		return fmt.Errorf("start monitor: %w", err)
	}
	logger.Println("Monitoring for new token launches...")

	<-ctx.Done()
	logger.Println("Stopping monitor...")
	mon.Stop()
	return ctx.Err()
}

// resolvePrograms resolves watched programs from flags.
func resolvePrograms(programs, dex string) []monitor.Program {
	seen := make(map[string]bool)
	var list []monitor.Program

	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		label := platformLabels[id]
		if label == "" {
			label = id
		}
		list = append(list, monitor.Program{ID: id, Platform: label})
	}

	for _, p := range splitList(programs) {
		add(p)
	}
	for _, alias := range splitList(dex) {
		if id, ok := dexAliases[strings.ToLower(alias)]; ok {
			add(id)
		}
	}
	return list
}

func programIDs(programs []monitor.Program) []string {
	ids := make([]string, 0, len(programs))
	for _, p := range programs {
		ids = append(ids, fmt.Sprintf("%s(%s)", p.Platform, p.ID))
	}
	return ids
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
