// Package monitor ties discovery, assessment and the registry together
// into a long-running watcher for newly launched tokens.
package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"solana-token-sentinel/internal/discovery"
	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/observability"
	"solana-token-sentinel/internal/pipeline"
	"solana-token-sentinel/internal/registry"
	"solana-token-sentinel/internal/safety"
	"solana-token-sentinel/internal/solana"
)

// Program is one DEX program to watch.
type Program struct {
	ID       string // program address used in the logs subscription
	Platform string // human label, e.g. "Raydium"
}

// DefaultPrograms watches Raydium AMM v4 and pump.fun.
var DefaultPrograms = []Program{
	{ID: discovery.RaydiumAMMV4, Platform: "Raydium"},
	{ID: discovery.PumpFun, Platform: "PumpFun"},
}

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
)

// Options configures a Monitor.
type Options struct {
	WS            solana.WSClient
	RPC           solana.RPCClient
	Programs      []Program                  // defaults to DefaultPrograms
	Classifier    discovery.LaunchClassifier // defaults to a KeywordClassifier
	Registry      *registry.Registry
	Safety        *safety.Engine
	Workers       int           // defaults to 4
	QueueSize     int           // defaults to 256
	StatsInterval time.Duration // 0 disables the periodic stats log

	// OnDetection, when set, is called after a token is recorded.
	OnDetection func(*domain.MonitoredToken)

	Metrics *observability.Metrics // nil disables metrics
	Logger  *log.Logger
}

// Monitor subscribes to DEX program logs, classifies pool-creation
// transactions and runs each through the assessment pipeline on a bounded
// worker pool.
type Monitor struct {
	ws         solana.WSClient
	rpc        solana.RPCClient
	programs   []Program
	classifier discovery.LaunchClassifier
	registry   *registry.Registry
	safety     *safety.Engine
	resolver   *pipeline.Resolver
	extractor  *pipeline.Extractor

	workers       int
	queue         chan domain.LaunchEvent
	statsInterval time.Duration
	onDetection   func(*domain.MonitoredToken)

	metrics *observability.Metrics
	logger  *log.Logger

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// New creates a Monitor from options. WS, RPC, Registry and Safety are
// required.
func New(opts Options) (*Monitor, error) {
	if opts.WS == nil || opts.RPC == nil {
		return nil, fmt.Errorf("monitor requires ws and rpc clients")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("monitor requires a registry")
	}
	if opts.Safety == nil {
		return nil, fmt.Errorf("monitor requires a safety engine")
	}

	programs := opts.Programs
	if len(programs) == 0 {
		programs = DefaultPrograms
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = discovery.NewKeywordClassifier(nil)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Monitor{
		ws:            opts.WS,
		rpc:           opts.RPC,
		programs:      programs,
		classifier:    classifier,
		registry:      opts.Registry,
		safety:        opts.Safety,
		resolver:      pipeline.NewResolver(opts.RPC),
		extractor:     pipeline.NewExtractor(opts.RPC, logger),
		workers:       workers,
		queue:         make(chan domain.LaunchEvent, queueSize),
		statsInterval: opts.StatsInterval,
		onDetection:   opts.OnDetection,
		metrics:       opts.Metrics,
		logger:        logger,
	}, nil
}

// Start subscribes to all configured programs and launches the worker pool.
// A failed subscription is logged and skipped; Start only errors when no
// subscription succeeds. Start returns immediately; use Stop to shut down.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("monitor already started")
	}

	runCtx, cancel := context.WithCancel(ctx)

	subscribed := 0
	for _, prog := range m.programs {
		ch, err := m.ws.SubscribeLogs(runCtx, solana.LogsFilter{Mentions: []string{prog.ID}})
		if err != nil {
			m.logger.Printf("[monitor] subscribe %s (%s) failed: %v", prog.Platform, prog.ID, err)
			continue
		}
		subscribed++
		m.logger.Printf("[monitor] watching %s (%s)", prog.Platform, prog.ID)

		m.wg.Add(1)
		go m.notifyLoop(runCtx, prog, ch)
	}

	if subscribed == 0 {
		cancel()
		return fmt.Errorf("no program subscriptions succeeded")
	}

	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go m.worker(runCtx)
	}

	if m.statsInterval > 0 {
		m.wg.Add(1)
		go m.statsLoop(runCtx)
	}

	m.cancel = cancel
	m.started = true
	return nil
}

// Stop cancels all loops and waits for in-flight work to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	cancel := m.cancel
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Stats returns a snapshot of the registry.
func (m *Monitor) Stats(ctx context.Context) (*domain.RegistryStats, error) {
	return m.registry.Stats(ctx)
}

// notifyLoop consumes one program's subscription, classifies notifications
// and enqueues launch events. Events are dropped when the queue is full so
// a slow pipeline never stalls the WebSocket reader.
func (m *Monitor) notifyLoop(ctx context.Context, prog Program, ch <-chan solana.LogNotification) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case notif, ok := <-ch:
			if !ok {
				m.logger.Printf("[monitor] subscription closed for %s", prog.Platform)
				return
			}

			if m.metrics != nil {
				m.metrics.NotificationsReceived.WithLabelValues(prog.Platform).Inc()
			}

			if !m.classifier.Match(notif) {
				continue
			}
			if m.metrics != nil {
				m.metrics.LaunchesClassified.WithLabelValues(prog.Platform).Inc()
			}

			event := domain.LaunchEvent{
				Signature: notif.Signature,
				Slot:      notif.Slot,
				Platform:  prog.Platform,
				Logs:      notif.Logs,
			}

			select {
			case m.queue <- event:
			default:
				m.logger.Printf("[monitor] queue full, dropping event %s", notif.Signature)
				if m.metrics != nil {
					m.metrics.EventsDropped.Inc()
				}
			}
		}
	}
}

// worker drains the event queue.
func (m *Monitor) worker(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-m.queue:
			m.processEvent(ctx, event)
		}
	}
}

// processEvent runs one launch event through resolve, extract, assess and
// record. Any stage that cannot produce a token ends the run; the event is
// logged and discarded.
func (m *Monitor) processEvent(ctx context.Context, event domain.LaunchEvent) {
	start := time.Now()
	outcome := "recorded"
	defer func() {
		if m.metrics != nil {
			m.metrics.PipelineRunsTotal.WithLabelValues(outcome).Inc()
			m.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
		}
	}()

	tx, err := m.resolver.Resolve(ctx, event.Signature)
	if err != nil {
		m.logger.Printf("[monitor] resolve %s: %v", event.Signature, err)
		outcome = "resolve_error"
		return
	}
	if tx == nil {
		m.logger.Printf("[monitor] transaction %s not found, skipping", event.Signature)
		outcome = "not_found"
		return
	}

	info, err := m.extractor.Extract(ctx, tx)
	if err != nil {
		m.logger.Printf("[monitor] extract %s: %v", event.Signature, err)
		outcome = "extract_error"
		return
	}
	if info == nil {
		outcome = "no_mint"
		return
	}

	report := m.safety.Assess(ctx, info)

	token := &domain.MonitoredToken{
		TokenInfo:  *info,
		Report:     *report,
		Signature:  event.Signature,
		Platform:   event.Platform,
		DetectedAt: time.Now().UnixMilli(),
	}

	if err := m.registry.Record(ctx, token); err != nil {
		m.logger.Printf("[monitor] record %s: %v", info.Mint, err)
		outcome = "record_error"
		return
	}

	m.logger.Printf("[monitor] %s token %s score=%d recommendation=%s",
		event.Platform, info.Mint, report.OverallScore, report.Recommendation)

	if m.metrics != nil {
		m.metrics.RecommendationTotal.WithLabelValues(string(report.Recommendation)).Inc()
		m.metrics.LastDetectionUnixMs.Set(float64(token.DetectedAt))
		if count, err := m.registry.Stats(ctx); err == nil {
			m.metrics.TokensMonitored.Set(float64(count.TotalCount))
		}
	}

	if m.onDetection != nil {
		m.onDetection(token)
	}
}

// statsLoop logs a registry summary at the configured interval.
func (m *Monitor) statsLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := m.registry.Stats(ctx)
			if err != nil {
				m.logger.Printf("[monitor] stats: %v", err)
				continue
			}
			counts := make(map[domain.Recommendation]int)
			for _, e := range stats.Entries {
				counts[e.Recommendation]++
			}
			m.logger.Printf("[monitor] tracking %d tokens (safe=%d caution=%d risky=%d danger=%d)",
				stats.TotalCount,
				counts[domain.RecommendationSafe],
				counts[domain.RecommendationCaution],
				counts[domain.RecommendationRisky],
				counts[domain.RecommendationDanger])
		}
	}
}
