package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KNICEX/market-monitor/internal/metrics"
	"github.com/KNICEX/market-monitor/internal/repo"
	"github.com/KNICEX/market-monitor/internal/service/indicator"
	"github.com/KNICEX/market-monitor/internal/service/marketdata"
)

type Config struct {
	Interval   time.Duration
	Timeframes []string
	BarCount   int
	Sessions   []Session
	Location   *time.Location
	Depth      indicator.DepthConfig
	// PauseWait 非交易时段的复查间隔
	PauseWait time.Duration
	// IdleWait 监控列表为空时的等待
	IdleWait time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:   5 * time.Second,
		Timeframes: []string{"1m", "5m", "15m", "1d"},
		BarCount:   200,
		Location:   time.Local,
		Depth:      indicator.DefaultDepthConfig(),
		PauseWait:  30 * time.Second,
		IdleWait:   10 * time.Second,
	}
}

// Scheduler 逐个扫描监控列表中的标的. 停止是协作式的: 在循环开始, 每个标的之前,
// 以及休眠的每一步检查, 不会打断进行中的行情请求
type Scheduler struct {
	market    marketdata.MarketService
	watchlist repo.WatchlistRepo
	gateway   *Gateway
	queue     *AlertQueue
	notifiers []Notifier
	persist   func(interval time.Duration) error

	cfg      Config
	interval atomic.Int64
	now      func() time.Time
	step     time.Duration

	// gen 每次启停递增, 旧的循环发现代数变化即退出
	gen      atomic.Int64
	mu       sync.RWMutex
	state    State
	lastScan time.Time
	tracked  int
	done     chan struct{}
}

type Option func(s *Scheduler)

func WithNotifier(notifier Notifier) Option {
	return func(s *Scheduler) {
		s.notifiers = append(s.notifiers, notifier)
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithSleepStep 休眠时检查停止标志的粒度, 默认 1s
func WithSleepStep(step time.Duration) Option {
	return func(s *Scheduler) {
		s.step = step
	}
}

// WithIntervalPersister 修改扫描间隔后写回配置
func WithIntervalPersister(fn func(interval time.Duration) error) Option {
	return func(s *Scheduler) {
		s.persist = fn
	}
}

func NewScheduler(market marketdata.MarketService, watchlist repo.WatchlistRepo, gateway *Gateway,
	queue *AlertQueue, cfg Config, opts ...Option) *Scheduler {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.BarCount < indicator.MinTDBars+1 {
		cfg.BarCount = def.BarCount
	}
	if cfg.Location == nil {
		cfg.Location = def.Location
	}
	if cfg.PauseWait <= 0 {
		cfg.PauseWait = def.PauseWait
	}
	if cfg.IdleWait <= 0 {
		cfg.IdleWait = def.IdleWait
	}
	s := &Scheduler{
		market:    market,
		watchlist: watchlist,
		gateway:   gateway,
		queue:     queue,
		cfg:       cfg,
		now:       time.Now,
		step:      time.Second,
		state:     StateStopped,
	}
	s.interval.Store(int64(cfg.Interval))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the scan loop. It returns false if the loop is already running.
func (s *Scheduler) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateStopped {
		return false
	}
	s.state = StateRunning
	gen := s.gen.Add(1)
	done := make(chan struct{})
	s.done = done
	go func() {
		defer close(done)
		s.run(ctx, gen)
	}()
	return true
}

// Stop 设置停止标志, 循环在下一个检查点退出
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return
	}
	s.gen.Add(1)
	s.state = StateStopped
	slog.Info("monitor stopping")
}

// Wait blocks until the most recently started loop has exited.
func (s *Scheduler) Wait() {
	s.mu.RLock()
	done := s.done
	s.mu.RUnlock()
	if done != nil {
		<-done
	}
}

func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		State:        s.state,
		LastScanTime: s.lastScan,
		TrackedCount: s.tracked,
		Interval:     int(s.Interval() / time.Second),
	}
}

func (s *Scheduler) Alerts() *AlertQueue {
	return s.queue
}

func (s *Scheduler) Interval() time.Duration {
	return time.Duration(s.interval.Load())
}

// UpdateInterval 立即生效, 持久化失败时返回错误但内存中的值已更新
func (s *Scheduler) UpdateInterval(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("interval must be positive, got %d", seconds)
	}
	interval := time.Duration(seconds) * time.Second
	s.interval.Store(int64(interval))
	slog.Info("monitor interval updated", "interval", interval)
	if s.persist != nil {
		return s.persist(interval)
	}
	return nil
}

func (s *Scheduler) run(ctx context.Context, gen int64) {
	slog.Info("monitor started")
	for !s.stopped(ctx, gen) {
		wait := s.cycle(ctx, gen)
		s.sleep(ctx, gen, wait)
	}
	s.mu.Lock()
	if s.gen.Load() == gen {
		s.state = StateStopped
	}
	s.mu.Unlock()
	slog.Info("monitor stopped")
}

func (s *Scheduler) stopped(ctx context.Context, gen int64) bool {
	return ctx.Err() != nil || s.gen.Load() != gen
}

// setState 只在本代循环仍有效时修改状态, 避免覆盖 Stop
func (s *Scheduler) setState(gen int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen.Load() == gen {
		s.state = state
	}
}

// cycle 执行一轮扫描并返回下一轮之前需要等待的时间
func (s *Scheduler) cycle(ctx context.Context, gen int64) time.Duration {
	now := s.now()
	if !InSession(s.cfg.Sessions, now.In(s.cfg.Location)) {
		s.setState(gen, StatePaused)
		slog.Debug("outside trading session", "time", now.In(s.cfg.Location).Format("15:04"))
		return s.cfg.PauseWait
	}
	s.setState(gen, StateRunning)

	codes, err := s.watchlist.Codes(ctx)
	if err != nil {
		metrics.ScanErrors.WithLabelValues("watchlist").Inc()
		slog.Error("failed to list watched symbols", "error", err)
		return s.cfg.IdleWait
	}
	s.mu.Lock()
	s.lastScan = now
	s.tracked = len(codes)
	s.mu.Unlock()
	if len(codes) == 0 {
		slog.Info("watch-list is empty, waiting")
		return s.cfg.IdleWait
	}

	start := time.Now()
	for _, code := range codes {
		if s.stopped(ctx, gen) {
			break
		}
		s.scanSymbol(ctx, code)
	}
	metrics.ScanCycles.Inc()
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	return s.Interval()
}

func (s *Scheduler) sleep(ctx context.Context, gen int64, d time.Duration) {
	for d > 0 && !s.stopped(ctx, gen) {
		step := min(s.step, d)
		select {
		case <-ctx.Done():
			return
		case <-time.After(step):
		}
		d -= step
	}
}

func (s *Scheduler) scanSymbol(ctx context.Context, code string) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ScanErrors.WithLabelValues("symbol").Inc()
			slog.Error("scan symbol panic", "symbol", code, "panic", r)
		}
	}()
	for _, raw := range s.cfg.Timeframes {
		s.scanTimeframe(ctx, code, raw)
	}
	s.scanDepth(ctx, code)
}

func (s *Scheduler) scanTimeframe(ctx context.Context, code, raw string) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ScanErrors.WithLabelValues("timeframe").Inc()
			slog.Error("scan timeframe panic", "symbol", code, "timeframe", raw, "panic", r)
		}
	}()
	tf, err := marketdata.ParseTimeframe(raw)
	if err == nil && tf.IsTick() {
		err = fmt.Errorf("%w: tick is not a bar period", marketdata.ErrUnsupportedTimeframe)
	}
	if err != nil {
		slog.Warn("skip timeframe", "symbol", code, "timeframe", raw, "error", err)
		return
	}

	bars, err := s.market.Bars(ctx, code, tf, s.cfg.BarCount)
	if err != nil {
		metrics.ScanErrors.WithLabelValues("bars").Inc()
		slog.Warn("failed to get bars", "symbol", code, "timeframe", tf, "error", err)
		return
	}
	stable := marketdata.StableBars(bars)
	if len(stable) < indicator.MinTDBars {
		slog.Debug("skip analyze", "symbol", code, "timeframe", tf, "reason", "too little bars", "bars", len(stable))
		return
	}
	for _, sig := range barSignals(code, tf, stable) {
		s.submit(ctx, sig)
	}
}

func (s *Scheduler) scanDepth(ctx context.Context, code string) {
	snap, err := s.market.Snapshot(ctx, code)
	if errors.Is(err, marketdata.ErrNotFound) {
		return
	}
	if err != nil {
		metrics.ScanErrors.WithLabelValues("snapshot").Inc()
		slog.Warn("failed to get snapshot", "symbol", code, "error", err)
		return
	}
	for _, sig := range depthSignals(code, snap, s.cfg.Depth, s.now()) {
		s.submit(ctx, sig)
	}
}

func (s *Scheduler) submit(ctx context.Context, sig Signal) {
	metrics.SignalsDetected.WithLabelValues(sig.Kind.ToString()).Inc()
	alert, accepted, err := s.gateway.Submit(ctx, sig)
	if err != nil {
		// 存储不可用时直接丢弃, 恢复后不会重复推送
		metrics.SignalsRejected.WithLabelValues("store").Inc()
		slog.Error("failed to save signal", "symbol", sig.Code, "kind", sig.Kind, "error", err)
		return
	}
	if !accepted {
		metrics.SignalsRejected.WithLabelValues("duplicate").Inc()
		return
	}
	metrics.SignalsAccepted.WithLabelValues(alert.Kind).Inc()
	if !s.queue.Push(alert) {
		slog.Warn("alert queue full, oldest alert dropped", "dropped", s.queue.Dropped())
	}
	slog.Info("new signal", "symbol", alert.Code, "name", alert.Name, "timeframe", alert.Timeframe,
		"kind", alert.Kind, "price", alert.Price, "desc", alert.Description)

	for _, n := range s.notifiers {
		go func(n Notifier) {
			if err := n.Notify(ctx, alert); err != nil {
				slog.Error("monitor notify signal err", "error", err, "alert", alert.Id)
			}
		}(n)
	}
}
