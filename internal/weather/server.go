// Package weathersvc provides the weather service server implementation.
package weathersvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-weather/internal/weather/advisory"
	"github.com/kart-io/sentinel-weather/internal/weather/biz"
	"github.com/kart-io/sentinel-weather/internal/weather/handler"
	"github.com/kart-io/sentinel-weather/internal/weather/metrics"
	"github.com/kart-io/sentinel-weather/internal/weather/router"
	"github.com/kart-io/sentinel-weather/internal/weather/scheduler"
	"github.com/kart-io/sentinel-weather/internal/weather/source"
	"github.com/kart-io/sentinel-weather/internal/weather/source/openweather"
	"github.com/kart-io/sentinel-weather/internal/weather/source/thingspeak"
	"github.com/kart-io/sentinel-weather/internal/weather/store"
	"github.com/kart-io/sentinel-weather/internal/weather/synthetic"
	"github.com/kart-io/sentinel-weather/pkg/infra/app"
	"github.com/kart-io/sentinel-weather/pkg/infra/middleware"
	"github.com/kart-io/sentinel-weather/pkg/infra/pool"
	"github.com/kart-io/sentinel-weather/pkg/infra/tracing"
	"github.com/kart-io/sentinel-weather/pkg/llm"
	// 导入 LLM 供应商以自动注册
	_ "github.com/kart-io/sentinel-weather/pkg/llm/deepseek"
	_ "github.com/kart-io/sentinel-weather/pkg/llm/openai"
	"github.com/kart-io/sentinel-weather/pkg/llm/resilience"
	llmopts "github.com/kart-io/sentinel-weather/pkg/options/llm"
	logopts "github.com/kart-io/sentinel-weather/pkg/options/logger"
	redisopts "github.com/kart-io/sentinel-weather/pkg/options/redis"
	scheduleropts "github.com/kart-io/sentinel-weather/pkg/options/scheduler"
	serveropts "github.com/kart-io/sentinel-weather/pkg/options/server"
	sourceopts "github.com/kart-io/sentinel-weather/pkg/options/source"
)

// Name is the name of the application.
const Name = "sentinel-weather"

// 定时任务名称
const (
	TaskRefresh    = "refresh"
	TaskDemoJitter = "demo-jitter"
)

// Config contains application-related configurations.
type Config struct {
	ServerOptions    *serveropts.Options
	LogOptions       *logopts.Options
	SensorOptions    *sourceopts.SensorOptions
	AmbientOptions   *sourceopts.AmbientOptions
	LLMOptions       *llmopts.ProviderOptions
	RedisOptions     *redisopts.Options
	SchedulerOptions *scheduleropts.Options
	TracingOptions   *tracing.Options
}

// Server represents the weather server.
type Server struct {
	http            *http.Server
	scheduler       *scheduler.Scheduler
	pools           []*pool.Pool
	tracer          *tracing.Provider
	health          *middleware.HealthManager
	redisClose      func()
	shutdownTimeout time.Duration
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	printBanner(cfg)

	// 1. 初始化日志
	cfg.LogOptions.AddInitialField("service.name", Name)
	cfg.LogOptions.AddInitialField("service.version", app.GetVersion())
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting weather service...")

	// 2. 初始化链路追踪
	tracer, err := tracing.NewProvider(cfg.TracingOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	logger.Infow("Tracing initialized", "enabled", tracer.Enabled())

	loc, err := cfg.AmbientOptions.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}
	m := metrics.Default()

	// 3. 初始化协程池
	advisoryPool, err := pool.NewPool("advisory", pool.AdvisoryPool, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create advisory pool: %w", err)
	}
	schedulerPool, err := pool.NewPool("scheduler", pool.SchedulerPool, nil)
	if err != nil {
		advisoryPool.Release()
		return nil, fmt.Errorf("failed to create scheduler pool: %w", err)
	}

	// 4. 初始化数据源
	sources := cfg.newSources()

	// 5. 初始化快照存储
	snapshotTTL := cfg.snapshotTTL()
	snapshots, redisClose := cfg.newStore(ctx, snapshotTTL)

	// 6. 初始化 LLM 供应商
	provider, err := cfg.newChatProvider()
	if err != nil {
		advisoryPool.Release()
		schedulerPool.Release()
		if redisClose != nil {
			redisClose()
		}
		return nil, err
	}

	// 7. 初始化 Biz 层
	advisors := advisory.NewService(provider, advisoryPool, advisory.Config{
		Timeout: cfg.LLMOptions.Timeout,
		Metrics: m,
	})
	svc := biz.NewWeatherService(biz.Deps{
		Sources:   sources,
		Generator: synthetic.New(synthetic.WithLocation(loc)),
		Store:     snapshots,
		Advisors:  advisors,
		Workers:   advisoryPool,
		Metrics:   m,
	}, biz.Config{
		City:     cfg.AmbientOptions.City,
		Demo:     cfg.SchedulerOptions.Demo,
		Location: loc,
	})
	logger.Infow("Weather service initialized",
		"city", cfg.AmbientOptions.City,
		"timezone", loc.String(),
		"demo", cfg.SchedulerOptions.Demo,
		"snapshot_ttl", snapshotTTL.String(),
	)

	// 8. 注册定时任务
	sched := scheduler.New(schedulerPool, nil, m)
	if err := cfg.addTasks(sched, svc); err != nil {
		advisoryPool.Release()
		schedulerPool.Release()
		if redisClose != nil {
			redisClose()
		}
		return nil, err
	}

	// 9. 注册健康检查
	health := cfg.newHealth(snapshots, provider)

	// 10. 初始化 HTTP
	gin.SetMode(cfg.ServerOptions.Mode)
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	router.Register(engine, handler.NewWeatherHandler(svc, m,
		handler.WithPools(advisoryPool, schedulerPool),
		handler.WithChatProvider(provider),
		handler.WithHealth(health),
	))

	logger.Info("Weather service is ready")
	return &Server{
		http: &http.Server{
			Addr:         cfg.ServerOptions.Addr,
			Handler:      engine,
			ReadTimeout:  cfg.ServerOptions.ReadTimeout,
			WriteTimeout: cfg.ServerOptions.WriteTimeout,
			IdleTimeout:  cfg.ServerOptions.IdleTimeout,
		},
		scheduler:       sched,
		pools:           []*pool.Pool{advisoryPool, schedulerPool},
		tracer:          tracer,
		health:          health,
		redisClose:      redisClose,
		shutdownTimeout: cfg.ServerOptions.ShutdownTimeout,
	}, nil
}

// newSources 未配置的数据源保持为 nil，对账时按配置错误处理。
func (cfg *Config) newSources() biz.Sources {
	var sources biz.Sources

	if so := cfg.SensorOptions; so.Configured() {
		limiter := source.NewRateLimited(so.Rate, so.Burst)
		sources.Sensor = limiter.Sensor(thingspeak.New(thingspeak.Config{
			BaseURL:   so.BaseURL,
			ChannelID: so.ChannelID,
			APIKey:    so.APIKey,
			Timeout:   so.Timeout,
		}))
		logger.Infow("Sensor source configured", "source", thingspeak.Name, "channel", so.ChannelID)
	} else {
		logger.Warn("Sensor source not configured, serving synthetic data")
	}

	if ao := cfg.AmbientOptions; ao.Configured() {
		// 当前天气与预报共享同一配额
		limiter := source.NewRateLimited(ao.Rate, ao.Burst)
		client := openweather.New(openweather.Config{
			BaseURL: ao.BaseURL,
			APIKey:  ao.APIKey,
			Country: ao.Country,
			Lang:    ao.Lang,
			Timeout: ao.Timeout,
		})
		sources.Ambient = limiter.Ambient(client)
		sources.Forecast = limiter.Forecast(client)
		logger.Infow("Ambient source configured", "source", openweather.Name, "city", ao.City)
	} else {
		logger.Warn("Ambient source not configured, forecast will be mocked")
	}
	return sources
}

// snapshotTTL 默认与刷新周期一致。
func (cfg *Config) snapshotTTL() time.Duration {
	if cfg.RedisOptions.Enabled && cfg.RedisOptions.SnapshotTTL > 0 {
		return cfg.RedisOptions.SnapshotTTL
	}
	if cfg.SchedulerOptions.RefreshInterval > 0 {
		return cfg.SchedulerOptions.RefreshInterval
	}
	return scheduleropts.NewOptions().RefreshInterval
}

// newStore Redis 不可用时退回进程内存储。
func (cfg *Config) newStore(ctx context.Context, ttl time.Duration) (store.SnapshotStore, func()) {
	if !cfg.RedisOptions.Enabled {
		logger.Info("Snapshot store: memory")
		return store.NewMemoryStore(ttl, nil), nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.RedisOptions.DialTimeout)
	defer cancel()
	client, err := store.NewRedisClient(pingCtx, cfg.RedisOptions)
	if err != nil {
		logger.Warnw("failed to connect to redis, using memory snapshot store", "error", err.Error())
		return store.NewMemoryStore(ttl, nil), nil
	}

	logger.Infow("Snapshot store: redis", "addr", cfg.RedisOptions.Addr(), "ttl", ttl.String())
	return store.NewRedisStore(client, cfg.RedisOptions.KeyPrefix+"snapshot:", ttl),
		func() { _ = client.Close() }
}

// newChatProvider 未配置 API key 时返回 nil，建议全部走启发式规则。
func (cfg *Config) newChatProvider() (llm.ChatProvider, error) {
	lo := cfg.LLMOptions
	if !lo.Enabled() {
		logger.Warn("LLM provider not configured, advisories use heuristics only")
		return nil, nil
	}

	base, err := llm.NewChatProvider(lo.Provider, lo.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("Chat provider initialized", "provider", lo.Provider, "model", lo.Model)

	if lo.BreakerFailures <= 0 {
		return base, nil
	}
	return resilience.NewResilientChatProvider(base, resilience.DefaultRetryConfig(), &resilience.CircuitBreakerConfig{
		MaxFailures:      lo.BreakerFailures,
		Timeout:          lo.BreakerCooldown,
		HalfOpenMaxCalls: 1,
	}), nil
}

// newHealth Redis 连通性为必需检查；数据源与 LLM 未配置时服务回退到演示数据与启发式规则，
// 只降级不下线。
func (cfg *Config) newHealth(snapshots store.SnapshotStore, provider llm.ChatProvider) *middleware.HealthManager {
	h := middleware.NewHealthManager()
	h.SetVersion(app.GetVersion())

	if rs, ok := snapshots.(*store.RedisStore); ok {
		h.RegisterChecker("snapshot-store", rs.Ping)
	}
	h.RegisterOptionalChecker("sensor", configured(cfg.SensorOptions.Configured(), "sensor source not configured"))
	h.RegisterOptionalChecker("ambient", configured(cfg.AmbientOptions.Configured(), "ambient source not configured"))
	h.RegisterOptionalChecker("llm", configured(provider != nil, "llm provider not configured"))
	return h
}

func configured(ok bool, msg string) middleware.HealthChecker {
	return func(context.Context) error {
		if ok {
			return nil
		}
		return errors.New(msg)
	}
}

func (cfg *Config) addTasks(s *scheduler.Scheduler, svc biz.Service) error {
	so := cfg.SchedulerOptions
	if so.RefreshInterval > 0 && !so.Demo {
		if err := s.Add(scheduler.Task{
			Name:       TaskRefresh,
			Interval:   so.RefreshInterval,
			Run:        svc.Refresh,
			RunOnStart: true,
		}); err != nil {
			return err
		}
	}
	if so.JitterInterval > 0 {
		if err := s.Add(scheduler.Task{
			Name:     TaskDemoJitter,
			Interval: so.JitterInterval,
			Run:      svc.DemoTick,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Run starts the server and blocks until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	defer s.cleanup()

	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down weather service...")
		s.health.SetReady(false)
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("HTTP server shutdown incomplete", "error", err.Error())
	}
	return nil
}

func (s *Server) cleanup() {
	s.scheduler.Stop()
	for _, p := range s.pools {
		if err := p.ReleaseTimeout(s.shutdownTimeout); err != nil {
			logger.Warnw("worker pool release timed out", "pool", p.Name(), "error", err.Error())
		}
	}
	if s.redisClose != nil {
		s.redisClose()
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.tracer.Shutdown(ctx); err != nil {
		logger.Warnw("tracer shutdown failed", "error", err.Error())
	}
	_ = logger.Flush()
	logger.Info("Weather service stopped")
}

func printBanner(cfg *Config) {
	fmt.Printf("Starting %s...\n", Name)
	fmt.Printf("  Listen: %s\n", cfg.ServerOptions.Addr)
	fmt.Printf("  City: %s (%s)\n", cfg.AmbientOptions.City, cfg.AmbientOptions.Timezone)
	fmt.Printf("  Sensor configured: %v, ambient configured: %v\n", cfg.SensorOptions.Configured(), cfg.AmbientOptions.Configured())
	if cfg.LLMOptions.Enabled() {
		fmt.Printf("  LLM: %s (%s)\n", cfg.LLMOptions.Provider, cfg.LLMOptions.Model)
	} else {
		fmt.Println("  LLM: disabled, heuristics only")
	}
	fmt.Printf("  Demo mode: %v\n", cfg.SchedulerOptions.Demo)
}
