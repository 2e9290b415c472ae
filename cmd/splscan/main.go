package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/songzhibin97/splscan/internal/ai"
	"github.com/songzhibin97/splscan/internal/ai/anthropic"
	"github.com/songzhibin97/splscan/internal/ai/deepseek"
	"github.com/songzhibin97/splscan/internal/ai/openai"
	"github.com/songzhibin97/splscan/internal/configs"
	"github.com/songzhibin97/splscan/internal/data"
	collectorData "github.com/songzhibin97/splscan/internal/data/collector"
	"github.com/songzhibin97/splscan/internal/data/collector/moralis"
	"github.com/songzhibin97/splscan/internal/data/collector/solscan"
	"github.com/songzhibin97/splscan/internal/observability"
	"github.com/songzhibin97/splscan/internal/risk"
	"github.com/songzhibin97/splscan/internal/scanner"
	"github.com/songzhibin97/splscan/internal/server"
	"github.com/songzhibin97/splscan/internal/utils/address"
	"github.com/songzhibin97/splscan/internal/utils/request"
)

type ScanService struct {
	config  *configs.Config
	scanner *scanner.Scanner
	metrics *observability.Metrics
}

func NewScanService(config *configs.Config) (*ScanService, error) {
	metrics := observability.NewMetrics(config.MetricsNamespace)
	client := request.New(configs.Duration(config.RequestTimeout, 15*time.Second))

	// 初始化各个组件
	sources, err := buildSources(config.Providers, client)
	if err != nil {
		return nil, err
	}
	collector := collectorData.NewMultiSourceCollector(sources, log)

	log.Debug("init collector", "sources", config.Providers.Order)

	// 模型调用耗时较长, 超时由 enricher 控制
	model, err := buildChatModel(config.AIConfig, request.New(0))
	if err != nil {
		return nil, err
	}
	enricher := ai.NewTokenEnricher(
		ai.Instrument(model, config.AIConfig.Provider, metrics),
		configs.Duration(config.AIConfig.CallTimeout, time.Minute),
		log,
	)

	log.Debug("init enricher", "provider", config.AIConfig.Provider)

	assessor, err := risk.NewConcentrationAssessor(config.RiskParams)
	if err != nil {
		return nil, err
	}

	log.Debug("init assessor")

	return &ScanService{
		config:  config,
		scanner: scanner.NewScanner(collector, enricher, assessor, metrics, log),
		metrics: metrics,
	}, nil
}

func buildSources(config configs.ProvidersConfig, client *resty.Client) ([]data.DataSource, error) {
	sources := make([]data.DataSource, 0, len(config.Order))
	for _, name := range config.Order {
		switch name {
		case configs.SourceSolscan:
			sources = append(sources, solscan.NewSolscanDataSource(solscan.Options{
				BaseURL:         config.Solscan.BaseURL,
				APIKey:          config.Solscan.APIKey,
				HoldersPageSize: config.Solscan.HoldersPageSize,
			}, client))
		case configs.SourceMoralis:
			sources = append(sources, moralis.NewMoralisDataSource(moralis.Options{
				BaseURL:       config.Moralis.BaseURL,
				APIKey:        config.Moralis.APIKey,
				Network:       config.Moralis.Network,
				HoldersLimit:  config.Moralis.HoldersLimit,
				PriceEndpoint: config.Moralis.PriceEndpoint,
			}, client))
		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}
	return sources, nil
}

func buildChatModel(config configs.AIConfig, client *resty.Client) (ai.ChatModel, error) {
	switch config.Provider {
	case configs.ProviderOpenAI:
		return openai.NewOpenAIChatModel(config.APIKey, config.ModelType, config.BaseURL, float32(config.Temperature)), nil
	case configs.ProviderDeepSeek:
		return deepseek.NewDeepSeekChatModel(config.APIKey, config.ModelType, config.BaseURL, config.Temperature, client), nil
	case configs.ProviderAnthropic:
		return anthropic.NewAnthropicChatModel(config.APIKey, config.ModelType, config.BaseURL, config.Temperature), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", config.Provider)
	}
}

// ScanOnce 分析单个地址并输出 JSON
func (s *ScanService) ScanOnce(ctx context.Context, contract string) error {
	contract, err := address.Validate(contract)
	if err != nil {
		return err
	}

	result := s.scanner.Analyze(ctx, contract)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if result.Failed() {
		return result.Err
	}
	return nil
}

// Run 启动 HTTP 服务, ctx 结束时优雅退出
func (s *ScanService) Run(ctx context.Context) error {
	handler := server.NewServer(s.scanner, s.metrics.Handler(), s.config.Server.AllowedOrigins, log).Routes()

	srv := &http.Server{
		Addr:              s.config.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: configs.Duration(s.config.Server.ReadTimeout, 10*time.Second),
		ReadTimeout:       configs.Duration(s.config.Server.ReadTimeout, 10*time.Second),
		WriteTimeout:      configs.Duration(s.config.Server.WriteTimeout, 2*time.Minute),
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown", "err", err)
		}
	}()

	log.Info("starting server", "addr", s.config.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen: %w", err)
	}
	return nil
}

var (
	flagconf     string
	flagcontract string

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	}))
)

func init() {
	flag.StringVar(&flagconf, "conf", "", "config path, eg: -conf config.yaml")
	flag.StringVar(&flagcontract, "contract", "", "analyze one token mint and exit")
}

func main() {
	flag.Parse()

	// 一次性模式下 stdout 只输出结果
	if flagcontract != "" {
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	// 加载配置
	config, err := configs.Load(flagconf)
	if err != nil {
		log.Error("Error loading config", "err", err)
		os.Exit(1)
	}

	log.Debug("Loaded config", "listen_addr", config.ListenAddr, "providers", config.Providers.Order, "ai_provider", config.AIConfig.Provider)

	if config.Proxy != "" {
		_ = os.Setenv("HTTP_PROXY", config.Proxy)
		_ = os.Setenv("HTTPS_PROXY", config.Proxy)
		log.Debug("set proxy ok", "proxy", config.Proxy)
	}

	service, err := NewScanService(config)
	if err != nil {
		log.Error("Error creating scan service", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flagcontract != "" {
		if err := service.ScanOnce(ctx, flagcontract); err != nil {
			log.Error("scan failed", "contract", flagcontract, "err", err)
			stop()
			os.Exit(1)
		}
		return
	}

	if err := service.Run(ctx); err != nil {
		log.Error("System error", "err", err)
		stop()
		os.Exit(1)
	}
}
