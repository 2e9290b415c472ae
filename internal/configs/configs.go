package configs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/songzhibin97/splscan/internal/risk"
)

// AI 后端
const (
	ProviderOpenAI    = "openai"
	ProviderDeepSeek  = "deepseek"
	ProviderAnthropic = "anthropic"
)

// 数据源
const (
	SourceSolscan = "solscan"
	SourceMoralis = "moralis"
)

type Config struct {
	// 基础配置
	ListenAddr     string `json:"listen_addr" yaml:"listen_addr"`         // HTTP 监听地址
	RequestTimeout string `json:"request_timeout" yaml:"request_timeout"` // 上游接口超时
	Proxy          string `json:"proxy" yaml:"proxy"`                     // HTTP(S) 代理

	// 数据源配置
	Providers ProvidersConfig `json:"providers" yaml:"providers"`

	// 风险控制参数
	RiskParams risk.RiskParameters `json:"risk_parameters" yaml:"risk_parameters"`

	// AI 模型参数
	AIConfig AIConfig `json:"ai_config" yaml:"ai_config"`

	Server ServerConfig `json:"server" yaml:"server"`

	MetricsNamespace string `json:"metrics_namespace" yaml:"metrics_namespace"`
}

type ProvidersConfig struct {
	Order   []string      `json:"order" yaml:"order"` // 按顺序回退
	Solscan SolscanConfig `json:"solscan" yaml:"solscan"`
	Moralis MoralisConfig `json:"moralis" yaml:"moralis"`
}

type SolscanConfig struct {
	BaseURL         string `json:"base_url" yaml:"base_url"`
	APIKey          string `json:"api_key" yaml:"api_key"`
	HoldersPageSize int    `json:"holders_page_size" yaml:"holders_page_size"`
}

type MoralisConfig struct {
	BaseURL       string `json:"base_url" yaml:"base_url"`
	APIKey        string `json:"api_key" yaml:"api_key"`
	Network       string `json:"network" yaml:"network"`
	HoldersLimit  int    `json:"holders_limit" yaml:"holders_limit"`
	PriceEndpoint string `json:"price_endpoint" yaml:"price_endpoint"` // pairs | price
}

type AIConfig struct {
	Provider    string  `json:"provider" yaml:"provider"`         // openai | deepseek | anthropic
	APIKey      string  `json:"api_key" yaml:"api_key"`           // AI服务API密钥
	ModelType   string  `json:"model_type" yaml:"model_type"`     // AI模型类型
	BaseURL     string  `json:"base_url" yaml:"base_url"`         // 兼容接口地址
	Temperature float64 `json:"temperature" yaml:"temperature"`   // 采样温度
	CallTimeout string  `json:"call_timeout" yaml:"call_timeout"` // 单次调用超时
}

type ServerConfig struct {
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
	ReadTimeout    string   `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   string   `json:"write_timeout" yaml:"write_timeout"`
}

// Load reads path as JSON, or YAML for .yaml/.yml files, then applies .env
// and environment overrides and fills defaults
func Load(path string) (*Config, error) {
	config := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(path, raw, config); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// .env 不存在时忽略
	_ = godotenv.Load()
	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func decode(path string, raw []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(raw, config)
	default:
		return json.Unmarshal(raw, config)
	}
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	override(&c.Providers.Solscan.APIKey, "SOLSCAN_TOKEN")
	override(&c.Providers.Moralis.APIKey, "MORALIS_API_KEY")
	override(&c.Proxy, "SPLSCAN_PROXY")
	override(&c.ListenAddr, "SPLSCAN_LISTEN_ADDR")

	switch c.AIConfig.Provider {
	case ProviderDeepSeek:
		override(&c.AIConfig.APIKey, "DEEPSEEK_API_KEY")
	case ProviderAnthropic:
		override(&c.AIConfig.APIKey, "ANTHROPIC_API_KEY")
	default:
		override(&c.AIConfig.APIKey, "OPENAI_API_KEY")
	}
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":3000"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "15s"
	}
	if len(c.Providers.Order) == 0 {
		c.Providers.Order = []string{SourceSolscan}
	}
	if c.AIConfig.Provider == "" {
		c.AIConfig.Provider = ProviderOpenAI
	}
	if c.AIConfig.CallTimeout == "" {
		c.AIConfig.CallTimeout = "60s"
	}

	defaults := risk.DefaultRiskParameters()
	if c.RiskParams.MaxTopHolderShare == 0 {
		c.RiskParams.MaxTopHolderShare = defaults.MaxTopHolderShare
	}
	if c.RiskParams.MaxTop10Share == 0 {
		c.RiskParams.MaxTop10Share = defaults.MaxTop10Share
	}
	if c.RiskParams.MinHolders == 0 {
		c.RiskParams.MinHolders = defaults.MinHolders
	}

	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "120s"
	}
}

// Validate checks enum values and durations
func (c *Config) Validate() error {
	for _, name := range c.Providers.Order {
		switch name {
		case SourceSolscan, SourceMoralis:
		default:
			return fmt.Errorf("unknown provider %q", name)
		}
	}

	switch c.AIConfig.Provider {
	case ProviderOpenAI, ProviderDeepSeek, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown ai provider %q", c.AIConfig.Provider)
	}

	for field, value := range map[string]string{
		"request_timeout":        c.RequestTimeout,
		"ai_config.call_timeout": c.AIConfig.CallTimeout,
		"server.read_timeout":    c.Server.ReadTimeout,
		"server.write_timeout":   c.Server.WriteTimeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", field, err)
		}
	}
	return nil
}

// Duration parses a validated duration field, falling back to def
func Duration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
