// Package config 负责加载服务的运行配置
// 加载顺序：内置默认值 -> .env 文件 -> 环境变量（优先级最高）
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config 服务的全部配置项
type Config struct {
	Port           int           `koanf:"port"`
	Env            string        `koanf:"env"`
	MongoURL       string        `koanf:"mongodb_url"`
	DatabaseName   string        `koanf:"database_name"`
	SecretKey      string        `koanf:"secret_key"`
	TokenTTL       time.Duration `koanf:"token_ttl"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	AllowedOrigins []string      `koanf:"allowed_origins"`

	AuthRateLimit float64 `koanf:"auth_rate_limit"` // 每个 IP 每秒允许的登录/注册请求数
	AuthRateBurst int     `koanf:"auth_rate_burst"`

	// 分析事件：GA_KEY 启用 HTTP 采集，ANALYTICS_NATS_URL 启用 NATS 采集
	GAKey            string        `koanf:"ga_key"`
	GAEndpoint       string        `koanf:"ga_endpoint"`
	AnalyticsNATSURL string        `koanf:"analytics_nats_url"`
	AnalyticsSubject string        `koanf:"analytics_subject"`
	AnalyticsTimeout time.Duration `koanf:"analytics_timeout"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Default 返回带有默认值的配置
// 注意：MONGODB_URL 和 SECRET_KEY 没有默认值，必须由外部提供
func Default() *Config {
	return &Config{
		Port:             8080,
		Env:              "development",
		DatabaseName:     "moviereviews",
		TokenTTL:         24 * time.Hour,
		RequestTimeout:   10 * time.Second,
		AllowedOrigins:   []string{"http://localhost:5173"},
		AuthRateLimit:    5,
		AuthRateBurst:    10,
		GAEndpoint:       "https://www.google-analytics.com/collect",
		AnalyticsSubject: "moviereviews.analytics",
		AnalyticsTimeout: 5 * time.Second,
		LogLevel:         "info",
		LogFormat:        "json",
		ShutdownTimeout:  10 * time.Second,
	}
}

// envKeys 环境变量名到配置键的映射，未列出的环境变量会被忽略
var envKeys = map[string]string{
	"PORT":               "port",
	"ENV":                "env",
	"MONGODB_URL":        "mongodb_url",
	"DATABASE_NAME":      "database_name",
	"SECRET_KEY":         "secret_key",
	"TOKEN_TTL":          "token_ttl",
	"REQUEST_TIMEOUT":    "request_timeout",
	"ALLOWED_ORIGINS":    "allowed_origins",
	"AUTH_RATE_LIMIT":    "auth_rate_limit",
	"AUTH_RATE_BURST":    "auth_rate_burst",
	"GA_KEY":             "ga_key",
	"GA_ENDPOINT":        "ga_endpoint",
	"ANALYTICS_NATS_URL": "analytics_nats_url",
	"ANALYTICS_SUBJECT":  "analytics_subject",
	"ANALYTICS_TIMEOUT":  "analytics_timeout",
	"LOG_LEVEL":          "log_level",
	"LOG_FORMAT":         "log_format",
	"SHUTDOWN_TIMEOUT":   "shutdown_timeout",
}

// Load 加载 .env 文件（如果存在）后读取环境变量，并校验配置
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := legacyDatabaseURL(k); err != nil {
		return nil, err
	}
	if err := splitOrigins(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransform 返回空字符串时 koanf 会跳过该环境变量
func envTransform(key string) string {
	return envKeys[key]
}

// legacyDatabaseURL 旧部署使用 DB 变量，只有 MONGODB_URL 未设置时才生效
func legacyDatabaseURL(k *koanf.Koanf) error {
	if os.Getenv("MONGODB_URL") != "" {
		return nil
	}
	legacy := os.Getenv("DB")
	if legacy == "" {
		return nil
	}
	if err := k.Set("mongodb_url", legacy); err != nil {
		return fmt.Errorf("failed to set mongodb_url: %w", err)
	}
	return nil
}

// splitOrigins 环境变量中的 ALLOWED_ORIGINS 是逗号分隔的字符串
func splitOrigins(k *koanf.Koanf) error {
	raw, ok := k.Get("allowed_origins").(string)
	if !ok {
		return nil
	}
	origins := make([]string, 0)
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if err := k.Set("allowed_origins", origins); err != nil {
		return fmt.Errorf("failed to set allowed_origins: %w", err)
	}
	return nil
}

// Validate 检查必填项和取值范围
func (c *Config) Validate() error {
	var errs []error
	if c.MongoURL == "" {
		errs = append(errs, errors.New("MONGODB_URL is not set"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is not set"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if len(c.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("ALLOWED_ORIGINS must not be empty"))
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction 生产环境下 Cookie 需要 Secure 标记
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr 返回 HTTP 监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
