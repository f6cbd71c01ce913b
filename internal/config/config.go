package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPPort        int    `yaml:"http_port" default:"8080"`
	APIAuthToken    string `yaml:"api_auth_token"`
	RedisURL        string `yaml:"redis_url"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min" default:"60"`

	QueryTimeoutSecs int  `yaml:"query_timeout_secs" default:"25"`
	ParallelTools    bool `yaml:"parallel_tools" default:"true"`

	AlphaVantageAPIKey  string `yaml:"alpha_vantage_api_key"`
	AlphaVantageBaseURL string `yaml:"alpha_vantage_base_url" default:"https://www.alphavantage.co"`
	NewsLimit           int    `yaml:"news_limit" default:"50"`

	PolygonAPIKey     string `yaml:"polygon_api_key"`
	MarketDataBaseURL string `yaml:"market_data_base_url" default:"https://query1.finance.yahoo.com"`
	RSIPeriod         int    `yaml:"rsi_period" default:"14"`
	PriceHistoryDays  int    `yaml:"price_history_days" default:"90"`

	TelegramBotToken string `yaml:"telegram_bot_token"`

	MCPTransport          string `yaml:"mcp_transport" default:"stdio"`
	MCPHTTPBind           string `yaml:"mcp_http_bind" default:"127.0.0.1"`
	MCPHTTPPort           int    `yaml:"mcp_http_port" default:"8090"`
	MCPAuthToken          string `yaml:"mcp_auth_token"`
	MCPRequestTimeoutSecs int    `yaml:"mcp_request_timeout_secs" default:"30"`

	ActionGroupName string `yaml:"action_group_name" default:"TradingTools"`
	APIPath         string `yaml:"api_path" default:"/analyze"`

	LogLevel  string `yaml:"log_level" default:"info"`
	LogFormat string `yaml:"log_format" default:"json"`

	TracingEnabled bool   `yaml:"tracing_enabled" default:"true"`
	OTLPEndpoint   string `yaml:"otlp_endpoint" default:"localhost:4317"`
}

const minAPIKeyLength = 8

// Load builds the configuration from struct defaults, an optional YAML file
// named by CONFIG_FILE, and finally the environment.
func Load() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		log.Warn().Err(err).Msg("failed to apply config defaults")
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, cfg); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("ignoring config file")
		}
	}

	applyEnv(cfg)
	return cfg
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config) {
	setInt("HTTP_PORT", &cfg.HTTPPort)
	setString("API_AUTH_TOKEN", &cfg.APIAuthToken)
	setString("REDIS_URL", &cfg.RedisURL)
	setNonNegativeInt("RATE_LIMIT_PER_MIN", &cfg.RateLimitPerMin)
	setInt("QUERY_TIMEOUT_SECS", &cfg.QueryTimeoutSecs)
	setBool("SUPERVISOR_PARALLEL", &cfg.ParallelTools)

	setString("ALPHA_VANTAGE_API_KEY", &cfg.AlphaVantageAPIKey)
	setString("ALPHA_VANTAGE_BASE_URL", &cfg.AlphaVantageBaseURL)
	setInt("NEWS_LIMIT", &cfg.NewsLimit)
	setString("POLYGON_API_KEY", &cfg.PolygonAPIKey)
	setString("MARKET_DATA_BASE_URL", &cfg.MarketDataBaseURL)
	setInt("RSI_PERIOD", &cfg.RSIPeriod)
	setInt("PRICE_HISTORY_DAYS", &cfg.PriceHistoryDays)

	setString("TELEGRAM_BOT_TOKEN", &cfg.TelegramBotToken)

	setString("MCP_TRANSPORT", &cfg.MCPTransport)
	setString("MCP_HTTP_BIND", &cfg.MCPHTTPBind)
	setInt("MCP_HTTP_PORT", &cfg.MCPHTTPPort)
	setString("MCP_AUTH_TOKEN", &cfg.MCPAuthToken)
	setInt("MCP_REQUEST_TIMEOUT_SECS", &cfg.MCPRequestTimeoutSecs)

	setString("ACTION_GROUP_NAME", &cfg.ActionGroupName)
	setString("API_PATH", &cfg.APIPath)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("LOG_FORMAT", &cfg.LogFormat)
	setBool("TRACING_ENABLED", &cfg.TracingEnabled)
	setString("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.OTLPEndpoint)

	cfg.MCPTransport = strings.ToLower(cfg.MCPTransport)
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Warn().Str("value", cfg.MCPTransport).Msg("unsupported MCP_TRANSPORT, defaulting to stdio")
		cfg.MCPTransport = "stdio"
	}

	if cfg.AlphaVantageAPIKey == "" {
		log.Warn().Msg("ALPHA_VANTAGE_API_KEY not set, sentiment analysis will be unavailable")
	} else if len(cfg.AlphaVantageAPIKey) < minAPIKeyLength {
		log.Warn().Msg("ALPHA_VANTAGE_API_KEY looks malformed, sentiment analysis will be unavailable")
		cfg.AlphaVantageAPIKey = ""
	}
	if cfg.RedisURL == "" {
		log.Warn().Msg("REDIS_URL not set, using in-process rate limiting")
	}
	if cfg.TelegramBotToken == "" {
		log.Info().Msg("TELEGRAM_BOT_TOKEN not set")
	}
}

func setString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// setInt only accepts positive values; anything else keeps the current value.
func setInt(key string, dst *int) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer, keeping default")
		return
	}
	*dst = n
}

// setNonNegativeInt is setInt for keys where zero switches a feature off.
func setNonNegativeInt(key string, dst *int) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer, keeping default")
		return
	}
	*dst = n
}

func setBool(key string, dst *bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid boolean, keeping default")
		return
	}
	*dst = b
}
