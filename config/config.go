package config

import (
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:",squash"`
	Feishu  FeishuConfig  `mapstructure:",squash"`
	LLM     LLMConfig     `mapstructure:",squash"`
	Search  SearchConfig  `mapstructure:",squash"`
	Agent   AgentConfig   `mapstructure:",squash"`
	Media   MediaConfig   `mapstructure:",squash"`
	Catalog CatalogConfig `mapstructure:",squash"`
}

type ServerConfig struct {
	Port      string `mapstructure:"PORT"`
	LogFormat string `mapstructure:"LOG_FORMAT"` // "console" or "json"
}

type FeishuConfig struct {
	AppID             string `mapstructure:"FEISHU_APP_ID"`
	AppSecret         string `mapstructure:"FEISHU_APP_SECRET"`
	EncryptKey        string `mapstructure:"FEISHU_ENCRYPT_KEY"`
	VerificationToken string `mapstructure:"FEISHU_VERIFICATION_TOKEN"`
}

func (c FeishuConfig) Enabled() bool {
	return c.AppID != "" && c.AppSecret != ""
}

type LLMConfig struct {
	Provider  string        `mapstructure:"LLM_PROVIDER"` // "gemini", "openai", "deepseek"
	APIKey    string        `mapstructure:"LLM_API_KEY"`
	APIURL    string        `mapstructure:"LLM_API_URL"`
	ModelName string        `mapstructure:"LLM_MODEL_NAME"` // e.g. "gemini-2.5-flash", "gpt-4o"
	Timeout   time.Duration `mapstructure:"LLM_TIMEOUT"`
}

type SearchConfig struct {
	Provider   string        `mapstructure:"SEARCH_PROVIDER"` // "duckduckgo", "searxng", "feed"
	MaxResults int           `mapstructure:"SEARCH_MAX_RESULTS"`
	SearxngURL string        `mapstructure:"SEARXNG_URL"`
	FeedURL    string        `mapstructure:"SEARCH_FEED_URL"`
	Timeout    time.Duration `mapstructure:"TOOL_TIMEOUT"`
}

type AgentConfig struct {
	MaxIterations int `mapstructure:"AGENT_MAX_ITERATIONS"`
}

type MediaConfig struct {
	YtDlpPath string        `mapstructure:"YTDLP_PATH"`
	Timeout   time.Duration `mapstructure:"MEDIA_TIMEOUT"`
}

type CatalogConfig struct {
	Path string `mapstructure:"CATALOG_PATH"`
}

var AppConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("LLM_MODEL_NAME", "")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_API_URL", "")
	v.SetDefault("LLM_TIMEOUT", 60*time.Second)
	v.SetDefault("SEARCH_PROVIDER", "duckduckgo")
	v.SetDefault("SEARCH_MAX_RESULTS", 5)
	v.SetDefault("SEARXNG_URL", "")
	v.SetDefault("SEARCH_FEED_URL", "")
	v.SetDefault("TOOL_TIMEOUT", 20*time.Second)
	v.SetDefault("AGENT_MAX_ITERATIONS", 10)
	v.SetDefault("YTDLP_PATH", "yt-dlp")
	v.SetDefault("MEDIA_TIMEOUT", 45*time.Second)
	v.SetDefault("CATALOG_PATH", "")
	v.SetDefault("FEISHU_APP_ID", "")
	v.SetDefault("FEISHU_APP_SECRET", "")
	v.SetDefault("FEISHU_ENCRYPT_KEY", "")
	v.SetDefault("FEISHU_VERIFICATION_TOKEN", "")
}

// Load reads the optional env file and the process environment into a Config.
// A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			log.Printf("Warning: %s not loaded, relying on environment variables: %v", envFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.Search.Provider = strings.ToLower(strings.TrimSpace(cfg.Search.Provider))
	if cfg.Search.MaxResults <= 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.Agent.MaxIterations <= 0 {
		cfg.Agent.MaxIterations = 10
	}
	return cfg, nil
}

func Init() {
	cfg, err := Load(".env")
	if err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}
	AppConfig = cfg
}
