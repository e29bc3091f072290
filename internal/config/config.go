package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/unload/internal/llm"
	"github.com/alexanderramin/unload/internal/service"
	"github.com/alexanderramin/unload/internal/transcribe"
	"github.com/spf13/viper"
)

const envPrefix = "UNLOAD"

// Config is everything the binary needs at startup.
type Config struct {
	Env                string `mapstructure:"env"`
	DBPath             string `mapstructure:"db_path"`
	ListenAddr         string `mapstructure:"listen_addr"`
	User               string `mapstructure:"user"`
	Timezone           string `mapstructure:"timezone"`
	MaxDumpChars       int    `mapstructure:"max_dump_chars"`
	DedupAgainstActive bool   `mapstructure:"dedup_against_active"`
	VoiceDir           string `mapstructure:"voice_dir"`
	MaxVoiceBytes      int64  `mapstructure:"max_voice_bytes"`

	Auth          AuthConfig          `mapstructure:"auth"`
	LLM           LLMSettings         `mapstructure:"llm"`
	Transcription TranscriptionConfig `mapstructure:"transcription"`
	Jobs          JobsConfig          `mapstructure:"jobs"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type LLMSettings struct {
	Provider  string `mapstructure:"provider"`
	APIKey    string `mapstructure:"api_key"`
	Endpoint  string `mapstructure:"endpoint"`
	Model     string `mapstructure:"model"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
	LogCalls  bool   `mapstructure:"log_calls"`
}

type TranscriptionConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

type JobsConfig struct {
	ClarityEnabled bool   `mapstructure:"clarity_enabled"`
	ClarityCron    string `mapstructure:"clarity_cron"`
	// ClarityPerMinute throttles outbound calls made by the daily job.
	ClarityPerMinute int `mapstructure:"clarity_per_minute"`
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".unload"
	}
	return filepath.Join(home, ".unload")
}

func setDefaults(v *viper.Viper) {
	dir := defaultDir()
	v.SetDefault("env", "development")
	v.SetDefault("db_path", filepath.Join(dir, "unload.db"))
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("user", "local")
	v.SetDefault("timezone", service.DefaultTimezone)
	v.SetDefault("max_dump_chars", 20000)
	v.SetDefault("dedup_against_active", false)
	v.SetDefault("voice_dir", filepath.Join(dir, "voice"))
	v.SetDefault("max_voice_bytes", transcribe.MaxVoiceBytes)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "unload")

	d := llm.DefaultConfig()
	v.SetDefault("llm.provider", string(d.Provider))
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.timeout_ms", d.TimeoutMs)
	v.SetDefault("llm.log_calls", false)

	v.SetDefault("transcription.endpoint", transcribe.DefaultEndpoint)
	v.SetDefault("transcription.api_key", "")
	v.SetDefault("transcription.model", transcribe.DefaultModel)

	v.SetDefault("jobs.clarity_enabled", false)
	v.SetDefault("jobs.clarity_cron", "0 6 * * *")
	v.SetDefault("jobs.clarity_per_minute", 30)
}

// Load reads defaults, then the config file, then UNLOAD_* environment
// variables. An empty path looks for unload.yaml in the working directory
// and ~/.unload; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.api_key", envPrefix+"_LLM_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("transcription.api_key", envPrefix+"_TRANSCRIPTION_API_KEY", "OPENAI_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	} else {
		v.SetConfigName("unload")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(defaultDir())
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LLMConfig layers the configured values over llm.DefaultConfig.
func (c *Config) LLMConfig() llm.LLMConfig {
	out := llm.DefaultConfig()
	if c.LLM.Provider != "" {
		out.Provider = llm.Provider(strings.ToLower(c.LLM.Provider))
	}
	out.APIKey = c.LLM.APIKey
	if c.LLM.Endpoint != "" {
		out.Endpoint = c.LLM.Endpoint
	} else if out.Provider == llm.ProviderOllama {
		out.Endpoint = llm.DefaultOllamaEndpoint
	}
	if c.LLM.Model != "" {
		out.Model = c.LLM.Model
	}
	if c.LLM.TimeoutMs > 0 {
		out.TimeoutMs = c.LLM.TimeoutMs
	}
	out.LogCalls = c.LLM.LogCalls
	return out
}

func (c *Config) ServiceConfig() (service.Config, error) {
	loc, err := c.Location()
	if err != nil {
		return service.Config{}, err
	}
	return service.Config{
		MaxDumpChars:       c.MaxDumpChars,
		Location:           loc,
		DedupAgainstActive: c.DedupAgainstActive,
	}, nil
}

func (c *Config) TranscribeConfig() transcribe.Config {
	return transcribe.Config{
		Endpoint: c.Transcription.Endpoint,
		APIKey:   c.Transcription.APIKey,
		Model:    c.Transcription.Model,
		MaxBytes: c.MaxVoiceBytes,
	}
}
