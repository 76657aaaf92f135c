package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tbxark/bureaubot/logging"
)

type Config struct {
	Server  ServerConfig   `yaml:"server"`
	LLM     LLMConfig      `yaml:"llm"`
	Session SessionConfig  `yaml:"session"`
	Forms   FormsConfig    `yaml:"forms"`
	Log     logging.Config `yaml:"log"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" validate:"required"`
	AllowOrigins string        `yaml:"allow_origins"`
	TurnTimeout  time.Duration `yaml:"turn_timeout" validate:"gte=0"`
}

type LLMConfig struct {
	// Provider is gemini, openai or scripted. scripted needs no network and
	// answers from Script, which is mostly useful for demos.
	Provider        string        `yaml:"provider" validate:"oneof=gemini openai scripted"`
	Model           string        `yaml:"model" validate:"required_unless=Provider scripted"`
	APIKey          string        `yaml:"api_key" validate:"required_unless=Provider scripted"`
	BaseURL         string        `yaml:"base_url" validate:"omitempty,url"`
	Temperature     float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	TopP            float32       `yaml:"top_p" validate:"gte=0,lte=1"`
	MaxOutputTokens int           `yaml:"max_output_tokens" validate:"gt=0"`
	Attempts        int           `yaml:"attempts" validate:"gte=1,lte=10"`
	Backoff         time.Duration `yaml:"backoff" validate:"gte=0"`
	Script          []string      `yaml:"script"`
}

type SessionConfig struct {
	Backend   string        `yaml:"backend" validate:"oneof=memory redis"`
	TTL       time.Duration `yaml:"ttl" validate:"gte=0"`
	RedisAddr string        `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB   int           `yaml:"redis_db" validate:"gte=0"`
	Prefix    string        `yaml:"prefix"`
}

type FormsConfig struct {
	MetadataDir    string `yaml:"metadata_dir" validate:"required"`
	ReferenceFile  string `yaml:"reference_file"`
	OutputDir      string `yaml:"output_dir" validate:"required"`
	DownloadPrefix string `yaml:"download_prefix" validate:"required"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			AllowOrigins: "*",
			TurnTimeout:  2 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:        "gemini",
			Model:           "gemini-2.5-flash",
			Temperature:     0.3,
			TopP:            0.9,
			MaxOutputTokens: 8048,
			Attempts:        3,
			Backoff:         500 * time.Millisecond,
		},
		Session: SessionConfig{
			Backend: "memory",
			TTL:     2 * time.Hour,
			Prefix:  "bureaubot",
		},
		Forms: FormsConfig{
			MetadataDir:    "metadata",
			OutputDir:      "output",
			DownloadPrefix: "/api/download/",
		},
		Log: logging.DefaultConfig(),
	}
}

// Load reads the YAML file at path over Default(), loads .env when present,
// applies environment overrides and validates the result. An empty path
// skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}
	set(&c.Server.Addr, "BUREAUBOT_ADDR")
	set(&c.LLM.Provider, "BUREAUBOT_LLM_PROVIDER")
	set(&c.LLM.Model, "BUREAUBOT_LLM_MODEL")
	set(&c.LLM.BaseURL, "BUREAUBOT_LLM_BASE_URL")
	switch c.LLM.Provider {
	case "openai":
		set(&c.LLM.APIKey, "BUREAUBOT_LLM_API_KEY", "OPENAI_API_KEY")
	default:
		set(&c.LLM.APIKey, "BUREAUBOT_LLM_API_KEY", "GEMINI_API_KEY")
	}
	set(&c.Session.Backend, "BUREAUBOT_SESSION_BACKEND")
	set(&c.Session.RedisAddr, "BUREAUBOT_REDIS_ADDR")
	if c.Session.RedisAddr != "" {
		if _, ok := lookup("BUREAUBOT_SESSION_BACKEND"); !ok {
			c.Session.Backend = "redis"
		}
	}
	set(&c.Forms.MetadataDir, "BUREAUBOT_METADATA_DIR")
	set(&c.Forms.OutputDir, "BUREAUBOT_OUTPUT_DIR")
	set(&c.Log.Level, "BUREAUBOT_LOG_LEVEL")
	set(&c.Log.File, "BUREAUBOT_LOG_FILE")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
