package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/supplyadvisor/pkg/application/services/forecasting"
)

const defaultConfigPath = "config.yml"

// MustLoad resolves the config path from CONFIG_FILEPATH and CONFIG_FILENAME
// and falls back to config.yml, then to defaults when no file exists
func MustLoad() *Config {
	op := "config.MustLoad()"
	log := slog.With(
		slog.String("op", op),
	)

	configPath := fetchConfigPath()
	if configPath == "" {
		log.Warn("config path is empty. Loading default config path",
			slog.String("defaultConfigPath", defaultConfigPath))
	}

	cfg, err := LoadDefault()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadDefault is Load with the path resolved like MustLoad
func LoadDefault() (*Config, error) {
	configPath := fetchConfigPath()
	if configPath == "" {
		configPath = defaultConfigPath
	}
	return Load(configPath)
}

// MustLoadPath reads a config file that has to exist
func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}
	return cfg
}

// Load reads .env, then the YAML file when it exists, then the environment.
// Without a file the defaults and the environment are used.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
				return nil, fmt.Errorf("cannot read config %s: %w", configPath, err)
			}
			cfg.configPath = configPath
			return &cfg, cfg.Validate()
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from environment: %w", err)
	}
	cfg.configPath = configPath
	return &cfg, cfg.Validate()
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Env: "local",
		HttpServer: HttpServerConfig{
			Address: "0.0.0.0",
			Port:    "8080",
			Timeout: 30 * time.Second,
		},
		Data: DataConfig{
			Source:      "csv",
			ScenarioDir: "scenarios/bakery",
		},
		DBConfig: DBConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     "5432",
			Name:     "erp",
			User:     "user",
			Password: "password",
			Schema:   "public",
			SSLMode:  "disable",
		},
		ML: forecasting.DefaultConfig(),
		MRP: MRPConfig{
			MaxBOMDepth:  5,
			CacheEntries: 10000,
		},
		Alerts: AlertsConfig{
			MinimumStockDays: 14,
			WindowWeeks:      12,
		},
		AI: AIConfig{
			Provider:   "none",
			Model:      "openai/gpt-4o-mini",
			MaxRetries: 3,
			RetryDelay: 2 * time.Second,
			Anonymize:  true,
			Timeout:    60 * time.Second,
		},
		Audit: AuditConfig{
			MaxEntries: 10000,
		},
		configPath: defaultConfigPath,
	}
}

// Validate checks values the services cannot run with
func (cfg *Config) Validate() error {
	if err := cfg.ML.Validate(); err != nil {
		return fmt.Errorf("invalid ml config: %w", err)
	}
	switch cfg.Data.Source {
	case "csv", "db":
	default:
		return fmt.Errorf("data.source must be csv or db, got %q", cfg.Data.Source)
	}
	switch cfg.AI.Provider {
	case "none", "openrouter", "openai":
	default:
		return fmt.Errorf("ai.provider must be none, openrouter or openai, got %q", cfg.AI.Provider)
	}
	if cfg.MRP.MaxBOMDepth < 1 {
		return fmt.Errorf("mrp.max_bom_depth must be positive, got %d", cfg.MRP.MaxBOMDepth)
	}
	return nil
}

// Path returns the file the config was read from or will be written to
func (cfg *Config) Path() string {
	return cfg.configPath
}

// SetPath changes the file Write persists to
func (cfg *Config) SetPath(path string) {
	cfg.configPath = path
}

func fetchConfigPath() string {
	op := "config.fetchConfigPath()"
	log := slog.With(
		slog.String("op", op),
	)

	res := fmt.Sprintf("%s%s",
		os.Getenv("CONFIG_FILEPATH"),
		os.Getenv("CONFIG_FILENAME"))
	log.Debug(
		"load config path from env",
		slog.String("CONFIG_FILEPATH", os.Getenv("CONFIG_FILEPATH")),
		slog.String("CONFIG_FILENAME", os.Getenv("CONFIG_FILENAME")),
	)
	return res
}

func (cfg *Config) Write() error {
	bufWrite, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error config.Write() marshall: %w", err)
	}

	err = os.WriteFile(cfg.configPath, bufWrite, 0644)
	if err != nil {
		return fmt.Errorf("error config.Write() write file: %w", err)
	}
	return nil
}
