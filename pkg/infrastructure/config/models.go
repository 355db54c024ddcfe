package config

import (
	"fmt"
	"time"

	"github.com/vsinha/supplyadvisor/pkg/application/services/forecasting"
)

type Config struct {
	Env        string             `yaml:"env" env:"ENV" env-default:"local"`
	HttpServer HttpServerConfig   `yaml:"httpServer"`
	Data       DataConfig         `yaml:"data"`
	DBConfig   DBConfig           `yaml:"db"`
	ML         forecasting.Config `yaml:"ml"`
	MRP        MRPConfig          `yaml:"mrp"`
	Alerts     AlertsConfig       `yaml:"alerts"`
	AI         AIConfig           `yaml:"ai"`
	Audit      AuditConfig        `yaml:"audit"`
	configPath string
}

type HttpServerConfig struct {
	Address string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"0.0.0.0"`
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env-default:"30s"`
}

// DataConfig selects where usage, BOM and stock come from
type DataConfig struct {
	Source      string `yaml:"source" env:"DATA_SOURCE" env-default:"csv"` // csv or db
	ScenarioDir string `yaml:"scenario_dir" env:"SCENARIO_DIR" env-default:"scenarios/bakery"`
}

type DBConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"` // postgres (lib/pq) or pgx
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	Name     string `yaml:"name" env:"DB_NAME" env-default:"erp"`
	User     string `yaml:"user" env:"DB_USER" env-default:"user"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-default:"password"`
	Schema   string `yaml:"schema" env:"DB_SCHEMA" env-default:"public"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

// DSN renders the connection string understood by both lib/pq and pgx
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Schema)
}

type MRPConfig struct {
	MaxBOMDepth  int `yaml:"max_bom_depth" env-default:"5"`
	CacheEntries int `yaml:"cache_entries" env-default:"10000"`
}

type AlertsConfig struct {
	MinimumStockDays int `yaml:"minimum_stock_days" env-default:"14"`
	WindowWeeks      int `yaml:"window_weeks" env-default:"12"`
}

type AIConfig struct {
	Provider   string        `yaml:"provider" env:"AI_PROVIDER" env-default:"none"` // none, openrouter or openai
	Model      string        `yaml:"model" env:"AI_MODEL" env-default:"openai/gpt-4o-mini"`
	APIKey     string        `yaml:"api_key" env:"AI_API_KEY" env-default:""`
	BaseURL    string        `yaml:"base_url" env:"AI_BASE_URL" env-default:""`
	MaxRetries int           `yaml:"max_retries" env-default:"3"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
	Anonymize  bool          `yaml:"anonymize" env-default:"true"`
	Timeout    time.Duration `yaml:"timeout" env-default:"60s"`
}

type AuditConfig struct {
	File       string `yaml:"file" env:"AUDIT_FILE" env-default:""`
	MaxEntries int    `yaml:"max_entries" env-default:"10000"`
}
