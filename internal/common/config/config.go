package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string `yaml:"port"`
	Environment  string `yaml:"env"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`

	AllowOrigins []string `yaml:"allow_origins"`

	Export  ExportConfig  `yaml:"export"`
	Storage StorageConfig `yaml:"storage"`
}

// ExportConfig - параметры экспортера.
type ExportConfig struct {
	Precision int     `yaml:"precision"`
	Epsilon   float64 `yaml:"epsilon"`
	MaxDepth  int     `yaml:"max_depth"`
	Parallel  bool    `yaml:"parallel"`
	MaxBody   int     `yaml:"max_body_bytes"`
}

type StorageConfig struct {
	DBPath    string `yaml:"db_path"`
	CacheSize int    `yaml:"cache_size"`
}

// Load загружает конфигурацию из переменных окружения. Если задан CONFIG_PATH,
// значения из YAML-файла применяются поверх значений по умолчанию, а
// переменные окружения - поверх файла.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Defaults возвращает конфигурацию по умолчанию.
func Defaults() *Config {
	return &Config{
		Port:         "3000",
		Environment:  "development",
		ReadTimeout:  10,
		WriteTimeout: 10,
		Export: ExportConfig{
			Precision: 5,
			Epsilon:   1e-5,
			MaxDepth:  256,
			MaxBody:   8 << 20,
		},
		Storage: StorageConfig{
			DBPath:    "data/db/exports.db",
			CacheSize: 128,
		},
	}
}

// LoadFile накладывает YAML-файл на текущие значения.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Environment = getEnv("ENV", c.Environment)
	c.ReadTimeout = getEnvAsInt("READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvAsInt("WRITE_TIMEOUT", c.WriteTimeout)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowOrigins = strings.Split(origins, ",")
	}

	c.Export.Precision = getEnvAsInt("EXPORT_PRECISION", c.Export.Precision)
	c.Export.Epsilon = getEnvAsFloat("EXPORT_EPSILON", c.Export.Epsilon)
	c.Export.MaxDepth = getEnvAsInt("EXPORT_MAX_DEPTH", c.Export.MaxDepth)
	c.Export.Parallel = getEnvAsBool("EXPORT_PARALLEL", c.Export.Parallel)
	c.Export.MaxBody = getEnvAsInt("EXPORT_MAX_BODY", c.Export.MaxBody)

	c.Storage.DBPath = getEnv("EXPORT_DB_PATH", c.Storage.DBPath)
	c.Storage.CacheSize = getEnvAsInt("EXPORT_CACHE_SIZE", c.Storage.CacheSize)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}
