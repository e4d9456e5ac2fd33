// Package config loads service configuration from config.yaml, .env and the
// process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
)

type Config struct {
	Http    HTTP    `yaml:"http"`
	Store   Store   `yaml:"store"`
	Model   Model   `yaml:"model"`
	Log     Log     `yaml:"log"`
	Metrics Metrics `yaml:"metrics"`
	Feed    Feed    `yaml:"feed"`
}

type HTTP struct {
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	Timeout        time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" validate:"gt=0"`
	AllowedOrigins []string      `yaml:"allowed_origins" validate:"min=1"`
}

type Store struct {
	Type    string        `yaml:"type" validate:"oneof=mongo sqlite"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	Mongo   struct {
		URI        string `yaml:"uri"`
		Database   string `yaml:"database"`
		Collection string `yaml:"collection"`
	} `yaml:"mongo"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
}

type Model struct {
	Type       string `yaml:"type" validate:"oneof=logistic_regression decision_tree"`
	Path       string `yaml:"path" validate:"required"`
	ScalerPath string `yaml:"scaler_path" validate:"required"`
}

type Log struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" validate:"oneof=json console"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"min=0"`
	MaxBackups int    `yaml:"max_backups" validate:"min=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"min=0"`
	Compress   bool   `yaml:"compress"`
}

type Metrics struct {
	Enabled bool `yaml:"enabled"`
}

type Feed struct {
	Enabled bool `yaml:"enabled"`
}

func Default() *Config {
	cfg := &Config{
		Http: HTTP{
			Port:           5001,
			Timeout:        30 * time.Second,
			MaxBodyBytes:   1 << 20,
			AllowedOrigins: []string{"*"},
		},
		Store: Store{
			Type:    StoreMongo,
			Timeout: 10 * time.Second,
		},
		Model: Model{
			Type:       "logistic_regression",
			Path:       "./models/classifier.json",
			ScalerPath: "./models/scaler.json",
		},
		Log: Log{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Metrics: Metrics{Enabled: true},
		Feed:    Feed{Enabled: true},
	}
	cfg.Store.Mongo.URI = "mongodb://localhost:27017"
	cfg.Store.Mongo.Database = "recruitmentDB"
	cfg.Store.Mongo.Collection = "predictions"
	cfg.Store.SQLite.Path = "./data/predictions.db"
	return cfg
}

// Load builds the configuration. A missing config file or .env file is not
// an error; the defaults and environment still apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		cfg.Http.Port = port
	}
	setString(&cfg.Store.Type, "STORE_TYPE")
	setString(&cfg.Store.Mongo.URI, "MONGO_URI")
	setString(&cfg.Store.Mongo.Database, "MONGO_DATABASE")
	setString(&cfg.Store.Mongo.Collection, "MONGO_COLLECTION")
	setString(&cfg.Store.SQLite.Path, "SQLITE_PATH")
	setString(&cfg.Model.Type, "MODEL_TYPE")
	setString(&cfg.Model.Path, "MODEL_PATH")
	setString(&cfg.Model.ScalerPath, "SCALER_PATH")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateStore, Store{})
	return v
}

// validateStore requires the settings of the selected backend only.
func validateStore(sl validator.StructLevel) {
	store := sl.Current().Interface().(Store)
	switch store.Type {
	case StoreMongo:
		if store.Mongo.URI == "" {
			sl.ReportError(store.Mongo.URI, "Mongo.URI", "URI", "required_if", "Type mongo")
		}
		if store.Mongo.Database == "" {
			sl.ReportError(store.Mongo.Database, "Mongo.Database", "Database", "required_if", "Type mongo")
		}
		if store.Mongo.Collection == "" {
			sl.ReportError(store.Mongo.Collection, "Mongo.Collection", "Collection", "required_if", "Type mongo")
		}
	case StoreSQLite:
		if store.SQLite.Path == "" {
			sl.ReportError(store.SQLite.Path, "SQLite.Path", "Path", "required_if", "Type sqlite")
		}
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
