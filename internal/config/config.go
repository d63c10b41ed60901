package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	S3       S3Config       `mapstructure:"s3"`
	Survey   SurveyConfig   `mapstructure:"survey"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"` // gin mode: debug, release, test
}

// StoreConfig selects where entries and reference data live.
type StoreConfig struct {
	Driver       string `mapstructure:"driver"`  // csv, mongo, sqlite
	Backend      string `mapstructure:"backend"` // blob backend for csv + reference data: local, s3
	DataDir      string `mapstructure:"data_dir"`
	EntriesKey   string `mapstructure:"entries_key"`
	ReferenceKey string `mapstructure:"reference_key"`
}

type DatabaseConfig struct {
	URI        string `mapstructure:"uri"`
	Name       string `mapstructure:"name"`
	Collection string `mapstructure:"collection"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	Prefix          string `mapstructure:"prefix"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// SurveyConfig tunes the results view.
type SurveyConfig struct {
	StepThreshold int `mapstructure:"step_threshold"` // Low/high exercise split
	MaxStepsCap   int `mapstructure:"max_steps_cap"`  // Upper limit offered by the max-steps filter
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

const (
	DriverCSV    = "csv"
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"

	BackendLocal = "local"
	BackendS3    = "s3"
)

// LoadConfig reads configuration from file or environment variables.
// A .env file in path is loaded first when present; real environment
// variables win over it.
func LoadConfig(path string) (config Config, err error) {
	_ = godotenv.Load(filepath.Join(path, ".env"))

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("store.driver", DriverCSV)
	v.SetDefault("store.backend", BackendLocal)
	v.SetDefault("store.data_dir", "./data")
	v.SetDefault("store.entries_key", "data.csv")
	v.SetDefault("store.reference_key", "data.json")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "steps_survey")
	v.SetDefault("database.collection", "entries")
	v.SetDefault("sqlite.path", "./data/survey.db")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.prefix", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("survey.step_threshold", 6000)
	v.SetDefault("survey.max_steps_cap", 100000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		// Defaults and env vars are enough to run.
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	if err = config.Validate(); err != nil {
		return
	}
	return config, nil
}

// Validate rejects combinations the application cannot start with.
func (c Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server.mode %q (want debug, release or test)", c.Server.Mode)
	}
	switch c.Store.Driver {
	case DriverCSV, DriverMongo, DriverSQLite:
	default:
		return fmt.Errorf("unknown store.driver %q (want csv, mongo or sqlite)", c.Store.Driver)
	}
	switch c.Store.Backend {
	case BackendLocal:
	case BackendS3:
		if c.S3.BucketName == "" {
			return errors.New("s3.bucket_name is required when store.backend is s3")
		}
	default:
		return fmt.Errorf("unknown store.backend %q (want local or s3)", c.Store.Backend)
	}
	if c.Store.EntriesKey == "" {
		return errors.New("store.entries_key must not be empty")
	}
	if c.Survey.StepThreshold < 0 {
		return errors.New("survey.step_threshold must not be negative")
	}
	if c.Survey.MaxStepsCap <= 0 {
		return errors.New("survey.max_steps_cap must be positive")
	}
	return nil
}
