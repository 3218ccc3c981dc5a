package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// MigratorConfig holds the batch-run settings.
type MigratorConfig struct {
	// DataDir is scanned for *.json source documents.
	DataDir string `yaml:"data_dir"`
	// FeedURLs are fetched over HTTP in addition to local documents.
	FeedURLs []string `yaml:"feed_urls"`
	// DefaultCurrency is applied to price rows without an explicit currency.
	DefaultCurrency string `yaml:"default_currency"`
	// ErrorSample caps error messages kept per category in the run report.
	ErrorSample int `yaml:"error_sample"`
	// FetchRPS limits feed downloads per second.
	FetchRPS float64 `yaml:"fetch_rps"`
}

type AppConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Migrator MigratorConfig `yaml:"migrator"`
}

// LoadConfig reads the yaml application config. Postgres settings left empty
// in the file fall back to the environment.
func LoadConfig(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := &AppConfig{}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	config.applyDefaults()
	return config, nil
}

func (c *AppConfig) applyDefaults() {
	env := GetPostgresConfig()
	if c.Postgres.Host == "" {
		c.Postgres.Host = env.Host
	}
	if c.Postgres.Port == "" {
		c.Postgres.Port = env.Port
	}
	if c.Postgres.User == "" {
		c.Postgres.User = env.User
	}
	if c.Postgres.Password == "" {
		c.Postgres.Password = env.Password
	}
	if c.Postgres.DBName == "" {
		c.Postgres.DBName = env.DBName
	}
}
