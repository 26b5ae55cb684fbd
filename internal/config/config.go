package config

import (
	"os"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Redis    Redis    `yaml:"redis"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	APIToken      string `yaml:"apiToken"` // bearer token for writes; empty leaves them open
}

type Database struct {
	Driver       string `yaml:"driver"` // postgres, sqlite
	Dsn          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
}

// Redis is optional; note events are only published when Addr is set.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func Default() Config {
	return Config{
		Server: Server{
			Listen: ":8000",
		},
		Database: Database{
			Driver:       DriverPostgres,
			Dsn:          "host=localhost user=postgres dbname=tagnote port=5432 sslmode=disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
	}
}

// Load reads the YAML file at path on top of Default. An empty path returns the defaults.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "open config")
	}
	defer file.Close()

	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}

	if config.Database.Driver != DriverPostgres && config.Database.Driver != DriverSQLite {
		return Config{}, errors.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	return config, nil
}
