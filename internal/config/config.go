// Package config loads server configuration. Sources are applied in order,
// later ones overriding earlier ones: built-in defaults, an optional YAML
// file, a .env file, the process environment and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "DIJASKIDOM_"

// Config is the full server configuration.
type Config struct {
	HTTP      HTTP      `yaml:"http"`
	Database  Database  `yaml:"database"`
	Log       Log       `yaml:"log"`
	Admin     Admin     `yaml:"admin"`
	Telemetry Telemetry `yaml:"telemetry"`
	Kafka     Kafka     `yaml:"kafka"`
}

type HTTP struct {
	Addr string `yaml:"addr"`
}

// Database selects the datastore. Driver is derived from DSN when empty.
type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type Log struct {
	Path string `yaml:"path"`
}

// Admin is the account created when the database is first initialized.
type Admin struct {
	Username string `yaml:"username"`
}

// Telemetry configures OTLP trace export. An empty endpoint disables it.
type Telemetry struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
	Insecure     bool   `yaml:"insecure"`
}

// Kafka configures the transaction feed. No brokers disables it.
type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		HTTP:      HTTP{Addr: ":8080"},
		Database:  Database{DSN: "dijaskidom.sqlite3"},
		Admin:     Admin{Username: "Admin"},
		Telemetry: Telemetry{ServiceName: "dijaskidom"},
		Kafka:     Kafka{Topic: "dijaskidom.inventory.transactions"},
	}
}

// Load builds the configuration from args (without the program name), the
// .env file in the working directory and the process environment.
// It returns flag.ErrHelp when help was requested.
func Load(args []string) (*Config, error) {
	return load(args, ".env", os.LookupEnv, os.Stdout)
}

func load(args []string, envFile string, lookupEnv func(string) (string, bool), usage io.Writer) (*Config, error) {
	var f flags
	fset := f.flagSet(usage)
	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	if fset.NArg() > 0 {
		fset.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fset.Arg(0))
	}

	cfg := Default()

	var dotenv map[string]string
	if envFile != "" {
		var err error
		dotenv, err = godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}
	env := func(key string) (string, bool) {
		if v, ok := lookupEnv(EnvPrefix + key); ok {
			return v, true
		}
		v, ok := dotenv[EnvPrefix+key]
		return v, ok
	}

	path := f.configPath
	if path == "" {
		path, _ = env("CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	set := map[string]bool{}
	fset.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	f.apply(&cfg, set)

	cfg.Database.Driver = driverFor(cfg.Database)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(env func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := env(key); ok {
			*dst = v
		}
	}

	str("ADDR", &c.HTTP.Addr)
	str("DB", &c.Database.DSN)
	str("DB_DRIVER", &c.Database.Driver)
	str("LOG", &c.Log.Path)
	str("ADMIN_USER", &c.Admin.Username)
	str("OTLP_ENDPOINT", &c.Telemetry.OTLPEndpoint)
	str("SERVICE_NAME", &c.Telemetry.ServiceName)
	str("KAFKA_TOPIC", &c.Kafka.Topic)

	if v, ok := env("OTLP_INSECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sOTLP_INSECURE: %w", EnvPrefix, err)
		}
		c.Telemetry.Insecure = b
	}
	if v, ok := env("KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = splitList(v)
	}
	return nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.HTTP.Addr == "":
		return errors.New("http address is required")
	case c.Database.DSN == "":
		return errors.New("database DSN is required")
	case c.Database.Driver != DriverSQLite && c.Database.Driver != DriverPostgres:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	case c.Admin.Username == "":
		return errors.New("admin username is required")
	case len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "":
		return errors.New("kafka topic is required when brokers are set")
	}
	return nil
}

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func driverFor(d Database) string {
	if d.Driver != "" {
		return d.Driver
	}
	if strings.HasPrefix(d.DSN, "postgres://") || strings.HasPrefix(d.DSN, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
