package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is the configuration file read by Load.
const DefaultPath = "config.yaml"

// mlsOntologyPath is appended to the ontology prefix to form the MLS project
// ontology namespace.
const mlsOntologyPath = "/ontology/0807/mls/v2#"

// Config holds all configuration for the lexicon client.
// Configuration can come from a YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values.
// The value returned by Load is never mutated afterwards.
type Config struct {
	// HTTP API configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"4200"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// QueriesFile optionally points to a YAML file with Gravsearch templates
	// that replace the built-in ones with the same name.
	QueriesFile string `yaml:"queries_file" env:"QUERIES_FILE" env-default:""`

	// Knora backend connection
	Knora KnoraConfig `yaml:"knora"`
}

// KnoraConfig holds the connection parameters of the Knora/DSP API.
type KnoraConfig struct {
	Protocol       string        `yaml:"protocol" env:"KNORA_PROTOCOL" env-default:"http"`
	Host           string        `yaml:"host" env:"KNORA_HOST" env-default:"0.0.0.0"`
	Port           int           `yaml:"port" env:"KNORA_PORT" env-default:"3333"`
	OntologyPrefix string        `yaml:"ontology_prefix" env:"KNORA_ONTOLOGY_PREFIX" env-default:"http://0.0.0.0:3333"`
	Timeout        time.Duration `yaml:"timeout" env:"KNORA_TIMEOUT" env-default:"30s"`
	RetryMax       int           `yaml:"retry_max" env:"KNORA_RETRY_MAX" env-default:"3"`
}

// Load reads config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFile(DefaultPath, version)
}

// LoadFile is Load with an explicit config file path. A missing file at the
// default path is not an error; configuration then comes from the environment only.
func LoadFile(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if path == DefaultPath && !exists(path) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.Knora.validate(); err != nil {
		return nil, fmt.Errorf("invalid knora configuration: %w", err)
	}

	cfg.Knora.OntologyPrefix = strings.TrimRight(cfg.Knora.OntologyPrefix, "/")

	return cfg, nil
}

// validate rejects malformed connection settings. These are the only fatal
// configuration errors; everything else has a default.
func (k *KnoraConfig) validate() error {
	switch k.Protocol {
	case "http", "https":
	default:
		return fmt.Errorf("protocol must be http or https, got %q", k.Protocol)
	}
	if k.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if k.Port < 1 || k.Port > 65535 {
		return fmt.Errorf("port %d out of range", k.Port)
	}
	if k.OntologyPrefix == "" {
		return fmt.Errorf("ontology_prefix must not be empty")
	}
	if _, err := url.Parse(k.OntologyPrefix); err != nil {
		return fmt.Errorf("invalid ontology_prefix: %w", err)
	}
	if k.RetryMax < 0 {
		return fmt.Errorf("retry_max must not be negative")
	}
	return nil
}

// BaseURL returns the API root, e.g. http://0.0.0.0:3333.
func (k *KnoraConfig) BaseURL() string {
	return (&url.URL{
		Scheme: k.Protocol,
		Host:   net.JoinHostPort(ResolveHostForDocker(k.Host), strconv.Itoa(k.Port)),
	}).String()
}

// MLSOntologyIRI returns the namespace of the MLS project ontology, including
// the trailing '#', so property IRIs can be formed by appending a local name.
func (k *KnoraConfig) MLSOntologyIRI() string {
	return k.OntologyPrefix + mlsOntologyPath
}

// MLSOntology returns the ontology identifier (the namespace without '#').
func (k *KnoraConfig) MLSOntology() string {
	return strings.TrimSuffix(k.MLSOntologyIRI(), "#")
}

// ListenAddr returns the bind address of the HTTP API.
func (c *Config) ListenAddr() string {
	return c.BindAddr + ":" + c.Port
}

// IsLocal reports whether the process runs in the local development environment.
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}

// exists reports whether path names an existing file.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
