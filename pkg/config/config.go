package config

import (
	"os"
	"strconv"

	"github.com/athapong/ldbc-dense/pkg/graph"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by every command
type Config struct {
	InputDir       string      `yaml:"input_dir"`
	OutputDir      string      `yaml:"output_dir"`
	ScaleFactor    string      `yaml:"scale_factor"`
	HashIDs        bool        `yaml:"hash_ids"`
	HashSeed       uint64      `yaml:"hash_seed"`
	MaxHashRetries int         `yaml:"max_hash_retries"`
	Workers        int         `yaml:"workers"`
	LogLevel       string      `yaml:"log_level"`
	MetricsFile    string      `yaml:"metrics_file"`
	Neo4j          Neo4jConfig `yaml:"neo4j"`
}

// Neo4jConfig configures the optional graph database loader
type Neo4jConfig struct {
	URI       string `yaml:"uri"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	BatchSize int    `yaml:"batch_size"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ScaleFactor:    "0.1",
		MaxHashRetries: graph.DefaultMaxHashRetries,
		Workers:        1,
		LogLevel:       "info",
		Neo4j: Neo4jConfig{
			URI:       "bolt://localhost:7687",
			Username:  "neo4j",
			BatchSize: 10000,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path, if any
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// LoadEnvFile loads variables from an env file. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return errors.Wrapf(godotenv.Load(path), "load env file %s", path)
}

// ApplyEnv overrides settings from LDBC_* and NEO4J_* environment variables
func (c *Config) ApplyEnv() error {
	setString(&c.InputDir, "LDBC_INPUT_DIR")
	setString(&c.OutputDir, "LDBC_OUTPUT_DIR")
	setString(&c.ScaleFactor, "LDBC_SCALE_FACTOR")
	setString(&c.LogLevel, "LDBC_LOG_LEVEL")
	setString(&c.MetricsFile, "LDBC_METRICS_FILE")
	setString(&c.Neo4j.URI, "NEO4J_URI")
	setString(&c.Neo4j.Username, "NEO4J_USERNAME")
	setString(&c.Neo4j.Password, "NEO4J_PASSWORD")

	if v := os.Getenv("LDBC_HASH_IDS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "LDBC_HASH_IDS")
		}
		c.HashIDs = b
	}
	if v := os.Getenv("LDBC_HASH_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "LDBC_HASH_SEED")
		}
		c.HashSeed = n
	}
	for name, dst := range map[string]*int{
		"LDBC_WORKERS":          &c.Workers,
		"LDBC_MAX_HASH_RETRIES": &c.MaxHashRetries,
		"NEO4J_BATCH_SIZE":      &c.Neo4j.BatchSize,
	} {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrap(err, name)
			}
			*dst = n
		}
	}
	return nil
}

func setString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

// RegistryConfig builds the dense id registry settings
func (c *Config) RegistryConfig() (graph.RegistryConfig, error) {
	rc, err := graph.RegistryConfigForScaleFactor(c.ScaleFactor, c.HashIDs)
	if err != nil {
		return graph.RegistryConfig{}, err
	}
	rc.Seed = c.HashSeed
	if c.MaxHashRetries > 0 {
		rc.MaxHashRetries = c.MaxHashRetries
	}
	return rc, nil
}

// RequireDirs checks that input and output directories are configured
func (c *Config) RequireDirs() error {
	if c.InputDir == "" {
		return errors.New("input directory must be specified")
	}
	if c.OutputDir == "" {
		return errors.New("output directory must be specified")
	}
	return nil
}
