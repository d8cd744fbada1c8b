package app

import (
	"strings"

	corecmd "github.com/1babii1/lessonsBot/core/cmd"
	coreconfig "github.com/1babii1/lessonsBot/core/config"
	"github.com/1babii1/lessonsBot/core/database"
	"github.com/1babii1/lessonsBot/core/mongodb"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// StorageConfig selects the lesson store backend.
type StorageConfig struct {
	Backend string `yaml:"backend" envconfig:"LESSONS_BACKEND"`
}

// Config is the lessonbot configuration: the core sections plus storage.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Storage  StorageConfig   `yaml:"storage"`
	Database database.Config `yaml:"database"`
	Mongo    mongodb.Config  `yaml:"mongo"`
}

// CoreConfig implements cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads the optional YAML file at path, overlays the environment
// and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadCarrier adapts LoadConfig to cmd.Options.
func LoadCarrier(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStorageConfig loads the configuration without requiring the Telegram
// sections. Used by maintenance commands.
func LoadStorageConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.normalizeStorage(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the core sections and fills storage defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	return c.normalizeStorage()
}

// normalizeStorage checks only the storage sections, for commands that do
// not talk to Telegram.
func (c *Config) normalizeStorage() error {
	backend := strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch backend {
	case "", "sqlite3":
		backend = BackendSQLite
	case "postgresql", "pg":
		backend = BackendPostgres
	case "mongodb":
		backend = BackendMongo
	}
	c.Storage.Backend = backend

	switch backend {
	case BackendSQLite:
		c.Database.Driver = database.DriverSQLite
	case BackendPostgres:
		c.Database.Driver = database.DriverPostgres
	case BackendMongo:
		c.Mongo.Normalize()
		return nil
	default:
		return &coreconfig.Error{Key: "storage.backend", Reason: "allowed: sqlite, postgres, mongo; got " + c.Storage.Backend}
	}
	if err := c.Database.Normalize(); err != nil {
		return &coreconfig.Error{Key: "database", Reason: "invalid settings", Err: err}
	}
	return nil
}
