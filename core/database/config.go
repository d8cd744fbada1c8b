package database

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DriverSQLite is the embedded file database.
	DriverSQLite = "sqlite3"
	// DriverPostgres is a PostgreSQL server.
	DriverPostgres = "postgres"
)

// Config holds relational database settings. Path is used by SQLite,
// the remaining connection fields by PostgreSQL.
type Config struct {
	Driver         string `yaml:"driver"`
	Path           string `yaml:"path" envconfig:"DB_PATH"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// Normalize fills defaults for the selected driver.
func (c *Config) Normalize() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "", "sqlite":
		c.Driver = DriverSQLite
	case "postgresql", "pg":
		c.Driver = DriverPostgres
	}
	switch c.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Path) == "" {
			c.Path = "./lessons.db"
		}
		// SQLite serialises writers.
		if c.MaxConnections <= 0 {
			c.MaxConnections = 1
		}
	case DriverPostgres:
		if c.Host == "" {
			c.Host = "localhost"
		}
		if c.Port == "" {
			c.Port = "5432"
		}
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
		if c.Name == "" {
			return fmt.Errorf("database: name is required for postgres")
		}
		if c.MaxConnections <= 0 {
			c.MaxConnections = 5
		}
	default:
		return fmt.Errorf("database: unsupported driver %q", c.Driver)
	}
	return nil
}

// DSN returns the connection string understood by the database/sql driver.
func (c Config) DSN() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf(
			"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
		)
	}
	return c.Path + "?_busy_timeout=5000&_foreign_keys=on"
}

// MigrateURL returns the URL form used by golang-migrate database drivers.
func (c Config) MigrateURL() string {
	if c.Driver == DriverPostgres {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Host + ":" + c.Port,
			Path:     "/" + c.Name,
			RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
		}
		return u.String()
	}
	return "sqlite3://" + c.Path + "?_busy_timeout=5000"
}

// Target is a log-safe description of the database location.
func (c Config) Target() string {
	if c.Driver == DriverPostgres {
		return c.Host + ":" + c.Port + "/" + c.Name
	}
	return c.Path
}
