package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Database
	}

	Database struct {
		Driver     string // "sqlite3" or "postgres"
		Path       string // SQLite database file
		ConnString string // PostgreSQL connection string
	}
)

// DSN yields the database/sql data source for the configured driver.
func (d Database) DSN() string {
	if d.Driver == "postgres" {
		return d.ConnString
	}
	return d.Path
}

// NewConfig reads configuration from the environment, preloading a .env file
// when one exists.
func NewConfig() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("database_driver", "sqlite3")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	return &Config{
		Database: Database{
			Driver:     v.GetString("DATABASE_DRIVER"),
			Path:       v.GetString("DATABASE_PATH"),
			ConnString: v.GetString("DATABASE_DSN"),
		},
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3":
		if c.Database.Path == "" {
			return fmt.Errorf("DATABASE_PATH cannot be empty for sqlite3")
		}
	case "postgres":
		if c.Database.ConnString == "" {
			return fmt.Errorf("DATABASE_DSN is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	return nil
}
