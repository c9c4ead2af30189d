package sql

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SQLDatabaseConfig is one entry of database.sql. Pool settings left unset keep
// the database/sql defaults.
type SQLDatabaseConfig struct {
	Enabled         bool           `mapstructure:"enabled,omitempty"`
	Driver          string         `mapstructure:"driver"`
	URL             string         `mapstructure:"url"`
	ConnMaxLifetime *time.Duration `mapstructure:"conn_max_lifetime,omitempty"`
	ConnMaxIdleTime *time.Duration `mapstructure:"conn_max_idle_time,omitempty"`
	MaxIdleConns    *int           `mapstructure:"max_idle_conns,omitempty"`
	MaxOpenConns    *int           `mapstructure:"max_open_conns,omitempty"`
}

func (s *SQLDatabaseConfig) check() error {
	if strings.TrimSpace(s.URL) == "" {
		return fmt.Errorf("the %s database url is empty", s.Driver)
	}
	return nil
}

// redactedURL is the connection url without its password, for logging. sqlite
// file urls have no userinfo and come back unchanged.
func (s *SQLDatabaseConfig) redactedURL() string {
	parsed, err := url.Parse(s.URL)
	if err != nil {
		return s.Driver + "://<unparseable>"
	}
	if parsed.User != nil {
		parsed.User = url.User(parsed.User.Username())
	}
	return parsed.String()
}
