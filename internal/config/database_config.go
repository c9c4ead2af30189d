package config

import (
	"slices"

	"github.com/samber/lo"
)

// DatabaseConfig holds the named SQL databases. Each entry is decoded by the
// storage layer so that driver specific settings can live next to the URL.
type DatabaseConfig struct {
	SQL map[string]map[string]any `mapstructure:"sql,omitempty"`
}

// EnabledSQL returns the name and settings of the first enabled database in
// name order.
func (d *DatabaseConfig) EnabledSQL() (string, map[string]any, bool) {
	if d == nil {
		return "", nil, false
	}
	names := lo.Keys(d.SQL)
	slices.Sort(names)
	for _, name := range names {
		if enabled, _ := d.SQL[name]["enabled"].(bool); enabled {
			return name, d.SQL[name], true
		}
	}
	return "", nil, false
}
