package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "BENCH_METRICS"

type Config struct {
	Service     *ServiceConfig     `mapstructure:"service"`
	Logging     *LoggingConfig     `mapstructure:"logging"`
	Database    *DatabaseConfig    `mapstructure:"database"`
	ObjectStore *ObjectStoreConfig `mapstructure:"object_store"`
	Kubernetes  *KubernetesConfig  `mapstructure:"kubernetes"`
	Metrics     *MetricsConfig     `mapstructure:"metrics"`
}

type ServiceConfig struct {
	Name      string `mapstructure:"name"`
	Version   string `mapstructure:"version"`
	LocalMode bool   `mapstructure:"local_mode"`
	Listen    string `mapstructure:"listen"`
	// RunsDir is where the local runtime keeps published runs.
	RunsDir string `mapstructure:"runs_dir"`
	// CORSOrigin is sent as Access-Control-Allow-Origin.
	CORSOrigin string `mapstructure:"cors_origin"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type ObjectStoreConfig struct {
	// Endpoint overrides the S3 endpoint, e.g. https://storage.googleapis.com
	// for the GCS interoperability API.
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

type KubernetesConfig struct {
	Namespace  string `mapstructure:"namespace"`
	Kubeconfig string `mapstructure:"kubeconfig"`
}

type MetricsConfig struct {
	// TextfilePath is where one-shot commands write their Prometheus metrics.
	TextfilePath string `mapstructure:"textfile_path"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"local":     "service.local_mode",
	"listen":    "service.listen",
	"runs-dir":  "service.runs_dir",
	"log-level": "logging.level",
	"namespace": "kubernetes.namespace",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "bench-metrics")
	v.SetDefault("service.version", "dev")
	v.SetDefault("service.local_mode", false)
	v.SetDefault("service.listen", ":8080")
	v.SetDefault("service.runs_dir", "runs")
	v.SetDefault("service.cors_origin", "*")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("object_store.endpoint", "https://storage.googleapis.com")
	v.SetDefault("object_store.region", "auto")
	v.SetDefault("object_store.access_key_id", "")
	v.SetDefault("object_store.secret_access_key", "")
	v.SetDefault("object_store.use_path_style", true)
	v.SetDefault("kubernetes.namespace", "default")
	v.SetDefault("kubernetes.kubeconfig", "")
	v.SetDefault("metrics.textfile_path", "")
}

// Load builds the configuration from defaults, the optional YAML file at
// path, BENCH_METRICS_* environment variables and the flags that were set,
// in increasing order of precedence.
func Load(flags *pflag.FlagSet, path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, err
				}
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.check(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) check() error {
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported logging format %q", c.Logging.Format)
	}
	if c.Service.Listen == "" {
		return errors.New("service.listen must not be empty")
	}
	return nil
}
