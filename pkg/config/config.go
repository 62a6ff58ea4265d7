package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentTest        = "test"
	EnvironmentProduction  = "production"
)

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/catalog.yaml"
	dotenvFileENV     = "DOTENV_FILE"
	defaultDotenvFile = ".env"
)

type Config struct {
	DatabaseBusyTimeout time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseDebug       bool          `koanf:"database_debug"`
	DatabaseFilePath    string        `koanf:"database_file_path" required:"true"`
	Environment         string        `koanf:"environment" default:"development"`
	ServerHost          string        `koanf:"server_host" default:"0.0.0.0"`
	ServerPort          int           `koanf:"server_port" default:"3000"`
	WriteRateBurst      int           `koanf:"write_rate_burst" default:"20"`
	WriteRateLimit      float64       `koanf:"write_rate_limit" default:"5"`

	Hostname string `koanf:"-"`
}

// New loads the config from defaults, then the YAML file pointed at by
// CONFIG_FILE (if it exists), then environment variables. Variables in the
// dotenv file pointed at by DOTENV_FILE (default .env) are added to the
// environment first without overriding ones already set.
func New() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", configFile)
		}
	}

	dotenvFile := os.Getenv(dotenvFileENV)
	if dotenvFile == "" {
		dotenvFile = defaultDotenvFile
	}
	if _, err := os.Stat(dotenvFile); err == nil {
		if err := godotenv.Load(dotenvFile); err != nil {
			return nil, errors.Wrapf(err, "failed to load dotenv file %s", dotenvFile)
		}
	}

	keys := configKeys()
	err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := keys[key]; !ok {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := validateRequired(cfg); err != nil {
		return nil, err
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cfg.Hostname = hostname

	return cfg, nil
}

// NewForTest returns a config pointing at an in-memory database.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.DatabaseFilePath = ":memory:"
	cfg.Environment = EnvironmentTest
	cfg.ServerHost = "127.0.0.1"
	cfg.WriteRateLimit = 0
	return cfg
}

// IsDevelopment reports whether error details may be shown to clients.
func (cfg *Config) IsDevelopment() bool {
	return cfg.Environment == EnvironmentDevelopment
}

func configKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("koanf")
		if tag == "" || tag == "-" {
			continue
		}
		keys[tag] = struct{}{}
	}
	return keys
}

func validateRequired(cfg *Config) error {
	var missing []string

	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("required") != "true" {
			continue
		}
		if !v.Field(i).IsZero() {
			continue
		}
		key := toSnakeCase(field.Name)
		missing = append(missing, strings.ToUpper(key)+" (env) or "+key+" (config file)")
	}

	if len(missing) > 0 {
		return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
