package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Banks struct {
		// Source is "embedded", "dir" or "postgres".
		Source string `yaml:"source"`
		Dir    string `yaml:"dir"`
		TTL    string `yaml:"ttl"`
	} `yaml:"banks"`
	Session struct {
		Budget int    `yaml:"budget"`
		Tick   string `yaml:"tick"`
	} `yaml:"session"`
	SMTP struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		User string `yaml:"user"`
		Pass string `yaml:"pass"`
		From string `yaml:"from"`
	} `yaml:"smtp"`
}

// Bank sources.
const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourcePostgres = "postgres"
)

// DefaultSessionTTL is how long an idle session is kept when redis.ttl is unset.
const DefaultSessionTTL = 2 * time.Hour

// Default is the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Banks.Source = SourceEmbedded
	cfg.Banks.TTL = "10m"
	cfg.Session.Budget = 3600
	cfg.Session.Tick = "1s"
	return cfg
}

// Load reads YAML config from path over the defaults. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if cfg.Banks.Source == "" {
		cfg.Banks.Source = SourceEmbedded
	}
	switch cfg.Banks.Source {
	case SourceEmbedded, SourceDir, SourcePostgres:
	default:
		return cfg, errors.Errorf("unknown banks.source %q", cfg.Banks.Source)
	}
	if cfg.Banks.Source == SourceDir && cfg.Banks.Dir == "" {
		return cfg, errors.New("banks.dir is required when banks.source is dir")
	}
	if cfg.Banks.Source == SourcePostgres && cfg.Postgres.URL == "" {
		return cfg, errors.New("postgres.url is required when banks.source is postgres")
	}
	if cfg.Session.Budget <= 0 {
		return cfg, errors.Errorf("session.budget must be positive, got %d", cfg.Session.Budget)
	}
	if ttl, budget := cfg.SessionTTL(), time.Duration(cfg.Session.Budget)*time.Second; ttl <= budget {
		return cfg, errors.Errorf("redis.ttl %v must exceed session.budget %v or sessions expire mid-test", ttl, budget)
	}
	return cfg, nil
}

// SessionTTL is how long a session outlives its last change in the store.
func (c Config) SessionTTL() time.Duration {
	return TTLDuration(c.Redis.TTL, DefaultSessionTTL)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
