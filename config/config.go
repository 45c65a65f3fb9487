package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // room-sync
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Hub struct {
	SubscriberBuffer int    `yaml:"subscriberBuffer"` // events buffered per subscriber
	Heartbeat        string `yaml:"heartbeat"`        // SSE comment / ws ping interval
}

type Rooms struct {
	TTL             string `yaml:"ttl"`             // purge rooms idle longer than this
	JanitorInterval string `yaml:"janitorInterval"` // how often to purge
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	Logging  Logging  `yaml:"logging"`
	Postgres Postgres `yaml:"postgres"`
	Hub      Hub      `yaml:"hub"`
	Rooms    Rooms    `yaml:"rooms"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "room-sync"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.Hub.SubscriberBuffer <= 0 {
		c.Hub.SubscriberBuffer = 16
	}
	return nil
}

func (c *Config) HeartbeatInterval() time.Duration {
	return parseDurationOr(15*time.Second, c.Hub.Heartbeat)
}

func (c *Config) RoomTTL() time.Duration {
	return parseDurationOr(24*time.Hour, c.Rooms.TTL)
}

func (c *Config) JanitorInterval() time.Duration {
	return parseDurationOr(time.Hour, c.Rooms.JanitorInterval)
}

func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
