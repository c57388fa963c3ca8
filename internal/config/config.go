// Package config carga la configuración del servicio desde YAML con
// overrides por variables de entorno.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"env"`
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns int `yaml:"max_open_conns"`
			MinIdleConns int `yaml:"min_idle_conns"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		Issuer     string `yaml:"issuer"`
		Audience   string `yaml:"audience"`
		KeyPath    string `yaml:"key_path"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"rate"`

	Events struct {
		Enabled bool   `yaml:"enabled"`
		Channel string `yaml:"channel"`
	} `yaml:"events"`

	Admin struct {
		Role string `yaml:"role"`
	} `yaml:"admin"`
}

// Load lee el YAML, aplica defaults y overrides de entorno, y valida.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "gatekeeper"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.MaxOpenConns == 0 {
		c.Storage.Postgres.MaxOpenConns = 10
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "gk:"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "http://localhost:8080"
	}
	if c.JWT.Audience == "" {
		c.JWT.Audience = "gatekeeper"
	}
	if c.JWT.KeyPath == "" {
		c.JWT.KeyPath = "./data/signing.key"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "720h" // 30d
	}
	if c.Events.Channel == "" {
		c.Events.Channel = "gatekeeper.events"
	}
	if c.Admin.Role == "" {
		c.Admin.Role = "admin"
	}

	c.applyEnvOverrides()

	// validate string durations
	for name, v := range map[string]string{
		"jwt.access_ttl":           c.JWT.AccessTTL,
		"jwt.refresh_ttl":          c.JWT.RefreshTTL,
		"cache.memory.default_ttl": c.Cache.Memory.DefaultTTL,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("config: %s: %w", name, err)
		}
	}

	switch c.Storage.Driver {
	case "postgres":
		if c.Storage.DSN == "" {
			return nil, fmt.Errorf("config: storage.dsn es requerido con driver postgres")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("config: storage.driver desconocido %q", c.Storage.Driver)
	}

	return &c, nil
}

// AccessTTL parsea jwt.access_ttl (ya validado en Load).
func (c *Config) AccessTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWT.AccessTTL)
	return d
}

// RefreshTTL parsea jwt.refresh_ttl (ya validado en Load).
func (c *Config) RefreshTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWT.RefreshTTL)
	return d
}

// MemoryCacheTTL parsea cache.memory.default_ttl (ya validado en Load).
func (c *Config) MemoryCacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Cache.Memory.DefaultTTL)
	return d
}

// applyEnvOverrides pisa valores del YAML con el entorno. Los secretos
// (DSN, password de redis) normalmente llegan por acá, no por el archivo.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.App.Env = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("CACHE_KIND"); v != "" {
		c.Cache.Kind = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		c.JWT.Issuer = v
	}
	if v := os.Getenv("JWT_AUDIENCE"); v != "" {
		c.JWT.Audience = v
	}
	if v := os.Getenv("JWT_KEY_PATH"); v != "" {
		c.JWT.KeyPath = v
	}
	if v := os.Getenv("JWT_ACCESS_TTL"); v != "" {
		c.JWT.AccessTTL = v
	}
	if v := os.Getenv("JWT_REFRESH_TTL"); v != "" {
		c.JWT.RefreshTTL = v
	}
	if v := os.Getenv("RATE_ENABLED"); v != "" {
		c.Rate.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("EVENTS_ENABLED"); v != "" {
		c.Events.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
}

func getEnvInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
