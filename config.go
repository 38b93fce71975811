package main

import (
	"crypto/tls"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"start-page/domain"
	"start-page/weather"
)

type config struct {
	StorageConn    string
	TodosTable     string
	ShortcutsTable string
	DashboardID    string

	RedisConn string
	CacheTTL  time.Duration

	Weather         weather.Config
	WeatherInterval time.Duration
	Timezone        string

	AuthDisabled  bool
	Auth0Domain   string
	Auth0Audience string
	LocalAuthMode string
	LocalSecret   string
	Owner         string

	Port  string
	Debug bool
}

// loadConfig reads the environment through getenv.
func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{
		StorageConn:    getenv("STORAGE_CONNECTION_STRING"),
		TodosTable:     envOr(getenv, "TODOS_TABLE", "todos"),
		ShortcutsTable: envOr(getenv, "SHORTCUTS_TABLE", "shortcuts"),
		DashboardID:    envOr(getenv, "DASHBOARD_ID", "default"),
		RedisConn:      getenv("REDIS_CONNECTION_STRING"),
		Timezone:       envOr(getenv, "CLOCK_TIMEZONE", domain.DefaultTimezone),
		Auth0Domain:    getenv("AUTH0_DOMAIN"),
		Auth0Audience:  getenv("AUTH0_AUDIENCE"),
		LocalAuthMode:  strings.ToLower(getenv("LOCAL_AUTH_MODE")),
		LocalSecret:    getenv("LOCAL_AUTH_SHARED_SECRET"),
		Owner:          getenv("DASHBOARD_OWNER"),
		Port:           envOr(getenv, "PORT", "8080"),
	}
	if cfg.StorageConn == "" {
		return config{}, fmt.Errorf("missing STORAGE_CONNECTION_STRING")
	}

	var err error
	if cfg.CacheTTL, err = envDuration(getenv, "CACHE_TTL", 5*time.Minute); err != nil {
		return config{}, err
	}
	if cfg.WeatherInterval, err = envDuration(getenv, "WEATHER_REFRESH_INTERVAL", 0); err != nil {
		return config{}, err
	}
	cfg.Weather = weather.Config{
		APIKey:  getenv("OPENWEATHER_API_KEY"),
		BaseURL: envOr(getenv, "WEATHER_BASE_URL", weather.DefaultBaseURL),
	}
	if cfg.Weather.Timeout, err = envDuration(getenv, "WEATHER_TIMEOUT", 10*time.Second); err != nil {
		return config{}, err
	}
	if cfg.Weather.Latitude, err = envFloat(getenv, "WEATHER_LAT", weather.DefaultLatitude); err != nil {
		return config{}, err
	}
	if cfg.Weather.Longitude, err = envFloat(getenv, "WEATHER_LON", weather.DefaultLongitude); err != nil {
		return config{}, err
	}
	if cfg.AuthDisabled, err = envBool(getenv, "AUTH_DISABLED"); err != nil {
		return config{}, err
	}
	if cfg.Debug, err = envBool(getenv, "DEBUG"); err != nil {
		return config{}, err
	}

	if !cfg.AuthDisabled {
		switch cfg.LocalAuthMode {
		case "":
			if cfg.Auth0Domain == "" || cfg.Auth0Audience == "" {
				return config{}, fmt.Errorf("missing Auth0 config")
			}
		case "hs256":
			if cfg.LocalSecret == "" {
				return config{}, fmt.Errorf("LOCAL_AUTH_SHARED_SECRET must be set when LOCAL_AUTH_MODE=hs256")
			}
		default:
			return config{}, fmt.Errorf("unsupported LOCAL_AUTH_MODE value %q", cfg.LocalAuthMode)
		}
	}
	return cfg, nil
}

func envOr(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func envFloat(getenv func(string) string, key string, def float64) (float64, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func envBool(getenv func(string) string, key string) (bool, error) {
	v := getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// redisOptions accepts a redis:// URL or the "host:port,password=..,ssl=true"
// form of managed Redis connection strings.
func redisOptions(conn string) *redis.Options {
	opts, err := redis.ParseURL(conn)
	if err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(kv[1], "true") {
				opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			}
		}
	}
	return opts
}
