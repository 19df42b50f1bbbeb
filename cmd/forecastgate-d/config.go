package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAddr         = "127.0.0.1:8091"
	defaultCacheTTL     = 5 * time.Minute
	defaultCooldown     = 5 * time.Second
	defaultSessionMax   = 10
	defaultCacheBackend = "memory"
)

type Config struct {
	Addr          string
	DBPath        string
	UpstreamURL   string
	UpstreamToken string
	CacheBackend  string // memory|redis
	RedisAddr     string
	CacheTTL      time.Duration
	Cooldown      time.Duration
	SessionMax    int
}

func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	defaultDBPath := filepath.Join(cwd, "forecastgate.db")

	addr := envOrDefault("FORECASTGATE_ADDR", defaultAddr)
	dbPath := envOrDefault("FORECASTGATE_DB_PATH", defaultDBPath)
	upstreamURL := os.Getenv("FORECASTGATE_UPSTREAM_URL")
	upstreamToken := os.Getenv("FORECASTGATE_UPSTREAM_TOKEN")
	cacheBackend := envOrDefault("FORECASTGATE_CACHE_BACKEND", defaultCacheBackend)
	redisAddr := os.Getenv("FORECASTGATE_REDIS_ADDR")

	cacheTTL := defaultCacheTTL
	if v := os.Getenv("FORECASTGATE_CACHE_TTL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FORECASTGATE_CACHE_TTL: %w", err)
		}
		cacheTTL = parsed
	}

	cooldown := defaultCooldown
	if v := os.Getenv("FORECASTGATE_COOLDOWN"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FORECASTGATE_COOLDOWN: %w", err)
		}
		cooldown = parsed
	}

	sessionMax := defaultSessionMax
	if v := os.Getenv("FORECASTGATE_SESSION_MAX"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("invalid FORECASTGATE_SESSION_MAX: %q", v)
		}
		sessionMax = parsed
	}

	flagSet := flag.NewFlagSet("forecastgate-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagAddr := flagSet.String("addr", addr, "HTTP listen address")
	flagDB := flagSet.String("db", dbPath, "path to SQLite journal database")
	flagUpstream := flagSet.String("upstream", upstreamURL, "upstream forecast service base URL (empty: built-in mock)")
	flagCacheBackend := flagSet.String("cache-backend", cacheBackend, "result cache backend: memory|redis")
	flagRedisAddr := flagSet.String("redis-addr", redisAddr, "redis address when cache-backend=redis")
	flagCacheTTL := flagSet.String("cache-ttl", cacheTTL.String(), "result cache TTL")
	flagCooldown := flagSet.String("cooldown", cooldown.String(), "minimum delay between generations")
	flagSessionMax := flagSet.Int("session-max", sessionMax, "max generations per session")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	cacheTTLParsed, err := time.ParseDuration(*flagCacheTTL)
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}
	cooldownParsed, err := time.ParseDuration(*flagCooldown)
	if err != nil {
		return Config{}, fmt.Errorf("invalid cooldown: %w", err)
	}

	config := Config{
		Addr:          strings.TrimSpace(*flagAddr),
		DBPath:        resolvePath(*flagDB, cwd),
		UpstreamURL:   strings.TrimSpace(*flagUpstream),
		UpstreamToken: upstreamToken,
		CacheBackend:  strings.ToLower(strings.TrimSpace(*flagCacheBackend)),
		RedisAddr:     strings.TrimSpace(*flagRedisAddr),
		CacheTTL:      cacheTTLParsed,
		Cooldown:      cooldownParsed,
		SessionMax:    *flagSessionMax,
	}

	if config.Addr == "" {
		return Config{}, errors.New("addr cannot be empty")
	}
	if config.SessionMax <= 0 {
		return Config{}, errors.New("session-max must be positive")
	}
	switch config.CacheBackend {
	case "memory":
	case "redis":
		if config.RedisAddr == "" {
			return Config{}, errors.New("cache-backend=redis requires redis-addr")
		}
	default:
		return Config{}, fmt.Errorf("unsupported cache backend: %s", config.CacheBackend)
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}
