package config

import (
	"os"
	"strconv"
	"time"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Port          string
	StoreBackend  string
	DataDir       string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RoundDuration int // seconds
	AreaWidth     int
	AreaHeight    int
	// Location is the zone leaderboard dates are shown in.
	Location *time.Location
}

func Load() Config {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		StoreBackend:  getEnv("STORE_BACKEND", BackendFile),
		DataDir:       getEnv("DATA_DIR", "data"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RoundDuration: getEnvPositive("ROUND_DURATION", 30),
		AreaWidth:     getEnvPositive("AREA_WIDTH", 800),
		AreaHeight:    getEnvPositive("AREA_HEIGHT", 600),
		Location:      getEnvLocation("LEADERBOARD_TZ", time.Local),
	}
	switch cfg.StoreBackend {
	case BackendMemory, BackendFile, BackendRedis, BackendPostgres:
	default:
		cfg.StoreBackend = BackendFile
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvPositive(key string, fallback int) int {
	if i := getEnvInt(key, fallback); i > 0 {
		return i
	}
	return fallback
}

func getEnvLocation(key string, fallback *time.Location) *time.Location {
	if v := os.Getenv(key); v != "" {
		if loc, err := time.LoadLocation(v); err == nil {
			return loc
		}
	}
	return fallback
}
