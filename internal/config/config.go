package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string
	Port string
}

type RedisCache struct {
	Host     string
	Port     string
	Password string
}

// Enabled is false when no host is configured; the service then runs
// without a catalog cache and keeps issued room ids in memory.
func (r RedisCache) Enabled() bool {
	return r.Host != ""
}

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (p Postgres) Enabled() bool {
	return p.Host != ""
}

type Catalog struct {
	APIKey   string
	BaseURL  string
	Language string
	Region   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type WebSocket struct {
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	SendBuffer   int
	UserHeader   string
}

type Rooms struct {
	IDRetries int
}

type GRPC struct {
	HealthPort string
}

func (g GRPC) Enabled() bool {
	return g.HealthPort != ""
}

type Config struct {
	HTTP     HTTPServer
	Redis    RedisCache
	Postgres Postgres
	Catalog  Catalog
	WS       WebSocket
	Rooms    Rooms
	GRPC     GRPC
	LogLevel string
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	return FromEnv()
}

// FromEnv builds the config from the current environment only.
func FromEnv() *Config {
	cfg := &Config{
		HTTP:     *newHTTP(),
		Redis:    *newRedis(),
		Postgres: *newPostgres(),
		Catalog:  *newCatalog(),
		WS:       *newWebSocket(),
		Rooms:    *newRooms(),
		GRPC:     *newGRPC(),
		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	log.Printf("%s redis enabled : %t, postgres enabled : %t, grpc health enabled : %t",
		logtag, cfg.Redis.Enabled(), cfg.Postgres.Enabled(), cfg.GRPC.Enabled())
	return cfg
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "8080"),
		Host: getenv("HTTP_HOST", "localhost"),
	}
}

func newRedis() *RedisCache {
	return &RedisCache{
		Port:     getenv("REDIS_PORT", "6379"),
		Host:     getenv("REDIS_HOST", ""),
		Password: getsecret("REDIS_PASSWORD", ""),
	}
}

func newPostgres() *Postgres {
	return &Postgres{
		Host:     getenv("DB_HOST", ""),
		Port:     getenv("DB_PORT", "5432"),
		User:     getenv("DB_USER", "admin"),
		Password: getsecret("DB_PASSWORD", "shared"),
		DBName:   getenv("DB_NAME", "picker"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}
}

func newCatalog() *Catalog {
	return &Catalog{
		APIKey:   getsecret("TMDB_API_KEY", ""),
		BaseURL:  getenv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		Language: getenv("TMDB_LANGUAGE", "en-US"),
		Region:   getenv("TMDB_REGION", "PL"),
		Timeout:  getduration("CATALOG_TIMEOUT", 5*time.Second),
		CacheTTL: getduration("CATALOG_CACHE_TTL", 10*time.Minute),
	}
}

func newWebSocket() *WebSocket {
	return &WebSocket{
		PingInterval: getduration("WS_PING_INTERVAL", 5*time.Second),
		PongWait:     getduration("WS_PONG_WAIT", 10*time.Second),
		WriteWait:    getduration("WS_WRITE_WAIT", 5*time.Second),
		SendBuffer:   getint("WS_SEND_BUFFER", 16),
		UserHeader:   getenv("WS_USER_HEADER", "user-id"),
	}
}

func newRooms() *Rooms {
	return &Rooms{
		IDRetries: getint("ROOM_ID_RETRIES", 3),
	}
}

func newGRPC() *GRPC {
	return &GRPC{
		HealthPort: getenv("GRPC_HEALTH_PORT", ""),
	}
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	fmt.Printf("%s %s = %s\n", logtag, key, val)
	return val
}

func getsecret(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined\n", logtag, key)
		return defaultValue
	}
	fmt.Printf("%s %s = ***\n", logtag, key)
	return val
}

func getint(key string, defaultValue int) int {
	raw := getenv(key, strconv.Itoa(defaultValue))
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("%s %s malformed (%q). Using default value %d", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return val
}

func getduration(key string, defaultValue time.Duration) time.Duration {
	raw := getenv(key, defaultValue.String())
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("%s %s malformed (%q). Using default value %s", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return val
}
