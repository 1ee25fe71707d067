// Package config reads service configuration from the environment. A .env file
// in the working directory is loaded first when present; real environment
// variables always win.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pstrings "vendorhub/pkg/platform/strings"
)

type Config struct {
	Server        Server
	Log           Log
	Database      Database
	Redis         RedisConfig
	Events        Events
	Blob          Blob
	Notifications Notifications
	RateLimit     RateLimit
	Resilience    Resilience
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

type Log struct {
	Level string
}

// Database selects the entity store backend. An empty URL keeps every store in memory.
type Database struct {
	URL             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the vendor read cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	VendorTTL    time.Duration
}

// Events configures outbound workflow event publishing. Kafka wins over NATS
// when both are set; with neither, events only feed the notification tracker.
type Events struct {
	KafkaBrokers []string
	KafkaTopic   string
	NATSURL      string
	NATSSubject  string
	QueueSize    int
}

type Blob struct {
	Dir string
}

// Notifications points at a replacement template table; empty uses the built-in one.
type Notifications struct {
	TemplatesFile string
}

// RateLimit applies to public review submission.
type RateLimit struct {
	ReviewsPerMinute int
	ReviewBurst      int
}

type Resilience struct {
	RetryMaxAttempts   int
	BreakerEnabled     bool
	BreakerOpenTimeout time.Duration
}

// Load reads .env (if any) and then the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envString("VENDORHUB_ADDR", ":8080"),
			ShutdownTimeout: envDuration("VENDORHUB_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  envDuration("VENDORHUB_REQUEST_TIMEOUT", 30*time.Second),
		},
		Log: Log{Level: envString("LOG_LEVEL", "info")},
		Database: Database{
			URL:             envString("DATABASE_URL", ""),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          envString("REDIS_URL", ""),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", time.Second),
			VendorTTL:    envDuration("VENDOR_CACHE_TTL", 5*time.Minute),
		},
		Events: Events{
			KafkaBrokers: envList("KAFKA_BROKERS"),
			KafkaTopic:   envString("KAFKA_EVENTS_TOPIC", "vendorhub.events"),
			NATSURL:      envString("NATS_URL", ""),
			NATSSubject:  envString("NATS_EVENTS_SUBJECT", "vendorhub.events"),
			QueueSize:    envInt("EVENT_QUEUE_SIZE", 1024),
		},
		Blob:          Blob{Dir: envString("BLOB_DIR", "./data/documents")},
		Notifications: Notifications{TemplatesFile: envString("NOTIFICATION_TEMPLATES_FILE", "")},
		RateLimit: RateLimit{
			ReviewsPerMinute: envInt("REVIEW_RATE_PER_MINUTE", 10),
			ReviewBurst:      envInt("REVIEW_RATE_BURST", 5),
		},
		Resilience: Resilience{
			RetryMaxAttempts:   envInt("PUBLISH_RETRY_MAX_ATTEMPTS", 3),
			BreakerEnabled:     envBool("PUBLISH_BREAKER_ENABLED", true),
			BreakerOpenTimeout: envDuration("PUBLISH_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	return pstrings.SplitList(os.Getenv(key), ",")
}
