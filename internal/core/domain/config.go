package domain

import "time"

// ServerConfig describes one NNTP endpoint.
type ServerConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"required,min=1,max=65535"`
	UseTLS   bool
	User     string
	Password string
	Timeout  time.Duration `validate:"required"`
}

// FetchConfig describes one fetch run's scope and concurrency.
type FetchConfig struct {
	Group            string `validate:"required"`
	ChunkSize        uint64 `validate:"required"`
	Start            uint64
	BackFilledUpTo   uint64
	MaxWorkers       int `validate:"required,min=1,max=64"`
	NRetry           int `validate:"min=0"`
	MaxRequestsPerSec float64
}

// FilterConfig describes the query/NZB filter options from spec.md §6.
type FilterConfig struct {
	SubjectLike string
	NotSubject  string
	FromLike    string
	DateFrom    string
	DateTo      string
}

// NZBConfig describes NZB emission options.
type NZBConfig struct {
	RequireCompleteSets bool
	GroupByCollection   bool
	OutputPath          string `validate:"required"`
}

// StoreConfig selects and configures the Index Store backend.
type StoreConfig struct {
	Driver string `validate:"required,oneof=sqlite postgres"`
	DSN    string `validate:"required"`
}

// RedisConfig configures the optional query cache. Nil in Config disables it.
type RedisConfig struct {
	Addr     string `validate:"required"`
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig configures the optional progress-event publisher. Nil disables it.
type KafkaConfig struct {
	Brokers []string `validate:"required,min=1"`
	Topic   string   `validate:"required"`
}

// MinioConfig configures the optional object-storage NZB sink. Nil disables it.
type MinioConfig struct {
	Endpoint  string `validate:"required"`
	AccessKey string `validate:"required"`
	SecretKey string `validate:"required"`
	Bucket    string `validate:"required"`
	UseSSL    bool
}

// HTTPConfig configures the optional query/NZB HTTP API.
type HTTPConfig struct {
	Enabled bool
	Addr    string
}

// Config is the fully parsed and validated configuration surface, loaded
// from an INI or TOML file per spec.md §6.
type Config struct {
	Server ServerConfig `validate:"required"`
	Fetch  FetchConfig  `validate:"required"`
	Filter FilterConfig
	NZB    NZBConfig  `validate:"required"`
	Store  StoreConfig `validate:"required"`

	Redis *RedisConfig
	Kafka *KafkaConfig
	Minio *MinioConfig
	HTTP  HTTPConfig
}
