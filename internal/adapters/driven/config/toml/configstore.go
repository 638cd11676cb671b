// Package toml implements the driven.ConfigStore port by loading a TOML
// file with the same section layout as the INI config (servers, fetch,
// filters, nzb, store) plus the optional domain-stack sections (redis,
// kafka, minio, http, scheduler), for operators who prefer a TOML config
// file over the default INI one.
package toml

import (
	"fmt"
	"os"
	"strings"
	"time"

	tomllib "github.com/pelletier/go-toml/v2"
	"github.com/go-playground/validator/v10"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore loads and validates Config from a TOML file.
type ConfigStore struct {
	validate *validator.Validate
}

// NewConfigStore creates a TOML-backed ConfigStore.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{validate: validator.New()}
}

type serversDoc struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	UseTLS         bool   `toml:"use_tls"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type fetchDoc struct {
	Group             string  `toml:"group"`
	ChunkSize         uint64  `toml:"chunk_size"`
	Start             uint64  `toml:"start"`
	BackFilledUpTo    uint64  `toml:"back_filled_up_to"`
	MaxWorkers        int     `toml:"max_workers"`
	NRetry            int     `toml:"n_retry"`
	MaxRequestsPerSec float64 `toml:"max_requests_per_sec"`
}

type filtersDoc struct {
	SubjectLike string `toml:"subject_like"`
	NotSubject  string `toml:"not_subject"`
	FromLike    string `toml:"from_like"`
	DateFrom    string `toml:"date_from"`
	DateTo      string `toml:"date_to"`
}

type nzbDoc struct {
	RequireCompleteSets bool   `toml:"require_complete_sets"`
	GroupByCollection   bool   `toml:"group_by_collection"`
	OutputPath          string `toml:"output_path"`
}

type storeDoc struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

type httpDoc struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type redisDoc struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

type kafkaDoc struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

type minioDoc struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

type groupDoc struct {
	Enabled        bool `toml:"enabled"`
	IntervalSeconds int `toml:"interval_seconds"`
}

type schedulerDoc struct {
	Enabled bool                `toml:"enabled"`
	Groups  map[string]groupDoc `toml:"groups"`
}

// configDoc mirrors the INI config's section layout as a TOML document.
type configDoc struct {
	Servers   serversDoc    `toml:"servers"`
	Fetch     fetchDoc      `toml:"fetch"`
	Filters   filtersDoc    `toml:"filters"`
	NZB       nzbDoc        `toml:"nzb"`
	Store     storeDoc      `toml:"store"`
	HTTP      httpDoc       `toml:"http"`
	Redis     *redisDoc     `toml:"redis"`
	Kafka     *kafkaDoc     `toml:"kafka"`
	Minio     *minioDoc     `toml:"minio"`
	Scheduler *schedulerDoc `toml:"scheduler"`
}

// Load parses path and returns a validated Config. Any missing required
// field or out-of-range value surfaces as domain.ErrConfig.
func (s *ConfigStore) Load(path string) (*domain.Config, error) {
	doc, err := readDoc(path)
	if err != nil {
		return nil, err
	}

	cfg := &domain.Config{
		Server: domain.ServerConfig{
			Host:     doc.Servers.Host,
			Port:     orDefault(doc.Servers.Port, 563),
			UseTLS:   doc.Servers.UseTLS,
			User:     doc.Servers.User,
			Password: doc.Servers.Password,
			Timeout:  time.Duration(orDefault(doc.Servers.TimeoutSeconds, 60)) * time.Second,
		},
		Fetch: domain.FetchConfig{
			Group:             doc.Fetch.Group,
			ChunkSize:         orDefaultU64(doc.Fetch.ChunkSize, 500),
			Start:             doc.Fetch.Start,
			BackFilledUpTo:    doc.Fetch.BackFilledUpTo,
			MaxWorkers:        orDefault(doc.Fetch.MaxWorkers, 4),
			NRetry:            doc.Fetch.NRetry,
			MaxRequestsPerSec: doc.Fetch.MaxRequestsPerSec,
		},
		Filter: domain.FilterConfig{
			SubjectLike: doc.Filters.SubjectLike,
			NotSubject:  doc.Filters.NotSubject,
			FromLike:    doc.Filters.FromLike,
			DateFrom:    doc.Filters.DateFrom,
			DateTo:      doc.Filters.DateTo,
		},
		NZB: domain.NZBConfig{
			RequireCompleteSets: doc.NZB.RequireCompleteSets,
			GroupByCollection:   doc.NZB.GroupByCollection,
			OutputPath:          orDefaultStr(doc.NZB.OutputPath, "./nzb"),
		},
		Store: domain.StoreConfig{
			Driver: orDefaultStr(doc.Store.Driver, "sqlite"),
			DSN:    doc.Store.DSN,
		},
		HTTP: domain.HTTPConfig{
			Enabled: doc.HTTP.Enabled,
			Addr:    orDefaultStr(doc.HTTP.Addr, ":8080"),
		},
	}

	if doc.Redis != nil {
		cfg.Redis = &domain.RedisConfig{
			Addr:     doc.Redis.Addr,
			Password: doc.Redis.Password,
			DB:       doc.Redis.DB,
			TTL:      time.Duration(orDefault(doc.Redis.TTLSeconds, 60)) * time.Second,
		}
	}
	if doc.Kafka != nil {
		cfg.Kafka = &domain.KafkaConfig{Brokers: doc.Kafka.Brokers, Topic: doc.Kafka.Topic}
	}
	if doc.Minio != nil {
		cfg.Minio = &domain.MinioConfig{
			Endpoint:  doc.Minio.Endpoint,
			AccessKey: doc.Minio.AccessKey,
			SecretKey: doc.Minio.SecretKey,
			Bucket:    doc.Minio.Bucket,
			UseSSL:    doc.Minio.UseSSL,
		}
	}

	if err := s.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}
	return cfg, nil
}

// LoadSchedulerConfig reads the optional [scheduler] table and its nested
// [scheduler.groups.<name>] subtables, mirroring ini.LoadSchedulerConfig
// for operators using a TOML config file with the serve daemon.
func LoadSchedulerConfig(path string) (domain.SchedulerConfig, error) {
	doc, err := readDoc(path)
	if err != nil {
		return domain.SchedulerConfig{}, err
	}

	cfg := domain.SchedulerConfig{TaskConfigs: make(map[string]domain.TaskConfig)}
	if doc.Scheduler == nil {
		return cfg, nil
	}
	cfg.Enabled = doc.Scheduler.Enabled

	for group, g := range doc.Scheduler.Groups {
		cfg.TaskConfigs[domain.TaskID(group)] = domain.TaskConfig{
			Group:    group,
			Enabled:  g.Enabled,
			Interval: time.Duration(orDefault(g.IntervalSeconds, 3600)) * time.Second,
		}
	}
	return cfg, nil
}

func readDoc(path string) (*configDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrConfig, path, err)
	}
	var doc configDoc
	if err := tomllib.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrConfig, path, err)
	}
	return &doc, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultU64(v, def uint64) uint64 {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultStr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
