// Package ini implements the driven.ConfigStore port by loading the INI file
// described in spec.md §6, mirroring the section layout of the original
// Python ConfigParser config (servers, fetch, filters, nzb, store) plus the
// optional domain-stack sections (redis, kafka, minio, http).
package ini

import (
	"fmt"
	"strings"
	"time"

	goini "github.com/go-ini/ini"
	"github.com/go-playground/validator/v10"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore loads and validates Config from an INI file.
type ConfigStore struct {
	validate *validator.Validate
}

// NewConfigStore creates an INI-backed ConfigStore.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{validate: validator.New()}
}

// Load parses path and returns a validated Config. Any missing required
// field or out-of-range value surfaces as domain.ErrConfig.
func (s *ConfigStore) Load(path string) (*domain.Config, error) {
	file, err := goini.LoadSources(goini.LoadOptions{AllowBooleanKeys: true}, path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrConfig, path, err)
	}

	cfg := &domain.Config{
		Server: loadServerConfig(file),
		Fetch:  loadFetchConfig(file),
		Filter: loadFilterConfig(file),
		NZB:    loadNZBConfig(file),
		Store:  loadStoreConfig(file),
		HTTP:   loadHTTPConfig(file),
	}
	cfg.Redis = loadRedisConfig(file)
	cfg.Kafka = loadKafkaConfig(file)
	cfg.Minio = loadMinioConfig(file)

	if err := s.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}
	return cfg, nil
}

func loadServerConfig(file *goini.File) domain.ServerConfig {
	sec := file.Section("servers")
	timeoutSec := sec.Key("timeout").MustInt(60)
	return domain.ServerConfig{
		Host:     sec.Key("host").String(),
		Port:     sec.Key("port").MustInt(563),
		UseTLS:   sec.Key("use_tls").MustBool(true),
		User:     sec.Key("user").String(),
		Password: sec.Key("password").String(),
		Timeout:  time.Duration(timeoutSec) * time.Second,
	}
}

func loadFetchConfig(file *goini.File) domain.FetchConfig {
	sec := file.Section("fetch")
	return domain.FetchConfig{
		Group:             sec.Key("group").String(),
		ChunkSize:         sec.Key("chunk_size").MustUint64(500),
		Start:             sec.Key("start").MustUint64(0),
		BackFilledUpTo:    sec.Key("back_filled_up_to").MustUint64(0),
		MaxWorkers:        sec.Key("max_workers").MustInt(4),
		NRetry:            sec.Key("n_retry").MustInt(3),
		MaxRequestsPerSec: sec.Key("max_requests_per_sec").MustFloat64(0),
	}
}

func loadFilterConfig(file *goini.File) domain.FilterConfig {
	if !file.HasSection("filters") {
		return domain.FilterConfig{}
	}
	sec := file.Section("filters")
	return domain.FilterConfig{
		SubjectLike: sec.Key("subject_like").String(),
		NotSubject:  sec.Key("not_subject").String(),
		FromLike:    sec.Key("from_like").String(),
		DateFrom:    sec.Key("date_from").String(),
		DateTo:      sec.Key("date_to").String(),
	}
}

func loadNZBConfig(file *goini.File) domain.NZBConfig {
	sec := file.Section("nzb")
	return domain.NZBConfig{
		RequireCompleteSets: sec.Key("require_complete_sets").MustBool(true),
		GroupByCollection:   sec.Key("group_by_collection").MustBool(false),
		OutputPath:          sec.Key("output_path").MustString("./nzb"),
	}
}

func loadStoreConfig(file *goini.File) domain.StoreConfig {
	sec := file.Section("store")
	return domain.StoreConfig{
		Driver: sec.Key("driver").MustString("sqlite"),
		DSN:    sec.Key("dsn").String(),
	}
}

func loadHTTPConfig(file *goini.File) domain.HTTPConfig {
	if !file.HasSection("http") {
		return domain.HTTPConfig{}
	}
	sec := file.Section("http")
	return domain.HTTPConfig{
		Enabled: sec.Key("enabled").MustBool(false),
		Addr:    sec.Key("addr").MustString(":8080"),
	}
}

func loadRedisConfig(file *goini.File) *domain.RedisConfig {
	if !file.HasSection("redis") {
		return nil
	}
	sec := file.Section("redis")
	ttlSec := sec.Key("ttl_seconds").MustInt(60)
	return &domain.RedisConfig{
		Addr:     sec.Key("addr").String(),
		Password: sec.Key("password").String(),
		DB:       sec.Key("db").MustInt(0),
		TTL:      time.Duration(ttlSec) * time.Second,
	}
}

func loadKafkaConfig(file *goini.File) *domain.KafkaConfig {
	if !file.HasSection("kafka") {
		return nil
	}
	sec := file.Section("kafka")
	brokers := strings.Split(sec.Key("brokers").String(), ",")
	for i, b := range brokers {
		brokers[i] = strings.TrimSpace(b)
	}
	return &domain.KafkaConfig{
		Brokers: brokers,
		Topic:   sec.Key("topic").String(),
	}
}

func loadMinioConfig(file *goini.File) *domain.MinioConfig {
	if !file.HasSection("minio") {
		return nil
	}
	sec := file.Section("minio")
	return &domain.MinioConfig{
		Endpoint:  sec.Key("endpoint").String(),
		AccessKey: sec.Key("access_key").String(),
		SecretKey: sec.Key("secret_key").String(),
		Bucket:    sec.Key("bucket").String(),
		UseSSL:    sec.Key("use_ssl").MustBool(true),
	}
}

// LoadSchedulerConfig reads the optional [scheduler] section and one
// [group.<name>] subsection per recurring fetch task, for the serve
// daemon's scheduler. Absent [scheduler] disables the daemon entirely.
func LoadSchedulerConfig(path string) (domain.SchedulerConfig, error) {
	file, err := goini.LoadSources(goini.LoadOptions{AllowBooleanKeys: true}, path)
	if err != nil {
		return domain.SchedulerConfig{}, fmt.Errorf("%w: reading %s: %v", domain.ErrConfig, path, err)
	}

	cfg := domain.SchedulerConfig{TaskConfigs: make(map[string]domain.TaskConfig)}
	if !file.HasSection("scheduler") {
		return cfg, nil
	}
	cfg.Enabled = file.Section("scheduler").Key("enabled").MustBool(false)

	for _, sec := range file.Sections() {
		group, ok := strings.CutPrefix(sec.Name(), "group.")
		if !ok {
			continue
		}
		intervalSec := sec.Key("interval_seconds").MustInt(3600)
		taskCfg := domain.TaskConfig{
			Group:    group,
			Enabled:  sec.Key("enabled").MustBool(true),
			Interval: time.Duration(intervalSec) * time.Second,
		}
		cfg.TaskConfigs[domain.TaskID(group)] = taskCfg
	}
	return cfg, nil
}
