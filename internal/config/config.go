package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

type Config struct {
	Server ServerConfig
	Loader LoaderConfig
	Cache  CacheConfig
	Redis  RedisConfig
	Search SearchConfig
	Ingest IngestConfig
	Log    LogConfig
	Worker WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
	// BlobFile - локальный файл, который сервер раздаёт по Loader.BlobPath
	BlobFile string
}

// LoaderConfig описывает, откуда и как загружается DatabaseBlob
type LoaderConfig struct {
	// BaseURL - адрес источника (http://, https:// или file://), BlobPath - фиксированный путь блоба
	BaseURL        string
	BlobPath       string
	RequestTimeout time.Duration
}

type CacheConfig struct {
	Backend  string
	Dir      string
	BlobName string
	RedisKey string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type SearchConfig struct {
	PageSize           int
	NearbyDefaultLimit int
	NearbyMaxLimit     int
	MaxRadiusKm        float64
}

type IngestConfig struct {
	Source    string
	Output    string
	BatchSize int
	TopGroups int
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	Stream            string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

// Load читает .env (если он есть) и переменные окружения
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// .env необязателен: CLI и тесты работают только с окружением
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("BLOB_FILE", "./data/summits.db")

	v.SetDefault("BLOB_BASE_URL", "http://localhost:8080")
	v.SetDefault("BLOB_PATH", "/data/summits.db")
	v.SetDefault("BLOB_REQUEST_TIMEOUT", 120)

	v.SetDefault("CACHE_BACKEND", CacheBackendFile)
	v.SetDefault("CACHE_DIR", defaultCacheDir())
	v.SetDefault("CACHE_BLOB_NAME", "summits.db")
	v.SetDefault("CACHE_REDIS_KEY", "summits:blob")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SEARCH_PAGE_SIZE", 50)
	v.SetDefault("NEARBY_DEFAULT_LIMIT", 20)
	v.SetDefault("NEARBY_MAX_LIMIT", 500)
	v.SetDefault("NEARBY_MAX_RADIUS_KM", 500)

	v.SetDefault("INGEST_SOURCE", filepath.Join(os.TempDir(), "summitslist.csv"))
	v.SetDefault("INGEST_OUTPUT", "./data/summits.db")
	v.SetDefault("INGEST_BATCH_SIZE", 1000)
	v.SetDefault("INGEST_TOP_GROUPS", 10)

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("WORKER_ENABLED", false)
	v.SetDefault("WORKER_CONSUMER_GROUP", "summit-dataset-refresh")
	v.SetDefault("WORKER_STREAM", "stream:summits:dataset")
	v.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	v.SetDefault("WORKER_MAX_RETRIES", 3)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Host:     v.GetString("API_HOST"),
			Port:     v.GetInt("API_PORT"),
			Env:      v.GetString("API_ENV"),
			BlobFile: v.GetString("BLOB_FILE"),
		},
		Loader: LoaderConfig{
			BaseURL:        v.GetString("BLOB_BASE_URL"),
			BlobPath:       v.GetString("BLOB_PATH"),
			RequestTimeout: time.Duration(v.GetInt("BLOB_REQUEST_TIMEOUT")) * time.Second,
		},
		Cache: CacheConfig{
			Backend:  v.GetString("CACHE_BACKEND"),
			Dir:      v.GetString("CACHE_DIR"),
			BlobName: v.GetString("CACHE_BLOB_NAME"),
			RedisKey: v.GetString("CACHE_REDIS_KEY"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Search: SearchConfig{
			PageSize:           v.GetInt("SEARCH_PAGE_SIZE"),
			NearbyDefaultLimit: v.GetInt("NEARBY_DEFAULT_LIMIT"),
			NearbyMaxLimit:     v.GetInt("NEARBY_MAX_LIMIT"),
			MaxRadiusKm:        v.GetFloat64("NEARBY_MAX_RADIUS_KM"),
		},
		Ingest: IngestConfig{
			Source:    v.GetString("INGEST_SOURCE"),
			Output:    v.GetString("INGEST_OUTPUT"),
			BatchSize: v.GetInt("INGEST_BATCH_SIZE"),
			TopGroups: v.GetInt("INGEST_TOP_GROUPS"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			Stream:            v.GetString("WORKER_STREAM"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        v.GetInt("WORKER_MAX_RETRIES"),
		},
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "summit-locator")
	}
	return filepath.Join(os.TempDir(), "summit-locator")
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
