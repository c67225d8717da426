package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	BackendFS = "fs"
	BackendS3 = "s3"

	ThrottleShared      = "shared"
	ThrottlePerResponse = "per_response"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr" json:"listen_addr" envconfig:"LISTEN_ADDR" validate:"required"`
	MetaDSN    string `yaml:"meta_dsn" json:"meta_dsn" envconfig:"META_DSN" validate:"required"`
	LogLevel   string `yaml:"log_level" json:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=trace debug info warn error"`
	LogFormat  string `yaml:"log_format" json:"log_format" envconfig:"LOG_FORMAT" validate:"oneof=console json"`

	Blob     BlobConfig     `yaml:"blob" json:"blob" envconfig:"BLOB"`
	Throttle ThrottleConfig `yaml:"throttle" json:"throttle" envconfig:"THROTTLE"`
	Cache    CacheConfig    `yaml:"cache" json:"cache" envconfig:"CACHE"`
	GC       GCConfig       `yaml:"gc" json:"gc" envconfig:"GC"`
	Stream   StreamConfig   `yaml:"stream" json:"stream" envconfig:"STREAM"`
}

// BlobConfig выбирает, где лежат байты файлов.
type BlobConfig struct {
	Backend    string   `yaml:"backend" json:"backend" envconfig:"BACKEND" validate:"oneof=fs s3"`
	DataDir    string   `yaml:"data_dir" json:"data_dir" envconfig:"DATA_DIR" validate:"required_if=Backend fs"`
	StagingDir string   `yaml:"staging_dir" json:"staging_dir" envconfig:"STAGING_DIR"`
	S3         S3Config `yaml:"s3" json:"s3" envconfig:"S3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket" json:"bucket" envconfig:"BUCKET"`
	Prefix          string `yaml:"prefix" json:"prefix" envconfig:"PREFIX"`
	Region          string `yaml:"region" json:"region" envconfig:"REGION"`
	Endpoint        string `yaml:"endpoint" json:"endpoint" envconfig:"ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" json:"-" envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" json:"-" envconfig:"SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `yaml:"use_path_style" json:"use_path_style" envconfig:"USE_PATH_STYLE"`
}

// ThrottleConfig — ограничение скорости выдачи тела. bytes_per_second = 0 отключает его.
type ThrottleConfig struct {
	Mode           string `yaml:"mode" json:"mode" envconfig:"MODE" validate:"oneof=shared per_response"`
	BytesPerSecond int64  `yaml:"bytes_per_second" json:"bytes_per_second" envconfig:"BYTES_PER_SECOND" validate:"gte=0"`
	Burst          int    `yaml:"burst" json:"burst" envconfig:"BURST" validate:"gte=0"`
}

// CacheConfig — кеш дескрипторов; size_mb = 0 отключает кеш.
type CacheConfig struct {
	SizeMB int           `yaml:"size_mb" json:"size_mb" envconfig:"SIZE_MB" validate:"gte=0"`
	TTL    time.Duration `yaml:"ttl" json:"ttl" envconfig:"TTL" validate:"gte=0"`
}

type GCConfig struct {
	TTL      time.Duration `yaml:"ttl" json:"ttl" envconfig:"TTL" validate:"gte=0"`
	Interval time.Duration `yaml:"interval" json:"interval" envconfig:"INTERVAL" validate:"gte=0"`
}

type StreamConfig struct {
	BufferSize int `yaml:"buffer_size" json:"buffer_size" envconfig:"BUFFER_SIZE" validate:"gte=0"`
	PoolSize   int `yaml:"pool_size" json:"pool_size" envconfig:"POOL_SIZE" validate:"gte=0"`
}

// Default возвращает конфигурацию для локального запуска.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		MetaDSN:    "sqlite://./data/meta.db",
		LogLevel:   "info",
		LogFormat:  "console",
		Blob: BlobConfig{
			Backend:    BackendFS,
			DataDir:    "./data/blobs",
			StagingDir: "./data/staging",
		},
		Throttle: ThrottleConfig{
			Mode:           ThrottlePerResponse,
			BytesPerSecond: 1 << 20,
		},
		Cache: CacheConfig{
			SizeMB: 16,
			TTL:    10 * time.Minute,
		},
		GC: GCConfig{
			TTL:      time.Hour,
			Interval: 10 * time.Minute,
		},
		Stream: StreamConfig{
			BufferSize: 32 << 10,
			PoolSize:   64,
		},
	}
}

// Load читает .env, YAML-конфигурацию, применяет ENV-переопределения и возвращает актуальную структуру.
func Load() (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	return LoadFile(getenv("CONFIG_PATH", "./config.yaml"))
}

// LoadFile накладывает YAML из path и переменные окружения на значения по умолчанию.
// Отсутствующий файл не ошибка.
func LoadFile(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err = yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	// ENV override
	if err = envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("env override: %w", err)
	}

	if err = c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

var validate = validator.New()

// Validate проверяет значения после всех переопределений.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Blob.Backend == BackendS3 && c.Blob.S3.Bucket == "" {
		return fmt.Errorf("invalid config: blob.s3.bucket is required for the s3 backend")
	}

	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
