package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Speech    SpeechConfig
	Extractor ExtractorConfig
	Pipeline  PipelineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	Enabled     bool
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	PublicURL       string
	Enabled         bool
}

// SpeechConfig holds speech recognition backend configuration
type SpeechConfig struct {
	SubscriptionKey string
	Region          string
	Language        string
	RequestTimeout  time.Duration
}

// ExtractorConfig holds source extraction tool configuration
type ExtractorConfig struct {
	Binary      string
	FFmpeg      string
	FFprobe     string
	WorkDir     string
	ProbeExpiry time.Duration
}

// PipelineConfig holds tunable constants for the chunking pipeline.
// Defaults were tuned against Chinese-language content; treat them as
// starting points, not truths.
type PipelineConfig struct {
	ChunkTargetSec        float64
	OverlapSec            float64
	SnapWindowSec         float64
	MinHeadroomSec        float64
	MinChunkSec           float64
	SilenceNoiseDB        float64
	SilenceMinDurationSec float64
	RecognitionCeiling    time.Duration
	RecognitionGrace      time.Duration
	WordDedupWindowTicks  int64
	RegressionTolTicks    int64
	RegressionShiftTicks  int64
	ContainmentRatio      float64
	PrefixRatio           float64
	CleanedPrefixRatio    float64
	SentencePauseSec      float64
	PhrasePauseSec        float64
	MaxPreviewSec         float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "interp_practice"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			Enabled:     getEnvAsBool("DB_ENABLED", true),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "interp-transcripts"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
			PublicURL:       getEnv("STORAGE_PUBLIC_URL", ""),
			Enabled:         getEnvAsBool("STORAGE_ENABLED", false),
		},
		Speech: SpeechConfig{
			SubscriptionKey: getEnv("AZURE_SPEECH_KEY", ""),
			Region:          getEnv("AZURE_SPEECH_REGION", "eastasia"),
			Language:        getEnv("SPEECH_LANGUAGE", "zh-CN"),
			RequestTimeout:  getEnvAsDuration("SPEECH_REQUEST_TIMEOUT", "60s"),
		},
		Extractor: ExtractorConfig{
			Binary:      getEnv("YTDLP_BINARY", "yt-dlp"),
			FFmpeg:      getEnv("FFMPEG_BINARY", "ffmpeg"),
			FFprobe:     getEnv("FFPROBE_BINARY", "ffprobe"),
			WorkDir:     getEnv("EXTRACTOR_WORKDIR", os.TempDir()),
			ProbeExpiry: getEnvAsDuration("EXTRACTOR_PROBE_TIMEOUT", "30s"),
		},
		Pipeline: PipelineConfig{
			ChunkTargetSec:        getEnvAsFloat("CHUNK_TARGET_SEC", 55),
			OverlapSec:            getEnvAsFloat("CHUNK_OVERLAP_SEC", 1.0),
			SnapWindowSec:         getEnvAsFloat("CHUNK_SNAP_WINDOW_SEC", 4),
			MinHeadroomSec:        getEnvAsFloat("CHUNK_MIN_HEADROOM_SEC", 30),
			MinChunkSec:           getEnvAsFloat("CHUNK_MIN_SEC", 5),
			SilenceNoiseDB:        getEnvAsFloat("SILENCE_NOISE_DB", -35),
			SilenceMinDurationSec: getEnvAsFloat("SILENCE_MIN_DURATION_SEC", 0.6),
			RecognitionCeiling:    getEnvAsDuration("RECOGNITION_CEILING", "60s"),
			RecognitionGrace:      getEnvAsDuration("RECOGNITION_GRACE", "2s"),
			WordDedupWindowTicks:  int64(getEnvAsInt("WORD_DEDUP_WINDOW_TICKS", 500_000)),
			RegressionTolTicks:    int64(getEnvAsInt("REGRESSION_TOLERANCE_TICKS", 300_000)),
			RegressionShiftTicks:  int64(getEnvAsInt("REGRESSION_SHIFT_TICKS", 50_000)),
			ContainmentRatio:      getEnvAsFloat("DEDUP_CONTAINMENT_RATIO", 0.7),
			PrefixRatio:           getEnvAsFloat("DEDUP_PREFIX_RATIO", 0.8),
			CleanedPrefixRatio:    getEnvAsFloat("DEDUP_CLEANED_PREFIX_RATIO", 0.9),
			SentencePauseSec:      getEnvAsFloat("SENTENCE_PAUSE_SEC", 0.7),
			PhrasePauseSec:        getEnvAsFloat("PHRASE_PAUSE_SEC", 0.3),
			MaxPreviewSec:         getEnvAsFloat("MAX_PREVIEW_SEC", 0),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Speech.SubscriptionKey == "" && c.Server.Environment == "production" {
		return fmt.Errorf("AZURE_SPEECH_KEY is required in production")
	}
	if c.Pipeline.ChunkTargetSec <= c.Pipeline.MinChunkSec {
		return fmt.Errorf("CHUNK_TARGET_SEC must be greater than CHUNK_MIN_SEC")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetSpeechEndpoint returns the regional speech recognition endpoint
func (c *Config) GetSpeechEndpoint() string {
	return fmt.Sprintf("https://%s.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1", c.Speech.Region)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
