package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"reportai-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	UploadPrefix    string
	OutputPrefix    string
	MaxUploadBytes  int64
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	LLMProvider     string
	LLMModel        string
	LLMAPIKey       string
	LLMBaseURL      string
	LLMTimeout      time.Duration
	LLMMaxAttempts  int
	DatabaseURL     string
	Env             string
	GenerateRate    float64
	GenerateBurst   int
	QueueURL        string
	QueueBuffer     int
	WorkerCount     int
	QueueVisibility time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from .env files, an optional config file named
// by REPORTAI_CONFIG and environment variables, in increasing precedence.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	v := newViper()
	if path := strings.TrimSpace(v.GetString("reportai_config")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			telemetry.Warn("config_file_unreadable", map[string]any{"path": path, "error": err.Error()})
		}
	}
	return fromViper(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	for key, def := range defaults {
		v.SetDefault(key, def)
	}
	return v
}

var defaults = map[string]any{
	"port":               "8080",
	"cors_allow_origins": "http://localhost:3000",
	"object_store":       "local",
	"local_store_dir":    "./data",
	"upload_prefix":      "uploads",
	"output_prefix":      "outputs",
	"max_upload_bytes":   int64(10 << 20),
	"llm_provider":       "openai",
	"llm_model":          "gpt-4o-mini",
	"llm_base_url":       "https://api.openai.com/v1",
	"llm_timeout":        "60s",
	"llm_max_attempts":   2,
	"env":                "dev",
	"generate_rate":      1.0,
	"generate_burst":     5,
	"queue_buffer":       64,
	"worker_concurrency": 4,
	"queue_visibility":   "20m",
	"shutdown_timeout":   "30s",
}

func fromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("env"))
	dbURL := strings.TrimSpace(v.GetString("database_url"))
	if env == "production" && dbURL == "" {
		telemetry.Warn("config_missing_database_url", map[string]any{"env": env})
	}

	apiKey := v.GetString("llm_api_key")
	if apiKey == "" {
		apiKey = v.GetString("openai_api_key")
	}

	return Config{
		Port:            v.GetString("port"),
		CORSAllowOrigin: splitAndTrim(v.GetString("cors_allow_origins")),
		ObjectStoreType: normalizeStoreType(v.GetString("object_store")),
		LocalStoreDir:   v.GetString("local_store_dir"),
		UploadPrefix:    strings.Trim(v.GetString("upload_prefix"), "/"),
		OutputPrefix:    strings.Trim(v.GetString("output_prefix"), "/"),
		MaxUploadBytes:  v.GetInt64("max_upload_bytes"),
		AWSRegion:       v.GetString("aws_region"),
		S3Bucket:        v.GetString("s3_bucket"),
		S3Prefix:        v.GetString("s3_prefix"),
		SSEKMSKeyID:     v.GetString("sse_kms_key_id"),
		LLMProvider:     normalizeProvider(v.GetString("llm_provider"), apiKey),
		LLMModel:        v.GetString("llm_model"),
		LLMAPIKey:       apiKey,
		LLMBaseURL:      strings.TrimRight(v.GetString("llm_base_url"), "/"),
		LLMTimeout:      v.GetDuration("llm_timeout"),
		LLMMaxAttempts:  v.GetInt("llm_max_attempts"),
		DatabaseURL:     dbURL,
		Env:             env,
		GenerateRate:    v.GetFloat64("generate_rate"),
		GenerateBurst:   v.GetInt("generate_burst"),
		QueueURL:        strings.TrimSpace(v.GetString("sqs_queue_url")),
		QueueBuffer:     v.GetInt("queue_buffer"),
		WorkerCount:     v.GetInt("worker_concurrency"),
		QueueVisibility: v.GetDuration("queue_visibility"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

// normalizeProvider falls back to the placeholder analyzer when no API key
// is configured.
func normalizeProvider(raw, apiKey string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "placeholder", "none", "off":
		return "placeholder"
	default:
		if strings.TrimSpace(apiKey) == "" {
			return "placeholder"
		}
		return "openai"
	}
}
