package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in inference.provider.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderGemini      = "gemini"
)

type Config struct {
	Server struct {
		Port           int               `yaml:"port"`
		AllowedOrigins []string          `yaml:"allowedOrigins"`
		APIKeys        map[string]string `yaml:"apiKeys"` // tenant -> key; empty disables auth
		MaxUploadMB    int64             `yaml:"maxUploadMB"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | text
	} `yaml:"log"`

	Inference struct {
		Provider       string `yaml:"provider"`
		APIKey         string `yaml:"apiKey"`
		BaseURL        string `yaml:"baseURL"`
		Model          string `yaml:"model"`
		VisionModel    string `yaml:"visionModel"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"inference"`

	Imaging struct {
		Enabled      bool `yaml:"enabled"`
		MaxDimension int  `yaml:"maxDimension"`
	} `yaml:"imaging"`

	// Recorder selects where interactions are stored: "", mysql, postgres or mongo.
	Recorder struct {
		Driver string `yaml:"driver"`
	} `yaml:"recorder"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Model defaults per provider. Only Hugging Face has a separate visual QA
// model; the chat providers read images with their text model.
var (
	defaultModels = map[string]string{
		ProviderHuggingFace: "mistralai/Mistral-7B-Instruct-v0.2",
		ProviderOpenAI:      "gpt-4o-mini",
		ProviderGemini:      "gemini-1.5-flash",
	}
	defaultVisionModels = map[string]string{
		ProviderHuggingFace: "dandelin/vilt-b32-finetuned-vqa",
	}
	defaultDBPorts = map[string]int{
		"mysql":    3306,
		"postgres": 5432,
	}
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := base()
	c.applyDefaults()
	return c
}

// base holds the defaults that do not depend on provider or driver.
func base() *Config {
	var c Config
	c.Server.Port = 8080
	c.Server.AllowedOrigins = []string{"*"}
	c.Server.MaxUploadMB = 10
	c.Log.Level = "info"
	c.Log.Format = "json"
	c.Inference.Provider = ProviderHuggingFace
	c.Inference.TimeoutSeconds = 120
	c.Imaging.Enabled = true
	c.Imaging.MaxDimension = 2000
	c.Database.SSLMode = "disable"
	c.Mongo.Database = "datalens"
	c.Minio.BucketName = "datalens-images"
	return &c
}

// applyDefaults fills values that depend on the chosen provider and
// recorder driver, after file and environment are read.
func (c *Config) applyDefaults() {
	if c.Inference.Model == "" {
		c.Inference.Model = defaultModels[c.Inference.Provider]
	}
	if c.Inference.VisionModel == "" {
		c.Inference.VisionModel = defaultVisionModels[c.Inference.Provider]
	}
	if c.Database.Port == 0 {
		c.Database.Port = defaultDBPorts[c.Recorder.Driver]
		if c.Database.Port == 0 {
			c.Database.Port = defaultDBPorts["mysql"]
		}
	}
}

// Load baca file config (optional), lalu .env dan environment variables.
// Environment values win over the file.
func Load(path string) (*Config, error) {
	cfg := base()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	// .env is for local development only; a missing file is fine
	_ = godotenv.Load()

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvInt("PORT", c.Server.Port)
	if v := getEnv("ALLOWED_ORIGINS", ""); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Inference.Provider = strings.ToLower(getEnv("INFERENCE_PROVIDER", c.Inference.Provider))
	c.Inference.BaseURL = getEnv("INFERENCE_BASE_URL", c.Inference.BaseURL)
	c.Inference.Model = getEnv("INFERENCE_MODEL", c.Inference.Model)
	c.Inference.VisionModel = getEnv("INFERENCE_VISION_MODEL", c.Inference.VisionModel)
	c.Inference.TimeoutSeconds = getEnvInt("INFERENCE_TIMEOUT_SECONDS", c.Inference.TimeoutSeconds)
	c.Inference.APIKey = getEnv("INFERENCE_API_KEY", c.Inference.APIKey)
	if c.Inference.APIKey == "" {
		c.Inference.APIKey = getEnv(providerKeyEnv[c.Inference.Provider], "")
	}

	c.Imaging.Enabled = getEnvBool("ENABLE_IMAGE_PREPROCESSING", c.Imaging.Enabled)
	c.Imaging.MaxDimension = getEnvInt("MAX_IMAGE_DIMENSION", c.Imaging.MaxDimension)

	c.Recorder.Driver = strings.ToLower(getEnv("RECORDER_DRIVER", c.Recorder.Driver))
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGO_DB_NAME", c.Mongo.Database)

	c.Minio.Enabled = getEnvBool("MINIO_ENABLED", c.Minio.Enabled)
	c.Minio.Endpoint = getEnv("MINIO_ENDPOINT", c.Minio.Endpoint)
	c.Minio.AccessKey = getEnv("MINIO_ACCESS_KEY", c.Minio.AccessKey)
	c.Minio.SecretKey = getEnv("MINIO_SECRET_KEY", c.Minio.SecretKey)
}

var providerKeyEnv = map[string]string{
	ProviderHuggingFace: "HUGGINGFACE_API_KEY",
	ProviderOpenAI:      "OPENAI_API_KEY",
	ProviderGemini:      "GEMINI_API_KEY",
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if _, ok := providerKeyEnv[c.Inference.Provider]; !ok {
		return fmt.Errorf("unsupported inference provider: %s (supported: huggingface, openai, gemini)", c.Inference.Provider)
	}
	if c.Inference.Model == "" {
		return fmt.Errorf("inference.model is required")
	}
	switch c.Recorder.Driver {
	case "", "mysql", "postgres", "mongo":
	default:
		return fmt.Errorf("unsupported recorder driver: %s (supported: mysql, postgres, mongo)", c.Recorder.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// InferenceTimeout returns the HTTP timeout for backend calls.
func (c *Config) InferenceTimeout() time.Duration {
	return time.Duration(c.Inference.TimeoutSeconds) * time.Second
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
