package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom log forwarding configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// ImageConfig controls page rendering and normalization.
type ImageConfig struct {
	DPI         int // PDF rasterization density
	MaxWidth    int // normalization bounding box
	MaxHeight   int
	JPEGQuality int
}

// FragmentConfig holds process-wide tiling defaults. Call sites may
// override individual values per fragmentation call.
type FragmentConfig struct {
	TileWidth           int
	TileHeight          int
	TilesHorizontal     int
	TilesVertical       int
	OverlapRatio        float64
	ComplexityThreshold float64
}

// VolumeConfig points at the S3-backed drawing store.
type VolumeConfig struct {
	Bucket   string
	RedisURL string // job status + limiter state
}

// ProvidersConfig selects the vision engine and models.
type ProvidersConfig struct {
	Engine         string // "openai"|"anthropic"
	OpenAIModel    string
	AnthropicModel string
	SystemPrompt   string
	MaxInflight    int
	RequestTimeout time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// Config is the top-level configuration.
type Config struct {
	Logging   LoggingConfig
	Axiom     AxiomConfig
	Image     ImageConfig
	Fragment  FragmentConfig
	Volume    VolumeConfig
	Providers ProvidersConfig
	Server    ServerConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/drawprep.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_drawprep",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Image = ImageConfig{
		DPI:         parseInt(getEnv("IMAGE_DPI", "300"), 300),
		MaxWidth:    parseInt(getEnv("IMAGE_MAX_WIDTH", "2048"), 2048),
		MaxHeight:   parseInt(getEnv("IMAGE_MAX_HEIGHT", "2048"), 2048),
		JPEGQuality: parseInt(getEnv("IMAGE_JPEG_QUALITY", "90"), 90),
	}

	cfg.Fragment = FragmentConfig{
		TileWidth:           parseInt(getEnv("FRAGMENT_TILE_WIDTH", "1024"), 1024),
		TileHeight:          parseInt(getEnv("FRAGMENT_TILE_HEIGHT", "1024"), 1024),
		TilesHorizontal:     parseInt(getEnv("FRAGMENT_NUM_TILES_HORIZONTAL", "3"), 3),
		TilesVertical:       parseInt(getEnv("FRAGMENT_NUM_TILES_VERTICAL", "3"), 3),
		OverlapRatio:        parseFloat(getEnv("FRAGMENT_OVERLAP_RATIO", "0.1"), 0.1),
		ComplexityThreshold: parseFloat(getEnv("FRAGMENT_COMPLEXITY_THRESHOLD", "0.03"), 0.03),
	}

	cfg.Volume = VolumeConfig{
		Bucket:   getEnv("VOLUME_S3_BUCKET", "drawprep-files-dev"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
	}

	cfg.Providers = ProvidersConfig{
		Engine:         getEnv("VISION_ENGINE", "openai"),
		OpenAIModel:    getEnv("OPENAI_VISION_MODEL", "gpt-4o"),
		AnthropicModel: getEnv("ANTHROPIC_VISION_MODEL", "claude-3-5-sonnet"),
		SystemPrompt:   getEnv("VISION_SYSTEM_PROMPT", ""),
		MaxInflight:    parseInt(getEnv("MAX_INFLIGHT_PER_MODEL", "2"), 2),
		RequestTimeout: parseDuration(getEnv("REQUEST_TIMEOUT", "60s"), 60*time.Second),
	}

	cfg.Server = ServerConfig{
		Port: getEnv("PORT", "8080"),
	}

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}
