package internal

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aspectd/aspectd/internal/domain"
	"github.com/aspectd/aspectd/internal/resolver"
	"github.com/joho/godotenv"
)

// Config carries all deployment configuration for the analysis service.
type Config struct {
	Env      string
	Port     int
	LogLevel string

	// Storage Configuration
	StorageProvider string // "s3", "local", or "none"

	// Local Storage (development)
	LocalStoragePath   string // Base directory objects are read from
	LocalStorageBucket string // Default bucket subdirectory

	// S3 Storage (production)
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string // Default bucket when requests omit one
	S3Region          string
	S3Endpoint        string // Override for R2/MinIO

	// Probe Configuration
	ProbeEnabled bool // Download object bytes and decode exact dimensions

	// Engine Configuration
	RatioPolicy domain.RatioPolicy
	Resolver    resolver.Config
}

// StorageProviderNone disables object retrieval; analyses then run on
// payload evidence only.
const StorageProviderNone = "none"

// NewConfig loads configuration from the environment.
func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		// Storage defaults to local filesystem for development
		StorageProvider:    getEnv("STORAGE_PROVIDER", "local"),
		LocalStoragePath:   getEnv("LOCAL_STORAGE_PATH", "./storage"),
		LocalStorageBucket: getEnv("LOCAL_STORAGE_BUCKET", "images"),

		// S3 configuration (production only)
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),

		ProbeEnabled: getEnvBool("PROBE_ENABLED", true),

		RatioPolicy: domain.RatioPolicy(getEnv("RATIO_POLICY", string(domain.PolicyTwoWay))),
	}

	if !cfg.RatioPolicy.IsValid() {
		return nil, fmt.Errorf("RATIO_POLICY must be %q or %q, got: %s",
			domain.PolicyTwoWay, domain.PolicyThreeWay, cfg.RatioPolicy)
	}

	switch cfg.StorageProvider {
	case "s3", "local", StorageProviderNone:
	default:
		return nil, fmt.Errorf("STORAGE_PROVIDER must be 's3', 'local' or 'none', got: %s", cfg.StorageProvider)
	}

	// Resolver tables start from the stock values; each table can be
	// overridden independently.
	cfg.Resolver = resolver.DefaultConfig()

	if v := getEnv("DEFAULT_DIMENSION", ""); v != "" {
		w, h, err := parseDimension(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_DIMENSION: %w", err)
		}
		cfg.Resolver.DefaultWidth, cfg.Resolver.DefaultHeight = w, h
	}

	if v := getEnv("SIZE_FALLBACK_DIMENSION", ""); v != "" {
		w, h, err := parseDimension(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SIZE_FALLBACK_DIMENSION: %w", err)
		}
		cfg.Resolver.SizeFallbackWidth, cfg.Resolver.SizeFallbackHeight = w, h
	}

	if v := getEnv("SIZE_BUCKETS", ""); v != "" {
		buckets, err := parseSizeBuckets(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SIZE_BUCKETS: %w", err)
		}
		cfg.Resolver.SizeBuckets = buckets
	}

	if v := getEnv("KEYWORD_RULES", ""); v != "" {
		rules, err := parseKeywordRules(v)
		if err != nil {
			return nil, fmt.Errorf("invalid KEYWORD_RULES: %w", err)
		}
		cfg.Resolver.KeywordRules = rules
	}

	return cfg, nil
}

// parseDimension parses a "WxH" string into a positive pair.
func parseDimension(s string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(strings.ToLower(s)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected WxH, got %q", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("bad width in %q", s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("bad height in %q", s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("dimension %q must be positive", s)
	}
	return w, h, nil
}

// parseSizeBuckets parses "2000000:1920x1080,1000000:1024x768,..." entries.
// Entries must be ordered by descending threshold, matching how the resolver
// evaluates them.
func parseSizeBuckets(s string) ([]resolver.SizeBucket, error) {
	var buckets []resolver.SizeBucket
	var prev int64 = -1

	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected MIN:WxH, got %q", entry)
		}

		min, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil || min < 0 {
			return nil, fmt.Errorf("bad threshold in %q", entry)
		}
		if prev >= 0 && min >= prev {
			return nil, fmt.Errorf("thresholds must descend, %d follows %d", min, prev)
		}
		prev = min

		w, h, err := parseDimension(parts[1])
		if err != nil {
			return nil, err
		}

		buckets = append(buckets, resolver.SizeBucket{MinBytes: min, Width: w, Height: h})
	}

	if len(buckets) == 0 {
		return nil, fmt.Errorf("no buckets in %q", s)
	}
	return buckets, nil
}

// parseKeywordRules parses "portrait|mobile=1080x1920,banner|header=1920x1080"
// entries. Entry order is preserved; it is the keyword tie-break.
func parseKeywordRules(s string) ([]resolver.KeywordRule, error) {
	var rules []resolver.KeywordRule

	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected KEYWORDS=WxH, got %q", entry)
		}

		var keywords []string
		for _, kw := range strings.Split(parts[0], "|") {
			kw = strings.TrimSpace(strings.ToLower(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("no keywords in %q", entry)
		}

		w, h, err := parseDimension(parts[1])
		if err != nil {
			return nil, err
		}

		rules = append(rules, resolver.KeywordRule{Keywords: keywords, Width: w, Height: h})
	}

	if len(rules) == 0 {
		return nil, fmt.Errorf("no rules in %q", s)
	}
	return rules, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
