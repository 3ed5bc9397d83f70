package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultConvertTimeout = 300 * time.Second
	DefaultSweepMaxAge    = 24 * time.Hour
	DefaultSweepInterval  = 24 * time.Hour
)

// Config holds application configuration.
type Config struct {
	Port               string
	Env                string
	CORSAllowOrigin    []string
	TempRoot           string
	TemplatePath       string
	SofficeBin         string
	ConvertTimeout     time.Duration
	SweepMaxAge        time.Duration
	SweepInterval      time.Duration
	BackgroundSweep    bool
	GenerateRatePerMin float64
	GenerateBurst      int
	ArchiveStore       string
	LocalStoreDir      string
	AWSRegion          string
	S3Bucket           string
	S3Prefix           string
	SSEKMSKeyID        string
	DatabaseURL        string
}

// Load reads configuration from environment variables with sensible defaults.
// Values from the YAML file named by CONFIG_FILE apply when the env var is unset.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	file, err := loadYAMLFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Printf("config file ignored: %v", err)
	}
	return fromSource(file)
}

func fromSource(file map[string]string) Config {
	get := func(key, def string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		if val, ok := file[key]; ok && val != "" {
			return val
		}
		return def
	}

	env := normalizeEnv(get("ENV", "dev"))
	cfg := Config{
		Port:               get("PORT", "8080"),
		Env:                env,
		CORSAllowOrigin:    splitAndTrim(get("CORS_ALLOW_ORIGINS", "http://localhost:8080")),
		TempRoot:           get("TEMP_ROOT", os.TempDir()),
		TemplatePath:       get("TEMPLATE_PATH", ""),
		SofficeBin:         get("SOFFICE_BIN", "soffice"),
		ConvertTimeout:     parseDuration(get("CONVERT_TIMEOUT", ""), DefaultConvertTimeout),
		SweepMaxAge:        parseDuration(get("SWEEP_MAX_AGE", ""), DefaultSweepMaxAge),
		SweepInterval:      parseDuration(get("SWEEP_INTERVAL", ""), DefaultSweepInterval),
		BackgroundSweep:    parseBool(get("BACKGROUND_SWEEP", ""), false),
		GenerateRatePerMin: parseFloat(get("GENERATE_RATE_PER_MIN", ""), 6),
		GenerateBurst:      parseInt(get("GENERATE_BURST", ""), 3),
		ArchiveStore:       normalizeStoreType(get("ARCHIVE_STORE", "none")),
		LocalStoreDir:      get("LOCAL_STORE_DIR", "./data"),
		AWSRegion:          get("AWS_REGION", ""),
		S3Bucket:           get("S3_BUCKET", ""),
		S3Prefix:           get("S3_PREFIX", "generated/"),
		SSEKMSKeyID:        get("SSE_KMS_KEY_ID", ""),
		DatabaseURL:        get("DATABASE_URL", ""),
	}

	if cfg.Env == "production" && cfg.ArchiveStore == "s3" && cfg.S3Bucket == "" {
		log.Printf("S3_BUCKET is required when ARCHIVE_STORE=s3")
	}
	return cfg
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
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "local":
		return "local"
	default:
		return "none"
	}
}

// parseDuration accepts Go durations ("90s", "24h") or a bare number of seconds.
func parseDuration(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return def
		}
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("config: invalid duration %q, using %s", raw, def)
		return def
	}
	return d
}

func parseInt(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

func parseFloat(raw string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return def
	}
	return v
}

func parseBool(raw string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}
