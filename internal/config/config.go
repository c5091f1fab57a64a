package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	HTTPPort    string
	DatabaseURL string
	AdminAPIKey string
	CORSOrigins []string

	LogLevel  string
	LogFormat string

	LoadDelay          time.Duration
	WalletConnectDelay time.Duration
	CelebrationDelay   time.Duration
	ChallengesRequired int
	ChallengeDedup     bool
	CarouselPages      int
	SwipeThreshold     float64
	WalletAddress      string
	XRPUSDRate         decimal.Decimal
	Theme              string

	JournalInterval       time.Duration
	ExportPath            string
	GoogleSheetsID        string
	GoogleCredentialsJSON string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		HTTPPort:           "8080",
		CORSOrigins:        []string{"*"},
		LogLevel:           "info",
		LogFormat:          "json",
		LoadDelay:          time.Second,
		WalletConnectDelay: 2 * time.Second,
		CelebrationDelay:   500 * time.Millisecond,
		ChallengesRequired: 3,
		ChallengeDedup:     true,
		CarouselPages:      4,
		SwipeThreshold:     75,
		WalletAddress:      "rStudentAddress123XRP",
		XRPUSDRate:         decimal.RequireFromString("0.50"),
		Theme:              "light",
		JournalInterval:    time.Minute,
	}
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return applyEnv(Defaults())
}

// configFile mirrors the YAML schema of the optional config file.
type configFile struct {
	Server struct {
		HTTPPort    string   `yaml:"http_port"`
		AdminAPIKey string   `yaml:"admin_api_key"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Simulation struct {
		LoadDelay          string  `yaml:"load_delay"`
		WalletConnectDelay string  `yaml:"wallet_connect_delay"`
		CelebrationDelay   string  `yaml:"celebration_delay"`
		ChallengesRequired int     `yaml:"challenges_required"`
		ChallengeDedup     *bool   `yaml:"challenge_dedup"`
		CarouselPages      int     `yaml:"carousel_pages"`
		SwipeThreshold     float64 `yaml:"swipe_threshold"`
		WalletAddress      string  `yaml:"wallet_address"`
		XRPUSDRate         string  `yaml:"xrp_usd_rate"`
		Theme              string  `yaml:"theme"`
	} `yaml:"simulation"`
	Journal struct {
		Interval   string `yaml:"interval"`
		ExportPath string `yaml:"export_path"`
	} `yaml:"journal"`
	Google struct {
		SheetsID        string `yaml:"sheets_id"`
		CredentialsJSON string `yaml:"credentials_json"`
	} `yaml:"google"`
}

// LoadFile resolves configuration in priority order: defaults, then the YAML file at
// path, then environment variables.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg := Defaults()
	if err := f.apply(&cfg); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return applyEnv(cfg), nil
}

func (f configFile) apply(cfg *Config) error {
	setString(&cfg.HTTPPort, f.Server.HTTPPort)
	setString(&cfg.AdminAPIKey, f.Server.AdminAPIKey)
	if len(f.Server.CORSOrigins) > 0 {
		cfg.CORSOrigins = f.Server.CORSOrigins
	}
	setString(&cfg.DatabaseURL, f.Database.URL)
	setString(&cfg.LogLevel, f.Log.Level)
	setString(&cfg.LogFormat, f.Log.Format)

	sim := f.Simulation
	for _, d := range []struct {
		dst *time.Duration
		raw string
		key string
	}{
		{&cfg.LoadDelay, sim.LoadDelay, "simulation.load_delay"},
		{&cfg.WalletConnectDelay, sim.WalletConnectDelay, "simulation.wallet_connect_delay"},
		{&cfg.CelebrationDelay, sim.CelebrationDelay, "simulation.celebration_delay"},
		{&cfg.JournalInterval, f.Journal.Interval, "journal.interval"},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.key, d.raw, err)
		}
		*d.dst = v
	}

	if sim.ChallengesRequired > 0 {
		cfg.ChallengesRequired = sim.ChallengesRequired
	}
	if sim.ChallengeDedup != nil {
		cfg.ChallengeDedup = *sim.ChallengeDedup
	}
	if sim.CarouselPages > 0 {
		cfg.CarouselPages = sim.CarouselPages
	}
	if sim.SwipeThreshold > 0 {
		cfg.SwipeThreshold = sim.SwipeThreshold
	}
	setString(&cfg.WalletAddress, sim.WalletAddress)
	if sim.XRPUSDRate != "" {
		rate, err := decimal.NewFromString(sim.XRPUSDRate)
		if err != nil {
			return fmt.Errorf("invalid simulation.xrp_usd_rate %q: %w", sim.XRPUSDRate, err)
		}
		cfg.XRPUSDRate = rate
	}
	setString(&cfg.Theme, sim.Theme)

	setString(&cfg.ExportPath, f.Journal.ExportPath)
	setString(&cfg.GoogleSheetsID, f.Google.SheetsID)
	setString(&cfg.GoogleCredentialsJSON, f.Google.CredentialsJSON)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func applyEnv(cfg Config) Config {
	cfg.HTTPPort = envOrDefault("HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseURL = envOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.AdminAPIKey = envOrDefault("ADMIN_API_KEY", cfg.AdminAPIKey)
	cfg.CORSOrigins = envOrDefaultList("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.LoadDelay = envOrDefaultDuration("LOAD_DELAY", cfg.LoadDelay)
	cfg.WalletConnectDelay = envOrDefaultDuration("WALLET_CONNECT_DELAY", cfg.WalletConnectDelay)
	cfg.CelebrationDelay = envOrDefaultDuration("CELEBRATION_DELAY", cfg.CelebrationDelay)
	cfg.ChallengesRequired = envOrDefaultInt("CHALLENGES_REQUIRED", cfg.ChallengesRequired)
	cfg.ChallengeDedup = envOrDefaultBool("CHALLENGE_DEDUP", cfg.ChallengeDedup)
	cfg.CarouselPages = envOrDefaultInt("CAROUSEL_PAGES", cfg.CarouselPages)
	cfg.SwipeThreshold = envOrDefaultFloat("SWIPE_THRESHOLD", cfg.SwipeThreshold)
	cfg.WalletAddress = envOrDefault("WALLET_ADDRESS", cfg.WalletAddress)
	cfg.XRPUSDRate = envOrDefaultDecimal("XRP_USD_RATE", cfg.XRPUSDRate)
	cfg.Theme = envOrDefault("THEME", cfg.Theme)
	cfg.JournalInterval = envOrDefaultDuration("JOURNAL_INTERVAL", cfg.JournalInterval)
	cfg.ExportPath = envOrDefault("EXPORT_PATH", cfg.ExportPath)
	cfg.GoogleSheetsID = envOrDefault("GOOGLE_SHEETS_ID", cfg.GoogleSheetsID)
	cfg.GoogleCredentialsJSON = envOrDefault("GOOGLE_CREDENTIALS_JSON", cfg.GoogleCredentialsJSON)
	return cfg
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			slog.Warn("invalid float env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return f
	}
	return defaultVal
}

func envOrDefaultBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return b
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultDecimal(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			slog.Warn("invalid decimal env var, using default", "key", key, "value", v, "default", defaultVal.String())
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
