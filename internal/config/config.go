package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/crimson-sun/bulletin/internal/engine/compactor"
)

// Version is the bulletin release string.
const Version = "0.4.0"

// Config holds all bulletin configuration.
type Config struct {
	Mode            string // "stream", "query", "admin", "schedule"
	Schedule        string // cron spec for schedule mode
	LogLevel        string
	ShutdownTimeout time.Duration
	ShowVersion     bool

	Connector ConnectorConfig
	Engine    EngineConfig
	Output    OutputConfig
	Query     QueryConfig
}

// ConnectorConfig holds connector-specific settings.
type ConnectorConfig struct {
	Provider string
	APIKey   string
	Endpoint string
	Extra    map[string]string
}

// EngineConfig holds extraction engine settings.
type EngineConfig struct {
	Verbosity      string // "minimal", "standard", "full"
	Timezone       string // zone for human-readable timestamps
	VocabularyFile string // optional bot-filter vocabulary override
	Workers        int    // 0 = GOMAXPROCS
	DedupWindow    time.Duration
	MaxBufferSize  int
}

// OutputConfig holds output destination settings.
type OutputConfig struct {
	Format       string // "stdout", "file", "webhook", "redis"
	Pretty       bool
	File         string
	WebhookURL   string
	RedisURL     string
	RedisKey     string
	RosterExport string // CSV path for shortlisted students, optional
}

// QueryConfig bounds query, admin and schedule runs.
type QueryConfig struct {
	From     time.Time
	To       time.Time
	Limit    int
	Category string
}

var (
	validModes     = []string{"stream", "query", "admin", "schedule"}
	validProviders = []string{"rest", "mongo", "postgres", "file"}
	validOutputs   = []string{"stdout", "file", "webhook", "redis"}
)

// Load reads .env (if present) and then BULLETIN_* environment variables.
// Variables already set in the environment win over .env entries.
func Load() Config {
	loadDotenv()

	provider := getenv("BULLETIN_CONNECTOR", "rest")
	return Config{
		Mode:            getenv("BULLETIN_MODE", "stream"),
		Schedule:        os.Getenv("BULLETIN_SCHEDULE"),
		LogLevel:        getenv("BULLETIN_LOG_LEVEL", "info"),
		ShutdownTimeout: getenvDuration("BULLETIN_SHUTDOWN_TIMEOUT", 10*time.Second),
		Connector: ConnectorConfig{
			Provider: provider,
			APIKey:   os.Getenv("BULLETIN_API_KEY"),
			Endpoint: endpointFor(provider),
			Extra:    loadConnectorExtra(),
		},
		Engine: EngineConfig{
			Verbosity:      getenv("BULLETIN_VERBOSITY", "standard"),
			Timezone:       getenv("BULLETIN_TIMEZONE", "Asia/Kolkata"),
			VocabularyFile: os.Getenv("BULLETIN_VOCABULARY_FILE"),
			Workers:        getenvInt("BULLETIN_WORKERS", 0),
			DedupWindow:    getenvDuration("BULLETIN_DEDUP_WINDOW", 5*time.Second),
			MaxBufferSize:  getenvInt("BULLETIN_MAX_BUFFER_SIZE", 1000),
		},
		Output: OutputConfig{
			Format:       getenv("BULLETIN_OUTPUT", "stdout"),
			Pretty:       getenvBool("BULLETIN_OUTPUT_PRETTY", false),
			File:         os.Getenv("BULLETIN_OUTPUT_FILE"),
			WebhookURL:   os.Getenv("BULLETIN_WEBHOOK_URL"),
			RedisURL:     os.Getenv("BULLETIN_REDIS_URL"),
			RedisKey:     os.Getenv("BULLETIN_REDIS_KEY"),
			RosterExport: os.Getenv("BULLETIN_ROSTER_EXPORT"),
		},
	}
}

// LoadWithFlags calls Load and applies command-line overrides from args
// (normally os.Args[1:]).
func LoadWithFlags(args []string) (Config, error) {
	cfg := Load()

	set := flag.NewFlagSet("bulletin", flag.ContinueOnError)
	set.StringVar(&cfg.Mode, "mode", cfg.Mode, "pipeline mode: stream, query, admin or schedule")
	set.StringVar(&cfg.Schedule, "schedule", cfg.Schedule, "cron spec for schedule mode")
	set.StringVar(&cfg.Connector.Provider, "connector", cfg.Connector.Provider, "notice source: rest, mongo, postgres or file")
	set.StringVar(&cfg.Connector.Endpoint, "endpoint", cfg.Connector.Endpoint, "connector endpoint, URI, DSN or path")
	set.StringVar(&cfg.Engine.Verbosity, "verbosity", cfg.Engine.Verbosity, "minimal, standard or full")
	set.StringVar(&cfg.Output.Format, "output", cfg.Output.Format, "stdout, file, webhook or redis")
	set.BoolVar(&cfg.Output.Pretty, "pretty", cfg.Output.Pretty, "indent JSON on stdout")
	set.StringVar(&cfg.Output.RosterExport, "roster-export", cfg.Output.RosterExport, "write shortlisted students to this CSV file")
	set.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	set.IntVar(&cfg.Query.Limit, "limit", 0, "maximum notices per query")
	set.StringVar(&cfg.Query.Category, "category", "", "only notices in this category")
	set.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")
	from := set.String("from", "", "query start (RFC 3339)")
	to := set.String("to", "", "query end (RFC 3339)")

	if err := set.Parse(args); err != nil {
		return cfg, err
	}

	var errs []error
	if t, err := parseTimeFlag("from", *from); err != nil {
		errs = append(errs, err)
	} else {
		cfg.Query.From = t
	}
	if t, err := parseTimeFlag("to", *to); err != nil {
		errs = append(errs, err)
	} else {
		cfg.Query.To = t
	}
	return cfg, errors.Join(errs...)
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error

	if !slices.Contains(validModes, c.Mode) {
		errs = append(errs, fmt.Errorf("invalid mode %q (want one of %s)", c.Mode, strings.Join(validModes, ", ")))
	}
	if c.Mode == "schedule" {
		if c.Schedule == "" {
			errs = append(errs, errors.New("BULLETIN_SCHEDULE is required in schedule mode"))
		} else if _, err := cron.ParseStandard(c.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("invalid schedule %q: %w", c.Schedule, err))
		}
	}

	if !slices.Contains(validProviders, c.Connector.Provider) {
		errs = append(errs, fmt.Errorf("unknown connector %q (want one of %s)", c.Connector.Provider, strings.Join(validProviders, ", ")))
	} else if c.Connector.Endpoint == "" {
		errs = append(errs, fmt.Errorf("connector %q needs an endpoint (%s)", c.Connector.Provider, endpointVar(c.Connector.Provider)))
	}

	if _, err := compactor.ParseVerbosity(c.Engine.Verbosity); err != nil {
		errs = append(errs, fmt.Errorf("invalid verbosity: %w", err))
	}
	if _, err := time.LoadLocation(c.Engine.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone %q: %w", c.Engine.Timezone, err))
	}
	if c.Engine.VocabularyFile != "" {
		if _, err := os.Stat(c.Engine.VocabularyFile); err != nil {
			errs = append(errs, fmt.Errorf("vocabulary file: %w", err))
		}
	}
	if c.Engine.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Engine.Workers))
	}
	if c.Engine.DedupWindow < 0 {
		errs = append(errs, fmt.Errorf("dedup window must be >= 0, got %v", c.Engine.DedupWindow))
	}
	if c.Engine.MaxBufferSize < 0 {
		errs = append(errs, fmt.Errorf("max buffer size must be >= 0, got %d", c.Engine.MaxBufferSize))
	}

	switch c.Output.Format {
	case "stdout":
	case "file":
		if c.Output.File == "" {
			errs = append(errs, errors.New("BULLETIN_OUTPUT_FILE is required for file output"))
		}
	case "webhook":
		if c.Output.WebhookURL == "" {
			errs = append(errs, errors.New("BULLETIN_WEBHOOK_URL is required for webhook output"))
		}
	case "redis":
		if c.Output.RedisURL == "" {
			errs = append(errs, errors.New("BULLETIN_REDIS_URL is required for redis output"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid output %q (want one of %s)", c.Output.Format, strings.Join(validOutputs, ", ")))
	}

	if !c.Query.From.IsZero() && !c.Query.To.IsZero() && c.Query.To.Before(c.Query.From) {
		errs = append(errs, errors.New("query end is before query start"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be > 0, got %v", c.ShutdownTimeout))
	}

	return errors.Join(errs...)
}

// Location resolves the configured timezone.
func (e EngineConfig) Location() (*time.Location, error) {
	return time.LoadLocation(e.Timezone)
}

func loadDotenv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "bulletin: ignoring .env: %v\n", err)
	}
}

// endpointFor picks BULLETIN_ENDPOINT, then the provider's own variable.
func endpointFor(provider string) string {
	if v := os.Getenv("BULLETIN_ENDPOINT"); v != "" {
		return v
	}
	if key := endpointVar(provider); key != "BULLETIN_ENDPOINT" {
		return os.Getenv(key)
	}
	return ""
}

func endpointVar(provider string) string {
	switch provider {
	case "mongo":
		return "BULLETIN_MONGO_URI"
	case "postgres":
		return "BULLETIN_POSTGRES_DSN"
	case "file":
		return "BULLETIN_NOTICE_FILE"
	default:
		return "BULLETIN_ENDPOINT"
	}
}

// loadConnectorExtra reads provider-specific env vars into an Extra map.
func loadConnectorExtra() map[string]string {
	vars := []struct {
		envVar   string
		extraKey string
	}{
		{"BULLETIN_POLL_INTERVAL", "poll_interval"},
		{"BULLETIN_MONGO_DATABASE", "database"},
		{"BULLETIN_MONGO_COLLECTION", "collection"},
		{"BULLETIN_POSTGRES_TABLE", "table"},
		{"BULLETIN_API_KEY_HEADER", "api_key_header"},
	}

	var m map[string]string
	for _, v := range vars {
		if val := os.Getenv(v.envVar); val != "" {
			if m == nil {
				m = make(map[string]string)
			}
			m[v.extraKey] = val
		}
	}
	return m
}

func parseTimeFlag(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("-%s: %w", name, err)
	}
	return t, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
