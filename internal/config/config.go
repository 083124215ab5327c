package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config aggregates every setting the service consumes.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Sim     SimConfig
	Scoring ScoringConfig
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

// StoreConfig selects the session store backend.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string
	// DSN is only read by the sqlite backend.
	DSN string
}

// SimConfig holds every constant the market loop consumes. The loop never
// re-derives these; they are fixed parameters.
type SimConfig struct {
	TickInterval     time.Duration `toml:"-"`
	TickMillis       int           `toml:"tick_millis"`
	InitialNetWorth  float64       `toml:"initial_net_worth"`
	SalesBaseline    float64       `toml:"sales_baseline"`
	HistoryLimit     int           `toml:"history_limit"`
	SalesFloor       float64       `toml:"sales_floor"`
	RegimeThreshold  float64       `toml:"regime_threshold"`
	ProfitRate       float64       `toml:"profit_rate"`
	FlatVolatility   float64       `toml:"flat_volatility"`
	FlatDrift        float64       `toml:"flat_drift"`
	ActiveVolatility float64       `toml:"active_volatility"`
	ActiveDrift      float64       `toml:"active_drift"`
	PhaseDuration    int           `toml:"phase_duration_seconds"`
}

// PhaseOptimum is the optimal answer set one phase is scored against.
type PhaseOptimum struct {
	NumPeople     float64 `toml:"num_people"`
	Confidence    float64 `toml:"confidence"`
	CostPerPerson float64 `toml:"cost_per_person"`
	AdultDiameter float64 `toml:"adult_diameter"`
	AdultHeight   float64 `toml:"adult_height"`
	Equity        float64 `toml:"equity"`
	Valuation     float64 `toml:"valuation"`
	ErrorMargin   float64 `toml:"error_margin"`
}

// ScoringConfig carries the per-phase optima.
type ScoringConfig struct {
	Phase1 PhaseOptimum `toml:"phase1"`
	Phase2 PhaseOptimum `toml:"phase2"`
	Phase3 PhaseOptimum `toml:"phase3"`
}

// fileConfig is the shape of the optional TOML file.
type fileConfig struct {
	Sim     SimConfig     `toml:"sim"`
	Scoring ScoringConfig `toml:"scoring"`
}

// Load assembles configuration from defaults, the optional TOML file named
// by TORC_CONFIG, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server:  server,
		Store:   store,
		Sim:     defaultSimConfig(),
		Scoring: defaultScoringConfig(),
	}

	if path := strings.TrimSpace(os.Getenv("TORC_CONFIG")); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if override, err := parseOptionalIntEnv("TORC_TICK_MILLIS"); err != nil {
		return nil, err
	} else if override != nil {
		cfg.Sim.TickMillis = *override
	}

	if cfg.Sim.TickMillis <= 0 {
		return nil, fmt.Errorf("tick interval must be positive, got %dms", cfg.Sim.TickMillis)
	}
	if cfg.Sim.HistoryLimit < 1 {
		return nil, fmt.Errorf("history limit must be at least 1, got %d", cfg.Sim.HistoryLimit)
	}
	cfg.Sim.TickInterval = time.Duration(cfg.Sim.TickMillis) * time.Millisecond

	return cfg, nil
}

func defaultSimConfig() SimConfig {
	return SimConfig{
		TickMillis:       1000,
		InitialNetWorth:  10000,
		SalesBaseline:    1000,
		HistoryLimit:     50,
		SalesFloor:       10,
		RegimeThreshold:  0.5,
		ProfitRate:       0.02,
		FlatVolatility:   0.0005,
		FlatDrift:        0,
		ActiveVolatility: 0.03,
		ActiveDrift:      0.005,
		PhaseDuration:    180,
	}
}

func defaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Phase1: PhaseOptimum{
			NumPeople:     30,
			Confidence:    95,
			CostPerPerson: 100,
			AdultDiameter: 10.4,
			AdultHeight:   0.164,
			ErrorMargin:   0.01,
		},
		Phase2: PhaseOptimum{Equity: 20, Valuation: 500000, ErrorMargin: 0.01},
		Phase3: PhaseOptimum{Equity: 15, Valuation: 1000000, ErrorMargin: 0.01},
	}
}

func applyFile(cfg *Config, path string) error {
	file := fileConfig{Sim: cfg.Sim, Scoring: cfg.Scoring}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("load config file %s: %w", path, err)
	}
	cfg.Sim = file.Sim
	cfg.Scoring = file.Scoring
	return nil
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3001"
	}

	if strings.Contains(port, ":") {
		// Allow ":3001" or "127.0.0.1:3001" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

func loadStoreConfig() (StoreConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("TORC_STORE", "memory"))
	switch backend {
	case "memory", "sqlite":
	default:
		return StoreConfig{}, fmt.Errorf("unknown TORC_STORE value %q (want memory or sqlite)", backend)
	}

	return StoreConfig{
		Backend: backend,
		DSN:     getEnvOrDefault("TORC_SQLITE_DSN", "file:torc?mode=memory&cache=shared"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
