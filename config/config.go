package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the process-level settings. Engine behavior knobs that the
// contract leaves tunable live in core.Tunables and are populated from the
// same environment.
type Config struct {
	SimulationID  string
	DataDir       string
	APIPort       int
	NATSURL       string
	OpenAIKey     string
	RevealTimeout time.Duration
	SweepInterval time.Duration
	RoundInterval time.Duration
	RetryInterval time.Duration
	Seed          int64
}

func init() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set, round narration disabled")
	}
}

// Load reads the configuration from the environment, with defaults that run
// a local simulation out of the box.
func Load() Config {
	return Config{
		SimulationID:  getEnv("SIM_ID", "mainnet"),
		DataDir:       getEnv("DATA_DIR", "./data"),
		APIPort:       getEnvInt("API_PORT", 3000),
		NATSURL:       getEnv("NATS_URL", ""),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		RevealTimeout: getEnvDuration("REVEAL_TIMEOUT", 2*time.Minute),
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 15*time.Second),
		RoundInterval: getEnvDuration("ROUND_INTERVAL", 10*time.Second),
		RetryInterval: getEnvDuration("LEDGER_RETRY_INTERVAL", 5*time.Second),
		Seed:          int64(getEnvInt("SIM_SEED", 0)),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
