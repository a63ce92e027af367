package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration
	CORSOrigin      string

	DatabasePath string

	// Text generation
	LLMURL     string // OpenAI-compatible endpoint, e.g. "http://localhost:11434"
	LLMModel   string
	LLMAPIKey  string
	LLMTimeout time.Duration

	// Speech-to-text; audio answers are disabled when STTURL is empty
	STTURL     string
	STTModel   string
	STTAPIKey  string
	STTTimeout time.Duration

	JWTSecret string
	JWTIssuer string

	DefaultQuestions int
	MaxQuestions     int
}

// Load reads the server configuration. Missing required keys are fatal.
func Load() *Config {
	cfg := LoadShared()
	cfg.ServerAddress = mustGetenv("SERVER_ADDRESS")
	cfg.ShutdownTimeout = mustGetDuration("SHUTDOWN_TIMEOUT")
	cfg.CORSOrigin = getenvDefault("CORS_ORIGIN", "http://localhost:5174")
	cfg.JWTSecret = mustGetenv("JWT_SECRET")
	return cfg
}

// LoadShared reads the keys the server and the operator CLI have in common.
// Nothing here is required.
func LoadShared() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()
	return &Config{
		DatabasePath:     getenvDefault("DATABASE_PATH", "interviews.db"),
		LLMURL:           getenvDefault("LLM_URL", "http://localhost:11434"),
		LLMModel:         getenvDefault("LLM_MODEL", "qwen2.5:14b-instruct"),
		LLMAPIKey:        os.Getenv("LLM_API_KEY"),
		LLMTimeout:       getDuration("LLM_TIMEOUT", 60*time.Second),
		STTURL:           os.Getenv("STT_URL"),
		STTModel:         getenvDefault("STT_MODEL", "whisper-large-v3"),
		STTAPIKey:        os.Getenv("STT_API_KEY"),
		STTTimeout:       getDuration("STT_TIMEOUT", 60*time.Second),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTIssuer:        os.Getenv("JWT_ISSUER"),
		DefaultQuestions: getInt("DEFAULT_NUM_QUESTIONS", 5),
		MaxQuestions:     getInt("MAX_NUM_QUESTIONS", 20),
	}
}

func mustGetenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	return v
}

func mustGetDuration(k string) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getDuration(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Fatalf("config: %s=%q is not a positive integer", k, v)
	}
	return n
}
