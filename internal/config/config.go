package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by the application container.
const (
	StorageSurreal = "surreal"
	StorageMemory  = "memory"
)

// Provider exposes read access to the application configuration. Components
// depend on this interface rather than on the concrete Config so tests can
// hand in their own values.
type Provider interface {
	GetServerAddr() string
	GetStorageDriver() string

	GetDBURL() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration

	GetLLMProvider() string
	GetLLMBaseURL() string
	GetLLMAPIKey() string
	GetLLMModel() string
	GetAITimeout() time.Duration
	GetAIHistoryLimit() int

	GetRoomsRequireRegistration() bool
	GetWSPingInterval() time.Duration
	GetWSWriteTimeout() time.Duration
	GetWSMaxMessageSize() int64
	GetWSSendBuffer() int

	GetAPIToken() string
	GetCharactersDir() string
}

// Config holds all configuration for the application.
type Config struct {
	ServerAddr    string
	StorageDriver string

	DBUrl            string
	DBNs             string
	DBDb             string
	DBUser           string
	DBPass           string
	DBQueryTimeout   time.Duration
	DBExecuteTimeout time.Duration

	LLMProvider    string
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	AITimeout      time.Duration
	AIHistoryLimit int

	RoomsRequireRegistration bool
	WSPingInterval           time.Duration
	WSWriteTimeout           time.Duration
	WSMaxMessageSize         int64
	WSSendBuffer             int

	APIToken      string
	CharactersDir string
}

var _ Provider = (*Config)(nil)

// New loads configuration from a .env file (when present) and the process
// environment. It exits the process when the selected storage driver is
// missing required settings.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := Load()
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load reads configuration from the environment without touching .env files.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageSurreal)),

		DBUrl:            os.Getenv("SURREAL_URL"),
		DBUser:           os.Getenv("SURREAL_USER"),
		DBPass:           os.Getenv("SURREAL_PASS"),
		DBNs:             os.Getenv("SURREAL_NS"),
		DBDb:             os.Getenv("SURREAL_DB"),
		DBQueryTimeout:   getDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		DBExecuteTimeout: getDuration("DB_EXECUTE_TIMEOUT", 10*time.Second),

		LLMProvider:    strings.ToLower(getEnv("LLM_PROVIDER", "template")),
		LLMBaseURL:     os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMModel:       os.Getenv("LLM_MODEL"),
		AITimeout:      getDuration("AI_TIMEOUT", 60*time.Second),
		AIHistoryLimit: getInt("AI_HISTORY_LIMIT", 10),

		RoomsRequireRegistration: getBool("ROOMS_REQUIRE_REGISTRATION", true),
		WSPingInterval:           getDuration("WS_PING_INTERVAL", 30*time.Second),
		WSWriteTimeout:           getDuration("WS_WRITE_TIMEOUT", 10*time.Second),
		WSMaxMessageSize:         int64(getInt("WS_MAX_MESSAGE_SIZE", 64*1024)),
		WSSendBuffer:             getInt("WS_SEND_BUFFER", 256),

		APIToken:      os.Getenv("API_TOKEN"),
		CharactersDir: os.Getenv("CHARACTERS_DIR"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations of settings that cannot work together.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StorageSurreal:
		if c.DBUrl == "" || c.DBNs == "" || c.DBDb == "" {
			return &Error{Msg: "required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set"}
		}
	default:
		return &Error{Msg: "unknown STORAGE_DRIVER " + strconv.Quote(c.StorageDriver)}
	}
	if c.AIHistoryLimit <= 0 {
		return &Error{Msg: "AI_HISTORY_LIMIT must be positive"}
	}
	if c.AITimeout <= 0 {
		return &Error{Msg: "AI_TIMEOUT must be a positive duration"}
	}
	return nil
}

// Error reports an invalid configuration.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return "config: " + e.Msg }

func (c *Config) GetServerAddr() string              { return c.ServerAddr }
func (c *Config) GetStorageDriver() string           { return c.StorageDriver }
func (c *Config) GetDBURL() string                   { return c.DBUrl }
func (c *Config) GetDBNs() string                    { return c.DBNs }
func (c *Config) GetDBDb() string                    { return c.DBDb }
func (c *Config) GetDBUser() string                  { return c.DBUser }
func (c *Config) GetDBPass() string                  { return c.DBPass }
func (c *Config) GetDBQueryTimeout() time.Duration   { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }
func (c *Config) GetLLMProvider() string             { return c.LLMProvider }
func (c *Config) GetLLMBaseURL() string              { return c.LLMBaseURL }
func (c *Config) GetLLMAPIKey() string               { return c.LLMAPIKey }
func (c *Config) GetLLMModel() string                { return c.LLMModel }
func (c *Config) GetAITimeout() time.Duration        { return c.AITimeout }
func (c *Config) GetAIHistoryLimit() int             { return c.AIHistoryLimit }
func (c *Config) GetRoomsRequireRegistration() bool  { return c.RoomsRequireRegistration }
func (c *Config) GetWSPingInterval() time.Duration   { return c.WSPingInterval }
func (c *Config) GetWSWriteTimeout() time.Duration   { return c.WSWriteTimeout }
func (c *Config) GetWSMaxMessageSize() int64         { return c.WSMaxMessageSize }
func (c *Config) GetWSSendBuffer() int               { return c.WSSendBuffer }
func (c *Config) GetAPIToken() string                { return c.APIToken }
func (c *Config) GetCharactersDir() string           { return c.CharactersDir }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s=%q, using default %s", key, v, fallback)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Invalid integer for %s=%q, using default %d", key, v, fallback)
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("Invalid boolean for %s=%q, using default %t", key, v, fallback)
	}
	return fallback
}
