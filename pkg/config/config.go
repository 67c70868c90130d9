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
)

// Catalog backends understood by CatalogConfig.Backend
const (
	CatalogBackendPostgres  = "postgres"
	CatalogBackendTypesense = "typesense"
	CatalogBackendMemory    = "memory"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Typesense   TypesenseConfig
	Catalog     CatalogConfig
	Search      SearchConfig
	Cache       CacheConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Pool sizing. Search is read-only and bursty, so idle connections
	// are kept close to the open limit.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// StatementTimeout bounds each catalog query server-side; 0 disables it
	StatementTimeout time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int

	PoolSize int
	// OpTimeout applies to reads and writes; a slow cache is treated as a miss
	OpTimeout time.Duration
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// CatalogConfig selects where catalog items are read from
type CatalogConfig struct {
	Backend     string
	FixturePath string
}

// SearchConfig holds the tuning knobs of the search and suggestion pipelines.
type SearchConfig struct {
	RetrievalCap       int
	DefaultLimit       int
	ZeroScoreThreshold int
	MinTokenLength     int
	SuggestMinQuery    int
	SuggestFetchCap    int
	SuggestLimit       int
	Weights            WeightsConfig
}

// WeightsConfig overrides the relevance point table. Zero values keep the defaults.
type WeightsConfig struct {
	NameExact        int
	NamePrefix       int
	NameContains     int
	TokenInName      int
	AllTokensInName  int
	TokenInKeywords  int
	TokenInDesc      int
	PackageBoost     int
	TieredPriceBoost int
}

// CacheConfig holds response cache TTLs (seconds)
type CacheConfig struct {
	SearchTTLSeconds     int
	SuggestionTTLSeconds int
	ProviderTTLSeconds   int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables, reading a .env file
// first when one is present in the working directory.
func Load() (*Config, error) {
	return LoadFrom(getEnv("ENV_FILE", ".env"))
}

// LoadFrom loads configuration after applying the given .env file. A missing
// file is not an error.
func LoadFrom(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFilePath, err)
		}
	}

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "service_catalog"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 20),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 3*time.Second),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),

			PoolSize:  getEnvAsInt("REDIS_POOL_SIZE", 20),
			OpTimeout: getEnvAsDuration("REDIS_OP_TIMEOUT", 200*time.Millisecond),
		},
		Typesense: TypesenseConfig{
			URL:        getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey:     getEnv("TYPESENSE_API_KEY", "xyz"),
			Collection: getEnv("TYPESENSE_COLLECTION", "catalog_items"),
		},
		Catalog: CatalogConfig{
			Backend:     strings.ToLower(getEnv("CATALOG_BACKEND", CatalogBackendPostgres)),
			FixturePath: getEnv("CATALOG_FIXTURE", "testdata/catalog.json"),
		},
		Search: SearchConfig{
			RetrievalCap:       getEnvAsInt("SEARCH_RETRIEVAL_CAP", 500),
			DefaultLimit:       getEnvAsInt("SEARCH_DEFAULT_LIMIT", 200),
			ZeroScoreThreshold: getEnvAsInt("SEARCH_ZERO_SCORE_THRESHOLD", 10),
			MinTokenLength:     getEnvAsInt("SEARCH_MIN_TOKEN_LENGTH", 2),
			SuggestMinQuery:    getEnvAsInt("SUGGEST_MIN_QUERY", 2),
			SuggestFetchCap:    getEnvAsInt("SUGGEST_FETCH_CAP", 15),
			SuggestLimit:       getEnvAsInt("SUGGEST_LIMIT", 8),
			Weights: WeightsConfig{
				NameExact:        getEnvAsInt("SCORE_NAME_EXACT", 0),
				NamePrefix:       getEnvAsInt("SCORE_NAME_PREFIX", 0),
				NameContains:     getEnvAsInt("SCORE_NAME_CONTAINS", 0),
				TokenInName:      getEnvAsInt("SCORE_TOKEN_IN_NAME", 0),
				AllTokensInName:  getEnvAsInt("SCORE_ALL_TOKENS_IN_NAME", 0),
				TokenInKeywords:  getEnvAsInt("SCORE_TOKEN_IN_KEYWORDS", 0),
				TokenInDesc:      getEnvAsInt("SCORE_TOKEN_IN_DESCRIPTION", 0),
				PackageBoost:     getEnvAsInt("SCORE_PACKAGE_BOOST", 0),
				TieredPriceBoost: getEnvAsInt("SCORE_TIERED_PRICE_BOOST", 0),
			},
		},
		Cache: CacheConfig{
			SearchTTLSeconds:     getEnvAsInt("CACHE_SEARCH_TTL", 120),
			SuggestionTTLSeconds: getEnvAsInt("CACHE_SUGGESTION_TTL", 180),
			ProviderTTLSeconds:   getEnvAsInt("CACHE_PROVIDER_TTL", 600),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "catalog-search"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	switch c.Catalog.Backend {
	case CatalogBackendPostgres, CatalogBackendTypesense, CatalogBackendMemory:
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", c.Catalog.Backend)
	}
	if c.Search.RetrievalCap <= 0 {
		return fmt.Errorf("SEARCH_RETRIEVAL_CAP must be positive, got %d", c.Search.RetrievalCap)
	}
	if c.Search.DefaultLimit <= 0 {
		return fmt.Errorf("SEARCH_DEFAULT_LIMIT must be positive, got %d", c.Search.DefaultLimit)
	}
	if c.Search.SuggestFetchCap <= 0 || c.Search.SuggestLimit <= 0 {
		return fmt.Errorf("suggestion caps must be positive")
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string. The statement timeout
// travels as a startup parameter so every pooled connection gets it.
func (c *DatabaseConfig) DatabaseDSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
	if c.StatementTimeout > 0 {
		dsn += fmt.Sprintf(" statement_timeout=%d", c.StatementTimeout.Milliseconds())
	}
	return dsn
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
