package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"

	IdentityProviderFirebase = "firebase"
	IdentityProviderJWT      = "jwt"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Identity IdentityConfig
	JWT      JWTConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig selects the backing store and bounds every call made to it.
type StoreConfig struct {
	Driver         string
	EagerConnect   bool
	ConnectTimeout time.Duration
	OpTimeout      time.Duration
}

type MongoConfig struct {
	URI        string
	Username   string
	Password   string
	Host       string
	Database   string
	Collection string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Table    string
}

type IdentityConfig struct {
	Provider                  string
	FirebaseProjectID         string
	FirebaseServiceAccountB64 string
	VerifyTimeout             time.Duration
}

type JWTConfig struct {
	SecretKey  string
	Issuer     string
	Expiration time.Duration
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work for containers and serverless hosts.
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	connectTimeout, _ := strconv.Atoi(getEnv("STORE_CONNECT_TIMEOUT", "10"))
	opTimeout, _ := strconv.Atoi(getEnv("STORE_OP_TIMEOUT", "10"))
	verifyTimeout, _ := strconv.Atoi(getEnv("IDENTITY_VERIFY_TIMEOUT", "5"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", getEnv("SERVER_PORT", "3000")),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Store: StoreConfig{
			Driver:         getEnv("STORE_DRIVER", StoreDriverMongo),
			EagerConnect:   getEnv("STORE_EAGER_CONNECT", "false") == "true",
			ConnectTimeout: time.Duration(connectTimeout) * time.Second,
			OpTimeout:      time.Duration(opTimeout) * time.Second,
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", ""),
			Username:   getEnv("DB_USERNAME", ""),
			Password:   getEnv("DB_PASSWORD", ""),
			Host:       getEnv("MONGO_HOST", "cluster0.ke7g9qv.mongodb.net"),
			Database:   getEnv("DB_NAME", "financeDB"),
			Collection: getEnv("DB_COLLECTION", "main-data"),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			User:     getEnv("PG_USER", "postgres"),
			Password: getEnv("PG_PASSWORD", "postgres"),
			DBName:   getEnv("PG_DB", "finease"),
			SSLMode:  getEnv("PG_SSLMODE", "disable"),
			Table:    getEnv("PG_TABLE", "transactions"),
		},
		Identity: IdentityConfig{
			Provider:                  getEnv("IDENTITY_PROVIDER", IdentityProviderFirebase),
			FirebaseProjectID:         getEnv("FIREBASE_PROJECT_ID", ""),
			FirebaseServiceAccountB64: getEnv("FIREBASE_SERVICE_ACCOUNT_BASE64", ""),
			VerifyTimeout:             time.Duration(verifyTimeout) * time.Second,
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Issuer:     getEnv("JWT_ISSUER", "finease-dev"),
			Expiration: time.Duration(jwtExp) * time.Hour,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration that would only fail later, on the first request.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverMongo, StoreDriverPostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Identity.Provider {
	case IdentityProviderFirebase:
		if c.Identity.FirebaseServiceAccountB64 == "" {
			return fmt.Errorf("FIREBASE_SERVICE_ACCOUNT_BASE64 is required for the firebase identity provider")
		}
	case IdentityProviderJWT:
		if c.JWT.SecretKey == "" {
			return fmt.Errorf("JWT_SECRET_KEY is required for the jwt identity provider")
		}
	default:
		return fmt.Errorf("unknown IDENTITY_PROVIDER %q", c.Identity.Provider)
	}

	if c.Store.OpTimeout <= 0 || c.Identity.VerifyTimeout <= 0 || c.Store.ConnectTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

// MongoURI returns MONGO_URI when set, otherwise an Atlas SRV URI built from the credentials.
func (c MongoConfig) MongoURI() string {
	if c.URI != "" {
		return c.URI
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority",
		url.QueryEscape(c.Username), url.QueryEscape(c.Password), c.Host)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
