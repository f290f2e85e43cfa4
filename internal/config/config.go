package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	pkgcfg "github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string
	CORSOrigins []string

	DBDriver    string
	DatabaseURL string
	DBDebug     bool

	JWTSecret        []byte
	SessionTTL       time.Duration
	CookieSecure     bool
	CSRFEnabled      bool
	AllowAdminSignUp bool

	EventsBackend string
	KafkaBrokers  []string
	RabbitMQURL   string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimit ratelimit.Config
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		ServiceName: pkgcfg.EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  pkgcfg.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    pkgcfg.EnvDefault("LOG_LEVEL", "info"),
		CORSOrigins: pkgcfg.CSV(pkgcfg.EnvDefault("CORS_ORIGINS", "http://localhost:3000")),

		DBDriver: strings.ToLower(pkgcfg.EnvDefault("DB_DRIVER", pkgdb.DriverPostgres)),
		DBDebug:  pkgcfg.EnvBool("DB_DEBUG", false),

		JWTSecret:        []byte(os.Getenv("JWT_SECRET")),
		SessionTTL:       pkgcfg.EnvDuration("SESSION_TTL", 7*24*time.Hour),
		CookieSecure:     pkgcfg.EnvBool("COOKIE_SECURE", true),
		CSRFEnabled:      pkgcfg.EnvBool("CSRF_ENABLED", false),
		AllowAdminSignUp: pkgcfg.EnvBool("ALLOW_ADMIN_SIGNUP", false),

		EventsBackend: strings.ToLower(pkgcfg.EnvDefault("EVENTS_BACKEND", "none")),
		KafkaBrokers:  pkgcfg.CSV(os.Getenv("KAFKA_BROKERS")),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    pkgcfg.EnvDefault("ES_INDEX", "products"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       pkgcfg.EnvIntDefault("REDIS_DB", 0),

		RateLimit: ratelimit.Config{
			Enabled:        pkgcfg.EnvBool("RATE_LIMIT_ENABLED", true),
			Capacity:       pkgcfg.EnvIntDefault("RATE_LIMIT_CAPACITY", 20),
			RefillTokens:   pkgcfg.EnvIntDefault("RATE_LIMIT_REFILL_TOKENS", 1),
			RefillInterval: pkgcfg.EnvDuration("RATE_LIMIT_REFILL_INTERVAL", 3*time.Second),
			TTL:            pkgcfg.EnvDuration("RATE_LIMIT_TTL", 10*time.Minute),
			Prefix:         pkgcfg.EnvDefault("RATE_LIMIT_PREFIX", "rl"),
		},
	}

	cfg.DatabaseURL = databaseURL(cfg.DBDriver)
	return cfg
}

// MustValidate stops the process when a required setting is missing.
func (c *Config) MustValidate() {
	pkgcfg.MustNonEmptyBytes(c.JWTSecret, "JWT_SECRET")
	pkgcfg.MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func databaseURL(driver string) string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")

	switch driver {
	case pkgdb.DriverSQLite:
		return pkgcfg.EnvDefault("DB_NAME", "storefront.db")
	case pkgdb.DriverMySQL:
		if host == "" {
			return ""
		}
		return mysqlDSN(host, pkgcfg.EnvDefault("DB_PORT", "3306"), user, password, name)
	default:
		if host == "" {
			return ""
		}
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
	}
}

func mysqlDSN(host, port, user, password, name string) string {
	mc := mysqldrv.NewConfig()
	mc.User = user
	mc.Passwd = password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, port)
	mc.DBName = name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}
