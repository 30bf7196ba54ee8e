package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":9090"`
	GinMode  string `env:"GIN_MODE" envDefault:"release"`

	DBHost                  string `env:"DB_HOST" envDefault:"localhost"`
	DBPort                  int    `env:"DB_PORT" envDefault:"5432"`
	DBUsername              string `env:"DB_USERNAME" envDefault:"postgres"`
	DBPassword              string `env:"DB_PASSWORD"`
	DBName                  string `env:"DB_NAME" envDefault:"cafe_pos"`
	DBSSL                   bool   `env:"DB_SSL" envDefault:"false"`
	DBSSLRejectUnauthorized bool   `env:"DB_SSL_REJECT_UNAUTHORIZED" envDefault:"true"`
	DBMaxConns              int    `env:"DB_MAX_CONNS" envDefault:"10"`

	RedisAddr      string        `env:"REDIS_ADDR"`
	ReportCacheTTL time.Duration `env:"REPORT_CACHE_TTL" envDefault:"60s"`

	RabbitMQURL      string `env:"RABBITMQ_URL"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"pos.events"`

	JWTSecret   string        `env:"JWT_SECRET" envDefault:"changeme"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"12h"`
	AuthEnabled bool          `env:"AUTH_ENABLED" envDefault:"false"`

	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogFile   string `env:"LOG_FILE"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load() // load .env if it exists
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// PostgresDSN builds the pgx connection string from the DB_* settings.
func (c Config) PostgresDSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUsername, c.DBPassword),
		Host:   fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode())
	if c.DBMaxConns > 0 {
		q.Set("pool_max_conns", fmt.Sprint(c.DBMaxConns))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (c Config) SSLMode() string {
	switch {
	case !c.DBSSL:
		return "disable"
	case c.DBSSLRejectUnauthorized:
		return "verify-full"
	default:
		return "require"
	}
}

// Origins splits CORS_ORIGINS on commas.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
