package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Tenant       TenantConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	Orders       OrdersConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	cfg.Tenant.normalize()
	if cfg.Orders.TrackingIDMaxAttempts <= 0 {
		return nil, fmt.Errorf("%s must be positive", EnvTrackingIDMaxAttempts)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"SHOPFRONT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"SHOPFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// TenantConfig drives subdomain routing. An empty RootDomain disables rewriting.
type TenantConfig struct {
	RootDomain        string   `envconfig:"SHOPFRONT_ROOT_DOMAIN"`
	ExcludedPrefixes  []string `envconfig:"SHOPFRONT_TENANT_EXCLUDED_PREFIXES" default:"/api,/static,/_next,/health,/metrics,/favicon.ico"`
	RequireRootDomain bool     `envconfig:"SHOPFRONT_TENANT_REQUIRE_ROOT_DOMAIN" default:"false"`
}

func (t *TenantConfig) normalize() {
	t.RootDomain = strings.ToLower(strings.Trim(strings.TrimSpace(t.RootDomain), "."))
	prefixes := make([]string, 0, len(t.ExcludedPrefixes))
	for _, p := range t.ExcludedPrefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		prefixes = append(prefixes, p)
	}
	t.ExcludedPrefixes = prefixes
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPFRONT_DB_DSN"`
	Driver string `envconfig:"SHOPFRONT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPFRONT_DB_USER"`
	LegacyPassword string `envconfig:"SHOPFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPFRONT_REDIS_URL"`
	Address      string        `envconfig:"SHOPFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes the tokens issued by the external identity provider.
type JWTConfig struct {
	Secret            string `envconfig:"SHOPFRONT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHOPFRONT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SHOPFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SHOPFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type RateLimitConfig struct {
	CartWindow     time.Duration `envconfig:"SHOPFRONT_RATE_LIMIT_CART_WINDOW" default:"1m"`
	CartLimit      int           `envconfig:"SHOPFRONT_RATE_LIMIT_CART_LIMIT" default:"60"`
	CheckoutWindow time.Duration `envconfig:"SHOPFRONT_RATE_LIMIT_CHECKOUT_WINDOW" default:"5m"`
	CheckoutLimit  int           `envconfig:"SHOPFRONT_RATE_LIMIT_CHECKOUT_LIMIT" default:"10"`
}

type OrdersConfig struct {
	TrackingIDMaxAttempts int   `envconfig:"SHOPFRONT_ORDERS_TRACKING_ID_MAX_ATTEMPTS" default:"5"`
	TrackingIDBase        int64 `envconfig:"SHOPFRONT_ORDERS_TRACKING_ID_BASE" default:"100000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPFRONT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
