package config

// EnvPrefix namespaces every variable read by envconfig.
const EnvPrefix = "SHOPFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                = "SHOPFRONT_APP_ENV"
	EnvPort                  = "SHOPFRONT_APP_PORT"
	EnvRootDomain            = "SHOPFRONT_ROOT_DOMAIN"
	EnvExcludedPrefixes      = "SHOPFRONT_TENANT_EXCLUDED_PREFIXES"
	EnvDBDSN                 = "SHOPFRONT_DB_DSN"
	EnvDBHost                = "SHOPFRONT_DB_HOST"
	EnvDBUser                = "SHOPFRONT_DB_USER"
	EnvDBPassword            = "SHOPFRONT_DB_PASSWORD"
	EnvDBName                = "SHOPFRONT_DB_NAME"
	EnvRedisURL              = "SHOPFRONT_REDIS_URL"
	EnvJWTSecret             = "SHOPFRONT_JWT_SECRET"
	EnvJWTIssuer             = "SHOPFRONT_JWT_ISSUER"
	EnvCORSAllowedOrigins    = "SHOPFRONT_CORS_ALLOWED_ORIGINS"
	EnvTrackingIDMaxAttempts = "SHOPFRONT_ORDERS_TRACKING_ID_MAX_ATTEMPTS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
