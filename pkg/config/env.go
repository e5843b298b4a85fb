package config

// EnvPrefix is handed to envconfig; every field below carries an explicit name.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvLogLevel     = "STOREFRONT_LOG_LEVEL"
	EnvLogWarnStack = "STOREFRONT_LOG_WARN_STACK"

	EnvDBDSN     = "STOREFRONT_DB_DSN"
	EnvDBDriver  = "STOREFRONT_DB_DRIVER"
	EnvDBHost    = "STOREFRONT_DB_HOST"
	EnvDBPort    = "STOREFRONT_DB_PORT"
	EnvDBUser    = "STOREFRONT_DB_USER"
	EnvDBPass    = "STOREFRONT_DB_PASSWORD"
	EnvDBName    = "STOREFRONT_DB_NAME"
	EnvDBSSLMode = "STOREFRONT_DB_SSLMODE"

	EnvRedisURL  = "STOREFRONT_REDIS_URL"
	EnvRedisAddr = "STOREFRONT_REDIS_ADDR"

	EnvJWTSecret              = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer              = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins             = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "STOREFRONT_REFRESH_TOKEN_TTL_MINUTES"

	EnvAutoMigrate = "STOREFRONT_AUTO_MIGRATE"

	EnvCartBackend     = "STOREFRONT_CART_BACKEND"
	EnvCartSnapshotTTL = "STOREFRONT_CART_SNAPSHOT_TTL"
	EnvCartRemovalRule = "STOREFRONT_CART_REMOVAL_RULE"

	EnvDefaultLocale    = "STOREFRONT_DEFAULT_LOCALE"
	EnvSupportedLocales = "STOREFRONT_SUPPORTED_LOCALES"

	EnvCORSOrigins = "STOREFRONT_CORS_ALLOWED_ORIGINS"
)

// legacyDBEnvVars are required when no DSN is supplied.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
