package config

const (
	EnvPrefix = "COUNTERLINE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// Environment variable names referenced outside of struct tags.
const (
	EnvAppEnv             = "COUNTERLINE_APP_ENV"
	EnvPort               = "COUNTERLINE_APP_PORT"
	EnvDBDSN              = "COUNTERLINE_DB_DSN"
	EnvDBDriver           = "COUNTERLINE_DB_DRIVER"
	EnvDBHost             = "COUNTERLINE_DB_HOST"
	EnvDBUser             = "COUNTERLINE_DB_USER"
	EnvDBName             = "COUNTERLINE_DB_NAME"
	EnvDBPassword         = "COUNTERLINE_DB_PASSWORD"
	EnvRedisURL           = "COUNTERLINE_REDIS_URL"
	EnvJWTSecret          = "COUNTERLINE_JWT_SECRET"
	EnvJWTIssuer          = "COUNTERLINE_JWT_ISSUER"
	EnvJWTExpMins         = "COUNTERLINE_JWT_EXPIRATION_MINUTES"
	EnvOTPTTL             = "COUNTERLINE_OTP_TTL"
	EnvOTPDailyLimit      = "COUNTERLINE_OTP_DAILY_LIMIT"
	EnvOrderTokenTimezone = "COUNTERLINE_ORDER_TOKEN_TIMEZONE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
