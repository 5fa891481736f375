package config

// EnvPrefix namespaces every CredEat environment variable.
const EnvPrefix = "CREDEAT"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside envconfig tags (tests, error
// messages).
const (
	EnvAppEnv     = "CREDEAT_APP_ENV"
	EnvPort       = "CREDEAT_APP_PORT"
	EnvDBDSN      = "CREDEAT_DB_DSN"
	EnvDBHost     = "CREDEAT_DB_HOST"
	EnvDBUser     = "CREDEAT_DB_USER"
	EnvDBName     = "CREDEAT_DB_NAME"
	EnvRedisURL   = "CREDEAT_REDIS_URL"
	EnvJWTSecret  = "CREDEAT_JWT_SECRET"
	EnvJWTIssuer  = "CREDEAT_JWT_ISSUER"
	EnvJWTExpMins = "CREDEAT_JWT_EXPIRATION_MINUTES"

	EnvRefreshTokenTTLMinutes = "CREDEAT_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
