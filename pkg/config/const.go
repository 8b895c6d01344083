package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "assettrack"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (error messages, tests).
const (
	EnvAppEnv                 = "ASSETTRACK_APP_ENV"
	EnvPort                   = "ASSETTRACK_APP_PORT"
	EnvDBDSN                  = "ASSETTRACK_DB_DSN"
	EnvDBHost                 = "ASSETTRACK_DB_HOST"
	EnvDBUser                 = "ASSETTRACK_DB_USER"
	EnvDBName                 = "ASSETTRACK_DB_NAME"
	EnvRedisURL               = "ASSETTRACK_REDIS_URL"
	EnvJWTSecret              = "ASSETTRACK_JWT_SECRET"
	EnvJWTIssuer              = "ASSETTRACK_JWT_ISSUER"
	EnvJWTExpMins             = "ASSETTRACK_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "ASSETTRACK_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
