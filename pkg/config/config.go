package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Assets        AssetConfig
	Requests      RequestConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ASSETTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"ASSETTRACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ASSETTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ASSETTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ASSETTRACK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ASSETTRACK_DB_DSN"`
	Driver string `envconfig:"ASSETTRACK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ASSETTRACK_DB_HOST"`
	LegacyPort     int    `envconfig:"ASSETTRACK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ASSETTRACK_DB_USER"`
	LegacyPassword string `envconfig:"ASSETTRACK_DB_PASSWORD"`
	LegacyName     string `envconfig:"ASSETTRACK_DB_NAME"`
	LegacySSLMode  string `envconfig:"ASSETTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ASSETTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ASSETTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ASSETTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ASSETTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ASSETTRACK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ASSETTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"ASSETTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"ASSETTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ASSETTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ASSETTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ASSETTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ASSETTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ASSETTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ASSETTRACK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ASSETTRACK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ASSETTRACK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ASSETTRACK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ASSETTRACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ASSETTRACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ASSETTRACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ASSETTRACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ASSETTRACK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"ASSETTRACK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"ASSETTRACK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"ASSETTRACK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ASSETTRACK_AUTO_MIGRATE" default:"false"`
}

// AssetConfig tunes asset code generation and warranty monitoring.
type AssetConfig struct {
	CodeSequenceDigits  int    `envconfig:"ASSETTRACK_ASSET_CODE_SEQUENCE_DIGITS" default:"5"`
	WarrantyWarningDays int    `envconfig:"ASSETTRACK_WARRANTY_WARNING_DAYS" default:"30"`
	ScanURLBase         string `envconfig:"ASSETTRACK_SCAN_URL_BASE" default:"/my/asset/scan"`
}

// RequestConfig tunes the request workflow.
type RequestConfig struct {
	NumberPrefix    string `envconfig:"ASSETTRACK_REQUEST_NUMBER_PREFIX" default:"REQ"`
	AutoAssignStaff bool   `envconfig:"ASSETTRACK_REQUEST_AUTO_ASSIGN" default:"true"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"ASSETTRACK_CRON_INTERVAL" default:"1h"`
	LockKey  string        `envconfig:"ASSETTRACK_CRON_LOCK_KEY" default:"cron:leader"`
	LockTTL  time.Duration `envconfig:"ASSETTRACK_CRON_LOCK_TTL" default:"55m"`
	Port     string        `envconfig:"ASSETTRACK_CRON_METRICS_PORT" default:"9091"`
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
