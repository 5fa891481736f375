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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Ledger        LedgerConfig
	Seed          SeedConfig
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
	Env          string `envconfig:"CREDEAT_APP_ENV" required:"true"`
	Port         string `envconfig:"CREDEAT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CREDEAT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CREDEAT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CREDEAT_DB_DSN"`
	Driver string `envconfig:"CREDEAT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CREDEAT_DB_HOST"`
	LegacyPort     int    `envconfig:"CREDEAT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CREDEAT_DB_USER"`
	LegacyPassword string `envconfig:"CREDEAT_DB_PASSWORD"`
	LegacyName     string `envconfig:"CREDEAT_DB_NAME"`
	LegacySSLMode  string `envconfig:"CREDEAT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CREDEAT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CREDEAT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CREDEAT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CREDEAT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CREDEAT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CREDEAT_REDIS_ADDR"`
	Password     string        `envconfig:"CREDEAT_REDIS_PASSWORD"`
	DB           int           `envconfig:"CREDEAT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CREDEAT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CREDEAT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CREDEAT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CREDEAT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CREDEAT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CREDEAT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CREDEAT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CREDEAT_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"CREDEAT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CREDEAT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CREDEAT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CREDEAT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CREDEAT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CREDEAT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CREDEAT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CREDEAT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CREDEAT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CREDEAT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CREDEAT_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CREDEAT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CREDEAT_AUTO_MIGRATE" default:"false"`
}

// SeedConfig holds the dev-only bootstrap accounts created at startup.
type SeedConfig struct {
	AdminEmail     string `envconfig:"CREDEAT_SEED_ADMIN_EMAIL" default:"admin@credeat.com"`
	AdminPassword  string `envconfig:"CREDEAT_SEED_ADMIN_PASSWORD" default:"admin123"`
	AdminFullName  string `envconfig:"CREDEAT_SEED_ADMIN_FULL_NAME" default:"Mess Admin"`
	VendorEmail    string `envconfig:"CREDEAT_SEED_VENDOR_EMAIL" default:"vendor@credeat.com"`
	VendorPassword string `envconfig:"CREDEAT_SEED_VENDOR_PASSWORD" default:"vendor123"`
	VendorFullName string `envconfig:"CREDEAT_SEED_VENDOR_FULL_NAME" default:"Campus Cafe"`
}

// LedgerConfig tunes the wallet engine's optimistic concurrency behavior.
type LedgerConfig struct {
	// MaxCommitAttempts bounds the validate-and-commit retry loop before the
	// engine surfaces BUSY to the caller.
	MaxCommitAttempts int `envconfig:"CREDEAT_LEDGER_MAX_COMMIT_ATTEMPTS" default:"5"`
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
