package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "kwikorder"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "KWIKORDER_DB_DSN"
	EnvDBHost = "KWIKORDER_DB_HOST"
	EnvDBUser = "KWIKORDER_DB_USER"
	EnvDBName = "KWIKORDER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Views        ViewsConfig
	Notify       NotifyConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KWIKORDER_APP_ENV" required:"true"`
	Port         string `envconfig:"KWIKORDER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KWIKORDER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KWIKORDER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KWIKORDER_DB_DSN"`
	Driver string `envconfig:"KWIKORDER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KWIKORDER_DB_HOST"`
	LegacyPort     int    `envconfig:"KWIKORDER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KWIKORDER_DB_USER"`
	LegacyPassword string `envconfig:"KWIKORDER_DB_PASSWORD"`
	LegacyName     string `envconfig:"KWIKORDER_DB_NAME"`
	LegacySSLMode  string `envconfig:"KWIKORDER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KWIKORDER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KWIKORDER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KWIKORDER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KWIKORDER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KWIKORDER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KWIKORDER_REDIS_ADDR"`
	Password     string        `envconfig:"KWIKORDER_REDIS_PASSWORD"`
	DB           int           `envconfig:"KWIKORDER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KWIKORDER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KWIKORDER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KWIKORDER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KWIKORDER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KWIKORDER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type ViewsConfig struct {
	// ClosedLookback controls how long a closed order keeps a table green.
	ClosedLookback time.Duration `envconfig:"KWIKORDER_VIEWS_CLOSED_LOOKBACK" default:"120m"`
}

type NotifyConfig struct {
	Channel   string        `envconfig:"KWIKORDER_NOTIFY_CHANNEL" default:"order-changes"`
	MarkerTTL time.Duration `envconfig:"KWIKORDER_NOTIFY_MARKER_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KWIKORDER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KWIKORDER_AUTO_MIGRATE" default:"false"`
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
