package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "eaz"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "EAZ_DB_DSN"
	EnvDBHost = "EAZ_DB_HOST"
	EnvDBUser = "EAZ_DB_USER"
	EnvDBName = "EAZ_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	Rates RatesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Rates.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EAZ_APP_ENV" default:"development"`
	LogLevel     string `envconfig:"EAZ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EAZ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"EAZ_DB_DSN"`
	Driver string `envconfig:"EAZ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EAZ_DB_HOST"`
	LegacyPort     int    `envconfig:"EAZ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EAZ_DB_USER"`
	LegacyPassword string `envconfig:"EAZ_DB_PASSWORD"`
	LegacyName     string `envconfig:"EAZ_DB_NAME"`
	LegacySSLMode  string `envconfig:"EAZ_DB_SSLMODE" default:"disable"`

	AutoMigrate bool `envconfig:"EAZ_DB_AUTO_MIGRATE" default:"false"`

	MaxOpenConns    int           `envconfig:"EAZ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EAZ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EAZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EAZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EAZ_REDIS_URL"`
	Address      string        `envconfig:"EAZ_REDIS_ADDR"`
	Password     string        `envconfig:"EAZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"EAZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EAZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EAZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EAZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EAZ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EAZ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RatesConfig holds tax levies and the platform commission, all in basis
// points so the values survive env round-trips without float drift.
type RatesConfig struct {
	VATBps           int `envconfig:"EAZ_RATE_VAT_BPS" default:"1250"`
	NHILBps          int `envconfig:"EAZ_RATE_NHIL_BPS" default:"250"`
	GETFundBps       int `envconfig:"EAZ_RATE_GETFUND_BPS" default:"250"`
	COVIDLevyBps     int `envconfig:"EAZ_RATE_COVID_BPS" default:"100"`
	CommissionBps    int `envconfig:"EAZ_COMMISSION_BPS" default:"1000"`
	RevenueWindowDay int `envconfig:"EAZ_REVENUE_WINDOW_DAYS" default:"30"`
}

func (r RatesConfig) validate() error {
	for name, bps := range map[string]int{
		"vat":        r.VATBps,
		"nhil":       r.NHILBps,
		"getfund":    r.GETFundBps,
		"covid levy": r.COVIDLevyBps,
		"commission": r.CommissionBps,
	} {
		if bps < 0 || bps > 10000 {
			return fmt.Errorf("%s rate out of range: %d bps", name, bps)
		}
	}
	if r.RevenueWindowDay <= 0 {
		return fmt.Errorf("revenue window must be positive")
	}
	return nil
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
