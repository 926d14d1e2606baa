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
	Orders        OrdersConfig
	Idempotency   IdempotencyConfig
	CORS          CORSConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POSADMIN_APP_ENV" required:"true"`
	Port         string `envconfig:"POSADMIN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"POSADMIN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POSADMIN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"POSADMIN_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"POSADMIN_DB_DSN"`
	Driver string `envconfig:"POSADMIN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"POSADMIN_DB_HOST"`
	LegacyPort     int    `envconfig:"POSADMIN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"POSADMIN_DB_USER"`
	LegacyPassword string `envconfig:"POSADMIN_DB_PASSWORD"`
	LegacyName     string `envconfig:"POSADMIN_DB_NAME"`
	LegacySSLMode  string `envconfig:"POSADMIN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"POSADMIN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"POSADMIN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"POSADMIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"POSADMIN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"POSADMIN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"POSADMIN_REDIS_ADDR"`
	Password     string        `envconfig:"POSADMIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"POSADMIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POSADMIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POSADMIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POSADMIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POSADMIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POSADMIN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"POSADMIN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"POSADMIN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"POSADMIN_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"POSADMIN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"POSADMIN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"POSADMIN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"POSADMIN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"POSADMIN_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"POSADMIN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit    int           `envconfig:"POSADMIN_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"POSADMIN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"POSADMIN_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUsernameLimit int           `envconfig:"POSADMIN_AUTH_RATE_LIMIT_REGISTER_USERNAME_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"POSADMIN_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"POSADMIN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"POSADMIN_AUTO_MIGRATE" default:"false"`
}

type OrdersConfig struct {
	PlacementTimeout  time.Duration `envconfig:"POSADMIN_ORDER_PLACEMENT_TIMEOUT" default:"10s"`
	LowStockThreshold int           `envconfig:"POSADMIN_LOW_STOCK_THRESHOLD" default:"10"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"POSADMIN_IDEMPOTENCY_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"POSADMIN_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"POSADMIN_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"POSADMIN_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"POSADMIN_PUBSUB_ORDERS_TOPIC" default:"pos-order-events"`
	StockTopic  string `envconfig:"POSADMIN_PUBSUB_STOCK_TOPIC" default:"pos-stock-events"`
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"POSADMIN_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"POSADMIN_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"POSADMIN_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsAddr    string `envconfig:"POSADMIN_OUTBOX_METRICS_ADDR" default:":9091"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
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
