package config

// EnvPrefix is empty because every field carries its fully qualified name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	DefaultSQLiteDSN = "file:posadmin.db?_foreign_keys=on"
)

const (
	EnvAppEnv       = "POSADMIN_APP_ENV"
	EnvPort         = "POSADMIN_APP_PORT"
	EnvLogLevel     = "POSADMIN_LOG_LEVEL"
	EnvDBDSN        = "POSADMIN_DB_DSN"
	EnvDBDriver     = "POSADMIN_DB_DRIVER"
	EnvDBHost       = "POSADMIN_DB_HOST"
	EnvDBUser       = "POSADMIN_DB_USER"
	EnvDBPassword   = "POSADMIN_DB_PASSWORD"
	EnvDBName       = "POSADMIN_DB_NAME"
	EnvRedisURL     = "POSADMIN_REDIS_URL"
	EnvJWTSecret    = "POSADMIN_JWT_SECRET"
	EnvJWTIssuer    = "POSADMIN_JWT_ISSUER"
	EnvJWTExpMins   = "POSADMIN_JWT_EXPIRATION_MINUTES"
	EnvUseSQLite    = "POSADMIN_USE_SQLITE"
	EnvAutoMigrate  = "POSADMIN_AUTO_MIGRATE"
	EnvPlacementTTL = "POSADMIN_ORDER_PLACEMENT_TIMEOUT"
	EnvLowStock     = "POSADMIN_LOW_STOCK_THRESHOLD"
	EnvCORSOrigins  = "POSADMIN_CORS_ALLOWED_ORIGINS"
	EnvGCPProjectID = "POSADMIN_GCP_PROJECT_ID"
	EnvOrdersTopic  = "POSADMIN_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
