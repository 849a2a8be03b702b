package config

const EnvPrefix = "SHIPDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "SHIPDESK_APP_ENV"
	EnvPort       = "SHIPDESK_APP_PORT"
	EnvDBDSN      = "SHIPDESK_DB_DSN"
	EnvDBHost     = "SHIPDESK_DB_HOST"
	EnvDBUser     = "SHIPDESK_DB_USER"
	EnvDBName     = "SHIPDESK_DB_NAME"
	EnvRedisURL   = "SHIPDESK_REDIS_URL"
	EnvJWTSecret  = "SHIPDESK_JWT_SECRET"
	EnvJWTIssuer  = "SHIPDESK_JWT_ISSUER"
	EnvUseSQLite  = "SHIPDESK_USE_SQLITE"
	EnvCacheTTL   = "SHIPDESK_CONFIG_CACHE_TTL"
	EnvDelhivery  = "SHIPDESK_DELHIVERY_TOKEN"
	EnvCatalogURL = "SHIPDESK_CATALOG_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
