package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	Courier      CourierConfig
	Catalog      CatalogConfig
	Credits      CreditsConfig
	Webhooks     WebhooksConfig
	ConfigCache  ConfigCacheConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"SHIPDESK_APP_ENV" required:"true"`
	Port         string   `envconfig:"SHIPDESK_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"SHIPDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"SHIPDESK_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"SHIPDESK_APP_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SHIPDESK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SHIPDESK_DB_DSN"`
	Driver string `envconfig:"SHIPDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHIPDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"SHIPDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHIPDESK_DB_USER"`
	LegacyPassword string `envconfig:"SHIPDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHIPDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHIPDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHIPDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHIPDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHIPDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHIPDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHIPDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHIPDESK_REDIS_ADDR"`
	Password     string        `envconfig:"SHIPDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHIPDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHIPDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHIPDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHIPDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHIPDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHIPDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SHIPDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHIPDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SHIPDESK_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite       bool `envconfig:"SHIPDESK_USE_SQLITE" default:"false"`
	AutoMigrate     bool `envconfig:"SHIPDESK_AUTO_MIGRATE" default:"false"`
	AnalyticsPubSub bool `envconfig:"SHIPDESK_FEATURE_ANALYTICS_PUBSUB" default:"false"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"SHIPDESK_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

// CourierConfig holds the Delhivery gateway credentials.
type CourierConfig struct {
	DelhiveryBaseURL string        `envconfig:"SHIPDESK_DELHIVERY_BASE_URL" default:"https://track.delhivery.com"`
	DelhiveryToken   string        `envconfig:"SHIPDESK_DELHIVERY_TOKEN"`
	Timeout          time.Duration `envconfig:"SHIPDESK_COURIER_TIMEOUT" default:"20s"`
}

// CatalogConfig points at the external inventory service used for restocks.
type CatalogConfig struct {
	BaseURL   string        `envconfig:"SHIPDESK_CATALOG_BASE_URL"`
	Namespace string        `envconfig:"SHIPDESK_CATALOG_NAMESPACE" default:"shipdesk"`
	Timeout   time.Duration `envconfig:"SHIPDESK_CATALOG_TIMEOUT" default:"10s"`
}

type CreditsConfig struct {
	DefaultOrderCost int `envconfig:"SHIPDESK_CREDITS_DEFAULT_ORDER_COST" default:"1"`
	ReconcileBatch   int `envconfig:"SHIPDESK_CREDITS_RECONCILE_BATCH" default:"50"`
	MaxAttempts      int `envconfig:"SHIPDESK_CREDITS_RECONCILE_MAX_ATTEMPTS" default:"10"`
}

type WebhooksConfig struct {
	Timeout   time.Duration `envconfig:"SHIPDESK_WEBHOOK_TIMEOUT" default:"10s"`
	UserAgent string        `envconfig:"SHIPDESK_WEBHOOK_USER_AGENT" default:"shipdesk-webhooks/1.0"`
}

type ConfigCacheConfig struct {
	TTL time.Duration `envconfig:"SHIPDESK_CONFIG_CACHE_TTL" default:"5m"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SHIPDESK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SHIPDESK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SHIPDESK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	AnalyticsTopic        string `envconfig:"SHIPDESK_PUBSUB_ANALYTICS_TOPIC" default:"shipdesk-analytics-events"`
	AnalyticsSubscription string `envconfig:"SHIPDESK_PUBSUB_ANALYTICS_SUBSCRIPTION" default:"shipdesk-analytics-events-sub"`
}

type BigQueryConfig struct {
	Dataset          string `envconfig:"SHIPDESK_BIGQUERY_DATASET" default:"shipdesk"`
	OrderEventsTable string `envconfig:"SHIPDESK_BIGQUERY_ORDER_EVENTS_TABLE" default:"order_events"`
}

type OutboxConfig struct {
	RetentionDays  int `envconfig:"SHIPDESK_OUTBOX_RETENTION_DAYS" default:"30"`
	BatchSize      int `envconfig:"SHIPDESK_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SHIPDESK_OUTBOX_POLL_INTERVAL_MS" default:"1000"`
	MaxAttempts    int `envconfig:"SHIPDESK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SHIPDESK_CRON_INTERVAL" default:"15m"`
}

func (db *DBConfig) ensureDSN(sqlite bool) error {
	if db.DSN != "" {
		return nil
	}
	if sqlite {
		db.DSN = "file:shipdesk.db?cache=shared"
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
