package config

// EnvPrefix is handed to envconfig; every field carries an explicit name so
// the prefix only matters for unnamed fields.
const EnvPrefix = "STOREFRONTS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv        = "STOREFRONTS_APP_ENV"
	EnvPort          = "STOREFRONTS_APP_PORT"
	EnvDBDSN         = "STOREFRONTS_DB_DSN"
	EnvDBHost        = "STOREFRONTS_DB_HOST"
	EnvDBUser        = "STOREFRONTS_DB_USER"
	EnvDBPassword    = "STOREFRONTS_DB_PASSWORD"
	EnvDBName        = "STOREFRONTS_DB_NAME"
	EnvUseSQLite     = "STOREFRONTS_USE_SQLITE"
	EnvRedisURL      = "STOREFRONTS_REDIS_URL"
	EnvGCSBucket     = "STOREFRONTS_GCS_BUCKET_NAME"
	EnvGCPProjectID  = "STOREFRONTS_GCP_PROJECT_ID"
	EnvPlacesAPIKey  = "STOREFRONTS_PLACES_API_KEY"
	EnvOpenAIAPIKey  = "STOREFRONTS_OPENAI_API_KEY"
	EnvImageQuality  = "STOREFRONTS_MEDIA_IMAGE_QUALITY"
	EnvContentTopic  = "STOREFRONTS_PUBSUB_CONTENT_CHANGED_TOPIC"
	EnvLockTTL       = "STOREFRONTS_REGENERATION_LOCK_TTL"
	EnvMaxUploadMB   = "STOREFRONTS_MAX_UPLOAD_MB"
	EnvMediaStageTTL = "STOREFRONTS_MEDIA_STAGE_TIMEOUT"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
