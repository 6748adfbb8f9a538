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
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Places       PlacesConfig
	Copywriter   CopywriterConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Media        MediaConfig
	PubSub       PubSubConfig
	Regeneration RegenerationConfig
	Cache        CacheConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Media.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONTS_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONTS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONTS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONTS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONTS_DB_DSN"`
	Driver string `envconfig:"STOREFRONTS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"STOREFRONTS_DB_HOST"`
	Port     int    `envconfig:"STOREFRONTS_DB_PORT" default:"5432"`
	User     string `envconfig:"STOREFRONTS_DB_USER"`
	Password string `envconfig:"STOREFRONTS_DB_PASSWORD"`
	Name     string `envconfig:"STOREFRONTS_DB_NAME"`
	SSLMode  string `envconfig:"STOREFRONTS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONTS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONTS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONTS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONTS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONTS_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONTS_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONTS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite      bool `envconfig:"STOREFRONTS_USE_SQLITE" default:"false"`
	AutoMigrate    bool `envconfig:"STOREFRONTS_AUTO_MIGRATE" default:"false"`
	DisableContent bool `envconfig:"STOREFRONTS_DISABLE_AI_CONTENT" default:"false"`
}

type PlacesConfig struct {
	APIKey       string        `envconfig:"STOREFRONTS_PLACES_API_KEY"`
	BaseURL      string        `envconfig:"STOREFRONTS_PLACES_BASE_URL"`
	LanguageCode string        `envconfig:"STOREFRONTS_PLACES_LANGUAGE" default:"es"`
	Timeout      time.Duration `envconfig:"STOREFRONTS_PLACES_TIMEOUT" default:"15s"`
}

type CopywriterConfig struct {
	APIKey      string        `envconfig:"STOREFRONTS_OPENAI_API_KEY"`
	BaseURL     string        `envconfig:"STOREFRONTS_OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	Model       string        `envconfig:"STOREFRONTS_OPENAI_MODEL" default:"gpt-4o-mini"`
	Temperature float64       `envconfig:"STOREFRONTS_OPENAI_TEMPERATURE" default:"0.7"`
	Timeout     time.Duration `envconfig:"STOREFRONTS_OPENAI_TIMEOUT" default:"45s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STOREFRONTS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"STOREFRONTS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STOREFRONTS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"STOREFRONTS_GCS_BUCKET_NAME" required:"true"`
	PublicBaseURL string `envconfig:"STOREFRONTS_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	CacheControl  string `envconfig:"STOREFRONTS_GCS_CACHE_CONTROL" default:"public, max-age=31536000"`
}

type MediaConfig struct {
	MaxUploadMB   int           `envconfig:"STOREFRONTS_MAX_UPLOAD_MB" default:"15"`
	HeroWidth     int           `envconfig:"STOREFRONTS_MEDIA_HERO_WIDTH" default:"1920"`
	HeroHeight    int           `envconfig:"STOREFRONTS_MEDIA_HERO_HEIGHT" default:"1080"`
	GalleryWidth  int           `envconfig:"STOREFRONTS_MEDIA_GALLERY_WIDTH" default:"1200"`
	GalleryHeight int           `envconfig:"STOREFRONTS_MEDIA_GALLERY_HEIGHT" default:"900"`
	ImageQuality  int           `envconfig:"STOREFRONTS_MEDIA_IMAGE_QUALITY" default:"82"`
	MaxPhotos     int           `envconfig:"STOREFRONTS_MEDIA_MAX_PHOTOS" default:"10"`
	StageTimeout  time.Duration `envconfig:"STOREFRONTS_MEDIA_STAGE_TIMEOUT" default:"2m"`
}

// MaxUploadBytes converts the configured megabyte ceiling to bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 0
	}
	return int64(m.MaxUploadMB) * 1024 * 1024
}

func (m MediaConfig) validate() error {
	if m.HeroWidth <= 0 || m.HeroHeight <= 0 {
		return fmt.Errorf("hero geometry must be positive, got %dx%d", m.HeroWidth, m.HeroHeight)
	}
	if m.GalleryWidth <= 0 || m.GalleryHeight <= 0 {
		return fmt.Errorf("gallery geometry must be positive, got %dx%d", m.GalleryWidth, m.GalleryHeight)
	}
	if m.ImageQuality < 1 || m.ImageQuality > 100 {
		return fmt.Errorf("image quality must be within 1..100, got %d", m.ImageQuality)
	}
	return nil
}

type PubSubConfig struct {
	ContentChangedTopic string `envconfig:"STOREFRONTS_PUBSUB_CONTENT_CHANGED_TOPIC"`
}

type RegenerationConfig struct {
	LockTTL                 time.Duration `envconfig:"STOREFRONTS_REGENERATION_LOCK_TTL" default:"10m"`
	FullSyncMaxTestimonials int           `envconfig:"STOREFRONTS_FULL_SYNC_MAX_TESTIMONIALS" default:"15"`
	NotifyTimeout           time.Duration `envconfig:"STOREFRONTS_REVALIDATE_TIMEOUT" default:"10s"`
}

type CacheConfig struct {
	PageKeyPrefix string `envconfig:"STOREFRONTS_CACHE_PAGE_PREFIX" default:"page"`
}

func (db *DBConfig) ensureDSN(sqlite bool) error {
	if db.DSN != "" {
		return nil
	}
	if sqlite {
		db.DSN = "file:storefronts.db?cache=shared"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range splitDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
