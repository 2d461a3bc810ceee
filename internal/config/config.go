package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds the runtime configuration of a migration run.
type AppConfig struct {
	Env        string             `yaml:"env"` // "development" | "production"
	Locale     string             `yaml:"locale"`
	DryRun     bool               `yaml:"dry_run"`
	Source     SourceConfig       `yaml:"source"`
	Static     StaticSourceConfig `yaml:"static"`
	Store      StoreConfig        `yaml:"store"`
	Assets     AssetsConfig       `yaml:"assets"`
	AssetCache AssetCacheConfig   `yaml:"asset_cache"`
	Paths      RuntimePathsConfig `yaml:"paths"`
}

type SourceConfig struct {
	BaseURL   string        `yaml:"base_url"`
	PageSize  int           `yaml:"page_size"`
	MaxPages  int           `yaml:"max_pages"` // 0 = until the remote runs out
	Lang      string        `yaml:"lang"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"-"`
}

type StaticSourceConfig struct {
	Dir     string `yaml:"dir"`
	Kind    string `yaml:"kind"`
	BaseURL string `yaml:"base_url"` // resolves relative image links
}

type StoreConfig struct {
	Driver   string                `yaml:"driver"`
	Database DatabaseRuntimeConfig `yaml:"database"`
	Mongo    MongoRuntimeConfig    `yaml:"mongo"`
}

type DatabaseRuntimeConfig struct {
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type MongoRuntimeConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	Bucket     string `yaml:"bucket"`
}

type RedisRuntimeConfig struct {
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       int               `yaml:"db"`
	TLS      bool              `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

type AssetsConfig struct {
	Backend       string        `yaml:"backend"` // "s3" | "local" | "gridfs"
	S3            S3Config      `yaml:"s3"`
	LocalDir      string        `yaml:"local_dir"`
	PublicBaseURL string        `yaml:"public_base_url"`
	MaxBytes      int64         `yaml:"max_bytes"`
	Timeout       time.Duration `yaml:"-"`
}

type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Prefix          string `yaml:"prefix"`
	CustomDomain    string `yaml:"custom_domain"`
	PathStyle       bool   `yaml:"path_style"`
}

type AssetCacheConfig struct {
	Enable bool               `yaml:"enable"`
	TTL    time.Duration      `yaml:"-"`
	Redis  RedisRuntimeConfig `yaml:"redis"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}

type rawAppConfig struct {
	Env        string              `yaml:"env"`
	Locale     string              `yaml:"locale"`
	Lang       string              `yaml:"default_locale"`
	DryRun     *bool               `yaml:"dry_run"`
	Source     rawSourceConfig     `yaml:"source"`
	WPAPIURL   string              `yaml:"wp_api_url"`
	Static     StaticSourceConfig  `yaml:"static"`
	Store      rawStoreConfig      `yaml:"store"`
	DSN        string              `yaml:"dsn"`
	MongoURI   string              `yaml:"mongo_uri"`
	Assets     rawAssetsConfig     `yaml:"assets"`
	AssetCache rawAssetCacheConfig `yaml:"asset_cache"`
	RedisURL   string              `yaml:"redis_url"`
	Paths      RuntimePathsConfig  `yaml:"paths"`
	LogDir     string              `yaml:"log_dir"`
}

type rawSourceConfig struct {
	BaseURL        string `yaml:"base_url"`
	URL            string `yaml:"url"`
	PageSize       int    `yaml:"page_size"`
	PerPage        int    `yaml:"per_page"`
	MaxPages       *int   `yaml:"max_pages"`
	Lang           string `yaml:"lang"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type rawStoreConfig struct {
	Driver   string             `yaml:"driver"`
	Database rawDatabaseConfig  `yaml:"database"`
	Mongo    MongoRuntimeConfig `yaml:"mongo"`
}

type rawDatabaseConfig struct {
	DSN       string            `yaml:"dsn"`
	URL       string            `yaml:"url"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Username  string            `yaml:"username"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	DBName    string            `yaml:"db_name"`
	Charset   string            `yaml:"charset"`
	ParseTime *bool             `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type rawAssetsConfig struct {
	Backend        string   `yaml:"backend"`
	S3             S3Config `yaml:"s3"`
	LocalDir       string   `yaml:"local_dir"`
	PublicBaseURL  string   `yaml:"public_base_url"`
	MaxBytes       int64    `yaml:"max_bytes"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

type rawAssetCacheConfig struct {
	Enable     *bool          `yaml:"enable"`
	TTLSeconds int            `yaml:"ttl_seconds"`
	Redis      rawRedisConfig `yaml:"redis"`
}

type rawRedisConfig struct {
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       *int              `yaml:"db"`
	TLS      *bool             `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

// Load reads the YAML config at configPath, merges it onto the defaults and
// applies environment overrides (including a .env file in the working
// directory). A missing file is only an error when configPath was given
// explicitly.
func Load(configPath string) (*AppConfig, error) {
	// .env is optional
	_ = godotenv.Load()

	path := strings.TrimSpace(configPath)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
		applyRawAppConfig(&cfg, raw)
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnvOverrides(&cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return &cfg, nil
}

// Validate reports configuration errors that make a run impossible.
func (c *AppConfig) Validate() error {
	if c.Source.PageSize < 1 || c.Source.PageSize > 100 {
		return fmt.Errorf("source.page_size %d out of range, expected 1-100", c.Source.PageSize)
	}
	if c.Source.MaxPages < 0 {
		return fmt.Errorf("source.max_pages %d must be >= 0", c.Source.MaxPages)
	}
	switch c.Store.Driver {
	case StoreDriverMySQL:
		if c.Store.Database.Port < 1 || c.Store.Database.Port > 65535 {
			return fmt.Errorf("invalid store.database.port %d, expected 1-65535", c.Store.Database.Port)
		}
	case StoreDriverMongo:
		if c.Store.Mongo.URI == "" {
			return errors.New("store.mongo.uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	switch c.Assets.Backend {
	case AssetBackendLocal:
	case AssetBackendS3:
		s3 := c.Assets.S3
		if s3.Bucket == "" || s3.AccessKeyID == "" || s3.SecretAccessKey == "" {
			return errors.New("assets.s3 requires bucket, access_key_id and secret_access_key")
		}
	case AssetBackendGridFS:
		if c.Store.Driver != StoreDriverMongo {
			return errors.New("assets.backend gridfs requires store.driver mongo")
		}
	default:
		return fmt.Errorf("unknown assets.backend %q", c.Assets.Backend)
	}
	if c.Assets.MaxBytes <= 0 {
		return fmt.Errorf("assets.max_bytes %d must be > 0", c.Assets.MaxBytes)
	}
	if c.AssetCache.Enable {
		if c.AssetCache.Redis.Port < 1 || c.AssetCache.Redis.Port > 65535 {
			return fmt.Errorf("invalid asset_cache.redis.port %d, expected 1-65535", c.AssetCache.Redis.Port)
		}
		if c.AssetCache.Redis.DB < 0 {
			return fmt.Errorf("invalid asset_cache.redis.db %d, expected >= 0", c.AssetCache.Redis.DB)
		}
	}
	return nil
}

// Default returns the configuration used when no file is present.
func Default() AppConfig {
	return defaultAppConfig()
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Env:    defaultEnv,
		Locale: defaultLocale,
		Source: SourceConfig{
			BaseURL:   defaultSourceURL,
			PageSize:  defaultPageSize,
			UserAgent: defaultUserAgent,
			Timeout:   defaultTimeout,
		},
		Store: StoreConfig{
			Driver: defaultStoreDriver,
			Database: DatabaseRuntimeConfig{
				Host:      defaultDBHost,
				Port:      defaultDBPort,
				User:      defaultDBUser,
				Password:  defaultDBPassword,
				Name:      defaultDBName,
				Charset:   defaultDBCharset,
				ParseTime: true,
				Loc:       defaultDBLoc,
			},
			Mongo: MongoRuntimeConfig{
				URI:        defaultMongoURI,
				Database:   defaultMongoDatabase,
				Collection: defaultMongoCollection,
				Bucket:     defaultMongoBucket,
			},
		},
		Assets: AssetsConfig{
			Backend:  defaultAssetBackend,
			LocalDir: defaultAssetLocalDir,
			MaxBytes: defaultAssetMaxBytes,
			Timeout:  defaultAssetTimeout,
			S3:       S3Config{Region: defaultS3Region},
		},
		AssetCache: AssetCacheConfig{
			TTL: defaultCacheTTL,
			Redis: RedisRuntimeConfig{
				Host: defaultRedisHost,
				Port: defaultRedisPort,
				DB:   defaultRedisDB,
			},
		},
	}
	cfg.Store.Database = normalizeDatabaseConfig(cfg.Store.Database)
	cfg.AssetCache.Redis = normalizeRedisConfig(cfg.AssetCache.Redis)
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.Lang); v != "" {
		cfg.Locale = v
	}
	if v := strings.TrimSpace(raw.Locale); v != "" {
		cfg.Locale = v
	}
	if raw.DryRun != nil {
		cfg.DryRun = *raw.DryRun
	}

	cfg.Source = applyRawSourceConfig(cfg.Source, raw)
	if v := strings.TrimSpace(raw.Static.Dir); v != "" {
		cfg.Static.Dir = v
	}
	if v := strings.TrimSpace(raw.Static.Kind); v != "" {
		cfg.Static.Kind = v
	}
	if v := strings.TrimSpace(raw.Static.BaseURL); v != "" {
		cfg.Static.BaseURL = v
	}

	if v := strings.TrimSpace(raw.Store.Driver); v != "" {
		cfg.Store.Driver = v
	}
	cfg.Store.Database = applyRawDatabaseConfig(cfg.Store.Database, raw)
	cfg.Store.Mongo = applyRawMongoConfig(cfg.Store.Mongo, raw)

	cfg.Assets = applyRawAssetsConfig(cfg.Assets, raw.Assets)

	if raw.AssetCache.Enable != nil {
		cfg.AssetCache.Enable = *raw.AssetCache.Enable
	}
	if raw.AssetCache.TTLSeconds > 0 {
		cfg.AssetCache.TTL = time.Duration(raw.AssetCache.TTLSeconds) * time.Second
	}
	cfg.AssetCache.Redis = applyRawRedisConfig(cfg.AssetCache.Redis, raw)

	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.Paths.Logs = v
	}

	normalizeAppConfig(cfg)
}

func applyRawSourceConfig(current SourceConfig, raw rawAppConfig) SourceConfig {
	cfg := current
	if v := strings.TrimSpace(raw.Source.URL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(raw.Source.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(raw.WPAPIURL); v != "" {
		cfg.BaseURL = v
	}
	if raw.Source.PerPage != 0 {
		cfg.PageSize = raw.Source.PerPage
	}
	if raw.Source.PageSize != 0 {
		cfg.PageSize = raw.Source.PageSize
	}
	if raw.Source.MaxPages != nil {
		cfg.MaxPages = *raw.Source.MaxPages
	}
	if v := strings.TrimSpace(raw.Source.Lang); v != "" {
		cfg.Lang = v
	}
	if v := strings.TrimSpace(raw.Source.UserAgent); v != "" {
		cfg.UserAgent = v
	}
	if raw.Source.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.Source.TimeoutSeconds) * time.Second
	}
	return cfg
}

func applyRawDatabaseConfig(current DatabaseRuntimeConfig, raw rawAppConfig) DatabaseRuntimeConfig {
	cfg := current
	db := raw.Store.Database

	if v := strings.TrimSpace(db.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(db.URL); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(db.Host); v != "" {
		cfg.Host = v
	}
	if db.Port != 0 {
		cfg.Port = db.Port
	}
	if v := strings.TrimSpace(db.Username); v != "" {
		cfg.User = v
	}
	if v := strings.TrimSpace(db.User); v != "" {
		cfg.User = v
	}
	if v := strings.TrimSpace(db.Password); v != "" {
		cfg.Password = v
	}
	if v := strings.TrimSpace(db.DBName); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(db.Name); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(db.Charset); v != "" {
		cfg.Charset = v
	}
	if db.ParseTime != nil {
		cfg.ParseTime = *db.ParseTime
	}
	if v := strings.TrimSpace(db.Loc); v != "" {
		cfg.Loc = v
	}
	if db.Params != nil {
		cfg.Params = copyStringMap(db.Params)
	}
	return cfg
}

func applyRawMongoConfig(current MongoRuntimeConfig, raw rawAppConfig) MongoRuntimeConfig {
	cfg := current
	m := raw.Store.Mongo
	if v := strings.TrimSpace(m.URI); v != "" {
		cfg.URI = v
	}
	if v := strings.TrimSpace(raw.MongoURI); v != "" {
		cfg.URI = v
	}
	if v := strings.TrimSpace(m.Database); v != "" {
		cfg.Database = v
	}
	if v := strings.TrimSpace(m.Collection); v != "" {
		cfg.Collection = v
	}
	if v := strings.TrimSpace(m.Bucket); v != "" {
		cfg.Bucket = v
	}
	return cfg
}

func applyRawAssetsConfig(current AssetsConfig, raw rawAssetsConfig) AssetsConfig {
	cfg := current
	if v := strings.TrimSpace(raw.Backend); v != "" {
		cfg.Backend = v
	}
	if v := strings.TrimSpace(raw.LocalDir); v != "" {
		cfg.LocalDir = v
	}
	if v := strings.TrimSpace(raw.PublicBaseURL); v != "" {
		cfg.PublicBaseURL = v
	}
	if raw.MaxBytes != 0 {
		cfg.MaxBytes = raw.MaxBytes
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}

	s3 := cfg.S3
	if v := strings.TrimSpace(raw.S3.Endpoint); v != "" {
		s3.Endpoint = v
	}
	if v := strings.TrimSpace(raw.S3.Region); v != "" {
		s3.Region = v
	}
	if v := strings.TrimSpace(raw.S3.Bucket); v != "" {
		s3.Bucket = v
	}
	if v := strings.TrimSpace(raw.S3.AccessKeyID); v != "" {
		s3.AccessKeyID = v
	}
	if v := strings.TrimSpace(raw.S3.SecretAccessKey); v != "" {
		s3.SecretAccessKey = v
	}
	if v := strings.TrimSpace(raw.S3.Prefix); v != "" {
		s3.Prefix = v
	}
	if v := strings.TrimSpace(raw.S3.CustomDomain); v != "" {
		s3.CustomDomain = v
	}
	if raw.S3.PathStyle {
		s3.PathStyle = true
	}
	cfg.S3 = s3
	return cfg
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	cfg := current
	r := raw.AssetCache.Redis

	if v := strings.TrimSpace(r.URL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(r.Host); v != "" {
		cfg.Host = v
	}
	if r.Port != 0 {
		cfg.Port = r.Port
	}
	if v := strings.TrimSpace(r.Username); v != "" {
		cfg.Username = v
	}
	if v := strings.TrimSpace(r.Password); v != "" {
		cfg.Password = v
	}
	if r.DB != nil {
		cfg.DB = *r.DB
	}
	if r.TLS != nil {
		cfg.TLS = *r.TLS
	}
	if v := strings.TrimSpace(r.Scheme); v != "" {
		cfg.Scheme = v
	}
	if r.Params != nil {
		cfg.Params = copyStringMap(r.Params)
	}
	return cfg
}

// applyEnvOverrides lets the environment win over the file, the way the
// migration scripts are usually invoked from CI.
func applyEnvOverrides(cfg *AppConfig, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvSourceURL)); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvDefaultLocale)); v != "" {
		cfg.Locale = v
	}
	if v := strings.TrimSpace(getenv(EnvLogDir)); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(getenv(EnvDSN)); v != "" {
		cfg.Store.Database.DSN = v
	}
	if v := strings.TrimSpace(getenv(EnvMongoURI)); v != "" {
		cfg.Store.Mongo.URI = v
	}
	if v := strings.TrimSpace(getenv(EnvRedisURL)); v != "" {
		cfg.AssetCache.Redis.URL = v
	}
	if v := strings.TrimSpace(getenv(EnvS3Endpoint)); v != "" {
		cfg.Assets.S3.Endpoint = v
	}
	if v := strings.TrimSpace(getenv(EnvS3Bucket)); v != "" {
		cfg.Assets.S3.Bucket = v
	}
	if v := strings.TrimSpace(getenv(EnvS3AccessKey)); v != "" {
		cfg.Assets.S3.AccessKeyID = v
	}
	if v := strings.TrimSpace(getenv(EnvS3SecretKey)); v != "" {
		cfg.Assets.S3.SecretAccessKey = v
	}
	normalizeAppConfig(cfg)
}

func (c *AppConfig) IsDev() bool {
	return c.Env == defaultEnv
}

// LogDir returns the resolved log directory.
func (c *AppConfig) LogDir() string {
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

// AssetDir returns the resolved local asset directory.
func (c *AppConfig) AssetDir() string {
	return ResolveRuntimePath(c.Assets.LocalDir, defaultAssetLocalDir)
}
