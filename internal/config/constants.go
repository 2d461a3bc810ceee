package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultEnv       = "development"
	defaultLocale    = "en"
	defaultSourceURL = "https://example.com/wp-json/wp/v2"
	defaultPageSize  = 100
	defaultUserAgent = "content-migrate/1.0"
	defaultTimeout   = 30 * time.Second

	defaultStoreDriver = StoreDriverMySQL
	defaultDBHost      = "127.0.0.1"
	defaultDBPort      = 3306
	defaultDBUser      = "root"
	defaultDBPassword  = "password"
	defaultDBName      = "content"
	defaultDBCharset   = "utf8mb4"
	defaultDBLoc       = "Local"

	defaultMongoURI        = "mongodb://127.0.0.1:27017"
	defaultMongoDatabase   = "content"
	defaultMongoCollection = "documents"
	defaultMongoBucket     = "assets"

	defaultRedisHost = "localhost"
	defaultRedisPort = 6379
	defaultRedisDB   = 0
	defaultCacheTTL  = 7 * 24 * time.Hour

	defaultAssetBackend  = AssetBackendLocal
	defaultAssetLocalDir = "assets"
	defaultAssetMaxBytes = 25 << 20
	defaultAssetTimeout  = 45 * time.Second
	defaultS3Region      = "auto"
)

// Store drivers.
const (
	StoreDriverMySQL = "mysql"
	StoreDriverMongo = "mongo"
)

// Asset backends. GridFS is only valid together with the mongo store.
const (
	AssetBackendS3     = "s3"
	AssetBackendLocal  = "local"
	AssetBackendGridFS = "gridfs"
)

// Environment variables that override the config file.
const (
	EnvSourceURL     = "MIGRATE_SOURCE_URL"
	EnvDefaultLocale = "MIGRATE_DEFAULT_LOCALE"
	EnvLogDir        = "MIGRATE_LOG_DIR"
	EnvDSN           = "MIGRATE_DSN"
	EnvMongoURI      = "MIGRATE_MONGO_URI"
	EnvRedisURL      = "MIGRATE_REDIS_URL"
	EnvS3Endpoint    = "MIGRATE_S3_ENDPOINT"
	EnvS3Bucket      = "MIGRATE_S3_BUCKET"
	EnvS3AccessKey   = "MIGRATE_S3_ACCESS_KEY_ID"
	EnvS3SecretKey   = "MIGRATE_S3_SECRET_ACCESS_KEY"
)
