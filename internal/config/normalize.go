package config

import "strings"

func normalizeAppConfig(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.Locale = strings.TrimSpace(cfg.Locale)
	if cfg.Locale == "" {
		cfg.Locale = defaultLocale
	}
	cfg.Source = normalizeSourceConfig(cfg.Source)
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if cfg.Store.Driver == "mysql8" || cfg.Store.Driver == "gorm" {
		cfg.Store.Driver = StoreDriverMySQL
	}
	if cfg.Store.Driver == "mongodb" {
		cfg.Store.Driver = StoreDriverMongo
	}
	cfg.Store.Database = normalizeDatabaseConfig(cfg.Store.Database)
	cfg.Assets = normalizeAssetsConfig(cfg.Assets)
	cfg.AssetCache.Redis = normalizeRedisConfig(cfg.AssetCache.Redis)
	cfg.Paths.Logs = strings.TrimSpace(cfg.Paths.Logs)
}

func normalizeSourceConfig(cfg SourceConfig) SourceConfig {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultSourceURL
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = defaultPageSize
	}
	cfg.Lang = strings.TrimSpace(cfg.Lang)
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

func normalizeAssetsConfig(cfg AssetsConfig) AssetsConfig {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend == "" {
		cfg.Backend = defaultAssetBackend
	}
	cfg.LocalDir = strings.TrimSpace(cfg.LocalDir)
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultAssetTimeout
	}
	cfg.S3.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.S3.Endpoint), "/")
	cfg.S3.Prefix = strings.Trim(strings.TrimSpace(cfg.S3.Prefix), "/")
	cfg.S3.CustomDomain = strings.TrimRight(strings.TrimSpace(cfg.S3.CustomDomain), "/")
	if strings.TrimSpace(cfg.S3.Region) == "" {
		cfg.S3.Region = defaultS3Region
	}
	return cfg
}

func normalizeDatabaseConfig(cfg DatabaseRuntimeConfig) DatabaseRuntimeConfig {
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.Password = strings.TrimSpace(cfg.Password)
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.Charset = strings.TrimSpace(cfg.Charset)
	cfg.Loc = strings.TrimSpace(cfg.Loc)

	if cfg.Host == "" {
		cfg.Host = defaultDBHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultDBPort
	}
	if cfg.User == "" {
		cfg.User = defaultDBUser
	}
	if cfg.Password == "" {
		cfg.Password = defaultDBPassword
	}
	if cfg.Name == "" {
		cfg.Name = defaultDBName
	}
	if cfg.Charset == "" {
		cfg.Charset = defaultDBCharset
	}
	if cfg.Loc == "" {
		cfg.Loc = defaultDBLoc
	}
	if cfg.Params != nil {
		cfg.Params = copyStringMap(cfg.Params)
	}
	return cfg
}

func normalizeRedisConfig(cfg RedisRuntimeConfig) RedisRuntimeConfig {
	cfg.URL = normalizeRedisRawURL(cfg.URL)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.Password = strings.TrimSpace(cfg.Password)
	cfg.Scheme = strings.ToLower(strings.TrimSpace(cfg.Scheme))

	if cfg.Host == "" && cfg.URL == "" {
		cfg.Host = defaultRedisHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultRedisPort
	}
	if cfg.DB < 0 {
		cfg.DB = defaultRedisDB
	}
	if cfg.Scheme != "redis" && cfg.Scheme != "rediss" {
		if cfg.TLS {
			cfg.Scheme = "rediss"
		} else {
			cfg.Scheme = "redis"
		}
	}
	if cfg.Params != nil {
		cfg.Params = copyStringMap(cfg.Params)
	}
	return cfg
}

func normalizeRedisRawURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func copyStringMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
