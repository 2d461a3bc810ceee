package app

import (
	"strings"
	"time"

	"github.com/mx-space/content-migrate/internal/config"
	"github.com/mx-space/content-migrate/internal/pkg/nativelog"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// flagOverrides are the command line values that win over the config file.
type flagOverrides struct {
	configPath string
	dryRun     bool
	locale     string
	sourceURL  string
}

func (f flagOverrides) apply(cfg *config.AppConfig) {
	if f.dryRun {
		cfg.DryRun = true
	}
	if v := strings.TrimSpace(f.locale); v != "" {
		cfg.Locale = v
	}
	if v := strings.TrimRight(strings.TrimSpace(f.sourceURL), "/"); v != "" {
		cfg.Source.BaseURL = v
	}
}

// newLogger builds the file-backed logger, falling back to zap's production
// logger when the log directory is unusable.
func newLogger(cfg *config.AppConfig, name string) *zap.Logger {
	logger, err := nativelog.NewZapLogger(cfg.LogDir(), name, cfg.IsDev())
	if err != nil {
		logger, _ = zap.NewProduction()
		logger.Warn("native log pipeline unavailable, fallback to zap production logger", zap.Error(err))
	}
	return logger
}
