package app

import (
	"context"

	"github.com/mx-space/content-migrate/internal/modules/source"
	"github.com/mx-space/content-migrate/internal/modules/source/static"
	"github.com/mx-space/content-migrate/internal/modules/source/wordpress"
)

// WordPress loads every item of a REST collection ("posts", "pages").
func WordPress(kind string) Loader {
	return func(ctx context.Context, a *App) ([]source.Item, string, error) {
		client := wordpress.NewClient(a.cfg.Source, a.logger)
		return client.FetchAllOfKind(ctx, kind), client.SiteURL(), nil
	}
}

// StaticDir loads markdown documents from the configured static.dir.
func StaticDir() Loader {
	return func(_ context.Context, a *App) ([]source.Item, string, error) {
		items, err := static.NewSource(a.cfg.Static.Dir, a.logger).Items()
		return items, a.cfg.Static.BaseURL, err
	}
}
