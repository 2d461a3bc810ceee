package main

import (
	"strings"

	"github.com/mx-space/content-migrate/internal/app"
	"github.com/mx-space/content-migrate/internal/config"
	"github.com/mx-space/content-migrate/internal/modules/migration"
)

func main() {
	app.Execute(app.Job{
		Name:  "migrate-static",
		Short: "Migrate markdown files with front matter into documents",
		Options: migration.Options{
			DocType:  "page",
			IDPrefix: "static-",
			WithTags: true,
		},
		Load: app.StaticDir(),
		Configure: func(cfg *config.AppConfig, job *app.Job) {
			if kind := strings.TrimSpace(cfg.Static.Kind); kind != "" {
				job.Options.DocType = kind
			}
		},
	})
}
