package main

import (
	"github.com/mx-space/content-migrate/internal/app"
	"github.com/mx-space/content-migrate/internal/modules/migration"
)

func main() {
	app.Execute(app.Job{
		Name:  "migrate-support",
		Short: "Migrate WordPress posts into support articles",
		Options: migration.Options{
			DocType:  "supportArticle",
			IDPrefix: "support-",
			WithTags: true,
		},
		Load: app.WordPress("posts"),
	})
}
