package main

import (
	"github.com/mx-space/content-migrate/internal/app"
	"github.com/mx-space/content-migrate/internal/modules/migration"
)

func main() {
	app.Execute(app.Job{
		Name:  "migrate-legal",
		Short: "Migrate WordPress pages into legal pages",
		Options: migration.Options{
			DocType:  "legalPage",
			IDPrefix: "legal-",
		},
		Load: app.WordPress("pages"),
	})
}
