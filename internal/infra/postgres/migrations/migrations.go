package migrations

import (
	_ "embed"

	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_games.sql
var createGamesSQL string

//go:embed 0002_create_completions.sql
var createCompletionsSQL string

var Migrations = migrate.NewMigrations()
