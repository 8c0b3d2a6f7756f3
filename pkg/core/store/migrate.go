package store

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/obslog"
	"aegis/pkg/core/settings"
)

// Migrate applies every pending migration under migrationsDir (a
// "file://" source path) to the database described by cfg. It is the
// schema-management counterpart of Open: called once at process startup
// before any Gateway method touches the prompts/monitor_entries/etc
// tables.
func Migrate(cfg *settings.Settings, migrationsDir string) error {
	m, err := migrate.New("file://"+migrationsDir, "postgres://"+dsnURLForm(cfg))
	if err != nil {
		return apperr.Config("store.migrate", "failed to initialize migrator", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			obslog.Info("store.migrate_no_change")
			return nil
		}
		return apperr.Config("store.migrate", "migration failed", err)
	}

	obslog.Info("store.migrate_applied")
	return nil
}

// dsnURLForm renders the postgres connection parameters as a
// user:pass@host:port/db URL tail, the form golang-migrate's postgres
// driver expects (distinct from Gateway.Open's libpq key=value DSN).
func dsnURLForm(cfg *settings.Settings) string {
	p := cfg.Postgres
	return p.User + ":" + p.Password + "@" + p.Host + ":" + p.Port + "/" + p.Database + "?sslmode=prefer"
}
