package db

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Migration is one schema version with the SQL to apply and revert it.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

var migrationFile = regexp.MustCompile(`^(\d+)_(\w+)\.(up|down)\.sql$`)

// parseFilename splits "0001_kv_store.up.sql" into its version, name and
// direction.
func parseFilename(filename string) (version int, name, direction string, err error) {
	m := migrationFile.FindStringSubmatch(filename)
	if m == nil {
		return 0, "", "", fmt.Errorf("expected NNNN_name.{up,down}.sql, got %q", filename)
	}

	version, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, "", "", fmt.Errorf("version %q: %w", m[1], err)
	}
	if version == 0 {
		return 0, "", "", fmt.Errorf("version must be positive in %q", filename)
	}
	return version, m[2], m[3], nil
}

// migrator applies the migrations found in source to conn and tracks them in
// the schema_migrations table.
type migrator struct {
	conn   *sql.DB
	source fs.FS
	log    zerolog.Logger
}

func newMigrator(conn *sql.DB) *migrator {
	source, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return &migrator{
		conn:   conn,
		source: source,
		log:    log.With().Str("cmp", "migrate").Logger(),
	}
}

// load reads every migration in source, ordered by version. Each version
// needs exactly one up and one down file.
func (m *migrator) load() ([]Migration, error) {
	files, err := fs.Glob(m.source, "*.sql")
	if err != nil {
		return nil, err
	}

	byVersion := make(map[int]*Migration)
	for _, file := range files {
		version, name, direction, err := parseFilename(file)
		if err != nil {
			return nil, err
		}
		body, err := fs.ReadFile(m.source, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: name}
			byVersion[version] = mig
		}
		if mig.Name != name {
			return nil, fmt.Errorf("version %04d has two names: %q and %q", version, mig.Name, name)
		}

		target := &mig.Up
		if direction == "down" {
			target = &mig.Down
		}
		if *target != "" {
			return nil, fmt.Errorf("duplicate %s file for version %04d", direction, version)
		}
		*target = string(body)
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if mig.Up == "" || mig.Down == "" {
			return nil, fmt.Errorf("migration %04d_%s needs both an up and a down file", mig.Version, mig.Name)
		}
		migrations = append(migrations, *mig)
	}
	slices.SortFunc(migrations, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return migrations, nil
}

func (m *migrator) applied(ctx context.Context) (map[int]bool, error) {
	if _, err := m.conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	rows, err := m.conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	done := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		done[v] = true
	}
	return done, rows.Err()
}

// up applies every pending migration and returns how many ran.
func (m *migrator) up(ctx context.Context) (int, error) {
	migrations, err := m.load()
	if err != nil {
		return 0, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	ran := 0
	for _, mig := range migrations {
		if done[mig.Version] {
			continue
		}
		m.log.Debug().Int("version", mig.Version).Str("name", mig.Name).Msg("applying migration")
		err := m.inTx(ctx, mig.Up, `INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
			mig.Version, mig.Name, time.Now().UnixNano())
		if err != nil {
			return ran, fmt.Errorf("apply %04d_%s: %w", mig.Version, mig.Name, err)
		}
		ran++
	}
	return ran, nil
}

// down reverts the newest n applied migrations.
func (m *migrator) down(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("number of migrations to revert must be positive, got %d", n)
	}

	migrations, err := m.load()
	if err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}

	var revert []Migration
	for _, mig := range slices.Backward(migrations) {
		if done[mig.Version] {
			revert = append(revert, mig)
		}
	}
	if n > len(revert) {
		return fmt.Errorf("cannot revert %d migrations, only %d applied", n, len(revert))
	}

	for _, mig := range revert[:n] {
		m.log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("reverting migration")
		err := m.inTx(ctx, mig.Down, `DELETE FROM schema_migrations WHERE version = ?`, mig.Version)
		if err != nil {
			return fmt.Errorf("revert %04d_%s: %w", mig.Version, mig.Name, err)
		}
	}
	return nil
}

// inTx runs body and then the bookkeeping statement in one transaction.
func (m *migrator) inTx(ctx context.Context, body, record string, args ...any) error {
	tx, err := m.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return err
	}
	return tx.Commit()
}

// MigrateDown reverts the newest n applied migrations on conn.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	return newMigrator(conn).down(ctx, n)
}
