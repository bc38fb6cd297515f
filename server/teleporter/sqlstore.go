package teleporter

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its configuration in package state.
var migrateMu sync.Mutex

// Drivers supported by OpenSQLStore.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLStore is a Store backed by SQLite or PostgreSQL.
type SQLStore struct {
	db       *sql.DB
	postgres bool
}

// OpenSQLStore connects to the database described by driver and dsn and
// applies pending migrations. For SQLite, dsn is the path of the database
// file.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var sqlDriver, dialect string
	switch driver {
	case DriverSQLite:
		sqlDriver, dialect = "sqlite", "sqlite3"
	case DriverPostgres:
		sqlDriver, dialect = "pgx", "postgres"
	default:
		return nil, fmt.Errorf("unsupported teleporter database driver %q", driver)
	}
	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open teleporter database: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping teleporter database: %w", err)
	}
	if err := migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLStore{db: db, postgres: driver == DriverPostgres}, nil
}

func migrate(ctx context.Context, db *sql.DB, dialect string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to the $n form used by PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const selectColumns = `SELECT id, name, planet, x, y, z, cross_planet FROM teleporters`

type scanner interface {
	Scan(dest ...any) error
}

func scanTeleporter(row scanner) (Teleporter, error) {
	var (
		t           Teleporter
		id, planet  string
		x, y, z     int
		crossPlanet bool
	)
	if err := row.Scan(&id, &t.Name, &planet, &x, &y, &z, &crossPlanet); err != nil {
		return Teleporter{}, err
	}
	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return Teleporter{}, fmt.Errorf("decode id: %w", err)
	}
	if t.Planet, err = uuid.Parse(planet); err != nil {
		return Teleporter{}, fmt.Errorf("decode planet: %w", err)
	}
	t.Position, t.CrossPlanet = cube.Pos{x, y, z}, crossPlanet
	return t, nil
}

func (s *SQLStore) one(query string, args ...any) (Teleporter, error) {
	t, err := scanTeleporter(s.db.QueryRow(s.rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Teleporter{}, ErrNotFound
	} else if err != nil {
		return Teleporter{}, fmt.Errorf("read teleporter: %w", err)
	}
	return t, nil
}

// Get ...
func (s *SQLStore) Get(id uuid.UUID) (Teleporter, error) {
	return s.one(selectColumns+` WHERE id = ?`, id.String())
}

// At ...
func (s *SQLStore) At(planet uuid.UUID, pos cube.Pos) (Teleporter, error) {
	return s.one(selectColumns+` WHERE planet = ? AND x = ? AND y = ? AND z = ?`, planet.String(), pos[0], pos[1], pos[2])
}

// Put ...
func (s *SQLStore) Put(t Teleporter) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var owner string
	err = tx.QueryRow(s.rebind(`SELECT id FROM teleporters WHERE planet = ? AND x = ? AND y = ? AND z = ?`),
		t.Planet.String(), t.Position[0], t.Position[1], t.Position[2]).Scan(&owner)
	switch {
	case err == nil && owner != t.ID.String():
		return ErrOccupied
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("read position: %w", err)
	}
	if _, err := tx.Exec(s.rebind(`DELETE FROM teleporters WHERE id = ?`), t.ID.String()); err != nil {
		return fmt.Errorf("replace teleporter: %w", err)
	}
	_, err = tx.Exec(s.rebind(`INSERT INTO teleporters (id, name, planet, x, y, z, cross_planet) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		t.ID.String(), t.Name, t.Planet.String(), t.Position[0], t.Position[1], t.Position[2], t.CrossPlanet)
	if err != nil {
		return fmt.Errorf("write teleporter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete ...
func (s *SQLStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(s.rebind(`DELETE FROM teleporters WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("delete teleporter: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// All ...
func (s *SQLStore) All() ([]Teleporter, error) {
	rows, err := s.db.Query(selectColumns)
	if err != nil {
		return nil, fmt.Errorf("list teleporters: %w", err)
	}
	defer rows.Close()

	var all []Teleporter
	for rows.Next() {
		t, err := scanTeleporter(rows)
		if err != nil {
			return nil, fmt.Errorf("read teleporter: %w", err)
		}
		all = append(all, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teleporters: %w", err)
	}
	return all, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
