// Package sqlitestore is a lookup.Store backed by SQLite through the pure-Go
// modernc.org/sqlite driver. Results match lookup.MemoryStore for the same
// fixtures, including ordering and license search semantics.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/goliatone/go-formflow/components/lookup"
)

//go:embed schema.sql
var schema string

// Store implements lookup.Store over a SQLite database.
type Store struct {
	db  *sql.DB
	dsn string
}

var _ lookup.Store = (*Store)(nil)

// Open connects to dsn and applies the schema. In-memory databases are
// pinned to a single connection so every query sees the same data.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlitestore: dsn is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open: %w", err)
	}
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlitestore: apply schema: %w", err)
	}
	return &Store{db: db, dsn: dsn}, nil
}

// OpenSeeded opens dsn and seeds it with fixtures when it holds no provinces.
func OpenSeeded(ctx context.Context, dsn string, fixtures lookup.Fixtures) (*Store, error) {
	store, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	count, err := store.count(ctx, "provinces")
	if err == nil && count == 0 {
		err = store.Seed(ctx, fixtures)
	}
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DSN returns the data source name the store was opened with.
func (s *Store) DSN() string {
	return s.dsn
}

// Seed replaces every table's content with fixtures in one transaction.
func (s *Store) Seed(ctx context.Context, fixtures lookup.Fixtures) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore: begin seed: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"provinces", "districts", "communes", "villages", "licenses"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("sqlitestore: clear %s: %w", table, err)
		}
	}
	for _, p := range fixtures.Provinces {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO provinces (code, name_en, name_kh) VALUES (?, ?, ?)`,
			p.Code, p.NameEN, p.NameKH); err != nil {
			return fmt.Errorf("sqlitestore: insert province %s: %w", p.Code, err)
		}
	}
	for _, d := range fixtures.Districts {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO districts (code, province_code, name_en, name_kh) VALUES (?, ?, ?, ?)`,
			d.Code, d.ProvinceCode, d.NameEN, d.NameKH); err != nil {
			return fmt.Errorf("sqlitestore: insert district %s: %w", d.Code, err)
		}
	}
	for _, c := range fixtures.Communes {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO communes (code, province_code, district_code, name_en, name_kh) VALUES (?, ?, ?, ?, ?)`,
			c.Code, c.ProvinceCode, c.DistrictCode, c.NameEN, c.NameKH); err != nil {
			return fmt.Errorf("sqlitestore: insert commune %s: %w", c.Code, err)
		}
	}
	for _, v := range fixtures.Villages {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO villages (code, province_code, district_code, commune_code, name_en, name_kh) VALUES (?, ?, ?, ?, ?, ?)`,
			v.Code, v.ProvinceCode, v.DistrictCode, v.CommuneCode, v.NameEN, v.NameKH); err != nil {
			return fmt.Errorf("sqlitestore: insert village %s: %w", v.Code, err)
		}
	}
	for _, l := range fixtures.Licenses {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO licenses (id, name, code, name_folded, code_folded) VALUES (?, ?, ?, ?, ?)`,
			l.ID, l.Name, l.Code, strings.ToLower(l.Name), strings.ToLower(l.Code)); err != nil {
			return fmt.Errorf("sqlitestore: insert license %s: %w", l.Code, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlitestore: commit seed: %w", err)
	}
	return nil
}

func (s *Store) Provinces(ctx context.Context) ([]lookup.Province, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name_en, name_kh FROM provinces ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: query provinces: %w", err)
	}
	return collect(rows, func(p *lookup.Province) []any {
		return []any{&p.Code, &p.NameEN, &p.NameKH}
	})
}

func (s *Store) Districts(ctx context.Context, provinceCode string) ([]lookup.District, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, province_code, name_en, name_kh FROM districts WHERE province_code = ? ORDER BY seq`,
		provinceCode)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: query districts: %w", err)
	}
	return collect(rows, func(d *lookup.District) []any {
		return []any{&d.Code, &d.ProvinceCode, &d.NameEN, &d.NameKH}
	})
}

func (s *Store) Communes(ctx context.Context, districtCode string) ([]lookup.Commune, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, province_code, district_code, name_en, name_kh FROM communes WHERE district_code = ? ORDER BY seq`,
		districtCode)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: query communes: %w", err)
	}
	return collect(rows, func(c *lookup.Commune) []any {
		return []any{&c.Code, &c.ProvinceCode, &c.DistrictCode, &c.NameEN, &c.NameKH}
	})
}

func (s *Store) Villages(ctx context.Context, communeCode string) ([]lookup.Village, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, province_code, district_code, commune_code, name_en, name_kh FROM villages WHERE commune_code = ? ORDER BY seq`,
		communeCode)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: query villages: %w", err)
	}
	return collect(rows, func(v *lookup.Village) []any {
		return []any{&v.Code, &v.ProvinceCode, &v.DistrictCode, &v.CommuneCode, &v.NameEN, &v.NameKH}
	})
}

// SearchLicenses compares against columns folded with strings.ToLower at
// seed time, since SQLite's lower() only folds ASCII.
func (s *Store) SearchLicenses(ctx context.Context, query string, limit int) ([]lookup.License, error) {
	if limit <= 0 {
		limit = -1
	}
	q := strings.ToLower(query)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, code FROM licenses
		 WHERE instr(name_folded, ?) > 0 OR instr(code_folded, ?) > 0
		 ORDER BY seq LIMIT ?`,
		q, q, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: search licenses: %w", err)
	}
	return collect(rows, func(l *lookup.License) []any {
		return []any{&l.ID, &l.Name, &l.Code}
	})
}

func (s *Store) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlitestore: count %s: %w", table, err)
	}
	return n, nil
}

func collect[T any](rows *sql.Rows, fields func(*T) []any) ([]T, error) {
	defer func() { _ = rows.Close() }()
	out := []T{}
	for rows.Next() {
		var item T
		if err := rows.Scan(fields(&item)...); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitestore: rows: %w", err)
	}
	return out, nil
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
