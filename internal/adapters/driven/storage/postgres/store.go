// Package postgres implements the driven.IndexStore and driven.SchedulerStore
// ports against a shared Postgres database, as an alternative to the
// one-database-per-group SQLite backend when store.driver = postgres.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "github.com/lib/pq" // Postgres driver

	"github.com/usenet-tools/nntpidx/internal/adapters/driven/storage/postgres/migrations"
	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
)

var _ driven.IndexStore = (*Store)(nil)

// Store is a Postgres-backed Index Store and Scheduler Store, shared across
// all groups (distinguished by the group_name column rather than by file).
type Store struct {
	db  *sql.DB
	dsn string
}

// NewStore opens dsn and applies any pending migrations.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{db: db, dsn: dsn}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// EnsureSchema re-applies migrations.
func (s *Store) EnsureSchema(_ context.Context) error {
	return s.migrate(migrations.FS)
}

func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// UpsertBatch inserts rows inside one transaction with conflict-ignore
// semantics on (group_name, article_num).
func (s *Store) UpsertBatch(ctx context.Context, rows []domain.OverviewRow) (domain.UpsertResult, error) {
	if len(rows) == 0 {
		return domain.UpsertResult{}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.UpsertResult{}, fmt.Errorf("%w: begin tx: %v", domain.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is a no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (group_name, article_num, subject, from_addr, date_raw, date_unix, message_id, bytes_len, line_count, xref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (group_name, article_num) DO NOTHING
	`)
	if err != nil {
		return domain.UpsertResult{}, fmt.Errorf("%w: prepare upsert: %v", domain.ErrStore, err)
	}
	defer stmt.Close()

	var result domain.UpsertResult
	for _, row := range rows {
		res, err := stmt.ExecContext(ctx, row.GroupName, row.ArticleNum, row.Subject, row.FromAddr,
			row.DateRaw, nullableInt64(row.DateUnix), row.MessageID, nullableUint64(row.BytesLen),
			nullableUint32(row.LineCount), nullString(row.Xref))
		if err != nil {
			return domain.UpsertResult{}, fmt.Errorf("%w: upsert row: %v", domain.ErrStore, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return domain.UpsertResult{}, fmt.Errorf("%w: rows affected: %v", domain.ErrStore, err)
		}
		if affected > 0 {
			result.Inserted++
		} else {
			result.Ignored++
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.UpsertResult{}, fmt.Errorf("%w: commit: %v", domain.ErrStore, err)
	}

	return result, nil
}

// Query returns rows matching filter, ordered by article_num ascending.
func (s *Store) Query(ctx context.Context, filter domain.Filter) ([]domain.OverviewRow, error) {
	where, args := filterWhereClause(filter)

	query := fmt.Sprintf(`
		SELECT group_name, article_num, subject, from_addr, date_raw, date_unix, message_id, bytes_len, line_count, xref
		FROM articles
		WHERE %s
		ORDER BY article_num ASC
	`, where)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query articles: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	var results []domain.OverviewRow
	for rows.Next() {
		row, err := scanOverviewRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating articles: %v", domain.ErrStore, err)
	}

	return results, nil
}

// Count returns the number of rows matching filter, without materializing them.
func (s *Store) Count(ctx context.Context, filter domain.Filter) (int, error) {
	where, args := filterWhereClause(filter)
	query := fmt.Sprintf("SELECT COUNT(*) FROM articles WHERE %s", where)

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count articles: %v", domain.ErrStore, err)
	}
	return count, nil
}

// filterWhereClause builds the WHERE clause and bind arguments for a Filter,
// using Postgres-style $N placeholders.
func filterWhereClause(filter domain.Filter) (string, []any) {
	clauses := []string{"group_name = $1"}
	args := []any{filter.GroupName}

	if filter.SubjectLike != "" {
		args = append(args, "%"+filter.SubjectLike+"%")
		clauses = append(clauses, fmt.Sprintf("subject ILIKE $%d", len(args)))
	}

	if filter.FromLike != "" {
		args = append(args, "%"+filter.FromLike+"%")
		clauses = append(clauses, fmt.Sprintf("from_addr ILIKE $%d", len(args)))
	}

	if filter.NotSubject != "" {
		for _, term := range strings.Split(filter.NotSubject, "|") {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			args = append(args, "%"+term+"%")
			clauses = append(clauses, fmt.Sprintf("subject NOT ILIKE $%d", len(args)))
		}
	}

	if filter.DateFromUnix != nil {
		args = append(args, *filter.DateFromUnix)
		clauses = append(clauses, fmt.Sprintf("date_unix >= $%d", len(args)))
	}

	if filter.DateToUnix != nil {
		args = append(args, *filter.DateToUnix)
		clauses = append(clauses, fmt.Sprintf("date_unix <= $%d", len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

func scanOverviewRow(rows *sql.Rows) (domain.OverviewRow, error) {
	var row domain.OverviewRow
	var dateUnix, bytesLen, lineCount sql.NullInt64
	var xref sql.NullString

	if err := rows.Scan(&row.GroupName, &row.ArticleNum, &row.Subject, &row.FromAddr,
		&row.DateRaw, &dateUnix, &row.MessageID, &bytesLen, &lineCount, &xref); err != nil {
		return domain.OverviewRow{}, fmt.Errorf("%w: scan article: %v", domain.ErrStore, err)
	}

	if dateUnix.Valid {
		v := dateUnix.Int64
		row.DateUnix = &v
	}
	if bytesLen.Valid {
		v := uint64(bytesLen.Int64)
		row.BytesLen = &v
	}
	if lineCount.Valid {
		v := uint32(lineCount.Int64)
		row.LineCount = &v
	}
	if xref.Valid {
		row.Xref = xref.String
	}

	return row, nil
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableUint64(v *uint64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableUint32(v *uint32) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
