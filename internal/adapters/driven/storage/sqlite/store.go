package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/usenet-tools/nntpidx/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
)

// Store is a SQLite-backed Index Store and Scheduler Store for one
// newsgroup database, per spec.md §4.5/§6's "one database per newsgroup"
// rule.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.IndexStore = (*Store)(nil)

// DBPath derives the per-group database file path from spec.md §6's
// "<group_name>.<store-ext>" naming rule.
func DBPath(dataDir, group string) string {
	return filepath.Join(dataDir, group+".db")
}

// NewStore opens (creating if absent) the SQLite database at dbPath and
// applies any pending migrations.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}

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

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// EnsureSchema re-applies migrations. Idempotent: a store opened via
// NewStore has already applied them, so this is a no-op in the common case.
func (s *Store) EnsureSchema(_ context.Context) error {
	return s.migrate(migrations.FS)
}

func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
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
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
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
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// UpsertBatch inserts rows inside one transaction with conflict-ignore
// semantics on (group_name, article_num), per spec.md §4.5. Never called
// from worker goroutines directly: the orchestrator drains chunk results
// into this from its single writer.
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(group_name, article_num) DO NOTHING
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

// Query returns rows matching filter, ordered by article_num ascending,
// per spec.md §4.5.
func (s *Store) Query(ctx context.Context, filter domain.Filter) ([]domain.OverviewRow, error) {
	where, args := filterWhereClause(filter)

	query := fmt.Sprintf(`
		SELECT group_name, article_num, subject, from_addr, date_raw, date_unix, message_id, bytes_len, line_count, xref
		FROM articles
		WHERE %s
		ORDER BY article_num ASC
	`, where)

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
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
// per the query options described in spec.md §4.5.
func filterWhereClause(filter domain.Filter) (string, []any) {
	clauses := []string{"group_name = ?"}
	args := []any{filter.GroupName}

	if filter.SubjectLike != "" {
		clauses = append(clauses, "subject LIKE ? COLLATE NOCASE")
		args = append(args, "%"+filter.SubjectLike+"%")
	}

	if filter.FromLike != "" {
		clauses = append(clauses, "from_addr LIKE ? COLLATE NOCASE")
		args = append(args, "%"+filter.FromLike+"%")
	}

	if filter.NotSubject != "" {
		for _, term := range strings.Split(filter.NotSubject, "|") {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			clauses = append(clauses, "subject NOT LIKE ? COLLATE NOCASE")
			args = append(args, "%"+term+"%")
		}
	}

	if filter.DateFromUnix != nil {
		clauses = append(clauses, "date_unix >= ?")
		args = append(args, *filter.DateFromUnix)
	}

	if filter.DateToUnix != nil {
		clauses = append(clauses, "date_unix <= ?")
		args = append(args, *filter.DateToUnix)
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
