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

	"github.com/psyra-labs/psyra-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/psyra-labs/psyra-cli/internal/core/domain"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.psyra/data/library.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".psyra", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "library.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// PassageStore returns a PassageStore interface backed by this store.
func (s *Store) PassageStore() driven.PassageStore {
	return &passageStore{store: s}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
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

// ==================== Passage Store ====================

// passageStore implements driven.PassageStore.
type passageStore struct {
	store *Store
}

var _ driven.PassageStore = (*passageStore)(nil)

// SavePassages stores passages in one transaction.
func (s *passageStore) SavePassages(ctx context.Context, passages []domain.Passage) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (chunk_id, book_name, book_type, section_title, topic, page_number, seq, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			book_name = excluded.book_name,
			book_type = excluded.book_type,
			section_title = excluded.section_title,
			topic = excluded.topic,
			page_number = excluded.page_number,
			seq = excluded.seq,
			content = excluded.content
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range passages {
		if p.ChunkID == "" {
			return fmt.Errorf("%w: passage without chunk ID", domain.ErrInvalidInput)
		}
		if _, err := stmt.ExecContext(ctx, p.ChunkID, p.BookName, p.BookType,
			p.SectionTitle, p.Topic, p.PageNumber, p.Sequence(), p.Text); err != nil {
			return fmt.Errorf("saving passage %s: %w", p.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetPassage retrieves a passage by chunk ID.
func (s *passageStore) GetPassage(ctx context.Context, chunkID string) (*domain.Passage, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT chunk_id, book_name, book_type, section_title, topic, page_number, content
		FROM passages WHERE chunk_id = ?
	`, chunkID)

	var p domain.Passage
	if err := row.Scan(&p.ChunkID, &p.BookName, &p.BookType,
		&p.SectionTitle, &p.Topic, &p.PageNumber, &p.Text); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning passage: %w", err)
	}

	return &p, nil
}

// ListPassages returns all passages for a book, ordered by sequence.
func (s *passageStore) ListPassages(ctx context.Context, bookName string) ([]domain.Passage, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT chunk_id, book_name, book_type, section_title, topic, page_number, content
		FROM passages WHERE book_name = ?
		ORDER BY seq
	`, bookName)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	return scanPassages(rows)
}

// ListAll returns every stored passage, ordered by book and sequence.
func (s *passageStore) ListAll(ctx context.Context) ([]domain.Passage, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT chunk_id, book_name, book_type, section_title, topic, page_number, content
		FROM passages
		ORDER BY book_name, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	return scanPassages(rows)
}

// DeleteBook removes all passages for a book.
func (s *passageStore) DeleteBook(ctx context.Context, bookName string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM passages WHERE book_name = ?", bookName)
	if err != nil {
		return fmt.Errorf("deleting passages for %s: %w", bookName, err)
	}
	return nil
}

// scanPassages scans multiple passage rows.
func scanPassages(rows *sql.Rows) ([]domain.Passage, error) {
	var passages []domain.Passage //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.Passage
		if err := rows.Scan(&p.ChunkID, &p.BookName, &p.BookType,
			&p.SectionTitle, &p.Topic, &p.PageNumber, &p.Text); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		passages = append(passages, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}

	return passages, nil
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// SaveReport records the outcome of one ingest run.
func (s *runStore) SaveReport(ctx context.Context, report domain.IngestReport) error {
	if report.RunID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (run_id, book_name, book_type, pages, paragraphs, passages, font_threshold, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, report.RunID, report.BookName, report.BookType, report.Pages,
		report.Paragraphs, report.Passages, report.FontThreshold, report.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving ingest run: %w", err)
	}
	return nil
}

// ListReports returns all recorded runs, newest first.
func (s *runStore) ListReports(ctx context.Context) ([]domain.IngestReport, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, book_name, book_type, pages, paragraphs, passages, font_threshold, created_at
		FROM ingest_runs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying ingest runs: %w", err)
	}
	defer rows.Close()

	var reports []domain.IngestReport //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.IngestReport
		var createdAt sql.NullTime
		if err := rows.Scan(&r.RunID, &r.BookName, &r.BookType, &r.Pages,
			&r.Paragraphs, &r.Passages, &r.FontThreshold, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning ingest run: %w", err)
		}
		if createdAt.Valid {
			r.CreatedAt = createdAt.Time
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingest runs: %w", err)
	}

	return reports, nil
}
