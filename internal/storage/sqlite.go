package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding report records.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "minute.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

const reportColumns = `id, original_filename, file_path, file_size, duration, transcription,
	language, summary, topics, decisions, action_items, status, error_message, created_at, updated_at`

// CreateReport inserts a new report row and returns its assigned id.
func (s *Store) CreateReport(r Report) (int64, error) {
	now := time.Now().UTC()
	if r.Status == "" {
		r.Status = StatusPending
	}
	res, err := s.db.Exec(`
		INSERT INTO reports (original_filename, file_path, file_size, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.OriginalFilename, r.FilePath, r.FileSize, r.Status,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetReport fetches one report by id. Returns ErrNotFound if the id is unknown.
func (s *Store) GetReport(id int64) (Report, error) {
	row := s.db.QueryRow(`SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return Report{}, ErrNotFound
	}
	return r, err
}

// ListReports returns reports ordered newest first, with skip/limit pagination.
func (s *Store) ListReports(skip, limit int) ([]Report, error) {
	rows, err := s.db.Query(`
		SELECT `+reportColumns+` FROM reports
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, skip,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// SetStatus transitions a report to the given status, refreshing updated_at.
func (s *Store) SetStatus(id int64, status string) error {
	return s.exec1(`UPDATE reports SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339), id)
}

// SaveTranscription commits a successful transcription: transcript fields are
// overwritten wholesale, error_message from a prior failed attempt is cleared
// and the status becomes "transcribed".
func (s *Store) SaveTranscription(id int64, transcription, language string, duration float64) error {
	return s.exec1(`
		UPDATE reports
		SET transcription = ?, language = ?, duration = ?, status = ?, error_message = NULL, updated_at = ?
		WHERE id = ?`,
		transcription, language, duration, StatusTranscribed,
		time.Now().UTC().Format(time.RFC3339), id,
	)
}

// SaveSummary commits a successful summarization: the four summary fields are
// overwritten, error_message is cleared and the status becomes "completed".
func (s *Store) SaveSummary(id int64, summary, topicsJSON, decisionsJSON, actionItemsJSON string) error {
	return s.exec1(`
		UPDATE reports
		SET summary = ?, topics = ?, decisions = ?, action_items = ?, status = ?, error_message = NULL, updated_at = ?
		WHERE id = ?`,
		summary, topicsJSON, decisionsJSON, actionItemsJSON, StatusCompleted,
		time.Now().UTC().Format(time.RFC3339), id,
	)
}

// MarkFailed records a stage failure, overwriting any previous error message.
// Fields written by earlier successful stages are left untouched.
func (s *Store) MarkFailed(id int64, errMsg string) error {
	return s.exec1(`UPDATE reports SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		StatusFailed, errMsg, time.Now().UTC().Format(time.RFC3339), id)
}

// DeleteReport removes a report row. Returns ErrNotFound if the id is unknown.
func (s *Store) DeleteReport(id int64) error {
	return s.exec1(`DELETE FROM reports WHERE id = ?`, id)
}

// exec1 runs a statement that must affect exactly one row, mapping zero
// affected rows to ErrNotFound.
func (s *Store) exec1(query string, args ...any) error {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (Report, error) {
	var r Report
	var duration sql.NullFloat64
	var transcription, language, summary, topics, decisions, actionItems, errMsg sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&r.ID, &r.OriginalFilename, &r.FilePath, &r.FileSize, &duration, &transcription,
		&language, &summary, &topics, &decisions, &actionItems, &r.Status, &errMsg,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return Report{}, err
	}

	r.Duration = duration.Float64
	r.Transcription = transcription.String
	r.Language = language.String
	r.Summary = summary.String
	r.Topics = topics.String
	r.Decisions = decisions.String
	r.ActionItems = actionItems.String
	r.ErrorMessage = errMsg.String

	if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Report{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if r.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Report{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return r, nil
}
