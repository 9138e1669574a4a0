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

// Store wraps a SQLite database with methods for analysis templates, the
// job bank, and completed assessments.
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
		dsn = filepath.Join(dataDir, "jobquest.db")
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

		// Check if already applied.
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

// --- Analysis templates ---

// UpsertTemplate inserts or replaces an authored template. Used by seeding,
// which must be safe to re-run.
func (s *Store) UpsertTemplate(code, record string) error {
	_, err := s.db.Exec(`
		INSERT INTO analysis_templates (code, record, created_at) VALUES (?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET record = excluded.record`,
		code, record, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetTemplate(code string) (AnalysisTemplate, error) {
	var t AnalysisTemplate
	var createdAt string
	err := s.db.QueryRow(
		"SELECT code, record, created_at FROM analysis_templates WHERE code = ?", code,
	).Scan(&t.Code, &t.Record, &createdAt)
	if err == sql.ErrNoRows {
		return AnalysisTemplate{}, ErrNotFound
	}
	if err != nil {
		return AnalysisTemplate{}, err
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		t.CreatedAt = ts
	}
	return t, nil
}

func (s *Store) CountTemplates() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM analysis_templates").Scan(&n)
	return n, err
}

// --- Job bank ---

func (s *Store) UpsertJob(j JobPosting) error {
	_, err := s.db.Exec(`
		INSERT INTO job_bank (id, title, company, location, match_score, reasoning, url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			company = excluded.company,
			location = excluded.location,
			match_score = excluded.match_score,
			reasoning = excluded.reasoning,
			url = excluded.url`,
		j.ID, j.Title, j.Company, j.Location, j.MatchScore, j.Reasoning, j.URL,
	)
	return err
}

func (s *Store) GetJob(id int) (JobPosting, error) {
	var j JobPosting
	err := s.db.QueryRow(`
		SELECT id, title, company, location, match_score, reasoning, url
		FROM job_bank WHERE id = ?`, id,
	).Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.MatchScore, &j.Reasoning, &j.URL)
	if err == sql.ErrNoRows {
		return JobPosting{}, ErrNotFound
	}
	return j, err
}

func (s *Store) ListJobs() ([]JobPosting, error) {
	rows, err := s.db.Query(`
		SELECT id, title, company, location, match_score, reasoning, url
		FROM job_bank ORDER BY match_score DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []JobPosting
	for rows.Next() {
		var j JobPosting
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.MatchScore, &j.Reasoning, &j.URL); err != nil {
			return nil, err
		}
		results = append(results, j)
	}
	return results, rows.Err()
}

func (s *Store) CountJobs() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM job_bank").Scan(&n)
	return n, err
}

// --- Assessments ---

func (s *Store) SaveAssessment(a Assessment) error {
	_, err := s.db.Exec(`
		INSERT INTO assessments (id, answers, profile, recommendations, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Answers, a.Profile, a.Recommendations, a.CreatedAt,
	)
	return err
}

func (s *Store) GetAssessment(id string) (Assessment, error) {
	var a Assessment
	err := s.db.QueryRow(`
		SELECT id, answers, profile, recommendations, created_at
		FROM assessments WHERE id = ?`, id,
	).Scan(&a.ID, &a.Answers, &a.Profile, &a.Recommendations, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return Assessment{}, ErrNotFound
	}
	return a, err
}

func (s *Store) ListRecentAssessments(limit int) ([]Assessment, error) {
	rows, err := s.db.Query(`
		SELECT id, answers, profile, recommendations, created_at
		FROM assessments ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Assessment
	for rows.Next() {
		var a Assessment
		if err := rows.Scan(&a.ID, &a.Answers, &a.Profile, &a.Recommendations, &a.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}
