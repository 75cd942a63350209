// Package sqlite is a single-file document store for local development and tests.
// Similarity is computed in process over the caller's rows.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	domdoc "github.com/kailas-cloud/semdocs/internal/domain/document"
	"github.com/kailas-cloud/semdocs/internal/domain/match"
	"github.com/kailas-cloud/semdocs/internal/similarity"
	"github.com/kailas-cloud/semdocs/internal/vecbytes"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements usecase/ingest.Inserter and usecase/search.Matcher on SQLite.
type Store struct {
	db    *sql.DB
	newID func() string
	now   func() time.Time
}

// Open opens (or creates) semdocs.db in dataDir and runs pending migrations.
// Pass ":memory:" for an in-memory database.
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o750); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "semdocs.db")
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// One connection: an in-memory database is per-connection, and a file needs no write contention.
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode=WAL"} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: conn, newID: uuid.NewString, now: time.Now}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

// Insert stores an embedded document under a fresh id owned by owner.
func (s *Store) Insert(ctx context.Context, owner string, doc domdoc.Document) (string, error) {
	if owner == "" {
		return "", errors.New("owner is required")
	}
	if len(doc.Vector()) == 0 {
		return "", errors.New("document has no embedding")
	}

	stamped := doc.Stamp(s.newID(), owner, doc.Vector(), s.now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, owner, title, content, embedding, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		stamped.ID(), stamped.Owner(), stamped.Title(), stamped.Content(),
		vecbytes.Encode(stamped.Vector()), stamped.CreatedAt().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return stamped.ID(), nil
}

// Match scores every document owned by owner against vector and returns the best count
// at or above threshold.
func (s *Store) Match(
	ctx context.Context, owner string, vector []float32, threshold float64, count int,
) ([]match.Match, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, embedding, created_at FROM documents WHERE owner = ?`, owner)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var candidates []match.Match
	for rows.Next() {
		var (
			id, title, content string
			blob               []byte
			createdAt          int64
		)
		if err := rows.Scan(&id, &title, &content, &blob, &createdAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		emb, err := vecbytes.Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("decode embedding %s: %w", id, err)
		}
		score := similarity.Score(vector, emb)
		if score < threshold {
			continue
		}
		candidates = append(candidates, match.New(id, title, content, score, time.UnixMilli(createdAt).UTC()))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return match.Rank(candidates, threshold, count), nil
}

// Count returns the number of documents owned by owner.
func (s *Store) Count(ctx context.Context, owner string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE owner = ?`, owner).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// migrate applies embedded SQL migrations that have not been recorded in schema_version.
func (s *Store) migrate() error {
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
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var applied int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&applied); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return fmt.Errorf("applying migration %d: %w", version, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording migration %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %d: %w", version, err)
	}
	return nil
}

// AppliedMigrations returns applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, fmt.Errorf("query schema_version: %w", err)
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan schema_version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}
