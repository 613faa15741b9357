// Package storage provides SQLite access to exam paper records.
//
// Information Hiding:
// - SQLite connection management hidden behind PaperStore
// - Schema details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling
//
// Only the narrow contract the media resolver needs lives here: paper records
// to resolve and the audio resolutions written back. The rest of the
// relational schema belongs to the content backend.

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/examvault/model"
)

// Section types.
const (
	SectionListening = "listening"
	SectionReading   = "reading"
	SectionWriting   = "writing"
)

// ErrPaperNotFound is returned when a paper record does not exist.
var ErrPaperNotFound = errors.New("paper record not found")

// PaperStore reads exam paper records from SQLite.
type PaperStore struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*PaperStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &PaperStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*PaperStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	store := &PaperStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *PaperStore) Close() error {
	return s.db.Close()
}

func (s *PaperStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS exam_papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			exam_type TEXT NOT NULL,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			paper_number INTEGER DEFAULT 1,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS exam_sections (
			id TEXT PRIMARY KEY,
			paper_id TEXT NOT NULL,
			section_type TEXT NOT NULL,
			FOREIGN KEY (paper_id) REFERENCES exam_papers(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_sections_paper
		ON exam_sections(paper_id, section_type);

		CREATE TABLE IF NOT EXISTS audio_resolutions (
			paper_id TEXT NOT NULL,
			run_id TEXT NOT NULL,
			found INTEGER NOT NULL,
			filename TEXT NOT NULL,
			public_path TEXT,
			score INTEGER NOT NULL DEFAULT 0,
			match_type TEXT,
			result_hash TEXT NOT NULL,
			checked_at INTEGER NOT NULL,
			FOREIGN KEY (paper_id) REFERENCES exam_papers(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_audio_paper
		ON audio_resolutions(paper_id, checked_at DESC);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// AddPaper inserts a paper record and returns its id.
// A fresh UUID is assigned when d.ID is empty.
func (s *PaperStore) AddPaper(ctx context.Context, d model.Descriptor, active bool) (string, error) {
	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exam_papers (id, title, exam_type, year, month, paper_number, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, d.Title, d.Category, d.Year, d.Month, d.Sequence(), boolToInt(active))
	if err != nil {
		return "", fmt.Errorf("failed to insert paper: %w", err)
	}
	return id, nil
}

// AddSection attaches a section of the given type to a paper and returns its id.
func (s *PaperStore) AddSection(ctx context.Context, paperID, sectionType string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO exam_sections (id, paper_id, section_type) VALUES (?, ?, ?)",
		id, paperID, sectionType)
	if err != nil {
		return "", fmt.Errorf("failed to insert section: %w", err)
	}
	return id, nil
}

// ListListeningPapers returns active papers that have a listening section,
// newest first.
func (s *PaperStore) ListListeningPapers(ctx context.Context) ([]model.Descriptor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT p.id, p.title, p.exam_type, p.year, p.month, p.paper_number
		FROM exam_papers p
		JOIN exam_sections s ON p.id = s.paper_id
		WHERE s.section_type = ? AND p.is_active = 1
		ORDER BY p.year DESC, p.month DESC, p.exam_type, p.paper_number, p.id`,
		SectionListening)
	if err != nil {
		return nil, fmt.Errorf("failed to query papers: %w", err)
	}
	defer rows.Close()

	papers := []model.Descriptor{} // Start with empty slice, not nil
	for rows.Next() {
		d, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating papers: %w", err)
	}

	return papers, nil
}

// GetPaper loads one paper record by id.
func (s *PaperStore) GetPaper(ctx context.Context, id string) (model.Descriptor, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, exam_type, year, month, paper_number FROM exam_papers WHERE id = ?",
		id)
	d, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Descriptor{}, fmt.Errorf("%w: %s", ErrPaperNotFound, id)
	}
	return d, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPaper(row scanner) (model.Descriptor, error) {
	var (
		d      model.Descriptor
		title  sql.NullString
		number sql.NullInt64
	)
	if err := row.Scan(&d.ID, &title, &d.Category, &d.Year, &d.Month, &number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Descriptor{}, err
		}
		return model.Descriptor{}, fmt.Errorf("failed to scan paper: %w", err)
	}
	d.Title = title.String
	d.SequenceIndex = int(number.Int64)
	return d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
