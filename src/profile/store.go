package profile

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"game-translator/src/region"
)

var ErrNotFound = errors.New("profile not found")

// Profile is the persisted form of a session: which window to capture, the
// language pair, and the ordered regions.
type Profile struct {
	ID                  int64
	Title               string
	App                 string
	OCRLanguage         string
	TranslationLanguage string
	Provider            string
	UseFullFrame        bool
	Regions             []region.Region
	UpdatedAt           time.Time
}

func (p Profile) OCR() OcrProfile { return OCR(p.OCRLanguage) }

func (p Profile) Translation() TranslationProfile {
	t, _ := Translation(p.TranslationLanguage)
	return t
}

// Store keeps profiles in a SQLite database.
type Store struct {
	db *sql.DB
}

func NewSQLite(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("profile: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT UNIQUE NOT NULL,
		app TEXT NOT NULL DEFAULT '',
		ocr_language TEXT NOT NULL DEFAULT 'eng',
		translation_language TEXT NOT NULL DEFAULT 'nt',
		provider TEXT NOT NULL DEFAULT 'google',
		use_full_frame INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS regions (
		profile_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE,
		PRIMARY KEY (profile_id, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) List() ([]Profile, error) {
	rows, err := s.db.Query(`SELECT id, title, app, ocr_language, translation_language, provider, use_full_frame, updated_at
		FROM profiles ORDER BY title`)
	if err != nil {
		return nil, err
	}
	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Regions, err = s.regions(out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) Get(title string) (*Profile, error) {
	row := s.db.QueryRow(`SELECT id, title, app, ocr_language, translation_language, provider, use_full_frame, updated_at
		FROM profiles WHERE title = ?`, title)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Regions, err = s.regions(p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save inserts or replaces the profile with the same title, regions included.
func (s *Store) Save(p *Profile) error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("profile title is required")
	}
	if p.Provider == "" {
		p.Provider = "google"
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO profiles (title, app, ocr_language, translation_language, provider, use_full_frame, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(title) DO UPDATE SET
			app = excluded.app,
			ocr_language = excluded.ocr_language,
			translation_language = excluded.translation_language,
			provider = excluded.provider,
			use_full_frame = excluded.use_full_frame,
			updated_at = CURRENT_TIMESTAMP`,
		p.Title, p.App, p.OCRLanguage, p.TranslationLanguage, p.Provider, p.UseFullFrame)
	if err != nil {
		return err
	}
	if err := tx.QueryRow("SELECT id FROM profiles WHERE title = ?", p.Title).Scan(&p.ID); err != nil {
		return err
	}
	if err := replaceRegions(tx, p.ID, p.Regions); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveRegions replaces only the region list of an existing profile.
func (s *Store) SaveRegions(title string, regions []region.Region) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow("SELECT id FROM profiles WHERE title = ?", title).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := replaceRegions(tx, id, regions); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE profiles SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Delete(title string) error {
	res, err := s.db.Exec("DELETE FROM profiles WHERE title = ?", title)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) regions(profileID int64) ([]region.Region, error) {
	rows, err := s.db.Query("SELECT x, y, width, height FROM regions WHERE profile_id = ? ORDER BY position", profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []region.Region
	for rows.Next() {
		var r region.Region
		if err := rows.Scan(&r.X, &r.Y, &r.Width, &r.Height); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func replaceRegions(tx *sql.Tx, profileID int64, regions []region.Region) error {
	if _, err := tx.Exec("DELETE FROM regions WHERE profile_id = ?", profileID); err != nil {
		return err
	}
	for i, r := range regions {
		r = r.Normalize()
		if _, err := tx.Exec("INSERT INTO regions (profile_id, position, x, y, width, height) VALUES (?, ?, ?, ?, ?, ?)",
			profileID, i, r.X, r.Y, r.Width, r.Height); err != nil {
			return err
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(sc scanner) (Profile, error) {
	var p Profile
	err := sc.Scan(&p.ID, &p.Title, &p.App, &p.OCRLanguage, &p.TranslationLanguage, &p.Provider, &p.UseFullFrame, &p.UpdatedAt)
	return p, err
}
