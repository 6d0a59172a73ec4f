package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Version is one language variant of one resume set.
type Version struct {
	VersionID   int64  `json:"version_id"`
	ResumeKey   string `json:"resume_key"`
	Language    string `json:"language"`
	IsBase      bool   `json:"is_base"`
	IsPublished bool   `json:"is_published"`
}

// EnsureSet lazily creates the resume set for key on first import of any
// language variant. The base language is fixed by whoever arrives first.
func EnsureSet(ctx context.Context, tx *sql.Tx, resumeKey, baseLanguage string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO resume_sets (resume_key, base_language) VALUES (?, ?)
		 ON CONFLICT(resume_key) DO NOTHING`,
		resumeKey, baseLanguage)
	if err != nil {
		if isLanguageFKViolation(err) {
			return fmt.Errorf("%w: %q", ErrUnknownLanguage, baseLanguage)
		}
		return fmt.Errorf("failed to ensure resume set %s: %w", resumeKey, err)
	}
	return nil
}

// EnsureVersion lazily creates the (resume_key, language) variant and returns
// its version_id. is_base is set when the language matches the set's base
// language.
func EnsureVersion(ctx context.Context, tx *sql.Tx, resumeKey, language string) (int64, error) {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO resume_versions (resume_key, language, is_base)
		 SELECT ?, ?, CASE WHEN base_language = ? THEN 1 ELSE 0 END
		 FROM resume_sets WHERE resume_key = ?
		 ON CONFLICT(resume_key, language) DO NOTHING`,
		resumeKey, language, language, resumeKey)
	if err != nil {
		if isLanguageFKViolation(err) {
			return 0, fmt.Errorf("%w: %q", ErrUnknownLanguage, language)
		}
		return 0, fmt.Errorf("failed to ensure version (%s, %s): %w", resumeKey, language, err)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT version_id FROM resume_versions WHERE resume_key = ? AND language = ?`,
		resumeKey, language).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to look up version (%s, %s): %w", resumeKey, language, err)
	}
	return id, nil
}

// LookupVersion returns the version_id for a (resume_key, language) pair, or
// ErrVersionNotFound.
func (s *Store) LookupVersion(ctx context.Context, resumeKey, language string) (int64, error) {
	var id int64
	err := s.conn.QueryRowContext(ctx,
		`SELECT version_id FROM resume_versions WHERE resume_key = ? AND language = ?`,
		resumeKey, language).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: (%s, %s)", ErrVersionNotFound, resumeKey, language)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up version (%s, %s): %w", resumeKey, language, err)
	}
	return id, nil
}

// ListVersions returns all variants of one resume set, base first.
func (s *Store) ListVersions(ctx context.Context, resumeKey string) ([]Version, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT version_id, resume_key, language, is_base, is_published
		 FROM resume_versions WHERE resume_key = ?
		 ORDER BY is_base DESC, language ASC`, resumeKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions for %s: %w", resumeKey, err)
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.VersionID, &v.ResumeKey, &v.Language, &v.IsBase, &v.IsPublished); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSetNotFound, resumeKey)
	}
	return versions, nil
}

// ListResumeKeys returns every resume_key in the store.
func (s *Store) ListResumeKeys(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT resume_key FROM resume_sets ORDER BY resume_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list resume keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan resume key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resume keys: %w", err)
	}
	return keys, nil
}

// RemoveVariant deletes one (resume_key, language) variant: its version row
// and, via cascade, every i18n row hanging off it. Invariant rows survive;
// they belong to the set, not the variant.
//
// Removing the last variant would leave an empty set, so that case deletes
// the whole set too but only when force is set; without force it returns
// ErrSetNotEmpty and changes nothing.
func (s *Store) RemoveVariant(ctx context.Context, resumeKey, language string, force bool) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var versionID int64
	err = tx.QueryRowContext(ctx,
		`SELECT version_id FROM resume_versions WHERE resume_key = ? AND language = ?`,
		resumeKey, language).Scan(&versionID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: (%s, %s)", ErrVersionNotFound, resumeKey, language)
	}
	if err != nil {
		return fmt.Errorf("failed to look up version (%s, %s): %w", resumeKey, language, err)
	}

	var remaining int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resume_versions WHERE resume_key = ?`, resumeKey).Scan(&remaining)
	if err != nil {
		return fmt.Errorf("failed to count versions for %s: %w", resumeKey, err)
	}

	if remaining == 1 && !force {
		return fmt.Errorf("%w: %s", ErrSetNotEmpty, resumeKey)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM resume_versions WHERE version_id = ?`, versionID); err != nil {
		return fmt.Errorf("failed to delete version %d: %w", versionID, err)
	}

	if remaining == 1 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM resume_sets WHERE resume_key = ?`, resumeKey); err != nil {
			return fmt.Errorf("failed to delete resume set %s: %w", resumeKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit removal: %w", err)
	}
	return nil
}

// isLanguageFKViolation sniffs an FK failure on the languages table. SQLite
// reports constraint failures as text, so a substring check is what we get.
func isLanguageFKViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
