// Package tags maps free-form language-local tag strings to stable canonical
// codes, with one display label per code per language version.
package tags

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"
)

// Queryer is satisfied by both *sql.DB and *sql.Tx.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Catalog is the tag repository for one store. It is constructed explicitly
// and passed around; there is no process-wide default.
type Catalog struct {
	db Queryer
}

// NewCatalog builds a catalog over a store connection or transaction.
func NewCatalog(db Queryer) *Catalog {
	return &Catalog{db: db}
}

// Slugify folds a display string into its canonical code: lowercased, with
// every run of non-alphanumeric characters collapsed to a single underscore.
// "Full CV" and "full cv" both become "full_cv".
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		} else {
			pendingSep = true
		}
	}
	return b.String()
}

// Apply canonicalizes a raw tag array for one version: each string is
// slugified, the code is created once if absent, and the as-written string
// becomes (or updates) the label for that version. Returns the codes in
// first-seen order with duplicates dropped.
func (c *Catalog) Apply(ctx context.Context, versionID int64, raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	codes := make([]string, 0, len(raw))
	for _, label := range raw {
		code := Slugify(label)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true

		if _, err := c.db.ExecContext(ctx,
			`INSERT INTO tags (code) VALUES (?) ON CONFLICT(code) DO NOTHING`, code); err != nil {
			return nil, fmt.Errorf("failed to ensure tag code %s: %w", code, err)
		}
		if _, err := c.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO tags_i18n (tag_code, version_id, label) VALUES (?, ?, ?)`,
			code, versionID, label); err != nil {
			return nil, fmt.Errorf("failed to write label for tag %s: %w", code, err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Attach replaces the tag set of one entity row with codes. The junction
// carries no order and no duplicates; it is rewritten whole so re-import is
// idempotent. An empty codes set is a no-op: tags are shared across language
// variants, and a variant that omits the array is silent about them rather
// than clearing what another variant attached.
func (c *Catalog) Attach(ctx context.Context, entityType string, entityID int64, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM entity_tags WHERE entity_type = ? AND entity_id = ?`,
		entityType, entityID); err != nil {
		return fmt.Errorf("failed to clear tags for %s/%d: %w", entityType, entityID, err)
	}
	for _, code := range codes {
		if _, err := c.db.ExecContext(ctx,
			`INSERT INTO entity_tags (entity_type, entity_id, tag_code) VALUES (?, ?, ?)`,
			entityType, entityID, code); err != nil {
			return fmt.Errorf("failed to attach tag %s to %s/%d: %w", code, entityType, entityID, err)
		}
	}
	return nil
}

// Labels resolves the tag labels of one entity for one version, in the order
// the codes were first attached. A code lacking a label for the version falls
// back to the code itself; translation completeness is not export
// correctness.
func (c *Catalog) Labels(ctx context.Context, entityType string, entityID, versionID int64) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT et.tag_code, ti.label
		 FROM entity_tags et
		 LEFT JOIN tags_i18n ti ON ti.tag_code = et.tag_code AND ti.version_id = ?
		 WHERE et.entity_type = ? AND et.entity_id = ?
		 ORDER BY et.rowid`,
		versionID, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags for %s/%d: %w", entityType, entityID, err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var code string
		var label sql.NullString
		if err := rows.Scan(&code, &label); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		if label.Valid {
			labels = append(labels, label.String)
		} else {
			labels = append(labels, code)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return labels, nil
}

// CodeCount returns the number of canonical tag codes in the store.
func (c *Catalog) CodeCount(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tags: %w", err)
	}
	return n, nil
}
