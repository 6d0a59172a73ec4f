package importer

import (
	"context"
	"database/sql"
	"fmt"
)

// lookupByOrder finds the invariant row at (parent scope, sort_order).
// Position, not content, is the identity key. Table and column names come
// from the fixed call sites, never from input.
func (s *session) lookupByOrder(ctx context.Context, table, parentCol string, parent any, order int) (int64, bool, error) {
	var id int64
	query := fmt.Sprintf(`SELECT id FROM %s WHERE %s = ? AND sort_order = ?`, table, parentCol)
	err := s.tx.QueryRowContext(ctx, query, parent, order).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up %s row at position %d: %w", table, order, err)
	}
	return id, true, nil
}

// i18nShadow names the translation table of an invariant table and the
// foreign-key column pointing back at it.
type i18nShadow struct {
	table string
	fk    string
}

var i18nShadows = map[string]i18nShadow{
	"profiles":              {"profiles_i18n", "profile_id"},
	"education":             {"education_i18n", "education_id"},
	"experiences":           {"experiences_i18n", "experience_id"},
	"projects":              {"projects_i18n", "project_id"},
	"publications":          {"publications_i18n", "publication_id"},
	"referees":              {"referees_i18n", "referee_id"},
	"cert_issuers":          {"cert_issuers_i18n", "issuer_id"},
	"certifications":        {"certifications_i18n", "certification_id"},
	"spoken_languages":      {"spoken_languages_i18n", "spoken_language_id"},
	"language_certificates": {"language_certificates_i18n", "certificate_id"},
	"skill_categories":      {"skill_categories_i18n", "category_id"},
	"skill_subcategories":   {"skill_subcategories_i18n", "subcategory_id"},
	"skill_items":           {"skill_items_i18n", "item_id"},
	"basics_locations":      {"basics_locations_i18n", "location_id"},
	"basics_labels":         {"basics_labels_i18n", "label_id"},
}

// tagEntityTypes maps invariant tables to the entity_type used in
// entity_tags, for the tables that carry tags.
var tagEntityTypes = map[string]string{
	"profiles":       "profile",
	"education":      "education",
	"experiences":    "experience",
	"projects":       "project",
	"publications":   "publication",
	"certifications": "certification",
	"skill_items":    "skill_item",
}

// trimTail retires invariant rows past the end of the imported array. For
// tables with a translation shadow the trim is scoped to the importing
// version: the version's translations of the tail are dropped, and the
// invariant row itself only goes once no version translates it any more. A
// variant that restates fewer elements therefore stops referencing the tail
// without destroying rows other variants still use.
func (s *session) trimTail(ctx context.Context, table, parentCol string, parent any, length int) error {
	shadow, ok := i18nShadows[table]
	if !ok {
		query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND sort_order >= ?`, table, parentCol)
		if _, err := s.tx.ExecContext(ctx, query, parent, length); err != nil {
			return fmt.Errorf("failed to trim %s rows: %w", table, err)
		}
		return nil
	}

	forget := fmt.Sprintf(
		`DELETE FROM %s WHERE version_id = ?
		   AND %s IN (SELECT id FROM %s WHERE %s = ? AND sort_order >= ?)`,
		shadow.table, shadow.fk, table, parentCol)
	if _, err := s.tx.ExecContext(ctx, forget, s.versionID, parent, length); err != nil {
		return fmt.Errorf("failed to trim %s rows: %w", shadow.table, err)
	}

	// entity_tags has no foreign key onto entity rows, so the junction rows
	// of entities about to be deleted are cleared here.
	if entityType, tagged := tagEntityTypes[table]; tagged {
		detach := fmt.Sprintf(
			`DELETE FROM entity_tags WHERE entity_type = ?
			   AND entity_id IN (
			     SELECT id FROM %s WHERE %s = ? AND sort_order >= ?
			       AND NOT EXISTS (SELECT 1 FROM %s WHERE %s = %s.id))`,
			table, parentCol, shadow.table, shadow.fk, table)
		if _, err := s.tx.ExecContext(ctx, detach, entityType, parent, length); err != nil {
			return fmt.Errorf("failed to clear tags of trimmed %s rows: %w", table, err)
		}
	}

	drop := fmt.Sprintf(
		`DELETE FROM %s WHERE %s = ? AND sort_order >= ?
		   AND NOT EXISTS (SELECT 1 FROM %s WHERE %s = %s.id)`,
		table, parentCol, shadow.table, shadow.fk, table)
	if _, err := s.tx.ExecContext(ctx, drop, parent, length); err != nil {
		return fmt.Errorf("failed to trim %s rows: %w", table, err)
	}
	return nil
}

// insertedID unwraps LastInsertId with a consistent error.
func insertedID(res sql.Result, table string) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted %s id: %w", table, err)
	}
	return id, nil
}
