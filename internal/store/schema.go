package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the version stamped into the meta table by Initialize.
// Version 1 is the legacy single-language schema handled by internal/migrate.
const SchemaVersion = 2

// Language is one row of the seeded languages table.
type Language struct {
	Code      string
	Name      string
	Direction string // ltr or rtl
}

// SupportedLanguages is the fixed set seeded into every store. The languages
// table is a foreign-key target for every language-scoped row, so codes not
// listed here are rejected at the database level.
var SupportedLanguages = []Language{
	{"en", "English", "ltr"},
	{"de", "German", "ltr"},
	{"fr", "French", "ltr"},
	{"es", "Spanish", "ltr"},
	{"it", "Italian", "ltr"},
	{"pt", "Portuguese", "ltr"},
	{"fa", "Farsi", "rtl"},
	{"ar", "Arabic", "rtl"},
	{"ru", "Russian", "ltr"},
	{"zh", "Chinese", "ltr"},
	{"ja", "Japanese", "ltr"},
	{"tr", "Turkish", "ltr"},
}

// IsSupportedLanguage reports whether code is one of the seeded languages.
// Filename identity inference uses this to decide whether a stem suffix is a
// language code or just part of the resume key.
func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// Tables lists every table of the normalized schema, in creation order.
// Integrity checks and count invariants iterate this.
var Tables = []string{
	"meta",
	"languages",
	"resume_sets",
	"resume_versions",
	"basics",
	"basics_i18n",
	"basics_emails",
	"basics_pictures",
	"basics_locations",
	"basics_locations_i18n",
	"basics_labels",
	"basics_labels_i18n",
	"profiles",
	"profiles_i18n",
	"education",
	"education_i18n",
	"experiences",
	"experiences_i18n",
	"projects",
	"projects_i18n",
	"publications",
	"publications_i18n",
	"publication_contributors",
	"referees",
	"referees_i18n",
	"cert_issuers",
	"cert_issuers_i18n",
	"certifications",
	"certifications_i18n",
	"spoken_languages",
	"spoken_languages_i18n",
	"language_certificates",
	"language_certificates_i18n",
	"skill_categories",
	"skill_categories_i18n",
	"skill_subcategories",
	"skill_subcategories_i18n",
	"skill_items",
	"skill_items_i18n",
	"tags",
	"tags_i18n",
	"entity_tags",
}

const ddl = `
-- Store metadata. schema_version is the only required key.
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

-- Seeded language registry; FK target for every language-scoped row.
CREATE TABLE IF NOT EXISTS languages (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	direction TEXT NOT NULL DEFAULT 'ltr' CHECK (direction IN ('ltr', 'rtl'))
);

-- One row per person, shared across all language variants.
CREATE TABLE IF NOT EXISTS resume_sets (
	resume_key TEXT PRIMARY KEY,
	base_language TEXT NOT NULL REFERENCES languages(code)
);

-- One row per (person, language). All translated content hangs off
-- version_id, never directly off resume_key.
CREATE TABLE IF NOT EXISTS resume_versions (
	version_id INTEGER PRIMARY KEY AUTOINCREMENT,
	resume_key TEXT NOT NULL REFERENCES resume_sets(resume_key) ON DELETE CASCADE,
	language TEXT NOT NULL REFERENCES languages(code),
	is_base INTEGER NOT NULL DEFAULT 0,
	is_published INTEGER NOT NULL DEFAULT 1,
	-- Whether the imported document carried an explicit config block, and
	-- which of its keys were present; export reproduces the same key set.
	has_config INTEGER NOT NULL DEFAULT 1,
	has_config_id INTEGER NOT NULL DEFAULT 1,
	has_config_lang INTEGER NOT NULL DEFAULT 1,
	UNIQUE (resume_key, language)
);

-- basics: exactly one invariant row per set (the document carries basics as
-- a one-element array). Phone sub-fields are invariant; has_phone records
-- whether any imported variant carried a phone object at all, so a document
-- without one does not grow an all-null phone on export.
CREATE TABLE IF NOT EXISTS basics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	resume_key TEXT NOT NULL UNIQUE REFERENCES resume_sets(resume_key) ON DELETE CASCADE,
	has_phone INTEGER NOT NULL DEFAULT 0,
	phone_code TEXT,
	phone_number TEXT,
	phone_type TEXT
);

CREATE TABLE IF NOT EXISTS basics_i18n (
	basic_id INTEGER NOT NULL REFERENCES basics(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	fname TEXT,
	lname TEXT,
	summary TEXT,
	PRIMARY KEY (basic_id, version_id)
);

CREATE TABLE IF NOT EXISTS basics_emails (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	basic_id INTEGER NOT NULL REFERENCES basics(id) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	address TEXT,
	UNIQUE (basic_id, sort_order)
);

CREATE TABLE IF NOT EXISTS basics_pictures (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	basic_id INTEGER NOT NULL REFERENCES basics(id) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	path TEXT,
	UNIQUE (basic_id, sort_order)
);

-- Locations split: postal code and country are invariant; the address line,
-- city and region are spelled per language.
CREATE TABLE IF NOT EXISTS basics_locations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	basic_id INTEGER NOT NULL REFERENCES basics(id) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	postal_code TEXT,
	country TEXT,
	UNIQUE (basic_id, sort_order)
);

CREATE TABLE IF NOT EXISTS basics_locations_i18n (
	location_id INTEGER NOT NULL REFERENCES basics_locations(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	address TEXT,
	city TEXT,
	region TEXT,
	PRIMARY KEY (location_id, version_id)
);

CREATE TABLE IF NOT EXISTS basics_labels (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	basic_id INTEGER NOT NULL REFERENCES basics(id) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	UNIQUE (basic_id, sort_order)
);

CREATE TABLE IF NOT EXISTS basics_labels_i18n (
	label_id INTEGER NOT NULL REFERENCES basics_labels(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	text TEXT,
	PRIMARY KEY (label_id, version_id)
);

CREATE TABLE IF NOT EXISTS profiles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	resume_key TEXT NOT NULL REFERENCES resume_sets(resume_key) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	network TEXT,
	username TEXT,
	url TEXT,
	UNIQUE (resume_key, sort_order)
);

CREATE TABLE IF NOT EXISTS profiles_i18n (
	profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	label TEXT,
	PRIMARY KEY (profile_id, version_id)
);

CREATE TABLE IF NOT EXISTS education (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	resume_key TEXT NOT NULL REFERENCES resume_sets(resume_key) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	start_date TEXT,
	start_date_raw TEXT,
	end_date TEXT,
	end_date_raw TEXT,
	score REAL,
	url TEXT,
	UNIQUE (resume_key, sort_order)
);

CREATE TABLE IF NOT EXISTS education_i18n (
	education_id INTEGER NOT NULL REFERENCES education(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	institution TEXT,
	degree TEXT,
	description TEXT,
	PRIMARY KEY (education_id, version_id)
);

CREATE TABLE IF NOT EXISTS experiences (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	resume_key TEXT NOT NULL REFERENCES resume_sets(resume_key) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	start_date TEXT,
	start_date_raw TEXT,
	end_date TEXT,
	end_date_raw TEXT,
	url TEXT,
	UNIQUE (resume_key, sort_order)
);

CREATE TABLE IF NOT EXISTS experiences_i18n (
	experience_id INTEGER NOT NULL REFERENCES experiences(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	company TEXT,
	position TEXT,
	description TEXT,
	PRIMARY KEY (experience_id, version_id)
);

CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	resume_key TEXT NOT NULL REFERENCES resume_sets(resume_key) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	start_date TEXT,
	start_date_raw TEXT,
	end_date TEXT,
	end_date_raw TEXT,
	url TEXT,
	primary_focus TEXT,
	UNIQUE (resume_key, sort_order)
);

CREATE TABLE IF NOT EXISTS projects_i18n (
	project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	name TEXT,
	description TEXT,
	PRIMARY KEY (project_id, version_id)
);

-- Identifier sub-fields are stored flat; export mirrors them both flat and
-- nested under "identifiers".
CREATE TABLE IF NOT EXISTS publications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	resume_key TEXT NOT NULL REFERENCES resume_sets(resume_key) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	pub_date TEXT,
	pub_date_raw TEXT,
	url TEXT,
	doi TEXT,
	isbn TEXT,
	issn TEXT,
	pmid TEXT,
	pmcid TEXT,
	arxiv TEXT,
	UNIQUE (resume_key, sort_order)
);

CREATE TABLE IF NOT EXISTS publications_i18n (
	publication_id INTEGER NOT NULL REFERENCES publications(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	title TEXT,
	venue TEXT,
	abstract TEXT,
	PRIMARY KEY (publication_id, version_id)
);

-- Author/editor/supervisor lists are ordered literal strings scoped PER
-- VERSION: formatting may differ across translations while the publication
-- identity is shared.
CREATE TABLE IF NOT EXISTS publication_contributors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	publication_id INTEGER NOT NULL REFERENCES publications(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	role TEXT NOT NULL CHECK (role IN ('author', 'editor', 'supervisor')),
	sort_order INTEGER NOT NULL,
	literal TEXT NOT NULL,
	UNIQUE (publication_id, version_id, role, sort_order)
);

-- "references" is a reserved word; referees it is.
CREATE TABLE IF NOT EXISTS referees (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	resume_key TEXT NOT NULL REFERENCES resume_sets(resume_key) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	email TEXT,
	url TEXT,
	UNIQUE (resume_key, sort_order)
);

CREATE TABLE IF NOT EXISTS referees_i18n (
	referee_id INTEGER NOT NULL REFERENCES referees(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	name TEXT,
	position TEXT,
	description TEXT,
	PRIMARY KEY (referee_id, version_id)
);

CREATE TABLE IF NOT EXISTS cert_issuers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	resume_key TEXT NOT NULL REFERENCES resume_sets(resume_key) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	url TEXT,
	UNIQUE (resume_key, sort_order)
);

CREATE TABLE IF NOT EXISTS cert_issuers_i18n (
	issuer_id INTEGER NOT NULL REFERENCES cert_issuers(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	organization TEXT,
	PRIMARY KEY (issuer_id, version_id)
);

CREATE TABLE IF NOT EXISTS certifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	issuer_id INTEGER NOT NULL REFERENCES cert_issuers(id) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	cert_date TEXT,
	cert_date_raw TEXT,
	url TEXT,
	UNIQUE (issuer_id, sort_order)
);

CREATE TABLE IF NOT EXISTS certifications_i18n (
	certification_id INTEGER NOT NULL REFERENCES certifications(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	title TEXT,
	PRIMARY KEY (certification_id, version_id)
);

CREATE TABLE IF NOT EXISTS spoken_languages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	resume_key TEXT NOT NULL REFERENCES resume_sets(resume_key) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	level TEXT,
	UNIQUE (resume_key, sort_order)
);

CREATE TABLE IF NOT EXISTS spoken_languages_i18n (
	spoken_language_id INTEGER NOT NULL REFERENCES spoken_languages(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	name TEXT,
	PRIMARY KEY (spoken_language_id, version_id)
);

CREATE TABLE IF NOT EXISTS language_certificates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	spoken_language_id INTEGER NOT NULL REFERENCES spoken_languages(id) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	cert_date TEXT,
	cert_date_raw TEXT,
	score REAL,
	url TEXT,
	UNIQUE (spoken_language_id, sort_order)
);

CREATE TABLE IF NOT EXISTS language_certificates_i18n (
	certificate_id INTEGER NOT NULL REFERENCES language_certificates(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	title TEXT,
	PRIMARY KEY (certificate_id, version_id)
);

-- Skills tree: category -> subcategory -> items. Category and subcategory
-- identity is the slug of their display key, so translated variants land on
-- the same invariant rows.
CREATE TABLE IF NOT EXISTS skill_categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	resume_key TEXT NOT NULL REFERENCES resume_sets(resume_key) ON DELETE CASCADE,
	slug TEXT NOT NULL,
	sort_order INTEGER NOT NULL,
	UNIQUE (resume_key, slug)
);

CREATE TABLE IF NOT EXISTS skill_categories_i18n (
	category_id INTEGER NOT NULL REFERENCES skill_categories(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	name TEXT,
	PRIMARY KEY (category_id, version_id)
);

CREATE TABLE IF NOT EXISTS skill_subcategories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id INTEGER NOT NULL REFERENCES skill_categories(id) ON DELETE CASCADE,
	slug TEXT NOT NULL,
	sort_order INTEGER NOT NULL,
	UNIQUE (category_id, slug)
);

CREATE TABLE IF NOT EXISTS skill_subcategories_i18n (
	subcategory_id INTEGER NOT NULL REFERENCES skill_subcategories(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	name TEXT,
	PRIMARY KEY (subcategory_id, version_id)
);

CREATE TABLE IF NOT EXISTS skill_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	subcategory_id INTEGER NOT NULL REFERENCES skill_subcategories(id) ON DELETE CASCADE,
	sort_order INTEGER NOT NULL,
	UNIQUE (subcategory_id, sort_order)
);

CREATE TABLE IF NOT EXISTS skill_items_i18n (
	item_id INTEGER NOT NULL REFERENCES skill_items(id) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	long_name TEXT,
	short_name TEXT,
	PRIMARY KEY (item_id, version_id)
);

-- Canonical tag codes, global across all resume sets. A code, once created,
-- is never renamed; only its per-version label changes.
CREATE TABLE IF NOT EXISTS tags (
	code TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS tags_i18n (
	tag_code TEXT NOT NULL REFERENCES tags(code) ON DELETE CASCADE,
	version_id INTEGER NOT NULL REFERENCES resume_versions(version_id) ON DELETE CASCADE,
	label TEXT NOT NULL,
	PRIMARY KEY (tag_code, version_id)
);

CREATE TABLE IF NOT EXISTS entity_tags (
	entity_type TEXT NOT NULL,
	entity_id INTEGER NOT NULL,
	tag_code TEXT NOT NULL REFERENCES tags(code) ON DELETE CASCADE,
	PRIMARY KEY (entity_type, entity_id, tag_code)
);

CREATE INDEX IF NOT EXISTS idx_versions_key ON resume_versions(resume_key);
CREATE INDEX IF NOT EXISTS idx_entity_tags_code ON entity_tags(tag_code);
CREATE INDEX IF NOT EXISTS idx_contributors_pub ON publication_contributors(publication_id, version_id);
`

// Initialize creates the full schema if absent, stamps the schema version,
// and seeds the languages table. If the store already carries a different
// version stamp it returns ErrSchemaVersionMismatch and leaves the store
// untouched, unless force is set, in which case the stamp is overwritten
// (tables are still only created, never dropped).
func (s *Store) Initialize(ctx context.Context, force bool) error {
	existing, ok, err := s.GetSchemaVersion(ctx)
	if err != nil {
		return err
	}
	if ok && existing != SchemaVersion && !force {
		return fmt.Errorf("%w: store has v%d, this build requires v%d",
			ErrSchemaVersionMismatch, existing, SchemaVersion)
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := InitializeTx(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	return nil
}

// InitializeTx runs schema creation, version stamping, and the language seed
// inside a caller-owned transaction. The legacy migrator uses it so schema
// creation and data migration commit or roll back as one unit.
func InitializeTx(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprintf("%d", SchemaVersion)); err != nil {
		return fmt.Errorf("failed to stamp schema version: %w", err)
	}

	// Languages seed before any other write: every language-scoped row has
	// an FK into this table.
	for _, l := range SupportedLanguages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO languages (code, name, direction) VALUES (?, ?, ?)
			 ON CONFLICT(code) DO UPDATE SET name = excluded.name, direction = excluded.direction`,
			l.Code, l.Name, l.Direction); err != nil {
			return fmt.Errorf("failed to seed language %s: %w", l.Code, err)
		}
	}
	return nil
}

// GetSchemaVersion reads the stamped schema version. The second return is
// false when the store carries no stamp (fresh file or pre-versioning legacy).
func (s *Store) GetSchemaVersion(ctx context.Context) (int, bool, error) {
	var exists int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='meta'`).Scan(&exists)
	if err != nil {
		return 0, false, fmt.Errorf("failed to probe meta table: %w", err)
	}
	if exists == 0 {
		return 0, false, nil
	}

	var v int
	err = s.conn.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, true, nil
}

// HasTable reports whether a table exists in the store.
func (s *Store) HasTable(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to probe table %s: %w", name, err)
	}
	return count > 0, nil
}

// TableCounts returns the row count of every schema table. Used by the
// status command and by idempotence checks.
func (s *Store) TableCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(Tables))
	for _, table := range Tables {
		var n int
		// Table names come from the fixed Tables list, not user input.
		if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
