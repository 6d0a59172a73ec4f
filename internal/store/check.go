package store

import (
	"context"
	"fmt"
)

// SchemaReport is the result of a schema integrity check.
type SchemaReport struct {
	OK            bool     `json:"ok"`
	SchemaVersion int      `json:"schema_version"`
	MissingTables []string `json:"missing_tables,omitempty"`
	FKViolations  int      `json:"fk_violations"`
	Problems      []string `json:"problems,omitempty"`
}

// CheckSchema verifies that every expected table exists, the version stamp
// matches, and no row violates a foreign key. It reports, it never repairs.
func (s *Store) CheckSchema(ctx context.Context) (*SchemaReport, error) {
	report := &SchemaReport{OK: true}

	v, ok, err := s.GetSchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	report.SchemaVersion = v
	if !ok {
		report.OK = false
		report.Problems = append(report.Problems, "no schema_version stamp in meta table")
	} else if v != SchemaVersion {
		report.OK = false
		report.Problems = append(report.Problems,
			fmt.Sprintf("schema_version is %d, expected %d", v, SchemaVersion))
	}

	for _, table := range Tables {
		has, err := s.HasTable(ctx, table)
		if err != nil {
			return nil, err
		}
		if !has {
			report.OK = false
			report.MissingTables = append(report.MissingTables, table)
		}
	}

	rows, err := s.conn.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return nil, fmt.Errorf("failed to run foreign key check: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		report.FKViolations++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreign key check: %w", err)
	}
	if report.FKViolations > 0 {
		report.OK = false
		report.Problems = append(report.Problems,
			fmt.Sprintf("%d foreign key violations", report.FKViolations))
	}

	return report, nil
}

// VariantGap is one invariant row lacking its translation for one version.
type VariantGap struct {
	ResumeKey string `json:"resume_key"`
	Language  string `json:"language"`
	Table     string `json:"table"`
	RowID     int64  `json:"row_id"`
}

// VariantReport summarizes translation coverage across language variants.
// Gaps are expected states, not errors: a freshly added language variant has
// invariant rows but no i18n rows yet.
type VariantReport struct {
	Sets     int          `json:"sets"`
	Versions int          `json:"versions"`
	Gaps     []VariantGap `json:"gaps,omitempty"`
}

// i18nPairs maps each invariant table scoped by resume_key to its i18n
// shadow and the shadow's reference column.
var i18nPairs = []struct {
	invariant string
	i18n      string
	fk        string
}{
	{"basics", "basics_i18n", "basic_id"},
	{"profiles", "profiles_i18n", "profile_id"},
	{"education", "education_i18n", "education_id"},
	{"experiences", "experiences_i18n", "experience_id"},
	{"projects", "projects_i18n", "project_id"},
	{"publications", "publications_i18n", "publication_id"},
	{"referees", "referees_i18n", "referee_id"},
	{"cert_issuers", "cert_issuers_i18n", "issuer_id"},
	{"spoken_languages", "spoken_languages_i18n", "spoken_language_id"},
	{"skill_categories", "skill_categories_i18n", "category_id"},
}

// CheckVariants reports, for every (set, version), the invariant rows that
// have no i18n row for that version.
func (s *Store) CheckVariants(ctx context.Context) (*VariantReport, error) {
	report := &VariantReport{}

	if err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resume_sets`).Scan(&report.Sets); err != nil {
		return nil, fmt.Errorf("failed to count sets: %w", err)
	}
	if err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resume_versions`).Scan(&report.Versions); err != nil {
		return nil, fmt.Errorf("failed to count versions: %w", err)
	}

	for _, pair := range i18nPairs {
		// Every (invariant row, version of the same set) pair without a
		// matching i18n row is a gap. Table names come from the fixed list.
		query := fmt.Sprintf(`
			SELECT inv.resume_key, v.language, inv.id
			FROM %s inv
			JOIN resume_versions v ON v.resume_key = inv.resume_key
			LEFT JOIN %s tr ON tr.%s = inv.id AND tr.version_id = v.version_id
			WHERE tr.version_id IS NULL
			ORDER BY inv.resume_key, v.language, inv.id`,
			pair.invariant, pair.i18n, pair.fk)

		rows, err := s.conn.QueryContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s coverage: %w", pair.invariant, err)
		}
		for rows.Next() {
			gap := VariantGap{Table: pair.invariant}
			if err := rows.Scan(&gap.ResumeKey, &gap.Language, &gap.RowID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan %s gap: %w", pair.invariant, err)
			}
			report.Gaps = append(report.Gaps, gap)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error iterating %s gaps: %w", pair.invariant, err)
		}
		rows.Close()
	}

	return report, nil
}
