package exporter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/resumedb/resumedb/internal/document"
)

// Flat sections all follow the same scheme: invariant rows ordered by
// sort_order, joined onto the version's translations so only elements this
// variant restated come out, dates emitted from the raw columns so the
// source spelling survives. Rows are collected before
// any secondary query runs: the store holds a single connection, so a query
// issued while a result set is still open would starve the pool. Empty
// sections are omitted (nil return).

func (ex *Exporter) exportProfiles(ctx context.Context, resumeKey string, versionID int64) (any, error) {
	type row struct {
		id                           int64
		network, username, url, label sql.NullString
	}
	var items []row
	err := ex.collect(ctx,
		`SELECT p.id, p.network, p.username, p.url, pi.label
		 FROM profiles p
		 JOIN profiles_i18n pi ON pi.profile_id = p.id AND pi.version_id = ?
		 WHERE p.resume_key = ?
		 ORDER BY p.sort_order`,
		[]any{versionID, resumeKey},
		func(rows *sql.Rows) error {
			var r row
			if err := rows.Scan(&r.id, &r.network, &r.username, &r.url, &r.label); err != nil {
				return err
			}
			items = append(items, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	var out []any
	for _, r := range items {
		values := make(map[string]any)
		addStr(values, "network", r.network)
		addStr(values, "username", r.username)
		addStr(values, "url", r.url)
		addStr(values, "label", r.label)
		if err := ex.addTags(ctx, values, "profile", r.id, versionID); err != nil {
			return nil, err
		}
		out = append(out, record(document.ProfileFields, values))
	}
	return out, nil
}

func (ex *Exporter) exportEducation(ctx context.Context, resumeKey string, versionID int64) (any, error) {
	type row struct {
		id                                                     int64
		startRaw, endRaw, url, institution, degree, description sql.NullString
		score                                                  sql.NullFloat64
	}
	var items []row
	err := ex.collect(ctx,
		`SELECT e.id, e.start_date_raw, e.end_date_raw, e.score, e.url,
		        ei.institution, ei.degree, ei.description
		 FROM education e
		 JOIN education_i18n ei ON ei.education_id = e.id AND ei.version_id = ?
		 WHERE e.resume_key = ?
		 ORDER BY e.sort_order`,
		[]any{versionID, resumeKey},
		func(rows *sql.Rows) error {
			var r row
			if err := rows.Scan(&r.id, &r.startRaw, &r.endRaw, &r.score, &r.url,
				&r.institution, &r.degree, &r.description); err != nil {
				return err
			}
			items = append(items, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read education: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	var out []any
	for _, r := range items {
		values := make(map[string]any)
		addStr(values, "institution", r.institution)
		addStr(values, "degree", r.degree)
		addStr(values, "description", r.description)
		addStr(values, "startDate", r.startRaw)
		addStr(values, "endDate", r.endRaw)
		addFloat(values, "score", r.score)
		addStr(values, "url", r.url)
		if err := ex.addTags(ctx, values, "education", r.id, versionID); err != nil {
			return nil, err
		}
		out = append(out, record(document.EducationFields, values))
	}
	return out, nil
}

func (ex *Exporter) exportExperiences(ctx context.Context, resumeKey string, versionID int64) (any, error) {
	type row struct {
		id                                                 int64
		startRaw, endRaw, url, company, position, description sql.NullString
	}
	var items []row
	err := ex.collect(ctx,
		`SELECT e.id, e.start_date_raw, e.end_date_raw, e.url,
		        ei.company, ei.position, ei.description
		 FROM experiences e
		 JOIN experiences_i18n ei ON ei.experience_id = e.id AND ei.version_id = ?
		 WHERE e.resume_key = ?
		 ORDER BY e.sort_order`,
		[]any{versionID, resumeKey},
		func(rows *sql.Rows) error {
			var r row
			if err := rows.Scan(&r.id, &r.startRaw, &r.endRaw, &r.url,
				&r.company, &r.position, &r.description); err != nil {
				return err
			}
			items = append(items, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read experiences: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	var out []any
	for _, r := range items {
		values := make(map[string]any)
		addStr(values, "company", r.company)
		addStr(values, "position", r.position)
		addStr(values, "description", r.description)
		addStr(values, "startDate", r.startRaw)
		addStr(values, "endDate", r.endRaw)
		addStr(values, "url", r.url)
		if err := ex.addTags(ctx, values, "experience", r.id, versionID); err != nil {
			return nil, err
		}
		out = append(out, record(document.ExperienceFields, values))
	}
	return out, nil
}

func (ex *Exporter) exportProjects(ctx context.Context, resumeKey string, versionID int64) (any, error) {
	type row struct {
		id                                                      int64
		startRaw, endRaw, url, primaryFocus, name, description sql.NullString
	}
	var items []row
	err := ex.collect(ctx,
		`SELECT p.id, p.start_date_raw, p.end_date_raw, p.url, p.primary_focus,
		        pi.name, pi.description
		 FROM projects p
		 JOIN projects_i18n pi ON pi.project_id = p.id AND pi.version_id = ?
		 WHERE p.resume_key = ?
		 ORDER BY p.sort_order`,
		[]any{versionID, resumeKey},
		func(rows *sql.Rows) error {
			var r row
			if err := rows.Scan(&r.id, &r.startRaw, &r.endRaw, &r.url, &r.primaryFocus,
				&r.name, &r.description); err != nil {
				return err
			}
			items = append(items, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	var out []any
	for _, r := range items {
		values := make(map[string]any)
		addStr(values, "name", r.name)
		addStr(values, "description", r.description)
		addStr(values, "startDate", r.startRaw)
		addStr(values, "endDate", r.endRaw)
		addStr(values, "url", r.url)
		addStr(values, "primaryFocus", r.primaryFocus)
		if err := ex.addTags(ctx, values, "project", r.id, versionID); err != nil {
			return nil, err
		}
		out = append(out, record(document.ProjectFields, values))
	}
	return out, nil
}

func (ex *Exporter) exportReferences(ctx context.Context, resumeKey string, versionID int64) (any, error) {
	type row struct {
		email, url, name, position, description sql.NullString
	}
	var items []row
	err := ex.collect(ctx,
		`SELECT r.email, r.url, ri.name, ri.position, ri.description
		 FROM referees r
		 JOIN referees_i18n ri ON ri.referee_id = r.id AND ri.version_id = ?
		 WHERE r.resume_key = ?
		 ORDER BY r.sort_order`,
		[]any{versionID, resumeKey},
		func(rows *sql.Rows) error {
			var r row
			if err := rows.Scan(&r.email, &r.url, &r.name, &r.position, &r.description); err != nil {
				return err
			}
			items = append(items, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read references: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	var out []any
	for _, r := range items {
		values := make(map[string]any)
		addStr(values, "name", r.name)
		addStr(values, "position", r.position)
		addStr(values, "description", r.description)
		addStr(values, "email", r.email)
		addStr(values, "url", r.url)
		out = append(out, record(document.ReferenceFields, values))
	}
	return out, nil
}

func (ex *Exporter) exportLanguages(ctx context.Context, resumeKey string, versionID int64) (any, error) {
	type row struct {
		id          int64
		level, name sql.NullString
	}
	var langs []row
	err := ex.collect(ctx,
		`SELECT l.id, l.level, li.name
		 FROM spoken_languages l
		 JOIN spoken_languages_i18n li ON li.spoken_language_id = l.id AND li.version_id = ?
		 WHERE l.resume_key = ?
		 ORDER BY l.sort_order`,
		[]any{versionID, resumeKey},
		func(rows *sql.Rows) error {
			var r row
			if err := rows.Scan(&r.id, &r.level, &r.name); err != nil {
				return err
			}
			langs = append(langs, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read spoken languages: %w", err)
	}
	if len(langs) == 0 {
		return nil, nil
	}

	var out []any
	for _, l := range langs {
		values := make(map[string]any)
		addStr(values, "name", l.name)
		addStr(values, "level", l.level)

		certs, err := ex.exportLanguageCertificates(ctx, l.id, versionID)
		if err != nil {
			return nil, err
		}
		if len(certs) > 0 {
			values["certificates"] = certs
		}
		out = append(out, record(document.LanguageFields, values))
	}
	return out, nil
}

func (ex *Exporter) exportLanguageCertificates(ctx context.Context, languageID, versionID int64) ([]any, error) {
	type row struct {
		dateRaw, url, title sql.NullString
		score               sql.NullFloat64
	}
	var certs []row
	err := ex.collect(ctx,
		`SELECT c.cert_date_raw, c.score, c.url, ci.title
		 FROM language_certificates c
		 JOIN language_certificates_i18n ci ON ci.certificate_id = c.id AND ci.version_id = ?
		 WHERE c.spoken_language_id = ?
		 ORDER BY c.sort_order`,
		[]any{versionID, languageID},
		func(rows *sql.Rows) error {
			var r row
			if err := rows.Scan(&r.dateRaw, &r.score, &r.url, &r.title); err != nil {
				return err
			}
			certs = append(certs, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read language certificates: %w", err)
	}

	var out []any
	for _, c := range certs {
		values := make(map[string]any)
		addStr(values, "title", c.title)
		addStr(values, "date", c.dateRaw)
		addFloat(values, "score", c.score)
		addStr(values, "url", c.url)
		out = append(out, record(document.LanguageCertificateFields, values))
	}
	return out, nil
}

func (ex *Exporter) exportWorkshops(ctx context.Context, resumeKey string, versionID int64) (any, error) {
	type row struct {
		id                int64
		url, organization sql.NullString
	}
	var issuers []row
	err := ex.collect(ctx,
		`SELECT i.id, i.url, ii.organization
		 FROM cert_issuers i
		 JOIN cert_issuers_i18n ii ON ii.issuer_id = i.id AND ii.version_id = ?
		 WHERE i.resume_key = ?
		 ORDER BY i.sort_order`,
		[]any{versionID, resumeKey},
		func(rows *sql.Rows) error {
			var r row
			if err := rows.Scan(&r.id, &r.url, &r.organization); err != nil {
				return err
			}
			issuers = append(issuers, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read issuers: %w", err)
	}
	if len(issuers) == 0 {
		return nil, nil
	}

	var out []any
	for _, iss := range issuers {
		values := make(map[string]any)
		addStr(values, "organization", iss.organization)
		addStr(values, "url", iss.url)

		certs, err := ex.exportCertifications(ctx, iss.id, versionID)
		if err != nil {
			return nil, err
		}
		if len(certs) > 0 {
			values["certifications"] = certs
		}
		out = append(out, record(document.WorkshopFields, values))
	}
	return out, nil
}

func (ex *Exporter) exportCertifications(ctx context.Context, issuerID, versionID int64) ([]any, error) {
	type row struct {
		id                  int64
		dateRaw, url, title sql.NullString
	}
	var certs []row
	err := ex.collect(ctx,
		`SELECT c.id, c.cert_date_raw, c.url, ci.title
		 FROM certifications c
		 JOIN certifications_i18n ci ON ci.certification_id = c.id AND ci.version_id = ?
		 WHERE c.issuer_id = ?
		 ORDER BY c.sort_order`,
		[]any{versionID, issuerID},
		func(rows *sql.Rows) error {
			var r row
			if err := rows.Scan(&r.id, &r.dateRaw, &r.url, &r.title); err != nil {
				return err
			}
			certs = append(certs, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read certifications: %w", err)
	}

	var out []any
	for _, c := range certs {
		values := make(map[string]any)
		addStr(values, "title", c.title)
		addStr(values, "date", c.dateRaw)
		addStr(values, "url", c.url)
		if err := ex.addTags(ctx, values, "certification", c.id, versionID); err != nil {
			return nil, err
		}
		out = append(out, record(document.CertificationFields, values))
	}
	return out, nil
}

// collect runs a query and drains the full result set through scan before
// returning, so callers never hold a result set across another query.
func (ex *Exporter) collect(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := ex.store.RawDB().QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
