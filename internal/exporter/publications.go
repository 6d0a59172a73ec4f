package exporter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/resumedb/resumedb/internal/document"
)

// exportPublications rebuilds the publications section. Identifiers come out
// both ways, flat convenience fields and the nested identifiers object,
// mirroring the merged storage the importer wrote.
func (ex *Exporter) exportPublications(ctx context.Context, resumeKey string, versionID int64) (any, error) {
	type row struct {
		id                                    int64
		dateRaw, url                          sql.NullString
		doi, isbn, issn, pmid, pmcid, arxiv   sql.NullString
		title, venue, abstract                sql.NullString
	}
	var pubs []row
	err := ex.collect(ctx,
		`SELECT p.id, p.pub_date_raw, p.url, p.doi, p.isbn, p.issn, p.pmid, p.pmcid, p.arxiv,
		        pi.title, pi.venue, pi.abstract
		 FROM publications p
		 JOIN publications_i18n pi ON pi.publication_id = p.id AND pi.version_id = ?
		 WHERE p.resume_key = ?
		 ORDER BY p.sort_order`,
		[]any{versionID, resumeKey},
		func(rows *sql.Rows) error {
			var r row
			if err := rows.Scan(&r.id, &r.dateRaw, &r.url,
				&r.doi, &r.isbn, &r.issn, &r.pmid, &r.pmcid, &r.arxiv,
				&r.title, &r.venue, &r.abstract); err != nil {
				return err
			}
			pubs = append(pubs, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read publications: %w", err)
	}
	if len(pubs) == 0 {
		return nil, nil
	}

	var out []any
	for _, p := range pubs {
		values := make(map[string]any)
		addStr(values, "title", p.title)
		addStr(values, "venue", p.venue)
		addStr(values, "abstract", p.abstract)
		addStr(values, "date", p.dateRaw)
		addStr(values, "url", p.url)
		addStr(values, "doi", p.doi)
		addStr(values, "isbn", p.isbn)
		addStr(values, "issn", p.issn)
		addStr(values, "pmid", p.pmid)
		addStr(values, "pmcid", p.pmcid)
		addStr(values, "arxiv", p.arxiv)

		identifiers := make(map[string]any)
		addStr(identifiers, "doi", p.doi)
		addStr(identifiers, "isbn", p.isbn)
		addStr(identifiers, "issn", p.issn)
		addStr(identifiers, "pmid", p.pmid)
		addStr(identifiers, "pmcid", p.pmcid)
		addStr(identifiers, "arxiv", p.arxiv)
		if len(identifiers) > 0 {
			values["identifiers"] = record(document.IdentifiersFields, identifiers)
		}

		for _, role := range []struct{ role, key string }{
			{"author", "authors"},
			{"editor", "editors"},
			{"supervisor", "supervisors"},
		} {
			names, err := ex.stringList(ctx,
				`SELECT literal FROM publication_contributors
				 WHERE publication_id = ? AND version_id = ? AND role = ?
				 ORDER BY sort_order`,
				p.id, versionID, role.role)
			if err != nil {
				return nil, fmt.Errorf("failed to read %ss: %w", role.role, err)
			}
			if len(names) > 0 {
				values[role.key] = names
			}
		}

		if err := ex.addTags(ctx, values, "publication", p.id, versionID); err != nil {
			return nil, err
		}
		out = append(out, record(document.PublicationFields, values))
	}
	return out, nil
}
