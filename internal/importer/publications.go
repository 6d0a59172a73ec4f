package importer

import (
	"context"
	"fmt"

	"github.com/resumedb/resumedb/internal/document"
)

func (s *session) importPublications(ctx context.Context, pubs []document.Publication) error {
	for i := range pubs {
		p := &pubs[i]
		date, err := s.parseDate("publications", "date", i, p.Date)
		if err != nil {
			return err
		}
		dateISO, dateRaw := dateCols(date)

		id, found, err := s.lookupByOrder(ctx, "publications", "resume_key", s.resumeKey, i)
		if err != nil {
			return err
		}
		if found {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE publications SET pub_date = ?, pub_date_raw = ?, url = ?,
				 doi = ?, isbn = ?, issn = ?, pmid = ?, pmcid = ?, arxiv = ? WHERE id = ?`,
				dateISO, dateRaw, ns(p.URL),
				ns(p.DOI), ns(p.ISBN), ns(p.ISSN), ns(p.PMID), ns(p.PMCID), ns(p.ArXiv), id); err != nil {
				return fmt.Errorf("failed to update publication at position %d: %w", i, err)
			}
		} else {
			res, err := s.tx.ExecContext(ctx,
				`INSERT INTO publications (resume_key, sort_order, pub_date, pub_date_raw, url,
				 doi, isbn, issn, pmid, pmcid, arxiv)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				s.resumeKey, i, dateISO, dateRaw, ns(p.URL),
				ns(p.DOI), ns(p.ISBN), ns(p.ISSN), ns(p.PMID), ns(p.PMCID), ns(p.ArXiv))
			if err != nil {
				return fmt.Errorf("failed to insert publication at position %d: %w", i, err)
			}
			if id, err = insertedID(res, "publications"); err != nil {
				return err
			}
		}

		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO publications_i18n (publication_id, version_id, title, venue, abstract)
			 VALUES (?, ?, ?, ?, ?)`,
			id, s.versionID, ns(p.Title), ns(p.Venue), ns(p.Abstract)); err != nil {
			return fmt.Errorf("failed to upsert publication translation at position %d: %w", i, err)
		}

		// Contributor lists are rewritten whole per (publication, version,
		// role): they are per-version literals, so this never touches
		// another variant's lists.
		for role, literals := range map[string][]string{
			"author":     p.Authors,
			"editor":     p.Editors,
			"supervisor": p.Supervisors,
		} {
			if err := s.replaceContributors(ctx, id, role, literals); err != nil {
				return err
			}
		}

		if err := s.applyTags(ctx, "publication", id, p.TypeKey); err != nil {
			return err
		}
	}
	if err := s.trimTail(ctx, "publications", "resume_key", s.resumeKey, len(pubs)); err != nil {
		return err
	}
	s.counts["publications"] = len(pubs)
	return nil
}

func (s *session) replaceContributors(ctx context.Context, publicationID int64, role string, literals []string) error {
	if _, err := s.tx.ExecContext(ctx,
		`DELETE FROM publication_contributors
		 WHERE publication_id = ? AND version_id = ? AND role = ?`,
		publicationID, s.versionID, role); err != nil {
		return fmt.Errorf("failed to clear %s list: %w", role, err)
	}
	for i, literal := range literals {
		if _, err := s.tx.ExecContext(ctx,
			`INSERT INTO publication_contributors (publication_id, version_id, role, sort_order, literal)
			 VALUES (?, ?, ?, ?, ?)`,
			publicationID, s.versionID, role, i, literal); err != nil {
			return fmt.Errorf("failed to insert %s at position %d: %w", role, i, err)
		}
	}
	return nil
}
