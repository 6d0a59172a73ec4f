package importer

import (
	"context"
	"fmt"

	"github.com/resumedb/resumedb/internal/document"
)

// importWorkshops upserts the workshop_and_certifications section: issuers
// scoped by resume_key, certifications scoped by issuer.
func (s *session) importWorkshops(ctx context.Context, issuers []document.CertIssuer) error {
	certCount := 0
	for i := range issuers {
		iss := &issuers[i]
		id, found, err := s.lookupByOrder(ctx, "cert_issuers", "resume_key", s.resumeKey, i)
		if err != nil {
			return err
		}
		if found {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE cert_issuers SET url = ? WHERE id = ?`, ns(iss.URL), id); err != nil {
				return fmt.Errorf("failed to update issuer at position %d: %w", i, err)
			}
		} else {
			res, err := s.tx.ExecContext(ctx,
				`INSERT INTO cert_issuers (resume_key, sort_order, url) VALUES (?, ?, ?)`,
				s.resumeKey, i, ns(iss.URL))
			if err != nil {
				return fmt.Errorf("failed to insert issuer at position %d: %w", i, err)
			}
			if id, err = insertedID(res, "cert_issuers"); err != nil {
				return err
			}
		}

		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO cert_issuers_i18n (issuer_id, version_id, organization)
			 VALUES (?, ?, ?)`,
			id, s.versionID, ns(iss.Organization)); err != nil {
			return fmt.Errorf("failed to upsert issuer translation at position %d: %w", i, err)
		}

		if err := s.importCertifications(ctx, id, iss.Certifications); err != nil {
			return err
		}
		certCount += len(iss.Certifications)
	}
	if err := s.trimTail(ctx, "cert_issuers", "resume_key", s.resumeKey, len(issuers)); err != nil {
		return err
	}
	s.counts["workshop_and_certifications"] = len(issuers)
	s.counts["certifications"] = certCount
	return nil
}

func (s *session) importCertifications(ctx context.Context, issuerID int64, certs []document.Certification) error {
	for i := range certs {
		c := &certs[i]
		date, err := s.parseDate("certifications", "date", i, c.Date)
		if err != nil {
			return err
		}
		dateISO, dateRaw := dateCols(date)

		id, found, err := s.lookupByOrder(ctx, "certifications", "issuer_id", issuerID, i)
		if err != nil {
			return err
		}
		if found {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE certifications SET cert_date = ?, cert_date_raw = ?, url = ? WHERE id = ?`,
				dateISO, dateRaw, ns(c.URL), id); err != nil {
				return fmt.Errorf("failed to update certification at position %d: %w", i, err)
			}
		} else {
			res, err := s.tx.ExecContext(ctx,
				`INSERT INTO certifications (issuer_id, sort_order, cert_date, cert_date_raw, url)
				 VALUES (?, ?, ?, ?, ?)`,
				issuerID, i, dateISO, dateRaw, ns(c.URL))
			if err != nil {
				return fmt.Errorf("failed to insert certification at position %d: %w", i, err)
			}
			if id, err = insertedID(res, "certifications"); err != nil {
				return err
			}
		}

		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO certifications_i18n (certification_id, version_id, title)
			 VALUES (?, ?, ?)`,
			id, s.versionID, ns(c.Title)); err != nil {
			return fmt.Errorf("failed to upsert certification translation at position %d: %w", i, err)
		}
		if err := s.applyTags(ctx, "certification", id, c.TypeKey); err != nil {
			return err
		}
	}
	return s.trimTail(ctx, "certifications", "issuer_id", issuerID, len(certs))
}

// importLanguages upserts the spoken-language section and the certificates
// nested under each language.
func (s *session) importLanguages(ctx context.Context, langs []document.SpokenLanguage) error {
	for i := range langs {
		l := &langs[i]
		id, found, err := s.lookupByOrder(ctx, "spoken_languages", "resume_key", s.resumeKey, i)
		if err != nil {
			return err
		}
		if found {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE spoken_languages SET level = ? WHERE id = ?`, ns(l.Level), id); err != nil {
				return fmt.Errorf("failed to update spoken language at position %d: %w", i, err)
			}
		} else {
			res, err := s.tx.ExecContext(ctx,
				`INSERT INTO spoken_languages (resume_key, sort_order, level) VALUES (?, ?, ?)`,
				s.resumeKey, i, ns(l.Level))
			if err != nil {
				return fmt.Errorf("failed to insert spoken language at position %d: %w", i, err)
			}
			if id, err = insertedID(res, "spoken_languages"); err != nil {
				return err
			}
		}

		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO spoken_languages_i18n (spoken_language_id, version_id, name)
			 VALUES (?, ?, ?)`,
			id, s.versionID, ns(l.Name)); err != nil {
			return fmt.Errorf("failed to upsert spoken language translation at position %d: %w", i, err)
		}

		if err := s.importLanguageCertificates(ctx, id, l.Certificates); err != nil {
			return err
		}
	}
	if err := s.trimTail(ctx, "spoken_languages", "resume_key", s.resumeKey, len(langs)); err != nil {
		return err
	}
	s.counts["languages"] = len(langs)
	return nil
}

func (s *session) importLanguageCertificates(ctx context.Context, languageID int64, certs []document.LanguageCertificate) error {
	for i := range certs {
		c := &certs[i]
		date, err := s.parseDate("languages.certificates", "date", i, c.Date)
		if err != nil {
			return err
		}
		dateISO, dateRaw := dateCols(date)

		id, found, err := s.lookupByOrder(ctx, "language_certificates", "spoken_language_id", languageID, i)
		if err != nil {
			return err
		}
		if found {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE language_certificates SET cert_date = ?, cert_date_raw = ?, score = ?, url = ?
				 WHERE id = ?`,
				dateISO, dateRaw, nf(c.Score), ns(c.URL), id); err != nil {
				return fmt.Errorf("failed to update language certificate at position %d: %w", i, err)
			}
		} else {
			res, err := s.tx.ExecContext(ctx,
				`INSERT INTO language_certificates (spoken_language_id, sort_order, cert_date,
				 cert_date_raw, score, url)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				languageID, i, dateISO, dateRaw, nf(c.Score), ns(c.URL))
			if err != nil {
				return fmt.Errorf("failed to insert language certificate at position %d: %w", i, err)
			}
			if id, err = insertedID(res, "language_certificates"); err != nil {
				return err
			}
		}

		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO language_certificates_i18n (certificate_id, version_id, title)
			 VALUES (?, ?, ?)`,
			id, s.versionID, ns(c.Title)); err != nil {
			return fmt.Errorf("failed to upsert language certificate translation at position %d: %w", i, err)
		}
	}
	return s.trimTail(ctx, "language_certificates", "spoken_language_id", languageID, len(certs))
}
