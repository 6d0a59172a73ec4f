package importer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/resumedb/resumedb/internal/document"
)

// importBasics upserts the single basics row and its ordered children:
// emails, pictures, locations, labels. Phone, emails and pictures are
// invariant across variants: a document that carries them rewrites them for
// the whole set, a document that omits them leaves whatever another variant
// wrote in place.
func (s *session) importBasics(ctx context.Context, b *document.Basics) error {
	var phoneCode, phoneNumber, phoneType sql.NullString
	hasPhone := b.Phone != nil
	if hasPhone {
		phoneCode = ns(b.Phone.Code)
		phoneNumber = ns(b.Phone.Number)
		phoneType = ns(b.Phone.Type)
	}

	var basicID int64
	err := s.tx.QueryRowContext(ctx,
		`SELECT id FROM basics WHERE resume_key = ?`, s.resumeKey).Scan(&basicID)
	switch {
	case err == sql.ErrNoRows:
		res, err := s.tx.ExecContext(ctx,
			`INSERT INTO basics (resume_key, has_phone, phone_code, phone_number, phone_type)
			 VALUES (?, ?, ?, ?, ?)`,
			s.resumeKey, hasPhone, phoneCode, phoneNumber, phoneType)
		if err != nil {
			return fmt.Errorf("failed to insert basics: %w", err)
		}
		basicID, err = insertedID(res, "basics")
		if err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("failed to look up basics: %w", err)
	default:
		if hasPhone {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE basics SET has_phone = 1, phone_code = ?, phone_number = ?, phone_type = ? WHERE id = ?`,
				phoneCode, phoneNumber, phoneType, basicID); err != nil {
				return fmt.Errorf("failed to update basics: %w", err)
			}
		}
	}

	if _, err := s.tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO basics_i18n (basic_id, version_id, fname, lname, summary)
		 VALUES (?, ?, ?, ?, ?)`,
		basicID, s.versionID, ns(b.FName), ns(b.LName), ns(b.Summary)); err != nil {
		return fmt.Errorf("failed to upsert basics translation: %w", err)
	}

	if len(b.Email) > 0 {
		if err := s.importBasicsEmails(ctx, basicID, b.Email); err != nil {
			return err
		}
	}
	if len(b.Pictures) > 0 {
		if err := s.importBasicsPictures(ctx, basicID, b.Pictures); err != nil {
			return err
		}
	}
	if err := s.importBasicsLocations(ctx, basicID, b.Location); err != nil {
		return err
	}
	if err := s.importBasicsLabels(ctx, basicID, b.Label); err != nil {
		return err
	}

	s.counts["basics"] = 1
	return nil
}

func (s *session) importBasicsEmails(ctx context.Context, basicID int64, emails []string) error {
	for i, addr := range emails {
		id, found, err := s.lookupByOrder(ctx, "basics_emails", "basic_id", basicID, i)
		if err != nil {
			return err
		}
		if found {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE basics_emails SET address = ? WHERE id = ?`, addr, id); err != nil {
				return fmt.Errorf("failed to update email at position %d: %w", i, err)
			}
			continue
		}
		if _, err := s.tx.ExecContext(ctx,
			`INSERT INTO basics_emails (basic_id, sort_order, address) VALUES (?, ?, ?)`,
			basicID, i, addr); err != nil {
			return fmt.Errorf("failed to insert email at position %d: %w", i, err)
		}
	}
	return s.trimTail(ctx, "basics_emails", "basic_id", basicID, len(emails))
}

func (s *session) importBasicsPictures(ctx context.Context, basicID int64, pictures []string) error {
	for i, path := range pictures {
		id, found, err := s.lookupByOrder(ctx, "basics_pictures", "basic_id", basicID, i)
		if err != nil {
			return err
		}
		if found {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE basics_pictures SET path = ? WHERE id = ?`, path, id); err != nil {
				return fmt.Errorf("failed to update picture at position %d: %w", i, err)
			}
			continue
		}
		if _, err := s.tx.ExecContext(ctx,
			`INSERT INTO basics_pictures (basic_id, sort_order, path) VALUES (?, ?, ?)`,
			basicID, i, path); err != nil {
			return fmt.Errorf("failed to insert picture at position %d: %w", i, err)
		}
	}
	return s.trimTail(ctx, "basics_pictures", "basic_id", basicID, len(pictures))
}

func (s *session) importBasicsLocations(ctx context.Context, basicID int64, locations []document.Location) error {
	for i := range locations {
		loc := &locations[i]
		id, found, err := s.lookupByOrder(ctx, "basics_locations", "basic_id", basicID, i)
		if err != nil {
			return err
		}
		if found {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE basics_locations SET postal_code = ?, country = ? WHERE id = ?`,
				ns(loc.PostalCode), ns(loc.Country), id); err != nil {
				return fmt.Errorf("failed to update location at position %d: %w", i, err)
			}
		} else {
			res, err := s.tx.ExecContext(ctx,
				`INSERT INTO basics_locations (basic_id, sort_order, postal_code, country)
				 VALUES (?, ?, ?, ?)`,
				basicID, i, ns(loc.PostalCode), ns(loc.Country))
			if err != nil {
				return fmt.Errorf("failed to insert location at position %d: %w", i, err)
			}
			if id, err = insertedID(res, "basics_locations"); err != nil {
				return err
			}
		}

		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO basics_locations_i18n (location_id, version_id, address, city, region)
			 VALUES (?, ?, ?, ?, ?)`,
			id, s.versionID, ns(loc.Address), ns(loc.City), ns(loc.Region)); err != nil {
			return fmt.Errorf("failed to upsert location translation at position %d: %w", i, err)
		}
	}
	return s.trimTail(ctx, "basics_locations", "basic_id", basicID, len(locations))
}

func (s *session) importBasicsLabels(ctx context.Context, basicID int64, labels []string) error {
	for i, text := range labels {
		id, found, err := s.lookupByOrder(ctx, "basics_labels", "basic_id", basicID, i)
		if err != nil {
			return err
		}
		if !found {
			res, err := s.tx.ExecContext(ctx,
				`INSERT INTO basics_labels (basic_id, sort_order) VALUES (?, ?)`,
				basicID, i)
			if err != nil {
				return fmt.Errorf("failed to insert label at position %d: %w", i, err)
			}
			if id, err = insertedID(res, "basics_labels"); err != nil {
				return err
			}
		}
		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO basics_labels_i18n (label_id, version_id, text)
			 VALUES (?, ?, ?)`,
			id, s.versionID, text); err != nil {
			return fmt.Errorf("failed to upsert label translation at position %d: %w", i, err)
		}
	}
	return s.trimTail(ctx, "basics_labels", "basic_id", basicID, len(labels))
}
