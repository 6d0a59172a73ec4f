package exporter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/resumedb/resumedb/internal/document"
)

// exportBasics rebuilds the one-element basics array: the single invariant
// row, its translation for this version, and the ordered child lists.
func (ex *Exporter) exportBasics(ctx context.Context, resumeKey string, versionID int64) (any, error) {
	db := ex.store.RawDB()

	var basicID int64
	var hasPhone bool
	var phoneCode, phoneNumber, phoneType sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, has_phone, phone_code, phone_number, phone_type FROM basics WHERE resume_key = ?`,
		resumeKey).Scan(&basicID, &hasPhone, &phoneCode, &phoneNumber, &phoneType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read basics: %w", err)
	}

	var fname, lname, summary sql.NullString
	err = db.QueryRowContext(ctx,
		`SELECT fname, lname, summary FROM basics_i18n WHERE basic_id = ? AND version_id = ?`,
		basicID, versionID).Scan(&fname, &lname, &summary)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read basics translation: %w", err)
	}

	values := make(map[string]any)
	addStr(values, "fname", fname)
	addStr(values, "lname", lname)
	addStr(values, "summary", summary)

	// A phone object appears only when some imported variant carried one;
	// its three keys are then always present, null when unset.
	if hasPhone {
		phone := make(map[string]any)
		addStr(phone, "code", phoneCode)
		addStr(phone, "number", phoneNumber)
		addStr(phone, "type", phoneType)
		values["phone"] = record(document.PhoneFields, phone)
	}

	emails, err := ex.stringList(ctx,
		`SELECT address FROM basics_emails WHERE basic_id = ? ORDER BY sort_order`, basicID)
	if err != nil {
		return nil, fmt.Errorf("failed to read emails: %w", err)
	}
	if len(emails) > 0 {
		values["email"] = emails
	}

	pictures, err := ex.stringList(ctx,
		`SELECT path FROM basics_pictures WHERE basic_id = ? ORDER BY sort_order`, basicID)
	if err != nil {
		return nil, fmt.Errorf("failed to read pictures: %w", err)
	}
	if len(pictures) > 0 {
		values["Pictures"] = pictures
	}

	locations, err := ex.exportLocations(ctx, basicID, versionID)
	if err != nil {
		return nil, err
	}
	if len(locations) > 0 {
		values["location"] = locations
	}

	labels, err := ex.stringList(ctx,
		`SELECT bl.text FROM basics_labels_i18n bl
		 JOIN basics_labels b ON b.id = bl.label_id
		 WHERE b.basic_id = ? AND bl.version_id = ?
		 ORDER BY b.sort_order`,
		basicID, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	if len(labels) > 0 {
		values["label"] = labels
	}

	return []any{record(document.BasicsFields, values)}, nil
}

func (ex *Exporter) exportLocations(ctx context.Context, basicID, versionID int64) ([]any, error) {
	rows, err := ex.store.RawDB().QueryContext(ctx,
		`SELECT l.postal_code, l.country, li.address, li.city, li.region
		 FROM basics_locations l
		 JOIN basics_locations_i18n li
		   ON li.location_id = l.id AND li.version_id = ?
		 WHERE l.basic_id = ?
		 ORDER BY l.sort_order`,
		versionID, basicID)
	if err != nil {
		return nil, fmt.Errorf("failed to read locations: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		var postalCode, country, address, city, region sql.NullString
		if err := rows.Scan(&postalCode, &country, &address, &city, &region); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		values := make(map[string]any)
		addStr(values, "address", address)
		addStr(values, "city", city)
		addStr(values, "region", region)
		addStr(values, "postalCode", postalCode)
		addStr(values, "country", country)
		out = append(out, record(document.LocationFields, values))
	}
	return out, rows.Err()
}

func (ex *Exporter) stringList(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := ex.store.RawDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
