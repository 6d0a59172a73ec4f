package importer

import (
	"context"
	"fmt"

	"github.com/resumedb/resumedb/internal/document"
)

func (s *session) importProfiles(ctx context.Context, profiles []document.Profile) error {
	for i := range profiles {
		p := &profiles[i]
		id, found, err := s.lookupByOrder(ctx, "profiles", "resume_key", s.resumeKey, i)
		if err != nil {
			return err
		}
		if found {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE profiles SET network = ?, username = ?, url = ? WHERE id = ?`,
				ns(p.Network), ns(p.Username), ns(p.URL), id); err != nil {
				return fmt.Errorf("failed to update profile at position %d: %w", i, err)
			}
		} else {
			res, err := s.tx.ExecContext(ctx,
				`INSERT INTO profiles (resume_key, sort_order, network, username, url)
				 VALUES (?, ?, ?, ?, ?)`,
				s.resumeKey, i, ns(p.Network), ns(p.Username), ns(p.URL))
			if err != nil {
				return fmt.Errorf("failed to insert profile at position %d: %w", i, err)
			}
			if id, err = insertedID(res, "profiles"); err != nil {
				return err
			}
		}

		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO profiles_i18n (profile_id, version_id, label) VALUES (?, ?, ?)`,
			id, s.versionID, ns(p.Label)); err != nil {
			return fmt.Errorf("failed to upsert profile translation at position %d: %w", i, err)
		}
		if err := s.applyTags(ctx, "profile", id, p.TypeKey); err != nil {
			return err
		}
	}
	if err := s.trimTail(ctx, "profiles", "resume_key", s.resumeKey, len(profiles)); err != nil {
		return err
	}
	s.counts["profiles"] = len(profiles)
	return nil
}

func (s *session) importEducation(ctx context.Context, entries []document.Education) error {
	for i := range entries {
		e := &entries[i]
		start, err := s.parseDate("education", "startDate", i, e.StartDate)
		if err != nil {
			return err
		}
		end, err := s.parseDate("education", "endDate", i, e.EndDate)
		if err != nil {
			return err
		}
		startISO, startRaw := dateCols(start)
		endISO, endRaw := dateCols(end)

		id, found, err := s.lookupByOrder(ctx, "education", "resume_key", s.resumeKey, i)
		if err != nil {
			return err
		}
		if found {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE education SET start_date = ?, start_date_raw = ?, end_date = ?,
				 end_date_raw = ?, score = ?, url = ? WHERE id = ?`,
				startISO, startRaw, endISO, endRaw, nf(e.Score), ns(e.URL), id); err != nil {
				return fmt.Errorf("failed to update education at position %d: %w", i, err)
			}
		} else {
			res, err := s.tx.ExecContext(ctx,
				`INSERT INTO education (resume_key, sort_order, start_date, start_date_raw,
				 end_date, end_date_raw, score, url)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				s.resumeKey, i, startISO, startRaw, endISO, endRaw, nf(e.Score), ns(e.URL))
			if err != nil {
				return fmt.Errorf("failed to insert education at position %d: %w", i, err)
			}
			if id, err = insertedID(res, "education"); err != nil {
				return err
			}
		}

		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO education_i18n (education_id, version_id, institution, degree, description)
			 VALUES (?, ?, ?, ?, ?)`,
			id, s.versionID, ns(e.Institution), ns(e.Degree), ns(e.Description)); err != nil {
			return fmt.Errorf("failed to upsert education translation at position %d: %w", i, err)
		}
		if err := s.applyTags(ctx, "education", id, e.TypeKey); err != nil {
			return err
		}
	}
	if err := s.trimTail(ctx, "education", "resume_key", s.resumeKey, len(entries)); err != nil {
		return err
	}
	s.counts["education"] = len(entries)
	return nil
}

func (s *session) importExperiences(ctx context.Context, entries []document.Experience) error {
	for i := range entries {
		e := &entries[i]
		start, err := s.parseDate("experiences", "startDate", i, e.StartDate)
		if err != nil {
			return err
		}
		end, err := s.parseDate("experiences", "endDate", i, e.EndDate)
		if err != nil {
			return err
		}
		startISO, startRaw := dateCols(start)
		endISO, endRaw := dateCols(end)

		id, found, err := s.lookupByOrder(ctx, "experiences", "resume_key", s.resumeKey, i)
		if err != nil {
			return err
		}
		if found {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE experiences SET start_date = ?, start_date_raw = ?, end_date = ?,
				 end_date_raw = ?, url = ? WHERE id = ?`,
				startISO, startRaw, endISO, endRaw, ns(e.URL), id); err != nil {
				return fmt.Errorf("failed to update experience at position %d: %w", i, err)
			}
		} else {
			res, err := s.tx.ExecContext(ctx,
				`INSERT INTO experiences (resume_key, sort_order, start_date, start_date_raw,
				 end_date, end_date_raw, url)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				s.resumeKey, i, startISO, startRaw, endISO, endRaw, ns(e.URL))
			if err != nil {
				return fmt.Errorf("failed to insert experience at position %d: %w", i, err)
			}
			if id, err = insertedID(res, "experiences"); err != nil {
				return err
			}
		}

		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO experiences_i18n (experience_id, version_id, company, position, description)
			 VALUES (?, ?, ?, ?, ?)`,
			id, s.versionID, ns(e.Company), ns(e.Position), ns(e.Description)); err != nil {
			return fmt.Errorf("failed to upsert experience translation at position %d: %w", i, err)
		}
		if err := s.applyTags(ctx, "experience", id, e.TypeKey); err != nil {
			return err
		}
	}
	if err := s.trimTail(ctx, "experiences", "resume_key", s.resumeKey, len(entries)); err != nil {
		return err
	}
	s.counts["experiences"] = len(entries)
	return nil
}

func (s *session) importProjects(ctx context.Context, entries []document.Project) error {
	for i := range entries {
		p := &entries[i]
		start, err := s.parseDate("projects", "startDate", i, p.StartDate)
		if err != nil {
			return err
		}
		end, err := s.parseDate("projects", "endDate", i, p.EndDate)
		if err != nil {
			return err
		}
		startISO, startRaw := dateCols(start)
		endISO, endRaw := dateCols(end)

		id, found, err := s.lookupByOrder(ctx, "projects", "resume_key", s.resumeKey, i)
		if err != nil {
			return err
		}
		if found {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE projects SET start_date = ?, start_date_raw = ?, end_date = ?,
				 end_date_raw = ?, url = ?, primary_focus = ? WHERE id = ?`,
				startISO, startRaw, endISO, endRaw, ns(p.URL), ns(p.PrimaryFocus), id); err != nil {
				return fmt.Errorf("failed to update project at position %d: %w", i, err)
			}
		} else {
			res, err := s.tx.ExecContext(ctx,
				`INSERT INTO projects (resume_key, sort_order, start_date, start_date_raw,
				 end_date, end_date_raw, url, primary_focus)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				s.resumeKey, i, startISO, startRaw, endISO, endRaw, ns(p.URL), ns(p.PrimaryFocus))
			if err != nil {
				return fmt.Errorf("failed to insert project at position %d: %w", i, err)
			}
			if id, err = insertedID(res, "projects"); err != nil {
				return err
			}
		}

		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO projects_i18n (project_id, version_id, name, description)
			 VALUES (?, ?, ?, ?)`,
			id, s.versionID, ns(p.Name), ns(p.Description)); err != nil {
			return fmt.Errorf("failed to upsert project translation at position %d: %w", i, err)
		}
		if err := s.applyTags(ctx, "project", id, p.TypeKey); err != nil {
			return err
		}
	}
	if err := s.trimTail(ctx, "projects", "resume_key", s.resumeKey, len(entries)); err != nil {
		return err
	}
	s.counts["projects"] = len(entries)
	return nil
}

func (s *session) importReferences(ctx context.Context, entries []document.Reference) error {
	for i := range entries {
		r := &entries[i]
		id, found, err := s.lookupByOrder(ctx, "referees", "resume_key", s.resumeKey, i)
		if err != nil {
			return err
		}
		if found {
			if _, err := s.tx.ExecContext(ctx,
				`UPDATE referees SET email = ?, url = ? WHERE id = ?`,
				ns(r.Email), ns(r.URL), id); err != nil {
				return fmt.Errorf("failed to update reference at position %d: %w", i, err)
			}
		} else {
			res, err := s.tx.ExecContext(ctx,
				`INSERT INTO referees (resume_key, sort_order, email, url) VALUES (?, ?, ?, ?)`,
				s.resumeKey, i, ns(r.Email), ns(r.URL))
			if err != nil {
				return fmt.Errorf("failed to insert reference at position %d: %w", i, err)
			}
			if id, err = insertedID(res, "referees"); err != nil {
				return err
			}
		}

		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO referees_i18n (referee_id, version_id, name, position, description)
			 VALUES (?, ?, ?, ?, ?)`,
			id, s.versionID, ns(r.Name), ns(r.Position), ns(r.Description)); err != nil {
			return fmt.Errorf("failed to upsert reference translation at position %d: %w", i, err)
		}
	}
	if err := s.trimTail(ctx, "referees", "resume_key", s.resumeKey, len(entries)); err != nil {
		return err
	}
	s.counts["references"] = len(entries)
	return nil
}
