package importer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/resumedb/resumedb/internal/document"
	"github.com/resumedb/resumedb/internal/tags"
)

// importSkills upserts the 3-level skills tree. Category and subcategory
// rows are matched by slug first and by position second: the slug pins
// identity within a language, the position carries identity across languages
// whose display names slugify differently. Whoever created the row fixed its
// slug; later variants only add translations.
func (s *session) importSkills(ctx context.Context, cats []document.SkillCategory) error {
	itemCount := 0
	for i := range cats {
		cat := &cats[i]
		catID, err := s.upsertSkillNode(ctx, skillNodeSpec{
			table:     "skill_categories",
			parentCol: "resume_key",
			parent:    s.resumeKey,
		}, tags.Slugify(cat.Name), i)
		if err != nil {
			return err
		}
		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO skill_categories_i18n (category_id, version_id, name)
			 VALUES (?, ?, ?)`,
			catID, s.versionID, cat.Name); err != nil {
			return fmt.Errorf("failed to upsert category translation %q: %w", cat.Name, err)
		}

		for j := range cat.Subcategories {
			sub := &cat.Subcategories[j]
			subID, err := s.upsertSkillNode(ctx, skillNodeSpec{
				table:     "skill_subcategories",
				parentCol: "category_id",
				parent:    catID,
			}, tags.Slugify(sub.Name), j)
			if err != nil {
				return err
			}
			if _, err := s.tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO skill_subcategories_i18n (subcategory_id, version_id, name)
				 VALUES (?, ?, ?)`,
				subID, s.versionID, sub.Name); err != nil {
				return fmt.Errorf("failed to upsert subcategory translation %q: %w", sub.Name, err)
			}

			if err := s.importSkillItems(ctx, subID, sub.Items); err != nil {
				return err
			}
			itemCount += len(sub.Items)
		}
		if err := s.trimTail(ctx, "skill_subcategories", "category_id", catID, len(cat.Subcategories)); err != nil {
			return err
		}
	}
	if err := s.trimTail(ctx, "skill_categories", "resume_key", s.resumeKey, len(cats)); err != nil {
		return err
	}
	s.counts["skills"] = itemCount
	return nil
}

type skillNodeSpec struct {
	table     string
	parentCol string
	parent    any
}

// upsertSkillNode resolves one category or subcategory row: by slug, then by
// position, then insert. The stored slug is never overwritten; the stored
// sort_order follows the latest import.
func (s *session) upsertSkillNode(ctx context.Context, spec skillNodeSpec, slug string, order int) (int64, error) {
	var id int64

	query := fmt.Sprintf(`SELECT id FROM %s WHERE %s = ? AND slug = ?`, spec.table, spec.parentCol)
	err := s.tx.QueryRowContext(ctx, query, spec.parent, slug).Scan(&id)
	if err == nil {
		update := fmt.Sprintf(`UPDATE %s SET sort_order = ? WHERE id = ?`, spec.table)
		if _, err := s.tx.ExecContext(ctx, update, order, id); err != nil {
			return 0, fmt.Errorf("failed to reorder %s %q: %w", spec.table, slug, err)
		}
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up %s by slug %q: %w", spec.table, slug, err)
	}

	query = fmt.Sprintf(`SELECT id FROM %s WHERE %s = ? AND sort_order = ?`, spec.table, spec.parentCol)
	err = s.tx.QueryRowContext(ctx, query, spec.parent, order).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up %s at position %d: %w", spec.table, order, err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (%s, slug, sort_order) VALUES (?, ?, ?)`,
		spec.table, spec.parentCol)
	res, err := s.tx.ExecContext(ctx, insert, spec.parent, slug, order)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s %q: %w", spec.table, slug, err)
	}
	return insertedID(res, spec.table)
}

func (s *session) importSkillItems(ctx context.Context, subID int64, items []document.SkillItem) error {
	for i := range items {
		item := &items[i]
		id, found, err := s.lookupByOrder(ctx, "skill_items", "subcategory_id", subID, i)
		if err != nil {
			return err
		}
		if !found {
			res, err := s.tx.ExecContext(ctx,
				`INSERT INTO skill_items (subcategory_id, sort_order) VALUES (?, ?)`, subID, i)
			if err != nil {
				return fmt.Errorf("failed to insert skill item at position %d: %w", i, err)
			}
			if id, err = insertedID(res, "skill_items"); err != nil {
				return err
			}
		}

		if _, err := s.tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO skill_items_i18n (item_id, version_id, long_name, short_name)
			 VALUES (?, ?, ?, ?)`,
			id, s.versionID, ns(item.LongName), ns(item.ShortName)); err != nil {
			return fmt.Errorf("failed to upsert skill item translation at position %d: %w", i, err)
		}
		if err := s.applyTags(ctx, "skill_item", id, item.TypeKey); err != nil {
			return err
		}
	}
	return s.trimTail(ctx, "skill_items", "subcategory_id", subID, len(items))
}
