package exporter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/resumedb/resumedb/internal/document"
)

// exportSkills reassembles the three-level skills tree in stored sort order.
// Object keys are the version's display names; nodes the variant never named
// are left out of its tree entirely.
func (ex *Exporter) exportSkills(ctx context.Context, resumeKey string, versionID int64) (any, error) {
	type node struct {
		id   int64
		name string
	}

	var cats []node
	err := ex.collect(ctx,
		`SELECT c.id, ci.name
		 FROM skill_categories c
		 JOIN skill_categories_i18n ci ON ci.category_id = c.id AND ci.version_id = ?
		 WHERE c.resume_key = ?
		 ORDER BY c.sort_order`,
		[]any{versionID, resumeKey},
		func(rows *sql.Rows) error {
			var n node
			if err := rows.Scan(&n.id, &n.name); err != nil {
				return err
			}
			cats = append(cats, n)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read skill categories: %w", err)
	}
	if len(cats) == 0 {
		return nil, nil
	}

	tree := NewOM()
	for _, cat := range cats {
		var subs []node
		err := ex.collect(ctx,
			`SELECT s.id, si.name
			 FROM skill_subcategories s
			 JOIN skill_subcategories_i18n si ON si.subcategory_id = s.id AND si.version_id = ?
			 WHERE s.category_id = ?
			 ORDER BY s.sort_order`,
			[]any{versionID, cat.id},
			func(rows *sql.Rows) error {
				var n node
				if err := rows.Scan(&n.id, &n.name); err != nil {
					return err
				}
				subs = append(subs, n)
				return nil
			})
		if err != nil {
			return nil, fmt.Errorf("failed to read subcategories of %q: %w", cat.name, err)
		}

		catOM := NewOM()
		for _, sub := range subs {
			items, err := ex.exportSkillItems(ctx, sub.id, versionID)
			if err != nil {
				return nil, err
			}
			catOM.Set(sub.name, items)
		}
		tree.Set(cat.name, catOM)
	}
	return tree, nil
}

func (ex *Exporter) exportSkillItems(ctx context.Context, subcategoryID, versionID int64) ([]any, error) {
	type row struct {
		id                  int64
		longName, shortName sql.NullString
	}
	var items []row
	err := ex.collect(ctx,
		`SELECT i.id, ii.long_name, ii.short_name
		 FROM skill_items i
		 JOIN skill_items_i18n ii ON ii.item_id = i.id AND ii.version_id = ?
		 WHERE i.subcategory_id = ?
		 ORDER BY i.sort_order`,
		[]any{versionID, subcategoryID},
		func(rows *sql.Rows) error {
			var r row
			if err := rows.Scan(&r.id, &r.longName, &r.shortName); err != nil {
				return err
			}
			items = append(items, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read skill items: %w", err)
	}

	out := make([]any, 0, len(items))
	for _, it := range items {
		values := make(map[string]any)
		addStr(values, "long_name", it.longName)
		addStr(values, "short_name", it.shortName)
		if err := ex.addTags(ctx, values, "skill_item", it.id, versionID); err != nil {
			return nil, err
		}
		out = append(out, record(document.SkillItemFields, values))
	}
	return out, nil
}
