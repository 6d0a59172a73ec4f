// Package exporter reconstructs portable resume documents from the
// normalized store.
//
// Reconstruction is driven entirely by the declared field-order tables in
// internal/document and the fixed section order; nothing is inferred from
// the database beyond sort_order. Rows are read ordered, mapped onto ordered
// objects, and serialized with keys in the declared order. Keys stored but
// not declared are appended after the templated ones, so a field added to
// the schema without updating the order tables still survives a round trip.
package exporter

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/resumedb/resumedb/internal/document"
	"github.com/resumedb/resumedb/internal/store"
	"github.com/resumedb/resumedb/internal/tags"
)

// Exporter reads one store. Construct one per store.
type Exporter struct {
	store   *store.Store
	catalog *tags.Catalog
}

// New creates an Exporter over an initialized store.
func New(st *store.Store) *Exporter {
	return &Exporter{store: st, catalog: tags.NewCatalog(st.RawDB())}
}

// ExportDocument reconstructs the document for (resumeKey, language) as
// pretty-printed JSON. Fails with store.ErrVersionNotFound when the variant
// does not exist.
func (ex *Exporter) ExportDocument(ctx context.Context, resumeKey, language string) ([]byte, error) {
	om, err := ex.ExportValue(ctx, resumeKey, language)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(om, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document (%s, %s): %w", resumeKey, language, err)
	}
	return data, nil
}

// ExportValue reconstructs the document as an ordered-object tree, the form
// the verifier consumes directly.
func (ex *Exporter) ExportValue(ctx context.Context, resumeKey, language string) (*OM, error) {
	versionID, err := ex.store.LookupVersion(ctx, resumeKey, language)
	if err != nil {
		return nil, err
	}

	var hasConfig, hasConfigID, hasConfigLang bool
	err = ex.store.RawDB().QueryRowContext(ctx,
		`SELECT has_config, has_config_id, has_config_lang FROM resume_versions WHERE version_id = ?`,
		versionID).Scan(&hasConfig, &hasConfigID, &hasConfigLang)
	if err != nil {
		return nil, fmt.Errorf("failed to read version %d: %w", versionID, err)
	}

	doc := NewOM()
	for _, section := range document.SectionOrder {
		var value any
		var err error
		switch section {
		case "config":
			// The block and its key set mirror what the source carried: a
			// config holding only an ID comes back with only an ID.
			if hasConfig {
				values := make(map[string]any)
				if hasConfigID {
					values["ID"] = resumeKey
				}
				if hasConfigLang {
					values["lang"] = language
				}
				value = record(document.ConfigFields, values)
			}
		case "basics":
			value, err = ex.exportBasics(ctx, resumeKey, versionID)
		case "profiles":
			value, err = ex.exportProfiles(ctx, resumeKey, versionID)
		case "education":
			value, err = ex.exportEducation(ctx, resumeKey, versionID)
		case "languages":
			value, err = ex.exportLanguages(ctx, resumeKey, versionID)
		case "workshop_and_certifications":
			value, err = ex.exportWorkshops(ctx, resumeKey, versionID)
		case "skills":
			value, err = ex.exportSkills(ctx, resumeKey, versionID)
		case "experiences":
			value, err = ex.exportExperiences(ctx, resumeKey, versionID)
		case "projects":
			value, err = ex.exportProjects(ctx, resumeKey, versionID)
		case "publications":
			value, err = ex.exportPublications(ctx, resumeKey, versionID)
		case "references":
			value, err = ex.exportReferences(ctx, resumeKey, versionID)
		}
		if err != nil {
			return nil, err
		}
		if value != nil {
			doc.Set(section, value)
		}
	}
	return doc, nil
}

// ExportVariants exports every language variant of one resume set, keyed by
// language code.
func (ex *Exporter) ExportVariants(ctx context.Context, resumeKey string) (map[string][]byte, error) {
	versions, err := ex.store.ListVersions(ctx, resumeKey)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(versions))
	for _, v := range versions {
		data, err := ex.ExportDocument(ctx, resumeKey, v.Language)
		if err != nil {
			return nil, err
		}
		out[v.Language] = data
	}
	return out, nil
}

// ExportAll exports every variant of every resume set in the store, keyed by
// "<resume_key>_<language>".
func (ex *Exporter) ExportAll(ctx context.Context) (map[string][]byte, error) {
	keys, err := ex.store.ListResumeKeys(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte)
	for _, key := range keys {
		variants, err := ex.ExportVariants(ctx, key)
		if err != nil {
			return nil, err
		}
		for lang, data := range variants {
			out[fmt.Sprintf("%s_%s", key, lang)] = data
		}
	}
	return out, nil
}

// record assembles one ordered object: declared fields first in declared
// order, honoring the per-field null-vs-omit policy, then any undeclared
// keys appended in stable (sorted) order.
func record(fields []document.Field, values map[string]any) *OM {
	om := NewOM()
	declared := make(map[string]bool, len(fields))
	for _, f := range fields {
		declared[f.Name] = true
		if v, ok := values[f.Name]; ok && v != nil {
			om.Set(f.Name, v)
		} else if f.Policy == document.NullWhenAbsent {
			om.Set(f.Name, nil)
		}
	}

	var extras []string
	for k := range values {
		if !declared[k] {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	for _, k := range extras {
		om.Set(k, values[k])
	}
	return om
}

func addStr(values map[string]any, key string, v sql.NullString) {
	if v.Valid {
		values[key] = v.String
	}
}

func addFloat(values map[string]any, key string, v sql.NullFloat64) {
	if v.Valid {
		values[key] = v.Float64
	}
}

// addTags attaches the entity's resolved tag labels when any exist.
func (ex *Exporter) addTags(ctx context.Context, values map[string]any, entityType string, entityID, versionID int64) error {
	labels, err := ex.catalog.Labels(ctx, entityType, entityID, versionID)
	if err != nil {
		return err
	}
	if len(labels) > 0 {
		values["type_key"] = labels
	}
	return nil
}
