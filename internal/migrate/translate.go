package migrate

import (
	"encoding/json"
	"fmt"

	"github.com/resumedb/resumedb/internal/document"
)

// translateEntry decodes one legacy entry payload into its section's typed
// record and attaches the junction-table tags. Unknown section names are a
// hard error: silently dropping rows would break the count invariants this
// migration is verified by.
func (m *migration) translateEntry(doc *document.Document, skills *skillTree, e legacyEntry) error {
	switch e.section {
	case "basics":
		var b document.Basics
		if err := json.Unmarshal(e.payload, &b); err != nil {
			return fmt.Errorf("failed to decode basics payload: %w", err)
		}
		doc.Basics = b
	case "profiles":
		var p document.Profile
		if err := json.Unmarshal(e.payload, &p); err != nil {
			return fmt.Errorf("failed to decode profile payload: %w", err)
		}
		p.TypeKey = mergeTags(p.TypeKey, e.tags)
		doc.Profiles = append(doc.Profiles, p)
	case "education":
		var ed document.Education
		if err := json.Unmarshal(e.payload, &ed); err != nil {
			return fmt.Errorf("failed to decode education payload: %w", err)
		}
		ed.TypeKey = mergeTags(ed.TypeKey, e.tags)
		doc.Education = append(doc.Education, ed)
	case "languages":
		var l document.SpokenLanguage
		if err := json.Unmarshal(e.payload, &l); err != nil {
			return fmt.Errorf("failed to decode language payload: %w", err)
		}
		doc.Languages = append(doc.Languages, l)
	case "workshop_and_certifications":
		var iss document.CertIssuer
		if err := json.Unmarshal(e.payload, &iss); err != nil {
			return fmt.Errorf("failed to decode issuer payload: %w", err)
		}
		for i := range iss.Certifications {
			iss.Certifications[i].TypeKey = mergeTags(iss.Certifications[i].TypeKey, e.tags)
		}
		doc.Workshops = append(doc.Workshops, iss)
	case "skills":
		var item legacySkill
		if err := json.Unmarshal(e.payload, &item); err != nil {
			return fmt.Errorf("failed to decode skill payload: %w", err)
		}
		item.TypeKey = mergeTags(item.TypeKey, e.tags)
		skills.add(item)
	case "experiences":
		var ex document.Experience
		if err := json.Unmarshal(e.payload, &ex); err != nil {
			return fmt.Errorf("failed to decode experience payload: %w", err)
		}
		ex.TypeKey = mergeTags(ex.TypeKey, e.tags)
		doc.Experiences = append(doc.Experiences, ex)
	case "projects":
		var p document.Project
		if err := json.Unmarshal(e.payload, &p); err != nil {
			return fmt.Errorf("failed to decode project payload: %w", err)
		}
		p.TypeKey = mergeTags(p.TypeKey, e.tags)
		doc.Projects = append(doc.Projects, p)
	case "publications":
		var p document.Publication
		if err := json.Unmarshal(e.payload, &p); err != nil {
			return fmt.Errorf("failed to decode publication payload: %w", err)
		}
		p.TypeKey = mergeTags(p.TypeKey, e.tags)
		doc.Publications = append(doc.Publications, p)
	case "references":
		var r document.Reference
		if err := json.Unmarshal(e.payload, &r); err != nil {
			return fmt.Errorf("failed to decode reference payload: %w", err)
		}
		doc.References = append(doc.References, r)
	default:
		return fmt.Errorf("unknown section %q", e.section)
	}
	return nil
}

// legacySkill is the flattened legacy skill row: one entry per item, with
// its category and subcategory names inline.
type legacySkill struct {
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	LongName    *string  `json:"long_name,omitempty"`
	ShortName   *string  `json:"short_name,omitempty"`
	TypeKey     []string `json:"type_key,omitempty"`
}

// skillTree rebuilds the nested category tree from flattened legacy rows,
// levels ordered by first encounter.
type skillTree struct {
	order []string
	cats  map[string]*skillCat
}

type skillCat struct {
	order []string
	subs  map[string][]document.SkillItem
}

func newSkillTree() *skillTree {
	return &skillTree{cats: make(map[string]*skillCat)}
}

func (t *skillTree) add(s legacySkill) {
	cat, ok := t.cats[s.Category]
	if !ok {
		cat = &skillCat{subs: make(map[string][]document.SkillItem)}
		t.cats[s.Category] = cat
		t.order = append(t.order, s.Category)
	}
	if _, ok := cat.subs[s.Subcategory]; !ok {
		cat.order = append(cat.order, s.Subcategory)
	}
	cat.subs[s.Subcategory] = append(cat.subs[s.Subcategory], document.SkillItem{
		LongName:  s.LongName,
		ShortName: s.ShortName,
		TypeKey:   s.TypeKey,
	})
}

func (t *skillTree) categories() []document.SkillCategory {
	var out []document.SkillCategory
	for _, catName := range t.order {
		cat := t.cats[catName]
		node := document.SkillCategory{Name: catName}
		for _, subName := range cat.order {
			node.Subcategories = append(node.Subcategories, document.SkillSubcategory{
				Name:  subName,
				Items: cat.subs[subName],
			})
		}
		out = append(out, node)
	}
	return out
}
