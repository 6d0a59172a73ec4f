// Package document defines the typed record structs for the portable resume
// JSON format and the single decode step that turns raw JSON into them.
//
// Every section has one struct with every field explicit; nothing downstream
// touches raw maps. The skills section is the exception to plain
// json.Unmarshal: its object key order is the array-position signal, so it is
// walked with gjson, which iterates keys in document order.
package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrValidation marks a document-level validation failure: malformed JSON,
// wrong top-level type, missing required sections. Fatal to the one document,
// never to a batch.
var ErrValidation = errors.New("invalid document")

// Config is the optional identity block at the top of a document. HasID and
// HasLang record which keys the source actually carried; export writes back
// exactly that key set, so a config holding only an ID does not grow a lang
// on the way out.
type Config struct {
	ID   string `json:"ID"`
	Lang string `json:"lang"`

	HasID   bool `json:"-"`
	HasLang bool `json:"-"`
}

// Phone is invariant across language variants. All three sub-fields are
// always exported, null when absent.
type Phone struct {
	Code   *string `json:"code"`
	Number *string `json:"number"`
	Type   *string `json:"type"`
}

// Location mixes invariant fields (postal code, country) with per-language
// spellings (address, city, region).
type Location struct {
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	Region     *string `json:"region,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
	Country    *string `json:"country,omitempty"`
}

// Basics is the one-element section holding the person themselves.
type Basics struct {
	FName    *string    `json:"fname"`
	LName    *string    `json:"lname"`
	Summary  *string    `json:"summary,omitempty"`
	Email    []string   `json:"email,omitempty"`
	Phone    *Phone     `json:"phone,omitempty"`
	Location []Location `json:"location,omitempty"`
	Pictures []string   `json:"Pictures,omitempty"`
	Label    []string   `json:"label,omitempty"`
}

type Profile struct {
	Network  *string  `json:"network,omitempty"`
	Username *string  `json:"username,omitempty"`
	URL      *string  `json:"url,omitempty"`
	Label    *string  `json:"label,omitempty"`
	TypeKey  []string `json:"type_key,omitempty"`
}

type Education struct {
	Institution *string  `json:"institution,omitempty"`
	Degree      *string  `json:"degree,omitempty"`
	Description *string  `json:"description,omitempty"`
	StartDate   *string  `json:"startDate,omitempty"`
	EndDate     *string  `json:"endDate,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	URL         *string  `json:"url,omitempty"`
	TypeKey     []string `json:"type_key,omitempty"`
}

type LanguageCertificate struct {
	Title *string  `json:"title,omitempty"`
	Date  *string  `json:"date,omitempty"`
	Score *float64 `json:"score,omitempty"`
	URL   *string  `json:"url,omitempty"`
}

type SpokenLanguage struct {
	Name         *string               `json:"name,omitempty"`
	Level        *string               `json:"level,omitempty"`
	Certificates []LanguageCertificate `json:"certificates,omitempty"`
}

type Certification struct {
	Title   *string  `json:"title,omitempty"`
	Date    *string  `json:"date,omitempty"`
	URL     *string  `json:"url,omitempty"`
	TypeKey []string `json:"type_key,omitempty"`
}

type CertIssuer struct {
	Organization   *string         `json:"organization,omitempty"`
	URL            *string         `json:"url,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
}

type SkillItem struct {
	LongName  *string  `json:"long_name,omitempty"`
	ShortName *string  `json:"short_name,omitempty"`
	TypeKey   []string `json:"type_key,omitempty"`
}

// SkillSubcategory keeps the object key it was decoded from; the in-document
// position of that key is its sort order.
type SkillSubcategory struct {
	Name  string
	Items []SkillItem
}

type SkillCategory struct {
	Name          string
	Subcategories []SkillSubcategory
}

type Experience struct {
	Company     *string  `json:"company,omitempty"`
	Position    *string  `json:"position,omitempty"`
	Description *string  `json:"description,omitempty"`
	StartDate   *string  `json:"startDate,omitempty"`
	EndDate     *string  `json:"endDate,omitempty"`
	URL         *string  `json:"url,omitempty"`
	TypeKey     []string `json:"type_key,omitempty"`
}

type Project struct {
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	StartDate    *string  `json:"startDate,omitempty"`
	EndDate      *string  `json:"endDate,omitempty"`
	URL          *string  `json:"url,omitempty"`
	PrimaryFocus *string  `json:"primaryFocus,omitempty"`
	TypeKey      []string `json:"type_key,omitempty"`
}

// Identifiers is the nested mirror of the flat publication identifier fields.
type Identifiers struct {
	DOI   *string `json:"doi,omitempty"`
	ISBN  *string `json:"isbn,omitempty"`
	ISSN  *string `json:"issn,omitempty"`
	PMID  *string `json:"pmid,omitempty"`
	PMCID *string `json:"pmcid,omitempty"`
	ArXiv *string `json:"arxiv,omitempty"`
}

type Publication struct {
	Title       *string      `json:"title,omitempty"`
	Venue       *string      `json:"venue,omitempty"`
	Abstract    *string      `json:"abstract,omitempty"`
	Date        *string      `json:"date,omitempty"`
	URL         *string      `json:"url,omitempty"`
	DOI         *string      `json:"doi,omitempty"`
	ISBN        *string      `json:"isbn,omitempty"`
	ISSN        *string      `json:"issn,omitempty"`
	PMID        *string      `json:"pmid,omitempty"`
	PMCID       *string      `json:"pmcid,omitempty"`
	ArXiv       *string      `json:"arxiv,omitempty"`
	Identifiers *Identifiers `json:"identifiers,omitempty"`
	Authors     []string     `json:"authors,omitempty"`
	Editors     []string     `json:"editors,omitempty"`
	Supervisors []string     `json:"supervisors,omitempty"`
	TypeKey     []string     `json:"type_key,omitempty"`
}

type Reference struct {
	Name        *string `json:"name,omitempty"`
	Position    *string `json:"position,omitempty"`
	Description *string `json:"description,omitempty"`
	Email       *string `json:"email,omitempty"`
	URL         *string `json:"url,omitempty"`
}

// Document is one portable resume document, fully decoded.
type Document struct {
	Config       *Config
	Basics       Basics
	Profiles     []Profile
	Education    []Education
	Languages    []SpokenLanguage
	Workshops    []CertIssuer
	Skills       []SkillCategory
	Experiences  []Experience
	Projects     []Project
	Publications []Publication
	References   []Reference
}

// rawDocument is the wire shape; Skills stays raw for the ordered walk.
type rawDocument struct {
	Config       *Config          `json:"config,omitempty"`
	Basics       []Basics         `json:"basics"`
	Profiles     []Profile        `json:"profiles,omitempty"`
	Education    []Education      `json:"education,omitempty"`
	Languages    []SpokenLanguage `json:"languages,omitempty"`
	Workshops    []CertIssuer     `json:"workshop_and_certifications,omitempty"`
	Skills       json.RawMessage  `json:"skills,omitempty"`
	Experiences  []Experience     `json:"experiences,omitempty"`
	Projects     []Project        `json:"projects,omitempty"`
	Publications []Publication    `json:"publications,omitempty"`
	References   []Reference      `json:"references,omitempty"`
}

// Decode parses one document. It is the only place raw JSON becomes typed
// records; everything downstream works on the result.
func Decode(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrValidation)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object, got %s", ErrValidation, root.Type)
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if raw.Basics == nil {
		return nil, fmt.Errorf("%w: required section %q is missing", ErrValidation, "basics")
	}
	if len(raw.Basics) != 1 {
		return nil, fmt.Errorf("%w: basics must hold exactly one object, got %d", ErrValidation, len(raw.Basics))
	}

	if raw.Config != nil {
		raw.Config.HasID = root.Get("config.ID").Exists()
		raw.Config.HasLang = root.Get("config.lang").Exists()
	}

	doc := &Document{
		Config:       raw.Config,
		Basics:       raw.Basics[0],
		Profiles:     raw.Profiles,
		Education:    raw.Education,
		Languages:    raw.Languages,
		Workshops:    raw.Workshops,
		Experiences:  raw.Experiences,
		Projects:     raw.Projects,
		Publications: raw.Publications,
		References:   raw.References,
	}

	if len(raw.Skills) > 0 {
		skills, err := decodeSkills(raw.Skills)
		if err != nil {
			return nil, err
		}
		doc.Skills = skills
	}

	for i := range doc.Publications {
		mergeIdentifiers(&doc.Publications[i])
	}

	return doc, nil
}

// decodeSkills walks the 3-level skills object in document order. The object
// keys become category and subcategory names; their positions become sort
// orders, so a plain map decode would destroy identity.
func decodeSkills(raw json.RawMessage) ([]SkillCategory, error) {
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: skills must be an object, got %s", ErrValidation, root.Type)
	}

	var cats []SkillCategory
	var walkErr error
	root.ForEach(func(catKey, catVal gjson.Result) bool {
		if !catVal.IsObject() {
			walkErr = fmt.Errorf("%w: skills category %q must be an object", ErrValidation, catKey.String())
			return false
		}
		cat := SkillCategory{Name: catKey.String()}
		catVal.ForEach(func(subKey, subVal gjson.Result) bool {
			if !subVal.IsArray() {
				walkErr = fmt.Errorf("%w: skills subcategory %q must be an array", ErrValidation, subKey.String())
				return false
			}
			sub := SkillSubcategory{Name: subKey.String()}
			var items []SkillItem
			if err := json.Unmarshal([]byte(subVal.Raw), &items); err != nil {
				walkErr = fmt.Errorf("%w: skills subcategory %q: %v", ErrValidation, subKey.String(), err)
				return false
			}
			sub.Items = items
			cat.Subcategories = append(cat.Subcategories, sub)
			return true
		})
		if walkErr != nil {
			return false
		}
		cats = append(cats, cat)
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return cats, nil
}

// mergeIdentifiers reconciles the flat identifier fields with the nested
// identifiers object. Flat values win; nested fills what flat left empty.
func mergeIdentifiers(p *Publication) {
	if p.Identifiers == nil {
		return
	}
	fill := func(flat **string, nested *string) {
		if *flat == nil && nested != nil {
			*flat = nested
		}
	}
	fill(&p.DOI, p.Identifiers.DOI)
	fill(&p.ISBN, p.Identifiers.ISBN)
	fill(&p.ISSN, p.Identifiers.ISSN)
	fill(&p.PMID, p.Identifiers.PMID)
	fill(&p.PMCID, p.Identifiers.PMCID)
	fill(&p.ArXiv, p.Identifiers.ArXiv)
}
