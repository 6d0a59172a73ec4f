package document

// Export reconstruction is driven entirely by the declared orders below, not
// by anything inferred from the database. The importer's upsert and the
// exporter's serializer both read the same tables, so a field added here is
// added for both directions at once.

// Policy controls how an absent value is emitted on export.
type Policy int

const (
	// OmitWhenAbsent drops the key entirely when the value is absent.
	OmitWhenAbsent Policy = iota
	// NullWhenAbsent keeps the key with an explicit null.
	NullWhenAbsent
)

// Field is one entry of a per-record field-order table.
type Field struct {
	Name   string
	Policy Policy
	// OrderInsensitive marks array fields whose element order carries no
	// meaning; the verifier compares them as sets.
	OrderInsensitive bool
}

// SectionOrder is the fixed top-level key order of every exported document.
var SectionOrder = []string{
	"config",
	"basics",
	"profiles",
	"education",
	"languages",
	"workshop_and_certifications",
	"skills",
	"experiences",
	"projects",
	"publications",
	"references",
}

var ConfigFields = []Field{
	{Name: "ID"},
	{Name: "lang"},
}

var BasicsFields = []Field{
	{Name: "fname", Policy: NullWhenAbsent},
	{Name: "lname", Policy: NullWhenAbsent},
	{Name: "summary"},
	{Name: "email"},
	{Name: "phone"},
	{Name: "location"},
	{Name: "Pictures"},
	{Name: "label"},
}

// PhoneFields all emit null: an empty phone object still carries its three
// sub-fields.
var PhoneFields = []Field{
	{Name: "code", Policy: NullWhenAbsent},
	{Name: "number", Policy: NullWhenAbsent},
	{Name: "type", Policy: NullWhenAbsent},
}

var LocationFields = []Field{
	{Name: "address"},
	{Name: "city"},
	{Name: "region"},
	{Name: "postalCode"},
	{Name: "country"},
}

var ProfileFields = []Field{
	{Name: "network"},
	{Name: "username"},
	{Name: "url"},
	{Name: "label"},
	{Name: "type_key", OrderInsensitive: true},
}

var EducationFields = []Field{
	{Name: "institution"},
	{Name: "degree"},
	{Name: "description"},
	{Name: "startDate"},
	{Name: "endDate"},
	{Name: "score"},
	{Name: "url"},
	{Name: "type_key", OrderInsensitive: true},
}

var LanguageFields = []Field{
	{Name: "name"},
	{Name: "level"},
	{Name: "certificates"},
}

var LanguageCertificateFields = []Field{
	{Name: "title"},
	{Name: "date"},
	{Name: "score"},
	{Name: "url"},
}

var WorkshopFields = []Field{
	{Name: "organization"},
	{Name: "url"},
	{Name: "certifications"},
}

var CertificationFields = []Field{
	{Name: "title"},
	{Name: "date"},
	{Name: "url"},
	{Name: "type_key", OrderInsensitive: true},
}

var SkillItemFields = []Field{
	{Name: "long_name"},
	{Name: "short_name"},
	{Name: "type_key", OrderInsensitive: true},
}

var ExperienceFields = []Field{
	{Name: "company"},
	{Name: "position"},
	{Name: "description"},
	{Name: "startDate"},
	{Name: "endDate"},
	{Name: "url"},
	{Name: "type_key", OrderInsensitive: true},
}

var ProjectFields = []Field{
	{Name: "name"},
	{Name: "description"},
	{Name: "startDate"},
	{Name: "endDate"},
	{Name: "url"},
	{Name: "primaryFocus"},
	{Name: "type_key", OrderInsensitive: true},
}

var PublicationFields = []Field{
	{Name: "title"},
	{Name: "venue"},
	{Name: "abstract"},
	{Name: "date"},
	{Name: "url"},
	{Name: "doi"},
	{Name: "isbn"},
	{Name: "issn"},
	{Name: "pmid"},
	{Name: "pmcid"},
	{Name: "arxiv"},
	{Name: "identifiers"},
	{Name: "authors"},
	{Name: "editors"},
	{Name: "supervisors"},
	{Name: "type_key", OrderInsensitive: true},
}

var IdentifiersFields = []Field{
	{Name: "doi"},
	{Name: "isbn"},
	{Name: "issn"},
	{Name: "pmid"},
	{Name: "pmcid"},
	{Name: "arxiv"},
}

var ReferenceFields = []Field{
	{Name: "name"},
	{Name: "position"},
	{Name: "description"},
	{Name: "email"},
	{Name: "url"},
}

// allFieldTables is the complete registry; tests keep it in sync with the
// struct json tags.
var allFieldTables = [][]Field{
	ConfigFields,
	BasicsFields,
	PhoneFields,
	LocationFields,
	ProfileFields,
	EducationFields,
	LanguageFields,
	LanguageCertificateFields,
	WorkshopFields,
	CertificationFields,
	SkillItemFields,
	ExperienceFields,
	ProjectFields,
	PublicationFields,
	IdentifiersFields,
	ReferenceFields,
}

// OrderInsensitiveSuffixes collects the field names declared order-
// insensitive across all tables. The verifier treats any path ending in one
// of these as a set comparison.
func OrderInsensitiveSuffixes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, table := range allFieldTables {
		for _, f := range table {
			if f.OrderInsensitive && !seen[f.Name] {
				seen[f.Name] = true
				out = append(out, f.Name)
			}
		}
	}
	return out
}
