package document

import (
	"errors"
	"testing"
)

func TestDecodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"basics":`},
		{"array top level", `[]`},
		{"missing basics", `{"profiles":[]}`},
		{"empty basics", `{"basics":[]}`},
		{"two basics", `{"basics":[{},{}]}`},
	}
	for _, tt := range tests {
		if _, err := Decode([]byte(tt.data)); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: error = %v, want ErrValidation", tt.name, err)
		}
	}
}

func TestDecodeSkillsKeepsDocumentOrder(t *testing.T) {
	// Key order is identity for skills; a map decode would sort these.
	data := []byte(`{
		"basics": [{"fname": "A", "lname": "B"}],
		"skills": {
			"zeta": {"last": [{"long_name": "Z"}]},
			"alpha": {
				"second": [{"long_name": "S"}],
				"first": [{"long_name": "F"}, {"long_name": "G"}]
			}
		}
	}`)
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(doc.Skills) != 2 {
		t.Fatalf("got %d categories, want 2", len(doc.Skills))
	}
	if doc.Skills[0].Name != "zeta" || doc.Skills[1].Name != "alpha" {
		t.Errorf("category order = [%s, %s], want [zeta, alpha]",
			doc.Skills[0].Name, doc.Skills[1].Name)
	}
	subs := doc.Skills[1].Subcategories
	if len(subs) != 2 || subs[0].Name != "second" || subs[1].Name != "first" {
		t.Fatalf("subcategory order wrong: %+v", subs)
	}
	if len(subs[1].Items) != 2 {
		t.Errorf("got %d items in first, want 2", len(subs[1].Items))
	}
}

func TestDecodeMergesPublicationIdentifiers(t *testing.T) {
	data := []byte(`{
		"basics": [{"fname": "A", "lname": "B"}],
		"publications": [{
			"title": "T",
			"doi": "10.1/flat",
			"identifiers": {"doi": "10.1/nested", "isbn": "978-3"}
		}]
	}`)
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p := doc.Publications[0]
	if p.DOI == nil || *p.DOI != "10.1/flat" {
		t.Errorf("flat doi should win, got %v", p.DOI)
	}
	if p.ISBN == nil || *p.ISBN != "978-3" {
		t.Errorf("nested isbn should fill the gap, got %v", p.ISBN)
	}
}

func TestDecodeConfigAndSections(t *testing.T) {
	data := []byte(`{
		"config": {"ID": "p1", "lang": "en"},
		"basics": [{"fname": "Ada", "lname": "L", "email": ["a@b.c"]}],
		"education": [{"institution": "X", "endDate": "present"}]
	}`)
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.Config == nil || doc.Config.ID != "p1" || doc.Config.Lang != "en" {
		t.Errorf("config = %+v", doc.Config)
	}
	if doc.Basics.FName == nil || *doc.Basics.FName != "Ada" {
		t.Errorf("basics fname = %v", doc.Basics.FName)
	}
	if len(doc.Education) != 1 || *doc.Education[0].EndDate != "present" {
		t.Errorf("education = %+v", doc.Education)
	}
}
