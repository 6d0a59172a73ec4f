package document

import (
	"errors"
	"testing"
)

var testLangs = map[string]bool{"en": true, "de": true, "fa": true, "fr": true}

func testSupported(code string) bool { return testLangs[code] }

func TestResolveIdentityFromFilename(t *testing.T) {
	tests := []struct {
		path string
		key  string
		lang string
	}{
		{"alice_de.json", "alice", "de"},
		{"alice-de.json", "alice", "de"},
		{"docs/bob_fa.json", "bob", "fa"},
		{"carol.json", "carol", "en"},          // no suffix
		{"dave_xx.json", "dave_xx", "en"},      // unrecognized code
		{"my_resume.json", "my_resume", "en"},  // recognized-length but not a language
		{"x_data_en.json", "x_data", "en"},     // only the last separator counts
	}
	for _, tt := range tests {
		id, err := ResolveIdentity(&Document{}, tt.path, "en", testSupported)
		if err != nil {
			t.Errorf("ResolveIdentity(%q): %v", tt.path, err)
			continue
		}
		if id.ResumeKey != tt.key || id.Language != tt.lang {
			t.Errorf("ResolveIdentity(%q) = (%q, %q), want (%q, %q)",
				tt.path, id.ResumeKey, id.Language, tt.key, tt.lang)
		}
		if id.FromConfig {
			t.Errorf("ResolveIdentity(%q): FromConfig should be false", tt.path)
		}
	}
}

func TestResolveIdentityConfigWins(t *testing.T) {
	doc := &Document{Config: &Config{ID: "p1", Lang: "fr"}}
	id, err := ResolveIdentity(doc, "alice_de.json", "en", testSupported)
	if err != nil {
		t.Fatalf("ResolveIdentity: %v", err)
	}
	if id.ResumeKey != "p1" || id.Language != "fr" {
		t.Errorf("got (%q, %q), want (p1, fr)", id.ResumeKey, id.Language)
	}
	if !id.FromConfig {
		t.Error("FromConfig should be true")
	}
}

func TestResolveIdentityUnsupportedConfigLang(t *testing.T) {
	doc := &Document{Config: &Config{ID: "p1", Lang: "tlh"}}
	_, err := ResolveIdentity(doc, "p1.json", "en", testSupported)
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("error = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestResolveIdentityPartialConfig(t *testing.T) {
	// Config with ID only: language still comes from the filename.
	doc := &Document{Config: &Config{ID: "p2"}}
	id, err := ResolveIdentity(doc, "whatever_de.json", "en", testSupported)
	if err != nil {
		t.Fatalf("ResolveIdentity: %v", err)
	}
	if id.ResumeKey != "p2" || id.Language != "de" {
		t.Errorf("got (%q, %q), want (p2, de)", id.ResumeKey, id.Language)
	}
}

func TestSplitKey(t *testing.T) {
	key, lang := SplitKey("alice_de", testSupported)
	if key != "alice" || lang != "de" {
		t.Errorf("SplitKey(alice_de) = (%q, %q), want (alice, de)", key, lang)
	}
	key, lang = SplitKey("bob", testSupported)
	if key != "bob" || lang != "" {
		t.Errorf("SplitKey(bob) = (%q, %q), want (bob, \"\")", key, lang)
	}
}
