package verify

import (
	"testing"
)

func mustMatch(t *testing.T, source, exported string) {
	t.Helper()
	rep, err := Documents([]byte(source), []byte(exported), DefaultOptions())
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if !rep.Matches {
		t.Errorf("documents differ, want match:\n  missing: %v\n  extra: %v\n  values: %v\n  types: %v",
			rep.MissingKeys, rep.ExtraKeys, rep.ValueDiffs, rep.TypeDiffs)
	}
}

func mustDiffer(t *testing.T, source, exported string) *Result {
	t.Helper()
	rep, err := Documents([]byte(source), []byte(exported), DefaultOptions())
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if rep.Matches {
		t.Error("documents match, want a difference")
	}
	return rep
}

func TestKeyOrderIgnored(t *testing.T) {
	mustMatch(t,
		`{"a": 1, "b": {"x": true, "y": "s"}}`,
		`{"b": {"y": "s", "x": true}, "a": 1}`)
}

func TestNumericFormsEquivalent(t *testing.T) {
	mustMatch(t, `{"score": 8}`, `{"score": 8.0}`)
	mustMatch(t, `{"score": 8.0}`, `{"score": 8}`)
	// Score typed as a string on one side still matches the number.
	mustMatch(t, `{"score": "8"}`, `{"score": 8}`)
	mustMatch(t, `{"score": 8.5}`, `{"score": "8.5"}`)
	mustDiffer(t, `{"score": 8}`, `{"score": 9}`)
	// Only the canonical decimal spelling of the number matches; a padded
	// or re-formatted string is a real difference.
	mustDiffer(t, `{"score": "08"}`, `{"score": 8}`)
	mustDiffer(t, `{"score": "8.50"}`, `{"score": 8.5}`)
}

func TestWhitespaceRunsCollapse(t *testing.T) {
	mustMatch(t,
		`{"summary": "ships  reliable\tsystems"}`,
		`{"summary": "ships reliable systems"}`)
	mustDiffer(t,
		`{"summary": "ships reliable systems"}`,
		`{"summary": "ships unreliable systems"}`)
}

func TestWhitespaceStrictWhenDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.IgnoreWhitespace = false
	rep, err := Documents(
		[]byte(`{"summary": "a  b"}`),
		[]byte(`{"summary": "a b"}`), opts)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if rep.Matches {
		t.Error("whitespace difference matched with IgnoreWhitespace off")
	}
}

func TestTagArraysCompareAsMultisets(t *testing.T) {
	mustMatch(t,
		`{"education": [{"type_key": ["Full CV", "Short"]}]}`,
		`{"education": [{"type_key": ["Short", "Full CV"]}]}`)
	// Multiset, not set: a duplicated element is a real difference.
	mustDiffer(t,
		`{"education": [{"type_key": ["a", "a", "b"]}]}`,
		`{"education": [{"type_key": ["a", "b", "b"]}]}`)
}

func TestOrderedArraysStayOrdered(t *testing.T) {
	mustDiffer(t,
		`{"authors": ["Ada", "Grace"]}`,
		`{"authors": ["Grace", "Ada"]}`)
	mustMatch(t,
		`{"authors": ["Ada", "Grace"]}`,
		`{"authors": ["Ada", "Grace"]}`)
}

func TestMissingAndExtraKeys(t *testing.T) {
	rep := mustDiffer(t,
		`{"a": 1, "b": 2}`,
		`{"a": 1, "c": 3}`)
	if len(rep.MissingKeys) != 1 || rep.MissingKeys[0] != "$.b" {
		t.Errorf("MissingKeys = %v, want [$.b]", rep.MissingKeys)
	}
	if len(rep.ExtraKeys) != 1 || rep.ExtraKeys[0] != "$.c" {
		t.Errorf("ExtraKeys = %v, want [$.c]", rep.ExtraKeys)
	}
}

func TestTypeDiffReported(t *testing.T) {
	rep := mustDiffer(t, `{"phone": {"code": null}}`, `{"phone": {"code": true}}`)
	if len(rep.TypeDiffs) != 1 {
		t.Fatalf("TypeDiffs = %v, want exactly one", rep.TypeDiffs)
	}
	if rep.TypeDiffs[0].Path != "$.phone.code" {
		t.Errorf("type diff path = %s, want $.phone.code", rep.TypeDiffs[0].Path)
	}
}

func TestNullMatchesNull(t *testing.T) {
	mustMatch(t, `{"code": null}`, `{"code": null}`)
}

func TestArrayLengthMismatch(t *testing.T) {
	rep := mustDiffer(t, `{"email": ["a", "b"]}`, `{"email": ["a"]}`)
	if len(rep.ValueDiffs) == 0 {
		t.Errorf("array length mismatch produced no value diff: %+v", rep)
	}
}

func TestNestedPathsInDiffs(t *testing.T) {
	rep := mustDiffer(t,
		`{"basics": [{"fname": "Alice"}]}`,
		`{"basics": [{"fname": "Alise"}]}`)
	if len(rep.ValueDiffs) != 1 {
		t.Fatalf("ValueDiffs = %v, want exactly one", rep.ValueDiffs)
	}
	if got := rep.ValueDiffs[0].Path; got != "$.basics[0].fname" {
		t.Errorf("diff path = %s, want $.basics[0].fname", got)
	}
}

func TestRejectsNonObjectDocuments(t *testing.T) {
	if _, err := Documents([]byte(`[1, 2]`), []byte(`{}`), DefaultOptions()); err == nil {
		t.Error("array source accepted, want error")
	}
	if _, err := Documents([]byte(`{}`), []byte(`not json`), DefaultOptions()); err == nil {
		t.Error("malformed exported document accepted, want error")
	}
}

func TestIdenticalComplexDocuments(t *testing.T) {
	doc := `{
	  "basics": [{"fname": "A", "phone": {"code": null, "number": "1", "type": null}}],
	  "skills": {"Programming": {"Languages": [{"long_name": "Go", "type_key": ["core", "main"]}]}}
	}`
	mustMatch(t, doc, doc)
}
