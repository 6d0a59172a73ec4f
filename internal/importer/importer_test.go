package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/resumedb/resumedb/internal/exporter"
	"github.com/resumedb/resumedb/internal/store"
	"github.com/resumedb/resumedb/internal/verify"
)

// aliceEN is deliberately export-shaped: phone carries all three keys,
// publication identifiers appear flat and nested with the same values, so
// a lossless import followed by an export reproduces it key for key.
const aliceEN = `{
  "config": {"ID": "alice", "lang": "en"},
  "basics": [{
    "fname": "Alice",
    "lname": "Castle",
    "summary": "Systems engineer.",
    "email": ["alice@example.org", "a.castle@example.org"],
    "phone": {"code": "+49", "number": "1515551234", "type": "mobile"},
    "location": [{"address": "Unter den Linden 5", "city": "Berlin", "region": "Berlin", "postalCode": "10117", "country": "DE"}],
    "Pictures": ["img/alice.png"],
    "label": ["Backend", "Distributed systems"]
  }],
  "profiles": [
    {"network": "github", "username": "acastle", "url": "https://github.com/acastle", "label": "GitHub", "type_key": ["dev"]},
    {"network": "mastodon", "username": "alice", "url": "https://hachyderm.io/@alice", "label": "Mastodon"}
  ],
  "education": [
    {"institution": "TU Berlin", "degree": "MSc", "description": "Distributed systems.", "startDate": "2015-10-01", "endDate": "2018-03-31", "score": 1.3, "url": "https://tu.berlin", "type_key": ["Full CV"]}
  ],
  "languages": [
    {"name": "German", "level": "native"},
    {"name": "English", "level": "C2", "certificates": [{"title": "IELTS", "date": "2014-06-01", "score": 8, "url": "https://ielts.org"}]}
  ],
  "workshop_and_certifications": [
    {"organization": "CNCF", "url": "https://cncf.io", "certifications": [{"title": "CKA", "date": "2021-05-10", "url": "https://cncf.io/cka", "type_key": ["Full CV"]}]}
  ],
  "skills": {
    "Programming": {
      "Languages": [
        {"long_name": "Go", "short_name": "go", "type_key": ["core"]},
        {"long_name": "Rust", "short_name": "rs"}
      ]
    }
  },
  "experiences": [
    {"company": "Datengrube GmbH", "position": "Staff engineer", "description": "Storage team.", "startDate": "2018-04-01", "endDate": "present", "url": "https://datengrube.example", "type_key": ["Full CV"]}
  ],
  "projects": [
    {"name": "chronicle", "description": "Append-only event store.", "startDate": "2020-01-15", "endDate": "2020-11-30", "url": "https://example.org/chronicle", "primaryFocus": "storage", "type_key": ["oss"]}
  ],
  "publications": [
    {"title": "Compacting LSM trees", "venue": "VLDB", "abstract": "On compaction.", "date": "2019-08-26", "url": "https://example.org/lsm", "doi": "10.1000/lsm", "isbn": "978-3-16-148410-0", "identifiers": {"doi": "10.1000/lsm", "isbn": "978-3-16-148410-0"}, "authors": ["Alice Castle", "Bob Mead"], "editors": ["Carol Finch"], "type_key": ["Full CV"]}
  ],
  "references": [
    {"name": "Bob Mead", "position": "CTO", "description": "Former manager.", "email": "bob@example.org", "url": "https://example.org/bob"}
  ]
}`

// aliceDE translates the same person: identical positions, German text.
const aliceDE = `{
  "config": {"ID": "alice", "lang": "de"},
  "basics": [{
    "fname": "Alice",
    "lname": "Castle",
    "summary": "Systemingenieurin.",
    "email": ["alice@example.org", "a.castle@example.org"],
    "phone": {"code": "+49", "number": "1515551234", "type": "mobile"},
    "location": [{"address": "Unter den Linden 5", "city": "Berlin", "region": "Berlin", "postalCode": "10117", "country": "DE"}],
    "Pictures": ["img/alice.png"],
    "label": ["Backend", "Verteilte Systeme"]
  }],
  "profiles": [
    {"network": "github", "username": "acastle", "url": "https://github.com/acastle", "label": "GitHub-Profil"},
    {"network": "mastodon", "username": "alice", "url": "https://hachyderm.io/@alice", "label": "Mastodon-Profil"}
  ]
}`

func newTestImporter(t *testing.T) (*Importer, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Initialize(context.Background(), false); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return New(st, Options{DefaultLanguage: "en"}), st
}

func mustImport(t *testing.T, im *Importer, doc, source string) *ImportResult {
	t.Helper()
	res, err := im.ImportDocument(context.Background(), []byte(doc), source, false)
	if err != nil {
		t.Fatalf("import %s: %v", source, err)
	}
	if !res.Success {
		t.Fatalf("import %s: success = false, error = %s", source, res.Error)
	}
	return res
}

func countRows(t *testing.T, st *store.Store, table string) int {
	t.Helper()
	var n int
	if err := st.RawDB().QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestImportExportRoundTrip(t *testing.T) {
	im, st := newTestImporter(t)
	res := mustImport(t, im, aliceEN, "alice.json")

	if res.ResumeKey != "alice" || res.Language != "en" {
		t.Fatalf("identity = (%s, %s), want (alice, en)", res.ResumeKey, res.Language)
	}

	out, err := exporter.New(st).ExportDocument(context.Background(), "alice", "en")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	rep, err := verify.Documents([]byte(aliceEN), out, verify.DefaultOptions())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !rep.Matches {
		t.Errorf("round trip mismatch:")
		for _, k := range rep.MissingKeys {
			t.Errorf("  missing %s", k)
		}
		for _, k := range rep.ExtraKeys {
			t.Errorf("  extra %s", k)
		}
		for _, d := range rep.ValueDiffs {
			t.Errorf("  value %s: want %s, got %s", d.Path, d.Want, d.Got)
		}
		for _, d := range rep.TypeDiffs {
			t.Errorf("  type %s: want %s, got %s", d.Path, d.Want, d.Got)
		}
	}
}

func TestSentinelDateSurvivesRoundTrip(t *testing.T) {
	im, st := newTestImporter(t)
	mustImport(t, im, aliceEN, "alice.json")

	var iso, raw string
	err := st.RawDB().QueryRowContext(context.Background(),
		`SELECT COALESCE(end_date, ''), COALESCE(end_date_raw, '') FROM experiences WHERE resume_key = 'alice'`).
		Scan(&iso, &raw)
	if err != nil {
		t.Fatalf("read experience dates: %v", err)
	}
	if iso != "" {
		t.Errorf("sentinel stored an ISO date %q, want none", iso)
	}
	if raw != "present" {
		t.Errorf("end_date_raw = %q, want present", raw)
	}

	out, err := exporter.New(st).ExportDocument(context.Background(), "alice", "en")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := gjson.GetBytes(out, "experiences.0.endDate").String(); got != "present" {
		t.Errorf("exported endDate = %q, want present", got)
	}
}

func TestReimportIsIdempotent(t *testing.T) {
	im, st := newTestImporter(t)
	mustImport(t, im, aliceEN, "alice.json")

	before, err := st.TableCounts(context.Background())
	if err != nil {
		t.Fatalf("TableCounts: %v", err)
	}

	mustImport(t, im, aliceEN, "alice.json")

	after, err := st.TableCounts(context.Background())
	if err != nil {
		t.Fatalf("TableCounts: %v", err)
	}
	for table, n := range before {
		if after[table] != n {
			t.Errorf("table %s: %d rows before reimport, %d after", table, n, after[table])
		}
	}
}

func TestDryRunRollsBack(t *testing.T) {
	im, st := newTestImporter(t)

	res, err := im.ImportDocument(context.Background(), []byte(aliceEN), "alice.json", true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !res.Success || !res.DryRun {
		t.Fatalf("dry run result = (success %v, dry_run %v), want (true, true)", res.Success, res.DryRun)
	}
	if res.SectionCounts["profiles"] != 2 {
		t.Errorf("dry run profiles count = %d, want 2", res.SectionCounts["profiles"])
	}
	if n := countRows(t, st, "resume_sets"); n != 0 {
		t.Errorf("resume_sets = %d rows after dry run, want 0", n)
	}
	if n := countRows(t, st, "profiles"); n != 0 {
		t.Errorf("profiles = %d rows after dry run, want 0", n)
	}
}

func TestReorderRemapsOntoExistingRows(t *testing.T) {
	im, st := newTestImporter(t)
	ctx := context.Background()
	mustImport(t, im, aliceEN, "alice.json")

	rowAt := func(order int) (id int64, network string) {
		t.Helper()
		err := st.RawDB().QueryRowContext(ctx,
			`SELECT id, network FROM profiles WHERE resume_key = 'alice' AND sort_order = ?`, order).
			Scan(&id, &network)
		if err != nil {
			t.Fatalf("read profile at %d: %v", order, err)
		}
		return id, network
	}

	id0, net0 := rowAt(0)
	id1, net1 := rowAt(1)
	if net0 != "github" || net1 != "mastodon" {
		t.Fatalf("initial networks = (%s, %s), want (github, mastodon)", net0, net1)
	}

	// Same two profiles, swapped. Position carries identity, so the rows
	// keep their ids and trade content.
	swapped := strings.Replace(aliceEN,
		`{"network": "github", "username": "acastle", "url": "https://github.com/acastle", "label": "GitHub", "type_key": ["dev"]},
    {"network": "mastodon", "username": "alice", "url": "https://hachyderm.io/@alice", "label": "Mastodon"}`,
		`{"network": "mastodon", "username": "alice", "url": "https://hachyderm.io/@alice", "label": "Mastodon"},
    {"network": "github", "username": "acastle", "url": "https://github.com/acastle", "label": "GitHub", "type_key": ["dev"]}`, 1)
	if swapped == aliceEN {
		t.Fatal("fixture replace failed")
	}
	mustImport(t, im, swapped, "alice.json")

	if n := countRows(t, st, "profiles"); n != 2 {
		t.Fatalf("profiles = %d rows after reorder, want 2", n)
	}
	newID0, newNet0 := rowAt(0)
	newID1, newNet1 := rowAt(1)
	if newID0 != id0 || newID1 != id1 {
		t.Errorf("row ids changed on reorder: (%d, %d) -> (%d, %d)", id0, id1, newID0, newID1)
	}
	if newNet0 != "mastodon" || newNet1 != "github" {
		t.Errorf("networks after reorder = (%s, %s), want (mastodon, github)", newNet0, newNet1)
	}
}

func TestShrunkArrayTrimsTail(t *testing.T) {
	im, st := newTestImporter(t)
	mustImport(t, im, aliceEN, "alice.json")

	one := strings.Replace(aliceEN,
		`,
    {"network": "mastodon", "username": "alice", "url": "https://hachyderm.io/@alice", "label": "Mastodon"}`, "", 1)
	if one == aliceEN {
		t.Fatal("fixture replace failed")
	}
	mustImport(t, im, one, "alice.json")

	if n := countRows(t, st, "profiles"); n != 1 {
		t.Errorf("profiles = %d rows after shrink, want 1", n)
	}
	if n := countRows(t, st, "profiles_i18n"); n != 1 {
		t.Errorf("profiles_i18n = %d rows after shrink, want 1", n)
	}
}

func TestMultiLanguageVariantsShareInvariantRows(t *testing.T) {
	im, st := newTestImporter(t)
	ctx := context.Background()
	mustImport(t, im, aliceEN, "alice.json")
	mustImport(t, im, aliceDE, "alice.json")

	if n := countRows(t, st, "resume_sets"); n != 1 {
		t.Errorf("resume_sets = %d, want 1", n)
	}
	if n := countRows(t, st, "resume_versions"); n != 2 {
		t.Errorf("resume_versions = %d, want 2", n)
	}
	// Invariant rows are shared; only the translations double up.
	if n := countRows(t, st, "profiles"); n != 2 {
		t.Errorf("profiles = %d, want 2", n)
	}
	if n := countRows(t, st, "profiles_i18n"); n != 4 {
		t.Errorf("profiles_i18n = %d, want 4", n)
	}

	versions, err := st.ListVersions(ctx, "alice")
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 || !versions[0].IsBase || versions[0].Language != "en" {
		t.Errorf("versions = %+v, want en base first then de", versions)
	}

	out, err := exporter.New(st).ExportDocument(ctx, "alice", "de")
	if err != nil {
		t.Fatalf("export de: %v", err)
	}
	if got := gjson.GetBytes(out, "profiles.0.label").String(); got != "GitHub-Profil" {
		t.Errorf("de profile label = %q, want GitHub-Profil", got)
	}
	if got := gjson.GetBytes(out, "profiles.0.network").String(); got != "github" {
		t.Errorf("de profile network = %q, want github", got)
	}
}

func TestTagsCaseFoldToOneCode(t *testing.T) {
	im, st := newTestImporter(t)
	ctx := context.Background()

	doc := `{
	  "config": {"ID": "tagged", "lang": "en"},
	  "basics": [{"fname": "T", "lname": "T"}],
	  "education": [{"institution": "A", "type_key": ["Full CV"]}],
	  "experiences": [{"company": "B", "type_key": ["full cv"]}],
	  "projects": [{"name": "C", "type_key": ["FULL CV"]}]
	}`
	mustImport(t, im, doc, "tagged.json")

	var codes int
	if err := st.RawDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&codes); err != nil {
		t.Fatalf("count tags: %v", err)
	}
	if codes != 1 {
		t.Errorf("tag codes = %d, want 1 (case variants fold together)", codes)
	}
	if n := countRows(t, st, "entity_tags"); n != 3 {
		t.Errorf("entity_tags = %d, want 3", n)
	}
}

func TestFilenameSuppliesIdentity(t *testing.T) {
	im, _ := newTestImporter(t)

	doc := `{"basics": [{"fname": "A", "lname": "B"}]}`
	res, err := im.ImportDocument(context.Background(), []byte(doc), "/data/alice_de.json", false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.ResumeKey != "alice" || res.Language != "de" {
		t.Errorf("identity = (%s, %s), want (alice, de)", res.ResumeKey, res.Language)
	}
}

func TestHasConfigControlsExportedConfigBlock(t *testing.T) {
	im, st := newTestImporter(t)
	ctx := context.Background()

	doc := `{"basics": [{"fname": "A", "lname": "B"}]}`
	mustImport(t, im, doc, "bare_en.json")

	out, err := exporter.New(st).ExportDocument(ctx, "bare", "en")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if gjson.GetBytes(out, "config").Exists() {
		t.Errorf("config block exported for a document imported without one: %s", out)
	}
}

func TestImportDirIsolatesFailures(t *testing.T) {
	im, st := newTestImporter(t)
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "alice_en.json"), []byte(aliceEN), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken_en.json"), []byte(`{"basics": [`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatal(err)
	}

	batch, err := im.ImportDir(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("ImportDir: %v", err)
	}
	if batch.Imported != 1 || batch.Failed != 1 {
		t.Errorf("batch = %d imported / %d failed, want 1 / 1", batch.Imported, batch.Failed)
	}
	if len(batch.Files) != 2 {
		t.Errorf("batch reported %d files, want 2", len(batch.Files))
	}
	if n := countRows(t, st, "resume_sets"); n != 1 {
		t.Errorf("resume_sets = %d after batch, want 1 (good file committed)", n)
	}
}

func TestSkillsTreeRoundTrip(t *testing.T) {
	im, st := newTestImporter(t)
	mustImport(t, im, aliceEN, "alice.json")

	out, err := exporter.New(st).ExportDocument(context.Background(), "alice", "en")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	items := gjson.GetBytes(out, "skills.Programming.Languages")
	if !items.IsArray() || len(items.Array()) != 2 {
		t.Fatalf("skills.Programming.Languages = %s, want 2 items", items.Raw)
	}
	if got := items.Array()[0].Get("long_name").String(); got != "Go" {
		t.Errorf("first skill item = %q, want Go", got)
	}
	if got := items.Array()[0].Get("type_key.0").String(); got != "core" {
		t.Errorf("first skill item tag = %q, want core", got)
	}
}

func TestVariantRestatingFewerElementsKeepsSharedRows(t *testing.T) {
	im, st := newTestImporter(t)
	ctx := context.Background()
	mustImport(t, im, aliceEN, "alice.json")

	deShort := `{
  "config": {"ID": "alice", "lang": "de"},
  "basics": [{"fname": "Alice", "lname": "Castle", "summary": "Systemingenieurin."}],
  "profiles": [
    {"network": "github", "username": "acastle", "url": "https://github.com/acastle", "label": "GitHub-Profil"}
  ],
  "education": [
    {"institution": "TU Berlin", "degree": "MSc", "startDate": "2015-10-01", "endDate": "2018-03-31", "score": 1.3, "url": "https://tu.berlin"}
  ]
}`
	mustImport(t, im, deShort, "alice.json")

	// The German variant restated one profile; both invariant rows survive
	// and the English variant still exports both.
	if n := countRows(t, st, "profiles"); n != 2 {
		t.Errorf("profiles = %d, want 2", n)
	}
	en, err := exporter.New(st).ExportDocument(ctx, "alice", "en")
	if err != nil {
		t.Fatalf("export en: %v", err)
	}
	if got := gjson.GetBytes(en, "profiles.#").Int(); got != 2 {
		t.Fatalf("en profiles = %d, want 2", got)
	}
	if got := gjson.GetBytes(en, "profiles.1.network").String(); got != "mastodon" {
		t.Errorf("en second profile = %q, want mastodon", got)
	}
	de, err := exporter.New(st).ExportDocument(ctx, "alice", "de")
	if err != nil {
		t.Fatalf("export de: %v", err)
	}
	if got := gjson.GetBytes(de, "profiles.#").Int(); got != 1 {
		t.Errorf("de profiles = %d, want 1", got)
	}

	// Education restated without type_key keeps the tag another variant
	// attached, and sections the German variant never mentioned are intact.
	if got := gjson.GetBytes(en, "education.0.type_key.0").String(); got != "Full CV" {
		t.Errorf("en education tag = %q, want Full CV", got)
	}
	if got := gjson.GetBytes(en, "profiles.0.type_key.0").String(); got != "dev" {
		t.Errorf("en profile tag = %q, want dev", got)
	}
	if got := gjson.GetBytes(en, "experiences.0.endDate").String(); got != "present" {
		t.Errorf("en experience endDate = %q, want present", got)
	}
}

func TestVariantImportOrderIsCommutative(t *testing.T) {
	ctx := context.Background()
	deDoc := `{
  "config": {"ID": "alice", "lang": "de"},
  "basics": [{"fname": "Alice", "lname": "Castle", "summary": "Systemingenieurin."}],
  "profiles": [
    {"network": "github", "username": "acastle", "url": "https://github.com/acastle", "label": "GitHub-Profil"}
  ]
}`
	export := func(t *testing.T, docs [2]string) (en, de []byte) {
		t.Helper()
		im, st := newTestImporter(t)
		mustImport(t, im, docs[0], "alice.json")
		mustImport(t, im, docs[1], "alice.json")
		en, err := exporter.New(st).ExportDocument(ctx, "alice", "en")
		if err != nil {
			t.Fatalf("export en: %v", err)
		}
		de, err = exporter.New(st).ExportDocument(ctx, "alice", "de")
		if err != nil {
			t.Fatalf("export de: %v", err)
		}
		return en, de
	}

	enFirst, deFirst := export(t, [2]string{aliceEN, deDoc})
	enSecond, deSecond := export(t, [2]string{deDoc, aliceEN})

	for _, tt := range []struct {
		name string
		a, b []byte
	}{
		{"en", enFirst, enSecond},
		{"de", deFirst, deSecond},
	} {
		rep, err := verify.Documents(tt.a, tt.b, verify.DefaultOptions())
		if err != nil {
			t.Fatalf("verify %s: %v", tt.name, err)
		}
		if !rep.Matches {
			t.Errorf("%s export depends on import order: %+v", tt.name, rep)
		}
	}
}

func TestPhonelessDocumentRoundTrips(t *testing.T) {
	im, st := newTestImporter(t)
	doc := `{
  "config": {"ID": "nils", "lang": "en"},
  "basics": [{"fname": "Nils", "lname": "Holm"}],
  "education": [{"institution": "Uni Kiel", "degree": "BSc", "startDate": "2012-10-01", "endDate": "present", "type_key": ["Full CV"]}]
}`
	mustImport(t, im, doc, "nils.json")

	out, err := exporter.New(st).ExportDocument(context.Background(), "nils", "en")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	rep, err := verify.Documents([]byte(doc), out, verify.DefaultOptions())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !rep.Matches {
		t.Errorf("phone-less document did not round trip: missing=%v extra=%v values=%v",
			rep.MissingKeys, rep.ExtraKeys, rep.ValueDiffs)
	}
}

func TestSkillsShrinkTrimsTree(t *testing.T) {
	im, st := newTestImporter(t)
	two := `{"basics": [{"fname": "A", "lname": "B"}], "skills": {"Programming": {"Languages": [{"long_name": "Go"}]}, "Operations": {"Cloud": [{"long_name": "AWS"}]}}}`
	mustImport(t, im, two, "kim_en.json")
	one := `{"basics": [{"fname": "A", "lname": "B"}], "skills": {"Programming": {"Languages": [{"long_name": "Go"}]}}}`
	mustImport(t, im, one, "kim_en.json")

	for table, want := range map[string]int{
		"skill_categories":    1,
		"skill_subcategories": 1,
		"skill_items":         1,
	} {
		if n := countRows(t, st, table); n != want {
			t.Errorf("%s = %d rows after shrink, want %d", table, n, want)
		}
	}

	out, err := exporter.New(st).ExportDocument(context.Background(), "kim", "en")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if tree := gjson.GetBytes(out, "skills.Operations"); tree.Exists() {
		t.Errorf("skills.Operations = %s, want dropped category absent", tree.Raw)
	}
	if !gjson.GetBytes(out, "skills.Programming.Languages").IsArray() {
		t.Errorf("skills = %s, want Programming.Languages kept", gjson.GetBytes(out, "skills").Raw)
	}
}

func BenchmarkImportDocument(b *testing.B) {
	st, err := store.Open(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()
	if err := st.Initialize(context.Background(), false); err != nil {
		b.Fatalf("failed to initialize store: %v", err)
	}
	im := New(st, Options{DefaultLanguage: "en"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := im.ImportDocument(context.Background(), []byte(aliceEN), "alice.json", false); err != nil {
			b.Fatalf("import: %v", err)
		}
	}
}

func TestMalformedDocumentLeavesStoreUntouched(t *testing.T) {
	im, st := newTestImporter(t)

	_, err := im.ImportDocument(context.Background(), []byte(`{"basics": []}`), "empty_en.json", false)
	if err == nil {
		t.Fatal("import of document without basics succeeded, want error")
	}
	if n := countRows(t, st, "resume_sets"); n != 0 {
		t.Errorf("resume_sets = %d after failed import, want 0", n)
	}
}
