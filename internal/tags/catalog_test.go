package tags

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/resumedb/resumedb/internal/store"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Full CV", "full_cv"},
		{"full cv", "full_cv"},
		{"Web-Development", "web_development"},
		{"  padded  ", "padded"},
		{"C++ / Systems", "c_systems"},
		{"already_slugged", "already_slugged"},
		{"ÜBER", "über"}, // unicode letters survive, case folds
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Initialize(context.Background(), false); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return st
}

func makeVersion(t *testing.T, st *store.Store, key, lang string) int64 {
	t.Helper()
	ctx := context.Background()
	tx, err := st.BeginTx(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()
	if err := store.EnsureSet(ctx, tx, key, lang); err != nil {
		t.Fatalf("EnsureSet: %v", err)
	}
	id, err := store.EnsureVersion(ctx, tx, key, lang)
	if err != nil {
		t.Fatalf("EnsureVersion: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return id
}

func TestApplyCaseFoldsToOneCode(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	versionID := makeVersion(t, st, "p1", "en")
	c := NewCatalog(st.RawDB())

	codes1, err := c.Apply(ctx, versionID, []string{"Full CV"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	codes2, err := c.Apply(ctx, versionID, []string{"full cv"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff(codes1, codes2); diff != "" {
		t.Errorf("codes differ (-first +second):\n%s", diff)
	}

	n, err := c.CodeCount(ctx)
	if err != nil {
		t.Fatalf("CodeCount: %v", err)
	}
	if n != 1 {
		t.Errorf("CodeCount = %d, want 1 (case variants share a code)", n)
	}
}

func TestApplyDeduplicatesAndKeepsOrder(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	versionID := makeVersion(t, st, "p1", "en")
	c := NewCatalog(st.RawDB())

	codes, err := c.Apply(ctx, versionID, []string{"Beta", "Alpha", "beta"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []string{"beta", "alpha"}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestLabelsRoundTripPerVersion(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	enID := makeVersion(t, st, "p1", "en")
	deID := makeVersion(t, st, "p1", "de")
	c := NewCatalog(st.RawDB())

	enCodes, err := c.Apply(ctx, enID, []string{"Full CV"})
	if err != nil {
		t.Fatalf("Apply en: %v", err)
	}
	if _, err := c.Apply(ctx, deID, []string{"Voller Lebenslauf"}); err != nil {
		t.Fatalf("Apply de: %v", err)
	}
	if err := c.Attach(ctx, "education", 1, enCodes); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	labels, err := c.Labels(ctx, "education", 1, enID)
	if err != nil {
		t.Fatalf("Labels: %v", err)
	}
	if diff := cmp.Diff([]string{"Full CV"}, labels); diff != "" {
		t.Errorf("en labels (-want +got):\n%s", diff)
	}
}

func TestAttachEmptyKeepsExistingTags(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	enID := makeVersion(t, st, "p1", "en")
	c := NewCatalog(st.RawDB())

	codes, err := c.Apply(ctx, enID, []string{"Full CV"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := c.Attach(ctx, "education", 1, codes); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	// A variant that says nothing about tags must not clear what another
	// variant attached.
	if err := c.Attach(ctx, "education", 1, nil); err != nil {
		t.Fatalf("Attach empty: %v", err)
	}

	labels, err := c.Labels(ctx, "education", 1, enID)
	if err != nil {
		t.Fatalf("Labels: %v", err)
	}
	if diff := cmp.Diff([]string{"Full CV"}, labels); diff != "" {
		t.Errorf("labels after empty attach (-want +got):\n%s", diff)
	}
}

func TestLabelsFallBackToCode(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	enID := makeVersion(t, st, "p1", "en")
	deID := makeVersion(t, st, "p1", "de")
	c := NewCatalog(st.RawDB())

	codes, err := c.Apply(ctx, enID, []string{"Full CV"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := c.Attach(ctx, "education", 1, codes); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	// The German variant never supplied a label; the code stands in.
	labels, err := c.Labels(ctx, "education", 1, deID)
	if err != nil {
		t.Fatalf("Labels: %v", err)
	}
	if diff := cmp.Diff([]string{"full_cv"}, labels); diff != "" {
		t.Errorf("fallback labels (-want +got):\n%s", diff)
	}
}
