package store

import (
	"context"
	"errors"
	"testing"
)

func mustVersion(t *testing.T, st *Store, key, lang string) int64 {
	t.Helper()
	ctx := context.Background()
	tx, err := st.BeginTx(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()
	if err := EnsureSet(ctx, tx, key, lang); err != nil {
		t.Fatalf("EnsureSet: %v", err)
	}
	id, err := EnsureVersion(ctx, tx, key, lang)
	if err != nil {
		t.Fatalf("EnsureVersion: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return id
}

func TestEnsureVersionIsIdempotent(t *testing.T) {
	st := openTestStore(t)
	first := mustVersion(t, st, "p1", "en")
	second := mustVersion(t, st, "p1", "en")
	if first != second {
		t.Errorf("version ids differ across calls: %d vs %d", first, second)
	}

	var sets, versions int
	ctx := context.Background()
	st.RawDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM resume_sets`).Scan(&sets)
	st.RawDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM resume_versions`).Scan(&versions)
	if sets != 1 || versions != 1 {
		t.Errorf("got %d sets, %d versions, want 1 and 1", sets, versions)
	}
}

func TestBaseLanguageFixedByFirstArrival(t *testing.T) {
	st := openTestStore(t)
	mustVersion(t, st, "p1", "de")
	mustVersion(t, st, "p1", "en")

	versions, err := st.ListVersions(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("got %d versions, want 2", len(versions))
	}
	// Base sorts first.
	if versions[0].Language != "de" || !versions[0].IsBase {
		t.Errorf("base = (%s, %v), want (de, true)", versions[0].Language, versions[0].IsBase)
	}
	if versions[1].IsBase {
		t.Error("second arrival must not be base")
	}
}

func TestEnsureVersionUnknownLanguage(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	tx, err := st.BeginTx(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	err = EnsureSet(ctx, tx, "p1", "xx")
	if err == nil {
		// The FK may only trip on the version row depending on how the
		// driver surfaces deferred constraints; either call must fail.
		_, err = EnsureVersion(ctx, tx, "p1", "xx")
	}
	if !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("error = %v, want ErrUnknownLanguage", err)
	}
}

func TestLookupVersionNotFound(t *testing.T) {
	st := openTestStore(t)
	_, err := st.LookupVersion(context.Background(), "ghost", "en")
	if !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("error = %v, want ErrVersionNotFound", err)
	}
}

func TestListVersionsUnknownSet(t *testing.T) {
	st := openTestStore(t)
	_, err := st.ListVersions(context.Background(), "ghost")
	if !errors.Is(err, ErrSetNotFound) {
		t.Fatalf("error = %v, want ErrSetNotFound", err)
	}
}

func TestRemoveVariant(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	mustVersion(t, st, "p1", "en")
	mustVersion(t, st, "p1", "de")

	if err := st.RemoveVariant(ctx, "p1", "de", false); err != nil {
		t.Fatalf("RemoveVariant: %v", err)
	}
	if _, err := st.LookupVersion(ctx, "p1", "de"); !errors.Is(err, ErrVersionNotFound) {
		t.Errorf("de variant should be gone, got %v", err)
	}

	// Last variant needs force.
	err := st.RemoveVariant(ctx, "p1", "en", false)
	if !errors.Is(err, ErrSetNotEmpty) {
		t.Fatalf("error = %v, want ErrSetNotEmpty", err)
	}
	if err := st.RemoveVariant(ctx, "p1", "en", true); err != nil {
		t.Fatalf("forced RemoveVariant: %v", err)
	}

	var sets int
	if err := st.RawDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM resume_sets`).Scan(&sets); err != nil {
		t.Fatalf("count sets: %v", err)
	}
	if sets != 0 {
		t.Errorf("set should be deleted with its last variant, %d remain", sets)
	}
}

func TestRemoveVariantCascadesTranslations(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	enID := mustVersion(t, st, "p1", "en")
	mustVersion(t, st, "p1", "de")

	db := st.RawDB()
	if _, err := db.ExecContext(ctx,
		`INSERT INTO profiles (resume_key, sort_order, network) VALUES ('p1', 0, 'web')`); err != nil {
		t.Fatalf("insert profile: %v", err)
	}
	var profileID int64
	if err := db.QueryRowContext(ctx, `SELECT id FROM profiles`).Scan(&profileID); err != nil {
		t.Fatalf("profile id: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO profiles_i18n (profile_id, version_id, label) VALUES (?, ?, 'Website')`,
		profileID, enID); err != nil {
		t.Fatalf("insert translation: %v", err)
	}

	if err := st.RemoveVariant(ctx, "p1", "en", false); err != nil {
		t.Fatalf("RemoveVariant: %v", err)
	}

	var i18n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles_i18n`).Scan(&i18n); err != nil {
		t.Fatalf("count translations: %v", err)
	}
	if i18n != 0 {
		t.Errorf("translations should cascade away, %d remain", i18n)
	}

	// The invariant row belongs to the set and survives.
	var profiles int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&profiles); err != nil {
		t.Fatalf("count profiles: %v", err)
	}
	if profiles != 1 {
		t.Errorf("invariant row should survive, got %d", profiles)
	}
}
