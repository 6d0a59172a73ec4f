package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Initialize(context.Background(), false); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return st
}

func TestOpenExistingMissingFile(t *testing.T) {
	_, err := OpenExisting(filepath.Join(t.TempDir(), "nope.db"))
	if !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("error = %v, want ErrStoreNotFound", err)
	}
}

func TestInitializeCreatesEverything(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	v, ok, err := st.GetSchemaVersion(ctx)
	if err != nil {
		t.Fatalf("GetSchemaVersion: %v", err)
	}
	if !ok || v != SchemaVersion {
		t.Errorf("schema version = (%d, %v), want (%d, true)", v, ok, SchemaVersion)
	}

	for _, table := range Tables {
		has, err := st.HasTable(ctx, table)
		if err != nil {
			t.Fatalf("HasTable(%s): %v", table, err)
		}
		if !has {
			t.Errorf("table %s missing after Initialize", table)
		}
	}

	var langs int
	if err := st.RawDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM languages`).Scan(&langs); err != nil {
		t.Fatalf("count languages: %v", err)
	}
	if langs != len(SupportedLanguages) {
		t.Errorf("seeded %d languages, want %d", langs, len(SupportedLanguages))
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	st := openTestStore(t)
	if err := st.Initialize(context.Background(), false); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
}

func TestInitializeVersionMismatch(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, err := st.RawDB().ExecContext(ctx,
		`UPDATE meta SET value = '99' WHERE key = 'schema_version'`); err != nil {
		t.Fatalf("tamper with stamp: %v", err)
	}

	err := st.Initialize(ctx, false)
	if !errors.Is(err, ErrSchemaVersionMismatch) {
		t.Fatalf("error = %v, want ErrSchemaVersionMismatch", err)
	}
	if err := st.Initialize(ctx, true); err != nil {
		t.Fatalf("forced Initialize: %v", err)
	}
	v, _, err := st.GetSchemaVersion(ctx)
	if err != nil {
		t.Fatalf("GetSchemaVersion: %v", err)
	}
	if v != SchemaVersion {
		t.Errorf("version after force = %d, want %d", v, SchemaVersion)
	}
}

func TestIsSupportedLanguage(t *testing.T) {
	for _, l := range SupportedLanguages {
		if !IsSupportedLanguage(l.Code) {
			t.Errorf("seeded language %s not reported as supported", l.Code)
		}
	}
	if IsSupportedLanguage("tlh") {
		t.Error("tlh should not be supported")
	}
}
