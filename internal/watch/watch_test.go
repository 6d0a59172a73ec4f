package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/resumedb/resumedb/internal/importer"
	"github.com/resumedb/resumedb/internal/store"
)

func newWatchImporter(t *testing.T) *importer.Importer {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Initialize(context.Background(), false); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return importer.New(st, importer.Options{DefaultLanguage: "en"})
}

func quietLogger() *log.Logger {
	l := log.New(os.Stderr, "", 0)
	l.SetOutput(discard{})
	return l
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestNewRequiresDirectory(t *testing.T) {
	if _, err := New(newWatchImporter(t), Config{}); err == nil {
		t.Fatal("New without a directory succeeded")
	}
}

func TestStartTwiceFails(t *testing.T) {
	w, err := New(newWatchImporter(t), Config{Dir: t.TempDir(), Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()
	if err := w.Start(); err == nil {
		t.Fatal("second Start succeeded")
	}
}

func TestStopWithoutStart(t *testing.T) {
	w, err := New(newWatchImporter(t), Config{Dir: t.TempDir(), Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop before Start: %v", err)
	}
}

func TestWatcherImportsCreatedDocument(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var results []*importer.ImportResult
	done := make(chan struct{}, 8)

	w, err := New(newWatchImporter(t), Config{
		Dir:              dir,
		DebounceInterval: 50 * time.Millisecond,
		Logger:           quietLogger(),
		OnResult: func(res *importer.ImportResult, err error) {
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			done <- struct{}{}
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	doc := `{"basics": [{"fname": "A", "lname": "B"}]}`
	if err := os.WriteFile(filepath.Join(dir, "alice_en.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-JSON files never reach the importer.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the watcher to import")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(results) == 0 {
		t.Fatal("no results delivered")
	}
	res := results[0]
	if res == nil || !res.Success {
		t.Fatalf("result = %+v, want success", res)
	}
	if res.ResumeKey != "alice" || res.Language != "en" {
		t.Errorf("identity = (%s, %s), want (alice, en)", res.ResumeKey, res.Language)
	}
}

func TestWatcherReportsFailedImport(t *testing.T) {
	dir := t.TempDir()
	done := make(chan error, 8)

	w, err := New(newWatchImporter(t), Config{
		Dir:              dir,
		DebounceInterval: 50 * time.Millisecond,
		Logger:           quietLogger(),
		OnResult: func(_ *importer.ImportResult, err error) {
			done <- err
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "broken_en.json"), []byte(`{"basics": [`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err == nil {
			t.Error("malformed document imported without error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the watcher")
	}
}
