// Package migrate transforms the legacy single-language store layout into
// the normalized multi-language schema.
//
// The legacy layout is one flat table per concern: person rows keyed by a
// slug whose suffix may carry the language, generic entry rows keyed by
// (person, section, position) with the section element as a JSON payload,
// and free-text tags in tag/entry_tag. The migration re-keys every slug
// through the same suffix-inference rule the importer applies to filenames,
// then replays every entry through the importer's own upserts, so the
// migrated store is indistinguishable from one built by importing the same
// documents.
//
// Everything runs in one transaction. Any failure rolls the store back to
// its pre-migration state; the file-level backup taken beforehand is the
// recovery path for failures outside the transaction's reach.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/resumedb/resumedb/internal/document"
	"github.com/resumedb/resumedb/internal/importer"
	"github.com/resumedb/resumedb/internal/store"
)

var (
	// ErrAlreadyMigrated means the store already carries the normalized
	// schema stamp.
	ErrAlreadyMigrated = errors.New("store already uses the normalized schema")
	// ErrNoLegacySchema means the store has neither the legacy tables nor
	// the normalized stamp.
	ErrNoLegacySchema = errors.New("store does not contain a legacy schema")
)

// State classifies a store's schema generation.
type State int

const (
	StateUnknown State = iota
	StateEmpty
	StateLegacy
	StateNormalized
)

// Detect probes the store for the normalized version stamp and the legacy
// table set.
func Detect(ctx context.Context, st *store.Store) (State, error) {
	if _, ok, err := st.GetSchemaVersion(ctx); err != nil {
		return StateUnknown, err
	} else if ok {
		return StateNormalized, nil
	}

	legacy := true
	for _, table := range []string{"person", "entry"} {
		has, err := st.HasTable(ctx, table)
		if err != nil {
			return StateUnknown, err
		}
		if !has {
			legacy = false
			break
		}
	}
	if legacy {
		return StateLegacy, nil
	}

	var tables int
	err := st.RawDB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table'`).Scan(&tables)
	if err != nil {
		return StateUnknown, fmt.Errorf("failed to probe store tables: %w", err)
	}
	if tables == 0 {
		return StateEmpty, nil
	}
	return StateUnknown, nil
}

// Options configures one migration run.
type Options struct {
	// DefaultLanguage is assigned to person slugs with no recognized
	// language suffix. Empty means "en".
	DefaultLanguage string
	// DisableBackup skips the file-level backup. Intended for tests and
	// callers that manage their own copies.
	DisableBackup bool
	// BackupDir receives the backup file; empty means alongside the store.
	BackupDir string
}

// Result reports one migration run. BackupPath is set even on failure so the
// caller can restore by copying the file back.
type Result struct {
	Success       bool           `json:"success"`
	BackupPath    string         `json:"backup_path,omitempty"`
	Persons       int            `json:"persons"`
	ResumeSets    int            `json:"resume_sets"`
	SectionCounts map[string]int `json:"section_counts,omitempty"`
	Skipped       int            `json:"skipped,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Run migrates a legacy store in place.
func Run(ctx context.Context, st *store.Store, opts Options) (*Result, error) {
	result := &Result{SectionCounts: make(map[string]int)}

	state, err := Detect(ctx, st)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	switch state {
	case StateNormalized:
		result.Error = ErrAlreadyMigrated.Error()
		return result, ErrAlreadyMigrated
	case StateLegacy:
	default:
		result.Error = ErrNoLegacySchema.Error()
		return result, ErrNoLegacySchema
	}

	if !opts.DisableBackup {
		backup, err := backupFile(st.Path(), opts.BackupDir)
		if err != nil {
			result.Error = err.Error()
			return result, err
		}
		result.BackupPath = backup
	}

	defaultLang := opts.DefaultLanguage
	if defaultLang == "" {
		defaultLang = "en"
	}

	tx, err := st.BeginTx(ctx)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	defer tx.Rollback()

	if err := store.InitializeTx(ctx, tx); err != nil {
		result.Error = err.Error()
		return result, err
	}

	m := &migration{tx: tx, defaultLang: defaultLang, result: result}
	if err := m.run(ctx); err != nil {
		result.Error = err.Error()
		return result, err
	}

	if err := tx.Commit(); err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("failed to commit migration: %w", err)
	}
	result.Success = true
	return result, nil
}

type migration struct {
	tx          *sql.Tx
	defaultLang string
	result      *Result
}

type legacyPerson struct {
	id   int64
	slug string
}

func (m *migration) run(ctx context.Context) error {
	persons, err := m.loadPersons(ctx)
	if err != nil {
		return err
	}
	m.result.Persons = len(persons)

	distinctKeys := make(map[string]bool)
	for _, p := range persons {
		key, lang := document.SplitKey(p.slug, store.IsSupportedLanguage)
		if lang == "" {
			lang = m.defaultLang
		}
		if key == "" {
			return fmt.Errorf("person %d has an empty slug", p.id)
		}
		distinctKeys[key] = true

		if err := m.migratePerson(ctx, p, key, lang); err != nil {
			return fmt.Errorf("person %q: %w", p.slug, err)
		}
	}

	// Count invariants: every person became exactly one version, every
	// distinct re-keyed slug exactly one set. A mismatch means data was
	// dropped or invented; roll everything back.
	var sets, versions int
	if err := m.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM resume_sets`).Scan(&sets); err != nil {
		return fmt.Errorf("failed to count resume sets: %w", err)
	}
	if err := m.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM resume_versions`).Scan(&versions); err != nil {
		return fmt.Errorf("failed to count resume versions: %w", err)
	}
	if sets != len(distinctKeys) {
		return fmt.Errorf("count invariant violated: %d resume sets for %d distinct keys", sets, len(distinctKeys))
	}
	if versions != len(persons) {
		return fmt.Errorf("count invariant violated: %d resume versions for %d persons", versions, len(persons))
	}
	m.result.ResumeSets = sets
	return nil
}

func (m *migration) loadPersons(ctx context.Context) ([]legacyPerson, error) {
	rows, err := m.tx.QueryContext(ctx, `SELECT id, slug FROM person ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy persons: %w", err)
	}
	defer rows.Close()

	var persons []legacyPerson
	for rows.Next() {
		var p legacyPerson
		if err := rows.Scan(&p.id, &p.slug); err != nil {
			return nil, fmt.Errorf("failed to scan legacy person: %w", err)
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

func (m *migration) migratePerson(ctx context.Context, p legacyPerson, key, lang string) error {
	if err := store.EnsureSet(ctx, m.tx, key, lang); err != nil {
		return err
	}
	versionID, err := store.EnsureVersion(ctx, m.tx, key, lang)
	if err != nil {
		return err
	}
	// Legacy stores never carried an identity block.
	if _, err := m.tx.ExecContext(ctx,
		`UPDATE resume_versions SET has_config = 0 WHERE version_id = ?`, versionID); err != nil {
		return fmt.Errorf("failed to mark version: %w", err)
	}

	doc, err := m.assembleDocument(ctx, p)
	if err != nil {
		return err
	}

	_, warnings, err := importer.Apply(ctx, m.tx, key, versionID, doc)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		m.result.Warnings = append(m.result.Warnings, fmt.Sprintf("%s: %s", p.slug, w))
	}
	return nil
}

type legacyEntry struct {
	id      int64
	section string
	payload []byte
	tags    []string
}

// assembleDocument rebuilds one person's document from their legacy entries,
// dispatching each entry by section name.
func (m *migration) assembleDocument(ctx context.Context, p legacyPerson) (*document.Document, error) {
	entries, err := m.loadEntries(ctx, p.id)
	if err != nil {
		return nil, err
	}

	doc := &document.Document{}
	skills := newSkillTree()
	for _, e := range entries {
		if emptyMarker(e.payload) {
			m.result.Skipped++
			continue
		}
		if err := m.translateEntry(doc, skills, e); err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", e.id, e.section, err)
		}
		m.result.SectionCounts[e.section]++
	}
	doc.Skills = skills.categories()
	return doc, nil
}

func (m *migration) loadEntries(ctx context.Context, personID int64) ([]legacyEntry, error) {
	rows, err := m.tx.QueryContext(ctx,
		`SELECT id, section, payload FROM entry WHERE person_id = ? ORDER BY section, position`,
		personID)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy entries: %w", err)
	}
	defer rows.Close()

	var entries []legacyEntry
	for rows.Next() {
		var e legacyEntry
		if err := rows.Scan(&e.id, &e.section, &e.payload); err != nil {
			return nil, fmt.Errorf("failed to scan legacy entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		tags, err := m.loadEntryTags(ctx, entries[i].id)
		if err != nil {
			return nil, err
		}
		entries[i].tags = tags
	}
	return entries, nil
}

func (m *migration) loadEntryTags(ctx context.Context, entryID int64) ([]string, error) {
	rows, err := m.tx.QueryContext(ctx,
		`SELECT t.name FROM entry_tag et JOIN tag t ON t.id = et.tag_id
		 WHERE et.entry_id = ? ORDER BY et.rowid`,
		entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan entry tag: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func emptyMarker(payload []byte) bool {
	switch string(payload) {
	case "", "null", "[]", "{}":
		return true
	}
	return false
}

// backupFile copies the store file aside before migration. The destination
// name carries a timestamp so repeated attempts never clobber an earlier
// backup.
func backupFile(path, dir string) (string, error) {
	if dir == "" {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	dest := filepath.Join(dir,
		fmt.Sprintf("%s.backup-%s", filepath.Base(path), time.Now().Format("20060102-150405")))

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open store for backup: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := out.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync backup: %w", err)
	}
	return dest, nil
}

// mergeTags unions the payload's own tag array with the legacy junction
// table's names, payload first.
func mergeTags(own, legacy []string) []string {
	if len(legacy) == 0 {
		return own
	}
	seen := make(map[string]bool, len(own))
	out := append([]string(nil), own...)
	for _, t := range own {
		seen[t] = true
	}
	for _, t := range legacy {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
