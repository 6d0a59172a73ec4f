// Package importer parses portable resume documents and upserts them into
// the normalized store.
//
// Identity is positional: every array element is matched to an existing
// invariant row by (parent scope, sort_order), never by content. Re-importing
// the same file twice produces zero duplicate rows; re-importing a reordered
// array remaps content onto the existing positional rows.
//
// One document is one transaction. Any failure rolls back every write for
// that document; a directory import is a sequence of independent per-document
// transactions.
package importer

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/resumedb/resumedb/internal/document"
	"github.com/resumedb/resumedb/internal/store"
	"github.com/resumedb/resumedb/internal/tags"
)

// ImportResult reports one document import. Callers render it as text or
// JSON; it is the contract, not the exit code.
type ImportResult struct {
	Success       bool           `json:"success"`
	Source        string         `json:"source,omitempty"`
	ResumeKey     string         `json:"resume_key,omitempty"`
	Language      string         `json:"language,omitempty"`
	SectionCounts map[string]int `json:"section_counts,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
	Error         string         `json:"error,omitempty"`
	DryRun        bool           `json:"dry_run,omitempty"`
}

// DirResult reports a batch import: one entry per document, failures
// included.
type DirResult struct {
	Imported int             `json:"imported"`
	Failed   int             `json:"failed"`
	Files    []*ImportResult `json:"files"`
}

// Importer upserts documents into one store. Construct one per store; there
// is no package-level default.
type Importer struct {
	store       *store.Store
	defaultLang string
	logger      *log.Logger
}

// Options configures an Importer.
type Options struct {
	// DefaultLanguage is used when neither the identity block nor the
	// filename carries a recognized language code.
	DefaultLanguage string
	// DryRun executes every write and then unconditionally rolls back.
	DryRun bool
	// Logger receives per-section progress; nil means quiet.
	Logger *log.Logger
}

// New creates an Importer over an initialized store.
func New(st *store.Store, opts Options) *Importer {
	lang := opts.DefaultLanguage
	if lang == "" {
		lang = "en"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
		logger.SetOutput(discard{})
	}
	return &Importer{store: st, defaultLang: lang, logger: logger}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// ImportFile reads and imports one document file.
func (im *Importer) ImportFile(ctx context.Context, path string, dryRun bool) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	return im.ImportDocument(ctx, data, path, dryRun)
}

// ImportDocument imports one document held in memory. sourcePath is used for
// identity inference and error reporting only.
func (im *Importer) ImportDocument(ctx context.Context, data []byte, sourcePath string, dryRun bool) (*ImportResult, error) {
	result := &ImportResult{Source: sourcePath, DryRun: dryRun}

	doc, err := document.Decode(data)
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("%s: %w", filepath.Base(sourcePath), err)
	}

	id, err := document.ResolveIdentity(doc, sourcePath, im.defaultLang, store.IsSupportedLanguage)
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("%s: %w", filepath.Base(sourcePath), err)
	}
	result.ResumeKey = id.ResumeKey
	result.Language = id.Language

	tx, err := im.store.BeginTx(ctx)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	// Rollback is a no-op after a successful commit, and the whole point of
	// a dry run.
	defer tx.Rollback()

	if err := store.EnsureSet(ctx, tx, id.ResumeKey, id.Language); err != nil {
		result.Error = err.Error()
		return result, err
	}
	versionID, err := store.EnsureVersion(ctx, tx, id.ResumeKey, id.Language)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	var hasConfig, hasConfigID, hasConfigLang bool
	if doc.Config != nil {
		hasConfig = true
		hasConfigID = doc.Config.HasID
		hasConfigLang = doc.Config.HasLang
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE resume_versions SET has_config = ?, has_config_id = ?, has_config_lang = ?
		 WHERE version_id = ?`,
		hasConfig, hasConfigID, hasConfigLang, versionID); err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("failed to record identity block presence: %w", err)
	}

	counts, warnings, err := Apply(ctx, tx, id.ResumeKey, versionID, doc)
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("%s: %w", filepath.Base(sourcePath), err)
	}

	result.SectionCounts = counts
	result.Warnings = warnings

	if dryRun {
		im.logger.Printf("dry run: rolling back %s (%s, %s)", sourcePath, id.ResumeKey, id.Language)
		result.Success = true
		return result, nil
	}

	if err := tx.Commit(); err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("failed to commit import of %s: %w", sourcePath, err)
	}
	im.logger.Printf("imported %s as (%s, %s)", sourcePath, id.ResumeKey, id.Language)
	result.Success = true
	return result, nil
}

// ImportDir imports every *.json document in dir, each in its own
// transaction. One document's failure does not roll back or stop the others.
func (im *Importer) ImportDir(ctx context.Context, dir string, dryRun bool) (*DirResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read document directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	batch := &DirResult{}
	for _, name := range names {
		res, err := im.ImportFile(ctx, filepath.Join(dir, name), dryRun)
		if err != nil {
			if res == nil {
				res = &ImportResult{Source: name, Error: err.Error()}
			}
			batch.Failed++
		} else {
			batch.Imported++
		}
		batch.Files = append(batch.Files, res)
	}
	return batch, nil
}

// Apply runs the import-style upserts for one decoded document inside a
// caller-owned transaction. The legacy-store migrator shares it so every
// migrated person produces exactly the rows a fresh import would.
func Apply(ctx context.Context, tx *sql.Tx, resumeKey string, versionID int64, doc *document.Document) (counts map[string]int, warnings []string, err error) {
	s := &session{
		tx:        tx,
		catalog:   tags.NewCatalog(tx),
		resumeKey: resumeKey,
		versionID: versionID,
		counts:    make(map[string]int),
	}
	if err := s.importAll(ctx, doc); err != nil {
		return nil, nil, err
	}
	return s.counts, s.warnings, nil
}

// session carries the per-document import state through the section upserts.
type session struct {
	tx        *sql.Tx
	catalog   *tags.Catalog
	resumeKey string
	versionID int64
	counts    map[string]int
	warnings  []string
}

func (s *session) importAll(ctx context.Context, doc *document.Document) error {
	if err := s.importBasics(ctx, &doc.Basics); err != nil {
		return err
	}
	if err := s.importProfiles(ctx, doc.Profiles); err != nil {
		return err
	}
	if err := s.importEducation(ctx, doc.Education); err != nil {
		return err
	}
	if err := s.importLanguages(ctx, doc.Languages); err != nil {
		return err
	}
	if err := s.importWorkshops(ctx, doc.Workshops); err != nil {
		return err
	}
	if err := s.importSkills(ctx, doc.Skills); err != nil {
		return err
	}
	if err := s.importExperiences(ctx, doc.Experiences); err != nil {
		return err
	}
	if err := s.importProjects(ctx, doc.Projects); err != nil {
		return err
	}
	if err := s.importPublications(ctx, doc.Publications); err != nil {
		return err
	}
	return s.importReferences(ctx, doc.References)
}

func (s *session) warnf(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

// parseDate parses a nullable date field, recording a warning when the day
// of month had to be clamped.
func (s *session) parseDate(section, field string, i int, raw *string) (document.Date, error) {
	d, err := document.ParseOptionalDate(raw)
	if err != nil {
		return document.Date{}, fmt.Errorf("%s[%d].%s: %w", section, i, field, err)
	}
	if d.Clamped {
		s.warnf("%s[%d].%s: day of month out of range in %q, clamped to 28", section, i, field, d.Raw)
	}
	return d, nil
}

// applyTags canonicalizes and attaches one entity's tag array. An absent
// array keeps whatever tags are already attached.
func (s *session) applyTags(ctx context.Context, entityType string, entityID int64, raw []string) error {
	if len(raw) == 0 {
		return nil
	}
	codes, err := s.catalog.Apply(ctx, s.versionID, raw)
	if err != nil {
		return err
	}
	return s.catalog.Attach(ctx, entityType, entityID, codes)
}

// ns converts an optional string to its SQL binding.
func ns(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// nf converts an optional float to its SQL binding.
func nf(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

// dateCols maps a parsed date onto its (normalized, raw) column pair. The
// raw column always carries the original token; the normalized column is
// null for open-ended sentinels.
func dateCols(d document.Date) (iso, raw sql.NullString) {
	if d.Raw == "" {
		return sql.NullString{}, sql.NullString{}
	}
	raw = sql.NullString{String: d.Raw, Valid: true}
	if !d.Open {
		iso = sql.NullString{String: d.ISO, Valid: true}
	}
	return iso, raw
}
