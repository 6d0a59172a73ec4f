package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedLanguage is returned when the identity block names a
// language that is not in the supported set. This is a hard failure, distinct
// from an absent language code, which falls back to filename inference.
var ErrUnsupportedLanguage = errors.New("unsupported language in identity block")

// Identity is the resolved (resume key, language) pair of one document.
type Identity struct {
	ResumeKey string
	Language  string
	// FromConfig is true when the key came from the document's identity
	// block rather than the filename.
	FromConfig bool
}

// ResolveIdentity determines which (resume key, language) a document belongs
// to. The explicit config block wins when present; otherwise the source
// filename is split on the pattern name[-_]<lang>, where <lang> must be a
// recognized 2-3 letter code. An unrecognized suffix is part of the key, and
// the language falls back to defaultLang.
//
// supported decides which codes count as languages; in production it is
// store.IsSupportedLanguage.
func ResolveIdentity(doc *Document, sourcePath, defaultLang string, supported func(string) bool) (Identity, error) {
	stemKey, stemLang := splitStem(sourcePath, supported)

	id := Identity{ResumeKey: stemKey, Language: stemLang}
	if id.Language == "" {
		id.Language = defaultLang
	}

	if doc.Config != nil {
		if doc.Config.ID != "" {
			id.ResumeKey = doc.Config.ID
			id.FromConfig = true
		}
		if doc.Config.Lang != "" {
			if !supported(doc.Config.Lang) {
				return Identity{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, doc.Config.Lang)
			}
			id.Language = doc.Config.Lang
		}
	}

	if id.ResumeKey == "" {
		return Identity{}, fmt.Errorf("%w: cannot resolve resume key from %q", ErrValidation, sourcePath)
	}
	return id, nil
}

// SplitKey applies the filename inference rule to a bare name with no
// extension. The legacy-store migrator re-keys person slugs with it so both
// paths agree on what counts as a language suffix. The returned language is
// empty when the name carries no recognized suffix.
func SplitKey(name string, supported func(string) bool) (key, lang string) {
	return splitStem(name, supported)
}

// splitStem splits a filename stem into (key, language). Only a recognized
// 2-3 letter code after the last '-' or '_' is treated as a language suffix.
func splitStem(sourcePath string, supported func(string) bool) (string, string) {
	stem := filepath.Base(sourcePath)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	if stem == "" {
		return "", ""
	}

	idx := strings.LastIndexAny(stem, "-_")
	if idx <= 0 || idx == len(stem)-1 {
		return stem, ""
	}

	suffix := stem[idx+1:]
	if len(suffix) < 2 || len(suffix) > 3 {
		return stem, ""
	}
	if !supported(strings.ToLower(suffix)) {
		return stem, ""
	}
	return stem[:idx], strings.ToLower(suffix)
}
