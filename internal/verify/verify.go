// Package verify compares a source document against its reconstruction from
// the store and reports every divergence.
//
// The comparison is semantic, not textual: formatting differences never
// count, numbers compare by value (8 == 8.0, and "8" matches 8 when string
// coercion is on), string whitespace runs collapse, and arrays declared
// order-insensitive compare as multisets. Everything else must match
// exactly, key for key and position for position.
package verify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/resumedb/resumedb/internal/document"
)

// Options controls the comparison tolerances.
type Options struct {
	// IgnoreOrderSuffixes lists field names whose array values compare as
	// multisets. A path matches when its final key ends with a listed name.
	IgnoreOrderSuffixes []string
	// IgnoreWhitespace collapses whitespace runs inside strings before
	// comparing.
	IgnoreWhitespace bool
	// CoerceNumbers lets a numeric string match the equal number.
	CoerceNumbers bool
}

// DefaultOptions are the tolerances the round-trip guarantee is defined
// against: order-insensitive fields from the shared field-order tables,
// whitespace collapsing and number coercion on.
func DefaultOptions() Options {
	return Options{
		IgnoreOrderSuffixes: document.OrderInsensitiveSuffixes(),
		IgnoreWhitespace:    true,
		CoerceNumbers:       true,
	}
}

// Diff is one divergence between source and exported values.
type Diff struct {
	Path string `json:"path"`
	Want string `json:"want"`
	Got  string `json:"got"`
}

// Result is the full comparison outcome. Matches is true only when every
// slice is empty.
type Result struct {
	Matches     bool     `json:"matches"`
	MissingKeys []string `json:"missing_keys,omitempty"`
	ExtraKeys   []string `json:"extra_keys,omitempty"`
	ValueDiffs  []Diff   `json:"value_diffs,omitempty"`
	TypeDiffs   []Diff   `json:"type_diffs,omitempty"`
}

// Documents compares a source document against an exported one. Both inputs
// must be valid JSON objects.
func Documents(source, exported []byte, opts Options) (*Result, error) {
	if !gjson.ValidBytes(source) {
		return nil, fmt.Errorf("source document is not valid JSON")
	}
	if !gjson.ValidBytes(exported) {
		return nil, fmt.Errorf("exported document is not valid JSON")
	}
	src := gjson.ParseBytes(source)
	exp := gjson.ParseBytes(exported)
	if !src.IsObject() || !exp.IsObject() {
		return nil, fmt.Errorf("documents must be JSON objects")
	}

	v := &verifier{opts: opts, result: &Result{}}
	v.compare("$", src, exp)
	v.result.Matches = len(v.result.MissingKeys) == 0 &&
		len(v.result.ExtraKeys) == 0 &&
		len(v.result.ValueDiffs) == 0 &&
		len(v.result.TypeDiffs) == 0
	return v.result, nil
}

type verifier struct {
	opts   Options
	result *Result
}

func (v *verifier) compare(path string, want, got gjson.Result) {
	switch {
	case want.IsObject():
		if !got.IsObject() {
			v.typeDiff(path, want, got)
			return
		}
		v.compareObjects(path, want, got)
	case want.IsArray():
		if !got.IsArray() {
			v.typeDiff(path, want, got)
			return
		}
		v.compareArrays(path, want.Array(), got.Array())
	default:
		v.compareScalars(path, want, got)
	}
}

func (v *verifier) compareObjects(path string, want, got gjson.Result) {
	wantKeys, wantVals := objectEntries(want)
	_, gotVals := objectEntries(got)

	for _, k := range wantKeys {
		childPath := path + "." + k
		gv, ok := gotVals[k]
		if !ok {
			v.result.MissingKeys = append(v.result.MissingKeys, childPath)
			continue
		}
		v.compare(childPath, wantVals[k], gv)
	}

	got.ForEach(func(key, _ gjson.Result) bool {
		if _, ok := wantVals[key.String()]; !ok {
			v.result.ExtraKeys = append(v.result.ExtraKeys, path+"."+key.String())
		}
		return true
	})
}

func (v *verifier) compareArrays(path string, want, got []gjson.Result) {
	if v.orderInsensitive(path) {
		v.compareMultisets(path, want, got)
		return
	}
	if len(want) != len(got) {
		v.result.ValueDiffs = append(v.result.ValueDiffs, Diff{
			Path: path,
			Want: fmt.Sprintf("%d elements", len(want)),
			Got:  fmt.Sprintf("%d elements", len(got)),
		})
	}
	n := len(want)
	if len(got) < n {
		n = len(got)
	}
	for i := 0; i < n; i++ {
		v.compare(fmt.Sprintf("%s[%d]", path, i), want[i], got[i])
	}
}

// compareMultisets matches elements by canonical form, ignoring order.
func (v *verifier) compareMultisets(path string, want, got []gjson.Result) {
	remaining := make(map[string]int, len(got))
	for _, g := range got {
		remaining[v.canon(g)]++
	}
	for _, w := range want {
		key := v.canon(w)
		if remaining[key] > 0 {
			remaining[key]--
			continue
		}
		v.result.ValueDiffs = append(v.result.ValueDiffs, Diff{
			Path: path,
			Want: w.Raw,
			Got:  "no matching element",
		})
	}
	for key, n := range remaining {
		for i := 0; i < n; i++ {
			v.result.ValueDiffs = append(v.result.ValueDiffs, Diff{
				Path: path,
				Want: "no matching element",
				Got:  key,
			})
		}
	}
}

func (v *verifier) compareScalars(path string, want, got gjson.Result) {
	if want.Type == gjson.Null && got.Type == gjson.Null {
		return
	}
	if v.scalarsEqual(want, got) {
		return
	}
	if scalarKind(want) != scalarKind(got) {
		v.typeDiff(path, want, got)
		return
	}
	v.result.ValueDiffs = append(v.result.ValueDiffs, Diff{
		Path: path, Want: want.Raw, Got: got.Raw,
	})
}

func (v *verifier) scalarsEqual(want, got gjson.Result) bool {
	if want.Type == gjson.Number && got.Type == gjson.Number {
		return want.Num == got.Num
	}
	if v.opts.CoerceNumbers {
		// A number and a string match only when the string is exactly the
		// number's canonical decimal form: "8" equals 8, "08" does not.
		if n, s, ok := numberAndString(want, got); ok {
			return strconv.FormatFloat(n, 'f', -1, 64) == strings.TrimSpace(s)
		}
	}
	if want.Type == gjson.String && got.Type == gjson.String {
		return v.normalize(want.String()) == v.normalize(got.String())
	}
	if want.Type == gjson.True || want.Type == gjson.False {
		return want.Type == got.Type
	}
	return false
}

func (v *verifier) typeDiff(path string, want, got gjson.Result) {
	v.result.TypeDiffs = append(v.result.TypeDiffs, Diff{
		Path: path, Want: jsonKind(want), Got: jsonKind(got),
	})
}

// orderInsensitive reports whether the final key of path is declared
// order-insensitive.
func (v *verifier) orderInsensitive(path string) bool {
	key := path
	if i := strings.LastIndex(key, "."); i >= 0 {
		key = key[i+1:]
	}
	for _, suffix := range v.opts.IgnoreOrderSuffixes {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}

func (v *verifier) normalize(s string) string {
	if !v.opts.IgnoreWhitespace {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}

// canon renders a value in a comparison-stable form for multiset matching.
func (v *verifier) canon(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return "s:" + v.normalize(r.String())
	case gjson.Number:
		return "n:" + strconv.FormatFloat(r.Num, 'g', -1, 64)
	default:
		return "j:" + r.Raw
	}
}

func numberAndString(a, b gjson.Result) (num float64, str string, ok bool) {
	if a.Type == gjson.Number && b.Type == gjson.String {
		return a.Num, b.String(), true
	}
	if a.Type == gjson.String && b.Type == gjson.Number {
		return b.Num, a.String(), true
	}
	return 0, "", false
}

func scalarKind(r gjson.Result) string {
	switch r.Type {
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	case gjson.Null:
		return "null"
	default:
		return jsonKind(r)
	}
}

func jsonKind(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	default:
		return scalarKind(r)
	}
}

// objectEntries walks an object once, returning keys in document order and a
// lookup map.
func objectEntries(obj gjson.Result) ([]string, map[string]gjson.Result) {
	var keys []string
	vals := make(map[string]gjson.Result)
	obj.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if _, dup := vals[k]; !dup {
			keys = append(keys, k)
		}
		vals[k] = value
		return true
	})
	return keys, vals
}
