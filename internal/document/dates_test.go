package document

import (
	"errors"
	"testing"
)

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		in   string
		iso  string
		open bool
	}{
		{"2020-01-15", "2020-01-15", false},
		{"2020-01", "2020-01", false},
		{"2020", "2020", false},
		{"15-01-2020", "2020-01-15", false},
		{"2020/01/15", "2020-01-15", false},
		{"present", "", true},
		{"Present", "", true},
		{"recent", "", true},
		{"current", "", true},
	}
	for _, tt := range tests {
		d, err := ParseDate(tt.in)
		if err != nil {
			t.Errorf("ParseDate(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if d.ISO != tt.iso {
			t.Errorf("ParseDate(%q): ISO = %q, want %q", tt.in, d.ISO, tt.iso)
		}
		if d.Open != tt.open {
			t.Errorf("ParseDate(%q): Open = %v, want %v", tt.in, d.Open, tt.open)
		}
		if d.Raw != tt.in {
			t.Errorf("ParseDate(%q): Raw = %q, want the original token", tt.in, d.Raw)
		}
	}
}

func TestParseDateClampsDayOfMonth(t *testing.T) {
	d, err := ParseDate("2020-02-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !d.Clamped {
		t.Error("expected Clamped to be set")
	}
	if d.ISO != "2020-02-28" {
		t.Errorf("ISO = %q, want 2020-02-28", d.ISO)
	}
	if d.Raw != "2020-02-31" {
		t.Errorf("Raw = %q, want the original token", d.Raw)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "yesterday", "01-2020-15", "20200115"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrBadDate) {
			t.Errorf("ParseDate(%q): error = %v, want ErrBadDate", in, err)
		}
	}
}

func TestParseOptionalDateNil(t *testing.T) {
	d, err := ParseOptionalDate(nil)
	if err != nil {
		t.Fatalf("ParseOptionalDate(nil): %v", err)
	}
	if d.Raw != "" || d.ISO != "" || d.Open {
		t.Errorf("ParseOptionalDate(nil) = %+v, want zero Date", d)
	}
}
