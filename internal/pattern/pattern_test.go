package pattern

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pauljbernard/headelf/internal/model"
)

func TestMatchesIsBidirectional(t *testing.T) {
	tests := []struct {
		keyword, token string
		want           bool
	}{
		{"bank", "banking", true},
		{"banking", "bank", true},
		{"OEE", "oee", true},
		{"manufacturing", "Manufacturing", true},
		{"hospital", "quarterly", false},
		{"", "bank", false},
		{"bank", "", false},
	}
	for _, tt := range tests {
		if got := Matches(tt.keyword, tt.token); got != tt.want {
			t.Errorf("Matches(%q, %q): expected %v, got %v", tt.keyword, tt.token, tt.want, got)
		}
	}
}

func TestMatchesNormalizedSkipsCaseFolding(t *testing.T) {
	if !MatchesNormalized("bank", "banking") || !MatchesNormalized("banking", "bank") {
		t.Error("expected bidirectional match on lower-cased input")
	}
	if MatchesNormalized("oee", "OEE") {
		t.Error("expected no case folding")
	}
	if MatchesNormalized("", "bank") || MatchesNormalized("bank", "") {
		t.Error("expected empty side to never match")
	}
}

func TestNormalizeLowercasesAndSplits(t *testing.T) {
	got := Normalize("  Our Manufacturing\tOEE\nimproved ")
	want := []string{"our", "manufacturing", "oee", "improved"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRegisterAppendsAndLowercases(t *testing.T) {
	r := NewRegistry()
	r.Register(model.Manufacturing, []ContextPattern{{Keywords: []string{"OEE", " "}, Weight: 0.8}})
	r.Register(model.Manufacturing, []ContextPattern{{Keywords: []string{"Plant"}, Weight: 0.2}})

	got := r.PatternsFor(model.Manufacturing)
	if len(got) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0].Keywords, []string{"oee"}) {
		t.Errorf("expected lower-cased keywords without blanks, got %v", got[0].Keywords)
	}
	if inds := r.Industries(); len(inds) != 1 || inds[0] != model.Manufacturing {
		t.Errorf("expected single industry in order, got %v", inds)
	}
}

func TestPatternsForReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register(model.Government, []ContextPattern{{Keywords: []string{"agency"}, Weight: 0.5}})

	got := r.PatternsFor(model.Government)
	got[0].Keywords[0] = "mutated"

	if r.PatternsFor(model.Government)[0].Keywords[0] != "agency" {
		t.Error("PatternsFor leaked internal slice")
	}
}

func TestBuiltinCoversAllIndustries(t *testing.T) {
	r := Builtin()
	for _, ind := range model.AllIndustries {
		ps := r.PatternsFor(ind)
		if len(ps) == 0 {
			t.Errorf("expected built-in patterns for %s", ind)
		}
		for _, p := range ps {
			if p.Weight <= 0 || p.Weight > 1 {
				t.Errorf("%s: weight %v outside (0,1]", ind, p.Weight)
			}
		}
	}
}

func TestLoadFileMissingUsesBuiltin(t *testing.T) {
	r, hash, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Industries()) != len(model.AllIndustries) {
		t.Errorf("expected built-in table, got %d industries", len(r.Industries()))
	}
	if !strings.HasPrefix(hash, "sha256:") {
		t.Errorf("expected sha256 hash, got %q", hash)
	}
}

func TestLoadFileOverridesIndustry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	doc := `industries:
  manufacturing:
    - keywords: [widget]
      weight: 0.9
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	r, _, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := r.PatternsFor(model.Manufacturing)
	if len(got) != 1 || got[0].Keywords[0] != "widget" {
		t.Errorf("expected override pattern, got %+v", got)
	}
	if len(r.PatternsFor(model.Government)) == 0 {
		t.Error("expected untouched industries to keep built-in patterns")
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	doc := `industries:
  AEROSPACE:
    - keywords: [rocket]
      weight: 0.5
  GOVERNMENT:
    - keywords: [agency]
      weight: 1.5
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "AEROSPACE") || !strings.Contains(err.Error(), "weight") {
		t.Errorf("expected both problems reported, got %v", err)
	}
}
