package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCampusAliases_Resolve(t *testing.T) {
	aliases := DefaultCampusAliases()

	tests := []struct {
		in   string
		want string
	}{
		{"Pisay Main", "MAIN"},
		{"  pisay main ", "MAIN"},
		{"PSHS-CVisC", "CVisC"},
		{"cvisc", "CVisC"},
		{"Eastern Visayas", "EVC"},
		{"Main Campus", "Main Campus"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := aliases.Resolve(tt.in); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCampusAliases_ZeroValue(t *testing.T) {
	var aliases CampusAliases

	if got := aliases.Resolve("Pisay Main"); got != "Pisay Main" {
		t.Errorf("zero value Resolve() = %q, want input unchanged", got)
	}
	if aliases.Len() != 0 {
		t.Errorf("zero value Len() = %d, want 0", aliases.Len())
	}
}

func TestNewCampusAliases_ConflictResolvesToFirstSortedCode(t *testing.T) {
	aliases := NewCampusAliases(map[string][]string{
		"ZETA":  {"Shared"},
		"ALPHA": {"Shared"},
	})

	for i := 0; i < 10; i++ {
		if got := aliases.Resolve("shared"); got != "ALPHA" {
			t.Fatalf("Resolve(shared) = %q, want ALPHA", got)
		}
	}
	if aliases.Len() != 3 {
		t.Errorf("Len() = %d, want 3", aliases.Len())
	}
}

func TestLoadCampusAliases(t *testing.T) {
	doc := `
NORTH:
  - North Annex
  - N. Annex
SOUTH: [South Wing]
`
	aliases, err := LoadCampusAliases(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadCampusAliases() error = %v", err)
	}

	if got := aliases.Resolve("n. annex"); got != "NORTH" {
		t.Errorf("Resolve(n. annex) = %q, want NORTH", got)
	}
	if got := aliases.Resolve("South Wing"); got != "SOUTH" {
		t.Errorf("Resolve(South Wing) = %q, want SOUTH", got)
	}
	if got := aliases.Resolve("Pisay Main"); got != "Pisay Main" {
		t.Errorf("loaded table should replace defaults, got %q", got)
	}
}

func TestLoadCampusAliases_Empty(t *testing.T) {
	aliases, err := LoadCampusAliases(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadCampusAliases() error = %v", err)
	}
	if aliases.Len() != 0 {
		t.Errorf("Len() = %d, want 0", aliases.Len())
	}
}

func TestLoadCampusAliases_Invalid(t *testing.T) {
	if _, err := LoadCampusAliases(strings.NewReader("- just\n- a list\n")); err == nil {
		t.Error("LoadCampusAliases() expected error for a YAML list")
	}
}

func TestLoadCampusAliasFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	if err := os.WriteFile(path, []byte("EAST: [East Gate]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	aliases, err := LoadCampusAliasFile(path)
	if err != nil {
		t.Fatalf("LoadCampusAliasFile() error = %v", err)
	}
	if got := aliases.Resolve("east gate"); got != "EAST" {
		t.Errorf("Resolve(east gate) = %q, want EAST", got)
	}

	if _, err := LoadCampusAliasFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadCampusAliasFile() expected error for missing file")
	}
}

func TestTransformer(t *testing.T) {
	rows := []CleanRow{
		{LastName: "Cruz", FirstName: "Ana", Campus: "Pisay Main", BatchYear: "2001"},
		{LastName: "Reyes", FirstName: "Jo", Campus: "Main Campus", BatchYear: "2002"},
	}

	t.Run("remap disabled passes campus through", func(t *testing.T) {
		out := NewTransformer(DefaultCampusAliases(), false).Transform(rows)
		if len(out) != 2 {
			t.Fatalf("len = %d, want 2", len(out))
		}
		if out[0].Campus != "Pisay Main" {
			t.Errorf("Campus = %q, want Pisay Main", out[0].Campus)
		}
	})

	t.Run("remap enabled resolves known spellings", func(t *testing.T) {
		out := NewTransformer(DefaultCampusAliases(), true).Transform(rows)
		if out[0].Campus != "MAIN" {
			t.Errorf("Campus = %q, want MAIN", out[0].Campus)
		}
		if out[1].Campus != "Main Campus" {
			t.Errorf("unknown campus changed to %q", out[1].Campus)
		}
	})

	t.Run("order and fields preserved", func(t *testing.T) {
		out := NewTransformer(CampusAliases{}, true).Transform(rows)
		want := FlatRecord{LastName: "Reyes", FirstName: "Jo", Campus: "Main Campus", BatchYear: "2002"}
		if out[1] != want {
			t.Errorf("out[1] = %+v, want %+v", out[1], want)
		}
	})
}
