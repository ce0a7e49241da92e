package core

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// CampusAliases maps spelling variants of a campus name to a canonical code.
// The zero value has no aliases. A CampusAliases is never modified after
// construction and is safe for concurrent use.
type CampusAliases struct {
	// folded alias -> canonical
	lookup map[string]string
}

// defaultCampusAliases lists canonical PSHS campus codes with the spellings
// seen in alumni uploads.
var defaultCampusAliases = map[string][]string{
	"MAIN":  {"Pisay Main", "PSHS Main", "PSHS-MC", "Main", "Diliman"},
	"CVC":   {"Pisay CVC", "PSHS-CVC", "Cagayan Valley"},
	"CVisC": {"Pisay CVisC", "PSHS-CVisC", "Central Visayas", "Argao"},
	"EVC":   {"Pisay EVC", "PSHS-EVC", "Eastern Visayas", "Palo"},
	"WVC":   {"Pisay WVC", "PSHS-WVC", "Western Visayas", "Iloilo"},
	"SMC":   {"Pisay SMC", "PSHS-SMC", "Southern Mindanao", "Davao"},
	"CMC":   {"Pisay CMC", "PSHS-CMC", "Central Mindanao", "Lanao"},
	"IRC":   {"Pisay IRC", "PSHS-IRC", "Ilocos"},
	"CLC":   {"Pisay CLC", "PSHS-CLC", "Central Luzon", "Clark"},
	"CBZRC": {"Pisay CBZRC", "PSHS-CBZRC", "Calabarzon", "Batangas"},
	"BRC":   {"Pisay BRC", "PSHS-BRC", "Bicol", "Goa"},
	"MRC":   {"Pisay MRC", "PSHS-MRC", "Mimaropa", "Odiongan"},
	"CARC":  {"Pisay CARC", "PSHS-CARC", "Cordillera", "Baguio"},
	"ZRC":   {"Pisay ZRC", "PSHS-ZRC", "Zamboanga Peninsula", "Dipolog"},
	"CRC":   {"Pisay CRC", "PSHS-CRC", "Caraga", "Butuan"},
	"SRC":   {"Pisay SRC", "PSHS-SRC", "Soccsksargen", "Koronadal"},
}

// DefaultCampusAliases returns the built-in alias table.
func DefaultCampusAliases() CampusAliases {
	return NewCampusAliases(defaultCampusAliases)
}

// NewCampusAliases builds an alias table from canonical code -> spellings.
// Each canonical code also maps to itself. Matching ignores case and
// surrounding whitespace. The input map is copied.
func NewCampusAliases(table map[string][]string) CampusAliases {
	lookup := make(map[string]string)

	// Sorted so a spelling listed under two codes resolves deterministically.
	canonicals := make([]string, 0, len(table))
	for c := range table {
		canonicals = append(canonicals, c)
	}
	sort.Strings(canonicals)

	for _, raw := range canonicals {
		canonical := strings.TrimSpace(raw)
		if canonical == "" {
			continue
		}
		if _, exists := lookup[foldCampus(canonical)]; !exists {
			lookup[foldCampus(canonical)] = canonical
		}
		for _, alias := range table[raw] {
			key := foldCampus(alias)
			if key == "" {
				continue
			}
			if _, exists := lookup[key]; !exists {
				lookup[key] = canonical
			}
		}
	}

	return CampusAliases{lookup: lookup}
}

// Resolve returns the canonical code for name, or name unchanged when it is
// not a known spelling.
func (a CampusAliases) Resolve(name string) string {
	if canonical, ok := a.lookup[foldCampus(name)]; ok {
		return canonical
	}
	return name
}

// Len returns the number of known spellings, canonical codes included.
func (a CampusAliases) Len() int {
	return len(a.lookup)
}

func foldCampus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LoadCampusAliases reads a YAML document mapping canonical codes to lists of
// spellings:
//
//	MAIN:
//	  - Pisay Main
//	  - PSHS Main
//	CVisC: [Central Visayas, Argao]
func LoadCampusAliases(r io.Reader) (CampusAliases, error) {
	var table map[string][]string
	if err := yaml.NewDecoder(r).Decode(&table); err != nil {
		if err == io.EOF {
			return NewCampusAliases(nil), nil
		}
		return CampusAliases{}, fmt.Errorf("decode campus aliases: %w", err)
	}
	return NewCampusAliases(table), nil
}

// LoadCampusAliasFile reads a YAML alias file from path.
func LoadCampusAliasFile(path string) (CampusAliases, error) {
	f, err := os.Open(path)
	if err != nil {
		return CampusAliases{}, fmt.Errorf("open campus aliases: %w", err)
	}
	defer f.Close()

	return LoadCampusAliases(f)
}
