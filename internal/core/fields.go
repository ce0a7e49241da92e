package core

import "strings"

// Column aliases, in precedence order. The first spelling matches the
// original upload header; the second matches a previously transformed file.
var (
	LastNameColumns  = []string{"LastName", "last_name"}
	FirstNameColumns = []string{"FirstName", "first_name"}
	CampusColumns    = []string{"Campus", "campus"}
	BatchColumns     = []string{"Batch", "batch_year"}
)

// ResolveField returns the trimmed value of the first alias present in rec
// with a non-empty value, or "" if none is.
// Aliases are not merged: the first match wins.
func ResolveField(rec RawRecord, aliases ...string) string {
	for _, name := range aliases {
		v, ok := rec.Lookup(name)
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
