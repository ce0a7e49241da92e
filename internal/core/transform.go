package core

// Transformer maps cleaned rows to the flat output schema.
// When remapping is enabled the campus name is replaced by its canonical code.
type Transformer struct {
	aliases CampusAliases
	remap   bool
}

// NewTransformer creates a transformer. aliases are consulted only when remap
// is true.
func NewTransformer(aliases CampusAliases, remap bool) Transformer {
	return Transformer{aliases: aliases, remap: remap}
}

// Transform returns one record per row, in row order.
func (t Transformer) Transform(rows []CleanRow) []FlatRecord {
	out := make([]FlatRecord, len(rows))
	for i, row := range rows {
		campus := row.Campus
		if t.remap {
			campus = t.aliases.Resolve(campus)
		}
		out[i] = FlatRecord{
			LastName:  row.LastName,
			FirstName: row.FirstName,
			Campus:    campus,
			BatchYear: row.BatchYear,
		}
	}
	return out
}
