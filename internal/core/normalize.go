package core

import "strings"

// Normalize decomposes rows into alumni, campus and alumni_campus tables.
//
// alumni_id is the 1-based row position. campus_id is assigned in first-seen
// order over the trimmed campus name, compared exactly (case-sensitive, no
// alias resolution). An empty campus name is a key like any other.
//
// The campus mapping lives only for this call.
func Normalize(rows []CleanRow) Tables {
	campusIDs := make(map[string]int)
	tables := Tables{
		Alumni: make([]Alumni, 0, len(rows)),
		Links:  make([]AlumniCampus, 0, len(rows)),
	}

	for i, row := range rows {
		alumniID := i + 1
		name := strings.TrimSpace(row.Campus)

		campusID, ok := campusIDs[name]
		if !ok {
			campusID = len(campusIDs) + 1
			campusIDs[name] = campusID
			tables.Campuses = append(tables.Campuses, Campus{
				CampusID:   campusID,
				CampusName: name,
			})
		}

		tables.Alumni = append(tables.Alumni, Alumni{
			AlumniID:  alumniID,
			LastName:  row.LastName,
			FirstName: row.FirstName,
			BatchYear: row.BatchYear,
		})
		tables.Links = append(tables.Links, AlumniCampus{
			AlumniID: alumniID,
			CampusID: campusID,
		})
	}

	return tables
}

// Denormalize joins tables back into records using the snake_case header
// spelling. Links pointing at unknown alumni or campus rows are skipped.
func Denormalize(t Tables) []RawRecord {
	alumni := make(map[int]Alumni, len(t.Alumni))
	for _, a := range t.Alumni {
		alumni[a.AlumniID] = a
	}
	campuses := make(map[int]string, len(t.Campuses))
	for _, c := range t.Campuses {
		campuses[c.CampusID] = c.CampusName
	}

	out := make([]RawRecord, 0, len(t.Links))
	for _, link := range t.Links {
		a, ok := alumni[link.AlumniID]
		if !ok {
			continue
		}
		campus, ok := campuses[link.CampusID]
		if !ok {
			continue
		}
		out = append(out, RawRecord{
			"last_name":  a.LastName,
			"first_name": a.FirstName,
			"campus":     campus,
			"batch_year": a.BatchYear,
		})
	}
	return out
}
