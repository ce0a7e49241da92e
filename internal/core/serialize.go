package core

// serialize.go converts pipeline output to CSV text and ZIP archives.
//
// Header rows are always written, so an empty table still produces a valid
// CSV with column names.

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Output column names.
var (
	FlatHeader         = []string{"last_name", "first_name", "campus", "batch_year"}
	AlumniHeader       = []string{"alumni_id", "last_name", "first_name", "batch_year"}
	CampusHeader       = []string{"campus_id", "campus_name"}
	AlumniCampusHeader = []string{"alumni_id", "campus_id"}
)

// Table is a header plus rows of string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// FlatTable lays out transformed records under FlatHeader.
func FlatTable(recs []FlatRecord) Table {
	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = []string{r.LastName, r.FirstName, r.Campus, r.BatchYear}
	}
	return Table{Header: FlatHeader, Rows: rows}
}

// AlumniTable lays out the alumni table.
func (t Tables) AlumniTable() Table {
	rows := make([][]string, len(t.Alumni))
	for i, a := range t.Alumni {
		rows[i] = []string{strconv.Itoa(a.AlumniID), a.LastName, a.FirstName, a.BatchYear}
	}
	return Table{Header: AlumniHeader, Rows: rows}
}

// CampusTable lays out the campus table.
func (t Tables) CampusTable() Table {
	rows := make([][]string, len(t.Campuses))
	for i, c := range t.Campuses {
		rows[i] = []string{strconv.Itoa(c.CampusID), c.CampusName}
	}
	return Table{Header: CampusHeader, Rows: rows}
}

// AlumniCampusTable lays out the junction table.
func (t Tables) AlumniCampusTable() Table {
	rows := make([][]string, len(t.Links))
	for i, l := range t.Links {
		rows[i] = []string{strconv.Itoa(l.AlumniID), strconv.Itoa(l.CampusID)}
	}
	return Table{Header: AlumniCampusHeader, Rows: rows}
}

// WriteCSV writes t as CSV to w.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// EncodeCSV returns t as CSV bytes.
func EncodeCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ZipEntry is one named file inside an archive.
type ZipEntry struct {
	Name string
	Body []byte
}

// PackZIP writes entries, in order, into a deflate-compressed ZIP archive.
func PackZIP(entries []ZipEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range entries {
		fw, err := zw.Create(e.Name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", e.Name, err)
		}
		if _, err := fw.Write(e.Body); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", e.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// TransformArtifact serializes flat records into the transform download.
func TransformArtifact(recs []FlatRecord) (Artifact, error) {
	body, err := EncodeCSV(FlatTable(recs))
	if err != nil {
		return Artifact{}, fmt.Errorf("encode %s: %w", TransformFilename, err)
	}
	return Artifact{
		Filename:    TransformFilename,
		ContentType: ContentTypeCSV,
		Body:        body,
	}, nil
}

// NormalizeArtifact serializes the three tables and packs them into the
// normalize download.
func NormalizeArtifact(t Tables) (Artifact, error) {
	parts := []struct {
		name  string
		table Table
	}{
		{AlumniEntryName, t.AlumniTable()},
		{CampusEntryName, t.CampusTable()},
		{AlumniCampusEntryName, t.AlumniCampusTable()},
	}

	entries := make([]ZipEntry, 0, len(parts))
	for _, p := range parts {
		body, err := EncodeCSV(p.table)
		if err != nil {
			return Artifact{}, fmt.Errorf("encode %s: %w", p.name, err)
		}
		entries = append(entries, ZipEntry{Name: p.name, Body: body})
	}

	archive, err := PackZIP(entries)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Filename:    NormalizeFilename,
		ContentType: ContentTypeZIP,
		Body:        archive,
	}, nil
}

// ReadNormalizedArchive parses an archive produced by NormalizeArtifact back
// into tables.
func ReadNormalizedArchive(data []byte) (Tables, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Tables{}, fmt.Errorf("open archive: %w", err)
	}

	entries := make(map[string][]RawRecord, 3)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return Tables{}, fmt.Errorf("open %s: %w", f.Name, err)
		}
		recs, err := ParseCSVReader(rc)
		rc.Close()
		if err != nil {
			return Tables{}, fmt.Errorf("parse %s: %w", f.Name, err)
		}
		entries[f.Name] = recs
	}

	for _, name := range []string{AlumniEntryName, CampusEntryName, AlumniCampusEntryName} {
		if _, ok := entries[name]; !ok {
			return Tables{}, fmt.Errorf("archive is missing %s", name)
		}
	}

	var t Tables
	for _, rec := range entries[AlumniEntryName] {
		id, err := strconv.Atoi(rec["alumni_id"])
		if err != nil {
			return Tables{}, fmt.Errorf("%s: bad alumni_id %q", AlumniEntryName, rec["alumni_id"])
		}
		t.Alumni = append(t.Alumni, Alumni{
			AlumniID:  id,
			LastName:  rec["last_name"],
			FirstName: rec["first_name"],
			BatchYear: rec["batch_year"],
		})
	}
	for _, rec := range entries[CampusEntryName] {
		id, err := strconv.Atoi(rec["campus_id"])
		if err != nil {
			return Tables{}, fmt.Errorf("%s: bad campus_id %q", CampusEntryName, rec["campus_id"])
		}
		t.Campuses = append(t.Campuses, Campus{CampusID: id, CampusName: rec["campus_name"]})
	}
	for _, rec := range entries[AlumniCampusEntryName] {
		aid, err1 := strconv.Atoi(rec["alumni_id"])
		cid, err2 := strconv.Atoi(rec["campus_id"])
		if err1 != nil || err2 != nil {
			return Tables{}, fmt.Errorf("%s: bad link %q -> %q", AlumniCampusEntryName, rec["alumni_id"], rec["campus_id"])
		}
		t.Links = append(t.Links, AlumniCampus{AlumniID: aid, CampusID: cid})
	}

	return t, nil
}
