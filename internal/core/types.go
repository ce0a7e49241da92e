// Package core provides the alumni CSV cleaning and normalization pipeline.
// This package has no transport dependencies and can be used by any frontend.
package core

import (
	"time"

	"github.com/google/uuid"
)

// Mode selects the output shape of a pipeline run.
type Mode string

const (
	ModeTransform Mode = "transform"
	ModeNormalize Mode = "normalize"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeTransform || m == ModeNormalize
}

// RawRecord is one parsed input line keyed by header name.
// A column missing from the map is absent, which is distinct from present-but-empty.
type RawRecord map[string]string

// Lookup returns the value stored under col and whether the column was present.
func (r RawRecord) Lookup(col string) (string, bool) {
	v, ok := r[col]
	return v, ok
}

// CleanRow is a record that passed validation. All fields are trimmed.
// BatchYear is the trimmed batch exactly as written in the input.
type CleanRow struct {
	LastName  string
	FirstName string
	Campus    string
	BatchYear string
}

// FlatRecord is one row of the transformed flat CSV.
type FlatRecord struct {
	LastName  string
	FirstName string
	Campus    string
	BatchYear string
}

// Alumni is one accepted row in the normalized output.
type Alumni struct {
	AlumniID  int
	LastName  string
	FirstName string
	BatchYear string
}

// Campus is one distinct campus name in the normalized output.
type Campus struct {
	CampusID   int
	CampusName string
}

// AlumniCampus links an alumni row to its campus.
type AlumniCampus struct {
	AlumniID int
	CampusID int
}

// Tables is the normalized decomposition of an accepted row set.
type Tables struct {
	Alumni   []Alumni
	Campuses []Campus
	Links    []AlumniCampus
}

// Artifact is a serialized pipeline output ready to hand to a transport.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Output file names and content types.
const (
	TransformFilename     = "pisay_transformed.csv"
	NormalizeFilename     = "normalized_output.zip"
	AlumniEntryName       = "alumni.csv"
	CampusEntryName       = "campus.csv"
	AlumniCampusEntryName = "alumni_campus.csv"

	ContentTypeCSV = "text/csv"
	ContentTypeZIP = "application/zip"
)

// RunStatus is the terminal state of a recorded pipeline run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is the metadata recorded for one pipeline invocation.
// No alumni data is stored, only counts.
type Run struct {
	ID           uuid.UUID `json:"id"`
	Mode         Mode      `json:"mode"`
	Filename     string    `json:"filename"`
	SizeBytes    int64     `json:"sizeBytes"`
	Encoding     string    `json:"encoding,omitempty"`
	RowsTotal    int       `json:"rowsTotal"`
	RowsAccepted int       `json:"rowsAccepted"`
	RowsDropped  int       `json:"rowsDropped"`
	Status       RunStatus `json:"status"`
	Error        string    `json:"error,omitempty"`
	DurationMS   int64     `json:"durationMs"`
	IPAddress    string    `json:"ipAddress,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
