package core

// validation.go decides which parsed records enter the output.
//
// A record is accepted when:
//  1. last name, first name, campus and batch are all present and non-empty
//     after trimming (either header spelling is accepted, see fields.go)
//  2. batch parses as a decimal integer
//  3. MinBatchYear <= batch <= current year
//
// Rejected records are dropped without an error. The reason is still
// returned so callers can count drops.

import "strconv"

// MinBatchYear is the earliest accepted batch year.
const MinBatchYear = 1964

// RejectReason explains why a record was dropped.
type RejectReason string

const (
	RejectMissingField    RejectReason = "missing_field"
	RejectInvalidBatch    RejectReason = "invalid_batch"
	RejectBatchOutOfRange RejectReason = "batch_out_of_range"
)

// RowValidator checks and cleans raw records for a fixed current year.
type RowValidator struct {
	currentYear int
	minYear     int
}

// NewRowValidator creates a validator accepting batches from minYear up to
// and including currentYear. A minYear <= 0 uses MinBatchYear.
func NewRowValidator(currentYear, minYear int) *RowValidator {
	if minYear <= 0 {
		minYear = MinBatchYear
	}
	return &RowValidator{
		currentYear: currentYear,
		minYear:     minYear,
	}
}

// Clean validates rec and returns the trimmed row.
// ok is false when the record must be dropped; reason says why.
func (v *RowValidator) Clean(rec RawRecord) (row CleanRow, reason RejectReason, ok bool) {
	row = CleanRow{
		LastName:  ResolveField(rec, LastNameColumns...),
		FirstName: ResolveField(rec, FirstNameColumns...),
		Campus:    ResolveField(rec, CampusColumns...),
	}
	batch := ResolveField(rec, BatchColumns...)

	if row.LastName == "" || row.FirstName == "" || row.Campus == "" || batch == "" {
		return CleanRow{}, RejectMissingField, false
	}

	year, err := strconv.Atoi(batch)
	if err != nil {
		return CleanRow{}, RejectInvalidBatch, false
	}
	if year < v.minYear || year > v.currentYear {
		return CleanRow{}, RejectBatchOutOfRange, false
	}

	row.BatchYear = batch
	return row, "", true
}

// Summary counts the outcome of validating a record set.
type Summary struct {
	Total    int                  `json:"total"`
	Accepted int                  `json:"accepted"`
	Dropped  map[RejectReason]int `json:"dropped"`
}

// DroppedCount returns the number of rejected records across all reasons.
func (s Summary) DroppedCount() int {
	n := 0
	for _, c := range s.Dropped {
		n += c
	}
	return n
}

// CleanAll validates recs in order and returns the accepted rows.
func (v *RowValidator) CleanAll(recs []RawRecord) ([]CleanRow, Summary) {
	summary := Summary{
		Total:   len(recs),
		Dropped: make(map[RejectReason]int),
	}

	rows := make([]CleanRow, 0, len(recs))
	for _, rec := range recs {
		row, reason, ok := v.Clean(rec)
		if !ok {
			summary.Dropped[reason]++
			continue
		}
		rows = append(rows, row)
	}
	summary.Accepted = len(rows)

	return rows, summary
}
