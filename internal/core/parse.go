package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseCSV decodes data and parses it into records keyed by the header row.
//
// The first line is the header. Header cells are trimmed and the first
// occurrence of a duplicated name wins. Rows shorter than the header leave the
// missing columns absent; extra cells are ignored. An input with no header
// line returns ErrEmptyFile.
func ParseCSV(data []byte) ([]RawRecord, string, error) {
	decoded, enc, err := DecodeInput(data)
	if err != nil {
		return nil, "", err
	}

	records, err := ParseCSVReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, enc, err
	}
	return records, enc, nil
}

// ParseCSVReader parses already-decoded UTF-8 CSV text from r.
func ParseCSVReader(r io.Reader) ([]RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, csvError(err)
	}

	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if seen[h] {
			// Later duplicates are skipped
			continue
		}
		seen[h] = true
		columns[i] = h
	}

	var records []RawRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}

		rec := make(RawRecord, len(columns))
		for i, col := range columns {
			if col == "" || i >= len(row) {
				continue
			}
			rec[col] = row[i]
		}
		records = append(records, rec)
	}

	return records, nil
}

// csvError wraps a reader error with ErrInvalidCSV, keeping the line number.
func csvError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return fmt.Errorf("%w: line %d: %v", ErrInvalidCSV, perr.Line, perr.Err)
	}
	return fmt.Errorf("%w: %v", ErrInvalidCSV, err)
}
