// Package core provides the alumni CSV cleaning and normalization pipeline.
//
// This package is the heart of the service, containing all domain logic
// independent of any UI or transport layer. It is used by the web handlers,
// the alumnictl CLI and tests without modification.
//
// # Pipeline
//
// Every run has the same shape:
//
//  1. [DecodeInput] strips byte order marks and converts UTF-16 or
//     Windows-1252 input to UTF-8
//  2. [ParseCSV] turns the text into header-keyed [RawRecord] values
//  3. [RowValidator] accepts or drops each record, trimming every field
//  4. The accepted rows are shaped either by a [Transformer] (flat CSV) or
//     by [Normalize] (alumni, campus and alumni_campus tables)
//  5. The result is serialized to CSV, and for normalize packed into a ZIP
//
// Rows that fail validation are dropped silently from the output. The
// [Summary] returned alongside the artifact counts them by [RejectReason].
//
// # Batch Year
//
// A batch year must fall between [MinBatchYear] and the current year. The
// current year is always passed in by the caller, so a run is reproducible
// for a fixed input and year.
//
// # Campus Aliases
//
// [CampusAliases] is an immutable mapping from spelling variants ("Pisay
// Main") to canonical campus codes ("MAIN"). Remapping is only applied by the
// flat transform and only when enabled. The normalize path deduplicates on the
// exact trimmed name.
//
// # Error Handling
//
// Structural failures are returned as wrapped errors built on the sentinels
// in this package ([ErrEmptyFile], [ErrInvalidCSV], ...). [MapError] turns
// any error into a [UserMessage] with a support code:
//
//   - FILE001-FILE005: File errors (size, format, encoding, missing, empty)
//   - UPL002-UPL005: Run errors (busy, cancelled, timeout)
//   - PROC000: Anything else
package core
