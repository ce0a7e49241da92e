package core

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeInput(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    string
		wantEnc string
	}{
		{
			name:    "plain utf-8",
			input:   []byte("Campus\nMain"),
			want:    "Campus\nMain",
			wantEnc: EncodingUTF8,
		},
		{
			name:    "utf-8 bom stripped",
			input:   append([]byte{0xEF, 0xBB, 0xBF}, "Campus"...),
			want:    "Campus",
			wantEnc: EncodingUTF8BOM,
		},
		{
			name:    "utf-16 little endian",
			input:   []byte{0xFF, 0xFE, 'O', 0, 'k', 0},
			want:    "Ok",
			wantEnc: EncodingUTF16LE,
		},
		{
			name:    "utf-16 big endian",
			input:   []byte{0xFE, 0xFF, 0, 'O', 0, 'k'},
			want:    "Ok",
			wantEnc: EncodingUTF16BE,
		},
		{
			name:    "windows-1252 enye",
			input:   []byte("Pe\xf1a"),
			want:    "Peña",
			wantEnc: EncodingWindows1252,
		},
		{
			name:    "empty",
			input:   nil,
			want:    "",
			wantEnc: EncodingUTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := DecodeInput(tt.input)
			if err != nil {
				t.Fatalf("DecodeInput() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("DecodeInput() = %q, want %q", got, tt.want)
			}
			if enc != tt.wantEnc {
				t.Errorf("DecodeInput() encoding = %q, want %q", enc, tt.wantEnc)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []RawRecord
	}{
		{
			name:  "header keys records",
			input: "LastName,FirstName,Campus,Batch\nCruz,Ana,Main,2001\n",
			want: []RawRecord{
				{"LastName": "Cruz", "FirstName": "Ana", "Campus": "Main", "Batch": "2001"},
			},
		},
		{
			name:  "header cells trimmed, values kept raw",
			input: " LastName , Batch\n  Cruz  , 2001 \n",
			want: []RawRecord{
				{"LastName": "  Cruz  ", "Batch": " 2001 "},
			},
		},
		{
			name:  "short row leaves columns absent",
			input: "LastName,FirstName,Campus\nCruz\n",
			want: []RawRecord{
				{"LastName": "Cruz"},
			},
		},
		{
			name:  "long row ignores extra cells",
			input: "LastName\nCruz,extra,more\n",
			want: []RawRecord{
				{"LastName": "Cruz"},
			},
		},
		{
			name:  "duplicate header first occurrence wins",
			input: "Campus,Campus\nMain,CVC\n",
			want: []RawRecord{
				{"Campus": "Main"},
			},
		},
		{
			name:  "quoted comma",
			input: "LastName,Campus\n\"Dela Cruz, Jr.\",Main\n",
			want: []RawRecord{
				{"LastName": "Dela Cruz, Jr.", "Campus": "Main"},
			},
		},
		{
			name:  "header only",
			input: "LastName,FirstName\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := ParseCSV([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseCSV() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseCSV() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCSV_BOMHeader(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, "LastName,Batch\nCruz,2001\n"...)

	recs, enc, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if enc != EncodingUTF8BOM {
		t.Errorf("encoding = %q, want %q", enc, EncodingUTF8BOM)
	}
	if _, ok := recs[0].Lookup("LastName"); !ok {
		t.Errorf("BOM leaked into first header: %v", recs[0])
	}
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{"empty input", nil, ErrEmptyFile},
		{"bom only", []byte{0xEF, 0xBB, 0xBF}, ErrEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseCSV(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseCSV() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCSVError_KeepsLineNumber(t *testing.T) {
	err := csvError(&csv.ParseError{StartLine: 4, Line: 4, Column: 2, Err: csv.ErrQuote})

	if !errors.Is(err, ErrInvalidCSV) {
		t.Fatalf("error = %v, want ErrInvalidCSV", err)
	}
	if !strings.Contains(err.Error(), "line 4") {
		t.Errorf("error %q should carry the line number", err)
	}
}
