package core

import (
	"fmt"
	"strings"
	"testing"
)

// ============================================================================
// Input Generation
// ============================================================================

var benchCampuses = []string{"Main Campus", "Diliman", "CVC", "Pisay EVC", "Iloilo", "Davao"}

// generateAlumniCSV builds n data rows. Every tenth row is invalid.
func generateAlumniCSV(n int) []byte {
	var sb strings.Builder
	sb.WriteString("LastName,FirstName,Campus,Batch\n")
	for i := 0; i < n; i++ {
		batch := fmt.Sprintf("%d", 1964+i%60)
		if i%10 == 9 {
			batch = "n/a"
		}
		fmt.Fprintf(&sb, "Last%d,First%d,%s,%s\n", i, i, benchCampuses[i%len(benchCampuses)], batch)
	}
	return []byte(sb.String())
}

// ============================================================================
// Stage Benchmarks
// ============================================================================

func BenchmarkParseCSV(b *testing.B) {
	data := generateAlumniCSV(10000)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := ParseCSV(data); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDecodeInput_Windows1252 covers the slowest decode path.
func BenchmarkDecodeInput_Windows1252(b *testing.B) {
	data := []byte(strings.Repeat("Pe\xf1a,Jos\xe9,Main Campus,2001\n", 5000))

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := DecodeInput(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCleanAll(b *testing.B) {
	recs, _, err := ParseCSV(generateAlumniCSV(10000))
	if err != nil {
		b.Fatal(err)
	}
	v := NewRowValidator(2025, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.CleanAll(recs)
	}
}

func BenchmarkNormalize(b *testing.B) {
	recs, _, err := ParseCSV(generateAlumniCSV(10000))
	if err != nil {
		b.Fatal(err)
	}
	rows, _ := NewRowValidator(2025, 0).CleanAll(recs)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Normalize(rows)
	}
}

// ============================================================================
// End-to-End Benchmarks
// ============================================================================

func BenchmarkPipeline(b *testing.B) {
	data := generateAlumniCSV(10000)

	for _, mode := range []Mode{ModeTransform, ModeNormalize} {
		b.Run(string(mode), func(b *testing.B) {
			p := NewPipeline(PipelineOptions{
				CampusAliases:      DefaultCampusAliases(),
				ApplyCampusAliases: true,
			})

			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := p.Run(mode, data, 2025); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
