package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/alumnicsv/internal/core"
)

func newDenormalizeCmd() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "denormalize",
		Short: "Join a normalized ZIP back into a flat CSV",
		Long: `Reads an archive written by "normalize" and writes one row per
alumni_campus link with the columns last_name, first_name, campus, batch_year.
The result can be fed to "normalize" again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, input)
			if err != nil {
				return err
			}

			tables, err := core.ReadNormalizedArchive(data)
			if err != nil {
				return fmt.Errorf("denormalize: %w", err)
			}

			recs := core.Denormalize(tables)
			flat := make([]core.FlatRecord, len(recs))
			for i, rec := range recs {
				flat[i] = core.FlatRecord{
					LastName:  rec["last_name"],
					FirstName: rec["first_name"],
					Campus:    rec["campus"],
					BatchYear: rec["batch_year"],
				}
			}

			body, err := core.EncodeCSV(core.FlatTable(flat))
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, body)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Normalized ZIP archive, or - for stdin (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output CSV file, or - for stdout")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
