// Command alumnictl runs the alumni CSV pipeline on local files.
//
//	alumnictl transform -i alumni.csv -o clean.csv
//	alumnictl normalize -i alumni.csv            # writes normalized_output.zip
//	alumnictl denormalize -i normalized_output.zip -o flat.csv
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/alumnicsv/internal/core"
	"github.com/JonMunkholm/alumnicsv/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", errorMessage(err))
		os.Exit(1)
	}
}

// errorMessage renders err for the terminal. Cataloged errors lead with the
// user message, code and suggested action.
func errorMessage(err error) string {
	if core.IsUserFacing(err) {
		return fmt.Sprintf("%s\n  %v", core.FormatUserError(err), err)
	}
	return err.Error()
}

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "alumnictl",
		Short:         "Clean and normalize alumni CSV exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logLevel, "text")
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	cmd.AddCommand(
		newConvertCmd(modeTransform),
		newConvertCmd(modeNormalize),
		newDenormalizeCmd(),
	)
	return cmd
}
