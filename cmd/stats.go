package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gnolang/recast/formatter"
	"github.com/gnolang/recast/internal/stats"
	"github.com/gnolang/recast/recast"
)

var (
	statsKind   string
	statsFormat string
)

var statsCmd = &cobra.Command{
	Use:   "stats [paths...]",
	Short: "Count magic constants and static calls",
	Long: `Counts literal constants and calls of static members across every unit
and prints the merged counts sorted by label.

Example) recast stats --kind invocations --format report trees/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("please provide file or directory paths")
		}
		if err := validateStatsFlags(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		p, _, err := newProcessor()
		if err != nil {
			return fmt.Errorf("initializing collectors: %w", err)
		}

		var s recast.Stats
		err = recast.ProcessPaths(ctx, logger, args, cmd.ErrOrStderr(), func(u recast.Unit) error {
			p.Collect(u, &s)
			return nil
		})
		if err != nil {
			return err
		}
		return writeStats(cmd.OutOrStdout(), p, &s)
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsKind, "kind", "all", "Which counts to print: constants, invocations or all")
	statsCmd.Flags().StringVar(&statsFormat, "format", "tsv", "Output format: tsv or report")
}

func validateStatsFlags() error {
	switch statsKind {
	case "constants", "invocations", "all":
	default:
		return fmt.Errorf("unknown --kind %q", statsKind)
	}
	switch statsFormat {
	case "tsv", "report":
	default:
		return fmt.Errorf("unknown --format %q", statsFormat)
	}
	return nil
}

func writeStats(w io.Writer, p *recast.Processor, s *recast.Stats) error {
	both := statsKind == "all"
	if statsKind == "constants" || both {
		if both {
			fmt.Fprint(w, formatter.UnitHeader("constants"))
		}
		if err := writeCounts(w, s.Constants.Snapshot()); err != nil {
			return err
		}
	}
	if statsKind == "invocations" || both {
		if both {
			fmt.Fprint(w, formatter.UnitHeader("invocations"))
		}
		if err := writeCounts(w, s.Invocations.Snapshot()); err != nil {
			return err
		}
		if statsFormat == "tsv" {
			return stats.WriteProperties(w, p.Properties())
		}
	}
	return nil
}

func writeCounts(w io.Writer, c stats.Counts) error {
	if statsFormat == "report" {
		_, err := io.WriteString(w, stats.Report(c))
		return err
	}
	return stats.WriteTSV(w, c)
}
