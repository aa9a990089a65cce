package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/recast/formatter"
	tt "github.com/gnolang/recast/internal/types"
	"github.com/gnolang/recast/recast"
)

var (
	rewriteJsonOutput bool
	outPath           string
	quiet             bool
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [paths...]",
	Short: "Rewrite syntax tree files and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("please provide file or directory paths")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		p, _, err := newProcessor()
		if err != nil {
			return fmt.Errorf("initializing rewrite engine: %w", err)
		}
		return runRewrite(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), p, args)
	},
}

func init() {
	rewriteCmd.Flags().BoolVar(&rewriteJsonOutput, "json", false, "Output results in JSON format")
	rewriteCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (default stdout)")
	rewriteCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print diagnostics")
}

func runRewrite(ctx context.Context, stdout, stderr io.Writer, p *recast.Processor, paths []string) error {
	var (
		mu      sync.Mutex
		results []recast.Result
	)
	err := recast.ProcessPaths(ctx, logger, paths, stderr, func(u recast.Unit) error {
		r := p.Rewrite(u)
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
		return nil
	})
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		return err
	}
	slices.SortFunc(results, func(a, b recast.Result) int { return strings.Compare(a.Unit, b.Unit) })

	out := stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if rewriteJsonOutput {
		if err := writeJSON(out, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Err != nil {
				continue
			}
			fmt.Fprint(out, formatter.UnitHeader(r.Unit))
			fmt.Fprintln(out, r.Source)
		}
	}

	var failed []string
	for _, r := range results {
		if !quiet {
			fmt.Fprint(stderr, formatter.GenerateFormattedDiagnostics(r.Diagnostics))
		}
		if r.Err != nil {
			failed = append(failed, r.Unit)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("rewrite aborted in %d unit(s): %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

type jsonDiagnostic struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Node     string `json:"node"`
	Message  string `json:"message"`
	Note     string `json:"note,omitempty"`
}

type jsonResult struct {
	Unit        string           `json:"unit"`
	Source      string           `json:"source,omitempty"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
	Error       string           `json:"error,omitempty"`
}

func writeJSON(w io.Writer, results []recast.Result) error {
	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		jr := jsonResult{Unit: r.Unit, Source: r.Source}
		for _, d := range r.Diagnostics {
			jr.Diagnostics = append(jr.Diagnostics, toJSONDiagnostic(d))
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		out = append(out, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func toJSONDiagnostic(d tt.Diagnostic) jsonDiagnostic {
	return jsonDiagnostic{
		Rule:     d.Rule,
		Severity: strings.ToLower(d.Severity.String()),
		Node:     d.Node,
		Message:  d.Message,
		Note:     d.Note,
	}
}
