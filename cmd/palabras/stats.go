package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/palabras/palabras-api/internal/service/practice"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var (
		code   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a learner's aggregate progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.openRuntime(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			learner, err := rt.service.LearnerByCode(cmd.Context(), code)
			if err != nil {
				return fmt.Errorf("unknown learner %q: %w", code, err)
			}

			stats, err := rt.service.GetLearnerStats(cmd.Context(), learner.ID)
			if err != nil {
				return err
			}
			return writeStats(cmd.OutOrStdout(), stats, output)
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "learner code")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

// writeStats renders learner statistics in the requested format.
func writeStats(w io.Writer, stats *practice.LearnerStats, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(stats); err != nil {
			return err
		}
		return enc.Close()
	case outputText, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Learner:\t%s\n", stats.Code)
		fmt.Fprintf(tw, "Well known:\t%d\n", stats.NumKnown)
		fmt.Fprintf(tw, "Correct:\t%d\n", stats.NumCorrect)
		fmt.Fprintf(tw, "Incorrect:\t%d\n", stats.NumIncorrect)
		fmt.Fprintf(tw, "Accuracy:\t%.1f%%\n", stats.TotalPercentage*100)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
