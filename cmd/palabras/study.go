package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/service/practice"
	"github.com/spf13/cobra"
)

// quitCommand ends a terminal session early.
const quitCommand = ":q"

func newStudyCmd(opts *rootOptions) *cobra.Command {
	var (
		code  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "study",
		Short: "Run an interactive study session in the terminal",
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

			_, err = runStudySession(cmd.Context(), rt.service, learner.ID, limit, cmd.InOrStdin(), cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "learner code")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of prompts")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

// sessionSummary counts what happened in one terminal session.
type sessionSummary struct {
	Asked    int
	Correct  int
	Skipped  int
	Promoted int
}

// runStudySession asks each scheduled prompt on out, grades the lines read
// from in and prints the verdicts. It stops early on EOF or ":q".
func runStudySession(
	ctx context.Context,
	svc practice.Service,
	learnerID uuid.UUID,
	limit int,
	in io.Reader,
	out io.Writer,
) (sessionSummary, error) {
	var summary sessionSummary

	entries, err := svc.GetStudyList(ctx, learnerID, limit)
	if err != nil {
		return summary, fmt.Errorf("failed to build study list: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "Nothing to study right now.")
		return summary, nil
	}

	scanner := bufio.NewScanner(in)
	for i, entry := range entries {
		fmt.Fprintf(out, "[%d/%d] %s", i+1, len(entries), entry.Prompt)
		if entry.PartOfSpeech != "" {
			fmt.Fprintf(out, " (%s)", entry.PartOfSpeech)
		}
		if entry.Hint != "" {
			fmt.Fprintf(out, " hint: %s", entry.Hint)
		}
		fmt.Fprint(out, "\n> ")

		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == quitCommand {
			break
		}

		recordID := entry.MasteryRecordID
		verdict, err := svc.CheckResponse(ctx, learnerID, practice.ResponseSubmission{
			VocabularyID:    entry.VocabularyID,
			MasteryRecordID: &recordID,
			Entered:         answer,
		})
		if errors.Is(err, domain.ErrUngradableItem) {
			summary.Skipped++
			fmt.Fprintln(out, "  no translation on file yet, skipped")
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("failed to grade response: %w", err)
		}

		summary.Asked++
		if verdict.Correct {
			summary.Correct++
			fmt.Fprintf(out, "  correct (%.0f%%)\n", verdict.PercentageCorrect*100)
		} else {
			fmt.Fprintf(out, "  wrong, expected %q (%.0f%%)\n", verdict.Expected, verdict.PercentageCorrect*100)
		}
		if verdict.Promoted {
			summary.Promoted++
			fmt.Fprintln(out, "  now well known")
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("failed to read answer: %w", err)
	}

	fmt.Fprintf(out, "Session complete: %d/%d correct", summary.Correct, summary.Asked)
	if summary.Skipped > 0 {
		fmt.Fprintf(out, ", %d skipped", summary.Skipped)
	}
	fmt.Fprintln(out)
	return summary, nil
}
