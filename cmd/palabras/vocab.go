package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/service/practice"
	"github.com/palabras/palabras-api/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newVocabCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Manage vocabulary items",
	}
	cmd.AddCommand(newVocabAddCmd(opts), newVocabImportCmd(opts), newVocabMissingCmd(opts))
	return cmd
}

func newVocabAddCmd(opts *rootOptions) *cobra.Command {
	var input practice.VocabularyInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one vocabulary item",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.openRuntime(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			item, err := rt.service.AddVocabulary(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %q (%s)\n", item.LearningText, item.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.LearningText, "learning", "", "term in the language being learned")
	cmd.Flags().StringVar(&input.ReferenceText, "reference", "", "translation in the known language; empty requests one later")
	cmd.Flags().StringSliceVar(&input.Alternatives, "alt", nil, "additional accepted answers")
	cmd.Flags().StringVar(&input.Hint, "hint", "", "hint shown with the prompt")
	cmd.Flags().StringVar(&input.PartOfSpeech, "pos", "", "part of speech")
	cmd.Flags().StringVar(&input.KnownLangCode, "known-lang", "", "language tag of the reference text")
	cmd.Flags().StringVar(&input.LearningLangCode, "learning-lang", "", "language tag of the learning text")
	_ = cmd.MarkFlagRequired("learning")
	return cmd
}

func newVocabImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Add vocabulary items from a YAML list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			inputs, err := decodeVocabulary(f)
			if err != nil {
				return err
			}

			rt, err := opts.openRuntime(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			added, skipped, err := importVocabulary(cmd.Context(), rt.service, inputs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d items, %d already present\n", added, skipped)
			return nil
		},
	}
}

func newVocabMissingCmd(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "missing",
		Short: "List vocabulary items that have no reference translation",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.openRuntime(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			items, err := rt.service.ListUntranslated(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeMissing(cmd.OutOrStdout(), items, output)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of items to list")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	return cmd
}

// missingEntry is one untranslated item as printed by vocab missing.
type missingEntry struct {
	ID           uuid.UUID `json:"id" yaml:"id"`
	Learning     string    `json:"learning" yaml:"learning"`
	LearningLang string    `json:"learning_lang,omitempty" yaml:"learning_lang,omitempty"`
	KnownLang    string    `json:"known_lang,omitempty" yaml:"known_lang,omitempty"`
}

// writeMissing renders untranslated items in the requested format.
func writeMissing(w io.Writer, items []*domain.VocabularyItem, format string) error {
	entries := make([]missingEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, missingEntry{
			ID:           item.ID,
			Learning:     item.LearningText,
			LearningLang: item.LearningLangCode,
			KnownLang:    item.KnownLangCode,
		})
	}

	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case outputText, "":
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, "every item has a reference translation")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tLEARNING\tLANG")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Learning, e.LearningLang)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// vocabularyEntry is one item of an import file.
type vocabularyEntry struct {
	Learning     string   `yaml:"learning"`
	Reference    string   `yaml:"reference"`
	Alternatives []string `yaml:"alternatives"`
	Hint         string   `yaml:"hint"`
	PartOfSpeech string   `yaml:"pos"`
	KnownLang    string   `yaml:"known_lang"`
	LearningLang string   `yaml:"learning_lang"`
}

// decodeVocabulary parses a YAML sequence of vocabulary entries.
func decodeVocabulary(r io.Reader) ([]practice.VocabularyInput, error) {
	var entries []vocabularyEntry
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse vocabulary file: %w", err)
	}

	inputs := make([]practice.VocabularyInput, 0, len(entries))
	for i, e := range entries {
		if e.Learning == "" {
			return nil, fmt.Errorf("entry %d: learning text is required", i+1)
		}
		inputs = append(inputs, practice.VocabularyInput{
			LearningText:     e.Learning,
			ReferenceText:    e.Reference,
			Alternatives:     e.Alternatives,
			Hint:             e.Hint,
			PartOfSpeech:     e.PartOfSpeech,
			KnownLangCode:    e.KnownLang,
			LearningLangCode: e.LearningLang,
		})
	}
	return inputs, nil
}

// importVocabulary adds every input, skipping duplicates of existing items.
func importVocabulary(
	ctx context.Context,
	svc practice.Service,
	inputs []practice.VocabularyInput,
) (added, skipped int, err error) {
	for _, input := range inputs {
		if _, err := svc.AddVocabulary(ctx, input); err != nil {
			if store.IsDuplicateError(err) {
				skipped++
				continue
			}
			return added, skipped, fmt.Errorf("failed to add %q: %w", input.LearningText, err)
		}
		added++
	}
	return added, skipped, nil
}
