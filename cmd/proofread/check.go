package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/youngsunson/updatev2/common/llm"
	"github.com/youngsunson/updatev2/internal/document"
	"github.com/youngsunson/updatev2/internal/model"
	"github.com/youngsunson/updatev2/internal/proofread"
)

var (
	checkTone      string
	checkRegister  string
	checkSelection string
	checkFix       bool
	checkJSON      bool
)

var checkCmd = &cobra.Command{
	Use:   "check <file|->",
	Short: "Check a Bengali document",
	Long: `Check a Bengali document and print the suggestions by category.

Tone and register default to the saved settings. With --fix the first
spelling candidate of every finding is applied and the file is rewritten;
reading from stdin prints the fixed text instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if checkJSON {
			color.NoColor = true
		}

		path := args[0]
		body, err := readInput(path)
		if err != nil {
			return err
		}

		_, live, err := openSettings(ctx)
		if err != nil {
			return err
		}

		task := live.Current().Task()
		if cmd.Flags().Changed("tone") {
			task.Tone = model.Tone(checkTone)
		}
		if cmd.Flags().Changed("register") {
			task.Register = model.Register(checkRegister)
		}

		analyzer, err := llm.New(llm.Config{
			BaseURL:        cfg.Analysis.BaseURL,
			Model:          cfg.Analysis.Model,
			MaxTokens:      cfg.Analysis.MaxTokens,
			ResponseFormat: cfg.Analysis.ResponseFormat,
			Temperature:    llm.Temp(cfg.Analysis.Temperature),
		})
		if err != nil {
			return err
		}

		doc := document.NewMemory(body)
		if checkSelection != "" && !doc.SelectText(checkSelection) {
			return fmt.Errorf("selection %q not found in %s", checkSelection, path)
		}

		store := proofread.NewStore()
		progress := color.New(color.Faint).FprintfFunc()
		orchestrator := proofread.NewOrchestrator(proofread.OrchestratorConfig{
			Credentials: live,
			OnState: func(s proofread.State) {
				if !checkJSON && s != proofread.StateIdle {
					progress(os.Stderr, "… %s\n", stateLabel(s))
				}
			},
		}, doc, analyzer, store)

		result, err := orchestrator.Run(ctx, task)
		if err != nil {
			if notice := proofread.Notice(err); notice != "" {
				color.New(color.FgRed).Fprintln(os.Stderr, notice)
			}
			return err
		}

		fixed := 0
		if checkFix {
			applier := proofread.NewApplier(doc, store)
			for _, s := range result.Suggestions.Spelling {
				if len(s.Candidates) == 0 {
					continue
				}
				ok, err := applier.Apply(ctx, s.SubjectText, s.Candidates[0])
				if errors.Is(err, proofread.ErrMutationNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				if ok {
					fixed++
				}
			}
			if path == "-" {
				return writeOutput(path, doc.Text())
			}
			if err := writeOutput(path, doc.Text()); err != nil {
				return err
			}
		}

		if checkJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		render(os.Stdout, result)
		if checkFix {
			color.New(color.FgGreen).Fprintf(os.Stderr, "%d spelling fixes applied\n", fixed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkTone, "tone", "", "Tone to suggest conversions for (formal, informal, professional, friendly, respectful, persuasive, neutral, academic)")
	checkCmd.Flags().StringVar(&checkRegister, "register", "", "Register to convert to (sadhu, cholito, none)")
	checkCmd.Flags().StringVar(&checkSelection, "selection", "", "Only check this passage of the document")
	checkCmd.Flags().BoolVar(&checkFix, "fix", false, "Apply the first spelling candidate of every finding")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output the run result as JSON")
}

func readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func writeOutput(path, text string) error {
	if path == "-" {
		_, err := fmt.Fprint(os.Stdout, text)
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func stateLabel(s proofread.State) string {
	switch s {
	case proofread.StateExtracting:
		return "reading document"
	case proofread.StateRunningCorrectness:
		return "checking spelling and punctuation"
	case proofread.StateRunningTone:
		return "checking tone"
	case proofread.StateRunningStyle:
		return "checking register"
	case proofread.StateRunningContentSummary:
		return "summarising content"
	default:
		return string(s)
	}
}
