package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"jobquest/internal/config"
	"jobquest/internal/questionnaire"
	"jobquest/internal/seed"
	"jobquest/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assessment HTTP server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the authored profile templates and job bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		res, err := seed.Run(store)
		if err != nil {
			return err
		}

		printSuccess("Seeded %d profile templates and %d job postings", res.Templates, res.Jobs)
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

// --- client commands against a running server ---

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the questionnaire questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/questionnaire")
		if err != nil {
			return err
		}

		var body struct {
			Questions []questionnaire.Question `json:"questions"`
		}
		if err := decodeJSON(resp, &body); err != nil {
			return err
		}

		for _, q := range body.Questions {
			fmt.Printf("%s %s\n", colorize(colorBold, fmt.Sprintf("q%d:", q.ID)), q.Text)
			for _, opt := range q.Options {
				fmt.Printf("    %s. %s\n", opt.Letter, opt.Label)
			}
			if q.FreeResponse {
				fmt.Println("    (free text, optional)")
			}
		}
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit questionnaire answers and print the assessment",
	Long: `Submit questionnaire answers and print the assessment.

Example:
  jobquest submit --q1 A --q2 B --q3 C --q4 A --q5 "I prefer remote work"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		answers := questionnaire.Answers{}
		answers.Q1, _ = cmd.Flags().GetString("q1")
		answers.Q2, _ = cmd.Flags().GetString("q2")
		answers.Q3, _ = cmd.Flags().GetString("q3")
		answers.Q4, _ = cmd.Flags().GetString("q4")
		answers.Q5, _ = cmd.Flags().GetString("q5")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/submit_questionnaire", answers)
		if err != nil {
			return err
		}

		var result map[string]any
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if id, ok := result["assessment_id"].(string); ok {
			printSuccess("Assessment %s complete", id)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

var resultCmd = &cobra.Command{
	Use:   "result <assessment-id>",
	Short: "Fetch a stored assessment by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/results/"+url.PathEscape(args[0]))
		if err != nil {
			return err
		}

		var result map[string]any
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	submitCmd.Flags().String("q1", "", "answer letter for question 1 (A or B)")
	submitCmd.Flags().String("q2", "", "answer letter for question 2 (A or B)")
	submitCmd.Flags().String("q3", "", "answer letter for question 3 (A, B or C)")
	submitCmd.Flags().String("q4", "", "answer letter for question 4 (A, B or C)")
	submitCmd.Flags().String("q5", "", "optional free-text answer")
}
