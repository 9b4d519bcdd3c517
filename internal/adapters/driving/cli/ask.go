package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Hmv123/RAG-Application/internal/app"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

var (
	askTopK        int
	askShowContext bool
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves the most relevant indexed passages for the question and asks
the configured language model to answer from them.

A provider failure is printed as the answer text rather than returned as
an error, so scripts always receive a reply.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "passages to retrieve (0 = configured)")
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "print the retrieved passages")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	ctx := commandContext(cmd)

	pipeline, err := openPipeline(ctx, app.Needs{Answer: true}, nil)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	turn, err := pipeline.Answer.AnswerTurn(ctx, question, nil, askTopK)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, turn)
	}

	if askShowContext {
		printContext(cmd, turn.Context)
	}
	cmd.Println(turn.Answer)
	return nil
}

type answerView struct {
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	Failed   bool         `json:"failed"`
	Sources  []sourceView `json:"sources,omitempty"`
}

type sourceView struct {
	Document string  `json:"document,omitempty"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

func outputAnswerJSON(cmd *cobra.Command, turn *domain.Turn) error {
	view := answerView{
		Question: turn.Query,
		Answer:   turn.Answer,
		Failed:   turn.Failed(),
	}
	for _, r := range turn.Context {
		view.Sources = append(view.Sources, sourceView{
			Document: r.DocumentName,
			Score:    r.Score,
			Content:  r.Content,
		})
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printContext(cmd *cobra.Command, records []domain.RetrievedRecord) {
	if len(records) == 0 {
		cmd.Println("No context retrieved.")
		cmd.Println()
		return
	}

	cmd.Println("Context:")
	for i, r := range records {
		name := r.DocumentName
		if name == "" {
			name = r.ID
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, name, r.Score)
		cmd.Printf("      %s\n", truncate(r.Content, 200))
	}
	cmd.Println()
}

// truncate shortens s to maxLen runes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
