package cli

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Hmv123/RAG-Application/internal/adapters/driving/tui"
	"github.com/Hmv123/RAG-Application/internal/app"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driving"
	"github.com/Hmv123/RAG-Application/internal/logger"
)

var (
	chatTopK  int
	chatPlain bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Starts a conversation over the indexed documents. Each answer sees the
earlier questions and answers of the session.

On a terminal this opens the full-screen chat:
  Enter    - Send
  Ctrl+R   - Reset the conversation
  Ctrl+S   - Toggle sources
  PgUp/Dn  - Scroll
  Esc      - Quit

With --plain, or when input is not a terminal, questions are read one per
line. Type /reset to clear the conversation and /exit to stop.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", 0, "passages to retrieve per question (0 = configured)")
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "line-based chat without the full-screen UI")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	pipeline, err := openPipeline(ctx, app.Needs{Answer: true}, nil)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	if chatPlain || !isTerminal(cmd) {
		return runLineChat(ctx, cmd, pipeline.Answer)
	}
	return runTUIChat(ctx, pipeline.Answer)
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runTUIChat(ctx context.Context, answers driving.AnswerService) error {
	history, err := tui.Run(ctx, &tui.Ports{Answer: answers, TopK: chatTopK})
	if err != nil {
		return err
	}
	logger.Debug("chat ended after %d messages", len(history))
	return nil
}

// runLineChat reads one question per line until EOF or /exit. The session
// owns the history; the answering service only ever sees a snapshot.
func runLineChat(ctx context.Context, cmd *cobra.Command, answers driving.AnswerService) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var history domain.ConversationHistory
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			history = nil
			cmd.Println("Conversation cleared.")
			continue
		}

		answer, next, err := answers.Answer(ctx, line, history, chatTopK)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			cmd.Printf("error: %v\n", err)
			continue
		}
		history = next
		cmd.Println(answer)
		cmd.Println()
	}
}
