package cli

import (
	"bufio"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driving"
)

var (
	chatSessionID string
	chatNoContext bool
	chatTopK      int
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with your documents",
	Long: `Asks a question answered from your ingested documents.

With a message argument, sends a single turn and prints the reply with
its citations. Without arguments, starts an interactive conversation;
type "exit" or press Ctrl-D to leave.

Use --session to continue an earlier conversation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSessionID, "session", "s", "", "continue an existing session")
	chatCmd.Flags().BoolVar(&chatNoContext, "no-context", false, "answer without document retrieval")
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", 0, "number of context chunks to retrieve")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := initServices(serviceNeeds{embedding: true, llm: true}); err != nil {
		return err
	}
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	if len(args) == 1 {
		return chatOnce(cmd, args[0])
	}
	return chatInteractive(cmd)
}

func chatOnce(cmd *cobra.Command, message string) error {
	resp, err := sendTurn(cmd, message)
	if err != nil {
		return err
	}
	chatSessionID = resp.SessionID
	return nil
}

func chatInteractive(cmd *cobra.Command) error {
	cmd.Println("Chatting with your documents. Type \"exit\" to leave.")
	cmd.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			return nil
		}

		resp, err := sendTurn(cmd, message)
		if err != nil {
			if errors.Is(err, domain.ErrProviderUnavailable) {
				return err
			}
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}

		// Later turns continue the session the first turn created.
		chatSessionID = resp.SessionID
	}
}

func sendTurn(cmd *cobra.Command, message string) (*driving.ChatResponse, error) {
	resp, err := chatService.Chat(context.Background(), driving.ChatRequest{
		Message:    message,
		SessionID:  chatSessionID,
		UseContext: !chatNoContext,
		TopK:       chatTopK,
	})
	if err != nil {
		return nil, err
	}

	cmd.Println()
	cmd.Println(resp.Reply)
	printCitations(cmd, resp.Citations)
	cmd.Println()

	return resp, nil
}

func printCitations(cmd *cobra.Command, citations []domain.Citation) {
	if len(citations) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Sources:")
	for _, citation := range citations {
		if citation.Page > 0 {
			cmd.Printf("  - %s, p.%d\n", citation.Source, citation.Page)
		} else {
			cmd.Printf("  - %s\n", citation.Source)
		}
	}
}
