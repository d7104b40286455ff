package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/positron-labs/positron/internal/core/domain"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage chat sessions",
	Long:  `List, replay, or delete chat sessions.`,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Print a session's messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Delete a session and its messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

func init() {
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionList(cmd *cobra.Command, _ []string) error {
	if err := initServices(serviceNeeds{}); err != nil {
		return err
	}
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	sessions, err := sessionService.ListSessions(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		cmd.Println("No sessions yet.")
		return nil
	}

	cmd.Println("Sessions:")
	cmd.Println()
	for i := range sessions {
		cmd.Printf("  %s\n", sessions[i].ID)
		cmd.Printf("    Title: %s\n", sessions[i].Title)
		cmd.Printf("    Last activity: %s\n", sessions[i].UpdatedAt.Format("2006-01-02 15:04"))
		cmd.Println()
	}

	cmd.Printf("Total: %d sessions\n", len(sessions))
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	if err := initServices(serviceNeeds{}); err != nil {
		return err
	}
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	ctx := context.Background()
	session, err := sessionService.GetSession(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	messages, err := sessionService.ListMessages(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	cmd.Printf("%s (%s)\n", session.Title, session.ID)
	cmd.Println()
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleUser:
			cmd.Printf("> %s\n", msg.Content)
		default:
			cmd.Println(msg.Content)
			printCitations(cmd, msg.Citations)
		}
		cmd.Println()
	}
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	if err := initServices(serviceNeeds{}); err != nil {
		return err
	}
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	if err := sessionService.DeleteSession(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	cmd.Printf("Deleted session %s\n", args[0])
	return nil
}
