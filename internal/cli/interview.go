package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"codepulse/internal/chat"
	"codepulse/internal/errors"

	"github.com/spf13/cobra"
)

var interviewCmd = &cobra.Command{
	Use:   "interview [job-role]",
	Short: "Run an interactive mock interview session",
	Long: `Run an interactive mock interview session for the given job role. The AI
plays the interviewer and streams its replies as they are generated. Type
'retry' to resend the last message after a failure, and 'exit' or 'quit'
to end the session.`,
	Args: cobra.ExactArgs(1),
	RunE: runInterview,
}

func runInterview(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())
	jobRole := args[0]

	service, err := buildPrepService(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	session, err := service.NewChatSession(cmd.Context(), jobRole)
	if err != nil {
		return fmt.Errorf("failed to open chat session: %w", err)
	}

	fmt.Printf("Mock interview for %q started. Type 'exit' to end the session.\n\n", jobRole)

	onFragment := func(fragment string) {
		fmt.Print(fragment)
	}

	fmt.Print("interviewer> ")
	if err := session.Start(cmd.Context(), onFragment); err != nil {
		userErr := errors.Classify(err)
		fmt.Printf("\n[%s] %s (type 'retry' to resend)\n", userErr.Category, userErr.Message)
	} else {
		fmt.Print("\n\n")
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "exit", "quit":
			fmt.Println("Session ended.")
			return nil
		case "":
			continue
		case "retry":
			if session.State() != chat.StateError {
				fmt.Println("Nothing to retry.")
				continue
			}
			fmt.Print("\ninterviewer> ")
			err = session.Retry(cmd.Context(), onFragment)
		default:
			fmt.Print("\ninterviewer> ")
			err = session.Send(cmd.Context(), line, onFragment)
		}

		if err != nil {
			userErr := errors.Classify(err)
			fmt.Printf("\n[%s] %s (type 'retry' to resend)\n\n", userErr.Category, userErr.Message)
			logger.Debug("Chat send failed",
				"session_id", session.ID(),
				"category", string(userErr.Category))
			continue
		}
		fmt.Print("\n\n")
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}
