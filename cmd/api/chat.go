package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mentalmate/mindbot/backend/internal/model/chat"
	"github.com/mentalmate/mindbot/backend/pkg/logger"
)

const chatHelp = `commands: /mood <1-10>  /takeover <name>  /leave  /end  /quit`

func newChatCmd() *cobra.Command {
	var (
		personaID string
		userName  string
		language  string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to MindBot from the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.Nop()
			if verbose {
				var err error
				if log, err = logger.New("dev", "debug"); err != nil {
					return err
				}
			}

			cfg, err := loadConfig(log)
			if err != nil {
				return err
			}
			// The terminal session always uses in-process stores.
			cfg.Redis.URL = ""

			a, err := buildApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			return runChat(cmd, a, userName, personaID, language)
		},
	}

	cmd.Flags().StringVar(&personaID, "persona", "", "persona id (default persona when empty)")
	cmd.Flags().StringVar(&userName, "name", "Guest", "display name")
	cmd.Flags().StringVar(&language, "lang", "", "reply language: en, sw or fr")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	return cmd
}

// transcript prints the session log incrementally.
type transcript struct {
	out  io.Writer
	seen int
}

func (t *transcript) show(session chat.Session) {
	for _, m := range session.Messages[min(t.seen, len(session.Messages)):] {
		fmt.Fprintf(t.out, "[%s] %s\n", m.Role, m.Content)
	}
	t.seen = len(session.Messages)
}

func runChat(cmd *cobra.Command, a *app, userName, personaID, language string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	const userID = "terminal"

	session, err := a.pipeline.StartSession(ctx, userID, userName, personaID, language)
	if err != nil {
		return err
	}
	if _, err := a.profiles.EnsureProfile(ctx, userID, userName, session.PersonaID); err != nil {
		return err
	}

	fmt.Fprintln(out, chatHelp)
	tr := &transcript{out: out}
	tr.show(session)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := runChatCommand(cmd, a, session.ID, userID, line)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
			if current, err := a.sessions.GetSession(ctx, session.ID); err == nil {
				tr.show(current)
			}
			if done {
				return nil
			}
			continue
		}

		result, err := a.pipeline.SubmitUserMessage(ctx, session.ID, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		tr.show(result.Session)
		if result.Suppressed {
			fmt.Fprintln(out, "(a support specialist is handling this conversation)")
		}
		for _, h := range result.Hotlines {
			fmt.Fprintf(out, "  %s: %s\n", h.Name, h.Contact)
		}
		if len(result.Suggestions) > 0 {
			fmt.Fprintf(out, "  try: %s\n", strings.Join(result.Suggestions, " | "))
		}
	}
}

func runChatCommand(cmd *cobra.Command, a *app, sessionID, userID, line string) (bool, error) {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	fields := strings.Fields(line)
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch fields[0] {
	case "/quit":
		return true, nil
	case "/end":
		_, err := a.pipeline.EndSession(ctx, sessionID)
		return err == nil, err
	case "/mood":
		mood, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("mood must be a number from 1 to 10")
		}
		if _, err := a.profiles.RecordMood(ctx, userID, mood); err != nil {
			return false, err
		}
	case "/takeover":
		name := arg
		if name == "" {
			name = "Counselor"
		}
		if _, err := a.admin.JoinSession(ctx, sessionID, name); err != nil {
			return false, err
		}
	case "/leave":
		session, err := a.sessions.GetSession(ctx, sessionID)
		if err != nil {
			return false, err
		}
		if _, err := a.admin.LeaveSession(ctx, sessionID, session.AdminName); err != nil {
			return false, err
		}
	default:
		fmt.Fprintln(out, chatHelp)
	}
	return false, nil
}
