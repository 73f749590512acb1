package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mentalmate/mindbot/backend/internal/analysis/crisis"
	analysis "github.com/mentalmate/mindbot/backend/internal/analysis/emotion"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <text>",
		Short: "Run the crisis detector and emotion heuristics on a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if phrase, ok := crisis.Match(text); ok {
				fmt.Fprintf(out, "crisis:  yes (%q)\n", phrase)
			} else {
				fmt.Fprintln(out, "crisis:  no")
			}

			decision := analysis.Analyze(text)
			fmt.Fprintf(out, "emotion: %s\n", decision.Emotion)
			fmt.Fprintf(out, "intent:  %s\n", decision.Intent)
			fmt.Fprintf(out, "score:   %d\n", decision.Score)
			for _, s := range analysis.Suggestions(decision.Emotion) {
				fmt.Fprintf(out, "suggest: %s\n", s)
			}
			return nil
		},
	}
}
