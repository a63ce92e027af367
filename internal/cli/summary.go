// summary.go implements "interviewctl summary" for stored sessions.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/interviewcoach/backend/internal/infrastructure/config"
	"github.com/interviewcoach/backend/internal/service"
)

var summaryUser string

var summaryCmd = &cobra.Command{
	Use:   "summary <session-id>",
	Short: "Print the evidence and coaching report of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := openService(config.LoadShared())
		if err != nil {
			return err
		}
		defer closeDB()

		return printSummary(cmd.Context(), svc, cmd.OutOrStdout(), summaryUser, args[0])
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryUser, "user", "local", "User id that owns the session")
}

func printSummary(ctx context.Context, svc *service.InterviewService, out io.Writer, userID, sessionID string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	summary, err := svc.GetSummary(ctx, userID, sessionID)
	if err != nil {
		return fmt.Errorf("loading summary: %w", err)
	}

	fmt.Fprintf(out, "== Session %s (%s, %s) ==\n", summary.Session.ID, summary.Session.Mode, summary.Session.Status)

	total := 0
	for _, e := range summary.Evaluations {
		total += e.Score
		fmt.Fprintf(out, "Turn %d: %d/5  %s\n", e.TurnIndex, e.Score, e.Feedback)
	}
	if n := len(summary.Evaluations); n > 0 {
		fmt.Fprintf(out, "Average: %.1f/5 over %d answers\n", float64(total)/float64(n), n)
	}
	fmt.Fprintln(out)

	switch {
	case summary.CoachingReport != "":
		fmt.Fprintln(out, summary.CoachingReport)
	case summary.CoachingError != "":
		fmt.Fprintf(out, "Coaching report unavailable: %s\n", summary.CoachingError)
	default:
		fmt.Fprintln(out, "Session still in progress; the coaching report is written once it ends.")
	}
	return nil
}
