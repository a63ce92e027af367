// practice.go implements "interviewctl practice", a full session over
// stdin/stdout.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interviewcoach/backend/internal/domain/interview"
	"github.com/interviewcoach/backend/internal/infrastructure/config"
	"github.com/interviewcoach/backend/internal/llm"
	"github.com/interviewcoach/backend/internal/service"
)

var (
	practiceMode      string
	practiceQuestions int
	practiceUser      string
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a mock interview in the terminal",
	Long: `Start a session, ask each question on stdout and read one answer per
line from stdin. Every answer is scored as it comes in; the coaching
report is printed once the last question is answered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := openService(config.LoadShared())
		if err != nil {
			return err
		}
		defer closeDB()

		var count *int
		if cmd.Flags().Changed("questions") {
			count = &practiceQuestions
		}
		return runPractice(cmd.Context(), svc, cmd.InOrStdin(), cmd.OutOrStdout(),
			practiceUser, interview.Mode(practiceMode), count)
	},
}

func init() {
	practiceCmd.Flags().StringVar(&practiceMode, "mode", string(interview.ModeTechnical), "Interview mode: technical or behavioral")
	practiceCmd.Flags().IntVar(&practiceQuestions, "questions", 0, "Number of questions (default from DEFAULT_NUM_QUESTIONS)")
	practiceCmd.Flags().StringVar(&practiceUser, "user", "local", "User id that owns the session")
}

func runPractice(ctx context.Context, svc *service.InterviewService, in io.Reader, out io.Writer, userID string, mode interview.Mode, count *int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	start, err := svc.Start(ctx, userID, mode, count)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	sessionID := start.Session.ID
	fmt.Fprintf(out, "Session %s: %s interview, %d questions\n\n",
		sessionID, start.Session.Mode, start.Session.QuestionCount)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	question, round := start.Question, 1
	for {
		fmt.Fprintf(out, "Q%d: %s\n> ", round, question)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return fmt.Errorf("input closed before the session ended (session %s)", sessionID)
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Fprintln(out, "Please type an answer.")
			continue
		}

		res, err := svc.SubmitAnswer(ctx, userID, sessionID, answer)
		var genErr *llm.GenerationError
		if errors.As(err, &genErr) {
			// The answer is stored and graded; only the next question is missing.
			fmt.Fprintln(out, "Question generation failed, retrying once...")
			res, err = svc.Resume(ctx, userID, sessionID)
		}
		if err != nil {
			return fmt.Errorf("submitting answer: %w", err)
		}

		if v := res.Verdict; v != nil {
			fmt.Fprintf(out, "Score: %d/5. %s", v.Score, v.Feedback)
			if v.Degraded {
				fmt.Fprint(out, " (grader unavailable)")
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out)

		if res.Done || res.NextQuestion == nil {
			break
		}
		question = *res.NextQuestion
		round++
	}

	return printSummary(ctx, svc, out, userID, sessionID)
}
