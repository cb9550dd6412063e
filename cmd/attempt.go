package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wahaj323/quizengine/internal/history"
	"github.com/wahaj323/quizengine/internal/scoring"
	"github.com/wahaj323/quizengine/internal/ui/layout"
)

var attemptCmd = &cobra.Command{
	Use:   "attempt",
	Short: "Inspect graded attempts",
}

var attemptShowCmd = &cobra.Command{
	Use:   "show <attempt-id>",
	Short: "Show an attempt question by question with the answer key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		svc := rt.service()
		a, err := svc.GetAttempt(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load attempt: %w", err)
		}
		q, err := svc.Quiz(ctx, a.QuizID)
		if err != nil {
			return fmt.Errorf("load quiz: %w", err)
		}

		// Authors always see the key, whatever learners are shown.
		q.Settings.AllowReview = true
		q.Settings.ShowCorrectAnswers = true
		rv, err := scoring.BuildReview(q, a)
		if err != nil {
			return err
		}

		result := "failed"
		if a.Passed {
			result = "passed"
		}
		fmt.Printf("Attempt:   %s (#%d)\n", a.ID, a.Number)
		fmt.Printf("Quiz:      %s (%s)\n", q.Title, q.ID)
		fmt.Printf("Learner:   %s\n", a.UserID)
		fmt.Printf("Submitted: %s\n", a.SubmittedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Time:      %s\n", layout.FormatCountdown(a.Elapsed()))
		fmt.Printf("Score:     %d%% (%d/%d points), grade %s, %s\n",
			a.Score, a.EarnedPoints, a.TotalPoints, history.LetterGrade(a.Score), result)
		if a.Feedback != "" {
			fmt.Printf("Feedback:  %s\n", a.Feedback)
		}

		sep := strings.Repeat("─", 60)
		for _, it := range rv.Items {
			mark := "✗"
			if it.Correct {
				mark = "✓"
			}
			fmt.Println(sep)
			fmt.Printf("%s %d. %s  [%s, %d pts]\n", mark, it.Index+1, it.Text, it.Kind.Label(), it.Points)
			fmt.Printf("  answer:   %s\n", it.Format(it.Answer.Response))
			fmt.Printf("  expected: %s\n", it.Format(it.Expected))
		}
		fmt.Println(sep)
		return nil
	},
}

var attemptFeedbackCmd = &cobra.Command{
	Use:   "feedback <attempt-id> <text>",
	Short: "Attach feedback to an attempt; empty text clears it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.service().AddFeedback(ctx, args[0], args[1]); err != nil {
			return fmt.Errorf("feedback: %w", err)
		}
		fmt.Println("Feedback saved for", args[0])
		return nil
	},
}

func init() {
	attemptCmd.AddCommand(attemptShowCmd)
	attemptCmd.AddCommand(attemptFeedbackCmd)
}
