package cmd

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wahaj323/quizengine/internal/history"
	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/ui/layout"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show attempt history with summary and grades",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		quizID, _ := cmd.Flags().GetString("quiz")

		rt, err := openRuntime(ctx, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		learner := rt.service().For(cfg.User)
		attempts, err := learner.History(ctx)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		if quizID != "" {
			var filtered []quiz.Attempt
			for _, a := range attempts {
				if a.QuizID == quizID {
					filtered = append(filtered, a)
				}
			}
			attempts = filtered
		}
		if len(attempts) == 0 {
			fmt.Println("No attempts yet.")
			return nil
		}
		history.SortRecent(attempts)

		titles := make(map[string]string)
		if views, err := learner.ListQuizzes(ctx, ""); err == nil {
			for _, qv := range views {
				titles[qv.ID] = qv.Title
			}
		}

		fmt.Printf("%-16s  %-28s  %3s  %5s  %5s  %-6s  %s\n",
			"Submitted", "Quiz", "#", "Score", "Grade", "Result", "Time")
		fmt.Println(strings.Repeat("─", 84))
		for _, a := range attempts {
			result := "failed"
			if a.Passed {
				result = "passed"
			}
			fmt.Printf("%-16s  %-28s  %3d  %4d%%  %5s  %-6s  %s\n",
				a.SubmittedAt.Local().Format("2006-01-02 15:04"),
				truncate(cmp.Or(titles[a.QuizID], a.QuizID), 28),
				a.Number, a.Score, history.LetterGrade(a.Score), result,
				layout.FormatCountdown(a.Elapsed()))
		}
		fmt.Println(strings.Repeat("─", 84))

		sum := history.Summarize(attempts)
		fmt.Printf("%d attempts, %d passed, %d failed. Best %d%%, average %d%%",
			sum.Attempts, sum.Passed, sum.Failed, sum.Best, sum.Average)
		if g, ok := sum.BestGrade(); ok {
			fmt.Printf(", best grade %s", g)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	historyCmd.Flags().String("quiz", "", "Only show attempts of this quiz")
}
