package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wahaj323/quizengine/internal/assessment"
	"github.com/wahaj323/quizengine/internal/builder"
	"github.com/wahaj323/quizengine/internal/llm"
	"github.com/wahaj323/quizengine/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Author and manage quizzes",
}

var quizImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a quiz document (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		publish, _ := cmd.Flags().GetBool("publish")

		q, err := readDocument(args[0])
		if err != nil {
			return err
		}

		rt, err := openRuntime(ctx, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		saved, err := rt.service().SaveQuiz(ctx, q, publish)
		if err != nil {
			return fmt.Errorf("save quiz: %w", err)
		}
		fmt.Printf("Saved %q as %s (%d questions, %d points, %s).\n",
			saved.Title, saved.ID, saved.QuestionCount, saved.TotalPoints, publishedLabel(saved.Published))
		return nil
	},
}

var quizExportCmd = &cobra.Command{
	Use:   "export <quiz-id>",
	Short: "Write a quiz document with its answer key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out, _ := cmd.Flags().GetString("out")

		rt, err := openRuntime(ctx, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		q, err := rt.service().Quiz(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load quiz: %w", err)
		}
		return writeDocument(out, q)
	},
}

var quizValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a quiz document without saving it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, _ := cmd.Flags().GetBool("draft")
		q, err := readDocument(args[0])
		if err != nil {
			return err
		}
		mode := builder.Publish
		if draft {
			mode = builder.Draft
		}
		if err := builder.Validate(q, mode); err != nil {
			return err
		}
		fmt.Printf("%s: valid for %s (%d questions, %d points).\n", args[0], mode, q.QuestionCount, q.TotalPoints)
		return nil
	},
}

var quizListCmd = &cobra.Command{
	Use:   "list",
	Short: "List quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		course, _ := cmd.Flags().GetString("course")

		rt, err := openRuntime(ctx, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		quizzes, err := rt.service().Quizzes(ctx, course)
		if err != nil {
			return fmt.Errorf("list quizzes: %w", err)
		}
		if len(quizzes) == 0 {
			fmt.Println("No quizzes found.")
			return nil
		}

		fmt.Printf("%-36s  %-12s  %-28s  %4s  %6s  %-8s  %s\n",
			"ID", "Course", "Title", "Qs", "Points", "Limit", "Status")
		fmt.Println(strings.Repeat("─", 112))
		for _, q := range quizzes {
			limit := "-"
			if q.Settings.Timed() {
				limit = fmt.Sprintf("%d min", q.Settings.TimeLimit)
			}
			fmt.Printf("%-36s  %-12s  %-28s  %4d  %6d  %-8s  %s\n",
				q.ID, truncate(q.CourseID, 12), truncate(q.Title, 28),
				q.QuestionCount, q.TotalPoints, limit, publishedLabel(q.Published))
		}
		return nil
	},
}

func publishCommand(use, short string, publish bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <quiz-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			q, err := rt.service().SetPublished(ctx, args[0], publish)
			if err != nil {
				return fmt.Errorf("%s: %w", use, err)
			}
			fmt.Printf("%q is now %s.\n", q.Title, publishedLabel(q.Published))
			return nil
		},
	}
}

var quizDeleteCmd = &cobra.Command{
	Use:   "delete <quiz-id>",
	Short: "Delete a quiz that has no attempts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		err = rt.service().DeleteQuiz(ctx, args[0])
		if errors.Is(err, assessment.ErrQuizHasAttempts) {
			return fmt.Errorf("quiz %s has attempts; unpublish it instead", args[0])
		}
		if err != nil {
			return fmt.Errorf("delete quiz: %w", err)
		}
		fmt.Println("Deleted", args[0])
		return nil
	},
}

var quizDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft a quiz with an LLM and save it unpublished",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f := cmd.Flags()
		in := builder.DraftInput{}
		in.Topic, _ = f.GetString("topic")
		in.Count, _ = f.GetInt("count")
		in.Level, _ = f.GetString("level")
		in.Notes, _ = f.GetString("notes")
		kinds, _ := f.GetStringSlice("kinds")
		for _, k := range kinds {
			kind := quiz.Kind(strings.TrimSpace(k))
			if !kind.Valid() {
				return fmt.Errorf("unknown question type %q", k)
			}
			in.Kinds = append(in.Kinds, kind)
		}
		course, _ := f.GetString("course")
		out, _ := f.GetString("out")

		lc, ok := llm.Discover(cfg.LLM)
		if !ok {
			return fmt.Errorf("no LLM configured: set llm.provider and its api_key, or a vendor API key variable")
		}

		rt, err := openRuntime(ctx, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		provider, err := llm.NewProvider(ctx, lc, rt.store.Events(), rt.log)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Drafting %d questions on %q with %s...\n", in.Count, in.Topic, provider.ModelID())

		q, err := builder.NewDrafter(provider, builder.DefaultDraftConfig()).Draft(ctx, in)
		if err != nil {
			return fmt.Errorf("draft: %w", err)
		}
		q.CourseID = course

		if out != "" {
			return writeDocument(out, q)
		}
		saved, err := rt.service().SaveQuiz(ctx, q, false)
		if err != nil {
			return fmt.Errorf("save draft: %w", err)
		}
		fmt.Printf("Saved draft %q as %s. Review it with `quizengine quiz export %s`.\n", saved.Title, saved.ID, saved.ID)
		return nil
	},
}

func readDocument(path string) (quiz.Quiz, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return quiz.Quiz{}, err
		}
		defer f.Close()
		r = f
	}
	q, err := builder.Import(r)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("import %s: %w", path, err)
	}
	return q, nil
}

// writeDocument exports q to path, or stdout for "" and "-".
func writeDocument(path string, q quiz.Quiz) error {
	if path == "" || path == "-" {
		return builder.Export(os.Stdout, q, time.Now())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := builder.Export(f, q, time.Now()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func publishedLabel(published bool) string {
	if published {
		return "published"
	}
	return "draft"
}

func init() {
	quizImportCmd.Flags().Bool("publish", false, "Publish after import")
	quizExportCmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	quizValidateCmd.Flags().Bool("draft", false, "Use the lenient draft rules")
	quizListCmd.Flags().String("course", "", "Only list quizzes of this course")

	f := quizDraftCmd.Flags()
	f.String("topic", "", "Quiz topic")
	f.Int("count", 5, "Number of questions")
	f.String("level", "", "Learner level, e.g. A1 or grade 4")
	f.String("notes", "", "Extra instructions for the model")
	f.StringSlice("kinds", nil, "Allowed question types: mcq, fill_blank, true_false, matching")
	f.String("course", "", "Course id of the draft")
	f.StringP("out", "o", "", "Write the draft document here instead of saving it")
	quizDraftCmd.MarkFlagRequired("topic")

	quizCmd.AddCommand(quizImportCmd)
	quizCmd.AddCommand(quizExportCmd)
	quizCmd.AddCommand(quizValidateCmd)
	quizCmd.AddCommand(quizListCmd)
	quizCmd.AddCommand(publishCommand("publish", "Publish a quiz", true))
	quizCmd.AddCommand(publishCommand("unpublish", "Hide a quiz from learners", false))
	quizCmd.AddCommand(quizDeleteCmd)
	quizCmd.AddCommand(quizDraftCmd)
}
