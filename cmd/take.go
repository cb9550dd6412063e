package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wahaj323/quizengine/internal/app"
	"github.com/wahaj323/quizengine/internal/client"
	"github.com/wahaj323/quizengine/internal/logger"
	"github.com/wahaj323/quizengine/internal/session"
)

var takeCmd = &cobra.Command{
	Use:   "take [quiz-id]",
	Short: "Take a quiz in the terminal",
	Long: "Opens the quiz catalog, or starts quiz-id right away. Attempts are graded " +
		"by the local store, or by the server given with --server.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var quizID string
		if len(args) == 1 {
			quizID = args[0]
		}
		opts := app.Options{QuizID: quizID, CourseID: v.GetString("course")}

		if cfg.Client.URL != "" {
			log, err := logger.New(cfg.Log, nil)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			c, err := client.New(cfg.Client, cfg.User)
			if err != nil {
				return err
			}
			log.Info("taking quizzes from server", zap.String("url", cfg.Client.URL))
			opts.Backend = c
			opts.SessionOptions = []session.Option{session.WithLogger(log)}
			return app.Run(cmd.Context(), opts)
		}

		rt, err := openRuntime(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		if cfg.User == "" {
			return fmt.Errorf("no learner id: pass --user or set QUIZENGINE_USER")
		}
		opts.Backend = rt.service().For(cfg.User)
		opts.SessionOptions = []session.Option{session.WithLogger(rt.log)}
		return app.Run(cmd.Context(), opts)
	},
}

func init() {
	f := takeCmd.Flags()
	f.String("server", "", "API base URL; attempts are graded remotely (overrides QUIZENGINE_CLIENT_URL)")
	f.String("token", "", "Bearer token for --server (overrides QUIZENGINE_CLIENT_TOKEN)")
	f.String("course", "", "Only list quizzes of this course")

	v.BindPFlag("client.url", f.Lookup("server"))
	v.BindPFlag("client.token", f.Lookup("token"))
	v.BindPFlag("course", f.Lookup("course"))
}
