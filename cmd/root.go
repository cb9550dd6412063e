package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wahaj323/quizengine/internal/config"
)

var (
	v       = config.New()
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "quizengine",
	Short: "Quiz authoring, delivery and grading",
	Long: "quizengine serves quizzes over HTTP, lets learners take them in the terminal " +
		"and grades every attempt on the server.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		cfg = c
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return takeCmd.RunE(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/quizengine/config.yaml)")
	pf.String("db", "", "Database DSN or SQLite file path (overrides QUIZENGINE_DATABASE_DSN)")
	pf.String("user", "", "Learner id for local commands (overrides QUIZENGINE_USER)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")

	v.BindPFlag("database.dsn", pf.Lookup("db"))
	v.BindPFlag("user", pf.Lookup("user"))
	v.BindPFlag("log.level", pf.Lookup("log-level"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(attemptCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
