package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Manage which quizzes a learner may attempt",
}

var unlockGrantCmd = &cobra.Command{
	Use:   "grant <user-id> <quiz-id>...",
	Short: "Unlock quizzes for a learner",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		svc := rt.service()
		for _, quizID := range args[1:] {
			if err := svc.Unlock(ctx, args[0], quizID); err != nil {
				return fmt.Errorf("unlock %s: %w", quizID, err)
			}
			fmt.Printf("Unlocked %s for %s\n", quizID, args[0])
		}
		return nil
	},
}

var unlockRevokeCmd = &cobra.Command{
	Use:   "revoke <user-id> <quiz-id>...",
	Short: "Lock quizzes again; past attempts are kept",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		svc := rt.service()
		for _, quizID := range args[1:] {
			if err := svc.Lock(ctx, args[0], quizID); err != nil {
				return fmt.Errorf("lock %s: %w", quizID, err)
			}
			fmt.Printf("Locked %s for %s\n", quizID, args[0])
		}
		return nil
	},
}

var unlockListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List the quizzes unlocked for a learner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		ids, err := rt.service().Unlocked(ctx, args[0])
		if err != nil {
			return fmt.Errorf("list unlocks: %w", err)
		}
		if len(ids) == 0 {
			fmt.Println("Nothing unlocked.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

func init() {
	unlockCmd.AddCommand(unlockGrantCmd)
	unlockCmd.AddCommand(unlockRevokeCmd)
	unlockCmd.AddCommand(unlockListCmd)
}
