package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()

		task, err := taskStore.MarkTaskDone(args[0])
		if err != nil {
			return fmt.Errorf("mark task done: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "completed: %s %s\n", task.ID, task.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doneCmd)
}
