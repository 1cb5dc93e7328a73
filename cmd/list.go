package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cliky/cliky/models"
	"github.com/cliky/cliky/taskstream"
)

var (
	listStatus   string
	listPriority string
	listComplex  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()

		filter := func(t models.Task) bool {
			if listStatus != "" && t.Status != models.TaskStatus(listStatus) {
				return false
			}
			if listPriority != "" && t.Priority != models.TaskPriority(strings.ToLower(listPriority)) {
				return false
			}
			if listComplex && !taskstream.IsComplex(t) {
				return false
			}
			return true
		}

		tasks, err := taskStore.ListTasks(filter, nil)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no tasks found")
			return nil
		}
		printTaskTable(cmd.OutOrStdout(), tasks)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter by status: todo, in_progress, completed")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "filter by priority: low, medium, high")
	listCmd.Flags().BoolVar(&listComplex, "complex", false, "only tasks complex enough for expansion")
}
