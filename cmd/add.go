package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cliky/cliky/models"
	"github.com/cliky/cliky/taskstream"
)

var (
	addDescription   string
	addPriority      string
	addEstimatedTime string
	addDependencies  []string
)

var addCmd = &cobra.Command{
	Use:   "add [title...]",
	Short: "Add a task by hand",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(strings.Join(args, " "))
		description := strings.TrimSpace(addDescription)
		if description == "" {
			return fmt.Errorf("a description is required (--description)")
		}

		task := models.NewTask("", title, description)
		task.Priority = models.NormalizePriority(addPriority)
		task.EstimatedTime = addEstimatedTime
		task.Dependencies = addDependencies
		task.Complexity = taskstream.Score(*task)

		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()

		created, err := taskStore.CreateTask(*task)
		if err != nil {
			return fmt.Errorf("add task: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added task %s (complexity %d)\n", created.ID, created.Complexity)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "task description (required)")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "medium", "task priority: low, medium, high")
	addCmd.Flags().StringVarP(&addEstimatedTime, "estimate", "e", "", "estimated time, e.g. \"6 hours\"")
	addCmd.Flags().StringSliceVar(&addDependencies, "depends-on", nil, "task IDs this task depends on")
}
