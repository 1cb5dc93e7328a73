package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cliky/cliky/llm"
	"github.com/cliky/cliky/models"
	"github.com/cliky/cliky/taskstream"
)

var expandIDs []string

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Break complex tasks into subtasks",
	Long: `Expand sends the stored complex tasks (or the ones named with --id)
to the LLM in one batch and attaches the returned subtasks. Existing
subtasks on those tasks are replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()

		var targets []models.Task
		if len(expandIDs) > 0 {
			for _, id := range expandIDs {
				t, err := taskStore.GetTask(id)
				if err != nil {
					return err
				}
				targets = append(targets, t)
			}
		} else {
			targets, err = taskStore.ListTasks(taskstream.IsComplex, nil)
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}
		}
		if len(targets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no complex tasks to expand")
			return nil
		}

		chatModel, err := newChatModel(cmd.Context())
		if err != nil {
			return err
		}

		reqs := make([]taskstream.ExpandRequest, 0, len(targets))
		for _, t := range targets {
			reqs = append(reqs, taskstream.ExpandRequest{
				ID:            t.ID,
				Title:         t.Title,
				Description:   t.Description,
				Details:       t.Details,
				Priority:      t.Priority,
				EstimatedTime: t.EstimatedTime,
			})
		}

		expansions, err := llm.NewExpander(chatModel).ExpandTasks(cmd.Context(), reqs)
		if err != nil {
			return fmt.Errorf("expand tasks: %w", err)
		}

		merged := 0
		for _, e := range expansions {
			if e.TaskID == "" || len(e.Subtasks) == 0 {
				continue
			}
			if _, err := taskStore.SetSubtasks(e.TaskID, e.Subtasks); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipping expansion for unknown task %s\n", e.TaskID)
				continue
			}
			merged++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "expanded %d of %d tasks\n", merged, len(targets))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(expandCmd)
	expandCmd.Flags().StringSliceVar(&expandIDs, "id", nil, "specific task IDs to expand (default: all complex tasks)")
}
