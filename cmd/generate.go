package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cliky/cliky/llm"
	"github.com/cliky/cliky/models"
	"github.com/cliky/cliky/taskstream"
)

var (
	generateIdeaFile string
	generateNoExpand bool
	generateNoSave   bool
)

// expansionWait bounds how long generate waits for the subtask batch
// after the list itself is already finalized and shown.
const expansionWait = 2 * time.Minute

var generateCmd = &cobra.Command{
	Use:   "generate [idea...]",
	Short: "Generate a task list from a product idea",
	Long: `Generate streams a task list from the configured LLM, showing tasks
as they parse. Once the stream completes, the finalized list is saved
and tasks complex enough to warrant it are expanded into subtasks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		idea := strings.TrimSpace(strings.Join(args, " "))
		if generateIdeaFile != "" {
			data, err := os.ReadFile(generateIdeaFile)
			if err != nil {
				return fmt.Errorf("read idea file: %w", err)
			}
			idea = strings.TrimSpace(string(data))
		}
		if idea == "" {
			return fmt.Errorf("provide an idea as arguments or via --file")
		}

		chatModel, err := newChatModel(cmd.Context())
		if err != nil {
			return err
		}

		expansionDone := make(chan struct{}, 1)
		cb := taskstream.Callbacks{
			OnIncrementalUpdate: func(tasks []models.Task) {
				fmt.Fprintf(os.Stderr, "\rparsed %d tasks...", len(tasks))
			},
			OnFinalized: func(tasks []models.Task) {
				fmt.Fprintf(os.Stderr, "\rparsed %d tasks.   \n", len(tasks))
			},
			OnExpansionMerged: func(tasks []models.Task) {
				expansionDone <- struct{}{}
			},
			OnExpansionWarning: func(err error) {
				fmt.Fprintf(os.Stderr, "warning: subtask expansion failed: %v\n", err)
				expansionDone <- struct{}{}
			},
		}

		var opts []taskstream.Option
		expand := GetConfig().LLM.Expand && !generateNoExpand
		if expand {
			opts = append(opts, taskstream.WithExpander(llm.NewExpander(chatModel)))
		}
		session := taskstream.NewSession(cb, opts...)

		generator := llm.NewGenerator(chatModel)
		if err := generator.GenerateTasks(cmd.Context(), idea, session); err != nil {
			return fmt.Errorf("task generation failed: %w", err)
		}

		if expand && hasComplexTasks(session.Tasks()) {
			fmt.Fprintln(os.Stderr, "expanding complex tasks...")
			select {
			case <-expansionDone:
			case <-time.After(expansionWait):
				fmt.Fprintln(os.Stderr, "warning: subtask expansion timed out")
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
		}

		tasks := session.Tasks()
		printTaskTable(cmd.OutOrStdout(), tasks)

		if generateNoSave {
			return nil
		}
		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()
		if err := taskStore.ReplaceAllTasks(tasks); err != nil {
			return fmt.Errorf("save generated tasks: %w", err)
		}
		fmt.Fprintf(os.Stderr, "saved %d tasks to %s\n", len(tasks), GetTaskFilePath())
		return nil
	},
}

func hasComplexTasks(tasks []models.Task) bool {
	for _, t := range tasks {
		if taskstream.IsComplex(t) {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&generateIdeaFile, "file", "f", "", "read the idea from a file instead of arguments")
	generateCmd.Flags().BoolVar(&generateNoExpand, "no-expand", false, "skip subtask expansion of complex tasks")
	generateCmd.Flags().BoolVar(&generateNoSave, "no-save", false, "print the generated list without saving it")
}
