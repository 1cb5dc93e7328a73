package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cliky/cliky/models"
	"github.com/cliky/cliky/taskstream"
)

// printTaskTable renders tasks in stored order, with subtasks indented
// under their parent.
func printTaskTable(w io.Writer, tasks []models.Task) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPRIORITY\tSCORE\tEST")
	for _, t := range tasks {
		marker := ""
		if taskstream.IsComplex(t) {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%s\t%s\n",
			t.ID, truncate(t.Title, 48), t.Status, t.Priority, t.Complexity, marker, t.EstimatedTime)
		for _, st := range t.Subtasks {
			status := st.Status
			if status == "" {
				status = models.StatusTodo
			}
			fmt.Fprintf(tw, "%s\t  %s\t%s\t\t\t\n", st.ID, truncate(st.Title, 46), status)
		}
	}
	_ = tw.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-3]) + "..."
}
