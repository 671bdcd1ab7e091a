package cmd

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"atelier/client"
	"atelier/db"
	"atelier/pkg/validation"
)

// tasksCmd groups the task workflow commands.
func tasksCmd(deps *appDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Browse and manage design tasks",
	}

	cmd.AddCommand(
		tasksListCmd(deps),
		tasksShowCmd(deps),
		tasksSubmitCmd(deps),
		tasksAssignCmd(deps),
		tasksStatusCmd(deps),
		tasksExportCmd(deps),
	)

	return cmd
}

// tasksListCmd lists tasks from the server, or from the local cache when the
// --cached flag is set.
func tasksListCmd(deps *appDeps) *cobra.Command {
	var status, assignee, search string
	var cached bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List design tasks",
		Run: func(cmd *cobra.Command, args []string) {
			if cached {
				listCachedTasks(cmd, deps, search)
				return
			}
			listLiveTasks(cmd, deps, status, assignee, search)
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status [open, in_progress, in_review, done, archived]")
	cmd.Flags().StringVarP(&assignee, "assignee", "a", "", "Filter by assignee user ID")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Filter by a search term in the title")
	cmd.Flags().BoolVarP(&cached, "cached", "c", false, "List from the local cache instead of the server")

	return cmd
}

func listLiveTasks(cmd *cobra.Command, deps *appDeps, status, assignee, search string) {
	if status != "" {
		if err := validation.ValidateTaskStatus(status); err != nil {
			cmd.PrintErrln("Error:", err)
			return
		}
	}

	filter := client.TaskFilter{Status: status, Assignee: assignee, Search: search}
	tasks, err := deps.api.ListTasks(cmd.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tasks")
		cmd.PrintErrln("Error: Unable to list tasks. Please check the logs for details.")
		return
	}
	if len(tasks) == 0 {
		cmd.Println("No tasks found matching the criteria.")
		return
	}

	table := newListTable(cmd.OutOrStdout(), []string{"ID", "Title", "Status", "Priority", "Assignee", "Updated"}, 1)
	for _, task := range tasks {
		assigneeName := ""
		if task.Assignee != nil {
			assigneeName = task.Assignee.Name
		}
		table.Append([]string{
			task.ID,
			cleanCell(task.Title),
			task.Status,
			task.Priority,
			assigneeName,
			task.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()

	log.Info().Msgf("Listed %d tasks.", len(tasks))
}

func listCachedTasks(cmd *cobra.Command, deps *appDeps, search string) {
	var tasks []db.Task
	var err error
	if search != "" {
		tasks, err = deps.tasks.SearchByTitle(cmd.Context(), search)
	} else {
		tasks, err = deps.tasks.List(cmd.Context())
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to read the local task cache")
		cmd.PrintErrln("Error: Unable to read the local task cache.")
		return
	}
	if len(tasks) == 0 {
		if search != "" {
			cmd.Println("No cached tasks match the search term.")
			return
		}
		cmd.Println("The local cache is empty. Use `atelier sync` to fill it.")
		return
	}

	table := newListTable(cmd.OutOrStdout(), []string{"ID", "Title", "Status", "Priority", "Assignee", "Updated"}, 1)
	for _, task := range tasks {
		table.Append([]string{
			task.ID,
			cleanCell(task.Title),
			task.Status,
			task.Priority,
			task.Assignee,
			task.UpdatedAt,
		})
	}
	table.Render()

	log.Info().Msgf("Listed %d cached tasks.", len(tasks))
}

// tasksShowCmd shows the full details of a single task.
func tasksShowCmd(deps *appDeps) *cobra.Command {
	var taskID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show details of a task",
		Run: func(cmd *cobra.Command, args []string) {
			showTask(cmd, deps, taskID)
		},
	}

	cmd.Flags().StringVarP(&taskID, "id", "i", "", "ID of the task to show")

	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'id' flag as required")
	}

	return cmd
}

func showTask(cmd *cobra.Command, deps *appDeps, taskID string) {
	if err := validation.ValidateTaskID(taskID); err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}

	task, err := deps.api.GetTask(cmd.Context(), taskID)
	if err != nil {
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			cmd.PrintErrln("Error: No task found with the specified ID.")
			return
		}
		log.Error().Err(err).Msg("Failed to fetch the task")
		cmd.PrintErrln("Error: Unable to fetch the task. Please check the logs for details.")
		return
	}

	cmd.Println("Task Information:")
	cmd.Printf("ID: %s\n", task.ID)
	cmd.Printf("Title: %s\n", task.Title)
	cmd.Printf("Status: %s\n", task.Status)
	cmd.Printf("Priority: %s\n", task.Priority)
	if task.Requester != nil {
		cmd.Printf("Requester: %s <%s>\n", task.Requester.Name, task.Requester.Email)
	}
	if task.Assignee != nil {
		cmd.Printf("Assignee: %s <%s>\n", task.Assignee.Name, task.Assignee.Email)
	}
	if len(task.Tags) > 0 {
		cmd.Printf("Tags: %s\n", strings.Join(task.Tags, ", "))
	}
	cmd.Printf("Created: %s\n", task.CreatedAt.Format("2006-01-02 15:04"))
	cmd.Printf("Updated: %s\n", task.UpdatedAt.Format("2006-01-02 15:04"))
	if task.Description != "" {
		cmd.Println()
		cmd.Println(task.Description)
	}
}

// tasksSubmitCmd submits a new design request to the server.
func tasksSubmitCmd(deps *appDeps) *cobra.Command {
	var title, description, priority string
	var tags []string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new design request",
		Run: func(cmd *cobra.Command, args []string) {
			if err := validation.ValidateNonEmptyString("title", title); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			if err := validation.ValidatePriority(priority); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			payload := client.NewTask{Title: title, Description: description, Priority: priority, Tags: tags}
			task, err := deps.api.CreateTask(cmd.Context(), payload)
			if err != nil {
				log.Error().Err(err).Msg("Failed to submit the task")
				cmd.PrintErrln("Error: Failed to submit the task. Please check the logs for details.")
				return
			}

			cmd.Printf("Task %s submitted.\n", task.ID)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Title of the design request (required)")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "Longer description of the request")
	cmd.Flags().StringVarP(&priority, "priority", "p", "normal", "Priority [low, normal, high, urgent]")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma-separated tags to attach")

	if err := cmd.MarkFlagRequired("title"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'title' flag as required")
	}

	return cmd
}

// tasksAssignCmd assigns a task to a user.
func tasksAssignCmd(deps *appDeps) *cobra.Command {
	var taskID, userID string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign a task to a user",
		Run: func(cmd *cobra.Command, args []string) {
			if err := validation.ValidateTaskID(taskID); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			if err := validation.ValidateNonEmptyString("user ID", userID); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			task, err := deps.api.AssignTask(cmd.Context(), taskID, userID)
			if err != nil {
				log.Error().Err(err).Msg("Failed to assign the task")
				cmd.PrintErrln("Error: Failed to assign the task. Please check the logs for details.")
				return
			}

			assignee := userID
			if task.Assignee != nil {
				assignee = task.Assignee.Name
			}
			cmd.Printf("Task %s assigned to %s.\n", task.ID, assignee)
		},
	}

	cmd.Flags().StringVarP(&taskID, "id", "i", "", "ID of the task to assign")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "ID of the user to assign the task to")

	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'id' flag as required")
	}
	if err := cmd.MarkFlagRequired("user"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'user' flag as required")
	}

	return cmd
}

// tasksStatusCmd moves a task to a new status.
func tasksStatusCmd(deps *appDeps) *cobra.Command {
	var taskID, status string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Update the status of a task",
		Run: func(cmd *cobra.Command, args []string) {
			if err := validation.ValidateTaskID(taskID); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			if err := validation.ValidateTaskStatus(status); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			task, err := deps.api.UpdateTaskStatus(cmd.Context(), taskID, status)
			if err != nil {
				log.Error().Err(err).Msg("Failed to update the task status")
				cmd.PrintErrln("Error: Failed to update the task status. Please check the logs for details.")
				return
			}

			cmd.Printf("Task %s is now %s.\n", task.ID, task.Status)
		},
	}

	cmd.Flags().StringVarP(&taskID, "id", "i", "", "ID of the task to update")
	cmd.Flags().StringVarP(&status, "set", "s", "", "New status [open, in_progress, in_review, done, archived]")

	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'id' flag as required")
	}
	if err := cmd.MarkFlagRequired("set"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'set' flag as required")
	}

	return cmd
}

// tasksExportCmd exports the local task cache to a JSON or CSV file.
func tasksExportCmd(deps *appDeps) *cobra.Command {
	var exportDir, exportFormat string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the local task cache to a file",
		Run: func(cmd *cobra.Command, args []string) {
			exportTasks(cmd, deps, exportDir, exportFormat)
		},
	}

	cmd.Flags().StringVarP(&exportDir, "dir", "d", "", "Directory to export the file to (required)")
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Export format [json, csv] (required)")

	if err := cmd.MarkFlagRequired("dir"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'dir' flag as required")
	}
	if err := cmd.MarkFlagRequired("format"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'format' flag as required")
	}

	return cmd
}

func exportTasks(cmd *cobra.Command, deps *appDeps, dir, format string) {
	if format != "json" && format != "csv" {
		cmd.PrintErrln("Error: Invalid export format. Supported formats: json, csv")
		return
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.Error().Err(err).Msg("Failed to create export directory")
		cmd.PrintErrln("Error: Failed to create export directory.")
		return
	}

	tasks, err := deps.tasks.List(cmd.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read the local task cache")
		cmd.PrintErrln("Error: Unable to read the local task cache.")
		return
	}
	if len(tasks) == 0 {
		cmd.Println("The local cache is empty. Use `atelier sync` to fill it.")
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filePath := filepath.Join(dir, fmt.Sprintf("atelier_tasks_%s.%s", timestamp, format))

	if format == "json" {
		err = writeTasksJSON(filePath, tasks)
	} else {
		err = writeTasksCSV(filePath, tasks)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to export the task cache")
		cmd.PrintErrln("Error: Failed to export the task cache.")
		return
	}

	cmd.Printf("Exported %d tasks to %s.\n", len(tasks), filePath)
}

func writeTasksJSON(path string, tasks []db.Task) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close the export file")
		}
	}()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(tasks)
}

func writeTasksCSV(path string, tasks []db.Task) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close the export file")
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"id", "title", "status", "priority", "assignee", "updated_at"}); err != nil {
		return err
	}
	for _, task := range tasks {
		row := []string{task.ID, task.Title, task.Status, task.Priority, task.Assignee, task.UpdatedAt}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
