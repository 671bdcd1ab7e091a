package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"atelier/auth"
	"atelier/client"
	"atelier/db"
	"atelier/pkg/clierr"
	"atelier/pkg/pool"
	"atelier/pkg/validation"
)

// syncCmd rebuilds the local task cache from the server so listing and
// exporting keep working offline.
func syncCmd(deps *appDeps) *cobra.Command {
	var numThreads int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local task cache from the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return syncTasks(cmd, deps, numThreads)
		},
	}

	cmd.Flags().IntVarP(&numThreads, "threads", "t", 4, "Number of worker threads for fetching task details [1-20]")

	return cmd
}

func syncTasks(cmd *cobra.Command, deps *appDeps, numThreads int) error {
	if err := validation.ValidateThreadCount(numThreads); err != nil {
		return clierr.New(clierr.Validation, err.Error(), err)
	}

	ctx := cmd.Context()

	if _, err := deps.session.EnsureFresh(ctx); err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			return clierr.New(clierr.Auth, "You are not logged in. Run 'atelier login' first.", err)
		}
		log.Warn().Err(err).Msg("Session refresh failed; continuing with the saved token")
	}

	tasks, err := deps.api.ListTasks(ctx, client.TaskFilter{})
	if err != nil {
		return clierr.New(clierr.Transfer, "Failed to fetch the task list from the server.", err)
	}
	if len(tasks) == 0 {
		cmd.Println("The server returned no tasks. The local cache was left untouched.")
		return nil
	}

	if err := deps.tasks.Clear(ctx); err != nil {
		return clierr.New(clierr.Internal, "Failed to clear the local task cache.", err)
	}

	bar := progressbar.NewOptions(len(tasks),
		progressbar.OptionSetWriter(cmd.OutOrStdout()),
		progressbar.OptionSetDescription("Syncing tasks..."),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
	)

	var stored atomic.Int64
	errs := pool.Run(ctx, tasks, numThreads, func(ctx context.Context, task client.Task) error {
		defer func() {
			if err := bar.Add(1); err != nil {
				log.Debug().Err(err).Msg("Failed to update progress bar")
			}
		}()

		detail, err := deps.api.GetTask(ctx, task.ID)
		if err != nil {
			log.Warn().Err(err).Str("task", task.ID).Msg("Failed to fetch task details")
			return err
		}
		if err := deps.tasks.Put(ctx, toCacheRow(*detail)); err != nil {
			log.Warn().Err(err).Str("task", task.ID).Msg("Failed to store task in the cache")
			return err
		}
		stored.Add(1)
		return nil
	})

	if err := bar.Finish(); err != nil {
		log.Debug().Err(err).Msg("Failed to finish progress bar")
	}

	if len(errs) > 0 {
		cmd.Printf("Synced %d of %d tasks; %d failed. Check the logs for details.\n", stored.Load(), len(tasks), len(errs))
		return nil
	}

	cmd.Printf("Sync completed. %d tasks in the local cache.\n", stored.Load())
	return nil
}

// toCacheRow flattens an API task into its cache row. The full task is kept
// as raw JSON alongside the listing columns.
func toCacheRow(task client.Task) db.Task {
	assignee := ""
	if task.Assignee != nil {
		assignee = task.Assignee.Name
	}

	raw, err := json.Marshal(task)
	if err != nil {
		log.Warn().Err(err).Str("task", task.ID).Msg("Failed to serialize task for the cache")
		raw = []byte("{}")
	}

	return db.Task{
		ID:        task.ID,
		Title:     task.Title,
		Status:    task.Status,
		Priority:  task.Priority,
		Assignee:  assignee,
		UpdatedAt: task.UpdatedAt.Format(time.RFC3339),
		Data:      string(raw),
	}
}
