package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"atelier/auth"
	"atelier/client"
	"atelier/pkg/clierr"
	"atelier/pkg/operations"
	"atelier/pkg/validation"
)

// pullCmd downloads the attachment files of a task.
func pullCmd(deps *appDeps) *cobra.Command {
	var taskID, downloadDir string
	var numThreads int
	var resumeFlag, flattenFlag bool
	var rateLimit int64

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Download the attachment files of a task",
		Long:  "Download the attachment files of the specified task to a local directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePull(cmd, deps, taskID, downloadDir, numThreads, resumeFlag, flattenFlag, rateLimit)
		},
	}

	cmd.Flags().StringVarP(&taskID, "id", "i", "", "ID of the task to pull files for (required)")
	cmd.Flags().StringVarP(&downloadDir, "dir", "d", "", "Directory to download into (defaults to the configured download directory)")
	cmd.Flags().IntVarP(&numThreads, "threads", "t", 4, "Number of worker threads for downloading [1-20]")
	cmd.Flags().BoolVarP(&resumeFlag, "resume", "r", true, "Resume partially downloaded files? [true, false]")
	cmd.Flags().BoolVarP(&flattenFlag, "flatten", "f", false, "Download into the directory itself instead of a per-task subdirectory? [true, false]")
	cmd.Flags().Int64VarP(&rateLimit, "limit", "l", 0, "Download rate limit in bytes per second (0 means unlimited)")

	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'id' flag as required")
	}

	return cmd
}

func executePull(cmd *cobra.Command, deps *appDeps, taskID, downloadDir string, numThreads int, resumeFlag, flattenFlag bool, rateLimit int64) error {
	if err := validation.ValidateTaskID(taskID); err != nil {
		return clierr.New(clierr.Validation, err.Error(), err)
	}
	if err := validation.ValidateThreadCount(numThreads); err != nil {
		return clierr.New(clierr.Validation, err.Error(), err)
	}
	if downloadDir == "" {
		downloadDir = deps.cfg.DownloadDir
	}

	ctx := cmd.Context()

	if _, err := deps.session.EnsureFresh(ctx); err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			return clierr.New(clierr.Auth, "You are not logged in. Run 'atelier login' first.", err)
		}
		log.Warn().Err(err).Msg("Session refresh failed; continuing with the saved token")
	}

	task, err := deps.api.GetTask(ctx, taskID)
	if err != nil {
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return clierr.New(clierr.NotFound, fmt.Sprintf("No task found with ID %s.", taskID), err)
		}
		return clierr.New(clierr.Transfer, "Failed to fetch the task from the server.", err)
	}

	files, err := deps.api.ListTaskFiles(ctx, taskID)
	if err != nil {
		return clierr.New(clierr.Transfer, "Failed to fetch the attachment list.", err)
	}
	if len(files) == 0 {
		cmd.Println("The task has no attachment files.")
		return nil
	}

	totalBytes, unsized := operations.EstimatePullSize(files)
	sizeNote := formatBytes(totalBytes)
	if unsized > 0 {
		sizeNote = fmt.Sprintf("%s plus %d files of unknown size", sizeNote, unsized)
	}
	cmd.Printf("Pulling %d files (%s) for \"%s\".\n", len(files), sizeNote, task.Title)

	opts := client.DownloadOptions{
		Workers:     numThreads,
		Resume:      resumeFlag,
		Flatten:     flattenFlag,
		RateLimit:   rateLimit,
		ProgressOut: cmd.OutOrStdout(),
	}
	if err := deps.api.DownloadTaskFiles(ctx, *task, files, downloadDir, opts); err != nil {
		return clierr.New(clierr.Transfer, "Failed to download some attachment files.", err)
	}

	dest := downloadDir
	if !flattenFlag {
		dest = filepath.Join(downloadDir, client.SanitizeName(task.Title))
	}
	cmd.Printf("Files downloaded successfully to \"%s\".\n", dest)
	return nil
}
