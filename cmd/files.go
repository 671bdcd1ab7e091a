package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"atelier/client"
	"atelier/pkg/clierr"
	"atelier/pkg/hasher"
	"atelier/pkg/operations"
	"atelier/pkg/validation"
)

// filesCmd groups the commands that inspect downloaded attachment files.
func filesCmd(deps *appDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Inspect downloaded attachment files",
	}

	cmd.AddCommand(
		filesVerifyCmd(deps),
		filesSizeCmd(deps),
	)

	return cmd
}

// filesVerifyCmd checks downloaded files against the server's manifest
// checksums.
func filesVerifyCmd(deps *appDeps) *cobra.Command {
	var taskID, dir, algo string
	var numThreads int

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify downloaded files against the server manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return verifyFiles(cmd, deps, taskID, dir, algo, numThreads)
		},
	}

	cmd.Flags().StringVarP(&taskID, "id", "i", "", "ID of the task whose files to verify (required)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory holding the downloaded files (defaults to the task's download directory)")
	cmd.Flags().StringVarP(&algo, "algo", "a", "sha256", "Hash algorithm to use [md5, sha1, sha256, sha512]")
	cmd.Flags().IntVarP(&numThreads, "threads", "t", 4, "Number of files to hash in parallel [1-20]")

	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'id' flag as required")
	}

	return cmd
}

func verifyFiles(cmd *cobra.Command, deps *appDeps, taskID, dir, algo string, numThreads int) error {
	if err := validation.ValidateTaskID(taskID); err != nil {
		return clierr.New(clierr.Validation, err.Error(), err)
	}
	if err := validation.ValidateThreadCount(numThreads); err != nil {
		return clierr.New(clierr.Validation, err.Error(), err)
	}
	if !hasher.IsValidHashAlgo(algo) {
		return clierr.New(clierr.Validation, fmt.Sprintf("Unsupported hash algorithm: %s", algo), nil)
	}

	ctx := cmd.Context()

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

	if dir == "" {
		dir = filepath.Join(deps.cfg.DownloadDir, client.SanitizeName(task.Title))
	}

	results, verifyErr := operations.VerifyDownloads(ctx, files, dir, algo, numThreads)
	if verifyErr != nil {
		log.Warn().Err(verifyErr).Msg("Some files could not be read during verification")
	}

	table := newListTable(cmd.OutOrStdout(), []string{"File", "Status"}, 0)
	bad := 0
	for _, result := range results {
		table.Append([]string{cleanCell(result.Name), string(result.Status)})
		if result.Status != operations.StatusOK && result.Status != operations.StatusSkipped {
			bad++
		}
	}
	table.Render()

	if bad > 0 {
		msg := fmt.Sprintf("%d of %d files failed verification.", bad, len(results))
		return clierr.New(clierr.Transfer, msg, verifyErr)
	}

	cmd.Printf("All %d files passed verification.\n", len(results))
	return nil
}

// filesSizeCmd shows the estimated download size of a task's files.
func filesSizeCmd(deps *appDeps) *cobra.Command {
	var taskID string

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Show the estimated download size of a task's files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showFilesSize(cmd, deps, taskID)
		},
	}

	cmd.Flags().StringVarP(&taskID, "id", "i", "", "ID of the task to size (required)")

	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'id' flag as required")
	}

	return cmd
}

func showFilesSize(cmd *cobra.Command, deps *appDeps, taskID string) error {
	if err := validation.ValidateTaskID(taskID); err != nil {
		return clierr.New(clierr.Validation, err.Error(), err)
	}

	ctx := cmd.Context()

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
	cmd.Printf("Estimated download size for \"%s\": %s across %d files.\n", task.Title, formatBytes(totalBytes), len(files))
	if unsized > 0 {
		cmd.Printf("%d files have no size in the manifest and are not included in the estimate.\n", unsized)
	}
	return nil
}
