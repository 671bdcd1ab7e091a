package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"atelier/client"
	"atelier/pkg/validation"
)

// approvalsCmd groups the change approval commands.
func approvalsCmd(deps *appDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approvals",
		Short: "Review and decide change approvals",
	}

	cmd.AddCommand(
		approvalsListCmd(deps),
		approvalsApproveCmd(deps),
		approvalsRejectCmd(deps),
	)

	return cmd
}

// approvalsListCmd lists approval requests, filtered by state.
func approvalsListCmd(deps *appDeps) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List approval requests",
		Run: func(cmd *cobra.Command, args []string) {
			listApprovals(cmd, deps, state)
		},
	}

	cmd.Flags().StringVarP(&state, "status", "s", "pending", "Filter by state [pending, approved, rejected]")

	return cmd
}

func listApprovals(cmd *cobra.Command, deps *appDeps, state string) {
	if err := validation.ValidateApprovalState(state); err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}

	approvals, err := deps.api.ListApprovals(cmd.Context(), state)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list approvals")
		cmd.PrintErrln("Error: Unable to list approvals. Please check the logs for details.")
		return
	}
	if len(approvals) == 0 {
		cmd.Printf("No %s approvals found.\n", state)
		return
	}

	table := newListTable(cmd.OutOrStdout(), []string{"ID", "Task", "State", "Requester", "Last Action"})
	for _, approval := range approvals {
		requester := ""
		if approval.Requester != nil {
			requester = approval.Requester.Name
		}
		lastAction := ""
		if event := approval.LatestEvent(); event != nil {
			lastAction = fmt.Sprintf("%s by %s", event.Action, event.Actor)
		}
		table.Append([]string{approval.ID, approval.TaskID, approval.State, requester, lastAction})
	}
	table.Render()

	log.Info().Msgf("Listed %d approvals.", len(approvals))
}

// approvalsApproveCmd approves a pending change.
func approvalsApproveCmd(deps *appDeps) *cobra.Command {
	var approvalID string

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve a pending change",
		Run: func(cmd *cobra.Command, args []string) {
			if err := validation.ValidateNonEmptyString("approval ID", approvalID); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			approval, err := deps.api.ApproveChange(cmd.Context(), approvalID)
			if err != nil {
				var httpErr *client.HTTPError
				if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
					cmd.PrintErrln("Error: No approval found with the specified ID.")
					return
				}
				log.Error().Err(err).Msg("Failed to approve the change")
				cmd.PrintErrln("Error: Failed to approve the change. Please check the logs for details.")
				return
			}

			cmd.Printf("Approval %s is now %s.\n", approval.ID, approval.State)
		},
	}

	cmd.Flags().StringVarP(&approvalID, "id", "i", "", "ID of the approval to act on")

	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'id' flag as required")
	}

	return cmd
}

// approvalsRejectCmd rejects a pending change with a reason.
func approvalsRejectCmd(deps *appDeps) *cobra.Command {
	var approvalID, reason string

	cmd := &cobra.Command{
		Use:   "reject",
		Short: "Reject a pending change",
		Run: func(cmd *cobra.Command, args []string) {
			if err := validation.ValidateNonEmptyString("approval ID", approvalID); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			if err := validation.ValidateNonEmptyString("reason", reason); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			approval, err := deps.api.RejectChange(cmd.Context(), approvalID, reason)
			if err != nil {
				var httpErr *client.HTTPError
				if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
					cmd.PrintErrln("Error: No approval found with the specified ID.")
					return
				}
				log.Error().Err(err).Msg("Failed to reject the change")
				cmd.PrintErrln("Error: Failed to reject the change. Please check the logs for details.")
				return
			}

			cmd.Printf("Approval %s is now %s.\n", approval.ID, approval.State)
		},
	}

	cmd.Flags().StringVarP(&approvalID, "id", "i", "", "ID of the approval to act on")
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Reason for rejecting the change")

	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'id' flag as required")
	}
	if err := cmd.MarkFlagRequired("reason"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'reason' flag as required")
	}

	return cmd
}
