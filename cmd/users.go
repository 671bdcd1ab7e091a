package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// usersCmd groups the user roster commands.
func usersCmd(deps *appDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Look up accounts on the Atelier server",
	}

	cmd.AddCommand(
		usersListCmd(deps),
		usersMeCmd(deps),
	)

	return cmd
}

// usersListCmd lists the accounts known to the server.
func usersListCmd(deps *appDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the users on the server",
		Run: func(cmd *cobra.Command, args []string) {
			users, err := deps.api.ListUsers(cmd.Context())
			if err != nil {
				log.Error().Err(err).Msg("Failed to list users")
				cmd.PrintErrln("Error: Unable to list users. Please check the logs for details.")
				return
			}
			if len(users) == 0 {
				cmd.Println("No users found.")
				return
			}

			table := newListTable(cmd.OutOrStdout(), []string{"ID", "Name", "Email", "Role"})
			for _, user := range users {
				table.Append([]string{user.ID, user.Name, user.Email, user.Role})
			}
			table.Render()

			log.Info().Msgf("Listed %d users.", len(users))
		},
	}
}

// usersMeCmd asks the server who the current token belongs to. Unlike
// whoami, this is a live call, so it reflects server-side changes to the
// account since login.
func usersMeCmd(deps *appDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the account the server associates with the session",
		Run: func(cmd *cobra.Command, args []string) {
			user, err := deps.api.Me(cmd.Context())
			if err != nil {
				log.Error().Err(err).Msg("Failed to fetch the current user")
				cmd.PrintErrln("Error: Unable to fetch the current user. Are you logged in?")
				return
			}

			cmd.Printf("User: %s <%s>\n", user.Name, user.Email)
			cmd.Printf("Role: %s\n", user.Role)
			cmd.Printf("ID: %s\n", user.ID)
		},
	}
}
