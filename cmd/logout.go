package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// logoutCmd revokes the refresh cookie on the server and clears the saved
// session. The local session is cleared even when the server is unreachable.
func logoutCmd(deps *appDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the saved session",
		Run: func(cmd *cobra.Command, args []string) {
			if err := deps.api.Logout(cmd.Context()); err != nil {
				log.Error().Err(err).Msg("Logout failed")
				cmd.PrintErrln("Error: Failed to clear the saved session.")
				return
			}
			cmd.Println("Logged out.")
		},
	}
}
