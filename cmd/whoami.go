package cmd

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"atelier/auth"
)

// whoamiCmd shows who is signed in, based on the locally saved session.
func whoamiCmd(deps *appDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and token expiry",
		Run: func(cmd *cobra.Command, args []string) {
			session, err := deps.sessions.Get(cmd.Context())
			if err != nil {
				log.Error().Err(err).Msg("Failed to read the saved session")
				cmd.PrintErrln("Error: Failed to read the saved session.")
				return
			}
			if session == nil {
				cmd.Println("Not logged in. Run 'atelier login' to sign in.")
				return
			}

			cmd.Printf("User: %s <%s>\n", session.UserName, session.UserEmail)
			cmd.Printf("Role: %s\n", session.UserRole)

			expiresAt, err := auth.TokenExpiry(session.AccessToken)
			if err != nil {
				cmd.Println("Token expires: unknown (opaque token)")
				return
			}
			cmd.Printf("Token expires: %s\n", expiresAt.Local().Format(time.RFC1123))
		},
	}
}
