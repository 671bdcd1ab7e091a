package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loginCmd signs in to the server with email and password and saves the
// session locally for the other commands to use.
func loginCmd(deps *appDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in to the Atelier server",
		Long:  "Log in to the Atelier server with your email and password",
		Run: func(cmd *cobra.Command, args []string) {
			email := promptForInput("Email: ")
			password := promptForPassword("Password: ")

			if email == "" || password == "" {
				cmd.PrintErrln("Error: Email and password cannot be empty.")
				return
			}

			user, err := deps.api.Login(cmd.Context(), email, password)
			if err != nil {
				log.Error().Err(err).Msg("Login failed")
				cmd.PrintErrln("Error: Failed to log in. Please check your credentials and try again.")
				return
			}

			cmd.Printf("Logged in as %s (%s).\n", user.Name, user.Role)
		},
	}
}

// promptForInput reads a line from standard input and returns it trimmed.
func promptForInput(prompt string) string {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(prompt)
	input, err := reader.ReadString('\n')
	if err != nil {
		log.Error().Err(err).Msg("Failed to read input")
		return ""
	}
	return strings.TrimSpace(input)
}

// promptForPassword reads a password from standard input without echoing it.
func promptForPassword(prompt string) string {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Error().Err(err).Msg("Failed to read password")
		return ""
	}
	return strings.TrimSpace(string(password))
}
