package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	loginUsername *string
	loginPassword *string
	loginSave     *bool
	logoutForget  *bool
)

func init() {
	loginUsername = loginCmd.Flags().String("username", "", "The portal username, defaults to the one in the config.")
	loginPassword = loginCmd.Flags().String("password", "", "The portal password, defaults to the one in the config.")
	loginSave = loginCmd.Flags().Bool("save", true, "Remember the password so sync can log in on its own.")
	logoutForget = logoutCmd.Flags().Bool("forget", false, "Also forget the saved credentials.")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login [--username <username>] [--password <password>] [--save=false]",
	Short: "Checks the credentials against the portal and saves them.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp(cmd.Context())
		defer a.Close()

		creds := a.credentials(*loginUsername, *loginPassword)
		creds.Save = *loginSave
		if !creds.Complete() {
			fatal("missing credentials", fmt.Errorf("a username and password are required"))
		}

		slog.Info("logging in", "username", creds.Username)
		err := a.service.Login(cmd.Context(), creds)
		if err != nil {
			fatal("failed to login", err)
		}
		fmt.Println("logged in as", creds.Username)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout [--forget]",
	Short: "Drops the session, optionally forgetting the saved credentials.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp(cmd.Context())
		defer a.Close()

		err := a.service.Logout(cmd.Context(), *logoutForget)
		if err != nil {
			fatal("failed to logout", err)
		}
	},
}
