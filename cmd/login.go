package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/simplejira/internal/client"
	"github.com/joescharf/simplejira/internal/credential"
	"github.com/joescharf/simplejira/internal/output"
)

// loginHTTPClient is used by login; tests point it at an httptest server.
var loginHTTPClient = &http.Client{Timeout: 30 * time.Second}

var loginCmd = &cobra.Command{
	Use:   "login <display-name>",
	Short: "Log in to the server at remote.url",
	Long: `Ask the server at remote.url (or --remote) for a token and store it in
the OS keyring. Later commands use it until it expires.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return loginRun(args[0])
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token for remote.url",
	RunE: func(cmd *cobra.Command, args []string) error {
		return logoutRun()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show who commands run as",
	RunE: func(cmd *cobra.Command, args []string) error {
		return whoamiRun()
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

var errLocalMode = errors.New("remote.url is not set: commands use the local database and need no login")

func loginRun(username string) error {
	url := remoteURL()
	if url == "" {
		return errLocalMode
	}
	session, err := client.Login(context.Background(), url, username, loginHTTPClient)
	if err != nil {
		return err
	}

	c, err := getCredentials()
	if err != nil {
		return err
	}
	if err := c.SaveSession(url, session); err != nil {
		return err
	}
	ui.Success("Logged in to %s as %s until %s", url, output.Cyan(session.Username),
		session.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

func logoutRun() error {
	url := remoteURL()
	if url == "" {
		return errLocalMode
	}
	c, err := getCredentials()
	if err != nil {
		return err
	}
	if err := c.DeleteSession(url); err != nil {
		return err
	}
	ui.Success("Logged out of %s", url)
	return nil
}

func whoamiRun() error {
	url := remoteURL()
	if url == "" {
		ui.Info("Local mode: using %s", viper.GetString("db_path"))
		return nil
	}
	c, err := getCredentials()
	if err != nil {
		return err
	}
	session, err := c.Session(url)
	if errors.Is(err, credential.ErrNoSession) {
		ui.Warning("Not logged in to %s", url)
		return nil
	}
	if err != nil {
		return err
	}
	if session.Expired(time.Now()) {
		ui.Warning("Session for %s as %s expired at %s", url, session.Username,
			session.ExpiresAt.Local().Format(time.DateTime))
		return nil
	}
	fmt.Fprintf(ui.Out, "%s on %s (expires %s)\n", output.Cyan(session.Username), url,
		session.ExpiresAt.Local().Format(time.DateTime))
	return nil
}
