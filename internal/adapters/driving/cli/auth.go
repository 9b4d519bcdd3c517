package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Hmv123/RAG-Application/internal/adapters/driving/oauth"
	"github.com/Hmv123/RAG-Application/internal/connectors/google"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

var (
	authNoBrowser bool
	authTimeout   time.Duration
	authPort      int

	// Swapped in tests.
	oauthLogin  = oauth.Login
	openBrowser = oauth.OpenBrowser
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorise access to remote sources",
}

var authDriveCmd = &cobra.Command{
	Use:   "gdrive",
	Short: "Sign in to Google Drive and store a refresh token",
	Long: `Runs the OAuth consent flow for Google Drive read access.

Create a desktop OAuth client in the Google Cloud console first, then:
  ragapp config set sources.drive_client_id <id>
  ragapp config set sources.drive_client_secret
  ragapp auth gdrive

The refresh token is saved as sources.drive_refresh_token.`,
	Args: cobra.NoArgs,
	RunE: runAuthDrive,
}

func init() {
	authDriveCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "print the consent URL instead of opening a browser")
	authDriveCmd.Flags().DurationVar(&authTimeout, "timeout", oauth.DefaultLoginTimeout, "how long to wait for consent")
	authDriveCmd.Flags().IntVar(&authPort, "port", 0, "callback port (0 picks a free one)")
	authCmd.AddCommand(authDriveCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthDrive(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return err
	}
	src := settings.Sources
	if src.DriveClientID == "" || src.DriveClientSecret == "" {
		return fmt.Errorf("%w: set sources.drive_client_id and sources.drive_client_secret first", domain.ErrConfiguration)
	}

	opts := oauth.LoginOptions{
		Port:    authPort,
		Timeout: authTimeout,
		Show: func(authURL string) {
			cmd.Printf("Open this URL to grant access:\n\n  %s\n\n", authURL)
		},
	}
	if !authNoBrowser {
		opts.Open = openBrowser
	}

	token, err := oauthLogin(commandContext(cmd), google.OAuthConfig(src.DriveClientID, src.DriveClientSecret), opts)
	if err != nil {
		return fmt.Errorf("google drive login: %w", err)
	}

	if err := settingsService.Set("sources.drive_refresh_token", token.RefreshToken); err != nil {
		return err
	}
	cmd.Println("Google Drive authorised. Refresh token saved.")
	return nil
}
