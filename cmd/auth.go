package cmd

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/gdocs-mcp/internal/google"
)

func newAuthCmd() *cobra.Command {
	var (
		googleClientID     string
		googleClientSecret string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to your Google account",
		Long: `Run the interactive OAuth authorization flow.

Prints an authorization URL to open in your browser, waits for Google to
redirect back to a local callback server, exchanges the authorization
code and stores the resulting token for later serve runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(googleClientID, googleClientSecret)
		},
	}

	cmd.Flags().StringVar(&googleClientID, "google-client-id", "", "Google OAuth Client ID. Can also use GOOGLE_CLIENT_ID env var or a client secret file.")
	cmd.Flags().StringVar(&googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret. Can also use GOOGLE_CLIENT_SECRET env var or a client secret file.")

	cmd.AddCommand(newAuthStatusCmd())

	return cmd
}

func runAuth(clientID, clientSecret string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	session, err := newSession(clientID, clientSecret)
	if err != nil {
		return err
	}

	// CSRF protection: the callback rejects redirects whose state does
	// not match.
	state, err := randomState()
	if err != nil {
		return err
	}

	fmt.Println("Open the following URL in your browser to authorize access:")
	fmt.Println()
	fmt.Println("  " + session.AuthURL(state))
	fmt.Println()
	fmt.Printf("Waiting for the authorization redirect on http://%s ...\n", google.CallbackAddr)

	if err := google.AwaitCallback(ctx, session, state); err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Authorization complete. The token has been stored; 'gdocs-mcp serve' will use it.")
	return nil
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state parameter: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current authorization status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthStatus()
		},
	}
}

func runAuthStatus() error {
	session, err := newSession("", "")
	if err != nil {
		return err
	}
	session.LoadTokens()

	status := session.Status()
	if status.Authenticated {
		fmt.Println("Authenticated: yes")
	} else {
		fmt.Println("Authenticated: no (run 'gdocs-mcp auth' to authorize)")
	}
	if status.HasAccessToken && !status.Expiry.IsZero() {
		fmt.Printf("Access token expires: %s\n", status.Expiry.Format(time.RFC3339))
	}
	fmt.Printf("Token path: %s\n", status.TokenPath)
	return nil
}
