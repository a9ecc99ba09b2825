package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"autohaven/internal/client"

	"github.com/spf13/cobra"
)

type app struct {
	apiURL     string
	profileDir string
	session    *client.Session
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "autohaven",
		Short:        "Browse and manage the AutoHaven car catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}

	defaultAPI := os.Getenv("AUTOHAVEN_API")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:5000"
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api", defaultAPI, "AutoHaven server URL (env AUTOHAVEN_API)")
	root.PersistentFlags().StringVar(&a.profileDir, "profile-dir", "", "directory holding the saved session (default <config dir>/autohaven)")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newCarsCmd(a),
		newContactCmd(a),
	)
	return root
}

// open restores the saved session before any subcommand runs.
func (a *app) open(ctx context.Context) error {
	store, err := client.NewFileStore(a.profileDir)
	if err != nil {
		return err
	}
	a.session = client.NewSession(client.NewAPIClient(a.apiURL), store)
	return a.session.Restore(ctx)
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
