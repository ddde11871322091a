package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	logoutHostname string
	logoutName     string
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove a stored credential",
	RunE: func(c *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		host, name, err := app.Logout(ctx, logoutHostname, logoutName)
		if err != nil {
			return err
		}
		fmt.Printf("Logged out %q on %s.\n", name, host)
		return nil
	},
}

func init() {
	logoutCmd.Flags().StringVar(&logoutHostname, "hostname", "", "host to log out of")
	logoutCmd.Flags().StringVar(&logoutName, "name", "", "credential name (default: active)")
	rootCmd.AddCommand(logoutCmd)
}
