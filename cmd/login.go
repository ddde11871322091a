package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	loginHostname string
	loginName     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize warden against a provider and store the resulting credential",
	RunE: func(c *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		host, name, err := app.Login(ctx, loginHostname, loginName)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in to %s as %q.\n", host, name)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginHostname, "hostname", "", "host to log in to")
	loginCmd.Flags().StringVar(&loginName, "name", "", "credential name (default \"oauth\")")
	rootCmd.AddCommand(loginCmd)
}
