package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	refreshHostname string
	refreshName     string
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh a stored credential's access token",
	RunE: func(c *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		noop, err := app.Refresh(ctx, refreshHostname, refreshName)
		if err != nil {
			return err
		}
		if noop {
			fmt.Println("oauth_only: refresh is a no-op")
			return nil
		}
		fmt.Println("Refreshed.")
		return nil
	},
}

func init() {
	refreshCmd.Flags().StringVar(&refreshHostname, "hostname", "", "host to refresh")
	refreshCmd.Flags().StringVar(&refreshName, "name", "", "credential name (default: active)")
	rootCmd.AddCommand(refreshCmd)
}
