package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured profiles",
	RunE: func(c *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		entries := app.Profiles.List()
		if len(entries) == 0 {
			fmt.Println("No profiles configured.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s\t%s <%s>\n", e.Name, e.User, e.Email)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
