package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List providers, credential sets, active selection, and token presence",
	RunE: func(c *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		entries, err := app.Status(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No stored credentials.")
			return nil
		}
		for _, e := range entries {
			marker := " "
			if e.Active {
				marker = "*"
			}
			tokenState := "no token"
			if e.HasToken {
				tokenState = "token present"
				if e.Expired {
					tokenState = "token expired"
				}
				if e.HasRefresh {
					tokenState += ", refresh available"
				}
			}
			fmt.Printf("%s %s/%s  (%s)\n", marker, e.Host, e.Name, tokenState)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
