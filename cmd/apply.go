package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var applyDryRun bool

var applyCmd = &cobra.Command{
	Use:   "apply [name]",
	Short: "Apply a profile (explicit, or matched against the current repository's remote)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		var name string
		if len(args) == 1 {
			name = args[0]
		}

		if applyDryRun {
			profileName, commands, err := app.Profiles.DryRun(name)
			if err != nil {
				return err
			}
			fmt.Printf("Would apply profile %q:\n", profileName)
			for _, c := range commands {
				fmt.Println(" ", c)
			}
			return nil
		}

		profileName, _, err := app.Profiles.Apply(ctx, name)
		if err != nil {
			return err
		}
		fmt.Printf("Applied profile %q.\n", profileName)
		return nil
	},
}

func init() {
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "print the git config commands apply would run, without running them")
	rootCmd.AddCommand(applyCmd)
}
